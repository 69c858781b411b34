// Package mask formats raw form input into the display shapes used by the
// checkout form. Every function strips non-digits first, so re-applying a mask
// to its own output is a no-op.
package mask

import "strings"

const (
	cpfDigits    = 11
	phoneDigits  = 11
	cepDigits    = 8
	cardDigits   = 16
	expiryDigits = 4
	cvvDigits    = 4
)

// Digits returns only the ASCII digits of s.
func Digits(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if c := s[i]; c >= '0' && c <= '9' {
			b.WriteByte(c)
		}
	}
	return b.String()
}

func limit(s string, n int) string {
	d := Digits(s)
	if len(d) > n {
		return d[:n]
	}
	return d
}

// CPF formats a taxpayer id as 000.000.000-00.
func CPF(s string) string {
	d := limit(s, cpfDigits)
	var b strings.Builder
	for i := 0; i < len(d); i++ {
		switch i {
		case 3, 6:
			b.WriteByte('.')
		case 9:
			b.WriteByte('-')
		}
		b.WriteByte(d[i])
	}
	return b.String()
}

// Phone formats a mobile number as (00) 00000-0000, growing left to right.
func Phone(s string) string {
	d := limit(s, phoneDigits)
	switch {
	case d == "":
		return ""
	case len(d) <= 2:
		return "(" + d
	case len(d) <= 7:
		return "(" + d[:2] + ") " + d[2:]
	default:
		return "(" + d[:2] + ") " + d[2:7] + "-" + d[7:]
	}
}

// CEP formats a postal code as 00000-000.
func CEP(s string) string {
	d := limit(s, cepDigits)
	if len(d) <= 5 {
		return d
	}
	return d[:5] + "-" + d[5:]
}

// CardNumber groups up to sixteen digits in blocks of four.
func CardNumber(s string) string {
	d := limit(s, cardDigits)
	var b strings.Builder
	for i := 0; i < len(d); i++ {
		if i > 0 && i%4 == 0 {
			b.WriteByte(' ')
		}
		b.WriteByte(d[i])
	}
	return b.String()
}

// Expiry formats a card expiry as MM/YY.
func Expiry(s string) string {
	d := limit(s, expiryDigits)
	if len(d) <= 2 {
		return d
	}
	return d[:2] + "/" + d[2:]
}

// CVV keeps at most four digits.
func CVV(s string) string {
	return limit(s, cvvDigits)
}
