package validate

import (
	"regexp"
	"strconv"
	"strings"

	"albumstore/internal/mask"
)

var reID = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// FieldError is a rejected checkout field with the message shown to the
// customer.
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string { return e.Field + ": " + e.Message }

const (
	MsgName  = "Preencha o nome completo."
	MsgEmail = "Preencha um e-mail válido."
	MsgCPF   = "CPF deve conter 11 dígitos."
	MsgPhone = "Telefone inválido. Inclua DDD + número."
)

// Name trims and requires a non-blank value.
func Name(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, s != ""
}

// Email only checks presence of "@"; the payment provider does the rest.
func Email(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, s != "" && strings.Contains(s, "@")
}

// CPF returns the digits and whether there are exactly 11 of them.
func CPF(s string) (string, bool) {
	d := mask.Digits(s)
	return d, len(d) == 11
}

// Phone returns the digits and whether there are at least 10 (DDD + number).
func Phone(s string) (string, bool) {
	d := mask.Digits(s)
	return d, len(d) >= 10
}

// CEP returns the digits and whether there are exactly 8.
func CEP(s string) (string, bool) {
	d := mask.Digits(s)
	return d, len(d) == 8
}

// Customer checks the PIX form fields in display order and stops at the
// first failure.
func Customer(name, email, cpf, phone string) *FieldError {
	if _, ok := Name(name); !ok {
		return &FieldError{Field: "name", Message: MsgName}
	}
	if _, ok := Email(email); !ok {
		return &FieldError{Field: "email", Message: MsgEmail}
	}
	if _, ok := CPF(cpf); !ok {
		return &FieldError{Field: "cpf", Message: MsgCPF}
	}
	if _, ok := Phone(phone); !ok {
		return &FieldError{Field: "phone", Message: MsgPhone}
	}
	return nil
}

// ID validates a simple resource identifier (product ids).
func ID(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, s != "" && reID.MatchString(s)
}

// Delta parses a quantity change; anything unparsable is rejected.
func Delta(s string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, false
	}
	return n, true
}
