// Package payment holds the contract shared by the PIX gateway clients and
// the helpers that reduce provider payloads to a domain.PixResult.
package payment

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"albumstore/internal/domain"
)

// LineItem is one cart line as sent to a provider. UnitPrice is in centavos.
type LineItem struct {
	ID        string
	Title     string
	UnitPrice int64
	Quantity  int
}

// Charge is what checkout asks a gateway to bill. Amount is in centavos.
type Charge struct {
	Name      string
	Email     string
	Phone     string
	CPF       string
	Amount    int64
	ProductID string
	Items     []LineItem
	Shipping  *domain.Address
	ZipCode   string
}

// Outcome is a gateway reply after normalization.
type Outcome struct {
	Success     bool
	Result      domain.PixResult
	Message     string
	FieldErrors map[string][]string
}

// Gateway creates PIX charges. A returned error means the proxy could not be
// reached or answered with something that is not JSON; provider-side
// rejections come back as an Outcome with Success false.
type Gateway interface {
	Name() string
	CreatePix(ctx context.Context, c Charge) (Outcome, error)
}

// FailureMessage joins a provider message with its field errors as
// "msg (field: a, b; other: c)". Fields are sorted so the text is stable.
func FailureMessage(msg string, fieldErrors map[string][]string) string {
	if len(fieldErrors) == 0 {
		return msg
	}
	fields := make([]string, 0, len(fieldErrors))
	for f := range fieldErrors {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, fmt.Sprintf("%s: %s", f, strings.Join(fieldErrors[f], ", ")))
	}
	return fmt.Sprintf("%s (%s)", msg, strings.Join(parts, "; "))
}
