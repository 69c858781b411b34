// Package bolt talks to the BoltPagamentos transactions API through the
// store's credential-hiding proxy, which adds the Basic credentials.
package bolt

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"albumstore/internal/domain"
	applog "albumstore/internal/log"
	"albumstore/internal/mask"
	"albumstore/internal/payment"
)

const (
	transactionsPath   = "/api/bolt/transactions"
	defaultDescription = "Compra Panini Copa do Mundo 2026"
)

type Customer struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Document string `json:"document"`
}

type Shipping struct {
	Street       string `json:"street"`
	StreetNumber string `json:"streetNumber"`
	Neighborhood string `json:"neighborhood"`
	City         string `json:"city"`
	State        string `json:"state"`
	ZipCode      string `json:"zipCode"`
	Complement   string `json:"complement,omitempty"`
}

type Item struct {
	Title       string `json:"title"`
	UnitPrice   int64  `json:"unitPrice"`
	Quantity    int    `json:"quantity"`
	ExternalRef string `json:"externalRef,omitempty"`
}

type PixRequest struct {
	Customer      Customer  `json:"customer"`
	Shipping      *Shipping `json:"shipping,omitempty"`
	PaymentMethod string    `json:"paymentMethod"`
	Items         []Item    `json:"items"`
	Amount        int64     `json:"amount"`
	Description   string    `json:"description,omitempty"`
}

type PixInfo struct {
	QRCode         string `json:"qrcode,omitempty"`
	ExpirationDate string `json:"expirationDate,omitempty"`
}

// PixResponse keeps the decoded body in Raw; the typed fields are read from
// it with the same lookups the extractor uses.
type PixResponse struct {
	ID      string         `json:"id,omitempty"`
	Status  string         `json:"status,omitempty"`
	Amount  int64          `json:"amount,omitempty"`
	Pix     PixInfo        `json:"pix"`
	Error   string         `json:"error,omitempty"`
	Message string         `json:"message,omitempty"`
	Raw     map[string]any `json:"-"`
}

type Client struct {
	http *resty.Client
}

func New(proxyBaseURL string, timeout time.Duration) *Client {
	rc := resty.New().
		SetBaseURL(proxyBaseURL).
		SetTimeout(timeout)
	return &Client{http: rc}
}

func (c *Client) Name() string { return "bolt" }

var (
	idCandidates         = payment.Candidates{payment.P("id")}
	qrcodeCandidates     = payment.Candidates{payment.P("pix.qrcode")}
	expirationCandidates = payment.Candidates{payment.P("pix.expirationDate")}
)

// CreatePixCharge posts one PIX transaction. Customer phone and document are
// reduced to digits. A non-2xx reply without an id becomes {error: ...}.
func (c *Client) CreatePixCharge(ctx context.Context, req PixRequest) (PixResponse, error) {
	req.Customer.Phone = mask.Digits(req.Customer.Phone)
	req.Customer.Document = mask.Digits(req.Customer.Document)
	req.PaymentMethod = "PIX"
	if req.Description == "" {
		req.Description = defaultDescription
	}
	applog.Event("bolt.charge.send", nil, map[string]any{"amount": req.Amount, "items": len(req.Items)})

	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(req).
		Post(transactionsPath)
	if err != nil {
		return PixResponse{}, fmt.Errorf("bolt: post transaction: %w", err)
	}

	dec := json.NewDecoder(bytes.NewReader(resp.Body()))
	dec.UseNumber()
	var raw map[string]any
	if err := dec.Decode(&raw); err != nil || raw == nil {
		if err == nil {
			err = fmt.Errorf("empty body")
		}
		return PixResponse{}, fmt.Errorf("bolt: decode response (HTTP %d): %w", resp.StatusCode(), err)
	}
	applog.Event("bolt.charge.reply", nil, map[string]any{"status": resp.StatusCode()})

	out := fromRaw(raw)
	if !resp.IsSuccess() && out.ID == "" {
		msg := out.Error
		if msg == "" {
			msg = out.Message
		}
		if msg == "" {
			msg = fmt.Sprintf("Erro HTTP %d", resp.StatusCode())
		}
		return PixResponse{Error: msg, Raw: raw}, nil
	}
	return out, nil
}

func fromRaw(raw map[string]any) PixResponse {
	str := func(p string) string {
		s, _ := payment.Lookup(raw, payment.P(p))
		return s
	}
	out := PixResponse{
		ID:      str("id"),
		Status:  str("status"),
		Error:   str("error"),
		Message: str("message"),
		Pix: PixInfo{
			QRCode:         str("pix.qrcode"),
			ExpirationDate: str("pix.expirationDate"),
		},
		Raw: raw,
	}
	if a := str("amount"); a != "" {
		out.Amount, _ = strconv.ParseInt(a, 10, 64)
	}
	return out
}

// ExtractPixData maps a transaction to a PixResult. Bolt sends a single
// "qrcode" field: an http(s) value is an image URL and is also offered as the
// code to copy, anything else is the BR Code and the image is rendered later
// from it.
func ExtractPixData(resp PixResponse) domain.PixResult {
	doc := resp.Raw
	if doc == nil {
		doc = map[string]any{
			"id":  resp.ID,
			"pix": map[string]any{"qrcode": resp.Pix.QRCode, "expirationDate": resp.Pix.ExpirationDate},
		}
	}
	var r domain.PixResult
	if qr := qrcodeCandidates.First(doc); qr != nil {
		code := *qr
		r.PixCode = &code
		if strings.HasPrefix(code, "http") {
			img := code
			r.QRCodeURL = &img
		}
	}
	r.ChargeID = idCandidates.First(doc)
	r.ExpiresAt = expirationCandidates.First(doc)

	applog.Event("bolt.charge.extract", nil, map[string]any{
		"qr_code":    r.QRCodeURL != nil,
		"pix_code":   r.PixCode != nil,
		"charge_id":  r.ChargeID,
		"expires_at": r.ExpiresAt,
	})
	return r
}

// CreatePix adapts CreatePixCharge to payment.Gateway. A reply counts as a
// charge once it has an id and no error.
func (c *Client) CreatePix(ctx context.Context, ch payment.Charge) (payment.Outcome, error) {
	req := PixRequest{
		Customer: Customer{Name: ch.Name, Email: ch.Email, Phone: ch.Phone, Document: ch.CPF},
		Amount:   ch.Amount,
	}
	for _, it := range ch.Items {
		req.Items = append(req.Items, Item{Title: it.Title, UnitPrice: it.UnitPrice, Quantity: it.Quantity, ExternalRef: it.ID})
	}
	if len(req.Items) == 0 {
		req.Items = []Item{{Title: defaultDescription, UnitPrice: ch.Amount, Quantity: 1, ExternalRef: ch.ProductID}}
	}
	if a := ch.Shipping; a != nil && a.Street != "" {
		req.Shipping = &Shipping{
			Street:       a.Street,
			StreetNumber: a.Number,
			Neighborhood: a.Neighborhood,
			City:         a.City,
			State:        a.State,
			ZipCode:      mask.Digits(ch.ZipCode),
			Complement:   a.Complement,
		}
	}

	resp, err := c.CreatePixCharge(ctx, req)
	if err != nil {
		return payment.Outcome{}, err
	}
	if resp.Error != "" || resp.ID == "" {
		msg := resp.Error
		if msg == "" {
			msg = resp.Message
		}
		return payment.Outcome{Message: msg}, nil
	}
	return payment.Outcome{Success: true, Result: ExtractPixData(resp)}, nil
}
