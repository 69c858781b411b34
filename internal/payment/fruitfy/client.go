// Package fruitfy talks to the Fruitfy PIX API through the store's
// credential-hiding proxy. The proxy attaches the bearer token and store id;
// this client never sees them.
package fruitfy

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/mitchellh/mapstructure"

	"albumstore/internal/domain"
	applog "albumstore/internal/log"
	"albumstore/internal/mask"
	"albumstore/internal/payment"
)

const chargePath = "/api/fruitfy/pix/charge"

type ChargeRequest struct {
	Name      string
	Email     string
	Phone     string
	CPF       string
	Amount    int64 // centavos
	ProductID string
}

type chargeItem struct {
	ID       string `json:"id"`
	Value    int64  `json:"value"`
	Quantity int    `json:"quantity"`
}

type chargeBody struct {
	Name   string       `json:"name"`
	Email  string       `json:"email"`
	Phone  string       `json:"phone"`
	CPF    string       `json:"cpf"`
	Amount int64        `json:"amount"`
	Items  []chargeItem `json:"items"`
}

type ChargeResponse struct {
	Success bool                `json:"success"`
	Message string              `json:"message,omitempty"`
	Data    map[string]any      `json:"data,omitempty"`
	Errors  map[string][]string `json:"errors,omitempty"`
}

type Client struct {
	http      *resty.Client
	productID string
}

func New(proxyBaseURL string, timeout time.Duration, productID string) *Client {
	rc := resty.New().
		SetBaseURL(proxyBaseURL).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json").
		SetHeader("Accept-Language", "pt_BR")
	return &Client{http: rc, productID: productID}
}

func (c *Client) Name() string { return "fruitfy" }

// CreateCharge posts one charge to the proxy. Phone and CPF are reduced to
// digits. A non-2xx reply without a "success" key is turned into a generic
// failure carrying the HTTP status.
func (c *Client) CreateCharge(ctx context.Context, req ChargeRequest) (ChargeResponse, error) {
	body := chargeBody{
		Name:   req.Name,
		Email:  req.Email,
		Phone:  mask.Digits(req.Phone),
		CPF:    mask.Digits(req.CPF),
		Amount: req.Amount,
		Items:  []chargeItem{{ID: req.ProductID, Value: req.Amount, Quantity: 1}},
	}
	applog.Event("fruitfy.charge.send", nil, map[string]any{"amount": body.Amount, "product_id": req.ProductID})

	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(body).
		Post(chargePath)
	if err != nil {
		return ChargeResponse{}, fmt.Errorf("fruitfy: post charge: %w", err)
	}

	raw, err := decode(resp.Body())
	if err != nil {
		return ChargeResponse{}, fmt.Errorf("fruitfy: decode response (HTTP %d): %w", resp.StatusCode(), err)
	}
	applog.Event("fruitfy.charge.reply", nil, map[string]any{"status": resp.StatusCode()})

	success, hasSuccess := raw["success"]
	if !resp.IsSuccess() && !hasSuccess {
		return ChargeResponse{
			Success: false,
			Message: fmt.Sprintf("Erro HTTP %d: %s", resp.StatusCode(), http.StatusText(resp.StatusCode())),
		}, nil
	}

	out := ChargeResponse{Data: payment.Object(raw, "data")}
	out.Success, _ = success.(bool)
	out.Message, _ = raw["message"].(string)
	out.Errors = fieldErrors(raw["errors"])
	return out, nil
}

func decode(b []byte) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var m map[string]any
	if err := dec.Decode(&m); err != nil {
		return nil, err
	}
	if m == nil {
		return nil, fmt.Errorf("empty body")
	}
	return m, nil
}

// fieldErrors accepts {"field": ["msg", ...]} as well as {"field": "msg"}.
func fieldErrors(v any) map[string][]string {
	m, ok := v.(map[string]any)
	if !ok || len(m) == 0 {
		return nil
	}
	out := make(map[string][]string, len(m))
	for field, msgs := range m {
		var list []string
		if err := mapstructure.WeakDecode(msgs, &list); err != nil {
			list = []string{fmt.Sprint(msgs)}
		}
		out[field] = list
	}
	return out
}

var (
	qrCodeURLCandidates = payment.Candidates{
		payment.P("pix.qr_code_base64"),
		payment.P("pix.qr_code_url"),
		payment.P("pix.qr_code_image"),
		payment.P("pix.qr_code"),
		payment.P("pix.qrcode"),
		payment.P("qr_code_base64"),
		payment.P("qr_code_url"),
		payment.P("qr_code"),
	}
	pixCodeCandidates = payment.Candidates{
		payment.P("pix.code"),
		payment.P("pix.pix_code"),
		payment.P("pix.copy_and_paste"),
		payment.P("pix.emv"),
		payment.P("pix.br_code"),
		payment.P("pix.brcode"),
		payment.P("pix.payload"),
		payment.P("pix_code"),
		payment.P("code"),
		payment.P("copy_and_paste"),
		payment.P("emv"),
	}
	chargeIDCandidates = payment.Candidates{
		payment.P("order_id"),
		payment.P("charge_id"),
		payment.P("transaction_id"),
		payment.P("id"),
		payment.P("pix.id"),
	}
	expiresAtCandidates = payment.Candidates{
		payment.P("pix.expires_at"),
		payment.P("pix.expiration"),
		payment.P("expires_at"),
		payment.P("expiration"),
	}
)

// ExtractPixData reduces the "data" object of a successful charge reply.
func ExtractPixData(data map[string]any) domain.PixResult {
	r := domain.PixResult{
		QRCodeURL: qrCodeURLCandidates.First(data),
		PixCode:   pixCodeCandidates.First(data),
		ChargeID:  chargeIDCandidates.First(data),
		ExpiresAt: expiresAtCandidates.First(data),
	}
	applog.Event("fruitfy.charge.extract", nil, map[string]any{
		"qr_code":    r.QRCodeURL != nil,
		"pix_code":   r.PixCode != nil,
		"charge_id":  r.ChargeID,
		"expires_at": r.ExpiresAt,
	})
	return r
}

// CreatePix adapts CreateCharge to payment.Gateway. The configured product id
// wins over the one on the charge.
func (c *Client) CreatePix(ctx context.Context, ch payment.Charge) (payment.Outcome, error) {
	productID := c.productID
	if productID == "" {
		productID = ch.ProductID
	}
	resp, err := c.CreateCharge(ctx, ChargeRequest{
		Name:      ch.Name,
		Email:     ch.Email,
		Phone:     ch.Phone,
		CPF:       ch.CPF,
		Amount:    ch.Amount,
		ProductID: productID,
	})
	if err != nil {
		return payment.Outcome{}, err
	}
	if resp.Success && resp.Data != nil {
		return payment.Outcome{Success: true, Result: ExtractPixData(resp.Data)}, nil
	}
	return payment.Outcome{Message: resp.Message, FieldErrors: resp.Errors}, nil
}
