// Package address resolves Brazilian postal codes (CEP) through a
// ViaCEP-compatible service.
package address

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/mitchellh/mapstructure"
	"github.com/sony/gobreaker/v2"

	"albumstore/internal/domain"
	applog "albumstore/internal/log"
	"albumstore/internal/mask"
)

var (
	ErrNotFound   = errors.New("address: postal code not found")
	ErrInvalidCEP = errors.New("address: postal code must have 8 digits")
)

type viaCEP struct {
	Street       string `mapstructure:"logradouro"`
	Neighborhood string `mapstructure:"bairro"`
	City         string `mapstructure:"localidade"`
	State        string `mapstructure:"uf"`
	Erro         bool   `mapstructure:"erro"`
}

type Client struct {
	http    *resty.Client
	breaker *gobreaker.CircuitBreaker[domain.Address]
}

func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		http: resty.New().SetBaseURL(baseURL).SetTimeout(timeout),
		breaker: gobreaker.NewCircuitBreaker[domain.Address](gobreaker.Settings{
			Name:    "cep-lookup",
			Timeout: 30 * time.Second,
			ReadyToTrip: func(c gobreaker.Counts) bool {
				return c.ConsecutiveFailures >= 5
			},
			// a CEP that does not exist is an answer, not an outage
			IsSuccessful: func(err error) bool {
				return err == nil || errors.Is(err, ErrNotFound) || errors.Is(err, ErrInvalidCEP)
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				applog.Event("cep.breaker", nil, map[string]any{"name": name, "from": from.String(), "to": to.String()})
			},
		}),
	}
}

// Lookup returns the street, neighborhood, city and state for cep. Only
// exactly-8-digit codes are sent upstream.
func (c *Client) Lookup(ctx context.Context, cep string) (domain.Address, error) {
	clean := mask.Digits(cep)
	if len(clean) != 8 {
		return domain.Address{}, ErrInvalidCEP
	}
	return c.breaker.Execute(func() (domain.Address, error) {
		return c.fetch(ctx, clean)
	})
}

func (c *Client) fetch(ctx context.Context, cep string) (domain.Address, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetPathParam("cep", cep).
		Get("/ws/{cep}/json/")
	if err != nil {
		return domain.Address{}, fmt.Errorf("address: lookup %s: %w", cep, err)
	}
	if resp.StatusCode() >= 500 {
		return domain.Address{}, fmt.Errorf("address: lookup %s: HTTP %d", cep, resp.StatusCode())
	}
	if !resp.IsSuccess() {
		return domain.Address{}, ErrNotFound
	}

	var raw map[string]any
	if err := json.Unmarshal(resp.Body(), &raw); err != nil {
		return domain.Address{}, fmt.Errorf("address: decode %s: %w", cep, err)
	}
	var v viaCEP
	// ViaCEP has sent "erro" both as a boolean and as the string "true".
	if err := mapstructure.WeakDecode(raw, &v); err != nil {
		return domain.Address{}, fmt.Errorf("address: decode %s: %w", cep, err)
	}
	if v.Erro {
		return domain.Address{}, ErrNotFound
	}
	return domain.Address{
		Street:       v.Street,
		Neighborhood: v.Neighborhood,
		City:         v.City,
		State:        v.State,
	}, nil
}
