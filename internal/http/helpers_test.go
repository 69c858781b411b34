package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gofiber/fiber/v2"

	"albumstore/internal/address"
	"albumstore/internal/config"
	"albumstore/internal/countdown"
	"albumstore/internal/domain"
	"albumstore/internal/http/handlers"
	"albumstore/internal/payment"
	"albumstore/internal/repos"
)

const testSID = "0b7c6f3e-4a52-4a8e-9c3d-2f1e5d6a7b80"

type stubLookup map[string]domain.Address

func (l stubLookup) Lookup(ctx context.Context, cep string) (domain.Address, error) {
	if a, ok := l[cep]; ok {
		return a, nil
	}
	return domain.Address{}, address.ErrNotFound
}

type stubGateway struct {
	mu    sync.Mutex
	out   payment.Outcome
	err   error
	calls []payment.Charge
}

func (g *stubGateway) Name() string { return "stub" }

func (g *stubGateway) CreatePix(ctx context.Context, ch payment.Charge) (payment.Outcome, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls = append(g.calls, ch)
	return g.out, g.err
}

func (g *stubGateway) count() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.calls)
}

func testConfig() config.Config {
	return config.Config{DBDSN: ":memory:", FruitfyProductID: "prod-1", RateMax: 1000}
}

func newTestApp(t *testing.T, cfg config.Config, gw payment.Gateway) *fiber.App {
	t.Helper()
	db, err := repos.OpenDB(cfg.DBDSN)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	lookup := stubLookup{"01310100": {Street: "Avenida Paulista", Neighborhood: "Bela Vista", City: "São Paulo", State: "SP"}}
	deps := handlers.NewDepsWith(db, cfg, countdown.New(0, 0), lookup, gw)
	t.Cleanup(deps.Checkout.Shutdown)
	return handlers.NewApp(cfg, deps)
}

// call sends a JSON request as the test visitor and decodes the JSON reply
// into out when out is not nil.
func call(t *testing.T, app *fiber.App, method, path string, body any, out any) *http.Response {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.AddCookie(&http.Cookie{Name: "sid", Value: testSID})
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	if out != nil {
		raw, _ := io.ReadAll(resp.Body)
		if err := json.Unmarshal(raw, out); err != nil {
			t.Fatalf("%s %s: decode %q: %v", method, path, raw, err)
		}
	}
	return resp
}
