package handlers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"albumstore/internal/http/handlers"
)

type logEntry struct {
	Level     string         `json:"level"`
	Action    string         `json:"action"`
	ReqID     string         `json:"req_id"`
	SessionID string         `json:"sid"`
	Err       string         `json:"err"`
	Fields    map[string]any `json:"fields"`
}

type lockedBuf struct {
	mu sync.Mutex
	b  bytes.Buffer
}

func (l *lockedBuf) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.b.Write(p)
}

func captureLogs(t *testing.T, fn func()) []logEntry {
	t.Helper()
	buf := &lockedBuf{}
	oldW := log.Writer()
	oldFlags := log.Flags()
	log.SetOutput(buf)
	log.SetFlags(0)
	defer func() {
		log.SetOutput(oldW)
		log.SetFlags(oldFlags)
	}()

	fn()

	buf.mu.Lock()
	defer buf.mu.Unlock()
	var entries []logEntry
	for _, line := range strings.Split(strings.TrimSpace(buf.b.String()), "\n") {
		var e logEntry
		if err := json.Unmarshal([]byte(strings.TrimSpace(line)), &e); err == nil && e.Action != "" {
			entries = append(entries, e)
		}
	}
	return entries
}

func TestErrorHandlerFriendlyMessage(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: handlers.ErrorHandler})
	app.Use(requestid.New())
	app.Get("/err", func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusInternalServerError, "db timeout: secret trace")
	})

	var resp *http.Response
	entries := captureLogs(t, func() {
		var err error
		resp, err = app.Test(httptest.NewRequest("GET", "/err", nil))
		if err != nil {
			t.Fatalf("test request failed: %v", err)
		}
	})
	if resp.StatusCode != fiber.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", resp.StatusCode)
	}
	body, _ := io.ReadAll(resp.Body)
	s := string(body)
	if !strings.Contains(s, "Algo deu errado") {
		t.Fatalf("friendly message missing; body=%s", s)
	}
	if strings.Contains(s, "db timeout") || strings.Contains(s, "secret") {
		t.Fatalf("internal details leaked to user; body=%s", s)
	}
	if len(entries) != 1 || entries[0].Action != "server.error" || entries[0].ReqID == "" || !strings.Contains(entries[0].Err, "db timeout") {
		t.Fatalf("error not logged with request id: %+v", entries)
	}
}

func TestAuditLogCarriesSession(t *testing.T) {
	app := newTestApp(t, testConfig(), &stubGateway{})
	entries := captureLogs(t, func() {
		call(t, app, "POST", "/api/v1/cart/items", map[string]string{"productId": "album-capa-dura"}, nil)
		call(t, app, "GET", "/api/v1/products/bad.id", nil, nil)
	})

	var audit, security *logEntry
	for i := range entries {
		switch entries[i].Action {
		case "cart.add":
			audit = &entries[i]
		case "validation.fail":
			security = &entries[i]
		}
	}
	if audit == nil || audit.Level != "audit" || audit.SessionID != testSID || audit.Fields["product"] != "album-capa-dura" {
		t.Fatalf("cart.add audit entry missing or incomplete: %+v", entries)
	}
	if security == nil || security.Level != "warn" {
		t.Fatalf("validation.fail entry missing: %+v", entries)
	}
}

func TestCheckoutSecurityLogOnlyForFieldErrors(t *testing.T) {
	app := newTestApp(t, testConfig(), &stubGateway{})
	call(t, app, "POST", "/api/v1/cart/items", map[string]string{"productId": "kit-amador"}, nil)
	call(t, app, "POST", "/api/v1/checkout", nil, nil)

	wrongStage := captureLogs(t, func() {
		resp := call(t, app, "POST", "/api/v1/checkout/retry-pix", nil, nil)
		if resp.StatusCode != fiber.StatusConflict {
			t.Fatalf("retry-pix while filling: %d", resp.StatusCode)
		}
	})
	for _, e := range wrongStage {
		if e.Action == "validation.fail" {
			t.Fatalf("stage conflict logged as validation failure: %+v", e)
		}
	}

	badCPF := captureLogs(t, func() {
		call(t, app, "PUT", "/api/v1/checkout/customer", map[string]string{"name": "Ana", "email": "ana@example.com", "cpf": "123", "phone": "11987654321"}, nil)
		call(t, app, "POST", "/api/v1/checkout/finalize", nil, nil)
	})
	var found bool
	for _, e := range badCPF {
		if e.Action == "validation.fail" && e.Level == "warn" && e.Fields["field"] == "cpf" {
			found = true
		}
	}
	if !found {
		t.Fatalf("field error not logged: %+v", badCPF)
	}
}

func TestRateLimit(t *testing.T) {
	cfg := testConfig()
	cfg.RateMax = 3
	app := newTestApp(t, cfg, &stubGateway{})

	for i := 0; i < 4; i++ {
		resp := call(t, app, "GET", "/api/v1/offer", nil, nil)
		if i < 3 && resp.StatusCode == http.StatusTooManyRequests {
			t.Fatalf("hit rate limit too early at %d", i)
		}
		if i == 3 && resp.StatusCode != http.StatusTooManyRequests {
			t.Fatalf("expected 429 after limit, got %d", resp.StatusCode)
		}
	}
	// health probe is exempt
	if resp := call(t, app, "GET", "/healthz", nil, nil); resp.StatusCode != http.StatusOK {
		t.Fatalf("healthz limited: %d", resp.StatusCode)
	}
}

func TestBodySizeLimit(t *testing.T) {
	app := newTestApp(t, testConfig(), &stubGateway{})

	oversize := bytes.Repeat([]byte("A"), (1<<20)+10)
	req := httptest.NewRequest("POST", "/api/v1/cart/items", bytes.NewReader(oversize))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	// Fiber may fail the round trip instead of answering when the body is too large
	if err != nil {
		if strings.Contains(err.Error(), "body size exceeds") || strings.Contains(err.Error(), "too large") {
			return
		}
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusRequestEntityTooLarge {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("expected 413 for oversize, got %d body=%s", resp.StatusCode, string(body))
	}
}
