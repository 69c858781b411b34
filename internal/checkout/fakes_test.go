package checkout

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"albumstore/internal/address"
	"albumstore/internal/domain"
	"albumstore/internal/payment"
)

type fakeClock struct {
	mu     sync.Mutex
	now    time.Duration
	timers []*fakeTimer
}

type fakeTimer struct {
	clock   *fakeClock
	at      time.Duration
	f       func()
	stopped bool
	fired   bool
}

func (t *fakeTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	active := !t.stopped && !t.fired
	t.stopped = true
	return active
}

func (c *fakeClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{clock: c, at: c.now + d, f: f}
	c.timers = append(c.timers, t)
	return t
}

// Advance moves time forward and runs due callbacks in order, outside the
// clock lock.
func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now += d
	var due []*fakeTimer
	for _, t := range c.timers {
		if !t.stopped && !t.fired && t.at <= c.now {
			t.fired = true
			due = append(due, t)
		}
	}
	c.mu.Unlock()
	sort.SliceStable(due, func(i, j int) bool { return due[i].at < due[j].at })
	for _, t := range due {
		t.f()
	}
}

type fakeGateway struct {
	mu      sync.Mutex
	calls   []payment.Charge
	out     payment.Outcome
	err     error
	release chan struct{}
}

func (g *fakeGateway) Name() string { return "fake" }

func (g *fakeGateway) CreatePix(ctx context.Context, ch payment.Charge) (payment.Outcome, error) {
	g.mu.Lock()
	g.calls = append(g.calls, ch)
	release := g.release
	g.mu.Unlock()
	if release != nil {
		<-release
	}
	return g.out, g.err
}

func (g *fakeGateway) Calls() []payment.Charge {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]payment.Charge(nil), g.calls...)
}

type fakeCart struct {
	mu    sync.Mutex
	items []domain.CartItem
	err   error
}

func (c *fakeCart) set(items ...domain.CartItem) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = items
}

func (c *fakeCart) Lines() ([]domain.CartItem, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]domain.CartItem(nil), c.items...), c.err
}

type fakeLookup struct {
	mu      sync.Mutex
	known   map[string]domain.Address
	gates   map[string]chan struct{}
	started chan string
}

func (l *fakeLookup) Lookup(ctx context.Context, cep string) (domain.Address, error) {
	l.mu.Lock()
	gate := l.gates[cep]
	addr, ok := l.known[cep]
	started := l.started
	l.mu.Unlock()
	if started != nil {
		started <- cep
	}
	if gate != nil {
		<-gate
	}
	if !ok {
		return domain.Address{}, address.ErrNotFound
	}
	return addr, nil
}

func str(s string) *string { return &s }

func item(id, price string, qty int) domain.CartItem {
	return domain.CartItem{
		Product:  domain.Product{ID: id, Name: id, CurrentPrice: decimal.RequireFromString(price)},
		Quantity: qty,
	}
}

var paulista = domain.Address{Street: "Avenida Paulista", Neighborhood: "Bela Vista", City: "São Paulo", State: "SP"}

func newTestSession(t *testing.T, gw *fakeGateway) (*Session, *fakeClock, *fakeLookup) {
	t.Helper()
	clock := &fakeClock{}
	lookup := &fakeLookup{known: map[string]domain.Address{"01310100": paulista}}
	s := NewSession("sid-1", Options{Lookup: lookup, Gateway: gw, Scheduler: clock, ProductID: "prod-1"})
	s.SetCart([]domain.CartItem{item("kit-amador", "100.00", 1)})
	t.Cleanup(s.Dispose)
	return s, clock, lookup
}

func validCustomer() Customer {
	return Customer{Name: " Ana Souza ", Email: "ana@example.com", CPF: "123.456.789-01", Phone: "(11) 98765-4321"}
}

func waitSettled(t *testing.T, s *Session) {
	t.Helper()
	select {
	case <-s.Settled():
	case <-time.After(2 * time.Second):
		t.Fatal("checkout did not settle")
	}
}
