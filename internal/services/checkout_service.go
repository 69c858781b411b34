package services

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"albumstore/internal/checkout"
	"albumstore/internal/domain"
	applog "albumstore/internal/log"
	"albumstore/internal/payment"
)

var (
	ErrNoSession = errors.New("no checkout in progress")
	ErrEmptyCart = checkout.ErrEmptyCart
)

const (
	DefaultIdle   = 30 * time.Minute
	sweepSchedule = "@every 1m"
)

// CheckoutService keeps one checkout session per visitor in memory.
// Sessions untouched for longer than the idle limit are dropped by the
// sweeper, so the registry stays bounded by recent visitors.
type CheckoutService struct {
	Cart      *CartService
	Lookup    checkout.AddressLookup
	Gateway   payment.Gateway
	ProductID string
	Scheduler checkout.Scheduler
	// Now stamps session activity for the idle sweep.
	Now func() time.Time

	mu       sync.Mutex
	sessions map[string]*checkout.Session
	seen     map[string]time.Time
	sweeper  *cron.Cron
}

func NewCheckoutService(cart *CartService, lookup checkout.AddressLookup, gw payment.Gateway, productID string) *CheckoutService {
	return &CheckoutService{
		Cart:      cart,
		Lookup:    lookup,
		Gateway:   gw,
		ProductID: productID,
		sessions:  map[string]*checkout.Session{},
		seen:      map[string]time.Time{},
		Now:       time.Now,
	}
}

// Open starts checkout for the visitor's current cart, or returns the
// existing session with its cart lines refreshed. The session keeps
// reading the cart afterwards, so later cart edits reach the charge.
func (s *CheckoutService) Open(sessionID string) (*checkout.Session, error) {
	v, err := s.Cart.View(sessionID)
	if err != nil {
		return nil, err
	}
	if len(v.Items) == 0 {
		return nil, ErrEmptyCart
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[sessionID]
	if !ok {
		sess = checkout.NewSession(sessionID, checkout.Options{
			Lookup:    s.Lookup,
			Gateway:   s.Gateway,
			Scheduler: s.Scheduler,
			ProductID: s.ProductID,
			Cart:      s.cartLines(sessionID),
		})
		s.sessions[sessionID] = sess
	}
	s.seen[sessionID] = s.Now()
	sess.SetCart(v.Items)
	return sess, nil
}

func (s *CheckoutService) cartLines(sessionID string) func() ([]domain.CartItem, error) {
	return func() ([]domain.CartItem, error) {
		v, err := s.Cart.View(sessionID)
		if err != nil {
			return nil, err
		}
		return v.Items, nil
	}
}

func (s *CheckoutService) Get(sessionID string) (*checkout.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[sessionID]
	if !ok {
		return nil, ErrNoSession
	}
	s.seen[sessionID] = s.Now()
	return sess, nil
}

// Discard closes the visitor's checkout and stops its timers.
func (s *CheckoutService) Discard(sessionID string) error {
	s.mu.Lock()
	sess, ok := s.sessions[sessionID]
	delete(s.sessions, sessionID)
	delete(s.seen, sessionID)
	s.mu.Unlock()
	if !ok {
		return ErrNoSession
	}
	sess.Dispose()
	return nil
}

// Sweep disposes sessions idle for longer than maxIdle and returns how many
// were dropped. A session waiting on the payment provider is kept.
func (s *CheckoutService) Sweep(maxIdle time.Duration) int {
	cutoff := s.Now().Add(-maxIdle)
	var stale []*checkout.Session
	s.mu.Lock()
	for id, sess := range s.sessions {
		if !s.seen[id].Before(cutoff) || sess.Stage() == domain.StageProcessing {
			continue
		}
		stale = append(stale, sess)
		delete(s.sessions, id)
		delete(s.seen, id)
	}
	s.mu.Unlock()

	for _, sess := range stale {
		sess.Dispose()
	}
	if len(stale) > 0 {
		applog.Event("checkout.sweep", nil, map[string]any{"dropped": len(stale)})
	}
	return len(stale)
}

// StartSweeper runs Sweep every minute until Shutdown. Calling it twice is a
// no-op.
func (s *CheckoutService) StartSweeper(maxIdle time.Duration) error {
	if maxIdle <= 0 {
		maxIdle = DefaultIdle
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sweeper != nil {
		return nil
	}
	c := cron.New()
	if _, err := c.AddFunc(sweepSchedule, func() { s.Sweep(maxIdle) }); err != nil {
		return fmt.Errorf("checkout: register sweep job: %w", err)
	}
	c.Start()
	s.sweeper = c
	return nil
}

// Shutdown stops the sweeper and disposes every open session.
func (s *CheckoutService) Shutdown() {
	s.mu.Lock()
	all := s.sessions
	c := s.sweeper
	s.sessions = map[string]*checkout.Session{}
	s.seen = map[string]time.Time{}
	s.sweeper = nil
	s.mu.Unlock()
	if c != nil {
		<-c.Stop().Done()
	}
	for _, sess := range all {
		sess.Dispose()
	}
}
