// Package checkout implements the checkout flow for one visitor: address
// lookup, shipping choice, payment method branching and PIX charge creation.
//
// Stages move filling → processing → pix_success | card_error. card_error
// goes back to filling (BackToForm) or straight into a PIX attempt
// (RetryWithPix); pix_success goes back to filling on Close.
package checkout

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"albumstore/internal/domain"
	applog "albumstore/internal/log"
	"albumstore/internal/mask"
	"albumstore/internal/payment"
	"albumstore/internal/validate"
)

var (
	ErrInvalidTransition = errors.New("checkout: action not allowed in current stage")
	ErrUnknownShipping   = errors.New("checkout: unknown shipping option")
	ErrUnknownMethod     = errors.New("checkout: unknown payment method")
	ErrNoPixCode         = errors.New("checkout: no pix code to copy")
	ErrNoGateway         = errors.New("checkout: no payment gateway configured")
	ErrEmptyCart         = errors.New("checkout: cart is empty")
)

const (
	MsgCheckingStock = "Verificando estoque disponível..."
	MsgProcessing    = "Processando pagamento..."
	MsgCardIssuer    = "Consultando operadora..."
	MsgGeneratingPix = "Gerando seu PIX exclusivo..."
	MsgPreparingQR   = "Preparando QR Code..."

	MsgPixFailed  = "Erro ao gerar o PIX. Tente novamente."
	MsgConnection = "Erro de conexão com o servidor de pagamento. Verifique sua internet e tente novamente."
)

const (
	stepDelay        = time.Second
	cardDeclineDelay = 3500 * time.Millisecond
	copiedFor        = 2 * time.Second
)

// AddressLookup resolves an 8-digit CEP.
type AddressLookup interface {
	Lookup(ctx context.Context, cep string) (domain.Address, error)
}

type Customer struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	CPF   string `json:"cpf"`
	Phone string `json:"phone"`
}

// Card is collected for show only; it is never sent anywhere.
type Card struct {
	Number string `json:"number"`
	Name   string `json:"name"`
	Expiry string `json:"expiry"`
	CVV    string `json:"-"`
}

type Options struct {
	Lookup    AddressLookup
	Gateway   payment.Gateway
	Scheduler Scheduler
	// ProductID is the provider-side product reference sent with PIX charges.
	ProductID string
	// Cart returns the visitor's current cart lines. When set, the session
	// re-reads it before every submission and snapshot instead of trusting
	// the lines it was opened with.
	Cart func() ([]domain.CartItem, error)
}

type Session struct {
	ID string

	lookup    AddressLookup
	gateway   payment.Gateway
	sched     Scheduler
	productID string
	cart      func() ([]domain.CartItem, error)

	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	stage    domain.CheckoutStage
	message  string
	apiError string

	items    []domain.CartItem
	subtotal decimal.Decimal

	cep             string
	cepToken        uint64
	cepLoading      bool
	address         domain.Address
	shippingVisible bool
	shippingID      domain.ShippingID

	method   domain.PaymentMethod
	customer Customer
	card     Card

	pix       *domain.PixResult
	copied    bool
	copyTimer Timer

	run    uint64
	timers []Timer
	done   chan struct{}
}

func NewSession(id string, opts Options) *Session {
	if opts.Scheduler == nil {
		opts.Scheduler = WallClock
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	close(done)
	return &Session{
		ID:         id,
		lookup:     opts.Lookup,
		gateway:    opts.Gateway,
		sched:      opts.Scheduler,
		productID:  opts.ProductID,
		cart:       opts.Cart,
		ctx:        ctx,
		cancel:     cancel,
		stage:      domain.StageFilling,
		message:    MsgCheckingStock,
		shippingID: domain.ShippingFree,
		method:     domain.MethodPix,
		subtotal:   decimal.Zero,
		done:       done,
	}
}

// SetCart replaces the order lines shown and billed by this session.
func (s *Session) SetCart(items []domain.CartItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setItems(items)
}

// loadCart reads the cart source without holding mu. ok is false when the
// session has no source.
func (s *Session) loadCart() (items []domain.CartItem, ok bool, err error) {
	if s.cart == nil {
		return nil, false, nil
	}
	items, err = s.cart()
	if err != nil {
		return nil, false, err
	}
	return items, true, nil
}

// syncCart refreshes the lines while the order can still change. A charge
// in flight or on screen keeps the lines it was built from.
func (s *Session) syncCart() {
	items, ok, err := s.loadCart()
	if err != nil {
		applog.Event("checkout.cart.reload", err, map[string]any{"sid": s.ID})
		return
	}
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stage == domain.StageFilling || s.stage == domain.StageCardError {
		s.setItems(items)
	}
}

func (s *Session) setItems(items []domain.CartItem) {
	s.items = append([]domain.CartItem(nil), items...)
	s.subtotal = decimal.Zero
	for _, it := range s.items {
		s.subtotal = s.subtotal.Add(it.LineTotal())
	}
}

func (s *Session) editable() error {
	if s.stage != domain.StageFilling {
		return ErrInvalidTransition
	}
	return nil
}

// SetCEP stores the masked postal code. With exactly 8 digits it looks the
// address up and shows shipping options on success; any other length, a
// miss or a failed call hides them. Only the latest edit may apply its
// lookup result.
func (s *Session) SetCEP(ctx context.Context, raw string) error {
	s.mu.Lock()
	if err := s.editable(); err != nil {
		s.mu.Unlock()
		return err
	}
	s.cep = mask.CEP(raw)
	s.cepToken++
	token := s.cepToken
	clean, ok := validate.CEP(s.cep)
	if !ok || s.lookup == nil {
		s.shippingVisible = false
		s.cepLoading = false
		s.mu.Unlock()
		return nil
	}
	s.cepLoading = true
	s.mu.Unlock()

	addr, err := s.lookup.Lookup(ctx, clean)

	s.mu.Lock()
	defer s.mu.Unlock()
	if token != s.cepToken {
		applog.Event("checkout.cep.stale", nil, map[string]any{"sid": s.ID, "cep": clean})
		return nil
	}
	s.cepLoading = false
	if err != nil {
		applog.Event("checkout.cep.miss", err, map[string]any{"sid": s.ID, "cep": clean})
		s.shippingVisible = false
		return nil
	}
	s.address.Street = addr.Street
	s.address.Neighborhood = addr.Neighborhood
	s.address.City = addr.City
	s.address.State = addr.State
	s.shippingVisible = true
	return nil
}

// SetAddressLine stores the fields a lookup never fills.
func (s *Session) SetAddressLine(number, complement string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.editable(); err != nil {
		return err
	}
	s.address.Number = number
	s.address.Complement = complement
	return nil
}

func (s *Session) SetCustomer(c Customer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.editable(); err != nil {
		return err
	}
	s.customer = Customer{
		Name:  c.Name,
		Email: c.Email,
		CPF:   mask.CPF(c.CPF),
		Phone: mask.Phone(c.Phone),
	}
	return nil
}

func (s *Session) SetCard(c Card) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.editable(); err != nil {
		return err
	}
	s.card = Card{
		Number: mask.CardNumber(c.Number),
		Name:   c.Name,
		Expiry: mask.Expiry(c.Expiry),
		CVV:    mask.CVV(c.CVV),
	}
	return nil
}

func (s *Session) SelectShipping(id domain.ShippingID) error {
	if _, ok := domain.Shipping(id); !ok {
		return ErrUnknownShipping
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.editable(); err != nil {
		return err
	}
	s.shippingID = id
	return nil
}

func (s *Session) SelectPaymentMethod(m domain.PaymentMethod) error {
	if !m.Valid() {
		return ErrUnknownMethod
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.editable(); err != nil {
		return err
	}
	s.method = m
	return nil
}

// shippingPrice is zero until a lookup has made the options visible.
func (s *Session) shippingPrice() decimal.Decimal {
	if !s.shippingVisible {
		return decimal.Zero
	}
	o, _ := domain.Shipping(s.shippingID)
	return o.Price
}

func (s *Session) total() decimal.Decimal { return s.subtotal.Add(s.shippingPrice()) }

// Total is the subtotal plus the selected shipping price once shipping
// options are visible.
func (s *Session) Total() decimal.Decimal {
	s.syncCart()
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.total()
}

// Finalize submits the form with the selected payment method.
//
// Card never reaches a provider: the session shows three status messages and
// lands in card_error. PIX validates the form first; a failure leaves the
// stage at filling and returns a *validate.FieldError. Otherwise the charge
// is created in the background and Settled is closed once the stage has
// moved to pix_success or back to filling.
//
// The amount is taken from the cart as it is now, not as it was when the
// session was opened. An emptied cart returns ErrEmptyCart.
func (s *Session) Finalize() error {
	items, ok, err := s.loadCart()
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stage != domain.StageFilling {
		return ErrInvalidTransition
	}
	if ok {
		s.setItems(items)
	}
	return s.submit(s.method)
}

// RetryWithPix turns a declined card attempt into a PIX attempt.
// The form is validated as in Finalize; a validation failure leaves the
// stage at card_error with the field message set.
func (s *Session) RetryWithPix() error {
	items, ok, err := s.loadCart()
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stage != domain.StageCardError {
		return ErrInvalidTransition
	}
	if ok {
		s.setItems(items)
	}
	s.method = domain.MethodPix
	return s.submit(domain.MethodPix)
}

// Stage reports the current stage.
func (s *Session) Stage() domain.CheckoutStage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stage
}

// BackToForm leaves card_error for the form.
func (s *Session) BackToForm() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stage != domain.StageCardError {
		return ErrInvalidTransition
	}
	s.stage = domain.StageFilling
	return nil
}

// Close dismisses the PIX screen and forgets the charge.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stage != domain.StagePixSuccess {
		return ErrInvalidTransition
	}
	s.stopTimers()
	s.stopCopyTimer()
	s.stage = domain.StageFilling
	s.pix = nil
	s.copied = false
	return nil
}

// Dispose stops every timer and abandons any charge in flight.
func (s *Session) Dispose() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.run++
	s.stopTimers()
	s.stopCopyTimer()
	s.cancel()
	s.finish()
}

// Settled is closed when no submission is in progress.
func (s *Session) Settled() <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.done
}

// CopyPixCode returns the copy-and-paste code and raises the "copied" flag
// for two seconds.
func (s *Session) CopyPixCode() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pix == nil || s.pix.PixCode == nil || *s.pix.PixCode == "" {
		return "", ErrNoPixCode
	}
	s.copied = true
	s.stopCopyTimer()
	s.copyTimer = s.sched.AfterFunc(copiedFor, func() {
		s.mu.Lock()
		s.copied = false
		s.mu.Unlock()
	})
	return *s.pix.PixCode, nil
}

// submit runs with mu held. A failed check leaves the stage untouched.
func (s *Session) submit(method domain.PaymentMethod) error {
	if len(s.items) == 0 {
		return ErrEmptyCart
	}
	if method == domain.MethodCard {
		run := s.begin()
		s.step(run, stepDelay, MsgProcessing)
		s.step(run, 2*stepDelay, MsgCardIssuer)
		s.at(run, cardDeclineDelay, func() {
			s.stage = domain.StageCardError
			s.finish()
		})
		applog.Event("checkout.card.attempt", nil, map[string]any{"sid": s.ID})
		return nil
	}

	c := s.customer
	if ferr := validate.Customer(c.Name, c.Email, c.CPF, c.Phone); ferr != nil {
		s.apiError = ferr.Message
		return ferr
	}
	if s.gateway == nil {
		return ErrNoGateway
	}

	run := s.begin()
	s.step(run, stepDelay, MsgGeneratingPix)
	s.step(run, 2*stepDelay, MsgPreparingQR)
	charge := s.buildCharge()
	ctx := s.ctx
	go s.createPix(ctx, run, charge)
	return nil
}

func (s *Session) begin() uint64 {
	s.stopTimers()
	s.run++
	s.apiError = ""
	s.stage = domain.StageProcessing
	s.message = MsgCheckingStock
	s.done = make(chan struct{})
	return s.run
}

func (s *Session) finish() {
	select {
	case <-s.done:
	default:
		close(s.done)
	}
}

// at schedules f under mu, skipped if a newer run started or processing ended.
func (s *Session) at(run uint64, d time.Duration, f func()) {
	s.timers = append(s.timers, s.sched.AfterFunc(d, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.run != run || s.stage != domain.StageProcessing {
			return
		}
		f()
	}))
}

func (s *Session) step(run uint64, d time.Duration, msg string) {
	s.at(run, d, func() { s.message = msg })
}

func (s *Session) stopTimers() {
	for _, t := range s.timers {
		t.Stop()
	}
	s.timers = nil
}

func (s *Session) stopCopyTimer() {
	if s.copyTimer != nil {
		s.copyTimer.Stop()
		s.copyTimer = nil
	}
}

func (s *Session) buildCharge() payment.Charge {
	name, _ := validate.Name(s.customer.Name)
	email, _ := validate.Email(s.customer.Email)
	cpf, _ := validate.CPF(s.customer.CPF)
	phone, _ := validate.Phone(s.customer.Phone)

	ch := payment.Charge{
		Name:      name,
		Email:     email,
		Phone:     phone,
		CPF:       cpf,
		Amount:    domain.Cents(s.total()),
		ProductID: s.productID,
		ZipCode:   s.cep,
	}
	for _, it := range s.items {
		ch.Items = append(ch.Items, payment.LineItem{
			ID:        it.ID,
			Title:     it.Name,
			UnitPrice: domain.Cents(it.CurrentPrice),
			Quantity:  it.Quantity,
		})
	}
	if price := s.shippingPrice(); price.IsPositive() {
		o, _ := domain.Shipping(s.shippingID)
		ch.Items = append(ch.Items, payment.LineItem{
			ID:        string(o.ID),
			Title:     "Frete " + o.Name,
			UnitPrice: domain.Cents(price),
			Quantity:  1,
		})
	}
	if s.shippingVisible {
		addr := s.address
		ch.Shipping = &addr
	}
	return ch
}

// createPix runs without mu and applies the outcome if the run is still current.
func (s *Session) createPix(ctx context.Context, run uint64, ch payment.Charge) {
	out, err := s.gateway.CreatePix(ctx, ch)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.run != run {
		return
	}
	s.stopTimers()
	defer s.finish()

	switch {
	case err != nil:
		applog.Event("checkout.pix.error", err, map[string]any{"sid": s.ID, "gateway": s.gateway.Name()})
		s.apiError = MsgConnection
		s.stage = domain.StageFilling
	case !out.Success:
		msg := out.Message
		if msg == "" {
			msg = MsgPixFailed
		}
		s.apiError = payment.FailureMessage(msg, out.FieldErrors)
		s.stage = domain.StageFilling
		applog.Event("checkout.pix.rejected", nil, map[string]any{"sid": s.ID, "gateway": s.gateway.Name(), "message": s.apiError})
	default:
		res := out.Result
		s.pix = &res
		s.stage = domain.StagePixSuccess
		applog.Event("checkout.pix.created", nil, map[string]any{"sid": s.ID, "gateway": s.gateway.Name(), "amount": ch.Amount})
	}
}
