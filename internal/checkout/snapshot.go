package checkout

import (
	"github.com/shopspring/decimal"

	"albumstore/internal/domain"
	"albumstore/internal/payment"
)

// Snapshot is a read-only copy of a session for rendering.
type Snapshot struct {
	ID              string                  `json:"id"`
	Stage           domain.CheckoutStage    `json:"stage"`
	Message         string                  `json:"message,omitempty"`
	Error           string                  `json:"error,omitempty"`
	PaymentMethod   domain.PaymentMethod    `json:"paymentMethod"`
	Customer        Customer                `json:"customer"`
	Card            Card                    `json:"card"`
	CEP             string                  `json:"cep"`
	CEPLoading      bool                    `json:"cepLoading"`
	Address         domain.Address          `json:"address"`
	ShippingVisible bool                    `json:"shippingVisible"`
	ShippingOptions []domain.ShippingOption `json:"shippingOptions,omitempty"`
	Shipping        domain.ShippingOption   `json:"shipping"`
	Items           []domain.CartItem       `json:"items"`
	Subtotal        decimal.Decimal         `json:"subtotal"`
	ShippingPrice   decimal.Decimal         `json:"shippingPrice"`
	Total           decimal.Decimal         `json:"total"`
	TotalLabel      string                  `json:"totalLabel"`
	Pix             *domain.PixResult       `json:"pix,omitempty"`
	QRImageURL      string                  `json:"qrImageUrl,omitempty"`
	Copied          bool                    `json:"copied"`
}

func (s *Session) Snapshot() Snapshot {
	s.syncCart()
	s.mu.Lock()
	defer s.mu.Unlock()

	shipping, _ := domain.Shipping(s.shippingID)
	snap := Snapshot{
		ID:              s.ID,
		Stage:           s.stage,
		Error:           s.apiError,
		PaymentMethod:   s.method,
		Customer:        s.customer,
		Card:            s.card,
		CEP:             s.cep,
		CEPLoading:      s.cepLoading,
		Address:         s.address,
		ShippingVisible: s.shippingVisible,
		Shipping:        shipping,
		Items:           append([]domain.CartItem(nil), s.items...),
		Subtotal:        s.subtotal,
		ShippingPrice:   s.shippingPrice(),
		Total:           s.total(),
		TotalLabel:      domain.BRL(s.total()),
		Copied:          s.copied,
	}
	if s.stage == domain.StageProcessing {
		snap.Message = s.message
	}
	if s.shippingVisible {
		snap.ShippingOptions = domain.ShippingOptions
	}
	if s.pix != nil {
		p := *s.pix
		snap.Pix = &p
		snap.QRImageURL = payment.QRImageURL(p)
	}
	return snap
}
