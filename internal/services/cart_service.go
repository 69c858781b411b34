package services

import (
	"database/sql"
	"errors"

	"github.com/shopspring/decimal"

	"albumstore/internal/domain"
	"albumstore/internal/repos"
)

var ErrUnknownProduct = errors.New("unknown product")

type CartService struct {
	Carts *repos.CartRepo
	Prods *repos.ProductRepo
}

func NewCartService(carts *repos.CartRepo, prods *repos.ProductRepo) *CartService {
	return &CartService{Carts: carts, Prods: prods}
}

// CartView is the cart as shown in the drawer. Count and Subtotal are always
// derived from Items.
type CartView struct {
	Items    []domain.CartItem `json:"items"`
	Count    int               `json:"count"`
	Subtotal decimal.Decimal   `json:"subtotal"`
	Label    string            `json:"subtotalLabel"`
	Open     bool              `json:"open"`
}

// Add puts one more unit of productID in the cart and opens the drawer.
func (s *CartService) Add(sessionID, productID string) (CartView, error) {
	if _, err := s.Prods.Get(productID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return CartView{}, ErrUnknownProduct
		}
		return CartView{}, err
	}
	cartID, err := s.Carts.EnsureCart(sessionID)
	if err != nil {
		return CartView{}, err
	}
	if err := s.Carts.AddOne(cartID, productID); err != nil {
		return CartView{}, err
	}
	v, err := s.View(sessionID)
	v.Open = true
	return v, err
}

// Remove drops the line; removing a product that is not in the cart is a no-op.
func (s *CartService) Remove(sessionID, productID string) (CartView, error) {
	cartID, err := s.Carts.EnsureCart(sessionID)
	if err != nil {
		return CartView{}, err
	}
	if err := s.Carts.Remove(cartID, productID); err != nil {
		return CartView{}, err
	}
	return s.View(sessionID)
}

// UpdateQuantity adds delta to an existing line; quantity never drops below 1.
func (s *CartService) UpdateQuantity(sessionID, productID string, delta int) (CartView, error) {
	cartID, err := s.Carts.EnsureCart(sessionID)
	if err != nil {
		return CartView{}, err
	}
	ok, err := s.Carts.AdjustQty(cartID, productID, delta)
	if err != nil {
		return CartView{}, err
	}
	if !ok {
		return CartView{}, ErrUnknownProduct
	}
	return s.View(sessionID)
}

func (s *CartService) View(sessionID string) (CartView, error) {
	cartID, err := s.Carts.EnsureCart(sessionID)
	if err != nil {
		return CartView{}, err
	}
	items, err := s.Carts.Lines(cartID)
	if err != nil {
		return CartView{}, err
	}
	v := CartView{Items: items, Subtotal: decimal.Zero}
	for _, it := range items {
		v.Count += it.Quantity
		v.Subtotal = v.Subtotal.Add(it.LineTotal())
	}
	v.Label = domain.BRL(v.Subtotal)
	return v, nil
}
