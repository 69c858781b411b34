package services

import (
	"database/sql"
	"errors"

	"albumstore/internal/domain"
	"albumstore/internal/repos"
)

type CatalogService struct {
	Prods *repos.ProductRepo
	Carts *repos.CartRepo
}

func NewCatalogService(prods *repos.ProductRepo, carts *repos.CartRepo) *CatalogService {
	return &CatalogService{Prods: prods, Carts: carts}
}

type ProductCard struct {
	domain.Product
	Discount int64 `json:"discountPercent"`
	InCart   bool  `json:"inCart"`
}

type Section struct {
	Category domain.Category `json:"category"`
	Title    string          `json:"title"`
	Products []ProductCard   `json:"products"`
}

// Sections groups the catalog by category in display order and flags the
// products already in the visitor's cart.
func (s *CatalogService) Sections(sessionID string) ([]Section, error) {
	inCart := map[string]bool{}
	if sessionID != "" && s.Carts != nil {
		cartID, err := s.Carts.EnsureCart(sessionID)
		if err != nil {
			return nil, err
		}
		lines, err := s.Carts.Lines(cartID)
		if err != nil {
			return nil, err
		}
		for _, l := range lines {
			inCart[l.ID] = true
		}
	}

	out := make([]Section, 0, len(domain.Categories))
	for _, cat := range domain.Categories {
		title, err := s.Prods.CategoryTitle(cat)
		if err != nil {
			return nil, err
		}
		prods, err := s.Prods.ListByCategory(cat)
		if err != nil {
			return nil, err
		}
		sec := Section{Category: cat, Title: title, Products: make([]ProductCard, 0, len(prods))}
		for _, p := range prods {
			sec.Products = append(sec.Products, ProductCard{Product: p, Discount: p.DiscountPercent(), InCart: inCart[p.ID]})
		}
		out = append(out, sec)
	}
	return out, nil
}

func (s *CatalogService) GetProduct(id string) (ProductCard, error) {
	p, err := s.Prods.Get(id)
	if errors.Is(err, sql.ErrNoRows) {
		return ProductCard{}, ErrUnknownProduct
	}
	if err != nil {
		return ProductCard{}, err
	}
	return ProductCard{Product: p, Discount: p.DiscountPercent()}, nil
}
