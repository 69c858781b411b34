package domain

import "github.com/shopspring/decimal"

type Category string

const (
	CategoryKit   Category = "kit"
	CategoryAlbum Category = "album"
	CategoryPacks Category = "packs"
)

// Categories lists the storefront sections in display order.
var Categories = []Category{CategoryKit, CategoryAlbum, CategoryPacks}

func (c Category) Valid() bool {
	switch c {
	case CategoryKit, CategoryAlbum, CategoryPacks:
		return true
	}
	return false
}

type Product struct {
	ID           string          `db:"id" json:"id"`
	Name         string          `db:"name" json:"name"`
	Description  string          `db:"description" json:"description"`
	OldPrice     decimal.Decimal `db:"old_price" json:"oldPrice"`
	CurrentPrice decimal.Decimal `db:"current_price" json:"currentPrice"`
	Image        string          `db:"image" json:"image"`
	Category     Category        `db:"category" json:"category"`
	Highlight    bool            `db:"highlight" json:"highlight,omitempty"`
}

// DiscountPercent is the rounded markdown from OldPrice to CurrentPrice.
func (p Product) DiscountPercent() int64 {
	if !p.OldPrice.IsPositive() {
		return 0
	}
	return p.OldPrice.Sub(p.CurrentPrice).Div(p.OldPrice).Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}

type CartItem struct {
	Product
	Quantity int `db:"qty" json:"quantity"`
}

// LineTotal is CurrentPrice × Quantity.
func (it CartItem) LineTotal() decimal.Decimal {
	return it.CurrentPrice.Mul(decimal.NewFromInt(int64(it.Quantity)))
}

// Address is filled from one postal-code lookup; Number and Complement are
// typed by the customer and never touched by a lookup.
type Address struct {
	Street       string `json:"street"`
	Neighborhood string `json:"neighborhood"`
	City         string `json:"city"`
	State        string `json:"state"`
	Number       string `json:"number,omitempty"`
	Complement   string `json:"complement,omitempty"`
}
