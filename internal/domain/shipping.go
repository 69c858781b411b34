package domain

import "github.com/shopspring/decimal"

type ShippingID string

const (
	ShippingFree  ShippingID = "free"
	ShippingPAC   ShippingID = "pac"
	ShippingSEDEX ShippingID = "sedex"
)

type ShippingOption struct {
	ID    ShippingID      `json:"id"`
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
	Time  string          `json:"time"`
}

var ShippingOptions = []ShippingOption{
	{ID: ShippingFree, Name: "Frete Grátis", Price: decimal.Zero, Time: "5 a 7 dias úteis"},
	{ID: ShippingPAC, Name: "PAC", Price: decimal.RequireFromString("18.72"), Time: "4 a 6 dias úteis"},
	{ID: ShippingSEDEX, Name: "SEDEX", Price: decimal.RequireFromString("26.91"), Time: "1 a 3 dias úteis"},
}

// Shipping returns the option with the given id.
func Shipping(id ShippingID) (ShippingOption, bool) {
	for _, o := range ShippingOptions {
		if o.ID == id {
			return o, true
		}
	}
	return ShippingOption{}, false
}
