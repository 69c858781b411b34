package domain

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestCentsRounding(t *testing.T) {
	cases := map[string]int64{
		"100.00": 10000,
		"78.32":  7832,
		"0.005":  1,
		"18.724": 1872,
		"0":      0,
	}
	for in, want := range cases {
		if got := Cents(decimal.RequireFromString(in)); got != want {
			t.Fatalf("Cents(%s) = %d, want %d", in, got, want)
		}
	}
}

func TestBRL(t *testing.T) {
	if got := BRL(decimal.RequireFromString("118.7")); got != "R$ 118,70" {
		t.Fatalf("BRL = %q", got)
	}
}

func TestDiscountPercent(t *testing.T) {
	p := Product{OldPrice: decimal.RequireFromString("147.90"), CurrentPrice: decimal.RequireFromString("78.32")}
	if got := p.DiscountPercent(); got != 47 {
		t.Fatalf("discount = %d, want 47", got)
	}
	if got := (Product{}).DiscountPercent(); got != 0 {
		t.Fatalf("zero product discount = %d", got)
	}
}

func TestShippingLookup(t *testing.T) {
	o, ok := Shipping(ShippingPAC)
	if !ok || o.Price.String() != "18.72" {
		t.Fatalf("pac = %+v ok=%v", o, ok)
	}
	if _, ok := Shipping("drone"); ok {
		t.Fatal("unknown option resolved")
	}
}
