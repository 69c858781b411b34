package services_test

import (
	"errors"
	"testing"

	"github.com/jmoiron/sqlx"

	"albumstore/internal/repos"
	"albumstore/internal/services"
)

func memdb(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := repos.OpenDB(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func newCart(t *testing.T) *services.CartService {
	db := memdb(t)
	return services.NewCartService(repos.NewCartRepo(db), repos.NewProductRepo(db))
}

func TestCartService_AddTwiceIncrements(t *testing.T) {
	svc := newCart(t)
	sid := "visitor-1"

	v, err := svc.Add(sid, "kit-amador")
	if err != nil {
		t.Fatal(err)
	}
	if !v.Open {
		t.Fatal("add should open the cart")
	}
	v, err = svc.Add(sid, "kit-amador")
	if err != nil {
		t.Fatal(err)
	}
	if len(v.Items) != 1 || v.Items[0].Quantity != 2 {
		t.Fatalf("want one line with qty 2, got %+v", v.Items)
	}
	if v.Count != 2 || v.Subtotal.String() != "156.64" || v.Label != "R$ 156,64" {
		t.Fatalf("bad totals: count=%d subtotal=%s label=%s", v.Count, v.Subtotal, v.Label)
	}
}

func TestCartService_UnknownProduct(t *testing.T) {
	svc := newCart(t)
	if _, err := svc.Add("visitor-1", "ghost"); !errors.Is(err, services.ErrUnknownProduct) {
		t.Fatalf("want ErrUnknownProduct, got %v", err)
	}
	if _, err := svc.UpdateQuantity("visitor-1", "kit-amador", 1); !errors.Is(err, services.ErrUnknownProduct) {
		t.Fatalf("want ErrUnknownProduct for missing line, got %v", err)
	}
}

func TestCartService_QuantityNeverBelowOne(t *testing.T) {
	svc := newCart(t)
	sid := "visitor-2"
	if _, err := svc.Add(sid, "30-packs"); err != nil {
		t.Fatal(err)
	}
	for _, d := range []int{-1, -3, 2, -10} {
		v, err := svc.UpdateQuantity(sid, "30-packs", d)
		if err != nil {
			t.Fatal(err)
		}
		if v.Items[0].Quantity < 1 {
			t.Fatalf("quantity %d after delta %d", v.Items[0].Quantity, d)
		}
	}
}

func TestCartService_SubtotalMatchesLines(t *testing.T) {
	svc := newCart(t)
	sid := "visitor-3"
	for _, id := range []string{"30-packs", "60-packs", "30-packs", "album-capa-dura"} {
		if _, err := svc.Add(sid, id); err != nil {
			t.Fatal(err)
		}
	}
	v, err := svc.Remove(sid, "60-packs")
	if err != nil {
		t.Fatal(err)
	}
	// 2 x 35.91 + 57.90
	if v.Subtotal.String() != "129.72" || v.Count != 3 {
		t.Fatalf("subtotal=%s count=%d", v.Subtotal, v.Count)
	}

	if _, err := svc.Remove(sid, "150-packs"); err != nil {
		t.Fatalf("removing an absent line should be a no-op, got %v", err)
	}

	for _, id := range []string{"30-packs", "album-capa-dura"} {
		if _, err := svc.Remove(sid, id); err != nil {
			t.Fatal(err)
		}
	}
	v, _ = svc.View(sid)
	if v.Count != 0 || !v.Subtotal.IsZero() {
		t.Fatalf("want empty cart, got %+v", v)
	}
}

func TestCatalogService_SectionsFlagCartItems(t *testing.T) {
	db := memdb(t)
	carts := repos.NewCartRepo(db)
	prods := repos.NewProductRepo(db)
	cart := services.NewCartService(carts, prods)
	cat := services.NewCatalogService(prods, carts)

	if _, err := cart.Add("visitor-4", "kit-colecionador"); err != nil {
		t.Fatal(err)
	}
	secs, err := cat.Sections("visitor-4")
	if err != nil {
		t.Fatal(err)
	}
	if len(secs) != 3 || secs[0].Title != "Kits em Destaque Panini 2026" {
		t.Fatalf("unexpected sections %+v", secs)
	}
	var flagged []string
	for _, s := range secs {
		for _, p := range s.Products {
			if p.InCart {
				flagged = append(flagged, p.ID)
			}
		}
	}
	if len(flagged) != 1 || flagged[0] != "kit-colecionador" {
		t.Fatalf("inCart flags = %v", flagged)
	}

	if _, err := cat.GetProduct("ghost"); !errors.Is(err, services.ErrUnknownProduct) {
		t.Fatalf("want ErrUnknownProduct, got %v", err)
	}
}
