package handlers

import (
	"albumstore/internal/address"
	"albumstore/internal/checkout"
	"albumstore/internal/config"
	"albumstore/internal/countdown"
	"albumstore/internal/payment"
	"albumstore/internal/payment/bolt"
	"albumstore/internal/payment/fruitfy"
	"albumstore/internal/repos"
	"albumstore/internal/services"

	"github.com/jmoiron/sqlx"
)

type Deps struct {
	CatalogHandler  *CatalogHandler
	CartHandler     *CartHandler
	CheckoutHandler *CheckoutHandler
	OfferHandler    *OfferHandler

	Checkout *services.CheckoutService
}

// NewGateway picks the PIX provider named by cfg.PaymentProvider.
func NewGateway(cfg config.Config) payment.Gateway {
	if cfg.PaymentProvider == "bolt" {
		return bolt.New(cfg.ProxyBaseURL, cfg.HTTPTimeout)
	}
	return fruitfy.New(cfg.ProxyBaseURL, cfg.HTTPTimeout, cfg.FruitfyProductID)
}

func NewDeps(db *sqlx.DB, cfg config.Config, offer *countdown.Offer) *Deps {
	return NewDepsWith(db, cfg, offer, address.New(cfg.CEPBaseURL, cfg.HTTPTimeout), NewGateway(cfg))
}

// NewDepsWith is NewDeps with the two upstream collaborators supplied.
func NewDepsWith(db *sqlx.DB, cfg config.Config, offer *countdown.Offer, lookup checkout.AddressLookup, gw payment.Gateway) *Deps {
	prodRepo := repos.NewProductRepo(db)
	cartRepo := repos.NewCartRepo(db)

	catalogSvc := services.NewCatalogService(prodRepo, cartRepo)
	cartSvc := services.NewCartService(cartRepo, prodRepo)
	checkoutSvc := services.NewCheckoutService(cartSvc, lookup, gw, cfg.FruitfyProductID)

	return &Deps{
		CatalogHandler:  &CatalogHandler{Catalog: catalogSvc},
		CartHandler:     &CartHandler{Cart: cartSvc},
		CheckoutHandler: &CheckoutHandler{Checkout: checkoutSvc},
		OfferHandler:    &OfferHandler{Offer: offer},
		Checkout:        checkoutSvc,
	}
}
