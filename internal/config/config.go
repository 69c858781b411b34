package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port     string
	DBDSN    string
	LogFile  string
	AppName  string
	BodyMax  int
	RateMax  int
	RateSpan time.Duration

	ProxyBaseURL     string
	CEPBaseURL       string
	PaymentProvider  string
	FruitfyProductID string
	HTTPTimeout      time.Duration

	UnitsStart   int
	OfferSeconds int

	// CheckoutIdle is how long an untouched checkout session is kept.
	CheckoutIdle time.Duration
}

// Load reads the environment, after merging a .env file from the working
// directory when one exists. Variables already set win over the file.
func Load() Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("[config] could not read .env: %v", err)
	}

	cfg := Config{
		Port:             env("PORT", "8080"),
		DBDSN:            env("DB_DSN", "file::memory:?cache=shared"), // carts live only as long as the process
		LogFile:          os.Getenv("LOG_FILE"),
		AppName:          env("APP_NAME", "albumstore"),
		BodyMax:          1 << 20, // 1 MiB
		RateMax:          envInt("RATE_MAX", 120),
		RateSpan:         time.Minute,
		ProxyBaseURL:     env("PROXY_BASE_URL", "http://localhost:3000"),
		CEPBaseURL:       env("CEP_BASE_URL", "https://viacep.com.br"),
		PaymentProvider:  env("PAYMENT_PROVIDER", "fruitfy"),
		FruitfyProductID: os.Getenv("FRUITFY_PRODUCT_ID"),
		HTTPTimeout:      envDuration("HTTP_TIMEOUT", 15*time.Second),
		UnitsStart:       envInt("UNITS_START", 118),
		OfferSeconds:     envInt("OFFER_SECONDS", 900),
		CheckoutIdle:     envDuration("CHECKOUT_IDLE", 30*time.Minute),
	}
	log.Printf("[config] PORT=%s DB_DSN=%s LOG_FILE=%s PROXY_BASE_URL=%s CEP_BASE_URL=%s PAYMENT_PROVIDER=%s",
		cfg.Port, cfg.DBDSN, cfg.LogFile, cfg.ProxyBaseURL, cfg.CEPBaseURL, cfg.PaymentProvider)
	return cfg
}

func env(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("[config] %s=%q is not a number, using %d", key, v, def)
		return def
	}
	return n
}

func envDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Printf("[config] %s=%q is not a duration, using %s", key, v, def)
		return def
	}
	return d
}
