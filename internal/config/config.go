// Package config provides runtime configuration values for the service.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds configuration knobs for the HTTP server, the external offers
// service, and the background sync loops.
type Config struct {
	HTTPAddr        string
	ShutdownTimeout time.Duration

	OffersBaseURL        string
	OffersRefreshToken   string
	OffersRequestTimeout time.Duration
	OffersRateLimitRPS   int

	TokenRefreshInterval time.Duration
	OfferSyncInterval    time.Duration
	FetchConcurrency     int
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func atoienv(key string, def int) int {
	v := getenv(key, "")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func durenvs(key string, defSec int) time.Duration {
	sec := atoienv(key, defSec)
	return time.Duration(sec) * time.Second
}

// Load collects configuration from environment with defaults. A .env file in
// the working directory is applied first when present.
func Load() Config {
	_ = godotenv.Load()
	return Config{
		HTTPAddr:        getenv("HTTP_ADDR", ":8080"),
		ShutdownTimeout: durenvs("SHUTDOWN_TIMEOUT", 15),

		OffersBaseURL:        getenv("OFFERS_BASE_URL", "http://localhost:8081"),
		OffersRefreshToken:   getenv("OFFERS_REFRESH_TOKEN", ""),
		OffersRequestTimeout: durenvs("OFFERS_REQUEST_TIMEOUT_SEC", 10),
		OffersRateLimitRPS:   atoienv("OFFERS_RATE_LIMIT_RPS", 10),

		TokenRefreshInterval: durenvs("TOKEN_REFRESH_INTERVAL_SEC", 300),
		OfferSyncInterval:    durenvs("OFFER_SYNC_INTERVAL_SEC", 60),
		FetchConcurrency:     atoienv("FETCH_CONCURRENCY", 4),
	}
}
