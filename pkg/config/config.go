package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds the application configuration
type Config struct {
	Environment         string
	ServerPort          int
	LogLevel            string
	RedisURL            string
	DatabaseHost        string
	DatabasePort        int
	DatabaseUser        string
	DatabasePassword    string
	DatabaseName        string
	DatabaseSSLMode     string
	JWTSecret           string
	JWTIssuer           string
	IdentityMode        string // "external" verifies provider tokens only, "local" also issues dev tokens
	StripeSecretKey     string
	PaymentCurrency     string
	CORSAllowedOrigins  []string
	DefaultPageSize     int
	ListingCacheTTLSecs int
	SweepIntervalMins   int
	RateLimitPerMinute  int
}

// Load reads configuration from the environment. A .env file in the working
// directory is loaded first when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	port, err := strconv.Atoi(getEnv("SERVER_PORT", "5000"))
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_PORT: %w", err)
	}

	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}

	pageSize, err := strconv.Atoi(getEnv("DEFAULT_PAGE_SIZE", "6"))
	if err != nil {
		return nil, fmt.Errorf("invalid DEFAULT_PAGE_SIZE: %w", err)
	}

	cacheTTL, err := strconv.Atoi(getEnv("LISTING_CACHE_TTL_SECONDS", "30"))
	if err != nil {
		return nil, fmt.Errorf("invalid LISTING_CACHE_TTL_SECONDS: %w", err)
	}

	sweepInterval, err := strconv.Atoi(getEnv("COUPON_SWEEP_INTERVAL_MINUTES", "10"))
	if err != nil {
		return nil, fmt.Errorf("invalid COUPON_SWEEP_INTERVAL_MINUTES: %w", err)
	}

	rateLimit, err := strconv.Atoi(getEnv("RATE_LIMIT_PER_MINUTE", "100"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_PER_MINUTE: %w", err)
	}

	return &Config{
		Environment:         getEnv("ENVIRONMENT", "development"),
		ServerPort:          port,
		LogLevel:            getEnv("LOG_LEVEL", "info"),
		RedisURL:            getEnv("REDIS_URL", "redis://localhost:6379"),
		DatabaseHost:        getEnv("DB_HOST", "localhost"),
		DatabasePort:        dbPort,
		DatabaseUser:        getEnv("DB_USER", "unitsphere"),
		DatabasePassword:    getEnv("DB_PASS", "dev"),
		DatabaseName:        getEnv("DB_NAME", "unitsphere"),
		DatabaseSSLMode:     getEnv("DB_SSLMODE", "disable"),
		JWTSecret:           getEnv("JWT_SECRET", ""),
		JWTIssuer:           getEnv("JWT_ISSUER", "unitsphere"),
		IdentityMode:        getEnv("IDP_MODE", "external"),
		StripeSecretKey:     getEnv("STRIPE_SECRET_KEY", ""),
		PaymentCurrency:     getEnv("PAYMENT_CURRENCY", "usd"),
		CORSAllowedOrigins:  parseCSVEnv("CORS_ALLOWED_ORIGINS", []string{"http://localhost:5173", "http://localhost:3000"}),
		DefaultPageSize:     pageSize,
		ListingCacheTTLSecs: cacheTTL,
		SweepIntervalMins:   sweepInterval,
		RateLimitPerMinute:  rateLimit,
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseCSVEnv(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			trimmed := strings.TrimSpace(p)
			if trimmed != "" {
				out = append(out, trimmed)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return defaultValue
}
