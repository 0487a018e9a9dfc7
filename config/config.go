// Package config collects all runtime configuration in one explicit object,
// built once in main and passed into services. Core logic never reads the
// environment directly.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/shopspring/decimal"
)

type Config struct {
	Port        string
	DatabaseURL string // full DSN; overrides the discrete DB_* values
	DBHost      string
	DBPort      string
	DBUser      string
	DBPassword  string
	DBName      string

	JWTSecret   string
	AdminAPIKey string

	// Shipping rule: free when the discounted subtotal reaches the
	// threshold, otherwise a flat fee is added.
	FreeShippingThreshold decimal.Decimal
	ShippingFee           decimal.Decimal

	GuestTokenTTL time.Duration
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func decenv(key, def string) decimal.Decimal {
	v := getenv(key, def)
	d, err := decimal.NewFromString(v)
	if err != nil {
		d, _ = decimal.NewFromString(def)
	}
	return d
}

// Load collects configuration from environment with defaults.
func Load() Config {
	return Config{
		Port:        getenv("PORT", "8080"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		DBHost:      getenv("DB_HOST", "localhost"),
		DBPort:      getenv("DB_PORT", "5432"),
		DBUser:      getenv("DB_USER", "postgres"),
		DBPassword:  os.Getenv("DB_PASSWORD"),
		DBName:      getenv("DB_NAME", "pickle_store"),

		JWTSecret:   os.Getenv("JWT_SECRET"),
		AdminAPIKey: os.Getenv("ADMIN_API_KEY"),

		FreeShippingThreshold: decenv("FREE_SHIPPING_THRESHOLD", "499"),
		ShippingFee:           decenv("SHIPPING_FEE", "49"),

		GuestTokenTTL: 24 * time.Hour,
	}
}

// DSN returns the postgres connection string.
func (c Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort,
	)
}
