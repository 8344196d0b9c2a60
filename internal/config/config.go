// Package config loads application configuration from the environment into
// an explicit struct handed to component constructors.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config aggregates everything the process needs at startup.
type Config struct {
	MongoURI      string
	MongoDatabase string

	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	StripeSecretKey string
	UPIID           string
	ReceiptDir      string

	Logging LoggingConfig
	Profile Profile
}

// LoggingConfig controls structured logging output.
type LoggingConfig struct {
	Level  string
	Format string // text|json
}

// Profile toggles the optional submission requirements that differed between
// deployments of the original service.
type Profile struct {
	RequirePhone   bool
	RequirePurpose bool
	RequireAddress bool
}

const (
	defaultPort         = "8080"
	defaultDatabase     = "charitydb"
	defaultUPIID        = "juleeperween@ybl"
	defaultReceiptDir   = "receipts"
	defaultReadTimeout  = 10 * time.Second
	defaultWriteTimeout = 15 * time.Second
)

// Load reads configuration from environment variables, applying defaults.
// MONGO_URI is the only required value.
func Load() (Config, error) {
	cfg := Config{
		MongoURI:        os.Getenv("MONGO_URI"),
		MongoDatabase:   valueOrDefault("MONGO_DATABASE", defaultDatabase),
		Port:            valueOrDefault("PORT", defaultPort),
		ReadTimeout:     defaultReadTimeout,
		WriteTimeout:    defaultWriteTimeout,
		StripeSecretKey: os.Getenv("STRIPE_SECRET_KEY"),
		UPIID:           valueOrDefault("UPI_ID", defaultUPIID),
		ReceiptDir:      valueOrDefault("RECEIPT_DIR", defaultReceiptDir),
		Logging: LoggingConfig{
			Level:  valueOrDefault("LOG_LEVEL", "info"),
			Format: valueOrDefault("LOG_FORMAT", "text"),
		},
		Profile: Profile{
			RequirePhone:   parseBoolWithDefault("REQUIRE_PHONE", false),
			RequirePurpose: parseBoolWithDefault("REQUIRE_PURPOSE", false),
			RequireAddress: parseBoolWithDefault("REQUIRE_ADDRESS", false),
		},
	}

	if cfg.MongoURI == "" {
		return Config{}, fmt.Errorf("MONGO_URI environment variable not set")
	}

	if v := os.Getenv("SERVER_READ_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid SERVER_READ_TIMEOUT: %w", err)
		}
		cfg.ReadTimeout = d
	}
	if v := os.Getenv("SERVER_WRITE_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid SERVER_WRITE_TIMEOUT: %w", err)
		}
		cfg.WriteTimeout = d
	}

	return cfg, nil
}

func valueOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseBoolWithDefault(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		val, err := strconv.ParseBool(v)
		if err != nil {
			return fallback
		}
		return val
	}
	return fallback
}
