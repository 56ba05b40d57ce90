// Package config loads and validates environment variables at startup.
// Fail-fast: if a required variable is missing or malformed, the process
// exits with an error.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Store drivers.
const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Config holds all runtime configuration for the hiring service.
type Config struct {
	StoreDriver         string
	DatabaseURL         string
	RedisURL            string // empty disables events, assessment ingestion and rate limiting
	HTTPPort            string
	GRPCPort            string // empty disables the gRPC server
	RecountInterval     int    // minutes between counter reconciliation sweeps
	InterviewSetsStatus bool
	ApplyRateLimit      int
	ApplyRateWindow     time.Duration
	LogLevel            slog.Level
	SeedFile            string // YAML users/jobs fixture loaded into the memory store
}

// Load reads a .env file when present, then environment variables, and
// returns a validated Config. Values already set in the environment take
// precedence over the file.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	return FromEnv()
}

// FromEnv builds a Config from the process environment only.
func FromEnv() (*Config, error) {
	driver := getEnv("STORE_DRIVER", DriverPostgres)
	if driver != DriverPostgres && driver != DriverMemory {
		return nil, fmt.Errorf("STORE_DRIVER must be %q or %q, got %q", DriverPostgres, DriverMemory, driver)
	}

	dbURL := os.Getenv("DATABASE_URL")
	if driver == DriverPostgres && dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	interval, err := getPositiveInt("RECOUNT_INTERVAL_MINUTES", 60)
	if err != nil {
		return nil, err
	}
	limit, err := getPositiveInt("APPLY_RATE_LIMIT", 5)
	if err != nil {
		return nil, err
	}

	window := time.Minute
	if s := os.Getenv("APPLY_RATE_WINDOW"); s != "" {
		v, err := time.ParseDuration(s)
		if err != nil || v <= 0 {
			return nil, fmt.Errorf("APPLY_RATE_WINDOW must be a positive duration, got %q", s)
		}
		window = v
	}

	setsStatus := false
	if s := os.Getenv("INTERVIEW_SETS_STATUS"); s != "" {
		v, err := strconv.ParseBool(s)
		if err != nil {
			return nil, fmt.Errorf("INTERVIEW_SETS_STATUS must be a boolean, got %q", s)
		}
		setsStatus = v
	}

	level := slog.LevelInfo
	if s := os.Getenv("LOG_LEVEL"); s != "" {
		if err := level.UnmarshalText([]byte(strings.ToUpper(s))); err != nil {
			return nil, fmt.Errorf("LOG_LEVEL must be debug, info, warn or error, got %q", s)
		}
	}

	return &Config{
		StoreDriver:         driver,
		DatabaseURL:         dbURL,
		RedisURL:            os.Getenv("REDIS_URL"),
		HTTPPort:            getEnv("HIRING_HTTP_PORT", "8083"),
		GRPCPort:            getEnv("HIRING_GRPC_PORT", "9083"),
		RecountInterval:     interval,
		InterviewSetsStatus: setsStatus,
		ApplyRateLimit:      limit,
		ApplyRateWindow:     window,
		LogLevel:            level,
		SeedFile:            os.Getenv("SEED_FILE"),
	}, nil
}

// getEnv returns the variable when it is set, even to the empty string.
func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getPositiveInt(key string, fallback int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil || v < 1 {
		return 0, fmt.Errorf("%s must be a positive integer, got %q", key, s)
	}
	return v, nil
}
