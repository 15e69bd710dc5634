// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package config handles application configuration loading from environment
// variables. It provides a centralized Config struct used across the application.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"inkwell/internal/models"
)

// Storage drivers accepted by STORAGE_DRIVER.
const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

// Config holds all application configuration values loaded from the environment.
type Config struct {
	// Server settings
	Host string
	Port string
	Env  string // "development", "production", "testing"

	// Persistence backend: "postgres" or "memory"
	StorageDriver string

	// PostgreSQL connection
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	// Valkey (Redis-compatible session store shared with the identity provider)
	ValkeyHost     string
	ValkeyPort     string
	ValkeyPassword string

	// Moderation state given to newly created comments.
	CommentInitialStatus models.CommentStatus

	// Write requests (POST) allowed per client IP per minute.
	RateLimitWrites int

	// Development seed account
	SeedAdminID    string
	SeedAdminEmail string
}

// Load reads configuration from environment variables, applying defaults
// for development where appropriate. A .env file in the working directory
// is loaded first when present; variables already set in the environment
// win. Returns an error if critical values are missing in production mode.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := &Config{
		Host: envOrDefault("APP_HOST", "0.0.0.0"),
		Port: envOrDefault("APP_PORT", "8080"),
		Env:  envOrDefault("APP_ENV", "development"),

		StorageDriver: strings.ToLower(envOrDefault("STORAGE_DRIVER", StoragePostgres)),

		DBHost:     envOrDefault("POSTGRES_HOST", "localhost"),
		DBPort:     envOrDefault("POSTGRES_PORT", "5432"),
		DBUser:     envOrDefault("POSTGRES_USER", "inkwell"),
		DBPassword: envOrDefault("POSTGRES_PASSWORD", "changeme"),
		DBName:     envOrDefault("POSTGRES_DB", "inkwell"),

		ValkeyHost:     envOrDefault("VALKEY_HOST", "localhost"),
		ValkeyPort:     envOrDefault("VALKEY_PORT", "6379"),
		ValkeyPassword: os.Getenv("VALKEY_PASSWORD"),

		CommentInitialStatus: models.CommentStatus(strings.ToUpper(envOrDefault("COMMENT_INITIAL_STATUS", string(models.CommentStatusPending)))),

		SeedAdminID:    envOrDefault("SEED_ADMIN_ID", "admin"),
		SeedAdminEmail: envOrDefault("SEED_ADMIN_EMAIL", "admin@blog.com"),
	}

	limit, err := strconv.Atoi(envOrDefault("RATE_LIMIT_WRITES", "30"))
	if err != nil || limit <= 0 {
		return nil, fmt.Errorf("RATE_LIMIT_WRITES must be a positive integer")
	}
	cfg.RateLimitWrites = limit

	switch cfg.StorageDriver {
	case StoragePostgres, StorageMemory:
	default:
		return nil, fmt.Errorf("STORAGE_DRIVER must be %q or %q, got %q", StoragePostgres, StorageMemory, cfg.StorageDriver)
	}

	// A comment cannot start out rejected.
	switch cfg.CommentInitialStatus {
	case models.CommentStatusPending, models.CommentStatusApproved:
	default:
		return nil, fmt.Errorf("COMMENT_INITIAL_STATUS must be PENDING or APPROVED, got %q", cfg.CommentInitialStatus)
	}

	if cfg.Env == "production" {
		if cfg.DBPassword == "changeme" {
			return nil, fmt.Errorf("POSTGRES_PASSWORD must be set in production")
		}
		if cfg.StorageDriver == StorageMemory {
			return nil, fmt.Errorf("STORAGE_DRIVER=memory is not allowed in production")
		}
	}

	return cfg, nil
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName,
	)
}

// Addr returns the server listen address (host:port).
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// IsDev returns true if the application is running in development mode.
func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// envOrDefault reads an environment variable, returning a fallback if unset or empty.
func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
