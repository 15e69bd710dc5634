// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package main is the entry point for the Inkwell API server.
// It loads configuration, connects to services, sets up routing, and starts
// the HTTP server with graceful shutdown support.
package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"inkwell/internal/cache"
	"inkwell/internal/config"
	"inkwell/internal/database"
	"inkwell/internal/handlers"
	"inkwell/internal/middleware"
	"inkwell/internal/models"
	"inkwell/internal/router"
	"inkwell/internal/service"
	"inkwell/internal/session"
	"inkwell/internal/store"
	"inkwell/internal/store/memstore"
)

func main() {
	// Load configuration from environment variables (and .env when present).
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.SetDefault(newLogger(cfg, os.Stdout))

	slog.Info("configuration loaded",
		"env", cfg.Env,
		"addr", cfg.Addr(),
		"storage", cfg.StorageDriver,
		"comment_initial_status", cfg.CommentInitialStatus,
	)

	repo, closeRepo, err := openRepository(cfg)
	if err != nil {
		slog.Error("failed to open storage", "error", err)
		os.Exit(1)
	}
	defer closeRepo()

	// Connect to Valkey (session store shared with the identity provider,
	// and the write-rate counters).
	valkeyClient, err := cache.ConnectValkey(cfg.ValkeyHost, cfg.ValkeyPort, cfg.ValkeyPassword)
	if err != nil {
		slog.Error("failed to connect to valkey", "error", err)
		os.Exit(1)
	}
	defer valkeyClient.Close()

	// In non-development environments, mark session cookies as Secure (HTTPS-only).
	sessionStore := session.NewStore(valkeyClient, !cfg.IsDev())
	writes, stopWrites := newWriteLimiter(cfg, valkeyClient)
	defer stopWrites()

	postService := service.NewPostService(repo)
	commentService := service.NewCommentService(repo, cfg.CommentInitialStatus)

	r := router.New(router.Deps{
		Sessions: sessionStore,
		Writes:   writes,
		Posts:    handlers.NewPosts(postService, commentService),
		Comments: handlers.NewComments(commentService),
	})

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Start the server in a goroutine so we can listen for shutdown signals.
	go func() {
		slog.Info("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown: wait for SIGINT or SIGTERM, then drain connections.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutdown signal received", "signal", sig)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped gracefully")
}

// newLogger returns a text logger in development and a JSON logger elsewhere.
func newLogger(cfg *config.Config, w io.Writer) *slog.Logger {
	if cfg.IsDev() {
		return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo}))
}

// openRepository opens the configured storage backend. PostgreSQL is
// migrated on start and seeded in development; the memory backend is
// seeded with the admin account.
func openRepository(cfg *config.Config) (store.Repository, func(), error) {
	admin := database.SeedAdmin{ID: cfg.SeedAdminID, Email: cfg.SeedAdminEmail}

	if cfg.StorageDriver == config.StorageMemory {
		slog.Warn("using in-memory storage, data is lost on restart")
		st := memstore.New()
		_, err := st.AddUser(models.User{
			ID:    admin.ID,
			Name:  "Mr. Admin",
			Email: admin.Email,
			Role:  models.RoleAdmin,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("seed admin: %w", err)
		}
		return st, func() {}, nil
	}

	db, err := database.Connect(cfg.DSN())
	if err != nil {
		return nil, nil, err
	}
	closeDB := func() { closeQuietly(db) }

	if err := database.Migrate(db); err != nil {
		closeDB()
		return nil, nil, err
	}

	// Seed development data (no-op if data already exists).
	if cfg.IsDev() {
		if err := database.Seed(db, admin); err != nil {
			closeDB()
			return nil, nil, err
		}
	}

	return store.NewPG(db), closeDB, nil
}

// newWriteLimiter picks the limiter for POST routes. The memory driver runs
// as a single process and counts in-process; otherwise every instance
// shares the Valkey window.
func newWriteLimiter(cfg *config.Config, client *redis.Client) (middleware.Limiter, func()) {
	if cfg.StorageDriver == config.StorageMemory {
		rl := middleware.NewRateLimiter(cfg.RateLimitWrites, time.Minute)
		return rl, rl.Stop
	}
	return cache.NewWindowCounter(client, cfg.RateLimitWrites, time.Minute), func() {}
}

func closeQuietly(db *sql.DB) {
	if err := db.Close(); err != nil {
		slog.Warn("close database", "error", err)
	}
}
