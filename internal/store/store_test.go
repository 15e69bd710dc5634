// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// store_test.go provides a shared test database helper for all store
// integration tests. Tests are skipped if PostgreSQL is not available.
package store

import (
	"context"
	"database/sql"
	"os"
	"testing"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"inkwell/internal/database"
	"inkwell/internal/models"
)

// testDSN returns the PostgreSQL connection string for testing.
// Uses environment variables with defaults matching docker-compose.yml.
func testDSN() string {
	host := envOr("POSTGRES_HOST", "localhost")
	port := envOr("POSTGRES_PORT", "5432")
	user := envOr("POSTGRES_USER", "inkwell")
	pass := envOr("POSTGRES_PASSWORD", "changeme")
	name := envOr("POSTGRES_DB", "inkwell")
	return "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=disable"
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// testDB opens a connection to the test database and runs migrations.
// If the database is unavailable, the test is skipped. A cleanup
// function is registered to close the connection when the test finishes.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("pgx", testDSN())
	if err != nil {
		t.Skipf("skipping integration test: cannot open DB: %v", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		t.Skipf("skipping integration test: DB not reachable: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	// Reset goose global state.
	goose.SetBaseFS(nil)

	t.Cleanup(func() { db.Close() })
	return db
}

// testUser creates a throwaway account and removes it when the test ends.
func testUser(t *testing.T, db *sql.DB, role models.Role) *models.User {
	t.Helper()

	// Accounts are written by the identity provider, so tests insert directly.
	id := "store-test-" + uuid.NewString()[:8]
	_, err := db.Exec(`INSERT INTO users (id, name, email, role, status) VALUES ($1, $2, $3, $4, $5)`,
		id, "Store Test", id+"@store-test.local", role, models.UserStatusActive)
	if err != nil {
		t.Fatalf("create test user: %v", err)
	}
	t.Cleanup(func() { db.Exec("DELETE FROM users WHERE id = $1", id) })

	u, err := NewUserStore(db).FindByID(context.Background(), id)
	if err != nil || u == nil {
		t.Fatalf("load test user: %v", err)
	}
	return u
}

// testPost creates a post owned by authorID and removes it (and its
// comments) when the test ends.
func testPost(t *testing.T, db *sql.DB, authorID string, tags ...string) *models.Post {
	t.Helper()

	p, err := NewPostStore(db).Create(context.Background(), &models.Post{
		Title:    "Store Test " + uuid.NewString()[:8],
		Content:  "Body text",
		Tags:     tags,
		Status:   models.PostStatusPublished,
		AuthorID: authorID,
	})
	if err != nil {
		t.Fatalf("create test post: %v", err)
	}
	t.Cleanup(func() { cleanPosts(db, p.ID) })
	return p
}

// cleanPosts removes test posts by ID. Comments go with them.
func cleanPosts(db *sql.DB, ids ...uuid.UUID) {
	for _, id := range ids {
		db.Exec("DELETE FROM posts WHERE id = $1", id)
	}
}
