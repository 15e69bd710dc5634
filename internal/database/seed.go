// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package database

import (
	"database/sql"
	"fmt"
	"log/slog"

	"inkwell/internal/models"
)

// SeedAdmin describes the account created by Seed.
type SeedAdmin struct {
	ID    string
	Name  string
	Email string
}

// Seed populates the database with initial development data.
// It creates the admin account if no users exist yet. Credentials live with
// the identity provider; only the account record is created here.
func Seed(db *sql.DB, admin SeedAdmin) error {
	// Check if any users exist already.
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM users").Scan(&count); err != nil {
		return fmt.Errorf("seed check users: %w", err)
	}

	if count > 0 {
		slog.Info("database already seeded, skipping")
		return nil
	}

	if admin.Name == "" {
		admin.Name = "Mr. Admin"
	}

	_, err := db.Exec(`
		INSERT INTO users (id, name, email, role, status)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT DO NOTHING
	`, admin.ID, admin.Name, admin.Email, models.RoleAdmin, models.UserStatusActive)
	if err != nil {
		return fmt.Errorf("seed insert admin: %w", err)
	}

	slog.Info("database seeded with admin account",
		"id", admin.ID,
		"email", admin.Email,
	)

	return nil
}
