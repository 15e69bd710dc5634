// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"testing"

	"inkwell/internal/models"
)

func TestUserStoreFindByID(t *testing.T) {
	db := testDB(t)
	s := NewUserStore(db)
	ctx := context.Background()

	u := testUser(t, db, models.RoleUser)
	if u.CreatedAt.IsZero() {
		t.Error("expected created_at to be set")
	}

	found, err := s.FindByID(ctx, u.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if found == nil {
		t.Fatal("expected user, got nil")
	}
	if found.Email != u.Email {
		t.Errorf("email: got %q, want %q", found.Email, u.Email)
	}
	if found.Role != models.RoleUser {
		t.Errorf("role: got %q, want %q", found.Role, models.RoleUser)
	}

	// Status and role changes made by the identity provider are read back.
	if _, err := db.Exec(`UPDATE users SET role = $1, status = $2 WHERE id = $3`,
		models.RoleAdmin, models.UserStatusBlocked, u.ID); err != nil {
		t.Fatalf("update user: %v", err)
	}
	updated, err := s.FindByID(ctx, u.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if updated.Role != models.RoleAdmin || updated.IsActive() {
		t.Errorf("got role=%q status=%q, want ADMIN/BLOCKED", updated.Role, updated.Status)
	}
}

func TestUserStoreFindByIDNotFound(t *testing.T) {
	db := testDB(t)
	s := NewUserStore(db)

	u, err := s.FindByID(context.Background(), "no-such-user")
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if u != nil {
		t.Error("expected nil for non-existent user")
	}
}

func TestUserStoreCountByRole(t *testing.T) {
	db := testDB(t)
	s := NewUserStore(db)
	ctx := context.Background()

	before, err := s.CountByRole(ctx)
	if err != nil {
		t.Fatalf("CountByRole: %v", err)
	}

	testUser(t, db, models.RoleAdmin)
	testUser(t, db, models.RoleUser)
	testUser(t, db, models.RoleUser)

	after, err := s.CountByRole(ctx)
	if err != nil {
		t.Fatalf("CountByRole: %v", err)
	}
	if got := after[models.RoleAdmin] - before[models.RoleAdmin]; got != 1 {
		t.Errorf("admin delta: got %d, want 1", got)
	}
	if got := after[models.RoleUser] - before[models.RoleUser]; got != 2 {
		t.Errorf("user delta: got %d, want 2", got)
	}
}
