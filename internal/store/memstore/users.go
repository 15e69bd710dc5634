// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package memstore

import (
	"context"

	"inkwell/internal/apperr"
	"inkwell/internal/models"
)

// UserRepo is the in-memory account table.
type UserRepo struct{ s *Store }

func (r UserRepo) FindByID(ctx context.Context, id string) (*models.User, error) {
	if err := ctxErr(ctx); err != nil {
		return nil, err
	}
	defer r.s.lock()()

	u, ok := r.s.data.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

// Upsert inserts the account or replaces its profile, keeping created_at.
// Email addresses are unique across accounts.
func (r UserRepo) Upsert(ctx context.Context, u *models.User) (*models.User, error) {
	if err := ctxErr(ctx); err != nil {
		return nil, err
	}
	if !u.Role.Valid() {
		return nil, apperr.Validation("invalid role %q", u.Role)
	}
	defer r.s.lock()()

	for id, other := range r.s.data.users {
		if id != u.ID && other.Email == u.Email {
			return nil, apperr.Conflict("email %q is already in use", u.Email)
		}
	}

	saved := *u
	if saved.Status == "" {
		saved.Status = models.UserStatusActive
	}
	if prev, ok := r.s.data.users[u.ID]; ok {
		saved.CreatedAt = prev.CreatedAt
	} else {
		saved.CreatedAt = r.s.now()
	}
	r.s.data.users[u.ID] = saved
	return &saved, nil
}

func (r UserRepo) CountByRole(ctx context.Context) (map[models.Role]int, error) {
	if err := ctxErr(ctx); err != nil {
		return nil, err
	}
	defer r.s.lock()()

	counts := make(map[models.Role]int)
	for _, u := range r.s.data.users {
		counts[u.Role]++
	}
	return counts, nil
}
