// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"inkwell/internal/models"
	"inkwell/internal/session"
)

// stubResolver returns a fixed session or error, standing in for the
// Valkey-backed session.Store.
type stubResolver struct {
	data *session.Data
	err  error
}

func (s stubResolver) Get(context.Context, *http.Request) (*session.Data, error) {
	return s.data, s.err
}

// okHandler is a simple handler that records whether it was invoked.
func okHandler() (http.Handler, *bool) {
	var called bool
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	})
	return h, &called
}

// ---------- PrincipalFromCtx ----------

func TestPrincipalFromCtx(t *testing.T) {
	t.Run("returns principal when present", func(t *testing.T) {
		p := &models.Principal{ID: "u1", Role: models.RoleAdmin}
		got := PrincipalFromCtx(WithPrincipal(context.Background(), p))
		if got == nil || got.ID != "u1" || got.Role != models.RoleAdmin {
			t.Errorf("got %+v, want %+v", got, p)
		}
	})

	t.Run("returns nil when not present", func(t *testing.T) {
		if got := PrincipalFromCtx(context.Background()); got != nil {
			t.Errorf("expected nil principal, got %+v", got)
		}
	})

	t.Run("returns nil for wrong type in context", func(t *testing.T) {
		ctx := context.WithValue(context.Background(), PrincipalKey, "not-a-principal")
		if got := PrincipalFromCtx(ctx); got != nil {
			t.Errorf("expected nil for wrong type, got %+v", got)
		}
	})
}

// ---------- LoadPrincipal ----------

func TestLoadPrincipal(t *testing.T) {
	tests := []struct {
		name     string
		resolver stubResolver
		wantID   string
	}{
		{
			name: "active session becomes principal",
			resolver: stubResolver{data: &session.Data{
				UserID: "u1", Role: models.RoleUser, Status: models.UserStatusActive,
			}},
			wantID: "u1",
		},
		{
			name:     "no session is anonymous",
			resolver: stubResolver{},
		},
		{
			name: "blocked account is anonymous",
			resolver: stubResolver{data: &session.Data{
				UserID: "u1", Role: models.RoleUser, Status: models.UserStatusBlocked,
			}},
		},
		{
			name:     "unknown role is anonymous",
			resolver: stubResolver{data: &session.Data{UserID: "u1", Role: "EDITOR"}},
		},
		{
			name:     "resolver error is anonymous",
			resolver: stubResolver{err: errors.New("valkey down")},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got *models.Principal
			var called bool
			handler := LoadPrincipal(tt.resolver)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				called = true
				got = PrincipalFromCtx(r.Context())
			}))

			handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/posts", nil))

			if !called {
				t.Fatal("next handler should always be called")
			}
			switch {
			case tt.wantID == "" && got != nil:
				t.Errorf("expected anonymous, got %+v", got)
			case tt.wantID != "" && (got == nil || got.ID != tt.wantID):
				t.Errorf("expected principal %q, got %+v", tt.wantID, got)
			}
		})
	}
}

// ---------- RequireRoles ----------

func TestRequireRoles(t *testing.T) {
	user := &models.Principal{ID: "u1", Role: models.RoleUser}
	admin := &models.Principal{ID: "a1", Role: models.RoleAdmin}

	tests := []struct {
		name       string
		principal  *models.Principal
		roles      []models.Role
		wantStatus int
		wantCalled bool
	}{
		{"anonymous is unauthenticated", nil, []models.Role{models.RoleUser, models.RoleAdmin}, http.StatusUnauthorized, false},
		{"user on admin route is forbidden", user, []models.Role{models.RoleAdmin}, http.StatusForbidden, false},
		{"user on user route passes", user, []models.Role{models.RoleUser, models.RoleAdmin}, http.StatusOK, true},
		{"admin on admin route passes", admin, []models.Role{models.RoleAdmin}, http.StatusOK, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inner, called := okHandler()
			handler := RequireRoles(tt.roles...)(inner)

			req := httptest.NewRequest(http.MethodPost, "/posts", nil)
			if tt.principal != nil {
				req = req.WithContext(WithPrincipal(req.Context(), tt.principal))
			}
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			if rr.Code != tt.wantStatus {
				t.Errorf("status: got %d, want %d", rr.Code, tt.wantStatus)
			}
			if *called != tt.wantCalled {
				t.Errorf("handler called: got %v, want %v", *called, tt.wantCalled)
			}
			if !tt.wantCalled && rr.Header().Get("Content-Type") != "application/json; charset=utf-8" {
				t.Errorf("denial should be a JSON envelope, got %q", rr.Header().Get("Content-Type"))
			}
		})
	}
}

func TestRequireRolesPanicsWithoutRoles(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for empty role set")
		}
	}()
	RequireRoles()
}
