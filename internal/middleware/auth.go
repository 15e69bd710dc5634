// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"inkwell/internal/authz"
	"inkwell/internal/models"
	"inkwell/internal/render"
	"inkwell/internal/session"
)

// contextKey is an unexported type for context keys to prevent collisions.
type contextKey string

const (
	// PrincipalKey is the context key for the authenticated principal.
	PrincipalKey contextKey = "principal"
)

// SessionResolver looks up the session attached to a request.
// *session.Store satisfies it.
type SessionResolver interface {
	Get(ctx context.Context, r *http.Request) (*session.Data, error)
}

// LoadPrincipal resolves the request's session and stores the principal in
// the request context. Downstream handlers read it via PrincipalFromCtx().
// This middleware does NOT enforce authentication; requests without a
// usable session continue as anonymous.
func LoadPrincipal(resolver SessionResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			data, err := resolver.Get(r.Context(), r)
			if err != nil {
				slog.Warn("session lookup failed", "error", err, "path", r.URL.Path)
				next.ServeHTTP(w, r)
				return
			}

			if p := data.Principal(); p != nil {
				r = r.WithContext(WithPrincipal(r.Context(), p))
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequireRoles rejects requests whose principal holds none of roles: 401
// for anonymous callers, 403 otherwise. Must be applied after LoadPrincipal.
func RequireRoles(roles ...models.Role) func(http.Handler) http.Handler {
	if len(roles) == 0 {
		panic("middleware: RequireRoles needs at least one role")
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := authz.Authorize(PrincipalFromCtx(r.Context()), roles...).Err(); err != nil {
				render.Error(w, r, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// WithPrincipal returns a copy of ctx carrying p.
func WithPrincipal(ctx context.Context, p *models.Principal) context.Context {
	return context.WithValue(ctx, PrincipalKey, p)
}

// PrincipalFromCtx extracts the principal from the request context.
// Returns nil if the caller is anonymous.
func PrincipalFromCtx(ctx context.Context) *models.Principal {
	p, _ := ctx.Value(PrincipalKey).(*models.Principal)
	return p
}
