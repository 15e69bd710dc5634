// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package router sets up all HTTP routes and middleware chains for the
// Inkwell API. Every route declares the roles it requires next to its
// handler; routes without a role gate are public.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"inkwell/internal/handlers"
	"inkwell/internal/middleware"
	"inkwell/internal/models"
	"inkwell/internal/render"
)

// Deps are the collaborators the route table is built from.
type Deps struct {
	Sessions middleware.SessionResolver
	// Writes limits POST requests per client. Nil disables rate limiting.
	Writes   middleware.Limiter
	Posts    *handlers.Posts
	Comments *handlers.Comments
}

var (
	members = []models.Role{models.RoleUser, models.RoleAdmin}
	admins  = []models.Role{models.RoleAdmin}
)

// New creates and returns the configured Chi router with all middleware
// and route groups wired up.
func New(d Deps) chi.Router {
	r := chi.NewRouter()

	// Global middleware, applied to every request.
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.SecureHeaders)
	r.Use(middleware.LoadPrincipal(d.Sessions))

	r.NotFound(render.NotFound)
	r.MethodNotAllowed(render.MethodNotAllowed)

	r.Get("/health", healthHandler)

	limitWrites := func(next http.Handler) http.Handler { return next }
	if d.Writes != nil {
		limitWrites = middleware.RateLimit(d.Writes)
	}

	r.Route("/posts", func(r chi.Router) {
		r.Get("/", d.Posts.List)
		r.With(middleware.RequireRoles(members...), limitWrites).Post("/", d.Posts.Create)
		r.With(middleware.RequireRoles(members...)).Get("/my-posts", d.Posts.Mine)
		r.With(middleware.RequireRoles(admins...)).Get("/stats", d.Posts.Stats)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", d.Posts.Get)
			r.Get("/comments", d.Posts.Thread)
			r.With(middleware.RequireRoles(members...)).Patch("/", d.Posts.Update)
			r.With(middleware.RequireRoles(members...)).Delete("/", d.Posts.Delete)
		})
	})

	r.Route("/comments", func(r chi.Router) {
		r.With(middleware.RequireRoles(admins...)).Get("/", d.Comments.List)
		r.With(middleware.RequireRoles(members...), limitWrites).Post("/", d.Comments.Create)
		r.With(middleware.RequireRoles(admins...)).Get("/author/{author_id}", d.Comments.ByAuthor)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", d.Comments.Get)
			r.With(middleware.RequireRoles(members...)).Patch("/", d.Comments.Update)
			r.With(middleware.RequireRoles(admins...)).Patch("/moderate", d.Comments.Moderate)
			r.With(middleware.RequireRoles(members...)).Delete("/", d.Comments.Delete)
		})
	})

	return r
}

// healthHandler reports liveness.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, http.StatusOK, "ok", map[string]string{"status": "ok"})
}
