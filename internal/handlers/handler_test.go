// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// handler_test.go provides shared test infrastructure for handler tests.
// Handlers run against the in-memory store, so no external services are
// needed.
package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"inkwell/internal/middleware"
	"inkwell/internal/models"
	"inkwell/internal/service"
	"inkwell/internal/store/memstore"
)

var (
	alice = &models.Principal{ID: "alice", Role: models.RoleUser}
	bob   = &models.Principal{ID: "bob", Role: models.RoleUser}
	admin = &models.Principal{ID: "admin", Role: models.RoleAdmin}
)

// testEnv holds all dependencies for handler tests.
type testEnv struct {
	Store    *memstore.Store
	Posts    *Posts
	Comments *Comments
}

// newTestEnv creates handlers over a fresh in-memory store with the three
// test accounts registered.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	st := memstore.New()
	for _, p := range []*models.Principal{alice, bob, admin} {
		if _, err := st.AddUser(models.User{ID: p.ID, Name: p.ID, Email: p.ID + "@inkwell.test", Role: p.Role}); err != nil {
			t.Fatalf("add user %s: %v", p.ID, err)
		}
	}

	postSvc := service.NewPostService(st)
	commentSvc := service.NewCommentService(st, models.CommentStatusPending)

	return &testEnv{
		Store:    st,
		Posts:    NewPosts(postSvc, commentSvc),
		Comments: NewComments(commentSvc),
	}
}

// request builds a request with an optional JSON body, principal and chi
// URL parameters given as key/value pairs.
func request(method, target, body string, p *models.Principal, params ...string) *http.Request {
	var r *http.Request
	if body == "" {
		r = httptest.NewRequest(method, target, nil)
	} else {
		r = httptest.NewRequest(method, target, strings.NewReader(body))
		r.Header.Set("Content-Type", "application/json")
	}

	ctx := r.Context()
	if len(params) > 0 {
		rctx := chi.NewRouteContext()
		for i := 0; i+1 < len(params); i += 2 {
			rctx.URLParams.Add(params[i], params[i+1])
		}
		ctx = context.WithValue(ctx, chi.RouteCtxKey, rctx)
	}
	if p != nil {
		ctx = middleware.WithPrincipal(ctx, p)
	}
	return r.WithContext(ctx)
}

// envelope mirrors the response body shape.
type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Kind   string `json:"kind"`
		Detail string `json:"detail"`
	} `json:"error"`
}

// serve runs h and decodes the envelope, failing on an unexpected status.
func serve(t *testing.T, h http.HandlerFunc, r *http.Request, wantStatus int) envelope {
	t.Helper()

	rr := httptest.NewRecorder()
	h(rr, r)

	var env envelope
	if err := json.Unmarshal(rr.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode envelope %q: %v", rr.Body.String(), err)
	}
	if rr.Code != wantStatus {
		t.Fatalf("status: got %d, want %d (body %s)", rr.Code, wantStatus, rr.Body.String())
	}
	return env
}

// errKind returns the error kind of a failed envelope.
func errKind(env envelope) string {
	if env.Error == nil {
		return ""
	}
	return env.Error.Kind
}

// decodeData unmarshals the envelope payload into dst.
func decodeData(t *testing.T, env envelope, dst any) {
	t.Helper()
	if err := json.Unmarshal(env.Data, dst); err != nil {
		t.Fatalf("decode data %s: %v", env.Data, err)
	}
}

// createPost creates a post through the handler and returns it.
func (e *testEnv) createPost(t *testing.T, p *models.Principal, body string) models.Post {
	t.Helper()
	env := serve(t, e.Posts.Create, request("POST", "/posts", body, p), http.StatusCreated)
	var post models.Post
	decodeData(t, env, &post)
	return post
}

// createComment creates a comment through the handler and returns it.
func (e *testEnv) createComment(t *testing.T, p *models.Principal, body string) models.Comment {
	t.Helper()
	env := serve(t, e.Comments.Create, request("POST", "/comments", body, p), http.StatusCreated)
	var c models.Comment
	decodeData(t, env, &c)
	return c
}
