// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/google/uuid"

	"inkwell/internal/models"
	"inkwell/internal/service"
)

// approve moderates c to APPROVED as admin.
func (e *testEnv) approve(t *testing.T, c models.Comment) {
	t.Helper()
	id := c.ID.String()
	serve(t, e.Comments.Moderate, request("PATCH", "/comments/"+id+"/moderate", `{"status":"APPROVED"}`, admin, "id", id), http.StatusOK)
}

func TestCommentCreate(t *testing.T) {
	e := newTestEnv(t)
	post := e.createPost(t, alice, `{"title":"t","content":"c"}`)

	c := e.createComment(t, bob, fmt.Sprintf(`{"content":"  nice  ","post_id":%q}`, post.ID))
	if c.Status != models.CommentStatusPending {
		t.Errorf("status: got %q, want PENDING", c.Status)
	}
	if c.Content != "nice" || c.AuthorID != bob.ID || c.ParentID != nil {
		t.Errorf("got %+v", c)
	}

	reply := e.createComment(t, alice, fmt.Sprintf(`{"content":"thanks","post_id":%q,"parent_id":%q}`, post.ID, c.ID))
	if reply.ParentID == nil || *reply.ParentID != c.ID {
		t.Errorf("parent: got %v", reply.ParentID)
	}
}

func TestCommentCreateErrors(t *testing.T) {
	e := newTestEnv(t)
	post := e.createPost(t, alice, `{"title":"t","content":"c"}`)
	other := e.createPost(t, alice, `{"title":"o","content":"c"}`)
	foreign := e.createComment(t, bob, fmt.Sprintf(`{"content":"x","post_id":%q}`, other.ID))

	tests := []struct {
		name   string
		body   string
		status int
		kind   string
	}{
		{"missing post id", `{"content":"x"}`, http.StatusBadRequest, "VALIDATION"},
		{"bad post id", `{"content":"x","post_id":"nope"}`, http.StatusBadRequest, "VALIDATION"},
		{"blank content", fmt.Sprintf(`{"content":"   ","post_id":%q}`, post.ID), http.StatusBadRequest, "VALIDATION"},
		{"unknown post", fmt.Sprintf(`{"content":"x","post_id":%q}`, uuid.New()), http.StatusNotFound, "NOT_FOUND"},
		{"unknown parent", fmt.Sprintf(`{"content":"x","post_id":%q,"parent_id":%q}`, post.ID, uuid.New()), http.StatusNotFound, "NOT_FOUND"},
		{"parent on other post", fmt.Sprintf(`{"content":"x","post_id":%q,"parent_id":%q}`, post.ID, foreign.ID), http.StatusBadRequest, "VALIDATION"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := serve(t, e.Comments.Create, request("POST", "/comments", tt.body, bob), tt.status)
			if errKind(env) != tt.kind {
				t.Errorf("kind: got %q, want %q", errKind(env), tt.kind)
			}
		})
	}
}

func TestCommentGetVisibility(t *testing.T) {
	e := newTestEnv(t)
	post := e.createPost(t, alice, `{"title":"t","content":"c"}`)
	c := e.createComment(t, bob, fmt.Sprintf(`{"content":"pending","post_id":%q}`, post.ID))
	id := c.ID.String()

	serve(t, e.Comments.Get, request("GET", "/comments/"+id, "", nil, "id", id), http.StatusNotFound)
	serve(t, e.Comments.Get, request("GET", "/comments/"+id, "", alice, "id", id), http.StatusNotFound)
	serve(t, e.Comments.Get, request("GET", "/comments/"+id, "", bob, "id", id), http.StatusOK)

	env := serve(t, e.Comments.Get, request("GET", "/comments/"+id, "", admin, "id", id), http.StatusOK)
	var got models.CommentWithPost
	decodeData(t, env, &got)
	if got.Post.ID != post.ID || got.Post.Title != "t" {
		t.Errorf("post summary: got %+v", got.Post)
	}

	e.approve(t, c)
	serve(t, e.Comments.Get, request("GET", "/comments/"+id, "", nil, "id", id), http.StatusOK)
}

func TestCommentModerate(t *testing.T) {
	e := newTestEnv(t)
	post := e.createPost(t, alice, `{"title":"t","content":"c"}`)
	c := e.createComment(t, bob, fmt.Sprintf(`{"content":"x","post_id":%q}`, post.ID))
	id := c.ID.String()

	env := serve(t, e.Comments.Moderate, request("PATCH", "/comments/"+id+"/moderate", `{"status":"pending"}`, admin, "id", id), http.StatusConflict)
	if errKind(env) != "INVALID_STATE_TRANSITION" {
		t.Errorf("kind: got %q", errKind(env))
	}
	if env.Message != "Your provided status (PENDING) is already up to date." {
		t.Errorf("message: got %q", env.Message)
	}

	env = serve(t, e.Comments.Moderate, request("PATCH", "/comments/"+id+"/moderate", `{"status":"reject"}`, admin, "id", id), http.StatusOK)
	var got models.Comment
	decodeData(t, env, &got)
	if got.Status != models.CommentStatusRejected {
		t.Errorf("status: got %q", got.Status)
	}

	serve(t, e.Comments.Moderate, request("PATCH", "/comments/"+id+"/moderate", `{"status":"SPAM"}`, admin, "id", id), http.StatusBadRequest)

	missing := uuid.NewString()
	serve(t, e.Comments.Moderate, request("PATCH", "/comments/"+missing+"/moderate", `{"status":"APPROVED"}`, admin, "id", missing), http.StatusNotFound)
}

func TestCommentUpdate(t *testing.T) {
	e := newTestEnv(t)
	post := e.createPost(t, alice, `{"title":"t","content":"c"}`)
	c := e.createComment(t, bob, fmt.Sprintf(`{"content":"x","post_id":%q}`, post.ID))
	id := c.ID.String()

	serve(t, e.Comments.Update, request("PATCH", "/comments/"+id, `{"content":"edit"}`, alice, "id", id), http.StatusForbidden)
	serve(t, e.Comments.Update, request("PATCH", "/comments/"+id, `{"content":"edit"}`, admin, "id", id), http.StatusForbidden)
	serve(t, e.Comments.Update, request("PATCH", "/comments/"+id, `{"content":""}`, bob, "id", id), http.StatusBadRequest)

	env := serve(t, e.Comments.Update, request("PATCH", "/comments/"+id, `{"content":"edited"}`, bob, "id", id), http.StatusOK)
	var got models.Comment
	decodeData(t, env, &got)
	if got.Content != "edited" || got.Status != models.CommentStatusPending {
		t.Errorf("got %+v", got)
	}

	missing := uuid.NewString()
	serve(t, e.Comments.Update, request("PATCH", "/comments/"+missing, `{"content":"x"}`, bob, "id", missing), http.StatusForbidden)
}

func TestCommentDelete(t *testing.T) {
	e := newTestEnv(t)
	post := e.createPost(t, alice, `{"title":"t","content":"c"}`)
	c := e.createComment(t, bob, fmt.Sprintf(`{"content":"x","post_id":%q}`, post.ID))
	id := c.ID.String()

	serve(t, e.Comments.Delete, request("DELETE", "/comments/"+id, "", alice, "id", id), http.StatusForbidden)
	serve(t, e.Comments.Delete, request("DELETE", "/comments/"+id, "", bob, "id", id), http.StatusOK)
	serve(t, e.Comments.Delete, request("DELETE", "/comments/"+id, "", bob, "id", id), http.StatusForbidden)
	serve(t, e.Comments.Delete, request("DELETE", "/comments/"+id, "", admin, "id", id), http.StatusNotFound)
}

func TestCommentThreadThroughPosts(t *testing.T) {
	e := newTestEnv(t)
	post := e.createPost(t, alice, `{"title":"t","content":"c"}`)
	first := e.createComment(t, bob, fmt.Sprintf(`{"content":"first","post_id":%q}`, post.ID))
	second := e.createComment(t, bob, fmt.Sprintf(`{"content":"second","post_id":%q}`, post.ID))
	reply := e.createComment(t, alice, fmt.Sprintf(`{"content":"reply","post_id":%q,"parent_id":%q}`, post.ID, first.ID))
	// Left pending, so it stays out of the thread.
	e.createComment(t, alice, fmt.Sprintf(`{"content":"hidden","post_id":%q,"parent_id":%q}`, post.ID, first.ID))
	for _, c := range []models.Comment{first, second, reply} {
		e.approve(t, c)
	}

	id := post.ID.String()
	env := serve(t, e.Posts.Thread, request("GET", "/posts/"+id+"/comments", "", nil, "id", id), http.StatusOK)
	var thread []models.ThreadComment
	decodeData(t, env, &thread)

	if len(thread) != 2 || thread[0].ID != second.ID || thread[1].ID != first.ID {
		t.Fatalf("top level order: got %+v", thread)
	}
	if len(thread[1].Replies) != 1 || thread[1].Replies[0].ID != reply.ID {
		t.Errorf("replies: got %+v", thread[1].Replies)
	}
}

func TestCommentModerationQueue(t *testing.T) {
	e := newTestEnv(t)
	post := e.createPost(t, alice, `{"title":"t","content":"c"}`)
	a := e.createComment(t, bob, fmt.Sprintf(`{"content":"a","post_id":%q}`, post.ID))
	e.createComment(t, bob, fmt.Sprintf(`{"content":"b","post_id":%q}`, post.ID))
	e.approve(t, a)

	env := serve(t, e.Comments.List, request("GET", "/comments?status=pending", "", admin), http.StatusOK)
	var list service.CommentList
	decodeData(t, env, &list)
	if list.Pagination.Total != 1 || len(list.Data) != 1 || list.Data[0].Content != "b" {
		t.Errorf("got %+v", list)
	}

	serve(t, e.Comments.List, request("GET", "/comments?post_id=nope", "", admin), http.StatusBadRequest)
	serve(t, e.Comments.List, request("GET", "/comments?status=SPAM", "", admin), http.StatusBadRequest)
}

func TestCommentByAuthor(t *testing.T) {
	e := newTestEnv(t)
	post := e.createPost(t, alice, `{"title":"t","content":"c"}`)
	older := e.createComment(t, bob, fmt.Sprintf(`{"content":"older","post_id":%q}`, post.ID))
	e.createComment(t, alice, fmt.Sprintf(`{"content":"reply","post_id":%q,"parent_id":%q}`, post.ID, older.ID))
	newer := e.createComment(t, bob, fmt.Sprintf(`{"content":"newer","post_id":%q}`, post.ID))

	env := serve(t, e.Comments.ByAuthor, request("GET", "/comments/author/bob", "", admin, "author_id", "bob"), http.StatusOK)
	var got []models.AuthorComment
	decodeData(t, env, &got)
	if len(got) != 2 || got[0].ID != newer.ID || got[1].ReplyCount != 1 {
		t.Errorf("got %+v", got)
	}

	serve(t, e.Comments.ByAuthor, request("GET", "/comments/author/%20", "", admin, "author_id", " "), http.StatusBadRequest)
}
