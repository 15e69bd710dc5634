// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"inkwell/internal/models"
	"inkwell/internal/render"
	"inkwell/internal/service"
)

// Posts groups the /posts handlers.
type Posts struct {
	posts    *service.PostService
	comments *service.CommentService
}

// NewPosts creates the /posts handler group.
func NewPosts(posts *service.PostService, comments *service.CommentService) *Posts {
	return &Posts{posts: posts, comments: comments}
}

// Create handles POST /posts.
func (h *Posts) Create(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		render.Error(w, r, err)
		return
	}

	var in service.PostInput
	if err := decodeJSON(w, r, &in); err != nil {
		render.Error(w, r, err)
		return
	}

	post, err := h.posts.Create(r.Context(), p, in)
	if err != nil {
		render.Error(w, r, err)
		return
	}
	render.JSON(w, http.StatusCreated, "post created successfully.", post)
}

// List handles GET /posts.
func (h *Posts) List(w http.ResponseWriter, r *http.Request) {
	params, err := listParams(r)
	if err != nil {
		render.Error(w, r, err)
		return
	}

	list, err := h.posts.List(r.Context(), params)
	if err != nil {
		render.Error(w, r, err)
		return
	}
	render.JSON(w, http.StatusOK, "posts retrieved successfully.", list)
}

// listParams reads the listing query string: search, tags (comma
// separated), isFeatured, status, author_id, page, limit, sortBy, sortOrder.
func listParams(r *http.Request) (service.ListParams, error) {
	q := r.URL.Query()
	params := service.ListParams{
		Search:    q.Get("search"),
		Tags:      queryList(r, "tags"),
		AuthorID:  strings.TrimSpace(q.Get("author_id")),
		SortBy:    q.Get("sortBy"),
		SortOrder: q.Get("sortOrder"),
	}

	var err error
	if params.IsFeatured, err = queryBool(r, "isFeatured"); err != nil {
		return params, err
	}
	if s := q.Get("status"); s != "" {
		status := models.PostStatus(strings.ToUpper(s))
		params.Status = &status
	}
	if params.Page, err = queryInt(r, "page"); err != nil {
		return params, err
	}
	if params.Limit, err = queryInt(r, "limit"); err != nil {
		return params, err
	}
	return params, nil
}

// Get handles GET /posts/{id}. Every call counts a view.
func (h *Posts) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		render.Error(w, r, err)
		return
	}

	post, err := h.posts.GetByID(r.Context(), id)
	if err != nil {
		render.Error(w, r, err)
		return
	}
	render.JSON(w, http.StatusOK, "post retrieved successfully.", post)
}

// Mine handles GET /posts/my-posts.
func (h *Posts) Mine(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		render.Error(w, r, err)
		return
	}

	posts, err := h.posts.GetMine(r.Context(), p)
	if err != nil {
		render.Error(w, r, err)
		return
	}
	render.JSON(w, http.StatusOK, "posts retrieved successfully.", posts)
}

// Update handles PATCH /posts/{id}.
func (h *Posts) Update(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		render.Error(w, r, err)
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		render.Error(w, r, err)
		return
	}

	var in service.PostInput
	if err := decodeJSON(w, r, &in); err != nil {
		render.Error(w, r, err)
		return
	}

	post, err := h.posts.Update(r.Context(), p, id, in)
	if err != nil {
		render.Error(w, r, err)
		return
	}
	render.JSON(w, http.StatusOK, "post updated successfully.", post)
}

// Delete handles DELETE /posts/{id}.
func (h *Posts) Delete(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		render.Error(w, r, err)
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		render.Error(w, r, err)
		return
	}

	if err := h.posts.Delete(r.Context(), p, id); err != nil {
		render.Error(w, r, err)
		return
	}
	render.JSON(w, http.StatusOK, "post deleted successfully.", map[string]uuid.UUID{"id": id})
}

// Stats handles GET /posts/stats.
func (h *Posts) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.posts.Stats(r.Context())
	if err != nil {
		render.Error(w, r, err)
		return
	}
	render.JSON(w, http.StatusOK, "stats fetched successfully.", stats)
}

// Thread handles GET /posts/{id}/comments.
func (h *Posts) Thread(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		render.Error(w, r, err)
		return
	}

	thread, err := h.comments.ThreadForPost(r.Context(), id)
	if err != nil {
		render.Error(w, r, err)
		return
	}
	render.JSON(w, http.StatusOK, "comments retrieved successfully.", thread)
}
