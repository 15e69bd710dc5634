// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"inkwell/internal/apperr"
	"inkwell/internal/middleware"
	"inkwell/internal/models"
	"inkwell/internal/render"
	"inkwell/internal/service"
)

// Comments groups the /comments handlers.
type Comments struct {
	comments *service.CommentService
}

// NewComments creates the /comments handler group.
func NewComments(comments *service.CommentService) *Comments {
	return &Comments{comments: comments}
}

// Create handles POST /comments.
func (h *Comments) Create(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		render.Error(w, r, err)
		return
	}

	var in service.CreateCommentInput
	if err := decodeJSON(w, r, &in); err != nil {
		render.Error(w, r, err)
		return
	}
	if in.PostID == uuid.Nil {
		render.Error(w, r, apperr.Validation("post_id is required"))
		return
	}

	comment, err := h.comments.Create(r.Context(), p, in)
	if err != nil {
		render.Error(w, r, err)
		return
	}
	render.JSON(w, http.StatusCreated, "comment created successfully.", comment)
}

// Get handles GET /comments/{id}. Anonymous callers see approved comments only.
func (h *Comments) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		render.Error(w, r, err)
		return
	}

	comment, err := h.comments.GetByID(r.Context(), middleware.PrincipalFromCtx(r.Context()), id)
	if err != nil {
		render.Error(w, r, err)
		return
	}
	render.JSON(w, http.StatusOK, "comment retrieved successfully.", comment)
}

// ByAuthor handles GET /comments/author/{author_id}.
func (h *Comments) ByAuthor(w http.ResponseWriter, r *http.Request) {
	comments, err := h.comments.GetByAuthor(r.Context(), chi.URLParam(r, "author_id"))
	if err != nil {
		render.Error(w, r, err)
		return
	}
	render.JSON(w, http.StatusOK, "comments retrieved successfully.", comments)
}

// List handles GET /comments, the moderation queue.
func (h *Comments) List(w http.ResponseWriter, r *http.Request) {
	var params service.ModerationParams
	var err error

	if s := r.URL.Query().Get("status"); s != "" {
		status := models.CommentStatus(strings.ToUpper(s))
		params.Status = &status
	}
	if s := r.URL.Query().Get("post_id"); s != "" {
		id, err := uuid.Parse(s)
		if err != nil {
			render.Error(w, r, apperr.Validation("Invalid post_id."))
			return
		}
		params.PostID = &id
	}
	if params.Page, err = queryInt(r, "page"); err != nil {
		render.Error(w, r, err)
		return
	}
	if params.Limit, err = queryInt(r, "limit"); err != nil {
		render.Error(w, r, err)
		return
	}

	list, err := h.comments.ListForModeration(r.Context(), params)
	if err != nil {
		render.Error(w, r, err)
		return
	}
	render.JSON(w, http.StatusOK, "comments retrieved successfully.", list)
}

// contentInput is the body of a comment edit.
type contentInput struct {
	Content string `json:"content"`
}

// Update handles PATCH /comments/{id}.
func (h *Comments) Update(w http.ResponseWriter, r *http.Request) {
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

	var in contentInput
	if err := decodeJSON(w, r, &in); err != nil {
		render.Error(w, r, err)
		return
	}

	comment, err := h.comments.Update(r.Context(), p, id, in.Content)
	if err != nil {
		render.Error(w, r, err)
		return
	}
	render.JSON(w, http.StatusOK, "comment updated successfully.", comment)
}

// statusInput is the body of a moderation decision.
type statusInput struct {
	Status models.CommentStatus `json:"status"`
}

// Moderate handles PATCH /comments/{id}/moderate.
func (h *Comments) Moderate(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		render.Error(w, r, err)
		return
	}

	var in statusInput
	if err := decodeJSON(w, r, &in); err != nil {
		render.Error(w, r, err)
		return
	}

	comment, err := h.comments.Moderate(r.Context(), id, models.CommentStatus(strings.ToUpper(string(in.Status))))
	if err != nil {
		render.Error(w, r, err)
		return
	}
	render.JSON(w, http.StatusOK, "comment moderated successfully.", comment)
}

// Delete handles DELETE /comments/{id}.
func (h *Comments) Delete(w http.ResponseWriter, r *http.Request) {
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

	if err := h.comments.Delete(r.Context(), p, id); err != nil {
		render.Error(w, r, err)
		return
	}
	render.JSON(w, http.StatusOK, "comment deleted successfully.", map[string]uuid.UUID{"id": id})
}
