// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package service

import (
	"context"
	"log/slog"
	"slices"
	"strings"

	"github.com/google/uuid"

	"inkwell/internal/apperr"
	"inkwell/internal/authz"
	"inkwell/internal/models"
	"inkwell/internal/store"
)

// CommentService runs the comment lifecycle: creation under a configured
// initial status, owner edits, moderation and threaded retrieval.
type CommentService struct {
	repo          store.Repository
	initialStatus models.CommentStatus
}

// NewCommentService creates a CommentService. New comments start in
// initialStatus; an invalid value falls back to PENDING.
func NewCommentService(repo store.Repository, initialStatus models.CommentStatus) *CommentService {
	if !initialStatus.Valid() {
		initialStatus = models.CommentStatusPending
	}
	return &CommentService{repo: repo, initialStatus: initialStatus}
}

// InitialStatus reports the status assigned to new comments.
func (s *CommentService) InitialStatus() models.CommentStatus {
	return s.initialStatus
}

// CreateCommentInput is the body of a new comment.
type CreateCommentInput struct {
	Content  string     `json:"content"`
	PostID   uuid.UUID  `json:"post_id"`
	ParentID *uuid.UUID `json:"parent_id"`
}

// Create stores a comment by p on an existing post, optionally replying to
// an existing comment of the same post. Nothing is written when a check fails.
func (s *CommentService) Create(ctx context.Context, p models.Principal, in CreateCommentInput) (*models.Comment, error) {
	if msg := validateComment(in.Content); msg != "" {
		return nil, apperr.Validation("%s", msg)
	}

	var created *models.Comment
	err := s.repo.Atomic(ctx, store.TxOptions{}, func(tx store.Repository) error {
		post, err := tx.Posts().FindForUpdate(ctx, in.PostID)
		if err != nil {
			return err
		}
		if post == nil {
			return apperr.NotFound("Post not found!")
		}

		if in.ParentID != nil {
			parent, err := tx.Comments().FindByID(ctx, *in.ParentID)
			if err != nil {
				return err
			}
			if parent == nil {
				return apperr.NotFound("Parent comment not found!")
			}
			if parent.PostID != in.PostID {
				return apperr.Validation("Parent comment belongs to a different post.")
			}
		}

		created, err = tx.Comments().Create(ctx, &models.Comment{
			Content:  strings.TrimSpace(in.Content),
			AuthorID: p.ID,
			PostID:   in.PostID,
			ParentID: in.ParentID,
			Status:   s.initialStatus,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	slog.Info("comment created",
		"comment_id", created.ID,
		"post_id", created.PostID,
		"author_id", created.AuthorID,
		"status", created.Status,
	)
	return created, nil
}

// GetByID returns a comment with its post summary. Comments that are not
// approved are visible only to their author and to admins; for anyone else
// they do not exist. p is nil for anonymous callers.
func (s *CommentService) GetByID(ctx context.Context, p *models.Principal, id uuid.UUID) (*models.CommentWithPost, error) {
	var result *models.CommentWithPost
	err := s.repo.Atomic(ctx, store.TxOptions{ReadOnly: true}, func(tx store.Repository) error {
		c, err := tx.Comments().FindByID(ctx, id)
		if err != nil {
			return err
		}
		if c == nil || !visible(p, c) {
			return apperr.NotFound("Comment not found!")
		}

		post, err := tx.Posts().FindByID(ctx, c.PostID)
		if err != nil {
			return err
		}
		if post == nil {
			return apperr.NotFound("Comment not found!")
		}
		result = &models.CommentWithPost{Comment: *c, Post: post.Summary()}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func visible(p *models.Principal, c *models.Comment) bool {
	if c.IsApproved() {
		return true
	}
	return p != nil && authz.CheckOwnership(*p, c.AuthorID, true).Allowed
}

// GetByAuthor returns every comment by authorID newest first, each with its
// post summary and direct reply count.
func (s *CommentService) GetByAuthor(ctx context.Context, authorID string) ([]models.AuthorComment, error) {
	if strings.TrimSpace(authorID) == "" {
		return nil, apperr.Validation("author id is required")
	}
	return s.repo.Comments().ListByAuthor(ctx, authorID)
}

// ThreadForPost returns the approved discussion of a post.
func (s *CommentService) ThreadForPost(ctx context.Context, postID uuid.UUID) ([]models.ThreadComment, error) {
	var thread []models.ThreadComment
	err := s.repo.Atomic(ctx, store.TxOptions{ReadOnly: true}, func(tx store.Repository) error {
		ok, err := tx.Posts().Exists(ctx, postID)
		if err != nil {
			return err
		}
		if !ok {
			return apperr.NotFound("Post not found!")
		}
		thread, err = loadThread(ctx, tx, postID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return thread, nil
}

// loadThread builds the approved thread of a post: top-level comments
// newest first, replies oldest first, expanded models.ThreadDepth levels
// below the top. Replies to hidden comments are not reachable.
func loadThread(ctx context.Context, repo store.Repository, postID uuid.UUID) ([]models.ThreadComment, error) {
	approved, err := repo.Comments().ListByPost(ctx, postID, models.CommentStatusApproved)
	if err != nil {
		return nil, err
	}

	var top []models.Comment
	replies := make(map[uuid.UUID][]models.Comment)
	for _, c := range approved {
		if c.IsTopLevel() {
			top = append(top, c)
		} else {
			replies[*c.ParentID] = append(replies[*c.ParentID], c)
		}
	}
	slices.Reverse(top)

	var expand func(c models.Comment, depth int) models.ThreadComment
	expand = func(c models.Comment, depth int) models.ThreadComment {
		node := models.ThreadComment{Comment: c, Replies: []models.ThreadComment{}}
		if depth >= models.ThreadDepth {
			return node
		}
		for _, r := range replies[c.ID] {
			node.Replies = append(node.Replies, expand(r, depth+1))
		}
		return node
	}

	thread := make([]models.ThreadComment, 0, len(top))
	for _, c := range top {
		thread = append(thread, expand(c, 0))
	}
	return thread, nil
}

// ModerationParams filters the moderation queue.
type ModerationParams struct {
	Status *models.CommentStatus
	PostID *uuid.UUID
	Page   int
	Limit  int
}

// CommentList is a page of comments.
type CommentList struct {
	Data       []models.Comment `json:"data"`
	Pagination Pagination       `json:"pagination"`
}

// ListForModeration returns comments oldest first for review.
func (s *CommentService) ListForModeration(ctx context.Context, params ModerationParams) (*CommentList, error) {
	pg, err := paginate(params.Page, params.Limit)
	if err != nil {
		return nil, err
	}
	if params.Status != nil && !params.Status.Valid() {
		return nil, apperr.Validation("invalid status %q", *params.Status)
	}

	filter := store.CommentFilter{Status: params.Status, PostID: params.PostID}
	list := &CommentList{}
	err = s.repo.Atomic(ctx, store.TxOptions{ReadOnly: true}, func(tx store.Repository) error {
		total, err := tx.Comments().Count(ctx, filter)
		if err != nil {
			return err
		}
		items, err := tx.Comments().List(ctx, store.CommentQuery{Filter: filter, Offset: pg.Skip, Limit: pg.Limit})
		if err != nil {
			return err
		}
		pg.setTotal(total)
		list.Data = items
		return nil
	})
	if err != nil {
		return nil, err
	}

	list.Pagination = pg
	return list, nil
}

// Update replaces the content of p's own comment. Moderation status is
// unchanged. A missing comment is reported as FORBIDDEN.
func (s *CommentService) Update(ctx context.Context, p models.Principal, id uuid.UUID, content string) (*models.Comment, error) {
	if msg := validateComment(content); msg != "" {
		return nil, apperr.Validation("%s", msg)
	}

	var updated *models.Comment
	err := s.repo.Atomic(ctx, store.TxOptions{}, func(tx store.Repository) error {
		c, err := tx.Comments().FindForUpdate(ctx, id)
		if err != nil {
			return err
		}
		author := ""
		if c != nil {
			author = c.AuthorID
		}
		if err := authz.CheckOwnership(p, author, false).Err(); err != nil {
			return err
		}

		updated, err = tx.Comments().UpdateContent(ctx, id, strings.TrimSpace(content))
		return err
	})
	if err != nil {
		return nil, err
	}

	slog.Info("comment updated", "comment_id", id, "by", p.ID)
	return updated, nil
}

// Moderate moves a comment to status. Requesting the current status is an
// invalid transition and changes nothing.
func (s *CommentService) Moderate(ctx context.Context, id uuid.UUID, status models.CommentStatus) (*models.Comment, error) {
	if !status.Valid() {
		return nil, apperr.Validation("Invalid status %q.", status)
	}

	var moderated *models.Comment
	var from models.CommentStatus
	err := s.repo.Atomic(ctx, store.TxOptions{}, func(tx store.Repository) error {
		c, err := tx.Comments().FindForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if c == nil {
			return apperr.NotFound("Comment not found!")
		}
		if !c.Status.CanTransition(status) {
			return apperr.InvalidTransition("Your provided status (%s) is already up to date.", status)
		}

		from = c.Status
		moderated, err = tx.Comments().UpdateStatus(ctx, id, status)
		return err
	})
	if err != nil {
		return nil, err
	}

	slog.Info("comment moderated", "comment_id", id, "from", from, "to", status)
	return moderated, nil
}

// Delete removes a comment and its replies. The author or an admin may
// delete. Admins get NOT_FOUND for a missing comment; anyone else gets
// FORBIDDEN, as for Update.
func (s *CommentService) Delete(ctx context.Context, p models.Principal, id uuid.UUID) error {
	err := s.repo.Atomic(ctx, store.TxOptions{}, func(tx store.Repository) error {
		c, err := tx.Comments().FindForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if c == nil {
			if p.IsAdmin() {
				return apperr.NotFound("Comment not found!")
			}
			return authz.CheckOwnership(p, "", false).Err()
		}
		if err := authz.CheckOwnership(p, c.AuthorID, true).Err(); err != nil {
			return err
		}
		return tx.Comments().Delete(ctx, id)
	})
	if err != nil {
		return err
	}

	slog.Info("comment deleted", "comment_id", id, "by", p.ID)
	return nil
}
