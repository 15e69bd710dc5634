// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package service

import (
	"context"
	"log/slog"
	"math"
	"strings"

	"github.com/google/uuid"

	"inkwell/internal/apperr"
	"inkwell/internal/authz"
	"inkwell/internal/models"
	"inkwell/internal/store"
)

// Listing defaults and bounds.
const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

// PostService owns the post aggregate: CRUD, listing, view counting and
// the dashboard statistics.
type PostService struct {
	repo store.Repository
}

// NewPostService creates a PostService over the given repository.
func NewPostService(repo store.Repository) *PostService {
	return &PostService{repo: repo}
}

// PostInput carries client-supplied post fields. Nil fields are absent:
// Create fills defaults, Update leaves the stored value.
type PostInput struct {
	Title      *string            `json:"title"`
	Content    *string            `json:"content"`
	Thumbnail  *string            `json:"thumbnail"`
	Tags       *[]string          `json:"tags"`
	Status     *models.PostStatus `json:"status"`
	IsFeatured *bool              `json:"isFeatured"`
}

// apply copies the present fields onto p. An empty thumbnail clears it.
func (in PostInput) apply(p *models.Post) {
	if in.Title != nil {
		p.Title = strings.TrimSpace(*in.Title)
	}
	if in.Content != nil {
		p.Content = *in.Content
	}
	if in.Thumbnail != nil {
		if t := strings.TrimSpace(*in.Thumbnail); t != "" {
			p.Thumbnail = &t
		} else {
			p.Thumbnail = nil
		}
	}
	if in.Tags != nil {
		p.Tags = normalizeTags(*in.Tags)
	}
	if in.Status != nil {
		p.Status = *in.Status
	}
	if in.IsFeatured != nil {
		p.IsFeatured = *in.IsFeatured
	}
}

// Create stores a new post authored by p. Only admins may feature a post;
// anyone else's isFeatured is dropped without error.
func (s *PostService) Create(ctx context.Context, p models.Principal, in PostInput) (*models.Post, error) {
	if !p.IsAdmin() {
		in.IsFeatured = nil
	}

	post := &models.Post{Status: models.PostStatusPublished, Tags: []string{}, AuthorID: p.ID}
	in.apply(post)
	if msg := validatePost(post); msg != "" {
		return nil, apperr.Validation("%s", msg)
	}

	created, err := s.repo.Posts().Create(ctx, post)
	if err != nil {
		return nil, err
	}

	slog.Info("post created", "post_id", created.ID, "author_id", created.AuthorID, "status", created.Status)
	return created, nil
}

// filterTags normalizes the tag filter, ignoring blank entries.
func filterTags(tags []string) []string {
	var out []string
	for _, tag := range normalizeTags(tags) {
		if tag != "" {
			out = append(out, tag)
		}
	}
	return out
}

// ListParams are the query parameters of a post listing. Zero Page, Limit
// and SortBy select the defaults.
type ListParams struct {
	Search     string
	Tags       []string
	IsFeatured *bool
	Status     *models.PostStatus
	AuthorID   string

	Page      int
	Limit     int
	SortBy    string
	SortOrder string
}

// Pagination describes one page of a listing.
type Pagination struct {
	Total      int `json:"total"`
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Skip       int `json:"skip"`
	TotalPages int `json:"totalPages"`
}

// PostList is a page of posts with comment counts.
type PostList struct {
	Data       []models.PostWithCount `json:"data"`
	Pagination Pagination             `json:"pagination"`
}

// paginate resolves page and limit to a Pagination without a total.
func paginate(page, limit int) (Pagination, error) {
	if page == 0 {
		page = DefaultPage
	}
	if limit == 0 {
		limit = DefaultLimit
	}
	if page < 1 {
		return Pagination{}, apperr.Validation("page must be a positive integer")
	}
	if limit < 1 || limit > MaxLimit {
		return Pagination{}, apperr.Validation("limit must be between 1 and %d", MaxLimit)
	}
	// (page-1)*limit must fit in an int.
	if page-1 > math.MaxInt/limit {
		return Pagination{}, apperr.Validation("page is too large")
	}
	return Pagination{Page: page, Limit: limit, Skip: (page - 1) * limit}, nil
}

func (pg *Pagination) setTotal(total int) {
	pg.Total = total
	pg.TotalPages = (total + pg.Limit - 1) / pg.Limit
}

// List returns one page of posts matching every supplied filter. The count
// and the page are read from one snapshot.
func (s *PostService) List(ctx context.Context, params ListParams) (*PostList, error) {
	pg, err := paginate(params.Page, params.Limit)
	if err != nil {
		return nil, err
	}

	sortBy := store.SortCreatedAt
	if params.SortBy != "" {
		sortBy = store.PostSort(params.SortBy)
		if !sortBy.Valid() {
			return nil, apperr.Validation("cannot sort by %q", params.SortBy)
		}
	}
	desc := true
	switch strings.ToLower(params.SortOrder) {
	case "", "desc":
	case "asc":
		desc = false
	default:
		return nil, apperr.Validation("sortOrder must be asc or desc")
	}
	if params.Status != nil && !params.Status.Valid() {
		return nil, apperr.Validation("invalid status %q", *params.Status)
	}

	filter := store.PostFilter{
		Search:     strings.TrimSpace(params.Search),
		Tags:       filterTags(params.Tags),
		IsFeatured: params.IsFeatured,
		Status:     params.Status,
		AuthorID:   params.AuthorID,
	}

	list := &PostList{}
	err = s.repo.Atomic(ctx, store.TxOptions{ReadOnly: true}, func(tx store.Repository) error {
		total, err := tx.Posts().Count(ctx, filter)
		if err != nil {
			return err
		}
		items, err := tx.Posts().List(ctx, store.PostQuery{
			Filter: filter,
			SortBy: sortBy,
			Desc:   desc,
			Offset: pg.Skip,
			Limit:  pg.Limit,
		})
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

// GetByID counts a view and returns the post with its approved thread.
// The increment and the read happen in one transaction; the returned
// views include this request's increment.
func (s *PostService) GetByID(ctx context.Context, id uuid.UUID) (*models.PostWithThread, error) {
	var result *models.PostWithThread
	err := s.repo.Atomic(ctx, store.TxOptions{}, func(tx store.Repository) error {
		post, err := tx.Posts().IncrementViews(ctx, id)
		if err != nil {
			return err
		}
		if post == nil {
			return apperr.NotFound("Post not found!")
		}

		thread, err := loadThread(ctx, tx, id)
		if err != nil {
			return err
		}
		result = &models.PostWithThread{Post: *post, Comments: thread}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// GetMine returns the principal's posts newest first. The account must
// exist and be active.
func (s *PostService) GetMine(ctx context.Context, p models.Principal) ([]models.PostWithCount, error) {
	user, err := s.repo.Users().FindByID(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	if user == nil || !user.IsActive() {
		return nil, apperr.NotFound("User not found or inactive!")
	}
	return s.repo.Posts().ListByAuthor(ctx, p.ID)
}

// Update applies in to the post. The author or an admin may update; only
// an admin's isFeatured is honoured.
func (s *PostService) Update(ctx context.Context, p models.Principal, id uuid.UUID, in PostInput) (*models.Post, error) {
	if !p.IsAdmin() {
		in.IsFeatured = nil
	}

	var updated *models.Post
	err := s.repo.Atomic(ctx, store.TxOptions{}, func(tx store.Repository) error {
		post, err := tx.Posts().FindForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if post == nil {
			return apperr.NotFound("Post not found!")
		}
		if err := authz.CheckOwnership(p, post.AuthorID, true).Err(); err != nil {
			return err
		}

		in.apply(post)
		if msg := validatePost(post); msg != "" {
			return apperr.Validation("%s", msg)
		}

		updated, err = tx.Posts().Update(ctx, post)
		return err
	})
	if err != nil {
		return nil, err
	}

	slog.Info("post updated", "post_id", id, "by", p.ID)
	return updated, nil
}

// Delete removes the post and, by cascade, all of its comments.
func (s *PostService) Delete(ctx context.Context, p models.Principal, id uuid.UUID) error {
	err := s.repo.Atomic(ctx, store.TxOptions{}, func(tx store.Repository) error {
		post, err := tx.Posts().FindForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if post == nil {
			return apperr.NotFound("Post not found!")
		}
		if err := authz.CheckOwnership(p, post.AuthorID, true).Err(); err != nil {
			return err
		}
		return tx.Posts().Delete(ctx, id)
	})
	if err != nil {
		return err
	}

	slog.Info("post deleted", "post_id", id, "by", p.ID)
	return nil
}

// Stats gathers the dashboard counters from one read-only snapshot.
func (s *PostService) Stats(ctx context.Context) (*models.Stats, error) {
	stats := &models.Stats{}
	err := s.repo.Atomic(ctx, store.TxOptions{ReadOnly: true}, func(tx store.Repository) error {
		posts, err := tx.Posts().CountByStatus(ctx)
		if err != nil {
			return err
		}
		comments, err := tx.Comments().CountByStatus(ctx)
		if err != nil {
			return err
		}
		users, err := tx.Users().CountByRole(ctx)
		if err != nil {
			return err
		}
		views, err := tx.Posts().SumViews(ctx)
		if err != nil {
			return err
		}

		stats.PublishedPosts = posts[models.PostStatusPublished]
		stats.DraftPosts = posts[models.PostStatusDraft]
		stats.ArchivedPosts = posts[models.PostStatusArchived]
		stats.TotalPosts = stats.PublishedPosts + stats.DraftPosts + stats.ArchivedPosts

		stats.ApprovedComments = comments[models.CommentStatusApproved]
		stats.PendingComments = comments[models.CommentStatusPending]
		stats.RejectedComments = comments[models.CommentStatusRejected]
		stats.TotalComments = stats.ApprovedComments + stats.PendingComments + stats.RejectedComments

		stats.AdminCount = users[models.RoleAdmin]
		stats.UserCount = users[models.RoleUser]
		stats.TotalUsers = stats.AdminCount + stats.UserCount

		stats.TotalViews = views
		return nil
	})
	if err != nil {
		return nil, err
	}
	return stats, nil
}
