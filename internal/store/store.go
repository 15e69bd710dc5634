// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package store provides database access for posts, comments and user
// accounts. The Repository interface is the persistence contract the
// services depend on; PG implements it on PostgreSQL and the memstore
// subpackage implements it in memory.
package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"inkwell/internal/models"
)

// Repository is the persistence collaborator used by the services.
// Find methods return (nil, nil) when the row does not exist.
type Repository interface {
	Posts() PostRepository
	Comments() CommentRepository
	Users() UserRepository

	// Atomic runs fn against a Repository bound to a single transaction.
	// The transaction commits when fn returns nil and rolls back otherwise.
	// Calling Atomic on a Repository that is already transactional runs fn
	// in the enclosing transaction.
	Atomic(ctx context.Context, opts TxOptions, fn func(Repository) error) error
}

// TxOptions configures a transaction started by Repository.Atomic.
type TxOptions struct {
	// ReadOnly requests a read-only snapshot: every statement in the
	// transaction sees the same point-in-time view.
	ReadOnly bool
}

// PostRepository manages posts.
type PostRepository interface {
	Create(ctx context.Context, p *models.Post) (*models.Post, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Post, error)
	// FindForUpdate is FindByID that also locks the row until the
	// surrounding transaction ends.
	FindForUpdate(ctx context.Context, id uuid.UUID) (*models.Post, error)
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
	// IncrementViews adds one to the post's view counter and returns the
	// updated post. Concurrent increments never overwrite each other.
	IncrementViews(ctx context.Context, id uuid.UUID) (*models.Post, error)
	Update(ctx context.Context, p *models.Post) (*models.Post, error)
	Delete(ctx context.Context, id uuid.UUID) error

	List(ctx context.Context, q PostQuery) ([]models.PostWithCount, error)
	Count(ctx context.Context, f PostFilter) (int, error)
	ListByAuthor(ctx context.Context, authorID string) ([]models.PostWithCount, error)

	CountByStatus(ctx context.Context) (map[models.PostStatus]int, error)
	SumViews(ctx context.Context) (int64, error)
}

// CommentRepository manages comments.
type CommentRepository interface {
	Create(ctx context.Context, c *models.Comment) (*models.Comment, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Comment, error)
	FindForUpdate(ctx context.Context, id uuid.UUID) (*models.Comment, error)
	UpdateContent(ctx context.Context, id uuid.UUID, content string) (*models.Comment, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status models.CommentStatus) (*models.Comment, error)
	// Delete removes the comment and, through the cascade, its replies.
	Delete(ctx context.Context, id uuid.UUID) error

	// ListByPost returns the post's comments with the given status,
	// oldest first, at every depth.
	ListByPost(ctx context.Context, postID uuid.UUID, status models.CommentStatus) ([]models.Comment, error)
	// ListByAuthor returns the author's comments newest first with their
	// post summary and direct reply count.
	ListByAuthor(ctx context.Context, authorID string) ([]models.AuthorComment, error)
	// List returns comments matching q oldest first.
	List(ctx context.Context, q CommentQuery) ([]models.Comment, error)
	Count(ctx context.Context, f CommentFilter) (int, error)

	CountByStatus(ctx context.Context) (map[models.CommentStatus]int, error)
}

// UserRepository reads account records.
type UserRepository interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
	CountByRole(ctx context.Context) (map[models.Role]int, error)
}

// PostFilter narrows a post listing. Every set field must match.
type PostFilter struct {
	// Search matches title or content case-insensitively as a substring,
	// or a tag exactly.
	Search string
	// Tags must all be present on the post.
	Tags       []string
	IsFeatured *bool
	Status     *models.PostStatus
	AuthorID   string
}

// PostSort is a sortable post field.
type PostSort string

const (
	SortCreatedAt PostSort = "createdAt"
	SortUpdatedAt PostSort = "updatedAt"
	SortTitle     PostSort = "title"
	SortViews     PostSort = "views"
)

// Valid reports whether s is a sortable field.
func (s PostSort) Valid() bool {
	switch s {
	case SortCreatedAt, SortUpdatedAt, SortTitle, SortViews:
		return true
	}
	return false
}

// PostQuery is a filtered, sorted page of posts.
type PostQuery struct {
	Filter PostFilter
	SortBy PostSort
	Desc   bool
	Offset int
	Limit  int
}

// CommentFilter narrows a comment listing.
type CommentFilter struct {
	Status *models.CommentStatus
	PostID *uuid.UUID
}

// CommentQuery is a filtered page of comments.
type CommentQuery struct {
	Filter CommentFilter
	Offset int
	Limit  int
}

// querier is the subset of *sql.DB and *sql.Tx the PostgreSQL stores use.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}
