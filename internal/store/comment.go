// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"inkwell/internal/models"
)

// CommentStore handles all comment-related database operations.
type CommentStore struct {
	db querier
}

// NewCommentStore creates a new CommentStore with the given database connection.
func NewCommentStore(db *sql.DB) *CommentStore {
	return &CommentStore{db: db}
}

const commentColumns = `c.id, c.content, c.author_id, c.post_id, c.parent_id, c.status, c.created_at, c.updated_at`

func scanComment(row scanner, extra ...any) (*models.Comment, error) {
	c := &models.Comment{}
	dest := append([]any{
		&c.ID, &c.Content, &c.AuthorID, &c.PostID, &c.ParentID, &c.Status, &c.CreatedAt, &c.UpdatedAt,
	}, extra...)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	return c, nil
}

// Create inserts a new comment and returns it with the generated ID and timestamps.
func (s *CommentStore) Create(ctx context.Context, c *models.Comment) (*models.Comment, error) {
	created, err := scanComment(s.db.QueryRowContext(ctx, `
		INSERT INTO comments AS c (content, author_id, post_id, parent_id, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+commentColumns,
		c.Content, c.AuthorID, c.PostID, c.ParentID, c.Status,
	))
	if err != nil {
		return nil, storageErr("create comment", err)
	}
	return created, nil
}

// FindByID retrieves a comment by its UUID. Returns nil if not found.
func (s *CommentStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Comment, error) {
	return s.find(ctx, "find comment by id", `SELECT `+commentColumns+` FROM comments c WHERE c.id = $1`, id)
}

// FindForUpdate retrieves a comment and locks its row. Returns nil if not found.
func (s *CommentStore) FindForUpdate(ctx context.Context, id uuid.UUID) (*models.Comment, error) {
	return s.find(ctx, "lock comment", `SELECT `+commentColumns+` FROM comments c WHERE c.id = $1 FOR UPDATE`, id)
}

// UpdateContent replaces the comment body. Returns nil if not found.
func (s *CommentStore) UpdateContent(ctx context.Context, id uuid.UUID, content string) (*models.Comment, error) {
	return s.find(ctx, "update comment content", `
		UPDATE comments AS c SET content = $1, updated_at = NOW()
		WHERE c.id = $2
		RETURNING `+commentColumns, content, id)
}

// UpdateStatus sets the moderation status. Returns nil if not found.
func (s *CommentStore) UpdateStatus(ctx context.Context, id uuid.UUID, status models.CommentStatus) (*models.Comment, error) {
	return s.find(ctx, "update comment status", `
		UPDATE comments AS c SET status = $1, updated_at = NOW()
		WHERE c.id = $2
		RETURNING `+commentColumns, status, id)
}

func (s *CommentStore) find(ctx context.Context, op, query string, args ...any) (*models.Comment, error) {
	c, err := scanComment(s.db.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, storageErr(op, err)
	}
	return c, nil
}

// Delete removes a comment by ID. Replies are removed by ON DELETE CASCADE.
func (s *CommentStore) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM comments WHERE id = $1`, id)
	if err != nil {
		return storageErr("delete comment", err)
	}
	return nil
}

// ListByPost returns the post's comments with the given status, oldest first.
func (s *CommentStore) ListByPost(ctx context.Context, postID uuid.UUID, status models.CommentStatus) ([]models.Comment, error) {
	return s.list(ctx, "list comments by post", `
		SELECT `+commentColumns+`
		FROM comments c
		WHERE c.post_id = $1 AND c.status = $2
		ORDER BY c.created_at ASC, c.id ASC`, postID, status)
}

// ListByAuthor returns the author's comments newest first with their post
// summary and direct reply count.
func (s *CommentStore) ListByAuthor(ctx context.Context, authorID string) ([]models.AuthorComment, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+commentColumns+`, p.id, p.title, p.thumbnail,
			(SELECT COUNT(*) FROM comments r WHERE r.parent_id = c.id)
		FROM comments c
		JOIN posts p ON p.id = c.post_id
		WHERE c.author_id = $1
		ORDER BY c.created_at DESC, c.id DESC`, authorID)
	if err != nil {
		return nil, storageErr("list comments by author", err)
	}
	defer rows.Close()

	items := []models.AuthorComment{}
	for rows.Next() {
		var item models.AuthorComment
		c, err := scanComment(rows, &item.Post.ID, &item.Post.Title, &item.Post.Thumbnail, &item.ReplyCount)
		if err != nil {
			return nil, storageErr("scan author comment", err)
		}
		item.Comment = *c
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("list comments by author", err)
	}
	return items, nil
}

// List returns one page of comments matching the query, oldest first.
func (s *CommentStore) List(ctx context.Context, q CommentQuery) ([]models.Comment, error) {
	where, args := commentWhere(q.Filter)
	args = append(args, q.Limit, q.Offset)
	query := fmt.Sprintf(`
		SELECT %s
		FROM comments c
		%s
		ORDER BY c.created_at ASC, c.id ASC
		LIMIT $%d OFFSET $%d`,
		commentColumns, where, len(args)-1, len(args))

	return s.list(ctx, "list comments", query, args...)
}

// Count returns the number of comments matching the filter.
func (s *CommentStore) Count(ctx context.Context, f CommentFilter) (int, error) {
	where, args := commentWhere(f)

	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM comments c `+where, args...).Scan(&count)
	if err != nil {
		return 0, storageErr("count comments", err)
	}
	return count, nil
}

func (s *CommentStore) list(ctx context.Context, op, query string, args ...any) ([]models.Comment, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storageErr(op, err)
	}
	defer rows.Close()

	items := []models.Comment{}
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, storageErr("scan comment", err)
		}
		items = append(items, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr(op, err)
	}
	return items, nil
}

// CountByStatus returns the number of comments per status.
func (s *CommentStore) CountByStatus(ctx context.Context) (map[models.CommentStatus]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT status, COUNT(*) FROM comments GROUP BY status`)
	if err != nil {
		return nil, storageErr("count comments by status", err)
	}
	defer rows.Close()

	counts := make(map[models.CommentStatus]int)
	for rows.Next() {
		var status models.CommentStatus
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, storageErr("scan comment status count", err)
		}
		counts[status] = n
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("count comments by status", err)
	}
	return counts, nil
}

func commentWhere(f CommentFilter) (string, []any) {
	var conds []string
	var args []any

	if f.Status != nil {
		args = append(args, string(*f.Status))
		conds = append(conds, fmt.Sprintf("c.status = $%d", len(args)))
	}
	if f.PostID != nil {
		args = append(args, *f.PostID)
		conds = append(conds, fmt.Sprintf("c.post_id = $%d", len(args)))
	}

	if len(conds) == 0 {
		return "", nil
	}
	return "WHERE " + strings.Join(conds, " AND "), args
}
