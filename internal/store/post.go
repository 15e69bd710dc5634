// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"inkwell/internal/models"
)

// PostStore handles all post-related database operations.
type PostStore struct {
	db querier
}

// NewPostStore creates a new PostStore with the given database connection.
func NewPostStore(db *sql.DB) *PostStore {
	return &PostStore{db: db}
}

const postColumns = `p.id, p.title, p.content, p.thumbnail, p.tags::text, p.status,
	p.is_featured, p.views, p.author_id, p.created_at, p.updated_at`

// commentCountColumn counts every comment of the post regardless of status.
const commentCountColumn = `(SELECT COUNT(*) FROM comments c WHERE c.post_id = p.id) AS comment_count`

// sortColumns maps API sort fields to SQL columns.
var sortColumns = map[PostSort]string{
	SortCreatedAt: "p.created_at",
	SortUpdatedAt: "p.updated_at",
	SortTitle:     "p.title",
	SortViews:     "p.views",
}

// scanPost reads one post row; extra destinations follow the post columns.
func scanPost(row scanner, extra ...any) (*models.Post, error) {
	p := &models.Post{}
	var tags string
	dest := append([]any{
		&p.ID, &p.Title, &p.Content, &p.Thumbnail, &tags, &p.Status,
		&p.IsFeatured, &p.Views, &p.AuthorID, &p.CreatedAt, &p.UpdatedAt,
	}, extra...)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(tags), &p.Tags); err != nil {
		return nil, fmt.Errorf("decode tags: %w", err)
	}
	if p.Tags == nil {
		p.Tags = []string{}
	}
	return p, nil
}

func encodeTags(tags []string) (string, error) {
	if tags == nil {
		tags = []string{}
	}
	b, err := json.Marshal(tags)
	if err != nil {
		return "", fmt.Errorf("encode tags: %w", err)
	}
	return string(b), nil
}

// Create inserts a new post and returns it with the generated ID and timestamps.
func (s *PostStore) Create(ctx context.Context, p *models.Post) (*models.Post, error) {
	tags, err := encodeTags(p.Tags)
	if err != nil {
		return nil, err
	}

	created, err := scanPost(s.db.QueryRowContext(ctx, `
		INSERT INTO posts AS p (title, content, thumbnail, tags, status, is_featured, author_id)
		VALUES ($1, $2, $3, $4::jsonb, $5, $6, $7)
		RETURNING `+postColumns,
		p.Title, p.Content, p.Thumbnail, tags, p.Status, p.IsFeatured, p.AuthorID,
	))
	if err != nil {
		return nil, storageErr("create post", err)
	}
	return created, nil
}

// FindByID retrieves a post by its UUID. Returns nil if not found.
func (s *PostStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Post, error) {
	return s.find(ctx, "find post by id", `SELECT `+postColumns+` FROM posts p WHERE p.id = $1`, id)
}

// FindForUpdate retrieves a post and locks its row for the rest of the
// transaction. Returns nil if not found.
func (s *PostStore) FindForUpdate(ctx context.Context, id uuid.UUID) (*models.Post, error) {
	return s.find(ctx, "lock post", `SELECT `+postColumns+` FROM posts p WHERE p.id = $1 FOR UPDATE`, id)
}

func (s *PostStore) find(ctx context.Context, op, query string, args ...any) (*models.Post, error) {
	p, err := scanPost(s.db.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, storageErr(op, err)
	}
	return p, nil
}

// Exists reports whether a post with the given ID exists.
func (s *PostStore) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM posts WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, storageErr("check post exists", err)
	}
	return exists, nil
}

// IncrementViews bumps the view counter in a single UPDATE so concurrent
// readers serialize on the row lock instead of overwriting each other.
// Returns nil if the post does not exist.
func (s *PostStore) IncrementViews(ctx context.Context, id uuid.UUID) (*models.Post, error) {
	return s.find(ctx, "increment post views", `
		UPDATE posts AS p SET views = p.views + 1
		WHERE p.id = $1
		RETURNING `+postColumns, id)
}

// Update writes the editable fields of a post and refreshes updated_at.
// Views are never written here.
func (s *PostStore) Update(ctx context.Context, p *models.Post) (*models.Post, error) {
	tags, err := encodeTags(p.Tags)
	if err != nil {
		return nil, err
	}

	updated, err := s.find(ctx, "update post", `
		UPDATE posts AS p SET
			title = $1, content = $2, thumbnail = $3, tags = $4::jsonb,
			status = $5, is_featured = $6, updated_at = NOW()
		WHERE p.id = $7
		RETURNING `+postColumns,
		p.Title, p.Content, p.Thumbnail, tags, p.Status, p.IsFeatured, p.ID,
	)
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete removes a post by ID. Its comments go with it (ON DELETE CASCADE).
func (s *PostStore) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return storageErr("delete post", err)
	}
	return nil
}

// List returns one page of posts matching the query, each with its comment count.
func (s *PostStore) List(ctx context.Context, q PostQuery) ([]models.PostWithCount, error) {
	where, args, err := postWhere(q.Filter)
	if err != nil {
		return nil, err
	}

	column, ok := sortColumns[q.SortBy]
	if !ok {
		column = sortColumns[SortCreatedAt]
	}
	dir := "ASC"
	if q.Desc {
		dir = "DESC"
	}

	args = append(args, q.Limit, q.Offset)
	query := fmt.Sprintf(`
		SELECT %s, %s
		FROM posts p
		%s
		ORDER BY %s %s, p.id %s
		LIMIT $%d OFFSET $%d`,
		postColumns, commentCountColumn, where, column, dir, dir, len(args)-1, len(args))

	return s.listWithCount(ctx, "list posts", query, args...)
}

// Count returns the number of posts matching the filter.
func (s *PostStore) Count(ctx context.Context, f PostFilter) (int, error) {
	where, args, err := postWhere(f)
	if err != nil {
		return 0, err
	}

	var count int
	err = s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM posts p `+where, args...).Scan(&count)
	if err != nil {
		return 0, storageErr("count posts", err)
	}
	return count, nil
}

// ListByAuthor returns all posts by the author, newest first, with comment counts.
func (s *PostStore) ListByAuthor(ctx context.Context, authorID string) ([]models.PostWithCount, error) {
	return s.listWithCount(ctx, "list posts by author", `
		SELECT `+postColumns+`, `+commentCountColumn+`
		FROM posts p
		WHERE p.author_id = $1
		ORDER BY p.created_at DESC, p.id DESC`, authorID)
}

func (s *PostStore) listWithCount(ctx context.Context, op, query string, args ...any) ([]models.PostWithCount, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storageErr(op, err)
	}
	defer rows.Close()

	items := []models.PostWithCount{}
	for rows.Next() {
		var count int
		p, err := scanPost(rows, &count)
		if err != nil {
			return nil, storageErr("scan post", err)
		}
		items = append(items, models.PostWithCount{Post: *p, CommentCount: count})
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr(op, err)
	}
	return items, nil
}

// CountByStatus returns the number of posts per status.
func (s *PostStore) CountByStatus(ctx context.Context) (map[models.PostStatus]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT status, COUNT(*) FROM posts GROUP BY status`)
	if err != nil {
		return nil, storageErr("count posts by status", err)
	}
	defer rows.Close()

	counts := make(map[models.PostStatus]int)
	for rows.Next() {
		var status models.PostStatus
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, storageErr("scan post status count", err)
		}
		counts[status] = n
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("count posts by status", err)
	}
	return counts, nil
}

// SumViews returns the total of every post's view counter.
func (s *PostStore) SumViews(ctx context.Context) (int64, error) {
	var total int64
	err := s.db.QueryRowContext(ctx, `SELECT COALESCE(SUM(views), 0)::bigint FROM posts`).Scan(&total)
	if err != nil {
		return 0, storageErr("sum post views", err)
	}
	return total, nil
}

// likeEscaper escapes LIKE wildcards so search terms match literally.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// postWhere builds the WHERE clause for a filter. Conditions are ANDed.
func postWhere(f PostFilter) (string, []any, error) {
	var conds []string
	var args []any

	next := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if f.Search != "" {
		pattern := next("%" + likeEscaper.Replace(f.Search) + "%")
		tag := next(f.Search)
		conds = append(conds, fmt.Sprintf(
			"(p.title ILIKE %s OR p.content ILIKE %s OR p.tags @> jsonb_build_array(%s::text))",
			pattern, pattern, tag))
	}
	if len(f.Tags) > 0 {
		tags, err := encodeTags(f.Tags)
		if err != nil {
			return "", nil, err
		}
		conds = append(conds, fmt.Sprintf("p.tags @> %s::jsonb", next(tags)))
	}
	if f.IsFeatured != nil {
		conds = append(conds, "p.is_featured = "+next(*f.IsFeatured))
	}
	if f.Status != nil {
		conds = append(conds, "p.status = "+next(string(*f.Status)))
	}
	if f.AuthorID != "" {
		conds = append(conds, "p.author_id = "+next(f.AuthorID))
	}

	if len(conds) == 0 {
		return "", nil, nil
	}
	return "WHERE " + strings.Join(conds, " AND "), args, nil
}
