// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package memstore

import (
	"cmp"
	"context"
	"sort"

	"github.com/google/uuid"

	"inkwell/internal/apperr"
	"inkwell/internal/models"
	"inkwell/internal/store"
)

type commentRepo struct{ s *Store }

func cloneComment(c models.Comment) *models.Comment {
	if c.ParentID != nil {
		id := *c.ParentID
		c.ParentID = &id
	}
	return &c
}

func (r commentRepo) Create(ctx context.Context, c *models.Comment) (*models.Comment, error) {
	if err := ctxErr(ctx); err != nil {
		return nil, err
	}
	if !c.Status.Valid() {
		return nil, apperr.Validation("invalid comment status %q", c.Status)
	}
	defer r.s.lock()()

	if _, ok := r.s.data.posts[c.PostID]; !ok {
		return nil, apperr.Validation("post %s does not exist", c.PostID)
	}
	if c.ParentID != nil {
		if _, ok := r.s.data.comments[*c.ParentID]; !ok {
			return nil, apperr.Validation("parent comment %s does not exist", *c.ParentID)
		}
	}

	now := r.s.now()
	row := *cloneComment(*c)
	row.ID = uuid.New()
	row.CreatedAt = now
	row.UpdatedAt = now
	r.s.data.comments[row.ID] = commentRow{comment: row, seq: r.s.nextSeq()}
	return cloneComment(row), nil
}

func (r commentRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Comment, error) {
	if err := ctxErr(ctx); err != nil {
		return nil, err
	}
	defer r.s.lock()()

	row, ok := r.s.data.comments[id]
	if !ok {
		return nil, nil
	}
	return cloneComment(row.comment), nil
}

// FindForUpdate is FindByID; Atomic already serializes transactions.
func (r commentRepo) FindForUpdate(ctx context.Context, id uuid.UUID) (*models.Comment, error) {
	return r.FindByID(ctx, id)
}

func (r commentRepo) UpdateContent(ctx context.Context, id uuid.UUID, content string) (*models.Comment, error) {
	return r.update(ctx, id, func(c *models.Comment) { c.Content = content })
}

func (r commentRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status models.CommentStatus) (*models.Comment, error) {
	if !status.Valid() {
		return nil, apperr.Validation("invalid comment status %q", status)
	}
	return r.update(ctx, id, func(c *models.Comment) { c.Status = status })
}

func (r commentRepo) update(ctx context.Context, id uuid.UUID, apply func(*models.Comment)) (*models.Comment, error) {
	if err := ctxErr(ctx); err != nil {
		return nil, err
	}
	defer r.s.lock()()

	row, ok := r.s.data.comments[id]
	if !ok {
		return nil, nil
	}
	next := *cloneComment(row.comment)
	apply(&next)
	next.UpdatedAt = r.s.now()
	row.comment = next
	r.s.data.comments[id] = row
	return cloneComment(next), nil
}

// Delete removes the comment and every descendant reply.
func (r commentRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if err := ctxErr(ctx); err != nil {
		return err
	}
	defer r.s.lock()()

	doomed := []uuid.UUID{id}
	for len(doomed) > 0 {
		cur := doomed[0]
		doomed = doomed[1:]
		delete(r.s.data.comments, cur)
		for cid, c := range r.s.data.comments {
			if c.comment.ParentID != nil && *c.comment.ParentID == cur {
				doomed = append(doomed, cid)
			}
		}
	}
	return nil
}

func (r commentRepo) ListByPost(ctx context.Context, postID uuid.UUID, status models.CommentStatus) ([]models.Comment, error) {
	if err := ctxErr(ctx); err != nil {
		return nil, err
	}
	defer r.s.lock()()

	rows := r.filter(func(c *models.Comment) bool {
		return c.PostID == postID && c.Status == status
	})
	return collect(rows), nil
}

func (r commentRepo) ListByAuthor(ctx context.Context, authorID string) ([]models.AuthorComment, error) {
	if err := ctxErr(ctx); err != nil {
		return nil, err
	}
	defer r.s.lock()()

	rows := r.filter(func(c *models.Comment) bool { return c.AuthorID == authorID })

	items := make([]models.AuthorComment, 0, len(rows))
	for i := len(rows) - 1; i >= 0; i-- {
		c := rows[i].comment
		item := models.AuthorComment{Comment: *cloneComment(c)}
		if p, ok := r.s.data.posts[c.PostID]; ok {
			item.Post = clonePost(p.post).Summary()
		}
		for _, reply := range r.s.data.comments {
			if reply.comment.ParentID != nil && *reply.comment.ParentID == c.ID {
				item.ReplyCount++
			}
		}
		items = append(items, item)
	}
	return items, nil
}

func (r commentRepo) List(ctx context.Context, q store.CommentQuery) ([]models.Comment, error) {
	if err := ctxErr(ctx); err != nil {
		return nil, err
	}
	defer r.s.lock()()

	rows := r.filter(matchFilter(q.Filter))
	all := collect(rows)

	items := []models.Comment{}
	start := max(q.Offset, 0)
	for i := start; i < len(all) && (q.Limit <= 0 || i-start < q.Limit); i++ {
		items = append(items, all[i])
	}
	return items, nil
}

func (r commentRepo) Count(ctx context.Context, f store.CommentFilter) (int, error) {
	if err := ctxErr(ctx); err != nil {
		return 0, err
	}
	defer r.s.lock()()

	return len(r.filter(matchFilter(f))), nil
}

func (r commentRepo) CountByStatus(ctx context.Context) (map[models.CommentStatus]int, error) {
	if err := ctxErr(ctx); err != nil {
		return nil, err
	}
	defer r.s.lock()()

	counts := make(map[models.CommentStatus]int)
	for _, row := range r.s.data.comments {
		counts[row.comment.Status]++
	}
	return counts, nil
}

func matchFilter(f store.CommentFilter) func(*models.Comment) bool {
	return func(c *models.Comment) bool {
		if f.Status != nil && c.Status != *f.Status {
			return false
		}
		if f.PostID != nil && c.PostID != *f.PostID {
			return false
		}
		return true
	}
}

// filter returns matching rows oldest first.
func (r commentRepo) filter(match func(*models.Comment) bool) []commentRow {
	var rows []commentRow
	for _, row := range r.s.data.comments {
		if match(&row.comment) {
			rows = append(rows, row)
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		if c := rows[i].comment.CreatedAt.Compare(rows[j].comment.CreatedAt); c != 0 {
			return c < 0
		}
		return cmp.Less(rows[i].seq, rows[j].seq)
	})
	return rows
}

func collect(rows []commentRow) []models.Comment {
	items := make([]models.Comment, 0, len(rows))
	for _, row := range rows {
		items = append(items, *cloneComment(row.comment))
	}
	return items
}
