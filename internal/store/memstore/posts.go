// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package memstore

import (
	"cmp"
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"

	"inkwell/internal/apperr"
	"inkwell/internal/models"
	"inkwell/internal/store"
)

type postRepo struct{ s *Store }

// clonePost detaches the slice and pointer fields from the stored row.
func clonePost(p models.Post) *models.Post {
	if p.Tags != nil {
		p.Tags = append([]string{}, p.Tags...)
	} else {
		p.Tags = []string{}
	}
	if p.Thumbnail != nil {
		t := *p.Thumbnail
		p.Thumbnail = &t
	}
	return &p
}

func checkPost(p *models.Post) error {
	if !p.Status.Valid() {
		return apperr.Validation("invalid post status %q", p.Status)
	}
	if p.Title == "" || p.Content == "" {
		return apperr.Validation("title and content are required")
	}
	return nil
}

func (r postRepo) Create(ctx context.Context, p *models.Post) (*models.Post, error) {
	if err := ctxErr(ctx); err != nil {
		return nil, err
	}
	if err := checkPost(p); err != nil {
		return nil, err
	}
	defer r.s.lock()()

	now := r.s.now()
	row := *clonePost(*p)
	row.ID = uuid.New()
	row.Views = 0
	row.CreatedAt = now
	row.UpdatedAt = now
	r.s.data.posts[row.ID] = postRow{post: row, seq: r.s.nextSeq()}
	return clonePost(row), nil
}

func (r postRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Post, error) {
	if err := ctxErr(ctx); err != nil {
		return nil, err
	}
	defer r.s.lock()()

	row, ok := r.s.data.posts[id]
	if !ok {
		return nil, nil
	}
	return clonePost(row.post), nil
}

// FindForUpdate is FindByID; Atomic already serializes transactions.
func (r postRepo) FindForUpdate(ctx context.Context, id uuid.UUID) (*models.Post, error) {
	return r.FindByID(ctx, id)
}

func (r postRepo) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	if err := ctxErr(ctx); err != nil {
		return false, err
	}
	defer r.s.lock()()

	_, ok := r.s.data.posts[id]
	return ok, nil
}

func (r postRepo) IncrementViews(ctx context.Context, id uuid.UUID) (*models.Post, error) {
	if err := ctxErr(ctx); err != nil {
		return nil, err
	}
	defer r.s.lock()()

	row, ok := r.s.data.posts[id]
	if !ok {
		return nil, nil
	}
	row.post.Views++
	r.s.data.posts[id] = row
	return clonePost(row.post), nil
}

func (r postRepo) Update(ctx context.Context, p *models.Post) (*models.Post, error) {
	if err := ctxErr(ctx); err != nil {
		return nil, err
	}
	if err := checkPost(p); err != nil {
		return nil, err
	}
	defer r.s.lock()()

	row, ok := r.s.data.posts[p.ID]
	if !ok {
		return nil, nil
	}
	next := *clonePost(*p)
	next.Views = row.post.Views
	next.AuthorID = row.post.AuthorID
	next.CreatedAt = row.post.CreatedAt
	next.UpdatedAt = r.s.now()
	row.post = next
	r.s.data.posts[p.ID] = row
	return clonePost(next), nil
}

func (r postRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if err := ctxErr(ctx); err != nil {
		return err
	}
	defer r.s.lock()()

	delete(r.s.data.posts, id)
	for cid, c := range r.s.data.comments {
		if c.comment.PostID == id {
			delete(r.s.data.comments, cid)
		}
	}
	return nil
}

func (r postRepo) List(ctx context.Context, q store.PostQuery) ([]models.PostWithCount, error) {
	if err := ctxErr(ctx); err != nil {
		return nil, err
	}
	defer r.s.lock()()

	rows := r.filter(q.Filter)
	sortPosts(rows, q.SortBy, q.Desc)

	items := []models.PostWithCount{}
	start := max(q.Offset, 0)
	for i := start; i < len(rows) && (q.Limit <= 0 || i-start < q.Limit); i++ {
		items = append(items, r.withCount(rows[i].post))
	}
	return items, nil
}

func (r postRepo) Count(ctx context.Context, f store.PostFilter) (int, error) {
	if err := ctxErr(ctx); err != nil {
		return 0, err
	}
	defer r.s.lock()()

	return len(r.filter(f)), nil
}

func (r postRepo) ListByAuthor(ctx context.Context, authorID string) ([]models.PostWithCount, error) {
	if err := ctxErr(ctx); err != nil {
		return nil, err
	}
	defer r.s.lock()()

	rows := r.filter(store.PostFilter{AuthorID: authorID})
	sortPosts(rows, store.SortCreatedAt, true)

	items := make([]models.PostWithCount, 0, len(rows))
	for _, row := range rows {
		items = append(items, r.withCount(row.post))
	}
	return items, nil
}

func (r postRepo) CountByStatus(ctx context.Context) (map[models.PostStatus]int, error) {
	if err := ctxErr(ctx); err != nil {
		return nil, err
	}
	defer r.s.lock()()

	counts := make(map[models.PostStatus]int)
	for _, row := range r.s.data.posts {
		counts[row.post.Status]++
	}
	return counts, nil
}

func (r postRepo) SumViews(ctx context.Context) (int64, error) {
	if err := ctxErr(ctx); err != nil {
		return 0, err
	}
	defer r.s.lock()()

	var total int64
	for _, row := range r.s.data.posts {
		total += row.post.Views
	}
	return total, nil
}

func (r postRepo) withCount(p models.Post) models.PostWithCount {
	n := 0
	for _, c := range r.s.data.comments {
		if c.comment.PostID == p.ID {
			n++
		}
	}
	return models.PostWithCount{Post: *clonePost(p), CommentCount: n}
}

func (r postRepo) filter(f store.PostFilter) []postRow {
	search := strings.ToLower(f.Search)

	var rows []postRow
	for _, row := range r.s.data.posts {
		p := &row.post
		if search != "" &&
			!strings.Contains(strings.ToLower(p.Title), search) &&
			!strings.Contains(strings.ToLower(p.Content), search) &&
			!p.HasTag(f.Search) {
			continue
		}
		if !p.HasTags(f.Tags) {
			continue
		}
		if f.IsFeatured != nil && p.IsFeatured != *f.IsFeatured {
			continue
		}
		if f.Status != nil && p.Status != *f.Status {
			continue
		}
		if f.AuthorID != "" && p.AuthorID != f.AuthorID {
			continue
		}
		rows = append(rows, row)
	}
	return rows
}

func sortPosts(rows []postRow, by store.PostSort, desc bool) {
	compare := func(a, b postRow) int {
		switch by {
		case store.SortUpdatedAt:
			return a.post.UpdatedAt.Compare(b.post.UpdatedAt)
		case store.SortTitle:
			return strings.Compare(a.post.Title, b.post.Title)
		case store.SortViews:
			return cmp.Compare(a.post.Views, b.post.Views)
		default:
			return a.post.CreatedAt.Compare(b.post.CreatedAt)
		}
	}
	sort.SliceStable(rows, func(i, j int) bool {
		c := compare(rows[i], rows[j])
		if c == 0 {
			c = cmp.Compare(rows[i].seq, rows[j].seq)
		}
		if desc {
			return c > 0
		}
		return c < 0
	})
}
