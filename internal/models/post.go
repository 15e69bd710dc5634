// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// PostStatus represents the publishing state of a post.
type PostStatus string

const (
	PostStatusDraft     PostStatus = "DRAFT"
	PostStatusPublished PostStatus = "PUBLISHED"
	PostStatusArchived  PostStatus = "ARCHIVED"
)

// PostStatuses lists every post status in display order.
var PostStatuses = []PostStatus{PostStatusDraft, PostStatusPublished, PostStatusArchived}

// Valid reports whether s is one of the known post statuses.
func (s PostStatus) Valid() bool {
	for _, v := range PostStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// Post is an article owned by its author. Views only grow and are only
// changed by the read-by-id path.
type Post struct {
	ID         uuid.UUID  `json:"id"`
	Title      string     `json:"title"`
	Content    string     `json:"content"`
	Thumbnail  *string    `json:"thumbnail,omitempty"`
	Tags       []string   `json:"tags"`
	Status     PostStatus `json:"status"`
	IsFeatured bool       `json:"isFeatured"`
	Views      int64      `json:"views"`
	AuthorID   string     `json:"author_id"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
}

// HasTags reports whether the post carries every tag in tags.
func (p *Post) HasTags(tags []string) bool {
	for _, want := range tags {
		if !p.HasTag(want) {
			return false
		}
	}
	return true
}

// HasTag reports whether tag is one of the post's tags (exact match).
func (p *Post) HasTag(tag string) bool {
	for _, t := range p.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// PostWithCount is a post annotated with the number of its comments.
type PostWithCount struct {
	Post
	CommentCount int `json:"commentCount"`
}

// PostSummary is the minimal view of a post embedded in comment responses.
type PostSummary struct {
	ID        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	Thumbnail *string   `json:"thumbnail,omitempty"`
}

// Summary returns the post's minimal view.
func (p *Post) Summary() PostSummary {
	return PostSummary{ID: p.ID, Title: p.Title, Thumbnail: p.Thumbnail}
}

// Stats is a point-in-time snapshot of content and account counters.
type Stats struct {
	TotalPosts       int   `json:"totalPosts"`
	PublishedPosts   int   `json:"publishedPosts"`
	DraftPosts       int   `json:"draftPosts"`
	ArchivedPosts    int   `json:"archivedPosts"`
	TotalComments    int   `json:"totalComments"`
	ApprovedComments int   `json:"approvedComments"`
	PendingComments  int   `json:"pendingComments"`
	RejectedComments int   `json:"rejectedComments"`
	TotalUsers       int   `json:"totalUsers"`
	AdminCount       int   `json:"adminCount"`
	UserCount        int   `json:"userCount"`
	TotalViews       int64 `json:"totalViews"`
}
