// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// CommentStatus is the moderation state of a comment.
type CommentStatus string

const (
	CommentStatusPending  CommentStatus = "PENDING"
	CommentStatusApproved CommentStatus = "APPROVED"
	CommentStatusRejected CommentStatus = "REJECT"
)

// CommentStatuses lists every comment status in display order.
var CommentStatuses = []CommentStatus{CommentStatusPending, CommentStatusApproved, CommentStatusRejected}

// Valid reports whether s is one of the known comment statuses.
func (s CommentStatus) Valid() bool {
	for _, v := range CommentStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// CanTransition reports whether a moderator may move a comment from s to
// next. Every state is re-enterable except by a self-transition.
func (s CommentStatus) CanTransition(next CommentStatus) bool {
	return s.Valid() && next.Valid() && s != next
}

// ThreadDepth is the number of reply levels expanded below a top-level
// comment when a thread is retrieved.
const ThreadDepth = 2

// Comment is a remark on a post, optionally replying to another comment of
// the same post.
type Comment struct {
	ID        uuid.UUID     `json:"id"`
	Content   string        `json:"content"`
	AuthorID  string        `json:"author_id"`
	PostID    uuid.UUID     `json:"post_id"`
	ParentID  *uuid.UUID    `json:"parent_id,omitempty"`
	Status    CommentStatus `json:"status"`
	CreatedAt time.Time     `json:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt"`
}

// IsTopLevel returns true if the comment does not reply to another comment.
func (c *Comment) IsTopLevel() bool {
	return c.ParentID == nil
}

// IsApproved returns true if the comment is publicly visible.
func (c *Comment) IsApproved() bool {
	return c.Status == CommentStatusApproved
}

// CommentWithPost is a comment joined with a summary of its post.
type CommentWithPost struct {
	Comment
	Post PostSummary `json:"post"`
}

// AuthorComment is a comment in an author listing.
type AuthorComment struct {
	Comment
	Post       PostSummary `json:"post"`
	ReplyCount int         `json:"replyCount"`
}

// ThreadComment is a node of a post's approved-comment thread. Replies are
// empty below ThreadDepth.
type ThreadComment struct {
	Comment
	Replies []ThreadComment `json:"replies"`
}

// PostWithThread is a post with its approved-comment thread.
type PostWithThread struct {
	Post
	Comments []ThreadComment `json:"comments"`
}
