// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package service

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"inkwell/internal/models"
)

// Validation limits for posts and comments.
const (
	maxTitleLen     = 300
	maxContentLen   = 100_000
	maxThumbnailLen = 2_048
	maxTags         = 20
	maxTagLen       = 50
	maxCommentLen   = 2_000
)

// validatePost checks a post's editable fields and returns the first error found.
func validatePost(p *models.Post) string {
	if strings.TrimSpace(p.Title) == "" {
		return "Title is required."
	}
	if utf8.RuneCountInString(p.Title) > maxTitleLen {
		return "Title is too long (max 300 characters)."
	}
	if strings.TrimSpace(p.Content) == "" {
		return "Content is required."
	}
	if utf8.RuneCountInString(p.Content) > maxContentLen {
		return "Content is too long (max 100,000 characters)."
	}
	if p.Thumbnail != nil && utf8.RuneCountInString(*p.Thumbnail) > maxThumbnailLen {
		return "Thumbnail URL is too long (max 2,048 characters)."
	}
	if len(p.Tags) > maxTags {
		return fmt.Sprintf("Too many tags (max %d).", maxTags)
	}
	for _, tag := range p.Tags {
		if tag == "" {
			return "Tags must not be empty."
		}
		if utf8.RuneCountInString(tag) > maxTagLen {
			return "Tag is too long (max 50 characters)."
		}
	}
	if !p.Status.Valid() {
		return fmt.Sprintf("Invalid status %q.", p.Status)
	}
	return ""
}

// validateComment checks comment content and returns the first error found.
func validateComment(content string) string {
	content = strings.TrimSpace(content)
	if content == "" {
		return "Comment content is required."
	}
	if utf8.RuneCountInString(content) > maxCommentLen {
		return "Comment is too long (max 2,000 characters)."
	}
	return ""
}

// normalizeTags trims every tag and drops duplicates, keeping first-seen order.
func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]bool, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if seen[tag] {
			continue
		}
		seen[tag] = true
		out = append(out, tag)
	}
	return out
}
