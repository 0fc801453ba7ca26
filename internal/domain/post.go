package domain

import (
	"fmt"
	"strings"
	"time"
)

// Category identifies one independently cached popularity listing.
type Category string

const (
	CategoryWeekly    Category = "WEEKLY"
	CategoryLegend    Category = "LEGEND"
	CategoryNotice    Category = "NOTICE"
	CategoryRealtime  Category = "REALTIME"
	CategoryFirstPage Category = "FIRST_PAGE"
)

// Categories returns every cached category in a stable order.
// Write-path invalidation iterates this list when touching all blobs.
func Categories() []Category {
	return []Category{
		CategoryWeekly,
		CategoryLegend,
		CategoryNotice,
		CategoryRealtime,
		CategoryFirstPage,
	}
}

// ParseCategory maps external input onto a known category.
// Unknown values are rejected up front so the cache key space stays closed.
func ParseCategory(raw string) (Category, error) {
	c := Category(strings.ToUpper(strings.TrimSpace(raw)))
	switch c {
	case CategoryWeekly, CategoryLegend, CategoryNotice, CategoryRealtime, CategoryFirstPage:
		return c, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownCategory, raw)
	}
}

func (c Category) String() string { return string(c) }

// PostSummary is the immutable listing projection of a post.
// Cached copies are replaced wholesale or patched a single field at a time,
// never mutated in place by readers.
type PostSummary struct {
	ID           int64     `json:"id"`
	Title        string    `json:"title"`
	CreatedAt    time.Time `json:"created_at"`
	AuthorID     *int64    `json:"author_id,omitempty"`
	AuthorName   string    `json:"author_name"`
	ViewCount    int       `json:"view_count"`
	LikeCount    int       `json:"like_count"`
	CommentCount int       `json:"comment_count"`
	Weekly       bool      `json:"weekly"`
	Legend       bool      `json:"legend"`
	Notice       bool      `json:"notice"`
}

// FeaturedAuthorEvent records an author newly entering a curated listing.
// Emitted by the daily rebuild so notification delivery stays external.
type FeaturedAuthorEvent struct {
	AuthorID   int64     `json:"author_id"`
	AuthorName string    `json:"author_name"`
	Category   Category  `json:"category"`
	PostID     int64     `json:"post_id"`
	OccurredAt time.Time `json:"occurred_at"`
}
