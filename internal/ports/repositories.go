package ports

import (
	"context"
	"time"

	"github.com/teamboard/popcache/internal/domain"
)

// PostRepository is the durable relational source of truth for post summaries.
// The cache subsystem treats it as an opaque collaborator returning ordered
// rows; it never writes through it.
type PostRepository interface {
	// ListByCategory returns the category's current membership in listing
	// order, plus the total membership count.
	ListByCategory(ctx context.Context, category domain.Category, limit int) ([]domain.PostSummary, int64, error)
	// ListByIDsOrdered hydrates summaries for ids, preserving the input order.
	// Missing ids are skipped, not errored: a ranked id may have been deleted.
	ListByIDsOrdered(ctx context.Context, ids []int64) ([]domain.PostSummary, error)
	// ListRecentByEngagement is the last-resort fallback ranking: recent posts
	// ordered by interaction counts.
	ListRecentByEngagement(ctx context.Context, limit int) ([]domain.PostSummary, error)
	// ListWeeklyTop ranks posts created since the window start for the daily
	// WEEKLY rebuild.
	ListWeeklyTop(ctx context.Context, since time.Time, limit int) ([]domain.PostSummary, error)
	// ListLegendQualifying returns all-time posts at or above the like
	// threshold for the daily LEGEND rebuild.
	ListLegendQualifying(ctx context.Context, minLikes, limit int) ([]domain.PostSummary, error)
}
