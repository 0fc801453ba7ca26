package ports

import (
	"context"

	"github.com/teamboard/popcache/internal/domain"
)

// EventPublisher delivers featured-author notifications produced by the
// daily rebuild. Delivery is best-effort; the rebuild never blocks on it.
type EventPublisher interface {
	PublishAuthorFeatured(ctx context.Context, event domain.FeaturedAuthorEvent) error
}
