package application

import (
	"context"
	"fmt"

	"github.com/teamboard/popcache/internal/domain"
)

// GetCategoryPage returns one page of the category listing.
//
// The full blob is fetched in one round trip and sliced in process, so
// pagination is stable within the lifetime of one cached snapshot. On a miss,
// an empty blob, or any cache-store error, the request is served synchronously
// from the durable store and a rebuild is triggered fire-and-forget; cache
// errors never reach the caller.
func (s *Service) GetCategoryPage(ctx context.Context, category domain.Category, offset, size int) ([]domain.PostSummary, int, error) {
	if _, err := domain.ParseCategory(category.String()); err != nil {
		return nil, 0, err
	}
	if offset < 0 || size <= 0 {
		return nil, 0, fmt.Errorf("%w: offset=%d size=%d", domain.ErrInvalidInput, offset, size)
	}
	if size > s.cfg.MaxPageSize {
		size = s.cfg.MaxPageSize
	}

	if category == domain.CategoryRealtime {
		listing, total, err := s.realtimeListing(ctx)
		if err != nil {
			return nil, 0, err
		}
		return pageOf(listing, offset, size), total, nil
	}

	readCtx, cancel := context.WithTimeout(ctx, s.cfg.CacheReadTimeout)
	listing, found, err := s.listings.Get(readCtx, category)
	cancel()
	if err != nil {
		// Treat a cache-store failure exactly like a miss. The durable store
		// answers this request; the error stays inside the cache boundary.
		svcLogger().WarnContext(ctx, "listing cache read failed, serving durable fallback",
			"operation", "get_category_page",
			"outcome", "fallback",
			"category", category.String(),
			"error", err,
		)
		found = false
	}
	if found && len(listing) > 0 {
		s.metrics.CacheHit(category)
		return pageOf(listing, offset, size), len(listing), nil
	}

	s.metrics.CacheMiss(category)
	s.TriggerRefresh(category)

	items, total, err := s.posts.ListByCategory(ctx, category, s.cfg.FallbackLimit)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: durable fallback for %s: %v", domain.ErrListingUnavailable, category, err)
	}
	return pageOf(items, offset, size), int(total), nil
}

// pageOf slices a listing snapshot in process. Offsets past the end return an
// empty page rather than an error.
func pageOf(items []domain.PostSummary, offset, size int) []domain.PostSummary {
	if offset >= len(items) {
		return []domain.PostSummary{}
	}
	end := offset + size
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}
