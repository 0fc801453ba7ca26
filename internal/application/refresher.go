package application

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/teamboard/popcache/internal/domain"
)

// TriggerRefresh requests an asynchronous rebuild of the category listing.
// It enqueues onto the refresh pool and returns immediately; the caller never
// blocks on rebuild completion. A full queue drops the request — a later miss
// retriggers, so nothing is lost beyond freshness.
func (s *Service) TriggerRefresh(category domain.Category) {
	if _, err := domain.ParseCategory(category.String()); err != nil {
		return
	}
	select {
	case s.refreshCh <- category:
	default:
		svcLogger().Warn("refresh queue full, dropping trigger",
			"operation", "trigger_refresh",
			"outcome", "dropped",
			"category", category.String(),
		)
	}
}

// RunRefreshWorkers consumes refresh triggers until context cancellation.
// The pool is sized independently of request handling so rebuild bursts cannot
// starve user-facing reads.
func (s *Service) RunRefreshWorkers(ctx context.Context) error {
	done := make(chan struct{})
	for i := 0; i < s.cfg.RefreshWorkers; i++ {
		go func() {
			defer func() { done <- struct{}{} }()
			for {
				select {
				case <-ctx.Done():
					return
				case category := <-s.refreshCh:
					s.rebuildCategory(ctx, category)
				}
			}
		}()
	}
	for i := 0; i < s.cfg.RefreshWorkers; i++ {
		<-done
	}
	return ctx.Err()
}

// rebuildCategory performs one lease-gated rebuild. Under N concurrent
// triggers exactly one worker holds the lease and queries the durable store;
// the rest observe contention and no-op, which is the success path.
func (s *Service) rebuildCategory(ctx context.Context, category domain.Category) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.RebuildTimeout)
	defer cancel()

	token, acquired, err := s.leases.Acquire(ctx, category, s.cfg.LeaseWait, s.cfg.LeaseDuration)
	if err != nil {
		svcLogger().WarnContext(ctx, "lease acquisition failed",
			"operation", "rebuild_category",
			"outcome", "failure",
			"category", category.String(),
			"error", err,
		)
		s.metrics.RefreshCompleted(category, "lease_error")
		return
	}
	if !acquired {
		// Another worker is already rebuilding this category.
		s.metrics.RefreshCompleted(category, "contended")
		return
	}
	defer func() {
		releaseCtx, releaseCancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
		defer releaseCancel()
		if releaseErr := s.leases.Release(releaseCtx, category, token); releaseErr != nil {
			svcLogger().WarnContext(ctx, "lease release failed, expiry will clear it",
				"operation", "rebuild_category",
				"outcome", "failure",
				"category", category.String(),
				"error", releaseErr,
			)
		}
	}()

	listing, err := s.buildListing(ctx, category)
	if err != nil {
		svcLogger().WarnContext(ctx, "listing rebuild source query failed",
			"operation", "rebuild_category",
			"outcome", "failure",
			"category", category.String(),
			"error", err,
		)
		s.metrics.RefreshCompleted(category, "source_error")
		return
	}

	if err := s.writeListingWithRetry(ctx, category, listing); err != nil {
		svcLogger().WarnContext(ctx, "listing rebuild write failed after retries",
			"operation", "rebuild_category",
			"outcome", "failure",
			"category", category.String(),
			"error", err,
		)
		s.metrics.RefreshCompleted(category, "write_error")
		return
	}
	s.metrics.RefreshCompleted(category, "success")
}

// buildListing resolves the category's current membership and hydrates full
// summaries in ranking order.
func (s *Service) buildListing(ctx context.Context, category domain.Category) ([]domain.PostSummary, error) {
	if category == domain.CategoryRealtime {
		ids, err := s.scores.TopN(ctx, s.cfg.RealtimeSize)
		if err != nil {
			return nil, err
		}
		listing, err := s.posts.ListByIDsOrdered(ctx, ids)
		if err != nil {
			return nil, err
		}
		if s.snapshots != nil && len(listing) > 0 {
			s.snapshots.Put(domain.CategoryRealtime, summaryIDs(listing))
		}
		return listing, nil
	}

	listing, _, err := s.posts.ListByCategory(ctx, category, s.cfg.ListingSize)
	return listing, err
}

// writeListingWithRetry writes the rebuilt blob with bounded exponential
// backoff. Final failure is swallowed by the caller: a subsequent miss
// retriggers the rebuild.
func (s *Service) writeListingWithRetry(ctx context.Context, category domain.Category, listing []domain.PostSummary) error {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = s.cfg.RebuildBackoffBase
	policy.MaxElapsedTime = 0

	return backoff.Retry(func() error {
		return s.listings.Put(ctx, category, listing, s.cfg.ttlFor(category))
	}, backoff.WithContext(backoff.WithMaxRetries(policy, uint64(s.cfg.RebuildMaxAttempts-1)), ctx))
}

func summaryIDs(posts []domain.PostSummary) []int64 {
	ids := make([]int64, 0, len(posts))
	for _, p := range posts {
		ids = append(ids, p.ID)
	}
	return ids
}
