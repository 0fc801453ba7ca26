package application

import (
	"context"
	"errors"
	"fmt"

	"github.com/sony/gobreaker"
	"github.com/teamboard/popcache/internal/domain"
)

// newRealtimeBreaker wraps cache-store access for the realtime category.
// It trips on a failure-rate threshold over a rolling counting window and
// admits a bounded number of trial calls after the cool-down.
func newRealtimeBreaker(cfg Config) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "realtime-listing",
		MaxRequests: cfg.BreakerHalfOpenCalls,
		Interval:    cfg.BreakerCountingWindow,
		Timeout:     cfg.BreakerCoolDown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.BreakerMinRequests {
				return false
			}
			ratio := float64(counts.TotalFailures) / float64(counts.Requests)
			return ratio >= cfg.BreakerFailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			svcLogger().Warn("circuit breaker state changed",
				"operation", "realtime_breaker",
				"breaker", name,
				"from", from.String(),
				"to", to.String(),
			)
		},
	})
}

type cachedListing struct {
	posts []domain.PostSummary
	found bool
}

// realtimeListing reads the realtime listing through the breaker and degrades
// through three tiers: primary cache, process-local snapshot hydrated from the
// durable store, and finally a direct engagement-ranked durable query. Each
// tier is strictly slower and staler than the last, and each is always
// available.
func (s *Service) realtimeListing(ctx context.Context) ([]domain.PostSummary, int, error) {
	res, err := s.breaker.Execute(func() (any, error) {
		readCtx, cancel := context.WithTimeout(ctx, s.cfg.CacheReadTimeout)
		defer cancel()
		posts, found, getErr := s.listings.Get(readCtx, domain.CategoryRealtime)
		if getErr != nil {
			return nil, getErr
		}
		return cachedListing{posts: posts, found: found}, nil
	})
	if err == nil {
		cl := res.(cachedListing)
		if cl.found && len(cl.posts) > 0 {
			s.metrics.CacheHit(domain.CategoryRealtime)
			if s.snapshots != nil {
				s.snapshots.Put(domain.CategoryRealtime, summaryIDs(cl.posts))
			}
			return cl.posts, len(cl.posts), nil
		}
		// Plain miss: cache store is healthy, the projection just is not
		// materialized yet.
		s.metrics.CacheMiss(domain.CategoryRealtime)
		s.TriggerRefresh(domain.CategoryRealtime)
		return s.realtimeDurableFallback(ctx)
	}

	if !errors.Is(err, gobreaker.ErrOpenState) && !errors.Is(err, gobreaker.ErrTooManyRequests) {
		// A direct call failed (as opposed to being short-circuited); a
		// rebuild may still succeed once the store recovers.
		svcLogger().WarnContext(ctx, "realtime cache read failed",
			"operation", "realtime_listing",
			"outcome", "fallback",
			"error", err,
		)
		s.TriggerRefresh(domain.CategoryRealtime)
	}

	if s.snapshots != nil {
		if ids, ok := s.snapshots.Get(domain.CategoryRealtime); ok {
			posts, hydrateErr := s.posts.ListByIDsOrdered(ctx, ids)
			if hydrateErr == nil && len(posts) > 0 {
				s.metrics.FallbackServed("snapshot")
				return posts, len(posts), nil
			}
			if hydrateErr != nil {
				svcLogger().WarnContext(ctx, "snapshot hydration failed",
					"operation", "realtime_listing",
					"outcome", "fallback",
					"error", hydrateErr,
				)
			}
		}
	}
	return s.realtimeDurableFallback(ctx)
}

func (s *Service) realtimeDurableFallback(ctx context.Context) ([]domain.PostSummary, int, error) {
	posts, err := s.posts.ListRecentByEngagement(ctx, s.cfg.FallbackLimit)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: realtime durable fallback: %v", domain.ErrListingUnavailable, err)
	}
	s.metrics.FallbackServed("durable")
	return posts, len(posts), nil
}
