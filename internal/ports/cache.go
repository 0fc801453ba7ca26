package ports

import (
	"context"
	"time"

	"github.com/teamboard/popcache/internal/domain"
)

// ListingStore holds one serialized ordered listing per category.
// The whole listing is a single value so reads are atomic and consistent;
// a zero TTL means the entry never expires.
type ListingStore interface {
	Get(ctx context.Context, category domain.Category) ([]domain.PostSummary, bool, error)
	Put(ctx context.Context, category domain.Category, posts []domain.PostSummary, ttl time.Duration) error
	Delete(ctx context.Context, category domain.Category) error
}

// ScoreStore is the realtime ranking sorted set: postID -> floating score.
// The set is always a superset of the realtime listing; the listing is a
// size-bounded projection of its top entries.
type ScoreStore interface {
	Increment(ctx context.Context, postID int64, delta float64) (float64, error)
	TopN(ctx context.Context, n int) ([]int64, error)
	Remove(ctx context.Context, postID int64) error
	// Decay multiplies every score by factor and prunes entries whose
	// resulting score is at or below floor. Returns the pruned count.
	Decay(ctx context.Context, factor, floor float64) (int64, error)
}

// LeaseStore hands out short-lived per-category rebuild leases.
// At most one lease per category exists at any instant; a crashed holder's
// lease expires naturally after its duration.
type LeaseStore interface {
	// Acquire waits at most wait for the lease. It returns an owner token
	// when acquired; acquired=false without error means another holder won.
	Acquire(ctx context.Context, category domain.Category, wait, duration time.Duration) (token string, acquired bool, err error)
	// Release frees the lease only if token still owns it, so a holder that
	// outlived its lease cannot release a successor's claim.
	Release(ctx context.Context, category domain.Category, token string) error
}

// SnapshotCache is the in-process fallback tier: a bounded, TTL'd best-effort
// copy of the realtime ID ordering, consulted only when the cache store is
// judged unhealthy.
type SnapshotCache interface {
	Put(category domain.Category, ids []int64)
	Get(category domain.Category) ([]int64, bool)
}
