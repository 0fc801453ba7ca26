package application

import (
	"time"

	"github.com/teamboard/popcache/internal/domain"
	"github.com/teamboard/popcache/internal/ports"
)

type Config struct {
	// Bounded listing TTLs are deliberately off-round (24h30m default) so a
	// fleet of categories does not expire in one synchronized storm.
	WeeklyTTL    time.Duration
	LegendTTL    time.Duration
	FirstPageTTL time.Duration

	// ListingSize caps entries per cached blob; RealtimeSize caps the top-N
	// projection of the score set.
	ListingSize  int
	RealtimeSize int

	// FallbackLimit bounds the synchronous durable-store query serving a
	// request during a cache miss or outage.
	FallbackLimit int
	MaxPageSize   int

	// CacheReadTimeout bounds each synchronous cache-store read on the
	// request path. A stalled store must degrade to the durable fallback,
	// not hold the request.
	CacheReadTimeout time.Duration

	LeaseWait      time.Duration
	LeaseDuration  time.Duration
	RebuildTimeout time.Duration

	RebuildMaxAttempts int
	RebuildBackoffBase time.Duration

	RefreshWorkers   int
	RefreshQueueSize int

	BreakerFailureThreshold float64
	BreakerMinRequests      uint32
	BreakerCoolDown         time.Duration
	BreakerHalfOpenCalls    uint32
	BreakerCountingWindow   time.Duration
}

func (c *Config) applyDefaults() {
	if c.WeeklyTTL <= 0 {
		c.WeeklyTTL = 24*time.Hour + 30*time.Minute
	}
	if c.LegendTTL <= 0 {
		c.LegendTTL = 24*time.Hour + 30*time.Minute
	}
	if c.FirstPageTTL <= 0 {
		c.FirstPageTTL = time.Hour
	}
	if c.ListingSize <= 0 {
		c.ListingSize = 100
	}
	if c.RealtimeSize <= 0 {
		c.RealtimeSize = 50
	}
	if c.FallbackLimit <= 0 {
		c.FallbackLimit = 50
	}
	if c.MaxPageSize <= 0 {
		c.MaxPageSize = 50
	}
	if c.CacheReadTimeout <= 0 {
		c.CacheReadTimeout = 300 * time.Millisecond
	}
	if c.LeaseWait <= 0 {
		c.LeaseWait = 3 * time.Second
	}
	if c.LeaseDuration <= 0 {
		c.LeaseDuration = 15 * time.Second
	}
	if c.RebuildTimeout <= 0 {
		c.RebuildTimeout = c.LeaseDuration
	}
	if c.RebuildMaxAttempts <= 0 {
		c.RebuildMaxAttempts = 3
	}
	if c.RebuildBackoffBase <= 0 {
		c.RebuildBackoffBase = 200 * time.Millisecond
	}
	if c.RefreshWorkers <= 0 {
		c.RefreshWorkers = 2
	}
	if c.RefreshQueueSize <= 0 {
		c.RefreshQueueSize = 64
	}
	if c.BreakerFailureThreshold <= 0 {
		c.BreakerFailureThreshold = 0.6
	}
	if c.BreakerMinRequests == 0 {
		c.BreakerMinRequests = 5
	}
	if c.BreakerCoolDown <= 0 {
		c.BreakerCoolDown = 30 * time.Second
	}
	if c.BreakerHalfOpenCalls == 0 {
		c.BreakerHalfOpenCalls = 1
	}
	if c.BreakerCountingWindow <= 0 {
		c.BreakerCountingWindow = time.Minute
	}
}

// ttlFor returns the blob TTL policy per category. NOTICE and the realtime
// projection are permanent: their content only changes through explicit
// invalidation or rebuild, never through expiry.
func (c Config) ttlFor(category domain.Category) time.Duration {
	switch category {
	case domain.CategoryWeekly:
		return c.WeeklyTTL
	case domain.CategoryLegend:
		return c.LegendTTL
	case domain.CategoryFirstPage:
		return c.FirstPageTTL
	default:
		return 0
	}
}

type Dependencies struct {
	Config    Config
	Listings  ports.ListingStore
	Scores    ports.ScoreStore
	Leases    ports.LeaseStore
	Posts     ports.PostRepository
	Snapshots ports.SnapshotCache
	Metrics   ports.MetricsRecorder
}

// CategoryPage is one paged view into a cached listing snapshot.
type CategoryPage struct {
	Items []domain.PostSummary `json:"items"`
	Total int                  `json:"total"`
}
