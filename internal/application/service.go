package application

import (
	"log/slog"

	"github.com/sony/gobreaker"
	"github.com/teamboard/popcache/internal/domain"
	"github.com/teamboard/popcache/internal/ports"
)

// Service serves category listings cache-aside and keeps them coherent:
// reads slice cached blobs, misses fall back to the durable store while a
// lease-gated rebuild runs in the background, and the realtime category is
// shielded by a circuit breaker with a local snapshot tier.
type Service struct {
	cfg       Config
	listings  ports.ListingStore
	scores    ports.ScoreStore
	leases    ports.LeaseStore
	posts     ports.PostRepository
	snapshots ports.SnapshotCache
	metrics   ports.MetricsRecorder
	breaker   *gobreaker.CircuitBreaker
	refreshCh chan domain.Category
}

func NewService(deps Dependencies) *Service {
	cfg := deps.Config
	cfg.applyDefaults()

	metrics := deps.Metrics
	if metrics == nil {
		metrics = ports.NopMetrics{}
	}

	s := &Service{
		cfg:       cfg,
		listings:  deps.Listings,
		scores:    deps.Scores,
		leases:    deps.Leases,
		posts:     deps.Posts,
		snapshots: deps.Snapshots,
		metrics:   metrics,
		refreshCh: make(chan domain.Category, cfg.RefreshQueueSize),
	}
	s.breaker = newRealtimeBreaker(cfg)
	return s
}

func svcLogger() *slog.Logger {
	return slog.Default().With(
		"module", "application",
		"layer", "application",
	)
}
