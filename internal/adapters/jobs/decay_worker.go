package jobs

import (
	"context"
	"log/slog"
	"time"

	"github.com/teamboard/popcache/internal/ports"
)

// DecayWorker periodically applies exponential decay to realtime scores and
// prunes entries at or below the floor. Decay is idempotent in the intended
// sense: running twice simply compounds the factor, so a missed cycle
// self-corrects on the next run.
type DecayWorker struct {
	logger   *slog.Logger
	scores   ports.ScoreStore
	metrics  ports.MetricsRecorder
	interval time.Duration
	factor   float64
	floor    float64
}

// NewDecayWorker constructs the decay loop with sane defaults.
func NewDecayWorker(logger *slog.Logger, scores ports.ScoreStore, metrics ports.MetricsRecorder, interval time.Duration, factor, floor float64) *DecayWorker {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	if factor <= 0 || factor >= 1 {
		factor = 0.97
	}
	if floor <= 0 {
		floor = 1.0
	}
	if metrics == nil {
		metrics = ports.NopMetrics{}
	}
	return &DecayWorker{
		logger:   logger,
		scores:   scores,
		metrics:  metrics,
		interval: interval,
		factor:   factor,
		floor:    floor,
	}
}

// Run executes the periodic decay loop until context cancellation. Cycles run
// on a single timer and never overlap with themselves.
func (w *DecayWorker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
		w.processOnce(ctx)
	}
}

func (w *DecayWorker) processOnce(ctx context.Context) {
	cycleCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	pruned, err := w.scores.Decay(cycleCtx, w.factor, w.floor)
	if err != nil {
		// Swallowed on purpose: the next cycle compounds the decay anyway.
		w.logger.WarnContext(ctx, "score decay cycle failed",
			"module", "jobs",
			"layer", "adapter",
			"operation", "decay_cycle",
			"outcome", "failure",
			"error", err,
		)
		return
	}
	w.metrics.DecayCycle(pruned)
	w.logger.InfoContext(ctx, "score decay cycle completed",
		"module", "jobs",
		"layer", "adapter",
		"operation", "decay_cycle",
		"outcome", "success",
		"pruned", pruned,
	)
}
