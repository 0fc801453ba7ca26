package jobs

import (
	"context"
	"log/slog"
	"time"

	"github.com/teamboard/popcache/internal/domain"
	"github.com/teamboard/popcache/internal/ports"
)

// RebuildWorker recomputes WEEKLY and LEGEND membership from the durable
// store on a long period and replaces the cached blobs wholesale. It runs
// unconditionally rather than lease-gated: it is time-triggered, not
// miss-triggered, and a single dedicated timer cannot stampede.
type RebuildWorker struct {
	logger       *slog.Logger
	posts        ports.PostRepository
	listings     ports.ListingStore
	publisher    ports.EventPublisher
	interval     time.Duration
	weeklyWindow time.Duration
	legendLikes  int
	listingSize  int
	weeklyTTL    time.Duration
	legendTTL    time.Duration
	nowFn        func() time.Time
}

type RebuildConfig struct {
	Interval     time.Duration
	WeeklyWindow time.Duration
	LegendLikes  int
	ListingSize  int
	WeeklyTTL    time.Duration
	LegendTTL    time.Duration
}

// NewRebuildWorker constructs the daily membership rebuild loop.
func NewRebuildWorker(logger *slog.Logger, posts ports.PostRepository, listings ports.ListingStore, publisher ports.EventPublisher, cfg RebuildConfig) *RebuildWorker {
	if cfg.Interval <= 0 {
		cfg.Interval = 24 * time.Hour
	}
	if cfg.WeeklyWindow <= 0 {
		cfg.WeeklyWindow = 7 * 24 * time.Hour
	}
	if cfg.LegendLikes <= 0 {
		cfg.LegendLikes = 100
	}
	if cfg.ListingSize <= 0 {
		cfg.ListingSize = 100
	}
	if cfg.WeeklyTTL <= 0 {
		cfg.WeeklyTTL = 24*time.Hour + 30*time.Minute
	}
	if cfg.LegendTTL <= 0 {
		cfg.LegendTTL = 24*time.Hour + 30*time.Minute
	}
	return &RebuildWorker{
		logger:       logger,
		posts:        posts,
		listings:     listings,
		publisher:    publisher,
		interval:     cfg.Interval,
		weeklyWindow: cfg.WeeklyWindow,
		legendLikes:  cfg.LegendLikes,
		listingSize:  cfg.ListingSize,
		weeklyTTL:    cfg.WeeklyTTL,
		legendTTL:    cfg.LegendTTL,
		nowFn:        func() time.Time { return time.Now().UTC() },
	}
}

// Run executes the periodic rebuild loop until context cancellation.
func (w *RebuildWorker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
		w.ProcessOnce(ctx)
	}
}

// ProcessOnce runs one full membership rebuild. Exported so operators can
// force a recompute outside the schedule.
func (w *RebuildWorker) ProcessOnce(ctx context.Context) {
	now := w.nowFn()

	weekly, err := w.posts.ListWeeklyTop(ctx, now.Add(-w.weeklyWindow), w.listingSize)
	if err != nil {
		w.logFailure(ctx, domain.CategoryWeekly, err)
	} else {
		w.replaceListing(ctx, domain.CategoryWeekly, markWeekly(weekly), w.weeklyTTL, now)
	}

	legend, err := w.posts.ListLegendQualifying(ctx, w.legendLikes, w.listingSize)
	if err != nil {
		w.logFailure(ctx, domain.CategoryLegend, err)
		return
	}
	w.replaceListing(ctx, domain.CategoryLegend, markLegend(legend), w.legendTTL, now)
}

// replaceListing swaps in the recomputed blob and emits one featured-author
// event per author newly present in the listing.
func (w *RebuildWorker) replaceListing(ctx context.Context, category domain.Category, listing []domain.PostSummary, ttl time.Duration, now time.Time) {
	previous, found, err := w.listings.Get(ctx, category)
	if err != nil {
		// Without the previous snapshot every author looks new; prefer
		// skipping notifications over duplicating them.
		w.logFailure(ctx, category, err)
		found = false
		previous = nil
	}

	if err := w.listings.Put(ctx, category, listing, ttl); err != nil {
		w.logFailure(ctx, category, err)
		return
	}

	if found {
		w.publishNewAuthors(ctx, category, previous, listing, now)
	}

	w.logger.InfoContext(ctx, "category membership rebuilt",
		"module", "jobs",
		"layer", "adapter",
		"operation", "daily_rebuild",
		"outcome", "success",
		"category", category.String(),
		"entries", len(listing),
	)
}

func (w *RebuildWorker) publishNewAuthors(ctx context.Context, category domain.Category, previous, current []domain.PostSummary, now time.Time) {
	known := make(map[int64]struct{}, len(previous))
	for _, item := range previous {
		if item.AuthorID != nil {
			known[*item.AuthorID] = struct{}{}
		}
	}
	notified := make(map[int64]struct{})
	for _, item := range current {
		if item.AuthorID == nil {
			continue
		}
		if _, ok := known[*item.AuthorID]; ok {
			continue
		}
		if _, ok := notified[*item.AuthorID]; ok {
			continue
		}
		notified[*item.AuthorID] = struct{}{}
		event := domain.FeaturedAuthorEvent{
			AuthorID:   *item.AuthorID,
			AuthorName: item.AuthorName,
			Category:   category,
			PostID:     item.ID,
			OccurredAt: now,
		}
		if err := w.publisher.PublishAuthorFeatured(ctx, event); err != nil {
			w.logger.WarnContext(ctx, "featured author event publish failed",
				"module", "jobs",
				"layer", "adapter",
				"operation", "daily_rebuild",
				"outcome", "failure",
				"category", category.String(),
				"author_id", event.AuthorID,
				"error", err,
			)
		}
	}
}

func (w *RebuildWorker) logFailure(ctx context.Context, category domain.Category, err error) {
	w.logger.WarnContext(ctx, "daily rebuild step failed",
		"module", "jobs",
		"layer", "adapter",
		"operation", "daily_rebuild",
		"outcome", "failure",
		"category", category.String(),
		"error", err,
	)
}

func markWeekly(posts []domain.PostSummary) []domain.PostSummary {
	for i := range posts {
		posts[i].Weekly = true
	}
	return posts
}

func markLegend(posts []domain.PostSummary) []domain.PostSummary {
	for i := range posts {
		posts[i].Legend = true
	}
	return posts
}
