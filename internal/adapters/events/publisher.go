package events

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/teamboard/popcache/internal/domain"
)

// LoggingPublisher emits featured-author events to the structured log.
// Notification delivery is owned by an external system; downstream ships pick
// these records up from the log pipeline.
type LoggingPublisher struct {
	logger *slog.Logger
}

func NewLoggingPublisher(logger *slog.Logger) *LoggingPublisher {
	return &LoggingPublisher{logger: logger}
}

func (p *LoggingPublisher) PublishAuthorFeatured(ctx context.Context, event domain.FeaturedAuthorEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	p.logger.InfoContext(ctx, "published event",
		"event_type", "author.featured",
		"payload", string(payload),
	)
	return nil
}
