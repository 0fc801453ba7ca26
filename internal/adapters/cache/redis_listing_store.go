package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/teamboard/popcache/internal/domain"
)

// RedisListingStore keeps one JSON blob per category listing.
// A single value per category guarantees atomic whole-listing reads; no
// per-field hash splitting.
type RedisListingStore struct {
	client *redis.Client
}

// NewRedisListingStore creates a listing store backed by Redis string values.
func NewRedisListingStore(client *redis.Client) *RedisListingStore {
	return &RedisListingStore{client: client}
}

func listingKey(category domain.Category) string {
	return "board:popular:" + strings.ToLower(category.String())
}

func (s *RedisListingStore) Get(ctx context.Context, category domain.Category) ([]domain.PostSummary, bool, error) {
	raw, err := s.client.Get(ctx, listingKey(category)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, err
	}
	var posts []domain.PostSummary
	if err := json.Unmarshal(raw, &posts); err != nil {
		// A corrupt blob is a cache miss, never a reader failure. The next
		// rebuild overwrites it wholesale.
		slog.Default().WarnContext(ctx, "discarding undecodable listing blob",
			"module", "cache",
			"layer", "adapter",
			"operation", "listing_get",
			"outcome", "failure",
			"category", category.String(),
			"error", err,
		)
		return nil, false, nil
	}
	return posts, true, nil
}

func (s *RedisListingStore) Put(ctx context.Context, category domain.Category, posts []domain.PostSummary, ttl time.Duration) error {
	raw, err := json.Marshal(posts)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, listingKey(category), raw, ttl).Err()
}

func (s *RedisListingStore) Delete(ctx context.Context, category domain.Category) error {
	return s.client.Del(ctx, listingKey(category)).Err()
}
