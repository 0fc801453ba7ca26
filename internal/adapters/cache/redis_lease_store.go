package cache

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/teamboard/popcache/internal/domain"
)

// releaseScript deletes the lease key only when the caller still owns it.
// Without the token check, a holder that outlived its lease could release a
// successor's claim.
var releaseScript = redis.NewScript(`
if redis.call('GET', KEYS[1]) == ARGV[1] then
	return redis.call('DEL', KEYS[1])
end
return 0
`)

// RedisLeaseStore implements per-category rebuild leases with SET NX EX.
type RedisLeaseStore struct {
	client       *redis.Client
	pollInterval time.Duration
}

// NewRedisLeaseStore creates a lease store backed by Redis set-if-absent keys.
func NewRedisLeaseStore(client *redis.Client) *RedisLeaseStore {
	return &RedisLeaseStore{client: client, pollInterval: 100 * time.Millisecond}
}

func leaseKey(category domain.Category) string {
	return "board:refresh:lease:" + strings.ToLower(category.String())
}

func (s *RedisLeaseStore) Acquire(ctx context.Context, category domain.Category, wait, duration time.Duration) (string, bool, error) {
	token := uuid.NewString()
	deadline := time.Now().Add(wait)
	for {
		ok, err := s.client.SetNX(ctx, leaseKey(category), token, duration).Result()
		if err != nil {
			return "", false, err
		}
		if ok {
			return token, true, nil
		}
		if time.Now().Add(s.pollInterval).After(deadline) {
			return "", false, nil
		}
		select {
		case <-ctx.Done():
			return "", false, ctx.Err()
		case <-time.After(s.pollInterval):
		}
	}
}

func (s *RedisLeaseStore) Release(ctx context.Context, category domain.Category, token string) error {
	return releaseScript.Run(ctx, s.client, []string{leaseKey(category)}, token).Err()
}
