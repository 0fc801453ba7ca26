package cache

import (
	"context"
	"strconv"

	"github.com/redis/go-redis/v9"
)

const realtimeScoreKey = "board:realtime:scores"

// decayScript multiplies every score by ARGV[1] and removes members whose
// decayed score is at or below ARGV[2]. Running it server-side keeps a decay
// cycle atomic in one round trip.
var decayScript = redis.NewScript(`
local members = redis.call('ZRANGE', KEYS[1], 0, -1, 'WITHSCORES')
local factor = tonumber(ARGV[1])
local floor = tonumber(ARGV[2])
local pruned = 0
for i = 1, #members, 2 do
	local score = tonumber(members[i+1]) * factor
	if score <= floor then
		redis.call('ZREM', KEYS[1], members[i])
		pruned = pruned + 1
	else
		redis.call('ZADD', KEYS[1], score, members[i])
	end
end
return pruned
`)

// RedisScoreStore implements the realtime ranking sorted set.
type RedisScoreStore struct {
	client *redis.Client
}

// NewRedisScoreStore creates a score store backed by a Redis sorted set.
func NewRedisScoreStore(client *redis.Client) *RedisScoreStore {
	return &RedisScoreStore{client: client}
}

func (s *RedisScoreStore) Increment(ctx context.Context, postID int64, delta float64) (float64, error) {
	return s.client.ZIncrBy(ctx, realtimeScoreKey, delta, strconv.FormatInt(postID, 10)).Result()
}

func (s *RedisScoreStore) TopN(ctx context.Context, n int) ([]int64, error) {
	if n <= 0 {
		return nil, nil
	}
	members, err := s.client.ZRevRange(ctx, realtimeScoreKey, 0, int64(n-1)).Result()
	if err != nil {
		return nil, err
	}
	ids := make([]int64, 0, len(members))
	for _, m := range members {
		id, convErr := strconv.ParseInt(m, 10, 64)
		if convErr != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (s *RedisScoreStore) Remove(ctx context.Context, postID int64) error {
	return s.client.ZRem(ctx, realtimeScoreKey, strconv.FormatInt(postID, 10)).Err()
}

func (s *RedisScoreStore) Decay(ctx context.Context, factor, floor float64) (int64, error) {
	res, err := decayScript.Run(ctx, s.client, []string{realtimeScoreKey},
		strconv.FormatFloat(factor, 'f', -1, 64),
		strconv.FormatFloat(floor, 'f', -1, 64),
	).Result()
	if err != nil {
		return 0, err
	}
	pruned, _ := res.(int64)
	return pruned, nil
}
