package cache

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/teamboard/popcache/internal/domain"
)

// LocalSnapshotCache is the in-process fallback tier: a bounded, TTL'd LRU of
// category ID orderings, refreshed on every healthy realtime read. It is
// consulted only when the shared cache store is judged unhealthy.
type LocalSnapshotCache struct {
	lru *expirable.LRU[domain.Category, []int64]
}

// NewLocalSnapshotCache creates a snapshot cache with the given bound and TTL.
func NewLocalSnapshotCache(size int, ttl time.Duration) *LocalSnapshotCache {
	if size <= 0 {
		size = 8
	}
	return &LocalSnapshotCache{lru: expirable.NewLRU[domain.Category, []int64](size, nil, ttl)}
}

func (c *LocalSnapshotCache) Put(category domain.Category, ids []int64) {
	copied := make([]int64, len(ids))
	copy(copied, ids)
	c.lru.Add(category, copied)
}

func (c *LocalSnapshotCache) Get(category domain.Category) ([]int64, bool) {
	ids, ok := c.lru.Get(category)
	if !ok || len(ids) == 0 {
		return nil, false
	}
	return ids, true
}
