package roster

import (
	"sync/atomic"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/osse101/RespawnQueue_Go/internal/domain"
)

// CacheConfig sizes the member cache
type CacheConfig struct {
	Size int
	TTL  time.Duration
}

// CacheStats reports member cache effectiveness
type CacheStats struct {
	Hits   int64 `json:"hits"`
	Misses int64 `json:"misses"`
	Size   int   `json:"size"`
}

// cachedMember wraps a member with version metadata for cache invalidation
type cachedMember struct {
	Version  string
	Member   domain.Member
	CachedAt time.Time
}

// memberCache is an expiring LRU of members keyed by user id.
// Auth middleware resolves the member on every request, so hits matter.
type memberCache struct {
	lru    *expirable.LRU[string, *cachedMember]
	hits   atomic.Int64
	misses atomic.Int64
}

func newMemberCache(cfg CacheConfig) *memberCache {
	if cfg.Size <= 0 {
		cfg.Size = DefaultCacheSize
	}
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultCacheTTL
	}
	return &memberCache{
		lru: expirable.NewLRU[string, *cachedMember](cfg.Size, nil, cfg.TTL),
	}
}

// Get returns a copy of the cached member. Entries from an older schema are dropped.
func (c *memberCache) Get(userID string) (*domain.Member, bool) {
	entry, found := c.lru.Get(userID)
	if !found {
		c.misses.Add(1)
		return nil, false
	}
	if entry.Version != CacheSchemaVersion {
		c.lru.Remove(userID)
		c.misses.Add(1)
		return nil, false
	}
	c.hits.Add(1)
	member := entry.Member
	return &member, true
}

func (c *memberCache) Set(member domain.Member) {
	c.lru.Add(member.UserID, &cachedMember{
		Version:  CacheSchemaVersion,
		Member:   member,
		CachedAt: time.Now(),
	})
}

func (c *memberCache) Invalidate(userID string) {
	c.lru.Remove(userID)
}

func (c *memberCache) Stats() CacheStats {
	return CacheStats{
		Hits:   c.hits.Load(),
		Misses: c.misses.Load(),
		Size:   c.lru.Len(),
	}
}
