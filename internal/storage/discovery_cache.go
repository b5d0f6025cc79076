package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"forge-research/internal/model"

	"github.com/redis/go-redis/v9"
)

// kvStore is the slice of the redis client the cache needs.
type kvStore interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
}

// DiscoveryCache persists community discovery results keyed by topic hash.
// Entries carry their own expiry; TTL eligibility is checked here, not by
// redis, so expired entries remain visible to external cleanup.
type DiscoveryCache struct {
	rdb kvStore
	ttl time.Duration
}

// NewDiscoveryCache creates a cache with the given entry TTL (default 24h).
func NewDiscoveryCache(rdb *redis.Client, ttl time.Duration) *DiscoveryCache {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &DiscoveryCache{rdb: rdb, ttl: ttl}
}

func discoveryKey(hash string) string {
	return fmt.Sprintf("research:discovery:%s", hash)
}

// Get returns the cached communities for a topic hash. A store error, a
// missing entry, or a passed expiry all report a miss; the pipeline never
// blocks on the cache. On a hit the entry's last-used timestamp is touched
// best-effort.
func (c *DiscoveryCache) Get(ctx context.Context, hash string) ([]model.CommunityInfo, bool) {
	b, err := c.rdb.Get(ctx, discoveryKey(hash)).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		slog.Warn("storage: discovery cache read failed", "hash", hash, "err", err)
		return nil, false
	}
	var entry model.CacheEntry
	if err := json.Unmarshal(b, &entry); err != nil {
		slog.Warn("storage: discovery cache entry malformed", "hash", hash, "err", err)
		return nil, false
	}
	if time.Now().After(entry.ExpiresAt) {
		return nil, false
	}
	c.touch(ctx, entry)
	return entry.Communities, true
}

// Put upserts the discovery result for a topic hash with a fresh expiry.
// Failure is non-fatal to the caller.
func (c *DiscoveryCache) Put(ctx context.Context, hash, prompt, company string, communities []model.CommunityInfo) error {
	now := time.Now()
	entry := model.CacheEntry{
		TopicHash:      hash,
		SubjectPrompt:  prompt,
		CompanyContext: company,
		Communities:    communities,
		ExpiresAt:      now.Add(c.ttl),
		LastUsedAt:     now,
	}
	b, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	// No redis-side TTL: expired entries are cleaned up out of band.
	return c.rdb.Set(ctx, discoveryKey(hash), b, 0).Err()
}

func (c *DiscoveryCache) touch(ctx context.Context, entry model.CacheEntry) {
	entry.LastUsedAt = time.Now()
	b, err := json.Marshal(entry)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, discoveryKey(entry.TopicHash), b, 0).Err(); err != nil {
		slog.Warn("storage: discovery cache touch failed", "hash", entry.TopicHash, "err", err)
	}
}
