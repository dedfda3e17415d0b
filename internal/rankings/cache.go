package rankings

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/scoutbase/reefscout/internal/cache"
	"github.com/scoutbase/reefscout/internal/encoding"
)

// RankingsCache provides caching for computed rankings
type RankingsCache struct {
	cache *cache.Cache
}

// NewRankingsCache creates a new rankings cache
func NewRankingsCache(ttl time.Duration) *RankingsCache {
	return &RankingsCache{
		cache: cache.NewCache(ttl),
	}
}

// generateCacheKey creates a cache key for rankings data
func (rc *RankingsCache) generateCacheKey(limit int) string {
	return fmt.Sprintf("rankings:%d", limit)
}

// GetRankings retrieves cached rankings data
func (rc *RankingsCache) GetRankings(limit int) (*Response, bool) {
	cacheKey := rc.generateCacheKey(limit)

	data, found := rc.cache.Get(cacheKey)
	if !found {
		return nil, false
	}

	var response Response
	if err := encoding.UnmarshalJSON(data, &response); err != nil {
		slog.Error("Failed to unmarshal cached rankings data", "error", err, "key", cacheKey)
		return nil, false
	}

	slog.Debug("Rankings cache hit", "limit", limit)
	return &response, true
}

// SetRankings caches rankings data
func (rc *RankingsCache) SetRankings(limit int, response *Response) {
	cacheKey := rc.generateCacheKey(limit)

	data, err := encoding.MarshalJSON(response)
	if err != nil {
		slog.Error("Failed to marshal rankings data for cache", "error", err, "limit", limit)
		return
	}

	rc.cache.Set(cacheKey, data)
	slog.Debug("Rankings cached", "limit", limit, "entries", len(response.Entries))
}

// InvalidateAll drops every cached ranking so the next query recomputes
func (rc *RankingsCache) InvalidateAll() {
	rc.cache.Clear()
	slog.Debug("Rankings cache invalidated")
}

// GetStats returns cache statistics
func (rc *RankingsCache) GetStats() map[string]interface{} {
	return rc.cache.Stats()
}
