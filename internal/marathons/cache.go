package marathons

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/recepoint/backend/internal/models"
	"github.com/recepoint/backend/pkg/redis"
)

const (
	recentCacheKey = "marathons:recent"
	recentCacheTTL = 60 * time.Second
)

// Cache is a Redis-backed cache for the homepage recent-marathons preview.
// All methods are nil-receiver safe so the handler works without Redis.
type Cache struct {
	rdb    *redis.Client
	logger *zap.Logger
}

// NewCache creates a recent-marathons cache.
func NewCache(rdb *redis.Client, logger *zap.Logger) *Cache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Cache{rdb: rdb, logger: logger}
}

// GetRecent returns the cached recent list, or ok=false on miss or error.
func (c *Cache) GetRecent(ctx context.Context) ([]models.Marathon, bool) {
	if c == nil || c.rdb == nil {
		return nil, false
	}
	raw, err := c.rdb.Get(ctx, recentCacheKey).Bytes()
	if err != nil {
		return nil, false
	}
	var list []models.Marathon
	if err := json.Unmarshal(raw, &list); err != nil {
		c.logger.Warn("recent cache decode failed", zap.Error(err))
		return nil, false
	}
	return list, true
}

// SetRecent stores the recent list with a short TTL.
func (c *Cache) SetRecent(ctx context.Context, list []models.Marathon) {
	if c == nil || c.rdb == nil {
		return
	}
	raw, err := json.Marshal(list)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, recentCacheKey, raw, recentCacheTTL).Err(); err != nil {
		c.logger.Warn("recent cache set failed", zap.Error(err))
	}
}

// Invalidate drops the cached recent list after a marathon write.
func (c *Cache) Invalidate(ctx context.Context) {
	if c == nil || c.rdb == nil {
		return
	}
	if err := c.rdb.Del(ctx, recentCacheKey).Err(); err != nil {
		c.logger.Warn("recent cache invalidate failed", zap.Error(err))
	}
}
