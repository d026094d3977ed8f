package product

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"storefront-be/internal/logger"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Cache holds single-product reads. Failures are logged and treated as a miss;
// the database stays the source of truth.
type Cache interface {
	Get(ctx context.Context, id string) (*Product, bool)
	Set(ctx context.Context, p *Product)
	Invalidate(ctx context.Context, ids ...string)
}

// redisClient is the subset of redis.Cmdable the cache uses.
type redisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

type redisCache struct {
	client redisClient
	ttl    time.Duration
}

func NewRedisCache(client redisClient, ttl time.Duration) Cache {
	return &redisCache{client: client, ttl: ttl}
}

func cacheKey(id string) string {
	return fmt.Sprintf("product:%s", id)
}

func (c *redisCache) Get(ctx context.Context, id string) (*Product, bool) {
	raw, err := c.client.Get(ctx, cacheKey(id)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logger.FromCtx(ctx).Warn("product cache read failed",
				zap.String("product_id", id),
				zap.Error(err),
			)
		}
		return nil, false
	}

	var p Product
	if err := json.Unmarshal(raw, &p); err != nil {
		logger.FromCtx(ctx).Warn("product cache entry corrupt",
			zap.String("product_id", id),
			zap.Error(err),
		)
		return nil, false
	}
	return &p, true
}

func (c *redisCache) Set(ctx context.Context, p *Product) {
	raw, err := json.Marshal(p)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, cacheKey(p.ID), raw, c.ttl).Err(); err != nil {
		logger.FromCtx(ctx).Warn("product cache write failed",
			zap.String("product_id", p.ID),
			zap.Error(err),
		)
	}
}

func (c *redisCache) Invalidate(ctx context.Context, ids ...string) {
	if len(ids) == 0 {
		return
	}
	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		keys = append(keys, cacheKey(id))
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		logger.FromCtx(ctx).Warn("product cache invalidate failed",
			zap.Strings("product_ids", ids),
			zap.Error(err),
		)
	}
}

type noopCache struct{}

// NewNoopCache is used when no Redis address is configured.
func NewNoopCache() Cache { return noopCache{} }

func (noopCache) Get(context.Context, string) (*Product, bool) { return nil, false }
func (noopCache) Set(context.Context, *Product)                {}
func (noopCache) Invalidate(context.Context, ...string)        {}
