package upstream

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"alignzo-api/domain"
)

type catalogSource interface {
	FetchCatalog(ctx context.Context, projectID string) ([]domain.Category, error)
}

// Cache wraps a Client with redis-backed caching for catalog reads. Task
// writes pass straight through to the embedded client; the catalog is
// read-only from this service's perspective, so no write-path eviction is
// needed.
type Cache struct {
	*Client
	base  catalogSource
	redis *redis.Client
	ttl   time.Duration
}

// NewCache creates a caching wrapper using the provided redis client and
// TTL. A nil redis client or zero TTL disables caching without changing
// behavior.
func NewCache(base catalogSource, client *redis.Client, ttl time.Duration) *Cache {
	if base == nil {
		panic("upstream.NewCache: base client is nil")
	}
	if ttl < 0 {
		ttl = 0
	}
	c := &Cache{base: base, redis: client, ttl: ttl}
	if cl, ok := base.(*Client); ok {
		c.Client = cl
	}
	return c
}

func (c *Cache) FetchCatalog(ctx context.Context, projectID string) ([]domain.Category, error) {
	if catalog, ok := c.loadFromCache(ctx, projectID); ok {
		return catalog, nil
	}
	catalog, err := c.base.FetchCatalog(ctx, projectID)
	if err != nil {
		return nil, err
	}
	c.store(ctx, projectID, catalog)
	return catalog, nil
}

func (c *Cache) loadFromCache(ctx context.Context, projectID string) ([]domain.Category, bool) {
	if c.redis == nil {
		return nil, false
	}
	data, err := c.redis.Get(ctx, catalogCacheKey(projectID)).Bytes()
	if err != nil {
		if err != redis.Nil {
			// On redis errors fall back to the upstream without failing.
			_ = c.redis.Del(ctx, catalogCacheKey(projectID)).Err()
		}
		return nil, false
	}
	var catalog []domain.Category
	if err := json.Unmarshal(data, &catalog); err != nil {
		_ = c.redis.Del(ctx, catalogCacheKey(projectID)).Err()
		return nil, false
	}
	return catalog, true
}

func (c *Cache) store(ctx context.Context, projectID string, catalog []domain.Category) {
	if c.redis == nil || c.ttl == 0 {
		return
	}
	data, err := json.Marshal(catalog)
	if err != nil {
		return
	}
	_ = c.redis.Set(ctx, catalogCacheKey(projectID), data, c.ttl).Err()
}

func catalogCacheKey(projectID string) string {
	return "catalog:" + projectID
}
