// internal/inventory/cache.go
package inventory

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const partCacheTTL = 5 * time.Minute

// PartCache is a read-through cache for part lookups. It only ever serves
// reads; every stock mutation invalidates the cached entry so the next
// evaluate sees a fresh quantity.
type PartCache struct {
	client *redis.Client
}

func NewPartCache(client *redis.Client) *PartCache {
	return &PartCache{client: client}
}

func partKey(id uuid.UUID) string {
	return "part:" + id.String()
}

// Get returns the cached part, or redis.Nil on a miss.
func (c *PartCache) Get(ctx context.Context, id uuid.UUID) (*Part, error) {
	data, err := c.client.Get(ctx, partKey(id)).Bytes()
	if err != nil {
		return nil, err
	}

	part := &Part{}
	if err := json.Unmarshal(data, part); err != nil {
		return nil, err
	}
	return part, nil
}

func (c *PartCache) Set(ctx context.Context, part *Part) error {
	data, err := json.Marshal(part)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, partKey(part.ID), data, partCacheTTL).Err()
}

func (c *PartCache) Invalidate(ctx context.Context, id uuid.UUID) error {
	return c.client.Del(ctx, partKey(id)).Err()
}
