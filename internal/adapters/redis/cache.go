package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

type Cache struct {
	client *redis.Client
}

func NewCache(client *redis.Client) *Cache {
	return &Cache{client: client}
}

func (c *Cache) Client() *redis.Client {
	return c.client
}

// SetSummary caches the latest seating occupancy snapshot for a plan.
func (c *Cache) SetSummary(ctx context.Context, slug string, summary any, ttl time.Duration) error {
	data, err := json.Marshal(summary)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, "seating:summary:"+slug, data, ttl).Err()
}

func (c *Cache) GetSummary(ctx context.Context, slug string, out any) (bool, error) {
	data, err := c.client.Get(ctx, "seating:summary:"+slug).Bytes()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, json.Unmarshal(data, out)
}
