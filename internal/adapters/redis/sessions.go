package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Sessions stores admin session tokens with a TTL.
type Sessions struct {
	client *redis.Client
}

func NewSessions(client *redis.Client) *Sessions {
	return &Sessions{client: client}
}

func (s *Sessions) Create(ctx context.Context, token string, ttl time.Duration) error {
	return s.client.Set(ctx, "session:"+token, "1", ttl).Err()
}

func (s *Sessions) Exists(ctx context.Context, token string) (bool, error) {
	n, err := s.client.Exists(ctx, "session:"+token).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *Sessions) Delete(ctx context.Context, token string) error {
	return s.client.Del(ctx, "session:"+token).Err()
}
