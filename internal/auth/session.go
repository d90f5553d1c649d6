package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// RedisSessionStore tracks the live session ids of each user in a Redis set,
// so that logout can revoke every token of a user at once.
type RedisSessionStore struct {
	client *redis.Client
	prefix string
}

func NewRedisSessionStore(client *redis.Client) *RedisSessionStore {
	return &RedisSessionStore{client: client, prefix: "sessions:user:"}
}

func (s *RedisSessionStore) key(userID int) string {
	return fmt.Sprintf("%s%d", s.prefix, userID)
}

// Add records sessionID. The set expires with the newest token.
func (s *RedisSessionStore) Add(ctx context.Context, userID int, sessionID string, ttl time.Duration) error {
	key := s.key(userID)
	pipe := s.client.TxPipeline()
	pipe.SAdd(ctx, key, sessionID)
	pipe.Expire(ctx, key, ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("store session: %w", err)
	}
	return nil
}

func (s *RedisSessionStore) Active(ctx context.Context, userID int, sessionID string) (bool, error) {
	ok, err := s.client.SIsMember(ctx, s.key(userID), sessionID).Result()
	if err != nil {
		return false, fmt.Errorf("check session: %w", err)
	}
	return ok, nil
}

// RevokeAll drops every session of userID.
func (s *RedisSessionStore) RevokeAll(ctx context.Context, userID int) error {
	if err := s.client.Del(ctx, s.key(userID)).Err(); err != nil {
		return fmt.Errorf("revoke sessions: %w", err)
	}
	return nil
}
