package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const redisSessionPrefix = "auth:session:"

// RedisSessionStore keeps the session registry in redis, leaning on key
// TTLs for expiry instead of a sweep. Useful when hosts do not want session
// churn hitting the relational store.
type RedisSessionStore struct {
	client *redis.Client
	logger Logger
}

var _ SessionStore = (*RedisSessionStore)(nil)

// NewRedisSessionStore wraps an already-connected client.
func NewRedisSessionStore(client *redis.Client) *RedisSessionStore {
	return &RedisSessionStore{
		client: client,
		logger: defLogger{},
	}
}

func (s *RedisSessionStore) WithLogger(logger Logger) *RedisSessionStore {
	if logger != nil {
		s.logger = logger
	}
	return s
}

func (s *RedisSessionStore) RecordLogin(ctx context.Context, userID uuid.UUID, token string, expiresAt time.Time) error {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}

	return s.client.Set(ctx, redisSessionPrefix+token, userID.String(), ttl).Err()
}

func (s *RedisSessionStore) Revoke(ctx context.Context, token string) error {
	// DEL of a missing key is a no-op, which keeps revoke idempotent
	return s.client.Del(ctx, redisSessionPrefix+token).Err()
}

func (s *RedisSessionStore) IsActive(ctx context.Context, token string) (bool, error) {
	_, err := s.client.Get(ctx, redisSessionPrefix+token).Result()
	if err != nil {
		if err == redis.Nil {
			return false, nil
		}
		return false, err
	}

	return true, nil
}

// PurgeExpired is a no-op: redis evicts expired keys on its own.
func (s *RedisSessionStore) PurgeExpired(ctx context.Context) (int, error) {
	return 0, nil
}
