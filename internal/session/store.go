package session

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrNotFound is returned when a token has no server-side record (never
// issued, expired, or destroyed by logout).
var ErrNotFound = errors.New("session not found")

// Store persists session records server-side, keyed by the opaque token
// delivered to the client in a cookie. Only the user id is stored; the full
// user record is rehydrated from the database on every request.
type Store interface {
	Save(ctx context.Context, token, userID string, ttl time.Duration) error
	Get(ctx context.Context, token string) (string, error)
	Delete(ctx context.Context, token string) error
}

func key(token string) string {
	return "session:" + token
}

// RedisStore keeps sessions in Redis with a per-record TTL.
type RedisStore struct {
	rdb *redis.Client
}

func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb}
}

func (s *RedisStore) Save(ctx context.Context, token, userID string, ttl time.Duration) error {
	return s.rdb.Set(ctx, key(token), userID, ttl).Err()
}

func (s *RedisStore) Get(ctx context.Context, token string) (string, error) {
	v, err := s.rdb.Get(ctx, key(token)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return v, nil
}

func (s *RedisStore) Delete(ctx context.Context, token string) error {
	return s.rdb.Del(ctx, key(token)).Err()
}

var _ Store = (*RedisStore)(nil)
