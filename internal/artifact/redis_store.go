package artifact

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps artifacts as plain string values with a TTL.
type RedisStore struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisStore creates a store; ttl <= 0 keeps artifacts for a week.
func NewRedisStore(rdb *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	return &RedisStore{rdb: rdb, ttl: ttl}
}

func artifactKey(name string) string {
	return fmt.Sprintf("overlay:artifact:%s", name)
}

// Save stores the encoded document and returns its key.
func (s *RedisStore) Save(ctx context.Context, name string, d Document) (string, error) {
	if err := checkName(name); err != nil {
		return "", err
	}
	b, err := d.Encode()
	if err != nil {
		return "", err
	}
	key := artifactKey(name)
	if err := s.rdb.Set(ctx, key, b, s.ttl).Err(); err != nil {
		return "", err
	}
	return key, nil
}

// Load returns ErrNotFound for missing or expired keys.
func (s *RedisStore) Load(ctx context.Context, name string) (Document, error) {
	if err := checkName(name); err != nil {
		return Document{}, err
	}
	b, err := s.rdb.Get(ctx, artifactKey(name)).Bytes()
	if err == redis.Nil {
		return Document{}, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if err != nil {
		return Document{}, err
	}
	return Parse(bytes.NewReader(b))
}

// Ping checks connectivity to the backing server.
func (s *RedisStore) Ping(ctx context.Context) (string, error) {
	return s.rdb.Ping(ctx).Result()
}
