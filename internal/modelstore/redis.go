package modelstore

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	fieldData     = "data"
	fieldStoredAt = "stored_at"
)

// RedisStore keeps each model in a hash holding the blob and its storage
// time, so replicas share one model cache
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore connects and pings the server
func NewRedisStore(url, prefix string) (*RedisStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		opts = &redis.Options{Addr: url}
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	if prefix == "" {
		prefix = "pricecast:model"
	}
	return &RedisStore{client: client, prefix: prefix}, nil
}

func (s *RedisStore) redisKey(key string) string {
	return s.prefix + ":" + key
}

func (s *RedisStore) Location(key string) string {
	return "redis://" + s.redisKey(key)
}

func (s *RedisStore) Root() string {
	return "redis://" + s.prefix
}

func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, time.Time, error) {
	vals, err := s.client.HMGet(ctx, s.redisKey(key), fieldData, fieldStoredAt).Result()
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("redis HMGET failed: %w", err)
	}
	data, ok := vals[0].(string)
	if !ok {
		return nil, time.Time{}, &CacheMissError{Key: key}
	}
	storedAt, err := parseStoredAt(vals[1])
	if err != nil {
		return nil, time.Time{}, err
	}
	return []byte(data), storedAt, nil
}

func (s *RedisStore) Put(ctx context.Context, key string, blob []byte) (time.Time, error) {
	storedAt := time.Now()
	// HSET replaces both fields in one command
	if err := s.client.HSet(ctx, s.redisKey(key),
		fieldData, blob,
		fieldStoredAt, strconv.FormatInt(storedAt.UnixNano(), 10),
	).Err(); err != nil {
		return time.Time{}, fmt.Errorf("redis HSET failed: %w", err)
	}
	return storedAt, nil
}

func (s *RedisStore) StoredAt(ctx context.Context, key string) (time.Time, error) {
	val, err := s.client.HGet(ctx, s.redisKey(key), fieldStoredAt).Result()
	if errors.Is(err, redis.Nil) {
		return time.Time{}, &CacheMissError{Key: key}
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("redis HGET failed: %w", err)
	}
	return parseStoredAt(val)
}

func parseStoredAt(v interface{}) (time.Time, error) {
	s, ok := v.(string)
	if !ok {
		return time.Time{}, errors.New("model entry has no stored_at")
	}
	nanos, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid stored_at %q: %w", s, err)
	}
	return time.Unix(0, nanos), nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
