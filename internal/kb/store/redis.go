package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/dijkstrabc/shittykbsystem/pkg/logger"
)

// RedisStore keeps each collection under kb:collection:<key>. Values never
// expire; the store is the system of record, not a cache.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(addr, password string, db int) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if _, err := client.Ping(context.Background()).Result(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	logger.Info("Redis store initialized", zap.String("addr", addr))

	return &RedisStore{client: client}, nil
}

func collectionKey(key string) string {
	return fmt.Sprintf("kb:collection:%s", key)
}

func (s *RedisStore) Read(ctx context.Context, key string, out any) error {
	raw, err := s.client.Get(ctx, collectionKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read collection %q: %w", key, err)
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to decode collection %q: %w", key, err)
	}
	return nil
}

func (s *RedisStore) Write(ctx context.Context, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode collection %q: %w", key, err)
	}

	if err := s.client.Set(ctx, collectionKey(key), raw, 0).Err(); err != nil {
		return fmt.Errorf("failed to write collection %q: %w", key, err)
	}

	logger.Debug("Collection written", zap.String("key", key), zap.Int("bytes", len(raw)))
	return nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
