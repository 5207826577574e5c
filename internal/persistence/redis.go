package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/marketplace-service/internal/config"
)

const redisKeyPrefix = "collection:"

// RedisStore stores every collection as one JSON blob under a
// "collection:<name>" key. SET is atomic, so concurrent readers observe
// either the previous or the new document.
type RedisStore struct {
	client *redis.Client
	locks  *lockTable
	logger *zap.Logger
}

// NewRedisStore connects to Redis using the provided configuration.
func NewRedisStore(cfg config.RedisConfig, logger *zap.Logger) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	logger.Info("connected to redis")

	return &RedisStore{client: client, locks: newLockTable(), logger: logger}, nil
}

// Load reads the collection blob into out; a missing key or corrupt
// blob decodes as empty with a diagnostic.
func (s *RedisStore) Load(ctx context.Context, collection string, out any) error {
	data, err := s.client.Get(ctx, redisKeyPrefix+collection).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.logger.Warn("read collection key",
				zap.String("collection", collection), zap.Error(err))
		}
		return json.Unmarshal([]byte("[]"), out)
	}
	if err := json.Unmarshal(data, out); err != nil {
		s.logger.Warn("corrupt collection blob, treating as empty",
			zap.String("collection", collection), zap.Error(err))
		return json.Unmarshal([]byte("[]"), out)
	}
	return nil
}

// Save replaces the collection blob with a single SET.
func (s *RedisStore) Save(ctx context.Context, collection string, records any) error {
	data, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("encode collection %s: %w", collection, err)
	}
	if err := s.client.Set(ctx, redisKeyPrefix+collection, data, 0).Err(); err != nil {
		return fmt.Errorf("write collection %s: %w", collection, err)
	}
	return nil
}

// Mutate serializes a read-modify-write cycle over the named collections.
func (s *RedisStore) Mutate(ctx context.Context, fn func(ctx context.Context) error, collections ...string) error {
	release := s.locks.acquire(collections...)
	defer release()
	return fn(ctx)
}

// Ping verifies Redis connectivity.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close closes the client.
func (s *RedisStore) Close() {
	if s != nil && s.client != nil {
		_ = s.client.Close()
	}
}
