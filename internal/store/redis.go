package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goran-ethernal/HolderIndexor/internal/logger"
	"github.com/goran-ethernal/HolderIndexor/pkg/config"
	"github.com/goran-ethernal/HolderIndexor/pkg/store"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var _ store.Backend = (*RedisStore)(nil)

// releaseScript deletes the lock only when it still holds the lease token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisStore keeps values and leases in redis, so several indexer processes can share them.
type RedisStore struct {
	client *redis.Client
	prefix string
	log    *logger.Logger
}

// NewRedisStore connects to the redis server at url and verifies the connection.
func NewRedisStore(ctx context.Context, cfg config.RedisConfig, log *logger.Logger) (*RedisStore, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return &RedisStore{
		client: client,
		prefix: cfg.KeyPrefix,
		log:    log,
	}, nil
}

func (s *RedisStore) key(key string) string {
	return s.prefix + key
}

func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	start := time.Now()

	value, err := s.client.Get(ctx, s.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		observe(config.StoreBackendRedis, "get", "miss", start)
		return nil, false, nil
	}
	if err != nil {
		observe(config.StoreBackendRedis, "get", "error", start)
		return nil, false, fmt.Errorf("redis get %s: %w", key, err)
	}

	observe(config.StoreBackendRedis, "get", "hit", start)
	return value, true, nil
}

func (s *RedisStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	start := time.Now()
	if ttl < 0 {
		ttl = 0
	}

	err := s.client.Set(ctx, s.key(key), value, ttl).Err()
	observe(config.StoreBackendRedis, "set", opResult(err), start)
	if err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}

	return nil
}

func (s *RedisStore) Delete(ctx context.Context, key string) error {
	start := time.Now()
	err := s.client.Del(ctx, s.key(key)).Err()
	observe(config.StoreBackendRedis, "delete", opResult(err), start)
	if err != nil {
		return fmt.Errorf("redis del %s: %w", key, err)
	}

	return nil
}

// TryAcquire sets the lock key to a fresh lease token with SET NX PX.
func (s *RedisStore) TryAcquire(ctx context.Context, key string, ttl time.Duration) (store.Lease, bool, error) {
	token := uuid.NewString()
	acquired, err := s.client.SetNX(ctx, s.key(key), token, ttl).Result()
	lockAttemptInc(config.StoreBackendRedis, acquired, err)
	if err != nil {
		return store.Lease{}, false, fmt.Errorf("redis lock %s: %w", key, err)
	}
	if !acquired {
		return store.Lease{}, false, nil
	}

	return store.Lease{Key: key, Token: token}, true, nil
}

// Release deletes the lock key if it still holds the lease token.
func (s *RedisStore) Release(ctx context.Context, lease store.Lease) error {
	deleted, err := releaseScript.Run(ctx, s.client, []string{s.key(lease.Key)}, lease.Token).Int()
	if err != nil {
		return fmt.Errorf("redis unlock %s: %w", lease.Key, err)
	}

	if deleted == 0 {
		s.log.Warnf("lease on %s expired before it was released", lease.Key)
	}

	return nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
