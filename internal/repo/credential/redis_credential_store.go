package credential

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/mkrupp/luxclient/internal/infra/logging"
)

// RedisStoreConfig holds configuration for the Redis credential store.
type RedisStoreConfig struct {
	Addr     string `env:"ADDR" default:"localhost:6379"`
	Password string `env:"PASSWORD" default:""`
	DB       int    `env:"DB" default:"0"`

	// KeyPrefix is prepended to "<profile>:<key>"
	KeyPrefix string `env:"KEY_PREFIX" default:"luxclient"`
}

// RedisStore implements Store on a Redis server, for clients that share a session
// across processes or hosts.
type RedisStore struct {
	rdb        *redis.Client
	accessKey  string
	refreshKey string
	log        logging.Logger
}

var _ Store = (*RedisStore)(nil)

// NewRedisStore connects to the server at cfg.Addr and returns a store bound to profile.
func NewRedisStore(ctx context.Context, cfg RedisStoreConfig, profile string) (*RedisStore, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()

		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return newRedisStore(rdb, cfg.KeyPrefix, profile), nil
}

func newRedisStore(rdb *redis.Client, prefix, profile string) *RedisStore {
	key := func(name string) string {
		if prefix == "" {
			return profile + ":" + name
		}

		return prefix + ":" + profile + ":" + name
	}

	return &RedisStore{
		rdb:        rdb,
		accessKey:  key(AccessTokenKey),
		refreshKey: key(RefreshTokenKey),
		log: logging.GetLogger("repo.credential.redis_credential_store").With(
			logging.Group("redis", "profile", profile),
		),
	}
}

func (s *RedisStore) get(ctx context.Context, key string) (string, bool, error) {
	value, err := s.rdb.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}

		return "", false, fmt.Errorf("get %s: %w", key, err)
	}

	return value, value != "", nil
}

// GetAccess implements Store.GetAccess using Redis.
func (s *RedisStore) GetAccess(ctx context.Context) (string, bool, error) {
	return s.get(ctx, s.accessKey)
}

// GetRefresh implements Store.GetRefresh using Redis.
func (s *RedisStore) GetRefresh(ctx context.Context) (string, bool, error) {
	return s.get(ctx, s.refreshKey)
}

// SetPair implements Store.SetPair with a single atomic MSET.
func (s *RedisStore) SetPair(ctx context.Context, access, refresh string) error {
	if err := s.rdb.MSet(ctx, s.accessKey, access, s.refreshKey, refresh).Err(); err != nil {
		return fmt.Errorf("mset credentials: %w", err)
	}

	s.log.DebugContext(ctx, "credential pair stored")

	return nil
}

// Clear implements Store.Clear using Redis.
func (s *RedisStore) Clear(ctx context.Context) error {
	if err := s.rdb.Del(ctx, s.accessKey, s.refreshKey).Err(); err != nil {
		return fmt.Errorf("del credentials: %w", err)
	}

	s.log.DebugContext(ctx, "credential pair cleared")

	return nil
}

// HasPair implements Store.HasPair with a single MGET.
func (s *RedisStore) HasPair(ctx context.Context) (bool, error) {
	values, err := s.rdb.MGet(ctx, s.accessKey, s.refreshKey).Result()
	if err != nil {
		return false, fmt.Errorf("mget credentials: %w", err)
	}

	for _, v := range values {
		if str, ok := v.(string); !ok || str == "" {
			return false, nil
		}
	}

	return true, nil
}

// Close implements Store.Close by closing the Redis client.
func (s *RedisStore) Close() error {
	if err := s.rdb.Close(); err != nil {
		return fmt.Errorf("close redis: %w", err)
	}

	return nil
}
