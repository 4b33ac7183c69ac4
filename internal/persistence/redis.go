package persistence

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/duty-attendance/internal/config"
)

// Redis wraps the go-redis client.
type Redis struct {
	Client *redis.Client
}

// NewRedis connects to Redis using the provided configuration.
func NewRedis(cfg config.RedisConfig, logger *zap.Logger) *Redis {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		logger.Warn("unable to reach redis", zap.Error(err))
	} else {
		logger.Info("connected to redis")
	}

	return &Redis{Client: client}
}

// Close closes the client.
func (r *Redis) Close() {
	if r != nil && r.Client != nil {
		_ = r.Client.Close()
	}
}

// Ping verifies Redis connectivity.
func (r *Redis) Ping(ctx context.Context) error {
	if r == nil || r.Client == nil {
		return errors.New("redis client not configured")
	}
	return r.Client.Ping(ctx).Err()
}

// RedisStore keeps both slots as fields of one hash, so a kiosk's session
// survives the client process being replaced.
type RedisStore struct {
	client redis.Cmdable
	key    string
}

// NewRedisStore returns a store writing to the hash at key.
func NewRedisStore(client redis.Cmdable, key string) *RedisStore {
	return &RedisStore{client: client, key: key}
}

func (s *RedisStore) Get(ctx context.Context, slot Slot) (string, error) {
	value, err := s.client.HGet(ctx, s.key, string(slot)).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	return value, err
}

func (s *RedisStore) Set(ctx context.Context, slot Slot, value string) error {
	return s.client.HSet(ctx, s.key, string(slot), value).Err()
}

func (s *RedisStore) Delete(ctx context.Context, slots ...Slot) error {
	if len(slots) == 0 {
		return nil
	}
	fields := make([]string, 0, len(slots))
	for _, slot := range slots {
		fields = append(fields, string(slot))
	}
	return s.client.HDel(ctx, s.key, fields...).Err()
}
