package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// Options describes how to reach the cache server.
type Options struct {
	Addr     string
	Password string
	DB       int
}

// Connect dials Redis and pings it. An unreachable server is not fatal: Connect
// logs a warning and returns a nil client so callers run without a cache.
func Connect(ctx context.Context, opts Options, logger logrus.FieldLogger) *redis.Client {
	log := logger.WithField("component", "redis")

	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		log.WithError(err).WithField("addr", opts.Addr).Warn("could not connect to redis, running without report cache")
		_ = client.Close()
		return nil
	}

	log.WithField("addr", opts.Addr).Info("connected")
	return client
}

// RedisCache adapts a redis.Client to the services' CacheRepository interface.
type RedisCache struct {
	client *redis.Client
}

func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

func (r *RedisCache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	return r.client.Set(ctx, key, value, expiration).Err()
}

// Get returns "" and a nil error when the key is absent.
func (r *RedisCache) Get(ctx context.Context, key string) (string, error) {
	val, err := r.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	return val, err
}

func (r *RedisCache) Incr(ctx context.Context, key string) (int64, error) {
	return r.client.Incr(ctx, key).Result()
}

func (r *RedisCache) Del(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return r.client.Del(ctx, keys...).Err()
}

func (r *RedisCache) Close() error {
	return r.client.Close()
}
