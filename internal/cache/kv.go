package cache

import (
	"context"
	"time"

	"codeberg.org/mutker/producflow/internal/errors"
	"github.com/go-redis/redis/v8"
)

// KV is the minimal key-value surface the report cache needs.
type KV interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	DeletePrefix(ctx context.Context, prefix string) error
}

// RedisKV implements KV on a go-redis client. Get returns an ErrMiss coded
// error when the key does not exist.
type RedisKV struct {
	client *redis.Client
}

func NewRedisKV(client *redis.Client) *RedisKV {
	return &RedisKV{client: client}
}

// Dial connects to the configured Redis server and verifies it answers.
func Dial(ctx context.Context, cfg Config) (*RedisKV, error) {
	errFactory := errors.New()

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, errFactory.Wrap(ErrConnect, err)
	}
	return NewRedisKV(client), nil
}

func (r *RedisKV) Get(ctx context.Context, key string) (string, error) {
	val, err := r.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", errors.New().WithData(ErrMiss, key)
	}
	if err != nil {
		return "", errors.New().Wrap(ErrBackend, err)
	}
	return val, nil
}

func (r *RedisKV) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if err := r.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return errors.New().Wrap(ErrBackend, err)
	}
	return nil
}

// DeletePrefix removes every key starting with prefix.
func (r *RedisKV) DeletePrefix(ctx context.Context, prefix string) error {
	iter := r.client.Scan(ctx, 0, prefix+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return errors.New().Wrap(ErrBackend, err)
	}
	if len(keys) == 0 {
		return nil
	}
	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		return errors.New().Wrap(ErrBackend, err)
	}
	return nil
}

func (r *RedisKV) Close() error {
	return r.client.Close()
}
