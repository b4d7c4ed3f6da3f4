package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// Redis stores records in a Redis database under a key namespace
type Redis struct {
	client    *redis.Client
	namespace string
}

// NewRedis connects using a redis:// URL and verifies the connection
func NewRedis(url, namespace string) (*Redis, error) {
	if url == "" {
		return nil, fmt.Errorf("redis storage: URL is required")
	}
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("redis storage: invalid URL: %w", err)
	}
	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis storage: connect: %w", err)
	}
	return NewRedisWithClient(client, namespace), nil
}

// NewRedisWithClient wraps an existing client
func NewRedisWithClient(client *redis.Client, namespace string) *Redis {
	return &Redis{client: client, namespace: namespace}
}

var _ Storage = (*Redis)(nil)

func (r *Redis) formatKey(key string) string {
	if r.namespace == "" {
		return key
	}
	return r.namespace + ":" + key
}

func (r *Redis) Load(ctx context.Context, key string) ([]byte, error) {
	b, err := r.client.Get(ctx, r.formatKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	return b, err
}

func (r *Redis) Save(ctx context.Context, key string, data []byte) error {
	return r.client.Set(ctx, r.formatKey(key), data, 0).Err()
}

func (r *Redis) Delete(ctx context.Context, key string) error {
	n, err := r.client.Del(ctx, r.formatKey(key)).Result()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Redis) Close() error {
	return r.client.Close()
}
