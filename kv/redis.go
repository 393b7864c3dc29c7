package kv

import (
	"context"

	"github.com/redis/go-redis/v9"
)

// RedisStore is a durable Store backed by Redis, for deployments where
// consent state is shared across instances.
type RedisStore struct {
	client *redis.Client
	prefix string
}

func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	return &RedisStore{client: client, prefix: prefix}
}

func (s *RedisStore) Get(key string) (string, error) {
	v, err := s.client.Get(context.Background(), s.prefix+key).Result()
	if err == redis.Nil {
		return "", ErrNotFound
	}
	return v, err
}

func (s *RedisStore) Set(key, value string) error {
	return s.client.Set(context.Background(), s.prefix+key, value, 0).Err()
}
