package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps the list as a JSON string under Key, optionally namespaced
// per user so several clients can share one redis.
type RedisStore struct {
	client *redis.Client
	key    string
}

// NewRedisStoreWithURL connects to the redis at url.
func NewRedisStoreWithURL(url, namespace string) (*RedisStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	return NewRedisStore(redis.NewClient(opts), namespace), nil
}

func NewRedisStore(client *redis.Client, namespace string) *RedisStore {
	key := Key
	if namespace != "" {
		key = namespace + ":" + Key
	}
	return &RedisStore{client: client, key: key}
}

func (s *RedisStore) Load(ctx context.Context) ([]string, error) {
	data, err := s.client.Get(ctx, s.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", s.key, err)
	}

	var queries []string
	if err := json.Unmarshal(data, &queries); err != nil {
		return nil, fmt.Errorf("decode %s: %w", s.key, err)
	}
	return normalize(queries), nil
}

func (s *RedisStore) Save(ctx context.Context, queries []string) error {
	data, err := json.Marshal(normalize(queries))
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, s.key, data, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", s.key, err)
	}
	return nil
}

func (s *RedisStore) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, s.key).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", s.key, err)
	}
	return nil
}

// Healthy reports whether redis is reachable.
func (s *RedisStore) Healthy(ctx context.Context) bool {
	return s.client.Ping(ctx).Err() == nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

// WithNamespace returns a store sharing the client under another namespace.
func (s *RedisStore) WithNamespace(namespace string) *RedisStore {
	return NewRedisStore(s.client, namespace)
}
