// Package redis stores snapshot slots as Redis string keys.
package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/honeycarbs/listing-watch/internal/domain"
)

// DefaultPrefix namespaces every key written by the store
const DefaultPrefix = "listing-watch:"

// Store is a Redis-backed snapshot store
type Store struct {
	client *redis.Client
	prefix string
}

// NewStore connects to addr
func NewStore(addr, prefix string) *Store {
	return NewStoreWithClient(redis.NewClient(&redis.Options{Addr: addr}), prefix)
}

// NewStoreWithClient wraps an existing client
func NewStoreWithClient(client *redis.Client, prefix string) *Store {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &Store{client: client, prefix: prefix}
}

// Ping checks connectivity
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close closes the Redis client.
func (s *Store) Close() error {
	return s.client.Close()
}

func (s *Store) Get(ctx context.Context, key string) (string, error) {
	val, err := s.client.Get(ctx, s.prefix+key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", domain.ErrSnapshotNotFound
		}
		return "", fmt.Errorf("redis: get %s: %w", key, err)
	}
	return val, nil
}

func (s *Store) Put(ctx context.Context, key, value string) error {
	if err := s.client.Set(ctx, s.prefix+key, value, 0).Err(); err != nil {
		return fmt.Errorf("redis: set %s: %w", key, err)
	}
	return nil
}

// Copy overwrites dstKey with srcKey's value; a missing source is ErrSnapshotNotFound
func (s *Store) Copy(ctx context.Context, srcKey, dstKey string) error {
	n, err := s.client.Copy(ctx, s.prefix+srcKey, s.prefix+dstKey, s.db(), true).Result()
	if err != nil {
		return fmt.Errorf("redis: copy %s to %s: %w", srcKey, dstKey, err)
	}
	if n == 0 {
		return fmt.Errorf("redis: copy %s: %w", srcKey, domain.ErrSnapshotNotFound)
	}
	return nil
}

// db is the database the client has selected; COPY targets it explicitly
func (s *Store) db() int {
	return s.client.Options().DB
}
