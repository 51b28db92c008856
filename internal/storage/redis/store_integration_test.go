package redis

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/honeycarbs/listing-watch/internal/domain"
)

func TestStoreIntegration(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set; skipping integration test")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	s := NewStore(addr, "listing-watch-test:"+uuid.NewString()+":")
	defer func() { _ = s.Close() }()
	require.NoError(t, s.Ping(ctx))

	_, err := s.Get(ctx, "brussels/previous.txt")
	assert.True(t, errors.Is(err, domain.ErrSnapshotNotFound))

	err = s.Copy(ctx, "brussels/latest.txt", "brussels/previous.txt")
	assert.True(t, errors.Is(err, domain.ErrSnapshotNotFound))

	require.NoError(t, s.Put(ctx, "brussels/latest.txt", "one\n"))
	require.NoError(t, s.Copy(ctx, "brussels/latest.txt", "brussels/previous.txt"))
	require.NoError(t, s.Put(ctx, "brussels/latest.txt", "two\n"))
	require.NoError(t, s.Copy(ctx, "brussels/latest.txt", "brussels/previous.txt"))

	got, err := s.Get(ctx, "brussels/previous.txt")
	require.NoError(t, err)
	assert.Equal(t, "two\n", got)
}

func TestStoreIntegrationNonDefaultDatabase(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set; skipping integration test")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	client := redis.NewClient(&redis.Options{Addr: addr, DB: 1})
	s := NewStoreWithClient(client, "listing-watch-test:"+uuid.NewString()+":")
	defer func() { _ = s.Close() }()
	require.NoError(t, s.Ping(ctx))

	require.NoError(t, s.Put(ctx, "brussels/latest.txt", "one\n"))
	require.NoError(t, s.Copy(ctx, "brussels/latest.txt", "brussels/previous.txt"))

	got, err := s.Get(ctx, "brussels/previous.txt")
	require.NoError(t, err)
	assert.Equal(t, "one\n", got)
}
