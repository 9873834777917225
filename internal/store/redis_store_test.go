package store

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewRedisStore(client), mr
}

func TestRedisStorePutGet(t *testing.T) {
	s, mr := newTestRedisStore(t)
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, "k1", "v1", time.Hour))

	val, err := s.Get(ctx, "k1")
	require.NoError(t, err)
	assert.Equal(t, "v1", val)

	// Keys are namespaced in Redis.
	assert.True(t, mr.Exists("session:k1"))
}

func TestRedisStoreGetMiss(t *testing.T) {
	s, _ := newTestRedisStore(t)

	_, err := s.Get(context.Background(), "absent")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestRedisStoreTTLExpiry(t *testing.T) {
	s, mr := newTestRedisStore(t)
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, "k1", "v1", time.Minute))

	mr.FastForward(time.Minute + time.Second)

	// The store owns expiry: no explicit delete is needed.
	_, err := s.Get(ctx, "k1")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestRedisStorePutReplacesWholesale(t *testing.T) {
	s, _ := newTestRedisStore(t)
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, "k1", "v1", time.Hour))
	require.NoError(t, s.Put(ctx, "k1", "v2", time.Hour))

	val, err := s.Get(ctx, "k1")
	require.NoError(t, err)
	assert.Equal(t, "v2", val)
}

func TestRedisStoreDeleteIdempotent(t *testing.T) {
	s, _ := newTestRedisStore(t)
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, "k1", "v1", time.Hour))
	require.NoError(t, s.Delete(ctx, "k1"))

	_, err := s.Get(ctx, "k1")
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Delete(ctx, "k1"))
}

func TestRedisStoreRejectsBadArguments(t *testing.T) {
	s, _ := newTestRedisStore(t)
	ctx := context.Background()

	assert.Error(t, s.Put(ctx, "", "v", time.Hour))
	assert.Error(t, s.Put(ctx, "k", "v", 0))
	assert.Error(t, s.Put(ctx, "k", "v", -time.Second))
}
