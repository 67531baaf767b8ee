package kv

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/mrops-br/shopverse-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"
)

func setupTestRedis(t *testing.T) (*miniredis.Miniredis, *RedisStore) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewRedisStoreFromClient(client, noop.NewTracerProvider().Tracer("test"), slog.New(slog.NewTextHandler(io.Discard, nil)))

	t.Cleanup(func() {
		_ = store.Close()
		mr.Close()
	})
	return mr, store
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()

	_, err := m.Get(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrSnapshotNotFound)

	value := []byte(`[1,2]`)
	require.NoError(t, m.Set(ctx, "k", value))
	value[0] = 'x'

	got, err := m.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, `[1,2]`, string(got), "stored value must not alias the caller's slice")

	require.NoError(t, m.Delete(ctx, "k"))
	_, err = m.Get(ctx, "k")
	assert.ErrorIs(t, err, domain.ErrSnapshotNotFound)
	assert.NoError(t, m.Delete(ctx, "k"))
	assert.NoError(t, m.Ping(ctx))
}

func TestRedisStoreRoundTrip(t *testing.T) {
	mr, store := setupTestRedis(t)
	ctx := context.Background()

	_, err := store.Get(ctx, "shopverse:s1:cart")
	assert.ErrorIs(t, err, domain.ErrSnapshotNotFound)

	require.NoError(t, store.Set(ctx, "shopverse:s1:cart", []byte(`[]`)))
	assert.True(t, mr.Exists("shopverse:s1:cart"))

	got, err := store.Get(ctx, "shopverse:s1:cart")
	require.NoError(t, err)
	assert.Equal(t, `[]`, string(got))

	require.NoError(t, store.Set(ctx, "shopverse:s1:cart", []byte(`[{"quantity":1}]`)))
	raw, err := mr.Get("shopverse:s1:cart")
	require.NoError(t, err)
	assert.Equal(t, `[{"quantity":1}]`, raw)

	require.NoError(t, store.Delete(ctx, "shopverse:s1:cart"))
	assert.False(t, mr.Exists("shopverse:s1:cart"))
}

func TestRedisStorePingAndInitialize(t *testing.T) {
	mr, store := setupTestRedis(t)
	ctx := context.Background()

	assert.NoError(t, store.Ping(ctx))
	assert.NoError(t, store.Initialize(ctx, 1))

	mr.SetError("LOADING")
	assert.Error(t, store.Ping(ctx))

	ctx, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
	defer cancel()
	assert.Error(t, store.Initialize(ctx, 10))
}

func TestRedisStoreGetError(t *testing.T) {
	mr, store := setupTestRedis(t)
	mr.SetError("boom")

	_, err := store.Get(context.Background(), "k")
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrSnapshotNotFound)
}
