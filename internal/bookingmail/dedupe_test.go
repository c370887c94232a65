package bookingmail

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisDedupeStore(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	store := NewRedisDedupeStore(client, "booking-user", time.Hour, nil)
	ctx := context.Background()

	first, err := store.MarkProcessed(ctx, "m-1")
	require.NoError(t, err)
	assert.True(t, first)
	assert.True(t, mr.Exists("booking-user:delivery:m-1"))
	assert.Equal(t, time.Hour, mr.TTL("booking-user:delivery:m-1"))

	first, err = store.MarkProcessed(ctx, "m-1")
	require.NoError(t, err)
	assert.False(t, first)

	require.NoError(t, store.Release(ctx, "m-1"))
	first, err = store.MarkProcessed(ctx, "m-1")
	require.NoError(t, err)
	assert.True(t, first)

	mr.FastForward(2 * time.Hour)
	first, err = store.MarkProcessed(ctx, "m-1")
	require.NoError(t, err)
	assert.True(t, first, "mark expires with its TTL")
}

func TestRedisDedupeStoreError(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	store := NewRedisDedupeStore(client, "", 0, nil)

	mr.SetError("READONLY")
	_, err := store.MarkProcessed(context.Background(), "m-1")
	assert.Error(t, err)
}

func TestMemoryDedupeStore(t *testing.T) {
	now := time.Date(2025, 5, 16, 9, 0, 0, 0, time.UTC)
	store := NewMemoryDedupeStore(time.Minute, func() time.Time { return now })
	ctx := context.Background()

	first, _ := store.MarkProcessed(ctx, "m-1")
	assert.True(t, first)
	first, _ = store.MarkProcessed(ctx, "m-1")
	assert.False(t, first)

	now = now.Add(2 * time.Minute)
	first, _ = store.MarkProcessed(ctx, "m-1")
	assert.True(t, first)

	require.NoError(t, store.Release(ctx, "m-1"))
	first, _ = store.MarkProcessed(ctx, "m-1")
	assert.True(t, first)
}
