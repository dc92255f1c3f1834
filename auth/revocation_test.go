package auth

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisRevocations(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	rev := NewRedisRevocations(client)
	ctx := context.Background()

	revoked, err := rev.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, rev.Revoke(ctx, "jti-1", time.Now().Add(time.Minute)))
	revoked, err = rev.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)
	assert.True(t, mr.Exists("auth:revoked:jti-1"))

	mr.FastForward(2 * time.Minute)
	revoked, err = rev.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, revoked)

	// Already expired tokens are not stored.
	require.NoError(t, rev.Revoke(ctx, "jti-2", time.Now().Add(-time.Second)))
	assert.False(t, mr.Exists("auth:revoked:jti-2"))
}

func TestRedisRevocationsUnavailable(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { client.Close() })
	mr.Close()

	_, err := NewRedisRevocations(client).IsRevoked(context.Background(), "jti")
	assert.Error(t, err)
}

func TestMemoryRevocations(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	rev := NewMemoryRevocations()
	rev.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, rev.Revoke(ctx, "a", now.Add(time.Minute)))
	require.NoError(t, rev.Revoke(ctx, "b", now.Add(-time.Minute)))

	ok, _ := rev.IsRevoked(ctx, "a")
	assert.True(t, ok)
	ok, _ = rev.IsRevoked(ctx, "b")
	assert.False(t, ok)

	now = now.Add(2 * time.Minute)
	ok, _ = rev.IsRevoked(ctx, "a")
	assert.False(t, ok)

	require.NoError(t, rev.Revoke(ctx, "c", now.Add(time.Minute)))
	assert.Len(t, rev.revoked, 1)
}
