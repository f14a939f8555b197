package helpers

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := NewRedisClient(mr.Addr(), "", 0)
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

type cached struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

func TestRedisJSON_RoundTrip(t *testing.T) {
	mr, rdb := newTestRedis(t)
	ctx := context.Background()

	require.NoError(t, RedisSetJSON(ctx, rdb, "user:profile:1", cached{ID: "1", Email: "a@b.co"}, time.Minute))
	assert.Equal(t, time.Minute, mr.TTL("user:profile:1"))

	var got cached
	ok, err := RedisGetJSON(ctx, rdb, "user:profile:1", &got)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "a@b.co", got.Email)

	require.NoError(t, RedisDel(ctx, rdb, "user:profile:1"))
	ok, err = RedisGetJSON(ctx, rdb, "user:profile:1", &got)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisGetJSON_CorruptValue(t *testing.T) {
	mr, rdb := newTestRedis(t)
	require.NoError(t, mr.Set("user:profile:2", "{not json"))

	var got cached
	ok, err := RedisGetJSON(context.Background(), rdb, "user:profile:2", &got)
	assert.Error(t, err)
	assert.False(t, ok)
}
