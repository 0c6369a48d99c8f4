package redis

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestClient 连接 ARENA_TEST_REDIS（默认 localhost:6379），不可用时跳过
func newTestClient(t *testing.T) *Client {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	addr := os.Getenv("ARENA_TEST_REDIS")
	if addr == "" {
		addr = "localhost:6379"
	}
	c, err := NewClient(&Config{Addrs: []string{addr}, KeyPrefix: fmt.Sprintf("arena-test-%d:", time.Now().UnixNano())})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	if err := c.Ping(ctx); err != nil {
		_ = c.Close()
		t.Skipf("redis not available at %s: %v", addr, err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestResolveConfig(t *testing.T) {
	cfg, err := resolve(&Config{Addrs: []string{"cache:6380"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"cache:6380"}, cfg.Addrs)
	assert.Equal(t, "arena:", cfg.KeyPrefix)
	assert.Equal(t, 100, cfg.Pool.MaxActiveConns)

	_, err = resolve(&Config{Addrs: []string{"not-an-addr"}})
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = resolve(&Config{DB: 99})
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestKey(t *testing.T) {
	c, err := NewClient(&Config{KeyPrefix: "arena:"})
	require.NoError(t, err)
	defer c.Close()

	assert.Equal(t, "arena:monster:42", c.Key("monster", "42"))
	assert.Equal(t, "arena:", c.Key())
}

func TestObjectRoundTrip(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	type cached struct {
		ID    int64
		Level int
	}

	key := c.Key("monster", "1")
	require.NoError(t, c.SetObject(ctx, key, cached{ID: 1, Level: 3}, time.Minute))

	var got cached
	require.NoError(t, c.GetObject(ctx, key, &got))
	assert.Equal(t, cached{ID: 1, Level: 3}, got)

	require.NoError(t, c.Del(ctx, key))
	assert.ErrorIs(t, c.GetObject(ctx, key, &got), ErrNil)
}
