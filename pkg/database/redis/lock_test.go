package redis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLockExclusive(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()
	key := c.Key("lock", "monster", "1")

	first := c.NewLock(key, 5*time.Second)
	second := c.NewLock(key, 5*time.Second)

	ok, err := first.TryLock(ctx)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = second.TryLock(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	// 非持有者不能释放
	assert.ErrorIs(t, second.Unlock(ctx), ErrLockNotHeld)

	require.NoError(t, first.Refresh(ctx))
	require.NoError(t, first.Unlock(ctx))

	ok, err = second.TryLock(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	require.NoError(t, second.Unlock(ctx))
}

func TestLockWithRetry(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()
	key := c.Key("lock", "monster", "2")

	holder := c.NewLock(key, 100*time.Millisecond)
	ok, err := holder.TryLock(ctx)
	require.NoError(t, err)
	require.True(t, ok)

	// 持有者的锁过期后可以拿到
	waiter := c.NewLock(key, time.Second)
	require.NoError(t, waiter.LockWithRetry(ctx, 20*time.Millisecond, 50))
	require.NoError(t, waiter.Unlock(ctx))

	blocker := c.NewLock(key, 5*time.Second)
	ok, err = blocker.TryLock(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	defer blocker.Unlock(ctx)

	err = c.NewLock(key, time.Second).LockWithRetry(ctx, 10*time.Millisecond, 2)
	assert.ErrorIs(t, err, ErrLockFailed)
}
