package manager

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/lk2023060901/xdooria-arena/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLocal(stripes int) *LockManager {
	return NewLockManager(NewLocalLocker(stripes), "local", logger.NewNoop(), nil)
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, normalize([]string{"c", "a", "b", "a"}))
}

func TestLockSerializesSameMonster(t *testing.T) {
	m := newLocal(64)
	var inside atomic.Int32
	var maxInside atomic.Int32
	var wg sync.WaitGroup

	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock, err := m.LockMonsters(context.Background(), 7, 8)
			if !assert.NoError(t, err) {
				return
			}
			n := inside.Add(1)
			if n > maxInside.Load() {
				maxInside.Store(n)
			}
			time.Sleep(time.Millisecond)
			inside.Add(-1)
			unlock()
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), maxInside.Load())
}

func TestOverlappingSetsDoNotDeadlock(t *testing.T) {
	m := newLocal(8)
	var wg sync.WaitGroup
	done := make(chan struct{})

	for i := range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ids := []int64{1, 2, 3}
			if i%2 == 0 {
				ids = []int64{3, 2, 1}
			}
			unlock, err := m.LockMonsters(context.Background(), ids...)
			if assert.NoError(t, err) {
				unlock()
			}
		}()
	}
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("lock acquisition deadlocked")
	}
}

func TestLockHonorsContext(t *testing.T) {
	m := newLocal(16)
	unlock, err := m.LockPlayer(context.Background(), 1, 10)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = m.LockMonsters(ctx, 10)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	unlock()
	unlock()

	again, err := m.LockMonsters(context.Background(), 10)
	require.NoError(t, err)
	again()
}
