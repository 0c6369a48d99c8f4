package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPoolSubmit(t *testing.T) {
	p, err := NewPool[int](Config{Size: 4})
	require.NoError(t, err)
	defer p.Release()

	var futures []*Future[int]
	for i := 0; i < 20; i++ {
		n := i
		futures = append(futures, p.Submit(func() (int, error) { return n * n, nil }))
	}

	for i, f := range futures {
		v, err := f.Await()
		require.NoError(t, err)
		assert.Equal(t, i*i, v)
		assert.True(t, f.Done())
	}
	assert.Equal(t, 4, p.Cap())
}

func TestPoolTaskError(t *testing.T) {
	p := NewDefaultPool[string]()
	defer p.Release()

	boom := errors.New("boom")
	_, err := p.Submit(func() (string, error) { return "", boom }).Await()
	assert.ErrorIs(t, err, boom)
}

func TestPanicPropagatesToAwait(t *testing.T) {
	p := NewDefaultPool[struct{}]()
	defer p.Release()

	f := p.Submit(func() (struct{}, error) { panic("hp must be positive") })
	<-f.Inner()
	assert.PanicsWithValue(t, "hp must be positive", func() { _, _ = f.Await() })
}

func TestAwaitContextTimeout(t *testing.T) {
	release := make(chan struct{})
	defer close(release)

	f := Go(func() (int, error) {
		<-release
		return 1, nil
	})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := AwaitContext(ctx, f)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestGo(t *testing.T) {
	var ran atomic.Bool
	f := Go(func() (struct{}, error) {
		ran.Store(true)
		return struct{}{}, nil
	})
	_, err := AwaitContext(context.Background(), f)
	require.NoError(t, err)
	assert.True(t, ran.Load())
}
