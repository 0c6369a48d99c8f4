package sentry

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWithoutDSNIsNoop(t *testing.T) {
	r, err := New(&Config{Environment: "test"})
	require.NoError(t, err)
	assert.IsType(t, Noop{}, r)

	r.CaptureException(context.Background(), errors.New("x"), nil)
	r.Recover(context.Background(), "panic", nil)
	assert.NoError(t, r.Close())
}

func TestNewWithDSN(t *testing.T) {
	r, err := New(&Config{DSN: "https://public@example.com/1", SampleRate: 0.5})
	require.NoError(t, err)

	c, ok := r.(*Client)
	require.True(t, ok)
	assert.Equal(t, "production", c.config.Environment)
	assert.NoError(t, c.Close())
	assert.NoError(t, c.Close())

	// 关闭后不再上报
	c.CaptureException(context.Background(), errors.New("late"), nil)
	assert.Equal(t, uint64(0), c.Captured())
}

func TestNewRejectsBadSampleRate(t *testing.T) {
	_, err := New(&Config{DSN: "https://public@example.com/1", SampleRate: 2})
	assert.Error(t, err)
}
