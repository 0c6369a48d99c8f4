package system

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectorSample(t *testing.T) {
	c, err := New()
	require.NoError(t, err)
	assert.True(t, c.Last().SampledAt.IsZero())

	stats, err := c.Sample(context.Background())
	require.NoError(t, err)
	assert.Greater(t, stats.Goroutines, 0)
	assert.Greater(t, stats.MemoryBytes, uint64(0))
	assert.GreaterOrEqual(t, stats.HostMemoryPercent, 0.0)
	assert.Equal(t, stats.SampledAt, c.Last().SampledAt)
}

func TestCollectorSampleCanceled(t *testing.T) {
	c, err := New()
	require.NoError(t, err)

	// 取消的 context 不应 panic，结果可能为空
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _ = c.Sample(ctx)
}
