package job

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/lk2023060901/xdooria-arena/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRepublisher struct {
	calls     atomic.Int32
	olderThan time.Duration
	limit     int
	err       error
}

func (f *fakeRepublisher) Republish(_ context.Context, olderThan time.Duration, limit int) (int, error) {
	f.calls.Add(1)
	f.olderThan = olderThan
	f.limit = limit
	return 2, f.err
}

type fakeRefresher struct {
	calls atomic.Int32
}

func (f *fakeRefresher) Refresh(context.Context) error {
	f.calls.Add(1)
	return nil
}

func TestNewSchedulerRejectsBadSpec(t *testing.T) {
	cfg := DefaultConfig()
	cfg.RepublishSpec = "every minute please"

	_, err := NewScheduler(cfg, &fakeRepublisher{}, &fakeRefresher{}, logger.NewNoop())
	assert.Error(t, err)
}

func TestSchedulerRegistersJobs(t *testing.T) {
	tests := []struct {
		name string
		cfg  func(c *Config)
		want int
	}{
		{name: "all", cfg: func(*Config) {}, want: 2},
		{name: "disabled", cfg: func(c *Config) { c.Enabled = false }, want: 0},
		{name: "no refresh", cfg: func(c *Config) { c.CatalogRefreshSpec = "" }, want: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.cfg(cfg)
			s, err := NewScheduler(cfg, &fakeRepublisher{}, &fakeRefresher{}, logger.NewNoop())
			require.NoError(t, err)
			assert.Len(t, s.cron.Entries(), tt.want)
		})
	}
}

func TestRepublishJobPassesConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.RepublishOlderThan = time.Minute
	cfg.RepublishBatch = 7
	r := &fakeRepublisher{err: errors.New("broker down")}

	s, err := NewScheduler(cfg, r, nil, logger.NewNoop())
	require.NoError(t, err)

	// 失败只记录日志
	s.republish()
	assert.Equal(t, int32(1), r.calls.Load())
	assert.Equal(t, time.Minute, r.olderThan)
	assert.Equal(t, 7, r.limit)
}

func TestSchedulerRunsJobs(t *testing.T) {
	cfg := DefaultConfig()
	cfg.RepublishSpec = "@every 1s"
	cfg.CatalogRefreshSpec = "@every 1s"
	r := &fakeRepublisher{}
	f := &fakeRefresher{}

	s, err := NewScheduler(cfg, r, f, logger.NewNoop())
	require.NoError(t, err)
	require.NoError(t, s.Start())
	defer s.Stop()

	assert.Eventually(t, func() bool {
		return r.calls.Load() > 0 && f.calls.Load() > 0
	}, 5*time.Second, 50*time.Millisecond)
}

type fakeSampler struct {
	calls atomic.Int32
}

func (f *fakeSampler) Sample(context.Context) error {
	f.calls.Add(1)
	return errors.New("unsupported platform")
}

func TestSchedulerWithSampler(t *testing.T) {
	cfg := DefaultConfig()
	sampler := &fakeSampler{}

	s, err := NewScheduler(cfg, &fakeRepublisher{}, &fakeRefresher{}, logger.NewNoop(), WithSampler(sampler))
	require.NoError(t, err)
	assert.Len(t, s.cron.Entries(), 3)

	s.sample()
	assert.Equal(t, int32(1), sampler.calls.Load())

	cfg.SystemSampleSpec = "sometimes"
	_, err = NewScheduler(cfg, nil, nil, logger.NewNoop(), WithSampler(sampler))
	assert.Error(t, err)
}
