package job

import (
	"context"
	"fmt"
	"time"

	"github.com/lk2023060901/xdooria-arena/pkg/logger"
	"github.com/robfig/cron/v3"
)

// Config 定时任务配置，spec 为空时不注册对应任务
type Config struct {
	Enabled bool `mapstructure:"enabled"`
	// RepublishSpec 重投未处理召唤日志的调度表达式
	RepublishSpec      string        `mapstructure:"republish_spec"`
	RepublishOlderThan time.Duration `mapstructure:"republish_older_than"`
	RepublishBatch     int           `mapstructure:"republish_batch" validate:"gte=0"`
	// CatalogRefreshSpec 刷新模板目录的调度表达式
	CatalogRefreshSpec string `mapstructure:"catalog_refresh_spec"`
	// SystemSampleSpec 资源采样
	SystemSampleSpec string        `mapstructure:"system_sample_spec"`
	Timeout          time.Duration `mapstructure:"timeout"`
}

// DefaultConfig 默认配置
func DefaultConfig() *Config {
	return &Config{
		Enabled:            true,
		RepublishSpec:      "@every 1m",
		RepublishOlderThan: 30 * time.Second,
		RepublishBatch:     100,
		CatalogRefreshSpec: "@every 5m",
		SystemSampleSpec:   "@every 15s",
		Timeout:            30 * time.Second,
	}
}

// Republisher 重投召唤日志
type Republisher interface {
	Republish(ctx context.Context, olderThan time.Duration, limit int) (int, error)
}

// Refresher 刷新缓存数据
type Refresher interface {
	Refresh(ctx context.Context) error
}

// Sampler 周期采样
type Sampler interface {
	Sample(ctx context.Context) error
}

// Option 调度器选项
type Option func(*Scheduler)

// WithSampler 注册资源采样任务
func WithSampler(sampler Sampler) Option {
	return func(s *Scheduler) {
		s.sampler = sampler
	}
}

// Scheduler 基于 cron 的后台任务，实现 app.Server
type Scheduler struct {
	cfg         *Config
	cron        *cron.Cron
	republisher Republisher
	refresher   Refresher
	sampler     Sampler
	logger      logger.Logger
}

// NewScheduler 创建调度器并注册任务
func NewScheduler(cfg *Config, republisher Republisher, refresher Refresher, l logger.Logger, opts ...Option) (*Scheduler, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	log := l.Named("job")
	cl := cronLogger{l: log}
	s := &Scheduler{
		cfg: cfg,
		cron: cron.New(
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		republisher: republisher,
		refresher:   refresher,
		logger:      log,
	}
	for _, opt := range opts {
		opt(s)
	}
	if !cfg.Enabled {
		return s, nil
	}

	if cfg.RepublishSpec != "" && republisher != nil {
		if _, err := s.cron.AddFunc(cfg.RepublishSpec, s.republish); err != nil {
			return nil, fmt.Errorf("invalid republish spec %q: %w", cfg.RepublishSpec, err)
		}
	}
	if cfg.CatalogRefreshSpec != "" && refresher != nil {
		if _, err := s.cron.AddFunc(cfg.CatalogRefreshSpec, s.refresh); err != nil {
			return nil, fmt.Errorf("invalid catalog refresh spec %q: %w", cfg.CatalogRefreshSpec, err)
		}
	}
	if cfg.SystemSampleSpec != "" && s.sampler != nil {
		if _, err := s.cron.AddFunc(cfg.SystemSampleSpec, s.sample); err != nil {
			return nil, fmt.Errorf("invalid system sample spec %q: %w", cfg.SystemSampleSpec, err)
		}
	}
	return s, nil
}

// Start 启动调度
func (s *Scheduler) Start() error {
	s.cron.Start()
	s.logger.Info("job scheduler started", "jobs", len(s.cron.Entries()))
	return nil
}

// Stop 停止调度并等待运行中的任务结束
func (s *Scheduler) Stop() error {
	ctx := s.cron.Stop()
	select {
	case <-ctx.Done():
	case <-time.After(s.cfg.Timeout):
		s.logger.Warn("job scheduler stop timed out", "timeout", s.cfg.Timeout)
	}
	s.logger.Info("job scheduler stopped")
	return nil
}

func (s *Scheduler) context() (context.Context, context.CancelFunc) {
	if s.cfg.Timeout <= 0 {
		return context.WithCancel(context.Background())
	}
	return context.WithTimeout(context.Background(), s.cfg.Timeout)
}

func (s *Scheduler) republish() {
	ctx, cancel := s.context()
	defer cancel()

	n, err := s.republisher.Republish(ctx, s.cfg.RepublishOlderThan, s.cfg.RepublishBatch)
	if err != nil {
		s.logger.Warn("republish job failed", "error", err)
		return
	}
	if n > 0 {
		s.logger.Info("republish job finished", "count", n)
	}
}

func (s *Scheduler) refresh() {
	ctx, cancel := s.context()
	defer cancel()

	if err := s.refresher.Refresh(ctx); err != nil {
		s.logger.Warn("catalog refresh job failed", "error", err)
	}
}

func (s *Scheduler) sample() {
	ctx, cancel := s.context()
	defer cancel()

	if err := s.sampler.Sample(ctx); err != nil {
		s.logger.Debug("system sample failed", "error", err)
	}
}

// cronLogger 适配 cron.Logger
type cronLogger struct {
	l logger.Logger
}

func (c cronLogger) Info(msg string, keysAndValues ...any) {
	c.l.Debug(msg, keysAndValues...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...any) {
	c.l.Error(msg, append(keysAndValues, "error", err)...)
}
