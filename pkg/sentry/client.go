package sentry

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/lk2023060901/xdooria-arena/pkg/config"
)

// Reporter 错误上报接口，未配置 Sentry 时使用 Noop
type Reporter interface {
	CaptureException(ctx context.Context, err error, tags map[string]string)
	Recover(ctx context.Context, recovered any, tags map[string]string)
	Close() error
}

// Client 基于独立 Hub 的 Sentry 客户端
type Client struct {
	hub    *sentry.Hub
	config *Config
	closed atomic.Bool

	captured atomic.Uint64
}

// New 创建客户端；DSN 为空时返回 Noop
func New(cfg *Config) (Reporter, error) {
	merged, err := config.MergeConfig(DefaultConfig(), cfg)
	if err != nil {
		return nil, err
	}
	if !merged.Enabled() {
		return Noop{}, nil
	}
	if err := config.Validate(merged); err != nil {
		return nil, err
	}

	client, err := sentry.NewClient(merged.clientOptions())
	if err != nil {
		return nil, fmt.Errorf("failed to create sentry client: %w", err)
	}

	hub := sentry.NewHub(client, sentry.NewScope())
	hub.ConfigureScope(func(scope *sentry.Scope) {
		for k, v := range merged.Tags {
			scope.SetTag(k, v)
		}
	})
	return &Client{hub: hub, config: merged}, nil
}

// CaptureException 上报错误，tags 只作用于本次事件
func (c *Client) CaptureException(ctx context.Context, err error, tags map[string]string) {
	if c.closed.Load() || err == nil {
		return
	}
	c.hub.WithScope(func(scope *sentry.Scope) {
		scope.SetTags(tags)
		if id := c.hub.CaptureException(err); id != nil {
			c.captured.Add(1)
		}
	})
}

// Recover 上报 recover() 得到的值，不重新抛出
func (c *Client) Recover(ctx context.Context, recovered any, tags map[string]string) {
	if c.closed.Load() || recovered == nil {
		return
	}
	c.hub.WithScope(func(scope *sentry.Scope) {
		scope.SetTags(tags)
		scope.SetLevel(sentry.LevelFatal)
		if id := c.hub.RecoverWithContext(ctx, recovered); id != nil {
			c.captured.Add(1)
		}
	})
}

// Captured 已上报事件数
func (c *Client) Captured() uint64 {
	return c.captured.Load()
}

func (c *Client) Flush(timeout time.Duration) bool {
	return c.hub.Flush(timeout)
}

// Close 刷新缓冲后关闭
func (c *Client) Close() error {
	if c.closed.Swap(true) {
		return nil
	}
	c.hub.Flush(c.config.ShutdownTimeout)
	return nil
}

// Noop 不上报任何事件
type Noop struct{}

func (Noop) CaptureException(context.Context, error, map[string]string) {}

func (Noop) Recover(context.Context, any, map[string]string) {}

func (Noop) Close() error { return nil }
