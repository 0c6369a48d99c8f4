package postgres

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"
)

// QueryBuilder 使用 $1 占位符的 squirrel 构建器
var QueryBuilder = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

// Client PostgreSQL 客户端
type Client struct {
	pool *pgxpool.Pool
	cfg  *Config
}

// New 创建连接池并检查连通性
func New(ctx context.Context, cfg *Config) (*Client, error) {
	c, err := resolve(cfg)
	if err != nil {
		return nil, err
	}

	poolCfg, err := pgxpool.ParseConfig(c.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to parse pool config: %w", err)
	}
	poolCfg.MaxConns = c.Pool.MaxConns
	poolCfg.MinConns = c.Pool.MinConns
	poolCfg.MaxConnLifetime = c.Pool.MaxConnLifetime
	poolCfg.MaxConnIdleTime = c.Pool.MaxConnIdleTime
	poolCfg.HealthCheckPeriod = c.Pool.HealthCheckPeriod

	connectCtx, cancel := context.WithTimeout(ctx, c.ConnectTimeout)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(connectCtx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create pool: %w", err)
	}
	if err := pool.Ping(connectCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Client{pool: pool, cfg: c}, nil
}

// DB 返回连接池，作为非事务的 Querier
func (c *Client) DB() Querier {
	return c.pool
}

func (c *Client) Ping(ctx context.Context) error {
	return c.pool.Ping(ctx)
}

// Close 实现 app.Closer
func (c *Client) Close() error {
	c.pool.Close()
	return nil
}

// PoolStats 连接池状态，由 metrics 定期上报
type PoolStats struct {
	AcquiredConns int32
	IdleConns     int32
	TotalConns    int32
	MaxConns      int32
}

func (c *Client) Stats() PoolStats {
	s := c.pool.Stat()
	return PoolStats{
		AcquiredConns: s.AcquiredConns(),
		IdleConns:     s.IdleConns(),
		TotalConns:    s.TotalConns(),
		MaxConns:      s.MaxConns(),
	}
}
