package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// Client Redis 客户端
type Client struct {
	rdb goredis.UniversalClient
	cfg *Config
}

// NewClient 创建客户端，不主动检查连通性
func NewClient(cfg *Config) (*Client, error) {
	c, err := resolve(cfg)
	if err != nil {
		return nil, err
	}

	rdb := goredis.NewUniversalClient(&goredis.UniversalOptions{
		Addrs:           c.Addrs,
		Password:        c.Password,
		DB:              c.DB,
		MaxIdleConns:    c.Pool.MaxIdleConns,
		MaxActiveConns:  c.Pool.MaxActiveConns,
		ConnMaxIdleTime: c.Pool.ConnMaxIdleTime,
		DialTimeout:     c.Pool.DialTimeout,
		ReadTimeout:     c.Pool.ReadTimeout,
		WriteTimeout:    c.Pool.WriteTimeout,
		PoolTimeout:     c.Pool.PoolTimeout,
	})
	return &Client{rdb: rdb, cfg: c}, nil
}

// Key 拼接键前缀
func (c *Client) Key(parts ...string) string {
	key := c.cfg.KeyPrefix
	for i, p := range parts {
		if i > 0 {
			key += ":"
		}
		key += p
	}
	return key
}

// Raw 返回底层 go-redis 客户端
func (c *Client) Raw() goredis.UniversalClient {
	return c.rdb
}

func (c *Client) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

// Close 实现 app.Closer
func (c *Client) Close() error {
	return c.rdb.Close()
}

// GetBytes 读取原始值，键不存在时返回 ErrNil
func (c *Client) GetBytes(ctx context.Context, key string) ([]byte, error) {
	b, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, ErrNil
		}
		return nil, fmt.Errorf("redis get %s: %w", key, err)
	}
	return b, nil
}

// Set 写入值，ttl 为 0 表示不过期
func (c *Client) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	if err := c.rdb.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// Del 删除键
func (c *Client) Del(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}
