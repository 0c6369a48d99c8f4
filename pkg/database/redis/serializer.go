package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/lk2023060901/xdooria-arena/pkg/serializer"
)

// GetObject 读取并用 msgpack 解码，键不存在时返回 ErrNil
func (c *Client) GetObject(ctx context.Context, key string, v any) error {
	data, err := c.GetBytes(ctx, key)
	if err != nil {
		return err
	}
	if err := serializer.Decode(data, v); err != nil {
		return fmt.Errorf("redis decode %s: %w", key, err)
	}
	return nil
}

// SetObject 用 msgpack 编码后写入
func (c *Client) SetObject(ctx context.Context, key string, v any, ttl time.Duration) error {
	data, err := serializer.Encode(v)
	if err != nil {
		return fmt.Errorf("redis encode %s: %w", key, err)
	}
	return c.Set(ctx, key, data, ttl)
}
