package manager

import (
	"context"
	"sync"
	"time"

	"github.com/lk2023060901/xdooria-arena/pkg/database/redis"
	"github.com/lk2023060901/xdooria-arena/pkg/logger"
)

// RedisLocker 基于 Redis 的分布式锁，键按传入顺序逐个获取
type RedisLocker struct {
	client *redis.Client
	cfg    LockConfig
	logger logger.Logger
}

// NewRedisLocker 创建分布式锁
func NewRedisLocker(client *redis.Client, cfg *LockConfig, l logger.Logger) *RedisLocker {
	if cfg == nil {
		cfg = DefaultLockConfig()
	}
	return &RedisLocker{client: client, cfg: *cfg, logger: l.Named("manager.redis_lock")}
}

func (r *RedisLocker) Lock(ctx context.Context, keys []string) (func(), error) {
	held := make([]*redis.Lock, 0, len(keys))
	release := func() {
		// 调用方 ctx 可能已取消，释放使用独立超时
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		for i := len(held) - 1; i >= 0; i-- {
			if err := held[i].Unlock(ctx); err != nil {
				r.logger.Warn("failed to release lock", "key", held[i].Key(), "error", err)
			}
		}
	}

	for _, k := range keys {
		lock := r.client.NewLock(r.client.Key("lock", k), r.cfg.TTL)
		if err := lock.LockWithRetry(ctx, r.cfg.RetryInterval, r.cfg.MaxRetries); err != nil {
			release()
			return nil, err
		}
		held = append(held, lock)
	}
	return sync.OnceFunc(release), nil
}
