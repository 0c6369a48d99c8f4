package manager

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"time"

	"github.com/lk2023060901/xdooria-arena/app/arena/internal/metrics"
	"github.com/lk2023060901/xdooria-arena/pkg/logger"
)

// LockConfig 实体锁配置
type LockConfig struct {
	// Mode local 为进程内分段锁，redis 为分布式锁，多实例部署时必须使用 redis
	Mode    string `mapstructure:"mode" validate:"oneof=local redis"`
	Stripes int    `mapstructure:"stripes" validate:"min=1"`

	TTL           time.Duration `mapstructure:"ttl"`
	RetryInterval time.Duration `mapstructure:"retry_interval"`
	MaxRetries    int           `mapstructure:"max_retries" validate:"gte=0"`
}

// DefaultLockConfig 默认配置
func DefaultLockConfig() *LockConfig {
	return &LockConfig{
		Mode:          "local",
		Stripes:       256,
		TTL:           10 * time.Second,
		RetryInterval: 20 * time.Millisecond,
		MaxRetries:    250,
	}
}

// Locker 一次性获取多个键的锁，返回的 unlock 释放全部
type Locker interface {
	Lock(ctx context.Context, keys []string) (unlock func(), err error)
}

// LockManager 玩家与怪物的互斥访问
// 结算从读取到写回期间持有参与者的锁，同一实体的成长与提交因此串行
type LockManager struct {
	locker  Locker
	mode    string
	logger  logger.Logger
	metrics *metrics.ArenaMetrics
}

// NewLockManager 创建锁管理器
func NewLockManager(locker Locker, mode string, l logger.Logger, m *metrics.ArenaMetrics) *LockManager {
	return &LockManager{
		locker:  locker,
		mode:    mode,
		logger:  l.Named("manager.lock"),
		metrics: m,
	}
}

func monsterKey(id int64) string { return "monster:" + strconv.FormatInt(id, 10) }
func playerKey(id int64) string  { return "player:" + strconv.FormatInt(id, 10) }

// LockMonsters 锁定一组怪物
func (m *LockManager) LockMonsters(ctx context.Context, ids ...int64) (func(), error) {
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = monsterKey(id)
	}
	return m.LockAll(ctx, keys...)
}

// LockPlayer 锁定玩家及其指定怪物
func (m *LockManager) LockPlayer(ctx context.Context, playerID int64, monsterIDs ...int64) (func(), error) {
	keys := []string{playerKey(playerID)}
	for _, id := range monsterIDs {
		keys = append(keys, monsterKey(id))
	}
	return m.LockAll(ctx, keys...)
}

// LockAll 锁定任意键，键按字典序加锁，重复的键只锁一次
func (m *LockManager) LockAll(ctx context.Context, keys ...string) (func(), error) {
	keys = normalize(keys)
	start := time.Now()
	unlock, err := m.locker.Lock(ctx, keys)
	m.metrics.RecordLockWait(m.mode, time.Since(start).Seconds())
	if err != nil {
		m.logger.WarnContext(ctx, "failed to acquire entity locks", "keys", keys, "error", err)
		return nil, fmt.Errorf("failed to lock %v: %w", keys, err)
	}
	return unlock, nil
}

func normalize(keys []string) []string {
	out := slices.Clone(keys)
	slices.Sort(out)
	return slices.Compact(out)
}
