package dao

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/lk2023060901/xdooria-arena/app/arena/internal/metrics"
	"github.com/lk2023060901/xdooria-arena/app/arena/internal/model"
	"github.com/lk2023060901/xdooria-arena/pkg/compress"
	"github.com/lk2023060901/xdooria-arena/pkg/database/redis"
	"github.com/lk2023060901/xdooria-arena/pkg/logger"
	"github.com/lk2023060901/xdooria-arena/pkg/serializer"
)

const (
	monsterKeyPrefix = "monster"
	playerKeyPrefix  = "player"

	defaultCacheTTL = 30 * time.Minute
)

// CacheDAO 怪物与玩家的 Redis 缓存，值使用 msgpack 编码，可选压缩
type CacheDAO struct {
	redis      *redis.Client
	ttl        time.Duration
	compressor compress.Compressor
	logger     logger.Logger
	metrics    *metrics.ArenaMetrics
}

// CacheOption 缓存选项
type CacheOption func(*CacheDAO)

// WithCompressor 写入前压缩 msgpack 数据
func WithCompressor(c compress.Compressor) CacheOption {
	return func(d *CacheDAO) {
		d.compressor = c
	}
}

// NewCacheDAO 创建缓存 DAO，ttl 为 0 时使用默认 30 分钟
func NewCacheDAO(rdb *redis.Client, ttl time.Duration, l logger.Logger, m *metrics.ArenaMetrics, opts ...CacheOption) *CacheDAO {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	d := &CacheDAO{
		redis:   rdb,
		ttl:     ttl,
		logger:  l.Named("dao.cache"),
		metrics: m,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *CacheDAO) get(ctx context.Context, key string, v any) error {
	if d.compressor == nil {
		return d.redis.GetObject(ctx, key, v)
	}
	data, err := d.redis.GetBytes(ctx, key)
	if err != nil {
		return err
	}
	if data, err = d.compressor.Decompress(data); err != nil {
		return fmt.Errorf("decompress %s: %w", key, err)
	}
	return serializer.Decode(data, v)
}

func (d *CacheDAO) set(ctx context.Context, key string, v any) error {
	if d.compressor == nil {
		return d.redis.SetObject(ctx, key, v, d.ttl)
	}
	data, err := serializer.Encode(v)
	if err != nil {
		return err
	}
	if data, err = d.compressor.Compress(data); err != nil {
		return fmt.Errorf("compress %s: %w", key, err)
	}
	return d.redis.Set(ctx, key, data, d.ttl)
}

func (d *CacheDAO) monsterKey(id int64) string {
	return d.redis.Key(monsterKeyPrefix, strconv.FormatInt(id, 10))
}

func (d *CacheDAO) playerKey(id int64) string {
	return d.redis.Key(playerKeyPrefix, strconv.FormatInt(id, 10))
}

// GetMonster 读取缓存，未命中返回 nil, nil
func (d *CacheDAO) GetMonster(ctx context.Context, id int64) (*model.Monster, error) {
	var m model.Monster
	if err := d.get(ctx, d.monsterKey(id), &m); err != nil {
		if errors.Is(err, redis.ErrNil) {
			d.metrics.RecordCacheMiss("redis")
			return nil, nil
		}
		d.logger.WarnContext(ctx, "failed to get monster from cache", "monster_id", id, "error", err)
		return nil, fmt.Errorf("failed to get monster from cache: %w", err)
	}
	d.metrics.RecordCacheHit("redis")
	return &m, nil
}

// SetMonster 写入缓存
func (d *CacheDAO) SetMonster(ctx context.Context, m *model.Monster) error {
	if err := d.set(ctx, d.monsterKey(m.ID), m); err != nil {
		d.logger.WarnContext(ctx, "failed to set monster cache", "monster_id", m.ID, "error", err)
		return fmt.Errorf("failed to set monster cache: %w", err)
	}
	return nil
}

// GetPlayer 读取缓存，未命中返回 nil, nil
func (d *CacheDAO) GetPlayer(ctx context.Context, id int64) (*model.Player, error) {
	var p model.Player
	if err := d.get(ctx, d.playerKey(id), &p); err != nil {
		if errors.Is(err, redis.ErrNil) {
			d.metrics.RecordCacheMiss("redis")
			return nil, nil
		}
		d.logger.WarnContext(ctx, "failed to get player from cache", "player_id", id, "error", err)
		return nil, fmt.Errorf("failed to get player from cache: %w", err)
	}
	d.metrics.RecordCacheHit("redis")
	return &p, nil
}

// SetPlayer 写入缓存
func (d *CacheDAO) SetPlayer(ctx context.Context, p *model.Player) error {
	if err := d.set(ctx, d.playerKey(p.ID), p); err != nil {
		d.logger.WarnContext(ctx, "failed to set player cache", "player_id", p.ID, "error", err)
		return fmt.Errorf("failed to set player cache: %w", err)
	}
	return nil
}

// Invalidate 删除玩家与怪物缓存，写库后调用
func (d *CacheDAO) Invalidate(ctx context.Context, playerIDs []int64, monsterIDs []int64) error {
	keys := make([]string, 0, len(playerIDs)+len(monsterIDs))
	for _, id := range playerIDs {
		keys = append(keys, d.playerKey(id))
	}
	for _, id := range monsterIDs {
		keys = append(keys, d.monsterKey(id))
	}
	if err := d.redis.Del(ctx, keys...); err != nil {
		d.logger.WarnContext(ctx, "failed to invalidate cache", "keys", len(keys), "error", err)
		return err
	}
	return nil
}
