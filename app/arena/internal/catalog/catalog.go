package catalog

import (
	"context"
	"slices"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/lk2023060901/xdooria-arena/app/arena/internal/model"
	"github.com/lk2023060901/xdooria-arena/pkg/cache/lru"
	"github.com/lk2023060901/xdooria-arena/pkg/logger"
	"golang.org/x/sync/singleflight"
)

const poolKey = "pool"

// Config 模板目录配置
type Config struct {
	// Source 模板来源：builtin 使用内置模板，database 从 templates 表读取
	Source string        `mapstructure:"source" validate:"oneof=builtin database"`
	TTL    time.Duration `mapstructure:"ttl"`
}

// DefaultConfig 默认配置
func DefaultConfig() *Config {
	return &Config{
		Source: "builtin",
		TTL:    5 * time.Minute,
	}
}

// Loader 模板加载
type Loader interface {
	LoadTemplates(ctx context.Context) ([]*model.Template, error)
}

// LoaderFunc 函数适配
type LoaderFunc func(ctx context.Context) ([]*model.Template, error)

func (f LoaderFunc) LoadTemplates(ctx context.Context) ([]*model.Template, error) {
	return f(ctx)
}

// StaticLoader 返回固定模板
type StaticLoader []*model.Template

func (s StaticLoader) LoadTemplates(context.Context) ([]*model.Template, error) {
	return slices.Clone(s), nil
}

// Catalog 模板目录
// 整池缓存带 TTL，并发加载经 singleflight 合并；返回的模板只读
type Catalog struct {
	loader Loader
	cache  *lru.LRU[string, []*model.Template]
	byID   *lru.LRU[int64, *model.Template]
	group  singleflight.Group
	logger logger.Logger
}

// New 创建模板目录
func New(cfg *Config, loader Loader, l logger.Logger) *Catalog {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if l == nil {
		l = logger.NewNoop()
	}
	return &Catalog{
		loader: loader,
		cache:  lru.New[string, []*model.Template](lru.Config{MaxSize: 1, DefaultTTL: cfg.TTL}),
		byID:   lru.New[int64, *model.Template](lru.Config{MaxSize: 1024, DefaultTTL: cfg.TTL}),
		logger: l.Named("catalog"),
	}
}

// Templates 返回召唤池
func (c *Catalog) Templates(ctx context.Context) ([]*model.Template, error) {
	if pool, ok := c.cache.Get(poolKey); ok {
		return pool, nil
	}
	return c.load(ctx)
}

// Get 按 id 查找模板
func (c *Catalog) Get(ctx context.Context, id int64) (*model.Template, error) {
	if t, ok := c.byID.Get(id); ok {
		return t, nil
	}
	if _, err := c.Templates(ctx); err != nil {
		return nil, err
	}
	if t, ok := c.byID.Get(id); ok {
		return t, nil
	}
	return nil, errors.Wrapf(model.ErrNotFound, "template %d", id)
}

// Refresh 丢弃缓存并重新加载
func (c *Catalog) Refresh(ctx context.Context) error {
	c.cache.Delete(poolKey)
	_, err := c.load(ctx)
	return err
}

func (c *Catalog) load(ctx context.Context) ([]*model.Template, error) {
	v, err, shared := c.group.Do(poolKey, func() (interface{}, error) {
		pool, err := c.loader.LoadTemplates(ctx)
		if err != nil {
			return nil, err
		}
		c.byID.Clear()
		for _, t := range pool {
			c.byID.Set(t.ID, t)
		}
		c.cache.Set(poolKey, pool)
		c.logger.Debug("template catalog loaded", "templates", len(pool))
		return pool, nil
	})
	if err != nil {
		c.logger.WarnContext(ctx, "failed to load template catalog", "error", err, "shared", shared)
		return nil, errors.Wrap(err, "load templates")
	}
	return v.([]*model.Template), nil
}

// Close 释放缓存
func (c *Catalog) Close() error {
	c.byID.Close()
	return c.cache.Close()
}
