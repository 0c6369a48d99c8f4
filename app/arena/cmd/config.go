package main

import (
	"time"

	"github.com/lk2023060901/xdooria-arena/app/arena/internal/catalog"
	"github.com/lk2023060901/xdooria-arena/app/arena/internal/event"
	"github.com/lk2023060901/xdooria-arena/app/arena/internal/handler"
	"github.com/lk2023060901/xdooria-arena/app/arena/internal/job"
	"github.com/lk2023060901/xdooria-arena/app/arena/internal/manager"
	"github.com/lk2023060901/xdooria-arena/app/arena/internal/model"
	"github.com/lk2023060901/xdooria-arena/pkg/compress"
	"github.com/lk2023060901/xdooria-arena/pkg/database/postgres"
	"github.com/lk2023060901/xdooria-arena/pkg/database/redis"
	"github.com/lk2023060901/xdooria-arena/pkg/idgen"
	"github.com/lk2023060901/xdooria-arena/pkg/logger"
	"github.com/lk2023060901/xdooria-arena/pkg/mq/kafka"
	"github.com/lk2023060901/xdooria-arena/pkg/pool/worker"
	"github.com/lk2023060901/xdooria-arena/pkg/prometheus"
	"github.com/lk2023060901/xdooria-arena/pkg/security"
	"github.com/lk2023060901/xdooria-arena/pkg/sentry"
	"github.com/lk2023060901/xdooria-arena/pkg/web"
	"github.com/lk2023060901/xdooria-arena/pkg/web/middleware"
)

const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"
)

// CacheConfig 怪物与玩家的 Redis 读缓存，仅 postgres 存储下生效
type CacheConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	TTL     time.Duration `mapstructure:"ttl"`
	// Compression none/snappy/lz4/zstd
	Compression string `mapstructure:"compression" validate:"omitempty,oneof=none snappy lz4 zstd"`
}

// Config 定义 Arena 服务的完整配置结构
type Config struct {
	// InstanceID 为空时随机生成
	InstanceID      string        `mapstructure:"instance_id"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`

	Log logger.Config `mapstructure:"log"`

	// Web 服务与路由
	Web       web.Config                 `mapstructure:"web"`
	HTTP      handler.Config             `mapstructure:"http"`
	JWT       security.JWTConfig         `mapstructure:"jwt"`
	RateLimit middleware.RateLimitConfig `mapstructure:"rate_limit"`

	// Storage memory 或 postgres
	Storage  string          `mapstructure:"storage" validate:"oneof=memory postgres"`
	Database postgres.Config `mapstructure:"database"`
	// Migrate 启动时建表
	Migrate  bool            `mapstructure:"migrate"`

	Redis redis.Config       `mapstructure:"redis"`
	Cache CacheConfig        `mapstructure:"cache"`
	Lock  manager.LockConfig `mapstructure:"lock"`

	// 历史事件流
	Kafka  kafka.Config `mapstructure:"kafka"`
	Events event.Config `mapstructure:"events"`

	Prometheus prometheus.Config `mapstructure:"prometheus"`
	Sentry     sentry.Config     `mapstructure:"sentry"`

	// Worker 结算任务池
	Worker  worker.Config  `mapstructure:"worker"`
	Rules   model.Rules    `mapstructure:"rules"`
	Jobs    job.Config     `mapstructure:"jobs"`
	IDGen   idgen.Config   `mapstructure:"idgen"`
	Catalog catalog.Config `mapstructure:"catalog"`
}

func (c *Config) usesRedis() bool {
	return c.Lock.Mode == "redis" ||
		(c.Storage == StoragePostgres && c.Cache.Enabled)
}

// defaultConfig 各组件默认值，配置文件中出现的键覆盖对应字段
func defaultConfig() *Config {
	return &Config{
		ShutdownTimeout: 30 * time.Second,

		Log:        *logger.DefaultConfig(),
		Web:        *web.DefaultConfig(),
		HTTP:       *handler.DefaultConfig(),
		JWT:        *security.DefaultJWTConfig(),
		RateLimit:  *middleware.DefaultRateLimitConfig(),
		Storage:    StorageMemory,
		Database:   *postgres.DefaultConfig(),
		Redis:      *redis.DefaultConfig(),
		Cache:      CacheConfig{TTL: 5 * time.Minute, Compression: string(compress.TypeSnappy)},
		Lock:       *manager.DefaultLockConfig(),
		Kafka:      *kafka.DefaultConfig(),
		Events:     *event.DefaultConfig(),
		Prometheus: *prometheus.DefaultConfig(),
		Sentry:     *sentry.DefaultConfig(),
		Rules:      *model.DefaultRules(),
		Jobs:       *job.DefaultConfig(),
		Catalog:    *catalog.DefaultConfig(),
	}
}
