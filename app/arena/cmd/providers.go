package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/lk2023060901/xdooria-arena/app/arena/internal/catalog"
	"github.com/lk2023060901/xdooria-arena/app/arena/internal/dao"
	"github.com/lk2023060901/xdooria-arena/app/arena/internal/event"
	"github.com/lk2023060901/xdooria-arena/app/arena/internal/handler"
	"github.com/lk2023060901/xdooria-arena/app/arena/internal/job"
	"github.com/lk2023060901/xdooria-arena/app/arena/internal/manager"
	"github.com/lk2023060901/xdooria-arena/app/arena/internal/metrics"
	"github.com/lk2023060901/xdooria-arena/app/arena/internal/repository"
	"github.com/lk2023060901/xdooria-arena/app/arena/internal/service"
	"github.com/lk2023060901/xdooria-arena/pkg/app"
	"github.com/lk2023060901/xdooria-arena/pkg/compress"
	"github.com/lk2023060901/xdooria-arena/pkg/config"
	"github.com/lk2023060901/xdooria-arena/pkg/database/postgres"
	"github.com/lk2023060901/xdooria-arena/pkg/database/redis"
	"github.com/lk2023060901/xdooria-arena/pkg/idgen"
	"github.com/lk2023060901/xdooria-arena/pkg/logger"
	"github.com/lk2023060901/xdooria-arena/pkg/mq/kafka"
	"github.com/lk2023060901/xdooria-arena/pkg/prometheus"
	"github.com/lk2023060901/xdooria-arena/pkg/security"
	"github.com/lk2023060901/xdooria-arena/pkg/sentry"
	"github.com/lk2023060901/xdooria-arena/pkg/web"
	"github.com/lk2023060901/xdooria-arena/pkg/web/middleware"
)

// infra 按配置创建的外部连接，未启用的为 nil
type infra struct {
	db    *postgres.Client
	redis *redis.Client
	kafka *kafka.Client
}

// provideInfra 连接 PostgreSQL、Redis 与 Kafka
func provideInfra(ctx context.Context, cfg *Config, l logger.Logger) (*infra, func(), error) {
	inf := &infra{}
	cleanup := func() {
		if inf.kafka != nil {
			_ = inf.kafka.Close()
		}
		if inf.redis != nil {
			_ = inf.redis.Close()
		}
		if inf.db != nil {
			_ = inf.db.Close()
		}
	}

	var err error
	if cfg.Storage == StoragePostgres {
		if inf.db, err = postgres.New(ctx, &cfg.Database); err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("connect postgres: %w", err)
		}
	}
	if cfg.usesRedis() {
		if inf.redis, err = redis.NewClient(&cfg.Redis); err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("connect redis: %w", err)
		}
	}
	if cfg.Events.Enabled {
		if inf.kafka, err = kafka.New(&cfg.Kafka, kafka.WithLogger(l.Named("kafka"))); err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("create kafka client: %w", err)
		}
	}
	l.Info("infrastructure ready",
		"storage", cfg.Storage,
		"redis", inf.redis != nil,
		"kafka", inf.kafka != nil,
	)
	return inf, cleanup, nil
}

// providePrometheusConfig 提供 Prometheus 配置
func providePrometheusConfig(cfg *Config) *prometheus.Config {
	return &cfg.Prometheus
}

// provideSentry 提供错误上报
func provideSentry(cfg *Config) (sentry.Reporter, error) {
	return sentry.New(&cfg.Sentry)
}

// provideRepository 按 storage 选择存储
func provideRepository(ctx context.Context, cfg *Config, inf *infra, m *metrics.ArenaMetrics, l logger.Logger) (repository.RosterRepository, error) {
	if cfg.Storage != StoragePostgres {
		return repository.NewMemoryRepository(), nil
	}
	if cfg.Migrate {
		if err := dao.Migrate(ctx, inf.db.DB()); err != nil {
			return nil, err
		}
	}
	var cache *dao.CacheDAO
	if cfg.Cache.Enabled {
		var opts []dao.CacheOption
		if t := compress.Type(cfg.Cache.Compression); t != "" && t != compress.TypeNone {
			c, err := compress.New(t)
			if err != nil {
				return nil, err
			}
			opts = append(opts, dao.WithCompressor(c))
		}
		cache = dao.NewCacheDAO(inf.redis, cfg.Cache.TTL, l, m, opts...)
	}
	return repository.NewPostgresRepository(
		inf.db,
		dao.NewPlayerDAO(l, m),
		dao.NewMonsterDAO(l, m),
		dao.NewRecordDAO(l, m),
		dao.NewSummonDAO(l, m),
		cache,
		l,
	), nil
}

// provideTemplateLoader 模板来源，数据库为空时写入内置模板
func provideTemplateLoader(ctx context.Context, cfg *Config, inf *infra, m *metrics.ArenaMetrics, l logger.Logger) (catalog.Loader, error) {
	if cfg.Catalog.Source != "database" {
		return catalog.StaticLoader(catalog.DefaultTemplates()), nil
	}
	if inf.db == nil {
		return nil, errors.New("catalog source database requires storage postgres")
	}
	templates := dao.NewTemplateDAO(inf.db, l, m)
	existing, err := templates.LoadTemplates(ctx)
	if err != nil {
		return nil, err
	}
	if len(existing) == 0 {
		if err := templates.Upsert(ctx, catalog.DefaultTemplates()); err != nil {
			return nil, err
		}
		l.Info("seeded default monster templates")
	}
	return templates, nil
}

// provideCatalog 提供模板目录
func provideCatalog(cfg *Config, loader catalog.Loader, l logger.Logger) *catalog.Catalog {
	return catalog.New(&cfg.Catalog, loader, l)
}

// provideLockManager 本地分段锁或 Redis 分布式锁
func provideLockManager(cfg *Config, inf *infra, m *metrics.ArenaMetrics, l logger.Logger) *manager.LockManager {
	var locker manager.Locker
	if cfg.Lock.Mode == "redis" {
		locker = manager.NewRedisLocker(inf.redis, &cfg.Lock, l)
	} else {
		locker = manager.NewLocalLocker(cfg.Lock.Stripes)
	}
	return manager.NewLockManager(locker, cfg.Lock.Mode, l, m)
}

// providePublisher 未启用事件流时丢弃事件
func providePublisher(cfg *Config, inf *infra, m *metrics.ArenaMetrics, l logger.Logger) (event.Publisher, error) {
	if inf.kafka == nil {
		return event.NoopPublisher{}, nil
	}
	return event.NewKafkaPublisher(inf.kafka, &cfg.Events, l, m)
}

// provideIDGenerator 提供 ID 生成器
func provideIDGenerator(cfg *Config) (idgen.Generator, error) {
	return idgen.NewSonyflake(cfg.IDGen)
}

// provideRuleSet 提供可热更新的规则
func provideRuleSet(cfg *Config) (*service.RuleSet, error) {
	return service.NewRuleSet(&cfg.Rules)
}

// providePools 提供结算任务池
func providePools(cfg *Config) (*service.Pools, error) {
	return service.NewPools(cfg.Worker)
}

// provideWebServer 提供 HTTP 服务
func provideWebServer(cfg *Config, l logger.Logger, reporter sentry.Reporter) (*web.Server, error) {
	return web.NewServer(&cfg.Web, l, reporter)
}

// provideJWT 提供 Token 管理器
func provideJWT(cfg *Config) (*security.JWTManager, error) {
	return security.NewJWTManager(&cfg.JWT)
}

// provideRateLimiter 召唤接口限流
func provideRateLimiter(cfg *Config, l logger.Logger) *middleware.RateLimiter {
	return middleware.NewRateLimiter(l, &cfg.RateLimit)
}

// provideHandler 提供 HTTP 处理器
func provideHandler(
	cfg *Config,
	battles *service.BattleService,
	summons *service.SummonService,
	players *service.PlayerService,
	cat *catalog.Catalog,
	l logger.Logger,
) *handler.Handler {
	return handler.NewHandler(&cfg.HTTP, battles, summons, players, cat, l)
}

// provideScheduler 提供后台任务，资源采样不可用时跳过
func provideScheduler(cfg *Config, summons *service.SummonService, cat *catalog.Catalog, m *metrics.ArenaMetrics, l logger.Logger) (*job.Scheduler, error) {
	var opts []job.Option
	if reporter, err := metrics.NewSystemReporter(m, l); err != nil {
		l.Warn("system sampling disabled", "error", err)
	} else {
		opts = append(opts, job.WithSampler(reporter))
	}
	return job.NewScheduler(&cfg.Jobs, summons, cat, l, opts...)
}

// provideAppOptions 提供应用选项
func provideAppOptions(cfg *Config, l logger.Logger) []app.Option {
	opts := []app.Option{
		app.WithName(app.AppName),
		app.WithLogger(l),
	}
	if cfg.InstanceID != "" {
		opts = append(opts, app.WithID(cfg.InstanceID))
	}
	if cfg.ShutdownTimeout > 0 {
		opts = append(opts, app.WithStopTimeout(cfg.ShutdownTimeout))
	}
	return opts
}

// provideAppComponents 注册路由并收集需要启动与关闭的组件
func provideAppComponents(
	cfg *Config,
	mgr config.Manager,
	srv *web.Server,
	h *handler.Handler,
	jwt *security.JWTManager,
	limiter *middleware.RateLimiter,
	promClient *prometheus.Client,
	rules *service.RuleSet,
	scheduler *job.Scheduler,
	pools *service.Pools,
	players *service.PlayerService,
	cat *catalog.Catalog,
	publisher event.Publisher,
	reporter sentry.Reporter,
	l logger.Logger,
) app.Components {
	router := srv.Router()
	router.Use(middleware.Metrics(promClient))
	h.Register(router, &handler.Routes{
		Auth:        middleware.Auth(&middleware.AuthConfig{JWTManager: jwt}),
		SummonLimit: middleware.RateLimit(limiter),
		Metrics:     promClient.Handler(),
		MetricsPath: cfg.Prometheus.Path,
		JWT:         jwt,
	})

	if mgr != nil {
		if err := service.WatchRules(mgr, rules, l); err != nil {
			l.Warn("rules hot reload disabled", "error", err)
		}
	}

	return app.Components{
		Servers: []app.Server{
			srv,
			scheduler,
		},
		Closers: []app.Closer{
			reporter,
			promClient,
			publisher,
			cat,
			limiter,
			players,
			pools,
		},
	}
}
