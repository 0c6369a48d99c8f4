//go:build wireinject
// +build wireinject

package main

import (
	"context"

	"github.com/google/wire"
	"github.com/lk2023060901/xdooria-arena/app/arena/internal/metrics"
	"github.com/lk2023060901/xdooria-arena/app/arena/internal/service"
	"github.com/lk2023060901/xdooria-arena/pkg/app"
	"github.com/lk2023060901/xdooria-arena/pkg/config"
	"github.com/lk2023060901/xdooria-arena/pkg/logger"
	"github.com/lk2023060901/xdooria-arena/pkg/prometheus"
)

func InitApp(ctx context.Context, cfg *Config, mgr config.Manager, l logger.Logger) (*app.App, func(), error) {
	panic(wire.Build(
		// 1. 应用框架
		app.ProviderSet,
		provideAppOptions,

		// 2. 外部连接
		provideInfra,

		// 3. 指标与错误上报
		providePrometheusConfig,
		prometheus.New,
		metrics.New,
		provideSentry,

		// 4. 存储与模板
		provideRepository,
		provideTemplateLoader,
		provideCatalog,

		// 5. 锁、事件、ID
		provideLockManager,
		providePublisher,
		provideIDGenerator,

		// 6. 服务层
		provideRuleSet,
		providePools,
		service.NewBattleService,
		service.NewSummonService,
		service.NewPlayerService,

		// 7. 接口层与后台任务
		provideWebServer,
		provideJWT,
		provideRateLimiter,
		provideHandler,
		provideScheduler,

		// 8. 组装
		provideAppComponents,
	))
}
