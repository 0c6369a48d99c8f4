package main

import (
	"context"

	"github.com/lk2023060901/xdooria-arena/pkg/app"
	"github.com/lk2023060901/xdooria-arena/pkg/config"
	"github.com/lk2023060901/xdooria-arena/pkg/logger"
)

func main() {
	cfg := defaultConfig()

	// 1. 加载配置，默认值已填入 cfg
	mgr, err := app.LoadConfig(cfg)
	if err != nil {
		panic(err)
	}
	if err := config.Validate(cfg); err != nil {
		panic(err)
	}

	// 2. 初始化主日志
	l, err := logger.New(&cfg.Log)
	if err != nil {
		panic(err)
	}

	// 3. 通过 Wire 初始化应用
	ctx := context.Background()
	application, cleanup, err := InitApp(ctx, cfg, mgr, l)
	if err != nil {
		l.Error("failed to initialize application", "error", err)
		return
	}
	defer cleanup()

	// 4. 运行服务
	if err := application.Run(ctx); err != nil {
		l.Error("application exited with error", "error", err)
	}
}
