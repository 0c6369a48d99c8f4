package web

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lk2023060901/xdooria-arena/pkg/config"
	"github.com/lk2023060901/xdooria-arena/pkg/logger"
	"github.com/lk2023060901/xdooria-arena/pkg/sentry"
	"github.com/lk2023060901/xdooria-arena/pkg/web/middleware"
	"github.com/lk2023060901/xdooria-arena/pkg/web/validator"
)

// Server gin HTTP 服务，实现 app.Server
type Server struct {
	engine *gin.Engine
	config *Config
	logger logger.Logger
	server *http.Server
}

// NewServer 创建服务并挂载基础中间件：request id、访问日志、panic 恢复、CORS
func NewServer(cfg *Config, l logger.Logger, reporter sentry.Reporter) (*Server, error) {
	c, err := config.MergeConfig(DefaultConfig(), cfg)
	if err != nil {
		return nil, err
	}
	if err := config.Validate(c); err != nil {
		return nil, err
	}
	if l == nil {
		l = logger.Default()
	}
	if reporter == nil {
		reporter = sentry.Noop{}
	}

	gin.SetMode(c.Mode)
	validator.Init()

	engine := gin.New()
	engine.Use(
		middleware.RequestID(),
		middleware.Logger(l.Named("web.access")),
		middleware.Recovery(l.Named("web.recovery"), reporter),
		middleware.CORS(c.AllowOrigins),
	)

	return &Server{
		engine: engine,
		config: c,
		logger: l.Named("web.server"),
	}, nil
}

// Router 用于注册路由
func (s *Server) Router() *gin.Engine {
	return s.engine
}

// Handler 返回 http.Handler，测试中配合 httptest 使用
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Start 监听端口并在后台提供服务
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}

	s.server = &http.Server{
		Handler:        s.engine,
		ReadTimeout:    s.config.ReadTimeout,
		WriteTimeout:   s.config.WriteTimeout,
		MaxHeaderBytes: 1 << 20,
	}

	go func() {
		var err error
		if s.config.EnableTLS {
			s.logger.Info("starting https server", "addr", addr)
			err = s.server.ServeTLS(ln, s.config.CertFile, s.config.KeyFile)
		} else {
			s.logger.Info("starting http server", "addr", addr)
			err = s.server.Serve(ln)
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("http server stopped unexpectedly", "error", err)
		}
	}()
	return nil
}

// Stop 优雅关闭
func (s *Server) Stop() error {
	if s.server == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
	defer cancel()

	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	s.logger.Info("http server exited")
	return nil
}
