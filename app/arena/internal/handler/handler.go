package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gin-gonic/gin"
	"github.com/lk2023060901/xdooria-arena/app/arena/internal/catalog"
	"github.com/lk2023060901/xdooria-arena/app/arena/internal/model"
	"github.com/lk2023060901/xdooria-arena/app/arena/internal/service"
	"github.com/lk2023060901/xdooria-arena/pkg/logger"
	"github.com/lk2023060901/xdooria-arena/pkg/security"
	"github.com/lk2023060901/xdooria-arena/pkg/web"
	codes "github.com/lk2023060901/xdooria-arena/pkg/web/errors"
	"github.com/lk2023060901/xdooria-arena/pkg/web/middleware"
)

// Config 路由配置
type Config struct {
	// RequestTimeout 单个请求的处理时限，0 表示不限制
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	// EnableDevToken 开放 /api/v1/dev/token 签发测试 Token，仅用于开发环境
	EnableDevToken bool `mapstructure:"enable_dev_token"`
}

// DefaultConfig 默认配置
func DefaultConfig() *Config {
	return &Config{RequestTimeout: 10 * time.Second}
}

// Routes 注册路由所需的外部组件
type Routes struct {
	// Auth 认证中间件，必填
	Auth        gin.HandlerFunc
	// SummonLimit 召唤接口的限流中间件，可选
	SummonLimit gin.HandlerFunc

	// Metrics 指标处理器，可选，挂载在 MetricsPath（默认 /metrics）
	Metrics     http.Handler
	MetricsPath string

	// JWT 签发开发 Token 使用
	JWT *security.JWTManager
}

// Handler HTTP 处理器
type Handler struct {
	cfg     *Config
	battles *service.BattleService
	summons *service.SummonService
	players *service.PlayerService
	catalog *catalog.Catalog
	logger  logger.Logger
}

// NewHandler 创建处理器
func NewHandler(
	cfg *Config,
	battles *service.BattleService,
	summons *service.SummonService,
	players *service.PlayerService,
	cat *catalog.Catalog,
	l logger.Logger,
) *Handler {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return &Handler{
		cfg:     cfg,
		battles: battles,
		summons: summons,
		players: players,
		catalog: cat,
		logger:  l.Named("handler"),
	}
}

// Register 注册全部路由
func (h *Handler) Register(r gin.IRouter, routes *Routes) {
	r.GET("/healthz", h.Healthz)
	if routes.Metrics != nil {
		path := routes.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		r.GET(path, gin.WrapH(routes.Metrics))
	}

	v1 := r.Group("/api/v1")
	if h.cfg.EnableDevToken && routes.JWT != nil {
		v1.POST("/dev/token", h.DevToken(routes.JWT))
	}

	api := v1.Group("", h.timeout(), routes.Auth, h.ensurePlayer)
	api.GET("/templates", h.Templates)

	api.POST("/battles", h.Battle)
	api.GET("/battles/:id", h.GetBattle)
	api.POST("/rumbles", h.Rumble)
	api.GET("/rumbles/:id", h.GetRumble)

	summons := api.Group("/summons")
	if routes.SummonLimit != nil {
		summons.Use(routes.SummonLimit)
	}
	summons.POST("", h.SummonOne)
	summons.POST("/batch", h.SummonMany)

	api.GET("/players/me", h.Me)
	api.GET("/players/me/monsters", h.Monsters)
	api.GET("/players/me/history", h.History)
	api.POST("/players/me/experience", h.GrantPlayerExperience)

	api.GET("/monsters/:id", h.Monster)
	api.GET("/monsters/:id/battles", h.MonsterBattles)
	api.POST("/monsters/:id/experience", h.GrantMonsterExperience)
	api.POST("/monsters/:id/skills/:slot/upgrade", h.UpgradeSkill)
}

// Healthz 存活检查
func (h *Handler) Healthz(c *gin.Context) {
	web.Success(c, gin.H{"status": "ok"})
}

func (h *Handler) timeout() gin.HandlerFunc {
	return func(c *gin.Context) {
		if h.cfg.RequestTimeout <= 0 {
			c.Next()
			return
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), h.cfg.RequestTimeout)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// ensurePlayer 首次访问时创建玩家
func (h *Handler) ensurePlayer(c *gin.Context) {
	playerID, ok := middleware.GetPlayerID(c)
	if !ok {
		web.Abort(c, codes.CodeUnAuthorized, "unauthorized")
		return
	}
	var username string
	if claims, ok := middleware.GetClaims(c); ok {
		username, _ = claims.Get("name").(string)
	}
	if err := h.players.Ensure(c.Request.Context(), playerID, username); err != nil {
		h.fail(c, err)
		c.Abort()
		return
	}
	c.Next()
}

func playerID(c *gin.Context) int64 {
	id, _ := middleware.GetPlayerID(c)
	return id
}

// codeOf 领域错误映射为业务码
func codeOf(err error) int {
	switch {
	case errors.Is(err, model.ErrNotFound):
		return codes.CodeNotFound
	case errors.Is(err, model.ErrForbidden):
		return codes.CodeForbidden
	case errors.Is(err, model.ErrInvalidArgument),
		errors.Is(err, model.ErrInvalidPairing),
		errors.Is(err, model.ErrInsufficientParticipants):
		return codes.CodeInvalidParams
	case errors.Is(err, model.ErrCapacityExceeded):
		return codes.CodeCapacityExceeded
	case errors.Is(err, model.ErrNoSkillPoints),
		errors.Is(err, model.ErrSkillMaxLevel):
		return codes.CodeConflict
	case errors.Is(err, context.DeadlineExceeded):
		return codes.CodeTimeout
	}
	return codes.CodeInternalError
}

// fail 写出错误响应，内部错误只返回通用信息
func (h *Handler) fail(c *gin.Context, err error) {
	code := codeOf(err)
	if code >= codes.CodeInternalError {
		h.logger.ErrorContext(c.Request.Context(), "request failed",
			"path", c.FullPath(),
			"error", err,
		)
		web.Error(c, code, "internal error")
		return
	}
	web.Error(c, code, err.Error())
}

// bindOptional 请求体可以为空
func bindOptional(c *gin.Context, obj any) bool {
	if c.Request.ContentLength == 0 {
		return true
	}
	return web.BindAndValidate(c, obj)
}
