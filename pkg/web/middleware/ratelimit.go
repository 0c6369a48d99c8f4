package middleware

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lk2023060901/xdooria-arena/pkg/cache/lru"
	"github.com/lk2023060901/xdooria-arena/pkg/logger"
	codes "github.com/lk2023060901/xdooria-arena/pkg/web/errors"
	"golang.org/x/time/rate"
)

// RateLimitConfig 限流配置
type RateLimitConfig struct {
	RequestsPerSecond float64 `mapstructure:"requests_per_second" validate:"gt=0"`
	Burst             int     `mapstructure:"burst" validate:"gt=0"`
	// PerIP 为 false 时所有请求共享一个全局限流器
	PerIP bool `mapstructure:"per_ip"`
	// PerPlayer 已认证请求按玩家限流，优先于 PerIP
	PerPlayer bool     `mapstructure:"per_player"`
	SkipPaths []string `mapstructure:"skip_paths"`
	// WaitTimeout 大于 0 时排队等待，否则直接拒绝
	WaitTimeout time.Duration `mapstructure:"wait_timeout"`

	MaxLimiters int           `mapstructure:"max_limiters"`
	LimiterTTL  time.Duration `mapstructure:"limiter_ttl"`
}

// DefaultRateLimitConfig 默认配置
func DefaultRateLimitConfig() *RateLimitConfig {
	return &RateLimitConfig{
		RequestsPerSecond: 20,
		Burst:             40,
		PerIP:             true,
		MaxLimiters:       10000,
		LimiterTTL:        10 * time.Minute,
	}
}

// RateLimiter 按 key 维护令牌桶，闲置的桶由 LRU 淘汰
type RateLimiter struct {
	cfg      *RateLimitConfig
	global   *rate.Limiter
	limiters *lru.LRU[string, *rate.Limiter]
	logger   logger.Logger
}

// NewRateLimiter 创建限流器
func NewRateLimiter(l logger.Logger, cfg *RateLimitConfig) *RateLimiter {
	if cfg == nil {
		cfg = DefaultRateLimitConfig()
	}
	return &RateLimiter{
		cfg:    cfg,
		global: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.Burst),
		limiters: lru.New[string, *rate.Limiter](lru.Config{
			MaxSize:         cfg.MaxLimiters,
			DefaultTTL:      cfg.LimiterTTL,
			CleanupInterval: cfg.LimiterTTL,
		}),
		logger: l,
	}
}

// Allow 检查是否允许请求，key 为空使用全局限流器
func (rl *RateLimiter) Allow(key string) bool {
	return rl.limiter(key).Allow()
}

// Wait 等待令牌
func (rl *RateLimiter) Wait(ctx context.Context, key string) error {
	return rl.limiter(key).Wait(ctx)
}

func (rl *RateLimiter) limiter(key string) *rate.Limiter {
	if key == "" {
		return rl.global
	}
	return rl.limiters.GetOrCreate(key, func() *rate.Limiter {
		return rate.NewLimiter(rate.Limit(rl.cfg.RequestsPerSecond), rl.cfg.Burst)
	})
}

// Close 停止后台清理
func (rl *RateLimiter) Close() error {
	return rl.limiters.Close()
}

// RateLimit 限流中间件
func RateLimit(rl *RateLimiter) gin.HandlerFunc {
	skipPaths := make(map[string]struct{}, len(rl.cfg.SkipPaths))
	for _, p := range rl.cfg.SkipPaths {
		skipPaths[p] = struct{}{}
	}

	return func(c *gin.Context) {
		if _, skip := skipPaths[c.Request.URL.Path]; skip {
			c.Next()
			return
		}

		key := rl.key(c)
		if rl.cfg.WaitTimeout > 0 {
			ctx, cancel := context.WithTimeout(c.Request.Context(), rl.cfg.WaitTimeout)
			defer cancel()
			if err := rl.Wait(ctx, key); err != nil {
				rl.logger.WarnContext(c.Request.Context(), "rate limit wait timeout", "key", key, "error", err)
				abortRateLimited(c)
				return
			}
		} else if !rl.Allow(key) {
			rl.logger.WarnContext(c.Request.Context(), "rate limit exceeded", "key", key, "path", c.Request.URL.Path)
			abortRateLimited(c)
			return
		}

		c.Next()
	}
}

func (rl *RateLimiter) key(c *gin.Context) string {
	if rl.cfg.PerPlayer {
		if id, ok := logger.PlayerIDFrom(c.Request.Context()); ok {
			return "player:" + strconv.FormatInt(id, 10)
		}
	}
	if rl.cfg.PerIP {
		return "ip:" + c.ClientIP()
	}
	return ""
}

func abortRateLimited(c *gin.Context) {
	c.Header("Retry-After", "1")
	c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
		"code":    codes.CodeRateLimited,
		"message": "too many requests",
		"data":    nil,
	})
}
