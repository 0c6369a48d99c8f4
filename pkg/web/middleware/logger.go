package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lk2023060901/xdooria-arena/pkg/logger"
)

// Logger 访问日志
func Logger(l logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		status := c.Writer.Status()
		fields := []interface{}{
			"status", status,
			"method", c.Request.Method,
			"path", path,
			"query", query,
			"ip", c.ClientIP(),
			"latency", time.Since(start).String(),
		}

		ctx := c.Request.Context()
		if len(c.Errors) > 0 {
			for _, e := range c.Errors.Errors() {
				l.ErrorContext(ctx, e, fields...)
			}
			return
		}
		if status >= 500 {
			l.ErrorContext(ctx, "http request", fields...)
		} else if status >= 400 {
			l.WarnContext(ctx, "http request", fields...)
		} else {
			l.InfoContext(ctx, "http request", fields...)
		}
	}
}
