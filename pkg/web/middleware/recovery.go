package middleware

import (
	"errors"
	"net"
	"net/http"
	"net/http/httputil"
	"os"
	"runtime/debug"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/lk2023060901/xdooria-arena/pkg/logger"
	"github.com/lk2023060901/xdooria-arena/pkg/sentry"
	codes "github.com/lk2023060901/xdooria-arena/pkg/web/errors"
)

// Recovery 捕获 handler panic，记录日志并上报，返回 500
func Recovery(l logger.Logger, reporter sentry.Reporter) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			r := recover()
			if r == nil {
				return
			}
			ctx := c.Request.Context()
			httpRequest, _ := httputil.DumpRequest(c.Request, false)

			if err, ok := r.(error); ok && isBrokenPipe(err) {
				l.WarnContext(ctx, "http broken pipe", "error", err, "request", string(httpRequest))
				_ = c.Error(err)
				c.Abort()
				return
			}

			l.ErrorContext(ctx, "http recovery from panic",
				"error", r,
				"request", string(httpRequest),
				"stack", string(debug.Stack()),
			)
			reporter.Recover(ctx, r, map[string]string{
				"method": c.Request.Method,
				"route":  c.FullPath(),
			})
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"code":    codes.CodeInternalError,
				"message": "internal server error",
				"data":    nil,
			})
		}()
		c.Next()
	}
}

func isBrokenPipe(err error) bool {
	var ne *net.OpError
	if !errors.As(err, &ne) {
		return false
	}
	var se *os.SyscallError
	if !errors.As(ne.Err, &se) {
		return false
	}
	msg := strings.ToLower(se.Error())
	return strings.Contains(msg, "broken pipe") || strings.Contains(msg, "connection reset by peer")
}
