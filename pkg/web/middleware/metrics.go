package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lk2023060901/xdooria-arena/pkg/prometheus"
)

// Metrics 记录请求数与耗时，route 使用注册的路由模板避免高基数
func Metrics(client *prometheus.Client) gin.HandlerFunc {
	requests := client.MustNewCounter("http_requests_total", "Total number of HTTP requests", []string{"method", "route", "status"})
	duration := client.MustNewHistogram("http_request_duration_seconds", "HTTP request latency", []string{"method", "route"}, nil)

	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		requests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		duration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}
