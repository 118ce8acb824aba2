package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mautops/timesheet-gin/internal/metrics"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/trace"
)

// RequestLogMiddleware 请求日志中间件
func RequestLogMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		method := c.Request.Method

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()

		// 指标使用路由模板,避免按 ID 产生高基数标签
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metrics.RecordAPIRequest(method, route, status, latency.Seconds())

		fields := logrus.Fields{
			"request_id": c.GetString("request_id"),
			"method":     method,
			"path":       c.Request.URL.Path,
			"route":      route,
			"status":     status,
			"latency":    latency.String(),
			"ip":         c.ClientIP(),
		}
		if userID, ok := c.Get("user_id"); ok {
			fields["user_id"] = userID
		}
		if sc := trace.SpanContextFromContext(c.Request.Context()); sc.IsValid() {
			fields["trace_id"] = sc.TraceID().String()
		}
		entry := GetLogger().WithFields(fields)

		// 根据状态码选择日志级别
		if status >= 500 {
			entry.Error("API request")
		} else if status >= 400 {
			entry.Warn("API request")
		} else {
			entry.Info("API request")
		}
	}
}
