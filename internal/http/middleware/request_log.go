package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/tenderbridge-backend/internal/platform/ctxutil"
	"github.com/yungbote/tenderbridge-backend/internal/platform/logger"
)


// Probes are logged at debug so they do not drown import traffic.
var quietRoutes = map[string]bool{"/healthcheck": true, "/metrics": true}

func RequestLogger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		if log == nil {
			return
		}

		route := routeLabel(c)
		status := c.Writer.Status()
		fields := []interface{}{
			"method", c.Request.Method,
			"route", route,
			"status", status,
			"duration_ms", time.Since(start).Milliseconds(),
			"bytes", c.Writer.Size(),
		}
		if id := c.Param("id"); id != "" {
			fields = append(fields, "resource_id", id)
		}
		fields = append(fields, ctxutil.LogFields(c.Request.Context())...)
		if errs := c.Errors.ByType(gin.ErrorTypeAny); len(errs) > 0 {
			fields = append(fields, "error", errs.String())
		}

		logAt(log, requestLevel(route, status))("HTTP request", fields...)
	}
}

func routeLabel(c *gin.Context) string {
	if r := c.FullPath(); r != "" {
		return r
	}
	return c.Request.URL.Path
}

func requestLevel(route string, status int) string {
	switch {
	case status >= 500:
		return "error"
	case status >= 400:
		return "warn"
	case quietRoutes[route]:
		return "debug"
	}
	return "info"
}

func logAt(log *logger.Logger, level string) func(string, ...interface{}) {
	switch level {
	case "error":
		return log.Error
	case "warn":
		return log.Warn
	case "debug":
		return log.Debug
	}
	return log.Info
}
