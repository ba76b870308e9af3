package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"sportsadmin.backend/pkg/logger"
)

// LoggerMiddleware writes one access line per request once handlers have run,
// so the request and actor ids added upstream are included.
func LoggerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		target := c.Request.URL.Path
		if q := c.Request.URL.RawQuery; q != "" {
			target += "?" + q
		}
		ctx := c.Request.Context()
		status := c.Writer.Status()
		logger.LogRequest(ctx, c.Request.Method, target, status, time.Since(start), c.ClientIP())

		if errs := c.Errors.ByType(gin.ErrorTypeAny); len(errs) > 0 && status >= 500 {
			logger.Error(ctx, "Handler errors", zap.Strings("errors", errs.Errors()))
		}
	}
}
