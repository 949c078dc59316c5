package observability

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// ResultCodeKey is the gin context key under which handlers store the operation result code.
const ResultCodeKey = "padctl.result_code"

func RequestLogger(logger zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}

		event := logger.Info()
		if status >= 500 {
			event = logger.Error()
		} else if status >= 400 {
			event = logger.Warn()
		}
		if code, ok := c.Get(ResultCodeKey); ok {
			if n, ok := code.(int); ok {
				event = event.Int("result_code", n)
			}
		}

		event.
			Str("method", c.Request.Method).
			Str("path", path).
			Int("status", status).
			Dur("duration", time.Since(start)).
			Str("client_ip", c.ClientIP()).
			Msg("http_request")
	}
}

func RequestMetricsMiddleware(node string) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}

		RecordHTTPRequest(node, c.Request.Method, path, c.Writer.Status(), time.Since(start))
	}
}
