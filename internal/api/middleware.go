// internal/api/middleware.go
package api

import (
	"time"

	"github.com/labstack/echo/v4"

	"product-chatbot/internal/common/logger"
)

// requestLogger writes one structured line per request. Errors are handed to
// the HTTP error handler first so the logged status is the one sent.
func requestLogger(log logger.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			if err := next(c); err != nil {
				c.Error(err)
			}

			req := c.Request()
			res := c.Response()
			path := c.Path()
			if path == "" {
				path = req.URL.Path
			}

			log.Info("http request", map[string]interface{}{
				"method":    req.Method,
				"path":      path,
				"status":    res.Status,
				"latencyMs": time.Since(start).Milliseconds(),
				"bytesOut":  res.Size,
				"requestId": res.Header().Get(echo.HeaderXRequestID),
				"remoteIp":  c.RealIP(),
			})
			return nil
		}
	}
}
