package middleware

import (
	"net/http"
	"time"

	"github.com/grachmannico95/shopease-be/pkg/logger"
	"github.com/labstack/echo/v4"
)

// Logging writes one access log line per request. Errors returned by the
// handler are rendered first so the logged status is the one sent.
func Logging(log *logger.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)
			if err != nil {
				c.Error(err)
			}

			req := c.Request()
			status := c.Response().Status
			fields := []interface{}{
				"method", req.Method,
				"path", req.URL.Path,
				"status", status,
				"bytes_in", req.ContentLength,
				"bytes_out", c.Response().Size,
				"duration_ms", time.Since(start).Milliseconds(),
				"remote_addr", c.RealIP(),
			}

			switch {
			case status >= http.StatusInternalServerError:
				log.Error(req.Context(), "HTTP request", fields...)
			case status >= http.StatusBadRequest:
				log.Warn(req.Context(), "HTTP request", fields...)
			default:
				log.Info(req.Context(), "HTTP request", fields...)
			}

			return nil
		}
	}
}
