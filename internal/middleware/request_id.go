package middleware

import (
	"github.com/google/uuid"
	"github.com/grachmannico95/shopease-be/pkg/logger"
	"github.com/labstack/echo/v4"
)

const HeaderTraceID = "X-Trace-ID"

// RequestID puts the caller's X-Trace-ID, or a fresh one, on the request
// context and echoes it back in the response.
func RequestID() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			traceID := c.Request().Header.Get(HeaderTraceID)
			if traceID == "" || len(traceID) > 128 {
				traceID = uuid.New().String()
			}

			ctx := logger.WithTraceID(c.Request().Context(), traceID)
			c.SetRequest(c.Request().WithContext(ctx))

			c.Response().Header().Set(HeaderTraceID, traceID)

			return next(c)
		}
	}
}
