package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/grachmannico95/shopease-be/internal/domain"
	"github.com/grachmannico95/shopease-be/pkg/logger"
	"github.com/labstack/echo/v4"
)

type errorResponse struct {
	Error string `json:"error"`
}

// statusFor maps a service error to an HTTP status and a client message.
func statusFor(err error) (int, string) {
	var (
		parseErr   *domain.ParseError
		noValidErr *domain.NoValidRowsError
		storageErr *domain.StorageError
		httpErr    *echo.HTTPError
	)

	switch {
	case errors.As(err, &httpErr):
		if msg, ok := httpErr.Message.(string); ok {
			return httpErr.Code, msg
		}
		return httpErr.Code, http.StatusText(httpErr.Code)
	case errors.Is(err, domain.ErrNoRows):
		return http.StatusBadRequest, "No rows found in file"
	case errors.As(err, &parseErr), errors.As(err, &noValidErr), errors.As(err, &storageErr):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, domain.ErrInvalidID),
		errors.Is(err, domain.ErrInvalidInput),
		errors.Is(err, domain.ErrStoreRequired):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "not found"
	case errors.Is(err, domain.ErrTooManyRows):
		return http.StatusRequestEntityTooLarge, err.Error()
	case errors.Is(err, domain.ErrPipelineTimeout), errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "import timed out"
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}

func respondError(c echo.Context, log *logger.Logger, err error) error {
	status, msg := statusFor(err)
	if status >= http.StatusInternalServerError {
		log.Error(c.Request().Context(), "Request failed",
			"status", status,
			"error", err,
		)
	}
	return c.JSON(status, errorResponse{Error: msg})
}

// ErrorHandler renders errors that escape handlers, such as the body limit
// or unknown routes, with the same JSON shape as handler errors.
func ErrorHandler(log *logger.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		if respErr := respondError(c, log, err); respErr != nil {
			log.Error(c.Request().Context(), "Failed to write error response", "error", respErr)
		}
	}
}
