package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/grachmannico95/shopease-be/internal/domain"
	"github.com/grachmannico95/shopease-be/internal/service"
	"github.com/grachmannico95/shopease-be/pkg/logger"
	"github.com/labstack/echo/v4"
)

type AnalyticsHandler struct {
	service service.AnalyticsService
	logger  *logger.Logger
}

func NewAnalyticsHandler(service service.AnalyticsService, log *logger.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{
		service: service,
		logger:  log,
	}
}

type scanRequest struct {
	StoreID   string  `json:"storeId" validate:"required"`
	SectionID *string `json:"sectionId"`
	UserID    *string `json:"userId"`
	ScanType  string  `json:"scanType" validate:"omitempty,max=50"`
}

func (h *AnalyticsHandler) Scan(c echo.Context) error {
	var req scanRequest
	if err := c.Bind(&req); err != nil {
		return respondError(c, h.logger, err)
	}
	if err := c.Validate(&req); err != nil {
		return respondError(c, h.logger, err)
	}

	id, err := h.service.RecordScan(c.Request().Context(), service.ScanInput{
		StoreID:   req.StoreID,
		SectionID: req.SectionID,
		UserID:    req.UserID,
		ScanType:  req.ScanType,
		IPAddress: c.RealIP(),
		UserAgent: c.Request().UserAgent(),
	})
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return c.JSON(http.StatusAccepted, map[string]string{
		"id":     id,
		"status": "queued",
	})
}

func (h *AnalyticsHandler) Overview(c echo.Context) error {
	r, err := dateRange(c)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	overview, err := h.service.Overview(c.Request().Context(), c.QueryParam("storeId"), r)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, overview)
}

func (h *AnalyticsHandler) DailyScans(c echo.Context) error {
	r, err := dateRange(c)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	days, err := h.service.DailyScans(c.Request().Context(), c.QueryParam("storeId"), r)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	if days == nil {
		days = []domain.DailyScanCount{}
	}
	return c.JSON(http.StatusOK, days)
}

func (h *AnalyticsHandler) FeedbackSummary(c echo.Context) error {
	r, err := dateRange(c)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	summary, err := h.service.FeedbackSummary(c.Request().Context(), c.QueryParam("storeId"), r)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	if summary == nil {
		summary = []domain.FeedbackSummaryItem{}
	}
	return c.JSON(http.StatusOK, summary)
}

// dateRange reads the optional from/to query parameters. Both accept a
// calendar date or an RFC3339 timestamp, which is reduced to its UTC day.
func dateRange(c echo.Context) (domain.DateRange, error) {
	var r domain.DateRange
	for _, p := range []struct {
		name string
		dst  **domain.Date
	}{{"from", &r.From}, {"to", &r.To}} {
		v := c.QueryParam(p.name)
		if v == "" {
			continue
		}
		d, err := parseDateParam(v)
		if err != nil {
			return domain.DateRange{}, fmt.Errorf("%w: %s must be a date (YYYY-MM-DD)", domain.ErrInvalidInput, p.name)
		}
		*p.dst = &d
	}
	return r, nil
}

func parseDateParam(v string) (domain.Date, error) {
	if d, err := domain.ParseDate(v); err == nil {
		return d, nil
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return domain.Date{}, err
	}
	return domain.DateOf(t.UTC()), nil
}
