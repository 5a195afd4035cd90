package handler

import (
	"net/http"

	"github.com/grachmannico95/shopease-be/internal/domain"
	"github.com/grachmannico95/shopease-be/internal/service"
	"github.com/grachmannico95/shopease-be/pkg/logger"
	"github.com/labstack/echo/v4"
)

type FeedbackHandler struct {
	service service.FeedbackService
	logger  *logger.Logger
}

func NewFeedbackHandler(service service.FeedbackService, log *logger.Logger) *FeedbackHandler {
	return &FeedbackHandler{
		service: service,
		logger:  log,
	}
}

type submitFeedbackRequest struct {
	StoreID   string           `json:"storeId" validate:"required"`
	UserID    *string          `json:"userId"`
	Responses []feedbackAnswer `json:"responses" validate:"required,min=1,dive"`
}

type feedbackAnswer struct {
	QuestionID string  `json:"questionId" validate:"required"`
	Rating     *int    `json:"rating" validate:"omitempty,min=1,max=5"`
	Text       *string `json:"text" validate:"omitempty,max=2000"`
}

func (h *FeedbackHandler) Questions(c echo.Context) error {
	questions, err := h.service.Questions(c.Request().Context(), c.QueryParam("storeId"), c.QueryParam("storeSlug"))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	if questions == nil {
		questions = []domain.FeedbackQuestion{}
	}
	return c.JSON(http.StatusOK, questions)
}

func (h *FeedbackHandler) Submit(c echo.Context) error {
	var req submitFeedbackRequest
	if err := c.Bind(&req); err != nil {
		return respondError(c, h.logger, err)
	}
	if err := c.Validate(&req); err != nil {
		return respondError(c, h.logger, err)
	}

	answers := make([]service.FeedbackAnswer, len(req.Responses))
	for i, r := range req.Responses {
		answers[i] = service.FeedbackAnswer{
			QuestionID: r.QuestionID,
			Rating:     r.Rating,
			Text:       r.Text,
		}
	}

	n, err := h.service.Submit(c.Request().Context(), service.FeedbackSubmission{
		StoreID:   req.StoreID,
		UserID:    req.UserID,
		Responses: answers,
	})
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusCreated, map[string]int{"inserted": n})
}
