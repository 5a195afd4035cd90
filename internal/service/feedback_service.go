package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/grachmannico95/shopease-be/internal/domain"
	"github.com/grachmannico95/shopease-be/pkg/logger"
)

type FeedbackService interface {
	// Questions returns the active questions of a store, identified by id
	// or, when storeID is empty, by slug.
	Questions(ctx context.Context, storeID, storeSlug string) ([]domain.FeedbackQuestion, error)
	Submit(ctx context.Context, in FeedbackSubmission) (int, error)
}

type FeedbackSubmission struct {
	StoreID   string
	UserID    *string
	Responses []FeedbackAnswer
}

type FeedbackAnswer struct {
	QuestionID string
	Rating     *int
	Text       *string
}

type feedbackService struct {
	repo   domain.Repository
	logger *logger.Logger
}

func NewFeedbackService(repo domain.Repository, log *logger.Logger) FeedbackService {
	return &feedbackService{
		repo:   repo,
		logger: log,
	}
}

func (s *feedbackService) Questions(ctx context.Context, storeID, storeSlug string) ([]domain.FeedbackQuestion, error) {
	storeSlug = strings.TrimSpace(storeSlug)
	if storeID == "" {
		if storeSlug == "" {
			return nil, fmt.Errorf("%w: storeId or storeSlug is required", domain.ErrInvalidInput)
		}
		id, err := s.repo.FindStoreIDBySlug(ctx, storeSlug)
		if err != nil {
			if !isNotFound(err) {
				s.logger.Error(ctx, "Failed to resolve store slug", "store_slug", storeSlug, "error", err)
			}
			return nil, err
		}
		storeID = id
	}
	if err := checkOptionalID("storeId", storeID); err != nil {
		return nil, err
	}

	questions, err := s.repo.ListFeedbackQuestions(ctx, storeID)
	if err != nil {
		s.logger.Error(ctx, "Failed to list feedback questions", "store_id", storeID, "error", err)
		return nil, err
	}
	return questions, nil
}

func (s *feedbackService) Submit(ctx context.Context, in FeedbackSubmission) (int, error) {
	if err := checkRequiredID("storeId", in.StoreID); err != nil {
		return 0, err
	}
	if len(in.Responses) == 0 {
		return 0, fmt.Errorf("%w: responses are required", domain.ErrInvalidInput)
	}

	var userID *string
	if in.UserID != nil && strings.TrimSpace(*in.UserID) != "" {
		userID = in.UserID
	}

	responses := make([]domain.FeedbackResponse, 0, len(in.Responses))
	var errs []error
	for i, a := range in.Responses {
		if !domain.IsIdentifier(a.QuestionID) {
			errs = append(errs, fmt.Errorf("responses[%d]: questionId must be a UUID", i))
			continue
		}
		if a.Rating != nil && (*a.Rating < 1 || *a.Rating > 5) {
			errs = append(errs, fmt.Errorf("responses[%d]: rating must be between 1 and 5", i))
			continue
		}
		responses = append(responses, domain.FeedbackResponse{
			StoreID:      in.StoreID,
			UserID:       userID,
			QuestionID:   a.QuestionID,
			Rating:       a.Rating,
			ResponseText: a.Text,
		})
	}
	if len(errs) > 0 {
		return 0, fmt.Errorf("%w: %w", domain.ErrInvalidInput, errors.Join(errs...))
	}

	n, err := s.repo.InsertFeedbackResponses(ctx, responses)
	if err != nil {
		s.logger.Error(ctx, "Failed to store feedback", "store_id", in.StoreID, "error", err)
		return 0, asStorageError("insert feedback", err)
	}

	s.logger.Info(ctx, "Feedback submitted", "store_id", in.StoreID, "responses", n)
	return n, nil
}
