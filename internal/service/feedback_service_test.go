package service

import (
	"context"
	"errors"
	"testing"

	"github.com/grachmannico95/shopease-be/internal/domain"
	"github.com/grachmannico95/shopease-be/internal/storage"
	"github.com/grachmannico95/shopease-be/mocks"
	"github.com/grachmannico95/shopease-be/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestFeedbackService_QuestionsBySlug(t *testing.T) {
	store := storage.NewMemoryStore()
	demo := storage.SeedDemo(store)
	svc := NewFeedbackService(store, logger.NewNop())
	ctx := context.Background()

	bySlug, err := svc.Questions(ctx, "", "demo-store")
	require.NoError(t, err)
	require.Len(t, bySlug, 3)

	byID, err := svc.Questions(ctx, demo.ID, "")
	require.NoError(t, err)
	assert.Equal(t, bySlug, byID)

	_, err = svc.Questions(ctx, "", "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = svc.Questions(ctx, "", "unknown")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = svc.Questions(ctx, "42", "")
	assert.ErrorIs(t, err, domain.ErrInvalidID)
}

func TestFeedbackService_Submit(t *testing.T) {
	store := storage.NewMemoryStore()
	demo := storage.SeedDemo(store)
	svc := NewFeedbackService(store, logger.NewNop())
	ctx := context.Background()

	questions, err := store.ListFeedbackQuestions(ctx, demo.ID)
	require.NoError(t, err)

	n, err := svc.Submit(ctx, FeedbackSubmission{
		StoreID: demo.ID,
		UserID:  ptr(""),
		Responses: []FeedbackAnswer{
			{QuestionID: questions[0].ID, Rating: ptr(5)},
			{QuestionID: questions[2].ID, Text: ptr("Great staff")},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	summary, err := store.FeedbackSummary(ctx, demo.ID, domain.DateRange{})
	require.NoError(t, err)
	assert.Equal(t, 1, summary[0].Responses)
}

func TestFeedbackService_SubmitValidation(t *testing.T) {
	repo := mocks.NewMockRepository(t)
	svc := NewFeedbackService(repo, logger.NewNop())
	ctx := context.Background()
	storeID := domain.NewID()

	_, err := svc.Submit(ctx, FeedbackSubmission{StoreID: storeID})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = svc.Submit(ctx, FeedbackSubmission{Responses: []FeedbackAnswer{{QuestionID: domain.NewID()}}})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = svc.Submit(ctx, FeedbackSubmission{
		StoreID: storeID,
		Responses: []FeedbackAnswer{
			{QuestionID: domain.NewID(), Rating: ptr(6)},
			{QuestionID: "q1", Rating: ptr(3)},
		},
	})
	require.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Contains(t, err.Error(), "responses[0]: rating must be between 1 and 5")
	assert.Contains(t, err.Error(), "responses[1]: questionId must be a UUID")
}

func TestFeedbackService_SubmitStorageError(t *testing.T) {
	repo := mocks.NewMockRepository(t)
	repo.On("InsertFeedbackResponses", mock.Anything, mock.Anything).Return(0, errors.New("violates foreign key")).Once()
	svc := NewFeedbackService(repo, logger.NewNop())

	_, err := svc.Submit(context.Background(), FeedbackSubmission{
		StoreID:   domain.NewID(),
		Responses: []FeedbackAnswer{{QuestionID: domain.NewID(), Rating: ptr(4)}},
	})
	var storageErr *domain.StorageError
	require.ErrorAs(t, err, &storageErr)
	assert.EqualError(t, err, "violates foreign key")
}
