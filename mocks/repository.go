package mocks

import (
	"context"

	"github.com/grachmannico95/shopease-be/internal/domain"
	"github.com/stretchr/testify/mock"
)

// MockRepository is a testify mock of domain.Repository.
type MockRepository struct {
	mock.Mock
}

// NewMockRepository registers an expectations check on test cleanup.
func NewMockRepository(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockRepository {
	m := &MockRepository{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

var _ domain.Repository = (*MockRepository)(nil)

func (m *MockRepository) FindStoreIDBySlug(ctx context.Context, slug string) (string, error) {
	args := m.Called(ctx, slug)
	return args.String(0), args.Error(1)
}

func (m *MockRepository) FindSectionID(ctx context.Context, storeID, name string) (string, error) {
	args := m.Called(ctx, storeID, name)
	return args.String(0), args.Error(1)
}

func (m *MockRepository) FindCategoryID(ctx context.Context, name string) (string, error) {
	args := m.Called(ctx, name)
	return args.String(0), args.Error(1)
}

func (m *MockRepository) ListOffers(ctx context.Context, filter domain.OfferFilter) ([]domain.Offer, error) {
	args := m.Called(ctx, filter)
	offers, _ := args.Get(0).([]domain.Offer)
	return offers, args.Error(1)
}

func (m *MockRepository) GetOffer(ctx context.Context, id string) (*domain.Offer, error) {
	args := m.Called(ctx, id)
	offer, _ := args.Get(0).(*domain.Offer)
	return offer, args.Error(1)
}

func (m *MockRepository) InsertOffers(ctx context.Context, offers []domain.Offer) ([]domain.Offer, error) {
	args := m.Called(ctx, offers)
	if fn, ok := args.Get(0).(func(context.Context, []domain.Offer) ([]domain.Offer, error)); ok {
		return fn(ctx, offers)
	}
	inserted, _ := args.Get(0).([]domain.Offer)
	return inserted, args.Error(1)
}

func (m *MockRepository) UpdateOffer(ctx context.Context, id string, patch domain.OfferPatch) (*domain.Offer, error) {
	args := m.Called(ctx, id, patch)
	offer, _ := args.Get(0).(*domain.Offer)
	return offer, args.Error(1)
}

func (m *MockRepository) DeleteOffer(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockRepository) DeactivateExpiredOffers(ctx context.Context, today domain.Date) (int64, error) {
	args := m.Called(ctx, today)
	n, _ := args.Get(0).(int64)
	return n, args.Error(1)
}

func (m *MockRepository) InsertSales(ctx context.Context, sales []domain.Sale) (int, error) {
	args := m.Called(ctx, sales)
	return args.Int(0), args.Error(1)
}

func (m *MockRepository) SalesTotals(ctx context.Context, storeID string, r domain.DateRange) (domain.SalesTotals, error) {
	args := m.Called(ctx, storeID, r)
	totals, _ := args.Get(0).(domain.SalesTotals)
	return totals, args.Error(1)
}

func (m *MockRepository) ListStores(ctx context.Context, search string) ([]domain.Store, error) {
	args := m.Called(ctx, search)
	stores, _ := args.Get(0).([]domain.Store)
	return stores, args.Error(1)
}

func (m *MockRepository) ListSections(ctx context.Context, storeID string) ([]domain.Section, error) {
	args := m.Called(ctx, storeID)
	sections, _ := args.Get(0).([]domain.Section)
	return sections, args.Error(1)
}

func (m *MockRepository) ListCategories(ctx context.Context) ([]domain.Category, error) {
	args := m.Called(ctx)
	categories, _ := args.Get(0).([]domain.Category)
	return categories, args.Error(1)
}

func (m *MockRepository) ListFeedbackQuestions(ctx context.Context, storeID string) ([]domain.FeedbackQuestion, error) {
	args := m.Called(ctx, storeID)
	questions, _ := args.Get(0).([]domain.FeedbackQuestion)
	return questions, args.Error(1)
}

func (m *MockRepository) InsertFeedbackResponses(ctx context.Context, responses []domain.FeedbackResponse) (int, error) {
	args := m.Called(ctx, responses)
	return args.Int(0), args.Error(1)
}

func (m *MockRepository) FeedbackSummary(ctx context.Context, storeID string, r domain.DateRange) ([]domain.FeedbackSummaryItem, error) {
	args := m.Called(ctx, storeID, r)
	items, _ := args.Get(0).([]domain.FeedbackSummaryItem)
	return items, args.Error(1)
}

func (m *MockRepository) RecordScan(ctx context.Context, scan domain.QRScan) error {
	return m.Called(ctx, scan).Error(0)
}

func (m *MockRepository) CountScans(ctx context.Context, storeID string, r domain.DateRange) (int, error) {
	args := m.Called(ctx, storeID, r)
	return args.Int(0), args.Error(1)
}

func (m *MockRepository) DailyScans(ctx context.Context, storeID string, r domain.DateRange) ([]domain.DailyScanCount, error) {
	args := m.Called(ctx, storeID, r)
	days, _ := args.Get(0).([]domain.DailyScanCount)
	return days, args.Error(1)
}
