package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/grachmannico95/shopease-be/internal/domain"
	"github.com/grachmannico95/shopease-be/internal/eventbus"
	"github.com/grachmannico95/shopease-be/pkg/logger"
	"github.com/shopspring/decimal"
)

type AnalyticsService interface {
	// RecordScan validates the scan and queues it for asynchronous
	// persistence. The returned id is the scan id.
	RecordScan(ctx context.Context, in ScanInput) (string, error)
	Overview(ctx context.Context, storeID string, r domain.DateRange) (*domain.Overview, error)
	DailyScans(ctx context.Context, storeID string, r domain.DateRange) ([]domain.DailyScanCount, error)
	FeedbackSummary(ctx context.Context, storeID string, r domain.DateRange) ([]domain.FeedbackSummaryItem, error)
}

type ScanInput struct {
	StoreID   string
	SectionID *string
	UserID    *string
	ScanType  string
	IPAddress string
	UserAgent string
}

type analyticsService struct {
	repo   domain.Repository
	bus    eventbus.EventBus
	logger *logger.Logger
	now    func() time.Time
}

func NewAnalyticsService(repo domain.Repository, bus eventbus.EventBus, log *logger.Logger) AnalyticsService {
	return &analyticsService{
		repo:   repo,
		bus:    bus,
		logger: log,
		now:    time.Now,
	}
}

func (s *analyticsService) RecordScan(ctx context.Context, in ScanInput) (string, error) {
	if err := checkRequiredID("storeId", in.StoreID); err != nil {
		return "", err
	}

	scan := domain.QRScan{
		ID:        domain.NewID(),
		StoreID:   in.StoreID,
		ScanType:  strings.TrimSpace(in.ScanType),
		IPAddress: in.IPAddress,
		UserAgent: in.UserAgent,
		ScannedAt: s.now().UTC(),
	}
	if scan.ScanType == "" {
		scan.ScanType = domain.DefaultScanType
	}
	if in.SectionID != nil && !domain.IsUnsetReference(*in.SectionID) {
		if err := checkOptionalID("sectionId", *in.SectionID); err != nil {
			return "", err
		}
		scan.SectionID = in.SectionID
	}
	if in.UserID != nil && *in.UserID != "" {
		scan.UserID = in.UserID
	}

	if err := s.bus.Publish(ctx, eventbus.NewScanRecorded(scan)); err != nil {
		s.logger.Error(ctx, "Failed to queue scan", "store_id", scan.StoreID, "error", err)
		return "", err
	}

	s.logger.Debug(ctx, "Scan queued", "scan_id", scan.ID, "store_id", scan.StoreID)
	return scan.ID, nil
}

// Overview counts scans in the window and relates them to the sales
// uploaded for the same days: conversions are the customers recorded in
// sales, average spend is sales total per customer.
func (s *analyticsService) Overview(ctx context.Context, storeID string, r domain.DateRange) (*domain.Overview, error) {
	if err := checkRequiredID("storeId", storeID); err != nil {
		return nil, err
	}
	if err := checkRange(r); err != nil {
		return nil, err
	}

	scans, err := s.repo.CountScans(ctx, storeID, r)
	if err != nil {
		s.logger.Error(ctx, "Failed to count scans", "store_id", storeID, "error", err)
		return nil, err
	}

	totals, err := s.repo.SalesTotals(ctx, storeID, r)
	if err != nil {
		s.logger.Error(ctx, "Failed to total sales", "store_id", storeID, "error", err)
		return nil, err
	}

	overview := &domain.Overview{
		TotalScans:  scans,
		Conversions: totals.Customers,
		AvgSpend:    decimal.Zero,
	}
	if scans > 0 {
		overview.ConversionRate = float64(totals.Customers) / float64(scans)
	}
	if totals.Customers > 0 {
		overview.AvgSpend = totals.TotalAmount.Div(decimal.NewFromInt(int64(totals.Customers))).Round(2)
	}
	return overview, nil
}

func (s *analyticsService) DailyScans(ctx context.Context, storeID string, r domain.DateRange) ([]domain.DailyScanCount, error) {
	if err := checkRequiredID("storeId", storeID); err != nil {
		return nil, err
	}
	if r.From == nil || r.To == nil {
		return nil, fmt.Errorf("%w: storeId, from, to are required", domain.ErrInvalidInput)
	}
	if err := checkRange(r); err != nil {
		return nil, err
	}

	days, err := s.repo.DailyScans(ctx, storeID, r)
	if err != nil {
		s.logger.Error(ctx, "Failed to load daily scans", "store_id", storeID, "error", err)
		return nil, err
	}
	return days, nil
}

func (s *analyticsService) FeedbackSummary(ctx context.Context, storeID string, r domain.DateRange) ([]domain.FeedbackSummaryItem, error) {
	if err := checkRequiredID("storeId", storeID); err != nil {
		return nil, err
	}
	if err := checkRange(r); err != nil {
		return nil, err
	}

	summary, err := s.repo.FeedbackSummary(ctx, storeID, r)
	if err != nil {
		s.logger.Error(ctx, "Failed to summarize feedback", "store_id", storeID, "error", err)
		return nil, err
	}
	return summary, nil
}

func checkRange(r domain.DateRange) error {
	if r.From != nil && r.To != nil && r.To.Before(r.From.Time) {
		return fmt.Errorf("%w: from must not be after to", domain.ErrInvalidInput)
	}
	return nil
}
