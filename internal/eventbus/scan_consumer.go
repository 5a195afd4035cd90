package eventbus

import (
	"context"
	"fmt"

	"github.com/grachmannico95/shopease-be/internal/domain"
	"github.com/grachmannico95/shopease-be/pkg/logger"
)

type ScanConsumer struct {
	repo        domain.ScanRepository
	logger      *logger.Logger
	workerCount int
}

func NewScanConsumer(repo domain.ScanRepository, log *logger.Logger, workerCount int) *ScanConsumer {
	if workerCount <= 0 {
		workerCount = 1
	}
	return &ScanConsumer{
		repo:        repo,
		logger:      log,
		workerCount: workerCount,
	}
}

func (sc *ScanConsumer) Consume(ctx context.Context, event Event) error {
	payload, ok := event.Payload.(ScanRecordedEvent)
	if !ok {
		sc.logger.Error(ctx, "Invalid payload type for scan event",
			"event_id", event.ID,
		)
		return fmt.Errorf("%w: %T", ErrInvalidPayload, event.Payload)
	}

	scan := payload.Scan
	if !domain.IsIdentifier(scan.ID) || !domain.IsIdentifier(scan.StoreID) {
		return fmt.Errorf("%w: scan %q for store %q", ErrInvalidPayload, scan.ID, scan.StoreID)
	}

	if err := sc.repo.RecordScan(ctx, scan); err != nil {
		sc.logger.Warn(ctx, "Failed to record scan",
			"event_id", event.ID,
			"store_id", scan.StoreID,
			"error", err,
		)
		return err
	}

	sc.logger.Debug(ctx, "Scan recorded",
		"event_id", event.ID,
		"store_id", scan.StoreID,
		"scan_type", scan.ScanType,
	)
	return nil
}

func (sc *ScanConsumer) GetWorkerCount() int {
	return sc.workerCount
}
