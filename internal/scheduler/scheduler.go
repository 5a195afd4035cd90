// Package scheduler runs the periodic offer expiry sweep.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/grachmannico95/shopease-be/internal/domain"
	"github.com/grachmannico95/shopease-be/pkg/logger"
	"github.com/robfig/cron/v3"
)

// OfferExpirer is the slice of the repository the sweep needs.
type OfferExpirer interface {
	DeactivateExpiredOffers(ctx context.Context, today domain.Date) (int64, error)
}

// Scheduler wraps robfig/cron and owns the expiry job.
type Scheduler struct {
	cron   *cron.Cron
	repo   OfferExpirer
	spec   string
	logger *logger.Logger
	now    func() time.Time
	wg     sync.WaitGroup
}

// New creates a Scheduler firing on spec, e.g. "@every 1h" or "5 0 * * *".
func New(repo OfferExpirer, spec string, log *logger.Logger) *Scheduler {
	return &Scheduler{
		cron:   cron.New(cron.WithLogger(cron.PrintfLogger(log))),
		repo:   repo,
		spec:   spec,
		logger: log,
		now:    time.Now,
	}
}

// Start registers the job, starts the cron loop and runs one sweep
// immediately so stale offers are hidden without waiting for the first tick.
func (s *Scheduler) Start(ctx context.Context) error {
	if _, err := s.cron.AddFunc(s.spec, func() {
		s.RunOnce(ctx)
	}); err != nil {
		return fmt.Errorf("cron.AddFunc %q: %w", s.spec, err)
	}

	s.cron.Start()
	s.logger.Info(ctx, "Scheduler started", "spec", s.spec)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.RunOnce(ctx)
	}()
	return nil
}

// Stop halts the cron loop and waits for a running sweep to finish,
// including the one started by Start.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.wg.Wait()
	s.logger.Info(context.Background(), "Scheduler stopped")
}

// RunOnce deactivates every active offer whose valid_until is before today
// (UTC) and returns how many were changed.
func (s *Scheduler) RunOnce(ctx context.Context) int64 {
	today := domain.DateOf(s.now().UTC())

	n, err := s.repo.DeactivateExpiredOffers(ctx, today)
	if err != nil {
		s.logger.Error(ctx, "Offer expiry sweep failed", "error", err)
		return 0
	}

	if n > 0 {
		s.logger.Info(ctx, "Expired offers deactivated", "count", n, "today", today.String())
	} else {
		s.logger.Debug(ctx, "No expired offers", "today", today.String())
	}
	return n
}
