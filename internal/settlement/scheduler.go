package settlement

//go:generate mockgen -source=scheduler.go -destination=mock_scheduler.go -package=settlement

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/GlebRadaev/homeservices/internal/domain"
	"github.com/GlebRadaev/homeservices/pkg/clock"
)

const (
	maxConflictRetries = 3
	providerBatchLimit = 1000
	pendingBatchLimit  = 100
	lockTTL            = time.Minute
)

type PayoutService interface {
	CreatePayoutBatch(ctx context.Context, providerID int64, periodStart, periodEnd time.Time) (*domain.Payout, error)
	ProcessPayout(ctx context.Context, payoutID int64) (*domain.Payout, error)
	PendingPayouts(ctx context.Context, limit uint32) ([]domain.Payout, error)
}

type ProviderLister interface {
	ProvidersWithUnsettled(ctx context.Context, periodStart, periodEnd time.Time, limit uint32) ([]int64, error)
}

// Scheduler periodically batches unsettled revenue into payouts and pushes
// pending payouts through the gateway.
type Scheduler struct {
	payouts    PayoutService
	providers  ProviderLister
	locker     Locker
	workerPool WorkerPoolI
	clock      clock.Clock
	interval   time.Duration
	lookback   time.Duration
	inFlight   sync.Map
}

func NewScheduler(payouts PayoutService, providers ProviderLister, locker Locker, pool WorkerPoolI, clk clock.Clock, interval, lookback time.Duration) *Scheduler {
	return &Scheduler{
		payouts:    payouts,
		providers:  providers,
		locker:     locker,
		workerPool: pool,
		clock:      clk,
		interval:   interval,
		lookback:   lookback,
	}
}

func (s *Scheduler) Start(ctx context.Context) {
	zap.L().Info("Settlement scheduler started", zap.Duration("interval", s.interval))
	go s.run(ctx)
}

func (s *Scheduler) run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			zap.L().Info("Context canceled, stopping settlement scheduler")
			return
		case <-ticker.C:
			s.RunOnce(ctx)
		}
	}
}

// RunOnce settles every provider with unsettled revenue and then processes pending payouts.
func (s *Scheduler) RunOnce(ctx context.Context) {
	s.settleProviders(ctx)
	s.processPending(ctx)
}

func (s *Scheduler) settleProviders(ctx context.Context) {
	end := s.clock.Now()
	start := end.Add(-s.lookback)

	providerIDs, err := s.providers.ProvidersWithUnsettled(ctx, start, end, providerBatchLimit)
	if err != nil {
		zap.L().Error("Failed to fetch providers for settlement", zap.Error(err))
		return
	}

	var g errgroup.Group
	for _, providerID := range providerIDs {
		providerID := providerID
		key := fmt.Sprintf("provider:%d", providerID)

		if _, loaded := s.inFlight.LoadOrStore(key, struct{}{}); loaded {
			continue
		}

		g.Go(func() error {
			var done sync.WaitGroup
			done.Add(1)
			err := s.workerPool.AddTask(ctx, func() error {
				defer done.Done()
				defer s.inFlight.Delete(key)
				return s.settle(ctx, providerID, start, end)
			})
			if err != nil {
				s.inFlight.Delete(key)
				return err
			}
			done.Wait()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		zap.L().Error("Error scheduling settlement", zap.Error(err))
	}
}

func (s *Scheduler) settle(ctx context.Context, providerID int64, start, end time.Time) error {
	release, ok, err := s.locker.TryLock(ctx, fmt.Sprintf("settlement:provider:%d", providerID), lockTTL)
	if err != nil {
		return fmt.Errorf("failed to lock provider %d: %w", providerID, err)
	}
	if !ok {
		zap.L().Debug("provider is settled by another instance", zap.Int64("provider_id", providerID))
		return nil
	}
	defer release()

	for attempt := 1; attempt <= maxConflictRetries; attempt++ {
		payout, err := s.payouts.CreatePayoutBatch(ctx, providerID, start, end)
		switch {
		case err == nil:
			zap.L().Info("payout batch created",
				zap.Int64("provider_id", providerID),
				zap.Int64("payout_id", payout.ID),
				zap.Float64("amount", payout.Amount),
			)
			return nil
		case errors.Is(err, domain.ErrNothingToSettle):
			return nil
		case domain.Retryable(err):
			zap.L().Debug("settlement conflict, retrying", zap.Int64("provider_id", providerID), zap.Int("attempt", attempt))
			continue
		default:
			return fmt.Errorf("failed to settle provider %d: %w", providerID, err)
		}
	}
	return fmt.Errorf("failed to settle provider %d after %d attempts: %w", providerID, maxConflictRetries, domain.ErrConcurrencyConflict)
}

func (s *Scheduler) processPending(ctx context.Context) {
	payouts, err := s.payouts.PendingPayouts(ctx, pendingBatchLimit)
	if err != nil {
		zap.L().Error("Failed to fetch pending payouts", zap.Error(err))
		return
	}

	var g errgroup.Group
	for _, p := range payouts {
		p := p
		key := fmt.Sprintf("payout:%d", p.ID)

		if _, loaded := s.inFlight.LoadOrStore(key, struct{}{}); loaded {
			continue
		}

		g.Go(func() error {
			err := s.workerPool.AddTask(ctx, func() error {
				defer s.inFlight.Delete(key)
				processed, err := s.payouts.ProcessPayout(ctx, p.ID)
				if err != nil {
					if domain.Retryable(err) || errors.Is(err, domain.ErrInvalidState) {
						return nil
					}
					return fmt.Errorf("failed to process payout %d: %w", p.ID, err)
				}
				if processed.Status == domain.PayoutFailed {
					zap.L().Warn("payout transfer failed", zap.Int64("payout_id", p.ID))
				}
				return nil
			})
			if err != nil {
				s.inFlight.Delete(key)
				return err
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		zap.L().Error("Error processing payouts", zap.Error(err))
	}
}
