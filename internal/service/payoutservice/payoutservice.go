package payoutservice

//go:generate mockgen -source=payoutservice.go -destination=mock_payoutservice.go -package=payoutservice

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/GlebRadaev/homeservices/internal/domain"
	"github.com/GlebRadaev/homeservices/pkg/clock"
)

type Repo interface {
	FindSettleable(ctx context.Context, providerID int64, periodStart, periodEnd time.Time) ([]domain.SettleableBooking, error)
	Create(ctx context.Context, p *domain.Payout) error
	AddBookings(ctx context.Context, items []domain.PayoutBooking) error
	GetByID(ctx context.Context, id int64) (*domain.Payout, error)
	FindPending(ctx context.Context, staleBefore time.Time, limit uint32) ([]domain.Payout, error)
	UpdateStatus(ctx context.Context, p *domain.Payout, from domain.PayoutStatus) error
}

// StaleProcessingAfter is how long a transfer attempt may stay processing
// before the payout is picked up again.
const StaleProcessingAfter = 15 * time.Minute

type ProviderRepo interface {
	Lock(ctx context.Context, providerID int64) (bool, error)
}

type TxManager interface {
	BeginSerializable(ctx context.Context, fn func(ctx context.Context) error) error
}

// Gateway moves the payout amount to the provider and returns the transfer reference.
type Gateway interface {
	Transfer(ctx context.Context, p *domain.Payout) (string, error)
}

type Notifier interface {
	Notify(ctx context.Context, n domain.Notification)
}

type Service struct {
	repo           Repo
	providers      ProviderRepo
	tx             TxManager
	gateway        Gateway
	notifier       Notifier
	clock          clock.Clock
	commissionRate float64
}

func New(repo Repo, providers ProviderRepo, tx TxManager, gateway Gateway, notifier Notifier, clk clock.Clock, commissionRate float64) *Service {
	return &Service{
		repo:           repo,
		providers:      providers,
		tx:             tx,
		gateway:        gateway,
		notifier:       notifier,
		clock:          clk,
		commissionRate: commissionRate,
	}
}

// CreatePayoutBatch claims every completed, paid and unclaimed booking of the
// provider in [periodStart, periodEnd] for one new pending payout.
func (s *Service) CreatePayoutBatch(ctx context.Context, providerID int64, periodStart, periodEnd time.Time) (*domain.Payout, error) {
	if periodStart.After(periodEnd) {
		return nil, fmt.Errorf("%w: period starts after it ends", domain.ErrInvalidInput)
	}

	var payout *domain.Payout
	err := s.tx.BeginSerializable(ctx, func(ctx context.Context) error {
		ok, err := s.providers.Lock(ctx, providerID)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%w: provider %d", domain.ErrNotFound, providerID)
		}

		bookings, err := s.repo.FindSettleable(ctx, providerID, periodStart, periodEnd)
		if err != nil {
			return err
		}
		if len(bookings) == 0 {
			return fmt.Errorf("%w: provider %d has no unclaimed revenue in period", domain.ErrNothingToSettle, providerID)
		}

		p, claims := settle(bookings, s.commissionRate)
		p.ProviderID = providerID
		p.PeriodStart = periodStart
		p.PeriodEnd = periodEnd
		if err := s.repo.Create(ctx, p); err != nil {
			return err
		}
		for i := range claims {
			claims[i].PayoutID = p.ID
		}
		if err := s.repo.AddBookings(ctx, claims); err != nil {
			return err
		}
		payout = p
		return nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrNothingToSettle) {
			zap.L().Debug("nothing to settle", zap.Int64("provider_id", providerID))
		} else {
			zap.L().Info("payout batch not created", zap.Int64("provider_id", providerID), zap.Error(err))
		}
		return nil, err
	}

	zap.L().Info("payout batch created",
		zap.Int64("payout_id", payout.ID),
		zap.Int64("provider_id", providerID),
		zap.Int("bookings", payout.BookingCount),
		zap.Float64("amount", payout.Amount),
	)
	s.notify(ctx, payout, "Payout scheduled",
		fmt.Sprintf("A payout of %.2f for %d bookings is on its way", payout.Amount, payout.BookingCount))
	return payout, nil
}

// settle computes the payout totals and each booking's share of the platform
// fee in cents. Shares come from rounding the cumulative gross, so they never
// go negative and always add up to the payout fee.
func settle(bookings []domain.SettleableBooking, rate float64) (*domain.Payout, []domain.PayoutBooking) {
	claims := make([]domain.PayoutBooking, 0, len(bookings))
	var gross, feeSoFar int64
	for _, b := range bookings {
		amount := domain.ToCents(b.Amount)
		gross += amount
		fee := int64(math.Round(float64(gross)*rate)) - feeSoFar
		feeSoFar += fee
		claims = append(claims, domain.PayoutBooking{
			BookingID:   b.BookingID,
			Amount:      domain.FromCents(amount),
			PlatformFee: domain.FromCents(fee),
		})
	}

	return &domain.Payout{
		Amount:       domain.FromCents(gross - feeSoFar),
		TotalRevenue: domain.FromCents(gross),
		PlatformFee:  domain.FromCents(feeSoFar),
		Status:       domain.PayoutPending,
		BookingCount: len(claims),
	}, claims
}

// ProcessPayout transfers a pending (or previously failed) payout through the
// gateway. A gateway failure leaves the payout failed; its bookings stay claimed.
// A payout left processing by an interrupted attempt is resumed once the
// attempt is stale; the stable idempotency key keeps the gateway from paying twice.
func (s *Service) ProcessPayout(ctx context.Context, payoutID int64) (*domain.Payout, error) {
	p, err := s.repo.GetByID(ctx, payoutID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, fmt.Errorf("%w: payout %d", domain.ErrNotFound, payoutID)
	}

	started := s.clock.Now()
	switch p.Status {
	case domain.PayoutPending, domain.PayoutFailed:
	case domain.PayoutProcessing:
		if p.ProcessedAt != nil && started.Sub(*p.ProcessedAt) < StaleProcessingAfter {
			return nil, fmt.Errorf("%w: payout %d is being processed", domain.ErrInvalidState, payoutID)
		}
		zap.L().Warn("resuming interrupted payout", zap.Int64("payout_id", p.ID))
	default:
		return nil, fmt.Errorf("%w: payout %d is %s", domain.ErrInvalidState, payoutID, p.Status)
	}

	from := p.Status
	p.Status = domain.PayoutProcessing
	p.ProcessedAt = &started
	if err := s.repo.UpdateStatus(ctx, p, from); err != nil {
		return nil, err
	}

	ref, transferErr := s.gateway.Transfer(ctx, p)
	now := s.clock.Now()
	p.ProcessedAt = &now
	if transferErr != nil {
		zap.L().Error("payout transfer failed", zap.Int64("payout_id", p.ID), zap.Error(transferErr))
		p.Status = domain.PayoutFailed
	} else {
		p.Status = domain.PayoutCompleted
		p.TransactionReference = ref
	}
	if err := s.repo.UpdateStatus(context.WithoutCancel(ctx), p, domain.PayoutProcessing); err != nil {
		zap.L().Error("can't record transfer outcome, payout stays processing",
			zap.Int64("payout_id", p.ID),
			zap.String("status", string(p.Status)),
			zap.String("reference", p.TransactionReference),
			zap.Error(err),
		)
		return nil, err
	}

	if p.Status == domain.PayoutCompleted {
		zap.L().Info("payout completed", zap.Int64("payout_id", p.ID), zap.String("reference", ref))
		s.notify(ctx, p, "Payout sent", fmt.Sprintf("%.2f has been transferred to you", p.Amount))
	}
	return p, nil
}

// PendingPayouts lists payouts waiting for a transfer, including stale processing ones.
func (s *Service) PendingPayouts(ctx context.Context, limit uint32) ([]domain.Payout, error) {
	return s.repo.FindPending(ctx, s.clock.Now().Add(-StaleProcessingAfter), limit)
}

func (s *Service) notify(ctx context.Context, p *domain.Payout, title, body string) {
	s.notifier.Notify(ctx, domain.Notification{
		UserID:          p.ProviderID,
		Title:           title,
		Body:            body,
		Category:        domain.CategoryPayout,
		RelatedEntityID: p.ID,
		ActionURL:       fmt.Sprintf("/payouts/%d", p.ID),
		CreatedAt:       s.clock.Now(),
	})
}
