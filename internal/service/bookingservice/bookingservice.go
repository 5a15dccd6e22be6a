package bookingservice

//go:generate mockgen -source=bookingservice.go -destination=mock_bookingservice.go -package=bookingservice

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/GlebRadaev/homeservices/internal/domain"
	"github.com/GlebRadaev/homeservices/pkg/clock"
)

type Repo interface {
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	GetForUpdate(ctx context.Context, id int64) (*domain.Booking, error)
	Update(ctx context.Context, b *domain.Booking, from domain.BookingStatus) error
	AddHistory(ctx context.Context, h *domain.BookingHistory) error
	History(ctx context.Context, bookingID int64) ([]domain.BookingHistory, error)
}

type PaymentRepo interface {
	GetByBookingIDForUpdate(ctx context.Context, bookingID int64) (*domain.Payment, error)
	ApplyRefund(ctx context.Context, p *domain.Payment) error
}

type ProviderRepo interface {
	Exists(ctx context.Context, providerID int64) (bool, error)
	OffersService(ctx context.Context, providerID, serviceID int64) (bool, error)
}

type TxManager interface {
	Begin(ctx context.Context, fn func(ctx context.Context) error) error
}

type Notifier interface {
	Notify(ctx context.Context, n domain.Notification)
}

type ReminderScheduler interface {
	Schedule(ctx context.Context, b *domain.Booking) error
}

type Service struct {
	repo      Repo
	payments  PaymentRepo
	providers ProviderRepo
	tx        TxManager
	notifier  Notifier
	reminders ReminderScheduler
	clock     clock.Clock
}

func New(repo Repo, payments PaymentRepo, providers ProviderRepo, tx TxManager, notifier Notifier, reminders ReminderScheduler, clk clock.Clock) *Service {
	return &Service{
		repo:      repo,
		payments:  payments,
		providers: providers,
		tx:        tx,
		notifier:  notifier,
		reminders: reminders,
		clock:     clk,
	}
}

type step struct {
	action      Action
	bookingID   int64
	actorID     int64
	isCustomer  bool
	scheduledAt time.Time
	notes       string
	// actor runs inside the transaction before the transition table is consulted.
	actor func(ctx context.Context) error
	// before runs inside the transaction once the guards have passed.
	before func(ctx context.Context, b *domain.Booking, now time.Time) error
	mutate func(b *domain.Booking, now time.Time)
}

// apply locks the booking, validates the action against the transition table,
// writes the new state and appends the history record in one transaction.
func (s *Service) apply(ctx context.Context, st step) (*domain.Booking, error) {
	var updated *domain.Booking
	err := s.tx.Begin(ctx, func(ctx context.Context) error {
		b, err := s.repo.GetForUpdate(ctx, st.bookingID)
		if err != nil {
			return err
		}
		if b == nil {
			return fmt.Errorf("%w: booking %d", domain.ErrNotFound, st.bookingID)
		}

		if st.actor != nil {
			if err := st.actor(ctx); err != nil {
				return err
			}
		}

		now := s.clock.Now()
		to, err := next(st.action, &request{
			booking:     b,
			actorID:     st.actorID,
			isCustomer:  st.isCustomer,
			now:         now,
			scheduledAt: st.scheduledAt,
		})
		if err != nil {
			return err
		}
		if st.before != nil {
			if err := st.before(ctx, b, now); err != nil {
				return err
			}
		}

		from := b.Status
		b.Status = to
		if st.mutate != nil {
			st.mutate(b, now)
		}
		if err := s.repo.Update(ctx, b, from); err != nil {
			return err
		}
		if err := s.repo.AddHistory(ctx, &domain.BookingHistory{
			BookingID: b.ID,
			Status:    to,
			ActorID:   st.actorID,
			Notes:     st.notes,
		}); err != nil {
			return err
		}
		updated = b
		return nil
	})
	if err != nil {
		logRefusal(st, err)
		return nil, err
	}
	zap.L().Info("booking transition applied",
		zap.String("action", string(st.action)),
		zap.Int64("booking_id", updated.ID),
		zap.String("status", string(updated.Status)),
	)
	return updated, nil
}

func logRefusal(st step, err error) {
	fields := []zap.Field{zap.String("action", string(st.action)), zap.Int64("booking_id", st.bookingID), zap.Error(err)}
	switch {
	case errors.Is(err, domain.ErrNotFound),
		errors.Is(err, domain.ErrInvalidState),
		errors.Is(err, domain.ErrUnauthorized),
		errors.Is(err, domain.ErrInvalidInput),
		errors.Is(err, domain.ErrNotEligible),
		errors.Is(err, domain.ErrConcurrencyConflict):
		zap.L().Info("booking transition refused", fields...)
	default:
		zap.L().Error("booking transition failed", fields...)
	}
}

// providerExists fails with ErrNotFound for an unknown provider, ahead of any
// state or ownership check.
func (s *Service) providerExists(providerID int64) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		exists, err := s.providers.Exists(ctx, providerID)
		if err != nil {
			return err
		}
		if !exists {
			return fmt.Errorf("%w: provider %d", domain.ErrNotFound, providerID)
		}
		return nil
	}
}

func (s *Service) offersService(providerID int64) func(ctx context.Context, b *domain.Booking, now time.Time) error {
	return func(ctx context.Context, b *domain.Booking, _ time.Time) error {
		offers, err := s.providers.OffersService(ctx, providerID, b.ServiceID)
		if err != nil {
			return err
		}
		if !offers {
			return fmt.Errorf("%w: provider %d does not offer service %d", domain.ErrNotEligible, providerID, b.ServiceID)
		}
		return nil
	}
}

func (s *Service) Accept(ctx context.Context, bookingID, providerID int64) (*domain.Booking, error) {
	b, err := s.apply(ctx, step{
		action:    ActionAccept,
		bookingID: bookingID,
		actorID:   providerID,
		notes:     "Accepted by provider",
		actor:     s.providerExists(providerID),
		before:    s.offersService(providerID),
		mutate: func(b *domain.Booking, _ time.Time) {
			b.ProviderID = &providerID
		},
	})
	if err != nil {
		return nil, err
	}

	s.notify(ctx, b.CustomerID, "Booking confirmed",
		fmt.Sprintf("Your booking for %s has been confirmed", b.ScheduledAt.Format(time.RFC1123)),
		domain.CategoryBooking, b.ID)
	s.scheduleReminder(ctx, b)
	return b, nil
}

func (s *Service) Reject(ctx context.Context, bookingID, providerID int64, reason string) (*domain.Booking, error) {
	cancellationReason := "Rejected by provider"
	if reason != "" {
		cancellationReason += ": " + reason
	}
	b, err := s.apply(ctx, step{
		action:    ActionReject,
		bookingID: bookingID,
		actorID:   providerID,
		notes:     cancellationReason,
		actor:     s.providerExists(providerID),
		before:    s.offersService(providerID),
		mutate: func(b *domain.Booking, now time.Time) {
			b.CancellationReason = cancellationReason
			b.CancelledAt = &now
		},
	})
	if err != nil {
		return nil, err
	}

	s.notify(ctx, b.CustomerID, "Booking rejected", cancellationReason, domain.CategoryBooking, b.ID)
	return b, nil
}

func (s *Service) Start(ctx context.Context, bookingID, providerID int64) (*domain.Booking, error) {
	b, err := s.apply(ctx, step{
		action:    ActionStart,
		bookingID: bookingID,
		actorID:   providerID,
		notes:     "Service started",
		mutate: func(b *domain.Booking, now time.Time) {
			b.StartedAt = &now
		},
	})
	if err != nil {
		return nil, err
	}

	s.notify(ctx, b.CustomerID, "Service started", "Your provider has started the service", domain.CategoryBooking, b.ID)
	return b, nil
}

func (s *Service) Complete(ctx context.Context, bookingID, providerID int64) (*domain.Booking, error) {
	b, err := s.apply(ctx, step{
		action:    ActionComplete,
		bookingID: bookingID,
		actorID:   providerID,
		notes:     "Service completed",
		mutate: func(b *domain.Booking, now time.Time) {
			b.CompletedAt = &now
		},
	})
	if err != nil {
		return nil, err
	}

	s.notify(ctx, b.CustomerID, "Service completed", "Your service is complete. Tell others how it went.", domain.CategoryBooking, b.ID)
	return b, nil
}

// Cancel cancels the booking and refunds the completed payment, if any, as
// CalculateRefund decides.
func (s *Service) Cancel(ctx context.Context, bookingID, userID int64, reason string, isCustomer bool) (*domain.Booking, *RefundDecision, error) {
	var decision RefundDecision
	var refunded float64
	b, err := s.apply(ctx, step{
		action:     ActionCancel,
		bookingID:  bookingID,
		actorID:    userID,
		isCustomer: isCustomer,
		notes:      reason,
		before: func(ctx context.Context, b *domain.Booking, now time.Time) error {
			decision = CalculateRefund(b, isCustomer, now)
			amount, err := s.refund(ctx, b.ID, decision, now)
			refunded = amount
			return err
		},
		mutate: func(b *domain.Booking, now time.Time) {
			b.CancellationReason = reason
			b.CancelledAt = &now
		},
	})
	if err != nil {
		return nil, nil, err
	}

	body := "The booking has been cancelled"
	if reason != "" {
		body += ": " + reason
	}
	if isCustomer {
		if b.ProviderID != nil {
			s.notify(ctx, *b.ProviderID, "Booking cancelled", body, domain.CategoryBooking, b.ID)
		}
	} else {
		s.notify(ctx, b.CustomerID, "Booking cancelled", body, domain.CategoryBooking, b.ID)
	}
	if refunded > 0 {
		s.notify(ctx, b.CustomerID, "Refund issued",
			fmt.Sprintf("%.2f %s will be returned to you (%d%%, %s)", refunded, b.Currency, decision.Percentage, decision.Reason),
			domain.CategoryPayment, b.ID)
	}
	return b, &decision, nil
}

// refund applies the decision to the booking's completed payment and returns
// the amount actually refunded.
func (s *Service) refund(ctx context.Context, bookingID int64, decision RefundDecision, now time.Time) (float64, error) {
	if decision.Amount <= 0 {
		return 0, nil
	}
	payment, err := s.payments.GetByBookingIDForUpdate(ctx, bookingID)
	if err != nil {
		return 0, err
	}
	if payment == nil || payment.Status != domain.PaymentCompleted {
		return 0, nil
	}

	paid := domain.ToCents(payment.Amount)
	refund := min(domain.ToCents(decision.Amount), paid)
	amount := domain.FromCents(refund)
	payment.RefundAmount = &amount
	payment.RefundedAt = &now
	payment.Status = domain.PaymentPartiallyRefunded
	if refund == paid {
		payment.Status = domain.PaymentRefunded
	}
	if err := s.payments.ApplyRefund(ctx, payment); err != nil {
		return 0, err
	}
	return amount, nil
}

func (s *Service) Reschedule(ctx context.Context, bookingID, userID int64, scheduledAt time.Time, isCustomer bool) (*domain.Booking, error) {
	var previous time.Time
	b, err := s.apply(ctx, step{
		action:      ActionReschedule,
		bookingID:   bookingID,
		actorID:     userID,
		isCustomer:  isCustomer,
		scheduledAt: scheduledAt,
		notes:       "Rescheduled to " + scheduledAt.Format(time.RFC3339),
		mutate: func(b *domain.Booking, _ time.Time) {
			previous = b.ScheduledAt
			b.ScheduledAt = scheduledAt
		},
	})
	if err != nil {
		return nil, err
	}

	body := fmt.Sprintf("Moved from %s to %s", previous.Format(time.RFC1123), scheduledAt.Format(time.RFC1123))
	if isCustomer {
		if b.ProviderID != nil {
			s.notify(ctx, *b.ProviderID, "Booking rescheduled", body, domain.CategoryBooking, b.ID)
		}
	} else {
		s.notify(ctx, b.CustomerID, "Booking rescheduled", body, domain.CategoryBooking, b.ID)
	}
	if b.Status == domain.BookingConfirmed {
		s.scheduleReminder(ctx, b)
	}
	return b, nil
}

// History returns the audit trail of a booking to its customer or assigned provider.
func (s *Service) History(ctx context.Context, bookingID, userID int64) ([]domain.BookingHistory, error) {
	b, err := s.repo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, fmt.Errorf("%w: booking %d", domain.ErrNotFound, bookingID)
	}
	if b.CustomerID != userID && !b.AssignedTo(userID) {
		return nil, fmt.Errorf("%w: user %d is not a party of booking %d", domain.ErrUnauthorized, userID, bookingID)
	}
	return s.repo.History(ctx, bookingID)
}

func (s *Service) notify(ctx context.Context, userID int64, title, body string, category domain.NotificationCategory, bookingID int64) {
	s.notifier.Notify(ctx, domain.Notification{
		UserID:          userID,
		Title:           title,
		Body:            body,
		Category:        category,
		RelatedEntityID: bookingID,
		ActionURL:       fmt.Sprintf("/bookings/%d", bookingID),
		CreatedAt:       s.clock.Now(),
	})
}

func (s *Service) scheduleReminder(ctx context.Context, b *domain.Booking) {
	if err := s.reminders.Schedule(ctx, b); err != nil {
		zap.L().Warn("can't schedule booking reminder", zap.Int64("booking_id", b.ID), zap.Error(err))
	}
}
