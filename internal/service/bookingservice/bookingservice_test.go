package bookingservice

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gomock "go.uber.org/mock/gomock"

	"github.com/GlebRadaev/homeservices/internal/domain"
	"github.com/GlebRadaev/homeservices/pkg/clock"
)

var now = time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)

type mocks struct {
	repo      *MockRepo
	payments  *MockPaymentRepo
	providers *MockProviderRepo
	tx        *MockTxManager
	notifier  *MockNotifier
	reminders *MockReminderScheduler
}

func NewMock(t *testing.T) (*Service, *mocks) {
	ctrl := gomock.NewController(t)
	m := &mocks{
		repo:      NewMockRepo(ctrl),
		payments:  NewMockPaymentRepo(ctrl),
		providers: NewMockProviderRepo(ctrl),
		tx:        NewMockTxManager(ctrl),
		notifier:  NewMockNotifier(ctrl),
		reminders: NewMockReminderScheduler(ctrl),
	}
	m.tx.EXPECT().Begin(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, fn func(ctx context.Context) error) error {
			return fn(ctx)
		}).AnyTimes()
	service := New(m.repo, m.payments, m.providers, m.tx, m.notifier, m.reminders, clock.Fixed(now))
	return service, m
}

func pendingBooking() *domain.Booking {
	return &domain.Booking{
		ID:          1,
		CustomerID:  2,
		ServiceID:   9,
		Status:      domain.BookingPending,
		ScheduledAt: now.Add(48 * time.Hour),
		TotalAmount: 400,
		Currency:    "USD",
	}
}

func confirmedBooking(providerID int64, scheduledIn time.Duration) *domain.Booking {
	b := pendingBooking()
	b.Status = domain.BookingConfirmed
	b.ProviderID = &providerID
	b.ScheduledAt = now.Add(scheduledIn)
	return b
}

func expectWrite(m *mocks, from, to domain.BookingStatus) {
	m.repo.EXPECT().Update(gomock.Any(), gomock.Any(), from).Return(nil)
	m.repo.EXPECT().AddHistory(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, h *domain.BookingHistory) error {
			if h.Status != to {
				return errors.New("unexpected history status " + string(h.Status))
			}
			return nil
		})
}

func TestService_Accept(t *testing.T) {
	tests := []struct {
		name        string
		prepareMock func(m *mocks)
		wantErr     error
	}{
		{
			name: "Provider accepts open request",
			prepareMock: func(m *mocks) {
				m.repo.EXPECT().GetForUpdate(gomock.Any(), int64(1)).Return(pendingBooking(), nil)
				m.providers.EXPECT().Exists(gomock.Any(), int64(7)).Return(true, nil)
				m.providers.EXPECT().OffersService(gomock.Any(), int64(7), int64(9)).Return(true, nil)
				expectWrite(m, domain.BookingPending, domain.BookingConfirmed)
				m.notifier.EXPECT().Notify(gomock.Any(), gomock.Any()).
					Do(func(_ context.Context, n domain.Notification) {
						assert.Equal(t, int64(2), n.UserID)
						assert.Equal(t, domain.CategoryBooking, n.Category)
						assert.Equal(t, int64(1), n.RelatedEntityID)
					})
				m.reminders.EXPECT().Schedule(gomock.Any(), gomock.Any()).Return(nil)
			},
		},
		{
			name: "Reminder failure does not fail the accept",
			prepareMock: func(m *mocks) {
				m.repo.EXPECT().GetForUpdate(gomock.Any(), int64(1)).Return(pendingBooking(), nil)
				m.providers.EXPECT().Exists(gomock.Any(), int64(7)).Return(true, nil)
				m.providers.EXPECT().OffersService(gomock.Any(), int64(7), int64(9)).Return(true, nil)
				expectWrite(m, domain.BookingPending, domain.BookingConfirmed)
				m.notifier.EXPECT().Notify(gomock.Any(), gomock.Any())
				m.reminders.EXPECT().Schedule(gomock.Any(), gomock.Any()).Return(errors.New("redis down"))
			},
		},
		{
			name: "Booking not found",
			prepareMock: func(m *mocks) {
				m.repo.EXPECT().GetForUpdate(gomock.Any(), int64(1)).Return(nil, nil)
			},
			wantErr: domain.ErrNotFound,
		},
		{
			name: "Provider not found",
			prepareMock: func(m *mocks) {
				m.repo.EXPECT().GetForUpdate(gomock.Any(), int64(1)).Return(pendingBooking(), nil)
				m.providers.EXPECT().Exists(gomock.Any(), int64(7)).Return(false, nil)
			},
			wantErr: domain.ErrNotFound,
		},
		{
			name: "Provider does not offer the service",
			prepareMock: func(m *mocks) {
				m.repo.EXPECT().GetForUpdate(gomock.Any(), int64(1)).Return(pendingBooking(), nil)
				m.providers.EXPECT().Exists(gomock.Any(), int64(7)).Return(true, nil)
				m.providers.EXPECT().OffersService(gomock.Any(), int64(7), int64(9)).Return(false, nil)
			},
			wantErr: domain.ErrNotEligible,
		},
		{
			name: "Unknown provider on a request addressed to someone else",
			prepareMock: func(m *mocks) {
				addressed := pendingBooking()
				other := int64(8)
				addressed.ProviderID = &other
				m.repo.EXPECT().GetForUpdate(gomock.Any(), int64(1)).Return(addressed, nil)
				m.providers.EXPECT().Exists(gomock.Any(), int64(7)).Return(false, nil)
			},
			wantErr: domain.ErrNotFound,
		},
		{
			name: "Request addressed to another provider",
			prepareMock: func(m *mocks) {
				addressed := pendingBooking()
				other := int64(8)
				addressed.ProviderID = &other
				m.repo.EXPECT().GetForUpdate(gomock.Any(), int64(1)).Return(addressed, nil)
				m.providers.EXPECT().Exists(gomock.Any(), int64(7)).Return(true, nil)
			},
			wantErr: domain.ErrUnauthorized,
		},
		{
			name: "Booking already confirmed",
			prepareMock: func(m *mocks) {
				m.repo.EXPECT().GetForUpdate(gomock.Any(), int64(1)).Return(confirmedBooking(8, 48*time.Hour), nil)
				m.providers.EXPECT().Exists(gomock.Any(), int64(7)).Return(true, nil)
			},
			wantErr: domain.ErrInvalidState,
		},
		{
			name: "Lost the race to another provider",
			prepareMock: func(m *mocks) {
				m.repo.EXPECT().GetForUpdate(gomock.Any(), int64(1)).Return(pendingBooking(), nil)
				m.providers.EXPECT().Exists(gomock.Any(), int64(7)).Return(true, nil)
				m.providers.EXPECT().OffersService(gomock.Any(), int64(7), int64(9)).Return(true, nil)
				m.repo.EXPECT().Update(gomock.Any(), gomock.Any(), domain.BookingPending).Return(domain.ErrConcurrencyConflict)
			},
			wantErr: domain.ErrConcurrencyConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, m := NewMock(t)
			tt.prepareMock(m)

			b, err := service.Accept(context.Background(), 1, 7)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, b)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, domain.BookingConfirmed, b.Status)
			assert.True(t, b.AssignedTo(7))
		})
	}
}

func TestService_Reject(t *testing.T) {
	tests := []struct {
		name        string
		prepareMock func(m *mocks)
		wantErr     error
	}{
		{
			name: "Eligible provider rejects open request",
			prepareMock: func(m *mocks) {
				m.repo.EXPECT().GetForUpdate(gomock.Any(), int64(1)).Return(pendingBooking(), nil)
				m.providers.EXPECT().Exists(gomock.Any(), int64(7)).Return(true, nil)
				m.providers.EXPECT().OffersService(gomock.Any(), int64(7), int64(9)).Return(true, nil)
				expectWrite(m, domain.BookingPending, domain.BookingRejected)
				m.notifier.EXPECT().Notify(gomock.Any(), gomock.Any())
			},
		},
		{
			name: "Unknown provider",
			prepareMock: func(m *mocks) {
				m.repo.EXPECT().GetForUpdate(gomock.Any(), int64(1)).Return(pendingBooking(), nil)
				m.providers.EXPECT().Exists(gomock.Any(), int64(7)).Return(false, nil)
			},
			wantErr: domain.ErrNotFound,
		},
		{
			name: "Provider unrelated to the service",
			prepareMock: func(m *mocks) {
				m.repo.EXPECT().GetForUpdate(gomock.Any(), int64(1)).Return(pendingBooking(), nil)
				m.providers.EXPECT().Exists(gomock.Any(), int64(7)).Return(true, nil)
				m.providers.EXPECT().OffersService(gomock.Any(), int64(7), int64(9)).Return(false, nil)
			},
			wantErr: domain.ErrNotEligible,
		},
		{
			name: "Request addressed to another provider",
			prepareMock: func(m *mocks) {
				addressed := pendingBooking()
				other := int64(8)
				addressed.ProviderID = &other
				m.repo.EXPECT().GetForUpdate(gomock.Any(), int64(1)).Return(addressed, nil)
				m.providers.EXPECT().Exists(gomock.Any(), int64(7)).Return(true, nil)
			},
			wantErr: domain.ErrUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, m := NewMock(t)
			tt.prepareMock(m)

			b, err := service.Reject(context.Background(), 1, 7, "fully booked")

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, b)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, domain.BookingRejected, b.Status)
			assert.Equal(t, "Rejected by provider: fully booked", b.CancellationReason)
			require.NotNil(t, b.CancelledAt)
			assert.Equal(t, now, *b.CancelledAt)
			assert.Nil(t, b.ProviderID)
		})
	}
}

func TestService_StartAndComplete(t *testing.T) {
	t.Run("Start on the service day", func(t *testing.T) {
		service, m := NewMock(t)
		m.repo.EXPECT().GetForUpdate(gomock.Any(), int64(1)).Return(confirmedBooking(7, 3*time.Hour), nil)
		expectWrite(m, domain.BookingConfirmed, domain.BookingInProgress)
		m.notifier.EXPECT().Notify(gomock.Any(), gomock.Any())

		b, err := service.Start(context.Background(), 1, 7)

		require.NoError(t, err)
		assert.Equal(t, domain.BookingInProgress, b.Status)
		assert.Equal(t, now, *b.StartedAt)
	})

	t.Run("Start before the service day", func(t *testing.T) {
		service, m := NewMock(t)
		m.repo.EXPECT().GetForUpdate(gomock.Any(), int64(1)).Return(confirmedBooking(7, 48*time.Hour), nil)

		_, err := service.Start(context.Background(), 1, 7)

		assert.ErrorIs(t, err, domain.ErrInvalidState)
	})

	t.Run("Complete a started booking", func(t *testing.T) {
		service, m := NewMock(t)
		started := now.Add(-2 * time.Hour)
		booking := confirmedBooking(7, -3*time.Hour)
		booking.Status = domain.BookingInProgress
		booking.StartedAt = &started
		m.repo.EXPECT().GetForUpdate(gomock.Any(), int64(1)).Return(booking, nil)
		expectWrite(m, domain.BookingInProgress, domain.BookingCompleted)
		m.notifier.EXPECT().Notify(gomock.Any(), gomock.Any())

		b, err := service.Complete(context.Background(), 1, 7)

		require.NoError(t, err)
		assert.Equal(t, domain.BookingCompleted, b.Status)
		assert.Equal(t, now, *b.CompletedAt)
		assert.Nil(t, b.CancelledAt)
	})

	t.Run("Complete by another provider", func(t *testing.T) {
		service, m := NewMock(t)
		started := now.Add(-2 * time.Hour)
		booking := confirmedBooking(8, -3*time.Hour)
		booking.Status = domain.BookingInProgress
		booking.StartedAt = &started
		m.repo.EXPECT().GetForUpdate(gomock.Any(), int64(1)).Return(booking, nil)

		_, err := service.Complete(context.Background(), 1, 7)

		assert.ErrorIs(t, err, domain.ErrUnauthorized)
	})
}

func TestService_Cancel(t *testing.T) {
	tests := []struct {
		name           string
		userID         int64
		isCustomer     bool
		scheduledIn    time.Duration
		payment        *domain.Payment
		wantPercentage int
		wantRefund     *float64
		wantStatus     domain.PaymentStatus
		notifications  int
	}{
		{
			name:           "Customer cancels 30h ahead",
			userID:         2,
			isCustomer:     true,
			scheduledIn:    30 * time.Hour,
			payment:        &domain.Payment{ID: 4, BookingID: 1, Amount: 400, Status: domain.PaymentCompleted},
			wantPercentage: 100,
			wantRefund:     ptr(400.0),
			wantStatus:     domain.PaymentRefunded,
			notifications:  2,
		},
		{
			name:           "Customer cancels 8h ahead",
			userID:         2,
			isCustomer:     true,
			scheduledIn:    8 * time.Hour,
			payment:        &domain.Payment{ID: 4, BookingID: 1, Amount: 400, Status: domain.PaymentCompleted},
			wantPercentage: 50,
			wantRefund:     ptr(200.0),
			wantStatus:     domain.PaymentPartiallyRefunded,
			notifications:  2,
		},
		{
			name:           "Customer cancels 1h ahead",
			userID:         2,
			isCustomer:     true,
			scheduledIn:    time.Hour,
			wantPercentage: 0,
			notifications:  1,
		},
		{
			name:           "Provider cancels 1h ahead",
			userID:         7,
			scheduledIn:    time.Hour,
			payment:        &domain.Payment{ID: 4, BookingID: 1, Amount: 400, Status: domain.PaymentCompleted},
			wantPercentage: 100,
			wantRefund:     ptr(400.0),
			wantStatus:     domain.PaymentRefunded,
			notifications:  2,
		},
		{
			name:           "Unpaid booking",
			userID:         2,
			isCustomer:     true,
			scheduledIn:    30 * time.Hour,
			wantPercentage: 100,
			notifications:  1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, m := NewMock(t)
			m.repo.EXPECT().GetForUpdate(gomock.Any(), int64(1)).Return(confirmedBooking(7, tt.scheduledIn), nil)
			if tt.wantPercentage > 0 {
				m.payments.EXPECT().GetByBookingIDForUpdate(gomock.Any(), int64(1)).Return(tt.payment, nil)
			}
			if tt.wantRefund != nil {
				m.payments.EXPECT().ApplyRefund(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, p *domain.Payment) error {
						assert.Equal(t, tt.wantStatus, p.Status)
						assert.Equal(t, *tt.wantRefund, *p.RefundAmount)
						assert.LessOrEqual(t, *p.RefundAmount, p.Amount)
						assert.Equal(t, now, *p.RefundedAt)
						return nil
					})
			}
			expectWrite(m, domain.BookingConfirmed, domain.BookingCancelled)
			m.notifier.EXPECT().Notify(gomock.Any(), gomock.Any()).Times(tt.notifications)

			b, decision, err := service.Cancel(context.Background(), 1, tt.userID, "plans changed", tt.isCustomer)

			require.NoError(t, err)
			assert.Equal(t, domain.BookingCancelled, b.Status)
			assert.Equal(t, "plans changed", b.CancellationReason)
			assert.Equal(t, now, *b.CancelledAt)
			assert.Equal(t, tt.wantPercentage, decision.Percentage)
		})
	}
}

func TestService_Cancel_RefundFailureRollsBack(t *testing.T) {
	service, m := NewMock(t)
	m.repo.EXPECT().GetForUpdate(gomock.Any(), int64(1)).Return(confirmedBooking(7, 30*time.Hour), nil)
	m.payments.EXPECT().GetByBookingIDForUpdate(gomock.Any(), int64(1)).
		Return(&domain.Payment{ID: 4, Amount: 400, Status: domain.PaymentCompleted}, nil)
	m.payments.EXPECT().ApplyRefund(gomock.Any(), gomock.Any()).Return(errors.New("database error"))

	b, decision, err := service.Cancel(context.Background(), 1, 2, "", true)

	assert.Error(t, err)
	assert.Nil(t, b)
	assert.Nil(t, decision)
}

func TestService_Cancel_TerminalBooking(t *testing.T) {
	for _, status := range []domain.BookingStatus{domain.BookingCompleted, domain.BookingCancelled, domain.BookingRejected, domain.BookingInProgress} {
		t.Run(string(status), func(t *testing.T) {
			service, m := NewMock(t)
			booking := confirmedBooking(7, 30*time.Hour)
			booking.Status = status
			m.repo.EXPECT().GetForUpdate(gomock.Any(), int64(1)).Return(booking, nil)

			_, _, err := service.Cancel(context.Background(), 1, 2, "", true)

			assert.ErrorIs(t, err, domain.ErrInvalidState)
		})
	}
}

func TestService_Reschedule(t *testing.T) {
	t.Run("Customer moves a confirmed booking", func(t *testing.T) {
		service, m := NewMock(t)
		newTime := now.Add(72 * time.Hour)
		m.repo.EXPECT().GetForUpdate(gomock.Any(), int64(1)).Return(confirmedBooking(7, 48*time.Hour), nil)
		expectWrite(m, domain.BookingConfirmed, domain.BookingConfirmed)
		m.notifier.EXPECT().Notify(gomock.Any(), gomock.Any()).
			Do(func(_ context.Context, n domain.Notification) {
				assert.Equal(t, int64(7), n.UserID)
			})
		m.reminders.EXPECT().Schedule(gomock.Any(), gomock.Any()).Return(nil)

		b, err := service.Reschedule(context.Background(), 1, 2, newTime, true)

		require.NoError(t, err)
		assert.Equal(t, domain.BookingConfirmed, b.Status)
		assert.Equal(t, newTime, b.ScheduledAt)
	})

	t.Run("Pending booking gets no reminder", func(t *testing.T) {
		service, m := NewMock(t)
		m.repo.EXPECT().GetForUpdate(gomock.Any(), int64(1)).Return(pendingBooking(), nil)
		expectWrite(m, domain.BookingPending, domain.BookingPending)

		b, err := service.Reschedule(context.Background(), 1, 2, now.Add(96*time.Hour), true)

		require.NoError(t, err)
		assert.Equal(t, domain.BookingPending, b.Status)
	})

	t.Run("Too close to the current slot", func(t *testing.T) {
		service, m := NewMock(t)
		m.repo.EXPECT().GetForUpdate(gomock.Any(), int64(1)).Return(confirmedBooking(7, 90*time.Minute), nil)

		_, err := service.Reschedule(context.Background(), 1, 2, now.Add(72*time.Hour), true)

		assert.ErrorIs(t, err, domain.ErrInvalidState)
	})
}

func TestService_History(t *testing.T) {
	history := []domain.BookingHistory{
		{ID: 1, BookingID: 1, Status: domain.BookingConfirmed, ActorID: 7},
		{ID: 2, BookingID: 1, Status: domain.BookingCancelled, ActorID: 2},
	}

	tests := []struct {
		name        string
		userID      int64
		prepareMock func(m *mocks)
		want        []domain.BookingHistory
		wantErr     error
	}{
		{
			name:   "Customer reads history",
			userID: 2,
			prepareMock: func(m *mocks) {
				m.repo.EXPECT().GetByID(gomock.Any(), int64(1)).Return(confirmedBooking(7, time.Hour), nil)
				m.repo.EXPECT().History(gomock.Any(), int64(1)).Return(history, nil)
			},
			want: history,
		},
		{
			name:   "Stranger is refused",
			userID: 99,
			prepareMock: func(m *mocks) {
				m.repo.EXPECT().GetByID(gomock.Any(), int64(1)).Return(confirmedBooking(7, time.Hour), nil)
			},
			wantErr: domain.ErrUnauthorized,
		},
		{
			name:   "Unknown booking",
			userID: 2,
			prepareMock: func(m *mocks) {
				m.repo.EXPECT().GetByID(gomock.Any(), int64(1)).Return(nil, nil)
			},
			wantErr: domain.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, m := NewMock(t)
			tt.prepareMock(m)

			got, err := service.History(context.Background(), 1, tt.userID)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func ptr[T any](v T) *T {
	return &v
}
