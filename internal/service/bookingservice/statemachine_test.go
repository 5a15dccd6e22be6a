package bookingservice

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GlebRadaev/homeservices/internal/domain"
)

var allStatuses = []domain.BookingStatus{
	domain.BookingPending,
	domain.BookingConfirmed,
	domain.BookingInProgress,
	domain.BookingCompleted,
	domain.BookingCancelled,
	domain.BookingRejected,
}

var allActions = []Action{ActionAccept, ActionReject, ActionStart, ActionComplete, ActionCancel, ActionReschedule}

func TestTransitions_Graph(t *testing.T) {
	edges := map[domain.BookingStatus]map[Action]domain.BookingStatus{
		domain.BookingPending: {
			ActionAccept:     domain.BookingConfirmed,
			ActionReject:     domain.BookingRejected,
			ActionCancel:     domain.BookingCancelled,
			ActionReschedule: domain.BookingPending,
		},
		domain.BookingConfirmed: {
			ActionStart:      domain.BookingInProgress,
			ActionCancel:     domain.BookingCancelled,
			ActionReschedule: domain.BookingConfirmed,
		},
		domain.BookingInProgress: {
			ActionComplete: domain.BookingCompleted,
		},
	}

	now := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
	providerID := int64(7)
	started := now.Add(-time.Hour)

	for _, status := range allStatuses {
		for _, action := range allActions {
			t.Run(string(status)+"/"+string(action), func(t *testing.T) {
				b := &domain.Booking{
					ID:          1,
					CustomerID:  2,
					Status:      status,
					ScheduledAt: now.Add(48 * time.Hour),
				}
				actor, isCustomer := providerID, false
				switch action {
				case ActionStart:
					b.ScheduledAt = now
					b.ProviderID = &providerID
				case ActionComplete:
					b.ProviderID = &providerID
					b.StartedAt = &started
				case ActionCancel, ActionReschedule:
					actor, isCustomer = 2, true
				}

				to, err := next(action, &request{
					booking:     b,
					actorID:     actor,
					isCustomer:  isCustomer,
					now:         now,
					scheduledAt: now.Add(72 * time.Hour),
				})

				want, allowed := edges[status][action]
				if !allowed {
					assert.ErrorIs(t, err, domain.ErrInvalidState)
					return
				}
				require.NoError(t, err)
				assert.Equal(t, want, to)
			})
		}
	}
}

func TestTransitions_TerminalStatesHaveNoExit(t *testing.T) {
	for _, status := range allStatuses {
		if !status.Terminal() {
			continue
		}
		for action, tr := range transitions {
			assert.NotContains(t, tr.from, status, "%s leaves terminal status %s", action, status)
		}
	}
}

func TestGuards(t *testing.T) {
	now := time.Date(2026, 10, 1, 12, 0, 0, 0, time.Local)
	providerID, otherProvider := int64(7), int64(8)

	tests := []struct {
		name    string
		action  Action
		booking domain.Booking
		req     request
		wantErr error
	}{
		{
			name:    "Accept open request",
			action:  ActionAccept,
			booking: domain.Booking{Status: domain.BookingPending},
			req:     request{actorID: providerID},
		},
		{
			name:    "Accept request addressed to another provider",
			action:  ActionAccept,
			booking: domain.Booking{Status: domain.BookingPending, ProviderID: &otherProvider},
			req:     request{actorID: providerID},
			wantErr: domain.ErrUnauthorized,
		},
		{
			name:    "Start by a provider not assigned",
			action:  ActionStart,
			booking: domain.Booking{Status: domain.BookingConfirmed, ProviderID: &otherProvider, ScheduledAt: now},
			req:     request{actorID: providerID, now: now},
			wantErr: domain.ErrUnauthorized,
		},
		{
			name:    "Start the day before the service",
			action:  ActionStart,
			booking: domain.Booking{Status: domain.BookingConfirmed, ProviderID: &providerID, ScheduledAt: now.Add(24 * time.Hour)},
			req:     request{actorID: providerID, now: now},
			wantErr: domain.ErrInvalidState,
		},
		{
			name:   "Start early on the service day",
			action: ActionStart,
			booking: domain.Booking{
				Status:      domain.BookingConfirmed,
				ProviderID:  &providerID,
				ScheduledAt: time.Date(2026, 10, 1, 18, 0, 0, 0, time.Local),
			},
			req: request{actorID: providerID, now: time.Date(2026, 10, 1, 0, 30, 0, 0, time.Local)},
		},
		{
			name:    "Complete without start",
			action:  ActionComplete,
			booking: domain.Booking{Status: domain.BookingInProgress, ProviderID: &providerID},
			req:     request{actorID: providerID},
			wantErr: domain.ErrInvalidState,
		},
		{
			name:    "Customer cancels someone else's booking",
			action:  ActionCancel,
			booking: domain.Booking{Status: domain.BookingPending, CustomerID: 2},
			req:     request{actorID: 3, isCustomer: true},
			wantErr: domain.ErrUnauthorized,
		},
		{
			name:    "Provider cancels an unassigned booking",
			action:  ActionCancel,
			booking: domain.Booking{Status: domain.BookingPending, CustomerID: 2},
			req:     request{actorID: providerID},
			wantErr: domain.ErrUnauthorized,
		},
		{
			name:    "Reschedule into the past",
			action:  ActionReschedule,
			booking: domain.Booking{Status: domain.BookingConfirmed, CustomerID: 2, ScheduledAt: now.Add(48 * time.Hour)},
			req:     request{actorID: 2, isCustomer: true, now: now, scheduledAt: now.Add(-time.Hour)},
			wantErr: domain.ErrInvalidInput,
		},
		{
			name:    "Reschedule to the same time",
			action:  ActionReschedule,
			booking: domain.Booking{Status: domain.BookingConfirmed, CustomerID: 2, ScheduledAt: now.Add(48 * time.Hour)},
			req:     request{actorID: 2, isCustomer: true, now: now, scheduledAt: now.Add(48 * time.Hour)},
			wantErr: domain.ErrInvalidInput,
		},
		{
			name:    "Reschedule with less than 2h notice",
			action:  ActionReschedule,
			booking: domain.Booking{Status: domain.BookingConfirmed, CustomerID: 2, ScheduledAt: now.Add(time.Hour)},
			req:     request{actorID: 2, isCustomer: true, now: now, scheduledAt: now.Add(48 * time.Hour)},
			wantErr: domain.ErrInvalidState,
		},
		{
			name:    "Reschedule with exactly 2h notice",
			action:  ActionReschedule,
			booking: domain.Booking{Status: domain.BookingConfirmed, CustomerID: 2, ScheduledAt: now.Add(2 * time.Hour)},
			req:     request{actorID: 2, isCustomer: true, now: now, scheduledAt: now.Add(48 * time.Hour)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := tt.booking
			req := tt.req
			req.booking = &b

			_, err := next(tt.action, &req)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNext_UnknownAction(t *testing.T) {
	_, err := next(Action("teleport"), &request{booking: &domain.Booking{Status: domain.BookingPending}})

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
