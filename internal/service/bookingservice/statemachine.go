package bookingservice

import (
	"fmt"
	"slices"
	"time"

	"github.com/GlebRadaev/homeservices/internal/domain"
)

type Action string

const (
	ActionAccept     Action = "accept"
	ActionReject     Action = "reject"
	ActionStart      Action = "start"
	ActionComplete   Action = "complete"
	ActionCancel     Action = "cancel"
	ActionReschedule Action = "reschedule"
)

// MinRescheduleNotice is the least time left before the current slot for it to be moved.
const MinRescheduleNotice = 2 * time.Hour

type request struct {
	booking     *domain.Booking
	actorID     int64
	isCustomer  bool
	now         time.Time
	scheduledAt time.Time
}

type guard func(r *request) error

type transition struct {
	from   []domain.BookingStatus
	to     domain.BookingStatus // empty keeps the current status
	guards []guard
}

var transitions = map[Action]transition{
	ActionAccept: {
		from:   []domain.BookingStatus{domain.BookingPending},
		to:     domain.BookingConfirmed,
		guards: []guard{addressedToActor},
	},
	ActionReject: {
		from:   []domain.BookingStatus{domain.BookingPending},
		to:     domain.BookingRejected,
		guards: []guard{addressedToActor},
	},
	ActionStart: {
		from:   []domain.BookingStatus{domain.BookingConfirmed},
		to:     domain.BookingInProgress,
		guards: []guard{assignedProvider, serviceDayReached},
	},
	ActionComplete: {
		from:   []domain.BookingStatus{domain.BookingInProgress},
		to:     domain.BookingCompleted,
		guards: []guard{assignedProvider, started},
	},
	ActionCancel: {
		from:   []domain.BookingStatus{domain.BookingPending, domain.BookingConfirmed},
		to:     domain.BookingCancelled,
		guards: []guard{participant},
	},
	ActionReschedule: {
		from:   []domain.BookingStatus{domain.BookingPending, domain.BookingConfirmed},
		guards: []guard{participant, futureSlot, rescheduleNotice},
	},
}

// next validates action against the booking and returns the status it leads to.
func next(action Action, r *request) (domain.BookingStatus, error) {
	t, ok := transitions[action]
	if !ok {
		return "", fmt.Errorf("%w: unknown action %q", domain.ErrInvalidInput, action)
	}
	if !slices.Contains(t.from, r.booking.Status) {
		return "", fmt.Errorf("%w: cannot %s booking %d in status %s", domain.ErrInvalidState, action, r.booking.ID, r.booking.Status)
	}
	for _, g := range t.guards {
		if err := g(r); err != nil {
			return "", err
		}
	}
	if t.to == "" {
		return r.booking.Status, nil
	}
	return t.to, nil
}

// addressedToActor lets any eligible provider act on an open request, but only the
// addressee on a request made to a specific provider.
func addressedToActor(r *request) error {
	if r.booking.ProviderID != nil && *r.booking.ProviderID != r.actorID {
		return fmt.Errorf("%w: booking %d is addressed to another provider", domain.ErrUnauthorized, r.booking.ID)
	}
	return nil
}

func assignedProvider(r *request) error {
	if !r.booking.AssignedTo(r.actorID) {
		return fmt.Errorf("%w: provider %d is not assigned to booking %d", domain.ErrUnauthorized, r.actorID, r.booking.ID)
	}
	return nil
}

func participant(r *request) error {
	if r.isCustomer {
		if r.booking.CustomerID != r.actorID {
			return fmt.Errorf("%w: user %d is not the customer of booking %d", domain.ErrUnauthorized, r.actorID, r.booking.ID)
		}
		return nil
	}
	return assignedProvider(r)
}

// serviceDayReached compares calendar days in the location of the scheduled time.
func serviceDayReached(r *request) error {
	scheduled := r.booking.ScheduledAt
	y, m, d := scheduled.Date()
	day := time.Date(y, m, d, 0, 0, 0, 0, scheduled.Location())
	if r.now.In(scheduled.Location()).Before(day) {
		return fmt.Errorf("%w: booking %d is scheduled for %s", domain.ErrInvalidState, r.booking.ID, day.Format(time.DateOnly))
	}
	return nil
}

func started(r *request) error {
	if r.booking.StartedAt == nil {
		return fmt.Errorf("%w: booking %d was never started", domain.ErrInvalidState, r.booking.ID)
	}
	return nil
}

func futureSlot(r *request) error {
	if !r.scheduledAt.After(r.now) {
		return fmt.Errorf("%w: new time must be in the future", domain.ErrInvalidInput)
	}
	if r.scheduledAt.Equal(r.booking.ScheduledAt) {
		return fmt.Errorf("%w: new time equals the current one", domain.ErrInvalidInput)
	}
	return nil
}

func rescheduleNotice(r *request) error {
	if r.booking.ScheduledAt.Sub(r.now) < MinRescheduleNotice {
		return fmt.Errorf("%w: booking %d can't be rescheduled less than %s before service", domain.ErrInvalidState, r.booking.ID, MinRescheduleNotice)
	}
	return nil
}
