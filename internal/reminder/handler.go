package reminder

//go:generate mockgen -source=handler.go -destination=mock_handler.go -package=reminder

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"github.com/GlebRadaev/homeservices/internal/domain"
)

type BookingReader interface {
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
}

type Notifier interface {
	Notify(ctx context.Context, n domain.Notification)
}

type Handler struct {
	bookings BookingReader
	notifier Notifier
}

func NewHandler(bookings BookingReader, notifier Notifier) *Handler {
	return &Handler{bookings: bookings, notifier: notifier}
}

// ProcessTask sends the reminder only if the booking is still confirmed for
// the slot the task was created for.
func (h *Handler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var p Payload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return fmt.Errorf("invalid reminder payload: %v: %w", err, asynq.SkipRetry)
	}

	b, err := h.bookings.GetByID(ctx, p.BookingID)
	if err != nil {
		return err
	}
	if b == nil || b.Status != domain.BookingConfirmed || b.ScheduledAt.Unix() != p.ScheduledAt || b.ProviderID == nil {
		zap.L().Debug("stale reminder skipped", zap.Int64("booking_id", p.BookingID))
		return nil
	}

	body := fmt.Sprintf("Your booking is scheduled for %s", b.ScheduledAt.Format(time.RFC1123))
	for _, userID := range []int64{b.CustomerID, *b.ProviderID} {
		h.notifier.Notify(ctx, domain.Notification{
			UserID:          userID,
			Title:           "Upcoming booking",
			Body:            body,
			Category:        domain.CategoryReminder,
			RelatedEntityID: b.ID,
			ActionURL:       fmt.Sprintf("/bookings/%d", b.ID),
		})
	}
	return nil
}
