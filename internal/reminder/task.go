package reminder

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"

	"github.com/GlebRadaev/homeservices/internal/domain"
)

const TypeBookingReminder = "booking:reminder"

type Payload struct {
	BookingID   int64 `json:"booking_id"`
	ScheduledAt int64 `json:"scheduled_at"`
}

// TaskID is unique per booking and slot, so re-enqueueing the same slot is a no-op
// and a reschedule gets a fresh task.
func TaskID(b *domain.Booking) string {
	return fmt.Sprintf("booking-reminder:%d:%d", b.ID, b.ScheduledAt.Unix())
}

func NewReminderTask(b *domain.Booking, fireAt time.Time) (*asynq.Task, []asynq.Option, error) {
	body, err := json.Marshal(Payload{BookingID: b.ID, ScheduledAt: b.ScheduledAt.Unix()})
	if err != nil {
		return nil, nil, err
	}
	task := asynq.NewTask(TypeBookingReminder, body)
	opts := []asynq.Option{
		asynq.ProcessAt(fireAt),
		asynq.TaskID(TaskID(b)),
		asynq.MaxRetry(3),
		asynq.Retention(24 * time.Hour),
	}
	return task, opts, nil
}
