package reminder

import (
	"context"
	"errors"
	"time"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"github.com/GlebRadaev/homeservices/internal/domain"
	"github.com/GlebRadaev/homeservices/pkg/clock"
)

type enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// Scheduler enqueues a reminder lead before the booking's scheduled time.
type Scheduler struct {
	client enqueuer
	lead   time.Duration
	clock  clock.Clock
}

func NewScheduler(client *asynq.Client, lead time.Duration, clk clock.Clock) *Scheduler {
	return &Scheduler{client: client, lead: lead, clock: clk}
}

func (s *Scheduler) Schedule(ctx context.Context, b *domain.Booking) error {
	fireAt := b.ScheduledAt.Add(-s.lead)
	if !fireAt.After(s.clock.Now()) {
		zap.L().Debug("reminder time already passed", zap.Int64("booking_id", b.ID))
		return nil
	}

	task, opts, err := NewReminderTask(b, fireAt)
	if err != nil {
		return err
	}
	info, err := s.client.EnqueueContext(ctx, task, opts...)
	if errors.Is(err, asynq.ErrTaskIDConflict) {
		return nil
	}
	if err != nil {
		return err
	}
	zap.L().Debug("reminder scheduled", zap.Int64("booking_id", b.ID), zap.String("task_id", info.ID), zap.Time("fire_at", fireAt))
	return nil
}

// Nop is used when no Redis is configured.
type Nop struct{}

func (Nop) Schedule(context.Context, *domain.Booking) error {
	return nil
}
