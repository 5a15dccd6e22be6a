package notify

//go:generate mockgen -source=notify.go -destination=mock_notify.go -package=notify

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/GlebRadaev/homeservices/internal/domain"
)

const sendTimeout = 5 * time.Second

// Sender delivers one notification to its channel.
type Sender interface {
	Send(ctx context.Context, n domain.Notification) error
}

// Dispatcher delivers notifications in the background. Delivery is at most
// once: a full queue drops the notification and a failed send is not retried.
type Dispatcher struct {
	sender  Sender
	queue   chan domain.Notification
	workers int
	wg      sync.WaitGroup
}

func NewDispatcher(sender Sender, queueSize, workers int) *Dispatcher {
	if workers < 1 {
		workers = 1
	}
	return &Dispatcher{
		sender:  sender,
		queue:   make(chan domain.Notification, queueSize),
		workers: workers,
	}
}

// Notify enqueues n without blocking the caller.
func (d *Dispatcher) Notify(_ context.Context, n domain.Notification) {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}
	select {
	case d.queue <- n:
	default:
		zap.L().Warn("notification queue is full, dropping",
			zap.Int64("user_id", n.UserID),
			zap.String("category", string(n.Category)),
			zap.Int64("related_entity_id", n.RelatedEntityID),
		)
	}
}

// Start runs the workers until ctx is done.
func (d *Dispatcher) Start(ctx context.Context) {
	for i := 0; i < d.workers; i++ {
		d.wg.Add(1)
		go func() {
			defer d.wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case n := <-d.queue:
					d.send(ctx, n)
				}
			}
		}()
	}
}

// Wait blocks until every worker has stopped.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

func (d *Dispatcher) send(ctx context.Context, n domain.Notification) {
	ctx, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()
	if err := d.sender.Send(ctx, n); err != nil {
		zap.L().Warn("can't deliver notification",
			zap.String("notification_id", n.ID),
			zap.Int64("user_id", n.UserID),
			zap.Error(err),
		)
	}
}
