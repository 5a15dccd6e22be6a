package reminder

import (
	"context"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

type Worker struct {
	srv *asynq.Server
	mux *asynq.ServeMux
}

func NewWorker(redis asynq.RedisConnOpt, concurrency int, handler *Handler) *Worker {
	srv := asynq.NewServer(redis, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			"default": 1,
		},
	})
	mux := asynq.NewServeMux()
	mux.Handle(TypeBookingReminder, handler)
	return &Worker{srv: srv, mux: mux}
}

// Run processes reminder tasks until ctx is done.
func (w *Worker) Run(ctx context.Context) error {
	if err := w.srv.Start(w.mux); err != nil {
		return err
	}
	zap.L().Info("reminder worker started")
	<-ctx.Done()
	w.srv.Shutdown()
	zap.L().Info("reminder worker stopped")
	return nil
}
