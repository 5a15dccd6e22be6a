package app

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/GlebRadaev/homeservices/internal/config"
	"github.com/GlebRadaev/homeservices/internal/handlers"
	"github.com/GlebRadaev/homeservices/internal/notify"
	"github.com/GlebRadaev/homeservices/internal/pg"
	"github.com/GlebRadaev/homeservices/internal/reminder"
	"github.com/GlebRadaev/homeservices/internal/repo"
	"github.com/GlebRadaev/homeservices/internal/service"
	"github.com/GlebRadaev/homeservices/internal/service/bookingservice"
	"github.com/GlebRadaev/homeservices/internal/settlement"
	"github.com/GlebRadaev/homeservices/pkg/auth"
	"github.com/GlebRadaev/homeservices/pkg/clients"
	"github.com/GlebRadaev/homeservices/pkg/clock"
	"github.com/GlebRadaev/homeservices/pkg/logger"
)

const (
	notifyQueueSize   = 1024
	notifyWorkers     = 4
	settlementWorkers = 10
	reminderWorkers   = 5
	shutdownTimeout   = 5 * time.Second
)

type ApplicationI interface {
	Start(ctx context.Context) error
	Wait(ctx context.Context, cancel context.CancelFunc) error
}

type Application struct {
	cfg        *config.Config
	api        *handlers.Handlers
	srv        *service.Services
	repo       *repo.Repositories
	dispatcher *notify.Dispatcher
	scheduler  *settlement.Scheduler
	pool       *settlement.WorkerPool
	reminders  *reminder.Worker
	closers    []func() error

	errCh chan error
	wg    sync.WaitGroup
	ready bool
}

func New() *Application {
	return &Application{
		errCh: make(chan error),
	}
}

func (a *Application) Start(ctx context.Context) error {
	cfg := config.New()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	err := logger.InitLogger(cfg)
	if err != nil {
		return fmt.Errorf("can't init logger: %w", err)
	}

	pool, err := getPgxpool(ctx, cfg)
	if err != nil {
		zap.L().Error("build pgx pool failed: ", zap.Error(err))
		return fmt.Errorf("can't build pgx pool: %w", err)
	}
	a.closers = append(a.closers, func() error { pool.Close(); return nil })
	if err := pg.RunMigrations(pool); err != nil {
		zap.L().Error("migrations failed: ", zap.Error(err))
		return fmt.Errorf("can't run migrations: %w", err)
	}
	txManager := pg.NewTXManager(pool)
	conn := pg.New(pool)

	sender, err := a.notificationSender(cfg)
	if err != nil {
		return fmt.Errorf("can't connect to broker: %w", err)
	}
	a.dispatcher = notify.NewDispatcher(sender, notifyQueueSize, notifyWorkers)

	a.cfg = cfg
	a.repo = repo.New(conn)

	var (
		reminders bookingservice.ReminderScheduler = reminder.Nop{}
		locker    settlement.Locker                = settlement.NopLocker{}
	)
	if cfg.RedisAddress != "" {
		redisOpt := asynq.RedisClientOpt{Addr: cfg.RedisAddress}
		asynqClient := asynq.NewClient(redisOpt)
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddress})
		a.closers = append(a.closers, asynqClient.Close, rdb.Close)

		reminders = reminder.NewScheduler(asynqClient, cfg.ReminderLead, clock.Real{})
		locker = settlement.NewRedisLocker(rdb)
		a.reminders = reminder.NewWorker(redisOpt, reminderWorkers, reminder.NewHandler(a.repo.BookingRepo, a.dispatcher))
	} else {
		zap.L().Warn("REDIS_ADDRESS is not set, booking reminders are disabled")
	}

	a.srv = service.New(a.repo, service.Deps{
		TxManager: txManager,
		Notifier:  a.dispatcher,
		Reminders: reminders,
		Gateway:   settlement.NewGateway(cfg.GatewayAddress, clients.NewHTTPClient(cfg.GatewayTimeout)),
		Clock:     clock.Real{},
	}, cfg)
	a.api = handlers.New(a.srv, auth.NewJWTService(cfg.JWTSecret))

	a.pool = settlement.NewWorkerPool(settlementWorkers)
	a.scheduler = settlement.NewScheduler(
		a.srv.PayoutService,
		a.repo.PayoutRepo,
		locker,
		a.pool,
		clock.Real{},
		cfg.SettleInterval,
		cfg.SettleLookback,
	)

	a.startDispatcher(ctx)

	if err = a.startHTTPServer(ctx); err != nil {
		return fmt.Errorf("can't start http server: %w", err)
	}

	a.startSettlement(ctx)
	a.startReminderWorker(ctx)

	a.ready = true
	zap.L().Info("all systems started successfully")
	return nil
}

func (a *Application) notificationSender(cfg *config.Config) (notify.Sender, error) {
	if cfg.RabbitURL == "" {
		zap.L().Warn("RABBIT_URL is not set, notifications go to the log")
		return notify.LogSender{}, nil
	}
	sender, err := notify.NewAMQPSender(cfg.RabbitURL, cfg.NotifyExchange)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, sender.Close)
	return sender, nil
}

func getPgxpool(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	cfgpool, err := pgxpool.ParseConfig(cfg.Database)
	if err != nil {
		return nil, err
	}
	dbpool, err := pgxpool.NewWithConfig(ctx, cfgpool)
	if err != nil {
		return nil, err
	}
	if err = dbpool.Ping(ctx); err != nil {
		dbpool.Close()
		return nil, err
	}
	return dbpool, nil
}

func (a *Application) startDispatcher(ctx context.Context) {
	a.dispatcher.Start(ctx)

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		a.dispatcher.Wait()
	}()
}

func (a *Application) startHTTPServer(ctx context.Context) error {
	router := chi.NewRouter()
	a.api.InitRoutes(router)
	server := http.Server{
		Addr:    a.cfg.Address,
		Handler: router,
	}
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		<-ctx.Done()

		sCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(sCtx); err != nil {
			zap.L().Error("http server shutdown failed", zap.Error(err))
		}
	}()

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		zap.L().Info("starting http server on port", zap.String("port", a.cfg.Address))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.errCh <- fmt.Errorf("http server exited with error: %w", err)
		}
	}()

	return nil
}

func (a *Application) startSettlement(ctx context.Context) {
	a.scheduler.Start(ctx)

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		<-ctx.Done()
		a.pool.Close()
	}()
}

func (a *Application) startReminderWorker(ctx context.Context) {
	if a.reminders == nil {
		return
	}
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		if err := a.reminders.Run(ctx); err != nil {
			a.errCh <- fmt.Errorf("reminder worker exited with error: %w", err)
		}
	}()
}

func (a *Application) Wait(ctx context.Context, cancel context.CancelFunc) error {
	var appErr error

	var wg sync.WaitGroup
	wg.Add(1)

	go func() {
		defer wg.Done()

		for err := range a.errCh {
			cancel()
			zap.L().Error(err.Error())
			appErr = err
		}
	}()

	<-ctx.Done()
	a.wg.Wait()
	close(a.errCh)
	wg.Wait()

	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			zap.L().Warn("can't release resource", zap.Error(err))
		}
	}

	return appErr
}
