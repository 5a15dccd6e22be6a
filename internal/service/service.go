package service

import (
	"github.com/GlebRadaev/homeservices/internal/config"
	"github.com/GlebRadaev/homeservices/internal/handlers/bookings"
	"github.com/GlebRadaev/homeservices/internal/handlers/reviews"
	"github.com/GlebRadaev/homeservices/internal/pg"
	"github.com/GlebRadaev/homeservices/internal/repo"
	"github.com/GlebRadaev/homeservices/internal/service/bookingservice"
	"github.com/GlebRadaev/homeservices/internal/service/payoutservice"
	"github.com/GlebRadaev/homeservices/internal/service/ratingservice"
	"github.com/GlebRadaev/homeservices/internal/settlement"
	"github.com/GlebRadaev/homeservices/pkg/clock"
)

// Deps are the collaborators the services share besides the repositories.
type Deps struct {
	TxManager pg.TXManager
	Notifier  bookingservice.Notifier
	Reminders bookingservice.ReminderScheduler
	Gateway   payoutservice.Gateway
	Clock     clock.Clock
}

type Services struct {
	BookingService bookings.Service
	RatingService  reviews.Service
	PayoutService  settlement.PayoutService
}

func New(repos *repo.Repositories, deps Deps, cfg *config.Config) *Services {
	bookingService := bookingservice.New(
		repos.BookingRepo,
		repos.PaymentRepo,
		repos.ProviderRepo,
		deps.TxManager,
		deps.Notifier,
		deps.Reminders,
		deps.Clock,
	)
	ratingService := ratingservice.New(
		repos.ReviewRepo,
		repos.BookingRepo,
		repos.ProviderRepo,
		deps.TxManager,
		deps.Notifier,
		deps.Clock,
		cfg.ReviewEditWindow,
	)
	payoutService := payoutservice.New(
		repos.PayoutRepo,
		repos.ProviderRepo,
		deps.TxManager,
		deps.Gateway,
		deps.Notifier,
		deps.Clock,
		cfg.CommissionRate,
	)

	return &Services{
		BookingService: bookingService,
		RatingService:  ratingService,
		PayoutService:  payoutService,
	}
}
