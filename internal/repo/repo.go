package repo

import (
	"github.com/GlebRadaev/homeservices/internal/pg"
	bookingrepo "github.com/GlebRadaev/homeservices/internal/repo/booking-repo"
	paymentrepo "github.com/GlebRadaev/homeservices/internal/repo/payment-repo"
	payoutrepo "github.com/GlebRadaev/homeservices/internal/repo/payout-repo"
	providerrepo "github.com/GlebRadaev/homeservices/internal/repo/provider-repo"
	reviewrepo "github.com/GlebRadaev/homeservices/internal/repo/review-repo"
)

type Repositories struct {
	BookingRepo  *bookingrepo.Repository
	PaymentRepo  *paymentrepo.Repository
	ProviderRepo *providerrepo.Repository
	PayoutRepo   *payoutrepo.Repository
	ReviewRepo   *reviewrepo.Repository
}

func New(conn pg.Database) *Repositories {
	return &Repositories{
		BookingRepo:  bookingrepo.New(conn),
		PaymentRepo:  paymentrepo.New(conn),
		ProviderRepo: providerrepo.New(conn),
		PayoutRepo:   payoutrepo.New(conn),
		ReviewRepo:   reviewrepo.New(conn),
	}
}
