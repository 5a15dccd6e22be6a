package service

import (
	"testing"
	"time"

	pgxmock "github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gomock "go.uber.org/mock/gomock"

	"github.com/GlebRadaev/homeservices/internal/config"
	"github.com/GlebRadaev/homeservices/internal/pg"
	"github.com/GlebRadaev/homeservices/internal/reminder"
	"github.com/GlebRadaev/homeservices/internal/repo"
	"github.com/GlebRadaev/homeservices/internal/service/bookingservice"
	"github.com/GlebRadaev/homeservices/internal/service/payoutservice"
	"github.com/GlebRadaev/homeservices/pkg/clock"
)

func TestNew(t *testing.T) {
	ctrl := gomock.NewController(t)
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	deps := Deps{
		TxManager: pg.NewMockTXManager(ctrl),
		Notifier:  bookingservice.NewMockNotifier(ctrl),
		Reminders: reminder.Nop{},
		Gateway:   payoutservice.NewMockGateway(ctrl),
		Clock:     clock.Real{},
	}
	cfg := &config.Config{CommissionRate: 0.15, ReviewEditWindow: 7 * 24 * time.Hour}

	services := New(repo.New(mock), deps, cfg)

	assert.NotNil(t, services.BookingService)
	assert.NotNil(t, services.RatingService)
	assert.NotNil(t, services.PayoutService)
	assert.IsType(t, &bookingservice.Service{}, services.BookingService)
	assert.IsType(t, &payoutservice.Service{}, services.PayoutService)
}
