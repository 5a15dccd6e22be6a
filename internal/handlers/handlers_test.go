package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	gomock "go.uber.org/mock/gomock"

	"github.com/GlebRadaev/homeservices/internal/handlers/bookings"
	"github.com/GlebRadaev/homeservices/internal/settlement"
	"github.com/GlebRadaev/homeservices/internal/handlers/reviews"
	"github.com/GlebRadaev/homeservices/internal/service"
	"github.com/GlebRadaev/homeservices/pkg/auth"
)

func TestNew(t *testing.T) {
	ctrl := gomock.NewController(t)

	services := &service.Services{
		BookingService: bookings.NewMockService(ctrl),
		RatingService:  reviews.NewMockService(ctrl),
		PayoutService:  settlement.NewMockPayoutService(ctrl),
	}

	h := New(services, auth.NewJWTService("secret"))
	assert.NotNil(t, h, "Handlers should not be nil")
}

func TestInitRoutes(t *testing.T) {
	ctrl := gomock.NewController(t)

	ok := func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) }

	bookingHandler := NewMockBookingHandler(ctrl)
	reviewHandler := NewMockReviewHandler(ctrl)
	payoutHandler := NewMockPayoutHandler(ctrl)
	for _, call := range []*gomock.Call{
		bookingHandler.EXPECT().Accept(gomock.Any(), gomock.Any()),
		bookingHandler.EXPECT().Reject(gomock.Any(), gomock.Any()),
		bookingHandler.EXPECT().Start(gomock.Any(), gomock.Any()),
		bookingHandler.EXPECT().Complete(gomock.Any(), gomock.Any()),
		bookingHandler.EXPECT().Cancel(gomock.Any(), gomock.Any()),
		bookingHandler.EXPECT().Reschedule(gomock.Any(), gomock.Any()),
		bookingHandler.EXPECT().History(gomock.Any(), gomock.Any()),
		reviewHandler.EXPECT().CreateReview(gomock.Any(), gomock.Any()),
		reviewHandler.EXPECT().UpdateReview(gomock.Any(), gomock.Any()),
		reviewHandler.EXPECT().DeleteReview(gomock.Any(), gomock.Any()),
		reviewHandler.EXPECT().SetVisibility(gomock.Any(), gomock.Any()),
		reviewHandler.EXPECT().SetVerification(gomock.Any(), gomock.Any()),
		reviewHandler.EXPECT().RecomputeRating(gomock.Any(), gomock.Any()),
		payoutHandler.EXPECT().CreatePayout(gomock.Any(), gomock.Any()),
		payoutHandler.EXPECT().ProcessPayout(gomock.Any(), gomock.Any()),
	} {
		call.Do(ok).AnyTimes()
	}

	jwtService := auth.NewJWTService("secret")
	h := &Handlers{
		BookingHandler: bookingHandler,
		ReviewHandler:  reviewHandler,
		PayoutHandler:  payoutHandler,
		jwtService:     jwtService,
	}

	router := chi.NewRouter()
	h.InitRoutes(router)

	token := func(role string) string {
		s, _ := jwtService.GenerateJWT(1, role, time.Now().Add(time.Hour))
		return s
	}

	tests := []struct {
		method string
		url    string
		role   string
		status int
	}{
		{"POST", "/api/bookings/1/accept", "", http.StatusUnauthorized},
		{"POST", "/api/bookings/1/accept", auth.RoleProvider, http.StatusOK},
		{"POST", "/api/bookings/1/accept", auth.RoleCustomer, http.StatusForbidden},
		{"POST", "/api/bookings/1/reject", auth.RoleProvider, http.StatusOK},
		{"POST", "/api/bookings/1/start", auth.RoleProvider, http.StatusOK},
		{"POST", "/api/bookings/1/complete", auth.RoleProvider, http.StatusOK},
		{"POST", "/api/bookings/1/cancel", auth.RoleCustomer, http.StatusOK},
		{"POST", "/api/bookings/1/cancel", auth.RoleProvider, http.StatusOK},
		{"POST", "/api/bookings/1/reschedule", auth.RoleCustomer, http.StatusOK},
		{"GET", "/api/bookings/1/history", auth.RoleProvider, http.StatusOK},
		{"POST", "/api/reviews", auth.RoleCustomer, http.StatusOK},
		{"POST", "/api/reviews", auth.RoleProvider, http.StatusForbidden},
		{"PUT", "/api/reviews/5", auth.RoleCustomer, http.StatusOK},
		{"DELETE", "/api/reviews/5", auth.RoleCustomer, http.StatusOK},
		{"PATCH", "/api/reviews/5/visibility", auth.RoleAdmin, http.StatusOK},
		{"PATCH", "/api/reviews/5/visibility", auth.RoleCustomer, http.StatusForbidden},
		{"PATCH", "/api/reviews/5/verification", auth.RoleAdmin, http.StatusOK},
		{"POST", "/api/providers/7/rating", auth.RoleAdmin, http.StatusOK},
		{"POST", "/api/payouts", auth.RoleAdmin, http.StatusOK},
		{"POST", "/api/payouts", auth.RoleProvider, http.StatusForbidden},
		{"POST", "/api/payouts/21/process", auth.RoleAdmin, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.url+" "+tt.role, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.url, nil)
			if tt.role != "" {
				req.Header.Set("Authorization", "Bearer "+token(tt.role))
			}
			rec := httptest.NewRecorder()

			router.ServeHTTP(rec, req)

			assert.Equal(t, tt.status, rec.Code)
		})
	}
}
