package handlers

//go:generate mockgen -source=handlers.go -destination=mock_handlers.go -package=handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/GlebRadaev/homeservices/docs"
	bookinghandlers "github.com/GlebRadaev/homeservices/internal/handlers/bookings"
	payouthandlers "github.com/GlebRadaev/homeservices/internal/handlers/payouts"
	reviewhandlers "github.com/GlebRadaev/homeservices/internal/handlers/reviews"
	"github.com/GlebRadaev/homeservices/internal/service"
	"github.com/GlebRadaev/homeservices/pkg/auth"
)

type BookingHandler interface {
	Accept(w http.ResponseWriter, r *http.Request)
	Reject(w http.ResponseWriter, r *http.Request)
	Start(w http.ResponseWriter, r *http.Request)
	Complete(w http.ResponseWriter, r *http.Request)
	Cancel(w http.ResponseWriter, r *http.Request)
	Reschedule(w http.ResponseWriter, r *http.Request)
	History(w http.ResponseWriter, r *http.Request)
}

type ReviewHandler interface {
	CreateReview(w http.ResponseWriter, r *http.Request)
	UpdateReview(w http.ResponseWriter, r *http.Request)
	DeleteReview(w http.ResponseWriter, r *http.Request)
	SetVisibility(w http.ResponseWriter, r *http.Request)
	SetVerification(w http.ResponseWriter, r *http.Request)
	RecomputeRating(w http.ResponseWriter, r *http.Request)
}

type PayoutHandler interface {
	CreatePayout(w http.ResponseWriter, r *http.Request)
	ProcessPayout(w http.ResponseWriter, r *http.Request)
}

type Handlers struct {
	BookingHandler BookingHandler
	ReviewHandler  ReviewHandler
	PayoutHandler  PayoutHandler
	jwtService     auth.JWTServiceInterface
}

func New(s *service.Services, jwtService auth.JWTServiceInterface) *Handlers {
	return &Handlers{
		BookingHandler: bookinghandlers.New(s.BookingService),
		ReviewHandler:  reviewhandlers.New(s.RatingService),
		PayoutHandler:  payouthandlers.New(s.PayoutService),
		jwtService:     jwtService,
	}
}

func (h *Handlers) InitRoutes(r chi.Router) chi.Router {
	r.Use(
		middleware.RealIP,
		middleware.Recoverer,
		middleware.Logger,
	)
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("doc.json"),
	))
	r.Route("/api", func(r chi.Router) {
		r.Use(auth.AuthMiddleware(h.jwtService))

		r.Route("/bookings/{id}", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				r.Use(auth.RequireRole(auth.RoleProvider))
				r.Post("/accept", h.BookingHandler.Accept)
				r.Post("/reject", h.BookingHandler.Reject)
				r.Post("/start", h.BookingHandler.Start)
				r.Post("/complete", h.BookingHandler.Complete)
			})
			r.Group(func(r chi.Router) {
				r.Use(auth.RequireRole(auth.RoleCustomer, auth.RoleProvider))
				r.Post("/cancel", h.BookingHandler.Cancel)
				r.Post("/reschedule", h.BookingHandler.Reschedule)
				r.Get("/history", h.BookingHandler.History)
			})
		})

		r.Route("/reviews", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				r.Use(auth.RequireRole(auth.RoleCustomer))
				r.Post("/", h.ReviewHandler.CreateReview)
				r.Put("/{id}", h.ReviewHandler.UpdateReview)
				r.Delete("/{id}", h.ReviewHandler.DeleteReview)
			})
			r.Group(func(r chi.Router) {
				r.Use(auth.RequireRole(auth.RoleAdmin))
				r.Patch("/{id}/visibility", h.ReviewHandler.SetVisibility)
				r.Patch("/{id}/verification", h.ReviewHandler.SetVerification)
			})
		})

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireRole(auth.RoleAdmin))
			r.Post("/providers/{id}/rating", h.ReviewHandler.RecomputeRating)
			r.Post("/payouts", h.PayoutHandler.CreatePayout)
			r.Post("/payouts/{id}/process", h.PayoutHandler.ProcessPayout)
		})
	})

	return r
}
