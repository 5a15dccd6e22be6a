package bookings

//go:generate mockgen -source=bookings.go -destination=mock_bookings.go -package=bookings

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/GlebRadaev/homeservices/internal/domain"
	"github.com/GlebRadaev/homeservices/internal/dto"
	"github.com/GlebRadaev/homeservices/internal/handlers/httperr"
	"github.com/GlebRadaev/homeservices/internal/service/bookingservice"
	"github.com/GlebRadaev/homeservices/pkg/auth"
	"github.com/GlebRadaev/homeservices/pkg/utils"
)

type Service interface {
	Accept(ctx context.Context, bookingID, providerID int64) (*domain.Booking, error)
	Reject(ctx context.Context, bookingID, providerID int64, reason string) (*domain.Booking, error)
	Start(ctx context.Context, bookingID, providerID int64) (*domain.Booking, error)
	Complete(ctx context.Context, bookingID, providerID int64) (*domain.Booking, error)
	Cancel(ctx context.Context, bookingID, userID int64, reason string, isCustomer bool) (*domain.Booking, *bookingservice.RefundDecision, error)
	Reschedule(ctx context.Context, bookingID, userID int64, scheduledAt time.Time, isCustomer bool) (*domain.Booking, error)
	History(ctx context.Context, bookingID, userID int64) ([]domain.BookingHistory, error)
}

type BookingHandler struct {
	bookingService Service
}

func New(bookingService Service) *BookingHandler {
	return &BookingHandler{
		bookingService: bookingService,
	}
}

type providerAction func(ctx context.Context, bookingID, providerID int64) (*domain.Booking, error)

func (h *BookingHandler) runProviderAction(w http.ResponseWriter, r *http.Request, action providerAction) {
	bookingID, ok := httperr.PathID(r)
	if !ok {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid booking id")
		return
	}
	b, err := action(r.Context(), bookingID, auth.UserID(r.Context()))
	if err != nil {
		httperr.Respond(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.NewBookingResponse(b))
}

// Accept godoc
//
//	@Summary		Accept a booking
//	@Description	The provider takes a pending booking addressed to them.
//	@Tags			Bookings
//	@Produce		json
//	@Param			id	path	int	true	"Booking ID"
//	@Security		BearerAuth
//	@Success		200	{object}	dto.BookingResponseDTO
//	@Failure		403	{object}	utils.Response	"Booking is addressed to another provider"
//	@Failure		404	{object}	utils.Response	"Booking or provider not found"
//	@Failure		409	{object}	utils.Response	"Booking is not pending"
//	@Failure		422	{object}	utils.Response	"Provider does not offer the service"
//	@Router			/api/bookings/{id}/accept [post]
func (h *BookingHandler) Accept(w http.ResponseWriter, r *http.Request) {
	h.runProviderAction(w, r, h.bookingService.Accept)
}

// Reject godoc
//
//	@Summary	Reject a booking
//	@Tags		Bookings
//	@Accept		json
//	@Produce	json
//	@Param		id		path	int						true	"Booking ID"
//	@Param		request	body	dto.ReasonRequestDTO	false	"Reason"
//	@Security	BearerAuth
//	@Success	200	{object}	dto.BookingResponseDTO
//	@Failure	403	{object}	utils.Response
//	@Failure	409	{object}	utils.Response
//	@Router		/api/bookings/{id}/reject [post]
func (h *BookingHandler) Reject(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeReason(w, r)
	if !ok {
		return
	}
	h.runProviderAction(w, r, func(ctx context.Context, bookingID, providerID int64) (*domain.Booking, error) {
		return h.bookingService.Reject(ctx, bookingID, providerID, req.Reason)
	})
}

// Start godoc
//
//	@Summary		Start a booking
//	@Description	Allowed for the assigned provider from the scheduled day on.
//	@Tags			Bookings
//	@Produce		json
//	@Param			id	path	int	true	"Booking ID"
//	@Security		BearerAuth
//	@Success		200	{object}	dto.BookingResponseDTO
//	@Failure		409	{object}	utils.Response
//	@Router			/api/bookings/{id}/start [post]
func (h *BookingHandler) Start(w http.ResponseWriter, r *http.Request) {
	h.runProviderAction(w, r, h.bookingService.Start)
}

// Complete godoc
//
//	@Summary	Complete a booking
//	@Tags		Bookings
//	@Produce	json
//	@Param		id	path	int	true	"Booking ID"
//	@Security	BearerAuth
//	@Success	200	{object}	dto.BookingResponseDTO
//	@Failure	409	{object}	utils.Response
//	@Router		/api/bookings/{id}/complete [post]
func (h *BookingHandler) Complete(w http.ResponseWriter, r *http.Request) {
	h.runProviderAction(w, r, h.bookingService.Complete)
}

// Cancel godoc
//
//	@Summary		Cancel a booking
//	@Description	Customer cancellations are refunded by notice tier, provider cancellations in full.
//	@Tags			Bookings
//	@Accept			json
//	@Produce		json
//	@Param			id		path	int						true	"Booking ID"
//	@Param			request	body	dto.ReasonRequestDTO	false	"Reason"
//	@Security		BearerAuth
//	@Success		200	{object}	dto.CancelResponseDTO
//	@Failure		403	{object}	utils.Response
//	@Failure		409	{object}	utils.Response
//	@Router			/api/bookings/{id}/cancel [post]
func (h *BookingHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	bookingID, ok := httperr.PathID(r)
	if !ok {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid booking id")
		return
	}
	req, ok := decodeReason(w, r)
	if !ok {
		return
	}

	ctx := r.Context()
	b, refund, err := h.bookingService.Cancel(ctx, bookingID, auth.UserID(ctx), req.Reason, auth.Role(ctx) == auth.RoleCustomer)
	if err != nil {
		httperr.Respond(w, err)
		return
	}

	resp := dto.CancelResponseDTO{Booking: dto.NewBookingResponse(b)}
	if refund != nil {
		resp.Refund = &dto.RefundResponseDTO{
			Percentage:      refund.Percentage,
			Amount:          refund.Amount,
			CancellationFee: refund.CancellationFee,
			Reason:          refund.Reason,
		}
	}
	utils.RespondWithJSON(w, http.StatusOK, resp)
}

// Reschedule godoc
//
//	@Summary	Move a booking to a new time
//	@Tags		Bookings
//	@Accept		json
//	@Produce	json
//	@Param		id		path	int							true	"Booking ID"
//	@Param		request	body	dto.RescheduleRequestDTO	true	"New time"
//	@Security	BearerAuth
//	@Success	200	{object}	dto.BookingResponseDTO
//	@Failure	400	{object}	utils.Response
//	@Failure	409	{object}	utils.Response	"Less than two hours notice"
//	@Failure	422	{object}	utils.Response	"New time is in the past"
//	@Router		/api/bookings/{id}/reschedule [post]
func (h *BookingHandler) Reschedule(w http.ResponseWriter, r *http.Request) {
	bookingID, ok := httperr.PathID(r)
	if !ok {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid booking id")
		return
	}
	var req dto.RescheduleRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ScheduledAt.IsZero() {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	ctx := r.Context()
	b, err := h.bookingService.Reschedule(ctx, bookingID, auth.UserID(ctx), req.ScheduledAt, auth.Role(ctx) == auth.RoleCustomer)
	if err != nil {
		httperr.Respond(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.NewBookingResponse(b))
}

// History godoc
//
//	@Summary	Booking status history
//	@Tags		Bookings
//	@Produce	json
//	@Param		id	path	int	true	"Booking ID"
//	@Security	BearerAuth
//	@Success	200	{array}		dto.HistoryEntryDTO
//	@Failure	403	{object}	utils.Response
//	@Failure	404	{object}	utils.Response
//	@Router		/api/bookings/{id}/history [get]
func (h *BookingHandler) History(w http.ResponseWriter, r *http.Request) {
	bookingID, ok := httperr.PathID(r)
	if !ok {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid booking id")
		return
	}
	history, err := h.bookingService.History(r.Context(), bookingID, auth.UserID(r.Context()))
	if err != nil {
		httperr.Respond(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.NewHistoryResponse(history))
}

// decodeReason accepts an empty body.
func decodeReason(w http.ResponseWriter, r *http.Request) (dto.ReasonRequestDTO, bool) {
	var req dto.ReasonRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return req, false
	}
	return req, true
}
