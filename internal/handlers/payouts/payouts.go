package payouts

//go:generate mockgen -source=payouts.go -destination=mock_payouts.go -package=payouts

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/GlebRadaev/homeservices/internal/domain"
	"github.com/GlebRadaev/homeservices/internal/dto"
	"github.com/GlebRadaev/homeservices/internal/handlers/httperr"
	"github.com/GlebRadaev/homeservices/pkg/utils"
)

type Service interface {
	CreatePayoutBatch(ctx context.Context, providerID int64, periodStart, periodEnd time.Time) (*domain.Payout, error)
	ProcessPayout(ctx context.Context, payoutID int64) (*domain.Payout, error)
}

type PayoutHandler struct {
	payoutService Service
}

func New(payoutService Service) *PayoutHandler {
	return &PayoutHandler{
		payoutService: payoutService,
	}
}

// CreatePayout godoc
//
//	@Summary		Settle a provider's revenue for a period
//	@Description	Claims every completed, paid and unclaimed booking of the provider in the period.
//	@Tags			Admin
//	@Accept			json
//	@Produce		json
//	@Param			request	body	dto.CreatePayoutRequestDTO	true	"Provider and period"
//	@Security		BearerAuth
//	@Success		201	{object}	dto.PayoutResponseDTO
//	@Failure		400	{object}	utils.Response
//	@Failure		404	{object}	utils.Response	"Provider not found"
//	@Failure		409	{object}	utils.Response	"Concurrent settlement, retry"
//	@Failure		422	{object}	utils.Response	"Nothing to settle"
//	@Router			/api/payouts [post]
func (h *PayoutHandler) CreatePayout(w http.ResponseWriter, r *http.Request) {
	var req dto.CreatePayoutRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ProviderID <= 0 {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	payout, err := h.payoutService.CreatePayoutBatch(r.Context(), req.ProviderID, req.PeriodStart, req.PeriodEnd)
	if err != nil {
		httperr.Respond(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, dto.NewPayoutResponse(payout))
}

// ProcessPayout godoc
//
//	@Summary		Transfer a payout
//	@Description	Pending and failed payouts are sent to the payout gateway.
//	@Tags			Admin
//	@Produce		json
//	@Param			id	path	int	true	"Payout ID"
//	@Security		BearerAuth
//	@Success		200	{object}	dto.PayoutResponseDTO
//	@Failure		404	{object}	utils.Response
//	@Failure		409	{object}	utils.Response
//	@Router			/api/payouts/{id}/process [post]
func (h *PayoutHandler) ProcessPayout(w http.ResponseWriter, r *http.Request) {
	payoutID, ok := httperr.PathID(r)
	if !ok {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid payout id")
		return
	}
	payout, err := h.payoutService.ProcessPayout(r.Context(), payoutID)
	if err != nil {
		httperr.Respond(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.NewPayoutResponse(payout))
}
