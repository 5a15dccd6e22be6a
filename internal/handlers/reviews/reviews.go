package reviews

//go:generate mockgen -source=reviews.go -destination=mock_reviews.go -package=reviews

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/GlebRadaev/homeservices/internal/domain"
	"github.com/GlebRadaev/homeservices/internal/dto"
	"github.com/GlebRadaev/homeservices/internal/handlers/httperr"
	"github.com/GlebRadaev/homeservices/pkg/auth"
	"github.com/GlebRadaev/homeservices/pkg/utils"
)

type Service interface {
	CreateReview(ctx context.Context, customerID, bookingID int64, rating int, comment string) (*domain.Review, error)
	UpdateReview(ctx context.Context, customerID, reviewID int64, rating int, comment string) (*domain.Review, error)
	DeleteReview(ctx context.Context, customerID, reviewID int64) error
	SetReviewVisibility(ctx context.Context, reviewID int64, visible bool) (*domain.Review, error)
	SetReviewVerified(ctx context.Context, reviewID int64, verified bool) (*domain.Review, error)
	RecomputeProviderRating(ctx context.Context, providerID int64) (*domain.ProviderRating, error)
}

type ReviewHandler struct {
	ratingService Service
}

func New(ratingService Service) *ReviewHandler {
	return &ReviewHandler{
		ratingService: ratingService,
	}
}

// CreateReview godoc
//
//	@Summary		Review a completed booking
//	@Description	One review per booking, written by the booking's customer.
//	@Tags			Reviews
//	@Accept			json
//	@Produce		json
//	@Param			request	body	dto.CreateReviewRequestDTO	true	"Review"
//	@Security		BearerAuth
//	@Success		201	{object}	dto.ReviewResponseDTO
//	@Failure		400	{object}	utils.Response
//	@Failure		403	{object}	utils.Response	"Not the booking's customer"
//	@Failure		409	{object}	utils.Response	"Booking not completed or already reviewed"
//	@Failure		422	{object}	utils.Response	"Rating out of range"
//	@Router			/api/reviews [post]
func (h *ReviewHandler) CreateReview(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateReviewRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.BookingID <= 0 {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	review, err := h.ratingService.CreateReview(r.Context(), auth.UserID(r.Context()), req.BookingID, req.Rating, req.Comment)
	if err != nil {
		httperr.Respond(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, dto.NewReviewResponse(review))
}

// UpdateReview godoc
//
//	@Summary	Edit own review
//	@Tags		Reviews
//	@Accept		json
//	@Produce	json
//	@Param		id		path	int							true	"Review ID"
//	@Param		request	body	dto.UpdateReviewRequestDTO	true	"Review"
//	@Security	BearerAuth
//	@Success	200	{object}	dto.ReviewResponseDTO
//	@Failure	409	{object}	utils.Response	"Edit window closed"
//	@Router		/api/reviews/{id} [put]
func (h *ReviewHandler) UpdateReview(w http.ResponseWriter, r *http.Request) {
	reviewID, ok := httperr.PathID(r)
	if !ok {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid review id")
		return
	}
	var req dto.UpdateReviewRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	review, err := h.ratingService.UpdateReview(r.Context(), auth.UserID(r.Context()), reviewID, req.Rating, req.Comment)
	if err != nil {
		httperr.Respond(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.NewReviewResponse(review))
}

// DeleteReview godoc
//
//	@Summary	Delete own review
//	@Tags		Reviews
//	@Param		id	path	int	true	"Review ID"
//	@Security	BearerAuth
//	@Success	204
//	@Failure	403	{object}	utils.Response
//	@Failure	404	{object}	utils.Response
//	@Router		/api/reviews/{id} [delete]
func (h *ReviewHandler) DeleteReview(w http.ResponseWriter, r *http.Request) {
	reviewID, ok := httperr.PathID(r)
	if !ok {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid review id")
		return
	}
	if err := h.ratingService.DeleteReview(r.Context(), auth.UserID(r.Context()), reviewID); err != nil {
		httperr.Respond(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SetVisibility godoc
//
//	@Summary	Hide or show a review
//	@Tags		Admin
//	@Accept		json
//	@Produce	json
//	@Param		id		path	int							true	"Review ID"
//	@Param		request	body	dto.VisibilityRequestDTO	true	"Visibility"
//	@Security	BearerAuth
//	@Success	200	{object}	dto.ReviewResponseDTO
//	@Router		/api/reviews/{id}/visibility [patch]
func (h *ReviewHandler) SetVisibility(w http.ResponseWriter, r *http.Request) {
	reviewID, ok := httperr.PathID(r)
	if !ok {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid review id")
		return
	}
	var req dto.VisibilityRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	review, err := h.ratingService.SetReviewVisibility(r.Context(), reviewID, req.Visible)
	if err != nil {
		httperr.Respond(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.NewReviewResponse(review))
}

// SetVerification godoc
//
//	@Summary	Mark a review as verified
//	@Tags		Admin
//	@Accept		json
//	@Produce	json
//	@Param		id		path	int							true	"Review ID"
//	@Param		request	body	dto.VerificationRequestDTO	true	"Verification"
//	@Security	BearerAuth
//	@Success	200	{object}	dto.ReviewResponseDTO
//	@Router		/api/reviews/{id}/verification [patch]
func (h *ReviewHandler) SetVerification(w http.ResponseWriter, r *http.Request) {
	reviewID, ok := httperr.PathID(r)
	if !ok {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid review id")
		return
	}
	var req dto.VerificationRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	review, err := h.ratingService.SetReviewVerified(r.Context(), reviewID, req.Verified)
	if err != nil {
		httperr.Respond(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.NewReviewResponse(review))
}

// RecomputeRating godoc
//
//	@Summary	Rebuild a provider's rating from visible reviews
//	@Tags		Admin
//	@Produce	json
//	@Param		id	path	int	true	"Provider ID"
//	@Security	BearerAuth
//	@Success	200	{object}	dto.RatingResponseDTO
//	@Failure	404	{object}	utils.Response
//	@Router		/api/providers/{id}/rating [post]
func (h *ReviewHandler) RecomputeRating(w http.ResponseWriter, r *http.Request) {
	providerID, ok := httperr.PathID(r)
	if !ok {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid provider id")
		return
	}
	rating, err := h.ratingService.RecomputeProviderRating(r.Context(), providerID)
	if err != nil {
		httperr.Respond(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.RatingResponseDTO{
		ProviderID:    rating.ProviderID,
		AverageRating: rating.AverageRating,
		TotalReviews:  rating.TotalReviews,
	})
}
