package dto

import (
	"time"

	"github.com/GlebRadaev/homeservices/internal/domain"
)

type CreateReviewRequestDTO struct {
	BookingID int64  `json:"booking_id" example:"1"`
	Rating    int    `json:"rating" example:"5"`
	Comment   string `json:"comment" example:"Great job"`
}

type UpdateReviewRequestDTO struct {
	Rating  int    `json:"rating" example:"4"`
	Comment string `json:"comment" example:"Good job"`
}

type VisibilityRequestDTO struct {
	Visible bool `json:"visible" example:"false"`
}

type VerificationRequestDTO struct {
	Verified bool `json:"verified" example:"true"`
}

type ReviewResponseDTO struct {
	ID         int64     `json:"id" example:"1"`
	BookingID  int64     `json:"booking_id" example:"1"`
	ProviderID int64     `json:"provider_id" example:"7"`
	Rating     int       `json:"rating" example:"5"`
	Comment    string    `json:"comment"`
	IsVisible  bool      `json:"is_visible" example:"true"`
	IsVerified bool      `json:"is_verified" example:"false"`
	CreatedAt  time.Time `json:"created_at"`
}

type RatingResponseDTO struct {
	ProviderID    int64   `json:"provider_id" example:"7"`
	AverageRating float64 `json:"average_rating" example:"4.5"`
	TotalReviews  int     `json:"total_reviews" example:"2"`
}

func NewReviewResponse(r *domain.Review) ReviewResponseDTO {
	return ReviewResponseDTO{
		ID:         r.ID,
		BookingID:  r.BookingID,
		ProviderID: r.ProviderID,
		Rating:     r.Rating,
		Comment:    r.Comment,
		IsVisible:  r.IsVisible,
		IsVerified: r.IsVerified,
		CreatedAt:  r.CreatedAt,
	}
}
