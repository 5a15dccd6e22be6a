package dto

import (
	"time"

	"github.com/GlebRadaev/homeservices/internal/domain"
)

type CreatePayoutRequestDTO struct {
	ProviderID  int64     `json:"provider_id" example:"7"`
	PeriodStart time.Time `json:"period_start" example:"2026-09-01T00:00:00Z"`
	PeriodEnd   time.Time `json:"period_end" example:"2026-10-01T00:00:00Z"`
}

type PayoutResponseDTO struct {
	ID                   int64      `json:"id" example:"21"`
	ProviderID           int64      `json:"provider_id" example:"7"`
	Amount               float64    `json:"amount" example:"170"`
	TotalRevenue         float64    `json:"total_revenue" example:"200"`
	PlatformFee          float64    `json:"platform_fee" example:"30"`
	Status               string     `json:"status" example:"pending"`
	PeriodStart          time.Time  `json:"period_start"`
	PeriodEnd            time.Time  `json:"period_end"`
	BookingCount         int        `json:"booking_count" example:"2"`
	ProcessedAt          *time.Time `json:"processed_at,omitempty"`
	TransactionReference string     `json:"transaction_reference,omitempty"`
}

func NewPayoutResponse(p *domain.Payout) PayoutResponseDTO {
	return PayoutResponseDTO{
		ID:                   p.ID,
		ProviderID:           p.ProviderID,
		Amount:               p.Amount,
		TotalRevenue:         p.TotalRevenue,
		PlatformFee:          p.PlatformFee,
		Status:               string(p.Status),
		PeriodStart:          p.PeriodStart,
		PeriodEnd:            p.PeriodEnd,
		BookingCount:         p.BookingCount,
		ProcessedAt:          p.ProcessedAt,
		TransactionReference: p.TransactionReference,
	}
}
