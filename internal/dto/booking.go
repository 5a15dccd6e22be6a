package dto

import (
	"time"

	"github.com/GlebRadaev/homeservices/internal/domain"
)

type ReasonRequestDTO struct {
	Reason string `json:"reason" example:"Customer is not at home"`
}

type RescheduleRequestDTO struct {
	ScheduledAt time.Time `json:"scheduled_at" example:"2026-10-20T10:00:00Z"`
}

type BookingResponseDTO struct {
	ID                 int64      `json:"id" example:"1"`
	CustomerID         int64      `json:"customer_id" example:"10"`
	ProviderID         *int64     `json:"provider_id,omitempty" example:"7"`
	ServiceID          int64      `json:"service_id" example:"3"`
	Status             string     `json:"status" example:"confirmed"`
	ScheduledAt        time.Time  `json:"scheduled_at"`
	StartedAt          *time.Time `json:"started_at,omitempty"`
	CompletedAt        *time.Time `json:"completed_at,omitempty"`
	CancelledAt        *time.Time `json:"cancelled_at,omitempty"`
	TotalAmount        float64    `json:"total_amount" example:"100"`
	Currency           string     `json:"currency" example:"USD"`
	CancellationReason string     `json:"cancellation_reason,omitempty"`
}

type RefundResponseDTO struct {
	Percentage      int     `json:"percentage" example:"75"`
	Amount          float64 `json:"amount" example:"75"`
	CancellationFee float64 `json:"cancellation_fee" example:"25"`
	Reason          string  `json:"reason"`
}

type CancelResponseDTO struct {
	Booking BookingResponseDTO `json:"booking"`
	Refund  *RefundResponseDTO `json:"refund,omitempty"`
}

type HistoryEntryDTO struct {
	Status    string    `json:"status" example:"confirmed"`
	ActorID   int64     `json:"actor_id" example:"7"`
	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func NewBookingResponse(b *domain.Booking) BookingResponseDTO {
	return BookingResponseDTO{
		ID:                 b.ID,
		CustomerID:         b.CustomerID,
		ProviderID:         b.ProviderID,
		ServiceID:          b.ServiceID,
		Status:             string(b.Status),
		ScheduledAt:        b.ScheduledAt,
		StartedAt:          b.StartedAt,
		CompletedAt:        b.CompletedAt,
		CancelledAt:        b.CancelledAt,
		TotalAmount:        b.TotalAmount,
		Currency:           b.Currency,
		CancellationReason: b.CancellationReason,
	}
}

func NewHistoryResponse(history []domain.BookingHistory) []HistoryEntryDTO {
	out := make([]HistoryEntryDTO, 0, len(history))
	for _, h := range history {
		out = append(out, HistoryEntryDTO{
			Status:    string(h.Status),
			ActorID:   h.ActorID,
			Notes:     h.Notes,
			CreatedAt: h.CreatedAt,
		})
	}
	return out
}
