package bookingservice

import (
	"time"

	"github.com/GlebRadaev/homeservices/internal/domain"
)

type RefundDecision struct {
	Percentage      int     `json:"percentage"`
	Amount          float64 `json:"amount"`
	CancellationFee float64 `json:"cancellation_fee"`
	Reason          string  `json:"reason"`
}

type refundTier struct {
	notice     time.Duration
	percentage int
	reason     string
}

// Ordered from the longest notice down; the first tier whose lower bound is met wins.
var refundTiers = []refundTier{
	{notice: 24 * time.Hour, percentage: 100, reason: "cancelled 24 hours or more before service"},
	{notice: 12 * time.Hour, percentage: 75, reason: "cancelled 12 to 24 hours before service"},
	{notice: 6 * time.Hour, percentage: 50, reason: "cancelled 6 to 12 hours before service"},
	{notice: 2 * time.Hour, percentage: 25, reason: "cancelled 2 to 6 hours before service"},
}

// CalculateRefund decides how much of the booking total goes back to the customer.
func CalculateRefund(b *domain.Booking, isCustomerCancellation bool, now time.Time) RefundDecision {
	percentage, reason := 100, "cancelled by provider"
	if isCustomerCancellation {
		percentage, reason = 0, "cancelled less than 2 hours before service"
		notice := b.ScheduledAt.Sub(now)
		for _, tier := range refundTiers {
			if notice >= tier.notice {
				percentage, reason = tier.percentage, tier.reason
				break
			}
		}
	}

	total := domain.ToCents(b.TotalAmount)
	amount := (total*int64(percentage) + 50) / 100
	return RefundDecision{
		Percentage:      percentage,
		Amount:          domain.FromCents(amount),
		CancellationFee: domain.FromCents(total - amount),
		Reason:          reason,
	}
}
