package domain

import "time"

type BookingStatus string

const (
	BookingPending    BookingStatus = "pending"
	BookingConfirmed  BookingStatus = "confirmed"
	BookingInProgress BookingStatus = "in_progress"
	BookingCompleted  BookingStatus = "completed"
	BookingCancelled  BookingStatus = "cancelled"
	BookingRejected   BookingStatus = "rejected"
)

// Terminal reports whether no further transition is allowed from s.
func (s BookingStatus) Terminal() bool {
	return s == BookingCompleted || s == BookingCancelled || s == BookingRejected
}

type PaymentStatus string

const (
	PaymentPending           PaymentStatus = "pending"
	PaymentProcessing        PaymentStatus = "processing"
	PaymentCompleted         PaymentStatus = "completed"
	PaymentFailed            PaymentStatus = "failed"
	PaymentRefunded          PaymentStatus = "refunded"
	PaymentPartiallyRefunded PaymentStatus = "partially_refunded"
)

type PayoutStatus string

const (
	PayoutPending    PayoutStatus = "pending"
	PayoutProcessing PayoutStatus = "processing"
	PayoutCompleted  PayoutStatus = "completed"
	PayoutFailed     PayoutStatus = "failed"
)

type Booking struct {
	ID                 int64         `db:"id"`
	CustomerID         int64         `db:"customer_id"`
	ProviderID         *int64        `db:"provider_id"`
	ServiceID          int64         `db:"service_id"`
	Status             BookingStatus `db:"status"`
	ScheduledAt        time.Time     `db:"scheduled_at"`
	StartedAt          *time.Time    `db:"started_at"`
	CompletedAt        *time.Time    `db:"completed_at"`
	CancelledAt        *time.Time    `db:"cancelled_at"`
	TotalAmount        float64       `db:"total_amount"`
	Currency           string        `db:"currency"`
	CancellationReason string        `db:"cancellation_reason"`
	CreatedAt          time.Time     `db:"created_at"`
}

// AssignedTo reports whether providerID is the provider assigned to the booking.
func (b *Booking) AssignedTo(providerID int64) bool {
	return b.ProviderID != nil && *b.ProviderID == providerID
}

type BookingHistory struct {
	ID        int64         `db:"id"`
	BookingID int64         `db:"booking_id"`
	Status    BookingStatus `db:"status"`
	ActorID   int64         `db:"actor_id"`
	Notes     string        `db:"notes"`
	CreatedAt time.Time     `db:"created_at"`
}

type Payment struct {
	ID           int64         `db:"id"`
	BookingID    int64         `db:"booking_id"`
	Amount       float64       `db:"amount"`
	Status       PaymentStatus `db:"status"`
	RefundAmount *float64      `db:"refund_amount"`
	RefundedAt   *time.Time    `db:"refunded_at"`
}

type Payout struct {
	ID                   int64        `db:"id"`
	ProviderID           int64        `db:"provider_id"`
	Amount               float64      `db:"amount"`
	TotalRevenue         float64      `db:"total_revenue"`
	PlatformFee          float64      `db:"platform_fee"`
	Status               PayoutStatus `db:"status"`
	PeriodStart          time.Time    `db:"period_start"`
	PeriodEnd            time.Time    `db:"period_end"`
	BookingCount         int          `db:"booking_count"`
	ProcessedAt          *time.Time   `db:"processed_at"`
	TransactionReference string       `db:"transaction_reference"`
	CreatedAt            time.Time    `db:"created_at"`
}

// PayoutBooking is the claim of one booking's revenue by one payout.
type PayoutBooking struct {
	PayoutID    int64   `db:"payout_id"`
	BookingID   int64   `db:"booking_id"`
	Amount      float64 `db:"amount"`
	PlatformFee float64 `db:"platform_fee"`
}

// SettleableBooking is a completed, paid and unclaimed booking.
type SettleableBooking struct {
	BookingID int64
	Amount    float64
}

type Review struct {
	ID         int64     `db:"id"`
	BookingID  int64     `db:"booking_id"`
	CustomerID int64     `db:"customer_id"`
	ProviderID int64     `db:"provider_id"`
	Rating     int       `db:"rating"`
	Comment    string    `db:"comment"`
	IsVisible  bool      `db:"is_visible"`
	IsVerified bool      `db:"is_verified"`
	CreatedAt  time.Time `db:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"`
}

type ProviderRating struct {
	ProviderID    int64   `db:"id"`
	AverageRating float64 `db:"average_rating"`
	TotalReviews  int     `db:"total_reviews"`
}

type NotificationCategory string

const (
	CategoryBooking  NotificationCategory = "booking"
	CategoryPayment  NotificationCategory = "payment"
	CategoryPayout   NotificationCategory = "payout"
	CategoryReminder NotificationCategory = "reminder"
	CategoryReview   NotificationCategory = "review"
)

type Notification struct {
	ID              string               `json:"id"`
	UserID          int64                `json:"user_id"`
	Title           string               `json:"title"`
	Body            string               `json:"body"`
	Category        NotificationCategory `json:"category"`
	RelatedEntityID int64                `json:"related_entity_id"`
	ActionURL       string               `json:"action_url,omitempty"`
	CreatedAt       time.Time            `json:"created_at"`
}
