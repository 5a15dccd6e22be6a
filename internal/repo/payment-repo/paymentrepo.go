package paymentrepo

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/GlebRadaev/homeservices/internal/domain"
	"github.com/GlebRadaev/homeservices/internal/pg"
)

type Repository struct {
	db pg.Database
}

func New(db pg.Database) *Repository {
	return &Repository{
		db: db,
	}
}

// GetByBookingIDForUpdate returns the booking's payment locked for the current transaction.
func (r *Repository) GetByBookingIDForUpdate(ctx context.Context, bookingID int64) (*domain.Payment, error) {
	query := `
        SELECT id, booking_id, amount, status, refund_amount, refunded_at
        FROM payments
        WHERE booking_id = $1
        FOR UPDATE
    `
	var p domain.Payment
	err := r.db.QueryRow(ctx, query, bookingID).
		Scan(&p.ID, &p.BookingID, &p.Amount, &p.Status, &p.RefundAmount, &p.RefundedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		zap.L().Error("can't get payment", zap.Int64("booking_id", bookingID), zap.Error(err))
		return nil, err
	}
	return &p, nil
}

func (r *Repository) ApplyRefund(ctx context.Context, p *domain.Payment) error {
	query := `
        UPDATE payments
        SET status = $1, refund_amount = $2, refunded_at = $3
        WHERE id = $4
    `
	_, err := r.db.Exec(ctx, query, string(p.Status), p.RefundAmount, p.RefundedAt, p.ID)
	if err != nil {
		zap.L().Error("can't apply refund", zap.Int64("payment_id", p.ID), zap.Error(err))
		return err
	}
	return nil
}
