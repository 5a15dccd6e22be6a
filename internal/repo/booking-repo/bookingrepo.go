package bookingrepo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/GlebRadaev/homeservices/internal/domain"
	"github.com/GlebRadaev/homeservices/internal/pg"
)

const selectBooking = `
        SELECT id, customer_id, provider_id, service_id, status, scheduled_at, started_at,
               completed_at, cancelled_at, total_amount, currency, cancellation_reason, created_at
        FROM bookings
        WHERE id = $1
    `

type Repository struct {
	db pg.Database
}

func New(db pg.Database) *Repository {
	return &Repository{
		db: db,
	}
}

func scanBooking(row pgx.Row) (*domain.Booking, error) {
	var b domain.Booking
	err := row.Scan(
		&b.ID, &b.CustomerID, &b.ProviderID, &b.ServiceID, &b.Status, &b.ScheduledAt, &b.StartedAt,
		&b.CompletedAt, &b.CancelledAt, &b.TotalAmount, &b.Currency, &b.CancellationReason, &b.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	booking, err := scanBooking(r.db.QueryRow(ctx, selectBooking, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		zap.L().Error("can't get booking", zap.Int64("booking_id", id), zap.Error(err))
		return nil, err
	}
	return booking, nil
}

// GetForUpdate locks the booking row until the surrounding transaction ends.
func (r *Repository) GetForUpdate(ctx context.Context, id int64) (*domain.Booking, error) {
	booking, err := scanBooking(r.db.QueryRow(ctx, selectBooking+" FOR UPDATE", id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		zap.L().Error("can't lock booking", zap.Int64("booking_id", id), zap.Error(err))
		return nil, err
	}
	return booking, nil
}

// Update writes the mutable booking fields only if the stored status still equals from.
func (r *Repository) Update(ctx context.Context, b *domain.Booking, from domain.BookingStatus) error {
	query := `
        UPDATE bookings
        SET provider_id = $1, status = $2, scheduled_at = $3, started_at = $4,
            completed_at = $5, cancelled_at = $6, cancellation_reason = $7
        WHERE id = $8 AND status = $9
    `
	tag, err := r.db.Exec(ctx, query,
		b.ProviderID, string(b.Status), b.ScheduledAt, b.StartedAt,
		b.CompletedAt, b.CancelledAt, b.CancellationReason,
		b.ID, string(from),
	)
	if err != nil {
		zap.L().Error("can't update booking", zap.Int64("booking_id", b.ID), zap.Error(err))
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: booking %d is no longer %s", domain.ErrConcurrencyConflict, b.ID, from)
	}
	return nil
}

func (r *Repository) AddHistory(ctx context.Context, h *domain.BookingHistory) error {
	query := `
        INSERT INTO booking_status_history (booking_id, status, actor_id, notes)
        VALUES ($1, $2, $3, $4)
        RETURNING id, created_at
    `
	err := r.db.QueryRow(ctx, query, h.BookingID, string(h.Status), h.ActorID, h.Notes).Scan(&h.ID, &h.CreatedAt)
	if err != nil {
		zap.L().Error("can't append booking history", zap.Int64("booking_id", h.BookingID), zap.Error(err))
		return err
	}
	return nil
}

func (r *Repository) History(ctx context.Context, bookingID int64) ([]domain.BookingHistory, error) {
	query := `
        SELECT id, booking_id, status, actor_id, notes, created_at
        FROM booking_status_history
        WHERE booking_id = $1
        ORDER BY id ASC
    `
	rows, err := r.db.Query(ctx, query, bookingID)
	if err != nil {
		zap.L().Error("can't get booking history", zap.Int64("booking_id", bookingID), zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var history []domain.BookingHistory
	for rows.Next() {
		var h domain.BookingHistory
		if err := rows.Scan(&h.ID, &h.BookingID, &h.Status, &h.ActorID, &h.Notes, &h.CreatedAt); err != nil {
			zap.L().Error("can't scan booking history row", zap.Error(err))
			return nil, err
		}
		history = append(history, h)
	}
	return history, rows.Err()
}
