package payoutrepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/GlebRadaev/homeservices/internal/domain"
	"github.com/GlebRadaev/homeservices/internal/pg"
)

const selectPayout = `
        SELECT id, provider_id, amount, total_revenue, platform_fee, status, period_start, period_end,
               booking_count, processed_at, transaction_reference, created_at
        FROM payouts
    `

type Repository struct {
	db pg.Database
}

func New(db pg.Database) *Repository {
	return &Repository{
		db: db,
	}
}

func scanPayout(row pgx.Row) (*domain.Payout, error) {
	var p domain.Payout
	err := row.Scan(
		&p.ID, &p.ProviderID, &p.Amount, &p.TotalRevenue, &p.PlatformFee, &p.Status, &p.PeriodStart, &p.PeriodEnd,
		&p.BookingCount, &p.ProcessedAt, &p.TransactionReference, &p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// FindSettleable returns the provider's completed and paid bookings in the
// period that no payout has claimed yet, locking the booking rows.
func (r *Repository) FindSettleable(ctx context.Context, providerID int64, periodStart, periodEnd time.Time) ([]domain.SettleableBooking, error) {
	query := `
        SELECT b.id, p.amount
        FROM bookings b
        JOIN payments p ON p.booking_id = b.id
        WHERE b.provider_id = $1
          AND b.status = 'completed'
          AND b.completed_at BETWEEN $2 AND $3
          AND p.status = 'completed'
          AND NOT EXISTS (SELECT 1 FROM payout_bookings pb WHERE pb.booking_id = b.id)
        ORDER BY b.completed_at ASC, b.id ASC
        FOR UPDATE OF b
    `
	rows, err := r.db.Query(ctx, query, providerID, periodStart, periodEnd)
	if err != nil {
		zap.L().Error("can't get settleable bookings", zap.Int64("provider_id", providerID), zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var bookings []domain.SettleableBooking
	for rows.Next() {
		var b domain.SettleableBooking
		if err := rows.Scan(&b.BookingID, &b.Amount); err != nil {
			zap.L().Error("can't scan settleable booking", zap.Error(err))
			return nil, err
		}
		bookings = append(bookings, b)
	}
	return bookings, rows.Err()
}

func (r *Repository) Create(ctx context.Context, p *domain.Payout) error {
	query := `
        INSERT INTO payouts (provider_id, amount, total_revenue, platform_fee, status, period_start, period_end, booking_count)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
        RETURNING id, created_at
    `
	err := r.db.QueryRow(ctx, query,
		p.ProviderID, p.Amount, p.TotalRevenue, p.PlatformFee, string(p.Status), p.PeriodStart, p.PeriodEnd, p.BookingCount,
	).Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		zap.L().Error("can't create payout", zap.Int64("provider_id", p.ProviderID), zap.Error(err))
		return err
	}
	return nil
}

// AddBookings claims bookings for a payout. UNIQUE(booking_id) rejects a second claim.
func (r *Repository) AddBookings(ctx context.Context, items []domain.PayoutBooking) error {
	query := `
        INSERT INTO payout_bookings (payout_id, booking_id, amount, platform_fee)
        VALUES ($1, $2, $3, $4)
    `
	for _, item := range items {
		if _, err := r.db.Exec(ctx, query, item.PayoutID, item.BookingID, item.Amount, item.PlatformFee); err != nil {
			zap.L().Error("can't claim booking", zap.Int64("payout_id", item.PayoutID), zap.Int64("booking_id", item.BookingID), zap.Error(err))
			return err
		}
	}
	return nil
}

// ProvidersWithUnsettled lists providers owning at least one settleable booking in the period.
func (r *Repository) ProvidersWithUnsettled(ctx context.Context, periodStart, periodEnd time.Time, limit uint32) ([]int64, error) {
	query := `
        SELECT DISTINCT b.provider_id
        FROM bookings b
        JOIN payments p ON p.booking_id = b.id
        WHERE b.status = 'completed'
          AND b.completed_at BETWEEN $1 AND $2
          AND p.status = 'completed'
          AND NOT EXISTS (SELECT 1 FROM payout_bookings pb WHERE pb.booking_id = b.id)
        ORDER BY b.provider_id
        LIMIT $3
    `
	rows, err := r.db.Query(ctx, query, periodStart, periodEnd, int(limit))
	if err != nil {
		zap.L().Error("can't get providers with unsettled revenue", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var providers []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			zap.L().Error("can't scan provider id", zap.Error(err))
			return nil, err
		}
		providers = append(providers, id)
	}
	return providers, rows.Err()
}

// FindPending returns pending payouts and processing ones whose last transfer
// attempt started before staleBefore.
func (r *Repository) FindPending(ctx context.Context, staleBefore time.Time, limit uint32) ([]domain.Payout, error) {
	query := selectPayout + `
        WHERE status = 'pending'
           OR (status = 'processing' AND processed_at < $1)
        ORDER BY created_at ASC
        LIMIT $2
    `
	rows, err := r.db.Query(ctx, query, staleBefore, int(limit))
	if err != nil {
		zap.L().Error("can't get pending payouts", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var payouts []domain.Payout
	for rows.Next() {
		p, err := scanPayout(rows)
		if err != nil {
			zap.L().Error("can't scan payout row", zap.Error(err))
			return nil, err
		}
		payouts = append(payouts, *p)
	}
	return payouts, rows.Err()
}

func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Payout, error) {
	p, err := scanPayout(r.db.QueryRow(ctx, selectPayout+" WHERE id = $1", id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		zap.L().Error("can't get payout", zap.Int64("payout_id", id), zap.Error(err))
		return nil, err
	}
	return p, nil
}

// UpdateStatus moves the payout out of from; only status, processed_at and
// transaction_reference are ever written after creation.
func (r *Repository) UpdateStatus(ctx context.Context, p *domain.Payout, from domain.PayoutStatus) error {
	query := `
        UPDATE payouts
        SET status = $1, processed_at = $2, transaction_reference = $3
        WHERE id = $4 AND status = $5
    `
	tag, err := r.db.Exec(ctx, query, string(p.Status), p.ProcessedAt, p.TransactionReference, p.ID, string(from))
	if err != nil {
		zap.L().Error("can't update payout status", zap.Int64("payout_id", p.ID), zap.Error(err))
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: payout %d is no longer %s", domain.ErrConcurrencyConflict, p.ID, from)
	}
	return nil
}
