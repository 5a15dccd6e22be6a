package reviewrepo

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/GlebRadaev/homeservices/internal/domain"
	"github.com/GlebRadaev/homeservices/internal/pg"
)

const selectReview = `
        SELECT id, booking_id, customer_id, provider_id, rating, comment, is_visible, is_verified, created_at, updated_at
        FROM reviews
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

func (r *Repository) Create(ctx context.Context, review *domain.Review) error {
	query := `
        INSERT INTO reviews (booking_id, customer_id, provider_id, rating, comment, is_visible, is_verified)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        RETURNING id, created_at, updated_at
    `
	err := r.db.QueryRow(ctx, query,
		review.BookingID, review.CustomerID, review.ProviderID, review.Rating, review.Comment, review.IsVisible, review.IsVerified,
	).Scan(&review.ID, &review.CreatedAt, &review.UpdatedAt)
	if err != nil {
		zap.L().Error("can't create review", zap.Int64("booking_id", review.BookingID), zap.Error(err))
		return err
	}
	return nil
}

// GetForUpdate locks the review row until the surrounding transaction ends.
func (r *Repository) GetForUpdate(ctx context.Context, id int64) (*domain.Review, error) {
	var review domain.Review
	err := r.db.QueryRow(ctx, selectReview+" FOR UPDATE", id).Scan(
		&review.ID, &review.BookingID, &review.CustomerID, &review.ProviderID, &review.Rating,
		&review.Comment, &review.IsVisible, &review.IsVerified, &review.CreatedAt, &review.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		zap.L().Error("can't get review", zap.Int64("review_id", id), zap.Error(err))
		return nil, err
	}
	return &review, nil
}

func (r *Repository) ExistsForBooking(ctx context.Context, bookingID int64) (bool, error) {
	query := `
        SELECT EXISTS (SELECT 1 FROM reviews WHERE booking_id = $1)
    `
	var exists bool
	if err := r.db.QueryRow(ctx, query, bookingID).Scan(&exists); err != nil {
		zap.L().Error("can't check review", zap.Int64("booking_id", bookingID), zap.Error(err))
		return false, err
	}
	return exists, nil
}

func (r *Repository) Update(ctx context.Context, review *domain.Review) error {
	query := `
        UPDATE reviews
        SET rating = $1, comment = $2, is_visible = $3, is_verified = $4, updated_at = now()
        WHERE id = $5
        RETURNING updated_at
    `
	err := r.db.QueryRow(ctx, query,
		review.Rating, review.Comment, review.IsVisible, review.IsVerified, review.ID,
	).Scan(&review.UpdatedAt)
	if err != nil {
		zap.L().Error("can't update review", zap.Int64("review_id", review.ID), zap.Error(err))
		return err
	}
	return nil
}

func (r *Repository) Delete(ctx context.Context, id int64) error {
	query := `
        DELETE FROM reviews WHERE id = $1
    `
	if _, err := r.db.Exec(ctx, query, id); err != nil {
		zap.L().Error("can't delete review", zap.Int64("review_id", id), zap.Error(err))
		return err
	}
	return nil
}

// VisibleRatings returns the rating of every visible review of the provider.
func (r *Repository) VisibleRatings(ctx context.Context, providerID int64) ([]int, error) {
	query := `
        SELECT rating FROM reviews WHERE provider_id = $1 AND is_visible
    `
	rows, err := r.db.Query(ctx, query, providerID)
	if err != nil {
		zap.L().Error("can't get visible ratings", zap.Int64("provider_id", providerID), zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var ratings []int
	for rows.Next() {
		var rating int
		if err := rows.Scan(&rating); err != nil {
			zap.L().Error("can't scan rating", zap.Error(err))
			return nil, err
		}
		ratings = append(ratings, rating)
	}
	return ratings, rows.Err()
}
