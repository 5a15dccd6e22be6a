package providerrepo

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

func (r *Repository) Exists(ctx context.Context, providerID int64) (bool, error) {
	query := `
        SELECT EXISTS (SELECT 1 FROM providers WHERE id = $1 AND is_active)
    `
	var exists bool
	if err := r.db.QueryRow(ctx, query, providerID).Scan(&exists); err != nil {
		zap.L().Error("can't check provider", zap.Int64("provider_id", providerID), zap.Error(err))
		return false, err
	}
	return exists, nil
}

func (r *Repository) OffersService(ctx context.Context, providerID, serviceID int64) (bool, error) {
	query := `
        SELECT EXISTS (SELECT 1 FROM provider_services WHERE provider_id = $1 AND service_id = $2)
    `
	var offers bool
	if err := r.db.QueryRow(ctx, query, providerID, serviceID).Scan(&offers); err != nil {
		zap.L().Error("can't check provider services", zap.Int64("provider_id", providerID), zap.Error(err))
		return false, err
	}
	return offers, nil
}

// Lock takes the provider row lock that serializes settlement runs and rating
// recomputes for one provider. It reports false when the provider does not exist.
func (r *Repository) Lock(ctx context.Context, providerID int64) (bool, error) {
	query := `
        SELECT id FROM providers WHERE id = $1 FOR UPDATE
    `
	var id int64
	err := r.db.QueryRow(ctx, query, providerID).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		zap.L().Error("can't lock provider", zap.Int64("provider_id", providerID), zap.Error(err))
		return false, err
	}
	return true, nil
}

func (r *Repository) UpdateRating(ctx context.Context, rating *domain.ProviderRating) error {
	query := `
        UPDATE providers
        SET average_rating = $1, total_reviews = $2
        WHERE id = $3
    `
	_, err := r.db.Exec(ctx, query, rating.AverageRating, rating.TotalReviews, rating.ProviderID)
	if err != nil {
		zap.L().Error("can't update provider rating", zap.Int64("provider_id", rating.ProviderID), zap.Error(err))
		return err
	}
	return nil
}
