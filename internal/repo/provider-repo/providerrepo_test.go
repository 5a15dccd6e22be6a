package providerrepo

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"

	"github.com/GlebRadaev/homeservices/internal/domain"
)

func NewMock(t *testing.T) (*Repository, pgxmock.PgxPoolIface) {
	mockDB, err := pgxmock.NewPool()
	assert.NoError(t, err)
	t.Cleanup(mockDB.Close)
	return New(mockDB), mockDB
}

func TestRepository_Exists(t *testing.T) {
	repo, mock := NewMock(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT EXISTS (SELECT 1 FROM providers WHERE id = $1 AND is_active)`)).
		WithArgs(int64(7)).
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))

	exists, err := repo.Exists(context.Background(), 7)

	assert.NoError(t, err)
	assert.True(t, exists)
}

func TestRepository_OffersService(t *testing.T) {
	const query = `SELECT EXISTS (SELECT 1 FROM provider_services WHERE provider_id = $1 AND service_id = $2)`

	tests := []struct {
		name      string
		mockSetup func(mock pgxmock.PgxPoolIface)
		want      bool
		expectErr bool
	}{
		{
			name: "Offers the service",
			mockSetup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(regexp.QuoteMeta(query)).
					WithArgs(int64(7), int64(9)).
					WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))
			},
			want: true,
		},
		{
			name: "Does not offer the service",
			mockSetup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(regexp.QuoteMeta(query)).
					WithArgs(int64(7), int64(9)).
					WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))
			},
		},
		{
			name: "Database error",
			mockSetup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(regexp.QuoteMeta(query)).
					WithArgs(int64(7), int64(9)).
					WillReturnError(errors.New("database error"))
			},
			expectErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock := NewMock(t)
			tt.mockSetup(mock)

			offers, err := repo.OffersService(context.Background(), 7, 9)

			if tt.expectErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.want, offers)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestRepository_Lock(t *testing.T) {
	const query = `SELECT id FROM providers WHERE id = $1 FOR UPDATE`

	t.Run("Locked", func(t *testing.T) {
		repo, mock := NewMock(t)
		mock.ExpectQuery(regexp.QuoteMeta(query)).
			WithArgs(int64(7)).
			WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(7)))

		ok, err := repo.Lock(context.Background(), 7)

		assert.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("Missing provider", func(t *testing.T) {
		repo, mock := NewMock(t)
		mock.ExpectQuery(regexp.QuoteMeta(query)).
			WithArgs(int64(8)).
			WillReturnError(pgx.ErrNoRows)

		ok, err := repo.Lock(context.Background(), 8)

		assert.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestRepository_UpdateRating(t *testing.T) {
	repo, mock := NewMock(t)

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE providers SET average_rating = $1, total_reviews = $2 WHERE id = $3`)).
		WithArgs(4.5, 2, int64(7)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err := repo.UpdateRating(context.Background(), &domain.ProviderRating{ProviderID: 7, AverageRating: 4.5, TotalReviews: 2})

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
