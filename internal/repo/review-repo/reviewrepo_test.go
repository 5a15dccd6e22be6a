package reviewrepo

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"

	"github.com/GlebRadaev/homeservices/internal/domain"
)

const selectSQL = `SELECT id, booking_id, customer_id, provider_id, rating, comment, is_visible, is_verified, created_at, updated_at FROM reviews WHERE id = $1 FOR UPDATE`

func NewMock(t *testing.T) (*Repository, pgxmock.PgxPoolIface) {
	mockDB, err := pgxmock.NewPool()
	assert.NoError(t, err)
	t.Cleanup(mockDB.Close)
	return New(mockDB), mockDB
}

func TestRepository_Create(t *testing.T) {
	repo, mock := NewMock(t)
	now := time.Now()
	review := &domain.Review{BookingID: 1, CustomerID: 2, ProviderID: 7, Rating: 5, Comment: "great", IsVisible: true}

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO reviews (booking_id, customer_id, provider_id, rating, comment, is_visible, is_verified) VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id, created_at, updated_at`)).
		WithArgs(int64(1), int64(2), int64(7), 5, "great", true, false).
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(int64(11), now, now))

	assert.NoError(t, repo.Create(context.Background(), review))
	assert.Equal(t, int64(11), review.ID)
	assert.Equal(t, now, review.UpdatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_GetForUpdate(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name      string
		mockSetup func(mock pgxmock.PgxPoolIface)
		want      *domain.Review
		expectErr bool
	}{
		{
			name: "Review exists",
			mockSetup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(regexp.QuoteMeta(selectSQL)).
					WithArgs(int64(11)).
					WillReturnRows(pgxmock.NewRows([]string{"id", "booking_id", "customer_id", "provider_id", "rating", "comment", "is_visible", "is_verified", "created_at", "updated_at"}).
						AddRow(int64(11), int64(1), int64(2), int64(7), 4, "ok", true, false, now, now))
			},
			want: &domain.Review{ID: 11, BookingID: 1, CustomerID: 2, ProviderID: 7, Rating: 4, Comment: "ok", IsVisible: true, CreatedAt: now, UpdatedAt: now},
		},
		{
			name: "Review not found",
			mockSetup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(regexp.QuoteMeta(selectSQL)).WithArgs(int64(11)).WillReturnError(pgx.ErrNoRows)
			},
		},
		{
			name: "Database error",
			mockSetup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(regexp.QuoteMeta(selectSQL)).WithArgs(int64(11)).WillReturnError(errors.New("database error"))
			},
			expectErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock := NewMock(t)
			tt.mockSetup(mock)

			got, err := repo.GetForUpdate(context.Background(), 11)

			if tt.expectErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRepository_ExistsForBooking(t *testing.T) {
	repo, mock := NewMock(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT EXISTS (SELECT 1 FROM reviews WHERE booking_id = $1)`)).
		WithArgs(int64(1)).
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))

	exists, err := repo.ExistsForBooking(context.Background(), 1)

	assert.NoError(t, err)
	assert.True(t, exists)
}

func TestRepository_Update(t *testing.T) {
	repo, mock := NewMock(t)
	now := time.Now()
	review := &domain.Review{ID: 11, Rating: 3, Comment: "meh", IsVisible: false, IsVerified: true}

	mock.ExpectQuery(regexp.QuoteMeta(`UPDATE reviews SET rating = $1, comment = $2, is_visible = $3, is_verified = $4, updated_at = now() WHERE id = $5 RETURNING updated_at`)).
		WithArgs(3, "meh", false, true, int64(11)).
		WillReturnRows(pgxmock.NewRows([]string{"updated_at"}).AddRow(now))

	assert.NoError(t, repo.Update(context.Background(), review))
	assert.Equal(t, now, review.UpdatedAt)
}

func TestRepository_Delete(t *testing.T) {
	repo, mock := NewMock(t)

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM reviews WHERE id = $1`)).
		WithArgs(int64(11)).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	assert.NoError(t, repo.Delete(context.Background(), 11))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_VisibleRatings(t *testing.T) {
	const query = `SELECT rating FROM reviews WHERE provider_id = $1 AND is_visible`

	t.Run("Visible reviews", func(t *testing.T) {
		repo, mock := NewMock(t)
		mock.ExpectQuery(regexp.QuoteMeta(query)).
			WithArgs(int64(7)).
			WillReturnRows(pgxmock.NewRows([]string{"rating"}).AddRow(5).AddRow(4))

		ratings, err := repo.VisibleRatings(context.Background(), 7)

		assert.NoError(t, err)
		assert.Equal(t, []int{5, 4}, ratings)
	})

	t.Run("No reviews", func(t *testing.T) {
		repo, mock := NewMock(t)
		mock.ExpectQuery(regexp.QuoteMeta(query)).
			WithArgs(int64(7)).
			WillReturnRows(pgxmock.NewRows([]string{"rating"}))

		ratings, err := repo.VisibleRatings(context.Background(), 7)

		assert.NoError(t, err)
		assert.Empty(t, ratings)
	})
}
