package ratingservice

//go:generate mockgen -source=ratingservice.go -destination=mock_ratingservice.go -package=ratingservice

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/GlebRadaev/homeservices/internal/domain"
	"github.com/GlebRadaev/homeservices/pkg/clock"
)

type Repo interface {
	Create(ctx context.Context, review *domain.Review) error
	GetForUpdate(ctx context.Context, id int64) (*domain.Review, error)
	ExistsForBooking(ctx context.Context, bookingID int64) (bool, error)
	Update(ctx context.Context, review *domain.Review) error
	Delete(ctx context.Context, id int64) error
	VisibleRatings(ctx context.Context, providerID int64) ([]int, error)
}

type BookingRepo interface {
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
}

type ProviderRepo interface {
	Lock(ctx context.Context, providerID int64) (bool, error)
	UpdateRating(ctx context.Context, rating *domain.ProviderRating) error
}

type TxManager interface {
	Begin(ctx context.Context, fn func(ctx context.Context) error) error
}

type Notifier interface {
	Notify(ctx context.Context, n domain.Notification)
}

type Service struct {
	repo       Repo
	bookings   BookingRepo
	providers  ProviderRepo
	tx         TxManager
	notifier   Notifier
	clock      clock.Clock
	editWindow time.Duration
}

func New(repo Repo, bookings BookingRepo, providers ProviderRepo, tx TxManager, notifier Notifier, clk clock.Clock, editWindow time.Duration) *Service {
	return &Service{
		repo:       repo,
		bookings:   bookings,
		providers:  providers,
		tx:         tx,
		notifier:   notifier,
		clock:      clk,
		editWindow: editWindow,
	}
}

// RecomputeProviderRating rebuilds the provider aggregate from the live set of
// visible reviews. It joins the caller's transaction when there is one.
func (s *Service) RecomputeProviderRating(ctx context.Context, providerID int64) (*domain.ProviderRating, error) {
	var rating *domain.ProviderRating
	err := s.tx.Begin(ctx, func(ctx context.Context) error {
		var err error
		rating, err = s.recompute(ctx, providerID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return rating, nil
}

func (s *Service) recompute(ctx context.Context, providerID int64) (*domain.ProviderRating, error) {
	ok, err := s.providers.Lock(ctx, providerID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: provider %d", domain.ErrNotFound, providerID)
	}

	ratings, err := s.repo.VisibleRatings(ctx, providerID)
	if err != nil {
		return nil, err
	}
	rating := aggregate(providerID, ratings)
	if err := s.providers.UpdateRating(ctx, rating); err != nil {
		return nil, err
	}
	zap.L().Debug("provider rating recomputed",
		zap.Int64("provider_id", providerID),
		zap.Float64("average", rating.AverageRating),
		zap.Int("reviews", rating.TotalReviews),
	)
	return rating, nil
}

func aggregate(providerID int64, ratings []int) *domain.ProviderRating {
	if len(ratings) == 0 {
		return &domain.ProviderRating{ProviderID: providerID}
	}
	var sum int
	for _, r := range ratings {
		sum += r
	}
	return &domain.ProviderRating{
		ProviderID:    providerID,
		AverageRating: domain.Round2(float64(sum) / float64(len(ratings))),
		TotalReviews:  len(ratings),
	}
}

func validRating(rating int) error {
	if rating < 1 || rating > 5 {
		return fmt.Errorf("%w: rating must be between 1 and 5, got %d", domain.ErrInvalidInput, rating)
	}
	return nil
}

func (s *Service) CreateReview(ctx context.Context, customerID, bookingID int64, rating int, comment string) (*domain.Review, error) {
	if err := validRating(rating); err != nil {
		return nil, err
	}

	var review *domain.Review
	err := s.tx.Begin(ctx, func(ctx context.Context) error {
		b, err := s.bookings.GetByID(ctx, bookingID)
		if err != nil {
			return err
		}
		if b == nil {
			return fmt.Errorf("%w: booking %d", domain.ErrNotFound, bookingID)
		}
		if b.CustomerID != customerID {
			return fmt.Errorf("%w: user %d is not the customer of booking %d", domain.ErrUnauthorized, customerID, bookingID)
		}
		if b.Status != domain.BookingCompleted || b.ProviderID == nil {
			return fmt.Errorf("%w: booking %d is %s, only completed bookings can be reviewed", domain.ErrInvalidState, bookingID, b.Status)
		}
		exists, err := s.repo.ExistsForBooking(ctx, bookingID)
		if err != nil {
			return err
		}
		if exists {
			return fmt.Errorf("%w: booking %d already has a review", domain.ErrInvalidState, bookingID)
		}

		review = &domain.Review{
			BookingID:  bookingID,
			CustomerID: customerID,
			ProviderID: *b.ProviderID,
			Rating:     rating,
			Comment:    comment,
			IsVisible:  true,
		}
		if err := s.repo.Create(ctx, review); err != nil {
			return err
		}
		_, err = s.recompute(ctx, review.ProviderID)
		return err
	})
	if err != nil {
		zap.L().Info("review not created", zap.Int64("booking_id", bookingID), zap.Error(err))
		return nil, err
	}

	s.notifier.Notify(ctx, domain.Notification{
		UserID:          review.ProviderID,
		Title:           "New review",
		Body:            fmt.Sprintf("You received a %d-star review", review.Rating),
		Category:        domain.CategoryReview,
		RelatedEntityID: review.ID,
		ActionURL:       fmt.Sprintf("/reviews/%d", review.ID),
		CreatedAt:       s.clock.Now(),
	})
	return review, nil
}

// mutate locks the review, applies change and recomputes the provider
// aggregate when change reports that it moved the rating or visibility.
func (s *Service) mutate(ctx context.Context, reviewID int64, change func(r *domain.Review) (bool, error)) (*domain.Review, error) {
	var review *domain.Review
	err := s.tx.Begin(ctx, func(ctx context.Context) error {
		r, err := s.repo.GetForUpdate(ctx, reviewID)
		if err != nil {
			return err
		}
		if r == nil {
			return fmt.Errorf("%w: review %d", domain.ErrNotFound, reviewID)
		}
		affectsRating, err := change(r)
		if err != nil {
			return err
		}
		if err := s.repo.Update(ctx, r); err != nil {
			return err
		}
		if affectsRating {
			if _, err := s.recompute(ctx, r.ProviderID); err != nil {
				return err
			}
		}
		review = r
		return nil
	})
	if err != nil {
		zap.L().Info("review not changed", zap.Int64("review_id", reviewID), zap.Error(err))
		return nil, err
	}
	return review, nil
}

func (s *Service) UpdateReview(ctx context.Context, customerID, reviewID int64, rating int, comment string) (*domain.Review, error) {
	if err := validRating(rating); err != nil {
		return nil, err
	}
	return s.mutate(ctx, reviewID, func(r *domain.Review) (bool, error) {
		if r.CustomerID != customerID {
			return false, fmt.Errorf("%w: review %d belongs to another customer", domain.ErrUnauthorized, reviewID)
		}
		if s.clock.Now().Sub(r.CreatedAt) > s.editWindow {
			return false, fmt.Errorf("%w: review %d can no longer be edited", domain.ErrInvalidState, reviewID)
		}
		changed := r.Rating != rating
		r.Rating = rating
		r.Comment = comment
		return changed && r.IsVisible, nil
	})
}

func (s *Service) SetReviewVisibility(ctx context.Context, reviewID int64, visible bool) (*domain.Review, error) {
	return s.mutate(ctx, reviewID, func(r *domain.Review) (bool, error) {
		changed := r.IsVisible != visible
		r.IsVisible = visible
		return changed, nil
	})
}

// SetReviewVerified flags the review as verified; the aggregate does not depend on it.
func (s *Service) SetReviewVerified(ctx context.Context, reviewID int64, verified bool) (*domain.Review, error) {
	return s.mutate(ctx, reviewID, func(r *domain.Review) (bool, error) {
		r.IsVerified = verified
		return false, nil
	})
}

func (s *Service) DeleteReview(ctx context.Context, customerID, reviewID int64) error {
	err := s.tx.Begin(ctx, func(ctx context.Context) error {
		r, err := s.repo.GetForUpdate(ctx, reviewID)
		if err != nil {
			return err
		}
		if r == nil {
			return fmt.Errorf("%w: review %d", domain.ErrNotFound, reviewID)
		}
		if r.CustomerID != customerID {
			return fmt.Errorf("%w: review %d belongs to another customer", domain.ErrUnauthorized, reviewID)
		}
		if err := s.repo.Delete(ctx, reviewID); err != nil {
			return err
		}
		_, err = s.recompute(ctx, r.ProviderID)
		return err
	})
	if err != nil {
		zap.L().Info("review not deleted", zap.Int64("review_id", reviewID), zap.Error(err))
		return err
	}
	return nil
}
