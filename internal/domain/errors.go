package domain

import "errors"

// Error kinds returned by the booking, settlement and rating services.
// Services wrap them with a reason: fmt.Errorf("%w: ...", ErrInvalidState).
var (
	ErrNotFound            = errors.New("not found")
	ErrInvalidState        = errors.New("invalid state")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrInvalidInput        = errors.New("invalid input")
	ErrNotEligible         = errors.New("not eligible")
	ErrNothingToSettle     = errors.New("nothing to settle")
	ErrConcurrencyConflict = errors.New("concurrency conflict")
)

// Retryable reports whether the whole operation may be repeated from the start.
func Retryable(err error) bool {
	return errors.Is(err, ErrConcurrencyConflict)
}
