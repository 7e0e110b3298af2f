// Package errs contains sentinel errors used across layers for stable error mapping.
package errs

import (
	"errors"
	"fmt"
	"time"
)

// Common sentinels across repo/service layers.
var (
	// ErrNotFound indicates the requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrUnauthorized indicates a missing/invalid caller identity or a denied request.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrRateLimited indicates the caller exhausted its request quota.
	ErrRateLimited = errors.New("rate limit exceeded")

	// ErrAlreadyExists indicates a unique constraint violation (e.g., external id taken).
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidMood indicates a mood identifier that does not resolve in the catalog.
	ErrInvalidMood = errors.New("invalid mood")

	// ErrInvalidInput indicates a request that failed validation.
	ErrInvalidInput = errors.New("validation")

	// ErrPersistence indicates a storage failure not covered by other sentinels.
	ErrPersistence = errors.New("persistence failure")
)

// Per-entity not-found errors; each matches ErrNotFound.
var (
	ErrUserNotFound       = fmt.Errorf("user %w", ErrNotFound)
	ErrEntryNotFound      = fmt.Errorf("entry %w", ErrNotFound)
	ErrCollectionNotFound = fmt.Errorf("collection %w", ErrNotFound)
)

// RateLimitError carries quota diagnostics of a rate-limit denial.
// Remaining and Reset are meant for logs only.
type RateLimitError struct {
	Remaining int64
	Reset     time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limit exceeded (remaining=%d, reset=%s)", e.Remaining, e.Reset)
}

// Unwrap makes errors.Is(err, ErrRateLimited) hold.
func (e *RateLimitError) Unwrap() error { return ErrRateLimited }

// Invalid returns an ErrInvalidInput wrapping the given reason.
func Invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}
