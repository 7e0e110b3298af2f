package errs

import (
	"errors"
	"strings"
)

// Kind returns a stable label for logs and metrics.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, ErrRateLimited):
		return "rate_limited"
	case errors.Is(err, ErrUserNotFound):
		return "user_not_found"
	case errors.Is(err, ErrEntryNotFound):
		return "entry_not_found"
	case errors.Is(err, ErrCollectionNotFound):
		return "collection_not_found"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrInvalidMood):
		return "invalid_mood"
	case errors.Is(err, ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, ErrAlreadyExists):
		return "already_exists"
	case errors.Is(err, ErrPersistence):
		return "persistence"
	default:
		return "internal"
	}
}

// Message collapses err into the flat text shown to end users.
// Quota details and storage errors never leak through it.
func Message(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrUnauthorized):
		return "Unauthorized"
	case errors.Is(err, ErrRateLimited):
		return "Rate limit exceeded"
	case errors.Is(err, ErrUserNotFound):
		return "User not found"
	case errors.Is(err, ErrEntryNotFound):
		return "Entry not found"
	case errors.Is(err, ErrCollectionNotFound):
		return "Collection not found"
	case errors.Is(err, ErrNotFound):
		return "Not found"
	case errors.Is(err, ErrInvalidMood):
		return "Invalid mood"
	case errors.Is(err, ErrInvalidInput):
		msg := err.Error()
		if i := strings.Index(msg, ErrInvalidInput.Error()+": "); i >= 0 {
			msg = msg[i+len(ErrInvalidInput.Error())+2:]
		}
		return msg
	case errors.Is(err, ErrAlreadyExists):
		return "Already exists"
	default:
		return "Something went wrong"
	}
}
