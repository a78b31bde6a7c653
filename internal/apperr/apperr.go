package apperr

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

var (
	ErrInvalidInput     = errors.New("invalid input")     // 400
	ErrForbidden        = errors.New("forbidden")         // 403
	ErrNotFound         = errors.New("not found")         // 404
	ErrConflict         = errors.New("conflict")          // 409
	ErrCheckoutFailed   = errors.New("checkout failed")   // 502, cart preserved
	ErrStoreUnavailable = errors.New("store unavailable") // 503, retryable
)

func Invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

// Store normalizes a record-store error into the taxonomy: a missing record is
// NotFound, everything else is a transient store failure the caller may retry.
func Store(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	}
	return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
}
