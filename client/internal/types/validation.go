package types

import (
	"errors"
	"fmt"
)

// ------------------------------
// Shared Errors
// ------------------------------

// ErrUnauthorized is returned for any 401 response. It short-circuits
// message extraction.
var ErrUnauthorized = errors.New("access unauthorized")

// ErrInvalidID is returned when a required record id is not positive.
var ErrInvalidID = errors.New("invalid id")

// ValidateID rejects ids that cannot name a remote record.
func ValidateID(id int64, field string) error {
	if id <= 0 {
		return fmt.Errorf("%s %d: %w", field, id, ErrInvalidID)
	}
	return nil
}
