package client

import (
	"errors"

	"github.com/travelmate/tripplanner/client/internal/api"
	sdkerrors "github.com/travelmate/tripplanner/client/internal/errors"
	"github.com/travelmate/tripplanner/client/internal/types"
)

// Re-export shared SDK errors so callers compare against a single symbol.
var (
	ErrUnauthorized       = types.ErrUnauthorized
	ErrInvalidID          = types.ErrInvalidID
	ErrMissingAccessToken = api.ErrMissingAccessToken
	ErrNegativeMoney      = types.ErrNegativeMoney
)

// APIError is a non-2xx, non-401 response. Message holds the server's cause.
type APIError = sdkerrors.ClassifiedError

// IsUnauthorized reports whether err came from a 401 response.
func IsUnauthorized(err error) bool { return errors.Is(err, ErrUnauthorized) }

// AsAPIError extracts the *APIError from err's chain.
func AsAPIError(err error) (*APIError, bool) {
	var ae *APIError
	if errors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}

// IsNetworkError reports whether err is a transport failure with no HTTP status.
func IsNetworkError(err error) bool {
	ae, ok := AsAPIError(err)
	return ok && ae.StatusCode == 0
}
