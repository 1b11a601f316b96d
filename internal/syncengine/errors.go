package syncengine

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/travelmate/tripplanner/client"
	"github.com/travelmate/tripplanner/internal/draft"
	"github.com/travelmate/tripplanner/internal/session"
)

var (
	// ErrNotAuthenticated is returned before any request when no usable token exists.
	ErrNotAuthenticated = errors.New("not authenticated")
	// ErrCapacityReached is matched by *CapacityError.
	ErrCapacityReached = errors.New("itinerary limit reached")
	// ErrSaveInProgress refuses a save of another draft while one is in flight.
	ErrSaveInProgress = errors.New("a save is already in progress")
	// ErrScheduleUnavailable is returned when an itinerary cannot be loaded for editing.
	ErrScheduleUnavailable = errors.New("failed to load schedule")
	// ErrDeleteInProgress is returned when the card is already being deleted.
	ErrDeleteInProgress = errors.New("delete already in progress")
)

// CapacityError reports the user's schedule count against the limit.
type CapacityError struct {
	Limit int
	Count int
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("itinerary limit reached: %d of %d", e.Count, e.Limit)
}

// Is makes errors.Is(err, ErrCapacityReached) hold.
func (e *CapacityError) Is(target error) bool { return target == ErrCapacityReached }

// Kind groups errors by how the front end should react.
type Kind int

const (
	KindNone Kind = iota
	KindValidation
	KindAuth
	KindCapacity
	KindIdentity
	KindNetworkOrServer
	KindBusy
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindValidation:
		return "validation"
	case KindAuth:
		return "auth"
	case KindCapacity:
		return "capacity"
	case KindIdentity:
		return "identity"
	case KindNetworkOrServer:
		return "network_or_server"
	case KindBusy:
		return "busy"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Classify maps err onto a Kind.
func Classify(err error) Kind {
	var verr *draft.ValidationError
	switch {
	case err == nil:
		return KindNone
	case errors.As(err, &verr):
		return KindValidation
	case errors.Is(err, ErrNotAuthenticated), client.IsUnauthorized(err):
		return KindAuth
	case errors.Is(err, ErrCapacityReached):
		return KindCapacity
	case errors.Is(err, session.ErrIdentityUnresolved):
		return KindIdentity
	case errors.Is(err, ErrSaveInProgress), errors.Is(err, ErrDeleteInProgress), errors.Is(err, draft.ErrAlreadySaved):
		return KindBusy
	default:
		return KindNetworkOrServer
	}
}

// UserMessage renders err for display. Server messages are shown verbatim.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var (
		verr *draft.ValidationError
		cerr *CapacityError
	)
	switch Classify(err) {
	case KindValidation:
		if errors.As(err, &verr) {
			msgs := make([]string, 0, len(verr.Failures))
			for _, f := range verr.Failures {
				msgs = append(msgs, capitalize(f.Message()))
			}
			return strings.Join(msgs, ". ") + "."
		}
	case KindAuth:
		return session.ReasonUnauthorized + ". Please log in again."
	case KindCapacity:
		if errors.As(err, &cerr) {
			return fmt.Sprintf("You can keep at most %d itineraries. Delete one before creating another.", cerr.Limit)
		}
		return "You have reached the itinerary limit."
	case KindIdentity:
		return "Session error: please log in again."
	case KindBusy:
		if errors.Is(err, draft.ErrAlreadySaved) {
			return "This itinerary has already been saved."
		}
		return capitalize(ErrSaveInProgress.Error()) + "."
	}

	if ae, ok := client.AsAPIError(err); ok {
		if ae.StatusCode == 0 {
			return "Could not reach the server. Check your connection and try again."
		}
		if ae.Message != "" {
			return ae.Message
		}
	}
	if errors.Is(err, ErrScheduleUnavailable) {
		return "Failed to load schedule."
	}
	return err.Error()
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if size == 0 {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
