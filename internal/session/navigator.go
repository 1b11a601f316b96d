package session

// Destination names a place the front end can be sent to.
type Destination string

const (
	// DestLogin is the sign-in entry point, used when the session ends.
	DestLogin Destination = "login"
	// DestItineraryList is the list of saved itineraries.
	DestItineraryList Destination = "itinerary-list"
)

// Navigator moves the user elsewhere. The CLI and TUI decide what that means
// (print a hint, quit the program, switch views).
type Navigator interface {
	Navigate(dest Destination, reason string)
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(dest Destination, reason string)

// Navigate implements Navigator.
func (f NavigatorFunc) Navigate(dest Destination, reason string) { f(dest, reason) }

// Discard ignores every navigation request.
var Discard Navigator = NavigatorFunc(func(Destination, string) {})
