package client

import "github.com/travelmate/tripplanner/client/internal/types"

// Public type aliases so SDK consumers can import only the client package.
type (
	// Requests
	LoginRequest    = types.LoginRequest
	RegisterRequest = types.RegisterRequest
	ScheduleRequest = types.ScheduleRequest

	// Domain entities
	UserRecord  = types.UserRecord
	CatalogItem = types.CatalogItem
	Schedule    = types.Schedule
	Money       = types.Money
	Date        = types.Date

	// Responses
	AuthResponse = types.AuthResponse
)

// DateLayout is the wire form of schedule dates.
const DateLayout = types.DateLayout

// Money and date constructors.
var (
	Cents      = types.Cents
	Units      = types.Units
	ParseMoney = types.ParseMoney
	ParseDate  = types.ParseDate
	MustDate   = types.MustDate
)
