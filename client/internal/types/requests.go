package types

// ------------------------------
// Request Types
// ------------------------------

// LoginRequest holds credentials for POST /login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterRequest holds parameters for POST /register.
type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Username string `json:"username"`
}

// ScheduleRequest is the body of POST /schedules and PUT /schedules/:id.
type ScheduleRequest struct {
	UserID      int64         `json:"userId"`
	Title       string        `json:"title"`
	StartDate   Date          `json:"startDate"`
	EndDate     Date          `json:"endDate"`
	Attractions []CatalogItem `json:"attractions"`
	TotalCost   Money         `json:"totalCost"`
}
