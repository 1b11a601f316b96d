package types

// ------------------------------
// Response Types
// ------------------------------

// AuthResponse is returned by /login and /register.
type AuthResponse struct {
	AccessToken string     `json:"accessToken"`
	User        UserRecord `json:"user"`
}

// ErrorBody is the best-effort JSON shape of non-2xx responses.
type ErrorBody struct {
	Message string `json:"message"`
}
