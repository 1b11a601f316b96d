package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-resty/resty/v2"

	"github.com/travelmate/tripplanner/client/internal/types"
)

// ErrMissingAccessToken is returned when login/register succeeds without a token.
var ErrMissingAccessToken = errors.New("response has no access token")

// Login exchanges credentials for an access token and the user's record.
func Login(ctx context.Context, rc *resty.Client, req types.LoginRequest) (*types.AuthResponse, error) {
	if req.Email == "" || req.Password == "" {
		return nil, fmt.Errorf("login: email and password are required")
	}
	var out types.AuthResponse
	if err := execute(ctx, rc.R().SetBody(req), http.MethodPost, "/login", "login", &out); err != nil {
		return nil, err
	}
	if out.AccessToken == "" {
		return nil, fmt.Errorf("login: %w", ErrMissingAccessToken)
	}
	return &out, nil
}

// Register creates an account. The backend answers like Login.
func Register(ctx context.Context, rc *resty.Client, req types.RegisterRequest) (*types.AuthResponse, error) {
	if req.Email == "" || req.Password == "" || req.Username == "" {
		return nil, fmt.Errorf("register: email, password and username are required")
	}
	var out types.AuthResponse
	if err := execute(ctx, rc.R().SetBody(req), http.MethodPost, "/register", "register", &out); err != nil {
		return nil, err
	}
	return &out, nil
}
