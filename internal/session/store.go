// Package session owns the signed-in state kept in local storage: the bearer
// token, the cached user record and the resolution of the user's id.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/travelmate/tripplanner/client"
	"github.com/travelmate/tripplanner/internal/localstate"
)

// Local storage keys.
const (
	KeyToken       = "authToken"
	KeyLegacyToken = "token"
	KeyUser        = "user"
)

// UserKeys lists every key a user record may live under, in migration order.
var UserKeys = []string{"user", "currentUser", "userInfo", "auth"}

// tokenKeys are read in order; writes go to KeyToken only.
var tokenKeys = []string{KeyToken, KeyLegacyToken}

// ReasonUnauthorized is the message shown when the API rejects the token.
const ReasonUnauthorized = "Access unauthorized"

const storeTimeout = 5 * time.Second

// Store is the session's single writer: only SetToken, the 401 path and an
// explicit logout change the token. Safe for concurrent use.
type Store struct {
	state localstate.Store
	nav   Navigator
	now   func() time.Time
	log   zerolog.Logger

	mu   sync.Mutex
	left bool // navigator already signalled for the current sign-in
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithClock overrides time.Now for expiry checks.
func WithClock(now func() time.Time) StoreOption {
	return func(s *Store) { s.now = now }
}

// WithLogger sets the store's logger.
func WithLogger(l zerolog.Logger) StoreOption {
	return func(s *Store) { s.log = l }
}

// NewStore returns a Store over state. nav may be nil.
func NewStore(state localstate.Store, nav Navigator, opts ...StoreOption) *Store {
	if nav == nil {
		nav = Discard
	}
	s := &Store{state: state, nav: nav, now: time.Now, log: log.Logger}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Token returns the stored bearer token. It implements client.TokenSource.
func (s *Store) Token() (string, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()
	for _, key := range tokenKeys {
		v, ok, err := s.state.Get(ctx, key)
		if err != nil {
			s.log.Warn().Err(err).Str("key", key).Msg("read token")
			continue
		}
		if ok && v != "" {
			return v, true
		}
	}
	return "", false
}

// SetToken persists a freshly issued token.
func (s *Store) SetToken(ctx context.Context, token string) error {
	if token == "" {
		return fmt.Errorf("set token: empty token")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.state.Set(ctx, KeyToken, token); err != nil {
		return fmt.Errorf("set token: %w", err)
	}
	s.left = false
	return nil
}

// SetUser caches the signed-in user's record under KeyUser.
func (s *Store) SetUser(ctx context.Context, u client.UserRecord) error {
	b, err := json.Marshal(u)
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}
	if err := s.state.Set(ctx, KeyUser, string(b)); err != nil {
		return fmt.Errorf("set user: %w", err)
	}
	return nil
}

// User returns the record cached by SetUser, if any.
func (s *Store) User(ctx context.Context) (client.UserRecord, bool) {
	var u client.UserRecord
	v, ok, err := s.state.Get(ctx, KeyUser)
	if err != nil || !ok {
		return u, false
	}
	if err := json.Unmarshal([]byte(v), &u); err != nil {
		return u, false
	}
	return u, true
}

// Authenticated reports whether a usable token is present. A JWT whose exp
// has passed counts as absent; opaque tokens are trusted until a 401.
func (s *Store) Authenticated() bool {
	tok, ok := s.Token()
	if !ok {
		return false
	}
	return !TokenExpired(tok, s.now())
}

// RequireAuthenticated is the gate run before any authenticated flow. When
// the session is missing it clears the rest and leaves, returning false.
func (s *Store) RequireAuthenticated() bool {
	if s.Authenticated() {
		return true
	}
	s.ClearAndLeave("")
	return false
}

// ClearAndLeave removes the token and every user key, then sends the user to
// DestLogin. Repeated calls clear again but navigate once per sign-in.
func (s *Store) ClearAndLeave(reason string) {
	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()

	s.mu.Lock()
	for _, key := range append(append([]string{}, tokenKeys...), UserKeys...) {
		if err := s.state.Delete(ctx, key); err != nil {
			s.log.Error().Err(err).Str("key", key).Msg("clear session key")
		}
	}
	first := !s.left
	s.left = true
	s.mu.Unlock()

	if first {
		s.log.Info().Str("reason", reason).Msg("session cleared")
		s.nav.Navigate(DestLogin, reason)
	}
}

// Unauthorized is the client's 401 hook.
func (s *Store) Unauthorized() { s.ClearAndLeave(ReasonUnauthorized) }

// TokenExpired reports whether tok is a JWT whose exp is at or before now.
// The signature is not checked; the server remains the authority.
func TokenExpired(tok string, now time.Time) bool {
	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(tok, &claims); err != nil {
		return false
	}
	if claims.ExpiresAt == nil {
		return false
	}
	return !now.Before(claims.ExpiresAt.Time)
}
