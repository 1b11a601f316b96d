package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/travelmate/tripplanner/client"
	"github.com/travelmate/tripplanner/internal/localstate"
)

type recordingNav struct {
	mu    sync.Mutex
	calls []Destination
	last  string
}

func (n *recordingNav) Navigate(dest Destination, reason string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls = append(n.calls, dest)
	n.last = reason
}

func (n *recordingNav) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.calls)
}

func signed(t *testing.T, exp time.Time) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "7",
		ExpiresAt: jwt.NewNumericDate(exp),
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return tok
}

func TestStore_TokenRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewStore(localstate.NewMemory(), nil)

	_, ok := s.Token()
	assert.False(t, ok)

	require.NoError(t, s.SetToken(ctx, "opaque"))
	tok, ok := s.Token()
	assert.True(t, ok)
	assert.Equal(t, "opaque", tok)
	assert.Error(t, s.SetToken(ctx, ""))
}

func TestStore_LegacyTokenKey(t *testing.T) {
	ctx := context.Background()
	state := localstate.NewMemory()
	require.NoError(t, state.Set(ctx, KeyLegacyToken, "old"))
	s := NewStore(state, nil)

	tok, ok := s.Token()
	assert.True(t, ok)
	assert.Equal(t, "old", tok)

	require.NoError(t, s.SetToken(ctx, "new"))
	tok, _ = s.Token()
	assert.Equal(t, "new", tok, "authToken wins over legacy token")
}

func TestStore_ClearAndLeave(t *testing.T) {
	ctx := context.Background()
	state := localstate.NewMemory()
	nav := &recordingNav{}
	s := NewStore(state, nav)

	require.NoError(t, s.SetToken(ctx, "tok"))
	require.NoError(t, state.Set(ctx, KeyLegacyToken, "legacy"))
	for _, k := range UserKeys {
		require.NoError(t, state.Set(ctx, k, `{"id":7}`))
	}

	s.Unauthorized()
	s.ClearAndLeave("again")

	_, ok := s.Token()
	assert.False(t, ok)
	for _, k := range UserKeys {
		_, ok, _ := state.Get(ctx, k)
		assert.False(t, ok, "key %s should be cleared", k)
	}
	assert.Equal(t, 1, nav.count(), "navigate once per sign-in")
	assert.Equal(t, ReasonUnauthorized, nav.last)

	// A fresh sign-in re-arms navigation.
	require.NoError(t, s.SetToken(ctx, "tok2"))
	s.Unauthorized()
	assert.Equal(t, 2, nav.count())
}

func TestStore_RequireAuthenticated(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	nav := &recordingNav{}
	s := NewStore(localstate.NewMemory(), nav, WithClock(func() time.Time { return now }))

	assert.False(t, s.RequireAuthenticated())
	assert.Equal(t, []Destination{DestLogin}, nav.calls)

	require.NoError(t, s.SetToken(ctx, signed(t, now.Add(time.Hour))))
	assert.True(t, s.RequireAuthenticated())

	require.NoError(t, s.SetToken(ctx, signed(t, now.Add(-time.Minute))))
	assert.False(t, s.RequireAuthenticated(), "expired JWT counts as absent")
	_, ok := s.Token()
	assert.False(t, ok, "gate clears the expired token")
}

func TestStore_SetUser(t *testing.T) {
	ctx := context.Background()
	s := NewStore(localstate.NewMemory(), nil)
	require.NoError(t, s.SetUser(ctx, client.UserRecord{ID: 7, Username: "nok", Email: "n@b.co"}))
	u, ok := s.User(ctx)
	require.True(t, ok)
	assert.Equal(t, int64(7), u.ID)
	assert.Equal(t, "nok", u.Username)
}

func TestTokenExpired(t *testing.T) {
	now := time.Now()
	assert.False(t, TokenExpired("not-a-jwt", now))
	assert.False(t, TokenExpired(signed(t, now.Add(time.Hour)), now))
	assert.True(t, TokenExpired(signed(t, now.Add(-time.Hour)), now))

	noExp, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "7"}).SignedString([]byte("k"))
	require.NoError(t, err)
	assert.False(t, TokenExpired(noExp, now))
}
