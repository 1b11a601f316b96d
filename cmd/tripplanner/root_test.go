package main

import (
	"bytes"
	"errors"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/travelmate/tripplanner/client"
	"github.com/travelmate/tripplanner/internal/draft"
	"github.com/travelmate/tripplanner/internal/mockapi"
	"github.com/travelmate/tripplanner/internal/syncengine"
)

type cli struct {
	t         *testing.T
	api       *mockapi.Server
	statePath string
}

// newCLI points the CLI at a fresh mock API with file-backed local state.
func newCLI(t *testing.T, secret string) *cli {
	t.Helper()
	api := mockapi.New(mockapi.Options{Secret: []byte(secret), BcryptCost: bcrypt.MinCost})
	srv := httptest.NewServer(api.Handler())
	t.Cleanup(srv.Close)

	t.Setenv("TRIPPLANNER_API_URL", srv.URL)
	t.Setenv("TRIPPLANNER_STATE_BACKEND", "file")
	statePath := filepath.Join(t.TempDir(), "state.json")
	t.Setenv("TRIPPLANNER_STATE_PATH", statePath)
	t.Setenv("LC_ALL", "C")
	t.Setenv("LANG", "")
	return &cli{t: t, api: api, statePath: statePath}
}

func (c *cli) run(args ...string) (string, string, error) {
	c.t.Helper()
	var out, errOut bytes.Buffer
	root := NewRootCmd()
	root.SetArgs(append([]string{"--env-file", ""}, args...))
	root.SetOut(&out)
	root.SetErr(&errOut)
	err := root.Execute()
	return out.String(), errOut.String(), err
}

func (c *cli) mustRun(args ...string) string {
	c.t.Helper()
	out, errOut, err := c.run(args...)
	require.NoError(c.t, err, "args=%v stderr=%s", args, errOut)
	return out
}

func TestCLI_ItineraryLifecycle(t *testing.T) {
	c := newCLI(t, "s1")

	out := c.mustRun("register", "--email", "Ana@Example.com", "--password", "secret", "--username", "ana")
	assert.Contains(t, out, "Registered ana@example.com (id 1)")

	out = c.mustRun("whoami")
	assert.Contains(t, out, `User id 1 (from "user")`)

	out = c.mustRun("catalog")
	assert.Contains(t, out, "Grand Palace")
	assert.Contains(t, out, "1,299.50")

	out = c.mustRun("itinerary", "create", "--title", "Bangkok", "--start", "2026-03-01", "--end", "2026-03-05", "--item", "1", "--item", "2")
	assert.Contains(t, out, `Saved itinerary #1 "Bangkok", total 550.00`)

	out = c.mustRun("itinerary", "list")
	assert.Contains(t, out, "#1")
	assert.Contains(t, out, "2026-03-01 → 2026-03-05")

	out = c.mustRun("itinerary", "edit", "1", "--remove", "2", "--title", "Bangkok weekend")
	assert.Contains(t, out, `Saved itinerary #1 "Bangkok weekend", total 500.00`)

	out = c.mustRun("itinerary", "show", "1")
	assert.Contains(t, out, "Grand Palace")
	assert.NotContains(t, out, "Street Food Tour")

	out = c.mustRun("itinerary", "delete", "1")
	assert.Contains(t, out, "Deleted itinerary #1")
	assert.Contains(t, out, "No itineraries yet")
	assert.Equal(t, 0, c.api.ScheduleCount(1))

	_, errOut, err := c.run("logout")
	require.NoError(t, err)
	assert.Contains(t, errOut, "Logged out")

	_, _, err = c.run("itinerary", "list")
	assert.ErrorIs(t, err, syncengine.ErrNotAuthenticated)
}

func TestCLI_LoginAfterRegister(t *testing.T) {
	c := newCLI(t, "s1")
	_, err := c.api.AddUser("bob@example.com", "hunter22", "bob")
	require.NoError(t, err)

	_, _, err = c.run("login", "--email", "bob@example.com", "--password", "wrong")
	ae, ok := client.AsAPIError(err)
	require.True(t, ok, "got %v", err)
	assert.Equal(t, "Incorrect password", ae.Message)

	out := c.mustRun("login", "--email", "bob@example.com", "--password", "hunter22")
	assert.Contains(t, out, "Logged in as bob@example.com (id 1)")
}

func TestCLI_ValidationSendsNothing(t *testing.T) {
	c := newCLI(t, "s1")
	c.mustRun("register", "--email", "a@b.c", "--password", "pw12")

	_, _, err := c.run("itinerary", "create", "--title", "Empty", "--start", "2026-03-01", "--end", "2026-03-02")
	var verr *draft.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, draft.EmptyItinerary, verr.Check)
	assert.Equal(t, 0, c.api.ScheduleCount(1))
}

func TestCLI_CapacityLimit(t *testing.T) {
	c := newCLI(t, "s1")
	t.Setenv("TRIPPLANNER_CAPACITY_LIMIT", "2")
	c.mustRun("register", "--email", "a@b.c", "--password", "pw12")
	c.api.SeedSchedules(1, 2)

	_, _, err := c.run("itinerary", "create", "--title", "One more", "--start", "2026-03-01", "--end", "2026-03-02", "--item", "3")
	assert.ErrorIs(t, err, syncengine.ErrCapacityReached)
	assert.Equal(t, 2, c.api.ScheduleCount(1))
}

func TestCLI_UnauthorizedClearsSession(t *testing.T) {
	c := newCLI(t, "s1")
	c.mustRun("register", "--email", "a@b.c", "--password", "pw12")

	// Same user id on a server that signs with another secret, sharing c's
	// local state.
	other := newCLI(t, "s2")
	_, err := other.api.AddUser("a@b.c", "pw12", "")
	require.NoError(t, err)
	t.Setenv("TRIPPLANNER_STATE_PATH", c.statePath)

	_, errOut, err := other.run("itinerary", "list")
	assert.True(t, client.IsUnauthorized(err), "got %v", err)
	assert.Equal(t, syncengine.KindAuth, syncengine.Classify(err))
	assert.Contains(t, errOut, "Access unauthorized")

	_, _, err = other.run("whoami")
	assert.ErrorIs(t, err, syncengine.ErrNotAuthenticated)
}

func TestCLI_InvalidID(t *testing.T) {
	c := newCLI(t, "s1")
	_, _, err := c.run("itinerary", "show", "abc")
	assert.True(t, errors.Is(err, client.ErrInvalidID))
	_, _, err = c.run("itinerary", "show")
	assert.Error(t, err)
}

func TestDisplayLanguage(t *testing.T) {
	t.Setenv("LC_ALL", "")
	t.Setenv("LANG", "de_DE.UTF-8")
	assert.True(t, strings.HasPrefix(displayLanguage().String(), "de"))
	t.Setenv("LANG", "C")
	assert.Equal(t, "en", displayLanguage().String())
}
