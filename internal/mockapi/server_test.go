package mockapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/travelmate/tripplanner/client"
)

func newTestServer(t *testing.T, opts Options) (*Server, *httptest.Server) {
	t.Helper()
	if opts.BcryptCost == 0 {
		opts.BcryptCost = bcrypt.MinCost
	}
	s := New(opts)
	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)
	return s, srv
}

func do(t *testing.T, method, url, token string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func TestRegisterAndLogin(t *testing.T) {
	_, srv := newTestServer(t, Options{})

	resp := do(t, "POST", srv.URL+"/register", "", credentials{Email: "Ana@Example.com", Password: "secret", Username: "ana"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	reg := decode[authResponse](t, resp)
	assert.NotEmpty(t, reg.AccessToken)
	assert.Equal(t, int64(1), reg.User.ID)
	assert.Equal(t, "ana@example.com", reg.User.Email)

	resp = do(t, "POST", srv.URL+"/register", "", credentials{Email: "ana@example.com", Password: "other"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Email already exists", decode[ErrorResponse](t, resp).Message)

	resp = do(t, "POST", srv.URL+"/login", "", credentials{Email: "ana@example.com", Password: "secret"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, reg.User, decode[authResponse](t, resp).User)

	resp = do(t, "POST", srv.URL+"/login", "", credentials{Email: "ana@example.com", Password: "nope"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Incorrect password", decode[ErrorResponse](t, resp).Message)

	resp = do(t, "POST", srv.URL+"/login", "", credentials{Email: "bob@example.com", Password: "secret"})
	assert.Equal(t, "Cannot find user", decode[ErrorResponse](t, resp).Message)
}

func TestRegister_Validation(t *testing.T) {
	_, srv := newTestServer(t, Options{})
	resp := do(t, "POST", srv.URL+"/register", "", credentials{Email: "a@b.c"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	req, _ := http.NewRequest("POST", srv.URL+"/register", strings.NewReader("{"))
	raw, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer raw.Body.Close()
	assert.Equal(t, http.StatusBadRequest, raw.StatusCode)
}

func TestCatalogRoutes(t *testing.T) {
	_, srv := newTestServer(t, Options{})
	for _, path := range []string{"/catalog-items", "/attractions"} {
		resp := do(t, "GET", srv.URL+path, "", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode, path)
		items := decode[[]client.CatalogItem](t, resp)
		require.Len(t, items, 5)
		assert.Equal(t, client.Cents(129950), items[4].Cost)
	}
}

func TestSchedules_RequireToken(t *testing.T) {
	_, srv := newTestServer(t, Options{})
	resp := do(t, "GET", srv.URL+"/schedules?userId=1", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = do(t, "GET", srv.URL+"/schedules?userId=1", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestSchedules_ExpiredToken(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	s, srv := newTestServer(t, Options{TokenTTL: time.Minute, Now: clock})
	u, err := s.AddUser("a@b.c", "pw12", "")
	require.NoError(t, err)
	tok, err := s.IssueToken(u.ID)
	require.NoError(t, err)

	now = now.Add(2 * time.Minute)
	resp := do(t, "GET", srv.URL+"/schedules?userId=1", tok, nil)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	var body bytes.Buffer
	_, _ = body.ReadFrom(resp.Body)
	assert.Equal(t, "jwt expired", body.String())
}

func TestSchedules_OwnerScoping(t *testing.T) {
	s, srv := newTestServer(t, Options{})
	ana, _ := s.AddUser("ana@example.com", "pw12", "ana")
	bob, _ := s.AddUser("bob@example.com", "pw12", "bob")
	anaTok, _ := s.IssueToken(ana.ID)
	bobTok, _ := s.IssueToken(bob.ID)

	req := client.ScheduleRequest{
		UserID:      ana.ID,
		Title:       "Bangkok",
		StartDate:   client.MustDate("2026-03-01"),
		EndDate:     client.MustDate("2026-03-05"),
		Attractions: DefaultCatalog()[:2],
		TotalCost:   client.Units(550),
	}
	resp := do(t, "POST", srv.URL+"/schedules", anaTok, req)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decode[client.Schedule](t, resp)
	assert.Equal(t, int64(1), created.ID)
	assert.Equal(t, client.Units(550), created.TotalCost)

	// Posting on someone else's behalf.
	resp = do(t, "POST", srv.URL+"/schedules", bobTok, req)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, msgForeignRecord, decode[ErrorResponse](t, resp).Message)

	resp = do(t, "GET", srv.URL+"/schedules?userId=1", anaTok, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, decode[[]client.Schedule](t, resp), 1)

	resp = do(t, "GET", srv.URL+"/schedules", anaTok, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp = do(t, "GET", srv.URL+"/schedules?userId=1", bobTok, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = do(t, "GET", srv.URL+"/schedules/1", bobTok, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp = do(t, "GET", srv.URL+"/schedules/99", anaTok, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	req.Title = "Bangkok again"
	resp = do(t, "PUT", srv.URL+"/schedules/1", anaTok, req)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Bangkok again", decode[client.Schedule](t, resp).Title)

	resp = do(t, "DELETE", srv.URL+"/schedules/1", bobTok, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp = do(t, "DELETE", srv.URL+"/schedules/1", anaTok, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, 0, s.ScheduleCount(ana.ID))
}

func TestSeedSchedules(t *testing.T) {
	s := New(Options{BcryptCost: bcrypt.MinCost})
	s.SeedSchedules(3, 4)
	assert.Equal(t, 4, s.ScheduleCount(3))
	assert.Equal(t, 0, s.ScheduleCount(1))
}

func TestCORSPreflight(t *testing.T) {
	_, srv := newTestServer(t, Options{})
	req, _ := http.NewRequest(http.MethodOptions, srv.URL+"/schedules", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", "POST")
	req.Header.Set("Access-Control-Request-Headers", "Authorization")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestRecoverMiddleware(t *testing.T) {
	s := New(Options{})
	h := recoverMiddleware(s.log)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { panic("boom") }))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
