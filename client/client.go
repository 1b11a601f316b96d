package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"

	"github.com/travelmate/tripplanner/client/internal/api"
	sdkerrors "github.com/travelmate/tripplanner/client/internal/errors"
)

// TokenSource yields the bearer token attached to outgoing requests.
// A false second result means no Authorization header is sent.
type TokenSource interface {
	Token() (string, bool)
}

// TokenFunc adapts a function to TokenSource.
type TokenFunc func() (string, bool)

// Token implements TokenSource.
func (f TokenFunc) Token() (string, bool) { return f() }

// --------------------------------------------------------------------
// Client core
// --------------------------------------------------------------------

type Client struct {
	baseURL string
	http    *http.Client
	rest    *resty.Client
	tokens  TokenSource

	onUnauthorized func()
	retryAttempts  int
}

// New constructs a Client for the API at baseURL. tokens may be nil for
// anonymous use (login, register).
func New(baseURL string, tokens TokenSource, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("baseURL cannot be empty")
	}

	c := &Client{
		baseURL:       baseURL,
		tokens:        tokens,
		http:          &http.Client{Timeout: 30 * time.Second},
		retryAttempts: 1,
	}

	// Auto-enable debug via env variable without changing code.
	if debugLoggingRequested() {
		opts = append(opts, WithDebugLogging(true))
	}

	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}

	c.wrapTransportWithBearer()
	c.rest = c.newResty()
	return c, nil
}

// wrapTransportWithBearer installs the Authorization wrapper above every
// transport configured by options.
func (c *Client) wrapTransportWithBearer() {
	baseTransport := c.http.Transport
	if baseTransport == nil {
		baseTransport = http.DefaultTransport
	}
	c.http.Transport = &bearerTransport{base: baseTransport, tokens: c.tokens}
}

func (c *Client) newResty() *resty.Client {
	rc := resty.NewWithClient(c.http).
		SetBaseURL(c.baseURL).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	rc.OnBeforeRequest(func(_ *resty.Client, r *resty.Request) error {
		r.SetHeader("X-Request-ID", uuid.NewString())
		return nil
	})
	rc.OnAfterResponse(func(_ *resty.Client, resp *resty.Response) error {
		requestsTotal.WithLabelValues(resp.Request.Method, strconv.Itoa(resp.StatusCode())).Inc()
		if resp.StatusCode() == http.StatusUnauthorized && c.onUnauthorized != nil {
			c.onUnauthorized()
		}
		return nil
	})
	rc.OnError(func(r *resty.Request, _ error) {
		requestsTotal.WithLabelValues(r.Method, "error").Inc()
	})
	return rc
}

// bearerTransport adds the session token to every request when one exists.
type bearerTransport struct {
	base   http.RoundTripper
	tokens TokenSource
}

func (t *bearerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.tokens == nil {
		return t.base.RoundTrip(req)
	}
	tok, ok := t.tokens.Token()
	if !ok || tok == "" {
		return t.base.RoundTrip(req)
	}
	// Clone the request to avoid modifying the original
	cloned := req.Clone(req.Context())
	cloned.Header.Set("Authorization", "Bearer "+tok)
	return t.base.RoundTrip(cloned)
}

// BaseURL returns the API root this client talks to.
func (c *Client) BaseURL() string { return c.baseURL }

// withRetry runs op up to retryAttempts times with exponential backoff.
// Only recoverable transport failures are retried.
func (c *Client) withRetry(ctx context.Context, op func() error) error {
	if c.retryAttempts <= 1 {
		return op()
	}
	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), uint64(c.retryAttempts-1)),
		ctx,
	)
	return backoff.Retry(func() error {
		err := op()
		if err == nil {
			return nil
		}
		if !retryable(err) {
			return backoff.Permanent(err)
		}
		return err
	}, policy)
}

func retryable(err error) bool {
	var ce *sdkerrors.ClassifiedError
	if !errors.As(err, &ce) {
		return false
	}
	return ce.Category == sdkerrors.Recoverable
}

// --------------------------------------------------------------------
// Auth operations - delegated to internal/api
// --------------------------------------------------------------------

// Login exchanges credentials for an access token.
func (c *Client) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	return api.Login(ctx, c.rest, req)
}

// Register creates an account and returns its access token.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	return api.Register(ctx, c.rest, req)
}

// --------------------------------------------------------------------
// Catalog operations
// --------------------------------------------------------------------

// ListCatalogItems returns every selectable catalog item.
func (c *Client) ListCatalogItems(ctx context.Context) ([]CatalogItem, error) {
	var out []CatalogItem
	err := c.withRetry(ctx, func() error {
		items, err := api.ListCatalogItems(ctx, c.rest)
		out = items
		return err
	})
	return out, err
}

// --------------------------------------------------------------------
// Schedule operations
// --------------------------------------------------------------------

// ListSchedules returns the schedules owned by userID.
func (c *Client) ListSchedules(ctx context.Context, userID int64) ([]Schedule, error) {
	var out []Schedule
	err := c.withRetry(ctx, func() error {
		list, err := api.ListSchedules(ctx, c.rest, userID)
		out = list
		return err
	})
	return out, err
}

// GetSchedule retrieves one schedule.
func (c *Client) GetSchedule(ctx context.Context, id int64) (*Schedule, error) {
	var out *Schedule
	err := c.withRetry(ctx, func() error {
		s, err := api.GetSchedule(ctx, c.rest, id)
		out = s
		return err
	})
	return out, err
}

// CreateSchedule stores a new schedule. Writes are never retried.
func (c *Client) CreateSchedule(ctx context.Context, req ScheduleRequest) (*Schedule, error) {
	return api.CreateSchedule(ctx, c.rest, req)
}

// UpdateSchedule replaces schedule id.
func (c *Client) UpdateSchedule(ctx context.Context, id int64, req ScheduleRequest) (*Schedule, error) {
	return api.UpdateSchedule(ctx, c.rest, id, req)
}

// DeleteSchedule removes schedule id.
func (c *Client) DeleteSchedule(ctx context.Context, id int64) error {
	return api.DeleteSchedule(ctx, c.rest, id)
}
