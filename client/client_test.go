package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

func staticToken(tok string) TokenSource {
	return TokenFunc(func() (string, bool) { return tok, tok != "" })
}

func TestNew_RequiresBaseURL(t *testing.T) {
	t.Parallel()
	if _, err := New("", nil); err == nil {
		t.Fatal("expected error for empty baseURL")
	}
}

func TestNew_OptionError(t *testing.T) {
	t.Parallel()
	if _, err := New("http://example.com", nil, WithRetry(0)); err == nil {
		t.Fatal("expected option error to surface")
	}
	if _, err := New("http://example.com", nil, WithHTTPTimeout(0)); err == nil {
		t.Fatal("expected timeout option error to surface")
	}
}

func TestClient_BearerAndRequestID(t *testing.T) {
	t.Parallel()
	var auth, reqID string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		reqID = r.Header.Get("X-Request-ID")
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	c, err := New(srv.URL, staticToken("abc"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := c.ListCatalogItems(context.Background()); err != nil {
		t.Fatalf("ListCatalogItems: %v", err)
	}
	if auth != "Bearer abc" {
		t.Fatalf("unexpected Authorization header %q", auth)
	}
	if len(reqID) != 36 {
		t.Fatalf("expected uuid request id, got %q", reqID)
	}
}

func TestClient_NoTokenNoHeader(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h := r.Header.Get("Authorization"); h != "" {
			t.Errorf("unexpected Authorization header %q", h)
		}
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	c, _ := New(srv.URL, staticToken(""))
	if _, err := c.ListCatalogItems(context.Background()); err != nil {
		t.Fatalf("ListCatalogItems: %v", err)
	}
}

func TestClient_UnauthorizedHook(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	var calls int32
	c, _ := New(srv.URL, staticToken("stale"), WithUnauthorizedHandler(func() { atomic.AddInt32(&calls, 1) }))
	err := c.DeleteSchedule(context.Background(), 4)
	if !IsUnauthorized(err) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	if atomic.LoadInt32(&calls) != 1 {
		t.Fatalf("unauthorized hook called %d times", calls)
	}
	if _, ok := AsAPIError(err); ok {
		t.Fatal("401 must not surface as APIError")
	}
}

func TestClient_RetryRecoverableGET(t *testing.T) {
	t.Parallel()
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&hits, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`[{"id":1,"name":"Grand Palace","cost":500}]`))
	}))
	defer srv.Close()

	c, _ := New(srv.URL, nil, WithRetry(3))
	items, err := c.ListCatalogItems(context.Background())
	if err != nil || len(items) != 1 {
		t.Fatalf("expected success after retries, got items=%v err=%v", items, err)
	}
	if hits != 3 {
		t.Fatalf("expected 3 attempts, got %d", hits)
	}
}

func TestClient_NoRetryOnIrrecoverable(t *testing.T) {
	t.Parallel()
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message":"not found"}`))
	}))
	defer srv.Close()

	c, _ := New(srv.URL, nil, WithRetry(5))
	_, err := c.GetSchedule(context.Background(), 9)
	ae, ok := AsAPIError(err)
	if !ok || ae.StatusCode != http.StatusNotFound || ae.Message != "not found" {
		t.Fatalf("unexpected error %v", err)
	}
	if hits != 1 {
		t.Fatalf("expected a single attempt, got %d", hits)
	}
}

func TestClient_WritesNeverRetried(t *testing.T) {
	t.Parallel()
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c, _ := New(srv.URL, staticToken("t"), WithRetry(4))
	_, err := c.CreateSchedule(context.Background(), ScheduleRequest{UserID: 1, Title: "x"})
	if err == nil {
		t.Fatal("expected error")
	}
	if hits != 1 {
		t.Fatalf("POST retried: %d attempts", hits)
	}
}

func TestClient_NetworkError(t *testing.T) {
	t.Parallel()
	rt := roundTripFunc(func(*http.Request) (*http.Response, error) { return nil, errors.New("dial refused") })
	c, _ := New("http://example.com", nil, WithHTTPClient(&http.Client{Transport: rt}))
	_, err := c.ListSchedules(context.Background(), 1)
	if !IsNetworkError(err) {
		t.Fatalf("expected network error, got %v", err)
	}
}

func TestWithRateLimit_WaitHonoursContext(t *testing.T) {
	t.Parallel()
	rt := roundTripFunc(func(*http.Request) (*http.Response, error) {
		return &http.Response{StatusCode: 200, Body: http.NoBody, Header: make(http.Header)}, nil
	})
	c, _ := New("http://example.com", nil, WithHTTPClient(&http.Client{Transport: rt}), WithRateLimit(0.001, 1))

	// First request consumes the single burst token.
	if _, err := c.ListCatalogItems(context.Background()); err != nil {
		t.Fatalf("first request: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := c.ListCatalogItems(ctx); err == nil {
		t.Fatal("expected rate limiter to block until the deadline")
	}
}

func TestWithDebugLogging_Idempotent(t *testing.T) {
	c := &Client{http: &http.Client{}}
	_ = WithDebugLogging(true)(c)
	_ = WithDebugLogging(true)(c)
	dt, ok := c.http.Transport.(*debugTransport)
	if !ok {
		t.Fatal("expected debugTransport")
	}
	if _, nested := dt.base.(*debugTransport); nested {
		t.Fatal("debug transport installed twice")
	}
}

func TestNew_AutoEnableDebugViaEnv(t *testing.T) {
	t.Setenv("TRIPPLANNER_DEBUG", "true")
	c, err := New("http://example.com", nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	bt, ok := c.http.Transport.(*bearerTransport)
	if !ok {
		t.Fatalf("expected bearer transport on top, got %T", c.http.Transport)
	}
	if _, ok := bt.base.(*debugTransport); !ok {
		t.Fatalf("expected debugTransport beneath bearer when TRIPPLANNER_DEBUG=true")
	}
}

func TestDebugTransport_ErrorPath(t *testing.T) {
	rt := roundTripFunc(func(r *http.Request) (*http.Response, error) {
		return nil, context.DeadlineExceeded
	})
	dt := &debugTransport{base: rt}
	req, _ := http.NewRequestWithContext(context.Background(), http.MethodGet, "http://example.com", http.NoBody)
	if _, err := dt.RoundTrip(req); err == nil {
		t.Fatalf("expected error from underlying transport")
	}
}
