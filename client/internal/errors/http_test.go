package errors

import (
	"context"
	stderrors "errors"
	"testing"
)

func TestClassifyHTTPError_Categories(t *testing.T) {
	t.Parallel()
	cases := []struct {
		code int
		want ErrorCategory
	}{
		{400, Irrecoverable}, {403, Irrecoverable}, {404, Irrecoverable},
		{408, Recoverable}, {429, Recoverable}, {500, Recoverable}, {503, Recoverable},
	}
	for _, c := range cases {
		got := ClassifyHTTPError(c.code, "", nil).Category
		if got != c.want {
			t.Fatalf("status %d: got %s want %s", c.code, got, c.want)
		}
	}
}

func TestExtractMessage(t *testing.T) {
	t.Parallel()
	if got := ExtractMessage(400, []byte(`{"message":"Title is required"}`)); got != "Title is required" {
		t.Fatalf("json message: %q", got)
	}
	if got := ExtractMessage(500, []byte("  upstream exploded \n")); got != "upstream exploded" {
		t.Fatalf("raw text: %q", got)
	}
	if got := ExtractMessage(404, []byte(`{"error":"x"}`)); got != `{"error":"x"}` {
		t.Fatalf("json without message should fall back to raw text: %q", got)
	}
	if got := ExtractMessage(502, nil); got != "Bad Gateway" {
		t.Fatalf("empty body: %q", got)
	}
}

func TestIsIrrecoverable_Wrapped(t *testing.T) {
	t.Parallel()
	err := NewHTTPError(404, []byte(`{"message":"gone"}`), "get schedule")
	wrapped := stderrors.Join(context.Canceled, err)
	if !IsIrrecoverable(wrapped) {
		t.Fatal("expected irrecoverable through wrapping")
	}
	if IsIrrecoverable(NewNetworkError("list", context.DeadlineExceeded)) {
		t.Fatal("network errors must be recoverable")
	}
	if !stderrors.Is(NewNetworkError("list", context.DeadlineExceeded), context.DeadlineExceeded) {
		t.Fatal("network error should unwrap to cause")
	}
}
