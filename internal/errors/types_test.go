package errors

import (
	"fmt"
	"testing"
)

func TestClassification(t *testing.T) {
	cases := []struct {
		status int
		want   ErrorCategory
	}{
		{400, Irrecoverable},
		{401, Irrecoverable},
		{403, Irrecoverable},
		{404, Irrecoverable},
		{408, Recoverable},
		{429, Recoverable},
		{500, Recoverable},
		{502, Recoverable},
		{503, Recoverable},
	}
	for _, tc := range cases {
		got := NewHTTPError(tc.status, "", "send message")
		if got.Category != tc.want {
			t.Errorf("status %d: want %v, got %v", tc.status, tc.want, got.Category)
		}
	}
}

func TestIsIrrecoverableUnwrapsChain(t *testing.T) {
	inner := NewHTTPError(400, "", "send message")
	wrapped := fmt.Errorf("job failed: %w", inner)
	if !IsIrrecoverable(wrapped) {
		t.Fatalf("classification lost through wrapping")
	}

	recoverable := fmt.Errorf("job failed: %w", NewNetworkError("send message", fmt.Errorf("conn reset")))
	if IsIrrecoverable(recoverable) {
		t.Fatalf("network error classified as irrecoverable")
	}
	if IsIrrecoverable(fmt.Errorf("plain error")) {
		t.Fatalf("unclassified error treated as irrecoverable")
	}
}

func TestClassifiedError_Message(t *testing.T) {
	err := NewHTTPError(403, "denied", "fetch token")
	want := "[Irrecoverable] HTTP 403: fetch token failed: HTTP 403"
	if err.Error() != want {
		t.Fatalf("want %q, got %q", want, err.Error())
	}
}
