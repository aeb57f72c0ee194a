package realtime

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) { return f(req) }

func okResponse() *http.Response {
	return &http.Response{
		StatusCode: http.StatusOK,
		Body:       io.NopCloser(strings.NewReader("{}")),
		Header:     make(http.Header),
	}
}

func TestNew_RequiresBaseURLAndKey(t *testing.T) {
	if _, err := New("", "key"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for empty baseURL, got %v", err)
	}
	if _, err := New("http://example.com", ""); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for empty apiKey, got %v", err)
	}
}

func TestNew_DefaultsAndTrailingSlash(t *testing.T) {
	c, err := New("http://example.com/", "key")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer func() { _ = c.Close() }()

	if c.baseURL != "http://example.com" {
		t.Fatalf("trailing slash not trimmed: %q", c.baseURL)
	}
	if c.hubURL != "http://example.com/api/realtime/events" {
		t.Fatalf("hub url not derived: %q", c.hubURL)
	}
	if c.streamHTTP == nil || c.streamHTTP.Timeout != 0 {
		t.Fatalf("stream client must have no overall timeout")
	}
}

func TestNew_OptionErrorsSurface(t *testing.T) {
	if _, err := New("http://example.com", "key", WithHTTPTimeout(0)); err == nil {
		t.Fatalf("expected error for zero timeout")
	}
	if _, err := New("http://example.com", "key", WithHTTPClient(nil)); err == nil {
		t.Fatalf("expected error for nil http client")
	}
	if _, err := New("http://example.com", "key", WithHubURL("")); err == nil {
		t.Fatalf("expected error for empty hub url")
	}
}

func TestNew_WithHubURL(t *testing.T) {
	c, err := New("http://example.com", "key", WithHubURL("http://hub.internal/events/"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer func() { _ = c.Close() }()

	if c.hubURL != "http://hub.internal/events" {
		t.Fatalf("hub url override not applied: %q", c.hubURL)
	}
}

func TestNew_WithStreamConfig(t *testing.T) {
	cfg := StreamConfig{ReconnectDelay: time.Second, DialTimeout: 2 * time.Second, TokenSafetyBuffer: 5 * time.Second}
	c, err := New("http://example.com", "key", WithStreamConfig(cfg))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer func() { _ = c.Close() }()

	if c.stream != cfg {
		t.Fatalf("stream config override not applied: %+v", c.stream)
	}
}

func TestAPIKeyTransport_AddsHeaderWithoutMutatingRequest(t *testing.T) {
	var seen string
	rt := roundTripFunc(func(req *http.Request) (*http.Response, error) {
		seen = req.Header.Get("Authorization")
		return okResponse(), nil
	})

	c, err := New("http://example.com", "secret", WithHTTPClient(&http.Client{Transport: rt}))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer func() { _ = c.Close() }()

	req, _ := http.NewRequestWithContext(context.Background(), http.MethodGet, "http://example.com/api/orders/o1/messages", nil)
	resp, err := c.http.Do(req)
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	_ = resp.Body.Close()

	if seen != "Bearer secret" {
		t.Fatalf("authorization header not injected: %q", seen)
	}
	if got := req.Header.Get("Authorization"); got != "" {
		t.Fatalf("original request mutated: %q", got)
	}
}

func TestClient_CloseIdempotent(t *testing.T) {
	c, err := New("http://example.com", "key")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := c.Close(); err != nil {
		t.Fatalf("first close: %v", err)
	}
	if err := c.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}
}

func TestClient_FlushDrainsQueue(t *testing.T) {
	c, err := New("http://example.com", "key")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer func() { _ = c.Close() }()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := c.Flush(ctx, "some/topic"); err != nil {
		t.Fatalf("Flush on idle queue: %v", err)
	}
}

func TestClient_FlushHonorsContext(t *testing.T) {
	c, err := New("http://example.com", "key")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer func() { _ = c.Close() }()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := c.Flush(ctx, "some/topic"); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestSubscriptionState_String(t *testing.T) {
	cases := map[SubscriptionState]string{
		StateIdle:         "idle",
		StateConnecting:   "connecting",
		StateOpen:         "open",
		StateReconnecting: "reconnecting",
		StateClosed:       "closed",
	}
	for s, want := range cases {
		if got := s.String(); got != want {
			t.Fatalf("state %d: want %q, got %q", s, want, got)
		}
	}
}
