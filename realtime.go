// Package realtime is the Go SDK for GUARD's dispatch backend: paginated
// message history and sends over REST, plus live chat and agent-location
// streams from the event hub. Conversation and ZoneFeed are the two
// view-scoped entry points; each owns exactly one hub subscription.
package realtime

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/guardhq/realtime-go/internal/api"
	"github.com/guardhq/realtime-go/internal/job"
	"github.com/guardhq/realtime-go/internal/shardqueue"
)

// Client talks to the GUARD REST API and hands out view-scoped sessions
// (Conversation, ZoneFeed) that attach to the event hub. One Client is shared
// across views; sessions are cheap and tied to their view's lifetime.
type Client struct {
	baseURL string
	hubURL  string
	apiKey  string
	http    *http.Client
	stream  StreamConfig
	exec    executor

	// streamHTTP has no overall timeout: hub responses are long-lived. The
	// handshake is bounded by ResponseHeaderTimeout instead.
	streamHTTP *http.Client

	closedOnce uint32 // ensures Close is idempotent
}

// New constructs a Client for the API at baseURL, authenticating REST calls
// with apiKey. Additional options can be provided via functional arguments.
func New(baseURL, apiKey string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("baseURL is required: %w", ErrInvalidInput)
	}
	if apiKey == "" {
		return nil, fmt.Errorf("apiKey is required: %w", ErrInvalidInput)
	}

	stream, err := LoadStreamConfig()
	if err != nil {
		return nil, fmt.Errorf("load stream config: %w", err)
	}

	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		http:    &http.Client{Timeout: 30 * time.Second},
		stream:  stream,
	}
	c.hubURL = c.baseURL + "/api/realtime/events"

	// Auto-enable debug via env variable without changing code.
	if debugLoggingRequested() {
		opts = append(opts, WithDebugLogging(true))
	}

	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	if c.exec == nil {
		exec, err := c.newDefaultExecutor()
		if err != nil {
			return nil, err
		}
		c.exec = exec
	}
	if c.streamHTTP == nil {
		c.streamHTTP = &http.Client{
			Transport: &http.Transport{ResponseHeaderTimeout: c.stream.DialTimeout},
		}
	}

	// Wrap HTTP transport to automatically add the Authorization header.
	c.wrapTransportWithAPIKey()

	return c, nil
}

// wrapTransportWithAPIKey wraps the REST client's transport to add the
// Authorization header to all requests. The hub stream does not use the API
// key; it authenticates with per-topic subscribe tokens.
func (c *Client) wrapTransportWithAPIKey() {
	baseTransport := c.http.Transport
	if baseTransport == nil {
		baseTransport = http.DefaultTransport
	}
	c.http.Transport = &apiKeyTransport{
		base:   baseTransport,
		apiKey: c.apiKey,
	}
}

// apiKeyTransport wraps an http.RoundTripper to add the Authorization header.
type apiKeyTransport struct {
	base   http.RoundTripper
	apiKey string
}

func (t *apiKeyTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	// Clone the request to avoid modifying the original.
	cloned := req.Clone(req.Context())
	cloned.Header.Set("Authorization", "Bearer "+t.apiKey)
	return t.base.RoundTrip(cloned)
}

// Close stops the background send executor. Sessions should be closed first;
// Close is safe to call multiple times.
func (c *Client) Close() error {
	if !atomic.CompareAndSwapUint32(&c.closedOnce, 0, 1) {
		return nil
	}
	if c.exec != nil {
		c.exec.Stop()
	}
	return nil
}

// Flush blocks until all previously submitted sends for topic have been
// executed. It works by submitting a no-op barrier job and waiting for it to
// run, thereby guaranteeing the topic's FIFO queue has drained.
func (c *Client) Flush(ctx context.Context, topic string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	done := make(chan struct{})
	barrier := job.New(func(context.Context) error {
		close(done)
		return nil
	})
	if err := c.exec.Submit(ctx, topic, barrier); err != nil {
		if errors.Is(err, shardqueue.ErrQueueFull) {
			return ErrBackPressure
		}
		return err
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-done:
		return nil
	}
}

// newDefaultExecutor constructs the shardqueue executor from the environment,
// routing terminal send failures back to their conversation for rollback.
func (c *Client) newDefaultExecutor() (*shardqueue.ShardExecutor, error) {
	cfg, err := shardqueue.LoadConfig()
	if err != nil {
		return nil, err
	}
	if cfg.ErrorHandler == nil {
		cfg.ErrorHandler = handleAsyncError
	}
	return shardqueue.NewShardExecutor(cfg), nil
}

// handleAsyncError is the executor's terminal-failure hook. Send failures
// carry enough context to roll back their optimistic entry; anything else is
// only logged.
func handleAsyncError(err error) {
	if err == nil {
		return
	}
	var sf *sendFailure
	if errors.As(err, &sf) {
		sf.conv.rollback(sf.ref, sf.err)
		return
	}
	log.Error().Err(err).Msg("async job failed")
}

// --------------------------------------------------------------------
// REST operations - delegated to internal/api
// --------------------------------------------------------------------

// ListMessages retrieves one page of the durable message history for an
// order (synchronous).
func (c *Client) ListMessages(ctx context.Context, orderID string, page, limit int) (*ListMessagesResponse, error) {
	return api.ListMessages(ctx, c.http, c.baseURL, orderID, page, limit)
}

// SubscribeToken fetches a short-lived hub credential for the given topics.
// Sessions manage their own credentials; this is exposed for consumers that
// drive a SubscriptionManager directly.
func (c *Client) SubscribeToken(ctx context.Context, topics ...string) (*Credential, error) {
	return api.FetchSubscribeToken(ctx, c.http, c.baseURL, topics)
}
