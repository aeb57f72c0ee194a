package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	backoff "github.com/cenkalti/backoff/v4"
	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog/log"

	"github.com/guardhq/realtime-go/internal/sse"
)

// StreamConfig groups the stream tunables. Values are taken from environment
// variables with the prefix "GUARD_STREAM_".
type StreamConfig struct {
	ReconnectDelay    time.Duration `envconfig:"RECONNECT_DELAY"     default:"3s"`
	DialTimeout       time.Duration `envconfig:"DIAL_TIMEOUT"        default:"10s"`
	TokenSafetyBuffer time.Duration `envconfig:"TOKEN_SAFETY_BUFFER" default:"60s"`
}

// LoadStreamConfig populates StreamConfig from environment variables.
func LoadStreamConfig() (StreamConfig, error) {
	var c StreamConfig
	return c, envconfig.Process("GUARD_STREAM", &c)
}

// SubscriptionState is the lifecycle of a SubscriptionManager.
type SubscriptionState int32

const (
	StateIdle SubscriptionState = iota
	StateConnecting
	StateOpen
	StateReconnecting
	StateClosed
)

// String returns a human-readable state name.
func (s SubscriptionState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateConnecting:
		return "connecting"
	case StateOpen:
		return "open"
	case StateReconnecting:
		return "reconnecting"
	case StateClosed:
		return "closed"
	default:
		return fmt.Sprintf("unknown(%d)", int32(s))
	}
}

// FrameHandler receives the payload of each valid JSON frame delivered on the
// subscribed topic, in transport order. Handlers must not block for long;
// they run on the manager's reader goroutine.
type FrameHandler func(data []byte)

type subscription struct {
	topic  string
	cancel context.CancelFunc
	done   chan struct{}
}

// SubscriptionManager owns at most one live stream connection. Subscribing to
// a new topic fully tears down the previous subscription first, so rapid topic
// switches can never leak connections. One manager instance belongs to one
// view (a Conversation or ZoneFeed); it is not a process-wide singleton.
type SubscriptionManager struct {
	hubURL string
	http   *http.Client
	tokens *tokenSource
	cfg    StreamConfig

	mu    sync.Mutex
	cur   *subscription
	state atomic.Int32
}

func newSubscriptionManager(hubURL string, httpClient *http.Client, tokens *tokenSource, cfg StreamConfig) *SubscriptionManager {
	// Apply zero-value defaults.
	if cfg.ReconnectDelay <= 0 {
		cfg.ReconnectDelay = 3 * time.Second
	}
	if cfg.DialTimeout <= 0 {
		cfg.DialTimeout = 10 * time.Second
	}
	m := &SubscriptionManager{
		hubURL: hubURL,
		http:   httpClient,
		tokens: tokens,
		cfg:    cfg,
	}
	m.state.Store(int32(StateIdle))
	return m
}

// State reports the current lifecycle state.
func (m *SubscriptionManager) State() SubscriptionState {
	return SubscriptionState(m.state.Load())
}

// Live reports whether the stream is currently open. Transport and credential
// failures surface here as a passive flag rather than as errors; the UI may
// render it as a "live" indicator.
func (m *SubscriptionManager) Live() bool { return m.State() == StateOpen }

func (m *SubscriptionManager) setState(s SubscriptionState) {
	m.state.Store(int32(s))
}

// Subscribe opens a stream on topic and delivers each valid frame to onFrame.
// Any previous subscription is torn down first; at most one transport
// connection is live at any time for this manager. The supplied context
// bounds the life of the subscription.
func (m *SubscriptionManager) Subscribe(ctx context.Context, topic string, onFrame FrameHandler) error {
	if topic == "" {
		return fmt.Errorf("subscribe: empty topic: %w", ErrInvalidInput)
	}
	if onFrame == nil {
		return fmt.Errorf("subscribe: nil frame handler: %w", ErrInvalidInput)
	}

	m.Unsubscribe()

	runCtx, cancel := context.WithCancel(ctx)
	sub := &subscription{topic: topic, cancel: cancel, done: make(chan struct{})}

	m.mu.Lock()
	m.cur = sub
	m.mu.Unlock()

	go m.run(runCtx, sub, onFrame)
	return nil
}

// Unsubscribe tears down the current subscription, if any, and blocks until
// its reader goroutine has fully stopped. Pending reconnect waits are
// cancelled synchronously so a stale reconnect cannot resurrect a connection
// to a topic no longer wanted. Idempotent.
func (m *SubscriptionManager) Unsubscribe() {
	m.mu.Lock()
	sub := m.cur
	m.cur = nil
	m.mu.Unlock()

	if sub == nil {
		m.setState(StateIdle)
		return
	}
	sub.cancel()
	<-sub.done
	m.setState(StateIdle)
}

// run is the connect/read/reconnect loop. It exits only when ctx is
// cancelled, leaving the manager in StateClosed until the next Subscribe.
func (m *SubscriptionManager) run(ctx context.Context, sub *subscription, onFrame FrameHandler) {
	defer close(sub.done)
	defer m.setState(StateClosed)

	delay := backoff.NewConstantBackOff(m.cfg.ReconnectDelay)

	for {
		m.setState(StateConnecting)

		token, err := m.tokens.Token(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Warn().Err(err).Str("topic", sub.topic).Msg("subscribe credential fetch failed")
			if !m.waitReconnect(ctx, delay) {
				return
			}
			continue
		}

		conn, err := sse.Dial(ctx, m.http, m.hubURL, sub.topic, token)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Warn().Err(err).Str("topic", sub.topic).Msg("stream connect failed")
			if !m.waitReconnect(ctx, delay) {
				return
			}
			continue
		}

		m.setState(StateOpen)
		log.Debug().Str("topic", sub.topic).Msg("stream open")

		m.readLoop(conn, onFrame)
		_ = conn.Close()

		if ctx.Err() != nil {
			return
		}
		log.Warn().Str("topic", sub.topic).Msg("stream lost")
		if !m.waitReconnect(ctx, delay) {
			return
		}
	}
}

// readLoop pulls frames until the connection fails. Malformed frames are
// logged and dropped; they never take down the handler pipeline.
func (m *SubscriptionManager) readLoop(conn *sse.Conn, onFrame FrameHandler) {
	for {
		data, err := conn.Next()
		if err != nil {
			return
		}
		if !json.Valid(data) {
			framesDroppedTotal.Inc()
			log.Warn().Str("frame", truncateFrame(data)).Msg("dropping non-JSON frame")
			continue
		}
		dispatchFrame(onFrame, data)
	}
}

// dispatchFrame isolates handler panics from the reader loop.
func dispatchFrame(onFrame FrameHandler, data []byte) {
	defer func() {
		if r := recover(); r != nil {
			framesDroppedTotal.Inc()
			log.Error().Interface("panic", r).Msg("frame handler panic")
		}
	}()
	onFrame(data)
}

// waitReconnect sleeps out the reconnect delay. Returns false when ctx was
// cancelled during the wait.
func (m *SubscriptionManager) waitReconnect(ctx context.Context, delay backoff.BackOff) bool {
	m.setState(StateReconnecting)
	reconnectsTotal.Inc()
	select {
	case <-ctx.Done():
		return false
	case <-time.After(delay.NextBackOff()):
		return true
	}
}

func truncateFrame(data []byte) string {
	const max = 256
	if len(data) > max {
		return string(data[:max]) + "..."
	}
	return string(data)
}
