package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/guardhq/realtime-go/internal/api"
	"github.com/guardhq/realtime-go/internal/job"
	"github.com/guardhq/realtime-go/internal/shardqueue"
	"github.com/guardhq/realtime-go/internal/types"
)

// historyPageLimit is the page size used to seed the log on open.
const historyPageLimit = 50

// Conversation is the view-scoped session for one two-party chat: it derives
// the topic, seeds the event log from REST history, holds the hub
// subscription, and runs sends through the FIFO executor with optimistic
// local echo. Create one per active conversation view and Close it on
// teardown; switching conversations means closing this one and opening a new
// one, which is what guarantees at most one live connection per view.
type Conversation struct {
	client  *Client
	orderID string
	localID string
	peerID  string
	topic   string

	eventLog *EventLog
	tokens   *tokenSource
	mgr      *SubscriptionManager

	mu           sync.Mutex
	onSendFailed func(ref string, err error)
}

// NewConversation creates the session for the conversation between localID
// and peerID in the context of an order. No I/O happens until Open.
func (c *Client) NewConversation(orderID, localID, peerID string) (*Conversation, error) {
	if err := types.ValidateIDPresent(orderID, "orderId"); err != nil {
		return nil, err
	}
	topic, err := ConversationTopic(localID, peerID)
	if err != nil {
		return nil, err
	}

	tokens := newTokenSource(c.stream.TokenSafetyBuffer, func(ctx context.Context) (*types.Credential, error) {
		return api.FetchSubscribeToken(ctx, c.http, c.baseURL, []string{topic})
	})

	return &Conversation{
		client:   c,
		orderID:  orderID,
		localID:  localID,
		peerID:   peerID,
		topic:    topic,
		eventLog: NewEventLog(localID),
		tokens:   tokens,
		mgr:      newSubscriptionManager(c.hubURL, c.streamHTTP, tokens, c.stream),
	}, nil
}

// Topic returns the derived channel name for this conversation.
func (cv *Conversation) Topic() string { return cv.topic }

// OnSendFailed registers the callback invoked after a send fails terminally
// and its optimistic entry has been rolled back. The UI typically restores
// the draft input from it. Set before Open; the callback runs on an executor
// goroutine.
func (cv *Conversation) OnSendFailed(fn func(ref string, err error)) {
	cv.mu.Lock()
	defer cv.mu.Unlock()
	cv.onSendFailed = fn
}

// Open seeds the event log from the history endpoint, then subscribes to the
// topic. If the history fetch fails the log stays unseeded and no
// subscription is opened; the caller may retry by calling Open again.
func (cv *Conversation) Open(ctx context.Context) error {
	hist, err := cv.client.ListMessages(ctx, cv.orderID, 1, historyPageLimit)
	if err != nil {
		return err
	}
	cv.eventLog.Seed(hist.Messages)

	return cv.mgr.Subscribe(ctx, cv.topic, cv.handleFrame)
}

// handleFrame folds one hub frame into the log. Frames that do not decode
// into a message are logged and dropped.
func (cv *Conversation) handleFrame(data []byte) {
	var m Message
	if err := json.Unmarshal(data, &m); err != nil {
		framesDroppedTotal.Inc()
		log.Warn().Err(err).Str("topic", cv.topic).Msg("dropping frame with unexpected schema")
		return
	}
	if m.Content == "" && m.ID == "" {
		framesDroppedTotal.Inc()
		return
	}
	cv.eventLog.MergeLive(m)
	eventsMergedTotal.Inc()
}

// Send appends an optimistic entry for content and enqueues the REST write on
// the conversation's FIFO queue. It returns the entry's local reference
// immediately; the entry is confirmed in place once the backend acknowledges,
// or rolled back (with OnSendFailed invoked) on terminal failure.
func (cv *Conversation) Send(ctx context.Context, content string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if content == "" {
		return "", fmt.Errorf("empty message content: %w", ErrInvalidInput)
	}

	ref := cv.eventLog.AppendOptimistic(Message{
		OrderID:    cv.orderID,
		SenderID:   cv.localID,
		ReceiverID: cv.peerID,
		Content:    content,
	})

	req := SendMessageRequest{
		OrderID:    cv.orderID,
		SenderID:   cv.localID,
		ReceiverID: cv.peerID,
		Content:    content,
		ClientKey:  ref,
	}

	sendJob := job.New(func(jctx context.Context) error {
		msg, err := api.SendMessage(jctx, cv.client.http, cv.client.baseURL, req)
		if err != nil {
			// Wrapped so the executor's retry classification still sees the
			// underlying cause, and the terminal-error hook can roll back.
			return &sendFailure{conv: cv, ref: ref, err: err}
		}
		cv.eventLog.Confirm(ref, *msg)
		return nil
	})

	if err := cv.client.exec.Submit(ctx, cv.topic, sendJob); err != nil {
		cv.eventLog.Discard(ref)
		if errors.Is(err, shardqueue.ErrQueueFull) {
			return "", ErrBackPressure
		}
		return "", fmt.Errorf("%w: %w", ErrSendFailed, err)
	}
	return ref, nil
}

// Events returns the reconciled, time-ordered log. Safe to call at render
// frequency.
func (cv *Conversation) Events() []Event { return cv.eventLog.Ordered() }

// Live reports whether the hub stream is currently open.
func (cv *Conversation) Live() bool { return cv.mgr.Live() }

// State exposes the subscription lifecycle for status indicators.
func (cv *Conversation) State() SubscriptionState { return cv.mgr.State() }

// Flush blocks until every send enqueued before it has completed.
func (cv *Conversation) Flush(ctx context.Context) error {
	return cv.client.Flush(ctx, cv.topic)
}

// Close tears down the subscription and discards the cached credential.
// Idempotent; safe to call from view teardown paths.
func (cv *Conversation) Close() {
	cv.mgr.Unsubscribe()
	cv.tokens.Reset()
}

// rollback removes the optimistic entry for a terminally failed send and
// notifies the registered callback.
func (cv *Conversation) rollback(ref string, cause error) {
	removed := cv.eventLog.Discard(ref)
	sendFailuresTotal.WithLabelValues(job.ShardLabel(cv.topic)).Inc()
	log.Warn().Err(cause).Str("topic", cv.topic).Bool("rolled_back", removed).Msg("send failed")

	cv.mu.Lock()
	fn := cv.onSendFailed
	cv.mu.Unlock()
	if fn != nil {
		fn(ref, fmt.Errorf("%w: %w", ErrSendFailed, cause))
	}
}

// sendFailure carries the conversation and local reference of a failed send
// through the executor so the terminal-error hook can roll it back. Unwrap
// exposes the classified HTTP/network error for retry decisions.
type sendFailure struct {
	conv *Conversation
	ref  string
	err  error
}

func (e *sendFailure) Error() string { return fmt.Sprintf("send %s: %v", e.ref, e.err) }
func (e *sendFailure) Unwrap() error { return e.err }
