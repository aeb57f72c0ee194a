package realtime

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/guardhq/realtime-go/internal/api"
	"github.com/guardhq/realtime-go/internal/types"
)

// ZoneFeed is the view-scoped session for a zone's live agent-location
// stream. There is no history to seed: positions are last-known-state only,
// so Open goes straight to the subscription. Create one per active map view
// and Close it on teardown.
type ZoneFeed struct {
	client *Client
	zoneID string
	topic  string

	tracker *PositionTracker
	tokens  *tokenSource
	mgr     *SubscriptionManager
}

// NewZoneFeed creates the session for a zone's location topic. No I/O happens
// until Open.
func (c *Client) NewZoneFeed(zoneID string) (*ZoneFeed, error) {
	topic, err := ZoneTopic(zoneID)
	if err != nil {
		return nil, err
	}

	tokens := newTokenSource(c.stream.TokenSafetyBuffer, func(ctx context.Context) (*types.Credential, error) {
		return api.FetchSubscribeToken(ctx, c.http, c.baseURL, []string{topic})
	})

	return &ZoneFeed{
		client:  c,
		zoneID:  zoneID,
		topic:   topic,
		tracker: NewPositionTracker(),
		tokens:  tokens,
		mgr:     newSubscriptionManager(c.hubURL, c.streamHTTP, tokens, c.stream),
	}, nil
}

// Topic returns the zone's channel name.
func (zf *ZoneFeed) Topic() string { return zf.topic }

// Open subscribes to the zone topic. The tracker is reset first so positions
// from a previous activation never survive a reopen.
func (zf *ZoneFeed) Open(ctx context.Context) error {
	zf.tracker.Reset()
	return zf.mgr.Subscribe(ctx, zf.topic, zf.handleFrame)
}

// handleFrame folds one location frame into the tracker. Frames without a
// subject are logged and dropped.
func (zf *ZoneFeed) handleFrame(data []byte) {
	var u LocationUpdate
	if err := json.Unmarshal(data, &u); err != nil {
		framesDroppedTotal.Inc()
		log.Warn().Err(err).Str("topic", zf.topic).Msg("dropping frame with unexpected schema")
		return
	}
	if u.SubjectID == "" {
		framesDroppedTotal.Inc()
		return
	}
	zf.tracker.UpdatePosition(u)
	eventsMergedTotal.Inc()
}

// Positions returns the latest known state for every subject in the zone.
func (zf *ZoneFeed) Positions() []Position { return zf.tracker.Snapshot() }

// Position returns the latest known state for one subject.
func (zf *ZoneFeed) Position(subjectID string) (Position, bool) {
	return zf.tracker.Position(subjectID)
}

// Live reports whether the hub stream is currently open.
func (zf *ZoneFeed) Live() bool { return zf.mgr.Live() }

// State exposes the subscription lifecycle for status indicators.
func (zf *ZoneFeed) State() SubscriptionState { return zf.mgr.State() }

// Close tears down the subscription and discards the cached credential.
func (zf *ZoneFeed) Close() {
	zf.mgr.Unsubscribe()
	zf.tokens.Reset()
}
