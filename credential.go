package realtime

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/guardhq/realtime-go/internal/types"
)

// tokenSource caches one hub credential for the topics of a single
// subscription. The credential lives only in memory and is discarded a safety
// buffer before its advertised expiry, forcing the next connect attempt to
// refetch. Fetching is idempotent and may be retried freely.
type tokenSource struct {
	fetch  func(ctx context.Context) (*types.Credential, error)
	safety time.Duration

	mu     sync.Mutex
	cached *types.Credential
	expiry *time.Timer
}

func newTokenSource(safety time.Duration, fetch func(ctx context.Context) (*types.Credential, error)) *tokenSource {
	return &tokenSource{fetch: fetch, safety: safety}
}

// Token returns the cached credential, fetching a fresh one when none is
// held. A credential whose remaining lifetime does not clear the safety
// buffer is used once but never cached.
func (s *tokenSource) Token(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cached != nil {
		return s.cached.Token, nil
	}

	cred, err := s.fetch(ctx)
	if err != nil {
		return "", err
	}

	ttl := cred.ExpiresIn - s.safety
	if ttl > 0 {
		s.cached = cred
		s.expiry = time.AfterFunc(ttl, s.invalidate)
	} else {
		log.Warn().Dur("expires_in", cred.ExpiresIn).Msg("subscribe token shorter than safety buffer, not caching")
	}
	return cred.Token, nil
}

// invalidate clears the cache when the expiry timer fires.
func (s *tokenSource) invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cached = nil
	s.expiry = nil
}

// Reset drops the cached credential and cancels the pending expiry timer.
// Called on topic change and teardown.
func (s *tokenSource) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.expiry != nil {
		s.expiry.Stop()
		s.expiry = nil
	}
	s.cached = nil
}
