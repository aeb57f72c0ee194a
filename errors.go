package realtime

import (
	"errors"

	"github.com/guardhq/realtime-go/internal/types"
)

// ErrBackPressure is returned when the client's internal shard queue is full.
var ErrBackPressure = errors.New("back-pressure (queue full)")

// IsBackPressure reports whether err is a back-pressure error.
func IsBackPressure(err error) bool { return errors.Is(err, ErrBackPressure) }

// Re-export shared SDK errors so callers compare against a single symbol.
var (
	// ErrInvalidInput marks programmer errors: empty participant, zone, or
	// order identifiers. Correct UI wiring never triggers it.
	ErrInvalidInput = types.ErrInvalidInput

	// ErrCredentialUnavailable means the subscribe-token endpoint failed.
	// Recoverable; the manager retries on the next connect attempt.
	ErrCredentialUnavailable = types.ErrCredentialUnavailable

	// ErrHistoryUnavailable means the history fetch failed and the event log
	// was not seeded.
	ErrHistoryUnavailable = types.ErrHistoryUnavailable

	// ErrSendFailed wraps the terminal failure of an outbound message after
	// the optimistic entry has been rolled back.
	ErrSendFailed = types.ErrSendFailed
)
