package realtime

import (
	"context"

	"github.com/guardhq/realtime-go/internal/shardqueue"
)

// executor abstracts the internal async job runner used by the send path.
type executor interface {
	Submit(context.Context, string, shardqueue.Job) error
	Stop()
}

// Note: all clients include an executor by default; Send requires it.
