package realtime

import "github.com/guardhq/realtime-go/internal/types"

// Public type aliases so SDK consumers can import only the realtime package.
type (
	// Domain entities
	Message        = types.Message
	LocationUpdate = types.LocationUpdate
	Credential     = types.Credential

	// Requests
	SendMessageRequest = types.SendMessageRequest

	// Responses
	ListMessagesResponse = types.ListMessagesResponse
)
