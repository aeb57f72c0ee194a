package types

// ------------------------------
// Request Types
// ------------------------------

// SendMessageRequest holds parameters for a new chat message. ClientKey is a
// caller-generated idempotency key echoed back on the durable record and on
// the hub relay of the message.
type SendMessageRequest struct {
	OrderID    string `json:"order_id"`
	SenderID   string `json:"sender_id"`
	ReceiverID string `json:"receiver_id"`
	Content    string `json:"content"`
	ClientKey  string `json:"client_key,omitempty"`
}

// SubscribeTokenRequest asks the backend for a hub credential scoped to the
// given topics.
type SubscribeTokenRequest struct {
	Topics []string `json:"topics"`
}
