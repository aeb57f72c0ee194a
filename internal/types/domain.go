package types

import "time"

// ------------------------------
// Core Domain Entities
// ------------------------------

// Message is a chat message flowing through a conversation topic. Messages
// that have been durably accepted by the backend carry a server-assigned ID;
// locally originated messages awaiting acknowledgment have an empty ID and a
// ClientKey the sender generated for reconciliation.
type Message struct {
	ID         string    `json:"id,omitempty"`
	OrderID    string    `json:"order_id,omitempty"`
	SenderID   string    `json:"sender_id"`
	ReceiverID string    `json:"receiver_id,omitempty"`
	Content    string    `json:"content"`
	ClientKey  string    `json:"client_key,omitempty"`
	SentAt     time.Time `json:"sent_at"`
}

// LocationUpdate is a single position report for an agent or asset on a zone
// topic. Reason carries a dispatch status hint ("task_started", "sos", ...).
type LocationUpdate struct {
	SubjectID string    `json:"subject_id"`
	Latitude  float64   `json:"lat"`
	Longitude float64   `json:"lng"`
	Accuracy  *float64  `json:"accuracy,omitempty"`
	Speed     *float64  `json:"speed,omitempty"`
	Battery   *float64  `json:"battery,omitempty"`
	Reason    string    `json:"reason,omitempty"`
	SentAt    time.Time `json:"sent_at"`
}

// Credential is a short-lived bearer token authorizing a hub subscription.
type Credential struct {
	Token     string
	Topics    []string
	ExpiresIn time.Duration
}
