package realtime

import (
	"fmt"
)

const (
	conversationTopicPrefix = "guard/chat"
	zoneTopicPrefix         = "guard/zone"
)

// ConversationTopic derives the shared channel name for a two-party
// conversation. The participant identifiers are sorted lexicographically
// before concatenation, so both ends derive the same topic regardless of who
// initiates: ConversationTopic(a, b) == ConversationTopic(b, a).
//
// Pure function of its inputs; never derived from mutable state.
func ConversationTopic(idA, idB string) (string, error) {
	if idA == "" || idB == "" {
		return "", fmt.Errorf("conversation topic requires two participant ids: %w", ErrInvalidInput)
	}
	lo, hi := idA, idB
	if hi < lo {
		lo, hi = hi, lo
	}
	return fmt.Sprintf("%s/%s-%s", conversationTopicPrefix, lo, hi), nil
}

// ZoneTopic derives the channel name carrying live agent locations for a zone.
func ZoneTopic(zoneID string) (string, error) {
	if zoneID == "" {
		return "", fmt.Errorf("zone topic requires a zone id: %w", ErrInvalidInput)
	}
	return fmt.Sprintf("%s/%s", zoneTopicPrefix, zoneID), nil
}
