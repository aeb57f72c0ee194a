package realtime

import (
	"errors"
	"testing"
)

func TestConversationTopic_Commutative(t *testing.T) {
	pairs := [][2]string{
		{"alice", "bob"},
		{"bob", "alice"},
		{"42", "7"},
		{"agent-9", "dispatcher-1"},
	}
	for _, p := range pairs {
		ab, err := ConversationTopic(p[0], p[1])
		if err != nil {
			t.Fatalf("ConversationTopic(%q, %q): %v", p[0], p[1], err)
		}
		ba, err := ConversationTopic(p[1], p[0])
		if err != nil {
			t.Fatalf("ConversationTopic(%q, %q): %v", p[1], p[0], err)
		}
		if ab != ba {
			t.Fatalf("topic not commutative: %q vs %q", ab, ba)
		}
	}
}

func TestConversationTopic_Form(t *testing.T) {
	got, err := ConversationTopic("bob", "alice")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "guard/chat/alice-bob" {
		t.Fatalf("unexpected topic: %q", got)
	}
}

func TestConversationTopic_Degenerate(t *testing.T) {
	// Same participant twice is odd but must stay deterministic.
	a, err := ConversationTopic("x", "x")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, _ := ConversationTopic("x", "x")
	if a != b || a != "guard/chat/x-x" {
		t.Fatalf("degenerate topic not deterministic: %q vs %q", a, b)
	}
}

func TestConversationTopic_EmptyInput(t *testing.T) {
	if _, err := ConversationTopic("", "bob"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if _, err := ConversationTopic("alice", ""); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestZoneTopic(t *testing.T) {
	got, err := ZoneTopic("z-17")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "guard/zone/z-17" {
		t.Fatalf("unexpected topic: %q", got)
	}
	if _, err := ZoneTopic(""); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}
