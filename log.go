package realtime

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// optimisticMatchWindow bounds the timestamp distance used by the fallback
// reconciliation of an optimistic entry against a hub relay that lost its
// client key.
const optimisticMatchWindow = 5 * time.Second

// Event is one entry in a conversation's reconciled log: a Message plus the
// local view of it. Mine is computed once at merge time and never recomputed
// from content. LocalRef is non-empty while the entry is optimistic (sent but
// not yet acknowledged by the backend).
type Event struct {
	Message
	Mine     bool
	LocalRef string
}

// EventLog is the canonical time-ordered list of events for one active
// conversation. It merges REST-fetched history, live hub frames, and
// locally-optimistic sends without duplication. Events are ordered by server
// timestamp ascending with insertion order breaking ties. Safe for concurrent
// use; Ordered may be called at arbitrary render frequency.
type EventLog struct {
	localID string

	mu     sync.RWMutex
	events []Event
	ids    map[string]struct{}
}

// NewEventLog creates an empty log. localID identifies the local participant;
// events whose sender matches it are marked Mine.
func NewEventLog(localID string) *EventLog {
	return &EventLog{
		localID: localID,
		ids:     make(map[string]struct{}),
	}
}

// Seed replaces the log wholesale with server-returned history. Used once per
// topic activation, after the REST fetch and before the first subscribe.
func (l *EventLog) Seed(history []Message) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.events = l.events[:0]
	l.ids = make(map[string]struct{}, len(history))
	for _, m := range history {
		if m.ID != "" {
			if _, dup := l.ids[m.ID]; dup {
				continue
			}
			l.ids[m.ID] = struct{}{}
		}
		l.events = append(l.events, Event{Message: m, Mine: m.SenderID == l.localID})
	}
	l.sortLocked()
}

// MergeLive folds a hub-delivered event into the log. Events whose server ID
// is already present are ignored: the same message may arrive both via a REST
// refresh and via the stream. A relay of the local participant's own send is
// reconciled with its optimistic entry (matched by client key, falling back
// to content+sender+approximate timestamp) instead of being appended, and is
// always marked Mine.
func (l *EventLog) MergeLive(m Message) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.mergeLocked(m, true)
}

// AppendOptimistic inserts a locally-originated message before the server has
// acknowledged it. The entry carries no server ID; it is marked Mine and
// stamped with a fresh client key, which is also the returned local
// reference. The same key must be sent on the REST write so the hub relay
// reconciles instead of duplicating.
func (l *EventLog) AppendOptimistic(m Message) string {
	ref := uuid.NewString()

	l.mu.Lock()
	defer l.mu.Unlock()

	if m.SentAt.IsZero() {
		m.SentAt = time.Now().UTC()
	}
	if m.ClientKey == "" {
		m.ClientKey = ref
	}
	m.SenderID = l.localID
	l.events = append(l.events, Event{Message: m, Mine: true, LocalRef: ref})
	l.sortLocked()
	return ref
}

// Confirm replaces the optimistic entry identified by ref with the durable
// record returned by the REST write. If the hub relay already reconciled the
// entry (or the record's ID is otherwise present), the optimistic entry is
// simply dropped so the log never holds two copies.
func (l *EventLog) Confirm(ref string, m Message) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.discardLocked(ref)
	l.mergeLocked(m, false)
}

// Discard removes the optimistic entry identified by ref, restoring the log
// to its pre-append state. Used to roll back a failed send. Reports whether
// an entry was removed.
func (l *EventLog) Discard(ref string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.discardLocked(ref)
}

// Ordered returns a copy of the full log sorted by the ordering key. Pure
// read, no side effects.
func (l *EventLog) Ordered() []Event {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]Event, len(l.events))
	copy(out, l.events)
	return out
}

// Len reports the current number of entries.
func (l *EventLog) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.events)
}

// ------------------------- internals -------------------------

// mergeLocked performs duplicate suppression, optimistic reconciliation, and
// sorted insertion. matchFallback enables the content+sender+timestamp
// heuristic; it is off for REST confirmations, which always carry the
// authoritative client key.
func (l *EventLog) mergeLocked(m Message, matchFallback bool) {
	if m.ID != "" {
		if _, dup := l.ids[m.ID]; dup {
			return
		}
	}

	if idx := l.matchOptimisticLocked(m, matchFallback); idx >= 0 {
		prev := l.events[idx]
		l.events[idx] = Event{Message: m, Mine: true}
		if m.SenderID == "" {
			l.events[idx].SenderID = prev.SenderID
		}
		if m.ID != "" {
			l.ids[m.ID] = struct{}{}
		}
		l.sortLocked()
		return
	}

	if m.ID != "" {
		l.ids[m.ID] = struct{}{}
	}
	l.events = append(l.events, Event{Message: m, Mine: m.SenderID == l.localID})
	l.sortLocked()
}

// matchOptimisticLocked finds the optimistic entry the incoming message
// confirms, or -1. Client-key equality is authoritative; the timestamp
// heuristic only applies when the incoming message lost its key and can
// mis-match under rapid duplicate sends, which is why sends always carry
// a key.
func (l *EventLog) matchOptimisticLocked(m Message, fallback bool) int {
	for i, e := range l.events {
		if e.LocalRef == "" {
			continue
		}
		if m.ClientKey != "" && m.ClientKey == e.ClientKey {
			return i
		}
		if fallback && m.ClientKey == "" &&
			m.SenderID == l.localID &&
			m.Content == e.Content &&
			absDuration(m.SentAt.Sub(e.SentAt)) <= optimisticMatchWindow {
			return i
		}
	}
	return -1
}

func (l *EventLog) discardLocked(ref string) bool {
	for i, e := range l.events {
		if e.LocalRef == ref {
			l.events = append(l.events[:i], l.events[i+1:]...)
			return true
		}
	}
	return false
}

// sortLocked restores timestamp order. The stable sort preserves insertion
// order between equal timestamps, which is the tie-break the log guarantees.
func (l *EventLog) sortLocked() {
	sort.SliceStable(l.events, func(i, j int) bool {
		return l.events[i].SentAt.Before(l.events[j].SentAt)
	})
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
