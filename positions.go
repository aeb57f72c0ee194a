package realtime

import (
	"sort"
	"sync"
	"time"
)

// Agent dispatch statuses driven by location-update reason codes.
const (
	StatusAvailable = "available"
	StatusWorking   = "working"
	StatusOffDuty   = "off_duty"
	StatusAlarm     = "alarm"
)

// reasonStatus maps a location update's reason code to the status it implies.
// Unknown reason codes leave the subject's status unchanged, never cleared.
var reasonStatus = map[string]string{
	"shift_started":  StatusAvailable,
	"shift_ended":    StatusOffDuty,
	"task_started":   StatusWorking,
	"task_completed": StatusAvailable,
	"sos":            StatusAlarm,
}

// Position is the latest known state for one subject on a zone feed.
type Position struct {
	SubjectID string
	Latitude  float64
	Longitude float64
	Accuracy  *float64
	Speed     *float64
	Battery   *float64
	Status    string
	UpdatedAt time.Time
}

// PositionTracker keeps last-known-state per subject for a zone's location
// feed. Unlike the conversation log there is no history: each update replaces
// the subject's record, last-write-wins by server timestamp. Safe for
// concurrent use.
type PositionTracker struct {
	mu       sync.RWMutex
	subjects map[string]Position
}

// NewPositionTracker creates an empty tracker.
func NewPositionTracker() *PositionTracker {
	return &PositionTracker{subjects: make(map[string]Position)}
}

// UpdatePosition folds one location update into the tracker. Updates older
// than the currently held record for the subject are ignored, so out-of-order
// delivery cannot move a marker backwards.
func (t *PositionTracker) UpdatePosition(u LocationUpdate) {
	if u.SubjectID == "" {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	cur, known := t.subjects[u.SubjectID]
	if known && u.SentAt.Before(cur.UpdatedAt) {
		return
	}

	status := cur.Status
	if s, ok := reasonStatus[u.Reason]; ok {
		status = s
	}

	t.subjects[u.SubjectID] = Position{
		SubjectID: u.SubjectID,
		Latitude:  u.Latitude,
		Longitude: u.Longitude,
		Accuracy:  u.Accuracy,
		Speed:     u.Speed,
		Battery:   u.Battery,
		Status:    status,
		UpdatedAt: u.SentAt,
	}
}

// Position returns the latest known state for a subject.
func (t *PositionTracker) Position(subjectID string) (Position, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	p, ok := t.subjects[subjectID]
	return p, ok
}

// Snapshot returns all current positions, sorted by subject ID for stable
// iteration in renderers and tests.
func (t *PositionTracker) Snapshot() []Position {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]Position, 0, len(t.subjects))
	for _, p := range t.subjects {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SubjectID < out[j].SubjectID })
	return out
}

// Reset clears all subjects. Used when the active zone changes so positions
// from one zone never bleed into another.
func (t *PositionTracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.subjects = make(map[string]Position)
}
