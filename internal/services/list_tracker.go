// internal/services/list_tracker.go
package services

import (
	"sync"

	"github.com/google/uuid"
)

// ListTracker numbers list requests per session. Only the response to the
// most recently issued request may replace what the session displays.
type ListTracker struct {
	mu     sync.Mutex
	latest map[uuid.UUID]uint64
}

func NewListTracker() *ListTracker {
	return &ListTracker{latest: make(map[uuid.UUID]uint64)}
}

// Begin issues a new generation for the session.
func (t *ListTracker) Begin(session uuid.UUID) uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.latest[session]++
	return t.latest[session]
}

// IsLatest reports whether gen is still the newest request of the session.
func (t *ListTracker) IsLatest(session uuid.UUID, gen uint64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.latest[session] == gen
}

func (t *ListTracker) Forget(session uuid.UUID) {
	t.mu.Lock()
	defer t.mu.Unlock()

	delete(t.latest, session)
}
