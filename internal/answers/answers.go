// Package answers provides the live answer map for a form session.
//
// The map is readable synchronously and observable: every Set publishes the
// changed question id to all subscribers. The evaluation scheduler
// subscribes to drive debounced re-evaluation; readers take snapshots and
// never see partial writes.
package answers

import (
	"sync"

	"github.com/calyx-health/formgate/internal/types"
)

// Map is a concurrent observable map of question id to raw answer value.
// Values are whatever the field widgets produce (string, bool, float64,
// []string); projection to wire form happens at evaluation time.
type Map struct {
	mu     sync.RWMutex
	values map[types.QuestionID]any
	subs   []chan types.QuestionID
}

// NewMap creates an empty answer map.
func NewMap() *Map {
	return &Map{values: make(map[types.QuestionID]any)}
}

// Set stores an answer and notifies subscribers.
// Notification is non-blocking; a subscriber that falls behind loses
// individual change events but not state, since evaluation always reads a
// fresh snapshot.
func (m *Map) Set(id types.QuestionID, value any) {
	m.mu.Lock()
	m.values[id] = value
	subs := make([]chan types.QuestionID, len(m.subs))
	copy(subs, m.subs)
	m.mu.Unlock()

	for _, ch := range subs {
		select {
		case ch <- id:
		default:
		}
	}
}

// Delete removes an answer and notifies subscribers.
func (m *Map) Delete(id types.QuestionID) {
	m.mu.Lock()
	delete(m.values, id)
	subs := make([]chan types.QuestionID, len(m.subs))
	copy(subs, m.subs)
	m.mu.Unlock()

	for _, ch := range subs {
		select {
		case ch <- id:
		default:
		}
	}
}

// Get returns the current answer for a question.
func (m *Map) Get(id types.QuestionID) (any, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[id]
	return v, ok
}

// Snapshot returns a copy of the full answer map.
func (m *Map) Snapshot() map[types.QuestionID]any {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[types.QuestionID]any, len(m.values))
	for k, v := range m.values {
		out[k] = v
	}
	return out
}

// Subscribe registers a change channel with the given buffer size.
// The returned channel receives the id of every changed question.
func (m *Map) Subscribe(buffer int) <-chan types.QuestionID {
	ch := make(chan types.QuestionID, buffer)
	m.mu.Lock()
	m.subs = append(m.subs, ch)
	m.mu.Unlock()
	return ch
}
