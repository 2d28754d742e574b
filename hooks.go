package scholardb

import (
	"sync"

	"github.com/ugoscholars/scholardb/pkg/differ"
	"github.com/ugoscholars/scholardb/pkg/records"
)

// Hook function types for student events
type (
	// StudentAddedHook is called when a new student is appended to the master table
	StudentAddedHook func(row records.Row)

	// StudentUpdatedHook is called when blank fields of an existing student are filled
	StudentUpdatedHook func(old, new records.Row)
)

// Hooks registers callbacks that fire after a run has been persisted.
type Hooks interface {
	OnStudentAdded(fn StudentAddedHook)
	OnStudentUpdated(fn StudentUpdatedHook)
}

// hooks manages event callbacks for master table changes
type hooks struct {
	mu               sync.RWMutex
	onStudentAdded   []StudentAddedHook
	onStudentUpdated []StudentUpdatedHook
}

// newHooks creates a new hooks instance
func newHooks() *hooks {
	return &hooks{}
}

// OnStudentAdded registers a callback for when students are added
func (h *hooks) OnStudentAdded(fn StudentAddedHook) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onStudentAdded = append(h.onStudentAdded, fn)
}

// OnStudentUpdated registers a callback for when students are updated
func (h *hooks) OnStudentUpdated(fn StudentUpdatedHook) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onStudentUpdated = append(h.onStudentUpdated, fn)
}

// OnStudentAdded registers a callback for when students are added
func (c *client) OnStudentAdded(fn StudentAddedHook) { c.hooks.OnStudentAdded(fn) }

// OnStudentUpdated registers a callback for when students are updated
func (c *client) OnStudentUpdated(fn StudentUpdatedHook) { c.hooks.OnStudentUpdated(fn) }

// trigger fires the registered hooks for every change in cs, added students first.
func (h *hooks) trigger(cs *differ.Changeset) {
	if cs == nil {
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, row := range cs.Added {
		for _, hook := range h.onStudentAdded {
			hook(row.Clone())
		}
	}
	for _, u := range cs.Updated {
		for _, hook := range h.onStudentUpdated {
			hook(u.Existing.Clone(), u.New.Clone())
		}
	}
}
