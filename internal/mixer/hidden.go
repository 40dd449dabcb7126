package mixer

import "sync"

// HiddenSet holds the ids of streams the user closed. Membership is by stream
// id, never by identity key, so a new stream of the same application shows up.
type HiddenSet struct {
	mu  sync.RWMutex
	ids map[StreamID]struct{}
}

// NewHiddenSet returns an empty set.
func NewHiddenSet() *HiddenSet {
	return &HiddenSet{ids: make(map[StreamID]struct{})}
}

// Add hides id.
func (h *HiddenSet) Add(id StreamID) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.ids[id] = struct{}{}
}

// Has reports whether id is hidden.
func (h *HiddenSet) Has(id StreamID) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.ids[id]
	return ok
}

// Clear unhides everything.
func (h *HiddenSet) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.ids = make(map[StreamID]struct{})
}

// Retain drops every id not in present and returns how many were dropped.
// Once a hidden stream is gone its id may be handed to an unrelated stream.
func (h *HiddenSet) Retain(present map[StreamID]struct{}) int {
	h.mu.Lock()
	defer h.mu.Unlock()

	dropped := 0
	for id := range h.ids {
		if _, ok := present[id]; !ok {
			delete(h.ids, id)
			dropped++
		}
	}
	return dropped
}

// Len returns the number of hidden ids.
func (h *HiddenSet) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.ids)
}
