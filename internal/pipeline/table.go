package pipeline

import (
	"sync"

	"github.com/obswatch/lenswatch/internal/star"
)

// readyWindow is one star's snapshot for a single tick.
type readyWindow struct {
	StarID star.StarID
	Window []float32
}

// starTable is the SlidingStars collection from spec.md §5: the Ticker
// pushes samples and inserts stars, the Detector snapshots ready
// windows and removes triggered stars. The two-barrier handshake keeps
// the Ticker's pushes apart from the Detector's snapshot; the Detector's
// removals happen after the computation barrier, concurrently with the
// Ticker's next pushes, and the mutex serializes the two.
type starTable struct {
	mu      sync.Mutex
	entries map[star.StarID]*star.Sliding
	order   []star.StarID
}

func newStarTable() *starTable {
	return &starTable{entries: make(map[star.StarID]*star.Sliding)}
}

// ensure returns the Sliding window for id, creating it with params
// (and the next fragment phase in insertion order) if id is not in the
// table. A star dropped by remove is re-created, with an empty window,
// the next time ensure is called for it.
func (t *starTable) ensure(id star.StarID, params star.Params) *star.Sliding {
	t.mu.Lock()
	defer t.mu.Unlock()

	var s, ok = t.entries[id]
	if ok {
		return s
	}

	if params.Fragment < 1 {
		params.Fragment = 1
	}

	params.Phase = len(t.order) % params.Fragment

	s = star.New(id, params)
	t.entries[id] = s
	t.order = append(t.order, id)

	return s
}

// remove drops id from the table, called by the Detector as a
// consequence of a trigger (spec.md §5).
func (t *starTable) remove(id star.StarID) {
	t.mu.Lock()
	defer t.mu.Unlock()

	delete(t.entries, id)
}

// push delivers one sample to id's Sliding window. Returns false if id
// is not in the table.
func (t *starTable) push(id star.StarID, sample float32) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	var s, ok = t.entries[id]
	if !ok {
		return false
	}

	s.Push(sample)

	return true
}

// snapshot collects (star_id, window) for every currently ready star.
// Order across stars within a tick is unspecified (spec.md §5); this
// implementation iterates insertion order for determinism in tests.
func (t *starTable) snapshot() []readyWindow {
	t.mu.Lock()
	defer t.mu.Unlock()

	var out []readyWindow

	for _, id := range t.order {
		var s, ok = t.entries[id]
		if !ok {
			continue
		}

		if w, ready := s.Window(); ready {
			out = append(out, readyWindow{StarID: id, Window: w})
		}
	}

	return out
}

func (t *starTable) size() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	return len(t.entries)
}
