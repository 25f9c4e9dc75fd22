// Package collision assigns TOC row indices to channel names and detects
// the case where two distinct names hash to the same slot — a genuine
// collision that would otherwise silently alias their rows (spec.md §4.3
// "Per-channel tables": "a dictionary mapping channel name to that array's
// row").
package collision

import "github.com/gwframe/frame/errs"

// Tracker maps channel names to row indices in TOC build order, keyed by a
// caller-supplied content hash (internal/hash.ID in practice) so row
// lookup during TOC assembly never needs a second pass over the name list.
type Tracker struct {
	byHash map[uint64]string
	rows   map[string]int
	order  []string
}

// NewTracker creates an empty row tracker.
func NewTracker() *Tracker {
	return &Tracker{
		byHash: make(map[uint64]string),
		rows:   make(map[string]int),
		order:  make([]string, 0),
	}
}

// Register assigns name its row the first time it is seen and returns that
// same row on every later call for the same name, idempotently — a TOC
// builder calls this once per channel per frame, and only the first frame's
// call actually allocates a row.
//
// Returns errs.ErrInvalidMetricName if name is empty, or
// errs.ErrNameCollision if a different name already claimed hash.
func (t *Tracker) Register(name string, hash uint64) (int, error) {
	if name == "" {
		return 0, errs.ErrInvalidMetricName
	}

	if row, ok := t.rows[name]; ok {
		return row, nil
	}

	if existing, ok := t.byHash[hash]; ok && existing != name {
		return 0, errs.ErrNameCollision
	}

	row := len(t.order)
	t.order = append(t.order, name)
	t.rows[name] = row
	t.byHash[hash] = name

	return row, nil
}

// Row returns the row assigned to name, if any.
func (t *Tracker) Row(name string) (int, bool) {
	row, ok := t.rows[name]
	return row, ok
}

// Names returns the tracked names in registration order.
func (t *Tracker) Names() []string {
	return t.order
}

// Count returns the number of distinct rows assigned.
func (t *Tracker) Count() int {
	return len(t.order)
}

// Reset clears all tracked rows, preserving the underlying maps' capacity
// so the tracker can be reused for the next TOC build.
func (t *Tracker) Reset() {
	for k := range t.byHash {
		delete(t.byHash, k)
	}
	for k := range t.rows {
		delete(t.rows, k)
	}
	t.order = t.order[:0]
}
