// Package fixup implements the stream engine's two-pass reference
// resolution (spec.md §4.1 "Pointer model", §9 "Back-references and
// cycles"): a per-class instance-id → object table, and a queue of pending
// (holder, class-id, instance-id) fixups drained as targets become known.
//
// The shape mirrors the teacher's internal/collision.Tracker: a map keyed
// for fast duplicate/target detection, plus an ordered slice for the
// entries that still need work.
package fixup

import (
	"github.com/gwframe/frame/errs"
	"github.com/gwframe/frame/format"
)

type key struct {
	class format.ClassID
	inst  uint32
}

// Resolver receives the resolved object once its target becomes known.
type Resolver func(target any)

type pending struct {
	class   format.ClassID
	inst    uint32
	resolve Resolver
}

// Tracker owns one stream's instance-id table and pending-fixup queue.
// It is not safe for concurrent use (spec.md §5 "Per-stream single-threaded").
type Tracker struct {
	objects map[key]any
	queue   []pending
	path    string // stream path, for error reporting
}

// NewTracker creates an empty tracker for a stream opened at path.
func NewTracker(path string) *Tracker {
	return &Tracker{
		objects: make(map[key]any),
		path:    path,
	}
}

// Register records a fully-decoded object under (class, instanceID) and
// drains any pending fixups waiting on it. Returns ErrDuplicateInstance if
// the (class, instanceID) pair was already registered, enforcing the
// instance-id uniqueness invariant (spec.md §3).
func (t *Tracker) Register(class format.ClassID, instanceID uint32, obj any) error {
	k := key{class, instanceID}
	if _, exists := t.objects[k]; exists {
		return errs.NewReferenceError(errs.ErrDuplicateInstance, t.path, int16(class), instanceID)
	}

	t.objects[k] = obj
	t.drain()

	return nil
}

// Lookup returns the object registered for (class, instanceID), if any.
func (t *Tracker) Lookup(class format.ClassID, instanceID uint32) (any, bool) {
	obj, ok := t.objects[key{class, instanceID}]
	return obj, ok
}

// Request queues a fixup for (class, instanceID). If the target is already
// registered, resolve is invoked immediately and the entry is not queued.
// instanceID == 0 is the designated null reference and is resolved to nil
// without being queued (spec.md §3 "Reference closure").
func (t *Tracker) Request(class format.ClassID, instanceID uint32, resolve Resolver) {
	if instanceID == 0 {
		resolve(nil)
		return
	}

	if obj, ok := t.Lookup(class, instanceID); ok {
		resolve(obj)
		return
	}

	t.queue = append(t.queue, pending{class: class, inst: instanceID, resolve: resolve})
}

// drain attempts to resolve every queued fixup against the current object
// table, removing the ones that succeed.
func (t *Tracker) drain() {
	if len(t.queue) == 0 {
		return
	}

	remaining := t.queue[:0]
	for _, p := range t.queue {
		if obj, ok := t.objects[key{p.class, p.inst}]; ok {
			p.resolve(obj)
			continue
		}
		remaining = append(remaining, p)
	}
	t.queue = remaining
}

// Pending returns the number of fixups still unresolved. A complete read
// must observe Pending() == 0 once the TOC has been reached (spec.md §8
// property 5 "Reference closure").
func (t *Tracker) Pending() int {
	return len(t.queue)
}

// FailDangling returns a ReferenceError for the first still-unresolved
// fixup, or nil if every reference resolved. Call after the TOC is read.
func (t *Tracker) FailDangling() error {
	if len(t.queue) == 0 {
		return nil
	}

	first := t.queue[0]
	return errs.NewReferenceError(errs.ErrDanglingReference, t.path, int16(first.class), first.inst)
}

// Count returns the number of distinct (class, instanceID) objects registered.
func (t *Tracker) Count() int {
	return len(t.objects)
}

// Reset clears all registered objects and pending fixups, allowing the
// tracker to be reused across streams (mirrors collision.Tracker.Reset,
// preserving map/slice capacity to avoid reallocation).
func (t *Tracker) Reset() {
	for k := range t.objects {
		delete(t.objects, k)
	}
	t.queue = t.queue[:0]
}
