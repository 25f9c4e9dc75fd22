// Package registry implements the object/version registry (spec.md §4.2):
// a per-version table mapping a class-id to the closures that size,
// decode, encode, verify, and promote/demote a frame-object. Dispatch is a
// tagged-variant lookup keyed by (format.Version, format.ClassID), the Go
// analogue of the compress package's builtinCodecs factory map — not a
// virtual-method hierarchy (spec.md §9 "Deep virtual hierarchy → tagged
// variants").
package registry

import (
	"fmt"

	"github.com/gwframe/frame/endian"
	"github.com/gwframe/frame/errs"
	"github.com/gwframe/frame/format"
	"github.com/gwframe/frame/frameobj"
	"github.com/gwframe/frame/internal/fixup"
)

// Context carries the per-stream state a registry closure needs to decode,
// encode, promote, or demote an object: the byte-order engine in effect and
// the stream's instance-id table for resolving and remapping outgoing
// references (spec.md §4.2 "Promotion" — "rewrites each outgoing reference
// slot by consulting the stream's instance-id table").
type Context struct {
	Engine  endian.EndianEngine
	Tracker *fixup.Tracker
	Path    string // stream path, for error reporting

	// InstanceIDOf resolves a reference target to the instance-id the
	// writer assigned it, consulted by Encode closures when serializing
	// outgoing references. Only required on the write path.
	InstanceIDOf func(obj frameobj.Object) (uint32, error)

	// ElementMask gates which of a FrameH's optional sub-references the
	// decoder chases (spec.md §4.3 "Query API": "read_frame_h(frame_index,
	// element_mask)"). The zero value means "decode every container" —
	// only a caller that wants to prune a sub-tree (the toc package's
	// masked reads) sets this explicitly. A bit not set here means that
	// container's entries are never handed to Tracker.Request in the
	// first place (spec.md §9 Open Question (a): masking happens before
	// queuing, not as a post-filter on results).
	ElementMask frameobj.ElementMask
}

// DecodeFunc decodes one object body from data (the structure header and
// trailing checksum already stripped by the caller), returning the decoded
// object and the number of bytes consumed.
type DecodeFunc func(ctx *Context, data []byte) (frameobj.Object, int, error)

// EncodeFunc appends obj's on-disk body to buf and returns the result.
type EncodeFunc func(ctx *Context, buf []byte, obj frameobj.Object) ([]byte, error)

// VerifyFunc checks obj against its class's verify rules (spec.md §4.5
// "Verify"), returning the first violation found.
type VerifyFunc func(obj frameobj.Object) error

// PromoteFunc constructs a fresh object at this descriptor's version from
// prev (an object at the adjacent lower version), copying forward
// non-reference fields and remapping reference slots via ctx.Tracker
// (spec.md §4.2 "Promotion").
type PromoteFunc func(ctx *Context, prev frameobj.Object) (frameobj.Object, error)

// DemoteFunc is the symmetric write-time operation (spec.md §4.2
// "Demotion").
type DemoteFunc func(ctx *Context, obj frameobj.Object) (frameobj.Object, error)

// ClassDescriptor is one registry entry: the full closure set for one class
// at one spec version.
type ClassDescriptor struct {
	ClassID format.ClassID
	Version format.Version

	Describe func() *frameobj.Description
	Decode   DecodeFunc
	Encode   EncodeFunc
	Verify   VerifyFunc

	// PromoteFromPrevious is nil for VMin, where there is no previous
	// version to promote from.
	PromoteFromPrevious PromoteFunc
	// DemoteToPrevious is nil for VMin, symmetrically.
	DemoteToPrevious DemoteFunc
}

// table is the per-version, per-class dispatch table (spec.md §4.2
// "maintain the chain from the lowest supported version to the highest").
// It is populated once by Initialize and never mutated afterward, so reads
// from concurrent streams need no locking.
var table map[format.Version]map[format.ClassID]ClassDescriptor

var initialized bool

// Initialize populates the registry for every supported version
// (format.VMin through format.VMax), consolidating per-version, per-class
// registration into a single call (spec.md §9 "single initialization
// function," replacing FrameCPP's per-translation-unit static
// initializers). Safe to call more than once; subsequent calls are no-ops.
func Initialize() {
	if initialized {
		return
	}

	table = make(map[format.Version]map[format.ClassID]ClassDescriptor)
	for v := format.VMin; v <= format.VMax; v++ {
		table[v] = buildVersionTable(v)
	}

	initialized = true
}

// Lookup returns the descriptor for class at version, or ErrSchemaMismatch
// if no such entry is registered (spec.md §4.2 "Dispatch").
func Lookup(version format.Version, class format.ClassID) (ClassDescriptor, error) {
	byClass, ok := table[version]
	if !ok {
		return ClassDescriptor{}, fmt.Errorf("%w: version %d", errs.ErrSchemaMismatch, version)
	}

	d, ok := byClass[class]
	if !ok {
		return ClassDescriptor{}, fmt.Errorf("%w: class %d at version %d", errs.ErrSchemaMismatch, class, version)
	}

	return d, nil
}

// Promote walks the descriptor chain from src up to dst (dst >= src),
// applying each version's PromoteFromPrevious in turn (spec.md §4.2
// "Promotion" — "recursively promote to T-1 ... then invoke the
// class-specific promote_from_previous registered for class(c) at version
// T"). Returns obj unchanged if dst == src.
func Promote(ctx *Context, class format.ClassID, src, dst format.Version, obj frameobj.Object) (frameobj.Object, error) {
	if dst < src {
		return nil, fmt.Errorf("registry: promote target version %d below source %d", dst, src)
	}

	cur := obj
	for v := src + 1; v <= dst; v++ {
		d, err := Lookup(v, class)
		if err != nil {
			return nil, err
		}
		if d.PromoteFromPrevious == nil {
			return nil, fmt.Errorf("registry: class %d has no promotion path to version %d", class, v)
		}

		cur, err = d.PromoteFromPrevious(ctx, cur)
		if err != nil {
			return nil, err
		}
	}

	return cur, nil
}

// Demote is the symmetric write-time operation (spec.md §4.2 "Demotion"),
// walking down from src to dst (dst <= src) via each version's
// DemoteToPrevious.
func Demote(ctx *Context, class format.ClassID, src, dst format.Version, obj frameobj.Object) (frameobj.Object, error) {
	if dst > src {
		return nil, fmt.Errorf("registry: demote target version %d above source %d", dst, src)
	}

	cur := obj
	for v := src; v > dst; v-- {
		d, err := Lookup(v, class)
		if err != nil {
			return nil, err
		}
		if d.DemoteToPrevious == nil {
			return nil, fmt.Errorf("%w: class %d has no demotion path below version %d", errs.ErrVersionNotExpressible, class, v)
		}

		cur, err = d.DemoteToPrevious(ctx, cur)
		if err != nil {
			return nil, err
		}
	}

	return cur, nil
}

// Describe returns the cached schema description for class at version.
func Describe(version format.Version, class format.ClassID) (*frameobj.Description, error) {
	d, err := Lookup(version, class)
	if err != nil {
		return nil, err
	}

	return d.Describe(), nil
}
