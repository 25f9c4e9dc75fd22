package registry

import (
	"github.com/gwframe/frame/errs"
	"github.com/gwframe/frame/format"
	"github.com/gwframe/frame/frameobj"
)

// appendString appends a length-prefixed (uint16) string: the same prefix
// frameobj.Vector.EncodeBody uses for its own name field, but without the
// trailing NUL byte Vector writes after the name.
func appendString(buf []byte, ctx *Context, s string) []byte {
	buf = ctx.Engine.AppendUint16(buf, uint16(len(s)))
	return append(buf, s...)
}

// readString parses a length-prefixed string from the front of data,
// returning the remaining bytes.
func readString(data []byte, ctx *Context) (string, []byte, error) {
	if len(data) < 2 {
		return "", nil, errs.NewOffsetError(errs.ErrUnderrun, ctx.Path, 0)
	}

	n := int(ctx.Engine.Uint16(data[0:2]))
	if len(data) < 2+n {
		return "", nil, errs.NewOffsetError(errs.ErrUnderrun, ctx.Path, 2)
	}

	return string(data[2 : 2+n]), data[2+n:], nil
}

// appendRef appends a reference slot as a (class-id, instance-id) pair. A
// null reference is written as (0, 0), the designated null per spec.md §3
// "Reference closure".
func appendRef(buf []byte, ctx *Context, class format.ClassID, instanceID uint32) []byte {
	buf = ctx.Engine.AppendUint16(buf, uint16(class))
	return ctx.Engine.AppendUint32(buf, instanceID)
}

// readRef parses a (class-id, instance-id) pair and queues its resolution
// against ctx.Tracker, invoking assign once the target is known (spec.md
// §4.1 "Pointer model": forward references resolve lazily).
func readRef(data []byte, ctx *Context, assign func(frameobj.Object)) ([]byte, error) {
	if len(data) < 6 {
		return nil, errs.NewOffsetError(errs.ErrUnderrun, ctx.Path, 0)
	}

	class := format.ClassID(ctx.Engine.Uint16(data[0:2]))
	instanceID := ctx.Engine.Uint32(data[2:6])

	ctx.Tracker.Request(class, instanceID, func(target any) {
		if target == nil {
			assign(nil)
			return
		}
		assign(target.(frameobj.Object))
	})

	return data[6:], nil
}

// appendReference appends a single reference slot, resolving its
// instance-id via ctx.InstanceIDOf.
func appendReference(buf []byte, ctx *Context, ref frameobj.Ref) ([]byte, error) {
	if ref.IsNull() {
		return appendRef(buf, ctx, 0, 0), nil
	}

	id, err := ctx.InstanceIDOf(ref.Target)
	if err != nil {
		return nil, err
	}

	return appendRef(buf, ctx, ref.Target.ClassID(), id), nil
}

// appendSearchContainer appends a named-reference search container: a
// uint32 count followed by (name, ref) pairs in order.
func appendSearchContainer(buf []byte, ctx *Context, sc *frameobj.SearchContainer) ([]byte, error) {
	n := 0
	if sc != nil {
		n = sc.Len()
	}

	buf = ctx.Engine.AppendUint32(buf, uint32(n))
	for i := 0; i < n; i++ {
		name, ref := sc.At(i)
		buf = appendString(buf, ctx, name)

		var err error
		buf, err = appendReference(buf, ctx, ref)
		if err != nil {
			return nil, err
		}
	}

	return buf, nil
}

// appendRefSlice appends an unnamed, ordered list of references (used by
// ProcData's multi-vector Data field, spec.md §3).
func appendRefSlice(buf []byte, ctx *Context, refs []frameobj.Ref) ([]byte, error) {
	buf = ctx.Engine.AppendUint32(buf, uint32(len(refs)))
	for _, ref := range refs {
		var err error
		buf, err = appendReference(buf, ctx, ref)
		if err != nil {
			return nil, err
		}
	}

	return buf, nil
}

// readRefSlice parses a reference list written by appendRefSlice.
func readRefSlice(data []byte, ctx *Context) ([]frameobj.Ref, []byte, error) {
	if len(data) < 4 {
		return nil, nil, errs.NewOffsetError(errs.ErrUnderrun, ctx.Path, 0)
	}

	n := int(ctx.Engine.Uint32(data[0:4]))
	data = data[4:]

	refs := make([]frameobj.Ref, n)
	for i := 0; i < n; i++ {
		idx := i
		rest, err := readRef(data, ctx, func(obj frameobj.Object) {
			refs[idx] = frameobj.Ref{Target: obj}
		})
		if err != nil {
			return nil, nil, err
		}
		data = rest
	}

	return refs, data, nil
}

// readSearchContainer parses a search container written by
// appendSearchContainer, queuing a fixup per entry so each name is bound
// to its target as targets become available.
func readSearchContainer(data []byte, ctx *Context) (*frameobj.SearchContainer, []byte, error) {
	if len(data) < 4 {
		return nil, nil, errs.NewOffsetError(errs.ErrUnderrun, ctx.Path, 0)
	}

	n := int(ctx.Engine.Uint32(data[0:4]))
	data = data[4:]
	sc := frameobj.NewSearchContainer()

	for i := 0; i < n; i++ {
		name, rest, err := readString(data, ctx)
		if err != nil {
			return nil, nil, err
		}
		data = rest

		sc.Add(name, frameobj.Ref{})
		rest, err = readRef(data, ctx, func(obj frameobj.Object) {
			if obj != nil {
				sc.SetTarget(name, obj)
			}
		})
		if err != nil {
			return nil, nil, err
		}
		data = rest
	}

	return sc, data, nil
}

// skipSearchContainer advances past a search container written by
// appendSearchContainer without registering any of its entries or queuing
// any fixup — used when ctx.ElementMask excludes this container, so the
// names it holds never reach ctx.Tracker.Request in the first place
// (spec.md §9 Open Question (a): masking happens before queuing, not as a
// post-filter on results).
func skipSearchContainer(data []byte, ctx *Context) ([]byte, error) {
	if len(data) < 4 {
		return nil, errs.NewOffsetError(errs.ErrUnderrun, ctx.Path, 0)
	}

	n := int(ctx.Engine.Uint32(data[0:4]))
	data = data[4:]

	for i := 0; i < n; i++ {
		_, rest, err := readString(data, ctx)
		if err != nil {
			return nil, err
		}
		if len(rest) < 6 {
			return nil, errs.NewOffsetError(errs.ErrUnderrun, ctx.Path, 0)
		}
		data = rest[6:]
	}

	return data, nil
}
