package stream

import (
	"fmt"

	"github.com/gwframe/frame/checksum"
	"github.com/gwframe/frame/errs"
	"github.com/gwframe/frame/format"
	"github.com/gwframe/frame/frameobj"
	"github.com/gwframe/frame/registry"
	"github.com/gwframe/frame/wire"
)

// ReadStructure advances to the next structure boundary and returns its
// class-id, instance-id, and body bytes (the structure header and
// trailing checksum already stripped), per spec.md §4.1
// "read_structure() -> (class_id, instance_id, payload_reader)". The
// returned slice is valid only until the stream's position next advances.
func (s *Stream) ReadStructure() (format.ClassID, uint32, []byte, error) {
	if s.errored {
		return 0, 0, nil, errs.ErrStreamErrored
	}

	hdrBuf := make([]byte, wire.StructureHeaderSize)
	if _, err := s.buf.ReadAt(hdrBuf, s.pos); err != nil {
		s.errored = true
		return 0, 0, nil, fmt.Errorf("stream: %w: %w", errs.ErrIO, err)
	}

	hdr, err := wire.ParseStructureHeader(hdrBuf, s.header.Engine)
	if err != nil {
		s.errored = true
		return 0, 0, nil, err
	}

	if hdr.Length < uint64(wire.StructureHeaderSize+wire.StructureChecksumSize) {
		s.errored = true
		return 0, 0, nil, errs.NewOffsetError(errs.ErrUnderrun, s.path, s.pos)
	}

	if s.pos+int64(hdr.Length) > s.buf.Len() {
		s.errored = true
		return 0, 0, nil, errs.NewOffsetError(errs.ErrLengthExceedsFile, s.path, s.pos).
			WithExpected(s.pos+int64(hdr.Length), s.buf.Len())
	}

	bodyLen := int(hdr.Length) - wire.StructureHeaderSize - wire.StructureChecksumSize
	span := make([]byte, wire.StructureHeaderSize+bodyLen)
	if _, err := s.buf.ReadAt(span, s.pos); err != nil {
		s.errored = true
		return 0, 0, nil, fmt.Errorf("stream: %w: %w", errs.ErrIO, err)
	}

	trailer := make([]byte, wire.StructureChecksumSize)
	if _, err := s.buf.ReadAt(trailer, s.pos+int64(len(span))); err != nil {
		s.errored = true
		return 0, 0, nil, fmt.Errorf("stream: %w: %w", errs.ErrIO, err)
	}
	stored := s.header.Engine.Uint32(trailer)

	sCRC := checksum.NewStructureCRC(s.pos)
	if _, err := sCRC.PubFilter(span, s.pos); err != nil {
		s.errored = true
		return 0, 0, nil, err
	}
	if sCRC.Sum() != stored {
		s.errored = true
		return 0, 0, nil, errs.NewOffsetError(errs.ErrChecksumMismatch, s.path, s.pos).
			WithExpected(sCRC.Sum(), stored)
	}

	if err := s.chain.Walk(append(span, trailer...), s.pos); err != nil {
		s.errored = true
		return 0, 0, nil, err
	}

	body := span[wire.StructureHeaderSize:]
	s.pos += int64(hdr.Length)

	return hdr.ClassID, hdr.InstanceID, body, nil
}

// WriteStructure reserves a length-prefixed slot for classID/instanceID,
// runs bodyFn to produce the body bytes, then backpatches the length and
// appends the trailing checksum (spec.md §4.1 "write_structure(class_id,
// bytes_fn)").
func (s *Stream) WriteStructure(classID format.ClassID, instanceID uint32, bodyFn func([]byte) ([]byte, error)) error {
	if s.errored {
		return errs.ErrStreamErrored
	}
	if s.mode == ModeRead {
		return fmt.Errorf("stream: %w: cannot write on a read-only stream", errs.ErrDomain)
	}

	start := s.pos
	body, err := bodyFn(nil)
	if err != nil {
		s.errored = true
		return err
	}

	hdr := wire.StructureHeader{
		Length:     uint64(wire.StructureHeaderSize + len(body) + wire.StructureChecksumSize),
		ClassID:    classID,
		InstanceID: instanceID,
	}
	span := append(hdr.Bytes(s.header.Engine), body...)

	sCRC := checksum.NewStructureCRC(start)
	if _, err := sCRC.PubFilter(span, start); err != nil {
		s.errored = true
		return err
	}
	trailer := s.header.Engine.AppendUint32(nil, sCRC.Sum())

	full := append(span, trailer...)
	if _, err := s.buf.WriteAt(full, start); err != nil {
		s.errored = true
		return fmt.Errorf("stream: %w: %w", errs.ErrIO, err)
	}

	if err := s.chain.Walk(full, start); err != nil {
		s.errored = true
		return err
	}

	s.pos = start + int64(len(full))
	s.wroteAnyStructure = true

	return nil
}

// DecodeObject reads the next structure and dispatches it through the
// registry, registering the result in the stream's instance-id table and
// promoting it to format.Current (spec.md §4.2: "in-memory objects
// produced to external callers are always of the current version").
// Returns errs.ErrSchemaMismatch if the class-id is unregistered for the
// file's declared version.
func (s *Stream) DecodeObject() (frameobj.Object, error) {
	classID, instanceID, body, err := s.ReadStructure()
	if err != nil {
		return nil, err
	}

	d, err := registry.Lookup(s.header.Version, classID)
	if err != nil {
		return nil, err
	}

	ctx := s.Context()
	obj, _, err := d.Decode(ctx, body)
	if err != nil {
		return nil, err
	}

	if s.header.Version != format.Current {
		obj, err = registry.Promote(ctx, classID, s.header.Version, format.Current, obj)
		if err != nil {
			return nil, err
		}
	}

	if err := s.tracker.Register(classID, instanceID, obj); err != nil {
		return nil, err
	}

	return obj, nil
}

// DecodeObjectMasked behaves like DecodeObject but gates FrameH's optional
// sub-references through mask, short-circuiting unselected references
// before they are ever queued against the fixup tracker (spec.md §4.3
// "read_frame_h(frame_index, element_mask)"; see DESIGN.md's Open Question
// (c)). Classes other than FrameH ignore mask.
func (s *Stream) DecodeObjectMasked(mask frameobj.ElementMask) (frameobj.Object, error) {
	classID, instanceID, body, err := s.ReadStructure()
	if err != nil {
		return nil, err
	}

	d, err := registry.Lookup(s.header.Version, classID)
	if err != nil {
		return nil, err
	}

	ctx := s.Context()
	ctx.ElementMask = mask
	obj, _, err := d.Decode(ctx, body)
	if err != nil {
		return nil, err
	}

	if s.header.Version != format.Current {
		obj, err = registry.Promote(ctx, classID, s.header.Version, format.Current, obj)
		if err != nil {
			return nil, err
		}
	}

	if err := s.tracker.Register(classID, instanceID, obj); err != nil {
		return nil, err
	}

	return obj, nil
}

// WriteObject assigns obj an instance-id (if it doesn't already have one)
// and writes it through the registry's encoder at format.Current.
func (s *Stream) WriteObject(obj frameobj.Object) error {
	id := s.AssignInstanceID(obj)

	d, err := registry.Lookup(format.Current, obj.ClassID())
	if err != nil {
		return err
	}

	ctx := s.Context()
	err = s.WriteStructure(obj.ClassID(), id, func(buf []byte) ([]byte, error) {
		return d.Encode(ctx, buf, obj)
	})
	if err != nil {
		return err
	}

	s.written[obj] = true

	return nil
}
