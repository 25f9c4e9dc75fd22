package toc

import (
	"fmt"

	"github.com/gwframe/frame/errs"
	"github.com/gwframe/frame/frameobj"
	"github.com/gwframe/frame/stream"
)

// ReadFrameH decodes the FrameH at frameIndex, gating its optional
// sub-references through mask (spec.md §4.3 "read_frame_h(frame_index,
// element_mask) -> FrameH"). Pass frameobj.MaskAll to chase every
// sub-reference.
func ReadFrameH(s *stream.Stream, p *Plan, frameIndex int, mask frameobj.ElementMask) (*frameobj.FrameH, error) {
	block, ok := p.toc.Frame(frameIndex)
	if !ok {
		return nil, fmt.Errorf("toc: %w: frame index %d", errs.ErrChannelNotFound, frameIndex)
	}

	if _, err := s.Seek(block.HeaderOffset, stream.SeekStart); err != nil {
		return nil, err
	}

	obj, err := s.DecodeObjectMasked(mask)
	if err != nil {
		return nil, err
	}

	f, ok := obj.(*frameobj.FrameH)
	if !ok {
		return nil, fmt.Errorf("toc: %w: expected FrameH at frame %d", errs.ErrFormat, frameIndex)
	}

	return f, nil
}

// ReadChannelByName decodes the named channel's payload in frame
// frameIndex (spec.md §4.3 "read_channel_by_name(payload_class,
// frame_index, name) -> Object").
func ReadChannelByName(s *stream.Stream, p *Plan, class PayloadClass, frameIndex int, name string) (frameobj.Object, error) {
	offset, err := channelOffset(s, p, class, frameIndex, name)
	if err != nil {
		return nil, err
	}

	if _, err := s.Seek(offset, stream.SeekStart); err != nil {
		return nil, err
	}

	return s.DecodeObject()
}

// ReadChannelByIndex decodes the i'th registered channel of class in frame
// frameIndex, in the order channels were first seen while building the TOC
// (spec.md §4.3 "read_channel_by_index(payload_class, frame_index, i) ->
// Object — ADC and proc only").
func ReadChannelByIndex(s *stream.Stream, p *Plan, class PayloadClass, frameIndex, i int) (frameobj.Object, error) {
	if class != ADC && class != Proc {
		return nil, fmt.Errorf("toc: %w: read_channel_by_index is only defined for ADC and Proc", errs.ErrDomain)
	}

	names := p.toc.ChannelNames(class)
	if i < 0 || i >= len(names) {
		return nil, fmt.Errorf("toc: %w: channel index %d", errs.ErrChannelNotFound, i)
	}

	return ReadChannelByName(s, p, class, frameIndex, names[i])
}

// ReadEventByType indexes across every frame's occurrences of typeName
// within eventClass (Event or SimEvent) and decodes the offset'th match, in
// frame order (spec.md §4.3 "read_event_by_type(event_class, type_name,
// offset) -> Object — flat indexing across frames by event type").
func ReadEventByType(s *stream.Stream, p *Plan, eventClass PayloadClass, typeName string, offset int) (frameobj.Object, error) {
	if eventClass != Event && eventClass != SimEvent {
		return nil, fmt.Errorf("toc: %w: read_event_by_type is only defined for Event and SimEvent", errs.ErrDomain)
	}

	positions, err := p.toc.PositionsFor(eventClass, typeName, s)
	if err != nil {
		return nil, err
	}

	matches := make([]int64, 0, len(positions))
	for _, off := range positions {
		if off != 0 {
			matches = append(matches, off)
		}
	}

	if offset < 0 || offset >= len(matches) {
		return nil, fmt.Errorf("toc: %w: event offset %d for type %q", errs.ErrChannelNotFound, offset, typeName)
	}

	if _, err := s.Seek(matches[offset], stream.SeekStart); err != nil {
		return nil, err
	}

	return s.DecodeObject()
}

func channelOffset(s *stream.Stream, p *Plan, class PayloadClass, frameIndex int, name string) (int64, error) {
	positions, err := p.toc.PositionsFor(class, name, s)
	if err != nil {
		return 0, err
	}

	if frameIndex < 0 || frameIndex >= len(positions) {
		return 0, fmt.Errorf("toc: %w: frame index %d", errs.ErrChannelNotFound, frameIndex)
	}

	offset := positions[frameIndex]
	if offset == 0 {
		return 0, fmt.Errorf("toc: %w: channel %q absent in frame %d", errs.ErrChannelNotFound, name, frameIndex)
	}

	return offset, nil
}
