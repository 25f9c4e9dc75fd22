// Package frame provides convenient top-level wrappers around the
// component packages (stream, registry, toc) that implement the LIGO/Virgo
// frame format, simplifying the most common open-write-close and
// open-query-close flows.
//
// For advanced usage and fine-grained control — masked FrameH decoding,
// Plan reuse across files, installing custom filters — use the stream and
// toc packages directly.
package frame

import (
	"github.com/gwframe/frame/errs"
	"github.com/gwframe/frame/frameobj"
	"github.com/gwframe/frame/registry"
	"github.com/gwframe/frame/stream"
	"github.com/gwframe/frame/toc"
)

func init() {
	registry.Initialize()
}

// Option configures Create or Open. It is an alias of stream.Option so
// callers can pass stream.WithLibraryName, stream.WithMMap, etc. directly.
type Option = stream.Option

// Writer is an open frame file being built: a write-mode Stream plus the
// in-memory TOC accumulating one block per frame written.
type Writer struct {
	s   *stream.Stream
	toc *toc.TOC
}

// Create opens path for writing, emitting a fresh file header (spec.md
// §4.1 "open(path, mode, ...)").
func Create(path string, opts ...Option) (*Writer, error) {
	s, err := stream.Open(path, stream.ModeWrite, opts...)
	if err != nil {
		return nil, err
	}

	return &Writer{s: s, toc: toc.New()}, nil
}

// Stream exposes the writer's underlying Stream for advanced use (installing
// filters, raw writes).
func (w *Writer) Stream() *stream.Stream {
	return w.s
}

// WriteFrameH writes fh and opens a new per-frame TOC block at the
// header's on-disk offset. Must be called once per frame, before writing
// that frame's channels, since ADC/proc/ser/sim/event registrations are
// indexed by frame position.
func (w *Writer) WriteFrameH(fh *frameobj.FrameH) error {
	offset := w.s.Tell()
	if err := w.s.WriteObject(fh); err != nil {
		return err
	}

	w.toc.AddFrame(toc.FrameBlock{
		FrameNum:     fh.FrameNum,
		GTimeS:       fh.GTimeS,
		GTimeN:       fh.GTimeN,
		Dt:           fh.Dt,
		RunNum:       fh.RunNum,
		ULeapS:       fh.ULeapS,
		DataQuality:  fh.DataQuality,
		HeaderOffset: offset,
	})

	return nil
}

// WriteChannel writes obj and registers it under name in class for the
// most recently started frame (spec.md §4.3 "Per-channel tables").
func (w *Writer) WriteChannel(class toc.PayloadClass, name string, obj frameobj.Object) error {
	offset := w.s.Tell()
	if err := w.s.WriteObject(obj); err != nil {
		return err
	}

	frameIndex := w.toc.FrameCount() - 1
	if frameIndex < 0 {
		return errs.ErrDomain
	}

	return w.toc.RegisterChannel(class, name, frameIndex, offset)
}

// WriteADCChannel writes adc and registers its (channelID, groupID) identity
// alongside the name, for the most recently started frame (spec.md §4.3
// "ADC identity").
func (w *Writer) WriteADCChannel(name string, channelID, groupID uint32, adc frameobj.Object) error {
	offset := w.s.Tell()
	if err := w.s.WriteObject(adc); err != nil {
		return err
	}

	frameIndex := w.toc.FrameCount() - 1
	if frameIndex < 0 {
		return errs.ErrDomain
	}

	return w.toc.RegisterADCChannel(name, channelID, groupID, frameIndex, offset)
}

// Close writes the TOC trailer (positions cache, FrTOC structure,
// end-of-file record) and flushes the file to disk (spec.md §4.3
// "on-disk layout invariant"; spec.md §4.1 "close()").
func (w *Writer) Close() error {
	if err := w.toc.WriteTrailer(w.s); err != nil {
		return err
	}

	return w.s.Close()
}

// Reader is an open frame file being queried: a read-mode Stream plus the
// Plan built from its TOC.
type Reader struct {
	s    *stream.Stream
	plan *toc.Plan
}

// Open opens path for reading and loads its Plan (spec.md §4.3 "Plan
// reuse"). Pass a Plan obtained from a prior Reader's Plan() as seed to
// potentially skip re-parsing the TOC when the two files share a frame
// layout.
func Open(path string, seed *toc.Plan, opts ...Option) (*Reader, error) {
	s, err := stream.Open(path, stream.ModeRead, opts...)
	if err != nil {
		return nil, err
	}

	plan, err := toc.Load(s, seed)
	if err != nil {
		_ = s.Close()
		return nil, err
	}

	return &Reader{s: s, plan: plan}, nil
}

// Stream exposes the reader's underlying Stream for advanced use.
func (r *Reader) Stream() *stream.Stream {
	return r.s
}

// Plan returns the reader's loaded Plan, suitable as a seed for a
// subsequent Open call against a file with the same frame layout.
func (r *Reader) Plan() *toc.Plan {
	return r.plan
}

// FrameCount returns the number of frames in the open file.
func (r *Reader) FrameCount() int {
	return r.plan.FrameCount()
}

// ReadFrameH decodes the FrameH at frameIndex, chasing every optional
// sub-reference (spec.md §4.3 "read_frame_h"). Use r.Stream() with
// toc.ReadFrameH directly for masked reads that prune unwanted sub-trees.
func (r *Reader) ReadFrameH(frameIndex int) (*frameobj.FrameH, error) {
	return toc.ReadFrameH(r.s, r.plan, frameIndex, frameobj.MaskAll)
}

// ReadChannelByName decodes the named channel's payload in frame
// frameIndex (spec.md §4.3 "read_channel_by_name").
func (r *Reader) ReadChannelByName(class toc.PayloadClass, frameIndex int, name string) (frameobj.Object, error) {
	return toc.ReadChannelByName(r.s, r.plan, class, frameIndex, name)
}

// ReadEventByType indexes across every frame's occurrences of typeName
// within eventClass and decodes the offset'th match (spec.md §4.3
// "read_event_by_type").
func (r *Reader) ReadEventByType(eventClass toc.PayloadClass, typeName string, offset int) (frameobj.Object, error) {
	return toc.ReadEventByType(r.s, r.plan, eventClass, typeName, offset)
}

// ChannelNames returns the names registered for class, in TOC dictionary
// order (spec.md §4.3 "name→row dictionary").
func (r *Reader) ChannelNames(class toc.PayloadClass) []string {
	return r.plan.TOC().ChannelNames(class)
}

// Close releases the reader's underlying Stream.
func (r *Reader) Close() error {
	return r.s.Close()
}
