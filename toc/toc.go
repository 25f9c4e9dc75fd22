// Package toc implements the Table of Contents and Plan engine (spec.md
// §4.3): an O(1) index of "give me the payload of channel C in frame F"
// built from a per-frame block list plus one per-channel position table
// per named-channel payload class, without forcing a whole-file scan on
// every query.
package toc

import (
	"math"

	"github.com/gwframe/frame/endian"
	"github.com/gwframe/frame/errs"
	"github.com/gwframe/frame/format"
)

// PayloadClass enumerates the named-channel payload kinds a TOC indexes
// separately (spec.md §4.3 "Per-channel tables": "ADC, proc, ser, sim,
// sim-event, event").
type PayloadClass int

const (
	ADC PayloadClass = iota
	Proc
	Ser
	Sim
	SimEvent
	Event
)

func (c PayloadClass) String() string {
	switch c {
	case ADC:
		return "ADC"
	case Proc:
		return "Proc"
	case Ser:
		return "Ser"
	case Sim:
		return "Sim"
	case SimEvent:
		return "SimEvent"
	case Event:
		return "Event"
	default:
		return "Unknown"
	}
}

// ClassID returns the registry class-id of the payload this table indexes.
func (c PayloadClass) ClassID() format.ClassID {
	switch c {
	case ADC:
		return format.ClassFrAdcData
	case Proc:
		return format.ClassFrProcData
	case Ser:
		return format.ClassFrSerData
	case Sim:
		return format.ClassFrSimData
	case SimEvent:
		return format.ClassFrSimEvent
	case Event:
		return format.ClassFrEvent
	default:
		return 0
	}
}

// allClasses fixes the on-disk and in-memory iteration order for
// per-channel tables; both the eager dictionary block and the lazily
// loaded positions-cache block lay their per-class regions out in this
// order, so a class's byte range within the cache is computable from the
// row counts of the classes before it without any extra header.
var allClasses = [...]PayloadClass{ADC, Proc, Ser, Sim, SimEvent, Event}

// FrameBlock is one frame's fixed-size TOC entry (spec.md §4.3 "Per-frame
// block"): identity fields plus the byte offsets of the frame header and
// each first-class payload kind's first entry within the frame.
type FrameBlock struct {
	FrameNum    uint32
	GTimeS      uint32
	GTimeN      uint32
	Dt          float64
	RunNum      int32
	ULeapS      uint16
	DataQuality uint32

	HeaderOffset  int64 // byte offset of the frame header (FrameH structure)
	ADCOffset     int64 // byte offset of the frame's first ADC payload
	SerOffset     int64 // byte offset of the frame's first ser payload
	TableOffset   int64 // byte offset of the frame's first table
	SummaryOffset int64 // byte offset of the frame's first summary block
	MessageOffset int64 // byte offset of the frame's first message (history/event record)
}

const frameBlockSize = 4 + 4 + 4 + 8 + 4 + 2 + 4 + 8*6

func (b FrameBlock) encode(engine endian.EndianEngine, buf []byte) []byte {
	buf = engine.AppendUint32(buf, b.FrameNum)
	buf = engine.AppendUint32(buf, b.GTimeS)
	buf = engine.AppendUint32(buf, b.GTimeN)
	buf = engine.AppendUint64(buf, float64Bits(b.Dt))
	buf = engine.AppendUint32(buf, uint32(b.RunNum))
	buf = engine.AppendUint16(buf, b.ULeapS)
	buf = engine.AppendUint32(buf, b.DataQuality)
	buf = engine.AppendUint64(buf, uint64(b.HeaderOffset))
	buf = engine.AppendUint64(buf, uint64(b.ADCOffset))
	buf = engine.AppendUint64(buf, uint64(b.SerOffset))
	buf = engine.AppendUint64(buf, uint64(b.TableOffset))
	buf = engine.AppendUint64(buf, uint64(b.SummaryOffset))
	buf = engine.AppendUint64(buf, uint64(b.MessageOffset))

	return buf
}

func decodeFrameBlock(data []byte, engine endian.EndianEngine) (FrameBlock, []byte, error) {
	if len(data) < frameBlockSize {
		return FrameBlock{}, nil, errs.ErrUnderrun
	}

	b := FrameBlock{
		FrameNum:      engine.Uint32(data[0:4]),
		GTimeS:        engine.Uint32(data[4:8]),
		GTimeN:        engine.Uint32(data[8:12]),
		Dt:            float64FromBits(engine.Uint64(data[12:20])),
		RunNum:        int32(engine.Uint32(data[20:24])),
		ULeapS:        engine.Uint16(data[24:26]),
		DataQuality:   engine.Uint32(data[26:30]),
		HeaderOffset:  int64(engine.Uint64(data[30:38])),
		ADCOffset:     int64(engine.Uint64(data[38:46])),
		SerOffset:     int64(engine.Uint64(data[46:54])),
		TableOffset:   int64(engine.Uint64(data[54:62])),
		SummaryOffset: int64(engine.Uint64(data[62:70])),
		MessageOffset: int64(engine.Uint64(data[70:78])),
	}

	return b, data[frameBlockSize:], nil
}

// TOC is the in-memory table of contents for one open file: the ordered
// per-frame blocks plus one per-channel table per PayloadClass (spec.md
// §4.3). The per-channel tables' name→row dictionaries are parsed eagerly;
// their per-frame position arrays are left to materialize lazily, see
// channelTable.
type TOC struct {
	frames   []FrameBlock
	channels map[PayloadClass]*channelTable

	// positionsCacheOffset is the TOC's single "offset from end-of-file" to
	// the positions-cache block (spec.md §4.3 "On-disk layout invariant").
	// Zero until SetPositionsCacheOffset or Decode sets it; Encode writes
	// the current value.
	positionsCacheOffset uint64
}

// New creates an empty TOC, one channelTable per named-channel payload class.
func New() *TOC {
	t := &TOC{channels: make(map[PayloadClass]*channelTable, len(allClasses))}
	for _, c := range allClasses {
		t.channels[c] = newChannelTable(c)
	}

	return t
}

// AddFrame appends one frame's block to the TOC, in frame order.
func (t *TOC) AddFrame(b FrameBlock) {
	t.frames = append(t.frames, b)
	for _, ct := range t.channels {
		ct.growTo(len(t.frames))
	}
}

// FrameCount returns the number of frames indexed.
func (t *TOC) FrameCount() int {
	return len(t.frames)
}

// Frame returns the frame block at frameIndex.
func (t *TOC) Frame(frameIndex int) (FrameBlock, bool) {
	if frameIndex < 0 || frameIndex >= len(t.frames) {
		return FrameBlock{}, false
	}

	return t.frames[frameIndex], true
}

// RunNumbers returns the distinct run identifiers across all indexed
// frames, in first-seen order — the comparison key Plan reuse uses
// alongside frame count (spec.md §4.3 "Plan reuse").
func (t *TOC) RunNumbers() []int32 {
	seen := make(map[int32]bool)
	var runs []int32
	for _, f := range t.frames {
		if !seen[f.RunNum] {
			seen[f.RunNum] = true
			runs = append(runs, f.RunNum)
		}
	}

	return runs
}

// RegisterChannel assigns name a row in class's channel table if it does
// not already have one, and records offset as that channel's payload
// position within frameIndex. Used while building a TOC for writing, where
// positions are known immediately rather than lazily loaded from disk.
func (t *TOC) RegisterChannel(class PayloadClass, name string, frameIndex int, offset int64) error {
	return t.channels[class].record(name, frameIndex, offset)
}

// RegisterADCChannel is RegisterChannel's ADC-specific variant, additionally
// recording the channel/group id pair the ADC table carries (spec.md §4.3:
// "The ADC-channel map additionally stores a 4-byte channel id and a 4-byte
// group id per name").
func (t *TOC) RegisterADCChannel(name string, channelID, groupID uint32, frameIndex int, offset int64) error {
	ct := t.channels[ADC]
	if err := ct.record(name, frameIndex, offset); err != nil {
		return err
	}
	ct.setADCIDs(name, channelID, groupID)

	return nil
}

// ChannelNames returns the names registered for class, in registration
// order.
func (t *TOC) ChannelNames(class PayloadClass) []string {
	return t.channels[class].tracker.Names()
}

// RawReader is the minimal byte-addressable read access the positions
// cache needs from an open stream (satisfied by *stream.Stream).
type RawReader interface {
	ReadRawAt(p []byte, off int64) (int, error)
	Len() int64
}

// RawWriter extends RawReader with the write-side access Encode's caller
// needs to place the positions-cache block.
type RawWriter interface {
	RawReader
	WriteRawAt(p []byte, off int64) (int, error)
}

// PositionsFor returns channel name's per-frame byte offsets under class,
// materializing that row from the on-disk positions cache on first use
// (spec.md §4.3 "Position cache"). r must be the same stream the TOC was
// decoded from.
func (t *TOC) PositionsFor(class PayloadClass, name string, r RawReader) ([]int64, error) {
	return t.channels[class].positionsFor(name, r, t.cacheRegionStart(r))
}

// ADCIdentity returns the channel/group id pair recorded for an ADC
// channel name.
func (t *TOC) ADCIdentity(name string) (channelID, groupID uint32, ok bool) {
	return t.channels[ADC].adcIdentity(name)
}

func (t *TOC) cacheRegionStart(r RawReader) int64 {
	return r.Len() - int64(t.positionsCacheOffset)
}

// Encode serializes the TOC's eager body: frame blocks and every
// channel's name→row dictionary (and, for ADC, its id columns). It does
// NOT include the positions-cache block itself — callers write that
// separately via EncodePositionsCache and pass its resulting byte offset
// to SetPositionsCacheOffset before calling Encode, so the offset field
// lands inside the eager body in one pass.
func (t *TOC) Encode(engine endian.EndianEngine) []byte {
	buf := make([]byte, 0, 64+len(t.frames)*frameBlockSize)

	buf = engine.AppendUint32(buf, uint32(len(t.frames)))
	for _, f := range t.frames {
		buf = f.encode(engine, buf)
	}

	for _, class := range allClasses {
		buf = t.channels[class].encodeDict(engine, buf)
	}

	buf = engine.AppendUint64(buf, t.positionsCacheOffset)

	return buf
}

// SetPositionsCacheOffset records the bytes-from-end-of-file offset to the
// positions-cache block, for Encode to emit.
func (t *TOC) SetPositionsCacheOffset(offset uint64) {
	t.positionsCacheOffset = offset
}

// EncodePositionsCache serializes the flat, row-major positions array for
// every channel class back-to-back in allClasses order (spec.md §4.3 "a
// flat 'positions' array (size frames × channels)"). Only valid once every
// channel's positions have been recorded via RegisterChannel (the write
// path never lazily defers materialization the way Decode's read path
// does).
func (t *TOC) EncodePositionsCache(engine endian.EndianEngine) []byte {
	var buf []byte
	for _, class := range allClasses {
		buf = t.channels[class].encodeFlat(engine, buf)
	}

	return buf
}

// Decode parses a TOC's eager body (frame blocks plus per-channel
// dictionaries and the positions-cache offset) from data, the structure's
// body bytes with framing already stripped by the caller. The positions
// cache itself is left unread; individual channel lookups trigger it
// lazily via PositionsFor.
func Decode(data []byte, engine endian.EndianEngine) (*TOC, error) {
	t := New()

	if len(data) < 4 {
		return nil, errs.ErrUnderrun
	}
	n := int(engine.Uint32(data[0:4]))
	data = data[4:]

	t.frames = make([]FrameBlock, 0, n)
	for i := 0; i < n; i++ {
		b, rest, err := decodeFrameBlock(data, engine)
		if err != nil {
			return nil, err
		}
		t.frames = append(t.frames, b)
		data = rest
	}

	var cumulative int64
	for _, class := range allClasses {
		ct := t.channels[class]
		rest, err := ct.decodeDict(data, engine, len(t.frames))
		if err != nil {
			return nil, err
		}
		data = rest

		ct.setClassBlockOffset(cumulative)
		cumulative += ct.byteLength()
	}

	if len(data) < 8 {
		return nil, errs.ErrUnderrun
	}
	t.positionsCacheOffset = engine.Uint64(data[0:8])

	return t, nil
}

func float64Bits(f float64) uint64 {
	return math.Float64bits(f)
}

func float64FromBits(b uint64) float64 {
	return math.Float64frombits(b)
}
