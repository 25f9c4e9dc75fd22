package toc

import (
	"github.com/gwframe/frame/endian"
	"github.com/gwframe/frame/errs"
	"github.com/gwframe/frame/internal/collision"
	"github.com/gwframe/frame/internal/hash"
)

// channelTable is one payload class's per-channel position table (spec.md
// §4.3 "Per-channel tables"): a collision-checked name→row assignment
// (grounded on the teacher's internal/collision.Tracker, adapted here to
// TOC row assignment — see DESIGN.md) plus a lazily materialized per-row
// array of per-frame byte offsets (grounded on the teacher's
// blob.NumericBlobSet.Materialize() lazy-view pattern).
type channelTable struct {
	class   PayloadClass
	tracker *collision.Tracker

	frameCount int
	positions  [][]int64 // row -> per-frame offsets; nil row means not yet materialized

	// flat holds the raw on-disk positions block (rowCount*frameCount,
	// row-major) once loaded from a file, before each row has been copied
	// out and zeroed per spec.md §4.3's "Position cache" lookup flow. nil
	// until loadFlat runs.
	flat       []int64
	flatLoaded bool

	// channelID/groupID are ADC-only extra columns (spec.md §4.3: "The
	// ADC-channel map additionally stores a 4-byte channel id and a 4-byte
	// group id per name").
	channelID map[string]uint32
	groupID   map[string]uint32

	// engine is the byte-order engine this table's dictionary was decoded
	// with, needed again when loadFlat later parses the positions-cache
	// block. Unset on tables built for writing, which never need it.
	engine endian.EndianEngine

	// classOffset is this class's byte offset within the positions-cache
	// region, the sum of byteLength() for every class preceding it in
	// allClasses order. Set by TOC once every class's dictionary is known.
	classOffset int64
}

func newChannelTable(class PayloadClass) *channelTable {
	ct := &channelTable{class: class, tracker: collision.NewTracker()}
	if class == ADC {
		ct.channelID = make(map[string]uint32)
		ct.groupID = make(map[string]uint32)
	}

	return ct
}

func (ct *channelTable) growTo(frameCount int) {
	if frameCount <= ct.frameCount {
		return
	}
	ct.frameCount = frameCount

	for row := range ct.positions {
		for len(ct.positions[row]) < frameCount {
			ct.positions[row] = append(ct.positions[row], 0)
		}
	}
}

// record assigns name a row (idempotently, detecting a genuine hash
// collision as errs.ErrNameCollision) and stores offset at frameIndex in
// that row's position array. Used while building a TOC for writing, where
// rows are materialized directly rather than lazily loaded from disk.
func (ct *channelTable) record(name string, frameIndex int, offset int64) error {
	row, err := ct.tracker.Register(name, hash.ID(name))
	if err != nil {
		return err
	}

	if frameIndex+1 > ct.frameCount {
		ct.growTo(frameIndex + 1)
	}

	for len(ct.positions) <= row {
		ct.positions = append(ct.positions, make([]int64, ct.frameCount))
	}

	ct.positions[row][frameIndex] = offset

	return nil
}

func (ct *channelTable) setADCIDs(name string, channelID, groupID uint32) {
	ct.channelID[name] = channelID
	ct.groupID[name] = groupID
}

func (ct *channelTable) adcIdentity(name string) (uint32, uint32, bool) {
	if ct.channelID == nil {
		return 0, 0, false
	}
	cid, ok := ct.channelID[name]
	if !ok {
		return 0, 0, false
	}

	return cid, ct.groupID[name], true
}

// rowCount returns the number of distinct channels this table tracks.
func (ct *channelTable) rowCount() int {
	return ct.tracker.Count()
}

// byteLength returns the size, in bytes, of this class's region within the
// positions-cache block: rowCount * frameCount int64 values.
func (ct *channelTable) byteLength() int64 {
	return int64(ct.rowCount()) * int64(ct.frameCount) * 8
}

// encodeDict appends this table's name→row dictionary to buf: a uint32
// row count followed by, per row in registration order, a length-prefixed
// name (and, for ADC, its channel/group id pair).
func (ct *channelTable) encodeDict(engine endian.EndianEngine, buf []byte) []byte {
	names := ct.tracker.Names()
	buf = engine.AppendUint32(buf, uint32(len(names)))

	for _, name := range names {
		buf = appendString(buf, engine, name)
		if ct.class == ADC {
			buf = engine.AppendUint32(buf, ct.channelID[name])
			buf = engine.AppendUint32(buf, ct.groupID[name])
		}
	}

	return buf
}

// decodeDict parses the dictionary written by encodeDict, registering each
// name at its on-disk row (in order, so tracker assigns the same row
// indices back) without touching the positions cache.
func (ct *channelTable) decodeDict(data []byte, engine endian.EndianEngine, frameCount int) ([]byte, error) {
	ct.frameCount = frameCount
	ct.engine = engine

	if len(data) < 4 {
		return nil, errs.ErrUnderrun
	}
	n := int(engine.Uint32(data[0:4]))
	data = data[4:]

	for i := 0; i < n; i++ {
		name, rest, err := readString(data, engine)
		if err != nil {
			return nil, err
		}
		data = rest

		if _, err := ct.tracker.Register(name, hash.ID(name)); err != nil {
			return nil, err
		}

		if ct.class == ADC {
			if len(data) < 8 {
				return nil, errs.ErrUnderrun
			}
			ct.channelID[name] = engine.Uint32(data[0:4])
			ct.groupID[name] = engine.Uint32(data[4:8])
			data = data[8:]
		}
	}

	ct.positions = make([][]int64, n)

	return data, nil
}

// encodeFlat appends this table's flat, row-major positions array to buf
// (spec.md §4.3 "a flat 'positions' array (size frames × channels)").
// Requires every row to already be materialized, which holds on the write
// path since record() fills positions directly.
func (ct *channelTable) encodeFlat(engine endian.EndianEngine, buf []byte) []byte {
	for row := 0; row < ct.rowCount(); row++ {
		offsets := ct.positions[row]
		for frame := 0; frame < ct.frameCount; frame++ {
			var v int64
			if frame < len(offsets) {
				v = offsets[frame]
			}
			buf = engine.AppendUint64(buf, uint64(v))
		}
	}

	return buf
}

// loadFlat reads this class's region of the positions-cache block from r,
// starting at blockStart (spec.md §4.3 step 1: "If the flat positions
// array has not yet been read, seek to end_of_file −
// positions_cache_offset, read it, and mark cached"). blockStart is the
// cache region's start plus the byte length of every class preceding this
// one in allClasses order, computed by the caller.
func (ct *channelTable) loadFlat(r RawReader, blockStart int64) error {
	if ct.flatLoaded {
		return nil
	}

	n := ct.rowCount() * ct.frameCount
	raw := make([]byte, n*8)
	if n > 0 {
		if blockStart < 0 || blockStart+int64(len(raw)) > r.Len() {
			return errs.ErrFormat
		}
		if _, err := r.ReadRawAt(raw, blockStart); err != nil {
			return err
		}
	}

	ct.flat = make([]int64, n)
	for i := 0; i < n; i++ {
		ct.flat[i] = int64(ct.engine.Uint64(raw[i*8 : i*8+8]))
	}
	ct.flatLoaded = true

	return nil
}

// positionsFor resolves name to its per-frame offsets, materializing that
// row out of the flat positions cache on first use and zeroing the
// consumed row (spec.md §4.3 steps 2-3: "Resolve channel name to row
// index ... Copy that row into the channel's per-frame offset array, then
// zero out the cached row to mark it consumed").
func (ct *channelTable) positionsFor(name string, r RawReader, regionStart int64) ([]int64, error) {
	row, ok := ct.tracker.Row(name)
	if !ok {
		return nil, errs.ErrChannelNotFound
	}

	if ct.positions != nil && ct.positions[row] != nil {
		return ct.positions[row], nil
	}

	if err := ct.loadFlat(r, regionStart+ct.classBlockOffset()); err != nil {
		return nil, err
	}

	start := row * ct.frameCount
	out := make([]int64, ct.frameCount)
	copy(out, ct.flat[start:start+ct.frameCount])

	for i := start; i < start+ct.frameCount; i++ {
		ct.flat[i] = 0
	}

	if ct.positions == nil {
		ct.positions = make([][]int64, ct.rowCount())
	}
	ct.positions[row] = out

	return out, nil
}

// classBlockOffset is set by TOC once every channel table's dictionary has
// been decoded, to this class's byte offset within the positions-cache
// region (the sum of byteLength() for every class preceding it in
// allClasses order).
func (ct *channelTable) setClassBlockOffset(offset int64) {
	ct.classOffset = offset
}

func (ct *channelTable) classBlockOffset() int64 {
	return ct.classOffset
}
