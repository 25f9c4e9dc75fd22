package toc

import (
	"path/filepath"
	"testing"

	"github.com/gwframe/frame/endian"
	"github.com/gwframe/frame/errs"
	"github.com/gwframe/frame/format"
	"github.com/gwframe/frame/frameobj"
	"github.com/gwframe/frame/registry"
	"github.com/gwframe/frame/stream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	registry.Initialize()
	m.Run()
}

// memRaw is a byte-addressable in-memory stand-in for *stream.Stream,
// satisfying RawReader/RawWriter for tests that exercise the positions
// cache without opening a real file.
type memRaw struct {
	data []byte
}

func (m *memRaw) Len() int64 {
	return int64(len(m.data))
}

func (m *memRaw) ReadRawAt(p []byte, off int64) (int, error) {
	if off < 0 || off+int64(len(p)) > int64(len(m.data)) {
		return 0, errs.ErrUnderrun
	}

	return copy(p, m.data[off:off+int64(len(p))]), nil
}

func (m *memRaw) WriteRawAt(p []byte, off int64) (int, error) {
	end := off + int64(len(p))
	if end > int64(len(m.data)) {
		grown := make([]byte, end)
		copy(grown, m.data)
		m.data = grown
	}

	return copy(m.data[off:end], p), nil
}

func TestTOC_EncodeDecode_PositionsCacheRoundTrip(t *testing.T) {
	engine := endian.GetLittleEndianEngine()

	orig := New()
	orig.AddFrame(FrameBlock{FrameNum: 0, RunNum: 7})
	orig.AddFrame(FrameBlock{FrameNum: 1, RunNum: 7})

	require.NoError(t, orig.RegisterADCChannel("H1:STRAIN", 1, 2, 0, 1000))
	require.NoError(t, orig.RegisterADCChannel("H1:STRAIN", 1, 2, 1, 2000))
	require.NoError(t, orig.RegisterChannel(Proc, "H1:PROC", 0, 1500))

	cacheBytes := orig.EncodePositionsCache(engine)

	mem := &memRaw{}
	_, err := mem.WriteRawAt(cacheBytes, 0)
	require.NoError(t, err)

	orig.SetPositionsCacheOffset(uint64(len(cacheBytes)))
	body := orig.Encode(engine)

	got, err := Decode(body, engine)
	require.NoError(t, err)

	assert.Equal(t, 2, got.FrameCount())
	assert.Equal(t, []int32{7}, got.RunNumbers())
	assert.Equal(t, []string{"H1:STRAIN"}, got.ChannelNames(ADC))
	assert.Equal(t, []string{"H1:PROC"}, got.ChannelNames(Proc))

	cid, gid, ok := got.ADCIdentity("H1:STRAIN")
	require.True(t, ok)
	assert.Equal(t, uint32(1), cid)
	assert.Equal(t, uint32(2), gid)

	positions, err := got.PositionsFor(ADC, "H1:STRAIN", mem)
	require.NoError(t, err)
	assert.Equal(t, []int64{1000, 2000}, positions)

	// The row is zeroed out of the flat cache once consumed (spec.md §4.3
	// "copy that row ... then zero out the cached row to mark it
	// consumed"); a channel's row in a different class (Proc) must be
	// unaffected.
	procCT := got.channels[Proc]
	require.NoError(t, procCT.loadFlat(mem, got.cacheRegionStart(mem)+procCT.classBlockOffset()))
	assert.Equal(t, []int64{1500, 0}, procCT.flat)

	adcCT := got.channels[ADC]
	for _, v := range adcCT.flat {
		assert.Equal(t, int64(0), v)
	}

	// Second lookup hits the already-materialized per-row cache, not the
	// (now zeroed) flat array.
	again, err := got.PositionsFor(ADC, "H1:STRAIN", mem)
	require.NoError(t, err)
	assert.Equal(t, []int64{1000, 2000}, again)
}

func TestTOC_PositionsFor_UnknownChannel(t *testing.T) {
	table := New()
	table.AddFrame(FrameBlock{FrameNum: 0})

	mem := &memRaw{}
	_, err := table.PositionsFor(ADC, "unknown", mem)
	assert.ErrorIs(t, err, errs.ErrChannelNotFound)
}

func TestChannelTable_LoadFlat_OverrunIsFormatError(t *testing.T) {
	ct := newChannelTable(ADC)
	ct.engine = endian.GetLittleEndianEngine()
	ct.frameCount = 2
	_, err := ct.tracker.Register("H1:STRAIN", 1)
	require.NoError(t, err)

	mem := &memRaw{data: make([]byte, 4)} // far short of 2 frames * 8 bytes

	err = ct.loadFlat(mem, 0)
	assert.ErrorIs(t, err, errs.ErrFormat)
}

func TestTOC_Decode_Underrun(t *testing.T) {
	engine := endian.GetLittleEndianEngine()
	_, err := Decode([]byte{0, 0}, engine)
	assert.ErrorIs(t, err, errs.ErrUnderrun)
}

// buildFixture writes two frames, each with a FrameH and one named ADC
// channel (plus, in frame 0 only, one named event), then appends the TOC
// trailer, returning the file path.
func buildFixture(t *testing.T) (path string) {
	t.Helper()

	path = filepath.Join(t.TempDir(), "fixture.gwf")
	w, err := stream.Open(path, stream.ModeWrite)
	require.NoError(t, err)

	table := New()

	for i := 0; i < 2; i++ {
		headerOff := w.Tell()
		fh := frameobj.NewFrameH()
		fh.FrameNum = uint32(i)
		fh.RunNum = 99
		require.NoError(t, w.WriteObject(fh))

		adcOff := w.Tell()
		adc := &frameobj.AdcData{
			Name:       "H1:STRAIN",
			ChannelGrp: 1,
			ChannelNum: 2,
			SampleRate: 16384,
			Units:      "strain",
		}
		require.NoError(t, w.WriteObject(adc))

		table.AddFrame(FrameBlock{FrameNum: uint32(i), RunNum: 99, HeaderOffset: headerOff})
		require.NoError(t, table.RegisterADCChannel("H1:STRAIN", 1, 2, i, adcOff))

		if i == 0 {
			eventOff := w.Tell()
			ev := &frameobj.Event{Name: "BURST", GTimeS: 123}
			require.NoError(t, w.WriteObject(ev))
			require.NoError(t, table.RegisterChannel(Event, "BURST", i, eventOff))
		}
	}

	require.NoError(t, table.WriteTrailer(w))
	require.NoError(t, w.Close())

	return path
}

func TestQuery_ReadFrameHAndChannels(t *testing.T) {
	path := buildFixture(t)

	r, err := stream.Open(path, stream.ModeRead)
	require.NoError(t, err)
	defer r.Close()

	plan, err := Load(r, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, plan.FrameCount())

	f, err := ReadFrameH(r, plan, 0, frameobj.MaskAll)
	require.NoError(t, err)
	assert.Equal(t, uint32(0), f.FrameNum)
	assert.Equal(t, int32(99), f.RunNum)

	obj, err := ReadChannelByName(r, plan, ADC, 1, "H1:STRAIN")
	require.NoError(t, err)
	adc, ok := obj.(*frameobj.AdcData)
	require.True(t, ok)
	assert.Equal(t, "H1:STRAIN", adc.Name)

	obj, err = ReadChannelByIndex(r, plan, ADC, 0, 0)
	require.NoError(t, err)
	adc, ok = obj.(*frameobj.AdcData)
	require.True(t, ok)
	assert.Equal(t, "H1:STRAIN", adc.Name)

	_, err = ReadChannelByIndex(r, plan, Event, 0, 0)
	assert.ErrorIs(t, err, errs.ErrDomain)

	obj, err = ReadEventByType(r, plan, Event, "BURST", 0)
	require.NoError(t, err)
	ev, ok := obj.(*frameobj.Event)
	require.True(t, ok)
	assert.Equal(t, "BURST", ev.Name)

	_, err = ReadEventByType(r, plan, Event, "BURST", 1)
	assert.ErrorIs(t, err, errs.ErrChannelNotFound)

	_, err = ReadChannelByName(r, plan, ADC, 0, "unknown")
	assert.ErrorIs(t, err, errs.ErrChannelNotFound)
}

func TestQuery_ReadFrameHMaskPrunesOptionalReferences(t *testing.T) {
	path := buildFixture(t)

	r, err := stream.Open(path, stream.ModeRead)
	require.NoError(t, err)
	defer r.Close()

	plan, err := Load(r, nil)
	require.NoError(t, err)

	f, err := ReadFrameH(r, plan, 0, frameobj.MaskRaw)
	require.NoError(t, err)
	assert.Nil(t, f.Proc)
	assert.Nil(t, f.Sim)
}

func TestPlan_Load_ReuseOnMatchingFrameCountAndRunNumbers(t *testing.T) {
	path := buildFixture(t)

	r, err := stream.Open(path, stream.ModeRead)
	require.NoError(t, err)
	defer r.Close()

	first, err := Load(r, nil)
	require.NoError(t, err)

	second, err := Load(r, first)
	require.NoError(t, err)

	assert.Same(t, first.toc, second.toc)

	// Position caches are reset, not stale: a fresh query still resolves.
	obj, err := ReadChannelByName(r, second, ADC, 0, "H1:STRAIN")
	require.NoError(t, err)
	assert.Equal(t, format.ClassFrAdcData, obj.ClassID())
}

func TestPlan_Load_MismatchedFrameCountForcesFreshParse(t *testing.T) {
	path := buildFixture(t)

	r, err := stream.Open(path, stream.ModeRead)
	require.NoError(t, err)
	defer r.Close()

	seed := &Plan{toc: New()} // empty TOC: FrameCount() == 0, guaranteed mismatch

	got, err := Load(r, seed)
	require.NoError(t, err)
	assert.Equal(t, 2, got.FrameCount())
	assert.NotSame(t, seed.toc, got.toc)
}
