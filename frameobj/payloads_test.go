package frameobj

import (
	"testing"

	"github.com/gwframe/frame/endian"
	"github.com/gwframe/frame/errs"
	"github.com/gwframe/frame/format"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchContainer_AddByNameEqual(t *testing.T) {
	sc := NewSearchContainer()
	v := &Vector{Name: "chan1", ElementType: format.ElemInt4S}

	require.True(t, sc.Add("chan1", Ref{Target: v}))
	require.False(t, sc.Add("chan1", Ref{Target: v}), "duplicate name must be rejected")
	require.Equal(t, 1, sc.Len())

	ref, ok := sc.ByName("chan1")
	require.True(t, ok)
	assert.Same(t, v, ref.Target)

	other := NewSearchContainer()
	other.Add("chan1", Ref{Target: &Vector{Name: "chan1", ElementType: format.ElemInt4S}})
	assert.True(t, sc.Equal(other))
}

func TestVector_EncodeDecodeRoundTrip(t *testing.T) {
	eng := endian.GetLittleEndianEngine()

	v := &Vector{
		Name:        "H1:STRAIN",
		ElementType: format.ElemFloat8,
		Dims:        []Dim{{Length: 4, Step: 0.5, Start: 0, Unit: "s"}},
		Compression: format.CompressionNone,
		Payload:     make([]byte, 4*8),
	}
	require.NoError(t, v.Validate())

	buf, err := v.EncodeBody(nil, eng)
	require.NoError(t, err)

	decoded, n, err := DecodeVectorBody(buf, eng)
	require.NoError(t, err)
	assert.Equal(t, len(buf), n)
	assert.True(t, v.Equal(decoded))
}

func TestAdcData_Equal(t *testing.T) {
	mk := func(name string) *AdcData {
		a := &AdcData{Name: name, SampleRate: 16384, Aux: NewSearchContainer()}
		return a
	}

	a, b := mk("H1:ADC"), mk("H1:ADC")
	assert.True(t, a.Equal(b))

	b.SampleRate = 4096
	assert.False(t, a.Equal(b))
	assert.Equal(t, format.ClassFrAdcData, a.ClassID())
}

func TestSerData_Merge(t *testing.T) {
	s1 := &SerData{Name: "ctrl", TimeS: 100, TimeN: 0}
	s2 := &SerData{Name: "ctrl", TimeS: 101, TimeN: 0}

	require.NoError(t, s1.Merge(s2))
	assert.Equal(t, uint32(101), s1.TimeS)

	s3 := &SerData{Name: "other", TimeS: 102}
	require.ErrorIs(t, s1.Merge(s3), errs.ErrIncompatibleMerge)

	s4 := &SerData{Name: "ctrl", TimeS: 50}
	require.ErrorIs(t, s1.Merge(s4), errs.ErrIncompatibleMerge)
}

func TestRawData_NewAndEqual(t *testing.T) {
	r1 := NewRawData()
	r2 := NewRawData()
	assert.True(t, r1.Equal(r2))

	r1.Adc.Add("chanA", Ref{Target: &Vector{Name: "chanA"}})
	assert.False(t, r1.Equal(r2))
}

func TestSimEvent_EmbedsEvent(t *testing.T) {
	e := SimEvent{Event: Event{Name: "burst", Amplitude: 1.5}}
	o := SimEvent{Event: Event{Name: "burst", Amplitude: 1.5}}
	assert.True(t, e.Equal(&o))
	assert.Equal(t, format.ClassFrSimEvent, e.ClassID())
	assert.NotEqual(t, format.ClassFrEvent, e.ClassID())
}

func TestFrameH_ElementMask(t *testing.T) {
	mask := MaskRaw | MaskProc
	assert.True(t, mask.Has(MaskRaw))
	assert.True(t, mask.Has(MaskProc))
	assert.False(t, mask.Has(MaskSim))
	assert.True(t, MaskAll.Has(MaskDetector))
}

func TestFrameH_NewAndEqual(t *testing.T) {
	f1 := NewFrameH()
	f2 := NewFrameH()
	assert.True(t, f1.Equal(f2))

	f1.FrameNum = 7
	assert.False(t, f1.Equal(f2))
}

func TestDescription_Caching(t *testing.T) {
	d1 := NewDescription("FrTest", format.Current, []FieldDesc{{Name: "x", Type: format.ElemInt4S}})
	cached := CacheDescription(d1)
	d2 := NewDescription("FrTest", format.Current, []FieldDesc{{Name: "x", Type: format.ElemInt4S}})
	cached2 := CacheDescription(d2)

	assert.Same(t, cached, cached2)

	got, ok := LookupDescription(cached.Key())
	require.True(t, ok)
	assert.Same(t, cached, got)
}
