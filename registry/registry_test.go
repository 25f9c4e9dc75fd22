package registry

import (
	"testing"

	"github.com/gwframe/frame/endian"
	"github.com/gwframe/frame/errs"
	"github.com/gwframe/frame/format"
	"github.com/gwframe/frame/frameobj"
	"github.com/gwframe/frame/internal/fixup"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestContext(t *testing.T, instanceOf map[frameobj.Object]uint32) *Context {
	t.Helper()
	return &Context{
		Engine:  endian.GetLittleEndianEngine(),
		Tracker: fixup.NewTracker("test.gwf"),
		Path:    "test.gwf",
		InstanceIDOf: func(obj frameobj.Object) (uint32, error) {
			id, ok := instanceOf[obj]
			if !ok {
				return 0, errs.ErrDanglingReference
			}

			return id, nil
		},
	}
}

func TestInitialize_PopulatesEveryVersion(t *testing.T) {
	Initialize()
	Initialize() // second call must be a no-op, not panic

	for v := format.VMin; v <= format.VMax; v++ {
		_, err := Lookup(v, format.ClassFrameH)
		require.NoError(t, err)
	}
}

func TestLookup_UnknownClassIsSchemaMismatch(t *testing.T) {
	Initialize()

	_, err := Lookup(format.Current, format.ClassID(999))
	require.ErrorIs(t, err, errs.ErrSchemaMismatch)
}

func TestFrSH_EncodeDecodeRoundTrip(t *testing.T) {
	Initialize()
	ctx := newTestContext(t, nil)
	d, err := Lookup(format.Current, format.ClassFrSH)
	require.NoError(t, err)

	in := &frameobj.FrSH{Name: "FrAdcData", Version: format.V8}
	buf, err := d.Encode(ctx, nil, in)
	require.NoError(t, err)

	out, n, err := d.Decode(ctx, buf)
	require.NoError(t, err)
	assert.Equal(t, len(buf), n)
	assert.True(t, in.Equal(out))
}

func TestVector_RegistryRoundTrip(t *testing.T) {
	Initialize()
	ctx := newTestContext(t, nil)
	d, err := Lookup(format.Current, format.ClassFrVect)
	require.NoError(t, err)

	vec := &frameobj.Vector{
		Name:        "chan",
		ElementType: format.ElemInt4S,
		Dims:        []frameobj.Dim{{Length: 2, Step: 1, Start: 0, Unit: "s"}},
		Compression: format.CompressionNone,
		Payload:     make([]byte, 8),
	}

	buf, err := d.Encode(ctx, nil, vec)
	require.NoError(t, err)

	decoded, n, err := d.Decode(ctx, buf)
	require.NoError(t, err)
	assert.Equal(t, len(buf), n)
	assert.True(t, vec.Equal(decoded))
}

func TestSerData_RegistryRoundTripWithReference(t *testing.T) {
	Initialize()

	vec := &frameobj.Vector{
		Name: "ctrl", ElementType: format.ElemInt1U, Compression: format.CompressionNone,
		Payload: []byte{1, 2, 3},
	}
	instanceOf := map[frameobj.Object]uint32{vec: 1}
	ctx := newTestContext(t, instanceOf)
	require.NoError(t, ctx.Tracker.Register(format.ClassFrVect, 1, vec))

	ser := &frameobj.SerData{Name: "ctrl", TimeS: 5, TimeN: 0, SampleRate: 1, Data: frameobj.Ref{Target: vec}}

	d, err := Lookup(format.Current, format.ClassFrSerData)
	require.NoError(t, err)

	buf, err := d.Encode(ctx, nil, ser)
	require.NoError(t, err)

	decoded, n, err := d.Decode(ctx, buf)
	require.NoError(t, err)
	assert.Equal(t, len(buf), n)
	assert.True(t, ser.Equal(decoded))
}

func TestFrameH_RegistryRoundTrip(t *testing.T) {
	Initialize()

	raw := frameobj.NewRawData()
	instanceOf := map[frameobj.Object]uint32{raw: 1}
	ctx := newTestContext(t, instanceOf)
	require.NoError(t, ctx.Tracker.Register(format.ClassFrRawData, 1, raw))

	f := frameobj.NewFrameH()
	f.FrameNum = 42
	f.GTimeS = 1000000000
	f.Raw = frameobj.Ref{Target: raw}

	d, err := Lookup(format.Current, format.ClassFrameH)
	require.NoError(t, err)

	buf, err := d.Encode(ctx, nil, f)
	require.NoError(t, err)

	decoded, n, err := d.Decode(ctx, buf)
	require.NoError(t, err)
	assert.Equal(t, len(buf), n)
	assert.True(t, f.Equal(decoded))
}

func TestPromoteDemote_IdentityAcrossVersions(t *testing.T) {
	Initialize()
	ctx := newTestContext(t, nil)

	f := frameobj.NewFrameH()
	f.FrameNum = 3

	promoted, err := Promote(ctx, format.ClassFrameH, format.VMin, format.VMax, f)
	require.NoError(t, err)
	assert.True(t, f.Equal(promoted))

	demoted, err := Demote(ctx, format.ClassFrameH, format.VMax, format.VMin, promoted)
	require.NoError(t, err)
	assert.True(t, f.Equal(demoted))
}

func TestPromote_NoOpWhenSameVersion(t *testing.T) {
	Initialize()
	ctx := newTestContext(t, nil)

	f := frameobj.NewFrameH()
	got, err := Promote(ctx, format.ClassFrameH, format.Current, format.Current, f)
	require.NoError(t, err)
	assert.Same(t, frameobj.Object(f), got)
}

func TestDescribe_ReturnsCachedDescription(t *testing.T) {
	Initialize()

	d, err := Describe(format.Current, format.ClassFrSH)
	require.NoError(t, err)
	assert.Equal(t, "FrSH", d.ClassName)
}
