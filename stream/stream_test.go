package stream

import (
	"path/filepath"
	"testing"

	"github.com/gwframe/frame/checksum"
	"github.com/gwframe/frame/errs"
	"github.com/gwframe/frame/format"
	"github.com/gwframe/frame/frameobj"
	"github.com/gwframe/frame/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	registry.Initialize()
	m.Run()
}

func TestStream_WriteReadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "round.gwf")

	w, err := Open(path, ModeWrite, WithLibraryName("gwframe-test"))
	require.NoError(t, err)

	sh := &frameobj.FrSH{Name: "FrAdcData", Version: format.V8}
	require.NoError(t, w.WriteObject(sh))
	require.NoError(t, w.Close())

	r, err := Open(path, ModeRead, WithMMap(false))
	require.NoError(t, err)
	defer r.Close()

	assert.Equal(t, format.Current, r.header.Version)

	classID, instanceID, body, err := r.ReadStructure()
	require.NoError(t, err)
	assert.Equal(t, format.ClassFrSH, classID)
	assert.Equal(t, uint32(1), instanceID)
	assert.NotEmpty(t, body)
}

func TestStream_DecodeObjectRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "decode.gwf")

	w, err := Open(path, ModeWrite)
	require.NoError(t, err)

	sh := &frameobj.FrSH{Name: "FrVect", Version: format.V8}
	require.NoError(t, w.WriteObject(sh))
	require.NoError(t, w.Close())

	r, err := Open(path, ModeRead)
	require.NoError(t, err)
	defer r.Close()

	obj, err := r.DecodeObject()
	require.NoError(t, err)

	got, ok := obj.(*frameobj.FrSH)
	require.True(t, ok)
	assert.True(t, sh.Equal(got))
}

func TestStream_HeaderHandshake(t *testing.T) {
	path := filepath.Join(t.TempDir(), "header.gwf")

	w, err := Open(path, ModeWrite, WithLibraryName("gwframe"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	r, err := Open(path, ModeRead)
	require.NoError(t, err)
	defer r.Close()

	assert.Equal(t, "gwframe", r.header.LibraryName)
	assert.Equal(t, format.Current, r.header.Version)
}

func TestStream_AddFilterRejectsRewritingOverReadOnlyBuffer(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ro.gwf")

	w, err := Open(path, ModeWrite)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	r, err := Open(path, ModeRead, WithMMap(true))
	require.NoError(t, err)
	defer r.Close()

	if !r.buf.ReadOnly() {
		t.Skip("mmap backend unavailable in this environment, falls back to buffered read")
	}

	err = r.AddFilter(&rewritingStub{})
	assert.ErrorIs(t, err, errs.ErrDomain)
}

func TestStream_RemoveFilterFlushesPendingWindow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "filter.gwf")

	w, err := Open(path, ModeWrite)
	require.NoError(t, err)

	tap := checksum.NewStructureCRC(w.Tell())
	require.NoError(t, w.AddFilter(tap))

	sh := &frameobj.FrSH{Name: "FrEvent", Version: format.V8}
	require.NoError(t, w.WriteObject(sh))

	require.NoError(t, w.RemoveFilter(tap))
	assert.NotEqual(t, uint32(0), tap.Sum())

	require.NoError(t, w.Close())
}

func TestStream_SeekBackwardAfterWriteRejected(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seek.gwf")

	w, err := Open(path, ModeWrite)
	require.NoError(t, err)

	sh := &frameobj.FrSH{Name: "FrProcData", Version: format.V8}
	require.NoError(t, w.WriteObject(sh))

	_, err = w.Seek(0, SeekStart)
	assert.ErrorIs(t, err, errs.ErrSeekBackward)

	require.NoError(t, w.Close())
}

func TestStream_CloseDetectsDanglingReference(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dangling.gwf")

	w, err := Open(path, ModeWrite)
	require.NoError(t, err)

	vec := &frameobj.Vector{
		Name: "unwritten", ElementType: format.ElemInt1U,
		Compression: format.CompressionNone, Payload: []byte{1},
	}
	w.AssignInstanceID(vec)

	err = w.Close()
	assert.ErrorIs(t, err, errs.ErrDanglingReference)
}

type rewritingStub struct{}

func (r *rewritingStub) Offset() int64                                   { return 0 }
func (r *rewritingStub) PubFilter(data []byte, start int64) (int, error) { return len(data), nil }
func (r *rewritingStub) Rewrites() bool                                  { return true }
