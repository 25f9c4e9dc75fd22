package buffer

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPagedBuffer_WriteReadRoundTrip(t *testing.T) {
	buf := NewPagedBuffer()
	defer buf.Close()

	payload := []byte("FrSH FrameH FrProcData")
	n, err := buf.WriteAt(payload, 0)
	require.NoError(t, err)
	require.Equal(t, len(payload), n)
	require.Equal(t, int64(len(payload)), buf.Len())

	out := make([]byte, len(payload))
	n, err = buf.ReadAt(out, 0)
	require.NoError(t, err)
	require.Equal(t, len(payload), n)
	require.Equal(t, payload, out)
}

func TestPagedBuffer_WriteAtGrows(t *testing.T) {
	buf := NewPagedBuffer()
	defer buf.Close()

	_, err := buf.WriteAt([]byte("tail"), 100)
	require.NoError(t, err)
	require.Equal(t, int64(104), buf.Len())
}

func TestPagedBuffer_Truncate(t *testing.T) {
	buf := NewPagedBufferFromBytes([]byte("0123456789"))
	defer buf.Close()

	require.NoError(t, buf.Truncate(4))
	require.Equal(t, int64(4), buf.Len())
	require.Equal(t, []byte("0123"), buf.Bytes())

	require.NoError(t, buf.Truncate(8))
	require.Equal(t, int64(8), buf.Len())
}

func TestPagedBuffer_ReadOnly(t *testing.T) {
	buf := NewPagedBuffer()
	defer buf.Close()

	require.False(t, buf.ReadOnly())
}

func TestMappedBuffer_ReadOnly(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "frame-*.gwf")
	require.NoError(t, err)

	content := []byte("IGWD frame file content for mapped buffer test")
	_, err = f.Write(content)
	require.NoError(t, err)
	require.NoError(t, f.Close())

	mb, err := OpenMapped(f.Name())
	require.NoError(t, err)
	defer mb.Close()

	require.True(t, mb.ReadOnly())
	require.Equal(t, int64(len(content)), mb.Len())

	out := make([]byte, len(content))
	n, err := mb.ReadAt(out, 0)
	require.NoError(t, err)
	require.Equal(t, len(content), n)
	require.Equal(t, content, out)

	_, err = mb.WriteAt([]byte("x"), 0)
	require.ErrorIs(t, err, ErrReadOnly)

	require.ErrorIs(t, mb.Truncate(0), ErrReadOnly)
}
