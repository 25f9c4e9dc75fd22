package collision

import (
	"testing"

	"github.com/gwframe/frame/errs"
	"github.com/stretchr/testify/require"
)

func TestNewTracker(t *testing.T) {
	tr := NewTracker()

	require.NotNil(t, tr)
	require.Equal(t, 0, tr.Count())
	require.Empty(t, tr.Names())
}

func TestTracker_Register_AssignsSequentialRows(t *testing.T) {
	tr := NewTracker()

	row, err := tr.Register("H1:STRAIN", 0x1234567890abcdef)
	require.NoError(t, err)
	require.Equal(t, 0, row)

	row, err = tr.Register("L1:STRAIN", 0xfedcba0987654321)
	require.NoError(t, err)
	require.Equal(t, 1, row)

	require.Equal(t, []string{"H1:STRAIN", "L1:STRAIN"}, tr.Names())
	require.Equal(t, 2, tr.Count())
}

func TestTracker_Register_EmptyName(t *testing.T) {
	tr := NewTracker()

	_, err := tr.Register("", 0x1234567890abcdef)
	require.ErrorIs(t, err, errs.ErrInvalidMetricName)
	require.Equal(t, 0, tr.Count())
}

func TestTracker_Register_SameNameIsIdempotent(t *testing.T) {
	tr := NewTracker()

	row1, err := tr.Register("H1:STRAIN", 0x1234567890abcdef)
	require.NoError(t, err)

	row2, err := tr.Register("H1:STRAIN", 0x1234567890abcdef)
	require.NoError(t, err)

	require.Equal(t, row1, row2)
	require.Equal(t, 1, tr.Count())
}

func TestTracker_Register_HashCollisionIsAnError(t *testing.T) {
	tr := NewTracker()

	_, err := tr.Register("H1:STRAIN", 0x1234567890abcdef)
	require.NoError(t, err)

	_, err = tr.Register("H1:DARM", 0x1234567890abcdef)
	require.ErrorIs(t, err, errs.ErrNameCollision)
	require.Equal(t, 1, tr.Count())
}

func TestTracker_Row(t *testing.T) {
	tr := NewTracker()

	_, err := tr.Register("H1:STRAIN", 1)
	require.NoError(t, err)

	row, ok := tr.Row("H1:STRAIN")
	require.True(t, ok)
	require.Equal(t, 0, row)

	_, ok = tr.Row("unknown")
	require.False(t, ok)
}

func TestTracker_Reset(t *testing.T) {
	tr := NewTracker()

	_, err := tr.Register("H1:STRAIN", 1)
	require.NoError(t, err)
	_, err = tr.Register("L1:STRAIN", 2)
	require.NoError(t, err)
	require.Equal(t, 2, tr.Count())

	tr.Reset()

	require.Equal(t, 0, tr.Count())
	require.Empty(t, tr.Names())

	row, err := tr.Register("V1:STRAIN", 3)
	require.NoError(t, err)
	require.Equal(t, 0, row)
}

func TestTracker_Reset_PreservesCapacity(t *testing.T) {
	tr := NewTracker()

	for i := 0; i < 100; i++ {
		_, err := tr.Register(string(rune('a'+i%26))+string(rune(i)), uint64(i))
		require.NoError(t, err)
	}

	initialCap := cap(tr.order)
	tr.Reset()

	require.Equal(t, 0, len(tr.order))
	require.GreaterOrEqual(t, cap(tr.order), initialCap)
}
