package frame

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gwframe/frame/errs"
	"github.com/gwframe/frame/frameobj"
	"github.com/gwframe/frame/toc"
)

func TestCreateWriteClose_ThenOpenAndQuery(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fixture.gwf")

	w, err := Create(path)
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		fh := frameobj.NewFrameH()
		fh.FrameNum = uint32(i)
		fh.RunNum = 7
		require.NoError(t, w.WriteFrameH(fh))

		adc := &frameobj.AdcData{
			Name:       "H1:STRAIN",
			ChannelGrp: 1,
			ChannelNum: 2,
			SampleRate: 16384,
			Units:      "strain",
		}
		require.NoError(t, w.WriteADCChannel("H1:STRAIN", 1, 2, adc))
	}

	require.NoError(t, w.Close())

	r, err := Open(path, nil)
	require.NoError(t, err)
	defer r.Close()

	assert.Equal(t, 2, r.FrameCount())

	fh, err := r.ReadFrameH(0)
	require.NoError(t, err)
	assert.Equal(t, int32(7), fh.RunNum)

	obj, err := r.ReadChannelByName(toc.ADC, 1, "H1:STRAIN")
	require.NoError(t, err)
	adc, ok := obj.(*frameobj.AdcData)
	require.True(t, ok)
	assert.Equal(t, "H1:STRAIN", adc.Name)

	assert.Equal(t, []string{"H1:STRAIN"}, r.ChannelNames(toc.ADC))
}

func TestWriteChannel_BeforeAnyFrame_IsDomainError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fixture.gwf")

	w, err := Create(path)
	require.NoError(t, err)

	adc := &frameobj.AdcData{Name: "H1:STRAIN", ChannelGrp: 1, ChannelNum: 2, SampleRate: 1, Units: "strain"}
	err = w.WriteADCChannel("H1:STRAIN", 1, 2, adc)
	assert.ErrorIs(t, err, errs.ErrDomain)
}
