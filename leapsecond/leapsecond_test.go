package leapsecond

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTable_At_DefaultTable(t *testing.T) {
	table := DefaultTable()

	assert.Equal(t, uint8(0), table.At(0))
	assert.Equal(t, uint8(0), table.At(46828799))
	assert.Equal(t, uint8(1), table.At(46828800))
	assert.Equal(t, uint8(18), table.At(1167264017))
	assert.Equal(t, uint8(18), table.At(4294967295))
}

func TestParse_SkipsBlankAndCommentLines(t *testing.T) {
	r := bufio.NewReader(strings.NewReader("# header\n\n100 1\n200 2\n"))

	table, err := Parse(r)
	require.NoError(t, err)

	assert.Equal(t, uint8(0), table.At(99))
	assert.Equal(t, uint8(1), table.At(150))
	assert.Equal(t, uint8(2), table.At(200))
}

func TestParse_MalformedLine(t *testing.T) {
	r := bufio.NewReader(strings.NewReader("not-a-number\n"))

	_, err := Parse(r)
	require.Error(t, err)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.txt"))
	require.Error(t, err)
}

func TestFromEnv_UnsetFallsBackToDefault(t *testing.T) {
	t.Setenv(EnvVar, "")

	w, err := FromEnv()
	require.NoError(t, err)
	defer w.Close()

	assert.Equal(t, uint8(18), w.At(1167264017))
}

func TestNewWatcher_ReloadsOnWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "leap.txt")
	require.NoError(t, os.WriteFile(path, []byte("100 5\n"), 0o644))

	w, err := NewWatcher(path)
	require.NoError(t, err)
	defer w.Close()

	assert.Equal(t, uint8(5), w.At(200))

	require.NoError(t, os.WriteFile(path, []byte("100 5\n200 9\n"), 0o644))

	require.Eventually(t, func() bool {
		return w.At(200) == 9
	}, 2*time.Second, 10*time.Millisecond)
}
