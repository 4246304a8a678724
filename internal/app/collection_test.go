package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"offload/internal/domain"
	apperrors "offload/internal/errors"
	fsinfra "offload/internal/infra/fs"
)

func names(c *Collection) []string {
	out := make([]string, len(c.Items))
	for i, item := range c.Items {
		out[i] = item.RelativePath
	}
	return out
}

func TestScanCollectionExcludesHousekeepingFiles(t *testing.T) {
	fsys := fsinfra.NewMemory()
	writeFile(t, fsys.Fs, "/card/DCIM/100MSDCF/DSC0001.ARW", "1", day(1))
	writeFile(t, fsys.Fs, "/card/PRIVATE/M4ROOT/STATUS.BIN", "x", day(1))
	writeFile(t, fsys.Fs, "/card/.Spotlight-V100/store.db", "x", day(1))
	writeFile(t, fsys.Fs, "/card/.DS_Store", "x", day(1))
	writeFile(t, fsys.Fs, "/card/PRIVATE/M4ROOT/CLIP/C0001.MP4", "22", day(2))

	c, err := ScanCollection(fsys, "/card", DefaultExclude, nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"DCIM/100MSDCF/DSC0001.ARW", "PRIVATE/M4ROOT/CLIP/C0001.MP4"}, names(c))
	assert.Equal(t, domain.KindRAW, c.Items[0].Kind)
	assert.Equal(t, "DCIM/100MSDCF", c.Items[0].RelativeDir())
	assert.Equal(t, 2, c.Count())
	assert.EqualValues(t, 3, c.TotalSize())
}

func TestScanCollectionIgnoreGlobs(t *testing.T) {
	fsys := fsinfra.NewMemory()
	writeFile(t, fsys.Fs, "/card/DCIM/a.jpg", "a", day(1))
	writeFile(t, fsys.Fs, "/card/DCIM/a.THM", "t", day(1))
	writeFile(t, fsys.Fs, "/card/MISC/b.jpg", "b", day(1))

	c, err := ScanCollection(fsys, "/card", nil, []string{"**/*.thm", "MISC/**"})
	require.NoError(t, err)
	assert.Equal(t, []string{"DCIM/a.jpg"}, names(c))
}

func TestScanCollectionErrors(t *testing.T) {
	fsys := fsinfra.NewMemory()
	_, err := ScanCollection(fsys, "/missing", nil, nil)
	assert.Equal(t, apperrors.NotFound, apperrors.KindOf(err))

	writeFile(t, fsys.Fs, "/card/a.jpg", "a", day(1))
	_, err = ScanCollection(fsys, "/card/a.jpg", nil, nil)
	assert.Equal(t, apperrors.InvalidConfig, apperrors.KindOf(err))

	_, err = ScanCollection(fsys, "/card", nil, []string{"[unclosed"})
	assert.Equal(t, apperrors.InvalidConfig, apperrors.KindOf(err))
}

func TestAverageSize(t *testing.T) {
	fsys := fsinfra.NewMemory()
	require.NoError(t, fsys.MkdirAll("/card", 0o755))
	c, err := ScanCollection(fsys, "/card", nil, nil)
	require.NoError(t, err)

	_, err = c.AverageSize()
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrEmptyCollection)

	writeFile(t, fsys.Fs, "/card/a.jpg", "aaaa", day(1))
	writeFile(t, fsys.Fs, "/card/b.jpg", "bb", day(1))
	c, err = ScanCollection(fsys, "/card", nil, nil)
	require.NoError(t, err)
	avg, err := c.AverageSize()
	require.NoError(t, err)
	assert.EqualValues(t, 3, avg)
}

func TestSortByModTimeIsStable(t *testing.T) {
	fsys := fsinfra.NewMemory()
	writeFile(t, fsys.Fs, "/card/a.jpg", "a", day(5))
	writeFile(t, fsys.Fs, "/card/b.jpg", "b", day(2))
	writeFile(t, fsys.Fs, "/card/c.jpg", "c", day(5))
	writeFile(t, fsys.Fs, "/card/d.jpg", "d", day(2))

	c, err := ScanCollection(fsys, "/card", nil, nil)
	require.NoError(t, err)
	c.SortByModTime()
	assert.Equal(t, []string{"b.jpg", "d.jpg", "a.jpg", "c.jpg"}, names(c))
}
