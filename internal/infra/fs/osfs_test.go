package fs

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCopyFilePreservesContentAndModTime(t *testing.T) {
	fsys := NewMemory()
	data := bytes.Repeat([]byte("offload"), CopyBufferSize/3)
	mtime := time.Date(2019, 8, 14, 10, 30, 0, 0, time.UTC)
	require.NoError(t, afero.WriteFile(fsys.Fs, "/card/DCIM/a.jpg", data, 0o644))
	require.NoError(t, fsys.Fs.Chtimes("/card/DCIM/a.jpg", mtime, mtime))

	n, err := fsys.CopyFile("/card/DCIM/a.jpg", "/dest/2019/2019-08-14/a.jpg")
	require.NoError(t, err)
	assert.EqualValues(t, len(data), n)

	got, err := afero.ReadFile(fsys.Fs, "/dest/2019/2019-08-14/a.jpg")
	require.NoError(t, err)
	assert.Equal(t, data, got)

	info, err := fsys.Stat("/dest/2019/2019-08-14/a.jpg")
	require.NoError(t, err)
	assert.True(t, info.ModTime().Equal(mtime))
}

func TestCopyFileMissingSource(t *testing.T) {
	fsys := NewMemory()
	_, err := fsys.CopyFile("/card/missing.jpg", "/dest/missing.jpg")
	require.Error(t, err)

	exists, err := fsys.Exists("/dest/missing.jpg")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestCopyFileRemovesPartialDestination(t *testing.T) {
	fsys := FS{Fs: failingWrites{afero.NewMemMapFs()}}
	require.NoError(t, afero.WriteFile(fsys.Fs.(failingWrites).Fs, "/card/a.jpg", []byte("data"), 0o644))

	_, err := fsys.CopyFile("/card/a.jpg", "/dest/a.jpg")
	require.Error(t, err)

	exists, err := fsys.Exists("/dest/a.jpg")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestWalkOnDisk(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "DCIM"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "DCIM", "a.jpg"), []byte("a"), 0o644))

	var seen []string
	err := NewOS().Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			seen = append(seen, filepath.Base(path))
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"a.jpg"}, seen)
}

// failingWrites hands out files whose writes always fail.
type failingWrites struct {
	afero.Fs
}

func (f failingWrites) OpenFile(name string, flag int, perm os.FileMode) (afero.File, error) {
	file, err := f.Fs.OpenFile(name, flag, perm)
	if err != nil || flag&os.O_WRONLY == 0 {
		return file, err
	}
	return brokenFile{file}, nil
}

type brokenFile struct {
	afero.File
}

func (brokenFile) Write([]byte) (int, error) {
	return 0, os.ErrPermission
}
