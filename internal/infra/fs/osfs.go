package fs

import (
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
	goerrors "gitlab.com/tozd/go/errors"
)

// CopyBufferSize is the chunk size used when streaming file contents.
const CopyBufferSize = 256 * 1024

// FS implements the app FileSystem port on top of an afero filesystem, so the
// engine runs unchanged against the OS or an in-memory tree.
type FS struct {
	Fs afero.Fs
}

func NewOS() FS {
	return FS{Fs: afero.NewOsFs()}
}

func NewMemory() FS {
	return FS{Fs: afero.NewMemMapFs()}
}

func (f FS) Walk(root string, fn filepath.WalkFunc) error {
	return afero.Walk(f.Fs, root, fn)
}

func (f FS) Stat(path string) (os.FileInfo, error) {
	return f.Fs.Stat(path)
}

func (f FS) Exists(path string) (bool, error) {
	return afero.Exists(f.Fs, path)
}

func (f FS) MkdirAll(path string, perm os.FileMode) error {
	return f.Fs.MkdirAll(path, perm)
}

func (f FS) Remove(path string) error {
	return f.Fs.Remove(path)
}

// CopyFile streams src to dst and gives dst the modification time of src.
// dst is truncated if present; a partially written dst is removed on failure.
func (f FS) CopyFile(src, dst string) (written int64, err error) {
	srcFile, err := f.Fs.Open(src)
	if err != nil {
		return 0, goerrors.Errorf("open source %s: %w", src, err)
	}
	defer srcFile.Close()

	info, err := srcFile.Stat()
	if err != nil {
		return 0, goerrors.Errorf("stat source %s: %w", src, err)
	}

	if err := f.Fs.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return 0, goerrors.Errorf("create directory for %s: %w", dst, err)
	}

	dstFile, err := f.Fs.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return 0, goerrors.Errorf("create destination %s: %w", dst, err)
	}
	defer func() {
		if err != nil {
			_ = f.Fs.Remove(dst)
		}
	}()

	buf := make([]byte, CopyBufferSize)
	// Plain wrappers keep ReadFrom/WriteTo out of the way so buf sets the chunk size.
	written, err = io.CopyBuffer(struct{ io.Writer }{dstFile}, struct{ io.Reader }{srcFile}, buf)
	if err != nil {
		dstFile.Close()
		return written, goerrors.Errorf("copy %s to %s: %w", src, dst, err)
	}
	if err = dstFile.Sync(); err != nil {
		dstFile.Close()
		return written, goerrors.Errorf("sync %s: %w", dst, err)
	}
	if err = dstFile.Close(); err != nil {
		return written, goerrors.Errorf("close %s: %w", dst, err)
	}

	if err = f.Fs.Chtimes(dst, info.ModTime(), info.ModTime()); err != nil {
		return written, goerrors.Errorf("preserve modification time on %s: %w", dst, err)
	}
	return written, nil
}
