package domain

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	apperrors "offload/internal/errors"
	"offload/internal/naming"
)

const DefaultIncrementPadding = 3

// Stater is the slice of a filesystem FileEntry needs. Both afero.Fs and the
// app FileSystem port satisfy it.
type Stater interface {
	Stat(name string) (os.FileInfo, error)
}

// FileEntry is one source file or one candidate destination. The parent
// directory is fixed at construction; only the name parts change.
type FileEntry struct {
	dir string

	BaseName  string
	Extension string
	Prefix    string
	Increment int

	padding int
}

// NewFileEntry builds an entry for path. The path does not need to exist, but
// if it does it must not be a directory.
func NewFileEntry(stater Stater, path string) (*FileEntry, error) {
	info, err := stater.Stat(path)
	switch {
	case err == nil && info.IsDir():
		return nil, apperrors.Wrap(apperrors.InvalidTarget, "file entry", path, apperrors.ErrInvalidTarget)
	case err != nil && !os.IsNotExist(err):
		return nil, apperrors.Wrap(apperrors.IOFailure, "file entry", path, err)
	}

	name := filepath.Base(path)
	ext := filepath.Ext(name)
	return &FileEntry{
		dir:       filepath.Dir(path),
		BaseName:  strings.TrimSuffix(name, ext),
		Extension: strings.TrimPrefix(ext, "."),
		padding:   DefaultIncrementPadding,
	}, nil
}

func (e *FileEntry) Dir() string {
	return e.dir
}

// Filename renders [prefix_]base[_increment][.ext].
func (e *FileEntry) Filename() string {
	var b strings.Builder
	if e.Prefix != "" {
		b.WriteString(e.Prefix)
		b.WriteByte('_')
	}
	b.WriteString(e.BaseName)
	if e.Increment > 0 {
		fmt.Fprintf(&b, "_%0*d", e.padding, e.Increment)
	}
	if e.Extension != "" {
		b.WriteByte('.')
		b.WriteString(e.Extension)
	}
	return b.String()
}

func (e *FileEntry) Path() string {
	return filepath.Join(e.dir, e.Filename())
}

func (e *FileEntry) IncrementFilename() {
	e.Increment++
}

func (e *FileEntry) IncrementPadding() int {
	return e.padding
}

// SetIncrementPadding changes the suffix width used from the next render on.
// Widths below one are ignored.
func (e *FileEntry) SetIncrementPadding(width int) {
	if width < 1 {
		return
	}
	e.padding = width
}

// SetBaseName replaces the base name with a validated form of raw.
func (e *FileEntry) SetBaseName(raw string) {
	name := naming.Validate(raw)
	if name == "" {
		name = naming.Unknown
	}
	e.BaseName = name
}

// SetPrefix stores an already formatted prefix. Empty clears it.
func (e *FileEntry) SetPrefix(prefix string) {
	e.Prefix = naming.Validate(prefix)
}

// Snapshot re-reads the entry's current path.
func (e *FileEntry) Snapshot(stater Stater) (Snapshot, error) {
	return Stat(stater, e.Path())
}

// Snapshot is what the filesystem said about a path at one point in time.
type Snapshot struct {
	Exists  bool
	Regular bool
	Size    int64
	ModTime time.Time
}

// Stat takes a Snapshot of path. A missing path is not an error.
func Stat(stater Stater, path string) (Snapshot, error) {
	info, err := stater.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Snapshot{}, nil
		}
		return Snapshot{}, apperrors.Wrap(apperrors.IOFailure, "stat", path, err)
	}
	return Snapshot{
		Exists:  true,
		Regular: info.Mode().IsRegular(),
		Size:    info.Size(),
		ModTime: info.ModTime(),
	}, nil
}
