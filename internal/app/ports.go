package app

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"offload/internal/report"
)

type FileSystem interface {
	Walk(root string, fn filepath.WalkFunc) error
	Stat(path string) (os.FileInfo, error)
	Exists(path string) (bool, error)
	MkdirAll(path string, perm os.FileMode) error
	CopyFile(src, dst string) (int64, error)
	Remove(path string) error
}

// Hasher computes the content digest used for verification and equivalence.
type Hasher interface {
	Checksum(path string) (string, error)
}

// MetadataReader returns key/value metadata for a file. Files without
// metadata yield an empty map, not an error.
type MetadataReader interface {
	Metadata(ctx context.Context, path string) (map[string]string, error)
}

// ReportWriter receives one row per processed source file.
type ReportWriter interface {
	Append(row report.Row) error
	Finalize() (report.Artifacts, error)
}

// Clock is swapped in tests to pin the run date.
type Clock func() time.Time
