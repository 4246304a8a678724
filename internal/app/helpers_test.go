package app

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"offload/internal/checksum"
	"offload/internal/domain"
	fsinfra "offload/internal/infra/fs"
	"offload/internal/logging"
	"offload/internal/naming"
	"offload/internal/report"
)

var runDate = time.Date(2024, 11, 2, 9, 30, 0, 0, time.UTC)

func day(d int) time.Time {
	return time.Date(2020, 3, d, 12, 0, 0, 0, time.UTC)
}

func writeFile(t *testing.T, fs afero.Fs, path, content string, mtime time.Time) {
	t.Helper()
	require.NoError(t, fs.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, afero.WriteFile(fs, path, []byte(content), 0o644))
	require.NoError(t, fs.Chtimes(path, mtime, mtime))
}

func readFile(t *testing.T, fs afero.Fs, path string) string {
	t.Helper()
	data, err := afero.ReadFile(fs, path)
	require.NoError(t, err)
	return string(data)
}

func exists(t *testing.T, fs afero.Fs, path string) bool {
	t.Helper()
	ok, err := afero.Exists(fs, path)
	require.NoError(t, err)
	return ok
}

type memReport struct {
	rows      []report.Row
	finalized bool
	appendErr error
}

func (m *memReport) Append(row report.Row) error {
	if m.appendErr != nil {
		return m.appendErr
	}
	m.rows = append(m.rows, row)
	return nil
}

func (m *memReport) Finalize() (report.Artifacts, error) {
	m.finalized = true
	return report.Artifacts{Rows: len(m.rows)}, nil
}

func (m *memReport) statuses() []domain.Status {
	out := make([]domain.Status, len(m.rows))
	for i, row := range m.rows {
		out[i] = row.Status
	}
	return out
}

// countingHasher records how often files were hashed.
type countingHasher struct {
	inner Hasher
	calls int
}

func (h *countingHasher) Checksum(path string) (string, error) {
	h.calls++
	return h.inner.Checksum(path)
}

// skewedHasher corrupts every digest under prefix.
type skewedHasher struct {
	inner  Hasher
	prefix string
}

func (h skewedHasher) Checksum(path string) (string, error) {
	sum, err := h.inner.Checksum(path)
	if err != nil || !strings.HasPrefix(path, h.prefix) {
		return sum, err
	}
	return sum + "0", nil
}

// vanishingFS loses the destination volume on the first copy.
type vanishingFS struct {
	fsinfra.FS
	root string
}

func (v vanishingFS) CopyFile(src, dst string) (int64, error) {
	_ = v.Fs.RemoveAll(v.root)
	return 0, errors.New("device not configured")
}

type testEnv struct {
	fsys fsinfra.FS
	rep  *memReport
	opts Options
}

func newEnv() *testEnv {
	return &testEnv{
		fsys: fsinfra.NewMemory(),
		rep:  &memReport{},
		opts: Options{
			Source:      "/card",
			Destination: "/dest",
			Structure:   naming.StructureTakenDate,
			Prefix:      naming.Prefix{Kind: naming.PrefixNone},
			Filename:    naming.Filename{Kind: naming.FilenameOriginal},
			Mode:        domain.ModeCopy,
		},
	}
}

func (env *testEnv) hasher() checksum.Engine {
	return checksum.Engine{Fs: env.fsys.Fs, Algorithm: checksum.XXHash}
}

func (env *testEnv) engine(hasher Hasher, fsys FileSystem) *Engine {
	if hasher == nil {
		hasher = env.hasher()
	}
	if fsys == nil {
		fsys = env.fsys
	}
	return NewEngine(env.opts, Deps{
		FS:     fsys,
		Hasher: hasher,
		Report: env.rep,
		Logger: logging.Nop(),
		Clock:  func() time.Time { return runDate },
	})
}

func (env *testEnv) scan(t *testing.T) *Collection {
	t.Helper()
	c, err := ScanCollection(env.fsys, env.opts.Source, DefaultExclude, nil)
	require.NoError(t, err)
	return c
}
