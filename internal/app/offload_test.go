package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"offload/internal/checksum"
	"offload/internal/domain"
	fsinfra "offload/internal/infra/fs"
	"offload/internal/logging"
	"offload/internal/naming"
	"offload/internal/report"
)

// makeCard writes 20 files of mixed sizes spread over four days.
func makeCard(t *testing.T, root string) {
	t.Helper()
	for i := range 20 {
		dir := filepath.Join(root, "DCIM", fmt.Sprintf("%03dMSDCF", 100+i%2))
		require.NoError(t, os.MkdirAll(dir, 0o755))
		path := filepath.Join(dir, fmt.Sprintf("DSC%05d.JPG", i))
		data := []byte(strings.Repeat(fmt.Sprintf("%02d", i), 1+i*i*97))
		require.NoError(t, os.WriteFile(path, data, 0o644))
		mtime := time.Date(2023, 6, 1+i%4, 10, i, 0, 0, time.Local)
		require.NoError(t, os.Chtimes(path, mtime, mtime))
	}
}

func countFiles(t *testing.T, root string) int {
	t.Helper()
	n := 0
	err := filepath.Walk(root, func(_ string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.Mode().IsRegular() {
			n++
		}
		return nil
	})
	require.NoError(t, err)
	return n
}

func runOffload(t *testing.T, source, destination, reports string, dryRun bool) (Result, *report.Report) {
	t.Helper()
	fsys := fsinfra.NewOS()
	now := time.Date(2024, 11, 2, 9, 30, 0, 0, time.Local)

	rep, err := report.New(fsys.Fs, reports, now)
	require.NoError(t, err)

	c, err := ScanCollection(fsys, source, DefaultExclude, nil)
	require.NoError(t, err)

	eng := NewEngine(Options{
		Source:      source,
		Destination: destination,
		Structure:   naming.StructureTakenDate,
		Prefix:      naming.ParsePrefix("taken_date"),
		Filename:    naming.ParseFilename("original"),
		Mode:        domain.ModeCopy,
		DryRun:      dryRun,
	}, Deps{
		FS:     fsys,
		Hasher: checksum.Engine{Fs: fsys.Fs, Algorithm: checksum.XXHash},
		Report: rep,
		Logger: logging.Nop(),
		Clock:  func() time.Time { return now },
	})
	res, err := eng.Run(context.Background(), c, nil)
	require.NoError(t, err)
	return res, rep
}

func TestOffloadEndToEnd(t *testing.T) {
	source, destination, reports := t.TempDir(), t.TempDir(), t.TempDir()
	makeCard(t, source)

	res, rep := runOffload(t, source, destination, reports, false)

	assert.True(t, res.OK())
	assert.Equal(t, 20, res.Counts[domain.StatusSuccessful])
	assert.Equal(t, 20, countFiles(t, destination))
	for d := 1; d <= 4; d++ {
		dir := filepath.Join(destination, "2023", fmt.Sprintf("2023-06-%02d", d))
		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		assert.Len(t, entries, 5, dir)
		for _, entry := range entries {
			assert.True(t, strings.HasPrefix(entry.Name(), fmt.Sprintf("2306%02d_DSC", d)), entry.Name())
		}
	}

	assert.Equal(t, filepath.Join(reports, "241102093000_report.csv"), rep.Path())
	raw, err := os.ReadFile(rep.Path())
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	assert.Len(t, lines, 21)

	rows, err := report.Read(fsinfra.NewOS().Fs, rep.Path())
	require.NoError(t, err)
	for _, row := range rows {
		assert.Equal(t, domain.StatusSuccessful, row.Status)
		assert.Equal(t, row.SourceChecksum, row.DestinationChecksum)
	}
	assert.FileExists(t, res.Report.HTML)

	// A second run finds everything already there.
	again, _ := runOffload(t, source, destination, t.TempDir(), false)
	assert.Equal(t, 20, again.Counts[domain.StatusSkipped])
	assert.Equal(t, 20, countFiles(t, destination))
}

func TestOffloadDryRunEndToEnd(t *testing.T) {
	source, destination, reports := t.TempDir(), t.TempDir(), t.TempDir()
	makeCard(t, source)

	res, rep := runOffload(t, source, destination, reports, true)

	assert.Equal(t, 20, res.Counts[domain.StatusSuccessful])
	assert.Zero(t, countFiles(t, destination))

	rows, err := report.Read(fsinfra.NewOS().Fs, rep.Path())
	require.NoError(t, err)
	assert.Len(t, rows, 20)
}
