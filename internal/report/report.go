// Package report keeps the per-run audit trail: a CSV file appended one row
// at a time, an HTML rendering of it and a published copy for the user.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/afero"
	goerrors "gitlab.com/tozd/go/errors"

	"offload/internal/domain"
)

const modDateLayout = "2006-01-02 15:04:05"

var Columns = []string{
	"Source Filename",
	"Destination Filename",
	"Status",
	"Source Checksum",
	"Destination Checksum",
	"Source Path",
	"Destination Path",
	"Size",
	"Modification Date",
}

type Row struct {
	SourceFilename      string
	DestinationFilename string
	Status              domain.Status
	SourceChecksum      string
	DestinationChecksum string
	SourcePath          string
	DestinationPath     string
	Size                int64
	ModTime             time.Time
}

// Record renders the row in column order. Rows that never started carry no
// checksums.
func (r Row) Record() []string {
	srcSum, dstSum := r.SourceChecksum, r.DestinationChecksum
	if r.Status == domain.StatusNotStarted {
		srcSum, dstSum = "", ""
	}
	modDate := ""
	if !r.ModTime.IsZero() {
		modDate = r.ModTime.Format(modDateLayout)
	}
	return []string{
		r.SourceFilename,
		r.DestinationFilename,
		string(r.Status),
		srcSum,
		dstSum,
		r.SourcePath,
		r.DestinationPath,
		domain.HumanSize(r.Size),
		modDate,
	}
}

func parseRecord(record []string) (Row, error) {
	if len(record) != len(Columns) {
		return Row{}, goerrors.Errorf("expected %d columns, got %d", len(Columns), len(record))
	}
	status, ok := domain.ParseStatus(record[2])
	if !ok {
		return Row{}, goerrors.Errorf("unknown status %q", record[2])
	}
	row := Row{
		SourceFilename:      record[0],
		DestinationFilename: record[1],
		Status:              status,
		SourceChecksum:      record[3],
		DestinationChecksum: record[4],
		SourcePath:          record[5],
		DestinationPath:     record[6],
	}
	if size, err := humanize.ParseBytes(record[7]); err == nil {
		row.Size = int64(size)
	}
	if record[8] != "" {
		mod, err := time.ParseInLocation(modDateLayout, record[8], time.Local)
		if err != nil {
			return Row{}, goerrors.Errorf("modification date %q: %w", record[8], err)
		}
		row.ModTime = mod
	}
	return row, nil
}

// Artifacts lists the files a finalized report produced.
type Artifacts struct {
	CSV       string
	HTML      string
	Published string
	Rows      int
}

type Report struct {
	fs         afero.Fs
	path       string
	started    time.Time
	publishDir string

	mu   sync.Mutex
	rows int
}

// New prepares <dir>/<yymmddHHMMSS>_report.csv. Nothing is written until the
// first Append.
func New(fsys afero.Fs, dir string, now time.Time) (*Report, error) {
	if err := fsys.MkdirAll(dir, 0o755); err != nil {
		return nil, goerrors.Errorf("create reports directory %s: %w", dir, err)
	}
	name := fmt.Sprintf("%s_report.csv", now.Format("060102150405"))
	return &Report{
		fs:      fsys,
		path:    filepath.Join(dir, name),
		started: now,
	}, nil
}

// PublishTo makes Finalize copy the raw table into dir.
func (r *Report) PublishTo(dir string) *Report {
	r.publishDir = dir
	return r
}

func (r *Report) Path() string {
	return r.path
}

// Append writes one row and flushes it to disk, so a crash mid-run still
// leaves every finished file on record.
func (r *Report) Append(row Row) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	f, err := r.fs.OpenFile(r.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return goerrors.Errorf("open report %s: %w", r.path, err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return goerrors.Errorf("stat report %s: %w", r.path, err)
	}

	w := csv.NewWriter(f)
	if info.Size() == 0 {
		if err := w.Write(Columns); err != nil {
			f.Close()
			return goerrors.Errorf("write report header: %w", err)
		}
	}
	if err := w.Write(row.Record()); err != nil {
		f.Close()
		return goerrors.Errorf("write report row: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return goerrors.Errorf("flush report: %w", err)
	}
	if err := f.Close(); err != nil {
		return goerrors.Errorf("close report: %w", err)
	}
	r.rows++
	return nil
}

// Finalize renders the HTML view and publishes the raw table. A run with no
// rows still gets a header-only table.
func (r *Report) Finalize() (Artifacts, error) {
	r.mu.Lock()
	rows := r.rows
	r.mu.Unlock()

	if rows == 0 {
		if err := r.writeHeaderOnly(); err != nil {
			return Artifacts{}, err
		}
	}

	art := Artifacts{CSV: r.path, Rows: rows}
	htmlPath, err := r.RenderHTML()
	if err != nil {
		return art, err
	}
	art.HTML = htmlPath

	if r.publishDir != "" {
		published, err := r.Publish(r.publishDir)
		if err != nil {
			return art, err
		}
		art.Published = published
	}
	return art, nil
}

func (r *Report) writeHeaderOnly() error {
	exists, err := afero.Exists(r.fs, r.path)
	if err != nil || exists {
		return err
	}
	var b strings.Builder
	w := csv.NewWriter(&b)
	_ = w.Write(Columns)
	w.Flush()
	if err := afero.WriteFile(r.fs, r.path, []byte(b.String()), 0o644); err != nil {
		return goerrors.Errorf("write report %s: %w", r.path, err)
	}
	return nil
}

// Publish copies the raw table to dir as Offload_Report_<date_time>.csv.
func (r *Report) Publish(dir string) (string, error) {
	if err := r.fs.MkdirAll(dir, 0o755); err != nil {
		return "", goerrors.Errorf("create publish directory %s: %w", dir, err)
	}
	target := filepath.Join(dir, fmt.Sprintf("Offload_Report_%s.csv", r.started.Format("2006-01-02_1504")))

	src, err := r.fs.Open(r.path)
	if err != nil {
		return "", goerrors.Errorf("open report %s: %w", r.path, err)
	}
	defer src.Close()

	dst, err := r.fs.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return "", goerrors.Errorf("create %s: %w", target, err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return "", goerrors.Errorf("publish report to %s: %w", target, err)
	}
	if err := dst.Close(); err != nil {
		return "", goerrors.Errorf("close %s: %w", target, err)
	}
	return target, nil
}

// Read loads every row of a report file.
func Read(fsys afero.Fs, path string) ([]Row, error) {
	f, err := fsys.Open(path)
	if err != nil {
		return nil, goerrors.Errorf("open report %s: %w", path, err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, goerrors.Errorf("parse report %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	rows := make([]Row, 0, len(records)-1)
	for i, record := range records[1:] {
		row, err := parseRecord(record)
		if err != nil {
			return nil, goerrors.Errorf("report %s line %d: %w", path, i+2, err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}
