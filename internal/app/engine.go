package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	goerrors "gitlab.com/tozd/go/errors"

	"offload/internal/checksum"
	"offload/internal/domain"
	apperrors "offload/internal/errors"
	"offload/internal/logging"
	"offload/internal/naming"
	"offload/internal/report"
)

// Options is the run configuration the engine is constructed with. It is not
// re-read during a run.
type Options struct {
	Source           string
	Destination      string
	Structure        naming.Structure
	Filename         naming.Filename
	Prefix           naming.Prefix
	Mode             domain.TransferMode
	DryRun           bool
	IncrementPadding int
}

type Deps struct {
	FS       FileSystem
	Hasher   Hasher
	Metadata MetadataReader
	Report   ReportWriter
	Logger   logging.Logger
	Clock    Clock
}

type Engine struct {
	Deps
	Options Options
}

func NewEngine(opts Options, deps Deps) *Engine {
	if deps.Clock == nil {
		deps.Clock = time.Now
	}
	if opts.IncrementPadding < 1 {
		opts.IncrementPadding = domain.DefaultIncrementPadding
	}
	if opts.Mode == "" {
		opts.Mode = domain.ModeCopy
	}
	return &Engine{Deps: deps, Options: opts}
}

// Failure is one file that ended Failed.
type Failure struct {
	Source      string
	Destination string
	Reason      string
}

type Result struct {
	Processed int
	Counts    map[domain.Status]int
	Kinds     map[domain.MediaKind]int
	Skipped   []string
	Failures  []Failure
	Folders   []string
	Bytes     int64
	Elapsed   time.Duration
	Cancelled bool
	Aborted   bool
	Report    report.Artifacts
}

// OK is true when every file was either transferred or already present.
func (r Result) OK() bool {
	return !r.Aborted && r.Counts[domain.StatusFailed] == 0 && r.Counts[domain.StatusNotStarted] == 0
}

type outcome struct {
	row    report.Row
	reason string
	abort  bool
}

// Run transfers every item of c, one at a time in modification time order.
// Cancelling ctx (or losing the destination) turns every remaining file into a
// Not started row; the report is finalized either way.
func (e *Engine) Run(ctx context.Context, c *Collection, observe ProgressFunc) (Result, error) {
	if e.FS == nil || e.Hasher == nil || e.Report == nil {
		return Result{}, apperrors.Wrap(apperrors.Internal, "run", "", goerrors.New("engine requires FS, Hasher and Report"))
	}
	if observe == nil {
		observe = func(Progress) {}
	}
	stop := e.Logger.Measure("Offload")
	defer stop()

	started := e.Clock()
	total := c.Count()
	stats := NewStats(started, c.TotalSize(), e.Clock)
	e.Logger.Infof("Total file size: %s", domain.HumanSize(stats.TotalBytes))
	if avg, err := c.AverageSize(); err != nil {
		e.Logger.Warnf("%s", apperrors.UserMessage(err))
	} else {
		e.Logger.Infof("Average file size: %s", domain.HumanSize(avg))
	}

	c.SortByModTime()

	res := Result{
		Counts: make(map[domain.Status]int, len(domain.Statuses)),
		Kinds:  c.KindCounts(),
	}
	folders := map[string]bool{}
	claimed := map[string]bool{}
	var runErr error

	for i, item := range c.Items {
		label := fmt.Sprintf("Processing file %d/%d", i+1, total)
		e.emit(observe, stats, label, item, i, total)
		e.Logger.Infof("%s (~%.0f%%) | %s", label, stats.Percentage(), item.Entry.Filename())

		cancelled := res.Aborted || ctx.Err() != nil
		if cancelled && !res.Aborted && !res.Cancelled {
			res.Cancelled = true
			e.Logger.Warnf("Offload cancelled, remaining files will not be started")
		}

		out := e.process(ctx, item, started, cancelled, claimed, func(state string) {
			e.emit(observe, stats, fmt.Sprintf("%s [%s]", label, state), item, i, total)
		})
		if !cancelled {
			folders[filepath.Dir(out.row.DestinationPath)] = true
		}

		if err := e.Report.Append(out.row); err != nil {
			return res, apperrors.Wrap(apperrors.IOFailure, "write report", "", err)
		}

		res.Processed++
		res.Counts[out.row.Status]++
		switch out.row.Status {
		case domain.StatusSkipped:
			res.Skipped = append(res.Skipped, item.Path)
		case domain.StatusFailed:
			res.Failures = append(res.Failures, Failure{Source: item.Path, Destination: out.row.DestinationPath, Reason: out.reason})
			e.Logger.Z().Error().
				Str("source", item.Path).
				Str("destination", out.row.DestinationPath).
				Str("reason", out.reason).
				Msg("transfer failed")
		}
		if out.abort && !res.Aborted {
			res.Aborted = true
			runErr = apperrors.Wrap(apperrors.DestinationUnreachable, "offload", e.Options.Destination, apperrors.ErrDestinationUnreachable)
			e.Logger.Errorf("Destination %s is no longer reachable, aborting", e.Options.Destination)
		}

		stats.Add(item.Snapshot.Size)
		e.logStats(stats)
		e.emit(observe, stats, label, item, i+1, total)
	}

	res.Bytes = stats.Bytes
	res.Elapsed = stats.Elapsed()
	for folder := range folders {
		res.Folders = append(res.Folders, folder)
	}
	sort.Strings(res.Folders)

	artifacts, err := e.Report.Finalize()
	res.Report = artifacts
	if err != nil && runErr == nil {
		runErr = apperrors.Wrap(apperrors.IOFailure, "finalize report", artifacts.CSV, err)
	}

	action := "Finished"
	if res.Cancelled {
		action = "Cancelled"
	} else if res.Aborted {
		action = "Aborted"
	}
	observe(Progress{
		Percentage:     100,
		Action:         action,
		Current:        total,
		Total:          total,
		Bytes:          stats.Bytes,
		TotalBytes:     stats.TotalBytes,
		RemainingKnown: true,
		Finished:       true,
	})
	return res, runErr
}

func (e *Engine) process(ctx context.Context, item Item, runDate time.Time, cancelled bool, claimed map[string]bool, state func(string)) outcome {
	opts := e.Options
	dates := naming.Dates{File: item.Snapshot.ModTime, Run: runDate}
	if dates.MissingFileDate() && (opts.Structure.UsesFileDate() || opts.Prefix.UsesFileDate()) {
		e.Logger.Warnf("%s has no date, using today's date", item.Path)
	}

	out := outcome{row: report.Row{
		SourceFilename: item.Entry.Filename(),
		SourcePath:     item.Path,
		Size:           item.Snapshot.Size,
		ModTime:        item.Snapshot.ModTime,
	}}
	fail := func(reason string) outcome {
		out.row.Status = domain.StatusFailed
		out.reason = reason
		return out
	}

	folder := opts.Structure.Folder(dates, item.RelativeDir())
	destDir := filepath.Join(opts.Destination, filepath.FromSlash(folder))
	var stater domain.Stater = e.FS
	if cancelled {
		stater = absent{}
	}
	dst, err := domain.NewFileEntry(stater, filepath.Join(destDir, item.Entry.Filename()))
	if err != nil {
		out.row.DestinationPath = filepath.Join(destDir, item.Entry.Filename())
		out.row.DestinationFilename = item.Entry.Filename()
		return fail(apperrors.UserMessage(err))
	}
	dst.SetIncrementPadding(opts.IncrementPadding)
	dst.SetBaseName(e.baseName(ctx, item, cancelled))
	dst.SetPrefix(opts.Prefix.Format(dates))

	syncDest := func() {
		out.row.DestinationFilename = dst.Filename()
		out.row.DestinationPath = dst.Path()
	}
	syncDest()

	if cancelled {
		out.row.Status = domain.StatusNotStarted
		return out
	}

	e.Logger.Verbosef("File modification date: %s", item.Snapshot.ModTime.Format(time.DateTime))
	e.Logger.Verbosef("Source path: %s", item.Path)
	e.Logger.Verbosef("Destination path: %s", dst.Path())

	srcSnap, err := domain.Stat(e.FS, item.Path)
	if err != nil {
		return fail(err.Error())
	}
	if !srcSnap.Exists || !srcSnap.Regular {
		return fail("source file is missing")
	}

	for {
		if claimed[dst.Path()] {
			dst.IncrementFilename()
			continue
		}
		dstSnap, err := dst.Snapshot(e.FS)
		if err != nil {
			syncDest()
			return fail(err.Error())
		}
		if !dstSnap.Exists {
			break
		}
		state("verifying")
		if !dstSnap.Regular {
			e.Logger.Warnf("%s is not a regular file, adding increment", dst.Path())
			dst.IncrementFilename()
			continue
		}
		if dst.Increment < 1 {
			e.Logger.Infof("File with the same name exists in destination, comparing attributes")
		} else {
			e.Logger.Verbosef("File with incremented name %s exists, comparing attributes", dst.Filename())
		}

		cmp, err := Equivalent(e.Hasher, item.Path, srcSnap, dst.Path(), dstSnap)
		if err != nil {
			syncDest()
			return fail(err.Error())
		}
		if cmp.Equivalent {
			e.Logger.Warnf("File (%s) already exists in destination, skipping", dst.Filename())
			syncDest()
			out.row.Status = domain.StatusSkipped
			out.row.SourceChecksum = cmp.SourceChecksum
			out.row.DestinationChecksum = cmp.DestinationChecksum
			return out
		}
		e.Logger.Warnf("File (%s) with the same name already exists in destination (%s), adding increment", dst.Filename(), cmp.Reason)
		dst.IncrementFilename()
	}
	syncDest()

	if opts.DryRun {
		claimed[dst.Path()] = true
		e.Logger.Infof("Dry run, not copying %s", item.Path)
		out.row.Status = domain.StatusSuccessful
		return out
	}

	state("copying")
	if err := e.FS.MkdirAll(dst.Dir(), 0o755); err != nil {
		out = fail(fmt.Sprintf("create %s: %v", dst.Dir(), err))
		out.abort = !e.destinationReachable()
		return out
	}
	if _, err := e.FS.CopyFile(item.Path, dst.Path()); err != nil {
		out = fail(err.Error())
		out.abort = !e.destinationReachable()
		return out
	}

	state("verifying")
	e.Logger.Infof("Verifying transferred file")
	srcSum, err := e.Hasher.Checksum(item.Path)
	if err != nil {
		return fail(fmt.Sprintf("checksum source: %v", err))
	}
	out.row.SourceChecksum = srcSum
	dstSum, err := e.Hasher.Checksum(dst.Path())
	if err != nil {
		return fail(fmt.Sprintf("checksum destination: %v", err))
	}
	out.row.DestinationChecksum = dstSum

	if !checksum.Match(srcSum, dstSum) {
		return fail("checksum mismatch")
	}
	e.Logger.Infof("File transferred successfully")
	out.row.Status = domain.StatusSuccessful

	if opts.Mode == domain.ModeMove {
		if err := e.FS.Remove(item.Path); err != nil {
			e.Logger.Warnf("Could not remove source %s after transfer: %v", item.Path, err)
		} else {
			e.Logger.Verbosef("Removed source %s", item.Path)
		}
	}
	return out
}

// baseName resolves the configured filename preset. Metadata is not read for
// files that will not be started; those keep their own name.
func (e *Engine) baseName(ctx context.Context, item Item, cancelled bool) string {
	original := item.Entry.BaseName
	preset := e.Options.Filename
	if _, needsMeta := preset.MetadataField(); !needsMeta {
		return preset.Resolve(original, nil)
	}
	if cancelled {
		return original
	}

	var meta map[string]string
	if e.Metadata != nil && item.Kind.HasExif() {
		// The file has started; a cancel from here on only affects the next one.
		m, err := e.Metadata.Metadata(context.WithoutCancel(ctx), item.Path)
		if err != nil {
			e.Logger.Warnf("Metadata unavailable for %s: %v", item.Path, err)
		} else {
			meta = m
		}
	}
	return preset.Resolve(original, meta)
}

func (e *Engine) destinationReachable() bool {
	info, err := e.FS.Stat(e.Options.Destination)
	if err != nil {
		return !os.IsNotExist(err)
	}
	return info.IsDir()
}

func (e *Engine) emit(observe ProgressFunc, stats *Stats, action string, item Item, current, total int) {
	remaining, known := stats.Remaining()
	observe(Progress{
		Percentage:     stats.Percentage(),
		Action:         action,
		File:           item.Entry.Filename(),
		Current:        current,
		Total:          total,
		Bytes:          stats.Bytes,
		TotalBytes:     stats.TotalBytes,
		Remaining:      remaining,
		RemainingKnown: known,
	})
}

func (e *Engine) logStats(stats *Stats) {
	if !e.Logger.Verbose {
		return
	}
	e.Logger.Verbosef("Elapsed time: %s", domain.DescribeDuration(stats.Elapsed()))
	speed, ok := stats.Speed()
	if !ok {
		e.Logger.Verbosef("Average speed: unknown")
		return
	}
	remaining, _ := stats.Remaining()
	e.Logger.Verbosef("Average speed: %s/s", domain.HumanSize(int64(speed)))
	e.Logger.Verbosef("Size remaining: %s", domain.HumanSize(stats.TotalBytes-stats.Bytes))
	e.Logger.Verbosef("Time remaining: %s", domain.DescribeDuration(remaining))
}

// absent stats nothing, for naming files that will not be touched.
type absent struct{}

func (absent) Stat(name string) (os.FileInfo, error) {
	return nil, &os.PathError{Op: "stat", Path: name, Err: os.ErrNotExist}
}
