package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"offload/internal/app"
	"offload/internal/checksum"
	"offload/internal/config"
	appErrors "offload/internal/errors"
	"offload/internal/infra/exif"
	"offload/internal/infra/fs"
	"offload/internal/logging"
	"offload/internal/presentation"
	"offload/internal/report"
	"offload/internal/tui"
)

var errIncomplete = errors.New("offload did not complete for every file, see the report for details")

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, appErrors.UserMessage(err))
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var flags config.Flags

	cmd := &cobra.Command{
		Use:           "offload",
		Short:         "Offload media cards to a destination with verified copies",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runOffload(cmd.Context(), flags)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&flags.Source, "source", "s", "", "source folder, usually the mounted card")
	f.StringVarP(&flags.Destination, "destination", "d", "", "destination folder")
	f.StringVarP(&flags.Structure, "folder-structure", "f", "", "folder structure: original, taken_date, offload_date, year, year_month, flat")
	f.StringVarP(&flags.Filename, "name", "n", "", "filename: original, camera_make, camera_model or a literal name")
	f.StringVarP(&flags.Prefix, "prefix", "p", "", "prefix: taken_date, taken_date_time, offload_date, none or a literal prefix")
	f.BoolVarP(&flags.Move, "move", "m", false, "remove source files after a verified copy")
	f.BoolVar(&flags.DryRun, "dryrun", false, "show what would happen without writing files")
	f.StringVar(&flags.Checksum, "checksum", "", "checksum algorithm: xxhash, md5, sha256")
	f.StringSliceVar(&flags.Exclude, "exclude", nil, "additional file or folder names to skip")
	f.StringSliceVar(&flags.Ignore, "ignore", nil, "glob patterns (relative to the source) to skip")
	f.IntVar(&flags.Padding, "padding", 0, "digits used for increment suffixes")
	f.StringVar(&flags.ReportsDir, "reports-dir", "", "directory for run reports")
	f.StringVar(&flags.PublishDir, "publish-dir", "", "directory a copy of the report is published to")
	f.BoolVar(&flags.NoTUI, "no-tui", false, "print plain progress lines instead of the interactive view")

	pf := cmd.PersistentFlags()
	pf.BoolVarP(&flags.Verbose, "verbose", "v", false, "verbose output")
	pf.BoolVarP(&flags.Quiet, "quiet", "q", false, "only log errors")
	pf.StringVar(&flags.LogLevel, "log-level", "", "log level: debug, info, warn, error")

	cmd.AddCommand(newVerifyCmd(&flags), newSettingsCmd())
	return cmd
}

func runOffload(parent context.Context, flags config.Flags) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	paths := config.DefaultPaths()
	settings, err := config.LoadSettings(paths.Settings)
	if err != nil {
		return appErrors.Wrap(appErrors.InvalidConfig, "settings", paths.Settings, err)
	}
	cfg, err := config.Resolve(flags, settings, paths)
	if err != nil {
		return appErrors.Wrap(appErrors.InvalidConfig, "config", "", err)
	}

	interactive := !cfg.NoTUI && isatty.IsTerminal(os.Stdout.Fd())
	now := time.Now()

	var console io.Writer = os.Stderr
	if interactive {
		// The log file still gets everything; the terminal belongs to the view.
		console = nil
	}
	var extra []io.Writer
	logFile, logErr := logging.OpenRunLog(cfg.Paths.Logs, now)
	if logErr == nil {
		defer logFile.Close()
		extra = append(extra, logFile)
	}
	logger := logging.New(console, cfg.LogLevel, extra...).With("run_id", uuid.NewString())
	if logErr != nil {
		logger.Warnf("Run log unavailable: %v", logErr)
	}

	res, err := execute(ctx, cfg, logger, os.Stdout, interactive, now)
	if err != nil && res.Processed == 0 {
		return err
	}

	if !cfg.DryRun {
		settings.RememberDestination(cfg.Destination)
		if err := settings.Save(cfg.Paths.Settings); err != nil {
			logger.Warnf("Could not save settings: %v", err)
		}
	}

	if err != nil {
		return err
	}
	if !res.OK() {
		return errIncomplete
	}
	return nil
}

// execute scans the source, reads metadata ahead when the filename preset
// needs it, and runs the engine next to an observer. Once the report exists
// every outcome, including a cancel during read-ahead or a lost destination,
// ends in a finalized report and a printed summary.
func execute(ctx context.Context, cfg config.Config, logger logging.Logger, stdout io.Writer, interactive bool, now time.Time) (app.Result, error) {
	logger.Z().Info().
		Str("source", cfg.Source).
		Str("destination", cfg.Destination).
		Str("structure", cfg.Structure.String()).
		Str("filename", cfg.Filename.String()).
		Str("prefix", cfg.Prefix.String()).
		Str("mode", string(cfg.Mode)).
		Bool("dry_run", cfg.DryRun).
		Msg("Starting offload")

	filesystem := fs.NewOS()
	collection, err := app.ScanCollection(filesystem, cfg.Source, cfg.Exclude, cfg.Ignore)
	if err != nil {
		return app.Result{}, err
	}
	if !cfg.DryRun {
		if err := filesystem.MkdirAll(cfg.Destination, 0o755); err != nil {
			return app.Result{}, appErrors.Wrap(appErrors.IOFailure, "mkdir", cfg.Destination, err)
		}
	}

	rep, err := report.New(filesystem.Fs, cfg.Paths.Reports, now)
	if err != nil {
		return app.Result{}, appErrors.Wrap(appErrors.IOFailure, "report", cfg.Paths.Reports, err)
	}
	deps := app.Deps{
		FS:     filesystem,
		Hasher: checksum.Engine{Fs: filesystem.Fs, Algorithm: cfg.Algorithm},
		Report: rep.PublishTo(cfg.Paths.Publish),
		Logger: logger,
	}

	printer := presentation.Printer{Writer: stdout, Verbose: logger.Verbose}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	updates := make(chan app.Progress, 1)
	var res app.Result
	var runErr error
	work := func(onScan app.ScanProgressFunc) {
		defer close(updates)
		deps.Metadata = readAhead(runCtx, cfg, filesystem, collection, logger, onScan)
		res, runErr = app.NewEngine(cfg.EngineOptions(), deps).Run(runCtx, collection, app.NonBlocking(updates))
	}

	g := new(errgroup.Group)
	if interactive {
		program := tea.NewProgram(tui.NewModel(tui.Config{
			Source:      cfg.Source,
			Destination: cfg.Destination,
			Files:       collection.Count(),
			Bytes:       collection.TotalSize(),
			DryRun:      cfg.DryRun,
			Mode:        cfg.Mode,
			Updates:     updates,
			Cancel:      cancel,
		}))
		g.Go(func() error {
			work(func(current, total int) {
				program.Send(tui.ScanProgressMsg{Current: current, Total: total})
			})
			done := tui.DoneMsg{Result: res}
			if runErr != nil {
				done.Err = errors.New(appErrors.UserMessage(runErr))
			}
			program.Send(done)
			return nil
		})
		g.Go(func() error {
			_, err := program.Run()
			return err
		})
	} else {
		printer.PrintPlan(presentation.Header{
			Source:      cfg.Source,
			Destination: cfg.Destination,
			Structure:   cfg.Structure.String(),
			Prefix:      cfg.Prefix.String(),
			Filename:    cfg.Filename.String(),
			Mode:        cfg.Mode,
			DryRun:      cfg.DryRun,
		}, collection)
		g.Go(func() error {
			work(printer.PrintScan)
			return nil
		})
		g.Go(func() error {
			for pr := range updates {
				printer.PrintProgress(pr)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		logger.Errorf("Display failed: %v", err)
	}

	printer.PrintSummary(res, cfg.DryRun)
	return res, runErr
}

// readAhead prefetches metadata for presets that name files after it. A
// cancel during read-ahead leaves the index empty; the engine then records
// every file as Not started.
func readAhead(ctx context.Context, cfg config.Config, filesystem fs.FS, c *app.Collection, logger logging.Logger, onScan app.ScanProgressFunc) app.MetadataReader {
	if _, needsMeta := cfg.Filename.MetadataField(); !needsMeta {
		return nil
	}
	prefetcher := app.MetadataPrefetcher{
		Reader:     exif.Reader{Fs: filesystem.Fs},
		Logger:     logger,
		OnProgress: onScan,
	}
	index, err := prefetcher.Prefetch(ctx, c.Items)
	if err != nil {
		logger.Warnf("Metadata read-ahead stopped: %v", err)
		return app.MetadataIndex{}
	}
	return index
}
