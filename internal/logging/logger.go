package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Logger provides leveled logging to the console and an optional run log file,
// plus lightweight timing helpers. The zero value discards everything.
type Logger struct {
	zl      *zerolog.Logger
	Verbose bool
}

// New builds a Logger writing human-readable lines to console and plain
// JSON lines to every extra writer (typically the run log file).
func New(console io.Writer, level zerolog.Level, extra ...io.Writer) Logger {
	writers := make([]io.Writer, 0, len(extra)+1)
	if console != nil {
		writers = append(writers, zerolog.ConsoleWriter{Out: console, TimeFormat: "15:04:05"})
	}
	for _, w := range extra {
		if w != nil {
			writers = append(writers, w)
		}
	}
	zl := zerolog.New(zerolog.MultiLevelWriter(writers...)).Level(level).With().Timestamp().Logger()
	return Logger{zl: &zl, Verbose: level <= zerolog.DebugLevel}
}

func Nop() Logger {
	zl := zerolog.Nop()
	return Logger{zl: &zl}
}

// ParseLevel maps the CLI verbosity names onto zerolog levels.
func ParseLevel(name string) (zerolog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "info":
		return zerolog.InfoLevel, nil
	case "debug":
		return zerolog.DebugLevel, nil
	case "warn", "warning":
		return zerolog.WarnLevel, nil
	case "error":
		return zerolog.ErrorLevel, nil
	default:
		return zerolog.InfoLevel, fmt.Errorf("unknown log level %q (valid: debug, info, warn, error)", name)
	}
}

// OpenRunLog creates <dir>/<yymmddHHMM>_offload.log for the current run.
func OpenRunLog(dir string, now time.Time) (*os.File, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	name := fmt.Sprintf("%s_offload.log", now.Format("0601021504"))
	return os.OpenFile(filepath.Join(dir, name), os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
}

// With returns a child logger carrying an extra string field on every line.
func (l Logger) With(key, value string) Logger {
	if l.zl == nil {
		return l
	}
	child := l.zl.With().Str(key, value).Logger()
	return Logger{zl: &child, Verbose: l.Verbose}
}

// Z exposes the underlying zerolog logger for structured fields.
func (l Logger) Z() *zerolog.Logger {
	if l.zl == nil {
		nop := zerolog.Nop()
		return &nop
	}
	return l.zl
}

func (l Logger) Infof(format string, args ...any) {
	l.Z().Info().Msgf(format, args...)
}

func (l Logger) Verbosef(format string, args ...any) {
	l.Z().Debug().Msgf(format, args...)
}

func (l Logger) Warnf(format string, args ...any) {
	l.Z().Warn().Msgf(format, args...)
}

func (l Logger) Errorf(format string, args ...any) {
	l.Z().Error().Msgf(format, args...)
}

// Measure returns a stop function that logs the elapsed time when called.
func (l Logger) Measure(label string) func() {
	if !l.Verbose {
		return func() {}
	}
	start := time.Now()
	return func() {
		elapsed := time.Since(start).Round(time.Millisecond)
		l.Verbosef("%s took %s", label, elapsed)
	}
}
