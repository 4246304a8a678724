package config

import (
	"errors"
	"os"
	"slices"
	"strings"

	"github.com/rs/zerolog"

	"offload/internal/app"
	"offload/internal/checksum"
	"offload/internal/domain"
	"offload/internal/logging"
	"offload/internal/naming"
)

// Flags are raw command line values. Empty strings mean "not given".
type Flags struct {
	Source      string
	Destination string
	Structure   string
	Filename    string
	Prefix      string
	Move        bool
	DryRun      bool
	Verbose     bool
	Quiet       bool
	LogLevel    string
	Checksum    string
	Exclude     []string
	Ignore      []string
	Padding     int
	ReportsDir  string
	PublishDir  string
	NoTUI       bool
}

// Config is everything one run needs, resolved once before it starts.
type Config struct {
	Source           string
	Destination      string
	Structure        naming.Structure
	Filename         naming.Filename
	Prefix           naming.Prefix
	Mode             domain.TransferMode
	DryRun           bool
	LogLevel         zerolog.Level
	Algorithm        checksum.Algorithm
	IncrementPadding int
	Exclude          []string
	Ignore           []string
	NoTUI            bool
	Paths            Paths
}

// Resolve merges flags, OFFLOAD_* environment variables and stored settings,
// in that order of precedence.
func Resolve(f Flags, s Settings, paths Paths) (Config, error) {
	cfg := Config{
		Source:           firstNonEmpty(f.Source, envOrEmpty("OFFLOAD_SOURCE")),
		Destination:      firstNonEmpty(f.Destination, envOrEmpty("OFFLOAD_DESTINATION"), s.DefaultDestination),
		DryRun:           f.DryRun,
		IncrementPadding: f.Padding,
		Exclude:          append(slices.Clone(app.DefaultExclude), f.Exclude...),
		Ignore:           f.Ignore,
		NoTUI:            f.NoTUI,
		Paths:            paths,
	}
	if f.ReportsDir != "" {
		cfg.Paths.Reports = f.ReportsDir
	}
	if f.PublishDir != "" {
		cfg.Paths.Publish = f.PublishDir
	}

	if cfg.Source == "" {
		return Config{}, errors.New("source is required (--source or OFFLOAD_SOURCE)")
	}
	if cfg.Destination == "" {
		return Config{}, errors.New("destination is required (--destination, OFFLOAD_DESTINATION or a default destination in settings)")
	}

	structure, err := naming.ParseStructure(firstNonEmpty(f.Structure, envOrEmpty("OFFLOAD_STRUCTURE"), s.Structure, "taken_date"))
	if err != nil {
		return Config{}, err
	}
	cfg.Structure = structure
	cfg.Filename = naming.ParseFilename(firstNonEmpty(f.Filename, envOrEmpty("OFFLOAD_FILENAME"), s.Filename))
	cfg.Prefix = naming.ParsePrefix(firstNonEmpty(f.Prefix, envOrEmpty("OFFLOAD_PREFIX"), s.Prefix))

	cfg.Mode = domain.ModeCopy
	if f.Move {
		cfg.Mode = domain.ModeMove
	}

	algo, err := checksum.ParseAlgorithm(f.Checksum)
	if err != nil {
		return Config{}, err
	}
	cfg.Algorithm = algo

	if cfg.IncrementPadding <= 0 {
		cfg.IncrementPadding = domain.DefaultIncrementPadding
	}

	switch {
	case f.LogLevel != "":
		level, err := logging.ParseLevel(f.LogLevel)
		if err != nil {
			return Config{}, err
		}
		cfg.LogLevel = level
	case f.Verbose || envTruthy("OFFLOAD_VERBOSE"):
		cfg.LogLevel = zerolog.DebugLevel
	case f.Quiet:
		cfg.LogLevel = zerolog.ErrorLevel
	default:
		cfg.LogLevel = zerolog.InfoLevel
	}

	return cfg, nil
}

func (c Config) EngineOptions() app.Options {
	return app.Options{
		Source:           c.Source,
		Destination:      c.Destination,
		Structure:        c.Structure,
		Filename:         c.Filename,
		Prefix:           c.Prefix,
		Mode:             c.Mode,
		DryRun:           c.DryRun,
		IncrementPadding: c.IncrementPadding,
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func envOrEmpty(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func envTruthy(key string) bool {
	val := strings.TrimSpace(strings.ToLower(os.Getenv(key)))
	return val == "1" || val == "true" || val == "yes" || val == "y"
}
