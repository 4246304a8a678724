package config

import (
	"bytes"
	"os"
	"path/filepath"
	"slices"

	"github.com/BurntSushi/toml"
	goerrors "gitlab.com/tozd/go/errors"
)

const maxRecentDestinations = 5

// Settings are the values remembered between runs. They only seed a run's
// Config; nothing reads them while files are being transferred.
type Settings struct {
	LatestDestination  string   `toml:"latest_destination"`
	DefaultDestination string   `toml:"default_destination"`
	Structure          string   `toml:"structure"`
	Filename           string   `toml:"filename"`
	Prefix             string   `toml:"prefix"`
	RecentDestinations []string `toml:"recent_destinations"`
}

func DefaultSettings() Settings {
	return Settings{
		Structure: "taken_date",
		Filename:  "original",
		Prefix:    "taken_date",
	}
}

// LoadSettings reads the settings file, or returns defaults when there is
// none yet. Keys left out of the file keep their defaults.
func LoadSettings(path string) (Settings, error) {
	s := DefaultSettings()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return s, nil
	}

	md, err := toml.DecodeFile(path, &s)
	if err != nil {
		return Settings{}, goerrors.Errorf("parse settings %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return Settings{}, goerrors.Errorf("unknown settings key %q in %s", undecoded[0].String(), path)
	}
	return s, nil
}

// Save writes the settings atomically, creating the directory if needed.
func (s Settings) Save(path string) error {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(s); err != nil {
		return goerrors.Errorf("encode settings: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return goerrors.Errorf("create settings directory: %w", err)
	}
	f, err := os.CreateTemp(dir, ".settings-*.tmp")
	if err != nil {
		return goerrors.Errorf("create temp file: %w", err)
	}
	tempPath := f.Name()
	succeeded := false
	defer func() {
		if !succeeded {
			os.Remove(tempPath)
		}
	}()

	if _, err := f.Write(buf.Bytes()); err != nil {
		f.Close()
		return goerrors.Errorf("write temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		return goerrors.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tempPath, path); err != nil {
		return goerrors.Errorf("replace settings: %w", err)
	}
	succeeded = true
	return nil
}

// RememberDestination records dest as the latest destination and moves it to
// the front of the recent list.
func (s *Settings) RememberDestination(dest string) {
	if dest == "" {
		return
	}
	s.LatestDestination = dest
	recent := slices.DeleteFunc(slices.Clone(s.RecentDestinations), func(d string) bool { return d == dest })
	recent = append([]string{dest}, recent...)
	if len(recent) > maxRecentDestinations {
		recent = recent[:maxRecentDestinations]
	}
	s.RecentDestinations = recent
}

// Set updates one key by its file name. Used by the settings command.
func (s *Settings) Set(key, value string) error {
	switch key {
	case "default_destination":
		s.DefaultDestination = value
	case "latest_destination":
		s.LatestDestination = value
	case "structure":
		s.Structure = value
	case "filename":
		s.Filename = value
	case "prefix":
		s.Prefix = value
	default:
		return goerrors.Errorf("unknown settings key %q", key)
	}
	return nil
}
