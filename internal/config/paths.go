package config

import (
	"os"
	"path/filepath"
	"runtime"
)

const appName = "offload"

// Paths are the per-user locations the tool writes to.
type Paths struct {
	AppData  string
	Reports  string
	Logs     string
	Settings string
	Publish  string
}

// DefaultPaths roots everything under the platform config directory, with the
// published report going to the Desktop (or home when there is none).
func DefaultPaths() Paths {
	base, err := os.UserConfigDir()
	if err != nil || base == "" {
		base = os.TempDir()
	}
	if runtime.GOOS == "darwin" {
		base = filepath.Join(base, "Offload")
	} else {
		base = filepath.Join(base, appName)
	}
	return PathsUnder(base, desktopDir())
}

func PathsUnder(appData, publish string) Paths {
	return Paths{
		AppData:  appData,
		Reports:  filepath.Join(appData, "reports"),
		Logs:     filepath.Join(appData, "logs"),
		Settings: filepath.Join(appData, "settings.toml"),
		Publish:  publish,
	}
}

func desktopDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	desktop := filepath.Join(home, "Desktop")
	if info, err := os.Stat(desktop); err == nil && info.IsDir() {
		return desktop
	}
	return home
}
