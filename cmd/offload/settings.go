package main

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"offload/internal/config"
	appErrors "offload/internal/errors"
	"offload/internal/logging"
	"offload/internal/naming"
)

func newSettingsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show the remembered settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			paths := config.DefaultPaths()
			s, err := config.LoadSettings(paths.Settings)
			if err != nil {
				return appErrors.Wrap(appErrors.InvalidConfig, "settings", paths.Settings, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "# %s\n", paths.Settings)
			return toml.NewEncoder(cmd.OutOrStdout()).Encode(s)
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "set <key> <value>",
		Short: "Change one remembered setting",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, value := args[0], args[1]
			if key == "structure" {
				if _, err := naming.ParseStructure(value); err != nil {
					return appErrors.Wrap(appErrors.InvalidConfig, "settings", key, err)
				}
			}

			paths := config.DefaultPaths()
			s, err := config.LoadSettings(paths.Settings)
			if err != nil {
				return appErrors.Wrap(appErrors.InvalidConfig, "settings", paths.Settings, err)
			}
			if err := s.Set(key, value); err != nil {
				return appErrors.Wrap(appErrors.InvalidConfig, "settings", key, err)
			}
			if err := s.Save(paths.Settings); err != nil {
				return appErrors.Wrap(appErrors.IOFailure, "settings", paths.Settings, err)
			}
			logging.New(os.Stderr, zerolog.InfoLevel).Infof("Saved %s = %q", key, value)
			return nil
		},
	})
	return cmd
}

// consoleLevel applies the verbosity flags for commands that do not resolve a
// full run configuration.
func consoleLevel(f config.Flags) (zerolog.Level, error) {
	switch {
	case f.LogLevel != "":
		return logging.ParseLevel(f.LogLevel)
	case f.Verbose:
		return zerolog.DebugLevel, nil
	case f.Quiet:
		return zerolog.ErrorLevel, nil
	default:
		return zerolog.InfoLevel, nil
	}
}
