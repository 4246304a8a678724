package main

import (
	"errors"
	"os"

	"github.com/spf13/cobra"

	"offload/internal/app"
	"offload/internal/checksum"
	"offload/internal/config"
	appErrors "offload/internal/errors"
	"offload/internal/infra/fs"
	"offload/internal/logging"
	"offload/internal/presentation"
	"offload/internal/report"
)

var errVerifyFailed = errors.New("verification found problems")

func newVerifyCmd(flags *config.Flags) *cobra.Command {
	var algo string

	cmd := &cobra.Command{
		Use:   "verify <report.csv>",
		Short: "Re-check destination files against the checksums of a report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			level, err := consoleLevel(*flags)
			if err != nil {
				return appErrors.Wrap(appErrors.InvalidConfig, "config", "", err)
			}
			algorithm, err := checksum.ParseAlgorithm(algo)
			if err != nil {
				return appErrors.Wrap(appErrors.InvalidConfig, "config", "", err)
			}
			logger := logging.New(os.Stderr, level)

			filesystem := fs.NewOS()
			rows, err := report.Read(filesystem.Fs, args[0])
			if err != nil {
				return appErrors.Wrap(appErrors.IOFailure, "read report", args[0], err)
			}

			verifier := app.Verifier{
				FS:     filesystem,
				Hasher: checksum.Engine{Fs: filesystem.Fs, Algorithm: algorithm},
				Logger: logger,
				OnProgress: func(current, total int) {
					logger.Verbosef("Verified %d/%d", current, total)
				},
			}
			res, err := verifier.Verify(cmd.Context(), rows)
			if err != nil {
				return err
			}

			presentation.Printer{Writer: os.Stdout, Verbose: logger.Verbose}.PrintVerify(res)
			if !res.OK() {
				return errVerifyFailed
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&algo, "checksum", "", "checksum algorithm the report was written with")
	return cmd
}
