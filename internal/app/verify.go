package app

import (
	"context"
	"errors"

	"offload/internal/checksum"
	"offload/internal/domain"
	"offload/internal/logging"
	"offload/internal/report"
)

// VerifyResult summarises a re-check of a previous run's report.
type VerifyResult struct {
	Checked   int
	Unchecked int
	Problems  []Failure
}

func (r VerifyResult) OK() bool {
	return len(r.Problems) == 0
}

// Verifier re-hashes the destination files of a report and compares them with
// the checksums recorded at transfer time.
type Verifier struct {
	FS         FileSystem
	Hasher     Hasher
	Logger     logging.Logger
	OnProgress ScanProgressFunc
}

func (v *Verifier) Verify(ctx context.Context, rows []report.Row) (VerifyResult, error) {
	if v.FS == nil || v.Hasher == nil {
		return VerifyResult{}, errors.New("verifier requires FS and Hasher")
	}
	stop := v.Logger.Measure("Verifying report")
	defer stop()

	var res VerifyResult
	for i, row := range rows {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		if v.OnProgress != nil {
			v.OnProgress(i+1, len(rows))
		}

		if row.Status != domain.StatusSuccessful && row.Status != domain.StatusSkipped {
			continue
		}
		if row.DestinationChecksum == "" {
			res.Unchecked++
			v.Logger.Verbosef("No checksum recorded for %s, skipping", row.DestinationPath)
			continue
		}

		res.Checked++
		problem := func(reason string) {
			res.Problems = append(res.Problems, Failure{Source: row.SourcePath, Destination: row.DestinationPath, Reason: reason})
			v.Logger.Z().Warn().
				Str("source", row.SourcePath).
				Str("destination", row.DestinationPath).
				Str("reason", reason).
				Msg("verification failed")
		}

		exists, err := v.FS.Exists(row.DestinationPath)
		if err != nil {
			problem(err.Error())
			continue
		}
		if !exists {
			problem("destination file is missing")
			continue
		}
		sum, err := v.Hasher.Checksum(row.DestinationPath)
		if err != nil {
			problem(err.Error())
			continue
		}
		if !checksum.Match(sum, row.DestinationChecksum) {
			problem("checksum differs from report")
		}
	}
	return res, nil
}
