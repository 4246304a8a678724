package app

import (
	"time"

	"offload/internal/checksum"
	"offload/internal/domain"
	apperrors "offload/internal/errors"
)

// ModTimeResolution is the coarsest timestamp granularity among the
// filesystems a card or archive is likely to use (FAT keeps two seconds).
const ModTimeResolution = 2 * time.Second

// Comparison is the outcome of an equivalence check. Checksums are only set
// when the check got far enough to compute them.
type Comparison struct {
	Equivalent          bool
	Reason              string
	SourceChecksum      string
	DestinationChecksum string
}

// Equivalent compares two existing files cheapest first: size, modification
// time, then content checksum. The first mismatch decides.
func Equivalent(hasher Hasher, src string, srcSnap domain.Snapshot, dst string, dstSnap domain.Snapshot) (Comparison, error) {
	if srcSnap.Size != dstSnap.Size {
		return Comparison{Reason: "size differs"}, nil
	}
	if !sameModTime(srcSnap.ModTime, dstSnap.ModTime) {
		return Comparison{Reason: "modification time differs"}, nil
	}

	srcSum, err := hasher.Checksum(src)
	if err != nil {
		return Comparison{}, apperrors.Wrap(apperrors.IOFailure, "checksum source", src, err)
	}
	dstSum, err := hasher.Checksum(dst)
	if err != nil {
		return Comparison{SourceChecksum: srcSum, Reason: "destination unreadable"}, nil
	}

	c := Comparison{SourceChecksum: srcSum, DestinationChecksum: dstSum}
	if !checksum.Match(srcSum, dstSum) {
		c.Reason = "checksum differs"
		return c, nil
	}
	c.Equivalent = true
	return c, nil
}

func sameModTime(a, b time.Time) bool {
	d := a.Sub(b)
	if d < 0 {
		d = -d
	}
	return d < ModTimeResolution
}
