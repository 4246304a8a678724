// Package checksum computes streaming file digests used to verify transfers.
package checksum

import (
	"crypto/md5"
	"crypto/sha256"
	"encoding/hex"
	"hash"
	"io"
	"io/fs"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/spf13/afero"
	"gitlab.com/tozd/go/errors"

	appErrors "offload/internal/errors"
)

// BlockSize is the read size used while hashing; memory use stays bounded
// regardless of file size.
const BlockSize = 64 * 1024

type Algorithm int

const (
	XXHash Algorithm = iota
	MD5
	SHA256
)

func (a Algorithm) String() string {
	switch a {
	case MD5:
		return "md5"
	case SHA256:
		return "sha256"
	default:
		return "xxhash"
	}
}

// ParseAlgorithm resolves an algorithm by name. The empty name selects the
// default fast algorithm.
func ParseAlgorithm(name string) (Algorithm, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "xxhash", "xxh64":
		return XXHash, nil
	case "md5":
		return MD5, nil
	case "sha256":
		return SHA256, nil
	default:
		return XXHash, errors.Errorf("unknown checksum algorithm %q (valid: xxhash, md5, sha256)", name)
	}
}

func (a Algorithm) newHash() hash.Hash {
	switch a {
	case MD5:
		return md5.New()
	case SHA256:
		return sha256.New()
	default:
		return xxhash.New()
	}
}

// Hash returns the hex digest of the file at path.
func Hash(fsys afero.Fs, path string, algo Algorithm) (string, error) {
	info, err := fsys.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", appErrors.Wrap(appErrors.NotFound, "checksum", path, appErrors.ErrFileNotFound)
		}
		return "", appErrors.Wrap(appErrors.IOFailure, "checksum", path, err)
	}
	if !info.Mode().IsRegular() {
		return "", appErrors.Wrap(appErrors.NotFound, "checksum", path, appErrors.ErrFileNotFound)
	}

	file, err := fsys.Open(path)
	if err != nil {
		return "", appErrors.Wrap(appErrors.IOFailure, "checksum", path, err)
	}
	defer func() {
		_ = file.Close()
	}()

	h := algo.newHash()
	buf := make([]byte, BlockSize)
	for {
		n, readErr := file.Read(buf)
		if n > 0 {
			_, _ = h.Write(buf[:n])
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return "", appErrors.Wrap(appErrors.IOFailure, "checksum", path, readErr)
		}
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}

// Match reports whether two digests of the same algorithm agree.
func Match(a, b string) bool {
	return a == b
}

// Engine binds a filesystem and an algorithm so callers can hash by path.
type Engine struct {
	Fs        afero.Fs
	Algorithm Algorithm
}

func (e Engine) Checksum(path string) (string, error) {
	return Hash(e.Fs, path, e.Algorithm)
}
