package exif

import (
	"context"
	"io"
	"strings"

	goexif "github.com/rwcarlsen/goexif/exif"
	"github.com/rwcarlsen/goexif/tiff"
	"github.com/spf13/afero"
	goerrors "gitlab.com/tozd/go/errors"
)

// maxHeader bounds how much of a file the decoder may read looking for EXIF.
const maxHeader = 4 << 20

type Reader struct {
	Fs afero.Fs
}

// Metadata returns every EXIF field of path as strings keyed by field name
// (Make, Model, DateTimeOriginal, ...). Files without EXIF yield an empty map
// and no error.
func (r Reader) Metadata(ctx context.Context, path string) (map[string]string, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	file, err := r.Fs.Open(path)
	if err != nil {
		return nil, goerrors.Errorf("open %s: %w", path, err)
	}
	defer file.Close()

	x, err := goexif.Decode(io.LimitReader(file, maxHeader))
	if err != nil && (x == nil || goexif.IsCriticalError(err)) {
		return map[string]string{}, nil
	}

	fields := fieldCollector{}
	if err := x.Walk(fields); err != nil {
		return nil, goerrors.Errorf("walk exif of %s: %w", path, err)
	}
	return fields, nil
}

type fieldCollector map[string]string

func (c fieldCollector) Walk(name goexif.FieldName, tag *tiff.Tag) error {
	if tag == nil {
		return nil
	}
	value, err := tag.StringVal()
	if err != nil {
		value = tag.String()
	}
	c[string(name)] = strings.Trim(strings.TrimSpace(value), "\x00\"")
	return nil
}
