package app

import (
	"context"
	"errors"
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"

	"offload/internal/logging"
)

// MetadataIndex holds metadata read ahead of a run, keyed by source path. It
// satisfies MetadataReader so the engine can use it in place of the reader.
type MetadataIndex map[string]map[string]string

func (m MetadataIndex) Metadata(ctx context.Context, path string) (map[string]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return m[path], nil
}

// MetadataPrefetcher reads metadata for many files in parallel. Only reads run
// concurrently; transfers stay strictly sequential.
type MetadataPrefetcher struct {
	Reader     MetadataReader
	Workers    int
	Logger     logging.Logger
	OnProgress ScanProgressFunc
}

// Prefetch reads metadata for every item of a kind that usually carries it.
// Unreadable files are logged and indexed with no metadata.
func (p *MetadataPrefetcher) Prefetch(ctx context.Context, items []Item) (MetadataIndex, error) {
	if p.Reader == nil {
		return nil, errors.New("prefetch requires a metadata reader")
	}
	stop := p.Logger.Measure("Reading metadata")
	defer stop()

	var paths []string
	for _, item := range items {
		if item.Kind.HasExif() {
			paths = append(paths, item.Path)
		}
	}

	workerCount := p.Workers
	if workerCount <= 0 {
		workerCount = runtime.NumCPU()
	}
	if workerCount < 1 {
		workerCount = 1
	}
	p.Logger.Verbosef("Reading metadata of %d files with %d workers", len(paths), workerCount)

	var (
		mu    sync.Mutex
		index = make(MetadataIndex, len(paths))
		done  int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workerCount)
	for _, path := range paths {
		g.Go(func() error {
			meta, err := p.Reader.Metadata(gctx, path)
			if err != nil {
				if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					return err
				}
				p.Logger.Warnf("No metadata for %s: %v", path, err)
				meta = map[string]string{}
			}

			mu.Lock()
			index[path] = meta
			done++
			if p.OnProgress != nil {
				p.OnProgress(done, len(paths))
			}
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return index, nil
}
