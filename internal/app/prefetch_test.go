package app

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"offload/internal/logging"
)

type mockMetadata struct {
	mu     sync.Mutex
	fields map[string]map[string]string
	err    error
	seen   []string
}

func (m *mockMetadata) Metadata(ctx context.Context, path string) (map[string]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seen = append(m.seen, path)
	if m.err != nil {
		return nil, m.err
	}
	if fields, ok := m.fields[path]; ok {
		return fields, nil
	}
	return nil, errors.New("no exif")
}

func TestPrefetchReadsImagesOnly(t *testing.T) {
	env := newEnv()
	writeFile(t, env.fsys.Fs, "/card/a.ARW", "a", day(1))
	writeFile(t, env.fsys.Fs, "/card/b.JPG", "b", day(1))
	writeFile(t, env.fsys.Fs, "/card/c.MP4", "c", day(1))

	reader := &mockMetadata{fields: map[string]map[string]string{"/card/a.ARW": {"Make": "SONY"}}}
	var progress []int
	p := &MetadataPrefetcher{Reader: reader, Workers: 2, Logger: logging.Nop(), OnProgress: func(current, total int) {
		progress = append(progress, current)
		assert.Equal(t, 2, total)
	}}

	index, err := p.Prefetch(context.Background(), env.scan(t).Items)
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"/card/a.ARW", "/card/b.JPG"}, reader.seen)
	assert.Equal(t, "SONY", index["/card/a.ARW"]["Make"])
	assert.Empty(t, index["/card/b.JPG"])
	assert.Equal(t, []int{1, 2}, progress)

	meta, err := index.Metadata(context.Background(), "/card/a.ARW")
	require.NoError(t, err)
	assert.Equal(t, "SONY", meta["Make"])
}

func TestPrefetchStopsOnCancel(t *testing.T) {
	env := newEnv()
	writeFile(t, env.fsys.Fs, "/card/a.ARW", "a", day(1))

	p := &MetadataPrefetcher{Reader: &mockMetadata{err: context.Canceled}, Workers: 1}
	_, err := p.Prefetch(context.Background(), env.scan(t).Items)
	assert.ErrorIs(t, err, context.Canceled)
}
