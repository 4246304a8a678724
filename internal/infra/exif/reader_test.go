package exif

import (
	"context"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetadataWithoutExifIsEmpty(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/card/clip.mp4", []byte("not an image"), 0o644))

	meta, err := Reader{Fs: fs}.Metadata(context.Background(), "/card/clip.mp4")
	require.NoError(t, err)
	assert.Empty(t, meta)
}

func TestMetadataMissingFile(t *testing.T) {
	_, err := Reader{Fs: afero.NewMemMapFs()}.Metadata(context.Background(), "/card/none.jpg")
	assert.Error(t, err)
}

func TestMetadataCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Reader{Fs: afero.NewMemMapFs()}.Metadata(ctx, "/card/a.jpg")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFieldCollectorSkipsNilTags(t *testing.T) {
	c := fieldCollector{}
	require.NoError(t, c.Walk("Make", nil))
	assert.Empty(t, c)
}
