package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestZeroLoggerDiscards(t *testing.T) {
	var l Logger
	l.Infof("nothing %d", 1)
	l.With("run", "x").Errorf("still nothing")
	l.Measure("noop")()
}

func TestNewWritesJSONToExtraWriters(t *testing.T) {
	var file bytes.Buffer
	l := New(nil, zerolog.InfoLevel, &file).With("run", "abc")

	l.Verbosef("hidden")
	l.Warnf("copied %d files", 3)

	var line map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(file.Bytes()), &line))
	assert.Equal(t, "warn", line["level"])
	assert.Equal(t, "copied 3 files", line["message"])
	assert.Equal(t, "abc", line["run"])
}

func TestParseLevel(t *testing.T) {
	lvl, err := ParseLevel("DEBUG")
	require.NoError(t, err)
	assert.Equal(t, zerolog.DebugLevel, lvl)

	_, err = ParseLevel("chatty")
	assert.Error(t, err)
}

func TestVerboseFollowsLevel(t *testing.T) {
	assert.True(t, New(nil, zerolog.DebugLevel).Verbose)
	assert.False(t, New(nil, zerolog.InfoLevel).Verbose)
}
