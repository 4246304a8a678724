package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	goerrors "gitlab.com/tozd/go/errors"
)

func TestWrapNilReturnsNil(t *testing.T) {
	assert.NoError(t, Wrap(IOFailure, "copy", "/a", nil))
}

func TestWrapKeepsSentinelReachable(t *testing.T) {
	err := Wrap(InvalidTarget, "entry", "/card/DCIM", ErrInvalidTarget)
	assert.True(t, goerrors.Is(err, ErrInvalidTarget))
	assert.Equal(t, InvalidTarget, KindOf(err))
	assert.Equal(t, "entry: /card/DCIM: path is a directory", err.Error())
}

func TestKindOfUnwrapsThroughFmtWrapping(t *testing.T) {
	err := fmt.Errorf("scanning: %w", Wrap(EmptyCollection, "scan", "/card", ErrEmptyCollection))
	assert.Equal(t, EmptyCollection, KindOf(err))
	assert.Equal(t, Internal, KindOf(goerrors.New("plain")))
}

func TestUserMessage(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{Wrap(NotFound, "stat", "/card", ErrFileNotFound), "Path not found: /card"},
		{Wrap(EmptyCollection, "scan", "/card", ErrEmptyCollection), "No files found in /card"},
		{Wrap(DestinationUnreachable, "copy", "/mnt/archive", ErrDestinationUnreachable), "Destination is no longer reachable: /mnt/archive"},
		{goerrors.New("boom"), "boom"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, UserMessage(tc.err))
	}
}
