package errors

import (
	"fmt"

	goerrors "gitlab.com/tozd/go/errors"
)

type Kind string

const (
	InvalidConfig          Kind = "invalid_config"
	InvalidTarget          Kind = "invalid_target"
	NotFound               Kind = "not_found"
	EmptyCollection        Kind = "empty_collection"
	MetadataFailure        Kind = "metadata_failure"
	IOFailure              Kind = "io_failure"
	DestinationUnreachable Kind = "destination_unreachable"
	Internal               Kind = "internal"
)

var (
	ErrInvalidTarget          = goerrors.New("path is a directory")
	ErrFileNotFound           = goerrors.New("file not found")
	ErrEmptyCollection        = goerrors.New("collection is empty")
	ErrDestinationUnreachable = goerrors.New("destination unreachable")
)

type AppError struct {
	Kind Kind
	Op   string
	Path string
	Err  error
}

func (e *AppError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Path, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func Wrap(kind Kind, op, path string, err error) error {
	if err == nil {
		return nil
	}
	return &AppError{
		Kind: kind,
		Op:   op,
		Path: path,
		Err:  err,
	}
}

// KindOf reports the Kind of the outermost AppError in err's chain,
// or Internal when there is none.
func KindOf(err error) Kind {
	var appErr *AppError
	if goerrors.As(err, &appErr) {
		return appErr.Kind
	}
	return Internal
}

func UserMessage(err error) string {
	var appErr *AppError
	if !goerrors.As(err, &appErr) {
		return err.Error()
	}
	switch appErr.Kind {
	case InvalidConfig:
		return fmt.Sprintf("Invalid configuration: %v", appErr.Err)
	case InvalidTarget:
		return fmt.Sprintf("Expected a file but found a directory: %s", appErr.Path)
	case NotFound:
		return fmt.Sprintf("Path not found: %s", appErr.Path)
	case EmptyCollection:
		return fmt.Sprintf("No files found in %s", appErr.Path)
	case MetadataFailure:
		return fmt.Sprintf("Metadata read failed: %s", appErr.Path)
	case IOFailure:
		return fmt.Sprintf("I/O error: %s: %v", appErr.Path, appErr.Err)
	case DestinationUnreachable:
		return fmt.Sprintf("Destination is no longer reachable: %s", appErr.Path)
	default:
		return fmt.Sprintf("Unexpected error: %v", appErr.Err)
	}
}
