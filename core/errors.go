// Package core provides the shared data types and error kinds used across
// the flux archive engine. Interfaces that define internal contracts live in
// internal/contracts to avoid exposing implementation details as part of the
// public API.
package core

import (
	"context"
	"errors"
	"fmt"
)

// Sentinel errors for the error kinds in the engine's error handling design.
// Each maps to a CLI exit code via ExitCode.
var (
	// ErrIO indicates an underlying read, write, or metadata syscall failed.
	ErrIO = errors.New("flux: i/o error")

	// ErrInvalidPath indicates sanitize or symlink validation rejected a path.
	ErrInvalidPath = errors.New("flux: invalid path")

	// ErrUnsupportedFormat indicates the extension isn't recognized for the requested operation.
	ErrUnsupportedFormat = errors.New("flux: unsupported format")

	// ErrUnsupportedOperation indicates the format cannot perform the requested operation.
	ErrUnsupportedOperation = errors.New("flux: unsupported operation")

	// ErrFileExists indicates an extraction collision with neither overwrite nor skip nor rename.
	ErrFileExists = errors.New("flux: file exists")

	// ErrSecurity indicates a compression-ratio, size-cap, or disk-space check failed.
	ErrSecurity = errors.New("flux: security check failed")

	// ErrArchive indicates format-level corruption was detected in the archive stream.
	ErrArchive = errors.New("flux: invalid archive")

	// ErrCompression indicates a codec stream failed to encode or decode.
	ErrCompression = errors.New("flux: compression error")

	// ErrNotFound indicates the referenced archive or entry is absent.
	ErrNotFound = errors.New("flux: not found")

	// ErrConfig indicates a configuration parse or validation error.
	ErrConfig = errors.New("flux: invalid configuration")

	// ErrOther is the catch-all for unclassified failures.
	ErrOther = errors.New("flux: error")
)

// PartialFailureError indicates a multi-entry operation where at least one
// entry failed. Count is the number of failed entries; successfully
// processed entries were left in place.
type PartialFailureError struct {
	Count int
}

func (e *PartialFailureError) Error() string {
	return fmt.Sprintf("flux: partial failure: %d entries failed", e.Count)
}

// AsPartialFailure reports whether err is (or wraps) a *PartialFailureError
// and returns it.
func AsPartialFailure(err error) (*PartialFailureError, bool) {
	var pf *PartialFailureError
	if errors.As(err, &pf) {
		return pf, true
	}
	return nil, false
}

// IsFatal reports whether err represents a class of failure that must
// abort a multi-entry operation immediately rather than being counted
// toward a PartialFailureError: a security check (path traversal,
// decompression bomb, disk exhaustion) or a cancelled context.
func IsFatal(err error) bool {
	return errors.Is(err, ErrSecurity) ||
		errors.Is(err, ErrInvalidPath) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}

// Exit codes per the engine's external-interfaces contract. The engine
// itself never calls os.Exit; callers (the CLI demonstration included)
// use ExitCode to translate a returned error into a process exit status.
const (
	ExitSuccess         = 0
	ExitGeneral         = 1
	ExitIO              = 2
	ExitInvalidArgument = 3
	ExitPartialFailure  = 4
)

// ExitCode maps an error returned by the engine to the CLI exit code
// defined in the error handling design.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	if _, ok := AsPartialFailure(err); ok {
		return ExitPartialFailure
	}
	switch {
	case errors.Is(err, ErrIO), errors.Is(err, ErrNotFound):
		return ExitIO
	case errors.Is(err, ErrInvalidPath),
		errors.Is(err, ErrUnsupportedFormat),
		errors.Is(err, ErrUnsupportedOperation),
		errors.Is(err, ErrFileExists),
		errors.Is(err, ErrSecurity):
		return ExitInvalidArgument
	case errors.Is(err, ErrArchive), errors.Is(err, ErrCompression):
		return ExitPartialFailure
	case errors.Is(err, ErrConfig):
		return ExitGeneral
	default:
		return ExitGeneral
	}
}
