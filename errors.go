package flux

import "github.com/silvanwing/flux/core"

// Sentinel errors for common failure conditions, re-exported from core so
// callers don't need to import the core package directly for error
// comparisons.
var (
	ErrIO                   = core.ErrIO
	ErrInvalidPath          = core.ErrInvalidPath
	ErrUnsupportedFormat    = core.ErrUnsupportedFormat
	ErrUnsupportedOperation = core.ErrUnsupportedOperation
	ErrFileExists           = core.ErrFileExists
	ErrSecurity             = core.ErrSecurity
	ErrArchive              = core.ErrArchive
	ErrCompression          = core.ErrCompression
	ErrNotFound             = core.ErrNotFound
	ErrConfig               = core.ErrConfig
	ErrOther                = core.ErrOther
)

// PartialFailureError indicates a multi-entry operation where at least one
// entry failed; successfully processed entries were left in place.
type PartialFailureError = core.PartialFailureError

// AsPartialFailure reports whether err is (or wraps) a *PartialFailureError
// and returns it.
func AsPartialFailure(err error) (*PartialFailureError, bool) {
	return core.AsPartialFailure(err)
}

// ExitCode maps an error returned by the engine to a process exit code,
// for callers building their own CLI front-end.
func ExitCode(err error) int {
	return core.ExitCode(err)
}
