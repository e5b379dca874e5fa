package driver

import (
	"errors"
)

// Process exit statuses.
const (
	ExitOK                   = 0
	ExitUsage                = 1
	ExitRootFileNotFound     = 2
	ExitEngineFailure        = 3
	ExitRootFileAccessDenied = 4
	ExitEngineNoResult       = 30
)

// ExitCode maps a run error to its exit status. Errors of no known kind
// are usage errors.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, ErrRootFileNotFound):
		return ExitRootFileNotFound
	case errors.Is(err, ErrRootFileAccessDenied):
		return ExitRootFileAccessDenied
	case errors.Is(err, ErrEngineNoResult):
		return ExitEngineNoResult
	case errors.Is(err, ErrEngineFailure):
		return ExitEngineFailure
	default:
		return ExitUsage
	}
}
