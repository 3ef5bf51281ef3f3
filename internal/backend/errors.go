package backend

import "errors"

// Error definitions for the backend package.
var (
	// ErrRunnerExited indicates the runner process died under a handle.
	ErrRunnerExited = errors.New("runner process exited")
)
