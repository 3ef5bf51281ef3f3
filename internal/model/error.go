package model

import "errors"

// Error definitions for the model package.
var (
	// ErrNotFound indicates the dialect's artifact directory is absent on
	// disk. Recoverable by provisioning the artifacts and retrying.
	ErrNotFound = errors.New("model not found")

	// ErrLoadFailed indicates instantiation raised an underlying error.
	// Retrying against the same artifacts reproduces the failure.
	ErrLoadFailed = errors.New("model load failed")
)
