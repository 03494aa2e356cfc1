package typing

import "errors"

var (
	// ErrBusy is returned by Start while a session is running.
	ErrBusy = errors.New("a typing session is already running")

	// ErrFileNotFound indicates a file-backed snippet's file does not exist.
	ErrFileNotFound = errors.New("file not found")

	// ErrReadFailed indicates a file-backed snippet's file could not be read.
	ErrReadFailed = errors.New("error reading file")

	// ErrNoFallback indicates the primary path failed and no fallback exists.
	ErrNoFallback = errors.New("no fallback injector available")
)
