package trim

import "errors"

// Error classes for a trim run. All are fatal; nothing is retried.
var (
	// ErrInputNotFound reports a missing or unreadable input file.
	ErrInputNotFound = errors.New("input not found or unreadable")

	// ErrInvalidArgument reports a malformed row selection.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrWriteFailure reports a failure creating or writing the output.
	// The previous output file, if any, is left untouched.
	ErrWriteFailure = errors.New("write failure")
)
