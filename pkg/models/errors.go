package models

import "errors"

var (
	// ErrUnsupportedTechnology is returned when a file or name maps to no known technology.
	ErrUnsupportedTechnology = errors.New("unsupported technology")

	// ErrFileTooLarge is returned when content exceeds the configured size cap.
	ErrFileTooLarge = errors.New("file exceeds maximum size")

	// ErrNegativeLineCount is returned when a caller supplies a negative line count.
	ErrNegativeLineCount = errors.New("lines of code must be non-negative")
)
