package rar

import (
	"errors"

	"github.com/mcdonaldj/rarlens/internal/ports"
)

// Errors re-exported from the process runner contract.
var (
	// ErrSpawn is returned when the unrar program cannot be started.
	ErrSpawn = ports.ErrSpawn

	// ErrToolExit is returned when unrar exits with a non-zero status.
	ErrToolExit = ports.ErrToolExit
)

var (
	// ErrFileNotFound is returned when a member is absent from the archive listing.
	ErrFileNotFound = errors.New("file not found in archive")

	// ErrExtraction is returned when an extract invocation fails.
	ErrExtraction = errors.New("could not extract archive")

	// ErrMalformedOutput is returned when a listing line matches a field
	// but its value cannot be interpreted.
	ErrMalformedOutput = errors.New("malformed unrar output")

	// ErrNoOutputDirectory is returned when extraction is attempted without a destination.
	ErrNoOutputDirectory = errors.New("output directory not set")
)
