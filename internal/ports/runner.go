package ports

import "errors"

var (
	// ErrSpawn is returned when the external program cannot be started.
	ErrSpawn = errors.New("process could not be started")

	// ErrToolExit is returned when the external program exits with a non-zero status.
	ErrToolExit = errors.New("process exited with failure")
)

// ProcessRunner abstracts spawning an external program for testability.
// Production code uses the execproc adapter; tests use MockProcessRunner.
type ProcessRunner interface {
	// Start runs program with args passed verbatim (no shell) and returns
	// a pull-based stream over its standard output.
	Start(program string, args []string) (LineStream, error)
}

// LineStream is a lazy, finite sequence of output lines bound to a live process.
// The process is released exactly once: on EOF, on a read error, or on Close.
type LineStream interface {
	// Next advances to the next line. It returns false at EOF or on error.
	Next() bool

	// Text returns the line read by the last call to Next, terminator included.
	Text() string

	// Err returns the first error met while reading or waiting for the process.
	Err() error

	// Close releases the pipe and reaps the process. Safe to call more than once.
	Close() error
}
