// Package execproc provides a process runner adapter using exec.Command.
package execproc

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mcdonaldj/rarlens/internal/ports"
)

// DefaultMaxLineSize is the largest chunk handed out by a single Next call.
// Longer lines are split into several chunks of this size.
const DefaultMaxLineSize = 4096

// stderrTail bounds how much of the child's stderr is kept for error messages.
const stderrTail = 2048

// waitDelay bounds how long Wait blocks on pipes held open by grandchildren.
const waitDelay = 2 * time.Second

// Runner implements ports.ProcessRunner using exec.Command.
type Runner struct {
	maxLineSize int
	logger      *log.Logger
}

// Option is a functional option for configuring Runner.
type Option func(*Runner)

// WithMaxLineSize sets the maximum size of a single line read from the child.
func WithMaxLineSize(n int) Option {
	return func(r *Runner) {
		if n > 0 {
			r.maxLineSize = n
		}
	}
}

// WithLogger sets the logger used for process lifecycle events.
func WithLogger(l *log.Logger) Option {
	return func(r *Runner) {
		if l != nil {
			r.logger = l
		}
	}
}

// New creates a new Runner adapter.
func New(opts ...Option) *Runner {
	r := &Runner{
		maxLineSize: DefaultMaxLineSize,
		logger:      log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Start spawns program with args and returns a stream over its stdout.
// The argument vector is handed to the OS as-is; no shell is involved.
func (r *Runner) Start(program string, args []string) (ports.LineStream, error) {
	cmd := exec.Command(program, args...)
	cmd.WaitDelay = waitDelay

	stderr := &tailBuffer{max: stderrTail}
	cmd.Stderr = stderr

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ports.ErrSpawn, program, err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ports.ErrSpawn, program, err)
	}

	r.logger.Debug("process started", "program", filepath.Base(program), "pid", cmd.Process.Pid, "argc", len(args))

	return &stream{
		cmd:     cmd,
		program: program,
		reader:  bufio.NewReaderSize(stdout, r.maxLineSize),
		stderr:  stderr,
		logger:  r.logger,
	}, nil
}

// stream is the LineStream handed out by Runner.Start.
type stream struct {
	cmd     *exec.Cmd
	program string
	reader  *bufio.Reader
	stderr  *tailBuffer
	logger  *log.Logger

	line     string
	pending  error // EOF or read error seen together with a final partial line
	err      error
	released bool
}

func (s *stream) Next() bool {
	if s.released {
		s.line = ""
		return false
	}
	if s.pending != nil {
		s.finish(s.pending)
		return false
	}

	b, err := s.reader.ReadSlice('\n')
	switch {
	case err == nil || errors.Is(err, bufio.ErrBufferFull):
		s.line = string(b)
		return true
	case len(b) > 0:
		s.line = string(b)
		s.pending = err
		return true
	default:
		s.finish(err)
		return false
	}
}

func (s *stream) Text() string { return s.line }

func (s *stream) Err() error { return s.err }

// Close kills the child if it is still producing output and reaps it.
// A child killed here is not reported as a failure.
func (s *stream) Close() error {
	if s.released {
		return nil
	}
	_ = s.cmd.Process.Kill()
	err := s.release()

	var exitErr *exec.ExitError
	if err == nil || errors.As(err, &exitErr) || errors.Is(err, exec.ErrWaitDelay) {
		return nil
	}
	return fmt.Errorf("releasing %s: %w", s.program, err)
}

// finish ends consumption after EOF or a read error and records the outcome.
func (s *stream) finish(readErr error) {
	if readErr != io.EOF {
		// Stop a child that could otherwise block writing to a pipe nobody reads.
		_ = s.cmd.Process.Kill()
		_ = s.release()
		s.err = fmt.Errorf("reading output of %s: %w", s.program, readErr)
		return
	}

	if waitErr := s.release(); waitErr != nil {
		s.err = s.exitError(waitErr)
	}
}

// release reaps the child and closes its pipes. Only the first call does work.
func (s *stream) release() error {
	if s.released {
		return nil
	}
	s.released = true
	s.line = ""

	err := s.cmd.Wait()
	s.logger.Debug("process released", "program", filepath.Base(s.program), "exit_code", s.cmd.ProcessState.ExitCode())
	return err
}

func (s *stream) exitError(err error) error {
	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		return fmt.Errorf("waiting for %s: %w", s.program, err)
	}

	msg := strings.TrimSpace(s.stderr.String())
	if msg == "" {
		return fmt.Errorf("%w: %s exited with code %d: %w",
			ports.ErrToolExit, filepath.Base(s.program), exitErr.ExitCode(), err)
	}
	return fmt.Errorf("%w: %s exited with code %d: %s: %w",
		ports.ErrToolExit, filepath.Base(s.program), exitErr.ExitCode(), msg, err)
}

// tailBuffer keeps the last max bytes written to it.
type tailBuffer struct {
	max int
	buf []byte
}

func (t *tailBuffer) Write(p []byte) (int, error) {
	t.buf = append(t.buf, p...)
	if over := len(t.buf) - t.max; over > 0 {
		t.buf = t.buf[over:]
	}
	return len(p), nil
}

func (t *tailBuffer) String() string { return string(t.buf) }

// Compile-time check that Runner implements ports.ProcessRunner.
var _ ports.ProcessRunner = (*Runner)(nil)
