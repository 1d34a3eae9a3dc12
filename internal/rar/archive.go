// Package rar reads RAR archives by driving the external unrar program
// and interpreting its textual reports.
package rar

import (
	"bytes"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/mcdonaldj/rarlens/internal/adapters/execproc"
	"github.com/mcdonaldj/rarlens/internal/ports"
)

// Archive owns the identity of one RAR file and turns operations on it into
// unrar invocations. No handle is kept between operations.
//
// Archive is not safe for concurrent use; callers serialize their own calls.
type Archive struct {
	path      string
	password  string
	toolPath  string
	outputDir string

	runner ports.ProcessRunner
	logger *log.Logger
	policy UnclosedPolicy
}

// Option is a functional option for configuring Archive.
type Option func(*Archive)

// WithPassword sets the decryption password passed to every invocation.
func WithPassword(password string) Option {
	return func(a *Archive) {
		a.password = password
	}
}

// WithRunner sets the process runner. Defaults to the exec-based runner.
func WithRunner(r ports.ProcessRunner) Option {
	return func(a *Archive) {
		a.runner = r
	}
}

// WithLogger sets the logger for invocation and parsing events.
func WithLogger(l *log.Logger) Option {
	return func(a *Archive) {
		if l != nil {
			a.logger = l
		}
	}
}

// WithUnclosedPolicy sets how entries missing their closing blank line are treated.
func WithUnclosedPolicy(p UnclosedPolicy) Option {
	return func(a *Archive) {
		a.policy = p
	}
}

// New creates an Archive for the file at path, driven by the unrar binary at toolPath.
func New(path, toolPath string, opts ...Option) *Archive {
	a := &Archive{
		path:     path,
		toolPath: toolPath,
		logger:   log.New(io.Discard),
		policy:   DiscardUnclosed,
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.runner == nil {
		a.runner = execproc.New(execproc.WithLogger(a.logger))
	}
	return a
}

// Path returns the archive location.
func (a *Archive) Path() string { return a.path }

// ToolPath returns the unrar binary used for every invocation.
func (a *Archive) ToolPath() string { return a.toolPath }

// OutputDirectory returns the destination for the next extraction.
func (a *Archive) OutputDirectory() string { return a.outputDir }

// SetOutputDirectory sets the destination for the next extraction.
func (a *Archive) SetOutputDirectory(dir string) { a.outputDir = dir }

// Entries starts a verbose listing and returns a lazy stream over its entries.
// The stream must be exhausted or closed to release the unrar process.
func (a *Archive) Entries() (*EntryStream, error) {
	lines, err := a.start("list", a.command("lt", nil))
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", a.path, err)
	}
	return &EntryStream{
		archive: a,
		lines:   lines,
		parser:  NewParser(a.policy),
	}, nil
}

// Entry looks up a member by exact name.
func (a *Archive) Entry(name string) (Entry, error) {
	s, err := a.Entries()
	if err != nil {
		return Entry{}, err
	}
	defer s.Close()

	for s.Next() {
		if e := s.Entry(); e.Name == name {
			return e, nil
		}
	}
	if err := s.Err(); err != nil {
		return Entry{}, err
	}
	return Entry{}, fmt.Errorf("%w: %s", ErrFileNotFound, name)
}

// Content returns the full bytes of a member. The member's existence is
// confirmed by a listing pass before `unrar p` is spawned.
func (a *Archive) Content(name string) ([]byte, error) {
	if _, err := a.Entry(name); err != nil {
		return nil, err
	}

	lines, err := a.start("print", a.command("p", []string{"-inul"}, name))
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", name, err)
	}
	defer lines.Close()

	var buf bytes.Buffer
	for lines.Next() {
		buf.WriteString(lines.Text())
	}
	if err := lines.Err(); err != nil {
		return nil, fmt.Errorf("reading %s: %w", name, err)
	}
	return buf.Bytes(), nil
}

// Extract unpacks every member into the output directory, overwriting existing files.
func (a *Archive) Extract() error {
	dest, err := a.destination()
	if err != nil {
		return err
	}
	if err := a.drain("extract", a.command("x", []string{"-o+"}, dest)); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrExtraction, a.path, err)
	}
	return nil
}

// ExtractEntry unpacks one member into the output directory, overwriting an existing file.
func (a *Archive) ExtractEntry(name string) error {
	dest, err := a.destination()
	if err != nil {
		return err
	}
	if err := a.drain("extract", a.command("x", []string{"-o+"}, name, dest)); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrExtraction, name, err)
	}
	return nil
}

// command builds an argv: subcommand, switches, "--", archive, operands.
// The "--" keeps member names that start with "-" from being read as switches.
func (a *Archive) command(sub string, switches []string, operands ...string) []string {
	args := append([]string{sub}, switches...)
	if a.password != "" {
		args = append(args, "-p"+a.password)
	} else {
		// unrar prompts on the terminal, not stdin, for encrypted archives
		args = append(args, "-p-")
	}
	args = append(args, "--", a.path)
	return append(args, operands...)
}

// destination returns the output directory with the trailing separator unrar
// needs to treat it as a directory.
func (a *Archive) destination() (string, error) {
	if a.outputDir == "" {
		return "", fmt.Errorf("%w: %w", ErrExtraction, ErrNoOutputDirectory)
	}
	sep := string(filepath.Separator)
	return strings.TrimRight(a.outputDir, sep) + sep, nil
}

func (a *Archive) start(op string, args []string) (ports.LineStream, error) {
	a.logger.Debug("invoking unrar", "op", op, "archive", a.path, "args", a.redact(args))
	return a.runner.Start(a.toolPath, args)
}

// drain runs a command and discards its output.
func (a *Archive) drain(op string, args []string) error {
	lines, err := a.start(op, args)
	if err != nil {
		return err
	}
	defer lines.Close()

	for lines.Next() {
	}
	return lines.Err()
}

// redact hides the password switch.
func (a *Archive) redact(args []string) []string {
	out := make([]string, len(args))
	for i, arg := range args {
		if a.password != "" && arg == "-p"+a.password {
			arg = "-p***"
		}
		out[i] = arg
	}
	return out
}
