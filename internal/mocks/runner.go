package mocks

import (
	"strings"

	"github.com/mcdonaldj/rarlens/internal/ports"
)

// MockProcessRunner implements ports.ProcessRunner for testing.
// Responses are looked up first by the full argument vector joined with
// spaces, then by the subcommand (first argument).
type MockProcessRunner struct {
	// Transcripts maps an argv key to the stdout served to the consumer
	Transcripts map[string]string
	// StartErrors maps an argv key to an error returned by Start
	StartErrors map[string]error
	// StreamErrors maps an argv key to an error reported by Err after the transcript
	StreamErrors map[string]error
	// ChunkSize, when positive, splits served lines into pieces of at most
	// this many bytes, the way a bounded line reader delivers long lines
	ChunkSize int
	// Calls records every Start call, including failed ones
	Calls []RunCall
	// Streams records every stream handed out
	Streams []*MockLineStream
}

// RunCall records parameters of a Start call.
type RunCall struct {
	Program string
	Args    []string
}

// NewMockProcessRunner creates a new mock process runner.
func NewMockProcessRunner() *MockProcessRunner {
	return &MockProcessRunner{
		Transcripts:  make(map[string]string),
		StartErrors:  make(map[string]error),
		StreamErrors: make(map[string]error),
	}
}

// Start returns a scripted stream for the given arguments.
func (m *MockProcessRunner) Start(program string, args []string) (ports.LineStream, error) {
	m.Calls = append(m.Calls, RunCall{
		Program: program,
		Args:    append([]string(nil), args...),
	})

	if err, ok := lookup(m.StartErrors, args); ok {
		return nil, err
	}

	transcript, _ := lookup(m.Transcripts, args)
	streamErr, _ := lookup(m.StreamErrors, args)

	s := NewMockLineStream(transcript, streamErr)
	if m.ChunkSize > 0 {
		s.lines = chunkLines(s.lines, m.ChunkSize)
	}
	m.Streams = append(m.Streams, s)
	return s, nil
}

// CallsFor returns how many times the given subcommand was started.
func (m *MockProcessRunner) CallsFor(subcommand string) int {
	n := 0
	for _, c := range m.Calls {
		if len(c.Args) > 0 && c.Args[0] == subcommand {
			n++
		}
	}
	return n
}

// lookup finds the value for args by full key, then by subcommand.
func lookup[V any](m map[string]V, args []string) (V, bool) {
	if v, ok := m[strings.Join(args, " ")]; ok {
		return v, true
	}
	if len(args) > 0 {
		if v, ok := m[args[0]]; ok {
			return v, true
		}
	}
	var zero V
	return zero, false
}

// chunkLines splits every line into pieces of at most n bytes.
func chunkLines(lines []string, n int) []string {
	var out []string
	for _, line := range lines {
		for len(line) > n {
			out = append(out, line[:n])
			line = line[n:]
		}
		out = append(out, line)
	}
	return out
}

// MockLineStream implements ports.LineStream over a fixed transcript.
type MockLineStream struct {
	lines []string
	pos   int
	line  string
	err   error
	final error

	// Released is true once the stream was exhausted or closed
	Released bool
	// ReleaseCount counts how many times the stream was released
	ReleaseCount int
	// CloseCalls counts calls to Close
	CloseCalls int
}

// NewMockLineStream creates a stream serving transcript, then reporting err.
func NewMockLineStream(transcript string, err error) *MockLineStream {
	var lines []string
	if transcript != "" {
		lines = strings.SplitAfter(transcript, "\n")
		if lines[len(lines)-1] == "" {
			lines = lines[:len(lines)-1]
		}
	}
	return &MockLineStream{lines: lines, final: err}
}

// Next advances to the next scripted line.
func (s *MockLineStream) Next() bool {
	if s.Released {
		s.line = ""
		return false
	}
	if s.pos >= len(s.lines) {
		s.err = s.final
		s.release()
		return false
	}
	s.line = s.lines[s.pos]
	s.pos++
	return true
}

// Text returns the current line.
func (s *MockLineStream) Text() string { return s.line }

// Err returns the scripted error once the transcript is exhausted.
func (s *MockLineStream) Err() error { return s.err }

// Close releases the stream.
func (s *MockLineStream) Close() error {
	s.CloseCalls++
	s.release()
	return nil
}

// Consumed returns how many lines were pulled.
func (s *MockLineStream) Consumed() int { return s.pos }

func (s *MockLineStream) release() {
	if s.Released {
		return
	}
	s.Released = true
	s.ReleaseCount++
	s.line = ""
}

// Compile-time checks.
var (
	_ ports.ProcessRunner = (*MockProcessRunner)(nil)
	_ ports.LineStream    = (*MockLineStream)(nil)
)
