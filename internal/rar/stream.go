package rar

import (
	"fmt"
	"iter"
	"strings"

	"github.com/mcdonaldj/rarlens/internal/ports"
)

// EntryStream yields entries in the order unrar reports them, reading one
// line at a time. It is not restartable.
type EntryStream struct {
	archive *Archive
	lines   ports.LineStream
	parser  *Parser

	// partial holds the chunks of a line longer than the runner's read size
	partial strings.Builder

	entry Entry
	err   error
	done  bool
}

// Next advances to the next completed entry.
func (s *EntryStream) Next() bool {
	if s.done {
		return false
	}

	for s.lines.Next() {
		line, ok := s.join(s.lines.Text())
		if !ok {
			continue
		}
		if s.feed(line) {
			return true
		}
		if s.done {
			return false
		}
	}

	if err := s.lines.Err(); err != nil {
		s.fail(fmt.Errorf("listing %s: %w", s.archive.path, err))
		return false
	}

	// Unterminated last line
	if s.partial.Len() > 0 {
		line := s.partial.String()
		s.partial.Reset()
		if s.feed(line) {
			return true
		}
		if s.done {
			return false
		}
	}

	s.done = true
	e, ok := s.parser.Finish()
	s.report()
	if ok {
		s.entry = s.bind(e)
		return true
	}
	return false
}

// Entry returns the entry produced by the last call to Next.
func (s *EntryStream) Entry() Entry { return s.entry }

// Err returns the failure that ended the stream, if any.
func (s *EntryStream) Err() error { return s.err }

// Close stops the listing and releases the unrar process.
func (s *EntryStream) Close() error {
	s.done = true
	return s.lines.Close()
}

// All returns an iterator over the remaining entries. Breaking out of the
// loop releases the process; check Err afterwards.
func (s *EntryStream) All() iter.Seq[Entry] {
	return func(yield func(Entry) bool) {
		defer s.Close()
		for s.Next() {
			if !yield(s.Entry()) {
				return
			}
		}
	}
}

// Collect drains the stream into a slice.
func (s *EntryStream) Collect() ([]Entry, error) {
	var entries []Entry
	for e := range s.All() {
		entries = append(entries, e)
	}
	return entries, s.Err()
}

// join reassembles a line delivered in several chunks. It reports false
// until the chunk carrying the terminator arrives.
func (s *EntryStream) join(chunk string) (string, bool) {
	if !strings.HasSuffix(chunk, "\n") {
		s.partial.WriteString(chunk)
		return "", false
	}
	if s.partial.Len() == 0 {
		return chunk, true
	}
	s.partial.WriteString(chunk)
	line := s.partial.String()
	s.partial.Reset()
	return line, true
}

// feed passes one whole line to the parser and reports whether an entry completed.
func (s *EntryStream) feed(line string) bool {
	if err := s.parser.Feed(line); err != nil {
		s.fail(err)
		return false
	}
	if s.parser.Complete() {
		s.entry = s.bind(s.parser.Entry())
		return true
	}
	return false
}

func (s *EntryStream) bind(e Entry) Entry {
	e.archive = s.archive
	return e
}

func (s *EntryStream) fail(err error) {
	s.err = err
	s.done = true
	_ = s.lines.Close()
}

// report logs what the parser skipped during the pass.
func (s *EntryStream) report() {
	logger := s.archive.logger
	for _, name := range s.parser.Dropped() {
		logger.Warn("entry block not closed, entry dropped", "archive", s.archive.path, "entry", name)
	}
	if n := s.parser.Ignored(); n > 0 {
		logger.Debug("listing lines ignored", "archive", s.archive.path, "count", n)
	}
}
