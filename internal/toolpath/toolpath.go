// Package toolpath finds the unrar binary among a fixed list of candidate locations.
package toolpath

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mcdonaldj/rarlens/internal/adapters/osfs"
	"github.com/mcdonaldj/rarlens/internal/ports"
)

// ErrNotInstalled is returned when none of the candidate paths holds unrar.
var ErrNotInstalled = errors.New("unrar is not installed")

// DefaultCandidates are checked in order when no list is configured.
var DefaultCandidates = []string{"/usr/bin/unrar", "/usr/local/bin/unrar"}

// Locator resolves the unrar location once per call to Find.
type Locator struct {
	fs         ports.FileSystem
	candidates []string
}

// New creates a Locator over the given candidates, or DefaultCandidates when empty.
func New(fs ports.FileSystem, candidates ...string) *Locator {
	if len(candidates) == 0 {
		candidates = DefaultCandidates
	}
	return &Locator{
		fs:         fs,
		candidates: append([]string(nil), candidates...),
	}
}

// NewDefault creates a Locator backed by the real filesystem.
func NewDefault(candidates ...string) *Locator {
	return New(osfs.New(), candidates...)
}

// Candidates returns the paths checked by Find, in order.
func (l *Locator) Candidates() []string {
	return append([]string(nil), l.candidates...)
}

// Find returns the first candidate that exists and is not a directory.
func (l *Locator) Find() (string, error) {
	for _, path := range l.candidates {
		info, err := l.fs.Stat(path)
		if err != nil || info.IsDir() {
			continue
		}
		return path, nil
	}
	return "", fmt.Errorf("%w (looked in %s)", ErrNotInstalled, strings.Join(l.candidates, ", "))
}
