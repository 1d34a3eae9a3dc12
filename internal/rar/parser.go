package rar

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// UnclosedPolicy decides what happens to an entry whose block is cut short,
// either by a new "Name:" line or by the end of the listing, before its
// closing blank line.
type UnclosedPolicy int

const (
	// DiscardUnclosed drops the open entry.
	DiscardUnclosed UnclosedPolicy = iota
	// YieldUnclosed closes the open entry and yields it as-is.
	YieldUnclosed
)

func (p UnclosedPolicy) String() string {
	switch p {
	case DiscardUnclosed:
		return "discard"
	case YieldUnclosed:
		return "yield"
	default:
		return fmt.Sprintf("UnclosedPolicy(%d)", int(p))
	}
}

// ParseUnclosedPolicy converts a config value ("discard" or "yield").
func ParseUnclosedPolicy(s string) (UnclosedPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "discard":
		return DiscardUnclosed, nil
	case "yield":
		return YieldUnclosed, nil
	default:
		return DiscardUnclosed, fmt.Errorf("unknown unclosed entry policy %q (expected discard or yield)", s)
	}
}

type parserState int

const (
	stateIdle parserState = iota
	stateBuilding
)

// mtimeLayouts are the local-time formats unrar prints before the comma.
var mtimeLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

var nameLine = regexp.MustCompile(`^\s*Name: (.+)$`)

// fieldRule maps one listing line shape to a mutation of the open entry.
type fieldRule struct {
	pattern *regexp.Regexp
	apply   func(e *Entry, value string) error
}

// fieldRules is ordered: "Packed size" must be tried before "Size".
var fieldRules = []fieldRule{
	{
		pattern: regexp.MustCompile(`^\s*Type: Directory\s*$`),
		apply: func(e *Entry, _ string) error {
			e.IsDirectory = true
			return nil
		},
	},
	{
		pattern: regexp.MustCompile(`^\s*Packed size: (.+)$`),
		apply: func(e *Entry, v string) error {
			n, err := parseSize(v)
			e.PackedSize = n
			return err
		},
	},
	{
		pattern: regexp.MustCompile(`^\s*Size: (.+)$`),
		apply: func(e *Entry, v string) error {
			n, err := parseSize(v)
			e.Size = n
			return err
		},
	},
	{
		pattern: regexp.MustCompile(`^\s*mtime: (.+),.+$`),
		apply: func(e *Entry, v string) error {
			t, err := parseMtime(v)
			e.ModTime = t
			return err
		},
	},
	{
		pattern: regexp.MustCompile(`^\s*CRC32: (.+)$`),
		apply: func(e *Entry, v string) error {
			e.CRC = strings.TrimSpace(v)
			return nil
		},
	},
}

// Parser rebuilds entries from `unrar lt` output, one line at a time.
//
// After every Feed the caller must check Complete and take the finished
// entry with Entry; the next Feed discards an entry that was not taken.
type Parser struct {
	policy  UnclosedPolicy
	state   parserState
	current *Entry
	ready   *Entry

	dropped []string
	ignored int
}

// NewParser creates a parser in the idle state.
func NewParser(policy UnclosedPolicy) *Parser {
	return &Parser{policy: policy}
}

// Feed advances the state machine by one line.
func (p *Parser) Feed(line string) error {
	line = strings.TrimRight(line, "\r\n")
	p.ready = nil

	if m := nameLine.FindStringSubmatch(line); m != nil {
		if p.state == stateBuilding {
			p.cutShort()
		}
		p.current = &Entry{Name: m[1]}
		p.state = stateBuilding
		return nil
	}

	if p.state != stateBuilding {
		return nil
	}

	if strings.TrimSpace(line) == "" {
		p.ready = p.current
		p.current = nil
		p.state = stateIdle
		return nil
	}

	for _, rule := range fieldRules {
		m := rule.pattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		value := ""
		if len(m) > 1 {
			value = m[1]
		}
		if err := rule.apply(p.current, value); err != nil {
			return fmt.Errorf("%w: entry %q: line %q: %w", ErrMalformedOutput, p.current.Name, line, err)
		}
		return nil
	}

	p.ignored++
	return nil
}

// Complete reports whether the last Feed finished an entry.
func (p *Parser) Complete() bool {
	return p.ready != nil
}

// Entry takes the finished entry. It returns the zero Entry when none is ready.
func (p *Parser) Entry() Entry {
	if p.ready == nil {
		return Entry{}
	}
	e := *p.ready
	p.ready = nil
	return e
}

// Finish ends the pass. An entry still open at this point is handled by
// the unclosed policy; the returned bool reports whether it was kept.
func (p *Parser) Finish() (Entry, bool) {
	p.ready = nil
	if p.state != stateBuilding {
		return Entry{}, false
	}
	p.cutShort()
	return p.Entry(), p.policy == YieldUnclosed
}

// Dropped returns the names of entries discarded for lack of a closing line.
func (p *Parser) Dropped() []string {
	return p.dropped
}

// Ignored returns how many lines inside entry blocks matched no field rule.
func (p *Parser) Ignored() int {
	return p.ignored
}

// cutShort closes the open entry without its blank line.
func (p *Parser) cutShort() {
	if p.policy == YieldUnclosed {
		p.ready = p.current
	} else {
		p.dropped = append(p.dropped, p.current.Name)
	}
	p.current = nil
	p.state = stateIdle
}

func parseSize(v string) (uint64, error) {
	return strconv.ParseUint(strings.TrimSpace(v), 10, 64)
}

func parseMtime(v string) (time.Time, error) {
	v = strings.TrimSpace(v)
	for _, layout := range mtimeLayouts {
		if t, err := time.ParseInLocation(layout, v, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized time %q", v)
}
