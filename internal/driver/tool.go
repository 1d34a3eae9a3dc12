package driver

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/mcdonaldj/rarlens/internal/rar"
	"github.com/mcdonaldj/rarlens/internal/toolpath"
)

var (
	// ErrToolNotInstalled is returned by Open when unrar could not be found.
	ErrToolNotInstalled = toolpath.ErrNotInstalled
	// ErrUnsupportedFormat is returned when a driver is requested for a format unrar cannot read.
	ErrUnsupportedFormat = errors.New("format not supported by unrar driver")
)

// Format names an archive format.
type Format string

// FormatRAR is the only format this driver reads.
const FormatRAR Format = "rar"

// Capability is an operation a driver can perform on a format.
type Capability int

const (
	// CapOpen lists entries and reads their metadata.
	CapOpen Capability = iota
	// CapOpenEncrypted opens archives protected by a password.
	CapOpenEncrypted
	// CapExtractContent extracts members to a directory.
	CapExtractContent
	// CapStreamContent reads a member's bytes without extracting it.
	CapStreamContent
)

func (c Capability) String() string {
	switch c {
	case CapOpen:
		return "open"
	case CapOpenEncrypted:
		return "open-encrypted"
	case CapExtractContent:
		return "extract-content"
	case CapStreamContent:
		return "stream-content"
	default:
		return fmt.Sprintf("Capability(%d)", int(c))
	}
}

// SupportedFormats returns the formats the unrar driver handles.
func SupportedFormats() []Format {
	return []Format{FormatRAR}
}

// Tool describes the unrar installation the driver relies on.
// The location is resolved once, when the Tool is created.
type Tool struct {
	candidates []string
	path       string
	err        error
}

// NewTool resolves unrar through the locator.
func NewTool(l *toolpath.Locator) *Tool {
	path, err := l.Find()
	return &Tool{
		candidates: l.Candidates(),
		path:       path,
		err:        err,
	}
}

// Path returns the resolved unrar location, or "" when not installed.
func (t *Tool) Path() string { return t.path }

// IsInstalled reports whether unrar was found.
func (t *Tool) IsInstalled() bool { return t.err == nil }

// InstallationInstruction explains how to install unrar, or returns "" when it is installed.
func (t *Tool) InstallationInstruction() string {
	if t.IsInstalled() {
		return ""
	}
	return "Download from https://www.rarlab.com and put the binary inside any of the paths:\n" +
		strings.Join(t.candidates, ", ")
}

// Description names the backing program.
func (t *Tool) Description() string {
	if !t.IsInstalled() {
		return "console program unrar (not installed)"
	}
	return "console program " + t.path
}

// CheckFormatSupport lists what the driver can do with format.
// Nothing is supported while unrar is missing.
func (t *Tool) CheckFormatSupport(format Format) []Capability {
	if !t.IsInstalled() || !slices.Contains(SupportedFormats(), format) {
		return nil
	}
	return []Capability{CapOpen, CapOpenEncrypted, CapExtractContent, CapStreamContent}
}

// Open creates a driver for the archive at path.
func (t *Tool) Open(path string, format Format, opts ...rar.Option) (*Driver, error) {
	if !t.IsInstalled() {
		return nil, t.err
	}
	if !slices.Contains(SupportedFormats(), format) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
	return New(rar.New(path, t.path, opts...), format), nil
}
