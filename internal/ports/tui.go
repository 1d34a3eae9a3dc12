package ports

import (
	"time"

	"github.com/mcdonaldj/rarlens/internal/config"
)

// TUIEntryInfo contains archive entry metadata for display.
type TUIEntryInfo struct {
	Name        string
	Size        uint64
	PackedSize  uint64
	IsDirectory bool
	ModTime     time.Time
	CRC         string
}

// TUIService provides operations needed by the TUI.
// This abstraction allows the TUI to be tested without spawning unrar.
type TUIService interface {
	// LoadConfig loads the application configuration.
	LoadConfig() (*config.Config, error)

	// ListEntries returns every entry of the archive in listing order.
	ListEntries(cfg *config.Config, archive string) ([]TUIEntryInfo, error)

	// ReadEntry returns the full content of one member.
	ReadEntry(cfg *config.Config, archive, name string) ([]byte, error)

	// ExtractEntries extracts the named members into the configured output directory.
	// It returns the number of members extracted.
	ExtractEntries(cfg *config.Config, archive string, names []string) (int, error)

	// ExtractAll extracts the whole archive into the configured output directory.
	ExtractAll(cfg *config.Config, archive string) error
}
