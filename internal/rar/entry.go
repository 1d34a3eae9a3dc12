package rar

import (
	"fmt"
	"time"
)

// contentFetcher retrieves the bytes of a named member.
type contentFetcher interface {
	Content(name string) ([]byte, error)
}

// Entry describes one archived member as reported by `unrar lt`.
type Entry struct {
	Name        string
	Size        uint64 // uncompressed bytes
	PackedSize  uint64 // stored bytes
	IsDirectory bool
	ModTime     time.Time
	CRC         string // empty for directories

	archive contentFetcher
}

// Content fetches the member's bytes through the archive that listed it.
// Each call spawns a fresh `unrar p`.
func (e Entry) Content() ([]byte, error) {
	if e.archive == nil {
		return nil, fmt.Errorf("entry %q is not bound to an archive", e.Name)
	}
	return e.archive.Content(e.Name)
}

// Compressed reports whether the stored size differs from the real size.
func (e Entry) Compressed() bool {
	return e.Size != e.PackedSize
}

// Equal reports whether two entries describe the same member with the same metadata.
func (e Entry) Equal(o Entry) bool {
	return e.Name == o.Name &&
		e.Size == o.Size &&
		e.PackedSize == o.PackedSize &&
		e.IsDirectory == o.IsDirectory &&
		e.ModTime.Equal(o.ModTime) &&
		e.CRC == o.CRC
}
