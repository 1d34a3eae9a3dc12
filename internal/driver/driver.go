// Package driver adapts the unrar-backed archive to a generic archive-driver
// contract: capability discovery, aggregate metadata and per-file extraction.
package driver

import (
	"bytes"
	"errors"
	"io"
	"time"

	"github.com/mcdonaldj/rarlens/internal/rar"
)

// Source is the entry-oriented archive API the driver builds on.
// *rar.Archive is the production implementation.
type Source interface {
	Entries() (*rar.EntryStream, error)
	Entry(name string) (rar.Entry, error)
	Content(name string) ([]byte, error)
	SetOutputDirectory(dir string)
	Extract() error
	ExtractEntry(name string) error
}

// ArchiveInformation summarizes the regular files of an archive.
type ArchiveInformation struct {
	Files                 []string
	CompressedFilesSize   uint64
	UncompressedFilesSize uint64
}

// FileData describes a single member.
type FileData struct {
	Path             string
	CompressedSize   uint64
	UncompressedSize uint64
	ModTime          time.Time
	IsCompressed     bool
	CRC              string
}

// Driver exposes a RAR archive through the generic driver operations.
type Driver struct {
	src    Source
	format Format
}

// New wraps src as a driver for the given format.
func New(src Source, format Format) *Driver {
	return &Driver{src: src, format: format}
}

// Format returns the format the driver was opened for.
func (d *Driver) Format() Format { return d.format }

// Entries returns a lazy stream over every entry, directories included.
func (d *Driver) Entries() (*rar.EntryStream, error) {
	return d.src.Entries()
}

// ArchiveInformation lists the regular files and totals their sizes.
// Directories are left out of every figure.
func (d *Driver) ArchiveInformation() (ArchiveInformation, error) {
	var info ArchiveInformation
	err := d.eachFile(func(e rar.Entry) {
		info.Files = append(info.Files, e.Name)
		info.CompressedFilesSize += e.PackedSize
		info.UncompressedFilesSize += e.Size
	})
	return info, err
}

// FileNames returns the names of regular files in listing order.
func (d *Driver) FileNames() ([]string, error) {
	var names []string
	err := d.eachFile(func(e rar.Entry) {
		names = append(names, e.Name)
	})
	return names, err
}

// FileExists reports whether a member with this exact name is listed.
func (d *Driver) FileExists(name string) (bool, error) {
	_, err := d.src.Entry(name)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, rar.ErrFileNotFound):
		return false, nil
	default:
		return false, err
	}
}

// FileData returns the metadata of one member.
func (d *Driver) FileData(name string) (FileData, error) {
	e, err := d.src.Entry(name)
	if err != nil {
		return FileData{}, err
	}
	return FileData{
		Path:             e.Name,
		CompressedSize:   e.PackedSize,
		UncompressedSize: e.Size,
		ModTime:          e.ModTime,
		IsCompressed:     e.Compressed(),
		CRC:              e.CRC,
	}, nil
}

// FileContent returns the bytes of one member.
func (d *Driver) FileContent(name string) ([]byte, error) {
	return d.src.Content(name)
}

// FileStream returns a reader over one member. The content is fully
// materialized before the reader is returned.
func (d *Driver) FileStream(name string) (io.ReadCloser, error) {
	content, err := d.src.Content(name)
	if err != nil {
		return nil, err
	}
	return io.NopCloser(bytes.NewReader(content)), nil
}

// ExtractFiles extracts the named members into dir, one invocation each, in order.
// The first failure stops the batch; the count of files already extracted
// is not returned in that case.
func (d *Driver) ExtractFiles(dir string, names []string) (int, error) {
	d.src.SetOutputDirectory(dir)

	count := 0
	for _, name := range names {
		if err := d.src.ExtractEntry(name); err != nil {
			return 0, err
		}
		count++
	}
	return count, nil
}

// ExtractArchive extracts every member into dir.
func (d *Driver) ExtractArchive(dir string) error {
	d.src.SetOutputDirectory(dir)
	return d.src.Extract()
}

// eachFile calls fn for every non-directory entry of a full listing pass.
func (d *Driver) eachFile(fn func(rar.Entry)) error {
	s, err := d.src.Entries()
	if err != nil {
		return err
	}
	for e := range s.All() {
		if e.IsDirectory {
			continue
		}
		fn(e)
	}
	return s.Err()
}
