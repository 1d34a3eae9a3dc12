// Package mocks provides mock implementations for testing.
package mocks

import (
	"os"
	"path/filepath"
	"time"

	"github.com/mcdonaldj/rarlens/internal/ports"
)

// MockFileSystem implements ports.FileSystem for testing.
type MockFileSystem struct {
	// Stats maps paths to FileInfo for Stat
	Stats map[string]os.FileInfo
	// Errors maps paths to errors (for simulating failures)
	Errors map[string]error
	// MkdirCalls records paths passed to MkdirAll
	MkdirCalls []string
}

// NewMockFileSystem creates a new mock filesystem.
func NewMockFileSystem() *MockFileSystem {
	return &MockFileSystem{
		Stats:  make(map[string]os.FileInfo),
		Errors: make(map[string]error),
	}
}

// AddFile registers a regular file of the given size.
func (m *MockFileSystem) AddFile(path string, size int64) {
	m.Stats[path] = &mockFileInfo{name: filepath.Base(path), size: size, mode: 0755}
}

// AddDir registers a directory.
func (m *MockFileSystem) AddDir(path string) {
	m.Stats[path] = &mockFileInfo{name: filepath.Base(path), isDir: true, mode: os.ModeDir | 0755}
}

// Stat returns file info for the named file.
func (m *MockFileSystem) Stat(name string) (os.FileInfo, error) {
	if err, ok := m.Errors[name]; ok {
		return nil, err
	}
	if info, ok := m.Stats[name]; ok {
		return info, nil
	}
	return nil, os.ErrNotExist
}

// MkdirAll creates a directory along with any necessary parents.
func (m *MockFileSystem) MkdirAll(path string, perm os.FileMode) error {
	m.MkdirCalls = append(m.MkdirCalls, path)
	if err, ok := m.Errors[path]; ok {
		return err
	}
	// Mark directory as existing
	m.AddDir(path)
	return nil
}

// mockFileInfo implements os.FileInfo for testing.
type mockFileInfo struct {
	name    string
	size    int64
	mode    os.FileMode
	modTime time.Time
	isDir   bool
}

func (fi *mockFileInfo) Name() string       { return fi.name }
func (fi *mockFileInfo) Size() int64        { return fi.size }
func (fi *mockFileInfo) Mode() os.FileMode  { return fi.mode }
func (fi *mockFileInfo) ModTime() time.Time { return fi.modTime }
func (fi *mockFileInfo) IsDir() bool        { return fi.isDir }
func (fi *mockFileInfo) Sys() interface{}   { return nil }

// Compile-time check that MockFileSystem implements ports.FileSystem.
var _ ports.FileSystem = (*MockFileSystem)(nil)
