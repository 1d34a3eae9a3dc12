package toolpath

import (
	"errors"
	"testing"

	"github.com/mcdonaldj/rarlens/internal/mocks"
)

func TestNewDefaults(t *testing.T) {
	l := New(mocks.NewMockFileSystem())
	got := l.Candidates()
	if len(got) != 2 || got[0] != "/usr/bin/unrar" || got[1] != "/usr/local/bin/unrar" {
		t.Errorf("Candidates = %v", got)
	}

	// Callers cannot mutate the locator through the returned slice.
	got[0] = "/tmp/evil"
	if l.Candidates()[0] != "/usr/bin/unrar" {
		t.Error("Candidates should return a copy")
	}
}

func TestFind(t *testing.T) {
	t.Run("first existing wins", func(t *testing.T) {
		fs := mocks.NewMockFileSystem()
		fs.AddFile("/usr/local/bin/unrar", 1024)
		fs.AddFile("/opt/unrar", 1024)

		path, err := New(fs, "/usr/bin/unrar", "/usr/local/bin/unrar", "/opt/unrar").Find()
		if err != nil {
			t.Fatalf("Find failed: %v", err)
		}
		if path != "/usr/local/bin/unrar" {
			t.Errorf("path = %q", path)
		}
	})

	t.Run("directories skipped", func(t *testing.T) {
		fs := mocks.NewMockFileSystem()
		fs.AddDir("/usr/bin/unrar")
		fs.AddFile("/usr/local/bin/unrar", 1)

		path, err := New(fs).Find()
		if err != nil {
			t.Fatal(err)
		}
		if path != "/usr/local/bin/unrar" {
			t.Errorf("path = %q", path)
		}
	})

	t.Run("stat errors skipped", func(t *testing.T) {
		fs := mocks.NewMockFileSystem()
		fs.Errors["/usr/bin/unrar"] = errors.New("permission denied")
		fs.AddFile("/usr/local/bin/unrar", 1)

		if path, err := New(fs).Find(); err != nil || path != "/usr/local/bin/unrar" {
			t.Errorf("Find = %q, %v", path, err)
		}
	})

	t.Run("not installed", func(t *testing.T) {
		_, err := New(mocks.NewMockFileSystem()).Find()
		if !errors.Is(err, ErrNotInstalled) {
			t.Errorf("expected ErrNotInstalled, got %v", err)
		}
	})
}
