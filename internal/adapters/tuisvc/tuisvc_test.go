package tuisvc

import (
	"errors"
	"reflect"
	"slices"
	"testing"

	"github.com/mcdonaldj/rarlens/internal/config"
	"github.com/mcdonaldj/rarlens/internal/mocks"
	"github.com/mcdonaldj/rarlens/internal/rar"
	"github.com/mcdonaldj/rarlens/internal/toolpath"
)

const listing = `
        Name: docs
        Type: Directory

        Name: docs/readme.txt
        Size: 11
 Packed size: 9
       mtime: 2023-01-15 10:30:45,000000000
       CRC32: 1A2B3C4D

`

func newTestService(opts ...Option) (*Service, *mocks.MockProcessRunner, *mocks.MockFileSystem) {
	runner := mocks.NewMockProcessRunner()
	fs := mocks.NewMockFileSystem()
	fs.AddFile("/usr/bin/unrar", 1024)
	opts = append([]Option{WithRunner(runner), WithFileSystem(fs)}, opts...)
	return New(opts...), runner, fs
}

func testConfig() *config.Config {
	return &config.Config{
		UnrarPaths:  []string{"/usr/bin/unrar"},
		OutputDir:   "/tmp/rarlens-out",
		MaxLineSize: 4096,
	}
}

func TestListEntries(t *testing.T) {
	svc, runner, _ := newTestService()
	runner.Transcripts["lt"] = listing

	entries, err := svc.ListEntries(testConfig(), "/data/a.rar")
	if err != nil {
		t.Fatalf("ListEntries failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("entries = %d, expected 2", len(entries))
	}
	if !entries[0].IsDirectory || entries[0].Name != "docs" {
		t.Errorf("first entry = %+v", entries[0])
	}
	if e := entries[1]; e.Size != 11 || e.PackedSize != 9 || e.CRC != "1A2B3C4D" {
		t.Errorf("second entry = %+v", e)
	}
	if runner.Calls[0].Program != "/usr/bin/unrar" {
		t.Errorf("program = %q", runner.Calls[0].Program)
	}
}

func TestListEntriesErrors(t *testing.T) {
	t.Run("tool exit", func(t *testing.T) {
		svc, runner, _ := newTestService()
		runner.StreamErrors["lt"] = rar.ErrToolExit

		if _, err := svc.ListEntries(testConfig(), "/data/a.rar"); !errors.Is(err, rar.ErrToolExit) {
			t.Errorf("expected ErrToolExit, got %v", err)
		}
	})

	t.Run("unrar missing", func(t *testing.T) {
		svc, runner, _ := newTestService()
		cfg := testConfig()
		cfg.UnrarPaths = []string{"/nowhere/unrar"}

		if _, err := svc.ListEntries(cfg, "/data/a.rar"); !errors.Is(err, toolpath.ErrNotInstalled) {
			t.Errorf("expected ErrNotInstalled, got %v", err)
		}
		if len(runner.Calls) != 0 {
			t.Error("nothing should be spawned without unrar")
		}
	})

	t.Run("bad policy", func(t *testing.T) {
		svc, _, _ := newTestService()
		cfg := testConfig()
		cfg.UnclosedEntries = "keep"

		if _, err := svc.ListEntries(cfg, "/data/a.rar"); err == nil {
			t.Error("expected an error for an unknown policy")
		}
	})
}

func TestReadEntry(t *testing.T) {
	svc, runner, _ := newTestService(WithPassword("pw"))
	runner.Transcripts["lt"] = listing
	runner.Transcripts["p -inul -ppw -- /data/a.rar docs/readme.txt"] = "hello world"

	content, err := svc.ReadEntry(testConfig(), "/data/a.rar", "docs/readme.txt")
	if err != nil {
		t.Fatalf("ReadEntry failed: %v", err)
	}
	if string(content) != "hello world" {
		t.Errorf("content = %q", content)
	}
	if len(runner.Calls) != 2 {
		t.Fatalf("calls = %d, expected lt then p", len(runner.Calls))
	}
	for _, c := range runner.Calls {
		if !slices.Contains(c.Args, "-ppw") {
			t.Errorf("password missing from %v", c.Args)
		}
	}
}

func TestExtractEntries(t *testing.T) {
	svc, runner, fs := newTestService()

	n, err := svc.ExtractEntries(testConfig(), "/data/a.rar", []string{"a", "b"})
	if err != nil {
		t.Fatalf("ExtractEntries failed: %v", err)
	}
	if n != 2 {
		t.Errorf("count = %d, expected 2", n)
	}
	if !reflect.DeepEqual(fs.MkdirCalls, []string{"/tmp/rarlens-out"}) {
		t.Errorf("MkdirCalls = %v", fs.MkdirCalls)
	}
	want := []string{"x", "-o+", "-p-", "--", "/data/a.rar", "a", "/tmp/rarlens-out/"}
	if !reflect.DeepEqual(runner.Calls[0].Args, want) {
		t.Errorf("args = %v, expected %v", runner.Calls[0].Args, want)
	}
}

func TestExtractEntriesErrors(t *testing.T) {
	t.Run("mkdir", func(t *testing.T) {
		svc, runner, fs := newTestService()
		fs.Errors["/tmp/rarlens-out"] = errors.New("permission denied")

		if _, err := svc.ExtractEntries(testConfig(), "/data/a.rar", []string{"a"}); err == nil {
			t.Error("expected mkdir failure")
		}
		if runner.CallsFor("x") != 0 {
			t.Error("nothing should be extracted")
		}
	})

	t.Run("no output dir", func(t *testing.T) {
		svc, _, _ := newTestService()
		cfg := testConfig()
		cfg.OutputDir = ""

		_, err := svc.ExtractEntries(cfg, "/data/a.rar", []string{"a"})
		if !errors.Is(err, rar.ErrNoOutputDirectory) {
			t.Errorf("expected ErrNoOutputDirectory, got %v", err)
		}
	})

	t.Run("unrar failure", func(t *testing.T) {
		svc, runner, _ := newTestService()
		runner.StreamErrors["x"] = rar.ErrToolExit

		n, err := svc.ExtractEntries(testConfig(), "/data/a.rar", []string{"a", "b"})
		if !errors.Is(err, rar.ErrExtraction) || n != 0 {
			t.Errorf("ExtractEntries = %d, %v", n, err)
		}
	})
}

func TestExtractAll(t *testing.T) {
	svc, runner, _ := newTestService()

	if err := svc.ExtractAll(testConfig(), "/data/a.rar"); err != nil {
		t.Fatalf("ExtractAll failed: %v", err)
	}
	want := []string{"x", "-o+", "-p-", "--", "/data/a.rar", "/tmp/rarlens-out/"}
	if !reflect.DeepEqual(runner.Calls[0].Args, want) {
		t.Errorf("args = %v, expected %v", runner.Calls[0].Args, want)
	}
}

func TestNewDefaults(t *testing.T) {
	svc := New(WithLogger(nil))
	if svc.logger == nil || svc.fs == nil {
		t.Error("defaults should be set")
	}
	if svc.runner != nil {
		t.Error("runner should be built per call from the config")
	}
}
