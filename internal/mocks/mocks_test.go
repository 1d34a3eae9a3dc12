package mocks

import (
	"errors"
	"os"
	"testing"

	"github.com/mcdonaldj/rarlens/internal/ports"
)

func TestMockFileSystem(t *testing.T) {
	mockFS := NewMockFileSystem()

	// Test AddFile and Stat
	mockFS.AddFile("/usr/bin/unrar", 5)
	info, err := mockFS.Stat("/usr/bin/unrar")
	if err != nil {
		t.Fatalf("Stat failed: %v", err)
	}
	if info.Size() != 5 || info.IsDir() || info.Name() != "unrar" {
		t.Errorf("info = %s size=%d dir=%v", info.Name(), info.Size(), info.IsDir())
	}

	// Test Stat for non-existent file
	if _, err := mockFS.Stat("/nonexistent"); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected ErrNotExist, got %v", err)
	}

	// Test MkdirAll marks the directory as existing
	if err := mockFS.MkdirAll("/tmp/out", 0755); err != nil {
		t.Fatalf("MkdirAll failed: %v", err)
	}
	info, err = mockFS.Stat("/tmp/out")
	if err != nil || !info.IsDir() {
		t.Errorf("expected directory, got %v, %v", info, err)
	}

	// Test error injection
	mockFS.Errors["/error/path"] = errors.New("injected error")
	if err := mockFS.MkdirAll("/error/path", 0755); err == nil || err.Error() != "injected error" {
		t.Errorf("Expected injected error, got: %v", err)
	}
	if _, err := mockFS.Stat("/error/path"); err == nil {
		t.Error("Stat should return the injected error")
	}
	if len(mockFS.MkdirCalls) != 2 {
		t.Errorf("MkdirCalls = %v", mockFS.MkdirCalls)
	}
}

func TestMockProcessRunnerLookup(t *testing.T) {
	runner := NewMockProcessRunner()
	runner.Transcripts["lt"] = "by subcommand\n"
	runner.Transcripts["lt -- /b.rar"] = "by argv\n"

	tests := []struct {
		args []string
		want string
	}{
		{[]string{"lt", "--", "/a.rar"}, "by subcommand\n"},
		{[]string{"lt", "--", "/b.rar"}, "by argv\n"},
		{[]string{"p", "--", "/a.rar"}, ""},
	}
	for _, tt := range tests {
		s, err := runner.Start("unrar", tt.args)
		if err != nil {
			t.Fatalf("Start(%v) failed: %v", tt.args, err)
		}
		got := ""
		for s.Next() {
			got += s.Text()
		}
		if got != tt.want {
			t.Errorf("Start(%v) served %q, expected %q", tt.args, got, tt.want)
		}
	}

	if runner.CallsFor("lt") != 2 || runner.CallsFor("p") != 1 {
		t.Errorf("calls = %+v", runner.Calls)
	}
}

func TestMockProcessRunnerErrors(t *testing.T) {
	runner := NewMockProcessRunner()
	runner.StartErrors["x"] = ports.ErrSpawn
	runner.StreamErrors["lt"] = ports.ErrToolExit
	runner.Transcripts["lt"] = "one\n"

	if _, err := runner.Start("unrar", []string{"x"}); !errors.Is(err, ports.ErrSpawn) {
		t.Errorf("expected ErrSpawn, got %v", err)
	}
	if len(runner.Calls) != 1 {
		t.Error("failed starts should still be recorded")
	}

	s, _ := runner.Start("unrar", []string{"lt"})
	if !s.Next() || s.Err() != nil {
		t.Fatal("first line should be served without error")
	}
	if s.Next() {
		t.Fatal("transcript should be exhausted")
	}
	if !errors.Is(s.Err(), ports.ErrToolExit) {
		t.Errorf("expected ErrToolExit, got %v", s.Err())
	}
}

func TestMockLineStream(t *testing.T) {
	s := NewMockLineStream("a\nb\nc", nil)

	if !s.Next() || s.Text() != "a\n" {
		t.Fatalf("first line = %q", s.Text())
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	s.Close()

	if s.Next() {
		t.Error("Next after Close should return false")
	}
	if s.ReleaseCount != 1 || s.CloseCalls != 2 {
		t.Errorf("ReleaseCount = %d, CloseCalls = %d", s.ReleaseCount, s.CloseCalls)
	}
	if s.Consumed() != 1 {
		t.Errorf("Consumed = %d, expected 1", s.Consumed())
	}
}

func TestMockLineStreamLastLineUnterminated(t *testing.T) {
	s := NewMockLineStream("a\nb", nil)

	var lines []string
	for s.Next() {
		lines = append(lines, s.Text())
	}
	if len(lines) != 2 || lines[1] != "b" {
		t.Errorf("lines = %q", lines)
	}
	if !s.Released || s.ReleaseCount != 1 {
		t.Error("exhausted stream should be released once")
	}
}

func TestMockTUIService(t *testing.T) {
	svc := NewMockTUIService()
	svc.Contents["a.txt"] = []byte("hi")
	svc.ReadErrors["b.txt"] = errors.New("crc")

	if _, err := svc.LoadConfig(); err != nil || svc.LoadConfigCalls != 1 {
		t.Errorf("LoadConfig = %v (calls %d)", err, svc.LoadConfigCalls)
	}
	if c, err := svc.ReadEntry(nil, "/a.rar", "a.txt"); err != nil || string(c) != "hi" {
		t.Errorf("ReadEntry = %q, %v", c, err)
	}
	if _, err := svc.ReadEntry(nil, "/a.rar", "b.txt"); err == nil {
		t.Error("expected read error")
	}

	names := []string{"a.txt"}
	n, err := svc.ExtractEntries(nil, "/a.rar", names)
	if n != 1 || err != nil {
		t.Errorf("ExtractEntries = %d, %v", n, err)
	}
	names[0] = "changed"
	if svc.ExtractEntriesCalls[0][0] != "a.txt" {
		t.Error("recorded batch should be a copy")
	}

	svc.ExtractError = errors.New("disk full")
	if n, err := svc.ExtractEntries(nil, "/a.rar", names); n != 0 || err == nil {
		t.Errorf("ExtractEntries = %d, %v", n, err)
	}
	if err := svc.ExtractAll(nil, "/a.rar"); err == nil {
		t.Error("expected extract error")
	}
}
