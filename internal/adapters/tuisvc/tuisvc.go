// Package tuisvc provides the real implementation of ports.TUIService.
package tuisvc

import (
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"github.com/mcdonaldj/rarlens/internal/adapters/execproc"
	"github.com/mcdonaldj/rarlens/internal/adapters/osfs"
	"github.com/mcdonaldj/rarlens/internal/config"
	"github.com/mcdonaldj/rarlens/internal/driver"
	"github.com/mcdonaldj/rarlens/internal/ports"
	"github.com/mcdonaldj/rarlens/internal/rar"
	"github.com/mcdonaldj/rarlens/internal/toolpath"
)

// Service implements ports.TUIService on top of the unrar driver.
type Service struct {
	password string
	logger   *log.Logger
	fs       ports.FileSystem
	runner   ports.ProcessRunner
}

// Option configures a Service.
type Option func(*Service)

// WithPassword sets the archive password passed to every unrar invocation.
func WithPassword(password string) Option {
	return func(s *Service) { s.password = password }
}

// WithLogger sets the logger. The TUI owns the terminal, so the default discards.
func WithLogger(l *log.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithFileSystem sets the filesystem used to locate unrar and create output directories.
func WithFileSystem(fs ports.FileSystem) Option {
	return func(s *Service) { s.fs = fs }
}

// WithRunner replaces the process runner built from the config.
func WithRunner(r ports.ProcessRunner) Option {
	return func(s *Service) { s.runner = r }
}

// New creates a new TUI service.
func New(opts ...Option) *Service {
	s := &Service{
		logger: log.New(io.Discard),
		fs:     osfs.New(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// LoadConfig loads the application configuration.
func (s *Service) LoadConfig() (*config.Config, error) {
	return config.Load()
}

// ListEntries returns every entry of the archive, directories included.
func (s *Service) ListEntries(cfg *config.Config, archive string) ([]ports.TUIEntryInfo, error) {
	d, err := s.open(cfg, archive)
	if err != nil {
		return nil, err
	}

	stream, err := d.Entries()
	if err != nil {
		return nil, err
	}

	var result []ports.TUIEntryInfo
	for e := range stream.All() {
		result = append(result, ports.TUIEntryInfo{
			Name:        e.Name,
			Size:        e.Size,
			PackedSize:  e.PackedSize,
			IsDirectory: e.IsDirectory,
			ModTime:     e.ModTime,
			CRC:         e.CRC,
		})
	}
	if err := stream.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// ReadEntry returns the content of one member.
func (s *Service) ReadEntry(cfg *config.Config, archive, name string) ([]byte, error) {
	d, err := s.open(cfg, archive)
	if err != nil {
		return nil, err
	}
	return d.FileContent(name)
}

// ExtractEntries extracts the named members into the configured output directory.
func (s *Service) ExtractEntries(cfg *config.Config, archive string, names []string) (int, error) {
	d, err := s.open(cfg, archive)
	if err != nil {
		return 0, err
	}
	dest, err := s.outputDir(cfg)
	if err != nil {
		return 0, err
	}
	return d.ExtractFiles(dest, names)
}

// ExtractAll extracts the whole archive into the configured output directory.
func (s *Service) ExtractAll(cfg *config.Config, archive string) error {
	d, err := s.open(cfg, archive)
	if err != nil {
		return err
	}
	dest, err := s.outputDir(cfg)
	if err != nil {
		return err
	}
	return d.ExtractArchive(dest)
}

// open locates unrar and opens archive with the configured options.
func (s *Service) open(cfg *config.Config, archive string) (*driver.Driver, error) {
	policy, err := rar.ParseUnclosedPolicy(cfg.UnclosedEntries)
	if err != nil {
		return nil, err
	}

	runner := s.runner
	if runner == nil {
		runner = execproc.New(
			execproc.WithMaxLineSize(cfg.MaxLineSize),
			execproc.WithLogger(s.logger),
		)
	}

	tool := driver.NewTool(toolpath.New(s.fs, cfg.UnrarPaths...))
	return tool.Open(archive, driver.FormatRAR,
		rar.WithPassword(s.password),
		rar.WithLogger(s.logger),
		rar.WithUnclosedPolicy(policy),
		rar.WithRunner(runner),
	)
}

// outputDir expands and creates the configured output directory.
func (s *Service) outputDir(cfg *config.Config) (string, error) {
	dest, err := config.ExpandPath(cfg.OutputDir)
	if err != nil {
		return "", err
	}
	if dest == "" {
		return "", fmt.Errorf("%w: %w", rar.ErrExtraction, rar.ErrNoOutputDirectory)
	}
	if err := s.fs.MkdirAll(dest, 0755); err != nil {
		return "", fmt.Errorf("creating %s: %w", dest, err)
	}
	return dest, nil
}

// Compile-time check that Service implements ports.TUIService.
var _ ports.TUIService = (*Service)(nil)
