package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"gopkg.in/yaml.v3"
)

// ErrInvalid is returned by Validate for out-of-range settings.
var ErrInvalid = errors.New("invalid config")

// MinLineSize is the smallest accepted max_line_size.
const MinLineSize = 256

type Config struct {
	UnrarPaths      []string `yaml:"unrar_paths"`
	OutputDir       string   `yaml:"output_dir"`
	MaxLineSize     int      `yaml:"max_line_size"`
	UnclosedEntries string   `yaml:"unclosed_entries"`
	LogLevel        string   `yaml:"log_level"`
}

func DefaultConfig() (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("cannot determine home directory: %w", err)
	}
	return &Config{
		UnrarPaths:      []string{"/usr/bin/unrar", "/usr/local/bin/unrar"},
		OutputDir:       filepath.Join(home, "Downloads", "rarlens"),
		MaxLineSize:     4096,
		UnclosedEntries: "discard",
		LogLevel:        "warn",
	}, nil
}

func ConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".rarlens", "config.yaml"), nil
}

func Load() (*Config, error) {
	cfg, err := DefaultConfig()
	if err != nil {
		return nil, err
	}

	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil // Use defaults
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return cfg, nil
}

func (c *Config) Save() error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}

	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// Validate checks that every setting is usable.
func (c *Config) Validate() error {
	if len(c.UnrarPaths) == 0 {
		return fmt.Errorf("%w: unrar_paths is empty", ErrInvalid)
	}
	if c.MaxLineSize < MinLineSize {
		return fmt.Errorf("%w: max_line_size must be at least %d, got %d", ErrInvalid, MinLineSize, c.MaxLineSize)
	}
	switch c.UnclosedEntries {
	case "", "discard", "yield":
	default:
		return fmt.Errorf("%w: unclosed_entries must be discard or yield, got %q", ErrInvalid, c.UnclosedEntries)
	}
	if _, err := c.Level(); err != nil {
		return fmt.Errorf("%w: log_level: %w", ErrInvalid, err)
	}
	return nil
}

// Level returns the parsed log_level setting. Empty means warn.
func (c *Config) Level() (log.Level, error) {
	if c.LogLevel == "" {
		return log.WarnLevel, nil
	}
	return log.ParseLevel(c.LogLevel)
}

// ExpandPath expands ~ to home directory
func ExpandPath(path string) (string, error) {
	if len(path) > 0 && path[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("cannot expand %s: %w", path, err)
		}
		return filepath.Join(home, path[1:]), nil
	}
	return path, nil
}
