package mocks

import (
	"github.com/mcdonaldj/rarlens/internal/config"
	"github.com/mcdonaldj/rarlens/internal/ports"
)

// MockTUIService implements ports.TUIService for testing.
type MockTUIService struct {
	// ConfigResult is the config to return from LoadConfig
	ConfigResult *config.Config
	// ConfigError is the error to return from LoadConfig
	ConfigError error

	// Entries is the listing to return from ListEntries
	Entries []ports.TUIEntryInfo
	// EntriesError is the error to return from ListEntries
	EntriesError error

	// Contents maps member names to their content
	Contents map[string][]byte
	// ReadErrors maps member names to read errors
	ReadErrors map[string]error

	// ExtractError is returned by ExtractEntries and ExtractAll
	ExtractError error

	// Call tracking
	LoadConfigCalls     int
	ListEntriesCalls    []string
	ReadEntryCalls      []string
	ExtractEntriesCalls [][]string
	ExtractAllCalls     []string
}

// NewMockTUIService creates a new mock TUI service.
func NewMockTUIService() *MockTUIService {
	return &MockTUIService{
		ConfigResult: &config.Config{},
		Contents:     make(map[string][]byte),
		ReadErrors:   make(map[string]error),
	}
}

// LoadConfig loads the application configuration.
func (m *MockTUIService) LoadConfig() (*config.Config, error) {
	m.LoadConfigCalls++
	if m.ConfigError != nil {
		return nil, m.ConfigError
	}
	return m.ConfigResult, nil
}

// ListEntries returns the scripted listing.
func (m *MockTUIService) ListEntries(cfg *config.Config, archive string) ([]ports.TUIEntryInfo, error) {
	m.ListEntriesCalls = append(m.ListEntriesCalls, archive)
	if m.EntriesError != nil {
		return nil, m.EntriesError
	}
	return m.Entries, nil
}

// ReadEntry returns the scripted content of one member.
func (m *MockTUIService) ReadEntry(cfg *config.Config, archive, name string) ([]byte, error) {
	m.ReadEntryCalls = append(m.ReadEntryCalls, name)
	if err, ok := m.ReadErrors[name]; ok {
		return nil, err
	}
	return m.Contents[name], nil
}

// ExtractEntries records the batch and reports it fully extracted.
func (m *MockTUIService) ExtractEntries(cfg *config.Config, archive string, names []string) (int, error) {
	m.ExtractEntriesCalls = append(m.ExtractEntriesCalls, append([]string(nil), names...))
	if m.ExtractError != nil {
		return 0, m.ExtractError
	}
	return len(names), nil
}

// ExtractAll records the call.
func (m *MockTUIService) ExtractAll(cfg *config.Config, archive string) error {
	m.ExtractAllCalls = append(m.ExtractAllCalls, archive)
	return m.ExtractError
}

// Compile-time check that MockTUIService implements ports.TUIService.
var _ ports.TUIService = (*MockTUIService)(nil)
