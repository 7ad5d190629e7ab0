// Package testutil provides fakes and helpers shared by package tests.
package testutil

import (
	"path/filepath"
	"sync"
	"testing"

	"github.com/shutdown-on-lan/shutdown-on-lan/internal/config"
	"github.com/shutdown-on-lan/shutdown-on-lan/internal/journal"
)

// MemoryStore is an in-memory config.Store.
type MemoryStore struct {
	mu        sync.Mutex
	storage   bool
	cfg       *config.Configuration
	Saves     int
	FetchErr  error // returned by Fetch when set
	SaveErr   error // returned by Save when set
	EnsureErr error // returned by EnsureStorage when set
}

var _ config.Store = (*MemoryStore)(nil)

// NewMemoryStore returns an empty store: no storage and no configuration.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// NewMemoryStoreWith returns a store already holding cfg.
func NewMemoryStoreWith(cfg config.Configuration) *MemoryStore {
	cfg = cfg.Clone()
	return &MemoryStore{storage: true, cfg: &cfg}
}

func (m *MemoryStore) Location() string {
	return "memory"
}

func (m *MemoryStore) EnsureStorage() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.EnsureErr != nil {
		return m.EnsureErr
	}
	m.storage = true
	return nil
}

func (m *MemoryStore) EnsureConfiguration() error {
	if err := m.EnsureStorage(); err != nil {
		return err
	}
	m.mu.Lock()
	present := m.cfg != nil
	m.mu.Unlock()
	if present {
		return nil
	}
	return m.Save(config.Default())
}

func (m *MemoryStore) Fetch() (config.Configuration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FetchErr != nil {
		return config.Configuration{}, m.FetchErr
	}
	if m.cfg == nil {
		return config.Configuration{}, &config.Error{Op: "fetch", Path: "memory", Kind: config.ErrMissingConfigurationFile}
	}
	return m.cfg.Clone(), nil
}

func (m *MemoryStore) Save(cfg config.Configuration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SaveErr != nil {
		return m.SaveErr
	}
	if !m.storage {
		return &config.Error{Op: "save", Path: "memory", Kind: config.ErrConfigurationFileUnwritable}
	}
	cfg = cfg.Clone()
	m.cfg = &cfg
	m.Saves++
	return nil
}

func (m *MemoryStore) Delete() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cfg = nil
	return nil
}

// Current returns the stored configuration and whether one exists.
func (m *MemoryStore) Current() (config.Configuration, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cfg == nil {
		return config.Configuration{}, false
	}
	return m.cfg.Clone(), true
}

// OpenJournal creates a temporary attempt journal closed at test cleanup.
func OpenJournal(t *testing.T) *journal.Journal {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), config.JournalFileName)
	j, err := journal.Open(journal.Options{DBPath: dbPath})
	if err != nil {
		t.Fatalf("open journal: %v", err)
	}
	t.Cleanup(func() { j.Close() })
	return j
}
