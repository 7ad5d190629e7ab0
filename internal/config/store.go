package config

import (
	"fmt"
	"log"
)

// Store persists a Configuration using the native mechanism of one platform.
// Exactly one implementation is selected per build target by NewPlatformStore.
type Store interface {
	// Location returns the directory or registry key the store resolves to.
	Location() string
	// EnsureStorage creates the storage location if it is absent.
	EnsureStorage() error
	// EnsureConfiguration creates the storage location and persists
	// Default() when no configuration is present yet.
	EnsureConfiguration() error
	Fetch() (Configuration, error)
	Save(Configuration) error
	// Delete removes the persisted configuration. Absent is not an error.
	Delete() error
}

// Validate guarantees a well-formed configuration exists at the store's
// location and returns it.
func Validate(s Store) (Configuration, error) {
	if err := s.EnsureConfiguration(); err != nil {
		return Configuration{}, err
	}
	return s.Fetch()
}

// Reset discards the persisted configuration and writes the defaults back.
func Reset(s Store) (Configuration, error) {
	if err := s.Delete(); err != nil {
		return Configuration{}, err
	}
	return Validate(s)
}

// ensureDefault persists Default() through s unless present reports that a
// configuration already exists.
func ensureDefault(s Store, present func() (bool, error)) error {
	log.Printf("[Config] Checking whether configuration needs to be created")

	if err := s.EnsureStorage(); err != nil {
		return err
	}

	ok, err := present()
	if err != nil {
		return err
	}
	if ok {
		log.Printf("[Config] Configuration exists at %s", s.Location())
		return nil
	}

	log.Printf("[Config] Creating configuration from defaults at %s", s.Location())
	if err := s.Save(Default()); err != nil {
		return fmt.Errorf("config: write default configuration: %w", err)
	}
	return nil
}
