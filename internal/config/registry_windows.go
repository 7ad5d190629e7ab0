//go:build windows

package config

import (
	"errors"
	"fmt"
	"log"

	"golang.org/x/sys/windows/registry"
)

// RegistryKeyPath is the product key below the scope root.
const RegistryKeyPath = `SOFTWARE\` + ProductName

// RegistryStore keeps the configuration as three named values under a
// registry key.
type RegistryStore struct {
	root     registry.Key
	rootName string
	path     string
}

// NewRegistryStore returns a store for path below root. rootName is used
// for messages only.
func NewRegistryStore(root registry.Key, rootName, path string) *RegistryStore {
	return &RegistryStore{root: root, rootName: rootName, path: path}
}

func (s *RegistryStore) Location() string {
	return s.rootName + `\` + s.path
}

func (s *RegistryStore) valuePath(name string) string {
	return s.Location() + `\` + name
}

func (s *RegistryStore) EnsureStorage() error {
	key, existing, err := registry.CreateKey(s.root, s.path, registry.QUERY_VALUE|registry.SET_VALUE)
	if err != nil {
		return newError("ensure-storage", s.Location(), ErrStorageUnwritable, err)
	}
	defer key.Close()

	if existing {
		log.Printf("[Config] Using existing registry key %s", s.Location())
	} else {
		log.Printf("[Config] Created new registry key %s", s.Location())
	}
	return nil
}

// EnsureConfiguration writes the defaults whenever the existing values
// cannot be fetched, including when they are present but unreadable.
func (s *RegistryStore) EnsureConfiguration() error {
	return ensureDefault(s, func() (bool, error) {
		if _, err := s.Fetch(); err != nil {
			log.Printf("[Config] No usable configuration in registry: %v", err)
			return false, nil
		}
		return true, nil
	})
}

func (s *RegistryStore) Fetch() (Configuration, error) {
	key, err := registry.OpenKey(s.root, s.path, registry.QUERY_VALUE)
	if err != nil {
		if errors.Is(err, registry.ErrNotExist) {
			return Configuration{}, newError("fetch", s.Location(), ErrMissingConfigurationFile, err)
		}
		return Configuration{}, fmt.Errorf("config: open registry key %s: %w", s.Location(), err)
	}
	defer key.Close()

	port, _, err := key.GetIntegerValue(keyPort)
	if err != nil {
		if errors.Is(err, registry.ErrNotExist) {
			return Configuration{}, newError("fetch", s.valuePath(keyPort), ErrMissingConfigurationFile, err)
		}
		return Configuration{}, s.notReadable(keyPort, err)
	}
	if port > 0xFFFF {
		return Configuration{}, s.notReadable(keyPort, fmt.Errorf("port %d out of range", port))
	}

	addresses, _, err := key.GetStringValue(keyIPAddresses)
	if err != nil {
		return Configuration{}, s.notReadable(keyIPAddresses, err)
	}

	secret, _, err := key.GetStringValue(keySecret)
	if err != nil {
		return Configuration{}, s.notReadable(keySecret, err)
	}

	return document{Port: uint16(port), IPAddresses: addresses, Secret: secret}.configuration(), nil
}

func (s *RegistryStore) Save(cfg Configuration) error {
	key, _, err := registry.CreateKey(s.root, s.path, registry.SET_VALUE)
	if err != nil {
		return newError("save", s.Location(), ErrStorageUnwritable, err)
	}
	defer key.Close()

	doc := toDocument(cfg)

	if err := key.SetStringValue(keyIPAddresses, doc.IPAddresses); err != nil {
		return s.notWritable(keyIPAddresses, err)
	}
	log.Printf("[Config] Set IP addresses to %s", doc.IPAddresses)

	if err := key.SetDWordValue(keyPort, uint32(doc.Port)); err != nil {
		return s.notWritable(keyPort, err)
	}
	log.Printf("[Config] Set port to %d", doc.Port)

	if err := key.SetStringValue(keySecret, doc.Secret); err != nil {
		return s.notWritable(keySecret, err)
	}
	return nil
}

func (s *RegistryStore) Delete() error {
	if err := registry.DeleteKey(s.root, s.path); err != nil && !errors.Is(err, registry.ErrNotExist) {
		return newError("delete", s.Location(), ErrConfigurationFileUnwritable, err)
	}
	return nil
}

func (s *RegistryStore) notReadable(name string, err error) error {
	return newError("fetch", s.valuePath(name), ErrInvalidConfigurationFile,
		fmt.Errorf("%w: %w", ErrRegistryKeyNotReadable, err))
}

func (s *RegistryStore) notWritable(name string, err error) error {
	return newError("save", s.valuePath(name), ErrConfigurationFileUnwritable,
		fmt.Errorf("%w: %w", ErrRegistryKeyNotWritable, err))
}
