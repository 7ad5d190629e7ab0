package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
)

// Codec converts a Configuration to and from a document file.
type Codec interface {
	Encode(Configuration) ([]byte, error)
	Decode([]byte) (Configuration, error)
}

// FileStore keeps the configuration in a single document file inside a
// storage directory. The document format is supplied by a Codec.
type FileStore struct {
	dir   string
	name  string
	codec Codec
}

// NewFileStore returns a store for dir/name using codec.
func NewFileStore(dir, name string, codec Codec) *FileStore {
	return &FileStore{dir: dir, name: name, codec: codec}
}

// Location returns the storage directory.
func (s *FileStore) Location() string {
	return s.dir
}

// Path returns the configuration file path.
func (s *FileStore) Path() string {
	return filepath.Join(s.dir, s.name)
}

func (s *FileStore) EnsureStorage() error {
	info, err := os.Stat(s.dir)
	if err == nil && info.IsDir() {
		return nil
	}

	log.Printf("[Config] Creating configuration storage at %s", s.dir)
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return newError("ensure-storage", s.dir, ErrStorageUnwritable, err)
	}
	return nil
}

func (s *FileStore) EnsureConfiguration() error {
	return ensureDefault(s, func() (bool, error) {
		_, err := os.Stat(s.Path())
		switch {
		case err == nil:
			return true, nil
		case errors.Is(err, fs.ErrNotExist):
			return false, nil
		default:
			return false, fmt.Errorf("config: stat %s: %w", s.Path(), err)
		}
	})
}

func (s *FileStore) Fetch() (Configuration, error) {
	path := s.Path()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Configuration{}, newError("fetch", path, ErrMissingConfigurationFile, err)
		}
		return Configuration{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	cfg, err := s.codec.Decode(data)
	if err != nil {
		return Configuration{}, newError("fetch", path, ErrInvalidConfigurationFile, err)
	}
	return cfg, nil
}

func (s *FileStore) Save(cfg Configuration) error {
	path := s.Path()
	data, err := s.codec.Encode(cfg)
	if err != nil {
		return newError("save", path, ErrInvalidConfiguration, err)
	}

	log.Printf("[Config] Writing configuration to %s", path)

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o600); err != nil {
		os.Remove(tmpPath)
		return newError("save", path, ErrConfigurationFileUnwritable, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return newError("save", path, ErrConfigurationFileUnwritable, err)
	}
	return nil
}

func (s *FileStore) Delete() error {
	path := s.Path()
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return newError("delete", path, ErrConfigurationFileUnwritable, err)
	}
	return nil
}
