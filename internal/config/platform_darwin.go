//go:build darwin

package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
)

const machineSupportDir = "/Library/Application Support"

// ResolvePaths returns the Application Support locations: machine-wide
// for root, under the home directory otherwise.
func ResolvePaths(privileged bool) (Paths, error) {
	base := machineSupportDir
	if !privileged {
		home, err := os.UserHomeDir()
		if err != nil {
			return Paths{}, fmt.Errorf("config: resolve home directory: %w", err)
		}
		base = filepath.Join(home, "Library", "Application Support")
	}

	dir := filepath.Join(base, ProductName)
	return Paths{Privileged: privileged, Storage: dir, Journal: dir}, nil
}

// NewPlatformStore returns the property list store for the current identity.
func NewPlatformStore() (Store, error) {
	paths, err := CurrentPaths()
	if err != nil {
		return nil, err
	}
	log.Printf("[Config] Detected configuration path: %s", paths.Storage)
	return NewFileStore(paths.Storage, FileBaseName+".plist", PlistCodec{}), nil
}
