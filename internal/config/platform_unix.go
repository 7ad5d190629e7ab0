//go:build !darwin && !windows

package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
)

const (
	machineConfigDir = "/etc"
	machineStateDir  = "/var/lib/shutdown-on-lan"
)

// ResolvePaths returns /etc and /var/lib for root, and the XDG config and
// cache directories otherwise.
func ResolvePaths(privileged bool) (Paths, error) {
	if privileged {
		return Paths{Privileged: true, Storage: machineConfigDir, Journal: machineStateDir}, nil
	}

	configDir, err := os.UserConfigDir()
	if err != nil {
		return Paths{}, fmt.Errorf("config: resolve user config directory: %w", err)
	}
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		return Paths{}, fmt.Errorf("config: resolve user cache directory: %w", err)
	}

	return Paths{
		Storage: filepath.Join(configDir, ProductName),
		Journal: filepath.Join(cacheDir, ProductName),
	}, nil
}

// NewPlatformStore returns the INI file store for the current identity.
func NewPlatformStore() (Store, error) {
	paths, err := CurrentPaths()
	if err != nil {
		return nil, err
	}
	log.Printf("[Config] Detected configuration path: %s", paths.Storage)
	return NewFileStore(paths.Storage, FileBaseName, INICodec{}), nil
}
