//go:build windows

package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"golang.org/x/sys/windows"
	"golang.org/x/sys/windows/registry"
)

// ResolvePaths returns the registry key and journal directory: machine-wide
// (HKEY_LOCAL_MACHINE, ProgramData) for elevated processes, per-user
// (HKEY_CURRENT_USER, LocalAppData) otherwise.
func ResolvePaths(privileged bool) (Paths, error) {
	if privileged {
		programData, err := windows.KnownFolderPath(windows.FOLDERID_ProgramData, 0)
		if err != nil {
			return Paths{}, fmt.Errorf("config: resolve ProgramData: %w", err)
		}
		return Paths{
			Privileged: true,
			Storage:    `HKEY_LOCAL_MACHINE\` + RegistryKeyPath,
			Journal:    filepath.Join(programData, ProductName),
		}, nil
	}

	cacheDir, err := os.UserCacheDir()
	if err != nil {
		return Paths{}, fmt.Errorf("config: resolve user cache directory: %w", err)
	}
	return Paths{
		Storage: `HKEY_CURRENT_USER\` + RegistryKeyPath,
		Journal: filepath.Join(cacheDir, ProductName),
	}, nil
}

// NewPlatformStore returns the registry store for the current identity.
func NewPlatformStore() (Store, error) {
	var store *RegistryStore
	if IsPrivileged() {
		store = NewRegistryStore(registry.LOCAL_MACHINE, "HKEY_LOCAL_MACHINE", RegistryKeyPath)
	} else {
		store = NewRegistryStore(registry.CURRENT_USER, "HKEY_CURRENT_USER", RegistryKeyPath)
	}
	log.Printf("[Config] Detected configuration key: %s", store.Location())
	return store, nil
}
