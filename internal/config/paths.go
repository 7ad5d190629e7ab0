package config

import (
	"os"
	"path/filepath"
)

const (
	// ProductName names the storage directory and registry key.
	ProductName = "ShutdownOnLan"
	// FileBaseName is the configuration file name used by the file backends.
	FileBaseName = "ShutDownOnLan"
	// JournalFileName is the attempt journal database inside the journal directory.
	JournalFileName = "attempts.db"
)

// Paths contains the locations resolved for the current identity.
type Paths struct {
	Privileged bool   // Resolved for the administrative account
	Storage    string // Configuration directory or registry key
	Journal    string // Directory holding the attempt journal
}

// JournalDB returns the attempt journal database path.
func (p Paths) JournalDB() string {
	return filepath.Join(p.Journal, JournalFileName)
}

// CurrentPaths resolves the locations for the executing identity.
func CurrentPaths() (Paths, error) {
	return ResolvePaths(IsPrivileged())
}

// EnsureJournalDir creates the journal directory if it does not exist.
func EnsureJournalDir(p Paths) error {
	if err := os.MkdirAll(p.Journal, 0o755); err != nil {
		return newError("ensure-storage", p.Journal, ErrStorageUnwritable, err)
	}
	return nil
}
