package config

import (
	"errors"
	"fmt"
)

var (
	ErrMissingConfigurationFile    = errors.New("no configuration file at path")
	ErrInvalidConfigurationFile    = errors.New("contents of configuration file are invalid")
	ErrInvalidConfiguration        = errors.New("configuration cannot be converted to its persisted representation")
	ErrStorageUnwritable           = errors.New("unable to write to configuration storage")
	ErrConfigurationFileUnwritable = errors.New("unable to write to configuration file")
	ErrRegistryKeyNotReadable      = errors.New("unable to read registry value")
	ErrRegistryKeyNotWritable      = errors.New("unable to write registry value")
)

// Error describes a failed store operation. Kind is one of the Err*
// sentinels above; Err carries the underlying cause when there is one.
type Error struct {
	Op   string // fetch, save, delete, ensure-storage
	Path string // file path or registry key/value
	Kind error
	Err  error
}

func (e *Error) Error() string {
	msg := e.Kind.Error()
	if e.Path != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Path)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return fmt.Sprintf("config: %s: %s", e.Op, msg)
}

// Unwrap exposes both the sentinel kind and the underlying cause to errors.Is/As.
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func newError(op, path string, kind, err error) error {
	return &Error{Op: op, Path: path, Kind: kind, Err: err}
}

// IsMissing returns true when err reports that no configuration exists yet.
func IsMissing(err error) bool {
	return errors.Is(err, ErrMissingConfigurationFile)
}
