//go:build unix

package config

import "golang.org/x/sys/unix"

// IsPrivileged reports whether the process runs as root.
func IsPrivileged() bool {
	return unix.Geteuid() == 0
}
