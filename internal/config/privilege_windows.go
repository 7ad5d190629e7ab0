//go:build windows

package config

import "golang.org/x/sys/windows"

// IsPrivileged reports whether the process token is elevated, which is
// the case for services running as LocalSystem and for "Run as
// administrator" sessions.
func IsPrivileged() bool {
	return windows.GetCurrentProcessToken().IsElevated()
}
