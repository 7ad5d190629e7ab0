//go:build !unix && !windows

package config

func IsPrivileged() bool {
	return false
}
