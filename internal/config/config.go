package config

import (
	"net"
	"net/netip"
	"slices"
	"strconv"
	"strings"
)

const (
	DefaultPort   uint16 = 53632
	DefaultSecret        = "Super Secret String"
)

// Configuration is the persisted listener configuration.
type Configuration struct {
	Port      uint16       // TCP port the listener binds on all interfaces
	Addresses []netip.Addr // Source addresses expected to send the command (advisory)
	Secret    string       // Shared secret compared against peer input
}

// Default returns a fresh default configuration.
func Default() Configuration {
	return Configuration{
		Port:      DefaultPort,
		Addresses: []netip.Addr{netip.AddrFrom4([4]byte{127, 0, 0, 1})},
		Secret:    DefaultSecret,
	}
}

// SetPort updates the listening port.
func (c *Configuration) SetPort(port uint16) {
	c.Port = port
}

// SetAddresses replaces the address list with the parsed contents of a
// comma-separated string. Tokens that are not IP addresses are dropped.
func (c *Configuration) SetAddresses(list string) {
	c.Addresses = ParseAddresses(list)
}

// SetSecret updates the shared secret.
func (c *Configuration) SetSecret(secret string) {
	c.Secret = secret
}

// ListenAddress returns the wildcard host:port the listener binds.
func (c Configuration) ListenAddress() string {
	return net.JoinHostPort("0.0.0.0", strconv.Itoa(int(c.Port)))
}

// Equal reports whether two configurations hold the same values.
func (c Configuration) Equal(other Configuration) bool {
	return c.Port == other.Port &&
		c.Secret == other.Secret &&
		slices.Equal(c.Addresses, other.Addresses)
}

// Clone returns a copy that shares no memory with c.
func (c Configuration) Clone() Configuration {
	c.Addresses = slices.Clone(c.Addresses)
	return c
}

// ParseAddresses splits list on commas and parses each token as an IP
// address. Unparseable tokens are silently discarded.
func ParseAddresses(list string) []netip.Addr {
	tokens := strings.Split(list, ",")
	addrs := make([]netip.Addr, 0, len(tokens))
	for _, token := range tokens {
		addr, err := netip.ParseAddr(token)
		if err != nil {
			continue
		}
		addrs = append(addrs, addr)
	}
	return addrs
}

// FormatAddresses joins addrs into the comma-separated persisted form.
func FormatAddresses(addrs []netip.Addr) string {
	parts := make([]string, len(addrs))
	for i, addr := range addrs {
		parts[i] = addr.String()
	}
	return strings.Join(parts, ",")
}

// Contains reports whether addr is one of the configured addresses.
// IPv4-mapped IPv6 addresses match their IPv4 form.
func (c Configuration) Contains(addr netip.Addr) bool {
	addr = addr.Unmap()
	for _, candidate := range c.Addresses {
		if candidate.Unmap() == addr {
			return true
		}
	}
	return false
}
