package config

import (
	"net/netip"
	"slices"
	"testing"
)

func TestParseAddressesDropsMalformedTokens(t *testing.T) {
	got := ParseAddresses("127.0.0.1,not-an-ip,10.0.0.5")
	want := []netip.Addr{
		netip.MustParseAddr("127.0.0.1"),
		netip.MustParseAddr("10.0.0.5"),
	}
	if !slices.Equal(got, want) {
		t.Fatalf("ParseAddresses() = %v; want %v", got, want)
	}
}

func TestParseAddresses(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{name: "empty", input: "", want: nil},
		{name: "single", input: "192.168.1.10", want: []string{"192.168.1.10"}},
		{name: "ipv6", input: "::1,fe80::1", want: []string{"::1", "fe80::1"}},
		{name: "duplicates kept", input: "10.0.0.1,10.0.0.1", want: []string{"10.0.0.1", "10.0.0.1"}},
		{name: "whitespace is not trimmed", input: "10.0.0.1, 10.0.0.2", want: []string{"10.0.0.1"}},
		{name: "trailing comma", input: "10.0.0.1,", want: []string{"10.0.0.1"}},
		{name: "all invalid", input: "foo,bar,300.1.1.1", want: nil},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := ParseAddresses(tc.input)
			if len(got) != len(tc.want) {
				t.Fatalf("ParseAddresses(%q) returned %d addresses (%v); want %d", tc.input, len(got), got, len(tc.want))
			}
			for i, addr := range got {
				if addr.String() != tc.want[i] {
					t.Errorf("address %d = %s; want %s", i, addr, tc.want[i])
				}
			}
		})
	}
}

func TestFormatAddressesRoundTrip(t *testing.T) {
	addrs := []netip.Addr{
		netip.MustParseAddr("10.0.1.1"),
		netip.MustParseAddr("2001:db8::5"),
	}
	joined := FormatAddresses(addrs)
	if joined != "10.0.1.1,2001:db8::5" {
		t.Fatalf("FormatAddresses() = %q", joined)
	}
	if got := ParseAddresses(joined); !slices.Equal(got, addrs) {
		t.Fatalf("ParseAddresses(FormatAddresses()) = %v; want %v", got, addrs)
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Port != 53632 {
		t.Errorf("default port = %d; want 53632", cfg.Port)
	}
	if cfg.Secret != "Super Secret String" {
		t.Errorf("default secret = %q", cfg.Secret)
	}
	if len(cfg.Addresses) != 1 || cfg.Addresses[0] != netip.MustParseAddr("127.0.0.1") {
		t.Errorf("default addresses = %v; want [127.0.0.1]", cfg.Addresses)
	}
	if cfg.ListenAddress() != "0.0.0.0:53632" {
		t.Errorf("ListenAddress() = %s", cfg.ListenAddress())
	}
}

func TestDefaultReturnsIndependentValues(t *testing.T) {
	a := Default()
	a.Addresses[0] = netip.MustParseAddr("10.9.9.9")
	a.SetSecret("changed")

	b := Default()
	if !b.Equal(Default()) || b.Secret != DefaultSecret {
		t.Fatal("mutating one default configuration leaked into another")
	}
	if b.Addresses[0] != netip.MustParseAddr("127.0.0.1") {
		t.Fatalf("default address changed to %s", b.Addresses[0])
	}
}

func TestSetters(t *testing.T) {
	cfg := Default()
	cfg.SetPort(1234)
	cfg.SetAddresses("10.0.1.1")
	cfg.SetSecret("hunter2")

	if cfg.Port != 1234 {
		t.Errorf("port = %d; want 1234", cfg.Port)
	}
	if got := FormatAddresses(cfg.Addresses); got != "10.0.1.1" {
		t.Errorf("addresses = %s; want 10.0.1.1", got)
	}
	if cfg.Secret != "hunter2" {
		t.Errorf("secret = %q; want hunter2", cfg.Secret)
	}
}

func TestCloneDoesNotShareAddresses(t *testing.T) {
	original := Default()
	clone := original.Clone()
	clone.Addresses[0] = netip.MustParseAddr("10.0.0.1")

	if original.Addresses[0] == clone.Addresses[0] {
		t.Fatal("Clone() shares the address slice with the original")
	}
}

func TestContainsUnmapsIPv4(t *testing.T) {
	cfg := Default()

	if !cfg.Contains(netip.MustParseAddr("::ffff:127.0.0.1")) {
		t.Error("expected IPv4-mapped loopback to match 127.0.0.1")
	}
	if cfg.Contains(netip.MustParseAddr("10.0.0.1")) {
		t.Error("10.0.0.1 should not be in the default set")
	}
}
