package config

import (
	"errors"
	"net/netip"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

var fileBackends = []struct {
	name  string
	file  string
	codec Codec
}{
	{name: "plist", file: FileBaseName + ".plist", codec: PlistCodec{}},
	{name: "ini", file: FileBaseName, codec: INICodec{}},
}

func newTestFileStores(t *testing.T) map[string]*FileStore {
	t.Helper()
	stores := make(map[string]*FileStore, len(fileBackends))
	for _, b := range fileBackends {
		dir := filepath.Join(t.TempDir(), ProductName)
		stores[b.name] = NewFileStore(dir, b.file, b.codec)
	}
	return stores
}

func sampleConfigurations() []Configuration {
	return []Configuration{
		Default(),
		{
			Port:      1234,
			Addresses: []netip.Addr{netip.MustParseAddr("10.0.1.1"), netip.MustParseAddr("10.0.1.1"), netip.MustParseAddr("fd00::7")},
			Secret:    "correct horse battery staple",
		},
		{Port: 0, Addresses: nil, Secret: ""},
		{Port: 65535, Addresses: []netip.Addr{netip.MustParseAddr("192.168.0.20")}, Secret: "p@ss=word!"},
	}
}

func TestFileStoreRoundTrip(t *testing.T) {
	t.Parallel()

	for name, store := range newTestFileStores(t) {
		t.Run(name, func(t *testing.T) {
			if err := store.EnsureStorage(); err != nil {
				t.Fatalf("EnsureStorage: %v", err)
			}
			for i, cfg := range sampleConfigurations() {
				if err := store.Save(cfg); err != nil {
					t.Fatalf("save #%d: %v", i, err)
				}
				got, err := store.Fetch()
				if err != nil {
					t.Fatalf("fetch #%d: %v", i, err)
				}
				if !got.Equal(cfg) {
					t.Fatalf("round trip #%d: got %+v; want %+v", i, got, cfg)
				}
			}
		})
	}
}

func TestFileStoreFetchMissing(t *testing.T) {
	t.Parallel()

	for name, store := range newTestFileStores(t) {
		t.Run(name, func(t *testing.T) {
			_, err := store.Fetch()
			if !errors.Is(err, ErrMissingConfigurationFile) {
				t.Fatalf("expected ErrMissingConfigurationFile, got %v", err)
			}
			if !IsMissing(err) {
				t.Fatal("IsMissing should report true")
			}
			var cfgErr *Error
			if !errors.As(err, &cfgErr) || cfgErr.Path != store.Path() {
				t.Fatalf("expected *Error for %s, got %#v", store.Path(), err)
			}
		})
	}
}

func TestValidateCreatesDefaults(t *testing.T) {
	t.Parallel()

	for name, store := range newTestFileStores(t) {
		t.Run(name, func(t *testing.T) {
			cfg, err := Validate(store)
			if err != nil {
				t.Fatalf("Validate: %v", err)
			}
			if !cfg.Equal(Default()) {
				t.Fatalf("Validate returned %+v; want defaults", cfg)
			}
			if _, err := os.Stat(store.Path()); err != nil {
				t.Fatalf("default configuration not persisted: %v", err)
			}
		})
	}
}

func TestEnsureConfigurationIdempotent(t *testing.T) {
	t.Parallel()

	for name, store := range newTestFileStores(t) {
		t.Run(name, func(t *testing.T) {
			if err := store.EnsureConfiguration(); err != nil {
				t.Fatalf("first EnsureConfiguration: %v", err)
			}
			first, err := os.ReadFile(store.Path())
			if err != nil {
				t.Fatalf("read after first ensure: %v", err)
			}

			if err := store.EnsureConfiguration(); err != nil {
				t.Fatalf("second EnsureConfiguration: %v", err)
			}
			second, err := os.ReadFile(store.Path())
			if err != nil {
				t.Fatalf("read after second ensure: %v", err)
			}
			if string(first) != string(second) {
				t.Fatalf("persisted state changed:\n%s\n---\n%s", first, second)
			}
		})
	}
}

func TestEnsureConfigurationKeepsExisting(t *testing.T) {
	t.Parallel()

	for name, store := range newTestFileStores(t) {
		t.Run(name, func(t *testing.T) {
			if err := store.EnsureStorage(); err != nil {
				t.Fatalf("EnsureStorage: %v", err)
			}
			custom := Default()
			custom.SetPort(4242)
			if err := store.Save(custom); err != nil {
				t.Fatalf("save: %v", err)
			}

			cfg, err := Validate(store)
			if err != nil {
				t.Fatalf("Validate: %v", err)
			}
			if cfg.Port != 4242 {
				t.Fatalf("existing configuration overwritten: port %d", cfg.Port)
			}
		})
	}
}

func TestFileStoreDelete(t *testing.T) {
	t.Parallel()

	for name, store := range newTestFileStores(t) {
		t.Run(name, func(t *testing.T) {
			if err := store.Delete(); err != nil {
				t.Fatalf("delete of absent configuration: %v", err)
			}
			if _, err := Validate(store); err != nil {
				t.Fatalf("Validate: %v", err)
			}
			if err := store.Delete(); err != nil {
				t.Fatalf("Delete: %v", err)
			}
			if _, err := store.Fetch(); !IsMissing(err) {
				t.Fatalf("expected missing configuration after delete, got %v", err)
			}
		})
	}
}

func TestResetRestoresDefaults(t *testing.T) {
	t.Parallel()

	for name, store := range newTestFileStores(t) {
		t.Run(name, func(t *testing.T) {
			cfg, err := Validate(store)
			if err != nil {
				t.Fatalf("Validate: %v", err)
			}
			cfg.SetSecret("temporary")
			if err := store.Save(cfg); err != nil {
				t.Fatalf("save: %v", err)
			}

			reset, err := Reset(store)
			if err != nil {
				t.Fatalf("Reset: %v", err)
			}
			if !reset.Equal(Default()) {
				t.Fatalf("Reset returned %+v; want defaults", reset)
			}
		})
	}
}

func TestFileStoreInvalidContents(t *testing.T) {
	t.Parallel()

	invalid := map[string][]string{
		"plist": {
			"",
			"not a property list at all <<<",
			`<?xml version="1.0" encoding="UTF-8"?><plist version="1.0"><array><string>x</string></array></plist>`,
			`<?xml version="1.0" encoding="UTF-8"?><plist version="1.0"><dict><key>port</key><integer>1</integer></dict></plist>`,
			`<?xml version="1.0" encoding="UTF-8"?><plist version="1.0"><dict><key>port</key><string>abc</string><key>ip_addresses</key><string></string><key>secret</key><string>s</string></dict></plist>`,
		},
		"ini": {
			"port=1234\nsecret=abc\n",
			"port=not-a-number\nip_addresses=\nsecret=abc\n",
			"port=70000\nip_addresses=\nsecret=abc\n",
			"this line has no delimiter\n",
		},
	}

	for name, store := range newTestFileStores(t) {
		t.Run(name, func(t *testing.T) {
			if err := store.EnsureStorage(); err != nil {
				t.Fatalf("EnsureStorage: %v", err)
			}
			for i, contents := range invalid[name] {
				if err := os.WriteFile(store.Path(), []byte(contents), 0o600); err != nil {
					t.Fatalf("write fixture: %v", err)
				}
				_, err := store.Fetch()
				if !errors.Is(err, ErrInvalidConfigurationFile) {
					t.Errorf("fixture #%d: expected ErrInvalidConfigurationFile, got %v", i, err)
				}
			}
		})
	}
}

func TestINIDecodeDropsMalformedAddresses(t *testing.T) {
	cfg, err := INICodec{}.Decode([]byte("port=9\nip_addresses=127.0.0.1,not-an-ip,10.0.0.5\nsecret=s\n"))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got := FormatAddresses(cfg.Addresses); got != "127.0.0.1,10.0.0.5" {
		t.Fatalf("addresses = %s; want 127.0.0.1,10.0.0.5", got)
	}
}

func TestPlistEncodingUsesPersistedKeys(t *testing.T) {
	data, err := PlistCodec{}.Encode(Default())
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	for _, key := range []string{"<key>port</key>", "<key>ip_addresses</key>", "<key>secret</key>", "<string>127.0.0.1</string>"} {
		if !strings.Contains(string(data), key) {
			t.Errorf("encoded plist missing %s:\n%s", key, data)
		}
	}
}

func TestSaveWithoutStorageFails(t *testing.T) {
	t.Parallel()

	for name, store := range newTestFileStores(t) {
		t.Run(name, func(t *testing.T) {
			err := store.Save(Default())
			if !errors.Is(err, ErrConfigurationFileUnwritable) {
				t.Fatalf("expected ErrConfigurationFileUnwritable, got %v", err)
			}
		})
	}
}

func TestEnsureStorageUnwritable(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("directory permissions are not enforced the same way on Windows")
	}
	if IsPrivileged() {
		t.Skip("root ignores directory permissions")
	}
	t.Parallel()

	parent := t.TempDir()
	if err := os.Chmod(parent, 0o500); err != nil {
		t.Fatalf("chmod: %v", err)
	}
	t.Cleanup(func() { os.Chmod(parent, 0o700) })

	store := NewFileStore(filepath.Join(parent, ProductName), FileBaseName, INICodec{})
	err := store.EnsureStorage()
	if !errors.Is(err, ErrStorageUnwritable) {
		t.Fatalf("expected ErrStorageUnwritable, got %v", err)
	}
	if !errors.Is(err, os.ErrPermission) {
		t.Fatalf("expected underlying permission error, got %v", err)
	}
	if _, err := Validate(store); !errors.Is(err, ErrStorageUnwritable) {
		t.Fatalf("Validate: expected ErrStorageUnwritable, got %v", err)
	}
}

func TestFileStoreSecretsRoundTripOrAreRejected(t *testing.T) {
	t.Parallel()

	const (
		roundTrip = iota
		rejected
		either
	)
	tests := []struct {
		secret string
		plist  int
		ini    int
	}{
		{secret: `"quoted"`, plist: roundTrip, ini: roundTrip},
		{secret: `'single'`, plist: roundTrip, ini: roundTrip},
		{secret: `ends\`, plist: roundTrip, ini: roundTrip},
		{secret: `# not a comment`, plist: roundTrip, ini: roundTrip},
		{secret: `semi;colon`, plist: roundTrip, ini: roundTrip},
		{secret: `<&>`, plist: roundTrip, ini: roundTrip},
		{secret: `"""x`, plist: roundTrip, ini: rejected},
		{secret: "ctrl\x01char", plist: rejected, ini: either},
		{secret: "two\nlines", plist: either, ini: either},
		{secret: " padded ", plist: either, ini: either},
	}

	for name, store := range newTestFileStores(t) {
		t.Run(name, func(t *testing.T) {
			previous := Default()
			if err := store.EnsureStorage(); err != nil {
				t.Fatalf("EnsureStorage: %v", err)
			}
			if err := store.Save(previous); err != nil {
				t.Fatalf("save default: %v", err)
			}

			for _, tc := range tests {
				want := tc.ini
				if name == "plist" {
					want = tc.plist
				}

				cfg := Default()
				cfg.SetSecret(tc.secret)
				saveErr := store.Save(cfg)
				got, err := store.Fetch()
				if err != nil {
					t.Fatalf("secret %q: fetch after save (save err %v): %v", tc.secret, saveErr, err)
				}

				if saveErr != nil {
					if !errors.Is(saveErr, ErrInvalidConfiguration) {
						t.Fatalf("secret %q: expected ErrInvalidConfiguration, got %v", tc.secret, saveErr)
					}
					if want == roundTrip {
						t.Fatalf("secret %q: expected round trip, save failed: %v", tc.secret, saveErr)
					}
					if !got.Equal(previous) {
						t.Fatalf("secret %q: rejected save changed the stored configuration to %+v", tc.secret, got)
					}
					continue
				}

				if want == rejected {
					t.Fatalf("secret %q: expected save to be rejected", tc.secret)
				}
				if got.Secret != tc.secret {
					t.Fatalf("secret round trip: got %q; want %q", got.Secret, tc.secret)
				}
				previous = got
			}
		})
	}
}
