package testutil

import (
	"testing"

	"github.com/shutdown-on-lan/shutdown-on-lan/internal/config"
)

func TestMemoryStoreBehavesLikeAStore(t *testing.T) {
	store := NewMemoryStore()

	if _, err := store.Fetch(); !config.IsMissing(err) {
		t.Fatalf("expected missing configuration, got %v", err)
	}

	cfg, err := config.Validate(store)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if !cfg.Equal(config.Default()) {
		t.Fatalf("Validate returned %+v; want defaults", cfg)
	}

	if err := store.EnsureConfiguration(); err != nil {
		t.Fatalf("EnsureConfiguration: %v", err)
	}
	if store.Saves != 1 {
		t.Fatalf("EnsureConfiguration not idempotent: %d saves", store.Saves)
	}

	cfg.SetPort(9)
	if err := store.Save(cfg); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := store.Fetch()
	if err != nil || !got.Equal(cfg) {
		t.Fatalf("round trip: %+v, %v", got, err)
	}

	if err := store.Delete(); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, ok := store.Current(); ok {
		t.Fatal("configuration still present after Delete")
	}
}

func TestOpenJournal(t *testing.T) {
	j := OpenJournal(t)
	if j.Path() == "" {
		t.Fatal("expected journal path")
	}
}
