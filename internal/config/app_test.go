package config

import "testing"

func TestLoadAppCollectsSections(t *testing.T) {
	t.Setenv("LOG_LEVEL", "warn")
	t.Setenv("STORE_DRIVER", "sqlite")
	t.Setenv("INITIAL_BALANCE", "25")

	cfg, err := LoadApp()
	if err != nil {
		t.Fatalf("LoadApp() error = %v", err)
	}
	if cfg.Log.Level != "warn" {
		t.Fatalf("Log.Level = %q, want warn", cfg.Log.Level)
	}
	if cfg.Store.Driver != "sqlite" {
		t.Fatalf("Store.Driver = %q, want sqlite", cfg.Store.Driver)
	}
	if cfg.Client.InitialBalance != 25 {
		t.Fatalf("Client.InitialBalance = %d, want 25", cfg.Client.InitialBalance)
	}
}

func TestLoadAppFailsOnBadSection(t *testing.T) {
	t.Setenv("SLOT_COUNT", "nine")

	if _, err := LoadApp(); err == nil {
		t.Fatal("LoadApp() expected error, got nil")
	}
}
