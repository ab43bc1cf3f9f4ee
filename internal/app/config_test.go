package app

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfigMissingFileGivesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "config.yml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.ServerURL != "http://localhost:8000" || cfg.UserID != "default_user" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.StreamDelayMs != 50 || cfg.Storage != "file" || cfg.Theme != "auto" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
}

func TestLoadConfigClampsBadValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	body := "server_url: https://chat.example.com\nstorage: bolt\nstream_delay_ms: -10\ntheme: neon\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.ServerURL != "https://chat.example.com" {
		t.Fatalf("server url = %q", cfg.ServerURL)
	}
	if cfg.Storage != "file" {
		t.Fatalf("unknown storage should fall back to file, got %q", cfg.Storage)
	}
	if cfg.StreamDelayMs != 50 {
		t.Fatalf("delay should clamp to default, got %d", cfg.StreamDelayMs)
	}
	if cfg.Theme != "auto" {
		t.Fatalf("unknown theme should fall back to auto, got %q", cfg.Theme)
	}
}

func TestSaveLoadConfigRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yml")
	want := Config{
		ServerURL:     "http://10.0.0.5:9000",
		UserID:        "pat",
		Storage:       "sqlite",
		StreamDelayMs: 25,
		Theme:         "dark",
		SpeechCommand: "transcribe --once",
	}
	if err := SaveConfig(want, path); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got != want {
		t.Fatalf("round trip mismatch:\n want %+v\n got  %+v", want, got)
	}
}
