package app

import (
	"errors"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

type Config struct {
	ServerURL     string `yaml:"server_url"`
	UserID        string `yaml:"user_id"`
	Storage       string `yaml:"storage"` // file|sqlite
	DataRoot      string `yaml:"data_root"`
	StreamDelayMs int    `yaml:"stream_delay_ms"`
	Theme         string `yaml:"theme"` // light|dark|auto
	SpeechCommand string `yaml:"speech_command"`
}

func DefaultConfig() Config {
	return Config{
		ServerURL:     "http://localhost:8000",
		UserID:        "default_user",
		Storage:       "file",
		StreamDelayMs: 50,
		Theme:         "auto",
	}
}

func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	if cfg.ServerURL == "" {
		cfg.ServerURL = "http://localhost:8000"
	}
	if cfg.UserID == "" {
		cfg.UserID = "default_user"
	}
	if cfg.Storage != "file" && cfg.Storage != "sqlite" {
		cfg.Storage = "file"
	}
	if cfg.StreamDelayMs <= 0 {
		cfg.StreamDelayMs = 50
	}
	switch cfg.Theme {
	case "light", "dark", "auto":
	default:
		cfg.Theme = "auto"
	}
	return cfg, nil
}

func SaveConfig(cfg Config, path string) error {
	if path == "" {
		return errors.New("no path provided for config")
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func DefaultConfigPath() string {
	base, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(base, "pocketchat", "config.yml")
}
