package app

import (
	"os"
	"path/filepath"
	"strings"
)

// KV is the persistence substrate: opaque string blobs behind string keys.
// Implementations must treat a missing key as (value="", ok=false) rather
// than an error.
type KV interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
}

const (
	kvKeySessions = "sessions"
	kvKeyDarkMode = "dark_mode"
)

// DefaultDataRoot resolves where pocketchat keeps its state. Prefer the XDG
// data dir, then the home directory, then a temp fallback.
func DefaultDataRoot() string {
	if base := strings.TrimSpace(os.Getenv("XDG_DATA_HOME")); base != "" {
		return filepath.Join(base, "pocketchat")
	}
	if base, err := os.UserHomeDir(); err == nil && base != "" {
		return filepath.Join(base, ".local", "share", "pocketchat")
	}
	return filepath.Join(os.TempDir(), "pocketchat")
}
