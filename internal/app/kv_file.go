package app

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
)

// FileKV stores one file per key under Root. It is the default backend and
// deliberately boring: whole-value reads and writes, nothing incremental.
type FileKV struct {
	Root string
}

func NewFileKV(root string) *FileKV {
	if strings.TrimSpace(root) == "" {
		root = DefaultDataRoot()
	}
	return &FileKV{Root: filepath.Clean(root)}
}

func (s *FileKV) path(key string) string {
	return filepath.Join(s.Root, key+".json")
}

func (s *FileKV) Get(key string) (string, bool, error) {
	b, err := os.ReadFile(s.path(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", false, nil
		}
		return "", false, err
	}
	return string(b), true, nil
}

func (s *FileKV) Set(key, value string) error {
	if err := os.MkdirAll(s.Root, 0o755); err != nil {
		return err
	}
	return os.WriteFile(s.path(key), []byte(value), 0o644)
}
