package tts

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Store persists generated audio under a single asset directory. File
// names are provided by the caller and must not carry path separators.
type Store struct {
	dir string
}

func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create asset directory: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Save writes audio bytes under the asset directory
func (s *Store) Save(fileName string, audio []byte) error {
	if !validAssetName(fileName) {
		return fmt.Errorf("invalid asset name: %q", fileName)
	}
	path := filepath.Join(s.dir, fileName)
	if err := os.WriteFile(path, audio, 0o644); err != nil {
		return fmt.Errorf("failed to save audio asset: %w", err)
	}
	return nil
}

// Open resolves an asset name to a path inside the store. Names with
// path separators or traversal segments are rejected.
func (s *Store) Open(fileName string) (string, error) {
	if !validAssetName(fileName) {
		return "", fmt.Errorf("invalid asset name: %q", fileName)
	}
	path := filepath.Join(s.dir, fileName)
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("asset not found: %w", err)
	}
	return path, nil
}

func validAssetName(name string) bool {
	if name == "" || name != filepath.Base(name) {
		return false
	}
	if strings.Contains(name, "..") || strings.ContainsAny(name, `/\`) {
		return false
	}
	return true
}
