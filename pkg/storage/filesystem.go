package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// LocalStorage keeps generated export files on the local disk under a
// single root directory. Filenames are always resolved relative to the
// root; anything trying to escape it is rejected.
type LocalStorage struct {
	root string
}

// NewLocalStorage creates the root directory if needed.
func NewLocalStorage(root string) (*LocalStorage, error) {
	if root == "" {
		root = "./exports"
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create export root: %w", err)
	}
	return &LocalStorage{root: root}, nil
}

// Save writes data under the root and returns the stored filename.
func (s *LocalStorage) Save(filename string, data []byte) (string, error) {
	path, err := s.resolve(filename)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write export %s: %w", filename, err)
	}
	return filename, nil
}

// Open returns a read-only handle for a stored export.
func (s *LocalStorage) Open(filename string) (*os.File, error) {
	path, err := s.resolve(filename)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open export %s: %w", filename, err)
	}
	return file, nil
}

// CleanupOlderThan deletes exports whose modification time is past the
// retention window and reports the removed filenames.
func (s *LocalStorage) CleanupOlderThan(retention time.Duration) ([]string, error) {
	cutoff := time.Now().Add(-retention)

	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, fmt.Errorf("scan export root: %w", err)
	}

	var removed []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(s.root, entry.Name())); err != nil && !os.IsNotExist(err) {
			return removed, fmt.Errorf("remove stale export %s: %w", entry.Name(), err)
		}
		removed = append(removed, entry.Name())
	}
	return removed, nil
}

// resolve joins filename onto the root and rejects traversal attempts.
// Token payloads carry filenames, so this is the trust boundary.
func (s *LocalStorage) resolve(filename string) (string, error) {
	cleaned := filepath.Clean(filename)
	if cleaned == "." || filepath.IsAbs(cleaned) || strings.Contains(cleaned, "..") {
		return "", fmt.Errorf("invalid export filename %q", filename)
	}
	return filepath.Join(s.root, cleaned), nil
}
