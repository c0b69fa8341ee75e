package media

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// URLPrefix is the path under which the local store's objects are served.
const URLPrefix = "/media/"

// LocalStore keeps objects as files under a base directory. Used in
// development and tests; the files are served by a static route.
type LocalStore struct {
	baseDir string
}

// NewLocalStore creates a LocalStore rooted at baseDir.
func NewLocalStore(baseDir string) (*LocalStore, error) {
	if baseDir == "" {
		return nil, fmt.Errorf("media upload dir not configured")
	}
	if err := os.MkdirAll(baseDir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create media upload dir: %w", err)
	}
	return &LocalStore{baseDir: baseDir}, nil
}

// BaseDir returns the root directory objects are written under.
func (s *LocalStore) BaseDir() string {
	return s.baseDir
}

func (s *LocalStore) Put(_ context.Context, key string, data []byte, _ string) (string, error) {
	if !validKey(key) {
		return "", fmt.Errorf("invalid media key %q", key)
	}
	path := filepath.Join(s.baseDir, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return "", err
	}
	return URLPrefix + key, nil
}

func (s *LocalStore) Delete(_ context.Context, url string) error {
	key, ok := s.KeyFor(url)
	if !ok {
		return nil
	}
	err := os.Remove(filepath.Join(s.baseDir, filepath.FromSlash(key)))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func (s *LocalStore) KeyFor(url string) (string, bool) {
	if !strings.HasPrefix(url, URLPrefix) {
		return "", false
	}
	key := strings.TrimPrefix(url, URLPrefix)
	if !validKey(key) {
		return "", false
	}
	return key, true
}

// validKey rejects traversal attempts and absolute paths in object keys.
func validKey(key string) bool {
	if key == "" || strings.HasPrefix(key, "/") {
		return false
	}
	for _, part := range strings.Split(key, "/") {
		if part == "" || part == "." || part == ".." {
			return false
		}
	}
	return true
}
