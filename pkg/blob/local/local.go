package local

import (
	"context"
	"errors"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/traqcheck/candidateverify/pkg/blob"
)

// Storage keeps blobs as plain files under a base directory.
type Storage struct {
	baseDir string
}

func New(baseDir string) *Storage {
	if baseDir == "" {
		baseDir = "uploads"
	}
	return &Storage{baseDir: baseDir}
}

func (s *Storage) Put(ctx context.Context, key, contentType string, data []byte) error {
	path, err := s.resolve(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func (s *Storage) Get(ctx context.Context, key string) ([]byte, string, error) {
	path, err := s.resolve(key)
	if err != nil {
		return nil, "", err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, "", blob.ErrNotFound
		}
		return nil, "", err
	}
	return data, detectContentType(path, data), nil
}

func (s *Storage) Delete(ctx context.Context, key string) error {
	path, err := s.resolve(key)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return blob.ErrNotFound
		}
		return err
	}
	return nil
}

// resolve maps a key to a path under baseDir, rejecting traversal attempts.
func (s *Storage) resolve(key string) (string, error) {
	if key == "" || strings.HasPrefix(key, "/") || strings.Contains(key, "\\") || strings.Contains(key, "..") {
		return "", errors.New("invalid blob key")
	}
	return filepath.Join(s.baseDir, filepath.FromSlash(key)), nil
}

func detectContentType(path string, data []byte) string {
	if ct := mime.TypeByExtension(filepath.Ext(path)); ct != "" {
		return ct
	}
	return http.DetectContentType(data)
}
