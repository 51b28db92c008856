// Package file stores snapshot slots as files under a root directory.
package file

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/honeycarbs/listing-watch/internal/domain"
)

// Store maps keys such as "brussels/latest.txt" to files below root
type Store struct {
	root string
}

// NewStore creates root if needed
func NewStore(root string) (*Store, error) {
	if root == "" {
		return nil, fmt.Errorf("file: root directory is required")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("file: create root: %w", err)
	}
	return &Store{root: root}, nil
}

func (s *Store) path(key string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(key))
	if clean == "." || filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("file: invalid key %q", key)
	}
	return filepath.Join(s.root, clean), nil
}

func (s *Store) Get(_ context.Context, key string) (string, error) {
	p, err := s.path(key)
	if err != nil {
		return "", err
	}

	b, err := os.ReadFile(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", domain.ErrSnapshotNotFound
		}
		return "", fmt.Errorf("file: read %s: %w", key, err)
	}
	return string(b), nil
}

// Put writes through a temp file and rename so readers never see a partial snapshot
func (s *Store) Put(_ context.Context, key, value string) error {
	p, err := s.path(key)
	if err != nil {
		return err
	}
	return writeAtomic(p, []byte(value))
}

func (s *Store) Copy(ctx context.Context, srcKey, dstKey string) error {
	v, err := s.Get(ctx, srcKey)
	if err != nil {
		return err
	}
	return s.Put(ctx, dstKey, v)
}

func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("file: create dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("file: create temp: %w", err)
	}
	defer func() {
		_ = os.Remove(tmp.Name())
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("file: write: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("file: close: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("file: rename: %w", err)
	}
	return nil
}
