package kv

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/go-faster/errors"
)

// FileStore is a Store backed by one file per key under a root directory.
// Slashes in keys map to subdirectories. Writes go through a temp file and
// rename, so a crash mid-write leaves the previous value intact.
type FileStore struct {
	root string
}

var _ Store = (*FileStore)(nil)

// NewFileStore creates the root directory if needed and returns a FileStore
// over it.
func NewFileStore(root string) (*FileStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, errors.Wrap(err, "create kv root")
	}
	return &FileStore{root: root}, nil
}

func (s *FileStore) path(key string) (string, error) {
	if !validKey(key) {
		return "", errors.Errorf("invalid key %q", key)
	}
	return filepath.Join(s.root, filepath.FromSlash(key)+".json"), nil
}

// Load returns the stored value for key, or ErrNotFound when absent.
func (s *FileStore) Load(key string) ([]byte, error) {
	path, err := s.path(key)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrapf(err, "read %q", key)
	}
	return data, nil
}

// Save overwrites the value for key atomically.
func (s *FileStore) Save(key string, value []byte) error {
	path, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrapf(err, "create dir for %q", key)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return errors.Wrapf(err, "create temp for %q", key)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(value); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return errors.Wrapf(err, "write %q", key)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return errors.Wrapf(err, "close temp for %q", key)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return errors.Wrapf(err, "rename temp for %q", key)
	}
	return nil
}

// Remove deletes the value for key. Removing an absent key is a no-op.
func (s *FileStore) Remove(key string) error {
	path, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return errors.Wrapf(err, "remove %q", key)
	}
	return nil
}

// WritableCheck returns a function suitable for a readiness probe: it writes
// and removes a sentinel key to verify the backing directory accepts writes.
func (s *FileStore) WritableCheck() func() error {
	return func() error {
		key := ".probe/" + strings.ReplaceAll(filepath.Base(s.root), "/", "_")
		if err := s.Save(key, []byte("ok")); err != nil {
			return err
		}
		return s.Remove(key)
	}
}
