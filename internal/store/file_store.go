package store

import (
	"net/url"
	"os"
	"path/filepath"
	"sync"

	"github.com/pkg/errors"

	"authstate/internal/domain"
)

const fileExt = ".json"

// FileStore keeps one file per key under dir.
type FileStore struct {
	dir string
	mu  sync.Mutex
}

// NewFileStore returns a FileStore rooted at dir, creating it if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, errors.Wrapf(err, "create store dir %s", dir)
	}
	return &FileStore{dir: dir}, nil
}

// ReadRaw returns the stored bytes for key, or nil if absent.
func (s *FileStore) ReadRaw(key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := readFile(s.path(key))
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", key)
	}
	return b, nil
}

// WriteRaw replaces the value for key; nil removes it.
func (s *FileStore) WriteRaw(key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := s.path(key)
	if value == nil {
		return errors.Wrapf(removeFile(path), "remove %s", key)
	}
	return errors.Wrapf(writeFile(path, value, 0o600), "write %s", key)
}

// Close is a no-op; files are closed after every write.
func (s *FileStore) Close() error { return nil }

// path maps key to a file name that is safe on every platform.
func (s *FileStore) path(key string) string {
	return filepath.Join(s.dir, url.QueryEscape(key)+fileExt)
}

// Compile-time assertion that FileStore implements domain.RawStore.
var _ domain.RawStore = (*FileStore)(nil)
