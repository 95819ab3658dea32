package store

import (
	"fmt"
	"path/filepath"

	"go.uber.org/zap"

	"authstate/internal/domain"
)

// Backend names accepted by Open.
const (
	BackendFile    = "file"
	BackendLevelDB = "leveldb"
	BackendBadger  = "badger"
	BackendMemory  = "memory"
)

// Open returns the backing store named by backend, rooted under home.
func Open(backend, home string, log *zap.Logger) (domain.RawStore, error) {
	switch backend {
	case BackendFile, "":
		return NewFileStore(filepath.Join(home, "state"))
	case BackendLevelDB:
		return NewLevelStore(filepath.Join(home, "state.ldb"))
	case BackendBadger:
		return NewBadgerStore(filepath.Join(home, "state.badger"), log)
	case BackendMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown backend %q", backend)
	}
}
