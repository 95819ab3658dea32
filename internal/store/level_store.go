package store

import (
	"github.com/pkg/errors"
	"github.com/syndtr/goleveldb/leveldb"
	lerrors "github.com/syndtr/goleveldb/leveldb/errors"
	"github.com/syndtr/goleveldb/leveldb/filter"
	"github.com/syndtr/goleveldb/leveldb/opt"

	"authstate/internal/domain"
)

// LevelStore is a LevelDB-backed store. Writes are synced to disk before
// returning.
type LevelStore struct {
	db  *leveldb.DB
	wop *opt.WriteOptions
}

// NewLevelStore opens (or creates) the database at dir and recovers it if
// the manifest is corrupted.
func NewLevelStore(dir string) (*LevelStore, error) {
	db, err := leveldb.OpenFile(dir, &opt.Options{
		OpenFilesCacheCapacity: 16,
		BlockCacheCapacity:     4 * opt.MiB,
		WriteBuffer:            2 * opt.MiB,
		Filter:                 filter.NewBloomFilter(10),
	})
	if _, corrupted := err.(*lerrors.ErrCorrupted); corrupted {
		db, err = leveldb.RecoverFile(dir, nil)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "open leveldb %s", dir)
	}
	return &LevelStore{db: db, wop: &opt.WriteOptions{Sync: true}}, nil
}

// ReadRaw returns the value for key, or nil if absent.
func (s *LevelStore) ReadRaw(key string) ([]byte, error) {
	b, err := s.db.Get([]byte(key), nil)
	if err == leveldb.ErrNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "leveldb get %s", key)
	}
	return b, nil
}

// WriteRaw replaces the value for key; nil deletes it.
func (s *LevelStore) WriteRaw(key string, value []byte) error {
	if value == nil {
		return errors.Wrapf(s.db.Delete([]byte(key), s.wop), "leveldb delete %s", key)
	}
	return errors.Wrapf(s.db.Put([]byte(key), value, s.wop), "leveldb put %s", key)
}

// Close closes the database.
func (s *LevelStore) Close() error { return s.db.Close() }

// Compile-time assertion that LevelStore implements domain.RawStore.
var _ domain.RawStore = (*LevelStore)(nil)
