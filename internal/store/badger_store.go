package store

import (
	"github.com/dgraph-io/badger"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"authstate/internal/domain"
)

// BadgerStore is a Badger-backed store with synchronous writes.
type BadgerStore struct {
	db *badger.DB
}

// NewBadgerStore opens (or creates) the database at dir. Badger's own log
// output is routed to log.
func NewBadgerStore(dir string, log *zap.Logger) (*BadgerStore, error) {
	if log == nil {
		log = zap.NewNop()
	}
	opts := badger.DefaultOptions(dir).
		WithSyncWrites(true).
		WithLogger(badgerLogger{log.Named("badger").Sugar()})

	db, err := badger.Open(opts)
	if err != nil {
		return nil, errors.Wrapf(err, "open badger %s", dir)
	}
	return &BadgerStore{db: db}, nil
}

// ReadRaw returns the value for key, or nil if absent.
func (s *BadgerStore) ReadRaw(key string) ([]byte, error) {
	var out []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		out, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		return nil, errors.Wrapf(err, "badger get %s", key)
	}
	return out, nil
}

// WriteRaw replaces the value for key; nil deletes it.
func (s *BadgerStore) WriteRaw(key string, value []byte) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		if value == nil {
			return txn.Delete([]byte(key))
		}
		return txn.Set([]byte(key), value)
	})
	return errors.Wrapf(err, "badger write %s", key)
}

// Close flushes and closes the database.
func (s *BadgerStore) Close() error { return s.db.Close() }

// badgerLogger adapts zap to badger.Logger.
type badgerLogger struct {
	s *zap.SugaredLogger
}

func (l badgerLogger) Errorf(f string, v ...interface{})   { l.s.Errorf(f, v...) }
func (l badgerLogger) Warningf(f string, v ...interface{}) { l.s.Warnf(f, v...) }
func (l badgerLogger) Infof(f string, v ...interface{})    { l.s.Debugf(f, v...) }
func (l badgerLogger) Debugf(f string, v ...interface{})   { l.s.Debugf(f, v...) }

// Compile-time assertion that BadgerStore implements domain.RawStore.
var _ domain.RawStore = (*BadgerStore)(nil)
