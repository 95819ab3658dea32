package interfaces

// RawStore is the durable backing store for serialized records.
//
// ReadRaw returns (nil, nil) for a key that was never written or was deleted.
// WriteRaw with a nil value deletes the key.
type RawStore interface {
	ReadRaw(key string) ([]byte, error)
	WriteRaw(key string, value []byte) error
	Close() error
}
