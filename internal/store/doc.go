// Package store provides the durable backing stores for authstate.
//
// Every store implements domain.RawStore: opaque byte values keyed by a
// deterministic string. A missing key reads as nil and writing nil deletes.
// All methods are concurrency-safe.
//
// The package includes:
//   - Per-key JSON files under a directory (FileStore)
//   - LevelDB (LevelStore)
//   - Badger (BadgerStore)
//   - An in-process map (MemoryStore)
//   - A passphrase-sealed decorator for secret values (SealedStore)
//
// Open selects one of the first four by backend name.
package store
