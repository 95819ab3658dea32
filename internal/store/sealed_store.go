package store

import (
	"crypto/cipher"
	"crypto/rand"
	"encoding/json"

	"github.com/pkg/errors"
	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/scrypt"

	"authstate/internal/domain"
	"authstate/internal/util/memzero"
)

const (
	// The current supported version of the sealed record format.
	sealedFormatVersion = 1

	sealedSaltKey  = "sealed:salt"
	sealedCheckKey = "sealed:check"
	saltBytes      = 16
)

var (
	// ErrWrongPassphrase is returned when the passphrase is incorrect or a
	// sealed record has been modified or moved to another key.
	ErrWrongPassphrase = errors.New("wrong passphrase or corrupted record")

	sealedCheckValue = []byte("authstate")
)

// sealedRecord is the stored JSON structure of one sealed value.
type sealedRecord struct {
	V      int    `json:"v"`
	Nonce  []byte `json:"nonce"`
	Cipher []byte `json:"cipher"`
}

// ScryptParams are the key derivation cost parameters.
type ScryptParams struct {
	N, R, P int
}

// DefaultScryptParams returns the production key derivation cost.
func DefaultScryptParams() ScryptParams { return ScryptParams{N: 1 << 15, R: 8, P: 1} }

// SealedOption configures a SealedStore.
type SealedOption func(*SealedStore)

// WithScryptParams overrides the key derivation cost.
func WithScryptParams(p ScryptParams) SealedOption {
	return func(s *SealedStore) { s.params = p }
}

// WithSealedKeys limits sealing to keys for which match returns true. Other
// keys pass through to the inner store unchanged.
func WithSealedKeys(match func(key string) bool) SealedOption {
	return func(s *SealedStore) { s.match = match }
}

// SealedStore encrypts values before handing them to an inner store. The key
// is derived once from a passphrase and a salt persisted in the inner store.
// Each record's key is bound as associated data, so a sealed value copied to
// another key fails to open.
type SealedStore struct {
	inner  domain.RawStore
	aead   cipher.AEAD
	params ScryptParams
	match  func(key string) bool
}

// NewSealedStore derives the sealing key for passphrase and verifies it
// against the check record written the first time the store was opened.
func NewSealedStore(inner domain.RawStore, passphrase string, opts ...SealedOption) (*SealedStore, error) {
	s := &SealedStore{inner: inner, params: DefaultScryptParams()}
	for _, opt := range opts {
		opt(s)
	}

	salt, err := inner.ReadRaw(sealedSaltKey)
	if err != nil {
		return nil, err
	}
	if salt == nil {
		salt = make([]byte, saltBytes)
		if _, err := rand.Read(salt); err != nil {
			return nil, err
		}
		if err := inner.WriteRaw(sealedSaltKey, salt); err != nil {
			return nil, err
		}
	}

	pw := []byte(passphrase)
	key, err := scrypt.Key(pw, salt, s.params.N, s.params.R, s.params.P, chacha20poly1305.KeySize)
	memzero.Zero(pw)
	if err != nil {
		return nil, errors.Wrap(err, "derive sealing key")
	}
	defer memzero.Zero(key)
	if s.aead, err = chacha20poly1305.NewX(key); err != nil {
		return nil, err
	}

	check, err := s.readSealed(sealedCheckKey)
	if err != nil {
		return nil, err
	}
	if check == nil {
		if err := s.writeSealed(sealedCheckKey, sealedCheckValue); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// ReadRaw returns the opened value for key, or nil if absent. A plain value
// stored before sealing was enabled is returned as is and sealed in place.
func (s *SealedStore) ReadRaw(key string) ([]byte, error) {
	if !s.sealed(key) {
		return s.inner.ReadRaw(key)
	}
	return s.readSealed(key)
}

// WriteRaw seals value and stores it under key; nil removes the key.
func (s *SealedStore) WriteRaw(key string, value []byte) error {
	if !s.sealed(key) || value == nil {
		return s.inner.WriteRaw(key, value)
	}
	return s.writeSealed(key, value)
}

// Close closes the inner store.
func (s *SealedStore) Close() error { return s.inner.Close() }

func (s *SealedStore) sealed(key string) bool {
	return s.match == nil || s.match(key)
}

func (s *SealedStore) writeSealed(key string, value []byte) error {
	nonce := make([]byte, s.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return err
	}
	b, err := json.Marshal(sealedRecord{
		V:      sealedFormatVersion,
		Nonce:  nonce,
		Cipher: s.aead.Seal(nil, nonce, value, []byte(key)),
	})
	if err != nil {
		return err
	}
	return s.inner.WriteRaw(key, b)
}

func (s *SealedStore) readSealed(key string) ([]byte, error) {
	b, err := s.inner.ReadRaw(key)
	if err != nil || b == nil {
		return nil, err
	}
	if !json.Valid(b) {
		return nil, errors.Errorf("decode sealed %s: not a JSON record", key)
	}
	var rec sealedRecord
	if err := json.Unmarshal(b, &rec); err != nil || rec.V == 0 {
		// Written before sealing was enabled; seal it in place.
		if err := s.writeSealed(key, b); err != nil {
			return nil, errors.Wrapf(err, "seal plain %s", key)
		}
		return b, nil
	}
	if rec.V > sealedFormatVersion {
		return nil, errors.Errorf("unsupported sealed record version %d", rec.V)
	}
	if len(rec.Nonce) != s.aead.NonceSize() {
		return nil, ErrWrongPassphrase
	}
	pt, err := s.aead.Open(nil, rec.Nonce, rec.Cipher, []byte(key))
	if err != nil {
		return nil, ErrWrongPassphrase
	}
	return pt, nil
}

// Compile-time assertion that SealedStore implements domain.RawStore.
var _ domain.RawStore = (*SealedStore)(nil)
