package store_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"authstate/internal/domain"
	"authstate/internal/store"
)

func openBackends(t *testing.T) map[string]domain.RawStore {
	t.Helper()
	out := map[string]domain.RawStore{}
	for _, backend := range []string{
		store.BackendFile,
		store.BackendLevelDB,
		store.BackendBadger,
		store.BackendMemory,
	} {
		s, err := store.Open(backend, t.TempDir(), nil)
		require.NoError(t, err, backend)
		t.Cleanup(func() { _ = s.Close() })
		out[backend] = s
	}
	return out
}

func TestRawStore_Contract(t *testing.T) {
	for name, s := range openBackends(t) {
		t.Run(name, func(t *testing.T) {
			got, err := s.ReadRaw("authstate:userKey_u1")
			require.NoError(t, err)
			assert.Nil(t, got, "never-written key reads as nil")

			require.NoError(t, s.WriteRaw("authstate:userKey_u1", []byte(`"K1"`)))
			require.NoError(t, s.WriteRaw("authstate:userKey_u2", []byte(`"K2"`)))

			got, err = s.ReadRaw("authstate:userKey_u1")
			require.NoError(t, err)
			assert.Equal(t, []byte(`"K1"`), got)

			require.NoError(t, s.WriteRaw("authstate:userKey_u1", nil))
			got, err = s.ReadRaw("authstate:userKey_u1")
			require.NoError(t, err)
			assert.Nil(t, got)

			// Deleting twice is fine.
			require.NoError(t, s.WriteRaw("authstate:userKey_u1", nil))

			got, err = s.ReadRaw("authstate:userKey_u2")
			require.NoError(t, err)
			assert.Equal(t, []byte(`"K2"`), got)
		})
	}
}

func TestFileStore_PersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	s, err := store.NewFileStore(dir)
	require.NoError(t, err)
	require.NoError(t, s.WriteRaw("authstate:state", []byte(`{"activeUserId":"u1"}`)))

	info, err := os.Stat(filepath.Join(dir, "authstate%3Astate.json"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	s2, err := store.NewFileStore(dir)
	require.NoError(t, err)
	got, err := s2.ReadRaw("authstate:state")
	require.NoError(t, err)
	assert.JSONEq(t, `{"activeUserId":"u1"}`, string(got))
}

func TestLevelStore_PersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	s, err := store.NewLevelStore(dir)
	require.NoError(t, err)
	require.NoError(t, s.WriteRaw("k", []byte("v")))
	require.NoError(t, s.Close())

	s, err = store.NewLevelStore(dir)
	require.NoError(t, err)
	defer s.Close()
	got, err := s.ReadRaw("k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), got)
}

func TestMemoryStore_CopiesValues(t *testing.T) {
	s := store.NewMemoryStore()
	v := []byte("abc")
	require.NoError(t, s.WriteRaw("k", v))
	v[0] = 'x'

	got, err := s.ReadRaw("k")
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), got)

	got[1] = 'y'
	again, _ := s.ReadRaw("k")
	assert.Equal(t, []byte("abc"), again)
}

func TestOpen_UnknownBackend(t *testing.T) {
	_, err := store.Open("sqlite", t.TempDir(), nil)
	assert.EqualError(t, err, `unknown backend "sqlite"`)
}
