package tokenfile

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "nested", "session.json"))
	require.NoError(t, err)
	return s
}

func TestSaveAndLoad(t *testing.T) {
	s := newStore(t)

	require.NoError(t, s.Save("the-token"))
	token, err := s.Load()
	require.NoError(t, err)
	require.Equal(t, "the-token", token)
}

func TestLoadMissingFile(t *testing.T) {
	s := newStore(t)
	_, err := s.Load()
	require.ErrorIs(t, err, ErrNoToken)
}

func TestClear(t *testing.T) {
	s := newStore(t)
	require.NoError(t, s.Save("tok"))
	require.NoError(t, s.Clear())

	_, err := s.Load()
	require.ErrorIs(t, err, ErrNoToken)

	// Clearing an absent file is not an error.
	require.NoError(t, s.Clear())
}

func TestSaveWritesFingerprintAndOwnerOnlyPerms(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "session.json")
	s, err := NewStore(path)
	require.NoError(t, err)
	require.NoError(t, s.Save("tok"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var rec map[string]any
	require.NoError(t, json.Unmarshal(data, &rec))
	require.Equal(t, Fingerprint("tok"), rec["fingerprint"])
	require.NotContains(t, rec["fingerprint"], "tok")

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestFingerprintStable(t *testing.T) {
	require.Equal(t, Fingerprint("a"), Fingerprint("a"))
	require.NotEqual(t, Fingerprint("a"), Fingerprint("b"))
}
