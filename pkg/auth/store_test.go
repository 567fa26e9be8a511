package auth

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"
)

func TestStore_Keyring(t *testing.T) {
	keyring.MockInit()
	s := NewStore("", t.TempDir())

	_, err := s.Get(KeySourceURI)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Set(KeySourceURI, "postgres://u:p@db/bureau"))
	v, err := s.Get(KeySourceURI)
	require.NoError(t, err)
	assert.Equal(t, "postgres://u:p@db/bureau", v)

	require.NoError(t, s.Delete(KeySourceURI))
	_, err = s.Get(KeySourceURI)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, s.Delete(KeySourceURI), ErrNotFound)
}

func TestStore_SetValidation(t *testing.T) {
	keyring.MockInit()
	s := NewStore("test", t.TempDir())
	assert.Error(t, s.Set("", "v"))
	assert.Error(t, s.Set(KeySourceToken, ""))
}

func TestStore_FileFallback(t *testing.T) {
	keyring.MockInit()
	dir := t.TempDir()
	s := NewStore("test", dir)

	// a secret left on disk is read when the keyring has none
	require.NoError(t, os.WriteFile(filepath.Join(dir, "test_"+KeySourceToken), []byte("abc\n"), 0o600))
	v, err := s.Get(KeySourceToken)
	require.NoError(t, err)
	assert.Equal(t, "abc", v)

	// saving to the keyring removes the file copy
	require.NoError(t, s.Set(KeySourceToken, "xyz"))
	_, err = os.Stat(filepath.Join(dir, "test_"+KeySourceToken))
	assert.True(t, os.IsNotExist(err))

	v, err = s.Get(KeySourceToken)
	require.NoError(t, err)
	assert.Equal(t, "xyz", v)
}

func TestStore_NoDir(t *testing.T) {
	keyring.MockInit()
	s := NewStore("test", "")
	_, err := s.Get(KeySourceURI)
	assert.ErrorIs(t, err, ErrNotFound)
}
