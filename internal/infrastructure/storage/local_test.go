package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorageSave(t *testing.T) {
	dir := t.TempDir()
	st, err := NewLocalStorage(dir)
	require.NoError(t, err)

	t.Run("writes file and returns path", func(t *testing.T) {
		path, err := st.Save(context.Background(), "manifest.csv", []byte("a,b\n"))
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(dir, "manifest.csv"), path)

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "a,b\n", string(data))
	})

	t.Run("creates nested directories", func(t *testing.T) {
		path, err := st.Save(context.Background(), "run-1/manifest_us.csv", []byte("x"))
		require.NoError(t, err)
		assert.FileExists(t, path)
	})

	t.Run("rejects empty name", func(t *testing.T) {
		_, err := st.Save(context.Background(), "", nil)
		assert.ErrorIs(t, err, ErrEmptyName)
	})

	t.Run("rejects path escapes", func(t *testing.T) {
		_, err := st.Save(context.Background(), "../escape.csv", []byte("x"))
		assert.Error(t, err)

		_, err = st.Save(context.Background(), "/abs/escape.csv", []byte("x"))
		assert.Error(t, err)
	})
}

func TestNewLocalStorageCreatesDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "out")
	_, err := NewLocalStorage(dir)
	require.NoError(t, err)
	assert.DirExists(t, dir)
}
