package photos

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Smallest valid PNG: 1x1 transparent pixel.
var pngPixel = []byte{
	0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a, 0x00, 0x00, 0x00, 0x0d,
	0x49, 0x48, 0x44, 0x52, 0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01,
	0x08, 0x06, 0x00, 0x00, 0x00, 0x1f, 0x15, 0xc4, 0x89, 0x00, 0x00, 0x00,
	0x0d, 0x49, 0x44, 0x41, 0x54, 0x78, 0x9c, 0x63, 0x00, 0x01, 0x00, 0x00,
	0x05, 0x00, 0x01, 0x0d, 0x0a, 0x2d, 0xb4, 0x00, 0x00, 0x00, 0x00, 0x49,
	0x45, 0x4e, 0x44, 0xae, 0x42, 0x60, 0x82,
}

func jpegBytes(size int) []byte {
	data := make([]byte, size)
	copy(data, []byte{0xff, 0xd8, 0xff, 0xe0, 0x00, 0x10, 'J', 'F', 'I', 'F', 0x00})
	return data
}

func newTestStore(t *testing.T, maxBytes int64) *Store {
	t.Helper()
	store, err := NewStore(t.TempDir(), maxBytes)
	require.NoError(t, err)
	return store
}

func TestStore_Save(t *testing.T) {
	store := newTestStore(t, 1<<20)

	written, err := store.Save(7, bytes.NewReader(pngPixel))
	require.NoError(t, err)
	assert.Equal(t, int64(len(pngPixel)), written)

	saved, err := os.ReadFile(store.Path(7))
	require.NoError(t, err)
	assert.Equal(t, pngPixel, saved)
	assert.Equal(t, filepath.Join(store.PublicDir(), "usuarios", "fotos", "7.jpg"), store.Path(7))
	assert.Equal(t, "/public/usuarios/fotos/7.jpg", store.URL(7))
}

func TestStore_Save_ReplacesExisting(t *testing.T) {
	store := newTestStore(t, 1<<20)

	_, err := store.Save(7, bytes.NewReader(pngPixel))
	require.NoError(t, err)

	jpeg := jpegBytes(5000)
	_, err = store.Save(7, bytes.NewReader(jpeg))
	require.NoError(t, err)

	saved, err := os.ReadFile(store.Path(7))
	require.NoError(t, err)
	assert.Equal(t, jpeg, saved)
}

func TestStore_Save_Rejects(t *testing.T) {
	store := newTestStore(t, 4096)

	t.Run("empty", func(t *testing.T) {
		_, err := store.Save(1, bytes.NewReader(nil))
		assert.ErrorIs(t, err, ErrEmpty)
	})

	t.Run("not an image", func(t *testing.T) {
		_, err := store.Save(1, strings.NewReader("#!/bin/sh\necho hi\n"))
		assert.ErrorIs(t, err, ErrNotImage)
	})

	t.Run("too large", func(t *testing.T) {
		_, err := store.Save(1, bytes.NewReader(jpegBytes(5000)))
		assert.ErrorIs(t, err, ErrTooLarge)
	})

	_, err := os.Stat(store.Path(1))
	assert.True(t, os.IsNotExist(err))

	entries, err := os.ReadDir(filepath.Dir(store.Path(1)))
	require.NoError(t, err)
	assert.Empty(t, entries, "temporary files must be cleaned up")
}
