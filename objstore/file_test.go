package objstore

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileArchive(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "receipt_archive_test")
	require.NoError(t, err)
	defer os.RemoveAll(tmpDir)

	archive := NewFileArchive(tmpDir)
	ctx := context.Background()

	tests := []struct {
		name string
		key  string
		data []byte
	}{
		{
			name: "basic put and get",
			key:  "receipt.jpg",
			data: []byte("jpeg bytes"),
		},
		{
			name: "nested key creates directories",
			key:  "user-1234/2026-08-28/receipt.png",
			data: []byte("png bytes"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := archive.Put(ctx, tt.key, "image/jpeg", tt.data)
			require.NoError(t, err)

			got, err := archive.Get(ctx, tt.key)
			require.NoError(t, err)
			assert.Equal(t, tt.data, got)

			// stored at the expected path on disk
			_, err = os.Stat(filepath.Join(tmpDir, tt.key))
			assert.NoError(t, err)
		})
	}

	t.Run("get nonexistent key", func(t *testing.T) {
		_, err := archive.Get(ctx, "missing.jpg")
		assert.Error(t, err)
		assert.True(t, os.IsNotExist(err))
	})
}

func TestTestArchive(t *testing.T) {
	ctx := context.Background()

	archive := NewTestArchive()
	require.NoError(t, archive.Put(ctx, "k", "image/png", []byte("data")))

	got, err := archive.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("data"), got)

	_, err = archive.Get(ctx, "missing")
	assert.Error(t, err)

	failing := NewTestArchiveWithError()
	assert.Error(t, failing.Put(ctx, "k", "image/png", nil))
	_, err = failing.Get(ctx, "k")
	assert.Error(t, err)
}
