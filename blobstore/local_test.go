package blobstore

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLocalStore(t *testing.T) {
	tmpDir := t.TempDir()
	ctx := context.Background()

	require.NoError(t, os.MkdirAll(filepath.Join(tmpDir, "2026-01-02.0"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "2026-01-02.0", "collection.json"), []byte(`{}`), 0o644))

	store := NewLocalStore(tmpDir)

	data, err := store.Fetch(ctx, "2026-01-02.0/collection.json")
	require.NoError(t, err)
	require.Equal(t, `{}`, string(data))

	ok, err := store.Exists(ctx, "2026-01-02.0/collection.json")
	require.NoError(t, err)
	require.True(t, ok)

	_, err = store.Fetch(ctx, "2026-01-02.0/shards/US.db")
	require.ErrorIs(t, err, ErrNotFound)

	ok, err = store.Exists(ctx, "2026-01-02.0/shards/US.db")
	require.NoError(t, err)
	require.False(t, ok)
}
