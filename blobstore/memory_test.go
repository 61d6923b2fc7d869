package blobstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	// Missing blob
	_, err := store.Fetch(ctx, "missing")
	require.ErrorIs(t, err, ErrNotFound)

	ok, err := store.Exists(ctx, "missing")
	require.NoError(t, err)
	require.False(t, ok)

	// Put and fetch
	require.NoError(t, store.Put(ctx, "catalog.json", []byte(`{"links":[]}`)))

	data, err := store.Fetch(ctx, "catalog.json")
	require.NoError(t, err)
	require.Equal(t, `{"links":[]}`, string(data))

	ok, err = store.Exists(ctx, "catalog.json")
	require.NoError(t, err)
	require.True(t, ok)

	// Fetched data is a copy, mutating it must not affect the store
	data[0] = 'X'
	again, err := store.Fetch(ctx, "catalog.json")
	require.NoError(t, err)
	require.Equal(t, `{"links":[]}`, string(again))

	// Delete
	require.NoError(t, store.Delete(ctx, "catalog.json"))
	_, err = store.Fetch(ctx, "catalog.json")
	require.ErrorIs(t, err, ErrNotFound)
}
