package catalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gersmaps/geocoder/blobstore"
)

const rootDoc = `{
  "links": [
    {"rel": "child", "href": "./2025-11-19.0/collection.json"},
    {"rel": "child", "href": "./2026-01-02.0/collection.json", "latest": true}
  ]
}`

const collectionDoc = `{
  "id": "divisions-2026-01-02.0",
  "items": {
    "HEAD": {"record_count": 500000, "size_bytes": 104857600, "sha256": "ab12", "href": "./shards/HEAD.db"},
    "US": {"record_count": 120000, "size_bytes": 20971520, "sha256": "cd34", "href": "./shards/US.db"}
  },
  "reverse_items": {
    "HEAD": {"record_count": 500000, "size_bytes": 52428800, "sha256": "ef56", "href": "./reverse-shards/HEAD.db"}
  },
  "links": [
    {"rel": "item", "href": "./items/DE.json"}
  ]
}`

const legacyItemDoc = `{
  "id": "DE",
  "properties": {"record_count": 90000, "size_bytes": 1048576, "sha256": "0099"},
  "assets": {"data": {"href": "./shards/DE.db"}}
}`

func newTestClient(t *testing.T) (*Client, *blobstore.MemoryStore) {
	t.Helper()
	ctx := context.Background()

	store := blobstore.NewMemoryStore()
	require.NoError(t, store.Put(ctx, "catalog.json", []byte(rootDoc)))
	require.NoError(t, store.Put(ctx, "2026-01-02.0/collection.json", []byte(collectionDoc)))
	require.NoError(t, store.Put(ctx, "2026-01-02.0/items/DE.json", []byte(legacyItemDoc)))

	return NewClient(store), store
}

func TestClient_LatestVersion(t *testing.T) {
	ctx := context.Background()
	client, _ := newTestClient(t)

	version, err := client.LatestVersion(ctx)
	require.NoError(t, err)
	require.Equal(t, "2026-01-02.0", version)
}

func TestClient_LatestVersion_NoLatest(t *testing.T) {
	ctx := context.Background()

	store := blobstore.NewMemoryStore()
	require.NoError(t, store.Put(ctx, "catalog.json", []byte(`{"links":[{"rel":"child","href":"./v1/collection.json"}]}`)))

	_, err := NewClient(store).LatestVersion(ctx)
	require.ErrorIs(t, err, ErrNoLatest)
}

func TestClient_ResolveShard_Embedded(t *testing.T) {
	ctx := context.Background()
	client, _ := newTestClient(t)

	item, err := client.ResolveShard(ctx, "2026-01-02.0", KindForward, "US")
	require.NoError(t, err)
	require.Equal(t, uint64(120000), item.RecordCount)
	require.Equal(t, "./shards/US.db", item.Href)

	rev, err := client.ResolveShard(ctx, "2026-01-02.0", KindReverse, "HEAD")
	require.NoError(t, err)
	require.Equal(t, "./reverse-shards/HEAD.db", rev.Href)
}

func TestClient_ResolveShard_LegacyItem(t *testing.T) {
	ctx := context.Background()
	client, _ := newTestClient(t)

	item, err := client.ResolveShard(ctx, "2026-01-02.0", KindForward, "DE")
	require.NoError(t, err)
	require.Equal(t, uint64(90000), item.RecordCount)
	require.Equal(t, "./shards/DE.db", item.Href)
}

func TestClient_ResolveShard_Missing(t *testing.T) {
	ctx := context.Background()
	client, _ := newTestClient(t)

	_, err := client.ResolveShard(ctx, "2026-01-02.0", KindForward, "FR")
	require.ErrorIs(t, err, blobstore.ErrNotFound)
}

func TestCollection_HasShard(t *testing.T) {
	ctx := context.Background()
	client, _ := newTestClient(t)

	coll, err := client.Collection(ctx, "2026-01-02.0")
	require.NoError(t, err)

	require.True(t, coll.HasShard(KindForward, "HEAD"))
	require.True(t, coll.HasShard(KindForward, "US"))
	require.True(t, coll.HasShard(KindForward, "DE")) // legacy link
	require.False(t, coll.HasShard(KindForward, "FR"))

	require.True(t, coll.HasShard(KindReverse, "HEAD"))
	require.False(t, coll.HasShard(KindReverse, "US"))
}

func TestClient_SessionCacheAndInvalidate(t *testing.T) {
	ctx := context.Background()
	client, store := newTestClient(t)

	version, err := client.LatestVersion(ctx)
	require.NoError(t, err)
	require.Equal(t, "2026-01-02.0", version)

	// Replace the root document; the session cache keeps serving the old one.
	newRoot := `{"links":[{"rel":"child","href":"./2026-02-15.0/collection.json","latest":true}]}`
	require.NoError(t, store.Put(ctx, "catalog.json", []byte(newRoot)))

	version, err = client.LatestVersion(ctx)
	require.NoError(t, err)
	require.Equal(t, "2026-01-02.0", version)

	client.Invalidate()

	version, err = client.LatestVersion(ctx)
	require.NoError(t, err)
	require.Equal(t, "2026-02-15.0", version)
}

func TestShardKey(t *testing.T) {
	require.Equal(t, "2026-01-02.0/shards/US.db", ShardKey("2026-01-02.0", "./shards/US.db"))
	require.Equal(t, "2026-01-02.0/shards/US.db", ShardKey("2026-01-02.0", "shards/US.db"))
}
