// Package testutil builds fixture shards and datasets for tests.
//
// Shards are produced with the same driver the engine queries them with,
// so fixtures exercise the real FTS5 and bbox query paths.
package testutil

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/require"

	"github.com/gersmaps/geocoder/blobstore"
	"github.com/gersmaps/geocoder/catalog"
	"github.com/gersmaps/geocoder/shard"
)

// ForwardRecord is one row of a fixture forward shard.
type ForwardRecord struct {
	GERSID        string
	Type          string
	Name          string
	Lat, Lon      float64
	BBox          [4]float64 // xmin, ymin, xmax, ymax
	Population    int64
	HasPopulation bool
	Country       string
	Region        string
	SearchText    string // defaults to Name
}

// ReverseRecord is one row of a fixture reverse shard.
type ReverseRecord struct {
	GERSID        string
	Subtype       string
	Name          string
	Lat, Lon      float64
	BBox          [4]float64
	Area          float64
	Population    int64
	HasPopulation bool
	Country       string
	Region        string
}

func nullInt(v int64, ok bool) any {
	if !ok {
		return nil
	}
	return v
}

func nullStr(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func buildDB(t *testing.T, build func(db *sql.DB)) []byte {
	t.Helper()

	path := filepath.Join(t.TempDir(), "fixture.db")
	db, err := sql.Open(shard.DriverName, "file:"+path)
	require.NoError(t, err)

	db.SetMaxOpenConns(1)
	build(db)
	require.NoError(t, db.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return data
}

// BuildForwardShard builds a forward-index shard payload.
func BuildForwardShard(t *testing.T, records []ForwardRecord) []byte {
	t.Helper()

	return buildDB(t, func(db *sql.DB) {
		mustExec(t, db, `CREATE TABLE features (
			gers_id TEXT NOT NULL UNIQUE,
			type TEXT NOT NULL,
			primary_name TEXT NOT NULL,
			lat REAL NOT NULL,
			lon REAL NOT NULL,
			bbox_xmin REAL NOT NULL,
			bbox_ymin REAL NOT NULL,
			bbox_xmax REAL NOT NULL,
			bbox_ymax REAL NOT NULL,
			population INTEGER,
			country TEXT,
			region TEXT,
			search_text TEXT NOT NULL
		)`)
		mustExec(t, db, `CREATE VIRTUAL TABLE features_fts USING fts5(
			search_text, content='features', content_rowid='rowid'
		)`)
		mustExec(t, db, `CREATE TABLE metadata (key TEXT PRIMARY KEY, value TEXT NOT NULL)`)
		mustExec(t, db, `INSERT INTO metadata (key, value) VALUES ('release', 'test-fixture')`)

		for _, r := range records {
			searchText := r.SearchText
			if searchText == "" {
				searchText = r.Name
			}
			mustExec(t, db, `INSERT INTO features (
				gers_id, type, primary_name, lat, lon,
				bbox_xmin, bbox_ymin, bbox_xmax, bbox_ymax,
				population, country, region, search_text
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				r.GERSID, r.Type, r.Name, r.Lat, r.Lon,
				r.BBox[0], r.BBox[1], r.BBox[2], r.BBox[3],
				nullInt(r.Population, r.HasPopulation), nullStr(r.Country), nullStr(r.Region), searchText,
			)
		}
		mustExec(t, db, `INSERT INTO features_fts (rowid, search_text) SELECT rowid, search_text FROM features`)
	})
}

// BuildReverseShard builds a reverse-index shard payload.
func BuildReverseShard(t *testing.T, records []ReverseRecord) []byte {
	t.Helper()

	return buildDB(t, func(db *sql.DB) {
		mustExec(t, db, `CREATE TABLE divisions_reverse (
			gers_id TEXT NOT NULL UNIQUE,
			subtype TEXT NOT NULL,
			primary_name TEXT NOT NULL,
			lat REAL NOT NULL,
			lon REAL NOT NULL,
			population INTEGER,
			country TEXT,
			region TEXT,
			bbox_xmin REAL NOT NULL,
			bbox_ymin REAL NOT NULL,
			bbox_xmax REAL NOT NULL,
			bbox_ymax REAL NOT NULL,
			area REAL
		)`)
		mustExec(t, db, `CREATE INDEX idx_bbox_x ON divisions_reverse (bbox_xmin, bbox_xmax)`)
		mustExec(t, db, `CREATE TABLE metadata (key TEXT PRIMARY KEY, value TEXT NOT NULL)`)

		for _, r := range records {
			mustExec(t, db, `INSERT INTO divisions_reverse (
				gers_id, subtype, primary_name, lat, lon,
				population, country, region,
				bbox_xmin, bbox_ymin, bbox_xmax, bbox_ymax, area
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				r.GERSID, r.Subtype, r.Name, r.Lat, r.Lon,
				nullInt(r.Population, r.HasPopulation), nullStr(r.Country), nullStr(r.Region),
				r.BBox[0], r.BBox[1], r.BBox[2], r.BBox[3], r.Area,
			)
		}
	})
}

func mustExec(t *testing.T, db *sql.DB, q string, args ...any) {
	t.Helper()
	_, err := db.Exec(q, args...)
	require.NoError(t, err)
}

// CompressZstd compresses a payload the way the publishing pipeline does.
func CompressZstd(t *testing.T, data []byte) []byte {
	t.Helper()

	enc, err := zstd.NewWriter(nil)
	require.NoError(t, err)
	defer enc.Close()

	return enc.EncodeAll(data, nil)
}

// Dataset is a complete in-memory dataset version: catalog, collection
// and shard payloads.
type Dataset struct {
	Version       string
	ForwardShards map[string][]byte // shard ID -> payload
	ReverseShards map[string][]byte
	Registry      []byte // optional registry.json payload
}

// Install publishes the dataset into store under the standard layout.
func (ds Dataset) Install(t *testing.T, store *blobstore.MemoryStore) {
	t.Helper()
	ctx := context.Background()

	root := catalog.Catalog{
		Links: []catalog.Link{
			{Rel: "child", Href: fmt.Sprintf("./%s/collection.json", ds.Version), Latest: true},
		},
	}
	putJSON(t, store, catalog.RootName, root)

	coll := catalog.Collection{
		ID:           "divisions-" + ds.Version,
		Items:        map[string]catalog.Item{},
		ReverseItems: map[string]catalog.Item{},
	}
	for id, payload := range ds.ForwardShards {
		href := fmt.Sprintf("./shards/%s.db", id)
		coll.Items[id] = catalog.Item{RecordCount: 1, SizeBytes: uint64(len(payload)), Href: href}
		require.NoError(t, store.Put(ctx, catalog.ShardKey(ds.Version, href), payload))
	}
	for id, payload := range ds.ReverseShards {
		href := fmt.Sprintf("./reverse-shards/%s.db", id)
		coll.ReverseItems[id] = catalog.Item{RecordCount: 1, SizeBytes: uint64(len(payload)), Href: href}
		require.NoError(t, store.Put(ctx, catalog.ShardKey(ds.Version, href), payload))
	}
	putJSON(t, store, ds.Version+"/collection.json", coll)

	if ds.Registry != nil {
		require.NoError(t, store.Put(ctx, ds.Version+"/registry.json", ds.Registry))
	}
}

func putJSON(t *testing.T, store *blobstore.MemoryStore, name string, v any) {
	t.Helper()

	data, err := json.Marshal(v)
	require.NoError(t, err)
	require.NoError(t, store.Put(context.Background(), name, data))
}
