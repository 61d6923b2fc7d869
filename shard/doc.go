// Package shard loads and queries index shards.
//
// A shard is an immutable, versioned partition of the search or reverse
// index: a self-contained SQLite database built offline and published to
// blob storage. Forward shards carry an FTS5 table ranked with bm25();
// reverse shards carry a bounding-box table with B-tree indexes.
//
// Store resolves shard metadata through the catalog, fetches the payload
// from blob storage, opens it read-only and caches open handles in a
// bounded LRU. Shards are never written at query time; caching is purely
// an optimization since a (version, shard) pair is immutable.
//
// The SQL driver is selected at build time: the pure-Go modernc driver by
// default, the cgo mattn driver under the sqlite_cgo tag.
package shard
