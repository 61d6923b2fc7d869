// Package geocoder resolves place text to coordinates and coordinates to
// administrative divisions, over a sharded index published to blob storage.
//
// The index is derived from a public geographic dataset and partitioned
// into immutable, versioned SQLite shards: forward shards pair an FTS5
// full-text table with place records, reverse shards hold bounding boxes
// of administrative divisions. The Engine resolves the current dataset
// version through the catalog, loads the shards it needs on demand, and
// answers queries entirely from them.
//
// # Quick Start
//
//	ctx := context.Background()
//	blobs := blobstore.NewCachingStore(blobstore.NewLocalStore("./data"), 32, 5*time.Minute)
//	eng := geocoder.New(blobs)
//
//	results, _ := eng.Search(ctx, geocoder.SearchRequest{Query: "boston", Limit: 10})
//	divisions, _ := eng.Reverse(ctx, 42.36, -71.05)
//
// # Ranking
//
// Forward results are ordered by importance, a 0..1 value derived from the
// shard's BM25 relevance adjusted by a population boost, so that
// well-known places outrank obscure exact-text matches. See package query
// for the formula and its tunables.
//
// # Containment
//
// Reverse geocoding approximates containment with bounding boxes; every
// result carries Confidence "bbox". Exact polygon containment is deferred
// to external geometry fetches routed through package registry.
package geocoder
