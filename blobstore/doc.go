// Package blobstore provides read access to immutable data blobs.
//
// The geocoder treats all of its inputs — the root catalog, per-version
// collection documents, registry manifests and shard payloads — as opaque
// blobs addressed by name. Implementations exist for local directories,
// in-memory maps (testing), Amazon S3 and MinIO/S3-compatible storage.
//
// CachingStore wraps any Store with a TTL-bounded LRU cache. Shard payloads
// live under versioned paths, so cached entries never need invalidation;
// the TTL exists to bound staleness of the unversioned catalog pointer.
package blobstore
