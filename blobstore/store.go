package blobstore

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a blob does not exist.
//
// Implementations should return an error that satisfies
// `errors.Is(err, ErrNotFound)`.
var ErrNotFound = errors.New("blob not found")

// Store is an abstraction for accessing immutable data blobs
// (catalog documents, collection documents, shard payloads).
//
// Blobs are fetched whole: shards are self-contained database files that
// must be materialized before they can be opened, so there is no benefit
// to ranged reads at this layer.
type Store interface {
	// Fetch reads the blob with the given name in full.
	Fetch(ctx context.Context, name string) ([]byte, error)

	// Exists reports whether the blob exists without fetching its payload.
	Exists(ctx context.Context, name string) (bool, error)
}
