package geocoder

import (
	"context"
	"fmt"
	"sync"

	"github.com/gersmaps/geocoder/blobstore"
	"github.com/gersmaps/geocoder/catalog"
	"github.com/gersmaps/geocoder/registry"
	"github.com/gersmaps/geocoder/shard"
)

// HeadShardID names the unpartitioned default shard queried for every
// request. Country shards supplement it when present.
const HeadShardID = "HEAD"

// Engine is the query-time geocoding engine.
//
// It is safe for concurrent use: the catalog cache, the shard-handle
// cache and the registry manifest are the only shared state, and all of
// them are append-only replacements of immutable values.
type Engine struct {
	blobs   blobstore.Store
	catalog *catalog.Client
	shards  *shard.Store
	opts    options

	mu        sync.RWMutex
	manifests map[string]*registry.Manifest
}

// New creates an Engine reading the dataset from blobs.
//
// Wrap the store in a blobstore.CachingStore to avoid refetching shard
// payloads across engine restarts of the catalog cache.
func New(blobs blobstore.Store, optFns ...Option) *Engine {
	opts := applyOptions(optFns)
	cat := catalog.NewClient(blobs)

	return &Engine{
		blobs:   blobs,
		catalog: cat,
		shards: shard.NewStore(blobs, cat,
			shard.WithCacheSize(opts.shardCacheSize),
			shard.WithLogger(opts.logger.Logger),
		),
		opts:      opts,
		manifests: make(map[string]*registry.Manifest),
	}
}

// Version resolves the current dataset version.
func (e *Engine) Version(ctx context.Context) (string, error) {
	version, err := e.catalog.LatestVersion(ctx)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrServiceUnavailable, err)
	}
	return version, nil
}

// Registry returns the current version's registry manifest, used to
// route identifiers to raw-data partitions for external geometry
// fetches. Session-cached per version.
func (e *Engine) Registry(ctx context.Context) (*registry.Manifest, error) {
	version, err := e.Version(ctx)
	if err != nil {
		return nil, err
	}

	e.mu.RLock()
	m := e.manifests[version]
	e.mu.RUnlock()
	if m != nil {
		return m, nil
	}

	m, err = registry.Load(ctx, e.blobs, version+"/registry.json")
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	e.manifests[version] = m
	e.mu.Unlock()

	return m, nil
}

// Invalidate drops the catalog session cache and any cached registry
// manifests. The next request resolves version pointers afresh.
func (e *Engine) Invalidate() {
	e.catalog.Invalidate()

	e.mu.Lock()
	e.manifests = make(map[string]*registry.Manifest)
	e.mu.Unlock()
}

// Close releases all cached shard handles.
func (e *Engine) Close() error {
	return e.shards.Close()
}
