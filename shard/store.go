package shard

import (
	"context"
	"fmt"
	"log/slog"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/gersmaps/geocoder/blobstore"
	"github.com/gersmaps/geocoder/catalog"
)

// DefaultCacheSize bounds the number of concurrently open shard handles.
// Shards can run to hundreds of megabytes; the LRU keeps memory bounded
// and closes evicted handles.
const DefaultCacheSize = 8

type cacheKey struct {
	Version string
	Kind    catalog.Kind
	ID      string
}

// Store loads shards from blob storage and caches open handles.
type Store struct {
	blobs   blobstore.Store
	catalog *catalog.Client
	logger  *slog.Logger
	cache   *lru.Cache[cacheKey, *DB]
}

// StoreOption configures a Store.
type StoreOption func(*storeOptions)

type storeOptions struct {
	cacheSize int
	logger    *slog.Logger
}

// WithCacheSize sets the maximum number of cached shard handles.
func WithCacheSize(n int) StoreOption {
	return func(o *storeOptions) {
		if n > 0 {
			o.cacheSize = n
		}
	}
}

// WithLogger sets the logger used for load diagnostics.
func WithLogger(l *slog.Logger) StoreOption {
	return func(o *storeOptions) {
		if l != nil {
			o.logger = l
		}
	}
}

// NewStore creates a shard store reading payloads from blobs and shard
// metadata from cat.
func NewStore(blobs blobstore.Store, cat *catalog.Client, optFns ...StoreOption) *Store {
	opts := storeOptions{
		cacheSize: DefaultCacheSize,
		logger:    slog.Default(),
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&opts)
		}
	}

	cache, err := lru.NewWithEvict(opts.cacheSize, func(_ cacheKey, db *DB) {
		_ = db.Close()
	})
	if err != nil {
		// Only possible with a non-positive size, which the option guards.
		panic(fmt.Sprintf("shard: cache init: %v", err))
	}

	return &Store{
		blobs:   blobs,
		catalog: cat,
		logger:  opts.logger,
		cache:   cache,
	}
}

// Load returns an open handle for the given shard, fetching and opening
// the payload on a cache miss. The caller must Release the handle when
// done; until then it stays open even if evicted from the cache.
//
// Returns an error satisfying errors.Is(err, blobstore.ErrNotFound) when
// the shard's metadata or payload is absent, and a *CorruptError when the
// payload is not a valid database.
func (s *Store) Load(ctx context.Context, version string, kind catalog.Kind, shardID string) (*DB, error) {
	key := cacheKey{Version: version, Kind: kind, ID: shardID}
	if db, ok := s.cache.Get(key); ok && db.tryAcquire() {
		return db, nil
	}

	item, err := s.catalog.ResolveShard(ctx, version, kind, shardID)
	if err != nil {
		return nil, err
	}

	blobName := catalog.ShardKey(version, item.Href)
	payload, err := s.blobs.Fetch(ctx, blobName)
	if err != nil {
		return nil, fmt.Errorf("shard %s: fetch %s: %w", shardID, blobName, err)
	}

	db, err := OpenBytes(payload, shardID)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("shard loaded",
		"version", version,
		"kind", string(kind),
		"shard", shardID,
		"bytes", len(payload),
		"records", item.RecordCount,
	)

	// Concurrent loads of the same key race; keep the first handle that
	// lands in the cache and close ours if we lost.
	if existing, ok := s.cache.Get(key); ok && existing.tryAcquire() {
		_ = db.Close()
		return existing, nil
	}

	// The cache takes the owning reference, the borrower a second.
	db.acquire()
	s.cache.Add(key, db)

	return db, nil
}

// Exists reports whether the collection for version lists the shard.
// No payload is fetched.
func (s *Store) Exists(ctx context.Context, version string, kind catalog.Kind, shardID string) (bool, error) {
	coll, err := s.catalog.Collection(ctx, version)
	if err != nil {
		return false, err
	}
	return coll.HasShard(kind, shardID), nil
}

// Close releases every cached shard handle.
func (s *Store) Close() error {
	s.cache.Purge()
	return nil
}
