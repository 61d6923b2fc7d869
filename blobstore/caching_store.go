package blobstore

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// CachingStore wraps a Store and caches fetched payloads in memory.
//
// Entries expire after the configured TTL and are evicted LRU-first when
// the cache is full. Shard payloads are immutable under versioned names,
// so the TTL only matters for the unversioned catalog document.
type CachingStore struct {
	inner Store
	cache *expirable.LRU[string, []byte]
}

// NewCachingStore creates a CachingStore holding at most size entries for
// at most ttl each. size defaults to 32 if <= 0; ttl defaults to 5 minutes
// if <= 0, matching the edge-cache TTL used for catalog documents.
func NewCachingStore(inner Store, size int, ttl time.Duration) *CachingStore {
	if size <= 0 {
		size = 32
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &CachingStore{
		inner: inner,
		cache: expirable.NewLRU[string, []byte](size, nil, ttl),
	}
}

// Fetch returns the cached payload when present, fetching and caching it
// otherwise.
func (s *CachingStore) Fetch(ctx context.Context, name string) ([]byte, error) {
	if data, ok := s.cache.Get(name); ok {
		return data, nil
	}

	data, err := s.inner.Fetch(ctx, name)
	if err != nil {
		return nil, err
	}

	s.cache.Add(name, data)
	return data, nil
}

// Exists reports whether the blob exists. A cached payload answers without
// touching the inner store; misses are not negatively cached.
func (s *CachingStore) Exists(ctx context.Context, name string) (bool, error) {
	if _, ok := s.cache.Get(name); ok {
		return true, nil
	}
	return s.inner.Exists(ctx, name)
}

// Purge drops all cached entries.
func (s *CachingStore) Purge() {
	s.cache.Purge()
}

// Len returns the number of cached entries.
func (s *CachingStore) Len() int {
	return s.cache.Len()
}
