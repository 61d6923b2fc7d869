// Package catalog resolves dataset versions and shard addresses.
//
// The dataset is published as STAC-style JSON documents in blob storage:
// a root catalog pointing at per-version collections, and collections
// enumerating the shards of one immutable dataset version. The Client
// fetches these documents lazily and caches them for the session; callers
// invalidate explicitly when they want fresh version pointers.
package catalog
