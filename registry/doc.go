// Package registry routes entity identifiers to raw-data partitions.
//
// Full geometries are too large for the query-time index; they stay in
// the partitioned source dataset and are fetched on demand by external
// collaborators. The registry manifest is a sorted list of
// (partition file, maximum identifier) pairs; a binary search over the
// bounds locates the single partition holding an identifier without
// scanning the dataset. Identifiers compare as case-insensitive
// lowercase strings.
package registry
