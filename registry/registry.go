package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/gersmaps/geocoder/blobstore"
)

// Entry maps the tail of an identifier range to the partition file
// holding it: MaxID is the largest identifier present in File.
type Entry struct {
	File  string `json:"file"`
	MaxID string `json:"max_id"`
}

// Manifest is the ordered sequence of partition entries covering the
// raw dataset's identifier space, sorted ascending by MaxID.
type Manifest struct {
	Entries []Entry `json:"entries"`
}

// Load fetches and parses a registry manifest from blob storage.
// Bounds are normalized to lowercase; out-of-order manifests are rejected
// since the lookup relies on the sort invariant.
func Load(ctx context.Context, store blobstore.Store, name string) (*Manifest, error) {
	data, err := store.Fetch(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("registry: fetch %s: %w", name, err)
	}

	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("registry: parse %s: %w", name, err)
	}

	for i := range m.Entries {
		m.Entries[i].MaxID = strings.ToLower(m.Entries[i].MaxID)
		if i > 0 && m.Entries[i].MaxID < m.Entries[i-1].MaxID {
			return nil, fmt.Errorf("registry: %s not sorted at entry %d (%q < %q)",
				name, i, m.Entries[i].MaxID, m.Entries[i-1].MaxID)
		}
	}

	return &m, nil
}

// FindPartition returns the partition file containing the identifier:
// the leftmost entry whose bound is >= the lowercase form of id.
// The boolean is false when the identifier lies beyond the indexed range
// or the manifest is empty.
//
// Runs in O(log n); the manifest may cover hundreds of partitions.
func (m *Manifest) FindPartition(id string) (string, bool) {
	needle := strings.ToLower(id)

	i := sort.Search(len(m.Entries), func(i int) bool {
		return m.Entries[i].MaxID >= needle
	})
	if i == len(m.Entries) {
		return "", false
	}
	return m.Entries[i].File, true
}
