package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/gersmaps/geocoder/blobstore"
)

// RootName is the blob name of the root catalog document.
const RootName = "catalog.json"

// ErrNoLatest is returned when the root catalog carries no child link
// marked as latest.
var ErrNoLatest = errors.New("catalog: no latest collection")

// Kind selects between the forward (full-text) and reverse (spatial)
// shard families of a dataset version.
type Kind string

const (
	KindForward Kind = "forward"
	KindReverse Kind = "reverse"
)

// itemDir returns the directory legacy per-shard item documents live in.
func (k Kind) itemDir() string {
	if k == KindReverse {
		return "reverse-items"
	}
	return "items"
}

// Catalog is the root catalog document: a list of links to per-version
// collections, one of which is marked latest.
type Catalog struct {
	Links []Link `json:"links"`
}

// Link is a reference to another catalog document.
type Link struct {
	Rel    string `json:"rel"`
	Href   string `json:"href"`
	Latest bool   `json:"latest,omitempty"`
}

// Collection enumerates the shards of one dataset version.
//
// Shard metadata is embedded in the items maps, keyed by shard ID
// (e.g. "US", "HEAD"). Older catalogs instead link to one item document
// per shard; resolution falls back to those when the maps are empty.
type Collection struct {
	ID           string          `json:"id"`
	Items        map[string]Item `json:"items,omitempty"`
	ReverseItems map[string]Item `json:"reverse_items,omitempty"`
	Links        []Link          `json:"links,omitempty"`
}

// Item is the metadata of a single shard.
type Item struct {
	RecordCount uint64 `json:"record_count"`
	SizeBytes   uint64 `json:"size_bytes"`
	SHA256      string `json:"sha256"`
	Href        string `json:"href"`
}

// itemDocument is the legacy standalone per-shard item format.
type itemDocument struct {
	ID         string `json:"id"`
	Properties struct {
		RecordCount uint64 `json:"record_count"`
		SizeBytes   uint64 `json:"size_bytes"`
		SHA256      string `json:"sha256"`
	} `json:"properties"`
	Assets struct {
		Data struct {
			Href string `json:"href"`
		} `json:"data"`
	} `json:"assets"`
}

// items returns the embedded item map for the given kind.
func (c *Collection) items(kind Kind) map[string]Item {
	if kind == KindReverse {
		return c.ReverseItems
	}
	return c.Items
}

// HasShard reports whether the collection lists a shard, either embedded
// or via a legacy item link.
func (c *Collection) HasShard(kind Kind, shardID string) bool {
	if _, ok := c.items(kind)[shardID]; ok {
		return true
	}
	suffix := fmt.Sprintf("%s/%s.json", kind.itemDir(), shardID)
	for _, l := range c.Links {
		if l.Rel == "item" && strings.HasSuffix(l.Href, suffix) {
			return true
		}
	}
	return false
}

// Client resolves catalog documents from blob storage.
//
// Documents are fetched lazily and cached for the lifetime of the client;
// staleness within a session is accepted. Invalidate drops the cache.
type Client struct {
	store blobstore.Store

	mu          sync.RWMutex
	root        *Catalog
	collections map[string]*Collection
}

// NewClient creates a catalog client reading from the given store.
func NewClient(store blobstore.Store) *Client {
	return &Client{
		store:       store,
		collections: make(map[string]*Collection),
	}
}

// Root returns the root catalog, fetching it on first use.
func (c *Client) Root(ctx context.Context) (*Catalog, error) {
	c.mu.RLock()
	root := c.root
	c.mu.RUnlock()
	if root != nil {
		return root, nil
	}

	data, err := c.store.Fetch(ctx, RootName)
	if err != nil {
		return nil, fmt.Errorf("catalog: fetch %s: %w", RootName, err)
	}

	var parsed Catalog
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("catalog: parse %s: %w", RootName, err)
	}

	c.mu.Lock()
	c.root = &parsed
	c.mu.Unlock()

	return &parsed, nil
}

// LatestVersion resolves the current dataset version from the root
// catalog's latest child link, e.g. "./2026-01-02.0/collection.json"
// resolves to "2026-01-02.0".
func (c *Client) LatestVersion(ctx context.Context) (string, error) {
	root, err := c.Root(ctx)
	if err != nil {
		return "", err
	}

	for _, l := range root.Links {
		if l.Rel != "child" || !l.Latest {
			continue
		}
		version, ok := versionFromHref(l.Href)
		if !ok {
			return "", fmt.Errorf("catalog: invalid collection href %q", l.Href)
		}
		return version, nil
	}

	return "", ErrNoLatest
}

// Collection returns the collection document for a dataset version,
// fetching it on first use.
func (c *Client) Collection(ctx context.Context, version string) (*Collection, error) {
	c.mu.RLock()
	coll := c.collections[version]
	c.mu.RUnlock()
	if coll != nil {
		return coll, nil
	}

	name := version + "/collection.json"
	data, err := c.store.Fetch(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("catalog: fetch %s: %w", name, err)
	}

	var parsed Collection
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("catalog: parse %s: %w", name, err)
	}

	c.mu.Lock()
	c.collections[version] = &parsed
	c.mu.Unlock()

	return &parsed, nil
}

// ResolveShard returns the metadata for a shard of the given version,
// preferring the collection's embedded items and falling back to the
// legacy standalone item document.
func (c *Client) ResolveShard(ctx context.Context, version string, kind Kind, shardID string) (Item, error) {
	coll, err := c.Collection(ctx, version)
	if err != nil {
		return Item{}, err
	}

	if item, ok := coll.items(kind)[shardID]; ok {
		return item, nil
	}

	// Legacy: one item document per shard
	name := fmt.Sprintf("%s/%s/%s.json", version, kind.itemDir(), shardID)
	data, err := c.store.Fetch(ctx, name)
	if err != nil {
		return Item{}, fmt.Errorf("catalog: fetch %s: %w", name, err)
	}

	var doc itemDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return Item{}, fmt.Errorf("catalog: parse %s: %w", name, err)
	}

	return Item{
		RecordCount: doc.Properties.RecordCount,
		SizeBytes:   doc.Properties.SizeBytes,
		SHA256:      doc.Properties.SHA256,
		Href:        doc.Assets.Data.Href,
	}, nil
}

// Invalidate drops all cached documents. The next access refetches.
func (c *Client) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.root = nil
	c.collections = make(map[string]*Collection)
}

// ShardKey resolves an item href relative to its version into a blob name,
// e.g. ("2026-01-02.0", "./shards/US.db") -> "2026-01-02.0/shards/US.db".
func ShardKey(version, href string) string {
	return version + "/" + strings.TrimPrefix(href, "./")
}

func versionFromHref(href string) (string, bool) {
	version, _, ok := strings.Cut(strings.TrimPrefix(href, "./"), "/")
	if !ok || version == "" {
		return "", false
	}
	return version, true
}
