// Package catalog caches the selectable attractions for one builder session.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/travelmate/tripplanner/client"
	"github.com/travelmate/tripplanner/internal/draft"
)

// ErrCatalogUnavailable wraps a failed fetch. Nothing is cached on failure
// and the next Load fetches again.
var ErrCatalogUnavailable = errors.New("catalog unavailable")

// Source fetches catalog items. *client.Client satisfies it.
type Source interface {
	ListCatalogItems(ctx context.Context) ([]client.CatalogItem, error)
}

// Catalog fetches once and serves the cached items for its lifetime.
// Concurrent Loads share a single fetch.
type Catalog struct {
	src Source

	mu     sync.Mutex
	loaded bool
	items  []client.CatalogItem
	byID   map[int64]int
}

func New(src Source) *Catalog {
	return &Catalog{src: src}
}

// Load returns the cached items, fetching them on first use.
func (c *Catalog) Load(ctx context.Context) ([]client.CatalogItem, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.loaded {
		return c.copyItems(), nil
	}
	items, err := c.src.ListCatalogItems(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCatalogUnavailable, err)
	}
	c.items = items
	c.byID = make(map[int64]int, len(items))
	for i, it := range items {
		if _, dup := c.byID[it.ID]; !dup {
			c.byID[it.ID] = i
		}
	}
	c.loaded = true
	return c.copyItems(), nil
}

// Loaded reports whether a fetch has succeeded.
func (c *Catalog) Loaded() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loaded
}

func (c *Catalog) copyItems() []client.CatalogItem {
	out := make([]client.CatalogItem, len(c.items))
	copy(out, c.items)
	return out
}

// Find returns the cached item with id. It never fetches.
func (c *Catalog) Find(id int64) (client.CatalogItem, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	i, ok := c.byID[id]
	if !ok {
		return client.CatalogItem{}, false
	}
	return c.items[i], true
}

// IsSelected reports whether id is in d. It depends only on the draft.
func IsSelected(id int64, d *draft.Draft) bool {
	return d.Contains(id)
}

// Entry pairs a catalog item with its state in the draft.
type Entry struct {
	Item     client.CatalogItem
	Selected bool
}

// Entries returns every cached item in catalog order with its selection
// state. It is empty until Load succeeds.
func (c *Catalog) Entries(d *draft.Draft) []Entry {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Entry, 0, len(c.items))
	for _, it := range c.items {
		out = append(out, Entry{Item: it, Selected: IsSelected(it.ID, d)})
	}
	return out
}
