package catalog

import (
	"context"
	"log"
	"sync"
)

// FetchError wraps a failure to load the catalog from the backing store.
// Callers keep serving the previous snapshot when they see one.
type FetchError struct {
	Err error
}

func (e *FetchError) Error() string { return "catalog fetch failed: " + e.Err.Error() }
func (e *FetchError) Unwrap() error { return e.Err }

// Source supplies the full provider listing from the backing store.
type Source interface {
	FetchProviders(ctx context.Context) ([]Provider, error)
}

// Catalog holds the in-memory provider snapshot. Load replaces it wholesale;
// readers always see a complete snapshot, never a partial refresh.
type Catalog struct {
	mu    sync.RWMutex
	src   Source
	items []Provider
	byID  map[int64]Provider
}

func NewCatalog(src Source) *Catalog {
	return &Catalog{src: src, byID: map[int64]Provider{}}
}

// Load refreshes the snapshot from the source. On failure the previous
// snapshot (or the empty one on first load) is retained and a FetchError
// is returned.
func (c *Catalog) Load(ctx context.Context) error {
	items, err := c.src.FetchProviders(ctx)
	if err != nil {
		return &FetchError{Err: err}
	}

	index := make(map[int64]Provider, len(items))
	for _, p := range items {
		index[p.ID] = p
	}

	c.mu.Lock()
	c.items = items
	c.byID = index
	c.mu.Unlock()
	return nil
}

// All returns a copy of the current snapshot in store order.
func (c *Catalog) All() []Provider {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Provider, len(c.items))
	copy(out, c.items)
	return out
}

// ByID looks a provider up in the current snapshot.
func (c *Catalog) ByID(id int64) (Provider, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	p, ok := c.byID[id]
	return p, ok
}

// Len returns the size of the current snapshot.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

var current *Catalog

// Init wires the package-level catalog used by the HTTP handlers and
// performs the initial load. A failed first load is logged and retried on
// the next refresh; the server starts with an empty catalog.
func Init(src Source) {
	current = NewCatalog(src)
	if err := current.Load(context.Background()); err != nil {
		log.Printf("initial catalog load failed, starting empty: %v", err)
	}
}

// Default returns the package-level catalog wired by Init.
func Default() *Catalog {
	return current
}
