package resolve

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// ErrNotFilled is returned by Get when no fill has happened for the
// requested kind in this cycle.
var ErrNotFilled = errors.New("cache not filled")

// Cache holds the candidate collections for one resolution cycle. Each kind
// is loaded at most once per cycle no matter how many stages ask for it; a
// later fill request returns the stored collection without invoking its
// loader. A Cache must not outlive its cycle — candidate sets are
// facility/date-scoped, so concurrent batches each get their own instance.
type Cache struct {
	mu      sync.Mutex
	entries map[ResolverKind]any
}

func NewCache() *Cache {
	return &Cache{entries: make(map[ResolverKind]any)}
}

// Has reports whether kind has been filled. It never triggers a load.
func (c *Cache) Has(kind ResolverKind) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.entries[kind]
	return ok
}

// Fill returns the collection for kind, invoking loader only if this is the
// first fill of that kind in the cycle. The lock is held across the load so
// concurrent callers cannot double-fill.
func Fill[T any](ctx context.Context, c *Cache, kind ResolverKind, loader func(context.Context) ([]T, error)) ([]T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if stored, ok := c.entries[kind]; ok {
		collection, ok := stored.([]T)
		if !ok {
			return nil, fmt.Errorf("cache entry for %s holds %T", kind, stored)
		}
		return collection, nil
	}

	collection, err := loader(ctx)
	if err != nil {
		return nil, fmt.Errorf("load %s candidates: %w", kind, err)
	}
	c.entries[kind] = collection
	return collection, nil
}

// Get returns the previously filled collection for kind, or ErrNotFilled.
func Get[T any](c *Cache, kind ResolverKind) ([]T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	stored, ok := c.entries[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFilled, kind)
	}
	collection, ok := stored.([]T)
	if !ok {
		return nil, fmt.Errorf("cache entry for %s holds %T", kind, stored)
	}
	return collection, nil
}
