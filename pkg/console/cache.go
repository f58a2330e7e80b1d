package console

import (
	"context"
	"errors"
	"fmt"
)

// KeyVolatile is the cache key convention for data that must always reflect
// live server state: a lookup under it is treated as a miss and the produced
// value is never stored. Row listings and per-item fetches use it; schema
// and type metadata use the request path itself and live for the session.
const KeyVolatile = "."

// Producer fetches the value for a cache key on a miss.
type Producer func(ctx context.Context) ([]byte, error)

// Cache is the session-scoped cache table shared by all resource clients.
// It namespaces entries per resource path and delegates storage to a Store
// backend. It is an explicit injected service, not a hidden singleton, so
// tests stay hermetic.
//
// There is no TTL and no invalidation protocol: correctness relies on
// callers choosing the right key convention. Mutating operations never
// write here, and a failed producer never pollutes the table.
type Cache struct {
	store Store
}

// NewCache creates a cache table over the given store. A nil store gets an
// in-memory backend with defaults.
func NewCache(store Store) *Cache {
	if store == nil {
		store = NewMemoryStore(0)
	}

	return &Cache{store: store}
}

// Get returns the stored value for (namespace, key), or invokes producer,
// stores its result, and returns it. Under KeyVolatile the lookup always
// misses and the result is never stored. A nil producer yields ErrCacheMiss
// on a miss.
func (c *Cache) Get(ctx context.Context, namespace, key string, producer Producer) ([]byte, error) {
	if key != KeyVolatile {
		data, err := c.store.Get(ctx, namespace, key)
		if err == nil {
			return data, nil
		}

		if !errors.Is(err, ErrCacheMiss) && !errors.Is(err, ErrCacheDisabled) {
			return nil, fmt.Errorf("cache lookup %s/%s: %w", namespace, key, err)
		}
	}

	if producer == nil {
		return nil, ErrCacheMiss
	}

	data, err := producer(ctx)
	if err != nil {
		return nil, err
	}

	if key != KeyVolatile {
		// Concurrent first fetches may both populate the key. Last writer
		// wins, which is safe: stored values for a key are idempotent.
		_ = c.store.Set(ctx, namespace, key, data)
	}

	return data, nil
}

// Put stores a value directly. KeyVolatile writes are dropped.
func (c *Cache) Put(ctx context.Context, namespace, key string, data []byte) error {
	if key == KeyVolatile {
		return nil
	}

	err := c.store.Set(ctx, namespace, key, data)
	if err != nil {
		return fmt.Errorf("cache store %s/%s: %w", namespace, key, err)
	}

	return nil
}

// Flush clears the named namespaces, or the whole table when none is given.
func (c *Cache) Flush(ctx context.Context, namespaces ...string) error {
	if len(namespaces) == 0 {
		err := c.store.Clear(ctx, "")
		if err != nil {
			return fmt.Errorf("cache flush: %w", err)
		}

		return nil
	}

	for _, namespace := range namespaces {
		err := c.store.Clear(ctx, namespace)
		if err != nil {
			return fmt.Errorf("cache flush %s: %w", namespace, err)
		}
	}

	return nil
}
