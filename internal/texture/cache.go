package texture

import (
	"context"
	"errors"
	"image"
	"sync"

	"product-viewer/internal/asset"
)

// PlaceholderURI names the built-in placeholder image. It never needs a fetch.
const PlaceholderURI = "builtin:placeholder"

const placeholderSize = 256

// Resolver resolves an image URI to a decoded NRGBA image.
type Resolver interface {
	Resolve(ctx context.Context, uri string) (*image.NRGBA, error)
}

// Cache is a concurrency-safe image cache in front of an asset.Fetcher.
// Failed lookups are remembered until Purge so a broken frame is fetched once.
type Cache struct {
	mu    sync.RWMutex
	items map[string]*cacheEntry
	fetch asset.Fetcher
}

type cacheEntry struct {
	img *image.NRGBA
	err error
}

// NewCache creates a new image cache backed by the given fetcher.
func NewCache(f asset.Fetcher) *Cache {
	return &Cache{
		items: make(map[string]*cacheEntry),
		fetch: f,
	}
}

// Resolve fetches, decodes and caches an image. Fetch failures are returned
// as *asset.FetchError.
func (c *Cache) Resolve(ctx context.Context, uri string) (*image.NRGBA, error) {
	// Fast path: read lock
	c.mu.RLock()
	if entry, exists := c.items[uri]; exists {
		c.mu.RUnlock()
		return entry.img, entry.err
	}
	c.mu.RUnlock()

	img, err := c.load(ctx, uri)
	if err != nil && (errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)) {
		// not a property of the asset; do not remember it
		return nil, err
	}

	// Write lock with double-check
	c.mu.Lock()
	defer c.mu.Unlock()
	if entry, exists := c.items[uri]; exists {
		return entry.img, entry.err
	}
	c.items[uri] = &cacheEntry{img: img, err: err}
	return img, err
}

func (c *Cache) load(ctx context.Context, uri string) (*image.NRGBA, error) {
	if uri == PlaceholderURI {
		return Placeholder(placeholderSize, placeholderSize), nil
	}
	data, err := c.fetch.Fetch(ctx, uri, nil)
	if err != nil {
		return nil, err
	}
	img, err := Decode(data)
	if err != nil {
		return nil, &asset.FetchError{URI: uri, Err: err}
	}
	return img, nil
}

// Purge drops remembered failures so a retry fetches them again.
func (c *Cache) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for uri, e := range c.items {
		if e.err != nil {
			delete(c.items, uri)
		}
	}
}

// Len returns the number of cached entries, failures included.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}
