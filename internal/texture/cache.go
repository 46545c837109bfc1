package texture

import (
	"image"
	"sync"

	"connector-align/internal/logging"
)

// Resolver resolves a texture id to a decoded image.
type Resolver interface {
	Resolve(texName string) *image.NRGBA
}

// Cache is a concurrency-safe texture cache. Indexed files take priority
// over built-in textures of the same id.
type Cache struct {
	mu    sync.RWMutex
	items map[string]*cacheEntry
	index *Index
	log   logging.Logger
}

type cacheEntry struct {
	img *image.NRGBA // nil when loading failed
}

// NewCache creates a cache backed by index, which may be nil.
func NewCache(index *Index, log logging.Logger) *Cache {
	return &Cache{
		items: make(map[string]*cacheEntry),
		index: index,
		log:   logging.OrNop(log),
	}
}

// Resolve loads and caches a texture by id. Returns nil if not found.
func (c *Cache) Resolve(texName string) *image.NRGBA {
	key := stemOf(texName)

	c.mu.RLock()
	if entry, exists := c.items[key]; exists {
		c.mu.RUnlock()
		return entry.img
	}
	c.mu.RUnlock()

	img := c.load(texName)

	c.mu.Lock()
	defer c.mu.Unlock()
	if entry, exists := c.items[key]; exists {
		return entry.img
	}
	c.items[key] = &cacheEntry{img: img}
	return img
}

func (c *Cache) load(texName string) *image.NRGBA {
	if path, ok := c.index.ResolvePath(texName); ok {
		img, err := LoadTexture(path)
		if err == nil {
			return img
		}
		c.log.Warn("texture: falling back to built-in", "texture", texName, "error", err)
	}
	return Builtin(texName)
}
