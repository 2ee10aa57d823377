package lemma

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/heartmarshall/lexicon/internal/domain"
)

// Cache stores resolved headwords by lookup key.
type Cache interface {
	Get(ctx context.Context, key domain.LemmaKey) (string, bool)
	Put(ctx context.Context, key domain.LemmaKey, lemma string)
}

// MemoryCache is an in-process cache without expiration. It is unbounded
// unless created with a positive capacity, in which case least recently used
// keys are evicted. Safe for concurrent use.
type MemoryCache struct {
	mu    sync.RWMutex
	items map[string]string
	lru   *lru.Cache[string, string]
}

// NewMemoryCache creates a cache. capacity <= 0 means unbounded.
func NewMemoryCache(capacity int) *MemoryCache {
	if capacity > 0 {
		l, err := lru.New[string, string](capacity)
		if err == nil {
			return &MemoryCache{lru: l}
		}
	}
	return &MemoryCache{items: make(map[string]string)}
}

func (c *MemoryCache) Get(_ context.Context, key domain.LemmaKey) (string, bool) {
	k := key.CacheKey()
	if c.lru != nil {
		return c.lru.Get(k)
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.items[k]
	return v, ok
}

func (c *MemoryCache) Put(_ context.Context, key domain.LemmaKey, lemma string) {
	k := key.CacheKey()
	if c.lru != nil {
		c.lru.Add(k, lemma)
		return
	}
	c.mu.Lock()
	c.items[k] = lemma
	c.mu.Unlock()
}

// Len returns the number of cached keys.
func (c *MemoryCache) Len() int {
	if c.lru != nil {
		return c.lru.Len()
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Purge removes every key.
func (c *MemoryCache) Purge() {
	if c.lru != nil {
		c.lru.Purge()
		return
	}
	c.mu.Lock()
	c.items = make(map[string]string)
	c.mu.Unlock()
}

// ---------------------------------------------------------------------------
// Layered
// ---------------------------------------------------------------------------

type persistentStore interface {
	Get(ctx context.Context, key domain.LemmaKey) (string, error)
	Put(ctx context.Context, key domain.LemmaKey, lemma string) error
}

// Layered reads through and writes through a persistent store behind a
// MemoryCache. Store errors are logged and treated as misses.
type Layered struct {
	mem   *MemoryCache
	store persistentStore
	log   *slog.Logger
}

func NewLayered(logger *slog.Logger, mem *MemoryCache, store persistentStore) *Layered {
	return &Layered{
		mem:   mem,
		store: store,
		log:   logger.With("service", "lemma_cache"),
	}
}

func (c *Layered) Get(ctx context.Context, key domain.LemmaKey) (string, bool) {
	if v, ok := c.mem.Get(ctx, key); ok {
		return v, true
	}

	v, err := c.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			c.log.WarnContext(ctx, "persistent lemma cache read failed",
				slog.String("word", key.RawWord),
				slog.String("error", err.Error()),
			)
		}
		return "", false
	}

	c.mem.Put(ctx, key, v)
	return v, true
}

func (c *Layered) Put(ctx context.Context, key domain.LemmaKey, lemma string) {
	c.mem.Put(ctx, key, lemma)
	if err := c.store.Put(ctx, key, lemma); err != nil {
		c.log.WarnContext(ctx, "persistent lemma cache write failed",
			slog.String("word", key.RawWord),
			slog.String("error", err.Error()),
		)
	}
}
