package cache

import (
	"sync"
	"time"

	"stockservice/internal/stock"
)

// entry stores the cached record for a single symbol with expiry.
type entry struct {
	expiresAt time.Time
	record    stock.StockRecord
}

// Cache keeps StockRecords per uppercased symbol for a TTL. Records are
// shared between readers and must not be mutated.
//
// Every Invalidate bumps the symbol's generation. A caller that read the
// generation before fetching can use SetIfGeneration so a record built
// before a concurrent purchase is never stored. Generations never decrease:
// Sweep forgets those of uncached symbols and reports floor for them instead.
type Cache struct {
	TTL      time.Duration
	MaxItems int

	now func() time.Time

	mu    sync.RWMutex
	items map[string]entry // key: symbol
	gens  map[string]uint64
	last  uint64 // last generation handed out
	floor uint64 // highest generation Sweep has forgotten
}

// New creates a cache. A nil clock uses time.Now; a non-positive ttl
// disables caching.
func New(ttl time.Duration, maxItems int, clock func() time.Time) *Cache {
	if clock == nil {
		clock = time.Now
	}
	return &Cache{
		TTL:      ttl,
		MaxItems: maxItems,
		now:      clock,
		items:    make(map[string]entry),
		gens:     make(map[string]uint64),
	}
}

// Get returns the record for symbol if present and not expired.
func (c *Cache) Get(symbol string) (stock.StockRecord, bool) {
	if c.TTL <= 0 {
		return stock.StockRecord{}, false
	}
	now := c.now()

	c.mu.RLock()
	defer c.mu.RUnlock()
	if e, ok := c.items[symbol]; ok && now.Before(e.expiresAt) {
		return e.record, true
	}
	return stock.StockRecord{}, false
}

// Set stores record unconditionally.
func (c *Cache) Set(symbol string, record stock.StockRecord) {
	if c.TTL <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.setLocked(symbol, record)
}

// Generation returns the invalidation counter of symbol.
func (c *Cache) Generation(symbol string) uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.generationLocked(symbol)
}

func (c *Cache) generationLocked(symbol string) uint64 {
	if gen, ok := c.gens[symbol]; ok {
		return gen
	}
	return c.floor
}

// SetIfGeneration stores record only if symbol has not been invalidated since
// gen was read. It reports whether the record was stored.
func (c *Cache) SetIfGeneration(symbol string, record stock.StockRecord, gen uint64) bool {
	if c.TTL <= 0 {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.generationLocked(symbol) != gen {
		return false
	}
	c.setLocked(symbol, record)
	return true
}

// Invalidate drops the record of symbol and bumps its generation.
func (c *Cache) Invalidate(symbol string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, symbol)
	c.last++
	c.gens[symbol] = c.last
}

// Sweep removes expired entries and returns how many were dropped. It also
// forgets the generations of symbols with no cached record, so the counters
// of symbols purchased once do not pile up.
func (c *Cache) Sweep() int {
	now := c.now()

	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for k, v := range c.items {
		if !now.Before(v.expiresAt) {
			delete(c.items, k)
			n++
		}
	}
	for k, gen := range c.gens {
		if _, ok := c.items[k]; ok {
			continue
		}
		if gen > c.floor {
			c.floor = gen
		}
		delete(c.gens, k)
	}
	return n
}

// Generations returns how many per-symbol generations are tracked.
func (c *Cache) Generations() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.gens)
}

// Len returns the number of stored entries, expired ones included.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

func (c *Cache) setLocked(symbol string, record stock.StockRecord) {
	now := c.now()
	c.items[symbol] = entry{expiresAt: now.Add(c.TTL), record: record}

	// best-effort cap cache size
	if c.MaxItems > 0 && len(c.items) > c.MaxItems {
		// remove expired first, then arbitrary
		for k, v := range c.items {
			if !now.Before(v.expiresAt) {
				delete(c.items, k)
			}
			if len(c.items) <= c.MaxItems {
				break
			}
		}
		// If still too big, delete arbitrary keys until under limit
		for k := range c.items {
			if len(c.items) <= c.MaxItems {
				break
			}
			if k == symbol {
				continue
			}
			delete(c.items, k)
		}
	}
}
