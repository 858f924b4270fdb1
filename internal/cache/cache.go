// Package cache holds the in-process coin catalog. The engine renders one
// target at a time; the catalog remembers every coin registered for the
// hunt so the host can advance to the next uncollected one without a
// storage read.
package cache

import (
	"sync"

	"github.com/google/uuid"

	"github.com/geohunt/arcoin/pkg/core"
)

// CoinCache caches registered targets to avoid subsequent storage reads.
// Latency in these calls is critical to quickly process incoming commands.
type CoinCache struct {
	m         sync.Mutex
	coins     map[uuid.UUID]core.TargetPoint
	order     []uuid.UUID
	collected map[uuid.UUID]bool
}

func NewCoinCache() *CoinCache {
	return &CoinCache{
		coins:     make(map[uuid.UUID]core.TargetPoint),
		collected: make(map[uuid.UUID]bool),
	}
}

func (c *CoinCache) Reset() {
	c.m.Lock()
	defer c.m.Unlock()
	c.coins = make(map[uuid.UUID]core.TargetPoint)
	c.order = nil
	c.collected = make(map[uuid.UUID]bool)
}

func (c *CoinCache) Get(id uuid.UUID) (core.TargetPoint, bool) {
	c.m.Lock()
	defer c.m.Unlock()
	if t, ok := c.coins[id]; ok {
		return t, true
	}
	return core.TargetPoint{}, false
}

func (c *CoinCache) Add(t core.TargetPoint) {
	c.m.Lock()
	defer c.m.Unlock()
	if _, exists := c.coins[t.ID]; !exists {
		c.order = append(c.order, t.ID)
	}
	c.coins[t.ID] = t
}

// MarkCollected flags the coin and reports whether this was the first time.
func (c *CoinCache) MarkCollected(id uuid.UUID) bool {
	c.m.Lock()
	defer c.m.Unlock()
	if _, ok := c.coins[id]; !ok {
		return false
	}
	if c.collected[id] {
		return false
	}
	c.collected[id] = true
	return true
}

// NextUncollected returns the earliest registered coin not yet collected.
func (c *CoinCache) NextUncollected() (core.TargetPoint, bool) {
	c.m.Lock()
	defer c.m.Unlock()
	for _, id := range c.order {
		if !c.collected[id] {
			return c.coins[id], true
		}
	}
	return core.TargetPoint{}, false
}

// CollectedCount returns how many coins have been collected.
func (c *CoinCache) CollectedCount() int {
	c.m.Lock()
	defer c.m.Unlock()
	return len(c.collected)
}

// Len returns how many coins are registered.
func (c *CoinCache) Len() int {
	c.m.Lock()
	defer c.m.Unlock()
	return len(c.coins)
}

// SafeCounter is a thread-safe counter
type SafeCounter struct {
	mu sync.Mutex
	v  int
}

func (c *SafeCounter) Value() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.v
}

func (c *SafeCounter) Set(v int) {
	c.mu.Lock()
	c.v = v
	c.mu.Unlock()
}

func (c *SafeCounter) Inc() {
	c.mu.Lock()
	c.v++
	c.mu.Unlock()
}
