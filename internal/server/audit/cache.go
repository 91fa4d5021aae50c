package audit

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"

	"github.com/dmitrijs2005/careervault/internal/timex"
)

const (
	DefaultTTL  = 5 * time.Minute
	DefaultSize = 1024

	// computeTimeout bounds a shared computation once it no longer follows
	// any single caller's context.
	computeTimeout = time.Minute
)

// ComputeFunc produces a fresh audit for a vault.
type ComputeFunc func(ctx context.Context) (*Result, error)

type entry struct {
	result    *Result
	expiresAt time.Time
}

// Cache memoizes audits per vault for a fixed TTL. Size is bounded with LRU
// eviction. Concurrent misses for one vault share a single computation.
//
// Every Invalidate bumps the vault's generation. A computation stores its
// result only if the generation it started under is still current, and
// lookups after an invalidation never join a computation started before it.
type Cache struct {
	entries *lru.Cache[string, entry]
	group   singleflight.Group
	ttl     time.Duration
	now     timex.Clock

	mu   sync.Mutex
	gens map[string]uint64
}

type Option func(*Cache)

// WithClock replaces the wall clock.
func WithClock(now timex.Clock) Option {
	return func(c *Cache) { c.now = now }
}

func NewCache(size int, ttl time.Duration, opts ...Option) (*Cache, error) {
	if size <= 0 {
		size = DefaultSize
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	entries, err := lru.New[string, entry](size)
	if err != nil {
		return nil, err
	}

	c := &Cache{entries: entries, ttl: ttl, now: timex.Now, gens: map[string]uint64{}}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

// Get returns the live cached audit for vaultID, or computes and stores a new
// one. forceRefresh always recomputes. Compute errors are returned and not cached.
func (c *Cache) Get(ctx context.Context, vaultID string, forceRefresh bool, compute ComputeFunc) (*Result, error) {
	if compute == nil {
		return nil, errors.New("audit: nil compute function")
	}

	if !forceRefresh {
		if e, ok := c.entries.Get(vaultID); ok && c.now().Before(e.expiresAt) {
			cacheLookups.WithLabelValues(resultHit).Inc()
			return e.result, nil
		}
		cacheLookups.WithLabelValues(resultMiss).Inc()
	} else {
		cacheLookups.WithLabelValues(resultForced).Inc()
	}

	gen := c.generation(vaultID)
	key := vaultID + "@" + strconv.FormatUint(gen, 10)
	if forceRefresh {
		// A forced refresh must not join a computation started before it.
		key = "force:" + key
	}

	// The shared computation outlives any one caller: it keeps ctx values but
	// not its cancellation, and each caller stops waiting on its own ctx.
	shared := context.WithoutCancel(ctx)
	ch := c.group.DoChan(key, func() (any, error) {
		recomputations.Inc()

		cctx, cancel := context.WithTimeout(shared, computeTimeout)
		defer cancel()

		res, err := compute(cctx)
		if err != nil {
			return nil, err
		}
		c.store(vaultID, gen, res)
		return res, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-ch:
		if r.Err != nil {
			return nil, r.Err
		}
		return r.Val.(*Result), nil
	}
}

func (c *Cache) generation(vaultID string) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gens[vaultID]
}

// store caches res unless vaultID was invalidated after gen was read.
func (c *Cache) store(vaultID string, gen uint64, res *Result) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.gens[vaultID] != gen {
		staleDiscards.Inc()
		return
	}
	c.entries.Add(vaultID, entry{result: res, expiresAt: c.now().Add(c.ttl)})
	cacheEntries.Set(float64(c.entries.Len()))
}

// Invalidate drops the cached audit for vaultID and disowns computations
// already running for it.
func (c *Cache) Invalidate(vaultID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.gens[vaultID]++
	c.entries.Remove(vaultID)
	cacheEntries.Set(float64(c.entries.Len()))
}

// Len reports the number of stored entries, expired ones included.
func (c *Cache) Len() int {
	return c.entries.Len()
}

func (c *Cache) TTL() time.Duration {
	return c.ttl
}
