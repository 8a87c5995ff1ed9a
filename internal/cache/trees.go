package cache

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"financeviz/internal/core"
	"financeviz/internal/metrics"
)

// Trees memoises classification trees per year and perspective. Concurrent
// misses on the same key share one build.
//
// Every year carries a generation bumped by Invalidate and Purge. A build
// started under an older generation is returned to its callers but never
// stored, and later callers do not join it.
type Trees struct {
	cache  Cache[*core.Node]
	flight singleflight.Group

	mu    sync.Mutex
	epoch uint64
	years map[int]uint64

	hits   atomic.Int64
	misses atomic.Int64
}

// NewTrees creates a tree cache holding at most size trees for ttl.
func NewTrees(size int, ttl time.Duration) *Trees {
	return &Trees{
		cache: NewLRUCache[*core.Node](size, ttl),
		years: make(map[int]uint64),
	}
}

type generation struct{ epoch, year uint64 }

func (t *Trees) generation(year int) generation {
	t.mu.Lock()
	defer t.mu.Unlock()
	return generation{epoch: t.epoch, year: t.years[year]}
}

func treeKey(year int, perspective string) string {
	return fmt.Sprintf("%d/%s", year, perspective)
}

// Get returns the cached tree for year and perspective, calling build on a
// miss. A nil tree is cached as well: it means the perspective has no data.
func (t *Trees) Get(year int, perspective string, build func() *core.Node) *core.Node {
	key := treeKey(year, perspective)
	if tree, ok := t.cache.Get(key); ok {
		t.hits.Add(1)
		metrics.TreeCacheLookup(true)
		return tree
	}
	t.misses.Add(1)
	metrics.TreeCacheLookup(false)

	gen := t.generation(year)
	flightKey := fmt.Sprintf("%s#%d.%d", key, gen.epoch, gen.year)
	v, _, _ := t.flight.Do(flightKey, func() (any, error) {
		tree := build()
		t.mu.Lock()
		defer t.mu.Unlock()
		if gen == (generation{epoch: t.epoch, year: t.years[year]}) {
			t.cache.Set(key, tree)
		}
		return tree, nil
	})
	return v.(*core.Node)
}

// Invalidate drops every tree of year and returns how many were removed.
func (t *Trees) Invalidate(year int) int {
	t.mu.Lock()
	t.years[year]++
	t.mu.Unlock()

	prefix := strconv.Itoa(year) + "/"
	removed := 0
	for _, key := range t.cache.Keys() {
		if strings.HasPrefix(key, prefix) {
			t.cache.Delete(key)
			removed++
		}
	}
	metrics.TreesInvalidated(removed)
	return removed
}

// Purge drops every tree.
func (t *Trees) Purge() {
	t.mu.Lock()
	t.epoch++
	t.mu.Unlock()

	metrics.TreesInvalidated(t.cache.Size())
	t.cache.Purge()
}

// Stats returns the hit and miss counters.
func (t *Trees) Stats() (hits, misses int64) {
	return t.hits.Load(), t.misses.Load()
}

// Size returns the number of cached trees.
func (t *Trees) Size() int {
	return t.cache.Size()
}
