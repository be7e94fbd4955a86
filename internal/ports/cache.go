package ports

import (
	"fmt"
	"sync"

	"github.com/sells-group/foodaccess-cli/internal/geo"
)

// Cache is a read-through response cache keyed by rounded coordinates. Grid
// cells a few meters apart would otherwise trigger near-duplicate collaborator
// calls; rounding to four decimal places (~11 m) collapses them. Each key is
// produced by exactly one caller: concurrent callers for the same key block
// on a sync.Once, so a value is never overwritten once set.
type Cache struct {
	entries sync.Map // key → *cacheEntry
}

type cacheEntry struct {
	once sync.Once
	val  any
	err  error
}

// NewCache creates an empty response cache.
func NewCache() *Cache {
	return &Cache{}
}

// Key builds a cache key from a namespace and a coordinate rounded to four
// decimal places.
func Key(kind string, p geo.Point) string {
	return fmt.Sprintf("%s:%.4f:%.4f", kind, p.Lat, p.Lng)
}

// Do returns the cached value for key, invoking fn exactly once per key to
// produce it. Errors are cached alongside values so a failing collaborator is
// not hammered for every nearby cell in the same run.
func Do[T any](c *Cache, key string, fn func() (T, error)) (T, error) {
	actual, _ := c.entries.LoadOrStore(key, &cacheEntry{})
	e := actual.(*cacheEntry)
	e.once.Do(func() {
		e.val, e.err = fn()
	})
	if e.err != nil {
		var zero T
		return zero, e.err
	}
	return e.val.(T), nil
}

// Len returns the number of cached keys, for diagnostics.
func (c *Cache) Len() int {
	n := 0
	c.entries.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}
