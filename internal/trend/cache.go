package trend

import (
	"fmt"
	"math"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/nhle/activity-sync/internal/model"
)

const defaultCacheSize = 256

// cacheKey identifies one generated series.
type cacheKey struct {
	key    string
	anchor uint64
	length int
}

// Cache memoises generated series. Callers receive copies, so mutating a
// returned series never affects later lookups.
type Cache struct {
	entries *lru.Cache[cacheKey, Series]
}

// NewCache creates a cache holding up to size series. A non-positive size
// falls back to the default.
func NewCache(size int) (*Cache, error) {
	if size <= 0 {
		size = defaultCacheSize
	}
	entries, err := lru.New[cacheKey, Series](size)
	if err != nil {
		return nil, fmt.Errorf("creating trend cache: %w", err)
	}
	return &Cache{entries: entries}, nil
}

// Generate behaves like the package-level Generate but reuses earlier
// results for identical inputs.
func (c *Cache) Generate(key string, anchor float64, length int) Series {
	k := cacheKey{key: key, anchor: math.Float64bits(anchor), length: length}
	if s, ok := c.entries.Get(k); ok {
		return clone(s)
	}

	s := Generate(key, anchor, length)
	c.entries.Add(k, s)
	return clone(s)
}

// SeriesFor is the package-level SeriesFor with generated series served
// from the cache.
func (c *Cache) SeriesFor(m model.MetricSnapshot, length int) Series {
	return seriesFor(m, length, c.Generate)
}

// Len reports the number of cached series.
func (c *Cache) Len() int {
	return c.entries.Len()
}

func clone(s Series) Series {
	out := make(Series, len(s))
	copy(out, s)
	return out
}
