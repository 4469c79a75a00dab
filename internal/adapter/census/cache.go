package census

import (
	"fmt"
	"os"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/willojs/FARS/internal/domain"
	"github.com/willojs/FARS/internal/observability"
)

// Reader loads one accident file.
type Reader interface {
	ReadFile(path string) (domain.Table, error)
}

// CachedReader wraps a Reader with an in-memory LRU cache keyed by path,
// size and modification time, so a rewritten file is read again.
// Cached tables are shared between callers and must not be mutated.
type CachedReader struct {
	inner   Reader
	tables  *lru.Cache[string, domain.Table]
	metrics *observability.Metrics
}

// NewCachedReader creates a cache decorator around a reader holding at most
// maxEntries tables. Sizes below one are raised to one.
func NewCachedReader(inner Reader, maxEntries int, metrics *observability.Metrics) *CachedReader {
	// lru.New only fails for a non-positive size.
	tables, _ := lru.New[string, domain.Table](max(maxEntries, 1))
	return &CachedReader{
		inner:   inner,
		tables:  tables,
		metrics: metrics,
	}
}

func (c *CachedReader) ReadFile(path string) (domain.Table, error) {
	info, err := os.Stat(path)
	if err != nil {
		// Let the inner reader produce the canonical error.
		return c.inner.ReadFile(path)
	}

	key := cacheKey(path, info)
	if table, ok := c.tables.Get(key); ok {
		c.metrics.CacheLookups.WithLabelValues("hit").Inc()
		return table, nil
	}
	c.metrics.CacheLookups.WithLabelValues("miss").Inc()

	table, err := c.inner.ReadFile(path)
	if err != nil {
		return table, err
	}
	c.tables.Add(key, table)
	return table, nil
}

// Len returns the number of cached tables.
func (c *CachedReader) Len() int {
	return c.tables.Len()
}

func cacheKey(path string, info os.FileInfo) string {
	return fmt.Sprintf("%s|%d|%d", path, info.Size(), info.ModTime().UnixNano())
}
