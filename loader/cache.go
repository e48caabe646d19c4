package loader

import (
	"bytes"
	"os"
	"sync/atomic"

	"github.com/ethereum/go-ethereum/log"
	lru "github.com/hashicorp/golang-lru"
	"golang.org/x/text/unicode/norm"
)

// DefaultCacheSize is the number of sources a Cache keeps.
const DefaultCacheSize = 256

var utf8BOM = []byte{0xef, 0xbb, 0xbf}

type cacheKey struct {
	path    string
	size    int64
	modTime int64
}

// Cache holds normalized module sources. An entry is reused while the
// file's size and modification time are unchanged. It is safe for
// concurrent use.
type Cache struct {
	arc    *lru.ARCCache
	hits   atomic.Int64
	misses atomic.Int64
}

func NewCache(size int) (*Cache, error) {
	arc, err := lru.NewARC(size)
	if err != nil {
		return nil, err
	}
	return &Cache{arc: arc}, nil
}

// Read returns the source at path in Unicode normalization form C.
func (c *Cache) Read(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", err
	}
	key := cacheKey{path: path, size: info.Size(), modTime: info.ModTime().UnixNano()}
	if src, ok := c.arc.Get(key); ok {
		c.hits.Add(1)
		log.Debug("Source cache hit", "file", path)
		return src.(string), nil
	}
	c.misses.Add(1)

	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	src := norm.NFC.String(string(bytes.TrimPrefix(data, utf8BOM)))
	c.arc.Add(key, src)
	return src, nil
}

// Stats returns the number of reads served from and missing the cache.
func (c *Cache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

func (c *Cache) Len() int {
	return c.arc.Len()
}
