package cache

import (
	"time"

	"github.com/allegro/bigcache"
)

// Cache wraps bigcache. Scans use one instance per concern (seen
// values, delivered events) so entries never leak across scan runs.
type Cache struct {
	ID    string
	cache *bigcache.BigCache
}

// New returns initialized Cache
func New(name string, lifetimeMinutes int, shards int) (*Cache, error) {
	c := Cache{}
	c.ID = name
	// default to 60 minutes, the typical length of a scan run
	if lifetimeMinutes == 0 {
		lifetimeMinutes = 60
	}
	if shards == 0 {
		shards = 128
	}
	config := bigcache.Config{
		// number of shards (must be a power of 2)
		Shards:     shards,
		LifeWindow: time.Duration(lifetimeMinutes) * time.Minute,
		// used only in initial memory allocation
		MaxEntriesInWindow: shards * lifetimeMinutes * 60,
		// max entry size in bytes, used only in initial memory allocation
		MaxEntrySize: 500,
		Verbose:      false,
		// cache will not allocate more memory than this limit (MB),
		// oldest entries are overridden once reached
		HardMaxCacheSize: shards,
	}

	p, err := bigcache.NewBigCache(config)
	if err != nil {
		return nil, err
	}
	c.cache = p
	return &c, nil
}

// Set store the key value in cache
func (c *Cache) Set(key string, value []byte) {
	c.cache.Set(key, value)
}

// Get returns value of key from cache
func (c *Cache) Get(key string) (value []byte, err error) {
	value, err = c.cache.Get(key)
	return
}

// Exists tells whether key is present in cache
func (c *Cache) Exists(key string) bool {
	_, err := c.cache.Get(key)
	return err == nil
}
