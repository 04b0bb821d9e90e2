package perfsync

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
)

// ProgramCache stores compiled rule programs. Keys are prefixed with the
// engine name so engines can share a cache.
type ProgramCache interface {
	Get(key string) (any, bool)
	Set(key string, value any)
}

// LRUProgramCache is a bounded, concurrency-safe ProgramCache.
type LRUProgramCache struct {
	cache *lru.Cache[string, any]
}

// NewLRUProgramCache returns a cache holding at most size programs.
func NewLRUProgramCache(size int) (*LRUProgramCache, error) {
	cache, err := lru.New[string, any](size)
	if err != nil {
		return nil, fmt.Errorf("perfsync: program cache: %w", err)
	}
	return &LRUProgramCache{cache: cache}, nil
}

func (c *LRUProgramCache) Get(key string) (any, bool) {
	return c.cache.Get(key)
}

func (c *LRUProgramCache) Set(key string, value any) {
	c.cache.Add(key, value)
}

// Len reports how many programs are cached.
func (c *LRUProgramCache) Len() int {
	return c.cache.Len()
}
