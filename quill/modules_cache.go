package quill

import (
	"crypto/sha256"
	"sync"

	"github.com/golang/groupcache/lru"
)

type digest [sha256.Size]byte

// programCache keeps parsed programs keyed by the digest of their source,
// so the same text imported by several runs is parsed once.
type programCache struct {
	mu      sync.Mutex
	entries *lru.Cache
}

func newProgramCache(maxEntries int) *programCache {
	return &programCache{entries: lru.New(maxEntries)}
}

func (c *programCache) get(key digest) (*Program, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.entries.Get(key)
	if !ok {
		return nil, false
	}
	return v.(*Program), true
}

func (c *programCache) add(key digest, prog *Program) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries.Add(key, prog)
}

func (c *programCache) clear() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := c.entries.Len()
	c.entries.Clear()
	return n
}

func (c *programCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.entries.Len()
}
