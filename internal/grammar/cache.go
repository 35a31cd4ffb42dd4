package grammar

import (
	"sync"

	"github.com/cespare/xxhash/v2"
)

type cachedNode struct {
	text string
	node Node
}

// Cache is a bounded map from RQL text to its parsed AST. ASTs are immutable,
// so a cached tree is shared by every caller that parses the same text.
//
// When the cache reaches its capacity the whole map is replaced rather than
// tracking individual entry ages. Only successful parses are cached.
type Cache struct {
	mu        sync.RWMutex
	items     map[uint64]cachedNode
	max       int
	maxValues int
}

// NewCache returns a cache holding at most size trees. maxValues is passed to
// ParseLimited on a miss.
func NewCache(size, maxValues int) *Cache {
	return &Cache{items: make(map[uint64]cachedNode, size), max: size, maxValues: maxValues}
}

func (c *Cache) get(key uint64, text string) (Node, bool) {
	c.mu.RLock()
	v, ok := c.items[key]
	c.mu.RUnlock()
	if !ok || v.text != text {
		return nil, false
	}
	return v.node, true
}

func (c *Cache) put(key uint64, text string, node Node) {
	c.mu.Lock()
	if len(c.items) >= c.max {
		c.items = make(map[uint64]cachedNode, c.max)
	}
	c.items[key] = cachedNode{text: text, node: node}
	c.mu.Unlock()
}

// Parse returns the cached tree for text, parsing it on a miss. hit reports
// whether the tree came from the cache. A nil or zero-sized cache always parses.
func (c *Cache) Parse(text string) (node Node, hit bool, err error) {
	if c == nil || c.max <= 0 {
		maxValues := 0
		if c != nil {
			maxValues = c.maxValues
		}
		node, err = ParseLimited(text, maxValues)
		return node, false, err
	}

	key := xxhash.Sum64String(text)
	if node, ok := c.get(key, text); ok {
		return node, true, nil
	}
	node, err = ParseLimited(text, c.maxValues)
	if err != nil {
		return nil, false, err
	}
	c.put(key, text, node)
	return node, false, nil
}

// Len returns the number of cached trees.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}
