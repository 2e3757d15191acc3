package embedding

import "sync"

// EmbeddingCache is a fixed-capacity LRU cache of embeddings keyed by the
// exact input text. Safe for concurrent use.
type EmbeddingCache struct {
	mu       sync.Mutex
	capacity int
	entries  map[string]*cacheNode
	head     *cacheNode
	tail     *cacheNode
}

type cacheNode struct {
	key        string
	vec        []float32
	prev, next *cacheNode
}

// NewEmbeddingCache creates a cache holding at most capacity entries.
func NewEmbeddingCache(capacity int) *EmbeddingCache {
	if capacity <= 0 {
		capacity = 1
	}
	return &EmbeddingCache{
		capacity: capacity,
		entries:  make(map[string]*cacheNode, capacity),
	}
}

// Get returns the cached embedding for key and marks it most recently used.
func (c *EmbeddingCache) Get(key string) ([]float32, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	n, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	c.moveToFront(n)
	return n.vec, true
}

// Set stores the embedding for key, evicting the least recently used entry
// when the cache is full.
func (c *EmbeddingCache) Set(key string, vec []float32) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if n, ok := c.entries[key]; ok {
		n.vec = vec
		c.moveToFront(n)
		return
	}
	n := &cacheNode{key: key, vec: vec}
	c.entries[key] = n
	c.pushFront(n)
	if len(c.entries) > c.capacity {
		evicted := c.tail
		c.unlink(evicted)
		delete(c.entries, evicted.key)
	}
}

func (c *EmbeddingCache) moveToFront(n *cacheNode) {
	if c.head == n {
		return
	}
	c.unlink(n)
	c.pushFront(n)
}

func (c *EmbeddingCache) pushFront(n *cacheNode) {
	n.prev = nil
	n.next = c.head
	if c.head != nil {
		c.head.prev = n
	}
	c.head = n
	if c.tail == nil {
		c.tail = n
	}
}

func (c *EmbeddingCache) unlink(n *cacheNode) {
	if n.prev != nil {
		n.prev.next = n.next
	} else {
		c.head = n.next
	}
	if n.next != nil {
		n.next.prev = n.prev
	} else {
		c.tail = n.prev
	}
	n.prev, n.next = nil, nil
}
