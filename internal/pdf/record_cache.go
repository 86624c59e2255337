package pdf

import (
	"os"
	"sync"
	"time"

	"github.com/a3tai/mcp-invoice-contract/internal/model"
)

// recordKey identifies one version of a file. A rewritten file gets a new
// key, so stale records age out instead of being served.
type recordKey struct {
	path    string
	size    int64
	modTime time.Time
}

func keyFor(path string, info os.FileInfo) recordKey {
	return recordKey{path: path, size: info.Size(), modTime: info.ModTime()}
}

// RecordCache is a thread-safe least recently used cache of extracted
// invoices. Cached records are shared and must not be modified.
type RecordCache struct {
	mutex    sync.Mutex
	capacity int
	items    map[recordKey]*recordNode
	head     *recordNode // most recently used
	tail     *recordNode // least recently used
	hits     int64
	misses   int64
}

type recordNode struct {
	key    recordKey
	record *model.InvoiceRecord
	prev   *recordNode
	next   *recordNode
}

// CacheStats reports cache usage
type CacheStats struct {
	Hits     int64 `json:"hits"`
	Misses   int64 `json:"misses"`
	Size     int   `json:"size"`
	Capacity int   `json:"capacity"`
}

// NewRecordCache creates a cache holding at most capacity records. A
// capacity below one yields nil, which caches nothing.
func NewRecordCache(capacity int) *RecordCache {
	if capacity < 1 {
		return nil
	}

	c := &RecordCache{
		capacity: capacity,
		items:    make(map[recordKey]*recordNode),
		head:     &recordNode{},
		tail:     &recordNode{},
	}
	c.head.next = c.tail
	c.tail.prev = c.head
	return c
}

// Get returns the record extracted from this version of the file
func (c *RecordCache) Get(path string, info os.FileInfo) (*model.InvoiceRecord, bool) {
	if c == nil {
		return nil, false
	}
	c.mutex.Lock()
	defer c.mutex.Unlock()

	node, ok := c.items[keyFor(path, info)]
	if !ok {
		c.misses++
		return nil, false
	}
	c.moveToFront(node)
	c.hits++
	return node.record, true
}

// Put stores rec, evicting the least recently used record when full
func (c *RecordCache) Put(path string, info os.FileInfo, rec *model.InvoiceRecord) {
	if c == nil || rec == nil {
		return
	}
	c.mutex.Lock()
	defer c.mutex.Unlock()

	key := keyFor(path, info)
	if node, ok := c.items[key]; ok {
		node.record = rec
		c.moveToFront(node)
		return
	}

	node := &recordNode{key: key, record: rec}
	c.addToFront(node)
	c.items[key] = node
	if len(c.items) > c.capacity {
		lru := c.tail.prev
		c.removeNode(lru)
		delete(c.items, lru.key)
	}
}

// Clear drops every record and resets the counters
func (c *RecordCache) Clear() {
	if c == nil {
		return
	}
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.items = make(map[recordKey]*recordNode)
	c.head.next = c.tail
	c.tail.prev = c.head
	c.hits, c.misses = 0, 0
}

// Stats returns the hit counters and occupancy
func (c *RecordCache) Stats() CacheStats {
	if c == nil {
		return CacheStats{}
	}
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return CacheStats{Hits: c.hits, Misses: c.misses, Size: len(c.items), Capacity: c.capacity}
}

func (c *RecordCache) moveToFront(node *recordNode) {
	c.removeNode(node)
	c.addToFront(node)
}

func (c *RecordCache) addToFront(node *recordNode) {
	node.prev = c.head
	node.next = c.head.next
	c.head.next.prev = node
	c.head.next = node
}

func (c *RecordCache) removeNode(node *recordNode) {
	node.prev.next = node.next
	node.next.prev = node.prev
}
