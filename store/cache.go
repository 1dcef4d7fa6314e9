package store

import (
	"sync"

	"github.com/yeremiapane/orderin/models"
)

// Entity is implemented by the pointer types of the stored models.
type Entity[T any] interface {
	GetMeta() *models.Meta
	Clone() T
	Normalize()
}

// Snapshot is the state of one cache slot before an optimistic write.
type Snapshot[T any] struct {
	ID      string
	Before  T
	Existed bool
}

// Cache holds the canonical in-memory copies, in insertion order. Reads and
// writes copy entities so callers never share memory with the cache.
type Cache[T Entity[T]] struct {
	mu    sync.RWMutex
	items map[string]T
	order []string
}

func NewCache[T Entity[T]]() *Cache[T] {
	return &Cache[T]{items: make(map[string]T)}
}

func (c *Cache[T]) Items() []T {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]T, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.items[id].Clone())
	}
	return out
}

func (c *Cache[T]) Get(id string) (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.items[id]
	if !ok {
		var zero T
		return zero, false
	}
	return e.Clone(), true
}

func (c *Cache[T]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.order)
}

// ApplyOptimistic stores entity and returns what the slot held before.
func (c *Cache[T]) ApplyOptimistic(entity T) Snapshot[T] {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := entity.GetMeta().ID
	snap := Snapshot[T]{ID: id}
	if prev, ok := c.items[id]; ok {
		snap.Before = prev
		snap.Existed = true
	} else {
		c.order = append(c.order, id)
	}
	c.items[id] = entity.Clone()
	return snap
}

// Rollback restores a slot to its snapshot.
func (c *Cache[T]) Rollback(snap Snapshot[T]) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if snap.Existed {
		if _, ok := c.items[snap.ID]; !ok {
			c.order = append(c.order, snap.ID)
		}
		c.items[snap.ID] = snap.Before
		return
	}
	c.remove(snap.ID)
}

// Reconcile replaces an entry with the acknowledged version.
func (c *Cache[T]) Reconcile(entity T) {
	c.ApplyOptimistic(entity)
}

func (c *Cache[T]) Remove(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.remove(id)
}

// Replace swaps the whole collection.
func (c *Cache[T]) Replace(items []T) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = make(map[string]T, len(items))
	c.order = make([]string, 0, len(items))
	for _, e := range items {
		id := e.GetMeta().ID
		if _, dup := c.items[id]; !dup {
			c.order = append(c.order, id)
		}
		c.items[id] = e.Clone()
	}
}

func (c *Cache[T]) remove(id string) {
	if _, ok := c.items[id]; !ok {
		return
	}
	delete(c.items, id)
	for i, v := range c.order {
		if v == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
}
