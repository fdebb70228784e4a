// Package cache holds locally cached views of remote resource collections.
// Outside of an in-flight mutation a collection reflects the last known
// server state, or an optimistic projection of it. Records are treated as
// immutable values: mutations replace whole records, never edit them in
// place, so snapshots stay valid after they are taken.
package cache

import "sync"

// Record is a cacheable resource record.
type Record interface {
	CacheID() int64
}

// View is any cached view whose contents can be marked stale so the next
// read refetches. Summary and aggregate views derived from a collection
// implement it too.
type View interface {
	Invalidate()
}

// Collection is a keyed, ordered cache of one resource type.
type Collection[T Record] struct {
	mu     sync.RWMutex
	items  []T
	loaded bool
	stale  bool
}

func NewCollection[T Record]() *Collection[T] {
	return &Collection[T]{}
}

// Snapshot returns an immutable copy of the current items, suitable for
// restoring after a failed mutation.
func (c *Collection[T]) Snapshot() []T {
	c.mu.RLock()
	defer c.mu.RUnlock()

	snap := make([]T, len(c.items))
	copy(snap, c.items)

	return snap
}

// Restore puts the collection back to a previously taken snapshot.
func (c *Collection[T]) Restore(snap []T) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = make([]T, len(snap))
	copy(c.items, snap)
}

// SetAll replaces the contents with a fresh server fetch.
func (c *Collection[T]) SetAll(items []T) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = make([]T, len(items))
	copy(c.items, items)

	c.loaded = true
	c.stale = false
}

// Items returns a copy of the cached records in order.
func (c *Collection[T]) Items() []T {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]T, len(c.items))
	copy(out, c.items)

	return out
}

func (c *Collection[T]) Get(id int64) (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, it := range c.items {
		if it.CacheID() == id {
			return it, true
		}
	}

	var zero T

	return zero, false
}

func (c *Collection[T]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.items)
}

// Prepend inserts a record at the front, where freshly created rows render.
func (c *Collection[T]) Prepend(item T) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = append([]T{item}, c.items...)
}

// Replace swaps the record with id oldID for item, keeping its position.
// Used to reconcile a provisional record with the authoritative one.
func (c *Collection[T]) Replace(oldID int64, item T) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.items {
		if c.items[i].CacheID() == oldID {
			c.items[i] = item
			return
		}
	}
}

// Upsert replaces the record with the same id, or appends it.
func (c *Collection[T]) Upsert(item T) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.items {
		if c.items[i].CacheID() == item.CacheID() {
			c.items[i] = item
			return
		}
	}

	c.items = append(c.items, item)
}

func (c *Collection[T]) Remove(id int64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.items {
		if c.items[i].CacheID() == id {
			c.items = append(c.items[:i], c.items[i+1:]...)
			return
		}
	}
}

// Invalidate marks the contents stale so the next read refetches.
func (c *Collection[T]) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stale = true
}

// NeedsFetch reports whether a read-through fetch is due.
func (c *Collection[T]) NeedsFetch() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return !c.loaded || c.stale
}

// Value is a single-record cached view, for summaries and settings.
type Value[T any] struct {
	mu     sync.RWMutex
	val    T
	loaded bool
	stale  bool
}

func NewValue[T any]() *Value[T] {
	return &Value[T]{}
}

func (v *Value[T]) Set(val T) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.val = val
	v.loaded = true
	v.stale = false
}

func (v *Value[T]) Get() (T, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()

	return v.val, v.loaded
}

func (v *Value[T]) Invalidate() {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.stale = true
}

func (v *Value[T]) NeedsFetch() bool {
	v.mu.RLock()
	defer v.mu.RUnlock()

	return !v.loaded || v.stale
}
