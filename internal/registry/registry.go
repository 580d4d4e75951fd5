package registry

import (
	"sync"
	"time"
)

// Registry maps session IDs to live values. Creation for an ID is serialized:
// concurrent GetOrCreate calls for the same ID get the same value.
type Registry[T any] struct {
	mu       sync.Mutex
	items    map[string]T
	removals map[string]*pendingRemoval

	create   func(id string) T
	onRemove func(id string, item T)
	gcDelay  time.Duration
}

type pendingRemoval struct {
	timer *time.Timer
}

// New creates a registry. onRemove, if set, runs after an item leaves the map,
// outside the registry lock.
func New[T any](gcDelay time.Duration, create func(id string) T, onRemove func(id string, item T)) *Registry[T] {
	return &Registry[T]{
		items:    make(map[string]T),
		removals: make(map[string]*pendingRemoval),
		create:   create,
		onRemove: onRemove,
		gcDelay:  gcDelay,
	}
}

// GetOrCreate returns the item for id, creating it if needed. created reports
// whether this call made it.
func (r *Registry[T]) GetOrCreate(id string) (item T, created bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if item, ok := r.items[id]; ok {
		return item, false
	}
	item = r.create(id)
	r.items[id] = item
	return item, true
}

func (r *Registry[T]) Get(id string) (T, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.items[id]
	return item, ok
}

// Remove deletes id and cancels any scheduled removal. Removing an unknown ID
// is a no-op.
func (r *Registry[T]) Remove(id string) {
	r.mu.Lock()
	item, ok := r.items[id]
	if ok {
		delete(r.items, id)
	}
	r.cancelLocked(id)
	r.mu.Unlock()

	if ok && r.onRemove != nil {
		r.onRemove(id, item)
	}
}

// ScheduleRemoval removes id after the GC delay unless CancelRemoval is called
// first. Scheduling again restarts the countdown.
func (r *Registry[T]) ScheduleRemoval(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[id]; !ok {
		return
	}
	r.cancelLocked(id)

	pending := &pendingRemoval{}
	pending.timer = time.AfterFunc(r.gcDelay, func() {
		r.mu.Lock()
		// A newer schedule or a cancel replaced us.
		if r.removals[id] != pending {
			r.mu.Unlock()
			return
		}
		delete(r.removals, id)
		r.mu.Unlock()
		r.Remove(id)
	})
	r.removals[id] = pending
}

// CancelRemoval stops a scheduled removal of id, if any.
func (r *Registry[T]) CancelRemoval(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cancelLocked(id)
}

func (r *Registry[T]) cancelLocked(id string) {
	if pending, ok := r.removals[id]; ok {
		pending.timer.Stop()
		delete(r.removals, id)
	}
}

func (r *Registry[T]) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.items)
}

// Each calls fn for every item. fn must not call back into the registry.
func (r *Registry[T]) Each(fn func(id string, item T)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, item := range r.items {
		fn(id, item)
	}
}
