package store

import (
	"sync"
	"sync/atomic"
)

// Cell holds the latest value of T. Reads are lock free. Every watcher owns
// a one-slot channel that always holds the most recent value not yet
// received, so slow watchers skip intermediate values instead of blocking
// the writer.
//
// Set must only be called from a single goroutine.
type Cell[T any] struct {
	value atomic.Pointer[T]

	mu       sync.Mutex
	watchers map[uint64]chan T
	nextID   uint64
	closed   bool
}

// NewCell creates a Cell holding initial.
func NewCell[T any](initial T) *Cell[T] {
	c := &Cell[T]{watchers: make(map[uint64]chan T)}
	c.value.Store(&initial)
	return c
}

// Load returns the current value.
func (c *Cell[T]) Load() T {
	return *c.value.Load()
}

// Set replaces the value and notifies watchers.
func (c *Cell[T]) Set(v T) {
	c.value.Store(&v)

	c.mu.Lock()
	defer c.mu.Unlock()
	for _, ch := range c.watchers {
		offer(ch, v)
	}
}

// offer replaces whatever is buffered in ch with v.
func offer[T any](ch chan T, v T) {
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- v:
	default:
	}
}

// Watch returns a channel that first yields the current value and then
// the latest value after every Set. The cancel func releases the watcher;
// the channel is closed by cancel or by Close.
func (c *Cell[T]) Watch() (<-chan T, func()) {
	ch := make(chan T, 1)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		ch <- c.Load()
		close(ch)
		return ch, func() {}
	}

	id := c.nextID
	c.nextID++
	c.watchers[id] = ch
	ch <- c.Load()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			c.mu.Lock()
			defer c.mu.Unlock()
			if w, ok := c.watchers[id]; ok {
				delete(c.watchers, id)
				close(w)
			}
		})
	}
}

// Close closes every watcher channel. Later Watch calls receive the final
// value on an already closed channel.
func (c *Cell[T]) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	for id, ch := range c.watchers {
		delete(c.watchers, id)
		close(ch)
	}
}
