package store

import (
	"sync"

	"market-dashboard/src/utils"
)

// -----------------------------------------------------------------------------
// Cell
// -----------------------------------------------------------------------------

// Cell is an observable value. Writes run on the event loop; observers are
// called synchronously after each write, in write order, with the value that
// write produced. Values handed out must be treated as immutable.
type Cell[T any] struct {
	loop      *utils.EventLoop
	mu        sync.RWMutex
	value     T
	nextID    uint64
	observers []cellObserver[T]
}

type cellObserver[T any] struct {
	id uint64
	fn func(T)
}

// -----------------------------------------------------------------------------

func NewCell[T any](loop *utils.EventLoop, initial T) *Cell[T] {
	return &Cell[T]{loop: loop, value: initial}
}

// -----------------------------------------------------------------------------

// Get returns the latest written value.
func (c *Cell[T]) Get() T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.value
}

// -----------------------------------------------------------------------------

// Set replaces the value.
func (c *Cell[T]) Set(v T) {
	c.Update(func(T) T { return v })
}

// -----------------------------------------------------------------------------

// Update derives the next value from the current one. fn runs on the event
// loop, so concurrent updates never lose each other's writes.
func (c *Cell[T]) Update(fn func(T) T) {
	c.loop.Post(func() {
		c.mu.Lock()
		next := fn(c.value)
		c.value = next
		observers := make([]cellObserver[T], len(c.observers))
		copy(observers, c.observers)
		c.mu.Unlock()

		for _, o := range observers {
			o.fn(next)
		}
	})
}

// -----------------------------------------------------------------------------

// Subscribe registers fn for future writes. The returned function removes it
// and may be called more than once.
func (c *Cell[T]) Subscribe(fn func(T)) func() {
	c.mu.Lock()
	c.nextID++
	id := c.nextID
	c.observers = append(c.observers, cellObserver[T]{id: id, fn: fn})
	c.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			defer c.mu.Unlock()
			for i, o := range c.observers {
				if o.id == id {
					c.observers = append(c.observers[:i:i], c.observers[i+1:]...)
					return
				}
			}
		})
	}
}

// -----------------------------------------------------------------------------

// ObserverCount is the number of registered observers.
func (c *Cell[T]) ObserverCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.observers)
}
