package workingset

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/floats"
)

var (
	// ErrCapacity indicates a non-positive per-example capacity.
	ErrCapacity = errors.New("workingset: capacity must be positive")
	// ErrWindow indicates a negative inactivity window.
	ErrWindow = errors.New("workingset: inactive window must be non-negative")
	// ErrExampleRange indicates an example index outside the cache.
	ErrExampleRange = errors.New("workingset: example index out of range")
)

// Constraint is one cached cutting plane for Example.
type Constraint[Y any] struct {
	Example    int
	Labeling   Y
	Delta      []float64 // psi(x, y_true) - psi(x, Labeling)
	Loss       float64
	Created    int
	LastActive int
	Alpha      float64 // dual weight from the latest master solve

	seq uint64
}

// Violation returns Loss - w·Delta. w must have len(Delta) entries.
func (c *Constraint[Y]) Violation(w []float64) float64 {
	return c.Loss - floats.Dot(w, c.Delta)
}

// older reports whether a should be evicted before b.
func older[Y any](a, b *Constraint[Y]) bool {
	if a.LastActive != b.LastActive {
		return a.LastActive < b.LastActive
	}
	if a.Created != b.Created {
		return a.Created < b.Created
	}

	return a.seq < b.seq
}

// Cache holds at most Capacity() constraints per example.
type Cache[Y any] struct {
	capacity int
	window   int
	slots    [][]*Constraint[Y]
	size     int
	seq      uint64
}

// New returns an empty cache for nExamples examples.
// Returns ErrCapacity if capacity < 1, ErrWindow if window < 0.
func New[Y any](nExamples, capacity, window int) (*Cache[Y], error) {
	if capacity < 1 {
		return nil, fmt.Errorf("%w: %d", ErrCapacity, capacity)
	}
	if window < 0 {
		return nil, fmt.Errorf("%w: %d", ErrWindow, window)
	}
	if nExamples < 0 {
		return nil, fmt.Errorf("%w: %d examples", ErrExampleRange, nExamples)
	}
	slots := make([][]*Constraint[Y], nExamples)
	for i := range slots {
		slots[i] = make([]*Constraint[Y], 0, capacity)
	}

	return &Cache[Y]{capacity: capacity, window: window, slots: slots}, nil
}

// Capacity returns the per-example bound.
func (c *Cache[Y]) Capacity() int { return c.capacity }

// Window returns the inactivity window.
func (c *Cache[Y]) Window() int { return c.window }

// NExamples returns the number of example slot lists.
func (c *Cache[Y]) NExamples() int { return len(c.slots) }

// Len returns the total number of cached constraints.
func (c *Cache[Y]) Len() int { return c.size }

// ExampleLen returns the number of constraints cached for example i.
func (c *Cache[Y]) ExampleLen(i int) int {
	if i < 0 || i >= len(c.slots) {
		return 0
	}
	return len(c.slots[i])
}

// Example returns the constraints of example i in insertion order.
// The slice is owned by the cache and valid until the next mutation.
func (c *Cache[Y]) Example(i int) []*Constraint[Y] {
	if i < 0 || i >= len(c.slots) {
		return nil
	}
	return c.slots[i]
}

// All returns every constraint, by ascending example and insertion order.
// Complexity: O(Len()).
func (c *Cache[Y]) All() []*Constraint[Y] {
	out := make([]*Constraint[Y], 0, c.size)
	for _, s := range c.slots {
		out = append(out, s...)
	}

	return out
}

// Find returns the first constraint of example i whose labeling satisfies
// match, or nil.
func (c *Cache[Y]) Find(i int, match func(Y) bool) *Constraint[Y] {
	for _, con := range c.Example(i) {
		if match(con.Labeling) {
			return con
		}
	}

	return nil
}

// Add inserts a new constraint for example i created at iteration iter.
// If the example is full, the stalest entry is evicted first and returned.
// Complexity: O(Capacity()).
func (c *Cache[Y]) Add(i int, labeling Y, delta []float64, loss float64, iter int) (added, evicted *Constraint[Y], err error) {
	if i < 0 || i >= len(c.slots) {
		return nil, nil, fmt.Errorf("%w: %d", ErrExampleRange, i)
	}
	s := c.slots[i]
	if len(s) == c.capacity {
		victim := 0
		for j := 1; j < len(s); j++ {
			if older(s[j], s[victim]) {
				victim = j
			}
		}
		evicted = s[victim]
		copy(s[victim:], s[victim+1:])
		s[len(s)-1] = nil
		s = s[:len(s)-1]
		c.size--
	}
	c.seq++
	added = &Constraint[Y]{
		Example:    i,
		Labeling:   labeling,
		Delta:      delta,
		Loss:       loss,
		Created:    iter,
		LastActive: iter,
		seq:        c.seq,
	}
	c.slots[i] = append(s, added)
	c.size++

	return added, evicted, nil
}

// Clone returns a deep copy whose Created and LastActive stamps are moved
// by shift, so a continuing run can restart its iteration count. Labelings
// are copied by value; Delta vectors are copied.
func (c *Cache[Y]) Clone(shift int) *Cache[Y] {
	out := &Cache[Y]{
		capacity: c.capacity,
		window:   c.window,
		slots:    make([][]*Constraint[Y], len(c.slots)),
		size:     c.size,
		seq:      c.seq,
	}
	for i, s := range c.slots {
		out.slots[i] = make([]*Constraint[Y], len(s), c.capacity)
		for j, con := range s {
			dup := *con
			dup.Delta = append([]float64(nil), con.Delta...)
			dup.Created += shift
			dup.LastActive += shift
			out.slots[i][j] = &dup
		}
	}

	return out
}

// Touch marks con as active at iteration iter. A nil constraint is ignored.
func (c *Cache[Y]) Touch(con *Constraint[Y], iter int) {
	if con == nil {
		return
	}
	if iter > con.LastActive {
		con.LastActive = iter
	}
}

// Prune removes every constraint with iter - LastActive > Window() and
// returns the removed ones in example order.
// Complexity: O(Len()).
func (c *Cache[Y]) Prune(iter int) []*Constraint[Y] {
	var removed []*Constraint[Y]
	for i, s := range c.slots {
		kept := s[:0]
		for _, con := range s {
			if iter-con.LastActive > c.window {
				removed = append(removed, con)
				continue
			}
			kept = append(kept, con)
		}
		for j := len(kept); j < len(s); j++ {
			s[j] = nil
		}
		c.slots[i] = kept
	}
	c.size -= len(removed)

	return removed
}
