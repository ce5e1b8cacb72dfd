package settings

import "go.uber.org/atomic"

// Holder keeps the current value of a setting. Loaders store, readers load;
// both are safe for concurrent use.
type Holder[T any] struct {
	v atomic.Pointer[T]
}

// NewHolder returns an empty holder.
func NewHolder[T any]() *Holder[T] {
	return &Holder[T]{}
}

// Load returns the current value, or the zero value before the first Store.
func (h *Holder[T]) Load() T {
	if p := h.v.Load(); p != nil {
		return *p
	}

	var zero T
	return zero
}

// Store replaces the current value.
func (h *Holder[T]) Store(v T) {
	h.v.Store(&v)
}

// Loaded reports whether a value was ever stored.
func (h *Holder[T]) Loaded() bool {
	return h.v.Load() != nil
}
