package filter

// AnyBuffer is the non-generic view of a typed element buffer. Pipelines use
// it to move elements between filters without knowing their concrete type;
// filters recover the concrete type with a checked assertion to *[Buffer].
type AnyBuffer interface {
	// ElemKind returns the Kind of the buffer's element type.
	ElemKind() Kind

	// Len returns the number of elements currently in the buffer.
	Len() int

	// Grow sets the logical length to n, reallocating if needed.
	// Existing elements up to min(Len, n) are preserved.
	Grow(n int)
}

// Buffer is a growable typed element buffer. The zero value is ready to use.
type Buffer[T any] struct {
	items []T
}

// NewBuffer returns an empty buffer with the given capacity hint.
func NewBuffer[T any](capacity int) *Buffer[T] {
	return &Buffer[T]{items: make([]T, 0, capacity)}
}

// ElemKind returns the Kind of T.
func (b *Buffer[T]) ElemKind() Kind {
	return KindOf[T]()
}

// Len returns the number of elements in the buffer.
func (b *Buffer[T]) Len() int {
	return len(b.items)
}

// Grow sets the logical length to n, reallocating if needed.
func (b *Buffer[T]) Grow(n int) {
	if n <= cap(b.items) {
		b.items = b.items[:n]
		return
	}
	grown := make([]T, n)
	copy(grown, b.items)
	b.items = grown
}

// Reset truncates the buffer to zero length, keeping capacity.
func (b *Buffer[T]) Reset() {
	b.items = b.items[:0]
}

// At returns the element at index i.
func (b *Buffer[T]) At(i int) T {
	return b.items[i]
}

// Set stores v at index i.
func (b *Buffer[T]) Set(i int, v T) {
	b.items[i] = v
}

// Append adds elements to the end of the buffer.
func (b *Buffer[T]) Append(vs ...T) {
	b.items = append(b.items, vs...)
}

// Items returns the backing slice of the buffer's current elements.
// The slice is valid until the next Grow or Append.
func (b *Buffer[T]) Items() []T {
	return b.items
}
