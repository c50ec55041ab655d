package filter

import (
	"slices"

	"github.com/matzehuels/termrender/pkg/errors"
)

// Registry is a pool of intermediate buffers sharing one element type.
// Pipelines fill their buffer slots from registries at Build time.
//
// Registered buffers get the lowest unused positive integer ID; IDs freed by
// Unregister are reused by later registrations. Each distinct element type
// gets its own registry and therefore its own ID space.
type Registry struct {
	kind    Kind
	entries map[int]AnyBuffer
}

// NewRegistry creates an empty registry for buffers of the given kind.
func NewRegistry(kind Kind) *Registry {
	return &Registry{kind: kind, entries: make(map[int]AnyBuffer)}
}

// Kind returns the element kind the registry accepts.
func (r *Registry) Kind() Kind {
	return r.kind
}

// Len returns the number of registered buffers.
func (r *Registry) Len() int {
	return len(r.entries)
}

// Register adds a buffer and returns its assigned ID. The buffer's element
// kind must match the registry's kind.
func (r *Registry) Register(b AnyBuffer) (int, error) {
	if b == nil {
		return 0, errors.New(errors.ErrCodeInvalidBuffer, "cannot register a nil buffer")
	}
	if b.ElemKind() != r.kind {
		return 0, errors.New(errors.ErrCodeInvalidBuffer,
			"buffer kind %s does not match registry kind %s", b.ElemKind(), r.kind)
	}

	id := r.lowestFreeID()
	r.entries[id] = b
	return id, nil
}

// Unregister removes the buffer with the given ID, freeing the ID for reuse.
// It reports whether a buffer was registered under id.
func (r *Registry) Unregister(id int) bool {
	if _, ok := r.entries[id]; !ok {
		return false
	}
	delete(r.entries, id)
	return true
}

// Buffer returns the buffer registered under id.
func (r *Registry) Buffer(id int) (AnyBuffer, bool) {
	b, ok := r.entries[id]
	return b, ok
}

// ids returns the registered IDs in ascending order.
func (r *Registry) ids() []int {
	ids := make([]int, 0, len(r.entries))
	for id := range r.entries {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// lowestFreeID scans the sorted used-ID set for the first gap, starting at 1.
func (r *Registry) lowestFreeID() int {
	next := 1
	for _, id := range r.ids() {
		if id != next {
			break
		}
		next++
	}
	return next
}
