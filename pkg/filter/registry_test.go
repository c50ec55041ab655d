package filter

import (
	"testing"

	"github.com/matzehuels/termrender/pkg/errors"
)

func TestRegistryAssignsLowestFreeID(t *testing.T) {
	r := NewRegistry(KindOf[int]())

	ids := make([]int, 4)
	for i := range ids {
		id, err := r.Register(NewBuffer[int](0))
		if err != nil {
			t.Fatalf("Register() failed: %v", err)
		}
		ids[i] = id
	}

	for i, want := range []int{1, 2, 3, 4} {
		if ids[i] != want {
			t.Errorf("ids[%d] = %d, want %d", i, ids[i], want)
		}
	}
}

func TestRegistryReusesFreedIDs(t *testing.T) {
	r := NewRegistry(KindOf[int]())
	for range 3 {
		if _, err := r.Register(NewBuffer[int](0)); err != nil {
			t.Fatalf("Register() failed: %v", err)
		}
	}

	if !r.Unregister(2) {
		t.Fatal("Unregister(2) = false, want true")
	}

	id, err := r.Register(NewBuffer[int](0))
	if err != nil {
		t.Fatalf("Register() failed: %v", err)
	}
	if id != 2 {
		t.Errorf("reused ID = %d, want 2", id)
	}

	// Next registration continues past the highest used ID.
	id, err = r.Register(NewBuffer[int](0))
	if err != nil {
		t.Fatalf("Register() failed: %v", err)
	}
	if id != 4 {
		t.Errorf("next ID = %d, want 4", id)
	}
}

func TestRegistryUnregisterUnknown(t *testing.T) {
	r := NewRegistry(KindOf[int]())
	if r.Unregister(1) {
		t.Error("Unregister of unknown ID should return false")
	}
}

func TestRegistryKindMismatch(t *testing.T) {
	r := NewRegistry(KindOf[int]())
	_, err := r.Register(NewBuffer[float64](0))
	if err == nil {
		t.Fatal("registering a mismatched buffer should fail")
	}
	if !errors.Is(err, errors.ErrCodeInvalidBuffer) {
		t.Errorf("error code = %v, want %v", errors.GetCode(err), errors.ErrCodeInvalidBuffer)
	}
}

func TestRegistryNilBuffer(t *testing.T) {
	r := NewRegistry(KindOf[int]())
	if _, err := r.Register(nil); err == nil {
		t.Error("registering nil should fail")
	}
}

func TestRegistryBufferLookup(t *testing.T) {
	r := NewRegistry(KindOf[int]())
	b := NewBuffer[int](0)
	id, err := r.Register(b)
	if err != nil {
		t.Fatalf("Register() failed: %v", err)
	}

	got, ok := r.Buffer(id)
	if !ok {
		t.Fatal("Buffer() did not find registered buffer")
	}
	if got != AnyBuffer(b) {
		t.Error("Buffer() returned a different buffer")
	}
	if _, ok := r.Buffer(999); ok {
		t.Error("Buffer() found unknown ID")
	}
}

func TestKindIdentity(t *testing.T) {
	if KindOf[int]() != KindOf[int]() {
		t.Error("same type should produce equal Kinds")
	}
	if KindOf[int]() == KindOf[int64]() {
		t.Error("distinct types should produce distinct Kinds")
	}
	if (Kind{}).Valid() {
		t.Error("zero Kind should be invalid")
	}
	if !KindOf[string]().Valid() {
		t.Error("KindOf should produce a valid Kind")
	}
	if got := KindOf[int]().String(); got != "int" {
		t.Errorf("String() = %q, want int", got)
	}
}

func TestBufferGrowPreservesPrefix(t *testing.T) {
	b := NewBuffer[int](2)
	b.Append(7, 8)
	b.Grow(5)
	if b.Len() != 5 {
		t.Fatalf("Len() = %d, want 5", b.Len())
	}
	if b.At(0) != 7 || b.At(1) != 8 {
		t.Error("Grow did not preserve existing elements")
	}

	b.Grow(1)
	if b.Len() != 1 || b.At(0) != 7 {
		t.Error("shrinking Grow should keep prefix")
	}
}
