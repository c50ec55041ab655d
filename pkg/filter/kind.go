package filter

import (
	"reflect"
	"time"
)

// Kind identifies an element type at runtime. It is used to validate filter
// chains and to key buffer registries. Kinds are comparable; two Kinds are
// equal exactly when they witness the same Go type.
type Kind struct {
	t reflect.Type
}

// KindOf returns the Kind witnessing T.
func KindOf[T any]() Kind {
	return Kind{t: reflect.TypeFor[T]()}
}

// Valid reports whether k witnesses a type.
func (k Kind) Valid() bool {
	return k.t != nil
}

// String returns the name of the witnessed type.
func (k Kind) String() string {
	if k.t == nil {
		return "invalid"
	}
	return k.t.String()
}

// Frame is the per-frame context passed to every pipeline run. It carries
// the information filters need to make once-per-frame decisions, such as
// whether a time-gated effect should re-randomize.
type Frame struct {
	// Time is the time since the engine started.
	Time time.Duration

	// Resized is set when the pixel buffer changed size since the last
	// rendered frame.
	Resized bool
}
