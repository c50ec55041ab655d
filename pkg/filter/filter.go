package filter

import (
	"runtime"
	"sync"

	"github.com/matzehuels/termrender/pkg/errors"
)

// Mode selects how a filter processes the elements of a buffer.
type Mode uint8

const (
	// ModeSingle runs the filter once over the entire buffer.
	ModeSingle Mode = iota
	// ModeSequential applies a per-element function in element order.
	ModeSequential
	// ModeConcurrent applies a per-element function across bounded worker
	// goroutines. Element order is not guaranteed and the function must
	// not have cross-element side effects.
	ModeConcurrent
)

// String returns the name of the mode.
func (m Mode) String() string {
	switch m {
	case ModeSingle:
		return "single"
	case ModeSequential:
		return "sequential"
	case ModeConcurrent:
		return "concurrent"
	}
	return "unknown"
}

// Filter transforms one typed element buffer into another. Implementations
// declare their element types as Kinds so a Pipeline can validate chains
// without generics crossing the interface boundary.
type Filter interface {
	// InputKind returns the Kind of the input element type.
	InputKind() Kind

	// OutputKind returns the Kind of the output element type.
	OutputKind() Kind

	// BeforeRun is called once before each pipeline run.
	BeforeRun(frame Frame)

	// AfterRun is called once after each pipeline run.
	AfterRun(frame Frame)

	// Run processes in into out. Out is grown to the required length by
	// the filter. The buffers are *Buffer values of the declared kinds.
	Run(in, out AnyBuffer, frame Frame) error
}

// ModeReporter is implemented by filters that expose their execution mode,
// used for diagnostics such as DOT export.
type ModeReporter interface {
	Mode() Mode
}

// Option configures the run hooks of a built-in filter.
type Option func(*hooks)

type hooks struct {
	before func(Frame)
	after  func(Frame)
}

// WithBefore registers fn to run once before each pipeline run.
func WithBefore(fn func(Frame)) Option {
	return func(h *hooks) { h.before = fn }
}

// WithAfter registers fn to run once after each pipeline run.
func WithAfter(fn func(Frame)) Option {
	return func(h *hooks) { h.after = fn }
}

func (h *hooks) BeforeRun(frame Frame) {
	if h.before != nil {
		h.before(frame)
	}
}

func (h *hooks) AfterRun(frame Frame) {
	if h.after != nil {
		h.after(frame)
	}
}

// mapFilter applies a per-element function, sequentially or concurrently.
type mapFilter[In, Out any] struct {
	hooks
	mode    Mode
	workers int
	fn      func(In, Frame) Out
}

// Map returns a filter applying fn to every element. ModeSequential keeps
// element order; ModeConcurrent partitions the buffer across workers sized
// to available hardware parallelism. ModeSingle is treated as sequential
// since a per-element function carries no global context.
func Map[In, Out any](mode Mode, fn func(In, Frame) Out, opts ...Option) Filter {
	f := &mapFilter[In, Out]{mode: mode, fn: fn}
	for _, opt := range opts {
		opt(&f.hooks)
	}
	return f
}

func (f *mapFilter[In, Out]) InputKind() Kind  { return KindOf[In]() }
func (f *mapFilter[In, Out]) OutputKind() Kind { return KindOf[Out]() }
func (f *mapFilter[In, Out]) Mode() Mode       { return f.mode }

func (f *mapFilter[In, Out]) Run(in, out AnyBuffer, frame Frame) error {
	src, dst, err := assertBuffers[In, Out](in, out)
	if err != nil {
		return err
	}

	n := src.Len()
	dst.Grow(n)

	apply := func(start, end int) {
		for i := start; i < end; i++ {
			dst.Set(i, f.fn(src.At(i), frame))
		}
	}

	if f.mode == ModeConcurrent && n > 1 {
		parallel(n, f.workers, apply)
		return nil
	}
	apply(0, n)
	return nil
}

// wholeFilter runs a whole-buffer function once per run.
type wholeFilter[In, Out any] struct {
	hooks
	fn func(in *Buffer[In], out *Buffer[Out], frame Frame) error
}

// Whole returns a ModeSingle filter that receives the entire input and
// output buffers, for filters needing global context. The function is
// responsible for growing out.
func Whole[In, Out any](fn func(in *Buffer[In], out *Buffer[Out], frame Frame) error, opts ...Option) Filter {
	f := &wholeFilter[In, Out]{fn: fn}
	for _, opt := range opts {
		opt(&f.hooks)
	}
	return f
}

func (f *wholeFilter[In, Out]) InputKind() Kind  { return KindOf[In]() }
func (f *wholeFilter[In, Out]) OutputKind() Kind { return KindOf[Out]() }
func (f *wholeFilter[In, Out]) Mode() Mode       { return ModeSingle }

func (f *wholeFilter[In, Out]) Run(in, out AnyBuffer, frame Frame) error {
	src, dst, err := assertBuffers[In, Out](in, out)
	if err != nil {
		return err
	}
	return f.fn(src, dst, frame)
}

// assertBuffers recovers the concrete buffer types a filter was declared
// with. A mismatch means the pipeline dispatched the wrong buffer, which is
// a logic error.
func assertBuffers[In, Out any](in, out AnyBuffer) (*Buffer[In], *Buffer[Out], error) {
	src, ok := in.(*Buffer[In])
	if !ok {
		return nil, nil, errors.New(errors.ErrCodeTypeMismatch,
			"filter input buffer is %s, want %s", in.ElemKind(), KindOf[In]())
	}
	dst, ok := out.(*Buffer[Out])
	if !ok {
		return nil, nil, errors.New(errors.ErrCodeTypeMismatch,
			"filter output buffer is %s, want %s", out.ElemKind(), KindOf[Out]())
	}
	return src, dst, nil
}

// parallel splits [0,n) into contiguous chunks and processes them on worker
// goroutines, joining before it returns. Workers are created per call; there
// is no persistent pool.
func parallel(n, workers int, fn func(start, end int)) {
	if workers < 1 {
		workers = runtime.NumCPU()
	}
	if workers > n {
		workers = n
	}
	chunk := (n + workers - 1) / workers

	var wg sync.WaitGroup
	for start := 0; start < n; start += chunk {
		end := min(start+chunk, n)
		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			fn(s, e)
		}(start, end)
	}
	wg.Wait()
}
