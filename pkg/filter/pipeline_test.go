package filter

import (
	"strings"
	"sync/atomic"
	"testing"

	"github.com/matzehuels/termrender/pkg/errors"
)

func double(v int, _ Frame) int      { return v * 2 }
func addOne(v int, _ Frame) int      { return v + 1 }
func negate(v int, _ Frame) int      { return -v }
func toFloat(v int, _ Frame) float64 { return float64(v) }

func fillInput(vs ...int) *Buffer[int] {
	b := NewBuffer[int](len(vs))
	b.Append(vs...)
	return b
}

func TestPipelineRunBeforeBuild(t *testing.T) {
	p := NewPipeline[int, int]()
	p.AddFilter(Map(ModeSequential, double))

	err := p.Run(fillInput(1), NewBuffer[int](0), Frame{})
	if err == nil {
		t.Fatal("Run before Build should fail")
	}
	if !errors.Is(err, errors.ErrCodePipelineNotBuilt) {
		t.Errorf("error code = %v, want %v", errors.GetCode(err), errors.ErrCodePipelineNotBuilt)
	}
	if !errors.IsLogic(err) {
		t.Error("run-before-build should be a logic error")
	}
}

func TestPipelineMutationInvalidatesBuild(t *testing.T) {
	p := NewPipeline[int, int]()
	p.AddFilter(Map(ModeSequential, double))
	if err := p.Build(); err != nil {
		t.Fatalf("Build() failed: %v", err)
	}

	p.AddFilter(Map(ModeSequential, addOne))
	err := p.Run(fillInput(1), NewBuffer[int](0), Frame{})
	if !errors.Is(err, errors.ErrCodePipelineNotBuilt) {
		t.Errorf("mutated pipeline run error = %v, want PIPELINE_NOT_BUILT", err)
	}
}

func TestPipelineTypeMismatch(t *testing.T) {
	p := NewPipeline[int, int]()
	p.AddFilter(Map(ModeSequential, toFloat))
	p.AddFilter(Map(ModeSequential, double))

	err := p.Build()
	if err == nil {
		t.Fatal("Build() with mismatched chain should fail")
	}
	if !errors.Is(err, errors.ErrCodeTypeMismatch) {
		t.Errorf("error code = %v, want %v", errors.GetCode(err), errors.ErrCodeTypeMismatch)
	}
}

func TestPipelineBoundaryMismatch(t *testing.T) {
	// Chain is internally consistent but does not match the pipeline output.
	p := NewPipeline[int, int]()
	p.AddFilter(Map(ModeSequential, toFloat))

	if err := p.Build(); !errors.Is(err, errors.ErrCodeTypeMismatch) {
		t.Errorf("Build() error = %v, want TYPE_MISMATCH", err)
	}
}

func TestPipelineZeroFilters(t *testing.T) {
	p := NewPipeline[int, int]()
	if err := p.Build(); err != nil {
		t.Fatalf("Build() of empty pipeline failed: %v", err)
	}

	// An empty chain is a no-op: the output buffer is left untouched.
	out := NewBuffer[int](0)
	if err := p.Run(fillInput(1, 2), out, Frame{}); err != nil {
		t.Errorf("empty pipeline Run() failed: %v", err)
	}
	if out.Len() != 0 {
		t.Errorf("empty pipeline wrote %d elements, want none", out.Len())
	}
}

func TestPipelineSingleFilter(t *testing.T) {
	p := NewPipeline[int, int]()
	p.AddFilter(Map(ModeSequential, double))
	if err := p.Build(); err != nil {
		t.Fatalf("Build() failed: %v", err)
	}

	out := NewBuffer[int](0)
	if err := p.Run(fillInput(1, 2, 3), out, Frame{}); err != nil {
		t.Fatalf("Run() failed: %v", err)
	}

	want := []int{2, 4, 6}
	for i, w := range want {
		if out.At(i) != w {
			t.Errorf("out[%d] = %d, want %d", i, out.At(i), w)
		}
	}
}

func TestPipelineChainEquivalence(t *testing.T) {
	// A built 3-filter pipeline must produce the same result as running the
	// three filters one at a time as single-filter pipelines.
	input := []int{3, -1, 7, 0, 12}

	chained := NewPipeline[int, int]()
	chained.AddFilter(Map(ModeSequential, double))
	chained.AddFilter(Map(ModeSequential, addOne))
	chained.AddFilter(Map(ModeSequential, negate))
	mid, err := chained.RegisterBuffer(NewBuffer[int](0))
	if err != nil {
		t.Fatalf("RegisterBuffer() failed: %v", err)
	}
	if mid != 1 {
		t.Errorf("first buffer ID = %d, want 1", mid)
	}
	if _, err := chained.RegisterBuffer(NewBuffer[int](0)); err != nil {
		t.Fatalf("RegisterBuffer() failed: %v", err)
	}
	if err := chained.Build(); err != nil {
		t.Fatalf("Build() failed: %v", err)
	}

	chainedOut := NewBuffer[int](0)
	if err := chained.Run(fillInput(input...), chainedOut, Frame{}); err != nil {
		t.Fatalf("chained Run() failed: %v", err)
	}

	// Manual staging through single-filter pipelines.
	stage := fillInput(input...)
	for _, fn := range []func(int, Frame) int{double, addOne, negate} {
		p := NewPipeline[int, int]()
		p.AddFilter(Map(ModeSequential, fn))
		if err := p.Build(); err != nil {
			t.Fatalf("stage Build() failed: %v", err)
		}
		next := NewBuffer[int](0)
		if err := p.Run(stage, next, Frame{}); err != nil {
			t.Fatalf("stage Run() failed: %v", err)
		}
		stage = next
	}

	if chainedOut.Len() != stage.Len() {
		t.Fatalf("length mismatch: chained %d, staged %d", chainedOut.Len(), stage.Len())
	}
	for i := 0; i < stage.Len(); i++ {
		if chainedOut.At(i) != stage.At(i) {
			t.Errorf("element %d: chained %d, staged %d", i, chainedOut.At(i), stage.At(i))
		}
	}
}

func TestPipelineSlotDefersToCallerBuffers(t *testing.T) {
	// Two filters, no registered buffers: the single slot's kind equals the
	// pipeline input/output kind, so it defers to the caller's buffers.
	p := NewPipeline[int, int]()
	p.AddFilter(Map(ModeSequential, double))
	p.AddFilter(Map(ModeSequential, addOne))

	if err := p.Build(); err != nil {
		t.Fatalf("Build() without registered buffers failed: %v", err)
	}

	out := NewBuffer[int](0)
	if err := p.Run(fillInput(5), out, Frame{}); err != nil {
		t.Fatalf("Run() failed: %v", err)
	}
	if out.At(0) != 11 {
		t.Errorf("out[0] = %d, want 11", out.At(0))
	}
}

func TestPipelineUnresolvedSlot(t *testing.T) {
	// int -> float64 -> int: the intermediate float64 slot matches neither
	// boundary kind and nothing is registered.
	p := NewPipeline[int, int]()
	p.AddFilter(Map(ModeSequential, toFloat))
	p.AddFilter(Map(ModeSequential, func(v float64, _ Frame) int { return int(v) }))

	err := p.Build()
	if err == nil {
		t.Fatal("Build() with unresolvable slot should fail")
	}
	if !errors.Is(err, errors.ErrCodeUnresolvedSlot) {
		t.Errorf("error code = %v, want %v", errors.GetCode(err), errors.ErrCodeUnresolvedSlot)
	}

	// Registering a float64 buffer resolves it.
	if _, err := p.RegisterBuffer(NewBuffer[float64](0)); err != nil {
		t.Fatalf("RegisterBuffer() failed: %v", err)
	}
	if err := p.Build(); err != nil {
		t.Errorf("Build() after registering buffer failed: %v", err)
	}

	out := NewBuffer[int](0)
	if err := p.Run(fillInput(9), out, Frame{}); err != nil {
		t.Fatalf("Run() failed: %v", err)
	}
	if out.At(0) != 9 {
		t.Errorf("out[0] = %d, want 9", out.At(0))
	}
}

func TestPipelineInsertRemoveFilter(t *testing.T) {
	p := NewPipeline[int, int]()
	p.AddFilter(Map(ModeSequential, double))
	p.AddFilter(Map(ModeSequential, negate))

	if err := p.InsertFilter(1, Map(ModeSequential, addOne)); err != nil {
		t.Fatalf("InsertFilter() failed: %v", err)
	}
	if p.Len() != 3 {
		t.Errorf("Len() = %d, want 3", p.Len())
	}
	if err := p.InsertFilter(7, Map(ModeSequential, addOne)); err == nil {
		t.Error("out-of-range insert should fail")
	}

	if err := p.RemoveFilter(2); err != nil {
		t.Fatalf("RemoveFilter() failed: %v", err)
	}
	if err := p.RemoveFilter(5); err == nil {
		t.Error("out-of-range remove should fail")
	}

	if err := p.Build(); err != nil {
		t.Fatalf("Build() failed: %v", err)
	}
	out := NewBuffer[int](0)
	if err := p.Run(fillInput(4), out, Frame{}); err != nil {
		t.Fatalf("Run() failed: %v", err)
	}
	if out.At(0) != 9 { // double then addOne
		t.Errorf("out[0] = %d, want 9", out.At(0))
	}
}

func TestPipelineHooks(t *testing.T) {
	var before, after atomic.Int32

	p := NewPipeline[int, int]()
	p.AddFilter(Map(ModeSequential, double,
		WithBefore(func(Frame) { before.Add(1) }),
		WithAfter(func(Frame) { after.Add(1) }),
	))
	p.AddFilter(Map(ModeSequential, addOne,
		WithBefore(func(Frame) { before.Add(1) }),
	))
	if err := p.Build(); err != nil {
		t.Fatalf("Build() failed: %v", err)
	}

	for range 3 {
		if err := p.Run(fillInput(1), NewBuffer[int](0), Frame{}); err != nil {
			t.Fatalf("Run() failed: %v", err)
		}
	}

	if got := before.Load(); got != 6 {
		t.Errorf("before hooks ran %d times, want 6", got)
	}
	if got := after.Load(); got != 3 {
		t.Errorf("after hooks ran %d times, want 3", got)
	}
}

func TestConcurrentFilter(t *testing.T) {
	n := 10000
	in := NewBuffer[int](n)
	for i := 0; i < n; i++ {
		in.Append(i)
	}

	p := NewPipeline[int, int]()
	p.AddFilter(Map(ModeConcurrent, double))
	if err := p.Build(); err != nil {
		t.Fatalf("Build() failed: %v", err)
	}

	out := NewBuffer[int](0)
	if err := p.Run(in, out, Frame{}); err != nil {
		t.Fatalf("Run() failed: %v", err)
	}

	for i := 0; i < n; i++ {
		if out.At(i) != i*2 {
			t.Fatalf("out[%d] = %d, want %d", i, out.At(i), i*2)
		}
	}
}

func TestWholeFilter(t *testing.T) {
	// A whole-buffer filter that normalizes against the max element needs
	// global context and cannot be expressed per element.
	normalize := Whole(func(in *Buffer[int], out *Buffer[int], _ Frame) error {
		maxVal := 0
		for _, v := range in.Items() {
			if v > maxVal {
				maxVal = v
			}
		}
		out.Grow(in.Len())
		for i, v := range in.Items() {
			out.Set(i, v*100/maxVal)
		}
		return nil
	})

	p := NewPipeline[int, int]()
	p.AddFilter(normalize)
	if err := p.Build(); err != nil {
		t.Fatalf("Build() failed: %v", err)
	}

	out := NewBuffer[int](0)
	if err := p.Run(fillInput(2, 4, 8), out, Frame{}); err != nil {
		t.Fatalf("Run() failed: %v", err)
	}
	want := []int{25, 50, 100}
	for i, w := range want {
		if out.At(i) != w {
			t.Errorf("out[%d] = %d, want %d", i, out.At(i), w)
		}
	}
}

func TestPipelineToDOT(t *testing.T) {
	p := NewPipeline[int, int]()
	p.AddFilter(Map(ModeSequential, double))
	p.AddFilter(Map(ModeConcurrent, addOne))
	if err := p.Build(); err != nil {
		t.Fatalf("Build() failed: %v", err)
	}

	dot := p.ToDOT()
	for _, want := range []string{"digraph pipeline", "f0", "f1", "sequential", "concurrent", "in: int", "out: int"} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT output missing %q:\n%s", want, dot)
		}
	}
}
