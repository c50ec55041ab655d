package filter

import (
	"slices"

	"github.com/matzehuels/termrender/pkg/errors"
)

// slot holds the intermediate buffer between one adjacent filter pair.
// Exactly one of buf, fromInput, fromOutput is set after a successful build.
type slot struct {
	kind       Kind
	buf        AnyBuffer
	fromInput  bool
	fromOutput bool
}

// Pipeline is a validated, ordered chain of filters over typed element
// buffers. In and Out are the pipeline's boundary element types.
//
// A pipeline owns its filter order and slot bindings but not the Filter or
// buffer objects themselves, which remain externally owned. Pipelines are
// not safe for concurrent use.
type Pipeline[In, Out any] struct {
	filters    []Filter
	registries map[Kind]*Registry
	slots      []slot
	built      bool
}

// NewPipeline creates an empty pipeline. An empty pipeline builds trivially
// and runs as a no-op.
func NewPipeline[In, Out any]() *Pipeline[In, Out] {
	return &Pipeline[In, Out]{
		registries: make(map[Kind]*Registry),
	}
}

// InputKind returns the pipeline's input element kind.
func (p *Pipeline[In, Out]) InputKind() Kind { return KindOf[In]() }

// OutputKind returns the pipeline's output element kind.
func (p *Pipeline[In, Out]) OutputKind() Kind { return KindOf[Out]() }

// Len returns the number of filters in the chain.
func (p *Pipeline[In, Out]) Len() int { return len(p.filters) }

// Filters returns a copy of the filter chain for inspection.
func (p *Pipeline[In, Out]) Filters() []Filter {
	return slices.Clone(p.filters)
}

// AddFilter appends f to the chain. The pipeline must be rebuilt before the
// next Run.
func (p *Pipeline[In, Out]) AddFilter(f Filter) {
	p.filters = append(p.filters, f)
	p.built = false
}

// InsertFilter inserts f at position i in the chain.
func (p *Pipeline[In, Out]) InsertFilter(i int, f Filter) error {
	if i < 0 || i > len(p.filters) {
		return errors.New(errors.ErrCodeInvalidArgument,
			"insert position %d out of range [0,%d]", i, len(p.filters))
	}
	p.filters = slices.Insert(p.filters, i, f)
	p.built = false
	return nil
}

// RemoveFilter removes the filter at position i from the chain.
func (p *Pipeline[In, Out]) RemoveFilter(i int) error {
	if i < 0 || i >= len(p.filters) {
		return errors.New(errors.ErrCodeInvalidArgument,
			"remove position %d out of range [0,%d)", i, len(p.filters))
	}
	p.filters = slices.Delete(p.filters, i, i+1)
	p.built = false
	return nil
}

// RegisterBuffer adds an intermediate buffer to the registry for the
// buffer's element kind, creating the registry on first use. It returns the
// ID assigned within that kind's registry.
func (p *Pipeline[In, Out]) RegisterBuffer(b AnyBuffer) (int, error) {
	if b == nil {
		return 0, errors.New(errors.ErrCodeInvalidBuffer, "cannot register a nil buffer")
	}
	reg, ok := p.registries[b.ElemKind()]
	if !ok {
		reg = NewRegistry(b.ElemKind())
		p.registries[b.ElemKind()] = reg
	}
	id, err := reg.Register(b)
	if err != nil {
		return 0, err
	}
	p.built = false
	return id, nil
}

// UnregisterBuffer removes the buffer with the given kind and ID. It reports
// whether a buffer was removed.
func (p *Pipeline[In, Out]) UnregisterBuffer(kind Kind, id int) bool {
	reg, ok := p.registries[kind]
	if !ok {
		return false
	}
	if !reg.Unregister(id) {
		return false
	}
	p.built = false
	return true
}

// Build validates the filter chain and resolves intermediate buffer slots.
// It must be called after any mutation before Run is valid again.
//
// Validation requires filters[0].InputKind == In, adjacent output/input
// kinds to match, and the last output kind == Out. One slot is created per
// adjacent filter pair, typed to the preceding filter's output kind, and
// filled from the registry for that kind. When no registered buffer is
// available and the slot's kind equals the pipeline's input or output kind,
// the slot defers to the caller-supplied buffer at run time. Any other
// unresolved slot fails the build.
func (p *Pipeline[In, Out]) Build() error {
	if err := p.validateChain(); err != nil {
		return err
	}

	p.slots = p.slots[:0]
	if len(p.filters) > 1 {
		taken := make(map[Kind][]int)
		for i := 0; i < len(p.filters)-1; i++ {
			s, err := p.resolveSlot(p.filters[i].OutputKind(), taken)
			if err != nil {
				return err
			}
			p.slots = append(p.slots, s)
		}
	}

	p.built = true
	return nil
}

func (p *Pipeline[In, Out]) validateChain() error {
	if len(p.filters) == 0 {
		return nil
	}
	if got := p.filters[0].InputKind(); got != p.InputKind() {
		return errors.New(errors.ErrCodeTypeMismatch,
			"filter 0 input is %s, pipeline input is %s", got, p.InputKind())
	}
	for i := 0; i < len(p.filters)-1; i++ {
		out, in := p.filters[i].OutputKind(), p.filters[i+1].InputKind()
		if out != in {
			return errors.New(errors.ErrCodeTypeMismatch,
				"filter %d output %s does not match filter %d input %s", i, out, i+1, in)
		}
	}
	if got := p.filters[len(p.filters)-1].OutputKind(); got != p.OutputKind() {
		return errors.New(errors.ErrCodeTypeMismatch,
			"filter %d output is %s, pipeline output is %s", len(p.filters)-1, got, p.OutputKind())
	}
	return nil
}

// resolveSlot picks the lowest-ID registered buffer of the given kind that
// has not been handed to an earlier slot in this build. Sharing one buffer
// between two slots would alias a filter's input with its own output.
func (p *Pipeline[In, Out]) resolveSlot(kind Kind, taken map[Kind][]int) (slot, error) {
	if reg, ok := p.registries[kind]; ok {
		for _, id := range reg.ids() {
			if slices.Contains(taken[kind], id) {
				continue
			}
			taken[kind] = append(taken[kind], id)
			b, _ := reg.Buffer(id)
			return slot{kind: kind, buf: b}, nil
		}
	}
	if kind == p.InputKind() {
		return slot{kind: kind, fromInput: true}, nil
	}
	if kind == p.OutputKind() {
		return slot{kind: kind, fromOutput: true}, nil
	}
	return slot{}, errors.New(errors.ErrCodeUnresolvedSlot,
		"no registered buffer for intermediate kind %s", kind)
}

// Run drives in through the filter chain into out. It fails with a logic
// error if the pipeline was mutated since the last Build. A zero-filter
// pipeline is a no-op that leaves out untouched; a single filter applies
// directly without intermediate buffering.
func (p *Pipeline[In, Out]) Run(in *Buffer[In], out *Buffer[Out], frame Frame) error {
	if !p.built {
		return errors.New(errors.ErrCodePipelineNotBuilt,
			"pipeline was mutated or never built; call Build before Run")
	}
	if in == nil || out == nil {
		return errors.New(errors.ErrCodeInvalidBuffer, "pipeline run requires input and output buffers")
	}

	for _, f := range p.filters {
		f.BeforeRun(frame)
	}
	defer func() {
		for _, f := range p.filters {
			f.AfterRun(frame)
		}
	}()

	if len(p.filters) == 0 {
		return nil
	}
	if len(p.filters) == 1 {
		return p.filters[0].Run(in, out, frame)
	}

	cur := AnyBuffer(in)
	for i, f := range p.filters {
		var dst AnyBuffer
		if i == len(p.filters)-1 {
			dst = out
		} else {
			dst = p.slotBuffer(p.slots[i], in, out)
		}
		if err := f.Run(cur, dst, frame); err != nil {
			return err
		}
		cur = dst
	}
	return nil
}

func (p *Pipeline[In, Out]) slotBuffer(s slot, in *Buffer[In], out *Buffer[Out]) AnyBuffer {
	switch {
	case s.fromInput:
		return in
	case s.fromOutput:
		return out
	default:
		return s.buf
	}
}
