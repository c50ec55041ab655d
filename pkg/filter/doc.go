// Package filter provides the generic typed filter and pipeline system used
// by the renderer's fragment post-processing and by the terminal character
// conversion stage.
//
// # Overview
//
// A [Filter] transforms a typed element buffer into another typed element
// buffer. Filters declare their input and output element types as runtime
// [Kind] witnesses, which lets a [Pipeline] validate at Build time that an
// ordered chain of filters is type-consistent without the individual filters
// knowing about each other.
//
// # Execution Modes
//
// Filters run in one of three modes:
//
//   - ModeSingle: the filter runs once over the entire buffer, for filters
//     needing global context
//   - ModeSequential: a per-element function runs once per element, in order
//   - ModeConcurrent: the per-element function runs across bounded worker
//     goroutines with no ordering guarantee
//
// Concurrent filter functions must be free of cross-element side effects.
// This is a caller contract, not something the package enforces.
//
// # Pipelines
//
// A [Pipeline] is built once and then run many times:
//
//	p := filter.NewPipeline[Frag, Frag]()
//	p.AddFilter(tint)
//	p.AddFilter(flicker)
//	if err := p.Build(); err != nil {
//	    log.Fatal(err)
//	}
//	err := p.Run(in, out, frame)
//
// Build validates the type chain, creates one buffer slot per adjacent filter
// pair and resolves each slot from a per-type [Registry] of intermediate
// buffers. A slot whose type matches the pipeline's input or output type may
// defer to the caller-supplied buffer at run time when nothing suitable is
// registered; any other unresolved slot fails the build. Mutating a pipeline
// (adding or removing filters or buffers) invalidates the build and Run
// reports a logic error until Build is called again.
//
// # Debugging
//
// [Pipeline.ToDOT] exports the filter/buffer graph in Graphviz DOT format;
// [RenderSVG] renders it for inspection.
package filter
