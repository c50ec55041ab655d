// Package render implements the rasterization core: a [Renderer] that turns
// vector primitives into fragments, and a [Target] that owns the pixel
// buffer, the per-frame draw-call queue and the depth compositing order.
//
// # Architecture
//
// Rendering is a three step flow shared by the deferred and immediate paths:
//
//  1. Rasterize: the primitive is transformed and scan-converted into a
//     fragment buffer (one [Fragment] per candidate pixel)
//  2. Filter: the fragment buffer runs through the caller-supplied fragment
//     [Pipeline]
//  3. Blend: filtered fragment colors are combined into the target's pixel
//     buffer using the draw call's [gfx.BlendMode]
//
// Deferred draws (Draw*) record a draw call with a depth key; [Target.Render]
// sorts queued calls by depth descending, so calls with lower depth blend
// later and end up visually on top. Immediate draws (DrawImmediate*) run the
// flow synchronously. PutPixel and PutLine write colors directly, bypassing
// the fragment pipeline.
//
// # Rasterization
//
// Vertices are transformed and bounds-tested. Lines are clipped with the
// Cohen-Sutherland algorithm and walked in ceil(length) steps. Ellipses are
// tested in local space through the inverse transform, which keeps them
// correct under rotation and non-uniform scale. Triangle meshes use edge
// functions with a top-left fill rule so triangles sharing an edge rasterize
// every boundary pixel exactly once.
//
// # Meshes
//
// Triangle meshes live in the renderer's vertex arena; a [geom.Mesh] is an
// index range into it. ClearMeshes invalidates all outstanding ranges.
//
// # Concurrency
//
// All calls are synchronous. Internally, mesh vertex transforms, triangle
// and ellipse pixel ranges and ModeConcurrent filters are distributed over
// bounded worker goroutines that join before the call returns. The package
// assumes a single caller at a time; pixel buffer and arena are not locked.
package render
