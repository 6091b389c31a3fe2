// Package scenic renders vector scene trees on the GPU.
//
// # Overview
//
// scenic rasterizes design-document scene graphs — nested frames,
// rectangles, ellipses, arbitrary paths, glyph outlines and images —
// onto a WebGPU surface via gogpu/wgpu. Arbitrary paths, including
// self-intersecting ones and outlines with holes, fill correctly under
// both the nonzero and even-odd winding rules without a CPU polygon
// triangulator: fan triangles accumulate per-pixel winding or parity
// in the stencil buffer, then a covering quad paints only where the
// stencil marks the interior.
//
// # Quick Start
//
//	import "github.com/gogpu/scenic"
//
//	r, err := scenic.New()
//	if err != nil {
//	    log.Fatal(err) // no usable GPU adapter
//	}
//	defer r.Destroy()
//
//	rect := scenic.NewRect("card", 200, 120)
//	rect.Fills = []scenic.Paint{scenic.Solid(scenic.Hex("#4a90d9"))}
//
//	scene := scenic.NewScene(640, 480, rect)
//	if err := r.PrepareScene(context.Background(), scene); err != nil {
//	    log.Fatal(err)
//	}
//	if err := r.Render(scene); err != nil {
//	    log.Fatal(err)
//	}
//	img, _ := r.Image()
//
// # Architecture
//
//   - Public API: Scene, Node, Paint, Effect, Matrix, Renderer
//   - path: wire-format decoding and curve flattening
//   - glyph: font parsing, shaping and outline extraction
//   - internal/gpu: pipelines, stencil fill, clipping, effects
//   - internal/stroke: outline thickening for stroked shapes
//
// # Coordinate System
//
// Origin at the top-left; X grows right, Y grows down. Angles are in
// radians. Scene coordinates are logical pixels; the pixel ratio
// option scales them to device pixels.
//
// # Error Philosophy
//
// Rendering is best-effort: malformed path bytes, degenerate contours
// and unresolved image references degrade to skipped draws, never
// failed frames. The only fatal condition is constructing a renderer
// without a usable GPU.
package scenic

// Version information
const (
	// Version is the current version of the library
	Version = "0.3.0"

	// VersionMajor is the major version
	VersionMajor = 0

	// VersionMinor is the minor version
	VersionMinor = 3

	// VersionPatch is the patch version
	VersionPatch = 0
)
