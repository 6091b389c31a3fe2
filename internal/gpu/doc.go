// Package gpu implements the stencil-then-cover rendering engine on top of
// the gogpu/wgpu HAL. It is the internal backend of the scenic renderer:
// the root package compiles a scene tree into a flat Frame of draw
// operations in device pixels, and this package executes the frame on the
// GPU and reads the pixels back.
//
// # Architecture Overview
//
//	Frame ops -> per-op buffers -> render pass(es) -> MSAA resolve -> readback
//
// Key components:
//
//   - Engine: owns the HAL device, queue, and pipeline set
//   - Frame/Op: the flat draw program produced by the scene walk
//   - FanGeometry: fan-triangulated path interiors for the stencil pass
//   - pipelineSet: every stencil/cover/direct/clip/blur pipeline variant
//   - clipStack: nested clip bookkeeping with replay-on-pop
//   - Cache: decoded image textures with byte-cost LRU eviction
//
// # Stencil-Then-Cover
//
// Filled paths render in up to three steps. First the path's fan triangles
// are drawn with color writes masked off, accumulating winding (nonzero,
// IncrementWrap/DecrementWrap) or parity (even-odd, Invert) into the low
// seven stencil bits. Then a cover quad over the path bounds is drawn with
// a NotEqual stencil test, painting exactly the pixels the fill rule marked
// as inside. A single-paint fill uses a fused cover pipeline whose pass
// operation zeroes the fill bits while painting; multi-paint fills keep the
// bits across covers and zero them with one trailing cleanup quad.
//
// # Stencil Bit Budget
//
// The 8-bit stencil buffer is split: bits 0-6 accumulate fill winding or
// parity, bit 7 marks pixels excluded by the active clip. All stencil
// tests compare against the default reference value of zero, so a set
// bit 7 fails the Equal(readMask=0x80) gate used by clipped draws, and
// clip resolution flips bit 7 with an Invert(writeMask=0x80) quad wherever
// the pushed clip shape did not cover a previously included pixel. Popping
// a clip zeroes bit 7 across the surface and replays the remaining stack.
//
// # Effects
//
// Gaussian-blurred shadows render the shape silhouette into an offscreen
// texture, run separable horizontal and vertical blur passes between two
// ping-pong textures, and composite the result back into the main pass as
// a textured quad. This forces a main-pass split (store, blur, reload),
// which the frame executor handles by segmenting ops around each blur.
package gpu
