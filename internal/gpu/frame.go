package gpu

import "github.com/gogpu/scenic/path"

// Frame is the flat draw program for one rendered image. The scene walk
// produces it in device pixels; ops execute in order against a target
// cleared to Background.
type Frame struct {
	Width  uint32
	Height uint32
	// Background is the premultiplied clear color.
	Background [4]float64
	Ops        []Op
}

// Op is one draw operation. The concrete types are FillOp, ClipPushOp,
// ClipPopOp, and ShadowOp.
type Op interface {
	isOp()
}

// Geometry describes what a fill rasterizes: either a pre-triangulated
// list painted directly, or fan geometry routed through the stencil
// buffer.
type Geometry interface {
	isGeometry()
}

// DirectGeometry is a triangle list of interleaved x,y device-pixel
// coordinates. It carries shapes whose triangulation is exact, so no
// stencil traffic is needed.
type DirectGeometry struct {
	Vertices []float32
}

// StencilGeometry is fan-triangulated path geometry. The executor
// accumulates it into the stencil buffer under Rule and paints it with a
// cover quad over the fan bounds.
type StencilGeometry struct {
	Fan  *FanGeometry
	Rule path.FillRule
}

func (DirectGeometry) isGeometry()  {}
func (StencilGeometry) isGeometry() {}

// FillOp paints one geometry with one or more paints. A single paint on
// stencil geometry uses the fused cover that resets fill bits while
// painting; multiple paints cover repeatedly and reset afterwards.
type FillOp struct {
	Geometry Geometry
	Paints   []PaintSpec
}

// ClipPushOp intersects the active clip with a shape. Every subsequent
// draw is confined to pixels inside all pushed shapes until the matching
// ClipPopOp.
type ClipPushOp struct {
	Shape StencilGeometry
}

// ClipPopOp removes the most recently pushed clip shape.
type ClipPopOp struct{}

// ShadowOp renders a Gaussian-blurred silhouette and composites it into
// the frame. Drop shadows composite a tinted quad under the node's fills;
// inner shadows invert the blurred coverage and composite it masked to
// the node's own shape.
type ShadowOp struct {
	Inner bool
	// Silhouette is the node shape translated by the shadow offset.
	Silhouette StencilGeometry
	// Mask is the untranslated shape inner shadows composite through.
	// Unused for drop shadows.
	Mask *StencilGeometry
	// Sigma is the Gaussian standard deviation in device pixels.
	Sigma   float64
	Color   [4]float32
	Opacity float32
}

func (*FillOp) isOp()     {}
func (*ClipPushOp) isOp() {}
func (*ClipPopOp) isOp()  {}
func (*ShadowOp) isOp()   {}
