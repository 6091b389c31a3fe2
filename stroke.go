package scenic

// LineCap is the shape drawn at the open ends of a stroked contour.
type LineCap uint8

const (
	// LineCapButt cuts the stroke flat at the endpoint.
	LineCapButt LineCap = iota
	// LineCapRound closes the end with a semicircle.
	LineCapRound
	// LineCapSquare extends the end by half the stroke width.
	LineCapSquare
)

// LineJoin is the shape drawn where two stroked segments meet.
type LineJoin uint8

const (
	// LineJoinMiter extends the outer edges to a sharp corner,
	// falling back to bevel past the miter limit.
	LineJoinMiter LineJoin = iota
	// LineJoinRound rounds the corner with an arc.
	LineJoinRound
	// LineJoinBevel cuts the corner with a straight edge.
	LineJoinBevel
)

// Stroke describes how a node's outline is painted. The outline is
// thickened into fill geometry before rasterization, so any Paint
// works for strokes, not just solids.
type Stroke struct {
	// Width is the stroke width in node-local units.
	Width float64

	// Paint colors the thickened outline.
	Paint Paint

	// Opacity multiplies the paint's own opacity. In [0, 1].
	Opacity float64

	Cap  LineCap
	Join LineJoin

	// MiterLimit bounds miter joins as a ratio of miter length to
	// stroke width; joins past the limit render as bevels. Zero
	// means the default of 4.
	MiterLimit float64
}

// NewStroke returns a solid stroke of the given width and color with
// butt caps and miter joins.
func NewStroke(width float64, c RGBA) *Stroke {
	return &Stroke{
		Width:   width,
		Paint:   Solid(c),
		Opacity: 1,
		Cap:     LineCapButt,
		Join:    LineJoinMiter,
	}
}
