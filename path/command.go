// Package path decodes and flattens the binary vector geometry carried by
// design documents.
//
// Document geometry arrives as compact byte blobs: a one-byte opcode followed
// by little-endian float32 operands, repeated until the buffer ends. Decode
// turns a blob into a sequence of Command values; Flatten converts a contour
// of commands into a polyline suitable for triangulation. Both are pure and
// never fail: malformed input degrades to a shorter command sequence.
package path

// Command is a single path command. It is a sealed interface: the only
// implementations are MoveTo, LineTo, QuadTo, CubicTo, and Close. Commands
// are immutable once decoded.
type Command interface {
	isCommand()
}

// MoveTo starts a new subpath at (X, Y).
type MoveTo struct {
	X, Y float64
}

// LineTo draws a line from the current point to (X, Y).
type LineTo struct {
	X, Y float64
}

// QuadTo draws a quadratic Bézier curve with control point (CX, CY) ending
// at (X, Y).
type QuadTo struct {
	CX, CY float64
	X, Y   float64
}

// CubicTo draws a cubic Bézier curve with control points (C1X, C1Y) and
// (C2X, C2Y) ending at (X, Y).
type CubicTo struct {
	C1X, C1Y float64
	C2X, C2Y float64
	X, Y     float64
}

// Close closes the current subpath. It carries no operands and does not
// introduce an extra point.
type Close struct{}

func (MoveTo) isCommand()  {}
func (LineTo) isCommand()  {}
func (QuadTo) isCommand()  {}
func (CubicTo) isCommand() {}
func (Close) isCommand()   {}

// Contour is one subpath: an ordered command sequence whose first command is
// MoveTo when non-empty. A contour may describe an outer boundary or a hole;
// the distinction is a property of the winding rule, not of the contour.
type Contour []Command

// Point is a 2D point in document coordinates.
type Point struct {
	X, Y float64
}

// FillRule selects how overlapping or self-intersecting contours decide
// whether a point is inside the shape.
type FillRule uint8

const (
	// FillNonZero fills where the signed winding number is non-zero.
	FillNonZero FillRule = iota

	// FillEvenOdd fills where an edge-crossing count is odd.
	FillEvenOdd
)

// String returns the fill rule name.
func (r FillRule) String() string {
	switch r {
	case FillNonZero:
		return "NonZero"
	case FillEvenOdd:
		return "EvenOdd"
	default:
		return "Unknown"
	}
}

// SplitContours splits a flat command sequence into contours, starting a new
// contour at each MoveTo. Commands preceding the first MoveTo are dropped:
// a contour without a starting point cannot be rendered.
func SplitContours(cmds []Command) []Contour {
	var contours []Contour
	var cur Contour
	for _, cmd := range cmds {
		if _, ok := cmd.(MoveTo); ok {
			if len(cur) > 0 {
				contours = append(contours, cur)
			}
			cur = Contour{cmd}
			continue
		}
		if cur == nil {
			continue
		}
		cur = append(cur, cmd)
	}
	if len(cur) > 0 {
		contours = append(contours, cur)
	}
	return contours
}
