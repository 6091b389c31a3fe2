package path

import "math"

// DefaultTolerance is the default maximum deviation, in document units,
// between a curve and its flattened polyline.
const DefaultTolerance = 0.25

// maxFlattenDepth bounds curve subdivision. Decoded blobs can carry NaN or
// infinite control points, which would otherwise never satisfy the flatness
// test.
const maxFlattenDepth = 16

// Flatten converts a contour into a polyline whose maximum deviation from
// the true curves is at most tolerance. MoveTo and LineTo contribute their
// points directly; quadratic and cubic segments are subdivided recursively.
// Close contributes nothing: callers treat the polyline as implicitly
// cyclic.
//
// Degenerate results (fewer than 3 points) are returned as-is; rejecting
// them is the caller's decision.
func Flatten(c Contour, tolerance float64) []Point {
	if tolerance <= 0 {
		tolerance = DefaultTolerance
	}
	var pts []Point
	var cur Point
	for _, cmd := range c {
		switch cmd := cmd.(type) {
		case MoveTo:
			cur = Point{X: cmd.X, Y: cmd.Y}
			pts = append(pts, cur)
		case LineTo:
			cur = Point{X: cmd.X, Y: cmd.Y}
			pts = append(pts, cur)
		case QuadTo:
			ctrl := Point{X: cmd.CX, Y: cmd.CY}
			end := Point{X: cmd.X, Y: cmd.Y}
			flattenQuad(cur, ctrl, end, tolerance, 0, &pts)
			cur = end
		case CubicTo:
			c1 := Point{X: cmd.C1X, Y: cmd.C1Y}
			c2 := Point{X: cmd.C2X, Y: cmd.C2Y}
			end := Point{X: cmd.X, Y: cmd.Y}
			flattenCubic(cur, c1, c2, end, tolerance, 0, &pts)
			cur = end
		case Close:
			// No point emitted; the polyline closes itself.
		}
	}
	return pts
}

// flattenQuad appends the polyline of a quadratic Bézier (excluding p0) to
// pts, subdividing until the control point deviates from the chord by at
// most tolerance.
func flattenQuad(p0, p1, p2 Point, tolerance float64, depth int, pts *[]Point) {
	if depth >= maxFlattenDepth || distanceToLine(p1, p0, p2) <= tolerance {
		*pts = append(*pts, p2)
		return
	}
	q0 := lerp(p0, p1, 0.5)
	q1 := lerp(p1, p2, 0.5)
	mid := lerp(q0, q1, 0.5)
	flattenQuad(p0, q0, mid, tolerance, depth+1, pts)
	flattenQuad(mid, q1, p2, tolerance, depth+1, pts)
}

// flattenCubic appends the polyline of a cubic Bézier (excluding p0) to pts
// using de Casteljau subdivision. Flat enough when both control points are
// within tolerance of the chord.
func flattenCubic(p0, p1, p2, p3 Point, tolerance float64, depth int, pts *[]Point) {
	d := math.Max(distanceToLine(p1, p0, p3), distanceToLine(p2, p0, p3))
	if depth >= maxFlattenDepth || d <= tolerance {
		*pts = append(*pts, p3)
		return
	}
	q0 := lerp(p0, p1, 0.5)
	q1 := lerp(p1, p2, 0.5)
	q2 := lerp(p2, p3, 0.5)
	r0 := lerp(q0, q1, 0.5)
	r1 := lerp(q1, q2, 0.5)
	mid := lerp(r0, r1, 0.5)
	flattenCubic(p0, q0, r0, mid, tolerance, depth+1, pts)
	flattenCubic(mid, r1, q2, p3, tolerance, depth+1, pts)
}

func lerp(a, b Point, t float64) Point {
	return Point{
		X: a.X + (b.X-a.X)*t,
		Y: a.Y + (b.Y-a.Y)*t,
	}
}

// distanceToLine is the distance from p to the segment (a, b), falling back
// to point distance when the segment is degenerate.
func distanceToLine(p, a, b Point) float64 {
	abX, abY := b.X-a.X, b.Y-a.Y
	lenSq := abX*abX + abY*abY
	if lenSq < 1e-20 {
		return math.Hypot(p.X-a.X, p.Y-a.Y)
	}
	t := ((p.X-a.X)*abX + (p.Y-a.Y)*abY) / lenSq
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	cx := a.X + abX*t
	cy := a.Y + abY*t
	return math.Hypot(p.X-cx, p.Y-cy)
}
