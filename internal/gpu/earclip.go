package gpu

import (
	"math"

	"github.com/gogpu/scenic/path"
)

// Convex reports whether the closed polyline pts turns in a single
// direction. Collinear runs are tolerated.
func Convex(pts []path.Point) bool {
	n := len(pts)
	if n < 3 {
		return false
	}
	pos, neg := false, false
	for i := 0; i < n; i++ {
		a := pts[i]
		b := pts[(i+1)%n]
		c := pts[(i+2)%n]
		cross := (b.X-a.X)*(c.Y-a.Y) - (b.Y-a.Y)*(c.X-a.X)
		if cross > 0 {
			pos = true
		} else if cross < 0 {
			neg = true
		}
		if pos && neg {
			return false
		}
	}
	return pos || neg
}

// signedArea computes the shoelace area of the closed polyline. Positive
// means counterclockwise in a y-down coordinate system is clockwise on
// screen; only the sign relative to vertex order matters here.
func signedArea(pts []path.Point) float64 {
	var area float64
	n := len(pts)
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		area += pts[i].X*pts[j].Y - pts[j].X*pts[i].Y
	}
	return area / 2
}

// TriangulateSimple converts a simple polygon into a triangle list of
// interleaved x,y float32 pairs. Convex polygons fan in one pass; concave
// ones are ear-clipped. Returns nil when the polygon has no area or when
// clipping stalls, which indicates a self-intersecting outline that must
// take the stencil path instead.
func TriangulateSimple(pts []path.Point) []float32 {
	n := len(pts)
	if n < 3 {
		return nil
	}
	area := signedArea(pts)
	if math.Abs(area) < 1e-9 {
		return nil
	}
	if Convex(pts) {
		out := make([]float32, 0, (n-2)*6)
		for i := 1; i < n-1; i++ {
			out = appendTriangle(out, pts[0], pts[i], pts[i+1])
		}
		return out
	}
	return earClip(pts, area > 0)
}

func appendTriangle(dst []float32, a, b, c path.Point) []float32 {
	cross := (b.X-a.X)*(c.Y-a.Y) - (b.Y-a.Y)*(c.X-a.X)
	if cross == 0 {
		return dst
	}
	return append(dst,
		float32(a.X), float32(a.Y),
		float32(b.X), float32(b.Y),
		float32(c.X), float32(c.Y))
}

// earClip removes one ear per iteration. ccw is the winding of the whole
// polygon; an ear's corner must agree with it.
func earClip(pts []path.Point, ccw bool) []float32 {
	idx := make([]int, len(pts))
	for i := range idx {
		idx[i] = i
	}
	out := make([]float32, 0, (len(pts)-2)*6)
	for len(idx) > 3 {
		clipped := false
		for i := 0; i < len(idx); i++ {
			prev := idx[(i+len(idx)-1)%len(idx)]
			cur := idx[i]
			next := idx[(i+1)%len(idx)]
			a, b, c := pts[prev], pts[cur], pts[next]
			cross := (b.X-a.X)*(c.Y-a.Y) - (b.Y-a.Y)*(c.X-a.X)
			if cross == 0 {
				// Collinear corner: drop the vertex, no triangle.
				idx = append(idx[:i], idx[i+1:]...)
				clipped = true
				break
			}
			if (cross > 0) != ccw {
				continue // reflex corner, not an ear
			}
			if earContainsVertex(pts, idx, prev, cur, next) {
				continue
			}
			out = appendTriangle(out, a, b, c)
			idx = append(idx[:i], idx[i+1:]...)
			clipped = true
			break
		}
		if !clipped {
			// No ear found: the outline self-intersects or is
			// numerically degenerate.
			return nil
		}
	}
	out = appendTriangle(out, pts[idx[0]], pts[idx[1]], pts[idx[2]])
	if len(out) == 0 {
		return nil
	}
	return out
}

func earContainsVertex(pts []path.Point, idx []int, prev, cur, next int) bool {
	a, b, c := pts[prev], pts[cur], pts[next]
	for _, k := range idx {
		if k == prev || k == cur || k == next {
			continue
		}
		if pointInTriangle(pts[k], a, b, c) {
			return true
		}
	}
	return false
}

// pointInTriangle treats points on the boundary as inside, so ears whose
// edge touches another vertex are rejected.
func pointInTriangle(p, a, b, c path.Point) bool {
	d1 := (p.X-b.X)*(a.Y-b.Y) - (a.X-b.X)*(p.Y-b.Y)
	d2 := (p.X-c.X)*(b.Y-c.Y) - (b.X-c.X)*(p.Y-c.Y)
	d3 := (p.X-a.X)*(c.Y-a.Y) - (c.X-a.X)*(p.Y-a.Y)
	hasNeg := d1 < 0 || d2 < 0 || d3 < 0
	hasPos := d1 > 0 || d2 > 0 || d3 > 0
	return !(hasNeg && hasPos)
}
