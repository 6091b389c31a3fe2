package path

import (
	"math"
	"testing"
)

func TestFlattenLinesPassThrough(t *testing.T) {
	c := Contour{
		MoveTo{X: 0, Y: 0},
		LineTo{X: 10, Y: 0},
		LineTo{X: 10, Y: 10},
		Close{},
	}
	pts := Flatten(c, 0.25)
	want := []Point{{0, 0}, {10, 0}, {10, 10}}
	if len(pts) != len(want) {
		t.Fatalf("Flatten returned %d points, want %d", len(pts), len(want))
	}
	for i, p := range pts {
		if p != want[i] {
			t.Errorf("point %d = %v, want %v", i, p, want[i])
		}
	}
}

func TestFlattenCloseAddsNoPoint(t *testing.T) {
	open := Flatten(Contour{MoveTo{0, 0}, LineTo{5, 0}, LineTo{5, 5}}, 0.25)
	closed := Flatten(Contour{MoveTo{0, 0}, LineTo{5, 0}, LineTo{5, 5}, Close{}}, 0.25)
	if len(open) != len(closed) {
		t.Errorf("Close changed point count: open %d, closed %d", len(open), len(closed))
	}
}

func TestFlattenQuadWithinTolerance(t *testing.T) {
	const tol = 0.1
	c := Contour{
		MoveTo{X: 0, Y: 0},
		QuadTo{CX: 50, CY: 100, X: 100, Y: 0},
	}
	pts := Flatten(c, tol)
	if len(pts) < 4 {
		t.Fatalf("quad flattened to %d points, expected subdivision", len(pts))
	}
	// Every polyline point must lie on the curve's side within tolerance:
	// check each against the exact quadratic by sampling parameter values.
	for _, p := range pts {
		d := distanceToQuad(p, Point{0, 0}, Point{50, 100}, Point{100, 0})
		if d > tol+1e-6 {
			t.Errorf("point %v deviates %g from curve, tolerance %g", p, d, tol)
		}
	}
	last := pts[len(pts)-1]
	if last != (Point{100, 0}) {
		t.Errorf("last point = %v, want curve endpoint (100, 0)", last)
	}
}

func TestFlattenCubicWithinTolerance(t *testing.T) {
	const tol = 0.1
	c := Contour{
		MoveTo{X: 0, Y: 0},
		CubicTo{C1X: 0, C1Y: 100, C2X: 100, C2Y: 100, X: 100, Y: 0},
	}
	pts := Flatten(c, tol)
	if len(pts) < 4 {
		t.Fatalf("cubic flattened to %d points, expected subdivision", len(pts))
	}
	for _, p := range pts {
		d := distanceToCubic(p, Point{0, 0}, Point{0, 100}, Point{100, 100}, Point{100, 0})
		if d > tol+1e-6 {
			t.Errorf("point %v deviates %g from curve, tolerance %g", p, d, tol)
		}
	}
}

func TestFlattenTighterToleranceMorePoints(t *testing.T) {
	c := Contour{
		MoveTo{X: 0, Y: 0},
		CubicTo{C1X: 0, C1Y: 100, C2X: 100, C2Y: 100, X: 100, Y: 0},
	}
	coarse := Flatten(c, 5.0)
	fine := Flatten(c, 0.01)
	if len(fine) <= len(coarse) {
		t.Errorf("tolerance 0.01 gave %d points, tolerance 5.0 gave %d; want more at tighter tolerance",
			len(fine), len(coarse))
	}
}

func TestFlattenDegenerateRetained(t *testing.T) {
	pts := Flatten(Contour{MoveTo{1, 2}, LineTo{3, 4}}, 0.25)
	if len(pts) != 2 {
		t.Errorf("degenerate contour flattened to %d points, want 2 (rejection is the caller's job)", len(pts))
	}
}

func TestFlattenNaNTerminates(t *testing.T) {
	nan := math.NaN()
	c := Contour{
		MoveTo{X: 0, Y: 0},
		CubicTo{C1X: nan, C1Y: nan, C2X: nan, C2Y: nan, X: 10, Y: 0},
	}
	// Must return; the subdivision depth bound prevents runaway recursion.
	pts := Flatten(c, 0.25)
	if len(pts) == 0 {
		t.Error("Flatten on NaN input returned no points")
	}
}

func TestFlattenNonPositiveTolerance(t *testing.T) {
	c := Contour{MoveTo{0, 0}, QuadTo{CX: 5, CY: 10, X: 10, Y: 0}}
	pts := Flatten(c, 0)
	if len(pts) < 3 {
		t.Errorf("zero tolerance fell back to %d points, want default subdivision", len(pts))
	}
}

// distanceToQuad approximates the distance from p to the quadratic Bézier by
// dense parameter sampling.
func distanceToQuad(p, p0, p1, p2 Point) float64 {
	best := math.Inf(1)
	for i := 0; i <= 256; i++ {
		t := float64(i) / 256
		mt := 1 - t
		x := mt*mt*p0.X + 2*mt*t*p1.X + t*t*p2.X
		y := mt*mt*p0.Y + 2*mt*t*p1.Y + t*t*p2.Y
		if d := math.Hypot(p.X-x, p.Y-y); d < best {
			best = d
		}
	}
	return best
}

// distanceToCubic approximates the distance from p to the cubic Bézier by
// dense parameter sampling.
func distanceToCubic(p, p0, p1, p2, p3 Point) float64 {
	best := math.Inf(1)
	for i := 0; i <= 256; i++ {
		t := float64(i) / 256
		mt := 1 - t
		x := mt*mt*mt*p0.X + 3*mt*mt*t*p1.X + 3*mt*t*t*p2.X + t*t*t*p3.X
		y := mt*mt*mt*p0.Y + 3*mt*mt*t*p1.Y + 3*mt*t*t*p2.Y + t*t*t*p3.Y
		if d := math.Hypot(p.X-x, p.Y-y); d < best {
			best = d
		}
	}
	return best
}
