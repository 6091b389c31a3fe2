package stroke

import (
	"math"
	"testing"

	"github.com/gogpu/scenic/path"
)

func containsPoint(loop []path.Point, x, y float64) bool {
	for _, p := range loop {
		if math.Abs(p.X-x) < 1e-9 && math.Abs(p.Y-y) < 1e-9 {
			return true
		}
	}
	return false
}

func signedArea(loop []path.Point) float64 {
	var sum float64
	for i, p := range loop {
		q := loop[(i+1)%len(loop)]
		sum += p.X*q.Y - q.X*p.Y
	}
	return sum / 2
}

func loopBounds(loop []path.Point) (minX, minY, maxX, maxY float64) {
	minX, minY = math.Inf(1), math.Inf(1)
	maxX, maxY = math.Inf(-1), math.Inf(-1)
	for _, p := range loop {
		minX = math.Min(minX, p.X)
		minY = math.Min(minY, p.Y)
		maxX = math.Max(maxX, p.X)
		maxY = math.Max(maxY, p.Y)
	}
	return
}

func TestExpandButtLine(t *testing.T) {
	pts := []path.Point{{X: 0, Y: 0}, {X: 10, Y: 0}}
	loops := Expand(pts, false, Options{Width: 2, Cap: LineCapButt})

	if len(loops) != 1 {
		t.Fatalf("open polyline: got %d loops, want 1", len(loops))
	}
	loop := loops[0]
	// A butt-capped horizontal segment is exactly its bounding rectangle.
	if len(loop) != 4 {
		t.Fatalf("butt rectangle: got %d points, want 4", len(loop))
	}
	for _, want := range [][2]float64{{0, -1}, {10, -1}, {10, 1}, {0, 1}} {
		if !containsPoint(loop, want[0], want[1]) {
			t.Errorf("missing corner (%v, %v) in %v", want[0], want[1], loop)
		}
	}
}

func TestExpandSquareCap(t *testing.T) {
	pts := []path.Point{{X: 0, Y: 0}, {X: 10, Y: 0}}
	loops := Expand(pts, false, Options{Width: 2, Cap: LineCapSquare})

	if len(loops) != 1 {
		t.Fatalf("got %d loops, want 1", len(loops))
	}
	loop := loops[0]
	if len(loop) != 8 {
		t.Fatalf("square caps: got %d points, want 8", len(loop))
	}
	minX, minY, maxX, maxY := loopBounds(loop)
	if minX != -1 || maxX != 11 || minY != -1 || maxY != 1 {
		t.Errorf("bounds = (%v,%v)-(%v,%v), want (-1,-1)-(11,1)", minX, minY, maxX, maxY)
	}
}

func TestExpandRoundCap(t *testing.T) {
	pts := []path.Point{{X: 0, Y: 0}, {X: 10, Y: 0}}
	loops := Expand(pts, false, Options{Width: 4, Cap: LineCapRound})

	if len(loops) != 1 {
		t.Fatalf("got %d loops, want 1", len(loops))
	}
	loop := loops[0]
	if len(loop) <= 4 {
		t.Fatalf("round caps should add arc points, got %d points", len(loop))
	}
	// Every cap point sits on a circle of radius 2 around an endpoint.
	arcPoints := 0
	for _, p := range loop {
		if p.X > 0 && p.X < 10 {
			continue // segment offsets
		}
		dEnd := math.Hypot(p.X-10, p.Y)
		dStart := math.Hypot(p.X, p.Y)
		if math.Abs(dEnd-2) > 1e-9 && math.Abs(dStart-2) > 1e-9 {
			t.Errorf("cap point %v not on either cap circle", p)
		}
		if p.X > 10 || p.X < 0 {
			arcPoints++
		}
	}
	if arcPoints == 0 {
		t.Error("round caps should bulge past the endpoints")
	}
}

func TestExpandMiterJoin(t *testing.T) {
	// Right angle turn; the miter tip lands one radius out on both axes.
	pts := []path.Point{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}}
	loops := Expand(pts, false, Options{Width: 2, Cap: LineCapButt, Join: LineJoinMiter, MiterLimit: 4})

	if len(loops) != 1 {
		t.Fatalf("got %d loops, want 1", len(loops))
	}
	if !containsPoint(loops[0], 11, -1) {
		t.Errorf("miter tip (11,-1) missing from %v", loops[0])
	}
}

func TestExpandMiterLimitFallsBackToBevel(t *testing.T) {
	pts := []path.Point{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}}
	// A right angle needs ratio sqrt(2); a limit below that bevels.
	loops := Expand(pts, false, Options{Width: 2, Cap: LineCapButt, Join: LineJoinMiter, MiterLimit: 1.2})

	if len(loops) != 1 {
		t.Fatalf("got %d loops, want 1", len(loops))
	}
	if containsPoint(loops[0], 11, -1) {
		t.Error("miter tip should be suppressed past the limit")
	}
	// Bevel edge endpoints stay.
	if !containsPoint(loops[0], 10, -1) || !containsPoint(loops[0], 11, 0) {
		t.Errorf("bevel corner points missing from %v", loops[0])
	}
}

func TestExpandBevelJoin(t *testing.T) {
	pts := []path.Point{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}}
	loops := Expand(pts, false, Options{Width: 2, Cap: LineCapButt, Join: LineJoinBevel})

	if len(loops) != 1 {
		t.Fatalf("got %d loops, want 1", len(loops))
	}
	loop := loops[0]
	if len(loop) != 8 {
		t.Fatalf("beveled right angle: got %d points, want 8", len(loop))
	}
	if !containsPoint(loop, 10, -1) || !containsPoint(loop, 11, 0) {
		t.Errorf("bevel edge endpoints missing from %v", loop)
	}
	// Inner side keeps both segment offsets at the corner.
	if !containsPoint(loop, 10, 1) || !containsPoint(loop, 9, 0) {
		t.Errorf("inner corner offsets missing from %v", loop)
	}
}

func TestExpandRoundJoin(t *testing.T) {
	pts := []path.Point{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}}
	loops := Expand(pts, false, Options{Width: 4, Cap: LineCapButt, Join: LineJoinRound})

	if len(loops) != 1 {
		t.Fatalf("got %d loops, want 1", len(loops))
	}
	// Arc points round the outer corner quadrant, all on a radius-2
	// circle around the corner.
	found := 0
	for _, p := range loops[0] {
		if p.X < 10-1e-9 || p.Y > 1e-9 {
			continue
		}
		if ptEquals(p, 10, -2) || ptEquals(p, 12, 0) {
			continue // segment offset endpoints
		}
		d := math.Hypot(p.X-10, p.Y)
		if math.Abs(d-2) > 1e-9 {
			t.Errorf("arc point %v not at distance 2 from corner", p)
		}
		found++
	}
	if found == 0 {
		t.Error("round join should emit arc points")
	}
}

func ptEquals(p path.Point, x, y float64) bool {
	return math.Abs(p.X-x) < 1e-9 && math.Abs(p.Y-y) < 1e-9
}

// windingAt casts a horizontal ray to +x and accumulates signed edge
// crossings over all loops, matching the nonzero stencil evaluation.
func windingAt(loops [][]path.Point, x, y float64) int {
	w := 0
	for _, loop := range loops {
		for i, p := range loop {
			q := loop[(i+1)%len(loop)]
			if (p.Y <= y) == (q.Y <= y) {
				continue
			}
			t := (y - p.Y) / (q.Y - p.Y)
			if p.X+t*(q.X-p.X) > x {
				if q.Y > p.Y {
					w++
				} else {
					w--
				}
			}
		}
	}
	return w
}

func TestExpandClosedProducesRing(t *testing.T) {
	pts := []path.Point{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}, {X: 0, Y: 10}}
	loops := Expand(pts, true, Options{Width: 2, Cap: LineCapButt, Join: LineJoinBevel})

	if len(loops) != 2 {
		t.Fatalf("closed polyline: got %d loops, want 2", len(loops))
	}
	outer, inner := loops[0], loops[1]

	minX, minY, maxX, maxY := loopBounds(outer)
	if minX != -1 || minY != -1 || maxX != 11 || maxY != 11 {
		t.Errorf("outer bounds = (%v,%v)-(%v,%v), want (-1,-1)-(11,11)", minX, minY, maxX, maxY)
	}

	// Opposite windings: the hole cancels under the nonzero rule.
	ao, ai := signedArea(outer), signedArea(inner)
	if ao*ai >= 0 {
		t.Errorf("outer and inner areas should have opposite signs, got %v and %v", ao, ai)
	}
	if math.Abs(ao) <= math.Abs(ai) {
		t.Errorf("|outer| = %v should exceed |inner| = %v", math.Abs(ao), math.Abs(ai))
	}

	// Nonzero winding: zero in the hole, nonzero across the band.
	tests := []struct {
		name    string
		x, y    float64
		covered bool
	}{
		{name: "hole center", x: 5, y: 5.5, covered: false},
		{name: "hole near corner", x: 7.5, y: 7.5, covered: false},
		{name: "left band", x: -0.5, y: 5.5, covered: true},
		{name: "bottom band", x: 5, y: 0.5, covered: true},
		{name: "corner overlap", x: 9.4, y: 0.5, covered: true},
		{name: "outside", x: 12, y: 5.5, covered: false},
	}
	for _, tt := range tests {
		if got := windingAt(loops, tt.x, tt.y) != 0; got != tt.covered {
			t.Errorf("%s (%v,%v): covered = %v, want %v", tt.name, tt.x, tt.y, got, tt.covered)
		}
	}
}

func TestExpandClosedTrailingDuplicate(t *testing.T) {
	// An explicitly closed input (last == first) expands like the
	// implicit form.
	pts := []path.Point{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}, {X: 0, Y: 10}, {X: 0, Y: 0}}
	loops := Expand(pts, true, Options{Width: 2, Join: LineJoinBevel})
	if len(loops) != 2 {
		t.Fatalf("got %d loops, want 2", len(loops))
	}
}

func TestExpandCollinearSkipsJoin(t *testing.T) {
	pts := []path.Point{{X: 0, Y: 0}, {X: 5, Y: 0}, {X: 10, Y: 0}}
	loops := Expand(pts, false, Options{Width: 2, Join: LineJoinMiter, MiterLimit: 4})

	if len(loops) != 1 {
		t.Fatalf("got %d loops, want 1", len(loops))
	}
	// No join geometry at the straight interior vertex.
	if len(loops[0]) != 6 {
		t.Errorf("collinear polyline: got %d points, want 6", len(loops[0]))
	}
}

func TestExpandDegenerate(t *testing.T) {
	tests := []struct {
		name   string
		points []path.Point
		closed bool
		width  float64
	}{
		{name: "nil input", points: nil, width: 2},
		{name: "single point", points: []path.Point{{X: 5, Y: 5}}, width: 2},
		{name: "coincident points", points: []path.Point{{X: 5, Y: 5}, {X: 5, Y: 5}}, width: 2},
		{name: "zero width", points: []path.Point{{X: 0, Y: 0}, {X: 10, Y: 0}}, width: 0},
		{name: "negative width", points: []path.Point{{X: 0, Y: 0}, {X: 10, Y: 0}}, width: -1},
		{name: "closed pair collapses", points: []path.Point{{X: 1, Y: 1}, {X: 1, Y: 1}}, closed: true, width: 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loops := Expand(tt.points, tt.closed, Options{Width: tt.width})
			if len(loops) != 0 {
				t.Errorf("got %d loops, want none", len(loops))
			}
		})
	}
}

func TestExpandDropsCoincidentRuns(t *testing.T) {
	pts := []path.Point{{X: 0, Y: 0}, {X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 0}}
	loops := Expand(pts, false, Options{Width: 2})
	if len(loops) != 1 {
		t.Fatalf("got %d loops, want 1", len(loops))
	}
	if len(loops[0]) != 4 {
		t.Errorf("got %d points, want 4", len(loops[0]))
	}
}

func TestExpandClosedOpenFallback(t *testing.T) {
	// Two distinct points marked closed degrade to an open segment.
	pts := []path.Point{{X: 0, Y: 0}, {X: 10, Y: 0}}
	loops := Expand(pts, true, Options{Width: 2})
	if len(loops) != 1 {
		t.Fatalf("got %d loops, want 1", len(loops))
	}
}

func BenchmarkExpandZigzag(b *testing.B) {
	pts := make([]path.Point, 0, 101)
	pts = append(pts, path.Point{})
	for i := 1; i <= 100; i++ {
		pts = append(pts, path.Point{X: float64(i * 10), Y: float64((i % 2) * 10)})
	}
	opts := Options{Width: 2, Cap: LineCapRound, Join: LineJoinRound}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Expand(pts, false, opts)
	}
}

func BenchmarkExpandClosedSquare(b *testing.B) {
	pts := []path.Point{{X: 0, Y: 0}, {X: 100, Y: 0}, {X: 100, Y: 100}, {X: 0, Y: 100}}
	opts := Options{Width: 4, Join: LineJoinMiter, MiterLimit: 4}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Expand(pts, true, opts)
	}
}
