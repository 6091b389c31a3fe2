package stroke

import (
	"math"

	"github.com/gogpu/scenic/path"
)

// LineCap is the endpoint shape. Values mirror the public API; kept
// as a local type to avoid an import cycle with the root package.
type LineCap int

const (
	LineCapButt LineCap = iota
	LineCapRound
	LineCapSquare
)

// LineJoin is the segment join shape.
type LineJoin int

const (
	LineJoinMiter LineJoin = iota
	LineJoinRound
	LineJoinBevel
)

// Options controls expansion.
type Options struct {
	Width      float64
	Cap        LineCap
	Join       LineJoin
	MiterLimit float64 // 0 means 4
	Tolerance  float64 // arc flattening tolerance, 0 means 0.25
}

// Expand thickens a polyline into closed outline loops. A closed
// polyline yields two loops (outer forward, inner reversed) whose
// windings cancel over the hole under the nonzero rule; an open one
// yields a single capped loop. Degenerate input returns nil.
func Expand(points []path.Point, closed bool, opts Options) [][]path.Point {
	if opts.Width <= 0 {
		return nil
	}
	pts := dropCoincident(points)
	if closed && len(pts) >= 2 && samePoint(pts[0], pts[len(pts)-1]) {
		pts = pts[:len(pts)-1]
	}
	if len(pts) < 2 {
		return nil
	}

	e := expander{
		radius:     opts.Width / 2,
		cap:        opts.Cap,
		join:       opts.Join,
		miterLimit: opts.MiterLimit,
		tolerance:  opts.Tolerance,
	}
	if e.miterLimit <= 0 {
		e.miterLimit = 4
	}
	if e.tolerance <= 0 {
		e.tolerance = 0.25
	}

	if closed {
		return e.expandClosed(pts)
	}
	return e.expandOpen(pts)
}

type expander struct {
	radius     float64
	cap        LineCap
	join       LineJoin
	miterLimit float64
	tolerance  float64

	// forward is the left offset in travel order, backward the right.
	forward, backward []path.Point
}

func (e *expander) expandOpen(pts []path.Point) [][]path.Point {
	t0 := unit(sub(pts[1], pts[0]))
	e.start(pts[0], t0)

	prevTan := t0
	for i := 1; i < len(pts); i++ {
		tan := unit(sub(pts[i], pts[i-1]))
		if i > 1 {
			e.joinAt(pts[i-1], prevTan, tan)
		}
		e.line(pts[i], tan)
		prevTan = tan
	}

	// Assemble: forward, end cap, reversed backward, start cap.
	out := make([]path.Point, 0, 2*len(e.forward)+8)
	out = append(out, e.forward...)
	out = e.appendCap(out, pts[len(pts)-1], prevTan)
	for i := len(e.backward) - 1; i >= 0; i-- {
		out = append(out, e.backward[i])
	}
	out = e.appendCap(out, pts[0], neg(t0))
	return [][]path.Point{out}
}

func (e *expander) expandClosed(pts []path.Point) [][]path.Point {
	n := len(pts)
	if n < 3 {
		return e.expandOpen(pts)
	}

	firstTan := unit(sub(pts[1], pts[0]))
	e.start(pts[0], firstTan)

	prevTan := firstTan
	for i := 1; i <= n; i++ {
		cur := pts[i%n]
		prev := pts[(i-1+n)%n]
		tan := unit(sub(cur, prev))
		if i > 1 {
			e.joinAt(prev, prevTan, tan)
		}
		e.line(cur, tan)
		prevTan = tan
	}
	// Close the loop: join the wrap-around corner at pts[0]. The
	// corner offsets it appends coincide with the seeds from start.
	e.joinAt(pts[0], prevTan, firstTan)
	if n := len(e.forward); n > 1 && samePoint(e.forward[n-1], e.forward[0]) {
		e.forward = e.forward[:n-1]
	}
	if n := len(e.backward); n > 1 && samePoint(e.backward[n-1], e.backward[0]) {
		e.backward = e.backward[:n-1]
	}

	outer := make([]path.Point, len(e.forward))
	copy(outer, e.forward)
	inner := make([]path.Point, 0, len(e.backward))
	for i := len(e.backward) - 1; i >= 0; i-- {
		inner = append(inner, e.backward[i])
	}
	return [][]path.Point{outer, inner}
}

// start seeds both offsets at the first point.
func (e *expander) start(p path.Point, tan path.Point) {
	off := scale(perp(tan), e.radius)
	e.forward = append(e.forward, sub(p, off))
	e.backward = append(e.backward, add(p, off))
}

// line extends both offsets along a segment ending at p.
func (e *expander) line(p path.Point, tan path.Point) {
	off := scale(perp(tan), e.radius)
	e.forward = append(e.forward, sub(p, off))
	e.backward = append(e.backward, add(p, off))
}

// joinAt connects the previous segment to the next around the corner
// at p. The outer side gets the configured join shape; the inner side
// a plain vertex (the fill rule swallows the self-overlap).
func (e *expander) joinAt(p path.Point, t0, t1 path.Point) {
	cross := crossv(t0, t1)
	dot := dotv(t0, t1)
	hyp := math.Hypot(cross, dot)

	// Nearly straight: keep continuity, skip the join shape.
	if dot > 0 && math.Abs(cross) < hyp*(2*e.tolerance/(2*e.radius)) {
		return
	}

	u0 := perp(t0)
	u1 := perp(t1)

	if cross > 0 {
		// Turning towards the backward side: forward offset is outer.
		e.outerJoin(&e.forward, p, scale(u0, -e.radius), scale(u1, -e.radius), cross)
	} else {
		e.outerJoin(&e.backward, p, scale(u0, e.radius), scale(u1, e.radius), cross)
	}

	// Both sides land on the new segment's start offset. The inner
	// side self-overlaps here; the fill rule swallows it.
	off := scale(u1, e.radius)
	e.forward = append(e.forward, sub(p, off))
	e.backward = append(e.backward, add(p, off))
}

// outerJoin emits the join shape between offsets p+n0 and p+n1 on the
// outer buffer. n0/n1 are the signed radius normals for that side.
func (e *expander) outerJoin(buf *[]path.Point, p path.Point, n0, n1 path.Point, cross float64) {
	switch e.join {
	case LineJoinBevel:
		// The segment endpoints already bound the bevel edge.

	case LineJoinMiter:
		bisector := add(n0, n1)
		bl := length(bisector)
		if bl < 1e-10 {
			return // 180° turn, no finite miter
		}
		b := scale(bisector, 1/bl)
		cosHalf := dotv(b, scale(n0, 1/e.radius))
		if cosHalf < 1e-10 {
			return
		}
		// Miter ratio is 1/sin(θ/2); past the limit it renders as bevel.
		if 1/cosHalf > e.miterLimit {
			return
		}
		*buf = append(*buf, add(p, scale(b, e.radius/cosHalf)))

	case LineJoinRound:
		e.appendArc(buf, p, n0, n1, cross)
	}
}

// appendArc walks the circular arc from p+n0 to p+n1, stepping small
// enough that chords stay within tolerance of the true arc.
func (e *expander) appendArc(buf *[]path.Point, p path.Point, n0, n1 path.Point, direction float64) {
	a0 := math.Atan2(n0.Y, n0.X)
	a1 := math.Atan2(n1.Y, n1.X)

	// The outer arc rotates the same way as the turn, sweeping the
	// exterior angle.
	sweep := a1 - a0
	if direction > 0 {
		for sweep < 0 {
			sweep += 2 * math.Pi
		}
	} else {
		for sweep > 0 {
			sweep -= 2 * math.Pi
		}
	}

	maxStep := 2 * math.Acos(math.Max(0, 1-e.tolerance/e.radius))
	if maxStep < 1e-3 {
		maxStep = 1e-3
	}
	steps := int(math.Ceil(math.Abs(sweep) / maxStep))
	for i := 1; i < steps; i++ {
		a := a0 + sweep*float64(i)/float64(steps)
		*buf = append(*buf, path.Point{X: p.X + e.radius*math.Cos(a), Y: p.Y + e.radius*math.Sin(a)})
	}
}

// appendCap emits the cap shape at endpoint p with outgoing unit
// tangent tan, connecting the current outline end (forward side) to
// the backward side.
func (e *expander) appendCap(out []path.Point, p path.Point, tan path.Point) []path.Point {
	u := perp(tan)
	a := sub(p, scale(u, e.radius)) // forward-side corner
	b := add(p, scale(u, e.radius)) // backward-side corner

	switch e.cap {
	case LineCapButt:
		// Straight edge a→b comes from the loop itself.

	case LineCapSquare:
		ext := scale(tan, e.radius)
		out = append(out, add(a, ext), add(b, ext))

	case LineCapRound:
		a0 := math.Atan2(a.Y-p.Y, a.X-p.X)
		// Semicircle bulging in the tangent direction; −u rotated CCW
		// by π/2 is the tangent, so sweep CCW.
		maxStep := 2 * math.Acos(math.Max(0, 1-e.tolerance/e.radius))
		if maxStep < 1e-3 {
			maxStep = 1e-3
		}
		steps := int(math.Ceil(math.Pi / maxStep))
		for i := 1; i < steps; i++ {
			ang := a0 + math.Pi*float64(i)/float64(steps)
			out = append(out, path.Point{X: p.X + e.radius*math.Cos(ang), Y: p.Y + e.radius*math.Sin(ang)})
		}
	}
	return out
}

// dropCoincident removes consecutive duplicate points that would
// yield zero-length tangents.
func dropCoincident(points []path.Point) []path.Point {
	out := make([]path.Point, 0, len(points))
	for _, p := range points {
		if len(out) > 0 && samePoint(out[len(out)-1], p) {
			continue
		}
		out = append(out, p)
	}
	return out
}

func samePoint(a, b path.Point) bool {
	return math.Abs(a.X-b.X) < 1e-12 && math.Abs(a.Y-b.Y) < 1e-12
}

func add(a, b path.Point) path.Point   { return path.Point{X: a.X + b.X, Y: a.Y + b.Y} }
func sub(a, b path.Point) path.Point   { return path.Point{X: a.X - b.X, Y: a.Y - b.Y} }
func neg(a path.Point) path.Point      { return path.Point{X: -a.X, Y: -a.Y} }
func dotv(a, b path.Point) float64     { return a.X*b.X + a.Y*b.Y }
func crossv(a, b path.Point) float64   { return a.X*b.Y - a.Y*b.X }
func length(a path.Point) float64      { return math.Hypot(a.X, a.Y) }
func perp(a path.Point) path.Point     { return path.Point{X: -a.Y, Y: a.X} }
func scale(a path.Point, s float64) path.Point {
	return path.Point{X: a.X * s, Y: a.Y * s}
}

func unit(a path.Point) path.Point {
	l := length(a)
	if l < 1e-12 {
		return path.Point{}
	}
	return path.Point{X: a.X / l, Y: a.Y / l}
}
