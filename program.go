package scenic

import (
	"math"

	"github.com/gogpu/scenic/internal/gpu"
	"github.com/gogpu/scenic/internal/stroke"
	"github.com/gogpu/scenic/path"
)

// kappa is the control-point distance that makes one cubic Bézier
// approximate a quarter circle.
const kappa = 0.5522847498307936

// compileFrame lowers a scene tree into the flat draw program the
// engine executes. Every coordinate in the returned frame is in device
// pixels: the root transform scales logical units by the pixel ratio
// and node transforms compose onto it during the walk.
func compileFrame(scene *Scene, opt *rendererOptions) *gpu.Frame {
	bg := opt.background
	a := clamp01(bg.A)
	frame := &gpu.Frame{
		Width:  uint32(math.Round(scene.Width * opt.pixelRatio)),
		Height: uint32(math.Round(scene.Height * opt.pixelRatio)),
		Background: [4]float64{
			clamp01(bg.R) * a,
			clamp01(bg.G) * a,
			clamp01(bg.B) * a,
			a,
		},
	}
	tol := opt.flattenTolerance
	if tol <= 0 {
		tol = path.DefaultTolerance
	}
	c := &compiler{frame: frame, tolerance: tol, textures: opt.textureCache}
	device := Scale(opt.pixelRatio, opt.pixelRatio)
	for _, root := range scene.Roots {
		c.node(root, device, 1)
	}
	return frame
}

// compiler carries per-frame state through the tree walk.
type compiler struct {
	frame *gpu.Frame
	// tolerance is the flattening tolerance in device pixels; it is
	// divided by each node's world scale before flattening in local
	// space.
	tolerance float64
	textures  TextureCache
}

// node visits one tree node: composes the world transform and opacity,
// then dispatches on the concrete kind. Invisible nodes and fully
// transparent subtrees are skipped whole.
func (c *compiler) node(n Node, parent Matrix, parentOpacity float64) {
	base := n.Base()
	if !base.Visible {
		return
	}
	world := parent.Mul(base.Transform)
	opacity := parentOpacity * clamp01(base.Opacity)
	if opacity <= 0 {
		return
	}

	switch v := n.(type) {
	case *Group:
		c.container(base, nil, world, opacity, v.Children, false)
	case *Frame:
		s := c.resolveShape(contourList(rectContour(v.W, v.H, v.CornerRadius)), path.FillNonZero, world, true)
		c.container(base, s, world, opacity, v.Children, true)
	case *RectNode:
		s := c.resolveShape(contourList(rectContour(v.W, v.H, v.CornerRadius)), path.FillNonZero, world, true)
		c.leaf(base, s, base.Fills, world, opacity)
	case *EllipseNode:
		s := c.resolveShape(contourList(ellipseContour(v.W, v.H)), path.FillNonZero, world, true)
		c.leaf(base, s, base.Fills, world, opacity)
	case *PathNode:
		contours := v.Contours
		if contours == nil {
			contours = path.DecodeContours(v.Data)
		}
		s := c.resolveShape(contours, v.Rule, world, true)
		c.leaf(base, s, base.Fills, world, opacity)
	case *TextNode:
		// Glyph outlines carry holes as counter-rotating contours, so
		// they always take the stencil route under the nonzero rule.
		s := c.resolveShape(v.Contours, path.FillNonZero, world, false)
		c.leaf(base, s, base.Fills, world, opacity)
	case *ImageNode:
		s := c.resolveShape(contourList(rectContour(v.W, v.H, 0)), path.FillNonZero, world, true)
		fills := make([]Paint, 0, len(base.Fills)+1)
		fills = append(fills, ImagePaint{Ref: v.Ref, Data: v.Data, Mime: v.Mime, Mode: v.Mode, Opacity: 1})
		fills = append(fills, base.Fills...)
		c.leaf(base, s, fills, world, opacity)
	}
}

// leaf paints a childless node: drop shadows, fills, inner shadows,
// then the stroke on top.
func (c *compiler) leaf(base *NodeBase, s *shape, fills []Paint, world Matrix, opacity float64) {
	if s == nil {
		return
	}
	c.emitShadows(base, s, world, opacity, false)
	c.emitFill(s, fills, world, opacity)
	c.emitShadows(base, s, world, opacity, true)
	c.emitStroke(s, base.Stroke, world, opacity)
}

// container paints a node that owns children. The node's own fills and
// drop shadows go under the children; inner shadows and the stroke go
// on top, so a frame border stays visible over its content.
//
// intrinsic marks nodes whose own geometry doubles as the clip shape.
// When clipping is requested and the resolved clip geometry is empty,
// the children are hidden outright: an empty clip region admits
// nothing.
func (c *compiler) container(base *NodeBase, s *shape, world Matrix, opacity float64, children []Node, intrinsic bool) {
	if s != nil {
		c.emitShadows(base, s, world, opacity, false)
		c.emitFill(s, base.Fills, world, opacity)
	}

	hidden := false
	clipped := false
	if base.ClipsContent {
		clip, specified := s, intrinsic
		if len(base.ClipShape) > 0 {
			clip = c.resolveShape(base.ClipShape, path.FillNonZero, world, false)
			specified = true
		}
		if specified {
			if clip != nil && c.pushClip(clip) {
				clipped = true
			} else {
				hidden = true
			}
		}
	}
	if !hidden {
		for _, child := range children {
			c.node(child, world, opacity)
		}
	}
	if clipped {
		c.frame.Ops = append(c.frame.Ops, &gpu.ClipPopOp{})
	}

	if s != nil {
		c.emitShadows(base, s, world, opacity, true)
		c.emitStroke(s, base.Stroke, world, opacity)
	}
}

// shape is one node's geometry resolved for rendering: outlines
// flattened in node-local and device space, the local box image paints
// map onto, and an exact triangulation when the outline permits one.
type shape struct {
	local    [][]path.Point
	device   [][]path.Point
	closed   []bool
	localBox Rect
	rule     path.FillRule
	// direct is the ear-clipped triangle list; nil routes the shape
	// through the stencil buffer.
	direct []float32
}

// resolveShape flattens contours in local space and maps the polylines
// under world into device pixels. Flattening locally keeps the
// tolerance bound after an affine map: errors scale by at most
// MaxScale, which the tolerance is divided by up front.
//
// When direct is set and a single contour survives, an exact
// triangulation is attempted; ear clipping stalls on self-intersecting
// outlines and those fall back to the stencil route. Multi-contour
// shapes always take the stencil route, since hole containment cannot
// be inferred one polygon at a time.
func (c *compiler) resolveShape(contours []path.Contour, rule path.FillRule, world Matrix, direct bool) *shape {
	scale := world.MaxScale()
	if scale <= 0 {
		return nil
	}
	tol := c.tolerance / scale
	s := &shape{rule: rule, localBox: EmptyRect()}
	for _, contour := range contours {
		pts := path.Flatten(contour, tol)
		if len(pts) < 3 {
			continue
		}
		dev := make([]path.Point, len(pts))
		for i, p := range pts {
			s.localBox = s.localBox.ExtendPoint(Point{X: p.X, Y: p.Y})
			q := world.TransformPoint(Point{X: p.X, Y: p.Y})
			dev[i] = path.Point{X: q.X, Y: q.Y}
		}
		s.local = append(s.local, pts)
		s.device = append(s.device, dev)
		s.closed = append(s.closed, contourClosed(contour))
	}
	if len(s.device) == 0 {
		return nil
	}
	if direct && len(s.device) == 1 {
		s.direct = gpu.TriangulateSimple(s.device[0])
	}
	return s
}

func contourClosed(c path.Contour) bool {
	for i := len(c) - 1; i >= 0; i-- {
		if _, ok := c[i].(path.Close); ok {
			return true
		}
	}
	return false
}

// contourList wraps a single contour, dropping nil ones from degenerate
// dimensions.
func contourList(c path.Contour) []path.Contour {
	if c == nil {
		return nil
	}
	return []path.Contour{c}
}

// geometry picks the draw route for the shape's own fills.
func (s *shape) geometry() gpu.Geometry {
	if s.direct != nil {
		return gpu.DirectGeometry{Vertices: s.direct}
	}
	if g := s.stencil(Point{}); g != nil {
		return *g
	}
	return nil
}

// stencil fans the device outlines translated by off. Even-odd shapes
// fan per contour for the stencil INVERT trick; nonzero shapes share an
// external anchor so winding accumulates across contours.
func (s *shape) stencil(off Point) *gpu.StencilGeometry {
	outlines := s.device
	if off.X != 0 || off.Y != 0 {
		outlines = make([][]path.Point, len(s.device))
		for i, pts := range s.device {
			moved := make([]path.Point, len(pts))
			for j, p := range pts {
				moved[j] = path.Point{X: p.X + off.X, Y: p.Y + off.Y}
			}
			outlines[i] = moved
		}
	}
	fan := gpu.PrepareFanPoints(outlines, anchorFor(s.rule))
	if fan == nil {
		return nil
	}
	return &gpu.StencilGeometry{Fan: fan, Rule: s.rule}
}

func anchorFor(rule path.FillRule) gpu.AnchorMode {
	if rule == path.FillEvenOdd {
		return gpu.AnchorPerContour
	}
	return gpu.AnchorSharedExternal
}

// emitFill appends one fill op painting the shape with every resolvable
// paint, bottom to top. Paints that resolve to nothing (missing
// textures, zero alpha) drop out individually; an all-skipped list
// draws nothing.
func (c *compiler) emitFill(s *shape, fills []Paint, world Matrix, opacity float64) {
	specs := c.resolvePaints(fills, world, opacity, s.localBox)
	if len(specs) == 0 {
		return
	}
	geom := s.geometry()
	if geom == nil {
		return
	}
	c.frame.Ops = append(c.frame.Ops, &gpu.FillOp{Geometry: geom, Paints: specs})
}

// emitStroke thickens the node outline and paints it as ordinary fill
// geometry. Expansion runs in local space so anisotropic transforms
// stretch the stroke with the shape; the resulting loops rely on
// winding cancellation and therefore always take the nonzero stencil
// route.
func (c *compiler) emitStroke(s *shape, st *Stroke, world Matrix, opacity float64) {
	if st == nil || st.Width <= 0 || st.Paint == nil {
		return
	}
	alpha := opacity * clamp01(st.Opacity)
	if alpha <= 0 {
		return
	}
	scale := world.MaxScale()
	if scale <= 0 {
		return
	}
	opts := stroke.Options{
		Width:      st.Width,
		Cap:        stroke.LineCap(st.Cap),
		Join:       stroke.LineJoin(st.Join),
		MiterLimit: st.MiterLimit,
		Tolerance:  c.tolerance / scale,
	}
	var outlines [][]path.Point
	for i, pts := range s.local {
		for _, loop := range stroke.Expand(pts, s.closed[i], opts) {
			dev := make([]path.Point, len(loop))
			for j, p := range loop {
				q := world.TransformPoint(Point{X: p.X, Y: p.Y})
				dev[j] = path.Point{X: q.X, Y: q.Y}
			}
			outlines = append(outlines, dev)
		}
	}
	fan := gpu.PrepareFanPoints(outlines, gpu.AnchorSharedExternal)
	if fan == nil {
		return
	}
	specs := c.resolvePaints([]Paint{st.Paint}, world, alpha, s.localBox)
	if len(specs) == 0 {
		return
	}
	c.frame.Ops = append(c.frame.Ops, &gpu.FillOp{
		Geometry: gpu.StencilGeometry{Fan: fan, Rule: path.FillNonZero},
		Paints:   specs,
	})
}

// pushClip intersects the active clip with the shape's outlines.
func (c *compiler) pushClip(s *shape) bool {
	fan := gpu.PrepareFanPoints(s.device, gpu.AnchorSharedExternal)
	if fan == nil {
		return false
	}
	c.frame.Ops = append(c.frame.Ops, &gpu.ClipPushOp{
		Shape: gpu.StencilGeometry{Fan: fan, Rule: path.FillNonZero},
	})
	return true
}

// emitShadows walks the effect list in order, emitting either the drop
// shadows (under the fills) or the inner shadows (over them).
func (c *compiler) emitShadows(base *NodeBase, s *shape, world Matrix, opacity float64, inner bool) {
	for _, e := range base.Effects {
		switch e := e.(type) {
		case DropShadow:
			if !inner {
				c.dropShadow(s, world, opacity, e)
			}
		case InnerShadow:
			if inner {
				c.innerShadow(s, world, opacity, e)
			}
		}
	}
}

// dropShadow lowers one drop shadow. Radius zero paints a hard-edged
// copy of the geometry translated by the offset; a positive radius
// renders the translated silhouette offscreen and blurs it.
func (c *compiler) dropShadow(s *shape, world Matrix, opacity float64, e DropShadow) {
	if e.Color.A <= 0 {
		return
	}
	off := world.TransformVector(Pt(e.OffsetX, e.OffsetY))
	if e.Radius <= 0 {
		c.hardShadow(s, off, e.Color, opacity)
		return
	}
	sil := s.stencil(off)
	if sil == nil {
		return
	}
	c.frame.Ops = append(c.frame.Ops, &gpu.ShadowOp{
		Silhouette: *sil,
		Sigma:      e.Radius * world.MaxScale(),
		Color:      colorVec(e.Color),
		Opacity:    float32(opacity),
	})
}

// hardShadow reuses the fill geometry for a zero-radius drop shadow:
// the same triangles or fan, translated, painted a single solid color.
func (c *compiler) hardShadow(s *shape, off Point, col RGBA, opacity float64) {
	var geom gpu.Geometry
	if s.direct != nil {
		moved := make([]float32, len(s.direct))
		for i := 0; i < len(s.direct); i += 2 {
			moved[i] = s.direct[i] + float32(off.X)
			moved[i+1] = s.direct[i+1] + float32(off.Y)
		}
		geom = gpu.DirectGeometry{Vertices: moved}
	} else {
		sil := s.stencil(off)
		if sil == nil {
			return
		}
		geom = *sil
	}
	c.frame.Ops = append(c.frame.Ops, &gpu.FillOp{
		Geometry: geom,
		Paints: []gpu.PaintSpec{{
			Kind:    gpu.PaintSolid,
			Color:   colorVec(col),
			Opacity: float32(opacity),
		}},
	})
}

// innerShadow lowers one inner shadow: the blurred, inverted coverage
// of the offset silhouette, composited through the node's own shape.
func (c *compiler) innerShadow(s *shape, world Matrix, opacity float64, e InnerShadow) {
	if e.Color.A <= 0 {
		return
	}
	off := world.TransformVector(Pt(e.OffsetX, e.OffsetY))
	sil := s.stencil(off)
	mask := s.stencil(Point{})
	if sil == nil || mask == nil {
		return
	}
	c.frame.Ops = append(c.frame.Ops, &gpu.ShadowOp{
		Inner:      true,
		Silhouette: *sil,
		Mask:       mask,
		Sigma:      math.Max(e.Radius, 0) * world.MaxScale(),
		Color:      colorVec(e.Color),
		Opacity:    float32(opacity),
	})
}

// resolvePaints lowers node paints into device-space paint specs,
// dropping the ones that cannot draw.
func (c *compiler) resolvePaints(fills []Paint, world Matrix, opacity float64, region Rect) []gpu.PaintSpec {
	specs := make([]gpu.PaintSpec, 0, len(fills))
	for _, p := range fills {
		if spec, ok := c.resolvePaint(p, world, opacity, region); ok {
			specs = append(specs, spec)
		}
	}
	return specs
}

func (c *compiler) resolvePaint(p Paint, world Matrix, opacity float64, region Rect) (gpu.PaintSpec, bool) {
	if p == nil {
		return gpu.PaintSpec{}, false
	}
	alpha := opacity * clamp01(p.PaintOpacity())
	if alpha <= 0 {
		return gpu.PaintSpec{}, false
	}
	switch p := p.(type) {
	case SolidPaint:
		return gpu.PaintSpec{
			Kind:    gpu.PaintSolid,
			Color:   colorVec(p.Color),
			Opacity: float32(alpha),
		}, true
	case LinearGradientPaint:
		stops := stopSpecs(p.Stops)
		if stops == nil {
			return gpu.PaintSpec{}, false
		}
		start := world.TransformPoint(p.Start)
		end := world.TransformPoint(p.End)
		return gpu.PaintSpec{
			Kind:    gpu.PaintLinearGradient,
			Opacity: float32(alpha),
			Start:   [2]float32{float32(start.X), float32(start.Y)},
			End:     [2]float32{float32(end.X), float32(end.Y)},
			Stops:   stops,
		}, true
	case RadialGradientPaint:
		stops := stopSpecs(p.Stops)
		if stops == nil {
			return gpu.PaintSpec{}, false
		}
		center := world.TransformPoint(p.Center)
		return gpu.PaintSpec{
			Kind:    gpu.PaintRadialGradient,
			Opacity: float32(alpha),
			Start:   [2]float32{float32(center.X), float32(center.Y)},
			Radius:  float32(p.Radius * world.MaxScale()),
			Stops:   stops,
		}, true
	case ImagePaint:
		return c.imageSpec(p, world, alpha, region)
	}
	return gpu.PaintSpec{}, false
}

// imageSpec resolves an image paint against the texture cache. A ref
// that is not resident skips the paint: residency is PrepareScene's
// job and rendering never blocks on it.
func (c *compiler) imageSpec(p ImagePaint, world Matrix, alpha float64, region Rect) (gpu.PaintSpec, bool) {
	if c.textures == nil || p.Ref == "" {
		return gpu.PaintSpec{}, false
	}
	handle, ok := c.textures.GetIfCached(p.Ref)
	if !ok {
		Logger().Debug("texture not resident, skipping image fill", "ref", p.Ref)
		return gpu.PaintSpec{}, false
	}
	tex, ok := handle.(*gpu.Texture)
	if !ok {
		Logger().Warn("texture handle from a foreign cache, skipping image fill", "ref", p.Ref)
		return gpu.PaintSpec{}, false
	}
	texW, texH := tex.Size()
	uv, tile, ok := imageUV(p.Mode, region, texW, texH, world)
	if !ok {
		return gpu.PaintSpec{}, false
	}
	return gpu.PaintSpec{
		Kind:    gpu.PaintImage,
		Opacity: float32(alpha),
		Texture: tex,
		UV:      uv,
		Tile:    tile,
	}, true
}

// imageUV builds the affine map from device pixels to normalized
// texture coordinates: device → local via the world inverse, then
// local → UV over the node's box per the scale mode. Tile maps the
// image at its natural size in local units and lets the sampler wrap.
func imageUV(mode ScaleMode, region Rect, texW, texH int, world Matrix) ([6]float32, bool, bool) {
	rw, rh := region.Width(), region.Height()
	iw, ih := float64(texW), float64(texH)
	if rw <= 0 || rh <= 0 || iw <= 0 || ih <= 0 {
		return [6]float32{}, false, false
	}

	var ox, oy, sx, sy float64
	tile := false
	switch mode {
	case ScaleStretch:
		ox, oy, sx, sy = region.Min.X, region.Min.Y, rw, rh
	case ScaleTile:
		ox, oy, sx, sy = region.Min.X, region.Min.Y, iw, ih
		tile = true
	default: // ScaleFit, ScaleFill
		s := math.Min(rw/iw, rh/ih)
		if mode == ScaleFill {
			s = math.Max(rw/iw, rh/ih)
		}
		sx, sy = iw*s, ih*s
		ox = region.Min.X + (rw-sx)/2
		oy = region.Min.Y + (rh-sy)/2
	}

	toUV := Matrix{A: 1 / sx, D: 1 / sy, E: -ox / sx, F: -oy / sy}
	m := toUV.Mul(world.Invert())
	return [6]float32{
		float32(m.A), float32(m.B), float32(m.C),
		float32(m.D), float32(m.E), float32(m.F),
	}, tile, true
}

// stopSpecs normalizes and converts gradient stops, returning nil for
// an empty list so the paint is skipped rather than drawn undefined.
func stopSpecs(stops []GradientStop) []gpu.StopSpec {
	stops = NormalizeStops(stops)
	if len(stops) == 0 {
		return nil
	}
	out := make([]gpu.StopSpec, len(stops))
	for i, s := range stops {
		out[i] = gpu.StopSpec{Offset: float32(s.Offset), Color: colorVec(s.Color)}
	}
	return out
}

func colorVec(c RGBA) [4]float32 {
	return [4]float32{
		float32(clamp01(c.R)),
		float32(clamp01(c.G)),
		float32(clamp01(c.B)),
		float32(clamp01(c.A)),
	}
}

// rectContour outlines a w×h rectangle anchored at the origin,
// with corners rounded by radius. The radius clamps to half the
// shorter side.
func rectContour(w, h, radius float64) path.Contour {
	if w <= 0 || h <= 0 {
		return nil
	}
	r := math.Min(radius, math.Min(w, h)/2)
	if r <= 0 {
		return path.Contour{
			path.MoveTo{X: 0, Y: 0},
			path.LineTo{X: w, Y: 0},
			path.LineTo{X: w, Y: h},
			path.LineTo{X: 0, Y: h},
			path.Close{},
		}
	}
	k := r * (1 - kappa)
	return path.Contour{
		path.MoveTo{X: r, Y: 0},
		path.LineTo{X: w - r, Y: 0},
		path.CubicTo{C1X: w - k, C1Y: 0, C2X: w, C2Y: k, X: w, Y: r},
		path.LineTo{X: w, Y: h - r},
		path.CubicTo{C1X: w, C1Y: h - k, C2X: w - k, C2Y: h, X: w - r, Y: h},
		path.LineTo{X: r, Y: h},
		path.CubicTo{C1X: k, C1Y: h, C2X: 0, C2Y: h - k, X: 0, Y: h - r},
		path.LineTo{X: 0, Y: r},
		path.CubicTo{C1X: 0, C1Y: k, C2X: k, C2Y: 0, X: r, Y: 0},
		path.Close{},
	}
}

// ellipseContour outlines the ellipse inscribed in the w×h box
// anchored at the origin, as four cubic arcs.
func ellipseContour(w, h float64) path.Contour {
	if w <= 0 || h <= 0 {
		return nil
	}
	rx, ry := w/2, h/2
	cx, cy := rx, ry
	kx, ky := rx*kappa, ry*kappa
	return path.Contour{
		path.MoveTo{X: cx + rx, Y: cy},
		path.CubicTo{C1X: cx + rx, C1Y: cy + ky, C2X: cx + kx, C2Y: cy + ry, X: cx, Y: cy + ry},
		path.CubicTo{C1X: cx - kx, C1Y: cy + ry, C2X: cx - rx, C2Y: cy + ky, X: cx - rx, Y: cy},
		path.CubicTo{C1X: cx - rx, C1Y: cy - ky, C2X: cx - kx, C2Y: cy - ry, X: cx, Y: cy - ry},
		path.CubicTo{C1X: cx + kx, C1Y: cy - ry, C2X: cx + rx, C2Y: cy - ky, X: cx + rx, Y: cy},
		path.Close{},
	}
}
