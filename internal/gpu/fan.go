package gpu

import (
	"math"

	"github.com/gogpu/scenic/path"
)

// AnchorMode selects where fan triangles originate.
type AnchorMode uint8

const (
	// AnchorPerContour fans each contour from its own first vertex,
	// producing n-2 triangles per closed polyline of n points.
	AnchorPerContour AnchorMode = iota
	// AnchorSharedExternal fans every contour from one shared anchor
	// placed outside the geometry bounds, producing n triangles per
	// polyline. Winding accumulated from a shared anchor stays
	// consistent across contours that overlap each other.
	AnchorSharedExternal
)

// FanGeometry is the stencil-pass triangle list for one path, in device
// pixels. Bounds track the flattened points only; the cover quad adds its
// own padding.
type FanGeometry struct {
	Vertices []float32
	Bounds   [4]float32 // minX, minY, maxX, maxY
}

// VertexCount returns the draw count for the triangle list.
func (g *FanGeometry) VertexCount() uint32 {
	if g == nil {
		return 0
	}
	return uint32(len(g.Vertices) / 2)
}

// coverPadding expands the cover quad past the path bounds so the
// conservative rasterization of edge pixels under MSAA is never clipped.
const coverPadding = 1.0

// PrepareFan flattens contours and emits fan triangles for the stencil
// pass. Contours that flatten to fewer than three points contribute no
// area and are dropped. Returns nil when nothing usable remains.
func PrepareFan(contours []path.Contour, tolerance float64, mode AnchorMode) *FanGeometry {
	polylines := make([][]path.Point, 0, len(contours))
	for _, c := range contours {
		polylines = append(polylines, path.Flatten(c, tolerance))
	}
	return PrepareFanPoints(polylines, mode)
}

// PrepareFanPoints builds fan triangles from already-flattened polylines.
// Stroke expansion and other geometry producers that bypass the command
// representation feed their outlines in here directly.
func PrepareFanPoints(polylines [][]path.Point, mode AnchorMode) *FanGeometry {
	kept := make([][]path.Point, 0, len(polylines))
	minX := math.Inf(1)
	minY := math.Inf(1)
	maxX := math.Inf(-1)
	maxY := math.Inf(-1)
	total := 0
	for _, pts := range polylines {
		if len(pts) < 3 {
			continue
		}
		for _, p := range pts {
			minX = math.Min(minX, p.X)
			minY = math.Min(minY, p.Y)
			maxX = math.Max(maxX, p.X)
			maxY = math.Max(maxY, p.Y)
		}
		total += len(pts)
		kept = append(kept, pts)
	}
	if len(kept) == 0 {
		return nil
	}
	polylines = kept

	geom := &FanGeometry{
		Vertices: make([]float32, 0, total*6),
		Bounds: [4]float32{
			float32(minX), float32(minY),
			float32(maxX), float32(maxY),
		},
	}
	switch mode {
	case AnchorSharedExternal:
		ax := float32(minX) - 1
		ay := float32(minY) - 1
		for _, pts := range polylines {
			n := len(pts)
			for i := 0; i < n; i++ {
				j := (i + 1) % n
				geom.emit(ax, ay,
					float32(pts[i].X), float32(pts[i].Y),
					float32(pts[j].X), float32(pts[j].Y))
			}
		}
	default:
		for _, pts := range polylines {
			ax := float32(pts[0].X)
			ay := float32(pts[0].Y)
			for i := 1; i < len(pts)-1; i++ {
				geom.emit(ax, ay,
					float32(pts[i].X), float32(pts[i].Y),
					float32(pts[i+1].X), float32(pts[i+1].Y))
			}
		}
	}
	if len(geom.Vertices) == 0 {
		return nil
	}
	return geom
}

// emit appends one triangle, skipping degenerates with zero signed area.
// Degenerate triangles would still rasterize edge pixels and corrupt the
// winding count.
func (g *FanGeometry) emit(ax, ay, bx, by, cx, cy float32) {
	cross := (bx-ax)*(cy-ay) - (by-ay)*(cx-ax)
	if cross == 0 {
		return
	}
	g.Vertices = append(g.Vertices, ax, ay, bx, by, cx, cy)
}

// CoverQuad returns two triangles covering bounds expanded by
// coverPadding, as 12 interleaved x,y floats.
func CoverQuad(bounds [4]float32) [12]float32 {
	x0 := bounds[0] - coverPadding
	y0 := bounds[1] - coverPadding
	x1 := bounds[2] + coverPadding
	y1 := bounds[3] + coverPadding
	return [12]float32{
		x0, y0, x1, y0, x1, y1,
		x0, y0, x1, y1, x0, y1,
	}
}

// FullSurfaceQuad returns two triangles covering the whole target, used by
// clip resolve, clip clear, and stencil cleanup draws.
func FullSurfaceQuad(width, height uint32) [12]float32 {
	return CoverQuad([4]float32{0, 0, float32(width), float32(height)})
}
