package scenic

import "sort"

// Paint describes how a region is colored. It is a sealed union:
// SolidPaint, LinearGradientPaint, RadialGradientPaint and ImagePaint
// are the only implementations. A node carries an ordered list of
// paints, applied bottom-to-top.
type Paint interface {
	// PaintOpacity returns the paint's own opacity in [0, 1].
	// Node opacity multiplies on top during traversal.
	PaintOpacity() float64

	isPaint()
}

// GradientStop is one color stop. Offset is a position along the
// gradient in [0, 1]; out-of-range offsets are clamped when the stop
// list is normalized.
type GradientStop struct {
	Offset float64
	Color  RGBA
}

// ScaleMode selects how an image paint maps its texture onto the
// target region.
type ScaleMode uint8

const (
	// ScaleFit letterboxes: the whole image is visible, aspect kept.
	ScaleFit ScaleMode = iota
	// ScaleFill covers: the region is fully covered, aspect kept,
	// overflow cropped.
	ScaleFill
	// ScaleStretch maps the image corners to the region corners.
	ScaleStretch
	// ScaleTile repeats the image at its natural size.
	ScaleTile
)

func (m ScaleMode) String() string {
	switch m {
	case ScaleFit:
		return "fit"
	case ScaleFill:
		return "fill"
	case ScaleStretch:
		return "stretch"
	case ScaleTile:
		return "tile"
	}
	return "unknown"
}

// SolidPaint fills with a single color.
type SolidPaint struct {
	Color   RGBA
	Opacity float64
}

// LinearGradientPaint interpolates stops along the Start→End axis in
// node-local coordinates. Coordinates beyond the axis clamp to the
// nearest stop.
type LinearGradientPaint struct {
	Start, End Point
	Stops      []GradientStop
	Opacity    float64
}

// RadialGradientPaint interpolates stops by distance from Center,
// reaching the last stop at Radius. Beyond Radius the last stop color
// extends.
type RadialGradientPaint struct {
	Center  Point
	Radius  float64
	Stops   []GradientStop
	Opacity float64
}

// ImagePaint samples a decoded texture. Ref keys the texture cache;
// Data/Mime carry the encoded bytes so PrepareScene can decode and
// upload ahead of rendering. A texture that is not resident at render
// time skips the fill silently.
type ImagePaint struct {
	Ref     string
	Data    []byte
	Mime    string
	Mode    ScaleMode
	Opacity float64
}

func (SolidPaint) isPaint()          {}
func (LinearGradientPaint) isPaint() {}
func (RadialGradientPaint) isPaint() {}
func (ImagePaint) isPaint()          {}

func (p SolidPaint) PaintOpacity() float64          { return p.Opacity }
func (p LinearGradientPaint) PaintOpacity() float64 { return p.Opacity }
func (p RadialGradientPaint) PaintOpacity() float64 { return p.Opacity }
func (p ImagePaint) PaintOpacity() float64          { return p.Opacity }

// Solid builds an opaque-by-default solid paint.
func Solid(c RGBA) SolidPaint {
	return SolidPaint{Color: c, Opacity: 1}
}

// LinearGradient builds a linear gradient paint with normalized stops.
func LinearGradient(start, end Point, stops ...GradientStop) LinearGradientPaint {
	return LinearGradientPaint{Start: start, End: end, Stops: NormalizeStops(stops), Opacity: 1}
}

// RadialGradient builds a radial gradient paint with normalized stops.
func RadialGradient(center Point, radius float64, stops ...GradientStop) RadialGradientPaint {
	return RadialGradientPaint{Center: center, Radius: radius, Stops: NormalizeStops(stops), Opacity: 1}
}

// Image builds an image paint from encoded bytes. ref must uniquely
// identify the image content; it is the texture cache key.
func Image(ref string, data []byte, mime string, mode ScaleMode) ImagePaint {
	return ImagePaint{Ref: ref, Data: data, Mime: mime, Mode: mode, Opacity: 1}
}

// Stop is shorthand for GradientStop{Offset: offset, Color: c}.
func Stop(offset float64, c RGBA) GradientStop {
	return GradientStop{Offset: offset, Color: c}
}

// NormalizeStops clamps stop offsets to [0, 1] and orders them by
// offset (stable, so coincident stops keep author order). The input
// slice is not modified.
func NormalizeStops(stops []GradientStop) []GradientStop {
	if len(stops) == 0 {
		return nil
	}
	out := make([]GradientStop, len(stops))
	copy(out, stops)
	for i := range out {
		out[i].Offset = clamp01(out[i].Offset)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Offset < out[j].Offset })
	return out
}
