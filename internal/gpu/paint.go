package gpu

import (
	"encoding/binary"
	"math"
)

// PaintKind selects the fragment path in the cover shader.
type PaintKind uint32

const (
	PaintSolid PaintKind = iota
	PaintLinearGradient
	PaintRadialGradient
	PaintImage
	PaintShadow
)

// StopSpec is one gradient stop with a normalized offset and straight
// alpha color.
type StopSpec struct {
	Offset float32
	Color  [4]float32
}

// PaintSpec describes one paint application in device-pixel coordinates.
// The scene walk resolves node paints (colors, gradient geometry, texture
// references, accumulated opacity) into this flat form so the executor
// only packs bytes.
type PaintSpec struct {
	Kind    PaintKind
	Color   [4]float32
	Opacity float32

	// Gradient geometry in device pixels. Linear uses Start and End;
	// radial uses Start as the center with Radius.
	Start  [2]float32
	End    [2]float32
	Radius float32
	Stops  []StopSpec

	// Image paints sample Texture through UV, an affine transform from
	// device pixels to normalized texture coordinates. Tile wraps the
	// coordinates instead of clamping.
	Texture *Texture
	UV      [6]float32
	Tile    bool
}

func putF32(dst []byte, offset int, v float32) {
	binary.LittleEndian.PutUint32(dst[offset:], math.Float32bits(v))
}

func putU32(dst []byte, offset int, v uint32) {
	binary.LittleEndian.PutUint32(dst[offset:], v)
}

// packFillUniform lays out the stencil fill shader's uniform block.
func packFillUniform(width, height uint32) []byte {
	buf := make([]byte, stencilFillUniformSize)
	putF32(buf, 0, float32(width))
	putF32(buf, 4, float32(height))
	return buf
}

// packPaintUniform lays out the cover shader's uniform block. The layout
// must match PaintUniform in cover.wgsl field for field.
func packPaintUniform(width, height uint32, spec *PaintSpec) []byte {
	buf := make([]byte, paintUniformSize)
	putF32(buf, 0, float32(width))
	putF32(buf, 4, float32(height))

	stops := spec.Stops
	if len(stops) > maxGradientStops {
		stops = stops[:maxGradientStops]
	}
	var flags uint32
	if spec.Tile {
		flags |= 1
	}
	putU32(buf, 16, uint32(spec.Kind))
	putU32(buf, 20, uint32(len(stops)))
	putU32(buf, 24, flags)

	for i, c := range spec.Color {
		putF32(buf, 32+i*4, c)
	}
	putF32(buf, 48, spec.Start[0])
	putF32(buf, 52, spec.Start[1])
	putF32(buf, 56, spec.End[0])
	putF32(buf, 60, spec.End[1])
	putF32(buf, 64, spec.Radius)
	putF32(buf, 68, spec.Opacity)

	for i, v := range spec.UV {
		putF32(buf, 80+i*4, v)
	}
	texW, texH := float32(1), float32(1)
	if spec.Texture != nil {
		texW = float32(spec.Texture.width)
		texH = float32(spec.Texture.height)
	}
	putF32(buf, 104, texW)
	putF32(buf, 108, texH)

	for i, s := range stops {
		putF32(buf, 112+i*4, s.Offset)
		base := 176 + i*16
		for j, c := range s.Color {
			putF32(buf, base+j*4, c)
		}
	}
	return buf
}
