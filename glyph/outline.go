package glyph

import (
	"errors"
	"fmt"

	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"

	"github.com/gogpu/scenic/path"
)

// GlyphContours extracts the outline of a glyph scaled to ppem pixels,
// baseline at y=0 with y growing down. Glyphs without an outline
// (spaces, color and bitmap glyphs) yield no contours and no error.
// Every returned contour is explicitly closed.
func (f *Font) GlyphContours(gid uint16, ppem float64) ([]path.Contour, error) {
	if ppem <= 0 {
		return nil, nil
	}
	buf := f.buffers.Get().(*sfnt.Buffer)
	defer f.buffers.Put(buf)

	segments, err := f.sfnt.LoadGlyph(buf, sfnt.GlyphIndex(gid), fixed.Int26_6(ppem*64), nil)
	if err != nil {
		if errors.Is(err, sfnt.ErrColoredGlyph) {
			return nil, nil
		}
		return nil, fmt.Errorf("glyph: load glyph %d: %w", gid, err)
	}
	if len(segments) == 0 {
		return nil, nil
	}

	cmds := make([]path.Command, 0, len(segments))
	for _, seg := range segments {
		switch seg.Op {
		case sfnt.SegmentOpMoveTo:
			cmds = append(cmds, path.MoveTo{
				X: fixedToFloat(seg.Args[0].X), Y: fixedToFloat(seg.Args[0].Y),
			})
		case sfnt.SegmentOpLineTo:
			cmds = append(cmds, path.LineTo{
				X: fixedToFloat(seg.Args[0].X), Y: fixedToFloat(seg.Args[0].Y),
			})
		case sfnt.SegmentOpQuadTo:
			cmds = append(cmds, path.QuadTo{
				CX: fixedToFloat(seg.Args[0].X), CY: fixedToFloat(seg.Args[0].Y),
				X:  fixedToFloat(seg.Args[1].X), Y:  fixedToFloat(seg.Args[1].Y),
			})
		case sfnt.SegmentOpCubeTo:
			cmds = append(cmds, path.CubicTo{
				C1X: fixedToFloat(seg.Args[0].X), C1Y: fixedToFloat(seg.Args[0].Y),
				C2X: fixedToFloat(seg.Args[1].X), C2Y: fixedToFloat(seg.Args[1].Y),
				X:   fixedToFloat(seg.Args[2].X), Y:   fixedToFloat(seg.Args[2].Y),
			})
		}
	}

	// Font contours are implicitly closed.
	contours := path.SplitContours(cmds)
	for i := range contours {
		contours[i] = append(contours[i], path.Close{})
	}
	return contours, nil
}

// GlyphAdvance returns the horizontal advance of a glyph in pixels at
// the given ppem, without hinting.
func (f *Font) GlyphAdvance(gid uint16, ppem float64) (float64, error) {
	buf := f.buffers.Get().(*sfnt.Buffer)
	defer f.buffers.Put(buf)

	adv, err := f.sfnt.GlyphAdvance(buf, sfnt.GlyphIndex(gid), fixed.Int26_6(ppem*64), 0)
	if err != nil {
		return 0, fmt.Errorf("glyph: advance of glyph %d: %w", gid, err)
	}
	return fixedToFloat(adv), nil
}

// fixedToFloat converts a 26.6 fixed-point value to float64.
func fixedToFloat(v fixed.Int26_6) float64 {
	return float64(v) / 64
}
