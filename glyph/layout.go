package glyph

import (
	"fmt"
	"sync"

	"github.com/go-text/typesetting/di"
	"github.com/go-text/typesetting/font"
	"github.com/go-text/typesetting/language"
	"github.com/go-text/typesetting/shaping"
	"golang.org/x/image/math/fixed"
	"golang.org/x/text/unicode/bidi"

	"github.com/gogpu/scenic/path"
)

// PositionedGlyph is one shaped glyph with its pen position in pixels.
// X/Y are document coordinates (y down, baseline at y=0); Cluster is
// the rune index into the original string.
type PositionedGlyph struct {
	GID     uint16
	X, Y    float64
	Advance float64
	Cluster int
}

// HarfbuzzShaper has internal mutable state and is not safe for
// concurrent use; pool instances across Layout calls.
var shaperPool = sync.Pool{
	New: func() any { return &shaping.HarfbuzzShaper{} },
}

// Layout shapes a single line of text at the given size in pixels.
// The paragraph is split into bidirectional runs, each run is shaped
// with its own direction and script, and runs advance left to right
// in visual order.
func Layout(f *Font, text string, size float64) ([]PositionedGlyph, error) {
	if text == "" || size <= 0 {
		return nil, nil
	}
	shapeFont, err := f.shapingFont()
	if err != nil {
		return nil, err
	}

	var p bidi.Paragraph
	if _, err := p.SetString(text); err != nil {
		return nil, fmt.Errorf("glyph: bidi resolution: %w", err)
	}
	ordering, err := p.Order()
	if err != nil {
		return nil, fmt.Errorf("glyph: bidi ordering: %w", err)
	}

	// font.Face is not safe for concurrent use; one per call is cheap.
	face := font.NewFace(shapeFont)
	shaper := shaperPool.Get().(*shaping.HarfbuzzShaper)
	defer shaperPool.Put(shaper)

	var glyphs []PositionedGlyph
	var penX float64
	for i := 0; i < ordering.NumRuns(); i++ {
		run := ordering.Run(i)
		runes := []rune(run.String())
		if len(runes) == 0 {
			continue
		}
		dir := di.DirectionLTR
		if run.Direction() == bidi.RightToLeft {
			dir = di.DirectionRTL
		}
		runStart, _ := run.Pos()

		output := shaper.Shape(shaping.Input{
			Text:      runes,
			RunStart:  0,
			RunEnd:    len(runes),
			Direction: dir,
			Face:      face,
			Size:      fixed.Int26_6(size * 64),
			Script:    detectScript(runes),
			Language:  language.NewLanguage("en"),
		})

		for _, g := range output.Glyphs {
			adv := fixedToFloat(g.XAdvance)
			glyphs = append(glyphs, PositionedGlyph{
				GID:     uint16(g.GlyphID),
				Cluster: runStart + g.TextIndex(),
				X:       penX + fixedToFloat(g.XOffset),
				// Shaping offsets are y-up; document space is y-down.
				Y:       -fixedToFloat(g.YOffset),
				Advance: adv,
			})
			penX += adv
		}
	}
	return glyphs, nil
}

// TextContours shapes text and extracts every glyph outline translated
// to its pen position, ready for a text node. Glyphs without outlines
// contribute nothing.
func TextContours(f *Font, text string, size float64) ([]path.Contour, error) {
	glyphs, err := Layout(f, text, size)
	if err != nil {
		return nil, err
	}
	var out []path.Contour
	for _, g := range glyphs {
		contours, err := f.GlyphContours(g.GID, size)
		if err != nil {
			return nil, err
		}
		for _, c := range contours {
			out = append(out, translateContour(c, g.X, g.Y))
		}
	}
	return out, nil
}

// detectScript returns the script of the first non-space rune. Runs
// from the bidi pass are script-homogeneous enough for shaping; mixed
// scripts within one run shape with the first one found.
func detectScript(runes []rune) language.Script {
	for _, r := range runes {
		if r == ' ' || r == '\t' || r == '\n' || r == '\r' {
			continue
		}
		return language.LookupScript(r)
	}
	return language.Latin
}

func translateContour(c path.Contour, dx, dy float64) path.Contour {
	out := make(path.Contour, len(c))
	for i, cmd := range c {
		switch v := cmd.(type) {
		case path.MoveTo:
			out[i] = path.MoveTo{X: v.X + dx, Y: v.Y + dy}
		case path.LineTo:
			out[i] = path.LineTo{X: v.X + dx, Y: v.Y + dy}
		case path.QuadTo:
			out[i] = path.QuadTo{CX: v.CX + dx, CY: v.CY + dy, X: v.X + dx, Y: v.Y + dy}
		case path.CubicTo:
			out[i] = path.CubicTo{
				C1X: v.C1X + dx, C1Y: v.C1Y + dy,
				C2X: v.C2X + dx, C2Y: v.C2Y + dy,
				X: v.X + dx, Y: v.Y + dy,
			}
		default:
			out[i] = cmd
		}
	}
	return out
}
