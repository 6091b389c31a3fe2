// Package glyph turns font data into renderable path contours.
//
// Fonts parse once and serve two consumers: outline extraction through
// x/image sfnt (quadratic and cubic segments scaled to pixels) and text
// shaping through go-text/typesetting (kerning, ligatures, complex
// scripts). Text nodes carry the resulting contours; the renderer never
// touches font data itself.
package glyph

import (
	"bytes"
	"fmt"
	"sync"

	"github.com/go-text/typesetting/font"
	"golang.org/x/image/font/sfnt"
)

// Font is a parsed font ready for outline extraction and shaping.
// All methods are safe for concurrent use.
type Font struct {
	sfnt *sfnt.Font
	data []byte

	// sfnt.Buffer is not safe for concurrent use; pool per call.
	buffers sync.Pool

	// go-text parses lazily: outline-only callers never pay for it.
	shapeOnce sync.Once
	shapeFont *font.Font
	shapeErr  error
}

// ParseFont parses TTF/OTF font data. The data slice is retained and
// must not be modified afterwards.
func ParseFont(data []byte) (*Font, error) {
	f, err := sfnt.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("glyph: parse font: %w", err)
	}
	return &Font{
		sfnt: f,
		data: data,
		buffers: sync.Pool{
			New: func() any { return new(sfnt.Buffer) },
		},
	}, nil
}

// NumGlyphs returns the number of glyphs in the font.
func (f *Font) NumGlyphs() int {
	return f.sfnt.NumGlyphs()
}

// GlyphIndex returns the glyph ID for a rune, or 0 (notdef) when the
// font has no mapping for it.
func (f *Font) GlyphIndex(r rune) uint16 {
	buf := f.buffers.Get().(*sfnt.Buffer)
	defer f.buffers.Put(buf)

	gid, err := f.sfnt.GlyphIndex(buf, r)
	if err != nil {
		return 0
	}
	return uint16(gid)
}

// shapingFont parses the go-text representation on first use. font.Font
// is read-only and safe to share; the per-call font.Face wrappers are
// created by Layout.
func (f *Font) shapingFont() (*font.Font, error) {
	f.shapeOnce.Do(func() {
		face, err := font.ParseTTF(bytes.NewReader(f.data))
		if err != nil {
			f.shapeErr = fmt.Errorf("glyph: parse font for shaping: %w", err)
			return
		}
		f.shapeFont = face.Font
	})
	return f.shapeFont, f.shapeErr
}
