// Command scenicdemo renders a sample scene to a PNG: nested clipped
// frames, gradients, a self-intersecting star under both fill rules,
// shadow effects, an image fill, and optionally text outlines from a
// TTF font.
package main

import (
	"bytes"
	"context"
	"flag"
	"image"
	"image/color"
	"image/png"
	"log"
	"math"
	"os"

	"github.com/gogpu/scenic"
	"github.com/gogpu/scenic/glyph"
	"github.com/gogpu/scenic/path"
)

func main() {
	var (
		width      = flag.Float64("width", 800, "scene width in logical units")
		height     = flag.Float64("height", 600, "scene height in logical units")
		output     = flag.String("output", "scenic.png", "output file")
		pixelRatio = flag.Float64("pixel-ratio", 1, "device pixels per logical unit")
		fontPath   = flag.String("font", "", "TTF font for the text sample (skipped when empty)")
	)
	flag.Parse()

	r, err := scenic.New(
		scenic.WithPixelRatio(*pixelRatio),
		scenic.WithBackground(scenic.RGB(0.95, 0.96, 0.98)),
	)
	if err != nil {
		log.Fatalf("Failed to create renderer: %v", err)
	}
	defer r.Destroy()

	scene := buildScene(*width, *height, *fontPath)

	if err := r.PrepareScene(context.Background(), scene); err != nil {
		log.Fatalf("Failed to prepare scene: %v", err)
	}
	if err := r.Render(scene); err != nil {
		log.Fatalf("Failed to render: %v", err)
	}
	if err := r.SavePNG(*output); err != nil {
		log.Fatalf("Failed to save: %v", err)
	}

	log.Printf("Demo saved to %s (%gx%g at %gx)\n", *output, *width, *height, *pixelRatio)
}

func buildScene(w, h float64, fontPath string) *scenic.Scene {
	roots := []scenic.Node{
		clippedFrames(),
		gradientPanel(),
		star("star-nonzero", 110, 380, path.FillNonZero, scenic.Hex("#E2574C")),
		star("star-evenodd", 270, 380, path.FillEvenOdd, scenic.Hex("#4C7BE2")),
		shadowPanel(),
		imageSwatch(),
	}
	if fontPath != "" {
		roots = append(roots, textBanner(fontPath))
	}
	return scenic.NewScene(w, h, roots...)
}

// clippedFrames nests two clipping frames with children that overflow
// their bounds.
func clippedFrames() scenic.Node {
	inner := scenic.NewFrame("inner", 150, 120)
	inner.Transform = scenic.Translate(120, 70)
	inner.CornerRadius = 12
	inner.ClipsContent = true
	inner.Fills = []scenic.Paint{scenic.Solid(scenic.RGB(1, 1, 1).WithAlpha(0.6))}

	dot := scenic.NewEllipse("dot", 120, 120)
	dot.Transform = scenic.Translate(80, 50) // pokes past the inner frame
	dot.Fills = []scenic.Paint{scenic.Solid(scenic.Hex("#F2A33C"))}
	inner.Children = append(inner.Children, dot)

	outer := scenic.NewFrame("outer", 280, 200)
	outer.Transform = scenic.Translate(40, 40)
	outer.CornerRadius = 24
	outer.ClipsContent = true
	outer.Fills = []scenic.Paint{scenic.Solid(scenic.Hex("#DCE6F5"))}
	outer.Effects = []scenic.Effect{
		scenic.DropShadow{OffsetY: 6, Radius: 8, Color: scenic.RGB(0, 0, 0).WithAlpha(0.25)},
	}

	for i := 0; i < 3; i++ {
		bar := scenic.NewRect("bar", 220, 46)
		bar.Transform = scenic.Translate(-20+float64(i)*60, 20+float64(i)*55).
			Mul(scenic.Rotate(-0.12))
		bar.Fills = []scenic.Paint{
			scenic.Solid(scenic.Hex("#5B8DEF").MulAlpha(0.5 + 0.2*float64(i))),
		}
		outer.Children = append(outer.Children, bar)
	}
	outer.Children = append(outer.Children, inner)
	return outer
}

func gradientPanel() scenic.Node {
	linear := scenic.NewRect("linear", 180, 90)
	linear.CornerRadius = 10
	linear.Fills = []scenic.Paint{
		scenic.LinearGradient(scenic.Pt(0, 0), scenic.Pt(180, 90),
			scenic.Stop(0, scenic.Hex("#FF7E5F")),
			scenic.Stop(1, scenic.Hex("#FEB47B")),
		),
	}

	radial := scenic.NewRect("radial", 180, 90)
	radial.Transform = scenic.Translate(200, 0)
	radial.CornerRadius = 10
	radial.Fills = []scenic.Paint{
		scenic.RadialGradient(scenic.Pt(90, 45), 100,
			scenic.Stop(0, scenic.Hex("#FFFFFF")),
			scenic.Stop(0.6, scenic.Hex("#6BC2A8")),
			scenic.Stop(1, scenic.Hex("#2E6E5E")),
		),
	}

	stroked := scenic.NewRect("stroked", 380, 70)
	stroked.Transform = scenic.Translate(0, 110)
	stroked.CornerRadius = 35
	stroked.Stroke = &scenic.Stroke{
		Width:   10,
		Opacity: 1,
		Join:    scenic.LineJoinRound,
		Paint: scenic.LinearGradient(scenic.Pt(0, 0), scenic.Pt(380, 0),
			scenic.Stop(0, scenic.Hex("#8A4CE2")),
			scenic.Stop(1, scenic.Hex("#E24C9B")),
		),
	}

	g := scenic.NewGroup("gradients", linear, radial, stroked)
	g.Transform = scenic.Translate(380, 50)
	return g
}

// star builds a five-point star from a single self-intersecting
// contour. Nonzero fills the core, even-odd leaves it hollow.
func star(name string, cx, cy float64, rule path.FillRule, c scenic.RGBA) scenic.Node {
	n := scenic.NewPathContours(name, []path.Contour{starContour(70)}, rule)
	n.Transform = scenic.Translate(cx, cy)
	n.Fills = []scenic.Paint{scenic.Solid(c)}
	n.Stroke = scenic.NewStroke(3, scenic.RGB(0.15, 0.15, 0.2))
	return n
}

// starContour connects every second vertex of a pentagon, producing
// the classic self-intersecting star.
func starContour(r float64) path.Contour {
	var c path.Contour
	for i := 0; i < 5; i++ {
		a := -math.Pi/2 + float64(i)*4*math.Pi/5
		x, y := r*math.Cos(a), r*math.Sin(a)
		if i == 0 {
			c = append(c, path.MoveTo{X: x, Y: y})
		} else {
			c = append(c, path.LineTo{X: x, Y: y})
		}
	}
	return append(c, path.Close{})
}

func shadowPanel() scenic.Node {
	soft := scenic.NewRect("soft", 120, 90)
	soft.CornerRadius = 14
	soft.Fills = []scenic.Paint{scenic.Solid(scenic.RGB(1, 1, 1))}
	soft.Effects = []scenic.Effect{
		scenic.DropShadow{OffsetX: 4, OffsetY: 10, Radius: 12, Color: scenic.RGB(0.1, 0.2, 0.5).WithAlpha(0.4)},
	}

	inset := scenic.NewRect("inset", 120, 90)
	inset.Transform = scenic.Translate(150, 0)
	inset.CornerRadius = 14
	inset.Fills = []scenic.Paint{scenic.Solid(scenic.Hex("#F5E6C8"))}
	inset.Effects = []scenic.Effect{
		scenic.InnerShadow{OffsetX: 3, OffsetY: 6, Radius: 8, Color: scenic.RGB(0.3, 0.2, 0).WithAlpha(0.5)},
	}

	hard := scenic.NewEllipse("hard", 90, 90)
	hard.Transform = scenic.Translate(300, 0)
	hard.Fills = []scenic.Paint{scenic.Solid(scenic.Hex("#4CB8E2"))}
	hard.Effects = []scenic.Effect{
		scenic.DropShadow{OffsetX: 8, OffsetY: 8, Color: scenic.RGB(0, 0, 0).WithAlpha(0.3)},
	}

	g := scenic.NewGroup("shadows", soft, inset, hard)
	g.Transform = scenic.Translate(380, 310)
	return g
}

func imageSwatch() scenic.Node {
	img := scenic.NewImage("checker", 120, 120, "demo-checker", checkerPNG(8, 8), "image/png")
	img.Transform = scenic.Translate(380, 440)
	img.Mode = scenic.ScaleTile
	return img
}

// checkerPNG encodes a cells×cells checkerboard, cell pixels per
// square.
func checkerPNG(cells, cell int) []byte {
	side := cells * cell
	img := image.NewNRGBA(image.Rect(0, 0, side, side))
	for y := 0; y < side; y++ {
		for x := 0; x < side; x++ {
			if (x/cell+y/cell)%2 == 0 {
				img.Set(x, y, color.NRGBA{R: 0x33, G: 0x3A, B: 0x47, A: 0xFF})
			} else {
				img.Set(x, y, color.NRGBA{R: 0xE8, G: 0xEC, B: 0xF2, A: 0xFF})
			}
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		log.Fatalf("Failed to encode checkerboard: %v", err)
	}
	return buf.Bytes()
}

func textBanner(fontPath string) scenic.Node {
	data, err := os.ReadFile(fontPath)
	if err != nil {
		log.Fatalf("Failed to read font: %v", err)
	}
	f, err := glyph.ParseFont(data)
	if err != nil {
		log.Fatalf("Failed to parse font: %v", err)
	}
	contours, err := glyph.TextContours(f, "Scenic", 72)
	if err != nil {
		log.Fatalf("Failed to shape text: %v", err)
	}

	txt := scenic.NewText("banner", contours)
	txt.Transform = scenic.Translate(60, 560)
	txt.Fills = []scenic.Paint{
		scenic.LinearGradient(scenic.Pt(0, -60), scenic.Pt(260, 0),
			scenic.Stop(0, scenic.Hex("#2E3A8C")),
			scenic.Stop(1, scenic.Hex("#4CB8E2")),
		),
	}
	txt.Stroke = scenic.NewStroke(1.5, scenic.RGB(0.1, 0.12, 0.3))
	return txt
}
