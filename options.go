package scenic

// Option configures a Renderer during creation.
//
// Example:
//
//	// Defaults: pixel ratio 1, antialiasing on, transparent background
//	r, err := scenic.New()
//
//	// A HiDPI host with a white page background:
//	r, err := scenic.New(
//	    scenic.WithPixelRatio(2),
//	    scenic.WithBackground(scenic.White),
//	)
type Option func(*rendererOptions)

type rendererOptions struct {
	pixelRatio       float64
	antialias        bool
	background       RGBA
	textureCache     TextureCache
	flattenTolerance float64
}

func defaultRendererOptions() rendererOptions {
	return rendererOptions{
		pixelRatio: 1,
		antialias:  true,
		background: Transparent,
	}
}

// WithPixelRatio sets the device pixel ratio. The backing surface is
// scene.Width×ratio by scene.Height×ratio device pixels. Values ≤ 0
// fall back to 1.
func WithPixelRatio(ratio float64) Option {
	return func(o *rendererOptions) {
		if ratio > 0 {
			o.pixelRatio = ratio
		}
	}
}

// WithAntialias toggles multisampling. On by default; turning it off
// renders 1x and saves memory on the color and stencil targets.
func WithAntialias(enabled bool) Option {
	return func(o *rendererOptions) {
		o.antialias = enabled
	}
}

// WithBackground sets the color the canvas clears to before each
// frame. Default is fully transparent.
func WithBackground(c RGBA) Option {
	return func(o *rendererOptions) {
		o.background = c
	}
}

// WithTextureCache injects a texture cache. Without it the renderer
// creates its own cache on its device. Injecting is mainly useful for
// tests and for hosts with custom residency policies.
func WithTextureCache(tc TextureCache) Option {
	return func(o *rendererOptions) {
		o.textureCache = tc
	}
}

// WithFlattenTolerance sets the maximum distance, in device pixels,
// between a curve and its polyline approximation. Smaller is smoother
// and emits more triangles. Values ≤ 0 keep the default (0.25).
func WithFlattenTolerance(tol float64) Option {
	return func(o *rendererOptions) {
		if tol > 0 {
			o.flattenTolerance = tol
		}
	}
}
