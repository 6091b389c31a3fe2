// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package scenic

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"os"
	"sync"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/scenic/internal/gpu"
	"github.com/gogpu/scenic/internal/parallel"
)

// ErrNoGPU reports that no usable GPU adapter is present. It is the
// only fatal construction error: nothing can be drawn without a
// device.
var ErrNoGPU = gpu.ErrNoGPU

// ErrRendererDestroyed is returned by operations on a destroyed
// Renderer.
var ErrRendererDestroyed = errors.New("scenic: renderer destroyed")

// RenderTarget is a caller-owned RGBA8 pixel buffer RenderTo writes
// into. Stride is in bytes; zero means tightly packed rows of
// Width*4.
type RenderTarget struct {
	Data   []byte
	Width  int
	Height int
	Stride int
}

// Renderer rasterizes scenes onto a GPU surface and reads the pixels
// back. Create one with New, NewWithDevice or NewWithProvider and
// release it with Destroy.
//
// The typical frame loop is a PrepareScene pre-pass that makes every
// image in the scene resident, then a synchronous Render:
//
//	r, err := scenic.New(scenic.WithBackground(scenic.White))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer r.Destroy()
//
//	if err := r.PrepareScene(ctx, scene); err != nil {
//	    log.Fatal(err)
//	}
//	if err := r.Render(scene); err != nil {
//	    log.Fatal(err)
//	}
//	img, _ := r.Image()
//
// Methods are safe for concurrent use; renders are serialized
// internally. Destroy must not be called while PrepareScene is in
// flight.
type Renderer struct {
	mu        sync.Mutex
	engine    *gpu.Engine
	opts      rendererOptions
	ownsCache bool
	pool      *parallel.WorkerPool

	target   gpu.RenderTarget
	width    int
	height   int
	rendered bool

	destroyed bool
}

// New creates a renderer on its own GPU device, opening the first
// usable adapter. Returns ErrNoGPU when the host has none.
func New(opts ...Option) (*Renderer, error) {
	o := applyOptions(opts)
	engine, err := gpu.NewEngine(o.antialias)
	if err != nil {
		return nil, err
	}
	return newRenderer(engine, o), nil
}

// NewWithDevice creates a renderer on an externally owned device and
// queue. Destroy releases the renderer's resources but leaves the
// device alone.
func NewWithDevice(device hal.Device, queue hal.Queue, opts ...Option) (*Renderer, error) {
	o := applyOptions(opts)
	engine, err := gpu.NewEngineWithDevice(device, queue, o.antialias)
	if err != nil {
		return nil, err
	}
	return newRenderer(engine, o), nil
}

// NewWithProvider creates a renderer on the device of a host
// application, typically a windowing integration that implements
// gpucontext.DeviceProvider and exposes its HAL handles.
func NewWithProvider(provider gpucontext.DeviceProvider, opts ...Option) (*Renderer, error) {
	if provider == nil {
		return nil, errors.New("scenic: nil device provider")
	}
	o := applyOptions(opts)
	engine, err := gpu.NewEngineFromProvider(provider, o.antialias)
	if err != nil {
		return nil, err
	}
	return newRenderer(engine, o), nil
}

func applyOptions(opts []Option) rendererOptions {
	o := defaultRendererOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func newRenderer(engine *gpu.Engine, o rendererOptions) *Renderer {
	r := &Renderer{
		engine: engine,
		opts:   o,
		pool:   parallel.NewWorkerPool(0),
	}
	if r.opts.textureCache == nil {
		r.opts.textureCache = newDeviceTextureCache(engine.Device(), engine.Queue(), defaultTextureBudget)
		r.ownsCache = true
	}
	return r
}

// PrepareScene makes every image referenced by the scene resident in
// the texture cache, decoding and uploading on a worker pool. It
// returns once every reference is resident or has failed; individual
// failures are logged and later skipped by Render, not surfaced here.
// Cancelling ctx abandons references not yet dispatched and returns
// the context error.
func (r *Renderer) PrepareScene(ctx context.Context, scene *Scene) error {
	r.mu.Lock()
	if r.destroyed {
		r.mu.Unlock()
		return ErrRendererDestroyed
	}
	cache := r.opts.textureCache
	pool := r.pool
	r.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	if scene == nil || cache == nil {
		return nil
	}
	refs := collectImageRefs(scene)
	if len(refs) == 0 {
		return nil
	}
	work := make([]func(), 0, len(refs))
	for _, ref := range refs {
		ref := ref
		work = append(work, func() {
			if err := cache.GetOrCreate(ctx, ref.ref, ref.data, ref.mime); err != nil {
				Logger().Warn("image prepare failed", "ref", ref.ref, "error", err)
			}
		})
	}
	return pool.ExecuteAll(ctx, work)
}

type imageRef struct {
	ref  string
	data []byte
	mime string
}

// collectImageRefs gathers the distinct image references a render of
// the scene would sample: image paints on fills and strokes, plus
// image nodes. Invisible subtrees are skipped the way rendering skips
// them.
func collectImageRefs(scene *Scene) []imageRef {
	var refs []imageRef
	seen := make(map[string]bool)
	add := func(ref string, data []byte, mime string) {
		if ref == "" || seen[ref] {
			return
		}
		seen[ref] = true
		refs = append(refs, imageRef{ref: ref, data: data, mime: mime})
	}
	scene.Walk(func(n Node) bool {
		base := n.Base()
		if !base.Visible {
			return false
		}
		for _, p := range base.Fills {
			if ip, ok := p.(ImagePaint); ok {
				add(ip.Ref, ip.Data, ip.Mime)
			}
		}
		if base.Stroke != nil {
			if ip, ok := base.Stroke.Paint.(ImagePaint); ok {
				add(ip.Ref, ip.Data, ip.Mime)
			}
		}
		if img, ok := n.(*ImageNode); ok {
			add(img.Ref, img.Data, img.Mime)
		}
		return true
	})
	return refs
}

// Render rasterizes the scene into the renderer's backing buffer,
// sized scene.Width × scene.Height × the pixel ratio. The buffer is
// cleared to the background color first. Textures not yet resident
// are skipped; run PrepareScene beforehand to avoid that.
func (r *Renderer) Render(scene *Scene) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.destroyed {
		return ErrRendererDestroyed
	}
	if scene == nil {
		return errors.New("scenic: nil scene")
	}
	frame := compileFrame(scene, &r.opts)
	r.ensureBuffer(int(frame.Width), int(frame.Height))
	if err := r.engine.RenderFrame(frame, &r.target); err != nil {
		return fmt.Errorf("render: %w", err)
	}
	r.rendered = true
	return nil
}

// RenderTo rasterizes the scene directly into a caller-owned buffer.
// The target dimensions must match scene.Width × scene.Height × the
// pixel ratio.
func (r *Renderer) RenderTo(scene *Scene, dst *RenderTarget) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.destroyed {
		return ErrRendererDestroyed
	}
	if scene == nil {
		return errors.New("scenic: nil scene")
	}
	if dst == nil {
		return errors.New("scenic: nil render target")
	}
	frame := compileFrame(scene, &r.opts)
	target := gpu.RenderTarget(*dst)
	if err := r.engine.RenderFrame(frame, &target); err != nil {
		return fmt.Errorf("render: %w", err)
	}
	return nil
}

func (r *Renderer) ensureBuffer(w, h int) {
	if r.width == w && r.height == h && r.target.Data != nil {
		return
	}
	r.width = w
	r.height = h
	r.rendered = false
	r.target = gpu.RenderTarget{
		Data:   make([]byte, w*h*4),
		Width:  w,
		Height: h,
	}
}

// Image returns the last rendered frame. The image shares the
// renderer's backing buffer: it is valid until the next Render call
// and must be copied to outlive it.
func (r *Renderer) Image() (*image.RGBA, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.destroyed {
		return nil, ErrRendererDestroyed
	}
	if !r.rendered {
		return nil, errors.New("scenic: no frame rendered")
	}
	return &image.RGBA{
		Pix:    r.target.Data,
		Stride: r.width * 4,
		Rect:   image.Rect(0, 0, r.width, r.height),
	}, nil
}

// SavePNG writes the last rendered frame to a PNG file.
func (r *Renderer) SavePNG(path string) error {
	img, err := r.Image()
	if err != nil {
		return err
	}
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(file, img); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

// PixelRatio returns the configured device pixel ratio.
func (r *Renderer) PixelRatio() float64 { return r.opts.pixelRatio }

// Destroy releases the renderer's GPU resources: pipelines, backing
// textures, and the texture cache when the renderer created it.
// Safe to call more than once; all later operations return
// ErrRendererDestroyed.
func (r *Renderer) Destroy() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.destroyed {
		return
	}
	r.destroyed = true
	r.pool.Close()
	if r.ownsCache {
		if dc, ok := r.opts.textureCache.(*deviceTextureCache); ok {
			dc.destroy()
		}
	}
	r.engine.Destroy()
	r.target = gpu.RenderTarget{}
	r.rendered = false
}
