package gpu

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"sync"

	// Decoders for the formats image references may carry.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/scenic/internal/cache"
)

// Texture is a decoded image resident on the GPU, sampled by image
// paints.
type Texture struct {
	tex    hal.Texture
	view   hal.TextureView
	width  int
	height int
	cost   int64
}

// Size returns the texture dimensions in pixels.
func (t *Texture) Size() (width, height int) {
	return t.width, t.height
}

// Cache decodes image bytes into GPU textures and keeps them resident
// under a byte budget with least-recently-used eviction. Decoding and
// uploads may run concurrently from the prepare worker pool; rendering
// only calls GetIfCached.
type Cache struct {
	device hal.Device
	queue  hal.Queue

	mu      sync.Mutex
	entries *cache.Cache[string, *Texture]
}

// NewTextureCache creates a cache bounded by budget bytes of decoded
// texture data. A budget of 0 means unbounded.
func NewTextureCache(device hal.Device, queue hal.Queue, budget int64) *Cache {
	c := &Cache{device: device, queue: queue}
	c.entries = cache.New(budget, func(_ string, t *Texture) {
		c.destroyTexture(t)
	})
	return c
}

// GetOrCreate decodes data and uploads the result under ref. Returns
// immediately when ref is already resident. Decode failures leave the
// cache unchanged so a later render skips the paint instead of failing.
func (c *Cache) GetOrCreate(ctx context.Context, ref string, data []byte, mime string) error {
	if ref == "" {
		return errors.New("empty texture ref")
	}
	if c.entries.Contains(ref) {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("decode image %q (%s): %w", ref, mime, err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	tex, err := c.upload(ref, img)
	if err != nil {
		return err
	}

	// Another prepare worker may have uploaded the same ref while this
	// one decoded; keep the resident copy.
	c.mu.Lock()
	if c.entries.Contains(ref) {
		c.mu.Unlock()
		c.destroyTexture(tex)
		return nil
	}
	c.entries.Set(ref, tex, tex.cost)
	c.mu.Unlock()

	slogger().Debug("texture uploaded",
		"ref", ref, "format", format, "width", tex.width, "height", tex.height)
	return nil
}

// GetIfCached returns the resident texture for ref, marking it recently
// used. It never blocks on decoding.
func (c *Cache) GetIfCached(ref string) (*Texture, bool) {
	return c.entries.Get(ref)
}

// Len returns the number of resident textures.
func (c *Cache) Len() int {
	return c.entries.Len()
}

// Cost returns the total resident texture bytes.
func (c *Cache) Cost() int64 {
	return c.entries.Cost()
}

// Destroy releases every cached texture.
func (c *Cache) Destroy() {
	c.entries.Clear()
}

// upload converts img to straight-alpha RGBA8 and creates the sampled
// texture. The cover shader premultiplies sampled colors at output.
func (c *Cache) upload(ref string, img image.Image) (*Texture, error) {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("image %q has empty bounds", ref)
	}
	nrgba, ok := img.(*image.NRGBA)
	if !ok || nrgba.Stride != w*4 {
		converted := image.NewNRGBA(image.Rect(0, 0, w, h))
		draw.Draw(converted, converted.Bounds(), img, bounds.Min, draw.Src)
		nrgba = converted
	}

	tex, err := c.device.CreateTexture(&hal.TextureDescriptor{
		Label:         "scenic_image_" + ref,
		Size:          hal.Extent3D{Width: uint32(w), Height: uint32(h), DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        gputypes.TextureFormatRGBA8Unorm,
		Usage:         gputypes.TextureUsageTextureBinding | gputypes.TextureUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("create texture %q: %w", ref, err)
	}
	view, err := c.device.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label:         "scenic_image_" + ref + "_view",
		Format:        gputypes.TextureFormatRGBA8Unorm,
		Dimension:     gputypes.TextureViewDimension2D,
		Aspect:        gputypes.TextureAspectAll,
		MipLevelCount: 1,
	})
	if err != nil {
		c.device.DestroyTexture(tex)
		return nil, fmt.Errorf("create texture view %q: %w", ref, err)
	}
	c.queue.WriteTexture(
		&hal.ImageCopyTexture{Texture: tex, MipLevel: 0},
		nrgba.Pix,
		&hal.ImageDataLayout{Offset: 0, BytesPerRow: uint32(w * 4), RowsPerImage: uint32(h)},
		&hal.Extent3D{Width: uint32(w), Height: uint32(h), DepthOrArrayLayers: 1},
	)

	return &Texture{
		tex:    tex,
		view:   view,
		width:  w,
		height: h,
		cost:   int64(w) * int64(h) * 4,
	}, nil
}

func (c *Cache) destroyTexture(t *Texture) {
	if t == nil {
		return
	}
	if t.view != nil {
		c.device.DestroyTextureView(t.view)
		t.view = nil
	}
	if t.tex != nil {
		c.device.DestroyTexture(t.tex)
		t.tex = nil
	}
}
