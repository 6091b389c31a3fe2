package gpu

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// targetSet owns the textures of the main render target: the color
// attachment, the depth-stencil attachment, and (under MSAA) the 1-sample
// resolve texture the readback copies from. With antialiasing disabled
// the color texture itself is created single-sampled with copy usage and
// no resolve texture exists.
type targetSet struct {
	colorTex    hal.Texture
	colorView   hal.TextureView
	stencilTex  hal.Texture
	stencilView hal.TextureView
	resolveTex  hal.Texture
	resolveView hal.TextureView

	width   uint32
	height  uint32
	samples uint32
}

// ensure (re)creates the target textures for the given size. Existing
// textures are reused when the size already matches.
func (t *targetSet) ensure(device hal.Device, width, height, samples uint32) error {
	if t.width == width && t.height == height && t.samples == samples && t.colorTex != nil {
		return nil
	}
	t.destroy(device)

	colorUsage := gputypes.TextureUsageRenderAttachment
	if samples == 1 {
		colorUsage |= gputypes.TextureUsageCopySrc
	}
	colorTex, err := device.CreateTexture(&hal.TextureDescriptor{
		Label:         "scenic_target_color",
		Size:          hal.Extent3D{Width: width, Height: height, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   samples,
		Dimension:     gputypes.TextureDimension2D,
		Format:        gputypes.TextureFormatBGRA8Unorm,
		Usage:         colorUsage,
	})
	if err != nil {
		return fmt.Errorf("create target color texture: %w", err)
	}
	t.colorTex = colorTex
	t.colorView, err = device.CreateTextureView(colorTex, &hal.TextureViewDescriptor{
		Label: "scenic_target_color_view",
	})
	if err != nil {
		return fmt.Errorf("create target color view: %w", err)
	}

	stencilTex, err := device.CreateTexture(&hal.TextureDescriptor{
		Label:         "scenic_target_stencil",
		Size:          hal.Extent3D{Width: width, Height: height, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   samples,
		Dimension:     gputypes.TextureDimension2D,
		Format:        gputypes.TextureFormatDepth24PlusStencil8,
		Usage:         gputypes.TextureUsageRenderAttachment,
	})
	if err != nil {
		return fmt.Errorf("create target stencil texture: %w", err)
	}
	t.stencilTex = stencilTex
	t.stencilView, err = device.CreateTextureView(stencilTex, &hal.TextureViewDescriptor{
		Label: "scenic_target_stencil_view",
	})
	if err != nil {
		return fmt.Errorf("create target stencil view: %w", err)
	}

	if samples > 1 {
		resolveTex, err := device.CreateTexture(&hal.TextureDescriptor{
			Label:         "scenic_target_resolve",
			Size:          hal.Extent3D{Width: width, Height: height, DepthOrArrayLayers: 1},
			MipLevelCount: 1,
			SampleCount:   1,
			Dimension:     gputypes.TextureDimension2D,
			Format:        gputypes.TextureFormatBGRA8Unorm,
			Usage:         gputypes.TextureUsageRenderAttachment | gputypes.TextureUsageCopySrc,
		})
		if err != nil {
			return fmt.Errorf("create target resolve texture: %w", err)
		}
		t.resolveTex = resolveTex
		t.resolveView, err = device.CreateTextureView(resolveTex, &hal.TextureViewDescriptor{
			Label: "scenic_target_resolve_view",
		})
		if err != nil {
			return fmt.Errorf("create target resolve view: %w", err)
		}
	}

	t.width = width
	t.height = height
	t.samples = samples
	return nil
}

// resolveTarget returns the view MSAA passes resolve into, or nil when
// rendering single-sampled.
func (t *targetSet) resolveTarget() hal.TextureView {
	return t.resolveView
}

// readbackTexture returns the 1-sample texture holding the final image.
func (t *targetSet) readbackTexture() hal.Texture {
	if t.resolveTex != nil {
		return t.resolveTex
	}
	return t.colorTex
}

func (t *targetSet) destroy(device hal.Device) {
	if t.resolveView != nil {
		device.DestroyTextureView(t.resolveView)
		t.resolveView = nil
	}
	if t.resolveTex != nil {
		device.DestroyTexture(t.resolveTex)
		t.resolveTex = nil
	}
	if t.stencilView != nil {
		device.DestroyTextureView(t.stencilView)
		t.stencilView = nil
	}
	if t.stencilTex != nil {
		device.DestroyTexture(t.stencilTex)
		t.stencilTex = nil
	}
	if t.colorView != nil {
		device.DestroyTextureView(t.colorView)
		t.colorView = nil
	}
	if t.colorTex != nil {
		device.DestroyTexture(t.colorTex)
		t.colorTex = nil
	}
	t.width, t.height, t.samples = 0, 0, 0
}

// fxSet owns the offscreen textures for blurred shadows: a multisampled
// silhouette target with its own stencil, and two 1-sample ping-pong
// textures the separable blur bounces between. Created lazily on the
// first frame that needs an effect and kept until the target resizes.
type fxSet struct {
	colorTex    hal.Texture // nil when samples == 1
	colorView   hal.TextureView
	stencilTex  hal.Texture
	stencilView hal.TextureView
	pingTex     hal.Texture
	pingView    hal.TextureView
	pongTex     hal.Texture
	pongView    hal.TextureView

	width   uint32
	height  uint32
	samples uint32
}

func (f *fxSet) ensure(device hal.Device, width, height, samples uint32) error {
	if f.width == width && f.height == height && f.samples == samples && f.pingTex != nil {
		return nil
	}
	f.destroy(device)

	if samples > 1 {
		colorTex, err := device.CreateTexture(&hal.TextureDescriptor{
			Label:         "scenic_fx_color",
			Size:          hal.Extent3D{Width: width, Height: height, DepthOrArrayLayers: 1},
			MipLevelCount: 1,
			SampleCount:   samples,
			Dimension:     gputypes.TextureDimension2D,
			Format:        gputypes.TextureFormatBGRA8Unorm,
			Usage:         gputypes.TextureUsageRenderAttachment,
		})
		if err != nil {
			return fmt.Errorf("create fx color texture: %w", err)
		}
		f.colorTex = colorTex
		f.colorView, err = device.CreateTextureView(colorTex, &hal.TextureViewDescriptor{
			Label: "scenic_fx_color_view",
		})
		if err != nil {
			return fmt.Errorf("create fx color view: %w", err)
		}
	}

	stencilTex, err := device.CreateTexture(&hal.TextureDescriptor{
		Label:         "scenic_fx_stencil",
		Size:          hal.Extent3D{Width: width, Height: height, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   samples,
		Dimension:     gputypes.TextureDimension2D,
		Format:        gputypes.TextureFormatDepth24PlusStencil8,
		Usage:         gputypes.TextureUsageRenderAttachment,
	})
	if err != nil {
		return fmt.Errorf("create fx stencil texture: %w", err)
	}
	f.stencilTex = stencilTex
	f.stencilView, err = device.CreateTextureView(stencilTex, &hal.TextureViewDescriptor{
		Label: "scenic_fx_stencil_view",
	})
	if err != nil {
		return fmt.Errorf("create fx stencil view: %w", err)
	}

	f.pingTex, f.pingView, err = createSampledTarget(device, "scenic_fx_ping", width, height)
	if err != nil {
		return err
	}
	f.pongTex, f.pongView, err = createSampledTarget(device, "scenic_fx_pong", width, height)
	if err != nil {
		return err
	}

	f.width = width
	f.height = height
	f.samples = samples
	return nil
}

// createSampledTarget creates a 1-sample texture usable both as a render
// attachment and as a sampled paint texture.
func createSampledTarget(device hal.Device, label string, width, height uint32) (hal.Texture, hal.TextureView, error) {
	tex, err := device.CreateTexture(&hal.TextureDescriptor{
		Label:         label,
		Size:          hal.Extent3D{Width: width, Height: height, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        gputypes.TextureFormatBGRA8Unorm,
		Usage:         gputypes.TextureUsageRenderAttachment | gputypes.TextureUsageTextureBinding,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("create %s texture: %w", label, err)
	}
	view, err := device.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label:         label + "_view",
		Format:        gputypes.TextureFormatBGRA8Unorm,
		Dimension:     gputypes.TextureViewDimension2D,
		Aspect:        gputypes.TextureAspectAll,
		MipLevelCount: 1,
	})
	if err != nil {
		device.DestroyTexture(tex)
		return nil, nil, fmt.Errorf("create %s view: %w", label, err)
	}
	return tex, view, nil
}

// silhouetteColorView returns the color attachment for the silhouette
// pass and the resolve view it lands in. Single-sampled rendering draws
// straight into the ping texture.
func (f *fxSet) silhouetteColorView() (view, resolve hal.TextureView) {
	if f.samples > 1 {
		return f.colorView, f.pingView
	}
	return f.pingView, nil
}

func (f *fxSet) destroy(device hal.Device) {
	if f.pongView != nil {
		device.DestroyTextureView(f.pongView)
		f.pongView = nil
	}
	if f.pongTex != nil {
		device.DestroyTexture(f.pongTex)
		f.pongTex = nil
	}
	if f.pingView != nil {
		device.DestroyTextureView(f.pingView)
		f.pingView = nil
	}
	if f.pingTex != nil {
		device.DestroyTexture(f.pingTex)
		f.pingTex = nil
	}
	if f.stencilView != nil {
		device.DestroyTextureView(f.stencilView)
		f.stencilView = nil
	}
	if f.stencilTex != nil {
		device.DestroyTexture(f.stencilTex)
		f.stencilTex = nil
	}
	if f.colorView != nil {
		device.DestroyTextureView(f.colorView)
		f.colorView = nil
	}
	if f.colorTex != nil {
		device.DestroyTexture(f.colorTex)
		f.colorTex = nil
	}
	f.width, f.height, f.samples = 0, 0, 0
}
