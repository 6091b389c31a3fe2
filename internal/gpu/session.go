package gpu

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/scenic/path"
)

// gpuTimeout bounds the fence wait after frame submission.
const gpuTimeout = 5 * time.Second

// RenderFrame executes the frame's ops in order and writes the RGBA8
// result into dst. The destination dimensions must match the frame.
func (e *Engine) RenderFrame(frame *Frame, dst *RenderTarget) error {
	if e.destroyed {
		return errEngineDestroyed
	}
	if frame == nil {
		return errors.New("nil frame")
	}
	w, h := frame.Width, frame.Height
	if w == 0 || h == 0 {
		return fmt.Errorf("invalid frame size %dx%d", w, h)
	}
	if dst == nil || dst.Width != int(w) || dst.Height != int(h) {
		return fmt.Errorf("target size does not match frame %dx%d", w, h)
	}
	stride := dst.Stride
	if stride == 0 {
		stride = dst.Width * 4
	}
	if stride < dst.Width*4 {
		return fmt.Errorf("target stride %d shorter than row size %d", stride, dst.Width*4)
	}
	if len(dst.Data) < stride*dst.Height {
		return fmt.Errorf("target buffer %d bytes, need %d", len(dst.Data), stride*dst.Height)
	}

	if err := e.target.ensure(e.device, w, h, e.samples); err != nil {
		return err
	}
	for _, op := range frame.Ops {
		if _, ok := op.(*ShadowOp); ok {
			if err := e.fx.ensure(e.device, w, h, e.samples); err != nil {
				return err
			}
			break
		}
	}

	f := &frameEncoder{e: e, frame: frame}
	defer f.res.destroy(e.device)

	encoder, err := e.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{
		Label: "scenic_frame_encoder",
	})
	if err != nil {
		return fmt.Errorf("create command encoder: %w", err)
	}
	f.encoder = encoder
	if err = encoder.BeginEncoding("scenic_frame"); err != nil {
		return fmt.Errorf("begin encoding: %w", err)
	}

	f.beginMainPass()
	for _, op := range frame.Ops {
		switch o := op.(type) {
		case *FillOp:
			err = f.execFill(o)
		case *ClipPushOp:
			err = f.execClipPush(o)
		case *ClipPopOp:
			err = f.execClipPop()
		case *ShadowOp:
			err = f.execShadow(o)
		}
		if err != nil {
			f.endMainPass()
			encoder.DiscardEncoding()
			return err
		}
	}
	f.endMainPass()

	return e.submitAndRead(encoder, dst, stride)
}

// submitAndRead copies the finished image to a staging buffer, submits
// the frame, waits on the fence, and converts the readback into dst.
func (e *Engine) submitAndRead(encoder hal.CommandEncoder, dst *RenderTarget, stride int) error {
	w, h := e.target.width, e.target.height
	readTex := e.target.readbackTexture()

	// The resolve target sits in render-attachment layout after the last
	// pass; the copy below needs it in copy-source layout. Explicit on
	// Vulkan and DX12, a no-op elsewhere.
	encoder.TransitionTextures([]hal.TextureBarrier{{
		Texture: readTex,
		Usage: hal.TextureUsageTransition{
			OldUsage: gputypes.TextureUsageRenderAttachment,
			NewUsage: gputypes.TextureUsageCopySrc,
		},
	}})

	// Copy rows aligned to the 256-byte pitch WebGPU requires.
	bytesPerRow := w * 4
	const copyPitchAlignment = 256
	alignedBytesPerRow := (bytesPerRow + copyPitchAlignment - 1) &^ (copyPitchAlignment - 1)
	stagingSize := uint64(alignedBytesPerRow) * uint64(h)

	stagingBuf, err := e.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "scenic_staging",
		Size:  stagingSize,
		Usage: gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		encoder.DiscardEncoding()
		return fmt.Errorf("create staging buffer: %w", err)
	}
	defer e.device.DestroyBuffer(stagingBuf)

	encoder.CopyTextureToBuffer(readTex, stagingBuf, []hal.BufferTextureCopy{{
		BufferLayout: hal.ImageDataLayout{Offset: 0, BytesPerRow: alignedBytesPerRow, RowsPerImage: h},
		TextureBase:  hal.ImageCopyTexture{Texture: readTex, MipLevel: 0},
		Size:         hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
	}})

	encoder.TransitionTextures([]hal.TextureBarrier{{
		Texture: readTex,
		Usage: hal.TextureUsageTransition{
			OldUsage: gputypes.TextureUsageCopySrc,
			NewUsage: gputypes.TextureUsageRenderAttachment,
		},
	}})

	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return fmt.Errorf("end encoding: %w", err)
	}
	defer e.device.FreeCommandBuffer(cmdBuf)

	fence, err := e.device.CreateFence()
	if err != nil {
		return fmt.Errorf("create fence: %w", err)
	}
	defer e.device.DestroyFence(fence)

	if err := e.queue.Submit([]hal.CommandBuffer{cmdBuf}, fence, 1); err != nil {
		return fmt.Errorf("submit: %w", err)
	}
	fenceOK, err := e.device.Wait(fence, 1, gpuTimeout)
	if err != nil || !fenceOK {
		return fmt.Errorf("wait for GPU: ok=%v err=%w", fenceOK, err)
	}

	readback := make([]byte, stagingSize)
	if err := e.queue.ReadBuffer(stagingBuf, 0, readback); err != nil {
		return fmt.Errorf("readback: %w", err)
	}

	// Swizzle BGRA rows into the caller's RGBA buffer, dropping the copy
	// pitch padding and honoring the destination stride.
	for row := 0; row < int(h); row++ {
		src := readback[row*int(alignedBytesPerRow):]
		convertBGRAToRGBA(src, dst.Data[row*stride:], int(w))
	}
	return nil
}

// frameResources tracks per-frame GPU objects. They stay alive until the
// fence signals, then are destroyed in reverse creation order.
type frameResources struct {
	buffers    []hal.Buffer
	bindGroups []hal.BindGroup
}

func (r *frameResources) destroy(device hal.Device) {
	for i := len(r.bindGroups) - 1; i >= 0; i-- {
		device.DestroyBindGroup(r.bindGroups[i])
	}
	for i := len(r.buffers) - 1; i >= 0; i-- {
		device.DestroyBuffer(r.buffers[i])
	}
	r.bindGroups = nil
	r.buffers = nil
}

// frameEncoder walks the op list, maintaining the open render pass, the
// clip stack, and the resources created along the way. The main pass is
// segmented around blur interludes: color and stencil are stored at the
// split and loaded on resume so clip state survives.
type frameEncoder struct {
	e       *Engine
	frame   *Frame
	encoder hal.CommandEncoder
	res     frameResources
	clips   clipStack
	rp      hal.RenderPassEncoder
	cleared bool

	fillBind    hal.BindGroup
	fullQuadBuf hal.Buffer
}

func (f *frameEncoder) beginMainPass() {
	colorLoad := gputypes.LoadOpClear
	stencilLoad := gputypes.LoadOpClear
	if f.cleared {
		colorLoad = gputypes.LoadOpLoad
		stencilLoad = gputypes.LoadOpLoad
	}
	bg := f.frame.Background
	f.rp = f.encoder.BeginRenderPass(&hal.RenderPassDescriptor{
		Label: "scenic_main_pass",
		ColorAttachments: []hal.RenderPassColorAttachment{{
			View:          f.e.target.colorView,
			ResolveTarget: f.e.target.resolveTarget(),
			LoadOp:        colorLoad,
			StoreOp:       gputypes.StoreOpStore,
			ClearValue:    gputypes.Color{R: bg[0], G: bg[1], B: bg[2], A: bg[3]},
		}},
		DepthStencilAttachment: &hal.RenderPassDepthStencilAttachment{
			View:              f.e.target.stencilView,
			DepthLoadOp:       gputypes.LoadOpClear,
			DepthStoreOp:      gputypes.StoreOpDiscard,
			DepthClearValue:   1.0,
			StencilLoadOp:     stencilLoad,
			StencilStoreOp:    gputypes.StoreOpStore,
			StencilClearValue: 0,
		},
	})
	f.cleared = true
}

func (f *frameEncoder) endMainPass() {
	if f.rp != nil {
		f.rp.End()
		f.rp = nil
	}
}

func (f *frameEncoder) draw(pipeline hal.RenderPipeline, bind hal.BindGroup, verts hal.Buffer, count uint32) {
	f.rp.SetPipeline(pipeline)
	f.rp.SetBindGroup(0, bind, nil)
	f.rp.SetVertexBuffer(0, verts, 0)
	f.rp.Draw(count, 1, 0, 0)
}

func (f *frameEncoder) uploadBuffer(label string, data []byte, usage gputypes.BufferUsage) (hal.Buffer, error) {
	buf, err := f.e.device.CreateBuffer(&hal.BufferDescriptor{
		Label: label,
		Size:  uint64(len(data)),
		Usage: usage,
	})
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", label, err)
	}
	f.e.queue.WriteBuffer(buf, 0, data)
	f.res.buffers = append(f.res.buffers, buf)
	return buf, nil
}

func (f *frameEncoder) vertexBuffer(label string, verts []float32) (hal.Buffer, uint32, error) {
	buf, err := f.uploadBuffer(label, float32SliceToBytes(verts),
		gputypes.BufferUsageVertex|gputypes.BufferUsageCopyDst)
	if err != nil {
		return nil, 0, err
	}
	return buf, uint32(len(verts) / 2), nil
}

// fillBindGroup returns the shared viewport bind group used by every
// stencil, clip, and cleanup draw in the frame.
func (f *frameEncoder) fillBindGroup() (hal.BindGroup, error) {
	if f.fillBind != nil {
		return f.fillBind, nil
	}
	uniformBuf, err := f.uploadBuffer("scenic_fill_uniform",
		packFillUniform(f.frame.Width, f.frame.Height),
		gputypes.BufferUsageUniform|gputypes.BufferUsageCopyDst)
	if err != nil {
		return nil, err
	}
	bind, err := f.e.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:  "scenic_fill_bind",
		Layout: f.e.pipelines.fillLayout,
		Entries: []gputypes.BindGroupEntry{
			{Binding: 0, Resource: gputypes.BufferBinding{
				Buffer: uniformBuf.NativeHandle(), Offset: 0, Size: stencilFillUniformSize,
			}},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create fill bind group: %w", err)
	}
	f.res.bindGroups = append(f.res.bindGroups, bind)
	f.fillBind = bind
	return bind, nil
}

// paintBindGroup creates a bind group on the paint layout. A nil view
// binds the engine's white texture for paints that never sample.
func (f *frameEncoder) paintBindGroup(label string, uniform []byte, view hal.TextureView) (hal.BindGroup, error) {
	if view == nil {
		view = f.e.pipelines.whiteView
	}
	uniformBuf, err := f.uploadBuffer(label+"_uniform", uniform,
		gputypes.BufferUsageUniform|gputypes.BufferUsageCopyDst)
	if err != nil {
		return nil, err
	}
	bind, err := f.e.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:  label,
		Layout: f.e.pipelines.paintLayout,
		Entries: []gputypes.BindGroupEntry{
			{Binding: 0, Resource: gputypes.BufferBinding{
				Buffer: uniformBuf.NativeHandle(), Offset: 0, Size: uint64(len(uniform)),
			}},
			{Binding: 1, Resource: gputypes.TextureViewBinding{
				TextureView: view.NativeHandle(),
			}},
			{Binding: 2, Resource: gputypes.SamplerBinding{
				Sampler: f.e.pipelines.sampler.NativeHandle(),
			}},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", label, err)
	}
	f.res.bindGroups = append(f.res.bindGroups, bind)
	return bind, nil
}

func (f *frameEncoder) paintView(spec *PaintSpec) hal.TextureView {
	if spec.Texture != nil {
		return spec.Texture.view
	}
	return nil
}

// fullQuad returns the shared full-surface quad vertex buffer.
func (f *frameEncoder) fullQuad() (hal.Buffer, uint32, error) {
	if f.fullQuadBuf != nil {
		return f.fullQuadBuf, 6, nil
	}
	quad := FullSurfaceQuad(f.frame.Width, f.frame.Height)
	buf, count, err := f.vertexBuffer("scenic_full_quad", quad[:])
	if err != nil {
		return nil, 0, err
	}
	f.fullQuadBuf = buf
	return buf, count, nil
}

// drawStencilFan records the stencil accumulation draw for g into the
// currently open pass.
func (f *frameEncoder) drawStencilFan(g StencilGeometry, clipped bool) error {
	fillBind, err := f.fillBindGroup()
	if err != nil {
		return err
	}
	vertBuf, count, err := f.vertexBuffer("scenic_fan_verts", g.Fan.Vertices)
	if err != nil {
		return err
	}
	pipe := f.e.pipelines.stencilFillPipeline(g.Rule == path.FillEvenOdd, clipped)
	f.draw(pipe, fillBind, vertBuf, count)
	return nil
}

func (f *frameEncoder) execFill(op *FillOp) error {
	if len(op.Paints) == 0 {
		return nil
	}
	w, h := f.frame.Width, f.frame.Height
	clipped := f.clips.active()

	switch g := op.Geometry.(type) {
	case DirectGeometry:
		if len(g.Vertices) == 0 {
			return nil
		}
		vertBuf, count, err := f.vertexBuffer("scenic_direct_verts", g.Vertices)
		if err != nil {
			return err
		}
		for i := range op.Paints {
			spec := &op.Paints[i]
			bind, err := f.paintBindGroup("scenic_direct_paint",
				packPaintUniform(w, h, spec), f.paintView(spec))
			if err != nil {
				return err
			}
			f.draw(f.e.pipelines.directPipeline(clipped), bind, vertBuf, count)
		}

	case StencilGeometry:
		if g.Fan == nil {
			return nil
		}
		if err := f.drawStencilFan(g, clipped); err != nil {
			return err
		}
		quad := CoverQuad(g.Fan.Bounds)
		quadBuf, quadCount, err := f.vertexBuffer("scenic_cover_quad", quad[:])
		if err != nil {
			return err
		}
		fused := len(op.Paints) == 1
		for i := range op.Paints {
			spec := &op.Paints[i]
			bind, err := f.paintBindGroup("scenic_cover_paint",
				packPaintUniform(w, h, spec), f.paintView(spec))
			if err != nil {
				return err
			}
			f.draw(f.e.pipelines.coverPipeline(fused), bind, quadBuf, quadCount)
		}
		if !fused {
			fillBind, err := f.fillBindGroup()
			if err != nil {
				return err
			}
			f.draw(f.e.pipelines.stencilClear, fillBind, quadBuf, quadCount)
		}
	}
	return nil
}

// establishClip intersects the active clip with a shape: accumulate the
// shape's fill bits, flip the clip bit on every still-included pixel the
// shape missed, then zero the fill bits again. An empty shape excludes
// the whole surface.
func (f *frameEncoder) establishClip(g StencilGeometry) error {
	fillBind, err := f.fillBindGroup()
	if err != nil {
		return err
	}
	if g.Fan != nil {
		if err := f.drawStencilFan(g, false); err != nil {
			return err
		}
	}
	fullBuf, fullCount, err := f.fullQuad()
	if err != nil {
		return err
	}
	f.draw(f.e.pipelines.clipApply, fillBind, fullBuf, fullCount)
	if g.Fan != nil {
		quad := CoverQuad(g.Fan.Bounds)
		quadBuf, quadCount, err := f.vertexBuffer("scenic_clip_clear_quad", quad[:])
		if err != nil {
			return err
		}
		f.draw(f.e.pipelines.stencilClear, fillBind, quadBuf, quadCount)
	}
	return nil
}

func (f *frameEncoder) execClipPush(op *ClipPushOp) error {
	if err := f.establishClip(op.Shape); err != nil {
		return err
	}
	f.clips.push(op.Shape)
	return nil
}

// execClipPop zeroes the clip bit across the surface and replays the
// remaining stack to rebuild the intersection of the survivors.
func (f *frameEncoder) execClipPop() error {
	replay, ok := f.clips.pop()
	if !ok {
		slogger().Warn("clip pop without matching push")
		return nil
	}
	fillBind, err := f.fillBindGroup()
	if err != nil {
		return err
	}
	fullBuf, fullCount, err := f.fullQuad()
	if err != nil {
		return err
	}
	f.draw(f.e.pipelines.clipClear, fillBind, fullBuf, fullCount)
	for _, g := range replay {
		if err := f.establishClip(g); err != nil {
			return err
		}
	}
	return nil
}

// execShadow splits the main pass, renders the silhouette offscreen,
// blurs it, and composites the result back into the resumed main pass.
func (f *frameEncoder) execShadow(op *ShadowOp) error {
	if op.Silhouette.Fan == nil {
		return nil
	}
	e := f.e
	if e.fx.pingTex == nil {
		return errors.New("effect textures unavailable")
	}
	w, h := f.frame.Width, f.frame.Height
	f.endMainPass()

	// Silhouette: stencil the translated shape into the fx target and
	// cover it in solid white, leaving antialiased coverage in the ping
	// texture's alpha channel.
	white := PaintSpec{Kind: PaintSolid, Color: [4]float32{1, 1, 1, 1}, Opacity: 1}
	whiteBind, err := f.paintBindGroup("scenic_fx_white", packPaintUniform(w, h, &white), nil)
	if err != nil {
		return err
	}
	quad := CoverQuad(op.Silhouette.Fan.Bounds)
	quadBuf, quadCount, err := f.vertexBuffer("scenic_fx_cover_quad", quad[:])
	if err != nil {
		return err
	}
	colorView, resolveView := e.fx.silhouetteColorView()
	f.rp = f.encoder.BeginRenderPass(&hal.RenderPassDescriptor{
		Label: "scenic_fx_silhouette_pass",
		ColorAttachments: []hal.RenderPassColorAttachment{{
			View:          colorView,
			ResolveTarget: resolveView,
			LoadOp:        gputypes.LoadOpClear,
			StoreOp:       gputypes.StoreOpStore,
			ClearValue:    gputypes.Color{},
		}},
		DepthStencilAttachment: &hal.RenderPassDepthStencilAttachment{
			View:              e.fx.stencilView,
			DepthLoadOp:       gputypes.LoadOpClear,
			DepthStoreOp:      gputypes.StoreOpDiscard,
			DepthClearValue:   1.0,
			StencilLoadOp:     gputypes.LoadOpClear,
			StencilStoreOp:    gputypes.StoreOpDiscard,
			StencilClearValue: 0,
		},
	})
	if err := f.drawStencilFan(op.Silhouette, false); err != nil {
		f.rp.End()
		f.rp = nil
		return err
	}
	f.draw(e.pipelines.coverFused, whiteBind, quadBuf, quadCount)
	f.rp.End()
	f.rp = nil

	// Separable blur: ping -> pong horizontally, pong -> ping vertically.
	// Inner shadows invert coverage on the final pass, which equals
	// blurring the inverted silhouette since the kernel sums to one.
	weights := gaussianHalfKernel(op.Sigma)
	fullBuf, fullCount, err := f.fullQuad()
	if err != nil {
		return err
	}
	blurPasses := []struct {
		label      string
		horizontal bool
		invert     bool
		source     hal.TextureView
		target     hal.TextureView
	}{
		{"scenic_blur_h", true, false, e.fx.pingView, e.fx.pongView},
		{"scenic_blur_v", false, op.Inner, e.fx.pongView, e.fx.pingView},
	}
	for _, pass := range blurPasses {
		bind, err := f.paintBindGroup(pass.label,
			packBlurUniform(w, h, pass.horizontal, pass.invert, weights), pass.source)
		if err != nil {
			return err
		}
		f.rp = f.encoder.BeginRenderPass(&hal.RenderPassDescriptor{
			Label: pass.label + "_pass",
			ColorAttachments: []hal.RenderPassColorAttachment{{
				View:       pass.target,
				LoadOp:     gputypes.LoadOpClear,
				StoreOp:    gputypes.StoreOpStore,
				ClearValue: gputypes.Color{},
			}},
		})
		f.draw(e.pipelines.blur, bind, fullBuf, fullCount)
		f.rp.End()
		f.rp = nil
	}

	f.beginMainPass()

	// Composite: drop shadows tint a padded quad under the upcoming
	// fills; inner shadows paint through the mask shape's stencil.
	shadow := PaintSpec{
		Kind:    PaintShadow,
		Color:   op.Color,
		Opacity: op.Opacity,
		UV:      [6]float32{1 / float32(w), 0, 0, 1 / float32(h), 0, 0},
	}
	shadowUniform := packPaintUniform(w, h, &shadow)
	clipped := f.clips.active()

	if op.Inner {
		if op.Mask == nil || op.Mask.Fan == nil {
			return nil
		}
		if err := f.drawStencilFan(*op.Mask, clipped); err != nil {
			return err
		}
		maskQuad := CoverQuad(op.Mask.Fan.Bounds)
		maskBuf, maskCount, err := f.vertexBuffer("scenic_shadow_mask_quad", maskQuad[:])
		if err != nil {
			return err
		}
		bind, err := f.paintBindGroup("scenic_shadow_paint", shadowUniform, e.fx.pingView)
		if err != nil {
			return err
		}
		f.draw(e.pipelines.coverFused, bind, maskBuf, maskCount)
		return nil
	}

	bounds := growBounds(op.Silhouette.Fan.Bounds, blurPadding(op.Sigma))
	dropQuad := CoverQuad(bounds)
	dropBuf, dropCount, err := f.vertexBuffer("scenic_shadow_quad", dropQuad[:])
	if err != nil {
		return err
	}
	bind, err := f.paintBindGroup("scenic_shadow_paint", shadowUniform, e.fx.pingView)
	if err != nil {
		return err
	}
	f.draw(e.pipelines.directPipeline(clipped), bind, dropBuf, dropCount)
	return nil
}

func growBounds(b [4]float32, pad float32) [4]float32 {
	return [4]float32{b[0] - pad, b[1] - pad, b[2] + pad, b[3] + pad}
}

// float32SliceToBytes converts vertex data to the little-endian layout
// buffer uploads expect. Returns nil for empty input.
func float32SliceToBytes(floats []float32) []byte {
	if len(floats) == 0 {
		return nil
	}
	buf := make([]byte, len(floats)*4)
	for i, v := range floats {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	return buf
}

// convertBGRAToRGBA swaps the blue and red channels of pixelCount pixels.
func convertBGRAToRGBA(src, dst []byte, pixelCount int) {
	for i := 0; i < pixelCount; i++ {
		o := i * 4
		dst[o] = src[o+2]
		dst[o+1] = src[o+1]
		dst[o+2] = src[o]
		dst[o+3] = src[o+3]
	}
}
