package gpu

import (
	_ "embed"
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// Embedded WGSL shader sources, compiled into modules at engine startup.

//go:embed shaders/stencil_fill.wgsl
var stencilFillShaderSource string

//go:embed shaders/cover.wgsl
var coverShaderSource string

//go:embed shaders/blur.wgsl
var blurShaderSource string

// Uniform buffer sizes. These mirror the WGSL struct layouts and every
// field is padded to 16 bytes, so changes there must land here too.
const (
	stencilFillUniformSize = 16
	paintUniformSize       = 432
	blurUniformSize        = 176
)

// vertexStride is two float32 coordinates per vertex; every pipeline in
// the set shares the position-only vertex layout.
const vertexStride = 8

// Stencil bit partition: the low seven bits accumulate fill winding or
// parity, the top bit marks pixels excluded by the active clip. All
// stencil tests run against the hardware default reference of zero.
const (
	fillMask uint32 = 0x7F
	clipMask uint32 = 0x80
)

// maxGradientStops is the per-paint stop capacity of the cover shader's
// uniform block. The scene walk normalizes and truncates longer lists.
const maxGradientStops = 16

// blurMaxHalfSize caps the Gaussian kernel half width at the shader's
// weight array capacity (8 vec4s = 32 weights, center plus 31 taps).
const blurMaxHalfSize = 31

// pipelineSet holds every render pipeline variant the frame executor
// records with, plus the shared layouts and static resources they bind.
type pipelineSet struct {
	fillModule  hal.ShaderModule
	coverModule hal.ShaderModule
	blurModule  hal.ShaderModule

	// fillLayout binds the viewport uniform alone; paintLayout adds the
	// paint texture and sampler used by cover, direct, and blur draws.
	fillLayout      hal.BindGroupLayout
	paintLayout     hal.BindGroupLayout
	fillPipeLayout  hal.PipelineLayout
	paintPipeLayout hal.PipelineLayout

	// Stencil accumulation: fan triangles, color writes masked off.
	stencilEvenOdd        hal.RenderPipeline
	stencilNonZero        hal.RenderPipeline
	stencilEvenOddClipped hal.RenderPipeline
	stencilNonZeroClipped hal.RenderPipeline

	// Cover: paints where fill bits are nonzero. The fused variant
	// zeroes fill bits as it paints; the keep variant leaves them for
	// further paints and relies on a stencilClear quad afterwards.
	coverFused hal.RenderPipeline
	coverKeep  hal.RenderPipeline

	// stencilClear zeroes fill bits without touching color. clipApply
	// flips the clip bit on pixels the pushed shape left uncovered;
	// clipClear zeroes the clip bit across the surface before a replay.
	stencilClear hal.RenderPipeline
	clipApply    hal.RenderPipeline
	clipClear    hal.RenderPipeline

	// direct paints pre-triangulated geometry with no stencil traffic.
	direct        hal.RenderPipeline
	directClipped hal.RenderPipeline

	// blur runs the separable Gaussian passes on 1-sample fx textures.
	blur hal.RenderPipeline

	sampler hal.Sampler

	// whiteTex satisfies the paint layout's texture binding for draws
	// that never sample (solid colors, gradients).
	whiteTex  hal.Texture
	whiteView hal.TextureView

	samples uint32
}

func stencilFace(compare gputypes.CompareFunction, pass hal.StencilOperation) hal.StencilFaceState {
	return hal.StencilFaceState{
		Compare:     compare,
		FailOp:      hal.StencilOperationKeep,
		DepthFailOp: hal.StencilOperationKeep,
		PassOp:      pass,
	}
}

func depthStencilState(front, back hal.StencilFaceState, readMask, writeMask uint32) *hal.DepthStencilState {
	return &hal.DepthStencilState{
		Format:            gputypes.TextureFormatDepth24PlusStencil8,
		DepthWriteEnabled: false,
		DepthCompare:      gputypes.CompareFunctionAlways,
		StencilFront:      front,
		StencilBack:       back,
		StencilReadMask:   readMask,
		StencilWriteMask:  writeMask,
	}
}

func createPipelineSet(device hal.Device, queue hal.Queue, samples uint32) (*pipelineSet, error) {
	p := &pipelineSet{samples: samples}
	if err := p.init(device, queue); err != nil {
		p.destroy(device)
		return nil, err
	}
	return p, nil
}

func (p *pipelineSet) init(device hal.Device, queue hal.Queue) error {
	var err error
	p.fillModule, err = device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  "scenic_stencil_fill_shader",
		Source: hal.ShaderSource{WGSL: stencilFillShaderSource},
	})
	if err != nil {
		return fmt.Errorf("create stencil fill shader: %w", err)
	}
	p.coverModule, err = device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  "scenic_cover_shader",
		Source: hal.ShaderSource{WGSL: coverShaderSource},
	})
	if err != nil {
		return fmt.Errorf("create cover shader: %w", err)
	}
	p.blurModule, err = device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  "scenic_blur_shader",
		Source: hal.ShaderSource{WGSL: blurShaderSource},
	})
	if err != nil {
		return fmt.Errorf("create blur shader: %w", err)
	}

	p.fillLayout, err = device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "scenic_fill_bind_layout",
		Entries: []gputypes.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: gputypes.ShaderStageVertex | gputypes.ShaderStageFragment,
				Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("create fill bind group layout: %w", err)
	}
	p.paintLayout, err = device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "scenic_paint_bind_layout",
		Entries: []gputypes.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: gputypes.ShaderStageVertex | gputypes.ShaderStageFragment,
				Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform},
			},
			{
				Binding:    1,
				Visibility: gputypes.ShaderStageFragment,
				Texture: &gputypes.TextureBindingLayout{
					SampleType:    gputypes.TextureSampleTypeFloat,
					ViewDimension: gputypes.TextureViewDimension2D,
				},
			},
			{
				Binding:    2,
				Visibility: gputypes.ShaderStageFragment,
				Sampler:    &gputypes.SamplerBindingLayout{Type: gputypes.SamplerBindingTypeFiltering},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("create paint bind group layout: %w", err)
	}

	p.fillPipeLayout, err = device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            "scenic_fill_pipe_layout",
		BindGroupLayouts: []hal.BindGroupLayout{p.fillLayout},
	})
	if err != nil {
		return fmt.Errorf("create fill pipeline layout: %w", err)
	}
	p.paintPipeLayout, err = device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            "scenic_paint_pipe_layout",
		BindGroupLayouts: []hal.BindGroupLayout{p.paintLayout},
	})
	if err != nil {
		return fmt.Errorf("create paint pipeline layout: %w", err)
	}

	p.sampler, err = device.CreateSampler(&hal.SamplerDescriptor{
		Label:        "scenic_paint_sampler",
		AddressModeU: gputypes.AddressModeClampToEdge,
		AddressModeV: gputypes.AddressModeClampToEdge,
		AddressModeW: gputypes.AddressModeClampToEdge,
		MagFilter:    gputypes.FilterModeLinear,
		MinFilter:    gputypes.FilterModeLinear,
		MipmapFilter: gputypes.FilterModeLinear,
	})
	if err != nil {
		return fmt.Errorf("create paint sampler: %w", err)
	}

	if err := p.createWhiteTexture(device, queue); err != nil {
		return err
	}

	invert := stencilFace(gputypes.CompareFunctionAlways, hal.StencilOperationInvert)
	invertClipped := stencilFace(gputypes.CompareFunctionEqual, hal.StencilOperationInvert)
	incr := stencilFace(gputypes.CompareFunctionAlways, hal.StencilOperationIncrementWrap)
	decr := stencilFace(gputypes.CompareFunctionAlways, hal.StencilOperationDecrementWrap)
	incrClipped := stencilFace(gputypes.CompareFunctionEqual, hal.StencilOperationIncrementWrap)
	decrClipped := stencilFace(gputypes.CompareFunctionEqual, hal.StencilOperationDecrementWrap)
	coverZero := stencilFace(gputypes.CompareFunctionNotEqual, hal.StencilOperationZero)
	coverOnly := stencilFace(gputypes.CompareFunctionNotEqual, hal.StencilOperationKeep)
	clearFill := stencilFace(gputypes.CompareFunctionAlways, hal.StencilOperationZero)
	keepAlways := stencilFace(gputypes.CompareFunctionAlways, hal.StencilOperationKeep)
	keepClipped := stencilFace(gputypes.CompareFunctionEqual, hal.StencilOperationKeep)

	type pipelineBuild struct {
		target  *hal.RenderPipeline
		label   string
		module  hal.ShaderModule
		layout  hal.PipelineLayout
		colorOn bool
		ds      *hal.DepthStencilState
		samples uint32
	}
	builds := []pipelineBuild{
		{&p.stencilEvenOdd, "scenic_stencil_evenodd", p.fillModule, p.fillPipeLayout, false,
			depthStencilState(invert, invert, fillMask, fillMask), p.samples},
		{&p.stencilNonZero, "scenic_stencil_nonzero", p.fillModule, p.fillPipeLayout, false,
			depthStencilState(incr, decr, fillMask, fillMask), p.samples},
		{&p.stencilEvenOddClipped, "scenic_stencil_evenodd_clipped", p.fillModule, p.fillPipeLayout, false,
			depthStencilState(invertClipped, invertClipped, clipMask, fillMask), p.samples},
		{&p.stencilNonZeroClipped, "scenic_stencil_nonzero_clipped", p.fillModule, p.fillPipeLayout, false,
			depthStencilState(incrClipped, decrClipped, clipMask, fillMask), p.samples},
		{&p.coverFused, "scenic_cover_fused", p.coverModule, p.paintPipeLayout, true,
			depthStencilState(coverZero, coverZero, fillMask, fillMask), p.samples},
		{&p.coverKeep, "scenic_cover_keep", p.coverModule, p.paintPipeLayout, true,
			depthStencilState(coverOnly, coverOnly, fillMask, 0), p.samples},
		{&p.stencilClear, "scenic_stencil_clear", p.fillModule, p.fillPipeLayout, false,
			depthStencilState(clearFill, clearFill, fillMask, fillMask), p.samples},
		{&p.clipApply, "scenic_clip_apply", p.fillModule, p.fillPipeLayout, false,
			depthStencilState(invertClipped, invertClipped, 0xFF, clipMask), p.samples},
		{&p.clipClear, "scenic_clip_clear", p.fillModule, p.fillPipeLayout, false,
			depthStencilState(clearFill, clearFill, clipMask, clipMask), p.samples},
		{&p.direct, "scenic_direct", p.coverModule, p.paintPipeLayout, true,
			depthStencilState(keepAlways, keepAlways, fillMask, 0), p.samples},
		{&p.directClipped, "scenic_direct_clipped", p.coverModule, p.paintPipeLayout, true,
			depthStencilState(keepClipped, keepClipped, clipMask, 0), p.samples},
		{&p.blur, "scenic_blur", p.blurModule, p.paintPipeLayout, true, nil, 1},
	}
	for _, b := range builds {
		pipe, err := buildRenderPipeline(device, b.label, b.module, b.layout, b.colorOn, b.ds, b.samples)
		if err != nil {
			return err
		}
		*b.target = pipe
	}
	return nil
}

func buildRenderPipeline(
	device hal.Device,
	label string,
	module hal.ShaderModule,
	layout hal.PipelineLayout,
	colorOn bool,
	ds *hal.DepthStencilState,
	samples uint32,
) (hal.RenderPipeline, error) {
	writeMask := gputypes.ColorWriteMaskNone
	var blend *gputypes.BlendState
	if colorOn {
		writeMask = gputypes.ColorWriteMaskAll
		premul := gputypes.BlendStatePremultiplied()
		blend = &premul
	}
	pipeline, err := device.CreateRenderPipeline(&hal.RenderPipelineDescriptor{
		Label:  label,
		Layout: layout,
		Vertex: hal.VertexState{
			Module:     module,
			EntryPoint: "vs_main",
			Buffers: []gputypes.VertexBufferLayout{
				{
					ArrayStride: vertexStride,
					StepMode:    gputypes.VertexStepModeVertex,
					Attributes: []gputypes.VertexAttribute{
						{
							Format:         gputypes.VertexFormatFloat32x2,
							Offset:         0,
							ShaderLocation: 0,
						},
					},
				},
			},
		},
		Fragment: &hal.FragmentState{
			Module:     module,
			EntryPoint: "fs_main",
			Targets: []gputypes.ColorTargetState{
				{
					Format:    gputypes.TextureFormatBGRA8Unorm,
					Blend:     blend,
					WriteMask: writeMask,
				},
			},
		},
		DepthStencil: ds,
		Multisample: gputypes.MultisampleState{
			Count: samples,
			Mask:  0xFFFFFFFF,
		},
		Primitive: gputypes.PrimitiveState{
			Topology: gputypes.PrimitiveTopologyTriangleList,
			CullMode: gputypes.CullModeNone,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create %s pipeline: %w", label, err)
	}
	return pipeline, nil
}

// createWhiteTexture uploads a 1x1 opaque white texture bound by draws
// whose paint never samples, keeping a single bind group layout for all
// paint kinds.
func (p *pipelineSet) createWhiteTexture(device hal.Device, queue hal.Queue) error {
	tex, err := device.CreateTexture(&hal.TextureDescriptor{
		Label:         "scenic_white_tex",
		Size:          hal.Extent3D{Width: 1, Height: 1, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        gputypes.TextureFormatRGBA8Unorm,
		Usage:         gputypes.TextureUsageTextureBinding | gputypes.TextureUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("create white texture: %w", err)
	}
	p.whiteTex = tex
	view, err := device.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label:         "scenic_white_tex_view",
		Format:        gputypes.TextureFormatRGBA8Unorm,
		Dimension:     gputypes.TextureViewDimension2D,
		Aspect:        gputypes.TextureAspectAll,
		MipLevelCount: 1,
	})
	if err != nil {
		return fmt.Errorf("create white texture view: %w", err)
	}
	p.whiteView = view
	queue.WriteTexture(
		&hal.ImageCopyTexture{Texture: tex, MipLevel: 0},
		[]byte{0xFF, 0xFF, 0xFF, 0xFF},
		&hal.ImageDataLayout{Offset: 0, BytesPerRow: 4, RowsPerImage: 1},
		&hal.Extent3D{Width: 1, Height: 1, DepthOrArrayLayers: 1},
	)
	return nil
}

// destroy releases the set in reverse creation order. Safe to call on a
// partially initialized set.
func (p *pipelineSet) destroy(device hal.Device) {
	pipelines := []hal.RenderPipeline{
		p.blur, p.directClipped, p.direct, p.clipClear, p.clipApply,
		p.stencilClear, p.coverKeep, p.coverFused,
		p.stencilNonZeroClipped, p.stencilEvenOddClipped,
		p.stencilNonZero, p.stencilEvenOdd,
	}
	for _, pipe := range pipelines {
		if pipe != nil {
			device.DestroyRenderPipeline(pipe)
		}
	}
	p.blur, p.directClipped, p.direct = nil, nil, nil
	p.clipClear, p.clipApply, p.stencilClear = nil, nil, nil
	p.coverKeep, p.coverFused = nil, nil
	p.stencilNonZeroClipped, p.stencilEvenOddClipped = nil, nil
	p.stencilNonZero, p.stencilEvenOdd = nil, nil

	if p.whiteView != nil {
		device.DestroyTextureView(p.whiteView)
		p.whiteView = nil
	}
	if p.whiteTex != nil {
		device.DestroyTexture(p.whiteTex)
		p.whiteTex = nil
	}
	if p.sampler != nil {
		device.DestroySampler(p.sampler)
		p.sampler = nil
	}
	if p.paintPipeLayout != nil {
		device.DestroyPipelineLayout(p.paintPipeLayout)
		p.paintPipeLayout = nil
	}
	if p.fillPipeLayout != nil {
		device.DestroyPipelineLayout(p.fillPipeLayout)
		p.fillPipeLayout = nil
	}
	if p.paintLayout != nil {
		device.DestroyBindGroupLayout(p.paintLayout)
		p.paintLayout = nil
	}
	if p.fillLayout != nil {
		device.DestroyBindGroupLayout(p.fillLayout)
		p.fillLayout = nil
	}
	if p.blurModule != nil {
		device.DestroyShaderModule(p.blurModule)
		p.blurModule = nil
	}
	if p.coverModule != nil {
		device.DestroyShaderModule(p.coverModule)
		p.coverModule = nil
	}
	if p.fillModule != nil {
		device.DestroyShaderModule(p.fillModule)
		p.fillModule = nil
	}
}

// stencilFillPipeline picks the accumulation variant for a fill rule and
// the current clip depth.
func (p *pipelineSet) stencilFillPipeline(evenOdd, clipped bool) hal.RenderPipeline {
	switch {
	case evenOdd && clipped:
		return p.stencilEvenOddClipped
	case evenOdd:
		return p.stencilEvenOdd
	case clipped:
		return p.stencilNonZeroClipped
	default:
		return p.stencilNonZero
	}
}

// directPipeline picks the pre-triangulated geometry variant for the
// current clip depth.
func (p *pipelineSet) directPipeline(clipped bool) hal.RenderPipeline {
	if clipped {
		return p.directClipped
	}
	return p.direct
}

// coverPipeline picks the cover variant: fused covers zero the fill bits
// while painting, keep covers leave them for additional paints.
func (p *pipelineSet) coverPipeline(fused bool) hal.RenderPipeline {
	if fused {
		return p.coverFused
	}
	return p.coverKeep
}
