package gpu

import (
	"errors"
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// ErrNoGPU reports that no usable GPU adapter is present on this system.
var ErrNoGPU = errors.New("no compatible GPU adapter available")

// errEngineDestroyed guards use-after-destroy on the engine itself.
var errEngineDestroyed = errors.New("gpu engine destroyed")

// msaaSampleCount is the multisample count used when antialiasing is
// enabled. 4x is universally supported for BGRA8 render targets.
const msaaSampleCount = 4

// RenderTarget is a caller-owned RGBA8 pixel buffer a frame renders into.
// Stride is in bytes; zero means tightly packed rows of Width*4.
type RenderTarget struct {
	Data   []byte
	Width  int
	Height int
	Stride int
}

// Engine owns a HAL device, queue, and pipeline set, and executes frames
// against them. Methods are not safe for concurrent use; the facade above
// holds the lock.
type Engine struct {
	device   hal.Device
	queue    hal.Queue
	instance hal.Instance
	owns     bool

	pipelines *pipelineSet
	samples   uint32

	target targetSet
	fx     fxSet

	destroyed bool
}

// NewEngine opens the first usable adapter on the Vulkan backend,
// preferring discrete and integrated GPUs over software devices.
// Returns ErrNoGPU when the backend is absent or exposes no adapters.
func NewEngine(antialias bool) (*Engine, error) {
	backend, ok := hal.GetBackend(gputypes.BackendVulkan)
	if !ok {
		return nil, ErrNoGPU
	}
	instance, err := backend.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
	if err != nil {
		return nil, fmt.Errorf("create instance: %w", err)
	}
	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		instance.Destroy()
		return nil, ErrNoGPU
	}
	selected := adapters[0]
	for _, a := range adapters {
		dt := a.Info.DeviceType
		if dt == gputypes.DeviceTypeDiscreteGPU || dt == gputypes.DeviceTypeIntegratedGPU {
			selected = a
			break
		}
	}
	slogger().Info("opening GPU adapter",
		"name", selected.Info.Name, "type", selected.Info.DeviceType)
	openDev, err := selected.Adapter.Open(gputypes.Features(0), gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		return nil, fmt.Errorf("open adapter: %w", err)
	}
	e, err := newEngine(openDev.Device, openDev.Queue, antialias)
	if err != nil {
		openDev.Device.Destroy()
		instance.Destroy()
		return nil, err
	}
	e.instance = instance
	e.owns = true
	return e, nil
}

// NewEngineWithDevice builds an engine on an externally owned device and
// queue. Destroy releases the pipeline set but leaves the device alone.
func NewEngineWithDevice(device hal.Device, queue hal.Queue, antialias bool) (*Engine, error) {
	if device == nil || queue == nil {
		return nil, errors.New("nil device or queue")
	}
	return newEngine(device, queue, antialias)
}

// halProvider is the structural contract device providers satisfy.
// gpucontext.DeviceProvider implementations expose their HAL handles this
// way without either package importing the other.
type halProvider interface {
	HalDevice() any
	HalQueue() any
}

// NewEngineFromProvider extracts the HAL device and queue from an
// external provider, typically a windowing integration that already owns
// the device.
func NewEngineFromProvider(provider any, antialias bool) (*Engine, error) {
	p, ok := provider.(halProvider)
	if !ok {
		return nil, fmt.Errorf("device provider %T exposes no HAL device", provider)
	}
	device, ok := p.HalDevice().(hal.Device)
	if !ok || device == nil {
		return nil, fmt.Errorf("device provider %T: HalDevice is not a hal.Device", provider)
	}
	queue, ok := p.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return nil, fmt.Errorf("device provider %T: HalQueue is not a hal.Queue", provider)
	}
	return newEngine(device, queue, antialias)
}

func newEngine(device hal.Device, queue hal.Queue, antialias bool) (*Engine, error) {
	samples := uint32(1)
	if antialias {
		samples = msaaSampleCount
	}
	pipelines, err := createPipelineSet(device, queue, samples)
	if err != nil {
		return nil, err
	}
	slogger().Info("gpu engine ready", "samples", samples)
	return &Engine{
		device:    device,
		queue:     queue,
		pipelines: pipelines,
		samples:   samples,
	}, nil
}

// Device exposes the HAL device for sibling components such as the
// texture cache.
func (e *Engine) Device() hal.Device { return e.device }

// Queue exposes the HAL queue for sibling components.
func (e *Engine) Queue() hal.Queue { return e.queue }

// Samples returns the multisample count the engine renders with.
func (e *Engine) Samples() uint32 { return e.samples }

// Destroy releases all engine resources. When the engine opened its own
// adapter it also destroys the device and instance. Safe to call twice.
func (e *Engine) Destroy() {
	if e.destroyed {
		return
	}
	e.destroyed = true
	e.fx.destroy(e.device)
	e.target.destroy(e.device)
	if e.pipelines != nil {
		e.pipelines.destroy(e.device)
		e.pipelines = nil
	}
	if e.owns {
		if e.device != nil {
			e.device.Destroy()
		}
		if e.instance != nil {
			e.instance.Destroy()
		}
	}
	e.device = nil
	e.queue = nil
	e.instance = nil
}
