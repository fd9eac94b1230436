package renderer

import (
	"fmt"
	"runtime"
	"sync"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/softlens/blurcam-go/engine/window"
)

// wgpu present modes aliased so builder options don't need the wgpu import.
const (
	presentModeFifo      = wgpu.PresentModeFifo
	presentModeImmediate = wgpu.PresentModeImmediate
)

// wgpuRenderer implements Renderer on the wgpu-native backend.
type wgpuRenderer struct {
	mu *sync.Mutex

	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	surface  *wgpu.Surface
	device   *wgpu.Device
	queue    *wgpu.Queue

	surfaceFormat        wgpu.TextureFormat
	renderPassDescriptor *wgpu.RenderPassDescriptor

	presentMode          wgpu.PresentMode
	forceFallbackAdapter bool
	deviceLabel          string

	// Frame state held between BeginFrame and Present.
	frameEncoder *wgpu.CommandEncoder
	framePass    *wgpu.RenderPassEncoder
	frameSurface *wgpu.Texture
	frameView    *wgpu.TextureView
}

var _ Renderer = &wgpuRenderer{}

// NewRenderer performs the one-time WebGPU bootstrap against the given
// window's surface: instance, surface, adapter, device, and queue. Any
// acquisition failure is wrapped in ErrBootstrap and the pipeline never starts.
//
// Parameters:
//   - win: the window providing the platform surface descriptor
//   - options: functional options (present mode, fallback adapter, device label)
//
// Returns:
//   - Renderer: the bootstrapped renderer
//   - error: an ErrBootstrap-wrapped error if any GPU object could not be acquired
func NewRenderer(win window.Window, options ...RendererBuilderOption) (Renderer, error) {
	runtime.LockOSThread()

	r := &wgpuRenderer{
		mu:          &sync.Mutex{},
		presentMode: wgpu.PresentModeFifo,
		deviceLabel: "Blur Pipeline Device",
	}
	for _, opt := range options {
		opt(r)
	}

	desc := win.SurfaceDescriptor()
	if desc == nil {
		return nil, fmt.Errorf("%w: window has no surface descriptor", ErrBootstrap)
	}

	// Release frees whatever bootstrap handles exist, so every failure path
	// below can clean up with one call.
	r.instance = wgpu.CreateInstance(nil)
	r.surface = r.instance.CreateSurface(desc)
	if r.surface == nil {
		r.Release()
		return nil, fmt.Errorf("%w: surface creation failed", ErrBootstrap)
	}

	adapter, err := r.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		ForceFallbackAdapter: r.forceFallbackAdapter,
		CompatibleSurface:    r.surface,
	})
	if err != nil {
		r.Release()
		return nil, fmt.Errorf("%w: no adapter: %v", ErrBootstrap, err)
	}
	r.adapter = adapter

	device, err := adapter.RequestDevice(&wgpu.DeviceDescriptor{
		Label: r.deviceLabel,
		RequiredLimits: &wgpu.RequiredLimits{
			Limits: wgpu.DefaultLimits(),
		},
	})
	if err != nil {
		r.Release()
		return nil, fmt.Errorf("%w: no device: %v", ErrBootstrap, err)
	}
	r.device = device
	r.queue = device.GetQueue()

	return r, nil
}

func (r *wgpuRenderer) Device() *wgpu.Device {
	return r.device
}

func (r *wgpuRenderer) Queue() *wgpu.Queue {
	return r.queue
}

func (r *wgpuRenderer) ConfigureSurface(width, height int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	capabilities := r.surface.GetCapabilities(r.adapter)
	if len(capabilities.Formats) == 0 {
		return fmt.Errorf("%w: surface reports no texture formats", ErrBootstrap)
	}
	r.surfaceFormat = capabilities.Formats[0]

	r.surface.Configure(r.adapter, r.device, &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      r.surfaceFormat,
		Width:       uint32(width),
		Height:      uint32(height),
		PresentMode: r.presentMode,
		AlphaMode:   capabilities.AlphaModes[0],
	})

	// Cached render pass descriptor; View is set per-frame to the acquired
	// surface view. The fullscreen quad overwrites every texel, so the clear
	// only matters for the first frame of a tick that faults mid-pass.
	r.renderPassDescriptor = &wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{
			{
				View:    nil,
				LoadOp:  wgpu.LoadOpClear,
				StoreOp: wgpu.StoreOpStore,
				ClearValue: wgpu.Color{
					R: 0.0, G: 0.0, B: 0.0, A: 1.0,
				},
			},
		},
	}

	return nil
}

func (r *wgpuRenderer) SurfaceFormat() wgpu.TextureFormat {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.surfaceFormat
}

func (r *wgpuRenderer) SetPresentMode(mode PresentMode) {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch mode {
	case PresentModeVSync:
		r.presentMode = wgpu.PresentModeFifo
	case PresentModeUncapped:
		fallthrough
	default:
		r.presentMode = wgpu.PresentModeImmediate
	}
}

func (r *wgpuRenderer) DispatchCompute(p *wgpu.ComputePipeline, bindGroup *wgpu.BindGroup, workGroupCount [3]uint32) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	encoder, err := r.device.CreateCommandEncoder(nil)
	if err != nil {
		return fmt.Errorf("compute encoder: %w", err)
	}

	pass := encoder.BeginComputePass(nil)
	pass.SetPipeline(p)
	pass.SetBindGroup(0, bindGroup, nil)
	pass.DispatchWorkgroups(workGroupCount[0], workGroupCount[1], workGroupCount[2])
	pass.End()

	commandBuffer, err := encoder.Finish(nil)
	if err != nil {
		encoder.Release()
		return fmt.Errorf("compute encoder finish: %w", err)
	}

	r.queue.Submit(commandBuffer)
	commandBuffer.Release()
	encoder.Release()
	return nil
}

func (r *wgpuRenderer) BeginFrame() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.renderPassDescriptor == nil {
		return ErrSurfaceNotConfigured
	}

	// Only one surface texture may be acquired at a time; the previous frame
	// must be presented before the next acquire.
	if r.frameSurface != nil {
		return fmt.Errorf("previous frame surface not yet presented")
	}

	surfaceTexture, err := r.surface.GetCurrentTexture()
	if err != nil {
		return fmt.Errorf("surface acquire: %w", err)
	}

	view, err := surfaceTexture.CreateView(nil)
	if err != nil {
		surfaceTexture.Release()
		return fmt.Errorf("surface view: %w", err)
	}

	encoder, err := r.device.CreateCommandEncoder(nil)
	if err != nil {
		view.Release()
		surfaceTexture.Release()
		return fmt.Errorf("render encoder: %w", err)
	}

	r.renderPassDescriptor.ColorAttachments[0].View = view
	pass := encoder.BeginRenderPass(r.renderPassDescriptor)

	r.frameEncoder = encoder
	r.framePass = pass
	r.frameSurface = surfaceTexture
	r.frameView = view

	return nil
}

func (r *wgpuRenderer) Draw(p *wgpu.RenderPipeline, bindGroup *wgpu.BindGroup, vertexCount uint32) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.framePass == nil {
		return
	}

	r.framePass.SetPipeline(p)
	r.framePass.SetBindGroup(0, bindGroup, nil)
	r.framePass.Draw(vertexCount, 1, 0, 0)
}

func (r *wgpuRenderer) EndFrame() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.framePass == nil {
		return fmt.Errorf("no frame in progress")
	}

	r.framePass.End()
	r.framePass = nil

	commandBuffer, err := r.frameEncoder.Finish(nil)
	r.frameEncoder.Release()
	r.frameEncoder = nil
	if err != nil {
		r.frameView.Release()
		r.frameSurface.Release()
		r.frameView = nil
		r.frameSurface = nil
		return fmt.Errorf("render encoder finish: %w", err)
	}

	r.queue.Submit(commandBuffer)
	commandBuffer.Release()
	return nil
}

func (r *wgpuRenderer) Present() {
	r.mu.Lock()
	defer r.mu.Unlock()

	// If no frame surface is held, nothing to present.
	if r.frameSurface == nil {
		return
	}

	r.surface.Present()

	if r.frameView != nil {
		r.frameView.Release()
		r.frameView = nil
	}
	r.frameSurface.Release()
	r.frameSurface = nil
}

func (r *wgpuRenderer) Release() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.frameView != nil {
		r.frameView.Release()
		r.frameView = nil
	}
	if r.frameSurface != nil {
		r.frameSurface.Release()
		r.frameSurface = nil
	}
	if r.device != nil {
		r.device.Release()
		r.device = nil
	}
	if r.adapter != nil {
		r.adapter.Release()
		r.adapter = nil
	}
	if r.surface != nil {
		r.surface.Release()
		r.surface = nil
	}
	if r.instance != nil {
		r.instance.Release()
		r.instance = nil
	}
}
