// Package renderer owns the one-time WebGPU bootstrap (instance, adapter,
// device, surface) and the per-tick queue operations the blur pipeline
// encodes: a single compute dispatch and a single fullscreen render pass.
package renderer

import (
	"errors"

	"github.com/cogentcore/webgpu/wgpu"
)

// ErrBootstrap wraps failures to acquire an adapter, device, or surface.
// A pipeline whose renderer fails to bootstrap never starts.
var ErrBootstrap = errors.New("renderer bootstrap failed")

// ErrSurfaceNotConfigured indicates a frame operation before ConfigureSurface.
var ErrSurfaceNotConfigured = errors.New("surface not configured")

// PresentMode controls how rendered frames are presented to the display surface.
type PresentMode int

const (
	// PresentModeVSync waits for the next vertical blank before presenting, capping frame rate
	// to the monitor's refresh rate. Eliminates tearing.
	PresentModeVSync PresentMode = iota

	// PresentModeUncapped presents frames immediately without waiting for vertical blank.
	// May cause screen tearing but provides the lowest latency.
	PresentModeUncapped
)

// Renderer is the GPU-facing surface of the pipeline: device/queue access for
// resource creation, surface configuration, and the per-tick pass encoding.
// All submissions go through one queue, so upload, compute, and render work
// within a tick is ordered by submission order alone.
type Renderer interface {
	// Device returns the WebGPU device for resource creation.
	//
	// Returns:
	//   - *wgpu.Device: the device handle
	Device() *wgpu.Device

	// Queue returns the device's submission queue.
	//
	// Returns:
	//   - *wgpu.Queue: the queue handle
	Queue() *wgpu.Queue

	// ConfigureSurface configures the presentation surface for the given pixel
	// size using the surface's preferred format. Must be called once before
	// the first frame, and again (with a resource-set rebuild) on resize.
	//
	// Parameters:
	//   - width: the surface width in pixels
	//   - height: the surface height in pixels
	//
	// Returns:
	//   - error: an error if the surface reports no usable formats
	ConfigureSurface(width, height int) error

	// SurfaceFormat returns the swap-surface pixel format chosen during
	// ConfigureSurface. The render pipeline's color target must match it
	// exactly. Returns TextureFormatUndefined before configuration.
	//
	// Returns:
	//   - wgpu.TextureFormat: the configured surface format
	SurfaceFormat() wgpu.TextureFormat

	// SetPresentMode sets the surface present mode which controls how frames
	// are delivered to the display. Takes effect on the next ConfigureSurface.
	//
	// Parameters:
	//   - mode: the PresentMode to use (VSync or Uncapped)
	SetPresentMode(mode PresentMode)

	// DispatchCompute encodes and submits one compute pass: a single pipeline,
	// a single bind group, and one workgroup grid dispatch.
	//
	// Parameters:
	//   - p: the compute pipeline to run
	//   - bindGroup: the bind group set at group 0
	//   - workGroupCount: the number of workgroups in x, y, and z
	//
	// Returns:
	//   - error: an error if the command encoder could not be created or finished
	DispatchCompute(p *wgpu.ComputePipeline, bindGroup *wgpu.BindGroup, workGroupCount [3]uint32) error

	// BeginFrame acquires the next surface texture, creates a command encoder,
	// and begins the render pass targeting the surface view. Must be paired
	// with EndFrame and Present.
	//
	// Returns:
	//   - error: an error if the surface texture could not be acquired
	BeginFrame() error

	// Draw encodes a single non-indexed draw within the current render pass.
	//
	// Parameters:
	//   - p: the render pipeline to use
	//   - bindGroup: the bind group set at group 0
	//   - vertexCount: the number of vertices to draw
	Draw(p *wgpu.RenderPipeline, bindGroup *wgpu.BindGroup, vertexCount uint32)

	// EndFrame ends the render pass and submits the command buffer to the GPU.
	// Does not present the surface; call Present after EndFrame.
	//
	// Returns:
	//   - error: an error if the command buffer could not be finished
	EndFrame() error

	// Present presents the surface to the display and releases the acquired
	// surface texture. Must be called once per frame after EndFrame.
	Present()

	// Release destroys the device-side bootstrap objects. The renderer must
	// not be used afterwards.
	Release()
}
