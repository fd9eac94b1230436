package renderer

// RendererBuilderOption is a functional option applied to a renderer during construction via NewRenderer.
type RendererBuilderOption func(*wgpuRenderer)

// WithPresentMode sets the surface present mode which controls how frames are delivered to the display.
//
// Parameters:
//   - mode: the PresentMode to use (VSync or Uncapped)
//
// Returns:
//   - RendererBuilderOption: a function that applies the present mode option to a renderer
func WithPresentMode(mode PresentMode) RendererBuilderOption {
	return func(r *wgpuRenderer) {
		switch mode {
		case PresentModeVSync:
			r.presentMode = presentModeFifo
		case PresentModeUncapped:
			fallthrough
		default:
			r.presentMode = presentModeImmediate
		}
	}
}

// WithForceSoftwareRenderer forces WGPU to use a CPU/software fallback adapter instead of
// hardware GPU acceleration. This requires a software Vulkan ICD to be installed on the system
// (e.g. SwiftShader or lavapipe).
//
// Parameters:
//   - force: true to force the software fallback adapter, false to use hardware (default)
//
// Returns:
//   - RendererBuilderOption: a function that applies the force software renderer option to a renderer
func WithForceSoftwareRenderer(force bool) RendererBuilderOption {
	return func(r *wgpuRenderer) {
		r.forceFallbackAdapter = force
	}
}

// WithDeviceLabel sets the debug label attached to the WebGPU device.
//
// Parameters:
//   - label: the device label
//
// Returns:
//   - RendererBuilderOption: a function that applies the device label option to a renderer
func WithDeviceLabel(label string) RendererBuilderOption {
	return func(r *wgpuRenderer) {
		r.deviceLabel = label
	}
}
