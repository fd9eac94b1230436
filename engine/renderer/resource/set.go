// Package resource owns all device-side objects for one (width, height,
// kernel) configuration of the blur pipeline: the input and output textures,
// the linear sampler, the kernel uniform buffer, the bind groups, and the
// compiled compute and render pipelines. A Set is built atomically, mutated
// only through its per-tick operations, and released through TearDown.
package resource

import (
	"errors"
	"fmt"
	"sync"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/softlens/blurcam-go/common"
	"github.com/softlens/blurcam-go/engine/renderer"
	"github.com/softlens/blurcam-go/engine/renderer/kernel"
	"github.com/softlens/blurcam-go/engine/renderer/shader"
)

var (
	// ErrBuild wraps any failure during Set construction: shader compilation,
	// unsupported formats, or GPU object creation. Builds fail atomically;
	// no partially constructed Set is ever returned.
	ErrBuild = errors.New("resource set build failed")

	// ErrUnsupportedFormat indicates the runtime backend does not support the
	// texture formats this pipeline requires.
	ErrUnsupportedFormat = errors.New("unsupported texture format")

	// ErrUseAfterTeardown indicates an operation on a Set after TearDown.
	ErrUseAfterTeardown = errors.New("resource set used after teardown")

	// ErrSizeMismatch indicates a frame whose dimensions or byte length do
	// not match the Set's build-time configuration. No dynamic resize is
	// supported; the input texture is left unmodified.
	ErrSizeMismatch = errors.New("frame size mismatch")
)

// surfaceFormatSupported lists the 32-bit swap-surface formats the present
// pipeline can target.
var surfaceFormatSupported = map[wgpu.TextureFormat]bool{
	wgpu.TextureFormatBGRA8Unorm:     true,
	wgpu.TextureFormatBGRA8UnormSrgb: true,
	wgpu.TextureFormatRGBA8Unorm:     true,
	wgpu.TextureFormatRGBA8UnormSrgb: true,
}

// Set owns the GPU resources for one pipeline configuration. All methods are
// safe for use from the frame loop goroutine; the Set is not meant to be
// shared across pipeline instances.
type Set struct {
	mu sync.Mutex

	r renderer.Renderer

	width, height int
	spec          common.KernelSpec
	weightCount   int
	uniformSlots  int
	workGroups    [3]uint32

	inputTexture  *wgpu.Texture
	inputView     *wgpu.TextureView
	outputTexture *wgpu.Texture
	outputView    *wgpu.TextureView
	sampler       *wgpu.Sampler
	kernelBuffer  *wgpu.Buffer

	computeLayout    *wgpu.BindGroupLayout
	computeBindGroup *wgpu.BindGroup
	renderLayout     *wgpu.BindGroupLayout
	renderBindGroup  *wgpu.BindGroup

	computePipeline *wgpu.ComputePipeline
	renderPipeline  *wgpu.RenderPipeline

	label     string
	magFilter wgpu.FilterMode
	minFilter wgpu.FilterMode

	tornDown bool
}

// Build validates the configuration and allocates every GPU object the blur
// pipeline needs. Validation (kernel resolution, surface and storage format
// support) happens before any allocation; any later failure releases the
// objects created so far and returns an ErrBuild-wrapped error, so the build
// is atomic.
//
// Parameters:
//   - r: the bootstrapped renderer whose surface has been configured
//   - width: frame width in pixels
//   - height: frame height in pixels
//   - spec: the kernel description (radius plus Gaussian sigma or explicit weights)
//   - options: functional options (label, sampler filters)
//
// Returns:
//   - *Set: the fully constructed resource set
//   - error: an ErrBuild-wrapped error on any validation or allocation failure
func Build(r renderer.Renderer, width, height int, spec common.KernelSpec, options ...BuildOption) (*Set, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: dimensions must be positive, got %dx%d", ErrBuild, width, height)
	}

	weights, err := kernel.Resolve(spec)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBuild, err)
	}

	surfaceFormat := r.SurfaceFormat()
	if !surfaceFormatSupported[surfaceFormat] {
		return nil, fmt.Errorf("%w: %w: surface format %v", ErrBuild, ErrUnsupportedFormat, surfaceFormat)
	}

	s := &Set{
		r:            r,
		width:        width,
		height:       height,
		spec:         spec,
		weightCount:  len(weights),
		uniformSlots: shader.UniformSlots(spec),
		workGroups:   DispatchDims(width, height),
		label:        "Blur",
		magFilter:    wgpu.FilterModeLinear,
		minFilter:    wgpu.FilterModeLinear,
	}
	for _, opt := range options {
		opt(s)
	}

	if err := s.build(weights, surfaceFormat); err != nil {
		s.release()
		return nil, fmt.Errorf("%w: %v", ErrBuild, err)
	}
	return s, nil
}

// build allocates the GPU objects in dependency order. On error the caller
// releases whatever was created.
func (s *Set) build(weights []float64, surfaceFormat wgpu.TextureFormat) error {
	device := s.r.Device()

	var err error
	s.inputTexture, err = device.CreateTexture(&wgpu.TextureDescriptor{
		Label: s.label + " Input Texture",
		Size: wgpu.Extent3D{
			Width:              uint32(s.width),
			Height:             uint32(s.height),
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        wgpu.TextureFormatRGBA8Unorm,
		Usage:         wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("input texture: %w", err)
	}
	s.inputView, err = s.inputTexture.CreateView(nil)
	if err != nil {
		return fmt.Errorf("input texture view: %w", err)
	}

	s.outputTexture, err = device.CreateTexture(&wgpu.TextureDescriptor{
		Label: s.label + " Output Texture",
		Size: wgpu.Extent3D{
			Width:              uint32(s.width),
			Height:             uint32(s.height),
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        wgpu.TextureFormatRGBA8Unorm,
		Usage:         wgpu.TextureUsageStorageBinding | wgpu.TextureUsageTextureBinding,
	})
	if err != nil {
		return fmt.Errorf("output texture: %w", err)
	}
	s.outputView, err = s.outputTexture.CreateView(nil)
	if err != nil {
		return fmt.Errorf("output texture view: %w", err)
	}

	s.sampler, err = device.CreateSampler(&wgpu.SamplerDescriptor{
		Label:         s.label + " Sampler",
		AddressModeU:  wgpu.AddressModeClampToEdge,
		AddressModeV:  wgpu.AddressModeClampToEdge,
		AddressModeW:  wgpu.AddressModeClampToEdge,
		MagFilter:     s.magFilter,
		MinFilter:     s.minFilter,
		MipmapFilter:  wgpu.MipmapFilterModeNearest,
		LodMinClamp:   0.0,
		LodMaxClamp:   32.0,
		MaxAnisotropy: 1,
	})
	if err != nil {
		return fmt.Errorf("sampler: %w", err)
	}

	bufferSize := uint64(s.uniformSlots) * 16
	s.kernelBuffer, err = device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: s.label + " Kernel Buffer",
		Size:  bufferSize,
		Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("kernel buffer: %w", err)
	}
	packed := shader.PackWeights(weights, s.uniformSlots)
	s.r.Queue().WriteBuffer(s.kernelBuffer, 0, common.SliceToBytes(packed))

	if err := s.buildBindGroups(device, bufferSize); err != nil {
		return err
	}
	return s.buildPipelines(device, surfaceFormat)
}

// buildBindGroups creates the compute and render bind group layouts and
// groups. The binding indices are shared between the two pipelines: the
// texture a stage reads sits at binding 0, the storage target at 1, the
// sampler at 2, and the kernel uniform at 3. The render pass gets its own
// group because the output texture cannot be bound as a writable storage
// texture and a sampled texture in the same pass.
func (s *Set) buildBindGroups(device *wgpu.Device, bufferSize uint64) error {
	var err error
	s.computeLayout, err = device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label: s.label + " Compute Bind Group Layout",
		Entries: []wgpu.BindGroupLayoutEntry{
			{
				Binding:    shader.BindingInputTexture,
				Visibility: wgpu.ShaderStageCompute,
				Texture: wgpu.TextureBindingLayout{
					SampleType:    wgpu.TextureSampleTypeFloat,
					ViewDimension: wgpu.TextureViewDimension2D,
				},
			},
			{
				Binding:    shader.BindingOutputTexture,
				Visibility: wgpu.ShaderStageCompute,
				StorageTexture: wgpu.StorageTextureBindingLayout{
					Access:        wgpu.StorageTextureAccessWriteOnly,
					Format:        wgpu.TextureFormatRGBA8Unorm,
					ViewDimension: wgpu.TextureViewDimension2D,
				},
			},
			{
				Binding:    shader.BindingKernel,
				Visibility: wgpu.ShaderStageCompute,
				Buffer: wgpu.BufferBindingLayout{
					Type:           wgpu.BufferBindingTypeUniform,
					MinBindingSize: bufferSize,
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("compute bind group layout: %w", err)
	}

	s.computeBindGroup, err = device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  s.label + " Compute Bind Group",
		Layout: s.computeLayout,
		Entries: []wgpu.BindGroupEntry{
			{Binding: shader.BindingInputTexture, TextureView: s.inputView},
			{Binding: shader.BindingOutputTexture, TextureView: s.outputView},
			{Binding: shader.BindingKernel, Buffer: s.kernelBuffer, Offset: 0, Size: wgpu.WholeSize},
		},
	})
	if err != nil {
		return fmt.Errorf("compute bind group: %w", err)
	}

	s.renderLayout, err = device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label: s.label + " Render Bind Group Layout",
		Entries: []wgpu.BindGroupLayoutEntry{
			{
				Binding:    shader.BindingInputTexture,
				Visibility: wgpu.ShaderStageFragment,
				Texture: wgpu.TextureBindingLayout{
					SampleType:    wgpu.TextureSampleTypeFloat,
					ViewDimension: wgpu.TextureViewDimension2D,
				},
			},
			{
				Binding:    shader.BindingSampler,
				Visibility: wgpu.ShaderStageFragment,
				Sampler: wgpu.SamplerBindingLayout{
					Type: wgpu.SamplerBindingTypeFiltering,
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("render bind group layout: %w", err)
	}

	s.renderBindGroup, err = device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  s.label + " Render Bind Group",
		Layout: s.renderLayout,
		Entries: []wgpu.BindGroupEntry{
			{Binding: shader.BindingInputTexture, TextureView: s.outputView},
			{Binding: shader.BindingSampler, Sampler: s.sampler},
		},
	})
	if err != nil {
		return fmt.Errorf("render bind group: %w", err)
	}

	return nil
}

// buildPipelines compiles the WGSL programs and creates both pipelines. The
// render pipeline's color target must match the configured surface format
// exactly or creation fails.
func (s *Set) buildPipelines(device *wgpu.Device, surfaceFormat wgpu.TextureFormat) error {
	computeShader := shader.BlurCompute(s.spec)
	computeModule, err := device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label: computeShader.Key(),
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{
			Code: computeShader.Source(),
		},
	})
	if err != nil {
		return fmt.Errorf("compute shader module: %w", err)
	}
	defer computeModule.Release()

	computePipelineLayout, err := device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            s.label + " Compute Pipeline Layout",
		BindGroupLayouts: []*wgpu.BindGroupLayout{s.computeLayout},
	})
	if err != nil {
		return fmt.Errorf("compute pipeline layout: %w", err)
	}
	defer computePipelineLayout.Release()

	s.computePipeline, err = device.CreateComputePipeline(&wgpu.ComputePipelineDescriptor{
		Label:  s.label + " Compute Pipeline",
		Layout: computePipelineLayout,
		Compute: wgpu.ProgrammableStageDescriptor{
			Module:     computeModule,
			EntryPoint: computeShader.EntryPoint(),
		},
	})
	if err != nil {
		return fmt.Errorf("compute pipeline: %w", err)
	}

	vertexShader := shader.PresentVertex()
	fragmentShader := shader.PresentFragment()

	// Both present stages live in one module.
	presentModule, err := device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label: "present",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{
			Code: vertexShader.Source(),
		},
	})
	if err != nil {
		return fmt.Errorf("present shader module: %w", err)
	}
	defer presentModule.Release()

	renderPipelineLayout, err := device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            s.label + " Render Pipeline Layout",
		BindGroupLayouts: []*wgpu.BindGroupLayout{s.renderLayout},
	})
	if err != nil {
		return fmt.Errorf("render pipeline layout: %w", err)
	}
	defer renderPipelineLayout.Release()

	s.renderPipeline, err = device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  s.label + " Render Pipeline",
		Layout: renderPipelineLayout,
		Vertex: wgpu.VertexState{
			Module:     presentModule,
			EntryPoint: vertexShader.EntryPoint(),
		},
		Fragment: &wgpu.FragmentState{
			Module:     presentModule,
			EntryPoint: fragmentShader.EntryPoint(),
			Targets: []wgpu.ColorTargetState{
				{
					Format:    surfaceFormat,
					WriteMask: wgpu.ColorWriteMaskAll,
				},
			},
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  wgpu.PrimitiveTopologyTriangleList,
			FrontFace: wgpu.FrontFaceCCW,
			CullMode:  wgpu.CullModeNone,
		},
		Multisample: wgpu.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return fmt.Errorf("render pipeline: %w", err)
	}

	return nil
}

// Upload copies one host-side RGBA frame into the input texture with a row
// pitch of width*4 bytes. The frame is validated before any queue write, so a
// mismatched frame leaves the input texture unmodified. Queue ordering
// serializes the upload before the same tick's compute dispatch.
//
// Parameters:
//   - frame: the frame to upload; dimensions must match the build configuration
//
// Returns:
//   - error: ErrUseAfterTeardown, or ErrSizeMismatch when the frame does not
//     match the configured size
func (s *Set) Upload(frame *common.Frame) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.tornDown {
		return ErrUseAfterTeardown
	}
	if frame.Width != s.width || frame.Height != s.height {
		return fmt.Errorf("%w: got %dx%d, configured %dx%d", ErrSizeMismatch, frame.Width, frame.Height, s.width, s.height)
	}
	if err := frame.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrSizeMismatch, err)
	}

	s.r.Queue().WriteTexture(
		&wgpu.ImageCopyTexture{
			Texture:  s.inputTexture,
			MipLevel: 0,
			Origin:   wgpu.Origin3D{},
			Aspect:   wgpu.TextureAspectAll,
		},
		frame.Data,
		&wgpu.TextureDataLayout{
			Offset:       0,
			BytesPerRow:  uint32(s.width) * common.BytesPerPixel,
			RowsPerImage: uint32(s.height),
		},
		&wgpu.Extent3D{
			Width:              uint32(s.width),
			Height:             uint32(s.height),
			DepthOrArrayLayers: 1,
		},
	)
	return nil
}

// Dispatch submits the convolution compute pass over the workgroup grid
// covering the frame. Each invocation writes exactly one output texel; the
// output is reproducible on a single device but not bit-portable across
// hardware (accumulation order differs).
//
// Returns:
//   - error: ErrUseAfterTeardown, or a submission failure
func (s *Set) Dispatch() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.tornDown {
		return ErrUseAfterTeardown
	}
	return s.r.DispatchCompute(s.computePipeline, s.computeBindGroup, s.workGroups)
}

// Present draws the fullscreen quad sampling the blurred output texture onto
// the current surface frame and presents it.
//
// Returns:
//   - error: ErrUseAfterTeardown, or a surface acquisition/submission failure
func (s *Set) Present() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.tornDown {
		return ErrUseAfterTeardown
	}
	if err := s.r.BeginFrame(); err != nil {
		return err
	}
	s.r.Draw(s.renderPipeline, s.renderBindGroup, shader.QuadVertexCount)
	if err := s.r.EndFrame(); err != nil {
		return err
	}
	s.r.Present()
	return nil
}

// SetKernel replaces the convolution weights without rebuilding pipelines.
// The weight count must match the Set's build-time shape: 2r+1 weights for a
// separable kernel, (2r+1)^2 for an explicit table. Weights are validated and
// renormalized exactly like build-time weights. The footprint (radius) is
// baked into the shader, so changing it still requires a new Set.
//
// Parameters:
//   - weights: the replacement weight vector
//
// Returns:
//   - error: ErrUseAfterTeardown, or a validation failure
func (s *Set) SetKernel(weights []float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.tornDown {
		return ErrUseAfterTeardown
	}
	if len(weights) != s.weightCount {
		return fmt.Errorf("%w: got %d weights, shader expects %d", kernel.ErrInvalidWeights, len(weights), s.weightCount)
	}
	resolved, err := kernel.Resolve(common.KernelSpec{
		Radius:  s.spec.Radius,
		Weights: pick(s.spec.Shape() == common.KernelShapeSeparable, weights, nil),
		Table:   pick(s.spec.Shape() == common.KernelShapeTable, weights, nil),
	})
	if err != nil {
		return err
	}

	packed := shader.PackWeights(resolved, s.uniformSlots)
	s.r.Queue().WriteBuffer(s.kernelBuffer, 0, common.SliceToBytes(packed))
	return nil
}

// pick returns a when cond is true, otherwise b.
func pick[T any](cond bool, a, b T) T {
	if cond {
		return a
	}
	return b
}

// Width returns the configured frame width in pixels.
func (s *Set) Width() int { return s.width }

// Height returns the configured frame height in pixels.
func (s *Set) Height() int { return s.height }

// WorkGroupCount returns the dispatch grid computed at build time.
func (s *Set) WorkGroupCount() [3]uint32 { return s.workGroups }

// TearDown releases every GPU handle the Set owns, in dependency order:
// pipelines, bind groups, bind group layouts, the kernel buffer, texture
// views, textures, and finally the sampler. Idempotent; after teardown every
// other method fails with ErrUseAfterTeardown.
func (s *Set) TearDown() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.tornDown {
		return
	}
	s.release()
	s.tornDown = true
}

// release frees whatever handles are currently held. Called by TearDown and
// by Build's atomic-failure path.
func (s *Set) release() {
	if s.computePipeline != nil {
		s.computePipeline.Release()
		s.computePipeline = nil
	}
	if s.renderPipeline != nil {
		s.renderPipeline.Release()
		s.renderPipeline = nil
	}
	if s.computeBindGroup != nil {
		s.computeBindGroup.Release()
		s.computeBindGroup = nil
	}
	if s.renderBindGroup != nil {
		s.renderBindGroup.Release()
		s.renderBindGroup = nil
	}
	if s.computeLayout != nil {
		s.computeLayout.Release()
		s.computeLayout = nil
	}
	if s.renderLayout != nil {
		s.renderLayout.Release()
		s.renderLayout = nil
	}
	if s.kernelBuffer != nil {
		s.kernelBuffer.Release()
		s.kernelBuffer = nil
	}
	if s.inputView != nil {
		s.inputView.Release()
		s.inputView = nil
	}
	if s.outputView != nil {
		s.outputView.Release()
		s.outputView = nil
	}
	if s.inputTexture != nil {
		s.inputTexture.Release()
		s.inputTexture = nil
	}
	if s.outputTexture != nil {
		s.outputTexture.Release()
		s.outputTexture = nil
	}
	if s.sampler != nil {
		s.sampler.Release()
		s.sampler = nil
	}
}
