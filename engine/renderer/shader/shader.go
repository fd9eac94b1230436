// Package shader generates and wraps the WGSL programs used by the blur
// pipeline: the convolution compute shader and the fullscreen present pass.
// All sources are generated, so bind group layouts are known statically and
// no shader parsing is required.
package shader

// ShaderType identifies whether a shader is a render shader or a compute shader.
type ShaderType int

const (
	// ShaderTypeCompute indicates a shader containing a @compute entry point.
	ShaderTypeCompute ShaderType = iota

	// ShaderTypeVertex is the vertex shader type, used for vertex processing in render pipelines.
	ShaderTypeVertex

	// ShaderTypeFragment is the fragment shader type, used for fragment processing in pair with a vertex shader.
	ShaderTypeFragment
)

// Fixed binding indices shared by the compute and render bind groups.
// The compute group binds the input texture at 0 and writes the output
// storage texture at 1; the render group samples the output texture at 0.
// The sampler always lives at 2 and the kernel uniform buffer at 3.
const (
	BindingInputTexture  = 0
	BindingOutputTexture = 1
	BindingSampler       = 2
	BindingKernel        = 3
)

// WorkgroupDim is the compute workgroup edge length; dispatches cover the
// frame with ceil(width/WorkgroupDim) x ceil(height/WorkgroupDim) groups.
const WorkgroupDim = 8

// shader is the implementation of the Shader interface holding a generated
// WGSL program and its pipeline-facing metadata.
type shader struct {
	key           string
	source        string
	shaderType    ShaderType
	entryPoint    string
	workGroupSize [3]uint32
}

// Shader describes a generated WGSL program: its cache key, source code,
// entry point, and (for compute shaders) workgroup size.
type Shader interface {
	// Key retrieves the unique identifier for this shader, used for labels and caching.
	//
	// Returns:
	//   - string: the shader's unique key
	Key() string

	// Source retrieves the WGSL shader source code.
	//
	// Returns:
	//   - string: the WGSL source code of the shader
	Source() string

	// Type returns the shader stage this program targets.
	//
	// Returns:
	//   - ShaderType: compute, vertex, or fragment
	Type() ShaderType

	// EntryPoint returns the entry point function name for this shader.
	//
	// Returns:
	//   - string: the entry point name (e.g. "main")
	EntryPoint() string

	// WorkGroupSize returns the compute workgroup dimensions. Zero for
	// non-compute shaders.
	//
	// Returns:
	//   - [3]uint32: the x, y, z workgroup dimensions
	WorkGroupSize() [3]uint32
}

var _ Shader = &shader{}

func (s *shader) Key() string {
	return s.key
}

func (s *shader) Source() string {
	return s.source
}

func (s *shader) Type() ShaderType {
	return s.shaderType
}

func (s *shader) EntryPoint() string {
	return s.entryPoint
}

func (s *shader) WorkGroupSize() [3]uint32 {
	return s.workGroupSize
}
