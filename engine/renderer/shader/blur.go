package shader

import (
	"fmt"

	"github.com/softlens/blurcam-go/common"
)

// UniformSlots returns the number of vec4<f32> slots the kernel uniform
// buffer holds for the given spec. Uniform arrays require 16-byte element
// alignment, so weights are packed four per slot.
//
// Parameters:
//   - spec: the kernel description
//
// Returns:
//   - int: the vec4 slot count, ceil(weightCount / 4)
func UniformSlots(spec common.KernelSpec) int {
	n := spec.Taps()
	if spec.Shape() == common.KernelShapeTable {
		n *= spec.Taps()
	}
	return (n + 3) / 4
}

// PackWeights packs a resolved weight vector into the float32 layout of the
// kernel uniform buffer: four weights per vec4 slot, zero-padded to the slot
// count baked into the shader.
//
// Parameters:
//   - weights: the resolved weight vector
//   - slots: the vec4 slot count from UniformSlots
//
// Returns:
//   - []float32: a slice of length slots*4 ready for queue upload
func PackWeights(weights []float64, slots int) []float32 {
	packed := make([]float32, slots*4)
	for i, w := range weights {
		packed[i] = float32(w)
	}
	return packed
}

// BlurCompute generates the convolution compute shader for the given kernel
// spec. The tap footprint (radius) and the uniform array size are baked into
// the WGSL; the weights themselves arrive through the kernel uniform buffer
// at binding 3 so they can be swapped at runtime without a pipeline rebuild.
//
// Each invocation resolves one output texel: invocations outside the frame
// exit without writing, in-range invocations accumulate the 2-D weighted sum
// with out-of-bounds taps clamped to the nearest edge pixel.
//
// Parameters:
//   - spec: the kernel description fixing radius and shape
//
// Returns:
//   - Shader: the generated compute shader
func BlurCompute(spec common.KernelSpec) Shader {
	weightFn, shapeTag := "return tap(kx) * tap(ky);", "sep"
	if spec.Shape() == common.KernelShapeTable {
		weightFn, shapeTag = "return tap(ky * TAPS + kx);", "tbl"
	}

	source := fmt.Sprintf(`const TAPS: i32 = %d;
const RADIUS: i32 = %d;

struct Kernel {
    weights: array<vec4<f32>, %d>,
}

@group(0) @binding(%d) var input_tex: texture_2d<f32>;
@group(0) @binding(%d) var output_tex: texture_storage_2d<rgba8unorm, write>;
@group(0) @binding(%d) var<uniform> kernel: Kernel;

fn tap(i: i32) -> f32 {
    return kernel.weights[i / 4][i %% 4];
}

fn weight_at(kx: i32, ky: i32) -> f32 {
    %s
}

@compute @workgroup_size(%d, %d, 1)
fn main(@builtin(global_invocation_id) gid: vec3<u32>) {
    let dims = textureDimensions(input_tex);
    if (gid.x >= dims.x || gid.y >= dims.y) {
        return;
    }
    let max_x = i32(dims.x) - 1;
    let max_y = i32(dims.y) - 1;
    var acc = vec4<f32>(0.0);
    for (var ky: i32 = 0; ky < TAPS; ky = ky + 1) {
        let sy = clamp(i32(gid.y) + ky - RADIUS, 0, max_y);
        for (var kx: i32 = 0; kx < TAPS; kx = kx + 1) {
            let sx = clamp(i32(gid.x) + kx - RADIUS, 0, max_x);
            acc = acc + textureLoad(input_tex, vec2<i32>(sx, sy), 0) * weight_at(kx, ky);
        }
    }
    textureStore(output_tex, vec2<i32>(i32(gid.x), i32(gid.y)), acc);
}
`,
		spec.Taps(), spec.Radius, UniformSlots(spec),
		BindingInputTexture, BindingOutputTexture, BindingKernel,
		weightFn, WorkgroupDim, WorkgroupDim)

	return &shader{
		key:           fmt.Sprintf("blur_compute_%s_r%d", shapeTag, spec.Radius),
		source:        source,
		shaderType:    ShaderTypeCompute,
		entryPoint:    "main",
		workGroupSize: [3]uint32{WorkgroupDim, WorkgroupDim, 1},
	}
}
