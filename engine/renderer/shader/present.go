package shader

import "fmt"

// presentSource is the fullscreen present program: a fixed two-triangle quad
// covering normalized device coordinates -1..1 whose fragment stage samples
// the blurred output texture at the fragment's normalized position.
// UVs flip Y so texel row 0 lands at the top of the surface.
var presentSource = fmt.Sprintf(`struct VertexOut {
    @builtin(position) pos: vec4<f32>,
    @location(0) uv: vec2<f32>,
}

@vertex
fn vs_main(@builtin(vertex_index) idx: u32) -> VertexOut {
    var corners = array<vec2<f32>, 6>(
        vec2<f32>(-1.0, -1.0), vec2<f32>(1.0, -1.0), vec2<f32>(-1.0, 1.0),
        vec2<f32>(-1.0, 1.0), vec2<f32>(1.0, -1.0), vec2<f32>(1.0, 1.0),
    );
    var out: VertexOut;
    let p = corners[idx];
    out.pos = vec4<f32>(p, 0.0, 1.0);
    out.uv = vec2<f32>(0.5 * (p.x + 1.0), 0.5 * (1.0 - p.y));
    return out;
}

@group(0) @binding(%d) var blurred_tex: texture_2d<f32>;
@group(0) @binding(%d) var linear_samp: sampler;

@fragment
fn fs_main(in: VertexOut) -> @location(0) vec4<f32> {
    return textureSample(blurred_tex, linear_samp, in.uv);
}
`, BindingInputTexture, BindingSampler)

// QuadVertexCount is the vertex count of the fullscreen two-triangle quad.
const QuadVertexCount = 6

// PresentVertex returns the fullscreen quad vertex shader.
//
// Returns:
//   - Shader: the vertex stage of the present pass
func PresentVertex() Shader {
	return &shader{
		key:        "present_vert",
		source:     presentSource,
		shaderType: ShaderTypeVertex,
		entryPoint: "vs_main",
	}
}

// PresentFragment returns the fragment shader sampling the blurred output.
//
// Returns:
//   - Shader: the fragment stage of the present pass
func PresentFragment() Shader {
	return &shader{
		key:        "present_frag",
		source:     presentSource,
		shaderType: ShaderTypeFragment,
		entryPoint: "fs_main",
	}
}
