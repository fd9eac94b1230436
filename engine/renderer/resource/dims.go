package resource

import "github.com/softlens/blurcam-go/engine/renderer/shader"

// DispatchDims computes the compute-dispatch workgroup grid covering a
// width x height frame with 8x8 workgroups: ceil(width/8) x ceil(height/8) x 1.
// For dimensions that are exact multiples of 8 the grid is exact; otherwise
// the shader's bounds guard turns over-dispatched invocations into no-ops.
//
// Parameters:
//   - width: frame width in pixels
//   - height: frame height in pixels
//
// Returns:
//   - [3]uint32: workgroup counts in x, y, z
func DispatchDims(width, height int) [3]uint32 {
	return [3]uint32{
		uint32((width + shader.WorkgroupDim - 1) / shader.WorkgroupDim),
		uint32((height + shader.WorkgroupDim - 1) / shader.WorkgroupDim),
		1,
	}
}
