package resource

import (
	"testing"

	"github.com/softlens/blurcam-go/common"
	"github.com/softlens/blurcam-go/engine/renderer/shader"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatchDims(t *testing.T) {
	// Exact multiples of the workgroup edge produce an exact grid.
	assert.Equal(t, [3]uint32{32, 32, 1}, DispatchDims(256, 256))
	assert.Equal(t, [3]uint32{80, 45, 1}, DispatchDims(640, 360))
	assert.Equal(t, [3]uint32{1, 1, 1}, DispatchDims(8, 8))

	// Non-multiples round up so every texel is covered.
	assert.Equal(t, [3]uint32{2, 1, 1}, DispatchDims(9, 8))
	assert.Equal(t, [3]uint32{1, 2, 1}, DispatchDims(1, 9))
	assert.Equal(t, [3]uint32{81, 2, 1}, DispatchDims(641, 9))
	assert.Equal(t, [3]uint32{1, 1, 1}, DispatchDims(1, 1))
}

// tornDownSet builds a Set in the torn-down state without touching a GPU
// device, exercising the guard paths that run before any wgpu call.
func tornDownSet(width, height int) *Set {
	return &Set{
		width:    width,
		height:   height,
		tornDown: true,
	}
}

func TestUseAfterTeardownGuards(t *testing.T) {
	s := tornDownSet(64, 64)

	frame := &common.Frame{Data: make([]byte, 64*64*common.BytesPerPixel), Width: 64, Height: 64}
	assert.ErrorIs(t, s.Upload(frame), ErrUseAfterTeardown)
	assert.ErrorIs(t, s.Dispatch(), ErrUseAfterTeardown)
	assert.ErrorIs(t, s.Present(), ErrUseAfterTeardown)
	assert.ErrorIs(t, s.SetKernel([]float64{1}), ErrUseAfterTeardown)

	// TearDown is idempotent.
	s.TearDown()
	assert.ErrorIs(t, s.Dispatch(), ErrUseAfterTeardown)
}

func TestUploadSizeMismatch(t *testing.T) {
	// The size check runs before any queue write, so a live renderer is not
	// needed to exercise the rejection paths.
	s := &Set{width: 64, height: 64}

	wrongDims := &common.Frame{Data: make([]byte, 32*32*common.BytesPerPixel), Width: 32, Height: 32}
	assert.ErrorIs(t, s.Upload(wrongDims), ErrSizeMismatch)

	shortBuffer := &common.Frame{Data: make([]byte, 64*64*common.BytesPerPixel-1), Width: 64, Height: 64}
	assert.ErrorIs(t, s.Upload(shortBuffer), ErrSizeMismatch)

	longBuffer := &common.Frame{Data: make([]byte, 64*64*common.BytesPerPixel+4), Width: 64, Height: 64}
	assert.ErrorIs(t, s.Upload(longBuffer), ErrSizeMismatch)
}

func TestSetKernelValidation(t *testing.T) {
	spec := common.KernelSpec{Radius: 1, Weights: []float64{0.25, 0.5, 0.25}}
	s := &Set{
		spec:         spec,
		weightCount:  3,
		uniformSlots: shader.UniformSlots(spec),
	}

	// Wrong count is rejected before resolution.
	err := s.SetKernel([]float64{0.5, 0.5})
	require.Error(t, err)

	// Negative weights are rejected by the kernel encoder.
	err = s.SetKernel([]float64{0.5, -0.1, 0.6})
	require.Error(t, err)
}

func TestBuildRejectsBadConfig(t *testing.T) {
	_, err := Build(nil, 0, 64, common.KernelSpec{Radius: 1, Sigma: 1})
	assert.ErrorIs(t, err, ErrBuild)

	_, err = Build(nil, 64, -1, common.KernelSpec{Radius: 1, Sigma: 1})
	assert.ErrorIs(t, err, ErrBuild)

	// Kernel validation happens before any renderer access.
	_, err = Build(nil, 64, 64, common.KernelSpec{Radius: 0})
	assert.ErrorIs(t, err, ErrBuild)
}
