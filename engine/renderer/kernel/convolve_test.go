package kernel

import (
	"math"
	"testing"

	"github.com/softlens/blurcam-go/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// specKernel is the 9-tap separable reference kernel from the end-to-end
// blur scenario (sigma ≈ 1, radius 4).
var specKernel = []float64{0.000229, 0.005977, 0.060598, 0.241732, 0.382928, 0.241732, 0.060598, 0.005977, 0.000229}

func uniformFrame(w, h int, r, g, b, a byte) *common.Frame {
	f := &common.Frame{Data: make([]byte, w*h*common.BytesPerPixel), Width: w, Height: h}
	for i := 0; i < len(f.Data); i += common.BytesPerPixel {
		f.Data[i+0] = r
		f.Data[i+1] = g
		f.Data[i+2] = b
		f.Data[i+3] = a
	}
	return f
}

func TestConvolveFlatFieldInvariance(t *testing.T) {
	// Boundary clamping preserves flat fields exactly: convolving a uniform
	// frame with any normalized kernel returns the same constant color.
	src := uniformFrame(17, 11, 123, 45, 67, 255)

	for _, spec := range []common.KernelSpec{
		{Radius: 3, Sigma: 2.0},
		{Radius: 1, Weights: []float64{1, 2, 1}},
		{Radius: 4, Weights: specKernel},
	} {
		dst, err := Convolve(src, spec)
		require.NoError(t, err)
		assert.Equal(t, src.Data, dst.Data, "radius=%d", spec.Radius)
	}
}

func TestConvolveIdempotentPerTick(t *testing.T) {
	// Re-running the same convolution on the same input must be bit-identical.
	src := uniformFrame(32, 32, 200, 100, 50, 255)
	src.Data[(16*32+16)*common.BytesPerPixel] = 0

	spec := common.KernelSpec{Radius: 2, Sigma: 1.2}
	first, err := Convolve(src, spec)
	require.NoError(t, err)
	second, err := Convolve(src, spec)
	require.NoError(t, err)
	assert.Equal(t, first.Data, second.Data)
}

func TestConvolveWhiteFrameScenario(t *testing.T) {
	// 256x256 pure white stays pure white within ±1 per channel.
	src := uniformFrame(256, 256, 255, 255, 255, 255)
	dst, err := Convolve(src, common.KernelSpec{Radius: 4, Weights: specKernel})
	require.NoError(t, err)
	for i, v := range dst.Data {
		require.GreaterOrEqual(t, int(v), 254, "byte %d", i)
	}
}

func TestConvolveImpulseScenario(t *testing.T) {
	// Single black pixel on a white field: the blurred neighborhood follows
	// the kernel's outer product exactly.
	const w, h = 256, 256
	const cx, cy = 128, 128
	src := uniformFrame(w, h, 255, 255, 255, 255)
	off := (cy*w + cx) * common.BytesPerPixel
	src.Data[off+0] = 0
	src.Data[off+1] = 0
	src.Data[off+2] = 0

	spec := common.KernelSpec{Radius: 4, Weights: specKernel}
	dst, err := Convolve(src, spec)
	require.NoError(t, err)

	expectAt := func(dx, dy int) byte {
		kx := 4 - dx
		ky := 4 - dy
		if kx < 0 || kx > 8 || ky < 0 || ky > 8 {
			return 255
		}
		return byte(math.Round(255.0 * (1.0 - specKernel[kx]*specKernel[ky])))
	}

	for _, d := range [][2]int{{0, 0}, {1, 0}, {0, 1}, {-1, -1}, {2, 0}, {0, -3}, {4, 4}, {5, 0}} {
		x, y := cx+d[0], cy+d[1]
		got := dst.Data[(y*w+x)*common.BytesPerPixel]
		assert.Equal(t, expectAt(d[0], d[1]), got, "offset (%d,%d)", d[0], d[1])
	}

	// Alpha was untouched by the impulse and stays opaque.
	assert.EqualValues(t, 255, dst.Data[off+3])
}

func TestConvolveRejectsBadInput(t *testing.T) {
	bad := &common.Frame{Data: make([]byte, 10), Width: 4, Height: 4}
	_, err := Convolve(bad, common.KernelSpec{Radius: 1, Sigma: 1})
	assert.Error(t, err)

	src := uniformFrame(4, 4, 0, 0, 0, 255)
	_, err = Convolve(src, common.KernelSpec{Radius: 0})
	assert.ErrorIs(t, err, ErrInvalidRadius)
}
