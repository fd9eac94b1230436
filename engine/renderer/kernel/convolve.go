package kernel

import (
	"math"

	"github.com/softlens/blurcam-go/common"
)

// Convolve is the CPU reference for the blur compute shader. It evaluates the
// same 2-D weighted sum the shader performs: texels are read as v/255 floats,
// out-of-bounds taps clamp to the nearest edge pixel (replicate-edge policy),
// and the accumulated value is stored as round(clamp(acc, 0, 1) * 255) per
// channel, matching an rgba8unorm textureStore.
//
// The GPU result is only guaranteed to match this reference modulo hardware
// floating-point accumulation order; on a single device and driver the shader
// output is reproducible run to run, but not bit-portable across hardware.
//
// Parameters:
//   - src: the source frame; must satisfy Frame.Validate
//   - spec: the kernel to apply; resolved via Resolve
//
// Returns:
//   - *common.Frame: a newly allocated blurred frame of the same dimensions
//   - error: frame validation or kernel resolution failure
func Convolve(src *common.Frame, spec common.KernelSpec) (*common.Frame, error) {
	if err := src.Validate(); err != nil {
		return nil, err
	}
	weights, err := Resolve(spec)
	if err != nil {
		return nil, err
	}

	taps := spec.Taps()
	weight2D := func(kx, ky int) float64 {
		if spec.Shape() == common.KernelShapeTable {
			return weights[ky*taps+kx]
		}
		return weights[kx] * weights[ky]
	}

	w, h := src.Width, src.Height
	dst := &common.Frame{
		Data:      make([]byte, len(src.Data)),
		Width:     w,
		Height:    h,
		Timestamp: src.Timestamp,
		Seq:       src.Seq,
	}

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var acc [4]float64
			for ky := 0; ky < taps; ky++ {
				sy := clampInt(y+ky-spec.Radius, 0, h-1)
				for kx := 0; kx < taps; kx++ {
					sx := clampInt(x+kx-spec.Radius, 0, w-1)
					wgt := weight2D(kx, ky)
					off := (sy*w + sx) * common.BytesPerPixel
					for c := 0; c < 4; c++ {
						acc[c] += float64(src.Data[off+c]) / 255.0 * wgt
					}
				}
			}
			off := (y*w + x) * common.BytesPerPixel
			for c := 0; c < 4; c++ {
				dst.Data[off+c] = quantize(acc[c])
			}
		}
	}
	return dst, nil
}

// quantize stores a normalized channel value the way rgba8unorm does:
// clamp to [0, 1], scale to 255, round half away from zero.
func quantize(v float64) byte {
	if v <= 0 {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return byte(math.Round(v * 255.0))
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
