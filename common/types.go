// package common contains common types that are used throughout this pipeline. They are not interface-wrapped structs, just plain structs that express
// commonly used data-types.
package common

import (
	"fmt"
	"time"
)

// BytesPerPixel is the size of one packed RGBA pixel.
const BytesPerPixel = 4

// Frame is one captured camera image pending GPU upload.
// Data is packed 8-bit RGBA, row-major, no row padding. A frame is produced
// once per capture tick, consumed by exactly one upload, then discarded.
//
// Data must not be modified after the frame has been published to a Mailbox;
// it is shared by reference between the capture goroutine and the frame loop.
type Frame struct {
	// Data is the packed RGBA pixel buffer. Length must equal Width*Height*4.
	Data []byte

	// Width is the frame width in pixels.
	Width int

	// Height is the frame height in pixels.
	Height int

	// Timestamp is the capture time at the source, not the processing time.
	Timestamp time.Time

	// Seq is a monotonically increasing sequence number assigned by the
	// capture source, used for drop accounting.
	Seq uint64
}

// Validate checks the frame's buffer-length invariant.
//
// Returns:
//   - error: an error describing the violation, or nil if the frame is well-formed
func (f *Frame) Validate() error {
	if f.Width <= 0 || f.Height <= 0 {
		return fmt.Errorf("frame dimensions must be positive, got %dx%d", f.Width, f.Height)
	}
	if want := f.Width * f.Height * BytesPerPixel; len(f.Data) != want {
		return fmt.Errorf("frame buffer length %d does not match %dx%dx%d = %d", len(f.Data), f.Width, f.Height, BytesPerPixel, want)
	}
	return nil
}

// KernelShape selects how the convolution weights are interpreted by the blur shader.
type KernelShape int

const (
	// KernelShapeSeparable applies a 1-D weight vector as a 2-D outer product:
	// weight(x, y) = k[x] * k[y].
	KernelShapeSeparable KernelShape = iota

	// KernelShapeTable applies an explicit 2-D weight table of (2r+1)^2 entries.
	KernelShapeTable
)

// KernelSpec is the build-time description of the convolution kernel.
// Exactly one weight-generation rule applies: Sigma > 0 derives a Gaussian,
// otherwise Weights (1-D, separable) or Table (explicit 2-D) must be supplied.
// The radius fixes the shader's tap footprint; changing it requires rebuilding
// the resource set.
type KernelSpec struct {
	// Radius is the kernel radius r; the tap count per axis is 2r+1.
	Radius int

	// Sigma is the Gaussian standard deviation. Zero means explicit weights.
	Sigma float64

	// Weights is an explicit 1-D weight vector of length 2r+1 (separable shape).
	Weights []float64

	// Table is an explicit 2-D weight table of length (2r+1)^2.
	Table []float64
}

// Shape reports whether the spec describes a separable 1-D kernel or an
// explicit 2-D table.
//
// Returns:
//   - KernelShape: KernelShapeTable when an explicit table is set, KernelShapeSeparable otherwise
func (s KernelSpec) Shape() KernelShape {
	if len(s.Table) > 0 {
		return KernelShapeTable
	}
	return KernelShapeSeparable
}

// Taps returns the per-axis tap count 2r+1.
//
// Returns:
//   - int: the number of taps along one axis
func (s KernelSpec) Taps() int {
	return 2*s.Radius + 1
}
