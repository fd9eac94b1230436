// Package kernel builds and validates the convolution weight vectors consumed
// by the blur compute shader. Weights are resolved once at resource-set build
// time; the GPU receives them through a uniform buffer, so only the tap
// footprint (radius) is baked into the shader itself.
package kernel

import (
	"errors"
	"fmt"
	"math"

	"github.com/softlens/blurcam-go/common"
)

// NormalizationTolerance is the maximum allowed drift of a weight vector's sum
// from 1.0 before it is renormalized.
const NormalizationTolerance = 1e-6

// MaxRadius bounds the kernel radius so an explicit 2-D table always fits the
// default 64 KiB uniform buffer limit with vec4 packing.
const MaxRadius = 15

var (
	// ErrInvalidRadius indicates a kernel radius outside [1, MaxRadius].
	ErrInvalidRadius = errors.New("kernel radius out of range")

	// ErrInvalidSigma indicates a non-positive Gaussian sigma.
	ErrInvalidSigma = errors.New("gaussian sigma must be positive")

	// ErrInvalidWeights indicates a weight vector that is empty, of even or
	// mismatched length, negative-valued, or with a non-positive sum.
	ErrInvalidWeights = errors.New("invalid kernel weights")
)

// Gaussian produces a normalized 1-D Gaussian weight vector of length 2r+1.
// The weights are symmetric around the center tap and sum to 1.0 within
// NormalizationTolerance.
//
// Parameters:
//   - radius: the kernel radius r (1..MaxRadius)
//   - sigma: the Gaussian standard deviation (> 0)
//
// Returns:
//   - []float64: the normalized weight vector of length 2r+1
//   - error: ErrInvalidRadius or ErrInvalidSigma on bad parameters
func Gaussian(radius int, sigma float64) ([]float64, error) {
	if radius < 1 || radius > MaxRadius {
		return nil, fmt.Errorf("%w: %d (want 1..%d)", ErrInvalidRadius, radius, MaxRadius)
	}
	if sigma <= 0 || math.IsNaN(sigma) || math.IsInf(sigma, 0) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSigma, sigma)
	}

	weights := make([]float64, 2*radius+1)
	denom := 2 * sigma * sigma
	for i := range weights {
		x := float64(i - radius)
		weights[i] = math.Exp(-(x * x) / denom)
	}
	return Normalize(weights)
}

// Normalize validates a weight vector and rescales it to sum to 1.0 when the
// sum drifts from 1.0 by more than NormalizationTolerance. Already-normalized
// input is returned unchanged.
//
// Parameters:
//   - weights: the weight vector to normalize; must be non-empty, odd-length, and non-negative
//
// Returns:
//   - []float64: the normalized weight vector (same slice when no rescale was needed)
//   - error: ErrInvalidWeights when the vector cannot be normalized
func Normalize(weights []float64) ([]float64, error) {
	if len(weights) == 0 || len(weights)%2 == 0 {
		return nil, fmt.Errorf("%w: length %d must be odd and non-zero", ErrInvalidWeights, len(weights))
	}

	sum := 0.0
	for i, w := range weights {
		if w < 0 || math.IsNaN(w) || math.IsInf(w, 0) {
			return nil, fmt.Errorf("%w: weight[%d] = %v", ErrInvalidWeights, i, w)
		}
		sum += w
	}
	if sum <= 0 {
		return nil, fmt.Errorf("%w: sum %v is not positive", ErrInvalidWeights, sum)
	}

	if math.Abs(sum-1.0) <= NormalizationTolerance {
		return weights, nil
	}

	normalized := make([]float64, len(weights))
	for i, w := range weights {
		normalized[i] = w / sum
	}
	return normalized, nil
}

// Resolve turns a KernelSpec into the flat weight vector the resource set
// uploads to the kernel uniform buffer. Separable specs yield a vector of
// length 2r+1; explicit tables yield (2r+1)^2 entries. Gaussian specs are
// generated, explicit weights are validated and renormalized as needed.
//
// Parameters:
//   - spec: the build-time kernel description
//
// Returns:
//   - []float64: the resolved, normalized weight vector
//   - error: ErrInvalidRadius, ErrInvalidSigma, or ErrInvalidWeights on a bad spec
func Resolve(spec common.KernelSpec) ([]float64, error) {
	if spec.Radius < 1 || spec.Radius > MaxRadius {
		return nil, fmt.Errorf("%w: %d (want 1..%d)", ErrInvalidRadius, spec.Radius, MaxRadius)
	}
	taps := spec.Taps()

	switch {
	case spec.Sigma != 0:
		if len(spec.Weights) != 0 || len(spec.Table) != 0 {
			return nil, fmt.Errorf("%w: gaussian spec must not also carry explicit weights", ErrInvalidWeights)
		}
		return Gaussian(spec.Radius, spec.Sigma)

	case len(spec.Table) > 0:
		if len(spec.Table) != taps*taps {
			return nil, fmt.Errorf("%w: table length %d does not match (2r+1)^2 = %d", ErrInvalidWeights, len(spec.Table), taps*taps)
		}
		return normalizeTable(spec.Table)

	case len(spec.Weights) > 0:
		if len(spec.Weights) != taps {
			return nil, fmt.Errorf("%w: weight length %d does not match 2r+1 = %d", ErrInvalidWeights, len(spec.Weights), taps)
		}
		return Normalize(spec.Weights)

	default:
		return nil, fmt.Errorf("%w: spec carries neither sigma nor explicit weights", ErrInvalidWeights)
	}
}

// normalizeTable is Normalize without the odd-length requirement, since a 2-D
// table has (2r+1)^2 entries which is odd anyway but is validated by Resolve.
func normalizeTable(table []float64) ([]float64, error) {
	sum := 0.0
	for i, w := range table {
		if w < 0 || math.IsNaN(w) || math.IsInf(w, 0) {
			return nil, fmt.Errorf("%w: table[%d] = %v", ErrInvalidWeights, i, w)
		}
		sum += w
	}
	if sum <= 0 {
		return nil, fmt.Errorf("%w: table sum %v is not positive", ErrInvalidWeights, sum)
	}
	if math.Abs(sum-1.0) <= NormalizationTolerance {
		return table, nil
	}
	normalized := make([]float64, len(table))
	for i, w := range table {
		normalized[i] = w / sum
	}
	return normalized, nil
}
