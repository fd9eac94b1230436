package kernel

import (
	"math"
	"testing"

	"github.com/softlens/blurcam-go/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGaussianNormalization(t *testing.T) {
	for _, sigma := range []float64{0.25, 0.5, 1.0, 1.8, 3.0, 10.0} {
		for _, radius := range []int{1, 2, 4, 8, 15} {
			weights, err := Gaussian(radius, sigma)
			require.NoError(t, err, "sigma=%v radius=%d", sigma, radius)
			require.Len(t, weights, 2*radius+1)

			sum := 0.0
			for _, w := range weights {
				assert.GreaterOrEqual(t, w, 0.0)
				sum += w
			}
			assert.InDelta(t, 1.0, sum, NormalizationTolerance, "sigma=%v radius=%d", sigma, radius)
		}
	}
}

func TestGaussianSymmetry(t *testing.T) {
	weights, err := Gaussian(4, 1.5)
	require.NoError(t, err)
	for i := 0; i < len(weights)/2; i++ {
		assert.Equal(t, weights[i], weights[len(weights)-1-i])
	}
	// Center tap dominates.
	for i, w := range weights {
		if i != 4 {
			assert.Less(t, w, weights[4])
		}
	}
}

func TestGaussianParameterValidation(t *testing.T) {
	_, err := Gaussian(0, 1.0)
	assert.ErrorIs(t, err, ErrInvalidRadius)

	_, err = Gaussian(MaxRadius+1, 1.0)
	assert.ErrorIs(t, err, ErrInvalidRadius)

	_, err = Gaussian(2, 0)
	assert.ErrorIs(t, err, ErrInvalidSigma)

	_, err = Gaussian(2, -1.5)
	assert.ErrorIs(t, err, ErrInvalidSigma)

	_, err = Gaussian(2, math.NaN())
	assert.ErrorIs(t, err, ErrInvalidSigma)
}

func TestNormalize(t *testing.T) {
	// Already normalized input is passed through unchanged.
	exact := []float64{0.25, 0.5, 0.25}
	out, err := Normalize(exact)
	require.NoError(t, err)
	assert.Equal(t, exact, out)

	// Drifted input is rescaled.
	out, err = Normalize([]float64{1, 2, 1})
	require.NoError(t, err)
	assert.InDelta(t, 0.25, out[0], 1e-12)
	assert.InDelta(t, 0.5, out[1], 1e-12)

	_, err = Normalize(nil)
	assert.ErrorIs(t, err, ErrInvalidWeights)

	_, err = Normalize([]float64{0.5, 0.5})
	assert.ErrorIs(t, err, ErrInvalidWeights, "even length must be rejected")

	_, err = Normalize([]float64{0.5, -0.1, 0.6})
	assert.ErrorIs(t, err, ErrInvalidWeights)

	_, err = Normalize([]float64{0, 0, 0})
	assert.ErrorIs(t, err, ErrInvalidWeights)
}

func TestResolve(t *testing.T) {
	// Gaussian rule.
	out, err := Resolve(common.KernelSpec{Radius: 2, Sigma: 1.0})
	require.NoError(t, err)
	assert.Len(t, out, 5)

	// Explicit separable weights.
	out, err = Resolve(common.KernelSpec{Radius: 1, Weights: []float64{1, 2, 1}})
	require.NoError(t, err)
	assert.InDelta(t, 0.5, out[1], 1e-12)

	// Explicit 2-D table.
	table := make([]float64, 9)
	for i := range table {
		table[i] = 1
	}
	out, err = Resolve(common.KernelSpec{Radius: 1, Table: table})
	require.NoError(t, err)
	require.Len(t, out, 9)
	assert.InDelta(t, 1.0/9.0, out[4], 1e-12)

	// Length mismatches.
	_, err = Resolve(common.KernelSpec{Radius: 2, Weights: []float64{1, 2, 1}})
	assert.ErrorIs(t, err, ErrInvalidWeights)

	_, err = Resolve(common.KernelSpec{Radius: 2, Table: make([]float64, 9)})
	assert.ErrorIs(t, err, ErrInvalidWeights)

	// Ambiguous and empty rules.
	_, err = Resolve(common.KernelSpec{Radius: 1, Sigma: 1, Weights: []float64{1, 2, 1}})
	assert.ErrorIs(t, err, ErrInvalidWeights)

	_, err = Resolve(common.KernelSpec{Radius: 1})
	assert.ErrorIs(t, err, ErrInvalidWeights)

	_, err = Resolve(common.KernelSpec{Radius: 0, Sigma: 1})
	assert.ErrorIs(t, err, ErrInvalidRadius)
}
