package resource

import "github.com/cogentcore/webgpu/wgpu"

// BuildOption is a functional option applied to a Set during construction via Build.
type BuildOption func(*Set)

// WithLabel sets the debug label prefix attached to every GPU object the Set creates.
//
// Parameters:
//   - label: the label prefix (defaults to "Blur")
//
// Returns:
//   - BuildOption: a function that applies the label option to a Set
func WithLabel(label string) BuildOption {
	return func(s *Set) {
		s.label = label
	}
}

// WithSamplerFilter sets the minification and magnification filter modes of
// the shared sampler. The default is linear filtering for both.
//
// Parameters:
//   - mag: the magnification filter mode
//   - min: the minification filter mode
//
// Returns:
//   - BuildOption: a function that applies the sampler filter option to a Set
func WithSamplerFilter(mag, min wgpu.FilterMode) BuildOption {
	return func(s *Set) {
		s.magFilter = mag
		s.minFilter = min
	}
}
