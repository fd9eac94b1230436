package capture

import "time"

// SyntheticOption is a functional option applied to a synthetic source during construction.
type SyntheticOption func(*syntheticSource)

// WithSize sets the frame dimensions of the synthetic source.
//
// Parameters:
//   - width: frame width in pixels (defaults to 640)
//   - height: frame height in pixels (defaults to 480)
//
// Returns:
//   - SyntheticOption: a function that applies the size option to a synthetic source
func WithSize(width, height int) SyntheticOption {
	return func(s *syntheticSource) {
		s.width = width
		s.height = height
	}
}

// WithPattern sets the generated image pattern.
//
// Parameters:
//   - pattern: one of PatternUniform, PatternImpulse, PatternGradient
//
// Returns:
//   - SyntheticOption: a function that applies the pattern option to a synthetic source
func WithPattern(pattern Pattern) SyntheticOption {
	return func(s *syntheticSource) {
		s.pattern = pattern
	}
}

// WithColor sets the RGBA color used by the uniform and impulse patterns.
//
// Parameters:
//   - r, g, b, a: color channels in 0..255
//
// Returns:
//   - SyntheticOption: a function that applies the color option to a synthetic source
func WithColor(r, g, b, a byte) SyntheticOption {
	return func(s *syntheticSource) {
		s.color = [4]byte{r, g, b, a}
	}
}

// WithFrameInterval sets the pacing between frames. Zero disables pacing,
// which tests use to avoid real sleeps.
//
// Parameters:
//   - interval: minimum duration between frames (defaults to 1/30s)
//
// Returns:
//   - SyntheticOption: a function that applies the interval option to a synthetic source
func WithFrameInterval(interval time.Duration) SyntheticOption {
	return func(s *syntheticSource) {
		s.interval = interval
	}
}
