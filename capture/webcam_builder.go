package capture

// WebcamOption is a functional option applied to a webcam source during construction.
type WebcamOption func(*webcamSource, *int)

// WithRequestedSize asks the capture device for the given frame dimensions.
// Drivers are free to clamp or ignore the request; the negotiated size is
// reported by Width and Height after construction.
//
// Parameters:
//   - width: requested frame width in pixels (defaults to 1280)
//   - height: requested frame height in pixels (defaults to 720)
//
// Returns:
//   - WebcamOption: a function that applies the size request to a webcam source
func WithRequestedSize(width, height int) WebcamOption {
	return func(s *webcamSource, _ *int) {
		s.width = width
		s.height = height
	}
}

// WithConversionWorkers sets the number of workers in the color-conversion
// pool.
//
// Parameters:
//   - n: worker count (defaults to 2)
//
// Returns:
//   - WebcamOption: a function that applies the worker count to a webcam source
func WithConversionWorkers(n int) WebcamOption {
	return func(_ *webcamSource, workers *int) {
		if n > 0 {
			*workers = n
		}
	}
}
