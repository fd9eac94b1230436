package engine

// State is the frame loop's position in the per-frame cycle. The loop moves
// through the capture and GPU stages in order and returns to StateIdle after
// each presented frame; StateFaulted is terminal.
type State int

const (
	// StateIdle means no frame is in flight.
	StateIdle State = iota
	// StateCaptureRequested means the loop is checking for a new frame.
	StateCaptureRequested
	// StateFrameReady means a captured frame is in hand, not yet uploaded.
	StateFrameReady
	// StateUploading means the frame's pixels are being written to the GPU.
	StateUploading
	// StateComputing means the blur pass has been dispatched.
	StateComputing
	// StatePresenting means the render pass is drawing to the surface.
	StatePresenting
	// StateFaulted means an unrecoverable error occurred; the loop has torn
	// down its resources and will not process further frames.
	StateFaulted
)

// String returns the state name for logging.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateCaptureRequested:
		return "capture_requested"
	case StateFrameReady:
		return "frame_ready"
	case StateUploading:
		return "uploading"
	case StateComputing:
		return "computing"
	case StatePresenting:
		return "presenting"
	case StateFaulted:
		return "faulted"
	default:
		return "unknown"
	}
}
