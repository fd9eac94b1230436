package capture

import (
	"context"
	"sync"
	"time"

	"github.com/softlens/blurcam-go/common"
)

// Pattern selects the image a synthetic source generates.
type Pattern int

const (
	// PatternUniform fills every pixel with the configured color.
	PatternUniform Pattern = iota
	// PatternImpulse produces a black frame with a single pixel of the
	// configured color at the center.
	PatternImpulse
	// PatternGradient produces a horizontal luminance ramp that scrolls
	// one pixel per frame, useful for spotting stalls visually.
	PatternGradient
)

// syntheticSource implements Source without hardware, generating frames
// procedurally. It backs tests and the --synthetic viewer mode.
type syntheticSource struct {
	mu       sync.Mutex
	width    int
	height   int
	pattern  Pattern
	color    [4]byte
	interval time.Duration
	seq      uint64
	closed   bool
}

var _ Source = (*syntheticSource)(nil)

// NewSyntheticSource creates a procedural frame source.
//
// Parameters:
//   - options: optional SyntheticOption values; defaults are a 640x480
//     uniform white source paced at 30 frames per second
//
// Returns:
//   - Source: the synthetic source
func NewSyntheticSource(options ...SyntheticOption) Source {
	s := &syntheticSource{
		width:    640,
		height:   480,
		pattern:  PatternUniform,
		color:    [4]byte{255, 255, 255, 255},
		interval: time.Second / 30,
	}
	for _, opt := range options {
		opt(s)
	}
	return s
}

func (s *syntheticSource) NextFrame(ctx context.Context) (*common.Frame, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, ErrSourceClosed
	}
	interval := s.interval
	s.mu.Unlock()

	if interval > 0 {
		timer := time.NewTimer(interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrSourceClosed
	}
	s.seq++
	frame := &common.Frame{
		Data:      make([]byte, s.width*s.height*common.BytesPerPixel),
		Width:     s.width,
		Height:    s.height,
		Timestamp: time.Now(),
		Seq:       s.seq,
	}
	s.render(frame)
	return frame, nil
}

func (s *syntheticSource) render(frame *common.Frame) {
	switch s.pattern {
	case PatternUniform:
		for i := 0; i < len(frame.Data); i += common.BytesPerPixel {
			frame.Data[i+0] = s.color[0]
			frame.Data[i+1] = s.color[1]
			frame.Data[i+2] = s.color[2]
			frame.Data[i+3] = s.color[3]
		}
	case PatternImpulse:
		// Alpha stays opaque everywhere so the frame composites predictably.
		for i := 3; i < len(frame.Data); i += common.BytesPerPixel {
			frame.Data[i] = 255
		}
		cx, cy := s.width/2, s.height/2
		off := (cy*s.width + cx) * common.BytesPerPixel
		frame.Data[off+0] = s.color[0]
		frame.Data[off+1] = s.color[1]
		frame.Data[off+2] = s.color[2]
		frame.Data[off+3] = s.color[3]
	case PatternGradient:
		shift := int(s.seq) % s.width
		for y := 0; y < s.height; y++ {
			row := y * s.width * common.BytesPerPixel
			for x := 0; x < s.width; x++ {
				v := byte(((x + shift) % s.width) * 255 / s.width)
				off := row + x*common.BytesPerPixel
				frame.Data[off+0] = v
				frame.Data[off+1] = v
				frame.Data[off+2] = v
				frame.Data[off+3] = 255
			}
		}
	}
}

func (s *syntheticSource) Width() int {
	return s.width
}

func (s *syntheticSource) Height() int {
	return s.height
}

func (s *syntheticSource) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	return nil
}
