package capture

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/softlens/blurcam-go/common"
	"gocv.io/x/gocv"
)

// webcamSource implements Source on top of an OpenCV video capture device.
// OpenCV delivers BGR frames; conversion to the RGBA layout the GPU upload
// expects runs on a worker pool, pipelined one frame deep: while the device
// read for frame N+1 is in progress, frame N is converted on the pool, and
// NextFrame returns N once both have finished. The scratch Mats are
// double-buffered so the in-flight conversion never shares a Mat with the
// current read.
type webcamSource struct {
	mu       sync.Mutex
	cam      *gocv.VideoCapture
	raw      [2]gocv.Mat
	rgba     [2]gocv.Mat
	slot     int
	conv     *converter
	inFlight *conversion
	width    int
	height   int
	seq      uint64
	closed   bool
}

var _ Source = (*webcamSource)(nil)

// NewWebcamSource opens the capture device with the given ID.
//
// The device may negotiate dimensions other than the requested ones; the
// actual frame size is available from Width and Height after construction.
//
// Parameters:
//   - deviceID: the OS capture device index (0 is the default camera)
//   - options: optional WebcamOption values
//
// Returns:
//   - Source: the webcam source
//   - error: ErrDeviceDenied when the device cannot be opened
func NewWebcamSource(deviceID int, options ...WebcamOption) (Source, error) {
	s := &webcamSource{
		width:  1280,
		height: 720,
	}
	workers := 2
	for _, opt := range options {
		opt(s, &workers)
	}

	cam, err := gocv.OpenVideoCapture(deviceID)
	if err != nil {
		return nil, fmt.Errorf("%w: device %d: %v", ErrDeviceDenied, deviceID, err)
	}
	if !cam.IsOpened() {
		cam.Close()
		return nil, fmt.Errorf("%w: device %d", ErrDeviceDenied, deviceID)
	}

	cam.Set(gocv.VideoCaptureFrameWidth, float64(s.width))
	cam.Set(gocv.VideoCaptureFrameHeight, float64(s.height))

	// The driver may clamp or ignore the request; record what it settled on.
	// Some drivers report 0 before the first read, in which case the request stands.
	s.width = common.Coalesce(int(cam.Get(gocv.VideoCaptureFrameWidth)), s.width)
	s.height = common.Coalesce(int(cam.Get(gocv.VideoCaptureFrameHeight)), s.height)

	s.cam = cam
	for i := range s.raw {
		s.raw[i] = gocv.NewMat()
		s.rgba[i] = gocv.NewMat()
	}
	s.conv = newConverter(workers)
	return s, nil
}

func (s *webcamSource) NextFrame(ctx context.Context) (*common.Frame, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, ErrSourceClosed
	}

	slot := s.slot
	if ok := s.cam.Read(&s.raw[slot]); !ok || s.raw[slot].Empty() {
		s.mu.Unlock()
		return nil, ErrNoFrameAvailable
	}
	s.slot = 1 - s.slot

	s.seq++
	cur := s.convertSlot(slot, s.seq, time.Now())
	prev := s.inFlight
	s.inFlight = cur
	if prev == nil {
		// First frame: nothing is pipelined yet, deliver this one directly.
		prev = cur
		s.inFlight = nil
	}
	s.mu.Unlock()

	frame, err := prev.wait()
	if err != nil {
		return nil, fmt.Errorf("frame conversion failed: %w", err)
	}
	return frame, nil
}

// convertSlot submits the BGR to RGBA conversion of one Mat slot to the pool.
// The slot is safe to capture: it is not read into again until the following
// NextFrame has waited on this conversion.
func (s *webcamSource) convertSlot(slot int, seq uint64, ts time.Time) *conversion {
	raw, rgba := &s.raw[slot], &s.rgba[slot]
	return s.conv.submit(func() (*common.Frame, error) {
		gocv.CvtColor(*raw, rgba, gocv.ColorBGRToRGBA)
		data, err := rgba.DataPtrUint8()
		if err != nil {
			return nil, err
		}
		frame := &common.Frame{
			Data:      make([]byte, len(data)),
			Width:     rgba.Cols(),
			Height:    rgba.Rows(),
			Timestamp: ts,
			Seq:       seq,
		}
		copy(frame.Data, data)
		if err := frame.Validate(); err != nil {
			return nil, err
		}
		return frame, nil
	})
}

func (s *webcamSource) Width() int {
	return s.width
}

func (s *webcamSource) Height() int {
	return s.height
}

// Close waits out any in-flight conversion, drains the worker pool, and
// releases the device and the scratch Mats. Safe to call more than once.
func (s *webcamSource) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	inFlight := s.inFlight
	s.inFlight = nil
	s.mu.Unlock()

	if inFlight != nil {
		inFlight.wait()
	}
	s.conv.drain()

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.raw {
		s.raw[i].Close()
		s.rgba[i].Close()
	}
	return s.cam.Close()
}
