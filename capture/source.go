package capture

import (
	"context"
	"errors"

	"github.com/softlens/blurcam-go/common"
)

var (
	// ErrNoFrameAvailable indicates the device produced no frame for the
	// current read. Capture failures are not retried; the caller decides
	// whether to fault or poll again.
	ErrNoFrameAvailable = errors.New("no frame available")

	// ErrDeviceDenied indicates the capture device could not be opened,
	// either because access was refused or the device does not exist.
	ErrDeviceDenied = errors.New("capture device denied")

	// ErrSourceClosed indicates the source has been closed and will never
	// produce another frame.
	ErrSourceClosed = errors.New("capture source closed")
)

// Source produces camera frames in RGBA8 layout. Implementations own the
// underlying device and must be closed when no longer needed.
type Source interface {
	// NextFrame blocks until the next frame is available, the context is
	// cancelled, or the source fails.
	//
	// Parameters:
	//   - ctx: cancellation context; NextFrame returns ctx.Err() when it fires
	//
	// Returns:
	//   - *common.Frame: the captured frame, tightly packed RGBA8
	//   - error: ErrNoFrameAvailable, ErrSourceClosed, a device error, or ctx.Err()
	NextFrame(ctx context.Context) (*common.Frame, error)

	// Width returns the frame width in pixels produced by this source.
	Width() int

	// Height returns the frame height in pixels produced by this source.
	Height() int

	// Close releases the underlying device. Safe to call more than once.
	Close() error
}
