package capture

import (
	"sync"
	"sync/atomic"

	"github.com/softlens/blurcam-go/common"
)

// Mailbox is a single-slot latest-frame buffer between the capture goroutine
// and the frame loop. Publishing overwrites any unconsumed frame, so the
// consumer always sees the most recent capture and never a backlog. Drops
// are counted but otherwise invisible. The frame loop polls with TryTake
// from the window's update callback, so consumption never blocks.
type Mailbox struct {
	mu     sync.Mutex
	frame  *common.Frame
	drops  uint64
	closed bool
}

// NewMailbox returns an empty mailbox ready for publishing.
func NewMailbox() *Mailbox {
	return &Mailbox{}
}

// Publish stores frame as the latest capture, replacing any unconsumed
// frame. Non-blocking; a replaced frame increments the drop counter.
// The frame's data must not be modified after publishing.
func (m *Mailbox) Publish(frame *common.Frame) {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	if m.frame != nil {
		atomic.AddUint64(&m.drops, 1)
	}
	m.frame = frame
	m.mu.Unlock()
}

// TryTake removes and returns the latest frame without blocking.
//
// Returns:
//   - *common.Frame: the latest published frame, or nil
//   - bool: whether a frame was available
func (m *Mailbox) TryTake() (*common.Frame, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.frame == nil {
		return nil, false
	}
	frame := m.frame
	m.frame = nil
	return frame, true
}

// Drops returns the number of frames overwritten before being consumed.
func (m *Mailbox) Drops() uint64 {
	return atomic.LoadUint64(&m.drops)
}

// Close marks the mailbox closed; later publishes are dropped silently. A
// frame already in the slot is still delivered by TryTake.
func (m *Mailbox) Close() {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
}
