package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/softlens/blurcam-go/capture"
	"github.com/softlens/blurcam-go/common"
)

var (
	// ErrLoopFaulted indicates the loop hit an unrecoverable error earlier
	// and refuses further ticks. The original cause is available via Err.
	ErrLoopFaulted = errors.New("frame loop faulted")

	// ErrLoopStopped indicates Stop was called; the loop's resources are
	// released and it cannot be restarted.
	ErrLoopStopped = errors.New("frame loop stopped")
)

// TickPipeline is the GPU-facing surface the loop drives once per frame:
// upload the captured pixels, dispatch the blur, present the result.
// Implementations must tolerate TearDown being called at most once after
// any sequence of the other calls.
type TickPipeline interface {
	Upload(frame *common.Frame) error
	Dispatch() error
	Present() error
	TearDown()
}

// Loop owns the per-frame cycle: it runs a capture goroutine that publishes
// frames into a latest-frame mailbox, and on each Tick drains the mailbox
// and drives the pipeline through upload, compute, and present.
//
// Any stage error is fatal: the loop tears the pipeline down, records the
// cause, and every later Tick returns ErrLoopFaulted. There are no retries.
type Loop interface {
	// Start launches the capture goroutine. Must be called once, before the
	// first Tick.
	Start(ctx context.Context)

	// Tick processes at most one frame. A tick with no frame pending is a
	// no-op and returns nil.
	Tick() error

	// State returns the loop's current position in the frame cycle.
	State() State

	// Err returns the fault cause, or nil.
	Err() error

	// Done returns a channel closed once the capture goroutine has exited,
	// whether through Stop, context cancellation, or a fault.
	Done() <-chan struct{}

	// Drops returns how many captured frames were overwritten unconsumed.
	Drops() uint64

	// Stop cancels capture, waits for the goroutine to exit, and tears down
	// the pipeline. Idempotent.
	Stop()
}

type frameLoop struct {
	mu       sync.Mutex
	pipeline TickPipeline
	source   capture.Source
	mailbox  *capture.Mailbox
	log      *logrus.Entry
	stats    *Stats

	state   State
	err     error
	stopped bool

	cancel   context.CancelFunc
	done     chan struct{}
	teardown sync.Once
}

var _ Loop = (*frameLoop)(nil)

// NewLoop creates a frame loop over the given pipeline and frame source.
//
// Parameters:
//   - pipeline: the GPU pipeline to drive each frame
//   - source: the camera or synthetic frame source
//   - options: optional LoopOption values
//
// Returns:
//   - Loop: the frame loop, in StateIdle
func NewLoop(pipeline TickPipeline, source capture.Source, options ...LoopOption) Loop {
	l := &frameLoop{
		pipeline: pipeline,
		source:   source,
		mailbox:  capture.NewMailbox(),
		log:      logrus.NewEntry(logrus.StandardLogger()),
		done:     make(chan struct{}),
	}
	for _, opt := range options {
		opt(l)
	}
	if l.stats == nil {
		l.stats = NewStats(l.log)
	}
	return l
}

func (l *frameLoop) Start(ctx context.Context) {
	ctx, l.cancel = context.WithCancel(ctx)
	go l.captureLoop(ctx)
}

// captureLoop pulls frames from the source and publishes them to the
// mailbox until the context is cancelled or the source fails. A capture
// failure faults the whole loop.
func (l *frameLoop) captureLoop(ctx context.Context) {
	defer close(l.done)
	for {
		frame, err := l.source.NextFrame(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return
			}
			l.fault(fmt.Errorf("capture: %w", err))
			return
		}
		l.mailbox.Publish(frame)
	}
}

func (l *frameLoop) Tick() error {
	l.mu.Lock()
	if l.state == StateFaulted {
		l.mu.Unlock()
		return fmt.Errorf("%w: %v", ErrLoopFaulted, l.err)
	}
	if l.stopped {
		l.mu.Unlock()
		return ErrLoopStopped
	}

	l.state = StateCaptureRequested
	frame, ok := l.mailbox.TryTake()
	if !ok {
		l.state = StateIdle
		l.mu.Unlock()
		return nil
	}
	l.state = StateFrameReady
	l.mu.Unlock()

	if err := l.runStages(frame); err != nil {
		l.fault(err)
		return fmt.Errorf("%w: %v", ErrLoopFaulted, err)
	}

	l.mu.Lock()
	l.state = StateIdle
	l.mu.Unlock()
	l.stats.Tick(l.mailbox.Drops())
	return nil
}

// runStages drives one frame through the pipeline. GPU work happens outside
// the loop mutex so State remains readable from other goroutines.
func (l *frameLoop) runStages(frame *common.Frame) error {
	l.setState(StateUploading)
	if err := l.pipeline.Upload(frame); err != nil {
		return fmt.Errorf("upload frame %d: %w", frame.Seq, err)
	}

	l.setState(StateComputing)
	if err := l.pipeline.Dispatch(); err != nil {
		return fmt.Errorf("dispatch frame %d: %w", frame.Seq, err)
	}

	l.setState(StatePresenting)
	if err := l.pipeline.Present(); err != nil {
		return fmt.Errorf("present frame %d: %w", frame.Seq, err)
	}
	return nil
}

func (l *frameLoop) setState(s State) {
	l.mu.Lock()
	l.state = s
	l.mu.Unlock()
}

// fault records the first unrecoverable error, tears the pipeline down, and
// stops capture. Later faults are ignored.
func (l *frameLoop) fault(err error) {
	l.mu.Lock()
	if l.state == StateFaulted {
		l.mu.Unlock()
		return
	}
	l.state = StateFaulted
	l.err = err
	l.mu.Unlock()

	l.log.WithError(err).Error("frame loop faulted")
	if l.cancel != nil {
		l.cancel()
	}
	l.mailbox.Close()
	l.teardown.Do(l.pipeline.TearDown)
}

func (l *frameLoop) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

func (l *frameLoop) Err() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.err
}

func (l *frameLoop) Done() <-chan struct{} {
	return l.done
}

func (l *frameLoop) Drops() uint64 {
	return l.mailbox.Drops()
}

func (l *frameLoop) Stop() {
	l.mu.Lock()
	if l.stopped {
		l.mu.Unlock()
		return
	}
	l.stopped = true
	faulted := l.state == StateFaulted
	l.mu.Unlock()

	if l.cancel != nil {
		l.cancel()
		<-l.done
	}
	l.mailbox.Close()
	if !faulted {
		l.teardown.Do(l.pipeline.TearDown)
		l.log.Info("frame loop stopped")
	}
}
