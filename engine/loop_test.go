package engine

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/softlens/blurcam-go/capture"
	"github.com/softlens/blurcam-go/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakePipeline records stage calls and can fail a chosen stage.
type fakePipeline struct {
	mu          sync.Mutex
	calls       []string
	uploadErr   error
	dispatchErr error
	presentErr  error
	tornDown    int
}

func (p *fakePipeline) record(call string) {
	p.mu.Lock()
	p.calls = append(p.calls, call)
	p.mu.Unlock()
}

func (p *fakePipeline) Upload(frame *common.Frame) error {
	p.record("upload")
	return p.uploadErr
}

func (p *fakePipeline) Dispatch() error {
	p.record("dispatch")
	return p.dispatchErr
}

func (p *fakePipeline) Present() error {
	p.record("present")
	return p.presentErr
}

func (p *fakePipeline) TearDown() {
	p.mu.Lock()
	p.tornDown++
	p.mu.Unlock()
}

func (p *fakePipeline) callLog() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.calls...)
}

func (p *fakePipeline) teardownCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.tornDown
}

func quietLogger() *logrus.Entry {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return logrus.NewEntry(log)
}

func newTestLoop(t *testing.T, p TickPipeline, src capture.Source) Loop {
	t.Helper()
	return NewLoop(p, src, WithLogger(quietLogger()))
}

func waitForFrame(t *testing.T, l Loop) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if err := l.Tick(); err != nil {
			t.Fatalf("tick failed: %v", err)
		}
		if len(l.(*frameLoop).pipeline.(*fakePipeline).callLog()) > 0 {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("no frame processed before deadline")
}

func TestLoopDrivesStagesInOrder(t *testing.T) {
	p := &fakePipeline{}
	src := capture.NewSyntheticSource(capture.WithSize(8, 8), capture.WithFrameInterval(0))
	l := newTestLoop(t, p, src)

	l.Start(context.Background())
	waitForFrame(t, l)
	l.Stop()

	calls := p.callLog()
	require.GreaterOrEqual(t, len(calls), 3)
	assert.Equal(t, []string{"upload", "dispatch", "present"}, calls[:3])
	assert.Equal(t, StateIdle, l.State())
	assert.NoError(t, l.Err())
	assert.Equal(t, 1, p.teardownCount())
}

func TestLoopTickWithoutFrameIsNoop(t *testing.T) {
	p := &fakePipeline{}
	src := capture.NewSyntheticSource(capture.WithFrameInterval(time.Hour))
	l := newTestLoop(t, p, src)
	l.Start(context.Background())

	require.NoError(t, l.Tick())
	assert.Empty(t, p.callLog())
	assert.Equal(t, StateIdle, l.State())
	l.Stop()
}

func TestLoopFaultsOnStageError(t *testing.T) {
	stages := []struct {
		name   string
		mutate func(*fakePipeline)
		want   []string
	}{
		{"upload", func(p *fakePipeline) { p.uploadErr = errors.New("boom") }, []string{"upload"}},
		{"dispatch", func(p *fakePipeline) { p.dispatchErr = errors.New("boom") }, []string{"upload", "dispatch"}},
		{"present", func(p *fakePipeline) { p.presentErr = errors.New("boom") }, []string{"upload", "dispatch", "present"}},
	}
	for _, tt := range stages {
		t.Run(tt.name, func(t *testing.T) {
			p := &fakePipeline{}
			tt.mutate(p)
			src := capture.NewSyntheticSource(capture.WithSize(8, 8), capture.WithFrameInterval(0))
			l := newTestLoop(t, p, src)
			l.Start(context.Background())

			// Keep ticking until the fault lands.
			deadline := time.Now().Add(2 * time.Second)
			var err error
			for time.Now().Before(deadline) {
				if err = l.Tick(); err != nil {
					break
				}
				time.Sleep(time.Millisecond)
			}
			require.ErrorIs(t, err, ErrLoopFaulted)
			assert.Equal(t, StateFaulted, l.State())
			assert.Error(t, l.Err())
			assert.Equal(t, tt.want, p.callLog())
			assert.Equal(t, 1, p.teardownCount())

			// Fault is sticky and the pipeline is not driven again.
			assert.ErrorIs(t, l.Tick(), ErrLoopFaulted)
			assert.Equal(t, tt.want, p.callLog())

			l.Stop()
			assert.Equal(t, 1, p.teardownCount())
		})
	}
}

func TestLoopFaultsOnCaptureError(t *testing.T) {
	p := &fakePipeline{}
	src := capture.NewSyntheticSource(capture.WithFrameInterval(0))
	require.NoError(t, src.Close()) // every NextFrame now fails
	l := newTestLoop(t, p, src)
	l.Start(context.Background())

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) && l.State() != StateFaulted {
		time.Sleep(time.Millisecond)
	}
	require.Equal(t, StateFaulted, l.State())
	assert.ErrorIs(t, l.Err(), capture.ErrSourceClosed)
	assert.Empty(t, p.callLog())
	assert.Equal(t, 1, p.teardownCount())

	select {
	case <-l.Done():
	case <-time.After(time.Second):
		t.Fatal("Done not closed after fault")
	}
	l.Stop()
}

func TestLoopStopIsIdempotentAndTearsDownOnce(t *testing.T) {
	p := &fakePipeline{}
	src := capture.NewSyntheticSource(capture.WithSize(8, 8), capture.WithFrameInterval(0))
	l := newTestLoop(t, p, src)
	l.Start(context.Background())

	l.Stop()
	l.Stop()
	assert.Equal(t, 1, p.teardownCount())
	assert.ErrorIs(t, l.Tick(), ErrLoopStopped)
}

func TestLoopCancellationStopsCapture(t *testing.T) {
	p := &fakePipeline{}
	src := capture.NewSyntheticSource(capture.WithSize(8, 8), capture.WithFrameInterval(time.Millisecond))
	l := newTestLoop(t, p, src)

	ctx, cancel := context.WithCancel(context.Background())
	l.Start(ctx)
	cancel()

	// Cancellation alone does not fault the loop; Stop still tears down.
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) && l.State() == StateFaulted {
		time.Sleep(time.Millisecond)
	}
	assert.NotEqual(t, StateFaulted, l.State())
	l.Stop()
	assert.Equal(t, 1, p.teardownCount())
}
