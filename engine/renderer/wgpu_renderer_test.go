package renderer

import (
	"sync"
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
)

// bareRenderer builds a renderer with no GPU handles, exercising the paths
// that run before (or after) any device work.
func bareRenderer() *wgpuRenderer {
	return &wgpuRenderer{mu: &sync.Mutex{}}
}

func TestReleaseToleratesMissingHandles(t *testing.T) {
	// Bootstrap failure paths call Release with only a subset of the handles
	// created; every field must be nil-guarded.
	r := bareRenderer()
	r.Release()
	r.Release()
}

func TestFrameOperationsBeforeConfigure(t *testing.T) {
	r := bareRenderer()

	assert.ErrorIs(t, r.BeginFrame(), ErrSurfaceNotConfigured)
	assert.Error(t, r.EndFrame())

	// No frame in progress: both are no-ops.
	r.Draw(nil, nil, 6)
	r.Present()
}

func TestSetPresentModeMapping(t *testing.T) {
	r := bareRenderer()

	r.SetPresentMode(PresentModeUncapped)
	assert.Equal(t, wgpu.PresentModeImmediate, r.presentMode)

	r.SetPresentMode(PresentModeVSync)
	assert.Equal(t, wgpu.PresentModeFifo, r.presentMode)
}
