package capture

import (
	"context"
	"testing"

	"github.com/softlens/blurcam-go/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSyntheticUniformPattern(t *testing.T) {
	src := NewSyntheticSource(
		WithSize(16, 8),
		WithPattern(PatternUniform),
		WithColor(10, 20, 30, 255),
		WithFrameInterval(0),
	)
	defer src.Close()

	frame, err := src.NextFrame(context.Background())
	require.NoError(t, err)
	require.NoError(t, frame.Validate())
	assert.Equal(t, 16, frame.Width)
	assert.Equal(t, 8, frame.Height)
	assert.Equal(t, uint64(1), frame.Seq)

	for i := 0; i < len(frame.Data); i += common.BytesPerPixel {
		assert.Equal(t, byte(10), frame.Data[i+0])
		assert.Equal(t, byte(20), frame.Data[i+1])
		assert.Equal(t, byte(30), frame.Data[i+2])
		assert.Equal(t, byte(255), frame.Data[i+3])
	}
}

func TestSyntheticImpulsePattern(t *testing.T) {
	src := NewSyntheticSource(
		WithSize(9, 9),
		WithPattern(PatternImpulse),
		WithColor(255, 255, 255, 255),
		WithFrameInterval(0),
	)
	defer src.Close()

	frame, err := src.NextFrame(context.Background())
	require.NoError(t, err)

	center := (4*9 + 4) * common.BytesPerPixel
	assert.Equal(t, byte(255), frame.Data[center])
	assert.Equal(t, byte(255), frame.Data[center+1])
	assert.Equal(t, byte(255), frame.Data[center+2])

	// Every other pixel is black with opaque alpha.
	for i := 0; i < len(frame.Data); i += common.BytesPerPixel {
		if i == center {
			continue
		}
		assert.Equal(t, byte(0), frame.Data[i], "pixel %d not black", i/common.BytesPerPixel)
		assert.Equal(t, byte(255), frame.Data[i+3])
	}
}

func TestSyntheticGradientScrolls(t *testing.T) {
	src := NewSyntheticSource(
		WithSize(32, 2),
		WithPattern(PatternGradient),
		WithFrameInterval(0),
	)
	defer src.Close()

	first, err := src.NextFrame(context.Background())
	require.NoError(t, err)
	second, err := src.NextFrame(context.Background())
	require.NoError(t, err)

	assert.Equal(t, uint64(1), first.Seq)
	assert.Equal(t, uint64(2), second.Seq)
	assert.NotEqual(t, first.Data, second.Data)
}

func TestSyntheticSequenceIncrements(t *testing.T) {
	src := NewSyntheticSource(WithSize(4, 4), WithFrameInterval(0))
	defer src.Close()

	for want := uint64(1); want <= 5; want++ {
		frame, err := src.NextFrame(context.Background())
		require.NoError(t, err)
		assert.Equal(t, want, frame.Seq)
	}
}

func TestSyntheticClosedSourceRejectsReads(t *testing.T) {
	src := NewSyntheticSource(WithFrameInterval(0))
	require.NoError(t, src.Close())

	_, err := src.NextFrame(context.Background())
	assert.ErrorIs(t, err, ErrSourceClosed)

	// Close is idempotent.
	assert.NoError(t, src.Close())
}
