package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFrameValidate(t *testing.T) {
	valid := &Frame{Data: make([]byte, 4*4*BytesPerPixel), Width: 4, Height: 4}
	assert.NoError(t, valid.Validate())

	short := &Frame{Data: make([]byte, 4*4*BytesPerPixel-1), Width: 4, Height: 4}
	assert.Error(t, short.Validate())

	long := &Frame{Data: make([]byte, 4*4*BytesPerPixel+4), Width: 4, Height: 4}
	assert.Error(t, long.Validate())

	empty := &Frame{Width: 0, Height: 4}
	assert.Error(t, empty.Validate())

	negative := &Frame{Data: nil, Width: -2, Height: 2}
	assert.Error(t, negative.Validate())
}

func TestKernelSpecShape(t *testing.T) {
	sep := KernelSpec{Radius: 2, Weights: []float64{0.1, 0.2, 0.4, 0.2, 0.1}}
	assert.Equal(t, KernelShapeSeparable, sep.Shape())
	assert.Equal(t, 5, sep.Taps())

	gauss := KernelSpec{Radius: 4, Sigma: 1.5}
	assert.Equal(t, KernelShapeSeparable, gauss.Shape())
	assert.Equal(t, 9, gauss.Taps())

	table := KernelSpec{Radius: 1, Table: make([]float64, 9)}
	assert.Equal(t, KernelShapeTable, table.Shape())
	assert.Equal(t, 3, table.Taps())
}

func TestCoalesce(t *testing.T) {
	assert.Equal(t, 5, Coalesce(0, 5, 7))
	assert.Equal(t, 3, Coalesce(3, 0))
	assert.Equal(t, 0, Coalesce(0, 0))
	assert.Equal(t, "b", Coalesce("", "b"))
}

func TestSliceToBytes(t *testing.T) {
	assert.Nil(t, SliceToBytes([]float32(nil)))

	b := SliceToBytes([]float32{1.0})
	assert.Len(t, b, 4)
	// 1.0 in IEEE-754 little-endian is 00 00 80 3f
	assert.Equal(t, []byte{0x00, 0x00, 0x80, 0x3f}, b)
}
