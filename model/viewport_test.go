package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestViewportSetXRangeRejectsInvertedRange(t *testing.T) {
	v := NewViewport(0, 100, 800, 600)
	err := v.SetXRange(100, 50)
	require.Error(t, err)
}

func TestViewportZoomClampsToMinSpan(t *testing.T) {
	v := NewViewport(0, 1000, 800, 600)
	for i := 0; i < 40; i++ {
		v.Zoom(0.5, 0.5)
	}
	xMin, xMax := v.XRange()
	assert.GreaterOrEqual(t, int64(xMax)-int64(xMin), int64(MinSpanSeconds))
}

func TestViewportPanTranslatesRange(t *testing.T) {
	v := NewViewport(0, 1000, 1000, 600)
	v.Pan(100) // 100 screen px of 1000 covering 1000 data units -> 100 data units
	xMin, xMax := v.XRange()
	assert.Equal(t, uint32(100), xMin)
	assert.Equal(t, uint32(1100), xMax)
}

func TestViewportSetYRangeRecordsDerivedRange(t *testing.T) {
	v := NewViewport(0, 1000, 800, 600)
	v.SetYRange(10, 20)
	yMin, yMax := v.YRange()
	assert.Equal(t, float32(10), yMin)
	assert.Equal(t, float32(20), yMax)
}
