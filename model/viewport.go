package model

import (
	"sync"

	"github.com/vantage-chart/vantage-engine/vantageerr"
)

// MinSpanSeconds is the minimum allowed (x_max - x_min) span; Zoom clamps to
// this floor so a pivot zoom can never collapse the x-range to a point.
const MinSpanSeconds = 1

// Viewport is the CPU-side visible data-space window: x-range in unix
// seconds, y-range in data units (lazily recomputed by a compute pass, not
// set directly — see SetYRange), and the screen size in device pixels.
// Pan/zoom apply only to the x-range directly; the y-range is always
// re-derived from the current frame's visible x-range (I7).
type Viewport struct {
	mu sync.RWMutex

	xMin, xMax uint32
	yMin, yMax float32

	pixelWidth, pixelHeight int
}

// NewViewport creates a Viewport over the given initial x-range and screen size.
//
// Parameters:
//   - xMin, xMax: the initial x-range in unix seconds
//   - pixelWidth, pixelHeight: the initial screen size in device pixels
//
// Returns:
//   - *Viewport: the newly created viewport
func NewViewport(xMin, xMax uint32, pixelWidth, pixelHeight int) *Viewport {
	return &Viewport{xMin: xMin, xMax: xMax, pixelWidth: pixelWidth, pixelHeight: pixelHeight}
}

// XRange returns the current x-range.
func (v *Viewport) XRange() (xMin, xMax uint32) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.xMin, v.xMax
}

// YRange returns the current y-range.
func (v *Viewport) YRange() (yMin, yMax float32) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.yMin, v.yMax
}

// ScreenSize returns the current screen size in device pixels.
func (v *Viewport) ScreenSize() (width, height int) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.pixelWidth, v.pixelHeight
}

// SetXRange updates the x-range directly. Fails with InvalidInput when
// xMax <= xMin per spec's InvalidRange failure.
//
// Parameters:
//   - xMin, xMax: the new x-range in unix seconds
//
// Returns:
//   - error: InvalidInput if xMax <= xMin
func (v *Viewport) SetXRange(xMin, xMax uint32) error {
	if xMax <= xMin {
		return vantageerr.New(vantageerr.InvalidInput, "x_max must be greater than x_min")
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	v.xMin, v.xMax = xMin, xMax
	return nil
}

// Zoom pivots the x-range around pivotScreenX (a fraction in [0,1] of screen
// width) by factor (>1 zooms out, <1 zooms in), clamping to MinSpanSeconds.
//
// Parameters:
//   - factor: the zoom factor
//   - pivotScreenX: the pivot point as a fraction of screen width, in [0,1]
func (v *Viewport) Zoom(factor float64, pivotScreenX float64) {
	v.mu.Lock()
	defer v.mu.Unlock()

	span := float64(v.xMax) - float64(v.xMin)
	pivot := float64(v.xMin) + span*pivotScreenX

	newSpan := span * factor
	if newSpan < MinSpanSeconds {
		newSpan = MinSpanSeconds
	}

	newMin := pivot - newSpan*pivotScreenX
	newMax := newMin + newSpan

	if newMin < 0 {
		newMin = 0
	}
	v.xMin = uint32(newMin)
	v.xMax = uint32(newMax)
}

// Pan translates the x-range by dxScreen pixels converted to data units
// using the viewport's current span-per-pixel ratio.
//
// Parameters:
//   - dxScreen: the pan delta in screen pixels
func (v *Viewport) Pan(dxScreen float64) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.pixelWidth == 0 {
		return
	}
	span := float64(v.xMax) - float64(v.xMin)
	dxData := dxScreen * (span / float64(v.pixelWidth))

	newMin := float64(v.xMin) + dxData
	if newMin < 0 {
		newMin = 0
		dxData = newMin - float64(v.xMin)
	}
	v.xMin = uint32(float64(v.xMin) + dxData)
	v.xMax = uint32(float64(v.xMax) + dxData)
}

// SetYRange records the y-range derived by a compute pass for the current
// frame's visible x-range. Only the scheduler's Updating(View) step calls this.
//
// Parameters:
//   - yMin, yMax: the derived y-range in data units
func (v *Viewport) SetYRange(yMin, yMax float32) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.yMin, v.yMax = yMin, yMax
}

// SetScreenSize updates the screen size in device pixels.
//
// Parameters:
//   - width, height: the new screen size in device pixels
func (v *Viewport) SetScreenSize(width, height int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.pixelWidth, v.pixelHeight = width, height
}
