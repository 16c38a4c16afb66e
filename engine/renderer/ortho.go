package renderer

import (
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/vantage-chart/vantage-engine/common"
	"github.com/vantage-chart/vantage-engine/engine/renderer/bind_group_provider"
)

// viewportCount is an atomic counter used to generate unique bind group provider
// names for each OrthoProjector instance.
var viewportCount atomic.Uint64

type orthoProjectorImpl struct {
	mu *sync.Mutex

	left, right, bottom, top float32

	chartToClip [16]float32

	bindGroupProvider bind_group_provider.BindGroupProvider
}

// OrthoProjector tracks the chart's visible data-space bounds and computes the
// orthographic chart-to-clip matrix every render node needs to place a
// (time, value) point on screen. It replaces the teacher's 3D perspective
// Camera: a chart has no eye position or field of view, only a 2D window
// onto the data.
type OrthoProjector interface {
	// Bounds returns the current visible data-space box (xMin, xMax, yMin, yMax).
	//
	// Returns:
	//   - left, right, bottom, top: the visible data-space bounds
	Bounds() (left, right, bottom, top float32)

	// ChartToClip returns the current 4x4 chart-to-clip matrix as 16 floats (column-major).
	//
	// Returns:
	//   - [16]float32: the chart-to-clip matrix
	ChartToClip() [16]float32

	// BindGroupProvider returns the projector's bind group provider for GPU resources.
	// Returns nil if not set.
	//
	// Returns:
	//   - bind_group_provider.BindGroupProvider: the bind group provider or nil
	BindGroupProvider() bind_group_provider.BindGroupProvider

	// SetBounds updates the visible data-space box and recomputes the matrix.
	//
	// Parameters:
	//   - left, right, bottom, top: the new visible data-space bounds
	SetBounds(left, right, bottom, top float32)

	// SetBindGroupProvider sets the projector's bind group provider.
	//
	// Parameters:
	//   - provider: the bind group provider to set
	SetBindGroupProvider(provider bind_group_provider.BindGroupProvider)
}

var _ OrthoProjector = &orthoProjectorImpl{}

// NewOrthoProjector creates a new OrthoProjector over the given initial data-space bounds.
//
// Parameters:
//   - left, right, bottom, top: the initial visible data-space bounds
//
// Returns:
//   - OrthoProjector: the newly created projector
func NewOrthoProjector(left, right, bottom, top float32) OrthoProjector {
	p := &orthoProjectorImpl{
		mu:     &sync.Mutex{},
		left:   left,
		right:  right,
		bottom: bottom,
		top:    top,
		bindGroupProvider: bind_group_provider.NewBindGroupProvider(
			"viewport_" + strconv.FormatUint(viewportCount.Load(), 10),
		),
	}
	p.updateMatrix()
	viewportCount.Add(1)
	return p
}

func (p *orthoProjectorImpl) Bounds() (left, right, bottom, top float32) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.left, p.right, p.bottom, p.top
}

func (p *orthoProjectorImpl) ChartToClip() [16]float32 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.chartToClip
}

func (p *orthoProjectorImpl) BindGroupProvider() bind_group_provider.BindGroupProvider {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.bindGroupProvider
}

func (p *orthoProjectorImpl) SetBounds(left, right, bottom, top float32) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.left, p.right, p.bottom, p.top = left, right, bottom, top
	p.updateMatrix()
}

func (p *orthoProjectorImpl) SetBindGroupProvider(provider bind_group_provider.BindGroupProvider) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.bindGroupProvider = provider
}

// updateMatrix recalculates the chart-to-clip matrix. Caller must hold the mutex.
func (p *orthoProjectorImpl) updateMatrix() {
	common.Ortho(p.chartToClip[:], p.left, p.right, p.bottom, p.top)
}
