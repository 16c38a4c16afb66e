package model

import "sync"

// RenderStyle selects how a Metric's values are drawn.
type RenderStyle int

const (
	// RenderStyleLine draws the metric as a continuous polyline (PlotRenderer).
	RenderStyleLine RenderStyle = iota
	// RenderStyleTriangle draws the metric as per-sample triangle markers (TriangleRenderer).
	RenderStyleTriangle
	// RenderStyleBar draws the metric as OHLCV candle bodies/wicks (CandlestickRenderer).
	RenderStyleBar
)

// Metric is a named renderable channel bound to one Series or ComputedMetric.
// The active Preset enumerates which metrics exist for a chart type.
type Metric struct {
	mu sync.RWMutex

	name       string
	style      RenderStyle
	color      [4]float32
	priority   uint32
	visible    bool
	seriesName string
}

// NewMetric creates a Metric bound to the Series identified by seriesName.
//
// Parameters:
//   - name: the metric's display name
//   - seriesName: the metric name of the backing Series within its DataGroup
//   - style: the render style
//   - color: the RGBA color
//   - priority: the render-node priority this metric is drawn under
//
// Returns:
//   - *Metric: the newly created metric, initially visible
func NewMetric(name, seriesName string, style RenderStyle, color [4]float32, priority uint32) *Metric {
	return &Metric{
		name:       name,
		seriesName: seriesName,
		style:      style,
		color:      color,
		priority:   priority,
		visible:    true,
	}
}

// Name returns the metric's display name.
func (m *Metric) Name() string { return m.name }

// SeriesName returns the backing Series' metric name within its DataGroup.
func (m *Metric) SeriesName() string { return m.seriesName }

// Style returns the render style.
func (m *Metric) Style() RenderStyle { return m.style }

// Color returns the RGBA color.
func (m *Metric) Color() [4]float32 { return m.color }

// Priority returns the render-node priority this metric is drawn under.
func (m *Metric) Priority() uint32 { return m.priority }

// Visible reports whether the metric is currently visible.
func (m *Metric) Visible() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.visible
}

// SetVisible toggles visibility.
//
// Parameters:
//   - visible: the new visibility
func (m *Metric) SetVisible(visible bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.visible = visible
}

// ComputedMetric is a Metric whose values are a pure function of other
// Series (e.g. mid-price = (bid+ask)/2). Cached until any dependency's
// generation changes (I4).
type ComputedMetric struct {
	*Metric

	mu sync.RWMutex

	dependencies   []string
	dependencyGens map[string]uint64
}

// NewComputedMetric creates a ComputedMetric over the given dependency
// Series names (by metric name within the owning DataGroup).
//
// Parameters:
//   - name: the metric's display name
//   - dependencies: the Series metric names this computation reads
//   - style: the render style
//   - color: the RGBA color
//   - priority: the render-node priority
//
// Returns:
//   - *ComputedMetric: the newly created computed metric
func NewComputedMetric(name string, dependencies []string, style RenderStyle, color [4]float32, priority uint32) *ComputedMetric {
	return &ComputedMetric{
		Metric:         NewMetric(name, name, style, color, priority),
		dependencies:   dependencies,
		dependencyGens: make(map[string]uint64),
	}
}

// Dependencies returns the Series metric names this computation reads.
func (c *ComputedMetric) Dependencies() []string { return c.dependencies }

// Stale reports whether any dependency's recorded generation is behind the
// generation observed in currentGens, per I4.
//
// Parameters:
//   - currentGens: the current generation of each dependency, by metric name
//
// Returns:
//   - bool: true if the cached value must be recomputed
func (c *ComputedMetric) Stale(currentGens map[string]uint64) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, dep := range c.dependencies {
		if currentGens[dep] > c.dependencyGens[dep] {
			return true
		}
	}
	return false
}

// MarkComputed records the dependency generations observed at computation
// time, clearing staleness until any of them advance again.
//
// Parameters:
//   - currentGens: the generation of each dependency at computation time
func (c *ComputedMetric) MarkComputed(currentGens map[string]uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, dep := range c.dependencies {
		c.dependencyGens[dep] = currentGens[dep]
	}
}
