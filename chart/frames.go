package chart

import (
	"github.com/vantage-chart/vantage-engine/engine/renderer"
	"github.com/vantage-chart/vantage-engine/engine/renderer/nodes"
	"github.com/vantage-chart/vantage-engine/model"
	"github.com/vantage-chart/vantage-engine/rendergraph"
	"github.com/vantage-chart/vantage-engine/resourcepool"
	"github.com/vantage-chart/vantage-engine/vantageerr"
)

// frameNode bridges one render node's heterogeneous Compute(...) signature
// (LineNode.Compute(times, values, ...) vs CandlestickNode.Compute(candles,
// ...) vs AxisNode.Compute(tickCount, tickStep)) behind one call Chart.Render
// can make without a type switch per node kind. Each concrete wrapper below
// embeds the node it adapts, which also satisfies rendergraph.Node by
// promotion — the wrapper itself never needs to implement Name/Priority/
// NeedsCompute/Reads/Writes.
type frameNode interface {
	rendergraph.Node
	compute(c *Chart) error
	render(r renderer.Renderer) error
}

// AttachRenderer builds one render node per the active preset's primary
// render type plus its Metrics, registers them with the RenderGraph, and
// validates the resulting dependency graph. A Chart with no attached
// renderer still runs its full command/data/compute path (see chart_test.go);
// this only wires the GPU-facing half in, for a host that has a real
// renderer.Renderer to hand it.
//
// Parameters:
//   - r: the Renderer to register pipelines and GPU resources on
//   - pool: the shared resource pool backing pipeline/buffer reuse
//   - assetPath: the directory containing the render nodes' .wgsl shaders
//
// Returns:
//   - error: any pipeline registration, bind group, or graph validation failure
func (c *Chart) AttachRenderer(r renderer.Renderer, pool *resourcepool.Pool, assetPath string) error {
	bg, err := nodes.NewBackgroundNode(r, pool.Pipelines, assetPath)
	if err != nil {
		return err
	}
	xAxis, err := nodes.NewAxisNode(r, pool.Pipelines, assetPath, "x-axis", false)
	if err != nil {
		return err
	}
	yAxis, err := nodes.NewAxisNode(r, pool.Pipelines, assetPath, "y-axis", true)
	if err != nil {
		return err
	}

	frames := []frameNode{
		&backgroundFrame{bg},
		&axisFrame{AxisNode: xAxis, vertical: false},
		&axisFrame{AxisNode: yAxis, vertical: true},
	}

	c.mu.Lock()
	active := c.active
	c.mu.Unlock()

	for _, spec := range active.Metrics {
		m := c.store.Metric(spec.Name)
		if m == nil {
			continue
		}
		dataType, ok := active.DataTypeForColumn(spec.Name)
		if !ok {
			continue
		}

		switch spec.Style.Style() {
		case model.RenderStyleLine:
			n, err := nodes.NewLineNode(r, pool.Pipelines, assetPath, spec.Name)
			if err != nil {
				return err
			}
			frames = append(frames, &lineFrame{LineNode: n, metric: m, dataType: dataType})
		case model.RenderStyleBar:
			n, err := nodes.NewCandlestickNode(r, pool.Pipelines, assetPath, spec.Name)
			if err != nil {
				return err
			}
			frames = append(frames, &candlestickFrame{CandlestickNode: n, metric: m, dataType: dataType})
		case model.RenderStyleTriangle:
			n, err := nodes.NewTriangleNode(r, pool.Pipelines, assetPath, spec.Name)
			if err != nil {
				return err
			}
			frames = append(frames, &triangleFrame{TriangleNode: n, metric: m, dataType: dataType})
		}
	}

	graphNodes := make([]rendergraph.Node, len(frames))
	byName := make(map[string]frameNode, len(frames))
	for i, f := range frames {
		graphNodes[i] = f
		byName[f.Name()] = f
	}
	graph := rendergraph.New(graphNodes...)
	if err := graph.Validate(); err != nil {
		return err
	}

	c.mu.Lock()
	c.renderer = r
	c.pool = pool
	c.graph = graph
	c.frameByName = byName
	c.mu.Unlock()
	return nil
}

// Render implements scheduler.RenderFunc: it runs every render node's
// compute prepass in the RenderGraph's dependency order, then records/
// submits each node's draw call in priority order. A host registers this
// via engine.Engine.SetRenderFunc. A Chart with no attached renderer treats
// Render as a no-op, so the headless command/data/compute path stays
// exercisable without a GPU device.
//
// Returns:
//   - error: GpuError wrapping whichever node's Compute or Render call failed
func (c *Chart) Render() error {
	c.mu.Lock()
	graph, byName, r := c.graph, c.frameByName, c.renderer
	c.mu.Unlock()

	if graph == nil || r == nil {
		return nil
	}

	for _, n := range graph.ComputeOrder() {
		if err := byName[n.Name()].compute(c); err != nil {
			return vantageerr.New(vantageerr.GpuError, "computing node %s: %w", n.Name(), err)
		}
	}
	for _, n := range graph.RenderOrder() {
		if err := byName[n.Name()].render(r); err != nil {
			return vantageerr.New(vantageerr.GpuError, "rendering node %s: %w", n.Name(), err)
		}
	}
	return nil
}

func (c *Chart) viewportUniform() model.GPUViewportUniform {
	xMin, xMax := c.store.Viewport().XRange()
	yMin, yMax := c.store.Viewport().YRange()
	width, height := c.store.Viewport().ScreenSize()
	return model.GPUViewportUniform{
		XMin: float32(xMin), XMax: float32(xMax),
		YMin: yMin, YMax: yMax,
		PixelWidth: float32(width), PixelHeight: float32(height),
	}
}

// paletteUniform builds the per-node palette uniform from one Metric's
// color. The active preset has no separate up/down/background color
// concept yet (preset.MetricSpec carries a single RGBA), so every slot
// shares it; a future preset schema revision that adds those colors would
// populate this from the preset instead of the metric.
func paletteUniform(m *model.Metric) model.GPUPaletteUniform {
	color := m.Color()
	return model.GPUPaletteUniform{
		UpColor: color, DownColor: color, LineColor: color, BackgroundColor: color,
	}
}

type backgroundFrame struct {
	*nodes.BackgroundNode
}

func (w *backgroundFrame) compute(c *Chart) error { return nil }

func (w *backgroundFrame) render(r renderer.Renderer) error {
	return w.BackgroundNode.Render(r)
}

type axisFrame struct {
	*nodes.AxisNode
	vertical bool
}

// axisTicks picks a fixed 10-tick layout over [lo, hi]; spec.md's §4.4.6
// axis node just needs a tick_step and tick_count, not a labeling scheme.
func axisTicks(lo, hi float64) (tickCount uint32, tickStep float32) {
	const ticks = 10
	if hi <= lo {
		return 0, 0
	}
	return ticks, float32((hi - lo) / ticks)
}

func (w *axisFrame) compute(c *Chart) error {
	var tickCount uint32
	var tickStep float32
	if w.vertical {
		yMin, yMax := c.store.Viewport().YRange()
		tickCount, tickStep = axisTicks(float64(yMin), float64(yMax))
	} else {
		xMin, xMax := c.store.Viewport().XRange()
		tickCount, tickStep = axisTicks(float64(xMin), float64(xMax))
	}
	return w.AxisNode.Compute(c.renderer, tickCount, tickStep)
}

func (w *axisFrame) render(r renderer.Renderer) error {
	return w.AxisNode.Render(r)
}

type lineFrame struct {
	*nodes.LineNode
	metric   *model.Metric
	dataType string
}

func (w *lineFrame) compute(c *Chart) error {
	xMin, xMax := c.store.Viewport().XRange()
	times, err := c.manager.Times(c.symbol, w.dataType, xMin, xMax)
	if err != nil {
		return err
	}
	values, err := c.manager.Column(c.symbol, w.dataType, w.metric.SeriesName(), xMin, xMax)
	if err != nil {
		return err
	}

	cull := c.engine.Cull(times, xMin, xMax)
	if cull.Empty() {
		return nil
	}
	visTimes := times[cull.FirstVisible : cull.LastVisible+1]
	visValues := values[cull.FirstVisible : cull.LastVisible+1]

	ft := make([]float32, len(visTimes))
	for i, t := range visTimes {
		ft[i] = float32(t)
	}

	return w.LineNode.Compute(c.renderer, ft, visValues, c.viewportUniform(), paletteUniform(w.metric))
}

func (w *lineFrame) render(r renderer.Renderer) error {
	return w.LineNode.Render(r)
}

type candlestickFrame struct {
	*nodes.CandlestickNode
	metric   *model.Metric
	dataType string
}

func (w *candlestickFrame) compute(c *Chart) error {
	xMin, xMax := c.store.Viewport().XRange()
	times, err := c.manager.Times(c.symbol, w.dataType, xMin, xMax)
	if err != nil {
		return err
	}
	prices, err := c.manager.Column(c.symbol, w.dataType, w.metric.SeriesName(), xMin, xMax)
	if err != nil {
		return err
	}
	volumes, err := c.manager.Column(c.symbol, w.dataType, "volume", xMin, xMax)
	if err != nil {
		return err
	}

	candles := c.engine.AggregateCandles(times, prices, volumes, c.bucketSeconds)
	return w.CandlestickNode.Compute(c.renderer, candles, c.viewportUniform(), paletteUniform(w.metric))
}

func (w *candlestickFrame) render(r renderer.Renderer) error {
	return w.CandlestickNode.Render(r)
}

type triangleFrame struct {
	*nodes.TriangleNode
	metric   *model.Metric
	dataType string
}

func (w *triangleFrame) compute(c *Chart) error {
	xMin, xMax := c.store.Viewport().XRange()
	times, err := c.manager.Times(c.symbol, w.dataType, xMin, xMax)
	if err != nil {
		return err
	}
	values, err := c.manager.Column(c.symbol, w.dataType, w.metric.SeriesName(), xMin, xMax)
	if err != nil {
		return err
	}

	cull := c.engine.Cull(times, xMin, xMax)
	if cull.Empty() {
		return nil
	}

	markers := make([]model.GPUTriangleVertex, 0, cull.VisibleCount())
	for i := cull.FirstVisible; i <= cull.LastVisible; i++ {
		markers = append(markers, model.GPUTriangleVertex{
			X: float32(times[i]), Y: values[i], Size: 1,
		})
	}

	return w.TriangleNode.Compute(c.renderer, markers, c.viewportUniform(), paletteUniform(w.metric))
}

func (w *triangleFrame) render(r renderer.Renderer) error {
	return w.TriangleNode.Render(r)
}
