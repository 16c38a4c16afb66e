package nodes

import (
	"github.com/cogentcore/webgpu/wgpu"

	"github.com/vantage-chart/vantage-engine/engine/renderer/bind_group_provider"
	"github.com/vantage-chart/vantage-engine/engine/renderer/pipeline"
	"github.com/vantage-chart/vantage-engine/engine/renderer/shader"
	"github.com/vantage-chart/vantage-engine/model"
	"github.com/vantage-chart/vantage-engine/rendergraph"
	"github.com/vantage-chart/vantage-engine/resourcepool"
)

// linePriority sits above candles but below triangles/axes, so a plot's
// polyline renders over candle bodies and under markers and axes when
// overlaid (spec.md §4.4.6 priority table).
const linePriority uint32 = 100

// LineNode draws a single Metric with RenderStyleLine as a continuous
// polyline over the currently visible (culled) point range. Its compute
// prepass is the CPU interleave of separate time/value columns into
// SeriesVertex pairs — the GPU never sees the raw columns directly.
type LineNode struct {
	name     string
	pipeline pipeline.Pipeline
	vs       shader.Shader
	mesh     bind_group_provider.BindGroupProvider
	viewport bind_group_provider.BindGroupProvider
	palette  bind_group_provider.BindGroupProvider
	points   int
}

// NewLineNode builds and registers the line pipeline for one metric. The
// underlying Pipeline is shared across every line-style metric (keyed by
// shader shape, not metricName) via pool, since all line plots use the same
// shader and only differ in the per-instance viewport/palette/vertex data
// each node instance owns separately.
//
// Parameters:
//   - r: the Renderer to register the pipeline and GPU resources on
//   - pool: the shared pipeline cache, or nil
//   - assetPath: the directory containing line.wgsl
//   - metricName: the owning Metric's name, used to label this instance's GPU resources
//
// Returns:
//   - *LineNode: the constructed node
//   - error: any pipeline registration or bind group failure
func NewLineNode(r Renderer, pool *resourcepool.PipelineCache, assetPath, metricName string) (*LineNode, error) {
	key := "line:" + metricName
	p, vs := buildPipeline(pool, "line", assetPath+"/line.wgsl", assetPath+"/line.wgsl",
		pipeline.WithTopology(wgpu.PrimitiveTopologyLineStrip))
	if err := r.RegisterPipelines(p); err != nil {
		return nil, err
	}

	viewport, err := initUniformGroup(r, vs, key+":viewport", 0)
	if err != nil {
		return nil, err
	}
	palette, err := initUniformGroup(r, vs, key+":palette", 1)
	if err != nil {
		return nil, err
	}

	return &LineNode{
		name:     "line:" + metricName,
		pipeline: p,
		vs:       vs,
		mesh:     bind_group_provider.NewBindGroupProvider(key + ":mesh"),
		viewport: viewport,
		palette:  palette,
	}, nil
}

// Name implements rendergraph.Node.
func (n *LineNode) Name() string { return n.name }

// Priority implements rendergraph.Node.
func (n *LineNode) Priority() uint32 { return linePriority }

// NeedsCompute implements rendergraph.Node; the visible point range changes
// with every pan/zoom/tick, so the polyline is rebuilt every frame.
func (n *LineNode) NeedsCompute() bool { return true }

// Reads implements rendergraph.Node.
func (n *LineNode) Reads() []rendergraph.ResourceKey {
	return []rendergraph.ResourceKey{rendergraph.ResourceKey("culling:" + n.name), "viewport", "palette"}
}

// Writes implements rendergraph.Node.
func (n *LineNode) Writes() []rendergraph.ResourceKey { return nil }

// Compute interleaves the visible time/value columns into the line's vertex
// buffer and refreshes the viewport/palette uniforms. The vertex buffer is
// recreated each call since the visible point count changes with the
// viewport, following the teacher animator's Grow discipline of recreating
// rather than patching GPU buffers when element counts change.
//
// Parameters:
//   - r: the Renderer to stage GPU resources through
//   - times, values: the visible (already culled) point columns, aligned and non-empty
//   - viewport: the current frame's viewport uniform
//   - palette: the active preset's palette uniform
//
// Returns:
//   - error: an error if buffer creation fails
func (n *LineNode) Compute(r Renderer, times, values []float32, viewport model.GPUViewportUniform, palette model.GPUPaletteUniform) error {
	n.points = len(times)
	if n.points == 0 {
		return nil
	}

	vertexData := model.MarshalSeriesVertices(times, values)
	indices := make([]uint32, n.points)
	for i := range indices {
		indices[i] = uint32(i)
	}
	if err := r.InitMeshBuffers(n.mesh, vertexData, packIndices(indices), n.points); err != nil {
		return err
	}

	r.WriteBuffers([]bind_group_provider.BufferWrite{
		{Provider: n.viewport, Binding: 0, Data: viewport.Marshal()},
		{Provider: n.palette, Binding: 0, Data: palette.Marshal()},
	})
	return nil
}

// Render draws the polyline, if any points are currently visible.
//
// Parameters:
//   - r: the Renderer to draw through
//
// Returns:
//   - error: an error if the draw call fails
func (n *LineNode) Render(r Renderer) error {
	if n.points == 0 {
		return nil
	}
	return r.DrawCall(n.pipeline.PipelineKey(), n.mesh, 1, []bind_group_provider.BindGroupProvider{n.viewport, n.palette})
}
