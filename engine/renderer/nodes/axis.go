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

// axisPriority is the highest render priority: tick lines draw over
// everything else (spec.md §4.4.6).
const axisPriority uint32 = 150

// AxisNode draws the tick-line grid for one axis (x or y). Tick positions
// are computed CPU-side from the viewport's visible span and tick_step, then
// uploaded as a flat line-list vertex buffer already in clip space, the same
// CPU-interleave-then-upload shape as LineNode's SeriesVertex packing.
type AxisNode struct {
	name     string
	vertical bool
	pipeline pipeline.Pipeline
	vs       shader.Shader
	mesh     bind_group_provider.BindGroupProvider
	uniform  bind_group_provider.BindGroupProvider
	palette  bind_group_provider.BindGroupProvider
	segments int
}

// NewAxisNode builds and registers the axis pipeline.
//
// Parameters:
//   - r: the Renderer to register the pipeline and GPU resources on
//   - pool: the shared pipeline cache, or nil
//   - assetPath: the directory containing axis.wgsl
//   - name: "x-axis" or "y-axis", used to key the pipeline
//   - vertical: true for the y-axis (vertical tick lines), false for the x-axis
//
// Returns:
//   - *AxisNode: the constructed node
//   - error: any pipeline registration or bind group failure
func NewAxisNode(r Renderer, pool *resourcepool.PipelineCache, assetPath, name string, vertical bool) (*AxisNode, error) {
	p, vs := buildPipeline(pool, name, assetPath+"/axis.wgsl", assetPath+"/axis.wgsl",
		pipeline.WithTopology(wgpu.PrimitiveTopologyLineList))
	if err := r.RegisterPipelines(p); err != nil {
		return nil, err
	}

	uniform, err := initUniformGroup(r, vs, name+":uniform", 0)
	if err != nil {
		return nil, err
	}
	palette, err := initUniformGroup(r, vs, name+":palette", 1)
	if err != nil {
		return nil, err
	}

	return &AxisNode{
		name:     name,
		vertical: vertical,
		pipeline: p,
		vs:       vs,
		mesh:     bind_group_provider.NewBindGroupProvider(name + ":mesh"),
		uniform:  uniform,
		palette:  palette,
	}, nil
}

// Name implements rendergraph.Node.
func (n *AxisNode) Name() string { return n.name }

// Priority implements rendergraph.Node.
func (n *AxisNode) Priority() uint32 { return axisPriority }

// NeedsCompute implements rendergraph.Node; tick layout depends on the
// current viewport span.
func (n *AxisNode) NeedsCompute() bool { return true }

// Reads implements rendergraph.Node.
func (n *AxisNode) Reads() []rendergraph.ResourceKey {
	return []rendergraph.ResourceKey{"viewport", "palette"}
}

// Writes implements rendergraph.Node.
func (n *AxisNode) Writes() []rendergraph.ResourceKey { return nil }

// Compute lays out tickCount evenly spaced ticks spanning the axis's full
// clip-space extent and uploads them as a line-list mesh; tickStep is
// recorded in the AxisUniform for a future tick-label pass to read back.
//
// Parameters:
//   - r: the Renderer to stage GPU resources through
//   - tickCount: the number of gridlines to draw
//   - tickStep: the data-space spacing between ticks
//
// Returns:
//   - error: an error if buffer creation fails
func (n *AxisNode) Compute(r Renderer, tickCount uint32, tickStep float32) error {
	n.segments = int(tickCount)
	if n.segments == 0 {
		return nil
	}

	denom := n.segments - 1
	if denom == 0 {
		denom = 1
	}

	clipCoords := make([]float32, 0, n.segments*4)
	for i := 0; i < n.segments; i++ {
		t := -1.0 + 2.0*float32(i)/float32(denom)
		if n.vertical {
			clipCoords = append(clipCoords, -1, t, 1, t)
		} else {
			clipCoords = append(clipCoords, t, -1, t, 1)
		}
	}

	vertexData := make([]byte, 0, len(clipCoords)*4)
	for i := 0; i < len(clipCoords); i += 2 {
		vertexData = append(vertexData, model.MarshalSeriesVertices(clipCoords[i:i+1], clipCoords[i+1:i+2])...)
	}

	indices := make([]uint32, n.segments*2)
	for i := range indices {
		indices[i] = uint32(i)
	}
	if err := r.InitMeshBuffers(n.mesh, vertexData, packIndices(indices), len(indices)); err != nil {
		return err
	}

	vertical := uint32(0)
	if n.vertical {
		vertical = 1
	}
	axisUniform := model.GPUAxisUniform{TickCount: tickCount, TickStep: tickStep, Vertical: vertical}
	r.WriteBuffers([]bind_group_provider.BufferWrite{
		{Provider: n.uniform, Binding: 0, Data: axisUniform.Marshal()},
	})
	return nil
}

// SetPalette stages the active preset's line color for the next Render call.
//
// Parameters:
//   - r: the Renderer to stage the write through
//   - palette: the active preset's GPU-aligned palette
func (n *AxisNode) SetPalette(r Renderer, palette model.GPUPaletteUniform) {
	r.WriteBuffers([]bind_group_provider.BufferWrite{
		{Provider: n.palette, Binding: 0, Data: palette.Marshal()},
	})
}

// Render draws the tick-line grid, if any ticks are laid out.
//
// Parameters:
//   - r: the Renderer to draw through
//
// Returns:
//   - error: an error if the draw call fails
func (n *AxisNode) Render(r Renderer) error {
	if n.segments == 0 {
		return nil
	}
	return r.DrawCall(n.pipeline.PipelineKey(), n.mesh, 1, []bind_group_provider.BindGroupProvider{n.uniform, n.palette})
}
