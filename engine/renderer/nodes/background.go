package nodes

import (
	"github.com/vantage-chart/vantage-engine/engine/renderer/bind_group_provider"
	"github.com/vantage-chart/vantage-engine/engine/renderer/pipeline"
	"github.com/vantage-chart/vantage-engine/engine/renderer/shader"
	"github.com/vantage-chart/vantage-engine/model"
	"github.com/vantage-chart/vantage-engine/rendergraph"
	"github.com/vantage-chart/vantage-engine/resourcepool"
)

// backgroundPriority is the lowest render priority: the plot area's fill
// must be drawn before every other node.
const backgroundPriority uint32 = 0

// BackgroundNode fills the chart's plot area with the active preset's
// background color. It has no compute prepass and no per-frame vertex data;
// its quad mesh is built once and its palette buffer only changes when the
// preset does.
type BackgroundNode struct {
	pipeline pipeline.Pipeline
	vs       shader.Shader
	mesh     bind_group_provider.BindGroupProvider
	palette  bind_group_provider.BindGroupProvider
}

// NewBackgroundNode builds and registers the background pipeline and its
// static quad mesh.
//
// Parameters:
//   - r: the Renderer to register the pipeline and GPU resources on
//   - pool: the shared pipeline cache, or nil
//   - assetPath: the directory containing background.wgsl
//
// Returns:
//   - *BackgroundNode: the constructed node
//   - error: any pipeline registration or bind group failure
func NewBackgroundNode(r Renderer, pool *resourcepool.PipelineCache, assetPath string) (*BackgroundNode, error) {
	p, vs := buildPipeline(pool, "background", assetPath+"/background.wgsl", assetPath+"/background.wgsl")
	if err := r.RegisterPipelines(p); err != nil {
		return nil, err
	}

	palette, err := initUniformGroup(r, vs, "background:palette", 0)
	if err != nil {
		return nil, err
	}

	mesh := bind_group_provider.NewBindGroupProvider("background:mesh")
	vertexData, indexData := quadMesh(-1, -1, 1, 1)
	if err := r.InitMeshBuffers(mesh, vertexData, indexData, 6); err != nil {
		return nil, err
	}

	return &BackgroundNode{pipeline: p, vs: vs, mesh: mesh, palette: palette}, nil
}

// Name implements rendergraph.Node.
func (n *BackgroundNode) Name() string { return "background" }

// Priority implements rendergraph.Node.
func (n *BackgroundNode) Priority() uint32 { return backgroundPriority }

// NeedsCompute implements rendergraph.Node; the background has no prepass.
func (n *BackgroundNode) NeedsCompute() bool { return false }

// Reads implements rendergraph.Node.
func (n *BackgroundNode) Reads() []rendergraph.ResourceKey {
	return []rendergraph.ResourceKey{"palette"}
}

// Writes implements rendergraph.Node.
func (n *BackgroundNode) Writes() []rendergraph.ResourceKey { return nil }

// SetPalette stages the active preset's colors for the next Render call.
//
// Parameters:
//   - r: the Renderer to stage the write through
//   - palette: the active preset's GPU-aligned palette
func (n *BackgroundNode) SetPalette(r Renderer, palette model.GPUPaletteUniform) {
	r.WriteBuffers([]bind_group_provider.BufferWrite{
		{Provider: n.palette, Binding: 0, Data: palette.Marshal()},
	})
}

// Render draws the background quad.
//
// Parameters:
//   - r: the Renderer to draw through
//
// Returns:
//   - error: an error if the draw call fails
func (n *BackgroundNode) Render(r Renderer) error {
	return r.DrawCall(n.pipeline.PipelineKey(), n.mesh, 1, []bind_group_provider.BindGroupProvider{n.palette})
}
