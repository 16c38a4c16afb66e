package nodes

import (
	"github.com/vantage-chart/vantage-engine/engine/renderer/bind_group_provider"
	"github.com/vantage-chart/vantage-engine/engine/renderer/pipeline"
	"github.com/vantage-chart/vantage-engine/engine/renderer/shader"
	"github.com/vantage-chart/vantage-engine/model"
	"github.com/vantage-chart/vantage-engine/rendergraph"
	"github.com/vantage-chart/vantage-engine/resourcepool"
)

// trianglePriority sits above candles but below axes (spec.md §4.4.6).
const trianglePriority uint32 = 120

// TriangleNode draws a Metric with RenderStyleTriangle as per-sample marker
// triangles (e.g. trade-side flags). Like CandlestickNode, its per-instance
// data lives in a storage buffer indexed by instance_index over a single
// static triangle mesh.
type TriangleNode struct {
	name      string
	pipeline  pipeline.Pipeline
	vs        shader.Shader
	mesh      bind_group_provider.BindGroupProvider
	instances bind_group_provider.BindGroupProvider
	palette   bind_group_provider.BindGroupProvider
	count     int
}

// NewTriangleNode builds and registers the triangle-marker pipeline and its
// static unit triangle mesh.
//
// Parameters:
//   - r: the Renderer to register the pipeline and GPU resources on
//   - pool: the shared pipeline cache, or nil
//   - assetPath: the directory containing triangle.wgsl
//   - metricName: the owning Metric's name
//
// Returns:
//   - *TriangleNode: the constructed node
//   - error: any pipeline registration or bind group failure
func NewTriangleNode(r Renderer, pool *resourcepool.PipelineCache, assetPath, metricName string) (*TriangleNode, error) {
	key := "triangle:" + metricName
	p, vs := buildPipeline(pool, "triangle", assetPath+"/triangle.wgsl", assetPath+"/triangle.wgsl")
	if err := r.RegisterPipelines(p); err != nil {
		return nil, err
	}

	instances, err := initGroup(r, vs, key+":instances", 0, map[int]uint64{
		1: maxStorageInstances * uint64((&model.GPUTriangleVertex{}).Size()),
	})
	if err != nil {
		return nil, err
	}
	palette, err := initUniformGroup(r, vs, key+":palette", 1)
	if err != nil {
		return nil, err
	}

	mesh := bind_group_provider.NewBindGroupProvider(key + ":mesh")
	vertexData := packVec2([][2]float32{{0, 1}, {-0.866, -0.5}, {0.866, -0.5}})
	indexData := packIndices([]uint32{0, 1, 2})
	if err := r.InitMeshBuffers(mesh, vertexData, indexData, 3); err != nil {
		return nil, err
	}

	return &TriangleNode{
		name:      "triangle:" + metricName,
		pipeline:  p,
		vs:        vs,
		mesh:      mesh,
		instances: instances,
		palette:   palette,
	}, nil
}

// Name implements rendergraph.Node.
func (n *TriangleNode) Name() string { return n.name }

// Priority implements rendergraph.Node.
func (n *TriangleNode) Priority() uint32 { return trianglePriority }

// NeedsCompute implements rendergraph.Node; marker positions depend on the
// current culled window.
func (n *TriangleNode) NeedsCompute() bool { return true }

// Reads implements rendergraph.Node.
func (n *TriangleNode) Reads() []rendergraph.ResourceKey {
	return []rendergraph.ResourceKey{rendergraph.ResourceKey("culling:" + n.name), "viewport", "palette"}
}

// Writes implements rendergraph.Node.
func (n *TriangleNode) Writes() []rendergraph.ResourceKey { return nil }

// Compute packs the marker positions and current viewport/palette into their
// GPU buffers.
//
// Parameters:
//   - r: the Renderer to stage GPU resources through
//   - markers: the visible marker records, clamped to maxStorageInstances
//   - viewport: the current frame's viewport uniform
//   - palette: the active preset's palette uniform
//
// Returns:
//   - error: an error if buffer creation fails
func (n *TriangleNode) Compute(r Renderer, markers []model.GPUTriangleVertex, viewport model.GPUViewportUniform, palette model.GPUPaletteUniform) error {
	if len(markers) > maxStorageInstances {
		markers = markers[:maxStorageInstances]
	}
	n.count = len(markers)
	if n.count == 0 {
		return nil
	}

	buf := make([]byte, 0, n.count*16)
	for i := range markers {
		buf = append(buf, markers[i].Marshal()...)
	}

	r.WriteBuffers([]bind_group_provider.BufferWrite{
		{Provider: n.instances, Binding: 0, Data: viewport.Marshal()},
		{Provider: n.instances, Binding: 1, Data: buf},
		{Provider: n.palette, Binding: 0, Data: palette.Marshal()},
	})
	return nil
}

// Render draws one instance per visible marker, if any.
//
// Parameters:
//   - r: the Renderer to draw through
//
// Returns:
//   - error: an error if the draw call fails
func (n *TriangleNode) Render(r Renderer) error {
	if n.count == 0 {
		return nil
	}
	return r.DrawCall(n.pipeline.PipelineKey(), n.mesh, uint32(n.count), []bind_group_provider.BindGroupProvider{n.instances, n.palette})
}
