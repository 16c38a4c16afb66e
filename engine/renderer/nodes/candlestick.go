package nodes

import (
	"github.com/vantage-chart/vantage-engine/engine/renderer/bind_group_provider"
	"github.com/vantage-chart/vantage-engine/engine/renderer/pipeline"
	"github.com/vantage-chart/vantage-engine/engine/renderer/shader"
	"github.com/vantage-chart/vantage-engine/model"
	"github.com/vantage-chart/vantage-engine/rendergraph"
	"github.com/vantage-chart/vantage-engine/resourcepool"
)

// candlestickPriority sits above the background but below the line/plot
// layer, markers and axes (spec.md §4.4.6 priority table).
const candlestickPriority uint32 = 50

// CandlestickNode draws a Metric with RenderStyleBar as OHLCV candle bodies.
// Its compute prepass packs compute.Engine's AggregateCandles output into
// the GPUCandleVertex storage array every node instance reads by
// instance_index; the mesh itself is a single static unit quad shared by
// every candle.
type CandlestickNode struct {
	name      string
	pipeline  pipeline.Pipeline
	vs        shader.Shader
	mesh      bind_group_provider.BindGroupProvider
	instances bind_group_provider.BindGroupProvider
	palette   bind_group_provider.BindGroupProvider
	count     int
}

// NewCandlestickNode builds and registers the candlestick pipeline and its
// static unit quad mesh.
//
// Parameters:
//   - r: the Renderer to register the pipeline and GPU resources on
//   - pool: the shared pipeline cache, or nil
//   - assetPath: the directory containing candlestick.wgsl
//   - metricName: the owning Metric's name
//
// Returns:
//   - *CandlestickNode: the constructed node
//   - error: any pipeline registration or bind group failure
func NewCandlestickNode(r Renderer, pool *resourcepool.PipelineCache, assetPath, metricName string) (*CandlestickNode, error) {
	key := "candlestick:" + metricName
	p, vs := buildPipeline(pool, "candlestick", assetPath+"/candlestick.wgsl", assetPath+"/candlestick.wgsl")
	if err := r.RegisterPipelines(p); err != nil {
		return nil, err
	}

	instances, err := initGroup(r, vs, key+":instances", 0, map[int]uint64{
		1: maxStorageInstances * uint64((&model.GPUCandleVertex{}).Size()),
	})
	if err != nil {
		return nil, err
	}
	palette, err := initUniformGroup(r, vs, key+":palette", 1)
	if err != nil {
		return nil, err
	}

	mesh := bind_group_provider.NewBindGroupProvider(key + ":mesh")
	vertexData, indexData := quadMesh(-0.5, 0, 0.5, 1)
	if err := r.InitMeshBuffers(mesh, vertexData, indexData, 6); err != nil {
		return nil, err
	}

	return &CandlestickNode{
		name:      "candlestick:" + metricName,
		pipeline:  p,
		vs:        vs,
		mesh:      mesh,
		instances: instances,
		palette:   palette,
	}, nil
}

// Name implements rendergraph.Node.
func (n *CandlestickNode) Name() string { return n.name }

// Priority implements rendergraph.Node.
func (n *CandlestickNode) Priority() uint32 { return candlestickPriority }

// NeedsCompute implements rendergraph.Node; candles are re-aggregated on
// every viewport change.
func (n *CandlestickNode) NeedsCompute() bool { return true }

// Reads implements rendergraph.Node.
func (n *CandlestickNode) Reads() []rendergraph.ResourceKey {
	return []rendergraph.ResourceKey{rendergraph.ResourceKey("candles:" + n.name), "viewport", "palette"}
}

// Writes implements rendergraph.Node.
func (n *CandlestickNode) Writes() []rendergraph.ResourceKey { return nil }

// Compute packs the candle records and current viewport/palette into their
// GPU buffers. The records are written into the fixed-size storage buffer
// created at construction (maxStorageInstances candles); candles beyond that
// are dropped.
//
// Parameters:
//   - r: the Renderer to stage GPU resources through
//   - candles: the bucketed OHLCV records for the visible window, in bucket order
//   - viewport: the current frame's viewport uniform
//   - palette: the active preset's palette uniform
//
// Returns:
//   - error: an error if buffer creation fails
func (n *CandlestickNode) Compute(r Renderer, candles []model.CandleRecord, viewport model.GPUViewportUniform, palette model.GPUPaletteUniform) error {
	if len(candles) > maxStorageInstances {
		candles = candles[:maxStorageInstances]
	}
	n.count = len(candles)
	if n.count == 0 {
		return nil
	}

	buf := make([]byte, 0, n.count*32)
	for _, c := range candles {
		gv := model.GPUCandleVertex{
			Time:        float32(c.BucketStart),
			Open:        c.Open,
			High:        c.High,
			Low:         c.Low,
			Close:       c.Close,
			Volume:      c.Volume,
			BucketWidth: candleBucketWidth(candles),
		}
		buf = append(buf, gv.Marshal()...)
	}

	r.WriteBuffers([]bind_group_provider.BufferWrite{
		{Provider: n.instances, Binding: 0, Data: viewport.Marshal()},
		{Provider: n.instances, Binding: 1, Data: buf},
		{Provider: n.palette, Binding: 0, Data: palette.Marshal()},
	})
	return nil
}

// candleBucketWidth derives the bucket width in seconds from two consecutive
// bucket starts, falling back to 1 second when only one candle is visible.
func candleBucketWidth(candles []model.CandleRecord) float32 {
	if len(candles) < 2 {
		return 1
	}
	return float32(candles[1].BucketStart - candles[0].BucketStart)
}

// Render draws one instance per visible candle, if any.
//
// Parameters:
//   - r: the Renderer to draw through
//
// Returns:
//   - error: an error if the draw call fails
func (n *CandlestickNode) Render(r Renderer) error {
	if n.count == 0 {
		return nil
	}
	return r.DrawCall(n.pipeline.PipelineKey(), n.mesh, uint32(n.count), []bind_group_provider.BindGroupProvider{n.instances, n.palette})
}
