// Package nodes holds the five render-node implementations of
// rendergraph.Node: background, candlestick, line/plot, triangle marker, and
// axis. Each node owns its own shader pair, pipeline, and bind group
// providers, and stages its per-frame GPU writes in Compute before drawing
// in Render, following the teacher's
// engine/renderer/animator.Animator.PrepareFrame/Flush split between
// per-frame CPU staging and the GPU write/draw it feeds.
package nodes

import (
	"encoding/binary"
	"math"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/vantage-chart/vantage-engine/engine/renderer"
	"github.com/vantage-chart/vantage-engine/engine/renderer/bind_group_provider"
	"github.com/vantage-chart/vantage-engine/engine/renderer/pipeline"
	"github.com/vantage-chart/vantage-engine/engine/renderer/shader"
	"github.com/vantage-chart/vantage-engine/resourcepool"
)

// Renderer is the subset of renderer.Renderer every node needs: pipeline
// registration, GPU resource initialization, buffer writes, and draw
// submission. Aliased rather than redeclared so a node can be handed the
// engine's concrete Renderer directly.
type Renderer = renderer.Renderer

// buildPipeline loads a vertex/fragment shader pair from disk, relying on
// shader.NewShader's WGSL reflection to derive vertex layouts and bind group
// layouts from the source's @location/@group/@binding annotations, then
// constructs a render Pipeline over them. Registration with the Renderer
// (which actually creates the GPU pipeline object) is the caller's
// responsibility via Renderer.RegisterPipelines.
//
// key is a shader-shape key shared by every node instance of the same draw
// type (e.g. "line", not "line:AAPL") so that many metrics of the same render
// style resolve to one Pipeline object via pool, the same sharing
// resourcepool.PipelineCache's doc comment describes: the teacher kept one
// pipeline per animator type, but chart nodes share pipelines by shader
// shape, not by caller-chosen instance label. pool may be nil, in which case
// the pipeline is always rebuilt (used by tests and any caller without a
// resourcepool.Pool attached).
//
// Parameters:
//   - pool: the shared pipeline cache to dedupe identical shader pairs through, or nil
//   - key: the pipeline's shader-shape cache key
//   - vertexPath, fragmentPath: WGSL source file paths
//   - opts: additional pipeline builder options (topology, blend, cull mode, ...)
//
// Returns:
//   - pipeline.Pipeline: the unregistered pipeline
//   - shader.Shader: the parsed vertex shader, used to read back reflected
//     bind group layouts for InitBindGroup
func buildPipeline(pool *resourcepool.PipelineCache, key, vertexPath, fragmentPath string, opts ...pipeline.PipelineBuilderOption) (pipeline.Pipeline, shader.Shader) {
	vs := shader.NewShader(key+":vertex", shader.ShaderTypeVertex, vertexPath)
	fs := shader.NewShader(key+":fragment", shader.ShaderTypeFragment, fragmentPath)

	base := []pipeline.PipelineBuilderOption{
		pipeline.WithVertexShader(vs),
		pipeline.WithFragmentShader(fs),
		pipeline.WithTopology(wgpu.PrimitiveTopologyTriangleList),
	}
	base = append(base, opts...)

	build := func() pipeline.Pipeline {
		return pipeline.NewPipeline(key, pipeline.PipelineTypeRender, base...)
	}
	if pool == nil {
		return build(), vs
	}
	return pool.GetOrBuild(key, build), vs
}

// initUniformGroup creates a BindGroupProvider over the shader-reflected
// layout for the given group index and hands it back ready for WriteBuffers
// calls. Every node's constructor calls this (or initGroup) once for each of
// its bind groups.
func initUniformGroup(r Renderer, vs shader.Shader, label string, group int) (bind_group_provider.BindGroupProvider, error) {
	return initGroup(r, vs, label, group, nil)
}

// maxStorageInstances bounds the element count of a node's per-instance
// storage buffer (candles, markers). Reflection cannot size a runtime-sized
// WGSL array, so callers pass this as a bufferSizeOverride; a viewport
// holding more instances than this in one frame is clamped to it by the
// node's Compute.
const maxStorageInstances = 8192

// initGroup is initUniformGroup with an explicit bufferSizeOverride for
// bindings whose WGSL type is a runtime-sized storage array, which
// shader-reflection cannot size from the struct definition alone.
func initGroup(r Renderer, vs shader.Shader, label string, group int, sizeOverrides map[int]uint64) (bind_group_provider.BindGroupProvider, error) {
	provider := bind_group_provider.NewBindGroupProvider(label)
	descriptor := vs.BindGroupLayoutDescriptor(group)
	if err := r.InitBindGroup(provider, descriptor, nil, sizeOverrides); err != nil {
		return nil, err
	}
	return provider, nil
}

// quadMesh returns the vertex/index bytes for a unit quad in the given
// corner layout, used as the static per-instance mesh for candlestick and
// background draws (4 corners, 2 triangles, reused across every instance).
func quadMesh(minX, minY, maxX, maxY float32) (vertexData, indexData []byte) {
	corners := [][2]float32{
		{minX, minY},
		{maxX, minY},
		{minX, maxY},
		{maxX, maxY},
	}
	vertexData = packVec2(corners)
	indexData = packIndices([]uint32{0, 1, 2, 2, 1, 3})
	return vertexData, indexData
}

func packVec2(points [][2]float32) []byte {
	buf := make([]byte, len(points)*8)
	for i, p := range points {
		putF32(buf[i*8:], p[0])
		putF32(buf[i*8+4:], p[1])
	}
	return buf
}

func packIndices(indices []uint32) []byte {
	buf := make([]byte, len(indices)*4)
	for i, idx := range indices {
		putU32(buf[i*4:], idx)
	}
	return buf
}

func putF32(buf []byte, v float32) {
	binary.LittleEndian.PutUint32(buf, math.Float32bits(v))
}

func putU32(buf []byte, v uint32) {
	binary.LittleEndian.PutUint32(buf, v)
}
