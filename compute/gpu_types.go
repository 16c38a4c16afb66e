package compute

import (
	_ "embed"
	"encoding/binary"
	"math"
	"unsafe"
)

// GPUCullRangeSource is the canonical WGSL definition of the CullRange struct.
//
//go:embed assets/cull_range.wgsl
var GPUCullRangeSource string

// GPUCullRange is a GPU-aligned half-open [StartIndex, EndIndex) index range.
// The binary-search culling step (CullVisible) runs on the CPU and returns a
// model.CullingResult; it does not fill this struct.
type GPUCullRange struct {
	StartIndex uint32
	EndIndex   uint32
}

// Size returns the size of the GPUCullRange struct in bytes.
func (g *GPUCullRange) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUCullRange struct into a byte buffer suitable for GPU upload.
func (g *GPUCullRange) Marshal() []byte {
	buf := make([]byte, g.Size())
	binary.LittleEndian.PutUint32(buf[0:], g.StartIndex)
	binary.LittleEndian.PutUint32(buf[4:], g.EndIndex)
	return buf
}

// GPUMinMaxResultSource is the canonical WGSL definition of the MinMaxResult struct.
//
//go:embed assets/minmax_result.wgsl
var GPUMinMaxResultSource string

// GPUMinMaxResult is the GPU-aligned output of the two-stage parallel min/max reduction.
type GPUMinMaxResult struct {
	MinValue float32
	MaxValue float32
}

// Size returns the size of the GPUMinMaxResult struct in bytes.
func (g *GPUMinMaxResult) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUMinMaxResult struct into a byte buffer suitable for GPU upload/readback.
func (g *GPUMinMaxResult) Marshal() []byte {
	buf := make([]byte, g.Size())
	binary.LittleEndian.PutUint32(buf[0:], math.Float32bits(g.MinValue))
	binary.LittleEndian.PutUint32(buf[4:], math.Float32bits(g.MaxValue))
	return buf
}

// Unmarshal populates the GPUMinMaxResult from a readback byte buffer.
func (g *GPUMinMaxResult) Unmarshal(buf []byte) {
	g.MinValue = math.Float32frombits(binary.LittleEndian.Uint32(buf[0:]))
	g.MaxValue = math.Float32frombits(binary.LittleEndian.Uint32(buf[4:]))
}

// GPUCandleBucketUniformSource is the canonical WGSL definition of the CandleBucketUniform struct.
//
//go:embed assets/candle_bucket_uniform.wgsl
var GPUCandleBucketUniformSource string

// GPUCandleBucketUniform configures the segmented-reduction candle aggregation kernel.
type GPUCandleBucketUniform struct {
	BucketSeconds float32
	BucketCount   uint32
	SourceCount   uint32
	_pad0         uint32
}

// Size returns the size of the GPUCandleBucketUniform struct in bytes.
func (g *GPUCandleBucketUniform) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUCandleBucketUniform struct into a byte buffer suitable for GPU upload.
func (g *GPUCandleBucketUniform) Marshal() []byte {
	buf := make([]byte, g.Size())
	binary.LittleEndian.PutUint32(buf[0:], math.Float32bits(g.BucketSeconds))
	binary.LittleEndian.PutUint32(buf[4:], g.BucketCount)
	binary.LittleEndian.PutUint32(buf[8:], g.SourceCount)
	binary.LittleEndian.PutUint32(buf[12:], 0)
	return buf
}

// GPUComputeGlobalsSource is the canonical WGSL definition of the ComputeGlobals struct.
//
//go:embed assets/compute_globals.wgsl
var GPUComputeGlobalsSource string

// GPUComputeGlobals carries scalar parameters shared by every compute kernel dispatch.
type GPUComputeGlobals struct {
	ElementCount  uint32
	WorkgroupSize uint32
}

// Size returns the size of the GPUComputeGlobals struct in bytes.
func (g *GPUComputeGlobals) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUComputeGlobals struct into a byte buffer suitable for GPU upload.
func (g *GPUComputeGlobals) Marshal() []byte {
	buf := make([]byte, g.Size())
	binary.LittleEndian.PutUint32(buf[0:], g.ElementCount)
	binary.LittleEndian.PutUint32(buf[4:], g.WorkgroupSize)
	return buf
}

// GPUIndirectArgsSource is the canonical WGSL definition of the IndirectArgs struct.
//
//go:embed assets/indirect_args.wgsl
var GPUIndirectArgsSource string

// GPUIndirectArgs matches WebGPU's DrawIndexedIndirect argument layout (20 bytes).
// No kernel in this tree writes it; CandlestickNode issues a direct instanced
// draw with a CPU-side instance count.
type GPUIndirectArgs struct {
	IndexCount    uint32
	InstanceCount uint32
	FirstIndex    uint32
	BaseVertex    int32
	FirstInstance uint32
}

// Size returns the size of the GPUIndirectArgs struct in bytes.
func (g *GPUIndirectArgs) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUIndirectArgs struct into a byte buffer suitable for GPU upload.
func (g *GPUIndirectArgs) Marshal() []byte {
	buf := make([]byte, g.Size())
	binary.LittleEndian.PutUint32(buf[0:], g.IndexCount)
	binary.LittleEndian.PutUint32(buf[4:], g.InstanceCount)
	binary.LittleEndian.PutUint32(buf[8:], g.FirstIndex)
	binary.LittleEndian.PutUint32(buf[12:], uint32(g.BaseVertex))
	binary.LittleEndian.PutUint32(buf[16:], g.FirstInstance)
	return buf
}
