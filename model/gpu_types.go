package model

import (
	_ "embed"
	"encoding/binary"
	"math"
	"unsafe"
)

// GPUViewportUniformSource is the canonical WGSL definition of the ViewportUniform struct.
// Matches GPUViewportUniform layout exactly (32 bytes, std140 aligned).
//
//go:embed assets/viewport_uniform.wgsl
var GPUViewportUniformSource string

// GPUViewportUniform is the GPU-aligned representation of the per-frame viewport uniform.
// It carries the visible data-space x/y range and the surface pixel dimensions that every
// render node needs to project a (time, value) point into clip space.
type GPUViewportUniform struct {
	XMin        float32
	XMax        float32
	YMin        float32
	YMax        float32
	PixelWidth  float32
	PixelHeight float32
	_pad0       float32
	_pad1       float32
}

// Size returns the size of the GPUViewportUniform struct in bytes.
func (g *GPUViewportUniform) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUViewportUniform struct into a byte buffer suitable for GPU upload.
func (g *GPUViewportUniform) Marshal() []byte {
	buf := make([]byte, g.Size())
	fields := []float32{g.XMin, g.XMax, g.YMin, g.YMax, g.PixelWidth, g.PixelHeight, 0, 0}
	for i, f := range fields {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// GPUSeriesVertexSource is the canonical WGSL definition of the SeriesVertex struct.
//
//go:embed assets/series_vertex.wgsl
var GPUSeriesVertexSource string

// GPUSeriesVertex is the GPU-aligned representation of a single plot/line data point.
// A PlotRenderer's vertex buffer is a tightly packed array of these.
type GPUSeriesVertex struct {
	Time  float32
	Value float32
}

// Size returns the size of a single GPUSeriesVertex in bytes.
func (g *GPUSeriesVertex) Size() int {
	return int(unsafe.Sizeof(*g))
}

// MarshalSeriesVertices packs a slice of (time, value) pairs into a byte buffer
// matching the SeriesVertex WGSL layout, for upload as a vertex buffer.
func MarshalSeriesVertices(times, values []float32) []byte {
	n := len(times)
	buf := make([]byte, n*8)
	for i := 0; i < n; i++ {
		binary.LittleEndian.PutUint32(buf[i*8:], math.Float32bits(times[i]))
		binary.LittleEndian.PutUint32(buf[i*8+4:], math.Float32bits(values[i]))
	}
	return buf
}

// GPUCandleVertexSource is the canonical WGSL definition of the CandleVertex struct.
//
//go:embed assets/candle_vertex.wgsl
var GPUCandleVertexSource string

// GPUCandleVertex is the GPU-aligned representation of one OHLCV candle instance,
// consumed by the CandlestickNode as one element of a storage array indexed by instance_index.
type GPUCandleVertex struct {
	Time        float32
	Open        float32
	High        float32
	Low         float32
	Close       float32
	Volume      float32
	BucketWidth float32
	_pad0       float32
}

// Size returns the size of a single GPUCandleVertex in bytes.
func (g *GPUCandleVertex) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUCandleVertex struct into a byte buffer suitable for GPU upload.
func (g *GPUCandleVertex) Marshal() []byte {
	buf := make([]byte, g.Size())
	fields := []float32{g.Time, g.Open, g.High, g.Low, g.Close, g.Volume, g.BucketWidth, 0}
	for i, f := range fields {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// GPUInstanceTransformSource is the canonical WGSL definition of the InstanceTransform struct.
//
//go:embed assets/instance_transform.wgsl
var GPUInstanceTransformSource string

// GPUInstanceTransform holds the orthographic chart-space-to-clip-space matrix shared
// by every render node in a frame, derived from the current Viewport.
type GPUInstanceTransform struct {
	ChartToClip [16]float32
}

// Size returns the size of the GPUInstanceTransform struct in bytes.
func (g *GPUInstanceTransform) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUInstanceTransform struct into a byte buffer suitable for GPU upload.
func (g *GPUInstanceTransform) Marshal() []byte {
	buf := make([]byte, g.Size())
	for i := range g.ChartToClip {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(g.ChartToClip[i]))
	}
	return buf
}

// GPUTriangleVertexSource is the canonical WGSL definition of the TriangleVertex struct.
//
//go:embed assets/triangle_vertex.wgsl
var GPUTriangleVertexSource string

// GPUTriangleVertex is the GPU-aligned representation of one marker/triangle instance,
// consumed by TriangleNode as one element of a storage array indexed by instance_index.
type GPUTriangleVertex struct {
	X            float32
	Y            float32
	Size         float32
	PaletteIndex uint32
}

// Size returns the size of a single GPUTriangleVertex in bytes.
func (g *GPUTriangleVertex) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUTriangleVertex struct into a byte buffer suitable for GPU upload.
func (g *GPUTriangleVertex) Marshal() []byte {
	buf := make([]byte, g.Size())
	binary.LittleEndian.PutUint32(buf[0:], math.Float32bits(g.X))
	binary.LittleEndian.PutUint32(buf[4:], math.Float32bits(g.Y))
	binary.LittleEndian.PutUint32(buf[8:], math.Float32bits(g.Size))
	binary.LittleEndian.PutUint32(buf[12:], g.PaletteIndex)
	return buf
}

// GPUAxisUniformSource is the canonical WGSL definition of the AxisUniform struct.
//
//go:embed assets/axis_uniform.wgsl
var GPUAxisUniformSource string

// GPUAxisUniform describes the tick layout for an x or y AxisRenderer.
type GPUAxisUniform struct {
	TickCount uint32
	TickStep  float32
	Vertical  uint32
	_pad0     uint32
}

// Size returns the size of the GPUAxisUniform struct in bytes.
func (g *GPUAxisUniform) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUAxisUniform struct into a byte buffer suitable for GPU upload.
func (g *GPUAxisUniform) Marshal() []byte {
	buf := make([]byte, g.Size())
	binary.LittleEndian.PutUint32(buf[0:], g.TickCount)
	binary.LittleEndian.PutUint32(buf[4:], math.Float32bits(g.TickStep))
	binary.LittleEndian.PutUint32(buf[8:], g.Vertical)
	binary.LittleEndian.PutUint32(buf[12:], 0)
	return buf
}

// GPUPaletteUniformSource is the canonical WGSL definition of the PaletteUniform struct.
//
//go:embed assets/palette_uniform.wgsl
var GPUPaletteUniformSource string

// GPUPaletteUniform carries the active preset's colors to every render node.
type GPUPaletteUniform struct {
	UpColor         [4]float32
	DownColor       [4]float32
	LineColor       [4]float32
	BackgroundColor [4]float32
}

// Size returns the size of the GPUPaletteUniform struct in bytes.
func (g *GPUPaletteUniform) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUPaletteUniform struct into a byte buffer suitable for GPU upload.
func (g *GPUPaletteUniform) Marshal() []byte {
	buf := make([]byte, g.Size())
	colors := [][4]float32{g.UpColor, g.DownColor, g.LineColor, g.BackgroundColor}
	for ci, c := range colors {
		for i, f := range c {
			binary.LittleEndian.PutUint32(buf[ci*16+i*4:], math.Float32bits(f))
		}
	}
	return buf
}
