package resourcepool

import "github.com/cogentcore/webgpu/wgpu"

// Stats reports BufferPool usage for diagnostics / the host UI's resource panel.
type Stats struct {
	Allocated   int
	Reused      int
	Live        int
	FreeClasses []uint64
}

// Pool bundles the buffer, texture, and cache layers DataManager, ComputeEngine,
// and render nodes share, matching spec.md §4.6's single ResourcePool facade.
type Pool struct {
	Buffers          *BufferPool
	Textures         *TexturePool
	Pipelines        *PipelineCache
	BindGroupLayouts *BindGroupLayoutCache
}

// New builds a Pool over the given device/queue.
func New(device *wgpu.Device, queue *wgpu.Queue) *Pool {
	return &Pool{
		Buffers:          NewBufferPool(device, queue),
		Textures:         NewTexturePool(device, queue),
		Pipelines:        NewPipelineCache(),
		BindGroupLayouts: NewBindGroupLayoutCache(),
	}
}
