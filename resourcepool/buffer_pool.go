// Package resourcepool implements ResourcePool: size-classed GPU buffer
// reuse, a texture pool keyed by format/extent, a pipeline cache keyed by
// caller-supplied string, a bind-group-layout cache, and usage statistics. It sits
// below DataManager, ComputeEngine, and MultiRenderer's render nodes in
// spec.md §2's dependency order — those consumers ask the pool for buffers
// and never talk to the wgpu device directly.
package resourcepool

import (
	"sort"
	"sync"
	"sync/atomic"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/vantage-chart/vantage-engine/model"
	"github.com/vantage-chart/vantage-engine/vantageerr"
)

// bufferCount is the shared handle-id generator, following the teacher's
// atomic-counter-per-resource-type convention (e.g. engine/camera's
// cameraCount).
var bufferCount atomic.Uint64

// sizeClass rounds a byte size up to the next power-of-two bucket, capped at
// a 16 byte floor, so same-shaped columnar fetches reuse the same buffer
// pool entry instead of fragmenting allocations by exact byte count.
func sizeClass(n uint64) uint64 {
	if n <= 16 {
		return 16
	}
	class := uint64(16)
	for class < n {
		class <<= 1
	}
	return class
}

type pooledBuffer struct {
	handle model.BufferHandle
	buf    *wgpu.Buffer
	class  uint64
}

// BufferPool allocates and reuses GPU storage buffers by size class. A
// released buffer returns to its class' free list rather than being
// destroyed, matching the teacher's InitMeshBuffers pattern of
// device.CreateBuffer + queue.WriteBuffer but adding a free-list in front of
// it, since columnar data churns (pan/zoom re-fetch) far more than a 3D
// scene's static meshes do.
type BufferPool struct {
	mu     sync.Mutex
	device *wgpu.Device
	queue  *wgpu.Queue

	free  map[uint64][]*pooledBuffer
	live  map[model.BufferHandle]*pooledBuffer
	stats Stats
}

// NewBufferPool builds a BufferPool against the given device/queue.
func NewBufferPool(device *wgpu.Device, queue *wgpu.Queue) *BufferPool {
	return &BufferPool{
		device: device,
		queue:  queue,
		free:   make(map[uint64][]*pooledBuffer),
		live:   make(map[model.BufferHandle]*pooledBuffer),
	}
}

// Upload implements datamanager.BufferUploader: it satisfies data from a
// free buffer of the right size class when one exists, otherwise allocates a
// new GPU buffer, writes data into it, and returns an opaque handle.
func (p *BufferPool) Upload(data []byte) (model.BufferHandle, error) {
	class := sizeClass(uint64(len(data)))

	p.mu.Lock()
	var pb *pooledBuffer
	if freeList := p.free[class]; len(freeList) > 0 {
		pb = freeList[len(freeList)-1]
		p.free[class] = freeList[:len(freeList)-1]
		p.stats.Reused++
	}
	p.mu.Unlock()

	if pb == nil {
		buf, err := p.device.CreateBuffer(&wgpu.BufferDescriptor{
			Label:            "vantage storage buffer",
			Size:             class,
			Usage:            wgpu.BufferUsageStorage | wgpu.BufferUsageCopyDst,
			MappedAtCreation: false,
		})
		if err != nil {
			return 0, vantageerr.New(vantageerr.GpuError, "allocating storage buffer: %w", err)
		}
		pb = &pooledBuffer{
			handle: model.BufferHandle(bufferCount.Add(1)),
			buf:    buf,
			class:  class,
		}

		p.mu.Lock()
		p.stats.Allocated++
		p.mu.Unlock()
	}

	if len(data) > 0 {
		p.queue.WriteBuffer(pb.buf, 0, data)
	}

	p.mu.Lock()
	p.live[pb.handle] = pb
	p.stats.Live = len(p.live)
	p.mu.Unlock()

	return pb.handle, nil
}

// Buffer resolves a handle to its underlying wgpu.Buffer for compute/render
// nodes that need to bind it.
func (p *BufferPool) Buffer(h model.BufferHandle) *wgpu.Buffer {
	p.mu.Lock()
	defer p.mu.Unlock()
	if pb, ok := p.live[h]; ok {
		return pb.buf
	}
	return nil
}

// Release returns a buffer to its size class' free list instead of
// destroying it, so the next same-sized Upload reuses the allocation.
func (p *BufferPool) Release(h model.BufferHandle) {
	p.mu.Lock()
	defer p.mu.Unlock()

	pb, ok := p.live[h]
	if !ok {
		return
	}
	delete(p.live, h)
	p.stats.Live = len(p.live)
	p.free[pb.class] = append(p.free[pb.class], pb)
}

// Stats returns a snapshot of pool usage.
func (p *BufferPool) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()
	s := p.stats
	s.FreeClasses = make([]uint64, 0, len(p.free))
	for class := range p.free {
		s.FreeClasses = append(s.FreeClasses, class)
	}
	sort.Slice(s.FreeClasses, func(i, j int) bool { return s.FreeClasses[i] < s.FreeClasses[j] })
	return s
}
