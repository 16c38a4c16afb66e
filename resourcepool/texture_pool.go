package resourcepool

import (
	"sync"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/vantage-chart/vantage-engine/vantageerr"
)

// textureKey identifies a pooled texture by format and extent. Chart
// rendering only ever needs a handful of distinct texture shapes (glyph
// atlas, axis label atlas), so pooling by exact (format, width, height) is
// sufficient, unlike the teacher's one-off per-material texture creation in
// InitTextureView.
type textureKey struct {
	format wgpu.TextureFormat
	width  uint32
	height uint32
}

type pooledTexture struct {
	tex  *wgpu.Texture
	view *wgpu.TextureView
}

// TexturePool allocates and reuses GPU textures by (format, width, height).
type TexturePool struct {
	mu     sync.Mutex
	device *wgpu.Device
	queue  *wgpu.Queue

	free map[textureKey][]*pooledTexture
	live map[textureKey]*pooledTexture
}

// NewTexturePool builds a TexturePool against the given device/queue.
func NewTexturePool(device *wgpu.Device, queue *wgpu.Queue) *TexturePool {
	return &TexturePool{
		device: device,
		queue:  queue,
		free:   make(map[textureKey][]*pooledTexture),
		live:   make(map[textureKey]*pooledTexture),
	}
}

// Acquire returns a texture view of the given shape, reusing a released
// texture of the same shape when one is available. pixels, if non-nil, is
// written into the texture the same way the teacher's InitTextureView writes
// RGBA staging data.
func (p *TexturePool) Acquire(format wgpu.TextureFormat, width, height uint32, pixels []byte) (*wgpu.TextureView, error) {
	key := textureKey{format, width, height}

	p.mu.Lock()
	var pt *pooledTexture
	if freeList := p.free[key]; len(freeList) > 0 {
		pt = freeList[len(freeList)-1]
		p.free[key] = freeList[:len(freeList)-1]
	}
	p.mu.Unlock()

	if pt == nil {
		tex, err := p.device.CreateTexture(&wgpu.TextureDescriptor{
			Label:     "vantage chart texture",
			Usage:     wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopyDst,
			Dimension: wgpu.TextureDimension2D,
			Size: wgpu.Extent3D{
				Width:              width,
				Height:             height,
				DepthOrArrayLayers: 1,
			},
			Format:        format,
			MipLevelCount: 1,
			SampleCount:   1,
		})
		if err != nil {
			return nil, vantageerr.New(vantageerr.GpuError, "allocating texture: %w", err)
		}
		view, err := tex.CreateView(nil)
		if err != nil {
			return nil, vantageerr.New(vantageerr.GpuError, "creating texture view: %w", err)
		}
		pt = &pooledTexture{tex: tex, view: view}
	}

	if len(pixels) > 0 {
		p.queue.WriteTexture(
			&wgpu.ImageCopyTexture{Texture: pt.tex, MipLevel: 0, Aspect: wgpu.TextureAspectAll},
			pixels,
			&wgpu.TextureDataLayout{BytesPerRow: width * 4, RowsPerImage: height},
			&wgpu.Extent3D{Width: width, Height: height, DepthOrArrayLayers: 1},
		)
	}

	p.mu.Lock()
	p.live[key] = pt
	p.mu.Unlock()

	return pt.view, nil
}

// Release returns a texture to its shape's free list.
func (p *TexturePool) Release(format wgpu.TextureFormat, width, height uint32) {
	key := textureKey{format, width, height}

	p.mu.Lock()
	defer p.mu.Unlock()
	pt, ok := p.live[key]
	if !ok {
		return
	}
	delete(p.live, key)
	p.free[key] = append(p.free[key], pt)
}
