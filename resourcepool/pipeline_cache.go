package resourcepool

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/vantage-chart/vantage-engine/engine/renderer/pipeline"
)

// PipelineCache caches built pipelines by a caller-supplied string key,
// generalizing the teacher renderer.renderer.pipelineCache's string-keyed map
// into a cache shared by all render nodes. The nodes key by shader shape
// ("line", "candlestick", ...), so all line-style metrics share one pipeline
// regardless of color. Keys are not derived from shader source, vertex
// layout or blend state; ContentHash can build such a key, but no render
// node calls it.
type PipelineCache struct {
	mu    sync.RWMutex
	cache map[string]pipeline.Pipeline
	hits  int
	miss  int
}

// NewPipelineCache builds an empty PipelineCache.
func NewPipelineCache() *PipelineCache {
	return &PipelineCache{cache: make(map[string]pipeline.Pipeline)}
}

// ContentHash derives a stable cache key from the inputs that determine
// pipeline identity.
func ContentHash(parts ...string) string {
	h := sha256.New()
	for _, p := range parts {
		h.Write([]byte(p))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}

// GetOrBuild returns the cached pipeline for key, building and caching it via
// build on a miss.
func (c *PipelineCache) GetOrBuild(key string, build func() pipeline.Pipeline) pipeline.Pipeline {
	c.mu.RLock()
	p, ok := c.cache[key]
	c.mu.RUnlock()
	if ok {
		c.mu.Lock()
		c.hits++
		c.mu.Unlock()
		return p
	}

	built := build()

	c.mu.Lock()
	defer c.mu.Unlock()
	if existing, ok := c.cache[key]; ok {
		c.hits++
		return existing
	}
	c.cache[key] = built
	c.miss++
	return built
}

// Stats returns (hits, misses).
func (c *PipelineCache) Stats() (hits, misses int) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.hits, c.miss
}

// BindGroupLayoutCache caches bind-group layouts by a content hash of their
// descriptor, so render nodes with structurally identical layouts (every
// line-style metric node binds the same uniform+storage shape) share one
// wgpu.BindGroupLayout instead of creating a duplicate per node instance.
type BindGroupLayoutCache struct {
	mu    sync.RWMutex
	cache map[string]*wgpu.BindGroupLayout
}

// NewBindGroupLayoutCache builds an empty BindGroupLayoutCache.
func NewBindGroupLayoutCache() *BindGroupLayoutCache {
	return &BindGroupLayoutCache{cache: make(map[string]*wgpu.BindGroupLayout)}
}

// GetOrCreate returns the cached layout for key, creating it via device on a
// miss.
func (c *BindGroupLayoutCache) GetOrCreate(device *wgpu.Device, key string, descriptor *wgpu.BindGroupLayoutDescriptor) (*wgpu.BindGroupLayout, error) {
	c.mu.RLock()
	layout, ok := c.cache[key]
	c.mu.RUnlock()
	if ok {
		return layout, nil
	}

	created, err := device.CreateBindGroupLayout(descriptor)
	if err != nil {
		return nil, fmt.Errorf("creating bind group layout %s: %w", key, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if existing, ok := c.cache[key]; ok {
		return existing, nil
	}
	c.cache[key] = created
	return created, nil
}
