// Package datastore implements DataStore: the authoritative in-process
// snapshot of currently loaded series, per-column GPU buffers, viewport, and
// a dirty bit that the scheduler consults every frame.
//
// Single-writer model (I5/guarantee): only the scheduler goroutine calls the
// mutating operations below. The generation counters follow the same
// atomic-counter discipline the teacher uses for its id generators (e.g.
// engine/camera's cameraCount), one counter per StateSection instead of one
// per object type.
package datastore

import (
	"sync"
	"sync/atomic"

	"github.com/vantage-chart/vantage-engine/model"
	"github.com/vantage-chart/vantage-engine/vantageerr"
)

// Section is one of the StateSections spec.md §3 defines for independent
// generation tracking.
type Section int

const (
	SectionData Section = iota
	SectionView
	SectionConfig
	SectionGPU
	SectionUI
)

// Generations is a snapshot of every section's generation counter.
type Generations struct {
	Data, View, Config, GPU, UI uint64
}

// DataStore mediates access to the current visualization state: loaded
// DataGroups, the Viewport, and per-section generation counters. Mutating
// calls must only ever be made from the scheduler goroutine; renderers and
// compute kernels read an immutable snapshot (see Snapshot).
type DataStore struct {
	mu sync.RWMutex

	viewport *model.Viewport
	groups   map[string]*model.DataGroup // keyed by DataGroup.ID().String()
	metrics  map[string]*model.Metric

	dirty atomic.Bool

	genData   atomic.Uint64
	genView   atomic.Uint64
	genConfig atomic.Uint64
	genGPU    atomic.Uint64
	genUI     atomic.Uint64
}

// New creates a DataStore over the given initial Viewport.
//
// Parameters:
//   - viewport: the initial viewport
//
// Returns:
//   - *DataStore: the newly created store
func New(viewport *model.Viewport) *DataStore {
	return &DataStore{
		viewport: viewport,
		groups:   make(map[string]*model.DataGroup),
		metrics:  make(map[string]*model.Metric),
	}
}

// Viewport returns the current Viewport. Callers must not mutate it directly
// outside the scheduler goroutine.
func (d *DataStore) Viewport() *model.Viewport {
	return d.viewport
}

// SetViewportX updates the x-range. Fails with InvalidInput when xMax <= xMin.
//
// Parameters:
//   - xMin, xMax: the new x-range in unix seconds
//
// Returns:
//   - error: InvalidInput on an invalid range
func (d *DataStore) SetViewportX(xMin, xMax uint32) error {
	if err := d.viewport.SetXRange(xMin, xMax); err != nil {
		return err
	}
	d.bumpView()
	return nil
}

// Zoom pivots the x-range and marks the View section dirty.
//
// Parameters:
//   - factor: the zoom factor
//   - pivotScreenX: the pivot point as a fraction of screen width, in [0,1]
func (d *DataStore) Zoom(factor float64, pivotScreenX float64) {
	d.viewport.Zoom(factor, pivotScreenX)
	d.bumpView()
}

// Pan translates the x-range and marks the View section dirty.
//
// Parameters:
//   - dxScreen: the pan delta in screen pixels
func (d *DataStore) Pan(dxScreen float64) {
	d.viewport.Pan(dxScreen)
	d.bumpView()
}

// AttachGroup registers a DataGroup and marks the Data section dirty.
//
// Parameters:
//   - group: the group to register
func (d *DataStore) AttachGroup(group *model.DataGroup) {
	d.mu.Lock()
	d.groups[group.ID().String()] = group
	d.mu.Unlock()
	d.bumpData()
}

// DetachGroup unregisters a DataGroup by id. Fails with InvalidInput if unknown.
//
// Parameters:
//   - id: the group id (string form of its uuid)
//
// Returns:
//   - error: InvalidInput if id is not registered
func (d *DataStore) DetachGroup(id string) error {
	d.mu.Lock()
	_, ok := d.groups[id]
	if ok {
		delete(d.groups, id)
	}
	d.mu.Unlock()

	if !ok {
		return vantageerr.New(vantageerr.InvalidInput, "unknown group id %s", id)
	}
	d.bumpData()
	return nil
}

// Group returns the registered DataGroup for the given id, or nil if absent.
//
// Parameters:
//   - id: the group id
//
// Returns:
//   - *model.DataGroup: the group, or nil
func (d *DataStore) Group(id string) *model.DataGroup {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.groups[id]
}

// Groups returns a snapshot copy of all registered groups keyed by id.
//
// Returns:
//   - map[string]*model.DataGroup: a copy of the groups map
func (d *DataStore) Groups() map[string]*model.DataGroup {
	d.mu.RLock()
	defer d.mu.RUnlock()
	cp := make(map[string]*model.DataGroup, len(d.groups))
	for k, v := range d.groups {
		cp[k] = v
	}
	return cp
}

// RegisterMetric registers a Metric by name, replacing any existing
// registration under the same name.
//
// Parameters:
//   - m: the metric to register
func (d *DataStore) RegisterMetric(m *model.Metric) {
	d.mu.Lock()
	d.metrics[m.Name()] = m
	d.mu.Unlock()
	d.bumpUI()
}

// SetMetricVisibility toggles a registered metric's visibility and marks the
// UI section dirty. Fails with InvalidInput if the metric is unknown.
//
// Parameters:
//   - metric: the metric name
//   - visible: the new visibility
//
// Returns:
//   - error: InvalidInput if metric is not registered
func (d *DataStore) SetMetricVisibility(metric string, visible bool) error {
	d.mu.RLock()
	m, ok := d.metrics[metric]
	d.mu.RUnlock()

	if !ok {
		return vantageerr.New(vantageerr.InvalidInput, "unknown metric %s", metric)
	}
	m.SetVisible(visible)
	d.bumpUI()
	return nil
}

// Metric returns the registered Metric by name, or nil if unregistered.
//
// Parameters:
//   - name: the metric name
//
// Returns:
//   - *model.Metric: the metric, or nil
func (d *DataStore) Metric(name string) *model.Metric {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.metrics[name]
}

// Metrics returns a snapshot copy of all registered metrics keyed by name.
//
// Returns:
//   - map[string]*model.Metric: a copy of the metrics map
func (d *DataStore) Metrics() map[string]*model.Metric {
	d.mu.RLock()
	defer d.mu.RUnlock()
	cp := make(map[string]*model.Metric, len(d.metrics))
	for k, v := range d.metrics {
		cp[k] = v
	}
	return cp
}

// IsDirty reports whether any section has changed since the last MarkClean.
func (d *DataStore) IsDirty() bool {
	return d.dirty.Load()
}

// MarkClean clears the dirty bit. Only the scheduler calls this, at the end
// of a successful frame.
func (d *DataStore) MarkClean() {
	d.dirty.Store(false)
}

// GetGenerations returns a snapshot of every section's generation counter.
func (d *DataStore) GetGenerations() Generations {
	return Generations{
		Data:   d.genData.Load(),
		View:   d.genView.Load(),
		Config: d.genConfig.Load(),
		GPU:    d.genGPU.Load(),
		UI:     d.genUI.Load(),
	}
}

// Snapshot is the small, immutable per-frame struct copy handed to renderers
// and compute kernels: viewport bounds, generations, and active group ids.
// It is a plain value copy of header fields, never a deep clone of GPU
// buffers, which are referenced by handle, never copied.
type Snapshot struct {
	XMin, XMax uint32
	YMin, YMax float32
	Generations
	ActiveGroupIDs []string
}

// Snapshot produces the current frame's immutable snapshot.
func (d *DataStore) Snapshot() Snapshot {
	xMin, xMax := d.viewport.XRange()
	yMin, yMax := d.viewport.YRange()

	d.mu.RLock()
	ids := make([]string, 0, len(d.groups))
	for id, g := range d.groups {
		if g.Active() {
			ids = append(ids, id)
		}
	}
	d.mu.RUnlock()

	return Snapshot{
		XMin: xMin, XMax: xMax,
		YMin: yMin, YMax: yMax,
		Generations:    d.GetGenerations(),
		ActiveGroupIDs: ids,
	}
}

func (d *DataStore) bumpData() {
	d.genData.Add(1)
	d.dirty.Store(true)
}

func (d *DataStore) bumpView() {
	d.genView.Add(1)
	d.dirty.Store(true)
}

func (d *DataStore) bumpUI() {
	d.genUI.Add(1)
	d.dirty.Store(true)
}

// BumpConfig marks the Config section dirty, e.g. on a preset or quality change.
func (d *DataStore) BumpConfig() {
	d.genConfig.Add(1)
	d.dirty.Store(true)
}

// BumpGPU marks the GPU section dirty, e.g. after a device/surface reconfiguration.
func (d *DataStore) BumpGPU() {
	d.genGPU.Add(1)
	d.dirty.Store(true)
}
