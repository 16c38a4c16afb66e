// Package chart implements Chart: the orchestrator spec.md §1 calls the hard
// part of this engine — the coordinating state machine that wires DataStore,
// DataManager, ComputeEngine, and the render graph into the single
// scheduler.UpdateFunc/RenderFunc pair engine.Engine drives per frame.
//
// Chart owns no GPU resources of its own; it holds the six components
// spec.md §2 orders by dependency (ResourcePool <- ComputeEngine / render
// nodes <- DataStore <- DataManager <- RenderGraph) and is the only thing in
// this tree that calls into more than one of them. A host wires Chart's
// HandleCommand/Update/Render methods into an engine.Engine via
// SetCommandHandler/SetUpdateFunc/SetRenderFunc;
// Chart itself never touches engine.Engine or scheduler.Scheduler directly,
// the same dependency direction DataManager keeps from ResourcePool (a
// narrow interface in, no reach back out).
package chart

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/vantage-chart/vantage-engine/compute"
	"github.com/vantage-chart/vantage-engine/datamanager"
	"github.com/vantage-chart/vantage-engine/datastore"
	"github.com/vantage-chart/vantage-engine/engine"
	"github.com/vantage-chart/vantage-engine/engine/renderer"
	"github.com/vantage-chart/vantage-engine/model"
	"github.com/vantage-chart/vantage-engine/preset"
	"github.com/vantage-chart/vantage-engine/rendergraph"
	"github.com/vantage-chart/vantage-engine/resourcepool"
	"github.com/vantage-chart/vantage-engine/scheduler"
	"github.com/vantage-chart/vantage-engine/vantageerr"
)

// Config is the construction-time state a Chart needs before it can handle
// its first command: the instrument, the available Presets, and which one
// is active at startup.
type Config struct {
	// Exchange and Symbol identify the initially active instrument.
	Exchange string
	Symbol   string

	// Presets is the set of Presets a set_preset command may switch to,
	// keyed by Preset.Name.
	Presets map[string]preset.Preset

	// ActivePreset names the entry of Presets active at startup.
	ActivePreset string

	// Quality is the initial QualityPreset.
	Quality preset.QualityPreset

	// BucketSeconds is the candle aggregation timeframe CandlestickNode
	// metrics use, spec.md §4.3's bucketSeconds parameter.
	BucketSeconds uint32

	// Viewport is the initial Viewport; its x-range is the range the first
	// Data update fetches (Engine.Run itself issues no trigger).
	Viewport *model.Viewport
}

// Chart is the orchestrator described in the package doc.
type Chart struct {
	mu sync.Mutex

	store   *datastore.DataStore
	manager *datamanager.Manager
	engine  *compute.Engine

	presets map[string]preset.Preset
	active  preset.Preset
	quality preset.QualityPreset

	pendingPreset  *preset.Preset
	pendingQuality *preset.QualityPreset

	exchange string
	symbol   string

	bucketSeconds uint32

	renderer    renderer.Renderer
	pool        *resourcepool.Pool
	graph       *rendergraph.Graph
	frameByName map[string]frameNode

	log zerolog.Logger
}

// New builds a Chart over the given DataManager and ComputeEngine, applying
// cfg.ActivePreset's Metrics to a freshly created DataStore.
//
// Parameters:
//   - manager: the DataManager to fetch columnar windows through
//   - computeEngine: the ComputeEngine backing Cull/MinMax/AggregateCandles
//   - cfg: the instrument, preset registry, and initial viewport
//   - log: the base logger to derive a component logger from
//
// Returns:
//   - *Chart: the newly created orchestrator
//   - error: InvalidInput if cfg.ActivePreset is not a key of cfg.Presets
func New(manager *datamanager.Manager, computeEngine *compute.Engine, cfg Config, log zerolog.Logger) (*Chart, error) {
	active, ok := cfg.Presets[cfg.ActivePreset]
	if !ok {
		return nil, vantageerr.New(vantageerr.InvalidInput, "unknown active preset %q", cfg.ActivePreset)
	}

	c := &Chart{
		store:         datastore.New(cfg.Viewport),
		manager:       manager,
		engine:        computeEngine,
		presets:       cfg.Presets,
		active:        active,
		quality:       cfg.Quality,
		exchange:      cfg.Exchange,
		symbol:        cfg.Symbol,
		bucketSeconds: cfg.BucketSeconds,
		log:           log.With().Str("component", "chart").Logger(),
	}
	c.applyPresetMetrics(active)
	return c, nil
}

// Store returns the owned DataStore, for a host that needs read access to
// generations or the current Viewport (e.g. a window resize callback).
func (c *Chart) Store() *datastore.DataStore {
	return c.store
}

// applyPresetMetrics registers one model.Metric per preset.MetricSpec,
// replacing whatever was registered for a prior preset under the same name.
func (c *Chart) applyPresetMetrics(p preset.Preset) {
	for i, spec := range p.Metrics {
		m := model.NewMetric(spec.Name, spec.Name, spec.Style.Style(), spec.Color, uint32(i))
		m.SetVisible(spec.VisibleByDefault)
		c.store.RegisterMetric(m)
	}
}

// HandleCommand implements the §6.2 command-handling side effects. A host
// registers it via engine.Engine.SetCommandHandler inside a func(Command)
// wrapper, since that handler type has no error result. Cheap,
// pure DataStore mutations (a viewport jump, a visibility toggle) apply
// immediately; mutations that need a DataManager fetch or a render-node
// rebuild (a symbol switch, a preset/quality change) instead record intent
// and are applied by Update on the scheduler's next matching Updating(kind)
// transition, so the fetch runs on the scheduler goroutine rather than the
// command-drain goroutine.
//
// Parameters:
//   - cmd: the drained Command
//
// Returns:
//   - error: InvalidInput for an unknown symbol/preset/quality-preset/metric name
func (c *Chart) HandleCommand(cmd engine.Command) error {
	switch cmd.Kind {
	case engine.SetSymbol:
		return c.setSymbol(cmd.Exchange, cmd.Symbol)
	case engine.SetTimeRange:
		return c.store.SetViewportX(uint32(cmd.XLo), uint32(cmd.XHi))
	case engine.SetPreset:
		return c.setPreset(cmd.PresetName)
	case engine.ToggleMetric:
		return c.toggleMetric(cmd.MetricName)
	case engine.SetQualityPreset:
		return c.setQualityPreset(cmd.QualityPresetName)
	default:
		return vantageerr.New(vantageerr.Programmer, "unhandled command kind %s", cmd.Kind)
	}
}

func (c *Chart) setSymbol(exchange, symbol string) error {
	if symbol == "" {
		return vantageerr.New(vantageerr.InvalidInput, "symbol must not be empty")
	}
	c.mu.Lock()
	c.exchange, c.symbol = exchange, symbol
	c.mu.Unlock()
	return nil
}

func (c *Chart) setPreset(name string) error {
	p, ok := c.presets[name]
	if !ok {
		return vantageerr.New(vantageerr.InvalidInput, "unknown preset %q", name)
	}
	c.mu.Lock()
	c.pendingPreset = &p
	c.mu.Unlock()
	return nil
}

func (c *Chart) setQualityPreset(name string) error {
	q, ok := preset.DefaultQualityPresets[preset.QualityLevel(name)]
	if !ok {
		return vantageerr.New(vantageerr.InvalidInput, "unknown quality preset %q", name)
	}
	c.mu.Lock()
	c.pendingQuality = &q
	c.mu.Unlock()
	return nil
}

func (c *Chart) toggleMetric(name string) error {
	m := c.store.Metric(name)
	if m == nil {
		return vantageerr.New(vantageerr.InvalidInput, "unknown metric %q", name)
	}
	return c.store.SetMetricVisibility(name, !m.Visible())
}

// Update implements scheduler.UpdateFunc: the side effects of one
// Updating(kind) transition, per §9/I6's Config > Data > View priority. A
// host registers this via engine.Engine.SetUpdateFunc.
//
// Parameters:
//   - kind: the UpdateKind the scheduler is currently processing
//
// Returns:
//   - bool: true if the update produced a visible effect worth rendering
//   - error: propagated from the underlying DataManager fetch or ComputeEngine call
func (c *Chart) Update(kind scheduler.UpdateKind) (bool, error) {
	switch kind {
	case scheduler.Config:
		return c.updateConfig()
	case scheduler.Data:
		return c.updateData()
	default:
		return c.updateView()
	}
}

// updateConfig applies any pending preset/quality swap recorded by
// HandleCommand, re-registers the new preset's metrics, and — per spec.md
// §6.3's "switching a preset triggers a Config update which may in turn
// trigger a Data fetch" — fetches whatever columns the new preset declares
// for the current viewport range.
func (c *Chart) updateConfig() (bool, error) {
	c.mu.Lock()
	pendingPreset, pendingQuality := c.pendingPreset, c.pendingQuality
	c.pendingPreset, c.pendingQuality = nil, nil
	c.mu.Unlock()

	if pendingPreset == nil && pendingQuality == nil {
		return false, nil
	}

	if pendingQuality != nil {
		c.mu.Lock()
		c.quality = *pendingQuality
		c.mu.Unlock()
	}

	if pendingPreset != nil {
		c.mu.Lock()
		c.active = *pendingPreset
		c.mu.Unlock()
		c.applyPresetMetrics(*pendingPreset)

		xMin, xMax := c.store.Viewport().XRange()
		if err := c.fetchForViewport(context.Background(), xMin, xMax); err != nil {
			return false, err
		}
	}

	c.store.BumpConfig()
	return true, nil
}

// updateData fetches every data_type the active preset declares for the
// current viewport range, unconditionally — the path a set_symbol command
// drives, where nothing for the new instrument is cached yet.
func (c *Chart) updateData() (bool, error) {
	xMin, xMax := c.store.Viewport().XRange()
	if err := c.fetchForViewport(context.Background(), xMin, xMax); err != nil {
		return false, err
	}
	return true, nil
}

// updateView re-fetches the current viewport's range (a no-op network call
// when every covered day is already cached, per spec.md S2) and re-derives
// the y-range from the currently visible, currently-cached samples of every
// visible metric (I7: y-range is always re-derived, never set directly).
func (c *Chart) updateView() (bool, error) {
	xMin, xMax := c.store.Viewport().XRange()
	if err := c.fetchForViewport(context.Background(), xMin, xMax); err != nil {
		return false, err
	}
	if err := c.recomputeYRange(xMin, xMax); err != nil {
		return false, err
	}
	return true, nil
}

// fetchForViewport fetches, per data_type the active preset declares, the
// columns that data_type supplies, attaching each resulting DataGroup to
// the DataStore. DataManager.Fetch itself only issues a network request for
// days not already cached, so a call over an already-loaded range is cheap.
func (c *Chart) fetchForViewport(ctx context.Context, xMin, xMax uint32) error {
	c.mu.Lock()
	active, exchange, symbol := c.active, c.exchange, c.symbol
	c.mu.Unlock()

	for _, dataType := range active.DataTypes() {
		columns := active.ColumnsForDataType(dataType)
		group, err := c.manager.Fetch(ctx, exchange, symbol, dataType, columns, xMin, xMax)
		if err != nil {
			return err
		}
		c.store.AttachGroup(group)
	}
	return nil
}

// recomputeYRange culls every visible metric's cached column to [xMin,
// xMax] and sets the viewport's y-range to the union of their visible
// min/max, per spec.md S1's culling-then-minmax sequence.
func (c *Chart) recomputeYRange(xMin, xMax uint32) error {
	c.mu.Lock()
	active, symbol := c.active, c.symbol
	c.mu.Unlock()

	first := true
	var globalMin, globalMax float32
	for _, m := range c.store.Metrics() {
		if !m.Visible() {
			continue
		}
		dataType, ok := active.DataTypeForColumn(m.SeriesName())
		if !ok {
			continue
		}

		times, err := c.manager.Times(symbol, dataType, xMin, xMax)
		if err != nil {
			continue // not yet fetched for this range
		}
		values, err := c.manager.Column(symbol, dataType, m.SeriesName(), xMin, xMax)
		if err != nil {
			continue
		}

		cull := c.engine.Cull(times, xMin, xMax)
		if cull.Empty() {
			continue
		}
		visible := values[cull.FirstVisible : cull.LastVisible+1]
		if len(visible) == 0 {
			continue
		}

		lo, hi := c.engine.MinMax(visible)
		if first {
			globalMin, globalMax, first = lo, hi, false
			continue
		}
		if lo < globalMin {
			globalMin = lo
		}
		if hi > globalMax {
			globalMax = hi
		}
	}

	if !first {
		c.store.Viewport().SetYRange(globalMin, globalMax)
	}
	return nil
}
