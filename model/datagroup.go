package model

import (
	"sync"

	"github.com/google/uuid"
	"github.com/vantage-chart/vantage-engine/vantageerr"
)

// DataGroup is a bundle of co-aligned Series for one data_type (e.g. the "md"
// group carries time, best_bid, best_ask; the "trades" group carries time,
// price, side, volume). Every Series in a group shares the group's time
// Series (I1: all columns equal length; I2: time strictly non-decreasing is
// enforced at DataManager assembly time, not here).
type DataGroup struct {
	id uuid.UUID

	mu sync.RWMutex

	dataType string
	symbol   string
	time     *Series
	columns  map[string]*Series
	active   bool
}

// NewDataGroup creates a DataGroup over the given time Series with no
// additional columns attached yet. Use AttachColumn to add the rest.
//
// Parameters:
//   - symbol: the instrument symbol this group belongs to
//   - dataType: the data type name ("md", "trades", ...)
//   - time: the shared time Series
//
// Returns:
//   - *DataGroup: the newly created group
func NewDataGroup(symbol, dataType string, time *Series) *DataGroup {
	return &DataGroup{
		id:       uuid.New(),
		symbol:   symbol,
		dataType: dataType,
		time:     time,
		columns:  make(map[string]*Series),
	}
}

// ID returns the group's opaque identifier.
func (g *DataGroup) ID() uuid.UUID { return g.id }

// Symbol returns the instrument symbol.
func (g *DataGroup) Symbol() string { return g.symbol }

// DataType returns the data type name.
func (g *DataGroup) DataType() string { return g.dataType }

// Time returns the group's shared time Series.
func (g *DataGroup) Time() *Series {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.time
}

// Active reports whether the group is currently toggled on by a preset.
func (g *DataGroup) Active() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.active
}

// SetActive toggles the group's active flag.
func (g *DataGroup) SetActive(active bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.active = active
}

// AttachColumn adds or replaces a non-time Series by metric name. Returns
// InvalidInput if its length disagrees with the group's time Series (I1).
//
// Parameters:
//   - s: the Series to attach
//
// Returns:
//   - error: InvalidInput if lengths disagree
func (g *DataGroup) AttachColumn(s *Series) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.time != nil && s.Length() != g.time.Length() {
		return vantageerr.New(vantageerr.InvalidInput, "column %s length disagrees with group time column", s.Metric())
	}
	g.columns[s.Metric()] = s
	return nil
}

// Column returns the Series for the given metric name, or nil if absent.
//
// Parameters:
//   - metric: the metric name
//
// Returns:
//   - *Series: the column, or nil
func (g *DataGroup) Column(metric string) *Series {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.columns[metric]
}

// Columns returns a snapshot copy of the non-time columns keyed by metric name.
//
// Returns:
//   - map[string]*Series: a copy of the columns map
func (g *DataGroup) Columns() map[string]*Series {
	g.mu.RLock()
	defer g.mu.RUnlock()
	cp := make(map[string]*Series, len(g.columns))
	for k, v := range g.columns {
		cp[k] = v
	}
	return cp
}
