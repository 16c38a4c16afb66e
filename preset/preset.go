// Package preset implements the declarative Preset and QualityPreset types
// of spec.md §6.3/§6.4: what a chart renders, and how expensively it
// renders it. Both load from JSON, the same header-as-JSON convention
// datamanager's wire parser uses for the data-serving collaborator's
// response metadata.
package preset

import (
	"encoding/json"
	"os"

	"github.com/vantage-chart/vantage-engine/model"
	"github.com/vantage-chart/vantage-engine/vantageerr"
)

// RenderType selects a preset's primary render node, per spec.md §6.3's
// enumerated render_type option.
type RenderType string

const (
	RenderTypeLine        RenderType = "line"
	RenderTypeCandlestick RenderType = "candlestick"
	RenderTypeTriangle    RenderType = "triangle"
	RenderTypeArea        RenderType = "area"
	RenderTypeBar         RenderType = "bar"
)

// Style returns the model.RenderStyle a RenderType maps onto. RenderTypeArea
// and RenderTypeBar both map to RenderStyleBar and draw exactly as
// RenderTypeCandlestick does, through CandlestickNode's storage-array
// instancing; there is no area-fill or wick-only style option.
func (rt RenderType) Style() model.RenderStyle {
	switch rt {
	case RenderTypeCandlestick, RenderTypeArea, RenderTypeBar:
		return model.RenderStyleBar
	case RenderTypeTriangle:
		return model.RenderStyleTriangle
	default:
		return model.RenderStyleLine
	}
}

// DataColumn names one (data_type, column) pair a Preset requires from the
// data-serving collaborator.
type DataColumn struct {
	DataType string `json:"data_type"`
	Column   string `json:"column"`
}

// MetricSpec declares one user-toggleable channel.
type MetricSpec struct {
	Name             string     `json:"name"`
	VisibleByDefault bool       `json:"visible_by_default"`
	Color            [4]float32 `json:"color"`
	Style            RenderType `json:"style"`
}

// ComputedSpec declares one ComputedMetric formula.
type ComputedSpec struct {
	Name         string   `json:"name"`
	Formula      string   `json:"formula"`
	Dependencies []string `json:"dependencies"`
}

// Overlay declares one secondary render node layered over the primary one
// (e.g. volume bars under a price candlestick chart).
type Overlay struct {
	Metric string     `json:"metric"`
	Style  RenderType `json:"style"`
}

// Preset is the declarative specification of what a chart renders, per
// spec.md §6.3.
type Preset struct {
	Name        string         `json:"name"`
	RenderType  RenderType     `json:"render_type"`
	DataColumns []DataColumn   `json:"data_columns"`
	Metrics     []MetricSpec   `json:"metrics"`
	Computed    []ComputedSpec `json:"computed"`
	Overlays    []Overlay      `json:"overlays"`
}

// DataTypeForColumn returns the data_type that supplies the given column
// name, per this Preset's declared DataColumns. Chart orchestration uses
// this to group a Metric's backing column into the right DataManager.Fetch
// call (e.g. "best_bid" lives in the "md" group, "price" in "trades").
//
// Parameters:
//   - column: the column name to resolve
//
// Returns:
//   - string: the owning data_type
//   - bool: false if no DataColumn declares that column
func (p Preset) DataTypeForColumn(column string) (string, bool) {
	for _, dc := range p.DataColumns {
		if dc.Column == column {
			return dc.DataType, true
		}
	}
	return "", false
}

// ColumnsForDataType returns every column this Preset declares under the
// given data_type, in declared order.
//
// Parameters:
//   - dataType: the data_type to collect columns for
//
// Returns:
//   - []string: the column names
func (p Preset) ColumnsForDataType(dataType string) []string {
	var cols []string
	for _, dc := range p.DataColumns {
		if dc.DataType == dataType {
			cols = append(cols, dc.Column)
		}
	}
	return cols
}

// DataTypes returns the distinct data_type values declared by this Preset's
// DataColumns, in first-declared order. Chart orchestration fetches one
// DataManager.Fetch call per entry, grouping columns by the data_type that
// serves them.
//
// Returns:
//   - []string: the distinct data types
func (p Preset) DataTypes() []string {
	seen := make(map[string]bool, len(p.DataColumns))
	var out []string
	for _, dc := range p.DataColumns {
		if !seen[dc.DataType] {
			seen[dc.DataType] = true
			out = append(out, dc.DataType)
		}
	}
	return out
}

// Load reads and parses a Preset from a JSON file.
//
// Parameters:
//   - path: the JSON file path
//
// Returns:
//   - Preset: the parsed preset
//   - error: a vantageerr.ParseError on malformed JSON or vantageerr.InvalidInput on a missing file
func Load(path string) (Preset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Preset{}, vantageerr.New(vantageerr.InvalidInput, "reading preset %s: %w", path, err)
	}

	var p Preset
	if err := json.Unmarshal(data, &p); err != nil {
		return Preset{}, vantageerr.New(vantageerr.ParseError, "malformed preset %s: %w", path, err)
	}
	return p, nil
}
