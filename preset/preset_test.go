package preset

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vantage-chart/vantage-engine/model"
)

func TestRenderTypeStyleMapsCandlestickAreaAndBarToRenderStyleBar(t *testing.T) {
	assert.Equal(t, model.RenderStyleBar, RenderTypeCandlestick.Style())
	assert.Equal(t, model.RenderStyleBar, RenderTypeArea.Style())
	assert.Equal(t, model.RenderStyleBar, RenderTypeBar.Style())
}

func TestRenderTypeStyleMapsTriangleAndDefaultsToLine(t *testing.T) {
	assert.Equal(t, model.RenderStyleTriangle, RenderTypeTriangle.Style())
	assert.Equal(t, model.RenderStyleLine, RenderTypeLine.Style())
	assert.Equal(t, model.RenderStyleLine, RenderType("unknown").Style())
}

func TestLoadParsesAPresetFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "preset.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"name": "price-chart",
		"render_type": "candlestick",
		"data_columns": [{"data_type": "trades", "column": "price"}],
		"metrics": [{"name": "close", "visible_by_default": true, "color": [1,0,0,1], "style": "candlestick"}],
		"overlays": [{"metric": "volume", "style": "bar"}]
	}`), 0o644))

	p, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "price-chart", p.Name)
	assert.Equal(t, RenderTypeCandlestick, p.RenderType)
	assert.Len(t, p.DataColumns, 1)
	assert.Len(t, p.Metrics, 1)
	assert.Equal(t, "volume", p.Overlays[0].Metric)
}

func TestLoadReturnsInvalidInputForMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestLoadReturnsParseErrorForMalformedJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(path, []byte(`{not json`), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestDataTypeForColumnResolvesDeclaredColumns(t *testing.T) {
	p := Preset{DataColumns: []DataColumn{
		{DataType: "md", Column: "best_bid"},
		{DataType: "trades", Column: "price"},
	}}

	dt, ok := p.DataTypeForColumn("price")
	assert.True(t, ok)
	assert.Equal(t, "trades", dt)

	_, ok = p.DataTypeForColumn("unknown")
	assert.False(t, ok)
}

func TestColumnsForDataTypeCollectsInDeclaredOrder(t *testing.T) {
	p := Preset{DataColumns: []DataColumn{
		{DataType: "md", Column: "best_bid"},
		{DataType: "trades", Column: "price"},
		{DataType: "md", Column: "best_ask"},
	}}

	assert.Equal(t, []string{"best_bid", "best_ask"}, p.ColumnsForDataType("md"))
	assert.Equal(t, []string{"price"}, p.ColumnsForDataType("trades"))
	assert.Nil(t, p.ColumnsForDataType("unknown"))
}

func TestDataTypesReturnsDistinctTypesInDeclaredOrder(t *testing.T) {
	p := Preset{DataColumns: []DataColumn{
		{DataType: "md", Column: "best_bid"},
		{DataType: "trades", Column: "price"},
		{DataType: "md", Column: "best_ask"},
	}}

	assert.Equal(t, []string{"md", "trades"}, p.DataTypes())
}
