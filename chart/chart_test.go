package chart

import (
	"encoding/binary"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vantage-chart/vantage-engine/compute"
	"github.com/vantage-chart/vantage-engine/datamanager"
	"github.com/vantage-chart/vantage-engine/engine"
	"github.com/vantage-chart/vantage-engine/model"
	"github.com/vantage-chart/vantage-engine/preset"
	"github.com/vantage-chart/vantage-engine/scheduler"
)

// fakeUploader hands back a deterministic handle per call, the same shape
// datamanager's own test suite uses for its fakeUploader.
type fakeUploader struct {
	calls atomic.Uint64
}

func (u *fakeUploader) Upload(data []byte) (model.BufferHandle, error) {
	return model.BufferHandle(u.calls.Add(1)), nil
}

type wireHeader struct {
	Count   uint32   `json:"count"`
	Columns []string `json:"columns"`
}

func encodeU32Column(values []uint32) []byte {
	buf := make([]byte, len(values)*4)
	for i, v := range values {
		binary.LittleEndian.PutUint32(buf[i*4:], v)
	}
	return buf
}

func encodeF32Column(values []float32) []byte {
	buf := make([]byte, len(values)*4)
	for i, v := range values {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	return buf
}

// newTestCollaborator fakes the §6.1 data-serving collaborator: it reads
// the requested columns off the query string and serves whichever of times/
// columns match, in requested order, counting hits so a test can assert a
// second Fetch over already-cached days makes no further request.
func newTestCollaborator(t *testing.T, hits *atomic.Uint64, times []uint32, columns map[string][]float32) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)

		requested := strings.Split(r.URL.Query().Get("columns"), ",")
		h := wireHeader{Count: uint32(len(times)), Columns: requested}
		hb, err := json.Marshal(h)
		require.NoError(t, err)

		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(hb)
		_, _ = w.Write([]byte("\n"))
		for _, col := range requested {
			if col == "time" {
				_, _ = w.Write(encodeU32Column(times))
				continue
			}
			_, _ = w.Write(encodeF32Column(columns[col]))
		}
	}))
}

// TestChartReproducesS1AndS2LineScenario drives Chart's full
// HandleCommand -> Update(Data) -> Update(View) path over a fake
// collaborator and asserts spec.md S1's culling/y-range results, then S2's
// pan-without-refetch behavior over the corrected SetTimeRange -> View
// mapping.
func TestChartReproducesS1AndS2LineScenario(t *testing.T) {
	var hits atomic.Uint64
	srv := newTestCollaborator(t, &hits, []uint32{1000, 1001, 1002, 1003, 1004}, map[string][]float32{
		"best_bid": {10.0, 11.0, 10.5, 12.0, 11.5},
	})
	defer srv.Close()

	uploader := &fakeUploader{}
	manager, err := datamanager.NewManager(srv.URL, uploader, 64, zerolog.Nop())
	require.NoError(t, err)
	computeEngine := compute.NewEngine(2, zerolog.Nop())

	p := preset.Preset{
		Name:        "line-chart",
		RenderType:  preset.RenderTypeLine,
		DataColumns: []preset.DataColumn{{DataType: "md", Column: "best_bid"}},
		Metrics: []preset.MetricSpec{
			{Name: "best_bid", VisibleByDefault: true, Color: [4]float32{1, 0, 0, 1}, Style: preset.RenderTypeLine},
		},
	}

	c, err := New(manager, computeEngine, Config{
		Exchange:     "NASDAQ",
		Symbol:       "AAPL",
		Presets:      map[string]preset.Preset{"line-chart": p},
		ActivePreset: "line-chart",
		Viewport:     model.NewViewport(1000, 1004, 800, 600),
	}, zerolog.Nop())
	require.NoError(t, err)

	require.NoError(t, c.HandleCommand(engine.Command{Kind: engine.SetSymbol, Exchange: "NASDAQ", Symbol: "AAPL"}))
	visible, err := c.Update(scheduler.Data)
	require.NoError(t, err)
	assert.True(t, visible)
	assert.Equal(t, uint64(1), hits.Load())

	visible, err = c.Update(scheduler.View)
	require.NoError(t, err)
	assert.True(t, visible)

	times, err := manager.Times("AAPL", "md", 1000, 1004)
	require.NoError(t, err)
	cull := computeEngine.Cull(times, 1000, 1004)
	assert.Equal(t, 0, cull.FirstVisible)
	assert.Equal(t, 4, cull.LastVisible)

	yMin, yMax := c.Store().Viewport().YRange()
	assert.Equal(t, float32(10.0), yMin)
	assert.Equal(t, float32(12.0), yMax)

	// S2: pan within the already-loaded range. SetTimeRange maps to a View
	// update (see command_test.go), which fetchForViewport still calls
	// unconditionally — it is the cache hit inside DataManager.Fetch, not
	// extra coverage-detection logic, that keeps this a no-op network-wise.
	require.NoError(t, c.HandleCommand(engine.Command{Kind: engine.SetTimeRange, XLo: 1002, XHi: 1004}))

	visible, err = c.Update(scheduler.View)
	require.NoError(t, err)
	assert.True(t, visible)
	assert.Equal(t, uint64(1), hits.Load(), "panning within cached data must not re-fetch")

	xMin, xMax := c.Store().Viewport().XRange()
	assert.Equal(t, uint32(1002), xMin)
	assert.Equal(t, uint32(1004), xMax)

	times, err = manager.Times("AAPL", "md", xMin, xMax)
	require.NoError(t, err)
	cull = computeEngine.Cull(times, xMin, xMax)
	assert.Equal(t, 2, cull.FirstVisible)
	assert.Equal(t, 4, cull.LastVisible)

	yMin, yMax = c.Store().Viewport().YRange()
	assert.Equal(t, float32(10.5), yMin)
	assert.Equal(t, float32(12.0), yMax)
}

// TestChartReproducesS4CandlestickAggregation drives Chart's
// HandleCommand -> Update(Data) path for a candlestick preset, then derives
// candles the same way candlestickFrame.compute would (Times/Column
// readback into ComputeEngine.AggregateCandles), asserting spec.md S4's
// exact three-bucket OHLCV result.
func TestChartReproducesS4CandlestickAggregation(t *testing.T) {
	var hits atomic.Uint64
	times := []uint32{0, 5, 10, 15, 20, 25}
	srv := newTestCollaborator(t, &hits, times, map[string][]float32{
		"price":  {100, 102, 101, 103, 99, 104},
		"volume": {1, 1, 1, 1, 1, 1},
	})
	defer srv.Close()

	uploader := &fakeUploader{}
	manager, err := datamanager.NewManager(srv.URL, uploader, 64, zerolog.Nop())
	require.NoError(t, err)
	computeEngine := compute.NewEngine(2, zerolog.Nop())

	p := preset.Preset{
		Name:       "price-chart",
		RenderType: preset.RenderTypeCandlestick,
		DataColumns: []preset.DataColumn{
			{DataType: "trades", Column: "price"},
			{DataType: "trades", Column: "volume"},
		},
		Metrics: []preset.MetricSpec{
			{Name: "price", VisibleByDefault: true, Color: [4]float32{0, 1, 0, 1}, Style: preset.RenderTypeCandlestick},
		},
	}

	c, err := New(manager, computeEngine, Config{
		Exchange:      "COINBASE",
		Symbol:        "BTC-USD",
		Presets:       map[string]preset.Preset{"price-chart": p},
		ActivePreset:  "price-chart",
		BucketSeconds: 10,
		Viewport:      model.NewViewport(0, 30, 800, 600),
	}, zerolog.Nop())
	require.NoError(t, err)

	require.NoError(t, c.HandleCommand(engine.Command{Kind: engine.SetSymbol, Exchange: "COINBASE", Symbol: "BTC-USD"}))
	visible, err := c.Update(scheduler.Data)
	require.NoError(t, err)
	assert.True(t, visible)

	gotTimes, err := manager.Times("BTC-USD", "trades", 0, 30)
	require.NoError(t, err)
	prices, err := manager.Column("BTC-USD", "trades", "price", 0, 30)
	require.NoError(t, err)
	volumes, err := manager.Column("BTC-USD", "trades", "volume", 0, 30)
	require.NoError(t, err)

	candles := computeEngine.AggregateCandles(gotTimes, prices, volumes, c.bucketSeconds)
	require.Len(t, candles, 3)

	assert.Equal(t, model.CandleRecord{BucketStart: 0, Open: 100, High: 102, Low: 100, Close: 102, Volume: 2}, candles[0])
	assert.Equal(t, model.CandleRecord{BucketStart: 10, Open: 101, High: 103, Low: 101, Close: 103, Volume: 2}, candles[1])
	assert.Equal(t, model.CandleRecord{BucketStart: 20, Open: 99, High: 104, Low: 99, Close: 104, Volume: 2}, candles[2])
}

// TestChartSetPresetCascadesIntoDataFetch verifies spec.md §6.3: switching
// to a preset whose data_columns include a not-yet-fetched column triggers
// a Data fetch as part of the Config update.
func TestChartSetPresetCascadesIntoDataFetch(t *testing.T) {
	var hits atomic.Uint64
	srv := newTestCollaborator(t, &hits, []uint32{10, 11, 12}, map[string][]float32{
		"best_bid": {1, 2, 3},
		"best_ask": {1.1, 2.1, 3.1},
	})
	defer srv.Close()

	uploader := &fakeUploader{}
	manager, err := datamanager.NewManager(srv.URL, uploader, 64, zerolog.Nop())
	require.NoError(t, err)
	computeEngine := compute.NewEngine(2, zerolog.Nop())

	bidOnly := preset.Preset{
		Name:        "bid-only",
		RenderType:  preset.RenderTypeLine,
		DataColumns: []preset.DataColumn{{DataType: "md", Column: "best_bid"}},
		Metrics:     []preset.MetricSpec{{Name: "best_bid", VisibleByDefault: true, Style: preset.RenderTypeLine}},
	}
	bidAsk := preset.Preset{
		Name:       "bid-ask",
		RenderType: preset.RenderTypeLine,
		DataColumns: []preset.DataColumn{
			{DataType: "md", Column: "best_bid"},
			{DataType: "md", Column: "best_ask"},
		},
		Metrics: []preset.MetricSpec{
			{Name: "best_bid", VisibleByDefault: true, Style: preset.RenderTypeLine},
			{Name: "best_ask", VisibleByDefault: true, Style: preset.RenderTypeLine},
		},
	}

	c, err := New(manager, computeEngine, Config{
		Exchange:     "NASDAQ",
		Symbol:       "AAPL",
		Presets:      map[string]preset.Preset{"bid-only": bidOnly, "bid-ask": bidAsk},
		ActivePreset: "bid-only",
		Viewport:     model.NewViewport(10, 12, 800, 600),
	}, zerolog.Nop())
	require.NoError(t, err)

	_, err = c.Update(scheduler.Data)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), hits.Load())

	require.NoError(t, c.HandleCommand(engine.Command{Kind: engine.SetPreset, PresetName: "bid-ask"}))
	visible, err := c.Update(scheduler.Config)
	require.NoError(t, err)
	assert.True(t, visible)
	assert.Equal(t, uint64(2), hits.Load(), "switching to a preset needing a new column must fetch")

	_, err = manager.Column("AAPL", "md", "best_ask", 10, 12)
	require.NoError(t, err)
}
