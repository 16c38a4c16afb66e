package compute

import (
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/rs/zerolog"

	"github.com/vantage-chart/vantage-engine/model"
)

// Engine is ComputeEngine: the shared kernel library render nodes call into
// for their compute prepass (culling, min/max, mid-price, candle
// aggregation), backed by one pool of reusable worker goroutines shared
// across every kernel invocation in a frame, following the teacher's
// engine/scene.scene.computePool discipline (one pool per frame-producing
// owner, not one per kernel call).
//
// The GPU struct types in gpu_types.go are the wire contract a live
// WebGPU device would use to dispatch these same reductions as compute
// shaders; this build executes them on the CPU path unconditionally; no
// renderer device is opened by this package, so there is nothing here for a
// GPU dispatch call to hand off to.
type Engine struct {
	pool worker.DynamicWorkerPool
	log  zerolog.Logger
}

// NewEngine builds a ComputeEngine with workerCount reusable goroutines.
func NewEngine(workerCount int, log zerolog.Logger) *Engine {
	return &Engine{
		pool: worker.NewDynamicWorkerPool(workerCount, 256, time.Second),
		log:  log.With().Str("component", "compute").Logger(),
	}
}

// Cull returns the visible index range of a sorted time column (§4.3 culling
// kernel).
func (e *Engine) Cull(times []uint32, xMin, xMax uint32) model.CullingResult {
	return CullVisible(times, xMin, xMax)
}

// MinMax reduces a column to its (min, max) bounds (§4.3 min/max kernel).
func (e *Engine) MinMax(values []float32) (min, max float32) {
	return MinMax(values, &e.pool)
}

// MidPrice computes the mid-price computed metric (§4.3 mid-price kernel).
func (e *Engine) MidPrice(bestBid, bestAsk []float32) []float32 {
	return MidPrice(bestBid, bestAsk)
}

// AggregateCandles buckets a trade stream into OHLCV candles (§4.3 candle
// aggregation kernel).
func (e *Engine) AggregateCandles(times []uint32, prices, volumes []float32, bucketSeconds uint32) []model.CandleRecord {
	return AggregateCandles(times, prices, volumes, bucketSeconds, &e.pool)
}
