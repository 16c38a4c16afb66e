package compute

import (
	"sort"
	"sync"

	"github.com/Carmen-Shannon/automation/tools/worker"

	"github.com/vantage-chart/vantage-engine/model"
)

// candleChunkThreshold mirrors minMaxChunkThreshold: below this size a
// single goroutine outperforms pool dispatch.
const candleChunkThreshold = 4096

// AggregateCandles buckets a trade stream (time, price, volume) into
// fixed-width OHLCV candles, segmented-reducing each bucket independently.
// Buckets are assigned by floor(time/bucketSeconds); within a bucket, Open is
// the first trade's price, Close the last, High/Low the extremes, and Volume
// the sum.
//
// Parallelization mirrors MinMax: pool workers each reduce one contiguous
// chunk of the (already time-sorted) input into partial per-bucket records,
// and partial records for the same bucket id are merged serially on return.
// A chunk boundary never splits cleanly on a bucket boundary, so each
// worker's output is keyed by bucket id and merged by addition (Volume) or
// min/max/first/last comparison against any partial for the same bucket
// produced by a neighboring chunk.
//
// Parameters:
//   - times: unix-second timestamps, non-decreasing
//   - prices, volumes: aligned trade columns
//   - bucketSeconds: the candle width
//   - pool: the shared worker pool; chunking is skipped when pool is nil
//
// Returns:
//   - []model.CandleRecord: one record per non-empty bucket, in bucket order
func AggregateCandles(times []uint32, prices, volumes []float32, bucketSeconds uint32, pool *worker.DynamicWorkerPool) []model.CandleRecord {
	if len(times) == 0 || bucketSeconds == 0 {
		return nil
	}

	if pool == nil || len(times) < candleChunkThreshold {
		return mergeCandleMaps([]map[uint32]model.CandleRecord{
			aggregateRange(times, prices, volumes, bucketSeconds, 0, len(times)),
		})
	}

	chunks := chunkRanges(len(times), candleChunkThreshold)
	partials := make([]map[uint32]model.CandleRecord, len(chunks))

	var wg sync.WaitGroup
	for i, c := range chunks {
		wg.Add(1)
		i, c := i, c
		pool.SubmitTask(worker.Task{
			ID: i,
			Do: func() (any, error) {
				defer wg.Done()
				partials[i] = aggregateRange(times, prices, volumes, bucketSeconds, c.start, c.end)
				return nil, nil
			},
		})
	}
	wg.Wait()

	return mergeCandleMaps(partials)
}

func aggregateRange(times []uint32, prices, volumes []float32, bucketSeconds uint32, start, end int) map[uint32]model.CandleRecord {
	buckets := make(map[uint32]model.CandleRecord)
	for i := start; i < end; i++ {
		bucket := (times[i] / bucketSeconds) * bucketSeconds
		rec, ok := buckets[bucket]
		if !ok {
			rec = model.CandleRecord{
				BucketStart: bucket,
				Open:        prices[i],
				High:        prices[i],
				Low:         prices[i],
				Close:       prices[i],
				Volume:      volumes[i],
			}
			buckets[bucket] = rec
			continue
		}
		if prices[i] > rec.High {
			rec.High = prices[i]
		}
		if prices[i] < rec.Low {
			rec.Low = prices[i]
		}
		rec.Close = prices[i]
		rec.Volume += volumes[i]
		buckets[bucket] = rec
	}
	return buckets
}

// mergeCandleMaps combines per-chunk bucket maps in chunk order, treating
// later chunks as later in time (Open from the earliest chunk that saw the
// bucket, Close from the latest).
func mergeCandleMaps(partials []map[uint32]model.CandleRecord) []model.CandleRecord {
	merged := make(map[uint32]model.CandleRecord)
	var order []uint32

	for _, part := range partials {
		for bucket, rec := range part {
			existing, ok := merged[bucket]
			if !ok {
				merged[bucket] = rec
				order = append(order, bucket)
				continue
			}
			if rec.High > existing.High {
				existing.High = rec.High
			}
			if rec.Low < existing.Low {
				existing.Low = rec.Low
			}
			existing.Close = rec.Close
			existing.Volume += rec.Volume
			merged[bucket] = existing
		}
	}

	sort.Slice(order, func(i, j int) bool { return order[i] < order[j] })
	out := make([]model.CandleRecord, 0, len(order))
	for _, b := range order {
		out = append(out, merged[b])
	}
	return out
}
