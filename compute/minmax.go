package compute

import (
	"sync"

	"github.com/Carmen-Shannon/automation/tools/worker"
)

// minMaxChunkThreshold is the element count below which a single-goroutine
// scan beats the overhead of splitting work across the pool.
const minMaxChunkThreshold = 4096

// MinMax computes the minimum and maximum of values, parallelizing the
// reduction across pool when the input is large enough to be worth it.
//
// This is the two-stage reduction spec.md §4.3 describes: pool workers each
// reduce one contiguous chunk (stage one), and the chunk results are merged
// serially on return (stage two). This CPU path is the only min/max
// implementation: as Engine's doc notes, nothing in this package dispatches
// a GPU kernel for it.
//
// Parallel CPU prep bounded by a per-frame WaitGroup barrier is grounded on
// the teacher's engine/scene.scene compute-pool discipline (workers reused
// across frames, one wg.Add per submitted task, wg.Wait before reading
// results).
//
// Parameters:
//   - values: the column to reduce; empty input returns (0, 0)
//   - pool: the shared worker pool; chunking is skipped when pool is nil
//
// Returns:
//   - min, max float32: the reduced bounds
func MinMax(values []float32, pool *worker.DynamicWorkerPool) (min, max float32) {
	if len(values) == 0 {
		return 0, 0
	}
	if pool == nil || len(values) < minMaxChunkThreshold {
		return minMaxScan(values)
	}

	chunks := chunkRanges(len(values), minMaxChunkThreshold)
	results := make([]struct{ min, max float32 }, len(chunks))

	var wg sync.WaitGroup
	for i, c := range chunks {
		wg.Add(1)
		i, c := i, c
		pool.SubmitTask(worker.Task{
			ID: i,
			Do: func() (any, error) {
				defer wg.Done()
				mn, mx := minMaxScan(values[c.start:c.end])
				results[i].min, results[i].max = mn, mx
				return nil, nil
			},
		})
	}
	wg.Wait()

	min, max = results[0].min, results[0].max
	for _, r := range results[1:] {
		if r.min < min {
			min = r.min
		}
		if r.max > max {
			max = r.max
		}
	}
	return min, max
}

func minMaxScan(values []float32) (min, max float32) {
	min, max = values[0], values[0]
	for _, v := range values[1:] {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	return min, max
}

type chunkRange struct{ start, end int }

func chunkRanges(n, chunkSize int) []chunkRange {
	var out []chunkRange
	for start := 0; start < n; start += chunkSize {
		end := start + chunkSize
		if end > n {
			end = n
		}
		out = append(out, chunkRange{start, end})
	}
	return out
}
