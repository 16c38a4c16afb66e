package compute

import (
	"sort"

	"github.com/vantage-chart/vantage-engine/model"
)

// CullVisible returns the [FirstVisible, LastVisible] index range of a
// strictly non-decreasing time column that falls within [xMin, xMax].
//
// Implemented as a CPU-side binary search rather than a GPU dispatch (Open
// Question decision: GPU-side per-instance culling is reserved for the
// teacher's original per-element workloads — frustum/light culling over
// thousands of instances — not an O(log N) scalar search over one sorted
// column, where a dispatch round-trip costs more than the search itself).
//
// Parameters:
//   - times: a strictly non-decreasing time column, in unix seconds
//   - xMin, xMax: the inclusive visible window
//
// Returns:
//   - model.CullingResult: the visible index range, or EmptyCullingResult if
//     no element falls in range
func CullVisible(times []uint32, xMin, xMax uint32) model.CullingResult {
	if len(times) == 0 || xMax < xMin {
		return model.EmptyCullingResult
	}

	first := sort.Search(len(times), func(i int) bool { return times[i] >= xMin })
	if first == len(times) || times[first] > xMax {
		return model.EmptyCullingResult
	}

	last := sort.Search(len(times), func(i int) bool { return times[i] > xMax }) - 1
	if last < first {
		return model.EmptyCullingResult
	}

	return model.CullingResult{FirstVisible: first, LastVisible: last}
}
