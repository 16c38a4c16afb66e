package datamanager

import (
	"context"
	"fmt"
	"sort"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/vantage-chart/vantage-engine/model"
	"github.com/vantage-chart/vantage-engine/vantageerr"
)

// BufferUploader is the narrow dependency DataManager needs from the GPU
// layer: turn a decoded column's raw bytes into a pooled GPU buffer and hand
// back an opaque handle. Concrete implementations live in resourcepool,
// which owns buffer allocation and reuse; DataManager never talks to the
// renderer backend directly, matching spec's dependency order (ResourcePool
// sits below DataManager, not beside it).
type BufferUploader interface {
	Upload(data []byte) (model.BufferHandle, error)
}

// Manager is DataManager: it fetches binary columnar windows from the
// data-serving collaborator, caches them per day per column, deduplicates
// concurrent identical fetches, and assembles DataGroups with GPU-resident
// Series.
type Manager struct {
	client   *fetchClient
	cache    *columnCache
	inflight singleflight.Group
	uploader BufferUploader
	log      zerolog.Logger
}

// NewManager builds a Manager against the collaborator at baseURL, caching
// up to maxCacheEntries day/column windows.
//
// Parameters:
//   - baseURL: the data-serving collaborator's base URL
//   - uploader: the GPU buffer allocator
//   - maxCacheEntries: the LRU capacity in day/column entries
//   - log: the base logger to derive a component logger from
//
// Returns:
//   - *Manager: the newly created manager
//   - error: if the cache could not be constructed
func NewManager(baseURL string, uploader BufferUploader, maxCacheEntries int, log zerolog.Logger) (*Manager, error) {
	cache, err := newColumnCache(maxCacheEntries)
	if err != nil {
		return nil, vantageerr.New(vantageerr.Programmer, "constructing column cache: %w", err)
	}
	return &Manager{
		client:   newFetchClient(baseURL, log),
		cache:    cache,
		uploader: uploader,
		log:      log.With().Str("component", "datamanager").Logger(),
	}, nil
}

// Fetch returns a DataGroup covering [xMin, xMax] for the given symbol and
// data type, serving whatever days are already cached and fetching only the
// missing ones. Concurrent Fetch calls for the same (symbol, dataType,
// columns) whose missing days span the same range are deduplicated via
// singleflight so at most one network request is in flight per key; exchange
// is not part of the key.
//
// Parameters:
//   - ctx: cancels the underlying HTTP request
//   - exchange, symbol, dataType: the instrument and data type to fetch
//   - columns: the non-time columns to fetch; "time" is always included
//   - xMin, xMax: the window in unix seconds, inclusive
//
// Returns:
//   - *model.DataGroup: the assembled group with GPU-resident Series
//   - error: NetworkError/ParseError from the fetch, or a GpuError from
//     buffer upload
func (m *Manager) Fetch(ctx context.Context, exchange, symbol, dataType string, columns []string, xMin, xMax uint32) (*model.DataGroup, error) {
	days := dayRange(xMin, xMax)
	missing := m.missingDays(symbol, dataType, columns, days)

	if len(missing) > 0 {
		sfKey := fmt.Sprintf("%s/%s/%s/%d-%d", symbol, dataType, columns, missing[0], missing[len(missing)-1])
		_, err, _ := m.inflight.Do(sfKey, func() (any, error) {
			return nil, m.fetchAndCache(ctx, exchange, symbol, dataType, columns, missing)
		})
		if err != nil {
			return nil, err
		}
	}

	return m.assemble(symbol, dataType, columns, days)
}

// missingDays returns the subset of days for which any requested column is
// not yet cached.
func (m *Manager) missingDays(symbol, dataType string, columns []string, days []uint32) []uint32 {
	var missing []uint32
	for _, d := range days {
		have := true
		for _, col := range append([]string{"time"}, columns...) {
			if _, ok := m.cache.get(cacheKey{symbol, dataType, col, d}); !ok {
				have = false
				break
			}
		}
		if !have {
			missing = append(missing, d)
		}
	}
	return missing
}

// fetchAndCache fetches the full span covering the given missing days and
// splits the result into per-day cache entries.
func (m *Manager) fetchAndCache(ctx context.Context, exchange, symbol, dataType string, columns []string, missing []uint32) error {
	xMin := missing[0] * secondsPerDay
	xMax := missing[len(missing)-1]*secondsPerDay + secondsPerDay - 1

	allColumns := append([]string{"time"}, columns...)
	h, cols, err := m.client.fetch(ctx, request{
		exchange: exchange,
		symbol:   symbol,
		dataType: dataType,
		start:    xMin,
		end:      xMax,
		columns:  allColumns,
	})
	if err != nil {
		return err
	}

	if h.Count == 0 {
		return nil
	}

	timeCol := decodeU32Column(cols["time"])
	m.splitColumnByDay(symbol, dataType, "time", timeCol, cols["time"], columnWidths["time"])
	for _, col := range columns {
		width, ok := columnWidths[col]
		if !ok {
			return vantageerr.New(vantageerr.ParseError, "unknown column %q", col)
		}
		m.splitColumnByDay(symbol, dataType, col, timeCol, cols[col], width)
	}
	return nil
}

// splitColumnByDay slices raw into per-day runs aligned to timeCol's day
// boundaries and stores each run in the cache.
func (m *Manager) splitColumnByDay(symbol, dataType, col string, timeCol []uint32, raw []byte, width int) {
	if len(timeCol) == 0 {
		return
	}

	start := 0
	currentDay := dayOf(timeCol[0])
	for i := 1; i <= len(timeCol); i++ {
		atEnd := i == len(timeCol)
		var d uint32
		if !atEnd {
			d = dayOf(timeCol[i])
		}
		if atEnd || d != currentDay {
			m.cache.put(cacheKey{symbol, dataType, col, currentDay}, dayColumn{
				time: timeCol[start:i],
				data: raw[start*width : i*width],
			})
			if !atEnd {
				start = i
				currentDay = d
			}
		}
	}
}

// assemble concatenates cached per-day entries for every requested column
// across days, uploads each concatenated column to a GPU buffer, and builds
// the resulting DataGroup.
func (m *Manager) assemble(symbol, dataType string, columns []string, days []uint32) (*model.DataGroup, error) {
	sort.Slice(days, func(i, j int) bool { return days[i] < days[j] })

	var timeRaw []byte
	length := 0
	for _, d := range days {
		entry, ok := m.cache.get(cacheKey{symbol, dataType, "time", d})
		if !ok {
			return nil, vantageerr.New(vantageerr.Programmer, "day %d missing from cache after fetch", d)
		}
		timeRaw = append(timeRaw, entry.data...)
		length += len(entry.time)
	}

	timeHandle, err := m.uploader.Upload(timeRaw)
	if err != nil {
		return nil, vantageerr.New(vantageerr.GpuError, "uploading time column: %w", err)
	}
	timeSeries := model.NewSeries("time", model.ElementTypePackedInt, length, timeHandle, 0)
	group := model.NewDataGroup(symbol, dataType, timeSeries)

	for _, col := range columns {
		var raw []byte
		for _, d := range days {
			entry, ok := m.cache.get(cacheKey{symbol, dataType, col, d})
			if !ok {
				return nil, vantageerr.New(vantageerr.Programmer, "day %d column %s missing from cache after fetch", d, col)
			}
			raw = append(raw, entry.data...)
		}

		handle, err := m.uploader.Upload(raw)
		if err != nil {
			return nil, vantageerr.New(vantageerr.GpuError, "uploading column %s: %w", col, err)
		}
		elemType := model.ElementTypeF32
		if columnWidths[col] != 4 || col == "side" {
			elemType = model.ElementTypePackedInt
		}
		if err := group.AttachColumn(model.NewSeries(col, elemType, length, handle, 0)); err != nil {
			return nil, err
		}
	}

	return group, nil
}

// Times returns the decoded CPU-side time column for [xMin, xMax], read back
// from the day-aligned cache a prior Fetch covering that range populated.
// ComputeEngine's kernels (Cull, AggregateCandles) run against this CPU copy
// rather than the uploaded GPU Series, which per I3 holds only an opaque
// buffer handle and never the raw values.
//
// Parameters:
//   - symbol, dataType: the instrument and data type
//   - xMin, xMax: the window in unix seconds, inclusive
//
// Returns:
//   - []uint32: the decoded time column
//   - error: Programmer error if a covered day is not cached (call Fetch first)
func (m *Manager) Times(symbol, dataType string, xMin, xMax uint32) ([]uint32, error) {
	raw, err := m.rawColumn(symbol, dataType, "time", xMin, xMax)
	if err != nil {
		return nil, err
	}
	return decodeU32Column(raw), nil
}

// Column returns the decoded CPU-side float32 column for [xMin, xMax], read
// back from the day-aligned cache the same way Times does.
//
// Parameters:
//   - symbol, dataType, col: the instrument, data type, and column name
//   - xMin, xMax: the window in unix seconds, inclusive
//
// Returns:
//   - []float32: the decoded column
//   - error: Programmer error if a covered day is not cached (call Fetch first)
func (m *Manager) Column(symbol, dataType, col string, xMin, xMax uint32) ([]float32, error) {
	raw, err := m.rawColumn(symbol, dataType, col, xMin, xMax)
	if err != nil {
		return nil, err
	}
	return decodeF32Column(raw), nil
}

// rawColumn concatenates cached per-day raw bytes for one column across
// [xMin, xMax], the same day-traversal assemble uses for its GPU upload
// path, without uploading anything.
func (m *Manager) rawColumn(symbol, dataType, col string, xMin, xMax uint32) ([]byte, error) {
	var raw []byte
	for _, d := range dayRange(xMin, xMax) {
		entry, ok := m.cache.get(cacheKey{symbol, dataType, col, d})
		if !ok {
			return nil, vantageerr.New(vantageerr.Programmer, "day %d column %s not cached; call Fetch first", d, col)
		}
		raw = append(raw, entry.data...)
	}
	return raw, nil
}
