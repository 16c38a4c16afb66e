package datamanager

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
)

const secondsPerDay = 86400

// cacheKey identifies one day-aligned, single-column cache entry.
type cacheKey struct {
	symbol   string
	dataType string
	column   string
	day      uint32 // unix day number: unix seconds / secondsPerDay
}

func dayOf(unixSeconds uint32) uint32 { return unixSeconds / secondsPerDay }

// dayRange decomposes [xMin, xMax] into the inclusive day numbers it spans.
func dayRange(xMin, xMax uint32) []uint32 {
	first, last := dayOf(xMin), dayOf(xMax)
	days := make([]uint32, 0, last-first+1)
	for d := first; d <= last; d++ {
		days = append(days, d)
	}
	return days
}

func (k cacheKey) String() string {
	return fmt.Sprintf("%s/%s/%s/%d", k.symbol, k.dataType, k.column, k.day)
}

// dayColumn is one day's decoded column data plus its time column, cached
// together so a cache hit never needs to re-derive alignment.
type dayColumn struct {
	time []uint32
	data []byte // raw wire-format bytes for this column, already sliced to this day
}

// columnCache is an LRU over per-day, per-column entries, keyed by
// (symbol, data_type, column, day) per spec's §4.2 cache key. Grounded on
// the teacher corpus's hashicorp/golang-lru usage convention (fixed-capacity
// eviction, no TTL). It is bounded by entry count only: golang-lru/v2's
// basic Cache evicts by count, so an entry's byte size plays no part in
// eviction and there is no byte budget.
type columnCache struct {
	entries *lru.Cache[cacheKey, dayColumn]
}

// newColumnCache builds a cache holding up to maxEntries day/column entries.
func newColumnCache(maxEntries int) (*columnCache, error) {
	c, err := lru.New[cacheKey, dayColumn](maxEntries)
	if err != nil {
		return nil, err
	}
	return &columnCache{entries: c}, nil
}

func (c *columnCache) get(k cacheKey) (dayColumn, bool) {
	return c.entries.Get(k)
}

func (c *columnCache) put(k cacheKey, v dayColumn) {
	c.entries.Add(k, v)
}
