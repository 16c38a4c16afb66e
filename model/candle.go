package model

// CandleRecord is one OHLCV aggregate over a bucket of ticks.
type CandleRecord struct {
	BucketStart uint32
	Open        float32
	High        float32
	Low         float32
	Close       float32
	Volume      float32
}

// CandleCacheKey identifies a derived CandleSeries for re-derivation gating:
// re-derived only when one of these fields changes.
type CandleCacheKey struct {
	XMin, XMax   uint32
	TimeframeSec uint32
	ContentHash  uint64
}

// CandleSeries is a derived Series produced by aggregating a raw
// (time, price, volume, side) tick group into OHLCV records at a chosen
// timeframe bucket. Cached via CandleCacheKey; the cache is a single-entry
// memo since only one timeframe is visible at a time.
type CandleSeries struct {
	key     CandleCacheKey
	records []CandleRecord
}

// NewCandleSeries wraps the given records under the given cache key.
//
// Parameters:
//   - key: the cache key this derivation was computed under
//   - records: the OHLCV records, ordered by BucketStart ascending
//
// Returns:
//   - *CandleSeries: the newly created candle series
func NewCandleSeries(key CandleCacheKey, records []CandleRecord) *CandleSeries {
	return &CandleSeries{key: key, records: records}
}

// Key returns the cache key this derivation was computed under.
func (c *CandleSeries) Key() CandleCacheKey { return c.key }

// Records returns the OHLCV records.
func (c *CandleSeries) Records() []CandleRecord { return c.records }

// Fresh reports whether this CandleSeries is still valid for the given
// current cache key.
//
// Parameters:
//   - current: the cache key computed for the current frame
//
// Returns:
//   - bool: true if this series can be reused without re-deriving
func (c *CandleSeries) Fresh(current CandleCacheKey) bool {
	return c.key == current
}
