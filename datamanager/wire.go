// Package datamanager implements DataManager: it fetches binary columnar
// data from the external data-serving collaborator (§6.1), parses it, and
// produces GPU buffers referenced by DataStore. A golang-lru cache keyed by
// (symbol, data_type, column, day) avoids re-fetching cold days; a
// singleflight.Group deduplicates concurrent identical fetches so at most
// one request per cache key is ever in flight.
package datamanager

import (
	"encoding/json"
	"math"

	"github.com/vantage-chart/vantage-engine/vantageerr"
)

// columnWidths is the fixed little-endian record width per column name, per
// spec's §6.1 wire table.
var columnWidths = map[string]int{
	"time":           4,
	"nanos":          4,
	"price":          4,
	"best_bid":       4,
	"best_ask":       4,
	"volume":         4,
	"side":           4,
	"trade_id":       8,
	"maker_order_id": 16,
	"taker_order_id": 16,
}

// header is the JSON metadata line preceding the binary body.
type header struct {
	Count   uint32   `json:"count"`
	Columns []string `json:"columns"`
	Chunks  []chunk  `json:"chunks,omitempty"`
}

// chunk describes one day-aligned split within a multi-day response.
type chunk struct {
	Day   uint32 `json:"day"`
	Count uint32 `json:"count"`
}

// parseHeader decodes the newline-terminated JSON header from the front of
// payload, returning the header and the remaining binary body.
func parseHeader(payload []byte) (header, []byte, error) {
	nl := -1
	for i, b := range payload {
		if b == '\n' {
			nl = i
			break
		}
	}
	if nl < 0 {
		return header{}, nil, vantageerr.New(vantageerr.ParseError, "response payload has no header terminator")
	}

	var h header
	if err := json.Unmarshal(payload[:nl], &h); err != nil {
		return header{}, nil, vantageerr.New(vantageerr.ParseError, "malformed header: %w", err)
	}
	return h, payload[nl+1:], nil
}

// parseBody decodes body into one []byte column (still in its native wire
// layout) per h.Columns, in declared order, failing with ParseError if the
// body length disagrees with h.Count.
func parseBody(h header, body []byte) (map[string][]byte, error) {
	offset := 0
	out := make(map[string][]byte, len(h.Columns))

	for _, col := range h.Columns {
		width, ok := columnWidths[col]
		if !ok {
			return nil, vantageerr.New(vantageerr.ParseError, "unknown column %q in header", col)
		}

		need := width * int(h.Count)
		if offset+need > len(body) {
			return nil, vantageerr.New(vantageerr.ParseError,
				"header count %d disagrees with body length for column %q", h.Count, col)
		}
		out[col] = body[offset : offset+need]
		offset += need
	}

	if offset != len(body) {
		return nil, vantageerr.New(vantageerr.ParseError, "trailing %d bytes in body after declared columns", len(body)-offset)
	}
	return out, nil
}

// decodeF32Column reinterprets a raw little-endian f32 column as a []float32.
func decodeF32Column(raw []byte) []float32 {
	n := len(raw) / 4
	out := make([]float32, n)
	for i := 0; i < n; i++ {
		out[i] = math.Float32frombits(leUint32(raw[i*4:]))
	}
	return out
}

// decodeU32Column reinterprets a raw little-endian u32 column as a []uint32.
func decodeU32Column(raw []byte) []uint32 {
	n := len(raw) / 4
	out := make([]uint32, n)
	for i := 0; i < n; i++ {
		out[i] = leUint32(raw[i*4:])
	}
	return out
}

func leUint32(b []byte) uint32 {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}
