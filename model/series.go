package model

import (
	"sync"

	"github.com/google/uuid"
)

// ElementType is the scalar type of a Series' underlying column.
type ElementType int

const (
	// ElementTypeF32 is a 32-bit float column (price, volume, computed metrics).
	ElementTypeF32 ElementType = iota
	// ElementTypePackedInt is a packed integer column (side flags, bucket ids).
	ElementTypePackedInt
)

// BufferHandle identifies the GPU buffer a Series is uploaded into. Owned by
// DataManager or ResourcePool; a Series only ever references one, never
// allocates or frees it directly (I3).
type BufferHandle uint64

// Series is a named sequence of values aligned to a common timestamp column
// for one (exchange, symbol, data_type, day) quadruple. Immutable once
// materialized; replacement occurs by creating a new Series and swapping the
// reference held by its owning DataGroup, mirroring the teacher's
// create-new/swap-reference discipline for immutable GPU-backed resources.
type Series struct {
	id uuid.UUID

	mu sync.RWMutex

	metric      string
	elementType ElementType
	length      int
	buffer      BufferHandle
	generation  uint64
}

// NewSeries creates a Series with a fresh id and the given generation.
//
// Parameters:
//   - metric: the metric name (e.g. "best_bid", "price", "side", "volume")
//   - elementType: the scalar element type
//   - length: the number of elements
//   - buffer: the GPU buffer handle backing this Series
//   - generation: the validity generation at creation time
//
// Returns:
//   - *Series: the newly created Series
func NewSeries(metric string, elementType ElementType, length int, buffer BufferHandle, generation uint64) *Series {
	return &Series{
		id:          uuid.New(),
		metric:      metric,
		elementType: elementType,
		length:      length,
		buffer:      buffer,
		generation:  generation,
	}
}

// ID returns the Series' opaque identifier.
func (s *Series) ID() uuid.UUID { return s.id }

// Metric returns the metric name.
func (s *Series) Metric() string { return s.metric }

// ElementType returns the scalar element type.
func (s *Series) ElementType() ElementType { return s.elementType }

// Length returns the number of elements.
func (s *Series) Length() int { return s.length }

// Buffer returns the GPU buffer handle backing this Series.
func (s *Series) Buffer() BufferHandle {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.buffer
}

// Generation returns the validity generation recorded at materialization.
func (s *Series) Generation() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.generation
}
