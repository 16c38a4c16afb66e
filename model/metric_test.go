package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputedMetricStaleUntilMarkedComputed(t *testing.T) {
	cm := NewComputedMetric("mid_price", []string{"best_bid", "best_ask"}, RenderStyleLine, [4]float32{1, 1, 1, 1}, 100)

	gens := map[string]uint64{"best_bid": 1, "best_ask": 1}
	assert.True(t, cm.Stale(gens), "never computed, must be stale")

	cm.MarkComputed(gens)
	assert.False(t, cm.Stale(gens))

	gens["best_bid"] = 2
	assert.True(t, cm.Stale(gens), "dependency generation advanced past recorded value (I4)")
}

func TestDataGroupAttachColumnRejectsLengthMismatch(t *testing.T) {
	time := NewSeries("time", ElementTypeF32, 10, 1, 0)
	g := NewDataGroup("AAPL", "md", time)

	mismatched := NewSeries("best_bid", ElementTypeF32, 5, 2, 0)
	err := g.AttachColumn(mismatched)
	assert.Error(t, err)

	matched := NewSeries("best_bid", ElementTypeF32, 10, 2, 0)
	assert.NoError(t, g.AttachColumn(matched))
	assert.Equal(t, matched, g.Column("best_bid"))
}

func TestCullingResultEmptySentinel(t *testing.T) {
	assert.True(t, EmptyCullingResult.Empty())
	assert.Equal(t, 0, EmptyCullingResult.VisibleCount())

	r := CullingResult{FirstVisible: 3, LastVisible: 10}
	assert.False(t, r.Empty())
	assert.Equal(t, 8, r.VisibleCount())
}
