package datastore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vantage-chart/vantage-engine/model"
)

func newTestStore() *DataStore {
	return New(model.NewViewport(0, 100, 800, 600))
}

func TestSetViewportXRejectsInvertedRange(t *testing.T) {
	d := newTestStore()
	err := d.SetViewportX(100, 50)
	require.Error(t, err)
}

func TestSetViewportXBumpsViewGenerationAndDirty(t *testing.T) {
	d := newTestStore()
	assert.False(t, d.IsDirty())

	require.NoError(t, d.SetViewportX(10, 200))
	assert.True(t, d.IsDirty())
	assert.Equal(t, uint64(1), d.GetGenerations().View)

	xMin, xMax := d.Viewport().XRange()
	assert.Equal(t, uint32(10), xMin)
	assert.Equal(t, uint32(200), xMax)
}

func TestMarkCleanClearsDirtyWithoutResettingGenerations(t *testing.T) {
	d := newTestStore()
	require.NoError(t, d.SetViewportX(10, 200))
	d.MarkClean()
	assert.False(t, d.IsDirty())
	assert.Equal(t, uint64(1), d.GetGenerations().View)
}

func TestAttachDetachGroupBumpsDataGeneration(t *testing.T) {
	d := newTestStore()
	time := model.NewSeries("time", model.ElementTypeF32, 10, 1, 0)
	g := model.NewDataGroup("AAPL", "md", time)

	d.AttachGroup(g)
	assert.Equal(t, uint64(1), d.GetGenerations().Data)
	assert.NotNil(t, d.Group(g.ID().String()))

	require.NoError(t, d.DetachGroup(g.ID().String()))
	assert.Equal(t, uint64(2), d.GetGenerations().Data)
	assert.Nil(t, d.Group(g.ID().String()))
}

func TestDetachUnknownGroupFails(t *testing.T) {
	d := newTestStore()
	err := d.DetachGroup("does-not-exist")
	require.Error(t, err)
}

func TestSetMetricVisibilityUnknownMetricFails(t *testing.T) {
	d := newTestStore()
	err := d.SetMetricVisibility("ghost", false)
	require.Error(t, err)
}

func TestSetMetricVisibilityTogglesAndBumpsUI(t *testing.T) {
	d := newTestStore()
	m := model.NewMetric("mid_price", "mid_price", model.RenderStyleLine, [4]float32{1, 1, 1, 1}, 100)
	d.RegisterMetric(m)

	require.NoError(t, d.SetMetricVisibility("mid_price", false))
	assert.False(t, m.Visible())
	assert.Equal(t, uint64(2), d.GetGenerations().UI) // one bump from RegisterMetric, one from the toggle
}

func TestMetricReturnsNilForUnregisteredName(t *testing.T) {
	d := newTestStore()
	assert.Nil(t, d.Metric("ghost"))
}

func TestMetricsReturnsACopyOfRegisteredMetrics(t *testing.T) {
	d := newTestStore()
	m := model.NewMetric("close", "close", model.RenderStyleBar, [4]float32{1, 0, 0, 1}, 50)
	d.RegisterMetric(m)

	got := d.Metric("close")
	require.NotNil(t, got)
	assert.Equal(t, m, got)

	all := d.Metrics()
	require.Len(t, all, 1)
	assert.Same(t, m, all["close"])
}

func TestSnapshotReflectsOnlyActiveGroups(t *testing.T) {
	d := newTestStore()
	time := model.NewSeries("time", model.ElementTypeF32, 10, 1, 0)
	active := model.NewDataGroup("AAPL", "md", time)
	active.SetActive(true)
	inactive := model.NewDataGroup("GOOG", "md", time)

	d.AttachGroup(active)
	d.AttachGroup(inactive)

	snap := d.Snapshot()
	require.Len(t, snap.ActiveGroupIDs, 1)
	assert.Equal(t, active.ID().String(), snap.ActiveGroupIDs[0])
}
