package rendergraph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeNode struct {
	name     string
	priority uint32
	compute  bool
	reads    []ResourceKey
	writes   []ResourceKey
}

func (f *fakeNode) Name() string          { return f.name }
func (f *fakeNode) Priority() uint32      { return f.priority }
func (f *fakeNode) NeedsCompute() bool    { return f.compute }
func (f *fakeNode) Reads() []ResourceKey  { return f.reads }
func (f *fakeNode) Writes() []ResourceKey { return f.writes }

func TestRenderOrderIsPriorityOrdered(t *testing.T) {
	background := &fakeNode{name: "background", priority: 0}
	candles := &fakeNode{name: "candles", priority: 50}
	plots := &fakeNode{name: "plots", priority: 100}
	axes := &fakeNode{name: "axes", priority: 150}

	g := New(axes, plots, background, candles)
	require.NoError(t, g.Validate())

	order := g.RenderOrder()
	names := make([]string, len(order))
	for i, n := range order {
		names[i] = n.Name()
	}
	assert.Equal(t, []string{"background", "candles", "plots", "axes"}, names)
}

func TestComputeOrderRespectsDependencies(t *testing.T) {
	culling := &fakeNode{name: "culling", priority: 50, compute: true, writes: []ResourceKey{"cull_range"}}
	candles := &fakeNode{name: "candles", priority: 50, compute: true, reads: []ResourceKey{"cull_range"}, writes: []ResourceKey{"candle_buckets"}}
	plots := &fakeNode{name: "plots", priority: 100, compute: false, reads: []ResourceKey{"cull_range"}}

	g := New(candles, culling, plots)
	require.NoError(t, g.Validate())

	order := g.ComputeOrder()
	require.Len(t, order, 2)
	assert.Equal(t, "culling", order[0].Name())
	assert.Equal(t, "candles", order[1].Name())
}

func TestValidateDetectsWriteConflict(t *testing.T) {
	a := &fakeNode{name: "a", writes: []ResourceKey{"shared"}}
	b := &fakeNode{name: "b", writes: []ResourceKey{"shared"}}

	g := New(a, b)
	err := g.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "shared")
}

func TestValidateDetectsCycle(t *testing.T) {
	a := &fakeNode{name: "a", reads: []ResourceKey{"b_out"}, writes: []ResourceKey{"a_out"}}
	b := &fakeNode{name: "b", reads: []ResourceKey{"a_out"}, writes: []ResourceKey{"b_out"}}

	g := New(a, b)
	err := g.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cycle")
}
