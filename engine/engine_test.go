package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vantage-chart/vantage-engine/resourcepool"
)

func TestNewEngineWithoutRendererLeavesPoolNil(t *testing.T) {
	e := NewEngine()
	assert.Nil(t, e.Renderer())
	assert.Nil(t, e.Pool())
}

func TestWithResourcePoolAttachesGivenPoolWithoutARenderer(t *testing.T) {
	pool := &resourcepool.Pool{}
	e := NewEngine(WithResourcePool(pool))
	assert.Same(t, pool, e.Pool())
}
