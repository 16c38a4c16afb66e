package resourcepool

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSizeClassRoundsUpToPowerOfTwo(t *testing.T) {
	assert.Equal(t, uint64(16), sizeClass(1))
	assert.Equal(t, uint64(16), sizeClass(16))
	assert.Equal(t, uint64(32), sizeClass(17))
	assert.Equal(t, uint64(1024), sizeClass(1000))
}

func TestContentHashIsStableAndDistinguishesInputs(t *testing.T) {
	a := ContentHash("vertex.wgsl", "fragment.wgsl")
	b := ContentHash("vertex.wgsl", "fragment.wgsl")
	c := ContentHash("vertex.wgsl", "other.wgsl")

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}
