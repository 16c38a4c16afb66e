package compute

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCullVisibleFindsExactRange(t *testing.T) {
	times := []uint32{10, 20, 30, 40, 50, 60}
	result := CullVisible(times, 25, 45)
	assert.Equal(t, 2, result.FirstVisible)
	assert.Equal(t, 3, result.LastVisible)
}

func TestCullVisibleEmptyWhenWindowBeforeData(t *testing.T) {
	times := []uint32{100, 200, 300}
	assert.True(t, CullVisible(times, 0, 50).Empty())
}

func TestCullVisibleEmptyWhenWindowAfterData(t *testing.T) {
	times := []uint32{100, 200, 300}
	assert.True(t, CullVisible(times, 400, 500).Empty())
}

func TestCullVisibleEmptyOnEmptyInput(t *testing.T) {
	assert.True(t, CullVisible(nil, 0, 10).Empty())
}

func TestCullVisibleWholeRangeVisible(t *testing.T) {
	times := []uint32{1, 2, 3, 4}
	result := CullVisible(times, 0, 100)
	assert.Equal(t, 0, result.FirstVisible)
	assert.Equal(t, 3, result.LastVisible)
}
