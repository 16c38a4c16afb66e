package compute

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMinMaxSequentialPath(t *testing.T) {
	min, max := MinMax([]float32{3, -1, 7, 2}, nil)
	assert.Equal(t, float32(-1), min)
	assert.Equal(t, float32(7), max)
}

func TestMinMaxEmptyInput(t *testing.T) {
	min, max := MinMax(nil, nil)
	assert.Equal(t, float32(0), min)
	assert.Equal(t, float32(0), max)
}

func TestMidPriceAveragesAlignedColumns(t *testing.T) {
	out := MidPrice([]float32{100, 101}, []float32{102, 103})
	assert.Equal(t, []float32{101, 102}, out)
}

func TestMidPriceRejectsMismatchedLengths(t *testing.T) {
	assert.Nil(t, MidPrice([]float32{1}, []float32{1, 2}))
}

func TestAggregateCandlesBucketsByTime(t *testing.T) {
	times := []uint32{0, 5, 9, 10, 15, 19}
	prices := []float32{10, 12, 8, 20, 25, 22}
	volumes := []float32{1, 1, 1, 1, 1, 1}

	candles := AggregateCandles(times, prices, volumes, 10, nil)
	assert.Len(t, candles, 2)

	assert.Equal(t, uint32(0), candles[0].BucketStart)
	assert.Equal(t, float32(10), candles[0].Open)
	assert.Equal(t, float32(12), candles[0].High)
	assert.Equal(t, float32(8), candles[0].Low)
	assert.Equal(t, float32(8), candles[0].Close)
	assert.Equal(t, float32(3), candles[0].Volume)

	assert.Equal(t, uint32(10), candles[1].BucketStart)
	assert.Equal(t, float32(20), candles[1].Open)
	assert.Equal(t, float32(25), candles[1].High)
	assert.Equal(t, float32(20), candles[1].Low)
	assert.Equal(t, float32(22), candles[1].Close)
	assert.Equal(t, float32(3), candles[1].Volume)
}

func TestAggregateCandlesEmptyInput(t *testing.T) {
	assert.Nil(t, AggregateCandles(nil, nil, nil, 10, nil))
}
