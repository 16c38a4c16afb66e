package nodes

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vantage-chart/vantage-engine/model"
)

func TestQuadMeshProducesFourCornersAndTwoTriangles(t *testing.T) {
	vertexData, indexData := quadMesh(-1, -1, 1, 1)
	assert.Len(t, vertexData, 4*8)
	assert.Len(t, indexData, 6*4)
}

func TestPackVec2RoundTripsThroughSeriesVertexLayout(t *testing.T) {
	packed := packVec2([][2]float32{{1, 2}, {3, 4}})
	expected := model.MarshalSeriesVertices([]float32{1, 3}, []float32{2, 4})
	assert.Equal(t, expected, packed)
}

func TestPackIndicesIsLittleEndianU32(t *testing.T) {
	buf := packIndices([]uint32{1, 2})
	assert.Equal(t, []byte{1, 0, 0, 0, 2, 0, 0, 0}, buf)
}

func TestCandleBucketWidthDerivesFromConsecutiveBuckets(t *testing.T) {
	width := candleBucketWidth([]model.CandleRecord{
		{BucketStart: 0},
		{BucketStart: 60},
	})
	assert.Equal(t, float32(60), width)
}

func TestCandleBucketWidthFallsBackToOneForSingleCandle(t *testing.T) {
	width := candleBucketWidth([]model.CandleRecord{{BucketStart: 0}})
	assert.Equal(t, float32(1), width)
}
