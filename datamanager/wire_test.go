package datamanager

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vantage-chart/vantage-engine/vantageerr"
)

func encodeU32Column(vals []uint32) []byte {
	out := make([]byte, 4*len(vals))
	for i, v := range vals {
		binary.LittleEndian.PutUint32(out[i*4:], v)
	}
	return out
}

func encodeF32Column(vals []float32) []byte {
	out := make([]byte, 4*len(vals))
	for i, v := range vals {
		binary.LittleEndian.PutUint32(out[i*4:], math.Float32bits(v))
	}
	return out
}

func TestParseHeaderRejectsMissingTerminator(t *testing.T) {
	_, _, err := parseHeader([]byte(`{"count":1,"columns":["time"]}`))
	require.Error(t, err)
	assert.Equal(t, vantageerr.ParseError, vantageerr.KindOf(err))
}

func TestParseBodyDetectsCountMismatch(t *testing.T) {
	h := header{Count: 3, Columns: []string{"time"}}
	body := encodeU32Column([]uint32{1, 2})

	_, err := parseBody(h, body)
	require.Error(t, err)
	assert.Equal(t, vantageerr.ParseError, vantageerr.KindOf(err))
}

func TestParseBodyDetectsUnknownColumn(t *testing.T) {
	h := header{Count: 1, Columns: []string{"not_a_real_column"}}
	_, err := parseBody(h, make([]byte, 4))
	require.Error(t, err)
	assert.Equal(t, vantageerr.ParseError, vantageerr.KindOf(err))
}

func TestParseBodySplitsMultipleColumnsInDeclaredOrder(t *testing.T) {
	h := header{Count: 2, Columns: []string{"time", "price"}}
	body := append(encodeU32Column([]uint32{100, 200}), encodeF32Column([]float32{1.5, 2.5})...)

	cols, err := parseBody(h, body)
	require.NoError(t, err)

	assert.Equal(t, []uint32{100, 200}, decodeU32Column(cols["time"]))
	assert.Equal(t, []float32{1.5, 2.5}, decodeF32Column(cols["price"]))
}

func TestParseHeaderDecodesJSON(t *testing.T) {
	payload := []byte(`{"count":2,"columns":["time","price"]}` + "\n" + "rest-of-body")
	h, body, err := parseHeader(payload)
	require.NoError(t, err)
	assert.Equal(t, uint32(2), h.Count)
	assert.Equal(t, []string{"time", "price"}, h.Columns)
	assert.Equal(t, []byte("rest-of-body"), body)
}
