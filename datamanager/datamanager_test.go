package datamanager

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vantage-chart/vantage-engine/model"
)

// fakeUploader hands back a deterministic handle per call and counts uploads.
type fakeUploader struct {
	calls atomic.Uint64
}

func (u *fakeUploader) Upload(data []byte) (model.BufferHandle, error) {
	return model.BufferHandle(u.calls.Add(1)), nil
}

// newFakeCollaborator returns a server emulating the §6.1 wire format for a
// single day's worth of time+price data starting at baseTime.
func newFakeCollaborator(t *testing.T, baseTime uint32, n int) *httptest.Server {
	t.Helper()
	var hits atomic.Uint64

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)

		times := make([]uint32, n)
		prices := make([]float32, n)
		for i := 0; i < n; i++ {
			times[i] = baseTime + uint32(i)
			prices[i] = float32(i) + 0.5
		}

		h := header{Count: uint32(n), Columns: []string{"time", "price"}}
		hb, err := json.Marshal(h)
		require.NoError(t, err)

		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(hb)
		_, _ = w.Write([]byte("\n"))
		_, _ = w.Write(encodeU32Column(times))
		_, _ = w.Write(encodeF32Column(prices))
	}))
}

func TestFetchAssemblesGroupFromSingleDayResponse(t *testing.T) {
	srv := newFakeCollaborator(t, 10*secondsPerDay, 5)
	defer srv.Close()

	uploader := &fakeUploader{}
	mgr, err := NewManager(srv.URL, uploader, 64, zerolog.Nop())
	require.NoError(t, err)

	group, err := mgr.Fetch(context.Background(), "test-exchange", "AAPL", "trades",
		[]string{"price"}, 10*secondsPerDay, 10*secondsPerDay+4)
	require.NoError(t, err)

	assert.Equal(t, "AAPL", group.Symbol())
	assert.Equal(t, "trades", group.DataType())
	assert.Equal(t, 5, group.Time().Length())
	assert.NotNil(t, group.Column("price"))
	assert.Equal(t, 5, group.Column("price").Length())
}

func TestFetchServesSecondCallFromCacheWithoutRefetch(t *testing.T) {
	var hits atomic.Uint64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		n := 3
		times := []uint32{100, 101, 102}
		prices := []float32{1, 2, 3}
		h := header{Count: uint32(n), Columns: []string{"time", "price"}}
		hb, _ := json.Marshal(h)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(hb)
		_, _ = w.Write([]byte("\n"))
		_, _ = w.Write(encodeU32Column(times))
		_, _ = w.Write(encodeF32Column(prices))
	}))
	defer srv.Close()

	uploader := &fakeUploader{}
	mgr, err := NewManager(srv.URL, uploader, 64, zerolog.Nop())
	require.NoError(t, err)

	_, err = mgr.Fetch(context.Background(), "ex", "AAPL", "trades", []string{"price"}, 100, 102)
	require.NoError(t, err)
	_, err = mgr.Fetch(context.Background(), "ex", "AAPL", "trades", []string{"price"}, 100, 102)
	require.NoError(t, err)

	assert.Equal(t, uint64(1), hits.Load())
}

func TestFetchPropagatesNetworkErrorOnNon200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	uploader := &fakeUploader{}
	mgr, err := NewManager(srv.URL, uploader, 64, zerolog.Nop())
	require.NoError(t, err)

	_, err = mgr.Fetch(context.Background(), "ex", "AAPL", "trades", []string{"price"}, 0, 1)
	require.Error(t, err)
}

func TestDayRangeSpansInclusiveDays(t *testing.T) {
	days := dayRange(0, 2*secondsPerDay+10)
	assert.Equal(t, []uint32{0, 1, 2}, days)
}
