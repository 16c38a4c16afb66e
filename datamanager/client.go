package datamanager

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/vantage-chart/vantage-engine/vantageerr"
)

// fetchClient is the HTTP client for the data-serving collaborator's
// /api/data endpoint (§6.1). Grounded on the teacher corpus's yahoo.Client:
// a timeout-bound http.Client plus a component-scoped zerolog.Logger.
type fetchClient struct {
	http    *http.Client
	baseURL string
	log     zerolog.Logger
}

func newFetchClient(baseURL string, log zerolog.Logger) *fetchClient {
	return &fetchClient{
		http:    &http.Client{Timeout: 10 * time.Second},
		baseURL: strings.TrimRight(baseURL, "/"),
		log:     log.With().Str("client", "datamanager").Str("base_url", baseURL).Logger(),
	}
}

// request describes one /api/data call.
type request struct {
	exchange string
	symbol   string
	dataType string
	start    uint32
	end      uint32
	columns  []string
}

func (c *fetchClient) url(r request) string {
	q := url.Values{}
	q.Set("exchange", r.exchange)
	q.Set("symbol", r.symbol)
	q.Set("type", r.dataType)
	q.Set("start", strconv.FormatUint(uint64(r.start), 10))
	q.Set("end", strconv.FormatUint(uint64(r.end), 10))
	q.Set("columns", strings.Join(r.columns, ","))
	return c.baseURL + "/api/data?" + q.Encode()
}

// fetch issues the request and returns the parsed header and decoded columns.
func (c *fetchClient) fetch(ctx context.Context, r request) (header, map[string][]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url(r), nil)
	if err != nil {
		return header{}, nil, vantageerr.New(vantageerr.Programmer, "building request: %w", err)
	}
	req.Header.Set("Accept", "application/octet-stream")

	resp, err := c.http.Do(req)
	if err != nil {
		return header{}, nil, vantageerr.New(vantageerr.NetworkError, "fetching %s/%s: %w", r.symbol, r.dataType, err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return header{}, nil, vantageerr.New(vantageerr.NetworkError, "reading response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return header{}, nil, vantageerr.New(vantageerr.NetworkError, "collaborator returned status %d for %s/%s", resp.StatusCode, r.symbol, r.dataType)
	}

	h, body, err := parseHeader(payload)
	if err != nil {
		return header{}, nil, err
	}
	cols, err := parseBody(h, body)
	if err != nil {
		return header{}, nil, err
	}

	c.log.Debug().Str("symbol", r.symbol).Str("type", r.dataType).Uint32("count", h.Count).Msg("fetched data window")
	return h, cols, nil
}
