package grafana

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"logtail-dashboard/config"
	"logtail-dashboard/internal/model"
	"logtail-dashboard/internal/util"
)

// Client talks to the log and metric backends through the Grafana
// datasource proxy: base URL plus a numeric datasource index path
// segment. It performs no retries; the cascade decision lives with the
// caller. Call deadlines come from the caller's context.
type Client struct {
	baseURL          string
	logDatasource    int
	metricDatasource int
	httpClient       *http.Client
	now              func() time.Time
}

func NewClient(cfg *config.Config) *Client {
	transport := &http.Transport{
		MaxIdleConnsPerHost: 10,
		DialContext:         (&net.Dialer{Timeout: 5 * time.Second}).DialContext,
		TLSHandshakeTimeout: 5 * time.Second,
	}
	return &Client{
		baseURL:          strings.TrimRight(cfg.Grafana.BaseURL, "/"),
		logDatasource:    cfg.Grafana.LogDatasourceIndex,
		metricDatasource: cfg.Grafana.MetricDatasourceIndex,
		httpClient:       &http.Client{Transport: transport},
		now:              time.Now,
	}
}

// queryRangeResponse is the wire shape of a windowed log query: one
// entry per label set, values as (ns-timestamp string, line) pairs.
type queryRangeResponse struct {
	Streams []struct {
		Labels map[string]string `json:"labels"`
		Values [][2]string       `json:"values"`
	} `json:"streams"`
}

// QueryRange runs one time-windowed tail query and returns the raw
// label-partitioned chunks. Truncation and window semantics are whatever
// the backend applied; they are not second-guessed here.
func (c *Client) QueryRange(ctx context.Context, spec model.QuerySpec) ([]model.StreamChunk, error) {
	start, end := util.Window(c.now(), spec.WindowSec)

	params := url.Values{}
	params.Set("query", spec.Query)
	params.Set("limit", strconv.Itoa(spec.Limit))
	params.Set("direction", spec.Direction)
	params.Set("start", strconv.FormatInt(start, 10))
	params.Set("end", strconv.FormatInt(end, 10))

	endpoint := fmt.Sprintf("%s/api/datasources/proxy/%d/loki/api/v1/query_range?%s",
		c.baseURL, c.logDatasource, params.Encode())

	body, err := c.get(ctx, endpoint)
	if err != nil {
		return nil, err
	}

	var decoded queryRangeResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, &ParseError{Err: err}
	}

	chunks := make([]model.StreamChunk, 0, len(decoded.Streams))
	for _, stream := range decoded.Streams {
		chunk := model.StreamChunk{
			Labels: model.LabelSet(stream.Labels),
			Lines:  make([]model.LogLine, 0, len(stream.Values)),
		}
		for _, pair := range stream.Values {
			ns, err := util.ParseNano(pair[0])
			if err != nil {
				return nil, &ParseError{Err: err}
			}
			chunk.Lines = append(chunk.Lines, model.LogLine{Timestamp: ns, Line: pair[1]})
		}
		chunks = append(chunks, chunk)
	}

	log.Debug().
		Str("query", spec.Query).
		Int("streams", len(chunks)).
		Msg("Query range completed")
	return chunks, nil
}

// instantQueryResponse is the wire shape of an instant metric query.
// The value pair mixes a numeric timestamp with a string sample value.
type instantQueryResponse struct {
	Result []struct {
		Metric map[string]string `json:"metric"`
		Value  []json.RawMessage `json:"value"`
	} `json:"result"`
}

// InstantQuery runs one instant metric query against the metric
// datasource.
func (c *Client) InstantQuery(ctx context.Context, query string) (model.InstantVector, error) {
	params := url.Values{}
	params.Set("query", query)

	endpoint := fmt.Sprintf("%s/api/datasources/proxy/%d/api/v1/query?%s",
		c.baseURL, c.metricDatasource, params.Encode())

	body, err := c.get(ctx, endpoint)
	if err != nil {
		return nil, err
	}

	var decoded instantQueryResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, &ParseError{Err: err}
	}

	vector := make(model.InstantVector, 0, len(decoded.Result))
	for _, sample := range decoded.Result {
		out := model.InstantSample{Metric: model.LabelSet(sample.Metric)}
		if len(sample.Value) == 2 {
			if err := json.Unmarshal(sample.Value[0], &out.Time); err != nil {
				return nil, &ParseError{Err: err}
			}
			if err := json.Unmarshal(sample.Value[1], &out.Value); err != nil {
				return nil, &ParseError{Err: err}
			}
		}
		vector = append(vector, out)
	}

	log.Debug().
		Str("query", query).
		Int("series", len(vector)).
		Msg("Instant query completed")
	return vector, nil
}

func (c *Client) get(ctx context.Context, endpoint string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &BackendError{
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(body)),
		}
	}
	return body, nil
}
