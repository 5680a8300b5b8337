package grafana_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"logtail-dashboard/config"
	"logtail-dashboard/internal/grafana"
	"logtail-dashboard/internal/model"
)

func newTestClient(baseURL string) *grafana.Client {
	cfg := &config.Config{}
	cfg.Grafana.BaseURL = baseURL
	cfg.Grafana.LogDatasourceIndex = 1
	cfg.Grafana.MetricDatasourceIndex = 2
	return grafana.NewClient(cfg)
}

func tailSpec(query string) model.QuerySpec {
	return model.QuerySpec{
		Query:     query,
		Limit:     30,
		WindowSec: 300,
		Direction: model.DirectionBackward,
	}
}

func TestQueryRange_DecodesStreams(t *testing.T) {
	var gotPath string
	var gotQuery map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = map[string]string{
			"query":     r.URL.Query().Get("query"),
			"limit":     r.URL.Query().Get("limit"),
			"direction": r.URL.Query().Get("direction"),
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"streams": [
				{
					"labels": {"pod": "envoy-0", "namespace": "default"},
					"values": [["1700000001000000000", "line one"], ["1700000000000000000", "line zero"]]
				},
				{
					"labels": {"pod": "envoy-1"},
					"values": [["1700000002000000000", "line two"]]
				}
			]
		}`))
	}))
	defer srv.Close()

	chunks, err := newTestClient(srv.URL).QueryRange(context.Background(), tailSpec(`{app="envoy"}`))

	require.NoError(t, err)
	assert.Equal(t, "/api/datasources/proxy/1/loki/api/v1/query_range", gotPath)
	assert.Equal(t, `{app="envoy"}`, gotQuery["query"])
	assert.Equal(t, "30", gotQuery["limit"])
	assert.Equal(t, "BACKWARD", gotQuery["direction"])

	require.Len(t, chunks, 2)
	assert.Equal(t, "envoy-0", chunks[0].Labels["pod"])
	require.Len(t, chunks[0].Lines, 2)
	assert.Equal(t, int64(1700000001000000000), chunks[0].Lines[0].Timestamp)
	assert.Equal(t, "line one", chunks[0].Lines[0].Line)
	assert.Equal(t, "envoy-1", chunks[1].Labels["pod"])
}

func TestQueryRange_NonOKIsBackendError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("upstream connect error"))
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).QueryRange(context.Background(), tailSpec("{}"))

	var backendErr *grafana.BackendError
	require.ErrorAs(t, err, &backendErr)
	assert.Equal(t, http.StatusBadGateway, backendErr.StatusCode)
	assert.Equal(t, "upstream connect error", backendErr.Body)
}

func TestQueryRange_MalformedBodyIsParseError(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "Not JSON", body: "<html>gateway timeout</html>"},
		{name: "Bad Timestamp", body: `{"streams":[{"labels":{},"values":[["not-a-number","x"]]}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := newTestClient(srv.URL).QueryRange(context.Background(), tailSpec("{}"))

			var parseErr *grafana.ParseError
			require.ErrorAs(t, err, &parseErr)
		})
	}
}

func TestQueryRange_UnreachableBackendIsTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // Refuses connections from here on.

	_, err := newTestClient(srv.URL).QueryRange(context.Background(), tailSpec("{}"))

	var transportErr *grafana.TransportError
	require.ErrorAs(t, err, &transportErr)
	assert.True(t, errors.Unwrap(transportErr) != nil)
}

func TestInstantQuery_DecodesVector(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Write([]byte(`{
			"result": [
				{"metric": {"__name__": "up", "job": "envoy"}, "value": [1700000000.123, "1"]},
				{"metric": {"__name__": "envoy_requests_total"}, "value": [1700000000.123, "42"]}
			]
		}`))
	}))
	defer srv.Close()

	vector, err := newTestClient(srv.URL).InstantQuery(context.Background(), "vector(1)")

	require.NoError(t, err)
	assert.Equal(t, "/api/datasources/proxy/2/api/v1/query", gotPath)
	require.Len(t, vector, 2)
	assert.Equal(t, "up", vector[0].Metric["__name__"])
	assert.Equal(t, "1", vector[0].Value)
	assert.InDelta(t, 1700000000.123, vector[0].Time, 0.001)
	assert.Equal(t, "42", vector[1].Value)
}

func TestInstantQuery_RespectsContextTimeout(t *testing.T) {
	blocked := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-blocked
	}))
	defer srv.Close()
	defer close(blocked)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestClient(srv.URL).InstantQuery(ctx, "vector(1)")

	var transportErr *grafana.TransportError
	require.ErrorAs(t, err, &transportErr)
}
