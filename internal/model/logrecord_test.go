package model_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"logtail-dashboard/internal/model"
)

func TestNewStatusCode(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		expected model.StatusCode
	}{
		{name: "Numeric Looking", value: "200", expected: model.IntStatusCode(200)},
		{name: "Numeric With Spaces", value: " 503 ", expected: model.IntStatusCode(503)},
		{name: "Non Numeric", value: "timeout", expected: model.StatusCode{Raw: "timeout"}},
		{name: "Empty", value: "", expected: model.StatusCode{Raw: ""}},
		{name: "Float Kept Raw", value: "20.0", expected: model.StatusCode{Raw: "20.0"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, model.NewStatusCode(tt.value))
		})
	}
}

func TestStatusCodeString(t *testing.T) {
	assert.Equal(t, "200", model.IntStatusCode(200).String())
	assert.Equal(t, "timeout", model.StatusCode{Raw: "timeout"}.String())
}

func TestLabelSetSourceName(t *testing.T) {
	tests := []struct {
		name     string
		labels   model.LabelSet
		expected string
	}{
		{name: "Pod Preferred", labels: model.LabelSet{"namespace": "default", "pod": "envoy-0", "app": "envoy"}, expected: "envoy-0"},
		{name: "App When No Pod", labels: model.LabelSet{"namespace": "default", "app": "envoy"}, expected: "envoy"},
		{name: "Fallback Smallest Key", labels: model.LabelSet{"zone": "eu", "cluster": "c1"}, expected: "c1"},
		{name: "Empty Set", labels: model.LabelSet{}, expected: "unknown"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.labels.SourceName())
		})
	}
}

func TestLogRecordSummary(t *testing.T) {
	structured := model.NewStructuredRecord(model.StructuredAccess{
		Authority: "hello.local",
		Method:    "POST",
		Path:      "/hello",
		Status:    model.IntStatusCode(200),
		Upstream:  "hello_upstream",
		ReqID:     "abc123",
		TS:        "-",
	})
	assert.Contains(t, structured.Summary(), "POST /hello 200")
	assert.Contains(t, structured.Summary(), "hello_upstream")

	text := model.NewTextRecord(model.TextAccess{Method: "GET", Path: "/x", Status: "404", Upstream: "-", Duration: "0.004"})
	assert.Contains(t, text.Summary(), "GET /x 404")

	raw := model.NewRawRecord("anything")
	assert.Equal(t, "anything", raw.Summary())
}
