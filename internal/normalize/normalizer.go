package normalize

import (
	"regexp"
	"strings"

	"github.com/valyala/fastjson"

	"logtail-dashboard/internal/model"
)

// The log sources are heterogeneous and uncontrolled: structured JSON
// access logs, combined-style text access logs and arbitrary raw text all
// arrive on the same streams. Detection is heuristic, tried in fixed
// priority order, and a line that matches nothing is kept verbatim.

var structuredAccessKeys = []string{"authority", "method", "path", "status", "upstream"}

// Quoted request line immediately followed by a 3-digit status code,
// e.g. `"GET /hello HTTP/1.1" 200`.
var requestLineRegex = regexp.MustCompile(`"([A-Z]+)\s+(\S+)\s+HTTP/[0-9.]+"\s+(\d{3})\b`)

// host:port where the host part carries at least one dot, e.g. 10.42.0.5:8080.
var upstreamTokenRegex = regexp.MustCompile(`^[^:]*\.[^:]*:\d+$`)

// Digits with exactly one dot, e.g. 0.004.
var durationTokenRegex = regexp.MustCompile(`^\d+\.\d+$`)

var newlineEscaper = strings.NewReplacer("\r\n", `\n`, "\n", `\n`)

var parserPool fastjson.ParserPool

// Normalize converts one raw line into its canonical record. It is total:
// any input yields exactly one variant and no error.
func Normalize(line string) model.LogRecord {
	if rec, ok := parseStructuredAccess(line); ok {
		return rec
	}
	if rec, ok := parseTextAccess(line); ok {
		return rec
	}
	return model.NewRawRecord(newlineEscaper.Replace(line))
}

// parseStructuredAccess matches a JSON object carrying all required
// access-log keys. Wins over the text pattern by priority.
func parseStructuredAccess(line string) (model.LogRecord, bool) {
	trimmed := strings.TrimSpace(line)
	if !strings.HasPrefix(trimmed, "{") {
		return model.LogRecord{}, false
	}

	p := parserPool.Get()
	defer parserPool.Put(p)

	v, err := p.Parse(trimmed)
	if err != nil || v.Type() != fastjson.TypeObject {
		return model.LogRecord{}, false
	}
	for _, key := range structuredAccessKeys {
		if !v.Exists(key) {
			return model.LogRecord{}, false
		}
	}

	rec := model.StructuredAccess{
		Authority: fieldString(v, "authority", ""),
		Method:    fieldString(v, "method", ""),
		Path:      fieldString(v, "path", ""),
		Status:    statusCode(v.Get("status")),
		Upstream:  fieldString(v, "upstream", ""),
		ReqID:     fieldString(v, "req_id", model.FieldMissing),
		TS:        fieldString(v, "ts", model.FieldMissing),
	}
	return model.NewStructuredRecord(rec), true
}

// parseTextAccess matches a quoted HTTP request line plus status, then
// scans the remaining whitespace-delimited tokens for an upstream
// address and a request duration.
func parseTextAccess(line string) (model.LogRecord, bool) {
	loc := requestLineRegex.FindStringSubmatchIndex(line)
	if loc == nil {
		return model.LogRecord{}, false
	}
	sub := requestLineRegex.FindStringSubmatch(line)

	rec := model.TextAccess{
		Method:   sub[1],
		Path:     sub[2],
		Status:   sub[3],
		Upstream: model.FieldMissing,
		Duration: model.FieldMissing,
	}

	for _, token := range strings.Fields(line[loc[1]:]) {
		if rec.Upstream == model.FieldMissing && upstreamTokenRegex.MatchString(token) {
			rec.Upstream = token
			continue
		}
		if rec.Duration == model.FieldMissing && durationTokenRegex.MatchString(token) {
			rec.Duration = token
		}
	}
	return model.NewTextRecord(rec), true
}

func fieldString(v *fastjson.Value, key, fallback string) string {
	field := v.Get(key)
	if field == nil {
		return fallback
	}
	switch field.Type() {
	case fastjson.TypeString:
		b, _ := field.StringBytes()
		return string(b)
	case fastjson.TypeNull:
		return fallback
	default:
		return field.String()
	}
}

func statusCode(v *fastjson.Value) model.StatusCode {
	if v == nil {
		return model.NewStatusCode(model.FieldMissing)
	}
	switch v.Type() {
	case fastjson.TypeNumber:
		n, err := v.Int()
		if err != nil {
			return model.NewStatusCode(v.String())
		}
		return model.IntStatusCode(n)
	case fastjson.TypeString:
		b, _ := v.StringBytes()
		return model.NewStatusCode(string(b))
	default:
		return model.NewStatusCode(v.String())
	}
}
