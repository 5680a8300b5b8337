package model

import (
	"fmt"
	"strconv"
	"strings"
)

// RecordKind discriminates the LogRecord variants.
type RecordKind string

const (
	KindStructuredAccess RecordKind = "structured_access"
	KindTextAccess       RecordKind = "text_access"
	KindRaw              RecordKind = "raw"
)

// FieldMissing is the sentinel for access-log fields that were absent
// from the source line.
const FieldMissing = "-"

// StatusCode holds an HTTP status that is numeric when the source value
// looked numeric and the original string otherwise. Coercion never fails.
type StatusCode struct {
	Int   int    `json:"int,omitempty"`
	Raw   string `json:"raw,omitempty"`
	IsInt bool   `json:"is_int"`
}

func NewStatusCode(value string) StatusCode {
	if n, err := strconv.Atoi(strings.TrimSpace(value)); err == nil {
		return StatusCode{Int: n, IsInt: true}
	}
	return StatusCode{Raw: value}
}

func IntStatusCode(n int) StatusCode {
	return StatusCode{Int: n, IsInt: true}
}

func (s StatusCode) String() string {
	if s.IsInt {
		return strconv.Itoa(s.Int)
	}
	return s.Raw
}

// StructuredAccess is an access log emitted as a JSON object.
type StructuredAccess struct {
	Authority string     `json:"authority"`
	Method    string     `json:"method"`
	Path      string     `json:"path"`
	Status    StatusCode `json:"status"`
	Upstream  string     `json:"upstream"`
	ReqID     string     `json:"req_id"`
	TS        string     `json:"ts"`
}

// TextAccess is a combined-style access log with a quoted request line.
type TextAccess struct {
	Method   string `json:"method"`
	Path     string `json:"path"`
	Status   string `json:"status"`
	Upstream string `json:"upstream"`
	Duration string `json:"duration"`
}

// RawLine is any line that matched neither access-log shape.
type RawLine struct {
	Text string `json:"text"`
}

// LogRecord is the canonical normalized form of one log line. Exactly one
// of the variant pointers is set, matching Kind.
type LogRecord struct {
	Kind       RecordKind        `json:"kind"`
	Structured *StructuredAccess `json:"structured,omitempty"`
	Text       *TextAccess       `json:"text,omitempty"`
	Raw        *RawLine          `json:"raw,omitempty"`
}

func NewStructuredRecord(a StructuredAccess) LogRecord {
	return LogRecord{Kind: KindStructuredAccess, Structured: &a}
}

func NewTextRecord(t TextAccess) LogRecord {
	return LogRecord{Kind: KindTextAccess, Text: &t}
}

func NewRawRecord(text string) LogRecord {
	return LogRecord{Kind: KindRaw, Raw: &RawLine{Text: text}}
}

// Summary renders the record as a single display line.
func (r LogRecord) Summary() string {
	switch r.Kind {
	case KindStructuredAccess:
		s := r.Structured
		return fmt.Sprintf("%s %s %s %s -> %s req_id=%s", s.Method, s.Path, s.Status.String(), s.Authority, s.Upstream, s.ReqID)
	case KindTextAccess:
		t := r.Text
		return fmt.Sprintf("%s %s %s -> %s %ss", t.Method, t.Path, t.Status, t.Upstream, t.Duration)
	default:
		return r.Raw.Text
	}
}
