package model

// InstantSample is one series returned by an instant metric query.
type InstantSample struct {
	Metric LabelSet `json:"metric"`
	Time   float64  `json:"time"`
	Value  string   `json:"value"`
}

// InstantVector is the full result of an instant metric query.
type InstantVector []InstantSample
