// internal/data/models.go
package data

import (
	"encoding/json"
	"time"
)

// MetricKind determines how a topic payload is parsed and stored.
type MetricKind string

const (
	KindFloat  MetricKind = "float"  // ASCII float payload, bounded history
	KindInt    MetricKind = "int"    // ASCII integer payload, bounded history
	KindStatus MetricKind = "status" // free-form string, current value only
)

// AxisPolicy controls whether a numeric metric's updates append to the shared
// timestamp axis.
type AxisPolicy string

const (
	AxisAlways  AxisPolicy = "always"  // primary metric, every update appends
	AxisNever   AxisPolicy = "never"   // rides on the primary's timestamps
	AxisCatchup AxisPolicy = "catchup" // appends only while the axis trails this series
)

// CasePolicy normalizes status payloads per topic; deployments disagree on
// upper vs lower for device status.
type CasePolicy string

const (
	CaseUpper CasePolicy = "upper"
	CaseLower CasePolicy = "lower"
	CaseNone  CasePolicy = "none"
)

// Update is one accepted inbound message after parsing.
type Update struct {
	Metric    string     `json:"metric"`
	Kind      MetricKind `json:"kind"`
	Value     float64    `json:"value,omitempty"`
	Status    string     `json:"status,omitempty"`
	Timestamp time.Time  `json:"timestamp"`
}

// Alert - raised when a numeric update violates a configured threshold rule.
type Alert struct {
	Timestamp time.Time `json:"timestamp"`
	Severity  string    `json:"severity"` // e.g., "WARN", "CRITICAL"
	Message   string    `json:"message"`
	Metric    string    `json:"metric"` // Which metric triggered the alert
	Value     float64   `json:"value"`  // The offending value
}

// Snapshot is a defensive copy of every current value. It marshals flat, the
// way the dashboard consumes it: numeric and status metrics side by side plus
// a last_update string (null until the first mutation).
type Snapshot struct {
	Values     map[string]float64
	Statuses   map[string]string
	LastUpdate string
}

func (s Snapshot) MarshalJSON() ([]byte, error) {
	out := make(map[string]interface{}, len(s.Values)+len(s.Statuses)+1)
	for k, v := range s.Values {
		out[k] = v
	}
	for k, v := range s.Statuses {
		out[k] = v
	}
	if s.LastUpdate == "" {
		out["last_update"] = nil
	} else {
		out["last_update"] = s.LastUpdate
	}
	return json.Marshal(out)
}

// History is a defensive copy of every bounded series plus the shared
// timestamp axis, marshalled flat under a reserved "timestamps" key.
type History struct {
	Series     map[string][]float64
	Timestamps []string
}

func (h History) MarshalJSON() ([]byte, error) {
	out := make(map[string]interface{}, len(h.Series)+1)
	for k, v := range h.Series {
		out[k] = v
	}
	out["timestamps"] = h.Timestamps
	return json.Marshal(out)
}
