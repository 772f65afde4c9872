package models

import "time"

// Direction tells the classifier which way a metric gets worse.
type Direction string

const (
	// Ascending metrics get worse as the value grows (CPU, latency).
	Ascending Direction = "ascending"
	// Descending metrics get worse as the value shrinks (signal strength).
	Descending Direction = "descending"
)

// Threshold is the configured warning/critical boundary for a metric type.
type Threshold struct {
	MetricType    string    `json:"metric_type" yaml:"metric_type"`
	WarningLevel  float64   `json:"warning_level" yaml:"warning"`
	CriticalLevel float64   `json:"critical_level" yaml:"critical"`
	Enabled       bool      `json:"enabled" yaml:"enabled"`
	Direction     Direction `json:"direction" yaml:"direction,omitempty"`
}

// Breached reports whether value crosses level in the threshold's direction.
func (t Threshold) Breached(value, level float64) bool {
	if t.Direction == Descending {
		return value <= level
	}
	return value >= level
}

// MetricSample is a single observation fed into the classifier.
type MetricSample struct {
	MetricType string    `json:"metric_type"`
	DeviceID   string    `json:"device_id"`
	Value      float64   `json:"value"`
	ObservedAt time.Time `json:"observed_at"`
}
