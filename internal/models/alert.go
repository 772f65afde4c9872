// Package models defines domain models for NetWatch.
package models

import (
	"time"
)

// Severity represents alert severity level.
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityError    Severity = "error"
	SeverityCritical Severity = "critical"
)

// Severities lists every severity from least to most severe.
var Severities = []Severity{SeverityInfo, SeverityWarning, SeverityError, SeverityCritical}

// Valid reports whether s is a known severity.
func (s Severity) Valid() bool {
	switch s {
	case SeverityInfo, SeverityWarning, SeverityError, SeverityCritical:
		return true
	}
	return false
}

// Rank orders severities from 0 (info) upward. Unknown values rank -1.
func (s Severity) Rank() int {
	for i, sev := range Severities {
		if sev == s {
			return i
		}
	}
	return -1
}

// ParseSeverity converts a string to Severity.
func ParseSeverity(s string) (Severity, bool) {
	switch s {
	case "info", "INFO":
		return SeverityInfo, true
	case "warning", "WARNING", "warn":
		return SeverityWarning, true
	case "error", "ERROR":
		return SeverityError, true
	case "critical", "CRITICAL":
		return SeverityCritical, true
	default:
		return "", false
	}
}

// AlertStatus is the lifecycle state of an alert.
type AlertStatus string

const (
	StatusActive   AlertStatus = "active"
	StatusResolved AlertStatus = "resolved"
)

// StatusFilter selects alerts by lifecycle state.
type StatusFilter string

const (
	FilterActive   StatusFilter = "active"
	FilterResolved StatusFilter = "resolved"
	FilterAll      StatusFilter = "all"
)

// ParseStatusFilter converts a query value to a StatusFilter.
// An empty value selects active alerts.
func ParseStatusFilter(s string) (StatusFilter, bool) {
	switch s {
	case "", "active":
		return FilterActive, true
	case "resolved":
		return FilterResolved, true
	case "all":
		return FilterAll, true
	default:
		return "", false
	}
}

// Matches reports whether an alert in the given status passes the filter.
func (f StatusFilter) Matches(status AlertStatus) bool {
	switch f {
	case FilterAll:
		return true
	case FilterResolved:
		return status == StatusResolved
	default:
		return status == StatusActive
	}
}

// Alert is a record of a threshold breach.
//
// DeviceID and MetricType are external identifiers; the alert does not own
// the device or the metric.
type Alert struct {
	ID         string      `json:"id"`
	DeviceID   string      `json:"device_id"`
	MetricType string      `json:"metric_type"`
	Severity   Severity    `json:"severity"`
	Message    string      `json:"message"`
	Value      *float64    `json:"value,omitempty"`
	Threshold  *float64    `json:"threshold,omitempty"`
	RaisedAt   time.Time   `json:"raised_at"`
	Status     AlertStatus `json:"status"`
	ResolvedAt *time.Time  `json:"resolved_at,omitempty"`
}

// IsActive returns true if the alert has not been resolved.
func (a *Alert) IsActive() bool {
	return a.Status == StatusActive
}

// Clone returns a deep copy of the alert.
func (a *Alert) Clone() *Alert {
	c := *a
	if a.Value != nil {
		v := *a.Value
		c.Value = &v
	}
	if a.Threshold != nil {
		t := *a.Threshold
		c.Threshold = &t
	}
	if a.ResolvedAt != nil {
		r := *a.ResolvedAt
		c.ResolvedAt = &r
	}
	return &c
}
