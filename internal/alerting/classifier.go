// Package alerting classifies metric samples against thresholds and keeps
// the resulting alerts in an in-memory ledger.
package alerting

import (
	"math"

	"github.com/good-yellow-bee/netwatch/internal/models"
)

// ThresholdSource is the read side of the threshold store.
type ThresholdSource interface {
	Get(metricType string) (models.Threshold, error)
}

// Evaluation is the result of checking one sample.
type Evaluation struct {
	Severity models.Severity
	// Level is the breached threshold level. Nil for info.
	Level *float64
	// Threshold is the configuration the sample was checked against.
	// Zero when the metric has no enabled threshold.
	Threshold models.Threshold
}

// Classify returns the severity of a sample.
func Classify(sample models.MetricSample, src ThresholdSource) models.Severity {
	return Evaluate(sample, src).Severity
}

// Evaluate checks a sample against its metric's threshold.
// Critical is checked before warning so a sample breaching both is critical.
func Evaluate(sample models.MetricSample, src ThresholdSource) Evaluation {
	t, err := src.Get(sample.MetricType)
	if err != nil || !t.Enabled {
		return Evaluation{Severity: models.SeverityInfo}
	}
	if math.IsNaN(sample.Value) {
		return Evaluation{Severity: models.SeverityInfo, Threshold: t}
	}

	switch {
	case t.Breached(sample.Value, t.CriticalLevel):
		level := t.CriticalLevel
		return Evaluation{Severity: models.SeverityCritical, Level: &level, Threshold: t}
	case t.Breached(sample.Value, t.WarningLevel):
		level := t.WarningLevel
		return Evaluation{Severity: models.SeverityWarning, Level: &level, Threshold: t}
	default:
		return Evaluation{Severity: models.SeverityInfo, Threshold: t}
	}
}
