package thresholds

import "github.com/good-yellow-bee/netwatch/internal/models"

// Defaults returns the thresholds a fresh dashboard starts with.
func Defaults() []models.Threshold {
	return []models.Threshold{
		{MetricType: "CPU Usage", WarningLevel: 70, CriticalLevel: 90, Enabled: true, Direction: models.Ascending},
		{MetricType: "Memory Usage", WarningLevel: 80, CriticalLevel: 95, Enabled: true, Direction: models.Ascending},
		{MetricType: "Network Latency", WarningLevel: 100, CriticalLevel: 200, Enabled: true, Direction: models.Ascending},
		{MetricType: "Packet Loss", WarningLevel: 1, CriticalLevel: 5, Enabled: true, Direction: models.Ascending},
	}
}
