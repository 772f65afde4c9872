package thresholds

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/good-yellow-bee/netwatch/internal/models"
)

// entry is the on-disk form of a threshold. Enabled defaults to true.
type entry struct {
	MetricType string           `yaml:"metric_type"`
	Warning    float64          `yaml:"warning"`
	Critical   float64          `yaml:"critical"`
	Enabled    *bool            `yaml:"enabled,omitempty"`
	Direction  models.Direction `yaml:"direction,omitempty"`
}

// seedFile is the top-level YAML document of a threshold seed file.
type seedFile struct {
	Thresholds []entry `yaml:"thresholds"`
}

// LoadFromFile loads thresholds from a YAML file.
func LoadFromFile(path string) ([]models.Threshold, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open thresholds file: %w", err)
	}
	defer f.Close()

	return Load(f)
}

// Load parses and validates thresholds from a reader.
func Load(r io.Reader) ([]models.Threshold, error) {
	var doc seedFile
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(&doc); err != nil {
		if err == io.EOF {
			return []models.Threshold{}, nil
		}
		return nil, fmt.Errorf("parse thresholds YAML: %w", err)
	}

	result := make([]models.Threshold, 0, len(doc.Thresholds))
	seen := make(map[string]bool, len(doc.Thresholds))
	for i, e := range doc.Thresholds {
		t := models.Threshold{
			MetricType:    e.MetricType,
			WarningLevel:  e.Warning,
			CriticalLevel: e.Critical,
			Enabled:       e.Enabled == nil || *e.Enabled,
			Direction:     e.Direction,
		}
		if err := Validate(&t); err != nil {
			return nil, fmt.Errorf("invalid threshold at index %d: %w", i, err)
		}
		if seen[t.MetricType] {
			return nil, fmt.Errorf("invalid threshold at index %d: duplicate metric_type %q", i, t.MetricType)
		}
		seen[t.MetricType] = true
		result = append(result, t)
	}

	return result, nil
}
