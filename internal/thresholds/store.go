// Package thresholds holds the per-metric warning/critical configuration
// consulted by the severity classifier.
package thresholds

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"

	"github.com/good-yellow-bee/netwatch/internal/models"
)

// ErrNotFound is returned when no threshold exists for a metric type.
var ErrNotFound = errors.New("threshold not found")

// ValidationError describes why a threshold write was rejected.
type ValidationError struct {
	MetricType string
	Messages   []string
}

func (e *ValidationError) Error() string {
	if e.MetricType == "" {
		return "invalid threshold: " + strings.Join(e.Messages, "; ")
	}
	return fmt.Sprintf("invalid threshold %q: %s", e.MetricType, strings.Join(e.Messages, "; "))
}

// Store holds exactly one Threshold per metric type.
// List order is the order in which metric types were first registered.
type Store struct {
	mu      sync.RWMutex
	order   []string
	entries map[string]models.Threshold
}

// NewStore creates a store seeded with the given thresholds.
func NewStore(seed ...models.Threshold) (*Store, error) {
	s := &Store{entries: make(map[string]models.Threshold)}
	if err := s.Replace(seed); err != nil {
		return nil, err
	}
	return s, nil
}

// Validate checks a threshold and fills in the default direction.
func Validate(t *models.Threshold) error {
	var messages []string

	switch {
	case strings.TrimSpace(t.MetricType) == "":
		messages = append(messages, "metric_type is required")
	case strings.TrimSpace(t.MetricType) != t.MetricType:
		messages = append(messages, "metric_type must not have leading or trailing whitespace")
	}

	if t.Direction == "" {
		t.Direction = models.Ascending
	}
	if t.Direction != models.Ascending && t.Direction != models.Descending {
		messages = append(messages, fmt.Sprintf("direction must be %q or %q", models.Ascending, models.Descending))
	}

	levelsOK := true
	for _, lv := range []struct {
		name  string
		value float64
	}{
		{"warning_level", t.WarningLevel},
		{"critical_level", t.CriticalLevel},
	} {
		switch {
		case math.IsNaN(lv.value) || math.IsInf(lv.value, 0):
			messages = append(messages, lv.name+" must be a finite number")
			levelsOK = false
		case lv.value < 0:
			messages = append(messages, lv.name+" must not be negative")
			levelsOK = false
		}
	}

	if levelsOK {
		switch t.Direction {
		case models.Ascending:
			if t.WarningLevel >= t.CriticalLevel {
				messages = append(messages, "warning_level must be below critical_level for an ascending metric")
			}
		case models.Descending:
			if t.WarningLevel <= t.CriticalLevel {
				messages = append(messages, "warning_level must be above critical_level for a descending metric")
			}
		}
	}

	if len(messages) > 0 {
		return &ValidationError{MetricType: t.MetricType, Messages: messages}
	}
	return nil
}

// Get returns the threshold for a metric type.
func (s *Store) Get(metricType string) (models.Threshold, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.entries[metricType]
	if !ok {
		return models.Threshold{}, fmt.Errorf("%w: %s", ErrNotFound, metricType)
	}
	return t, nil
}

// List returns all thresholds in first-registration order.
func (s *Store) List() []models.Threshold {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]models.Threshold, 0, len(s.order))
	for _, name := range s.order {
		result = append(result, s.entries[name])
	}
	return result
}

// Upsert validates t and replaces any existing entry for the same metric type.
// A rejected write leaves the store unchanged.
func (s *Store) Upsert(t models.Threshold) (models.Threshold, error) {
	if err := Validate(&t); err != nil {
		return models.Threshold{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.putLocked(t)
	return t, nil
}

// SetEnabled toggles evaluation for a metric type.
func (s *Store) SetEnabled(metricType string, enabled bool) (models.Threshold, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.entries[metricType]
	if !ok {
		return models.Threshold{}, fmt.Errorf("%w: %s", ErrNotFound, metricType)
	}
	t.Enabled = enabled
	s.entries[metricType] = t
	return t, nil
}

// Replace validates every threshold in set and upserts them in one step.
// Metric types absent from set are kept. Nothing is applied if any entry
// is invalid or a metric type appears twice.
func (s *Store) Replace(set []models.Threshold) error {
	validated := make([]models.Threshold, len(set))
	seen := make(map[string]bool, len(set))
	for i, t := range set {
		if err := Validate(&t); err != nil {
			return fmt.Errorf("threshold at index %d: %w", i, err)
		}
		if seen[t.MetricType] {
			return fmt.Errorf("threshold at index %d: %w", i, &ValidationError{
				MetricType: t.MetricType,
				Messages:   []string{"duplicate metric_type"},
			})
		}
		seen[t.MetricType] = true
		validated[i] = t
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, t := range validated {
		s.putLocked(t)
	}
	return nil
}

// Len returns the number of configured metric types.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}

// putLocked must be called with the write lock held.
func (s *Store) putLocked(t models.Threshold) {
	if _, ok := s.entries[t.MetricType]; !ok {
		s.order = append(s.order, t.MetricType)
	}
	s.entries[t.MetricType] = t
}
