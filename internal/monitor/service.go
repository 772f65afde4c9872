// Package monitor is the entry point that composes the access guard,
// the threshold store, and the alert ledger. Callers never reach the
// store or the ledger directly, so every operation is authorized.
package monitor

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/good-yellow-bee/netwatch/internal/access"
	"github.com/good-yellow-bee/netwatch/internal/alerting"
	"github.com/good-yellow-bee/netwatch/internal/metrics"
	"github.com/good-yellow-bee/netwatch/internal/models"
	"github.com/good-yellow-bee/netwatch/internal/thresholds"
)

// SystemRole is the role the service acts as for internal operations
// such as threshold file reloads.
const SystemRole = models.RoleAdmin

// Authorizer decides whether a role may perform an action.
type Authorizer interface {
	Authorize(role models.Role, action access.Action) error
}

// AlertSink receives every newly raised alert. Enqueue must not block.
type AlertSink interface {
	Enqueue(alert *models.Alert) bool
}

// Service exposes threshold and alert operations behind the access guard.
type Service struct {
	guard    Authorizer
	store    *thresholds.Store
	ledger   *alerting.Ledger
	pipeline *alerting.Pipeline
	sink     AlertSink
	logger   *zap.Logger
}

// NewService creates a service over the given components.
func NewService(guard Authorizer, store *thresholds.Store, ledger *alerting.Ledger, pipeline *alerting.Pipeline, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{
		guard:    guard,
		store:    store,
		ledger:   ledger,
		pipeline: pipeline,
		logger:   logger.With(zap.String("component", "monitor")),
	}
	metrics.ThresholdsConfigured.Set(float64(store.Len()))
	s.publishActive()
	return s
}

// SetNotifier attaches a sink for raised alerts. Call before serving traffic.
func (s *Service) SetNotifier(sink AlertSink) {
	s.sink = sink
}

// Authorize checks role against action without performing it. Handlers call
// it before reading a request body so a denied caller never sees input errors.
func (s *Service) Authorize(role models.Role, action access.Action) error {
	return s.guard.Authorize(role, action)
}

// Thresholds lists every threshold in registration order.
func (s *Service) Thresholds(role models.Role) ([]models.Threshold, error) {
	if err := s.guard.Authorize(role, access.ActionViewThresholds); err != nil {
		return nil, err
	}
	return s.store.List(), nil
}

// Threshold returns one threshold.
func (s *Service) Threshold(role models.Role, metricType string) (models.Threshold, error) {
	if err := s.guard.Authorize(role, access.ActionViewThresholds); err != nil {
		return models.Threshold{}, err
	}
	return s.store.Get(metricType)
}

// UpsertThreshold replaces or registers a threshold.
func (s *Service) UpsertThreshold(role models.Role, t models.Threshold) (models.Threshold, error) {
	if err := s.guard.Authorize(role, access.ActionEditThreshold); err != nil {
		return models.Threshold{}, err
	}

	saved, err := s.store.Upsert(t)
	if err != nil {
		return models.Threshold{}, err
	}
	metrics.ThresholdsConfigured.Set(float64(s.store.Len()))
	s.logger.Info("threshold updated",
		zap.String("metric_type", saved.MetricType),
		zap.Float64("warning_level", saved.WarningLevel),
		zap.Float64("critical_level", saved.CriticalLevel),
		zap.String("direction", string(saved.Direction)),
		zap.Bool("enabled", saved.Enabled),
	)
	return saved, nil
}

// SetThresholdEnabled toggles evaluation for a metric type.
func (s *Service) SetThresholdEnabled(role models.Role, metricType string, enabled bool) (models.Threshold, error) {
	if err := s.guard.Authorize(role, access.ActionEditThreshold); err != nil {
		return models.Threshold{}, err
	}

	saved, err := s.store.SetEnabled(metricType, enabled)
	if err != nil {
		return models.Threshold{}, err
	}
	s.logger.Info("threshold toggled", zap.String("metric_type", metricType), zap.Bool("enabled", enabled))
	return saved, nil
}

// ReloadThresholds applies a full threshold set as the system principal.
func (s *Service) ReloadThresholds(set []models.Threshold) error {
	if err := s.guard.Authorize(SystemRole, access.ActionEditThreshold); err != nil {
		return err
	}

	if err := s.store.Replace(set); err != nil {
		metrics.ThresholdReloadsTotal.WithLabelValues("failure").Inc()
		return fmt.Errorf("reload thresholds: %w", err)
	}
	metrics.ThresholdReloadsTotal.WithLabelValues("success").Inc()
	metrics.ThresholdsConfigured.Set(float64(s.store.Len()))
	return nil
}

// Alerts lists alerts matching filter, most recent first.
func (s *Service) Alerts(role models.Role, filter models.StatusFilter) ([]*models.Alert, error) {
	if err := s.guard.Authorize(role, access.ActionViewAlerts); err != nil {
		return nil, err
	}
	return s.ledger.List(filter), nil
}

// Alert returns one alert.
func (s *Service) Alert(role models.Role, id string) (*models.Alert, error) {
	if err := s.guard.Authorize(role, access.ActionViewAlerts); err != nil {
		return nil, err
	}
	return s.ledger.Get(id)
}

// Summary counts active alerts by severity.
func (s *Service) Summary(role models.Role) (map[models.Severity]int, error) {
	if err := s.guard.Authorize(role, access.ActionViewAlerts); err != nil {
		return nil, err
	}
	return s.ledger.CountsBySeverity(), nil
}

// ResolveAlert resolves one active alert.
func (s *Service) ResolveAlert(role models.Role, id string) (*models.Alert, error) {
	if err := s.guard.Authorize(role, access.ActionResolveAlert); err != nil {
		return nil, err
	}

	a, err := s.ledger.Resolve(id)
	if err != nil {
		if errors.Is(err, alerting.ErrAlreadyResolved) {
			s.logger.Info("alert already resolved", zap.String("alert_id", id))
		}
		return a, err
	}

	metrics.AlertsResolvedTotal.WithLabelValues("single").Inc()
	s.publishActive()
	s.logger.Info("alert resolved", zap.String("alert_id", id), zap.String("device_id", a.DeviceID))
	return a, nil
}

// ResolveAll resolves every active alert and returns how many changed.
func (s *Service) ResolveAll(role models.Role) (int, error) {
	if err := s.guard.Authorize(role, access.ActionResolveAll); err != nil {
		return 0, err
	}

	n := s.ledger.ResolveAll()
	metrics.AlertsResolvedTotal.WithLabelValues("bulk").Add(float64(n))
	s.publishActive()
	s.logger.Info("all alerts resolved", zap.Int("count", n))
	return n, nil
}

// Ingest runs samples through the pipeline. Callers authenticate the
// sample source before calling; no role applies.
func (s *Service) Ingest(samples []models.MetricSample) ([]alerting.Outcome, error) {
	outcomes := make([]alerting.Outcome, 0, len(samples))
	for i, sample := range samples {
		out, err := s.pipeline.Process(sample)
		if err != nil {
			s.publishActive()
			return outcomes, fmt.Errorf("sample %d: %w", i, err)
		}
		if out.Alert != nil {
			s.logger.Info("alert raised",
				zap.String("alert_id", out.Alert.ID),
				zap.String("device_id", out.Alert.DeviceID),
				zap.String("metric_type", out.Alert.MetricType),
				zap.String("severity", string(out.Alert.Severity)),
			)
			if s.sink != nil {
				s.sink.Enqueue(out.Alert)
			}
		}
		outcomes = append(outcomes, out)
	}
	s.publishActive()
	return outcomes, nil
}

// PipelineStats returns sample processing statistics.
func (s *Service) PipelineStats() alerting.PipelineStatsSnapshot {
	return s.pipeline.Stats()
}

// ThresholdCount returns the number of configured metric types.
func (s *Service) ThresholdCount() int {
	return s.store.Len()
}

func (s *Service) publishActive() {
	metrics.SetActiveAlerts(s.ledger.CountsBySeverity())
}
