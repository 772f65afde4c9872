package alerting

import (
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/good-yellow-bee/netwatch/internal/metrics"
	"github.com/good-yellow-bee/netwatch/internal/models"
)

// DedupMode selects how repeated breaches for one device+metric are handled.
type DedupMode string

const (
	// DedupAlways raises on every breaching sample.
	DedupAlways DedupMode = "always"
	// DedupCooldown suppresses raises until a per-key cooldown expires.
	DedupCooldown DedupMode = "cooldown"
	// DedupWhileActive suppresses raises while an active alert exists.
	DedupWhileActive DedupMode = "while_active"
)

// ParseDedupMode converts a config value to DedupMode. Empty means always.
func ParseDedupMode(s string) (DedupMode, error) {
	switch DedupMode(s) {
	case "", DedupAlways:
		return DedupAlways, nil
	case DedupCooldown:
		return DedupCooldown, nil
	case DedupWhileActive:
		return DedupWhileActive, nil
	default:
		return "", fmt.Errorf("unknown dedup mode %q", s)
	}
}

// PipelineOptions configures a Pipeline.
type PipelineOptions struct {
	Mode DedupMode
	// Cooldown is the suppression window for DedupCooldown.
	Cooldown time.Duration
	// Now overrides the clock used for cooldown checks.
	Now func() time.Time
}

// DefaultPipelineOptions returns default pipeline options.
func DefaultPipelineOptions() *PipelineOptions {
	return &PipelineOptions{
		Mode:     DedupAlways,
		Cooldown: 5 * time.Minute,
	}
}

// Outcome is the result of processing one sample.
type Outcome struct {
	Sample     models.MetricSample `json:"sample"`
	Severity   models.Severity     `json:"severity"`
	Alert      *models.Alert       `json:"alert,omitempty"`
	Suppressed bool                `json:"suppressed,omitempty"`
}

// PipelineStats tracks pipeline statistics using atomic operations for lock-free access.
type PipelineStats struct {
	SamplesProcessed atomic.Int64
	Breaches         atomic.Int64
	AlertsRaised     atomic.Int64
	AlertsSuppressed atomic.Int64
}

// PipelineStatsSnapshot is a snapshot of pipeline statistics for reporting.
type PipelineStatsSnapshot struct {
	SamplesProcessed int64 `json:"samples_processed"`
	Breaches         int64 `json:"breaches"`
	AlertsRaised     int64 `json:"alerts_raised"`
	AlertsSuppressed int64 `json:"alerts_suppressed"`
}

// Pipeline turns samples into alerts: classify, apply the duplicate
// policy, then raise on the ledger.
type Pipeline struct {
	// mu makes the suppression check and the raise one step.
	mu sync.Mutex

	source    ThresholdSource
	ledger    *Ledger
	mode      DedupMode
	window    time.Duration
	cooldowns *CooldownManager
	now       func() time.Time
	stats     *PipelineStats
}

// NewPipeline creates a pipeline over source and ledger.
func NewPipeline(source ThresholdSource, ledger *Ledger, opts *PipelineOptions) *Pipeline {
	if opts == nil {
		opts = DefaultPipelineOptions()
	}
	mode := opts.Mode
	if mode == "" {
		mode = DedupAlways
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	return &Pipeline{
		source:    source,
		ledger:    ledger,
		mode:      mode,
		window:    opts.Cooldown,
		cooldowns: NewCooldownManager(),
		now:       now,
		stats:     &PipelineStats{},
	}
}

// Mode returns the configured duplicate policy.
func (p *Pipeline) Mode() DedupMode {
	return p.mode
}

// Process classifies one sample and raises an alert unless the sample is
// info or the duplicate policy suppresses it.
func (p *Pipeline) Process(sample models.MetricSample) (Outcome, error) {
	p.stats.SamplesProcessed.Add(1)

	eval := Evaluate(sample, p.source)
	metrics.SamplesTotal.WithLabelValues(string(eval.Severity)).Inc()

	out := Outcome{Sample: sample, Severity: eval.Severity}
	if eval.Severity == models.SeverityInfo {
		return out, nil
	}
	p.stats.Breaches.Add(1)

	p.mu.Lock()
	defer p.mu.Unlock()

	now := p.now()
	if p.suppressed(sample, now) {
		p.stats.AlertsSuppressed.Add(1)
		metrics.AlertsSuppressedTotal.WithLabelValues(string(p.mode)).Inc()
		out.Suppressed = true
		return out, nil
	}

	opts := []RaiseOption{WithValue(sample.Value)}
	if eval.Level != nil {
		opts = append(opts, WithThreshold(*eval.Level))
	}
	alert, err := p.ledger.Raise(sample.DeviceID, sample.MetricType, eval.Severity, alertMessage(sample, eval), opts...)
	if err != nil {
		return out, fmt.Errorf("raise alert: %w", err)
	}

	if p.mode == DedupCooldown && p.window > 0 {
		p.cooldowns.SetCooldown(sample.DeviceID, sample.MetricType, p.window, now)
	}

	p.stats.AlertsRaised.Add(1)
	metrics.AlertsRaisedTotal.WithLabelValues(string(alert.Severity)).Inc()
	out.Alert = alert
	return out, nil
}

func (p *Pipeline) suppressed(sample models.MetricSample, now time.Time) bool {
	switch p.mode {
	case DedupCooldown:
		return p.cooldowns.IsOnCooldown(sample.DeviceID, sample.MetricType, now)
	case DedupWhileActive:
		return p.ledger.HasActive(sample.DeviceID, sample.MetricType)
	default:
		return false
	}
}

// Reset clears every cooldown so the next breach raises immediately.
func (p *Pipeline) Reset() {
	p.cooldowns.ClearAll()
}

// PruneCooldowns drops expired cooldown entries.
func (p *Pipeline) PruneCooldowns() int {
	return p.cooldowns.Prune(p.now())
}

// Stats returns a snapshot of pipeline statistics.
func (p *Pipeline) Stats() PipelineStatsSnapshot {
	return PipelineStatsSnapshot{
		SamplesProcessed: p.stats.SamplesProcessed.Load(),
		Breaches:         p.stats.Breaches.Load(),
		AlertsRaised:     p.stats.AlertsRaised.Load(),
		AlertsSuppressed: p.stats.AlertsSuppressed.Load(),
	}
}

func alertMessage(sample models.MetricSample, eval Evaluation) string {
	verb := "exceeded"
	if eval.Threshold.Direction == models.Descending {
		verb = "fell below"
	}
	level := ""
	if eval.Level != nil {
		level = formatValue(*eval.Level) + " "
	}
	return fmt.Sprintf("%s %s %s%s threshold on %s (value %s)",
		sample.MetricType, verb, level, eval.Severity, sample.DeviceID, formatValue(sample.Value))
}

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
