// Package notifier delivers raised alerts to chat webhooks.
package notifier

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/good-yellow-bee/netwatch/internal/metrics"
	"github.com/good-yellow-bee/netwatch/internal/models"
)

// Notifier is the interface for all notification channels.
type Notifier interface {
	// Name returns the notifier name (e.g., "slack", "teams").
	Name() string
	// Send sends an alert notification.
	Send(ctx context.Context, alert *models.Alert) error
	// Close releases any resources.
	Close() error
}

// ErrRateLimited is returned when a notification is dropped due to rate limiting.
var ErrRateLimited = errors.New("notification rate limited")

// Options configures a Dispatcher.
type Options struct {
	// MinSeverity is the lowest severity delivered. Default warning.
	MinSeverity models.Severity
	// QueueSize bounds alerts waiting for delivery. Default 256.
	QueueSize int
	// SendTimeout bounds one delivery to all channels. Default 10s.
	SendTimeout time.Duration
	RateLimit   RateLimitConfig
}

func (o *Options) setDefaults() {
	if !o.MinSeverity.Valid() {
		o.MinSeverity = models.SeverityWarning
	}
	if o.QueueSize <= 0 {
		o.QueueSize = 256
	}
	if o.SendTimeout <= 0 {
		o.SendTimeout = 10 * time.Second
	}
}

// Dispatcher queues raised alerts and fans them out to every registered notifier.
type Dispatcher struct {
	mu          sync.RWMutex
	notifiers   map[string]Notifier
	rateLimiter *RateLimiter
	queue       chan *models.Alert
	minSeverity models.Severity
	timeout     time.Duration
	logger      *zap.Logger
}

// NewDispatcher creates a dispatcher. Call Run to start delivery.
func NewDispatcher(opts Options, logger *zap.Logger) *Dispatcher {
	opts.setDefaults()
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{
		notifiers:   make(map[string]Notifier),
		rateLimiter: NewRateLimiter(opts.RateLimit),
		queue:       make(chan *models.Alert, opts.QueueSize),
		minSeverity: opts.MinSeverity,
		timeout:     opts.SendTimeout,
		logger:      logger.With(zap.String("component", "notifier")),
	}
}

// Register adds a notifier to the dispatcher.
func (d *Dispatcher) Register(n Notifier) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.notifiers[n.Name()] = n
}

// Names returns the registered notifier names, sorted.
func (d *Dispatcher) Names() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	names := make([]string, 0, len(d.notifiers))
	for name := range d.notifiers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Enqueue schedules an alert for delivery without blocking.
// It returns false when the alert is below the minimum severity, no
// notifier is registered, or the queue is full.
func (d *Dispatcher) Enqueue(alert *models.Alert) bool {
	if alert == nil || alert.Severity.Rank() < d.minSeverity.Rank() {
		return false
	}
	d.mu.RLock()
	empty := len(d.notifiers) == 0
	d.mu.RUnlock()
	if empty {
		return false
	}

	select {
	case d.queue <- alert.Clone():
		metrics.NotificationQueueDepth.Set(float64(len(d.queue)))
		return true
	default:
		metrics.NotificationsTotal.WithLabelValues("queue", "dropped").Inc()
		d.logger.Warn("notification queue full, alert dropped", zap.String("alert_id", alert.ID))
		return false
	}
}

// Run delivers queued alerts until ctx is canceled.
func (d *Dispatcher) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case alert := <-d.queue:
			metrics.NotificationQueueDepth.Set(float64(len(d.queue)))
			sendCtx, cancel := context.WithTimeout(ctx, d.timeout)
			err := d.DispatchAll(sendCtx, alert)
			cancel()
			switch {
			case errors.Is(err, ErrRateLimited):
				d.logger.Warn("notification rate limited", zap.String("alert_id", alert.ID))
			case err != nil:
				d.logger.Error("notification failed", zap.String("alert_id", alert.ID), zap.Error(err))
			}
		}
	}
}

// DispatchAll sends an alert to all registered notifiers.
// Returns ErrRateLimited if the notification is dropped due to rate limiting.
// When every notifier fails the rate limit token is refunded.
func (d *Dispatcher) DispatchAll(ctx context.Context, alert *models.Alert) error {
	if d.rateLimiter != nil && !d.rateLimiter.Allow() {
		metrics.NotificationsTotal.WithLabelValues("all", "rate_limited").Inc()
		return ErrRateLimited
	}

	d.mu.RLock()
	defer d.mu.RUnlock()

	var errs []error
	for name, n := range d.notifiers {
		if err := n.Send(ctx, alert); err != nil {
			metrics.NotificationsTotal.WithLabelValues(name, "failed").Inc()
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
			continue
		}
		metrics.NotificationsTotal.WithLabelValues(name, "sent").Inc()
	}
	// Nothing was delivered, so the attempt does not count against the limit.
	if len(errs) > 0 && len(errs) == len(d.notifiers) && d.rateLimiter != nil {
		d.rateLimiter.Release()
	}
	return errors.Join(errs...)
}

// RateLimitStats returns the rate limiter statistics.
func (d *Dispatcher) RateLimitStats() RateLimitStats {
	if d.rateLimiter == nil {
		return RateLimitStats{}
	}
	return d.rateLimiter.Stats()
}

// Close closes all registered notifiers.
func (d *Dispatcher) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	var errs []error
	for name, n := range d.notifiers {
		if err := n.Close(); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
		}
	}
	d.notifiers = make(map[string]Notifier)
	return errors.Join(errs...)
}
