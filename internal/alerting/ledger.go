package alerting

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/good-yellow-bee/netwatch/internal/models"
)

var (
	// ErrAlertNotFound is returned for an unknown alert id.
	ErrAlertNotFound = errors.New("alert not found")
	// ErrAlreadyResolved is returned when resolving an alert twice.
	ErrAlreadyResolved = errors.New("alert already resolved")
	// ErrInvalidSeverity is returned when raising with an unknown severity.
	ErrInvalidSeverity = errors.New("invalid severity")
)

// RaiseOption sets optional alert fields.
type RaiseOption func(*models.Alert)

// WithValue records the sample value that triggered the alert.
func WithValue(v float64) RaiseOption {
	return func(a *models.Alert) { a.Value = &v }
}

// WithThreshold records the breached threshold level.
func WithThreshold(level float64) RaiseOption {
	return func(a *models.Alert) { a.Threshold = &level }
}

type record struct {
	alert *models.Alert
	seq   uint64
}

// Ledger owns every alert raised in the process.
// All state transitions go through its methods. Readers get copies.
type Ledger struct {
	mu      sync.RWMutex
	records []*record
	byID    map[string]*record
	seq     uint64

	now   func() time.Time
	newID func() string
}

// LedgerOption configures a Ledger.
type LedgerOption func(*Ledger)

// WithClock replaces the ledger clock.
func WithClock(now func() time.Time) LedgerOption {
	return func(l *Ledger) { l.now = now }
}

// NewLedger creates an empty ledger.
func NewLedger(opts ...LedgerOption) *Ledger {
	l := &Ledger{
		byID:  make(map[string]*record),
		now:   time.Now,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Raise opens a new active alert. It never deduplicates.
func (l *Ledger) Raise(deviceID, metricType string, severity models.Severity, message string, opts ...RaiseOption) (*models.Alert, error) {
	if !severity.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidSeverity, severity)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	a := &models.Alert{
		ID:         l.newID(),
		DeviceID:   deviceID,
		MetricType: metricType,
		Severity:   severity,
		Message:    message,
		RaisedAt:   l.now(),
		Status:     models.StatusActive,
	}
	for _, opt := range opts {
		opt(a)
	}

	l.seq++
	rec := &record{alert: a, seq: l.seq}
	l.records = append(l.records, rec)
	l.byID[a.ID] = rec

	return a.Clone(), nil
}

// Resolve moves an active alert to resolved.
func (l *Ledger) Resolve(id string) (*models.Alert, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	rec, ok := l.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrAlertNotFound, id)
	}
	if !rec.alert.IsActive() {
		return rec.alert.Clone(), fmt.Errorf("%w: %s", ErrAlreadyResolved, id)
	}

	now := l.now()
	rec.alert.Status = models.StatusResolved
	rec.alert.ResolvedAt = &now
	return rec.alert.Clone(), nil
}

// ResolveAll resolves every active alert raised at or before a single
// timestamp taken under the ledger lock. It returns the number resolved.
func (l *Ledger) ResolveAll() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	ts := l.now()
	n := 0
	for _, rec := range l.records {
		if !rec.alert.IsActive() || rec.alert.RaisedAt.After(ts) {
			continue
		}
		resolvedAt := ts
		rec.alert.Status = models.StatusResolved
		rec.alert.ResolvedAt = &resolvedAt
		n++
	}
	return n
}

// Get returns a copy of one alert.
func (l *Ledger) Get(id string) (*models.Alert, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	rec, ok := l.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrAlertNotFound, id)
	}
	return rec.alert.Clone(), nil
}

// ListActive returns active alerts, most recent first.
func (l *Ledger) ListActive() []*models.Alert {
	return l.List(models.FilterActive)
}

// List returns alerts matching filter, most recent first.
// Alerts raised at the same instant are ordered by raise order, newest first.
func (l *Ledger) List(filter models.StatusFilter) []*models.Alert {
	l.mu.RLock()
	matched := make([]*record, 0, len(l.records))
	for _, rec := range l.records {
		if filter.Matches(rec.alert.Status) {
			matched = append(matched, &record{alert: rec.alert.Clone(), seq: rec.seq})
		}
	}
	l.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		if !a.alert.RaisedAt.Equal(b.alert.RaisedAt) {
			return a.alert.RaisedAt.After(b.alert.RaisedAt)
		}
		return a.seq > b.seq
	})

	result := make([]*models.Alert, len(matched))
	for i, rec := range matched {
		result[i] = rec.alert
	}
	return result
}

// CountsBySeverity counts active alerts per severity.
// Every severity is present, zero when there are none.
func (l *Ledger) CountsBySeverity() map[models.Severity]int {
	counts := make(map[models.Severity]int, len(models.Severities))
	for _, s := range models.Severities {
		counts[s] = 0
	}

	l.mu.RLock()
	defer l.mu.RUnlock()

	for _, rec := range l.records {
		if rec.alert.IsActive() {
			counts[rec.alert.Severity]++
		}
	}
	return counts
}

// HasActive reports whether an active alert exists for device and metric.
func (l *Ledger) HasActive(deviceID, metricType string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()

	for _, rec := range l.records {
		a := rec.alert
		if a.IsActive() && a.DeviceID == deviceID && a.MetricType == metricType {
			return true
		}
	}
	return false
}

// Len returns the total number of alerts held, in any state.
func (l *Ledger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.records)
}
