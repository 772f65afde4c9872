package alerting

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/good-yellow-bee/netwatch/internal/models"
)

// fakeClock is a manually advanced clock.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func mustRaise(t *testing.T, l *Ledger, device, metric string, sev models.Severity) *models.Alert {
	t.Helper()
	a, err := l.Raise(device, metric, sev, "test")
	if err != nil {
		t.Fatalf("Raise: %v", err)
	}
	return a
}

func assertCountsMatchActive(t *testing.T, l *Ledger) {
	t.Helper()
	counts := l.CountsBySeverity()
	sum := 0
	for _, n := range counts {
		sum += n
	}
	if active := len(l.ListActive()); sum != active {
		t.Errorf("sum(counts) = %d, len(active) = %d", sum, active)
	}
}

func TestLedgerRaise(t *testing.T) {
	clock := newFakeClock()
	l := NewLedger(WithClock(clock.Now))

	a, err := l.Raise("Core Router", "CPU Usage", models.SeverityCritical, "CPU high", WithValue(95), WithThreshold(90))
	if err != nil {
		t.Fatalf("Raise: %v", err)
	}

	if a.ID == "" {
		t.Error("expected id")
	}
	if a.Status != models.StatusActive {
		t.Errorf("status = %s, want active", a.Status)
	}
	if !a.RaisedAt.Equal(clock.Now()) {
		t.Errorf("raisedAt = %v, want %v", a.RaisedAt, clock.Now())
	}
	if a.ResolvedAt != nil {
		t.Error("resolvedAt should be unset")
	}
	if a.Value == nil || *a.Value != 95 || a.Threshold == nil || *a.Threshold != 90 {
		t.Errorf("value/threshold not recorded: %+v", a)
	}

	b := mustRaise(t, l, "Core Router", "CPU Usage", models.SeverityCritical)
	if b.ID == a.ID {
		t.Error("raise must not deduplicate")
	}
	if l.Len() != 2 {
		t.Errorf("Len = %d, want 2", l.Len())
	}
}

func TestLedgerRaiseInvalidSeverity(t *testing.T) {
	l := NewLedger()
	_, err := l.Raise("d", "m", "fatal", "x")
	if !errors.Is(err, ErrInvalidSeverity) {
		t.Errorf("err = %v, want ErrInvalidSeverity", err)
	}
	if l.Len() != 0 {
		t.Error("invalid raise changed state")
	}
}

func TestLedgerResolve(t *testing.T) {
	clock := newFakeClock()
	l := NewLedger(WithClock(clock.Now))
	a := mustRaise(t, l, "Switch-03", "Packet Loss", models.SeverityWarning)

	clock.Advance(time.Minute)
	resolved, err := l.Resolve(a.ID)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if resolved.Status != models.StatusResolved {
		t.Errorf("status = %s, want resolved", resolved.Status)
	}
	if resolved.ResolvedAt == nil || !resolved.ResolvedAt.Equal(clock.Now()) {
		t.Errorf("resolvedAt = %v, want %v", resolved.ResolvedAt, clock.Now())
	}

	firstResolvedAt := *resolved.ResolvedAt
	clock.Advance(time.Minute)
	_, err = l.Resolve(a.ID)
	if !errors.Is(err, ErrAlreadyResolved) {
		t.Errorf("second resolve err = %v, want ErrAlreadyResolved", err)
	}
	got, _ := l.Get(a.ID)
	if !got.ResolvedAt.Equal(firstResolvedAt) {
		t.Error("resolved alert was modified")
	}

	if _, err := l.Resolve("missing"); !errors.Is(err, ErrAlertNotFound) {
		t.Errorf("err = %v, want ErrAlertNotFound", err)
	}
}

func TestLedgerResolveAllIdempotent(t *testing.T) {
	clock := newFakeClock()
	l := NewLedger(WithClock(clock.Now))
	for i := 0; i < 3; i++ {
		mustRaise(t, l, "Router-01", "CPU Usage", models.SeverityWarning)
		clock.Advance(time.Second)
	}

	if n := l.ResolveAll(); n != 3 {
		t.Errorf("first ResolveAll = %d, want 3", n)
	}
	if n := l.ResolveAll(); n != 0 {
		t.Errorf("second ResolveAll = %d, want 0", n)
	}
	if active := l.ListActive(); len(active) != 0 {
		t.Errorf("active = %d, want 0", len(active))
	}

	var stamp *time.Time
	for _, a := range l.List(models.FilterResolved) {
		if stamp == nil {
			stamp = a.ResolvedAt
			continue
		}
		if !a.ResolvedAt.Equal(*stamp) {
			t.Error("resolveAll must use one timestamp")
		}
	}
}

func TestLedgerResolveAllSkipsFutureRaises(t *testing.T) {
	clock := newFakeClock()
	l := NewLedger(WithClock(clock.Now))

	// An alert stamped after the sweep instant must survive it.
	l.now = func() time.Time { return clock.Now().Add(time.Hour) }
	future := mustRaise(t, l, "Router-01", "CPU Usage", models.SeverityCritical)
	l.now = clock.Now
	mustRaise(t, l, "Router-02", "CPU Usage", models.SeverityCritical)

	if n := l.ResolveAll(); n != 1 {
		t.Errorf("ResolveAll = %d, want 1", n)
	}
	got, _ := l.Get(future.ID)
	if !got.IsActive() {
		t.Error("alert raised after the sweep timestamp was resolved")
	}
}

func TestLedgerListOrdering(t *testing.T) {
	clock := newFakeClock()
	l := NewLedger(WithClock(clock.Now))

	first := mustRaise(t, l, "a", "CPU Usage", models.SeverityWarning)
	second := mustRaise(t, l, "b", "CPU Usage", models.SeverityWarning) // same instant
	clock.Advance(time.Second)
	third := mustRaise(t, l, "c", "CPU Usage", models.SeverityCritical)

	want := []string{third.ID, second.ID, first.ID}
	got := l.ListActive()
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i, id := range want {
		if got[i].ID != id {
			t.Errorf("position %d = %s, want %s", i, got[i].ID, id)
		}
	}
}

func TestLedgerListFilter(t *testing.T) {
	l := NewLedger()
	a := mustRaise(t, l, "a", "CPU Usage", models.SeverityWarning)
	mustRaise(t, l, "b", "CPU Usage", models.SeverityWarning)
	if _, err := l.Resolve(a.ID); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		filter models.StatusFilter
		want   int
	}{
		{models.FilterActive, 1},
		{models.FilterResolved, 1},
		{models.FilterAll, 2},
	}
	for _, tt := range tests {
		t.Run(string(tt.filter), func(t *testing.T) {
			if got := len(l.List(tt.filter)); got != tt.want {
				t.Errorf("len = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestLedgerReturnsCopies(t *testing.T) {
	l := NewLedger()
	a := mustRaise(t, l, "a", "CPU Usage", models.SeverityWarning)

	a.Status = models.StatusResolved
	list := l.ListActive()
	if len(list) != 1 {
		t.Fatal("mutating a returned alert changed ledger state")
	}
	list[0].Severity = models.SeverityInfo
	got, _ := l.Get(a.ID)
	if got.Severity != models.SeverityWarning {
		t.Error("mutating a listed alert changed ledger state")
	}
}

func TestLedgerCountsBySeverity(t *testing.T) {
	l := NewLedger()

	counts := l.CountsBySeverity()
	for _, s := range models.Severities {
		if n, ok := counts[s]; !ok || n != 0 {
			t.Errorf("empty ledger counts[%s] = %d, %v", s, n, ok)
		}
	}

	mustRaise(t, l, "a", "CPU Usage", models.SeverityCritical)
	mustRaise(t, l, "b", "CPU Usage", models.SeverityCritical)
	w := mustRaise(t, l, "c", "Memory Usage", models.SeverityWarning)
	mustRaise(t, l, "d", "Memory Usage", models.SeverityError)
	assertCountsMatchActive(t, l)

	if _, err := l.Resolve(w.ID); err != nil {
		t.Fatal(err)
	}
	counts = l.CountsBySeverity()
	if counts[models.SeverityCritical] != 2 || counts[models.SeverityWarning] != 0 || counts[models.SeverityError] != 1 {
		t.Errorf("counts = %v", counts)
	}
	assertCountsMatchActive(t, l)

	l.ResolveAll()
	assertCountsMatchActive(t, l)
}

func TestLedgerHasActive(t *testing.T) {
	l := NewLedger()
	a := mustRaise(t, l, "Core Router", "CPU Usage", models.SeverityCritical)

	if !l.HasActive("Core Router", "CPU Usage") {
		t.Error("expected active alert")
	}
	if l.HasActive("Core Router", "Memory Usage") {
		t.Error("unexpected active alert for other metric")
	}
	if _, err := l.Resolve(a.ID); err != nil {
		t.Fatal(err)
	}
	if l.HasActive("Core Router", "CPU Usage") {
		t.Error("resolved alert counted as active")
	}
}

func TestLedgerCoreRouterScenario(t *testing.T) {
	src := testSource()
	clock := newFakeClock()
	l := NewLedger(WithClock(clock.Now))

	sample := models.MetricSample{MetricType: "CPU Usage", DeviceID: "Core Router", Value: 95}
	sev := Classify(sample, src)
	if sev != models.SeverityCritical {
		t.Fatalf("Classify = %s, want critical", sev)
	}

	a, err := l.Raise(sample.DeviceID, sample.MetricType, sev, "CPU Usage exceeded 90")
	if err != nil {
		t.Fatal(err)
	}
	if a.Severity != models.SeverityCritical || a.Status != models.StatusActive {
		t.Fatalf("alert = %+v", a)
	}

	clock.Advance(time.Minute)
	if n := l.ResolveAll(); n != 1 {
		t.Errorf("ResolveAll = %d, want 1", n)
	}

	got, _ := l.Get(a.ID)
	if got.Status != models.StatusResolved || got.ResolvedAt == nil {
		t.Errorf("alert not resolved: %+v", got)
	}
	if len(l.ListActive()) != 0 {
		t.Error("active list should be empty")
	}
}

func TestLedgerConcurrentRaiseAndResolveAll(t *testing.T) {
	l := NewLedger()

	var wg sync.WaitGroup
	var mu sync.Mutex
	resolved := 0
	for i := 0; i < 20; i++ {
		wg.Add(3)
		go func() {
			defer wg.Done()
			for j := 0; j < 10; j++ {
				l.Raise("dev", "CPU Usage", models.SeverityWarning, "x")
			}
		}()
		go func() {
			defer wg.Done()
			n := l.ResolveAll()
			mu.Lock()
			resolved += n
			mu.Unlock()
		}()
		go func() {
			defer wg.Done()
			counts := l.CountsBySeverity()
			for _, n := range counts {
				if n < 0 {
					t.Errorf("negative count %d", n)
				}
			}
		}()
	}
	wg.Wait()

	resolved += l.ResolveAll()
	if resolved != 200 {
		t.Errorf("resolved %d alerts in total, want 200", resolved)
	}
	assertCountsMatchActive(t, l)
}
