package access

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/good-yellow-bee/netwatch/internal/metrics"
	"github.com/good-yellow-bee/netwatch/internal/models"
)

func TestAllowed(t *testing.T) {
	tests := []struct {
		role   models.Role
		action Action
		want   bool
	}{
		{models.RoleAdmin, ActionViewThresholds, true},
		{models.RoleAdmin, ActionEditThreshold, true},
		{models.RoleAdmin, ActionViewAlerts, true},
		{models.RoleAdmin, ActionResolveAlert, true},
		{models.RoleAdmin, ActionResolveAll, true},
		{models.RoleUser, ActionViewThresholds, true},
		{models.RoleUser, ActionViewAlerts, true},
		{models.RoleUser, ActionEditThreshold, false},
		{models.RoleUser, ActionResolveAlert, false},
		{models.RoleUser, ActionResolveAll, false},
		{"", ActionViewAlerts, false},
		{"operator", ActionViewAlerts, false},
		{models.RoleAdmin, "deleteEverything", false},
	}

	for _, tt := range tests {
		t.Run(string(tt.role)+"/"+string(tt.action), func(t *testing.T) {
			if got := Allowed(tt.role, tt.action); got != tt.want {
				t.Errorf("Allowed(%q, %q) = %v, want %v", tt.role, tt.action, got, tt.want)
			}
		})
	}
}

func TestEveryActionHasPolicy(t *testing.T) {
	for _, action := range Actions() {
		if _, ok := policy[action]; !ok {
			t.Errorf("action %q has no policy entry", action)
		}
		if !Allowed(models.RoleAdmin, action) {
			t.Errorf("admin denied %q", action)
		}
	}
}

func TestAuthorizeDeniedLogsSecurityEvent(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	g := NewGuard(zap.New(core))

	before := testutil.ToFloat64(metrics.AccessDeniedTotal.WithLabelValues(string(ActionResolveAlert), string(models.RoleUser)))

	err := g.Authorize(models.RoleUser, ActionResolveAlert)
	if !errors.Is(err, ErrDenied) {
		t.Fatalf("err = %v, want ErrDenied", err)
	}

	entries := logs.FilterField(zap.Bool("security_event", true)).All()
	if len(entries) != 1 {
		t.Fatalf("security log entries = %d, want 1", len(entries))
	}
	ctx := entries[0].ContextMap()
	if ctx["action"] != string(ActionResolveAlert) || ctx["role"] != string(models.RoleUser) {
		t.Errorf("log context = %v", ctx)
	}

	after := testutil.ToFloat64(metrics.AccessDeniedTotal.WithLabelValues(string(ActionResolveAlert), string(models.RoleUser)))
	if after-before != 1 {
		t.Errorf("denied counter delta = %v, want 1", after-before)
	}
}

func TestAuthorizeAllowedIsSilent(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	g := NewGuard(zap.New(core))

	if err := g.Authorize(models.RoleAdmin, ActionResolveAll); err != nil {
		t.Fatalf("Authorize: %v", err)
	}
	if logs.Len() != 0 {
		t.Errorf("allowed call logged %d entries", logs.Len())
	}
}
