// Package access decides which roles may perform which actions.
//
// Every entry point that reads or mutates thresholds or alerts calls
// Guard.Authorize first. The decision comes from one static table.
package access

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/good-yellow-bee/netwatch/internal/metrics"
	"github.com/good-yellow-bee/netwatch/internal/models"
)

// ErrDenied is returned when a role may not perform an action.
var ErrDenied = errors.New("access denied")

// Action names an operation subject to authorization.
type Action string

const (
	ActionViewThresholds Action = "viewThresholds"
	ActionEditThreshold  Action = "editThreshold"
	ActionViewAlerts     Action = "viewAlerts"
	ActionResolveAlert   Action = "resolveAlert"
	ActionResolveAll     Action = "resolveAll"
)

// policy maps each action to the roles allowed to perform it.
// Anything not listed is denied.
var policy = map[Action][]models.Role{
	ActionViewThresholds: {models.RoleAdmin, models.RoleUser},
	ActionViewAlerts:     {models.RoleAdmin, models.RoleUser},
	ActionEditThreshold:  {models.RoleAdmin},
	ActionResolveAlert:   {models.RoleAdmin},
	ActionResolveAll:     {models.RoleAdmin},
}

// Allowed reports whether role may perform action.
func Allowed(role models.Role, action Action) bool {
	for _, r := range policy[action] {
		if r == role {
			return true
		}
	}
	return false
}

// Actions lists every known action.
func Actions() []Action {
	return []Action{
		ActionViewThresholds,
		ActionEditThreshold,
		ActionViewAlerts,
		ActionResolveAlert,
		ActionResolveAll,
	}
}

// Guard checks the policy table and records denials.
type Guard struct {
	logger *zap.Logger
}

// NewGuard creates a guard that logs denials to logger.
func NewGuard(logger *zap.Logger) *Guard {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Guard{logger: logger.With(zap.String("component", "access"))}
}

// Authorize returns nil if role may perform action, otherwise an error
// wrapping ErrDenied.
func (g *Guard) Authorize(role models.Role, action Action) error {
	if Allowed(role, action) {
		return nil
	}

	metrics.AccessDeniedTotal.WithLabelValues(string(action), string(role)).Inc()
	g.logger.Warn("authorization denied",
		zap.Bool("security_event", true),
		zap.String("role", string(role)),
		zap.String("action", string(action)),
	)
	return fmt.Errorf("%w: role %q may not %s", ErrDenied, role, action)
}
