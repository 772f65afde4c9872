package alerting

import (
	"sync"
	"time"
)

// CooldownManager tracks per device+metric raise suppression windows.
// Each key carries an absolute expiry.
type CooldownManager struct {
	mu        sync.RWMutex
	cooldowns map[string]time.Time
}

// NewCooldownManager creates a new cooldown manager.
func NewCooldownManager() *CooldownManager {
	return &CooldownManager{
		cooldowns: make(map[string]time.Time),
	}
}

func cooldownKey(deviceID, metricType string) string {
	return deviceID + "\x00" + metricType
}

// IsOnCooldown checks if raises for device and metric are suppressed at now.
func (cm *CooldownManager) IsOnCooldown(deviceID, metricType string, now time.Time) bool {
	cm.mu.RLock()
	defer cm.mu.RUnlock()

	expiresAt, ok := cm.cooldowns[cooldownKey(deviceID, metricType)]
	if !ok {
		return false
	}
	return now.Before(expiresAt)
}

// SetCooldown suppresses raises for device and metric until now+duration.
func (cm *CooldownManager) SetCooldown(deviceID, metricType string, duration time.Duration, now time.Time) {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	cm.cooldowns[cooldownKey(deviceID, metricType)] = now.Add(duration)
}

// Remaining returns the time left on a cooldown, or zero.
func (cm *CooldownManager) Remaining(deviceID, metricType string, now time.Time) time.Duration {
	cm.mu.RLock()
	defer cm.mu.RUnlock()

	expiresAt, ok := cm.cooldowns[cooldownKey(deviceID, metricType)]
	if !ok {
		return 0
	}
	remaining := expiresAt.Sub(now)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// Prune drops expired entries.
func (cm *CooldownManager) Prune(now time.Time) int {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	n := 0
	for key, expiresAt := range cm.cooldowns {
		if !now.Before(expiresAt) {
			delete(cm.cooldowns, key)
			n++
		}
	}
	return n
}

// ClearAll removes all cooldowns.
func (cm *CooldownManager) ClearAll() {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	cm.cooldowns = make(map[string]time.Time)
}
