package health

import (
	"context"
	"errors"
)

// ThresholdCounter reports how many metric types are configured.
type ThresholdCounter interface {
	ThresholdCount() int
}

// ThresholdsChecker reports not ready until at least one threshold is configured.
type ThresholdsChecker struct {
	counter ThresholdCounter
}

// NewThresholdsChecker creates a threshold configuration checker.
func NewThresholdsChecker(c ThresholdCounter) *ThresholdsChecker {
	return &ThresholdsChecker{counter: c}
}

// Name returns the checker name.
func (c *ThresholdsChecker) Name() string {
	return "thresholds"
}

// Check fails when no thresholds are loaded.
func (c *ThresholdsChecker) Check(ctx context.Context) error {
	if c.counter == nil {
		return errors.New("threshold store not initialized")
	}
	if c.counter.ThresholdCount() == 0 {
		return errors.New("no thresholds configured")
	}
	return nil
}

// FuncChecker adapts a function to the Checker interface.
type FuncChecker struct {
	name  string
	check func(ctx context.Context) error
}

// NewFuncChecker creates a checker named name that runs check.
func NewFuncChecker(name string, check func(ctx context.Context) error) *FuncChecker {
	return &FuncChecker{name: name, check: check}
}

// Name returns the checker name.
func (c *FuncChecker) Name() string {
	return c.name
}

// Check runs the wrapped function.
func (c *FuncChecker) Check(ctx context.Context) error {
	if c.check == nil {
		return errors.New(c.name + " not configured")
	}
	return c.check(ctx)
}
