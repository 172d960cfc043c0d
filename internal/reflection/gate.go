package reflection

import (
	"context"
	"time"
)

// ShouldReflect reports whether a reflection pass is due: true when there is
// no prior reflection, or force is set, or both the interval has elapsed and
// the signal count since the last reflection exceeds the threshold.
func (o *Orchestrator) ShouldReflect(opts Options) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.shouldReflectLocked(opts)
}

func (o *Orchestrator) shouldReflectLocked(opts Options) bool {
	if opts.Force {
		return true
	}
	if o.lastReflectionAt.IsZero() {
		return true
	}
	elapsed := time.Since(o.lastReflectionAt).Milliseconds()
	if elapsed < opts.IntervalMS {
		return false
	}
	if o.SignalCounter == nil {
		return true
	}
	current := o.SignalCounter.SignalCount(o.AgentID)
	return current-o.signalBaseline > opts.Threshold
}

// MaybeReflect runs DeepReflect only if ShouldReflect(opts) is true.
func (o *Orchestrator) MaybeReflect(ctx context.Context, opts Options) (Result, bool, error) {
	if !o.ShouldReflect(opts) {
		return Result{}, false, nil
	}
	res, err := o.DeepReflect(ctx, opts)
	return res, true, err
}

// PeriodicReflection is an alias for MaybeReflect, named to match the
// periodic-scheduler call site distinct from an explicit maybe-reflect check.
func (o *Orchestrator) PeriodicReflection(ctx context.Context, opts Options) (Result, bool, error) {
	return o.MaybeReflect(ctx, opts)
}
