package mcts

import (
	"github.com/hashicorp/go-multierror"

	"github.com/takmcts/engine/pkg/errs"
)

// Settings holds every tunable recognised by the search core. It
// exposes a fluent builder whose fields can also be overridden
// positionally by an SPSA tuner via SearchParams.
type Settings struct {
	CPuct              float32
	FPUReduction       float32
	DirichletAlpha     float32
	DirichletEnabled   bool
	DirichletEps       float32
	RolloutDepth       int
	RolloutTemperature float32
	MemoryBudgetBytes  int64
	TTSizeBuckets      int
	YieldEvery         int // 0 = never yield
}

// DefaultSettings returns conservative defaults: c_puct=1.4, no
// Dirichlet noise, no rollouts.
func DefaultSettings() Settings {
	return Settings{
		CPuct:              1.4,
		FPUReduction:       0.0,
		DirichletAlpha:     0.3,
		DirichletEnabled:   false,
		DirichletEps:       0.25,
		RolloutDepth:       0,
		RolloutTemperature: 1.0,
		MemoryBudgetBytes:  64 << 20,
		TTSizeBuckets:      1 << 16,
	}
}

// WithCPuct, WithFPUReduction, ... are fluent builder methods for
// overriding one field of DefaultSettings at a time.
func (s Settings) WithCPuct(v float32) Settings             { s.CPuct = v; return s }
func (s Settings) WithFPUReduction(v float32) Settings       { s.FPUReduction = v; return s }
func (s Settings) WithDirichlet(alpha, eps float32) Settings {
	s.DirichletEnabled = true
	s.DirichletAlpha = alpha
	s.DirichletEps = eps
	return s
}
func (s Settings) WithoutDirichlet() Settings { s.DirichletEnabled = false; return s }
func (s Settings) WithRollout(depth int, temperature float32) Settings {
	s.RolloutDepth = depth
	s.RolloutTemperature = temperature
	return s
}
func (s Settings) WithMemoryBudgetBytes(v int64) Settings { s.MemoryBudgetBytes = v; return s }
func (s Settings) WithTTSizeBuckets(v int) Settings       { s.TTSizeBuckets = v; return s }
func (s Settings) WithYieldEvery(v int) Settings          { s.YieldEvery = v; return s }

// SearchParams overrides CPuct, FPUReduction, DirichletAlpha,
// DirichletEps, RolloutDepth (truncated to int), and RolloutTemperature
// in that declaration order, for a tuner driving the search purely by a
// flat parameter vector.
func (s Settings) SearchParams(params []float32) Settings {
	set := func(i int, dst *float32) {
		if i < len(params) {
			*dst = params[i]
		}
	}
	set(0, &s.CPuct)
	set(1, &s.FPUReduction)
	set(2, &s.DirichletAlpha)
	set(3, &s.DirichletEps)
	if len(params) > 4 {
		s.RolloutDepth = int(params[4])
	}
	set(5, &s.RolloutTemperature)
	return s
}

// Validate reports every configuration problem at once, aggregated with
// go-multierror so a caller fixing a config sees every violation in one
// pass rather than stopping at the first.
func (s Settings) Validate() error {
	var result *multierror.Error
	if s.CPuct <= 0 {
		result = multierror.Append(result, errs.InvalidConfiguration("c_puct must be > 0"))
	}
	if s.DirichletEnabled {
		if s.DirichletAlpha <= 0 {
			result = multierror.Append(result, errs.InvalidConfiguration("dirichlet_alpha must be > 0 when enabled"))
		}
		if s.DirichletEps < 0 || s.DirichletEps > 1 {
			result = multierror.Append(result, errs.InvalidConfiguration("dirichlet_eps must be in [0, 1]"))
		}
	}
	if s.RolloutDepth < 0 {
		result = multierror.Append(result, errs.InvalidConfiguration("rollout_depth must be >= 0"))
	}
	if s.RolloutDepth > 0 && s.RolloutTemperature <= 0 {
		result = multierror.Append(result, errs.InvalidConfiguration("rollout_temperature must be > 0 when rollout_depth > 0"))
	}
	// Slot 0 is the arena's null sentinel, so one node needs two slots.
	if s.MemoryBudgetBytes < 2*int64(slotSize) {
		result = multierror.Append(result, errs.InvalidConfiguration("memory_budget_bytes must hold at least one node"))
	}
	if s.TTSizeBuckets < 0 {
		result = multierror.Append(result, errs.InvalidConfiguration("tt_size_buckets must be >= 0"))
	}
	if result == nil {
		return nil
	}
	return result.ErrorOrNil()
}
