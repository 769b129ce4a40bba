package simple

import "github.com/cfdsim/simplecfd/config"

// RelaxationPolicy resolves Design Note 4 ("duplicate drivers"): one
// Solver parameterized by a time-stepping mode and a relaxation policy
// object, rather than two near-identical steady/unsteady programs.
type RelaxationPolicy interface {
	AlphaUV() float64
	AlphaP(outerIter int) float64
}

// SteadyRelaxation implements spec.md §4.7's steady-state schedule:
// alpha_p = 0.05 for the first AlphaPSwitchIter outer iterations, 0.15
// after.
type SteadyRelaxation struct {
	Cfg *config.Config
}

func (p SteadyRelaxation) AlphaUV() float64 { return p.Cfg.AlphaUV }

func (p SteadyRelaxation) AlphaP(outerIter int) float64 {
	if outerIter > p.Cfg.AlphaPSwitchIter {
		return p.Cfg.AlphaP1
	}
	return p.Cfg.AlphaP0
}

// UnsteadyRelaxation implements spec.md §4.7's unsteady schedule: a
// single constant alpha_p (0.5) for the whole run.
type UnsteadyRelaxation struct {
	Cfg *config.Config
}

func (p UnsteadyRelaxation) AlphaUV() float64          { return p.Cfg.AlphaUV }
func (p UnsteadyRelaxation) AlphaP(outerIter int) float64 { return p.Cfg.AlphaP0 }

// NewRelaxationPolicy picks the policy matching cfg.Mode.
func NewRelaxationPolicy(cfg *config.Config) RelaxationPolicy {
	if cfg.Mode == config.Unsteady {
		return UnsteadyRelaxation{Cfg: cfg}
	}
	return SteadyRelaxation{Cfg: cfg}
}
