// Package config builds the single immutable configuration record the
// SIMPLE driver (package simple) is threaded through, resolving Design
// Note 1 ("global mutable scalars ... restate as an immutable
// configuration record built once at initialization, broadcast to every
// process"). Loading binds CLI flags and environment variables together
// with github.com/spf13/viper, the way the teacher repository carries
// viper in its dependency stack without ever exercising it — here it
// actually does the binding work. No configuration file is read.
package config

import (
	"fmt"
	"math"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/cfdsim/simplecfd/parallel"
)

// TimeSteppingMode resolves Design Note 4 ("duplicate drivers"): one
// simple.Solver parameterized by this mode rather than two near-identical
// programs.
type TimeSteppingMode int

const (
	Steady TimeSteppingMode = iota
	Unsteady
)

func (m TimeSteppingMode) String() string {
	if m == Unsteady {
		return "unsteady"
	}
	return "steady"
}

// MomentumSolverKind selects between the two Krylov iterators package
// solver offers for the non-symmetric momentum systems (spec.md §9 open
// question, Design Note 6).
type MomentumSolverKind int

const (
	CG MomentumSolverKind = iota
	BiCGStab
)

// Config is the immutable, process-wide record built once by Load and
// passed by pointer into simple.Solver, which hands each discretize/solver
// call the scalars it needs. Never package-level mutable state (Design
// Note 1).
type Config struct {
	Dx, Dy float64 // uniform cell spacing
	A, B   float64 // domain extents (x, y)
	Mu     float64 // dynamic viscosity
	Dt     float64

	AlphaUV          float64 // momentum under-relaxation
	AlphaP0, AlphaP1 float64 // pressure under-relaxation, before/after the switch
	AlphaPSwitchIter int     // outer-iteration count at which AlphaP0 -> AlphaP1

	TolU, TolV, TolP float64 // SIMPLE local-convergence thresholds (spec.md §4.7 step 9)

	CGTol             float64
	CGMaxIterMomentum int
	CGMaxIterPressure int
	MomentumSolver    MomentumSolverKind

	MaxOuterIterations int
	NSplits            int
	MeshFolder         string
	Timesteps          int
	Mode               TimeSteppingMode
	OutputEvery        int

	// FailOnMissingField resolves the Open Question "error-swallowing I/O":
	// when true, the run command aborts the communicator on a missing
	// initial field (iofields.LoadField reporting ok=false) instead of the
	// original zero-init-and-log behavior. Default false to preserve that
	// behavior (see DESIGN.md).
	FailOnMissingField bool
}

// Defaults matching spec.md §4.7's relaxation schedule.
func Defaults() Config {
	return Config{
		AlphaUV: 0.3, AlphaP0: 0.05, AlphaP1: 0.15, AlphaPSwitchIter: 15,
		TolU: 1e-1, TolV: 1e-1, TolP: 1e-3,
		CGTol: 1e-5, CGMaxIterMomentum: 20, CGMaxIterPressure: 200,
		MomentumSolver:     CG,
		MaxOuterIterations: 200,
		NSplits:            1,
		Mode:               Steady,
		OutputEvery:        1,
		FailOnMissingField: false,
	}
}

// unsteadyDefaults overrides the relaxation schedule per spec.md §4.7
// ("0.7 in the unsteady variant ... 0.5 in the unsteady variant").
func unsteadyDefaults(c *Config) {
	c.AlphaUV = 0.7
	c.AlphaP0 = 0.5
	c.AlphaP1 = 0.5
}

// Load binds spec.md §6's six positional CLI arguments
// (mesh_folder, dt, timesteps, mu, n_splits, plus the unsteady/steady
// mode flag) through cobra's flag set via viper, falling back to
// environment variables SIMPLECFD_*, then to the compiled-in Defaults.
// The caller (package cmd) prompts on stdin, before calling Load, for any
// of the five positional arguments still at its zero value on the flag
// set, per spec.md §6.
func Load(flags *pflag.FlagSet) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("SIMPLECFD")
	v.AutomaticEnv()
	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return Config{}, fmt.Errorf("config: bind flags: %w", err)
		}
	}

	cfg := Defaults()
	if v.IsSet("mesh-folder") {
		cfg.MeshFolder = v.GetString("mesh-folder")
	}
	if v.IsSet("dt") {
		cfg.Dt = v.GetFloat64("dt")
	}
	if v.IsSet("timesteps") {
		cfg.Timesteps = v.GetInt("timesteps")
	}
	if v.IsSet("mu") {
		cfg.Mu = v.GetFloat64("mu")
	}
	if v.IsSet("n-splits") {
		cfg.NSplits = v.GetInt("n-splits")
	}
	if v.IsSet("unsteady") && v.GetBool("unsteady") {
		cfg.Mode = Unsteady
		unsteadyDefaults(&cfg)
	}
	if v.IsSet("dx") {
		cfg.Dx = v.GetFloat64("dx")
	}
	if v.IsSet("dy") {
		cfg.Dy = v.GetFloat64("dy")
	}
	if v.IsSet("output-every") {
		cfg.OutputEvery = v.GetInt("output-every")
	}
	if v.IsSet("fail-on-missing-field") {
		cfg.FailOnMissingField = v.GetBool("fail-on-missing-field")
	}
	if v.IsSet("solver") {
		switch v.GetString("solver") {
		case "cg":
			cfg.MomentumSolver = CG
		case "bicgstab":
			cfg.MomentumSolver = BiCGStab
		default:
			return Config{}, fmt.Errorf("config: unknown momentum solver %q (want cg or bicgstab)", v.GetString("solver"))
		}
	}
	return cfg, nil
}

// VerifyConsistent checks that every rank agrees on the scalars and mesh
// folder that must be identical across the whole run, per spec.md §5's
// "Configuration consistency" paragraph: MAX/MIN all-reduces over
// numerics, and the same MAX/MIN compare over a hash of the mesh folder
// string (see hashString). Any mismatch aborts the whole communicator
// before the iteration begins.
func (c Config) VerifyConsistent(comm *parallel.Communicator) error {
	check := func(name string, local float64) error {
		maxV := comm.AllReduceMax(local)
		minV := comm.AllReduceMin(local)
		if math.Abs(maxV-minV) > 1e-12*math.Max(1, math.Abs(maxV)) {
			comm.Abort(fmt.Sprintf("config: %s mismatch across ranks (min=%v max=%v)", name, minV, maxV))
			return fmt.Errorf("config: %s mismatch across ranks (min=%v max=%v)", name, minV, maxV)
		}
		return nil
	}
	for _, f := range []struct {
		name string
		val  float64
	}{
		{"dx", c.Dx}, {"dy", c.Dy}, {"dt", c.Dt}, {"mu", c.Mu},
		{"timesteps", float64(c.Timesteps)}, {"n_splits", float64(c.NSplits)},
	} {
		if err := check(f.name, f.val); err != nil {
			return err
		}
	}
	if comm.Size() != c.NSplits {
		comm.Abort(fmt.Sprintf("config: process count %d does not match n_splits %d", comm.Size(), c.NSplits))
		return fmt.Errorf("config: process count %d does not match n_splits %d", comm.Size(), c.NSplits)
	}

	folderHash := hashString(c.MeshFolder)
	maxHash := comm.AllReduceMax(folderHash)
	minHash := comm.AllReduceMin(folderHash)
	if maxHash != minHash {
		comm.Abort("config: mesh_folder differs across ranks")
		return fmt.Errorf("config: mesh_folder differs across ranks")
	}
	return nil
}

// hashString maps a string to a float64 cheaply enough to run through the
// same MAX/MIN all-reduce primitives used for numeric consistency,
// standing in for the all-gather-compare spec.md §5 calls for.
func hashString(s string) float64 {
	var h uint64 = 1469598103934665603
	for i := 0; i < len(s); i++ {
		h ^= uint64(s[i])
		h *= 1099511628211
	}
	return float64(h % (1 << 53))
}
