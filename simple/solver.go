// Package simple implements the SIMPLE outer-iteration driver: one
// Solver per rank, parameterized by a config.Config and a
// RelaxationPolicy (Design Note 4), running the per-timestep loop spec.md
// §4.7 defines. Reporting follows the teacher's Euler2D.PrintInitialization
// /PrintUpdate/PrintFinal table-style idiom.
package simple

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/cfdsim/simplecfd/config"
	"github.com/cfdsim/simplecfd/discretize"
	"github.com/cfdsim/simplecfd/equation"
	"github.com/cfdsim/simplecfd/iofields"
	"github.com/cfdsim/simplecfd/mesh"
	"github.com/cfdsim/simplecfd/parallel"
	"github.com/cfdsim/simplecfd/solver"
)

// Solver drives one rank's subdomain through the SIMPLE algorithm for
// the configured number of time steps.
type Solver struct {
	Mesh  *mesh.Mesh
	Cfg   *config.Config
	Comm  *parallel.Communicator
	Geom  discretize.Geometry
	Relax RelaxationPolicy

	EquU, EquV, EquP *equation.Equation

	// PinRow is the dense interior index of the reference pressure cell;
	// only meaningful (and only applied) on rank 0, per spec.md §4.3
	// "rank 0 typically holds the reference cell".
	PinRow int

	// OutputDir, if non-empty, receives per-timestep field dumps every
	// Cfg.OutputEvery steps (spec.md §6).
	OutputDir string
}

// New builds a Solver over m, wiring fresh Equations for u, v and p'.
func New(m *mesh.Mesh, cfg *config.Config, comm *parallel.Communicator, geom discretize.Geometry, pinRow int) *Solver {
	return &Solver{
		Mesh:  m,
		Cfg:   cfg,
		Comm:  comm,
		Geom:  geom,
		Relax: NewRelaxationPolicy(cfg),
		EquU:  equation.New(m, m.U),
		EquV:  equation.New(m, m.V),
		EquP:  equation.New(m, m.PPrime),
		PinRow: pinRow,
	}
}

// Run executes Cfg.Timesteps time steps, each driving the SIMPLE outer
// iteration until every rank has converged locally (global convergence)
// or Cfg.MaxOuterIterations is reached, whichever comes first.
func (s *Solver) Run() error {
	s.printInitialization()
	start := time.Now()
	totalOuter := 0
	for step := 0; step < s.Cfg.Timesteps; step++ {
		outer, err := s.timeStep(step)
		if err != nil {
			return err
		}
		totalOuter += outer
		if s.OutputDir != "" && s.Cfg.OutputEvery > 0 && (step+1)%s.Cfg.OutputEvery == 0 {
			if err := s.persist(step); err != nil {
				fmt.Printf("rank %d: output write failed at step %d: %v\n", s.Comm.Rank(), step, err)
			}
		}
	}
	s.printFinal(time.Since(start), totalOuter)
	return nil
}

// timeStep runs one time step's SIMPLE outer-iteration loop per spec.md
// §4.7, returning the number of outer iterations actually taken.
func (s *Solver) timeStep(stepIdx int) (int, error) {
	m := s.Mesh
	var res0U, res0V, res0P float64
	alphaUV := s.Relax.AlphaUV()

	n := 1
	for ; n <= s.Cfg.MaxOuterIterations; n++ {
		m.ZeroIterate()
		discretize.ApplyBoundaryVelocities(m)
		s.EquU.Reset()
		s.EquV.Reset()

		discretize.Momentum(m, s.EquU, s.EquV, s.Geom, s.Cfg.Mu, s.Cfg.Dt, alphaUV)
		s.EquU.BuildMatrix()
		s.EquV.BuildMatrix()

		xU := make([]float64, m.InterNumber)
		xV := make([]float64, m.InterNumber)
		s.EquU.GatherFromMesh(m.U, xU)
		s.EquV.GatherFromMesh(m.V, xV)

		resU, resV, err := s.solveMomentum(xU, xV)
		if err != nil {
			return n, err
		}

		s.Comm.ExchangeColumns(m.U, m.Ny, m.Nx)
		s.Comm.ExchangeColumns(m.V, m.Ny, m.Nx)
		s.Comm.ExchangeColumns(s.EquU.Ap, m.Ny, m.Nx)
		s.Comm.ExchangeColumns(s.EquV.Ap, m.Ny, m.Nx)

		discretize.FaceVelocity(m, s.EquU, s.Geom, discretize.East)
		discretize.FaceVelocity(m, s.EquV, s.Geom, discretize.North)
		s.Comm.ExchangeColumns(m.UFace, m.Ny, m.Nx)
		s.Comm.ExchangeColumns(m.VFace, m.Ny, m.Nx)

		s.EquP.Reset()
		discretize.PressureCorrection(m, s.EquP, s.EquU, s.Geom)
		s.EquP.BuildMatrix()
		if s.Comm.Rank() == 0 {
			s.EquP.PinRow(s.PinRow, 1e30)
		}
		xP := make([]float64, m.InterNumber)
		resP := solver.CG(s.EquP, xP, s.Comm, s.Cfg.CGMaxIterPressure, s.Cfg.CGTol)
		s.Comm.ExchangeColumns(m.PPrime, m.Ny, m.Nx)

		discretize.CorrectPressure(m, s.Relax.AlphaP(n))
		discretize.CorrectVelocity(m, s.EquU, s.EquV, s.Geom)
		copy(m.P, m.PStar)
		s.Comm.ExchangeColumns(m.P, m.Ny, m.Nx)

		if n == 1 {
			res0U, res0V, res0P = nonZero(resU.Residual), nonZero(resV.Residual), nonZero(resP.Residual)
		}
		normU := resU.Residual / res0U
		normV := resV.Residual / res0V
		normP := resP.Residual / res0P

		local := 0.0
		if normU < s.Cfg.TolU && normV < s.Cfg.TolV && normP < s.Cfg.TolP {
			local = 1.0
		}
		global := s.Comm.AllReduceMin(local)

		s.printUpdate(stepIdx, n, normU, normV, normP)
		if global > 0 {
			break
		}
	}

	copy(m.U0, m.UStar)
	copy(m.V0, m.VStar)
	if n > s.Cfg.MaxOuterIterations {
		n = s.Cfg.MaxOuterIterations
		fmt.Printf("rank %d: step %d did not reach global convergence within %d outer iterations\n",
			s.Comm.Rank(), stepIdx, s.Cfg.MaxOuterIterations)
	}
	return n, nil
}

func (s *Solver) solveMomentum(xU, xV []float64) (solver.Result, solver.Result, error) {
	switch s.Cfg.MomentumSolver {
	case config.BiCGStab:
		resU := solver.BiCGStab(s.EquU, xU, s.Comm, s.Cfg.CGMaxIterMomentum, s.Cfg.CGTol)
		resV := solver.BiCGStab(s.EquV, xV, s.Comm, s.Cfg.CGMaxIterMomentum, s.Cfg.CGTol)
		return resU, resV, nil
	default:
		resU := solver.CG(s.EquU, xU, s.Comm, s.Cfg.CGMaxIterMomentum, s.Cfg.CGTol)
		resV := solver.CG(s.EquV, xV, s.Comm, s.Cfg.CGMaxIterMomentum, s.Cfg.CGTol)
		return resU, resV, nil
	}
}

func ensureDir(dir string) error {
	return os.MkdirAll(dir, 0o755)
}

func nonZero(v float64) float64 {
	if v == 0 {
		return 1
	}
	return v
}

func (s *Solver) persist(stepIdx int) error {
	dir := filepath.Join(s.OutputDir, fmt.Sprintf("step_%06d", stepIdx))
	if err := ensureDir(dir); err != nil {
		return err
	}
	m := s.Mesh
	r := s.Comm.Rank()
	fields := []struct {
		name string
		data []float64
	}{
		{"u", m.U}, {"v", m.V}, {"p", m.P},
	}
	for _, f := range fields {
		path := filepath.Join(dir, fmt.Sprintf("%s_%d.dat", f.name, r))
		if err := iofields.WriteMatrix(path, f.data, m.Ny, m.Nx); err != nil {
			return err
		}
	}
	return nil
}

func (s *Solver) printInitialization() {
	if s.Comm.Rank() != 0 {
		return
	}
	fmt.Printf("SIMPLE solver: mode=%s n_splits=%d timesteps=%d dt=%.5f mu=%.5f\n",
		s.Cfg.Mode, s.Cfg.NSplits, s.Cfg.Timesteps, s.Cfg.Dt, s.Cfg.Mu)
	fmt.Printf("    step   outer     res_u      res_v      res_p\n")
}

func (s *Solver) printUpdate(step, outer int, normU, normV, normP float64) {
	if s.Comm.Rank() != 0 {
		return
	}
	fmt.Printf("%8d%8d%11.4e%11.4e%11.4e\n", step, outer, normU, normV, normP)
}

func (s *Solver) printFinal(elapsed time.Duration, totalOuter int) {
	if s.Comm.Rank() != 0 {
		return
	}
	fmt.Printf("\nfinished %d time steps (%d outer iterations total) in %s\n",
		s.Cfg.Timesteps, totalOuter, elapsed)
}
