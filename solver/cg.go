// Package solver implements the distributed Krylov solvers the SIMPLE
// driver uses for the momentum and pressure-correction systems: classic
// conjugate gradient and, for the non-symmetric momentum operator, a
// BiCGStab fallback. Both share the same halo-exchange-then-MatVec
// pattern and the same all-reduced inner products, grounded in the
// teacher's rank-synchronized reporting idiom in Euler2D's RK stepper.
package solver

import (
	"math"

	"github.com/cfdsim/simplecfd/equation"
	"github.com/cfdsim/simplecfd/parallel"
)

// Result reports the outcome of one distributed solve.
type Result struct {
	Iterations int
	Residual   float64 // global L2 residual norm at termination
	Converged  bool
}

// CG runs unpreconditioned conjugate gradient on equ's local system,
// treating rank-boundary (mesh.Ghost) neighbors as live off-rank unknowns
// refreshed by comm.ExchangeColumns before every matrix-vector product,
// per spec.md §4.5. x is both the initial guess and the output; it is
// scattered into equ.Field (and so into the mesh field the caller passed
// to equation.New) on return.
//
// tol is the target global L2 residual norm; maxIter bounds the number of
// iterations regardless of convergence, matching spec.md's "tolerance is
// loose and iteration caps small" guidance for the non-symmetric momentum
// case.
func CG(equ *equation.Equation, x []float64, comm *parallel.Communicator, maxIter int, tol float64) Result {
	m := equ.Mesh
	n := m.InterNumber

	r := make([]float64, n)
	p := make([]float64, n)
	Ap := make([]float64, n)

	syncAndMatVec := func(vec, out []float64) {
		equ.ScatterToMesh(vec, equ.Field)
		comm.ExchangeColumns(equ.Field, m.Ny, m.Nx)
		equ.MatVec(vec, out)
	}

	syncAndMatVec(x, Ap)
	for k := 0; k < n; k++ {
		r[k] = equ.Source[k] - Ap[k]
		p[k] = r[k]
	}

	localRs := dot(r, r)
	if guardFinite(comm, localRs) {
		return Result{Residual: math.Sqrt(localRs)}
	}
	rsOld := comm.AllReduceSum(localRs)
	res := math.Sqrt(rsOld)
	if res <= tol {
		equ.ScatterToMesh(x, equ.Field)
		return Result{Residual: res, Converged: true}
	}

	iter := 0
	for ; iter < maxIter; iter++ {
		syncAndMatVec(p, Ap)
		pAp := comm.AllReduceSum(dot(p, Ap))
		if pAp == 0 {
			break
		}
		alpha := rsOld / pAp
		for k := 0; k < n; k++ {
			x[k] += alpha * p[k]
			r[k] -= alpha * Ap[k]
		}

		localRs = dot(r, r)
		if guardFinite(comm, localRs) {
			return Result{Iterations: iter + 1, Residual: math.Sqrt(localRs)}
		}
		rsNew := comm.AllReduceSum(localRs)
		res = math.Sqrt(rsNew)
		if res <= tol {
			iter++
			break
		}
		beta := rsNew / rsOld
		for k := 0; k < n; k++ {
			p[k] = r[k] + beta*p[k]
		}
		rsOld = rsNew
	}

	equ.ScatterToMesh(x, equ.Field)
	return Result{Iterations: iter, Residual: res, Converged: res <= tol}
}

func dot(a, b []float64) float64 {
	var s float64
	for k := range a {
		s += a[k] * b[k]
	}
	return s
}

// guardFinite checks a rank's local residual contribution for NaN/Inf
// before it enters a collective all-reduce and aborts the whole
// communicator if found (spec.md §7's NaN/Inf guard — added behavior,
// not present in the original design, because spec.md flags the absence
// of such a check as a gap to close).
func guardFinite(comm *parallel.Communicator, localRs float64) bool {
	if math.IsNaN(localRs) || math.IsInf(localRs, 0) {
		comm.Abort("solver: non-finite residual detected locally")
		return true
	}
	return false
}
