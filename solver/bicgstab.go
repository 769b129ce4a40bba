package solver

import (
	"math"

	"github.com/cfdsim/simplecfd/equation"
	"github.com/cfdsim/simplecfd/parallel"
)

// BiCGStab runs unpreconditioned stabilized biconjugate gradient on equ's
// local system. It is the alternative spec.md §9 names for the momentum
// systems, whose upwind discretization makes the coefficient matrix
// non-symmetric; config.Config.MomentumSolver selects between this and
// CG. Halo exchange and the all-reduced inner products follow the same
// pattern as CG.
func BiCGStab(equ *equation.Equation, x []float64, comm *parallel.Communicator, maxIter int, tol float64) Result {
	m := equ.Mesh
	n := m.InterNumber

	r := make([]float64, n)
	rHat := make([]float64, n)
	p := make([]float64, n)
	v := make([]float64, n)
	s := make([]float64, n)
	t := make([]float64, n)

	syncAndMatVec := func(vec, out []float64) {
		equ.ScatterToMesh(vec, equ.Field)
		comm.ExchangeColumns(equ.Field, m.Ny, m.Nx)
		equ.MatVec(vec, out)
	}

	syncAndMatVec(x, v) // v reused as scratch for A*x
	for k := 0; k < n; k++ {
		r[k] = equ.Source[k] - v[k]
		rHat[k] = r[k]
		p[k] = 0
		v[k] = 0
	}

	localRs := dot(r, r)
	if guardFinite(comm, localRs) {
		return Result{Residual: math.Sqrt(localRs)}
	}
	res := math.Sqrt(comm.AllReduceSum(localRs))
	if res <= tol {
		equ.ScatterToMesh(x, equ.Field)
		return Result{Residual: res, Converged: true}
	}

	rho, alpha, omega := 1.0, 1.0, 1.0
	iter := 0
	for ; iter < maxIter; iter++ {
		rhoNew := comm.AllReduceSum(dot(rHat, r))
		if rhoNew == 0 {
			break
		}
		if iter > 0 {
			beta := (rhoNew / rho) * (alpha / omega)
			for k := 0; k < n; k++ {
				p[k] = r[k] + beta*(p[k]-omega*v[k])
			}
		} else {
			copy(p, r)
		}
		rho = rhoNew

		syncAndMatVec(p, v)
		rHatV := comm.AllReduceSum(dot(rHat, v))
		if rHatV == 0 {
			break
		}
		alpha = rho / rHatV
		for k := 0; k < n; k++ {
			s[k] = r[k] - alpha*v[k]
		}

		localSs := dot(s, s)
		if guardFinite(comm, localSs) {
			return Result{Iterations: iter + 1, Residual: math.Sqrt(localSs)}
		}
		sNorm := math.Sqrt(comm.AllReduceSum(localSs))
		if sNorm <= tol {
			for k := 0; k < n; k++ {
				x[k] += alpha * p[k]
			}
			res = sNorm
			iter++
			break
		}

		syncAndMatVec(s, t)
		tt := comm.AllReduceSum(dot(t, t))
		ts := comm.AllReduceSum(dot(t, s))
		if tt == 0 {
			break
		}
		omega = ts / tt
		for k := 0; k < n; k++ {
			x[k] += alpha*p[k] + omega*s[k]
			r[k] = s[k] - omega*t[k]
		}

		localRs = dot(r, r)
		if guardFinite(comm, localRs) {
			return Result{Iterations: iter + 1, Residual: math.Sqrt(localRs)}
		}
		res = math.Sqrt(comm.AllReduceSum(localRs))
		if res <= tol {
			iter++
			break
		}
		if omega == 0 {
			break
		}
	}

	equ.ScatterToMesh(x, equ.Field)
	return Result{Iterations: iter, Residual: res, Converged: res <= tol}
}
