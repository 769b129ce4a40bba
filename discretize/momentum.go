// Package discretize holds the free-function stencil operators that turn a
// Mesh's current iterate into Equation coefficients: momentum, Rhie-Chow
// face velocity, pressure correction, and the velocity/pressure correctors.
// None of these hold state of their own; they read and write *mesh.Mesh and
// *equation.Equation fields directly, mirroring the teacher repository's
// free-function operators over sharded matrix state (Euler2D.RHS,
// Euler2D.PrepareEdgeFlux) rather than bundling behavior onto Mesh methods.
package discretize

import (
	"github.com/cfdsim/simplecfd/equation"
	"github.com/cfdsim/simplecfd/mesh"
)

// Geometry carries the per-cell spacing used by every stencil in this
// package. Uniform spacing only, matching spec.md's cell-centered
// structured grid.
type Geometry struct {
	Dx, Dy float64
}

// Momentum fills equU and equV's coefficient and source arrays for one
// outer-iteration sweep, per spec.md §4.1. Both equations are discretized
// in the same pass since they share every face flux and conductance.
//
// equU.Field and equV.Field must already alias m.U and m.V so that
// boundary/obstacle neighbor values fold correctly when the equations are
// later assembled.
func Momentum(m *mesh.Mesh, equU, equV *equation.Equation, g Geometry, mu, dt, alphaUV float64) {
	De := mu * g.Dy / g.Dx
	Dn := mu * g.Dx / g.Dy
	cellVol := g.Dx * g.Dy

	for k := 0; k < m.InterNumber; k++ {
		i, j := m.InterI[k], m.InterJ[k]
		idx := m.Idx(i, j)

		Fe := m.UFace[idx] * g.Dy
		Fw := m.UFace[m.Idx(i, j-1)] * g.Dy
		Fn := m.VFace[idx] * g.Dx
		Fs := m.VFace[m.Idx(i-1, j)] * g.Dx

		Ae := De + max0(-Fe)
		Aw := De + max0(Fw)
		An := Dn + max0(-Fn)
		As := Dn + max0(Fs)
		dF := Fe - Fw + Fn - Fs
		At := cellVol / dt
		Ap := (Ae + Aw + An + As + At + dF) / alphaUV

		equU.Ae[idx], equU.Aw[idx], equU.An[idx], equU.As[idx], equU.Ap[idx] = Ae, Aw, An, As, Ap
		equV.Ae[idx], equV.Aw[idx], equV.An[idx], equV.As[idx], equV.Ap[idx] = Ae, Aw, An, As, Ap

		dPdx := (m.P[m.Idx(i, j+1)] - m.P[m.Idx(i, j-1)]) * g.Dy / 2
		dPdy := (m.P[m.Idx(i+1, j)] - m.P[m.Idx(i-1, j)]) * g.Dx / 2

		equU.Source[k] = At*m.U0[idx] + (1-alphaUV)*Ap*m.U[idx] - dPdx
		equV.Source[k] = At*m.V0[idx] + (1-alphaUV)*Ap*m.V[idx] - dPdy
	}
}

func max0(x float64) float64 {
	if x > 0 {
		return x
	}
	return 0
}
