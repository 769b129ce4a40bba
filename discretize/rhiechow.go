package discretize

import (
	"github.com/cfdsim/simplecfd/equation"
	"github.com/cfdsim/simplecfd/mesh"
)

// Direction selects which face family FaceVelocity interpolates.
type Direction int

const (
	East Direction = iota
	North
)

// FaceVelocity computes the Rhie-Chow interpolated face velocities
// u_face/v_face on every east/north face touching an interior cell, per
// spec.md §4.2. equ carries the A_p array for whichever of u or v this
// call concerns; along selects the sweep direction (east faces for u,
// north faces for v).
//
// Faces shared with a non-interior neighbor already carry the Dirichlet
// value ApplyBoundaryVelocities wrote this outer iteration, or the halo
// value the last ExchangeColumns wrote for a ghost column, and are left
// untouched here.
func FaceVelocity(m *mesh.Mesh, equ *equation.Equation, g Geometry, along Direction) {
	switch along {
	case East:
		faceVelocityEast(m, equ, g)
	case North:
		faceVelocityNorth(m, equ, g)
	}
}

func faceVelocityEast(m *mesh.Mesh, equ *equation.Equation, g Geometry) {
	for k := 0; k < m.InterNumber; k++ {
		i, j := m.InterI[k], m.InterJ[k]
		if !m.IsInteriorCell(i, j+1) {
			continue // boundary face: leave the Dirichlet value already in place
		}
		idx, east := m.Idx(i, j), m.Idx(i, j+1)
		ApI, ApE := equ.Ap[idx], equ.Ap[east]

		pI, pE := m.P[idx], m.P[east]
		pW := m.P[m.Idx(i, j-1)]
		pEE := m.P[m.Idx(i, j+2)]

		direct := pE - pI
		correction := 0.5 * g.Dy * (1/ApI + 1/ApE) * (direct - 0.5*(pE-pW) - 0.5*(pEE-pI))
		m.UFace[idx] = 0.5*(m.U[idx]+m.U[east]) + correction
	}
}

func faceVelocityNorth(m *mesh.Mesh, equ *equation.Equation, g Geometry) {
	for k := 0; k < m.InterNumber; k++ {
		i, j := m.InterI[k], m.InterJ[k]
		if !m.IsInteriorCell(i+1, j) {
			continue
		}
		idx, north := m.Idx(i, j), m.Idx(i+1, j)
		ApI, ApN := equ.Ap[idx], equ.Ap[north]

		pI, pN := m.P[idx], m.P[north]
		pS := m.P[m.Idx(i-1, j)]
		pNN := m.P[m.Idx(i+2, j)]

		direct := pN - pI
		correction := 0.5 * g.Dx * (1/ApI + 1/ApN) * (direct - 0.5*(pN-pS) - 0.5*(pNN-pI))
		m.VFace[idx] = 0.5*(m.V[idx]+m.V[north]) + correction
	}
}
