package discretize

import (
	"github.com/cfdsim/simplecfd/equation"
	"github.com/cfdsim/simplecfd/mesh"
)

// CorrectPressure applies the under-relaxed pressure update p_star = p +
// alphaP * p_prime over every interior cell, per spec.md §4.4.
func CorrectPressure(m *mesh.Mesh, alphaP float64) {
	for k := 0; k < m.InterNumber; k++ {
		idx := m.Idx(m.InterI[k], m.InterJ[k])
		m.PStar[idx] = m.P[idx] + alphaP*m.PPrime[idx]
	}
}

// CorrectVelocity applies the cell-centered and face velocity corrections
// from the pressure-correction field, per spec.md §4.4. equU and equV
// supply the momentum A_p arrays used to scale each correction.
func CorrectVelocity(m *mesh.Mesh, equU, equV *equation.Equation, g Geometry) {
	for k := 0; k < m.InterNumber; k++ {
		i, j := m.InterI[k], m.InterJ[k]
		idx := m.Idx(i, j)

		dPx := m.PPrime[m.Idx(i, j+1)] - m.PPrime[m.Idx(i, j-1)]
		dPy := m.PPrime[m.Idx(i+1, j)] - m.PPrime[m.Idx(i-1, j)]

		m.UStar[idx] = m.U[idx] - dPx*g.Dy/(2*equU.Ap[idx])
		m.VStar[idx] = m.V[idx] - dPy*g.Dx/(2*equV.Ap[idx])
	}

	correctFace := func(face []float64, apArr []float64, idx, neighbor int, pPrimeNeighborDelta, length float64) {
		apAvg := 0.5 * (1/apArr[idx] + 1/apArr[neighbor])
		face[idx] -= pPrimeNeighborDelta * length * apAvg
	}

	for k := 0; k < m.InterNumber; k++ {
		i, j := m.InterI[k], m.InterJ[k]
		idx := m.Idx(i, j)
		if m.IsInteriorCell(i, j+1) {
			east := m.Idx(i, j+1)
			correctFace(m.UFace, equU.Ap, idx, east, m.PPrime[east]-m.PPrime[idx], g.Dy)
		}
		if m.IsInteriorCell(i+1, j) {
			north := m.Idx(i+1, j)
			correctFace(m.VFace, equV.Ap, idx, north, m.PPrime[north]-m.PPrime[idx], g.Dx)
		}
	}
}
