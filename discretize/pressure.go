package discretize

import (
	"github.com/cfdsim/simplecfd/equation"
	"github.com/cfdsim/simplecfd/mesh"
)

// PressureCorrection assembles equP's coefficients and mass-imbalance
// source for the pressure-correction equation p', per spec.md §4.3. equU
// supplies the momentum A_p array (the same one written by Momentum);
// equP.Field must alias m.PPrime.
//
// At a face shared with a non-interior neighbor, the corresponding
// coefficient is omitted entirely (zero-gradient on p' at solid
// boundaries) rather than folded into the source, since p' has no
// Dirichlet value to fold.
func PressureCorrection(m *mesh.Mesh, equP, equU *equation.Equation, g Geometry) {
	for k := 0; k < m.InterNumber; k++ {
		i, j := m.InterI[k], m.InterJ[k]
		idx := m.Idx(i, j)

		var Ae, Aw, An, As float64
		if m.IsInteriorCell(i, j+1) {
			Ae = g.Dy * g.Dy / equU.Ap[m.Idx(i, j+1)]
		}
		if m.IsInteriorCell(i, j-1) {
			Aw = g.Dy * g.Dy / equU.Ap[m.Idx(i, j-1)]
		}
		if m.IsInteriorCell(i+1, j) {
			An = g.Dx * g.Dx / equU.Ap[m.Idx(i+1, j)]
		}
		if m.IsInteriorCell(i-1, j) {
			As = g.Dx * g.Dx / equU.Ap[m.Idx(i-1, j)]
		}

		equP.Ae[idx], equP.Aw[idx], equP.An[idx], equP.As[idx] = Ae, Aw, An, As
		equP.Ap[idx] = Ae + Aw + An + As

		massImbalance := -(m.UFace[idx]-m.UFace[m.Idx(i, j-1)])*g.Dy -
			(m.VFace[idx]-m.VFace[m.Idx(i-1, j)])*g.Dx
		equP.Source[k] = massImbalance
	}
}
