package equation

import (
	"github.com/cfdsim/simplecfd/mesh"
	"github.com/james-bowman/sparse"
	"gonum.org/v1/gonum/mat"
)

// CSR wraps github.com/james-bowman/sparse's compressed-row matrix so the
// rest of the package can use gonum's mat.Matrix interface uniformly,
// mirroring the teacher repository's utils.CSR wrapper.
type CSR struct {
	M *sparse.CSR
}

// Dims, At and T satisfy mat.Matrix.
func (c CSR) Dims() (r, cc int)    { return c.M.Dims() }
func (c CSR) At(i, j int) float64 { return c.M.At(i, j) }
func (c CSR) T() mat.Matrix       { return c.M.T() }

// RowSumOffDiag returns, for each row, the sum of the absolute value of its
// off-diagonal entries — used by the diagonal-dominance property test
// (spec.md §3 Equation invariants).
func (c CSR) RowSumOffDiag(row int) float64 {
	_, n := c.M.Dims()
	var sum float64
	for j := 0; j < n; j++ {
		if j == row {
			continue
		}
		sum += absf(c.M.At(row, j))
	}
	return sum
}

func absf(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}

// BuildMatrix assembles the sparse InterNumber x InterNumber matrix from
// the five coefficient arrays, folding any neighbor that is a frozen
// Dirichlet-type cell (wall, inlet, outlet, obstacle or prescribed zone)
// into Source using its currently-stored Field value, per spec.md §3.
// A neighbor tagged mesh.Ghost is a live rank-boundary unknown, not a
// Dirichlet value — it is left out of both the matrix and Source here and
// is instead added back in dynamically by Equation.GhostContribution on
// every MatVec call, once its Field entry has been refreshed by halo
// exchange. The coefficient arrays remain the single source of truth
// (Design Note); this is a pure function of them, safe to call again
// every outer iteration.
func (e *Equation) BuildMatrix() *CSR {
	m := e.Mesh
	n := m.InterNumber
	dok := sparse.NewDOK(n, n)

	fold := func(k, idx, di, dj int, coeff []float64) {
		ni, nj := m.InterI[k]+di, m.InterJ[k]+dj
		nIdx := m.Idx(ni, nj)
		if nk := m.InterID[nIdx]; nk >= 0 {
			dok.Set(k, nk, dok.At(k, nk)-coeff[idx])
			return
		}
		if m.BCType[nIdx] == mesh.Ghost {
			return
		}
		e.Source[k] += coeff[idx] * e.Field[nIdx]
	}

	for k := 0; k < n; k++ {
		i, j := m.InterI[k], m.InterJ[k]
		idx := m.Idx(i, j)
		dok.Set(k, k, e.Ap[idx])
		fold(k, idx, 0, 1, e.Ae)
		fold(k, idx, 0, -1, e.Aw)
		fold(k, idx, 1, 0, e.An)
		fold(k, idx, -1, 0, e.As)
	}
	e.A = &CSR{M: dok.ToCSR()}
	return e.A
}

// PinRow overwrites row `row` of the currently-assembled matrix to pin one
// reference unknown: diagonal set to a large constant, all off-diagonals
// zeroed, and the corresponding source entry set to zero. Used by the
// pressure-correction assembly to remove the otherwise-singular Neumann
// system's null space (spec.md §4.3).
func (e *Equation) PinRow(row int, diagConst float64) {
	n := e.Mesh.InterNumber
	dok := sparse.NewDOK(n, n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			v := e.A.At(i, j)
			if v == 0 {
				continue
			}
			dok.Set(i, j, v)
		}
	}
	for j := 0; j < n; j++ {
		dok.Set(row, j, 0)
	}
	dok.Set(row, row, diagConst)
	e.Source[row] = 0
	e.A = &CSR{M: dok.ToCSR()}
}
