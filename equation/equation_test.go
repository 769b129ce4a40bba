package equation

import (
	"testing"

	"github.com/cfdsim/simplecfd/mesh"
	"github.com/stretchr/testify/assert"
)

// fourCellMesh builds a 4x4 mesh (2x2 interior block, default Ghost ring)
// and an Equation over m.U with every stencil coefficient set to a fixed
// value, for exercising SpMV/GhostContribution/MatVec directly.
func fourCellMesh() (*mesh.Mesh, *Equation) {
	m := mesh.NewBuilder(4, 4).Build()
	e := New(m, m.U)
	for k := range e.Ap {
		e.Ap[k] = 4
		e.Ae[k] = 1
		e.Aw[k] = 1
		e.An[k] = 1
		e.As[k] = 1
	}
	return m, e
}

func TestSpMVOnlyCountsInteriorNeighbors(t *testing.T) {
	m, e := fourCellMesh()
	n := m.InterNumber
	assert.Equal(t, 4, n)

	x := make([]float64, n)
	for k := range x {
		x[k] = float64(k + 1)
	}
	y := make([]float64, n)
	e.SpMV(x, y)

	// cell (1,1): east=(1,2) interior, north=(2,1) interior, south/west ghost
	k := m.InterID[m.Idx(1, 1)]
	east := m.InterID[m.Idx(1, 2)]
	north := m.InterID[m.Idx(2, 1)]
	want := e.Ap[m.Idx(1, 1)]*x[k] - e.Ae[m.Idx(1, 1)]*x[east] - e.An[m.Idx(1, 1)]*x[north]
	assert.Equal(t, want, y[k])
}

func TestGhostContributionAddsOnlyGhostNeighbors(t *testing.T) {
	m, e := fourCellMesh()
	n := m.InterNumber
	for k := range e.Field {
		e.Field[k] = 10 // every ghost cell carries value 10
	}

	y := make([]float64, n)
	e.GhostContribution(y)

	// cell (1,1) has two ghost neighbors (south, west): contributes
	// -(As+Aw)*10
	k := m.InterID[m.Idx(1, 1)]
	idx := m.Idx(1, 1)
	want := -(e.As[idx] + e.Aw[idx]) * 10
	assert.Equal(t, want, y[k])
}

func TestMatVecCombinesSpMVAndGhost(t *testing.T) {
	m, e := fourCellMesh()
	n := m.InterNumber
	for k := range e.Field {
		e.Field[k] = 2
	}
	x := make([]float64, n)
	for k := range x {
		x[k] = 1
	}
	e.ScatterToMesh(x, e.Field)

	y := make([]float64, n)
	e.MatVec(x, y)

	var ySpMV, yGhost []float64 = make([]float64, n), make([]float64, n)
	e.SpMV(x, ySpMV)
	e.GhostContribution(yGhost)
	for k := 0; k < n; k++ {
		assert.InDelta(t, ySpMV[k]+yGhost[k], y[k], 1e-12)
	}
}

func TestGatherScatterRoundTrip(t *testing.T) {
	m, e := fourCellMesh()
	for k := range e.Field {
		e.Field[k] = float64(k)
	}
	x := make([]float64, m.InterNumber)
	e.GatherFromMesh(e.Field, x)

	dst := make([]float64, len(e.Field))
	e.ScatterToMesh(x, dst)
	for k := 0; k < m.InterNumber; k++ {
		idx := m.Idx(m.InterI[k], m.InterJ[k])
		assert.Equal(t, e.Field[idx], dst[idx])
	}
}

func TestResetZeroesCoefficientsAndSource(t *testing.T) {
	_, e := fourCellMesh()
	e.Source[0] = 5
	e.Reset()
	for k := range e.Ap {
		assert.Equal(t, 0.0, e.Ap[k])
	}
	for k := range e.Source {
		assert.Equal(t, 0.0, e.Source[k])
	}
	assert.Nil(t, e.A)
}

func TestNewPanicsOnMismatchedFieldLength(t *testing.T) {
	m := mesh.NewBuilder(4, 4).Build()
	assert.Panics(t, func() { New(m, make([]float64, 3)) })
}
