package equation

import (
	"testing"

	"github.com/cfdsim/simplecfd/mesh"
	"github.com/stretchr/testify/assert"
)

func TestBuildMatrixFoldsDirichletNeighborIntoSource(t *testing.T) {
	b := mesh.NewBuilder(4, 4)
	b.SetWall(0, 0, 0, 3) // south row (row 0) is Wall, not Ghost
	m := b.Build()

	e := New(m, m.U)
	for k := range e.Field {
		e.Field[k] = 3 // wall velocity value
	}
	for k := range e.Ap {
		e.Ap[k] = 4
		e.Ae[k] = 1
		e.Aw[k] = 1
		e.An[k] = 1
		e.As[k] = 1
	}

	csr := e.BuildMatrix()
	k := m.InterID[m.Idx(1, 1)]
	// south neighbor (0,1) is Wall: folded into Source as coeff*Field
	assert.Equal(t, e.As[m.Idx(1, 1)]*3, e.Source[k])

	n, _ := csr.Dims()
	assert.Equal(t, m.InterNumber, n)
}

func TestBuildMatrixSkipsGhostNeighbors(t *testing.T) {
	m := mesh.NewBuilder(4, 4).Build() // default: outer ring all Ghost
	e := New(m, m.U)
	for k := range e.Field {
		e.Field[k] = 99
	}
	for k := range e.Ap {
		e.Ap[k] = 4
		e.Ae[k], e.Aw[k], e.An[k], e.As[k] = 1, 1, 1, 1
	}
	e.BuildMatrix()
	k := m.InterID[m.Idx(1, 1)]
	assert.Equal(t, 0.0, e.Source[k]) // Ghost neighbors never folded into Source
}

func TestBuildMatrixDiagonalDominance(t *testing.T) {
	m := mesh.NewBuilder(5, 5).Build()
	e := New(m, m.U)
	for k := range e.Ap {
		e.Ap[k] = 10
		e.Ae[k], e.Aw[k], e.An[k], e.As[k] = 1, 1, 1, 1
	}
	csr := e.BuildMatrix()
	for row := 0; row < m.InterNumber; row++ {
		diag := csr.At(row, row)
		offSum := csr.RowSumOffDiag(row)
		assert.GreaterOrEqual(t, diag, offSum, "row %d not diagonally dominant", row)
	}
}

func TestPinRowZeroesOffDiagonalAndSource(t *testing.T) {
	m := mesh.NewBuilder(5, 5).Build()
	e := New(m, m.U)
	for k := range e.Ap {
		e.Ap[k] = 10
		e.Ae[k], e.Aw[k], e.An[k], e.As[k] = 1, 1, 1, 1
		if k < len(e.Source) {
			e.Source[k] = 7
		}
	}
	e.BuildMatrix()
	e.PinRow(0, 1e30)

	n, _ := e.A.Dims()
	for j := 0; j < n; j++ {
		if j == 0 {
			continue
		}
		assert.Equal(t, 0.0, e.A.At(0, j))
	}
	assert.Equal(t, 1e30, e.A.At(0, 0))
	assert.Equal(t, 0.0, e.Source[0])
}
