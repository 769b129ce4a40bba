package solver

import (
	"testing"

	"github.com/cfdsim/simplecfd/equation"
	"github.com/cfdsim/simplecfd/mesh"
	"github.com/cfdsim/simplecfd/parallel"
	"github.com/stretchr/testify/assert"
)

// symmetricSystem builds a single-rank Equation over a small mesh with a
// symmetric, diagonally dominant stencil (uniform Ap everywhere makes the
// fold coefficients symmetric) and an assembled matrix, suitable for CG.
func symmetricSystem() (*mesh.Mesh, *equation.Equation) {
	m := mesh.NewBuilder(6, 6).Build() // 4x4 interior
	e := equation.New(m, m.PPrime)
	for k := range e.Ap {
		e.Ap[k] = 8
		e.Ae[k], e.Aw[k], e.An[k], e.As[k] = 1, 1, 1, 1
	}
	for k := range e.Source {
		e.Source[k] = 1
	}
	e.BuildMatrix()
	return m, e
}

func TestCGConvergesOnSymmetricSystem(t *testing.T) {
	m, e := symmetricSystem()
	comms := parallel.NewGroup(1)

	x := make([]float64, m.InterNumber)
	res := CG(e, x, comms[0], 200, 1e-10)

	assert.True(t, res.Converged, "CG should converge on a diagonally dominant symmetric system")
	assert.Less(t, res.Residual, 1e-8)

	// verify the returned x actually satisfies Ax ~= Source
	y := make([]float64, m.InterNumber)
	e.ScatterToMesh(x, e.Field)
	e.MatVec(x, y)
	for k := range y {
		assert.InDelta(t, e.Source[k], y[k], 1e-6)
	}
}

func TestCGRespectsIterationCap(t *testing.T) {
	m, e := symmetricSystem()
	comms := parallel.NewGroup(1)
	x := make([]float64, m.InterNumber)
	res := CG(e, x, comms[0], 1, 1e-15)
	assert.LessOrEqual(t, res.Iterations, 1)
}

func TestCGResidualMonotoneDecrease(t *testing.T) {
	m, e := symmetricSystem()
	comms := parallel.NewGroup(1)

	var prev float64 = -1
	for iter := 1; iter <= 5; iter++ {
		x := make([]float64, m.InterNumber)
		res := CG(e, x, comms[0], iter, 0) // tol 0: never terminate early
		if prev >= 0 {
			assert.LessOrEqual(t, res.Residual, prev+1e-9)
		}
		prev = res.Residual
	}
}
