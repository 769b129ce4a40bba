package discretize

import (
	"testing"

	"github.com/cfdsim/simplecfd/equation"
	"github.com/cfdsim/simplecfd/mesh"
	"github.com/stretchr/testify/assert"
)

func TestFaceVelocityUniformPressureIsPlainAverage(t *testing.T) {
	m := mesh.NewBuilder(6, 6).Build() // 4x4 interior
	equU := equation.New(m, m.U)
	for k := range equU.Ap {
		equU.Ap[k] = 5 // any nonzero, uniform
	}
	for k := range m.P {
		m.P[k] = 3.0 // uniform pressure: every gradient term is zero
	}
	for k := range m.U {
		m.U[k] = 1.5
	}

	g := Geometry{Dx: 0.1, Dy: 0.1}
	FaceVelocity(m, equU, g, East)

	k := m.InterID[m.Idx(2, 2)]
	_ = k
	idx := m.Idx(2, 2)
	assert.InDelta(t, 1.5, m.UFace[idx], 1e-12)
}

func TestFaceVelocitySkipsBoundaryFaces(t *testing.T) {
	m := mesh.NewBuilder(5, 5).Build() // 3x3 interior: (1,3) east neighbor is ghost
	equU := equation.New(m, m.U)
	for k := range equU.Ap {
		equU.Ap[k] = 5
	}
	idx := m.Idx(1, 3)
	m.UFace[idx] = 42 // sentinel: must survive untouched

	g := Geometry{Dx: 0.1, Dy: 0.1}
	FaceVelocity(m, equU, g, East)

	assert.Equal(t, 42.0, m.UFace[idx])
}
