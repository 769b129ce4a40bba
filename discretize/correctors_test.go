package discretize

import (
	"testing"

	"github.com/cfdsim/simplecfd/equation"
	"github.com/cfdsim/simplecfd/mesh"
	"github.com/stretchr/testify/assert"
)

func TestCorrectPressure(t *testing.T) {
	m := mesh.NewBuilder(5, 5).Build()
	for k := range m.P {
		m.P[k] = 1.0
		m.PPrime[k] = 0.4
	}
	CorrectPressure(m, 0.5)

	idx := m.Idx(2, 2)
	assert.InDelta(t, 1.2, m.PStar[idx], 1e-12)
}

func TestCorrectVelocityZeroPPrimeIsIdentity(t *testing.T) {
	m := mesh.NewBuilder(6, 6).Build()
	equU := equation.New(m, m.U)
	equV := equation.New(m, m.V)
	for k := range equU.Ap {
		equU.Ap[k] = 5
		equV.Ap[k] = 5
	}
	for k := range m.U {
		m.U[k] = 2.0
		m.V[k] = 3.0
	}
	for k := range m.UFace {
		m.UFace[k] = 1.0
		m.VFace[k] = 1.5
	}

	g := Geometry{Dx: 0.1, Dy: 0.2}
	CorrectVelocity(m, equU, equV, g)

	idx := m.Idx(2, 2)
	assert.InDelta(t, 2.0, m.UStar[idx], 1e-12)
	assert.InDelta(t, 3.0, m.VStar[idx], 1e-12)
	assert.InDelta(t, 1.0, m.UFace[idx], 1e-12)
	assert.InDelta(t, 1.5, m.VFace[idx], 1e-12)
}

func TestCorrectVelocityNonzeroPPrimeShiftsCellValue(t *testing.T) {
	m := mesh.NewBuilder(6, 6).Build()
	equU := equation.New(m, m.U)
	equV := equation.New(m, m.V)
	for k := range equU.Ap {
		equU.Ap[k] = 4
		equV.Ap[k] = 4
	}
	idx := m.Idx(2, 2)
	east := m.Idx(2, 3)
	west := m.Idx(2, 1)
	m.PPrime[east] = 1.0
	m.PPrime[west] = -1.0

	g := Geometry{Dx: 1, Dy: 1}
	CorrectVelocity(m, equU, equV, g)

	dPx := m.PPrime[east] - m.PPrime[west]
	want := m.U[idx] - dPx*g.Dy/(2*equU.Ap[idx])
	assert.InDelta(t, want, m.UStar[idx], 1e-12)
}
