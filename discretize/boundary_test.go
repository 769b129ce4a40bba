package discretize

import (
	"testing"

	"github.com/cfdsim/simplecfd/mesh"
	"github.com/stretchr/testify/assert"
)

// TestApplyBoundaryVelocitiesWallDefaultsToNoSlip covers the common case: a
// wall whose zone nobody called SetWallUV/SetZoneVelocity for reads
// ZoneU/ZoneV's Go zero value, i.e. no-slip.
func TestApplyBoundaryVelocitiesWallDefaultsToNoSlip(t *testing.T) {
	b := mesh.NewBuilder(6, 6)
	b.SetWall(0, 0, 0, 5)
	b.SetWall(5, 5, 0, 5)
	b.SetWall(0, 5, 0, 0)
	b.SetWall(0, 5, 5, 5)
	m := b.Build()
	for k := range m.U {
		m.U[k], m.V[k] = 9, 9
	}
	ApplyBoundaryVelocities(m)

	for i := 0; i < m.Ny; i++ {
		for j := 0; j < m.Nx; j++ {
			idx := m.Idx(i, j)
			if m.BCType[idx] != mesh.Wall {
				continue
			}
			assert.Equal(t, 0.0, m.U[idx], "cell (%d,%d)", i, j)
			assert.Equal(t, 0.0, m.V[idx], "cell (%d,%d)", i, j)
		}
	}
}

// TestApplyBoundaryVelocitiesLidDrivenCavityMovingWall is the lid-driven
// cavity's moving top wall (spec.md S1: "top-wall u=1, other walls
// no-slip"), expressed as a Wall region carrying a nonzero zone velocity.
func TestApplyBoundaryVelocitiesLidDrivenCavityMovingWall(t *testing.T) {
	b := mesh.NewBuilder(6, 6)
	b.SetWallUV(5, 5, 0, 5, 1, 1.0, 0.0) // top row moves at u=1
	m := b.Build()

	ApplyBoundaryVelocities(m)

	for j := 0; j < m.Nx; j++ {
		idx := m.Idx(5, j)
		assert.Equal(t, 1.0, m.U[idx])
		assert.Equal(t, 0.0, m.V[idx])
	}
	// The lid has no normal (through-wall) flow: the interior cell just
	// below it sees VFace=0 on its north face even though U there is 1.
	assert.Equal(t, 0.0, m.VFace[m.Idx(4, 2)])
}

func TestApplyBoundaryVelocitiesInletUsesZoneVelocity(t *testing.T) {
	b := mesh.NewBuilder(6, 6)
	b.SetInletUV(0, 5, 0, 0, 7, 1.5, 0.0)
	m := b.Build()

	ApplyBoundaryVelocities(m)

	for i := 0; i < m.Ny; i++ {
		idx := m.Idx(i, 0)
		assert.Equal(t, 1.5, m.U[idx])
	}
	// The first interior column's west face (Fw in momentum.go) must see
	// the inlet velocity, not zero.
	assert.Equal(t, 1.5, m.UFace[m.Idx(2, 0)])
}

func TestApplyBoundaryVelocitiesObstacleIsZero(t *testing.T) {
	b := mesh.NewBuilder(8, 8)
	b.SetBlock(3, 4, 3, 4, 9)
	m := b.Build()
	for k := range m.U {
		m.U[k] = 3
	}

	ApplyBoundaryVelocities(m)

	for i := 3; i <= 4; i++ {
		for j := 3; j <= 4; j++ {
			idx := m.Idx(i, j)
			assert.Equal(t, 0.0, m.U[idx])
			assert.Equal(t, 0.0, m.V[idx])
		}
	}
}

func TestApplyBoundaryVelocitiesOutletCopiesInteriorNeighbor(t *testing.T) {
	b := mesh.NewBuilder(6, 6)
	b.SetOutlet(0, 5, 5, 5)
	m := b.Build()
	m.U[m.Idx(2, 4)] = 2.25 // interior neighbor of the outlet cell at (2,5)

	ApplyBoundaryVelocities(m)

	assert.Equal(t, 2.25, m.U[m.Idx(2, 5)])
}

// TestApplyBoundaryVelocitiesPrescribedZoneFeedsMomentumFold is the crux of
// the maintainer finding: a PrescribedZone neighbor's configured velocity,
// not the frozen zero ZeroIterate leaves behind, must be what a momentum
// equation's Dirichlet fold reads.
func TestApplyBoundaryVelocitiesPrescribedZoneFeedsMomentumFold(t *testing.T) {
	b := mesh.NewBuilder(8, 6)
	b.SetZoneUV(0, 5, 5, 6, 3, 0.75, -0.25)
	m := b.Build()

	m.ZeroIterate()
	ApplyBoundaryVelocities(m)

	idx := m.Idx(2, 5)
	assert.Equal(t, 0.75, m.U[idx])
	assert.Equal(t, -0.25, m.V[idx])
}
