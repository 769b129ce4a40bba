package discretize

import "github.com/cfdsim/simplecfd/mesh"

// ApplyBoundaryVelocities writes the prescribed velocity into m.U, m.V and
// their face counterparts m.UFace, m.VFace for every non-interior,
// non-ghost cell, per spec.md §3's zoneu/zonev mechanism ("prescribed
// velocity components for zone z ... used when bctype marks a
// velocity-specified cell"): that wording is not restricted to
// PrescribedZone cells, so Wall and Inlet cells read their velocity from
// their own zone the same way — a plain no-slip wall is simply a zone
// nobody ever called SetZoneVelocity/SetWallUV for, so ZoneU/ZoneV's Go
// zero value gives it u=v=0 for free. Obstacle cells are always zero
// (solid). Outlet cells copy their adjacent interior neighbor (zero
// gradient).
//
// Must run after mesh.Mesh.ZeroIterate and before any discretization or
// assembly step reads m.U/m.V/m.UFace/m.VFace, since ZeroIterate zeroes
// every cell including these — discretize.Momentum's convective fluxes
// and equation.Equation.BuildMatrix's Dirichlet fold both depend on this
// having already run.
func ApplyBoundaryVelocities(m *mesh.Mesh) {
	for i := 0; i < m.Ny; i++ {
		for j := 0; j < m.Nx; j++ {
			idx := m.Idx(i, j)
			switch m.BCType[idx] {
			case mesh.Wall, mesh.Inlet, mesh.PrescribedZone:
				zone := m.ZoneID[idx]
				m.U[idx], m.V[idx] = m.ZoneU[zone], m.ZoneV[zone]
			case mesh.Obstacle:
				m.U[idx], m.V[idx] = 0, 0
			case mesh.Outlet:
				if ni, nj, ok := interiorNeighbor(m, i, j); ok {
					nIdx := m.Idx(ni, nj)
					m.U[idx], m.V[idx] = m.U[nIdx], m.V[nIdx]
				}
			}
		}
	}

	// Propagate the now-current boundary cell values onto the faces
	// momentum.go actually reads: Fe=UFace[idx], Fw=UFace[Idx(i,j-1)],
	// Fn=VFace[idx], Fs=VFace[Idx(i-1,j)] for each interior cell (i,j).
	for k := 0; k < m.InterNumber; k++ {
		i, j := m.InterI[k], m.InterJ[k]
		idx := m.Idx(i, j)
		if e := m.Idx(i, j+1); isDirichletFace(m, i, j+1) {
			m.UFace[idx] = m.U[e]
		}
		if w := m.Idx(i, j-1); isDirichletFace(m, i, j-1) {
			m.UFace[w] = m.U[w]
		}
		if n := m.Idx(i+1, j); isDirichletFace(m, i+1, j) {
			m.VFace[idx] = m.V[n]
		}
		if s := m.Idx(i-1, j); isDirichletFace(m, i-1, j) {
			m.VFace[s] = m.V[s]
		}
	}
}

// isDirichletFace reports whether (i,j) is a frozen boundary/obstacle cell
// whose current field value is a face velocity, as opposed to a live
// rank-boundary ghost.
func isDirichletFace(m *mesh.Mesh, i, j int) bool {
	if i < 0 || i >= m.Ny || j < 0 || j >= m.Nx {
		return false
	}
	bc := m.BCType[m.Idx(i, j)]
	return bc != mesh.Interior && bc != mesh.Ghost
}

// interiorNeighbor returns the first interior cell adjacent to (i,j), used
// by Outlet's zero-gradient extrapolation.
func interiorNeighbor(m *mesh.Mesh, i, j int) (ni, nj int, ok bool) {
	candidates := [4][2]int{{i, j + 1}, {i, j - 1}, {i + 1, j}, {i - 1, j}}
	for _, c := range candidates {
		ci, cj := c[0], c[1]
		if ci < 0 || ci >= m.Ny || cj < 0 || cj >= m.Nx {
			continue
		}
		if m.IsInteriorCell(ci, cj) {
			return ci, cj, true
		}
	}
	return 0, 0, false
}
