// Package mesh holds the field arrays, boundary/zone metadata and interior
// index map for one rank's column-strip subdomain of the global structured
// Cartesian grid.
//
// Ghost-cell convention: column 0 and column Nx-1, and row 0 and row Ny-1,
// form the ghost ring. mesh.Builder tags them Ghost (a rank-boundary halo)
// by default; where they lie on the physical domain edge they are retagged
// with a boundary type (Wall, Inlet, Outlet, ...). They are never interior
// and are only ever written by halo exchange
// (parallel.Communicator.ExchangeColumns) or by a boundary treatment step,
// never by discretization.
package mesh

// Mesh is the plain data aggregate for one subdomain. It carries no
// behavior beyond shape bookkeeping; discretization, correction and halo
// exchange are free functions elsewhere that operate on *Mesh.
type Mesh struct {
	Nx, Ny int // including the two ghost columns/rows

	U, V           []float64 // current iterate, Ny*Nx, row-major: index = i*Nx+j
	U0, V0         []float64 // previous time step
	UStar, VStar   []float64 // momentum-predictor result
	P, PStar       []float64 // pressure and under-relaxed correction result
	PPrime         []float64 // pressure correction

	UFace, VFace []float64 // east/north face velocities, Ny*Nx

	BCType []BCType
	ZoneID []int

	InterID     []int // [Ny*Nx] -> dense interior index, -1 if not interior
	InterI      []int // [InterNumber] -> row i
	InterJ      []int // [InterNumber] -> column j
	InterNumber int

	ZoneU map[int]float64 // prescribed u velocity per zone id
	ZoneV map[int]float64 // prescribed v velocity per zone id
}

// Idx returns the flat row-major index of cell (i, j).
func (m *Mesh) Idx(i, j int) int { return i*m.Nx + j }

// newEmpty allocates all field arrays with identical shape. Called only by
// Builder.Build so that no code path can construct a Mesh whose arrays
// disagree in length.
func newEmpty(nx, ny int) *Mesh {
	n := nx * ny
	mk := func() []float64 { return make([]float64, n) }
	m := &Mesh{
		Nx: nx, Ny: ny,
		U: mk(), V: mk(),
		U0: mk(), V0: mk(),
		UStar: mk(), VStar: mk(),
		P: mk(), PStar: mk(), PPrime: mk(),
		UFace: mk(), VFace: mk(),
		BCType: make([]BCType, n),
		ZoneID: make([]int, n),
		InterID: make([]int, n),
		ZoneU:   make(map[int]float64),
		ZoneV:   make(map[int]float64),
	}
	for k := range m.InterID {
		m.InterID[k] = -1
	}
	return m
}

// IsInteriorCell reports whether (i, j) carries a live unknown.
func (m *Mesh) IsInteriorCell(i, j int) bool {
	return m.BCType[m.Idx(i, j)] == Interior
}

// ZeroIterate zeroes U, V ahead of a fresh outer-iteration restart, per
// spec step "zero u, v (iterate restart)". It does not touch U0/V0 (the
// previous time step) or P (carried forward across outer iterations).
func (m *Mesh) ZeroIterate() {
	for k := range m.U {
		m.U[k] = 0
		m.V[k] = 0
	}
}
