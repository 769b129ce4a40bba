// Package equation holds one cell-centered scalar PDE's linearization over a
// mesh: the five pentadiagonal stencil coefficient arrays (Ap, Ae, Aw, An,
// As), a dense source vector indexed by the mesh's interior index map, and
// the sparse matrix assembled from them.
package equation

import (
	"fmt"

	"github.com/cfdsim/simplecfd/mesh"
	"gonum.org/v1/gonum/mat"
)

// Equation is the linearization of one scalar unknown (u, v, or p') over a
// Mesh. Field is the mesh field array this equation solves for; it is read
// (never written) by BuildMatrix to fold boundary/obstacle neighbor values
// into the source vector. BuildMatrix uses the values already stored there
// by a previous boundary-treatment step; the solvers write their iterate
// back into Field through ScatterToMesh.
type Equation struct {
	Mesh  *mesh.Mesh
	Field []float64 // alias to mesh.U, mesh.V or mesh.PPrime; len Ny*Nx

	Ap, Ae, Aw, An, As []float64 // shape Ny*Nx
	Source             []float64 // length Mesh.InterNumber

	A *CSR // assembled by BuildMatrix; nil until first call
}

// New allocates an Equation over m for the given field array. field must be
// one of m's own field slices (m.U, m.V or m.PPrime) so that Field and
// Mesh stay consistent as the mesh is mutated by halo exchange.
func New(m *mesh.Mesh, field []float64) *Equation {
	if len(field) != m.Nx*m.Ny {
		panic(fmt.Sprintf("equation.New: field length %d does not match mesh shape %dx%d", len(field), m.Ny, m.Nx))
	}
	n := m.Nx * m.Ny
	mk := func() []float64 { return make([]float64, n) }
	return &Equation{
		Mesh:  m,
		Field: field,
		Ap:    mk(), Ae: mk(), Aw: mk(), An: mk(), As: mk(),
		Source: make([]float64, m.InterNumber),
	}
}

// Reset zeroes the coefficient and source arrays ahead of a fresh
// discretization pass, matching the SIMPLE driver's "zero Equation
// coefficient arrays" step at the start of every outer iteration.
func (e *Equation) Reset() {
	for k := range e.Ap {
		e.Ap[k] = 0
		e.Ae[k] = 0
		e.Aw[k] = 0
		e.An[k] = 0
		e.As[k] = 0
	}
	for k := range e.Source {
		e.Source[k] = 0
	}
	e.A = nil
}

// SpMV computes the local interior-to-interior part of y = A·x directly
// from the five coefficient arrays rather than the assembled sparse
// matrix (Design Note: "skip assembly, perform SpMV directly from the
// five arrays"). x and y are dense vectors of length Mesh.InterNumber,
// indexed by the same dense interior ordering as Source. Neighbors that
// are not themselves local interior unknowns contribute nothing here —
// see GhostContribution for the rank-boundary term and MatVec for the
// combined operator CG actually needs.
func (e *Equation) SpMV(x, y []float64) {
	m := e.Mesh
	for k := 0; k < m.InterNumber; k++ {
		i, j := m.InterI[k], m.InterJ[k]
		idx := m.Idx(i, j)
		sum := e.Ap[idx] * x[k]
		if nb := m.InterID[m.Idx(i, j+1)]; nb >= 0 {
			sum -= e.Ae[idx] * x[nb]
		}
		if nb := m.InterID[m.Idx(i, j-1)]; nb >= 0 {
			sum -= e.Aw[idx] * x[nb]
		}
		if nb := m.InterID[m.Idx(i+1, j)]; nb >= 0 {
			sum -= e.An[idx] * x[nb]
		}
		if nb := m.InterID[m.Idx(i-1, j)]; nb >= 0 {
			sum -= e.As[idx] * x[nb]
		}
		y[k] = sum
	}
}

// GhostContribution adds, for every interior unknown adjacent to a
// rank-boundary (mesh.Ghost) neighbor, that neighbor's current Field
// value times its stencil coefficient into y. Every other non-interior
// neighbor type (wall, inlet, outlet, obstacle, prescribed zone) is a
// frozen Dirichlet value already folded once into Source by BuildMatrix
// or the discretizer and must not be added again here.
//
// The caller is responsible for refreshing e.Field's ghost columns via
// parallel.Communicator.ExchangeColumns before calling this, so that the
// contribution reflects the neighbor rank's current CG iterate rather
// than a stale value.
func (e *Equation) GhostContribution(y []float64) {
	m := e.Mesh
	add := func(k, idx, nbIdx int, coeff float64) {
		if m.InterID[nbIdx] >= 0 || m.BCType[nbIdx] != mesh.Ghost {
			return
		}
		y[k] -= coeff * e.Field[nbIdx]
	}
	for k := 0; k < m.InterNumber; k++ {
		i, j := m.InterI[k], m.InterJ[k]
		idx := m.Idx(i, j)
		add(k, idx, m.Idx(i, j+1), e.Ae[idx])
		add(k, idx, m.Idx(i, j-1), e.Aw[idx])
		add(k, idx, m.Idx(i+1, j), e.An[idx])
		add(k, idx, m.Idx(i-1, j), e.As[idx])
	}
}

// MatVec computes y = A·x including the live rank-boundary contribution,
// using the assembled sparse matrix when one is available (pressure and,
// since BuildMatrix now runs for momentum too, velocity) or the
// direct-from-arrays SpMV otherwise, per the Design Note §9.3 resolution.
// Callers running a distributed solve must call
// parallel.Communicator.ExchangeColumns on e.Field immediately before
// MatVec so GhostContribution sees the neighbor rank's latest iterate.
func (e *Equation) MatVec(x, y []float64) {
	if e.A != nil {
		n := e.Mesh.InterNumber
		xVec := mat.NewVecDense(n, x)
		var yVec mat.VecDense
		yVec.MulVec(e.A, xVec)
		copy(y, yVec.RawVector().Data)
	} else {
		e.SpMV(x, y)
	}
	e.GhostContribution(y)
}

// ScatterToMesh writes a dense solution vector x (indexed by the interior
// dense ordering) back into the 2-D field array dst (shape Ny*Nx).
func (e *Equation) ScatterToMesh(x []float64, dst []float64) {
	m := e.Mesh
	for k := 0; k < m.InterNumber; k++ {
		dst[m.Idx(m.InterI[k], m.InterJ[k])] = x[k]
	}
}

// GatherFromMesh reads a 2-D field array src (shape Ny*Nx) into a dense
// vector x (indexed by the interior dense ordering).
func (e *Equation) GatherFromMesh(src []float64, x []float64) {
	m := e.Mesh
	for k := 0; k < m.InterNumber; k++ {
		x[k] = src[m.Idx(m.InterI[k], m.InterJ[k])]
	}
}
