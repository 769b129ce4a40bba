package mesh

import "fmt"

// Builder constructs a Mesh from a sequence of boundary/zone declarations,
// keeping construction logic (Design Note: "mesh holds both data and
// operations") separate from the Mesh data aggregate itself. A Builder is
// used once and discarded; Build panics if called twice.
type Builder struct {
	nx, ny int
	m      *Mesh
	built  bool
}

// NewBuilder starts a mesh builder for a subdomain of nx by ny cells,
// including the mandatory ghost column/row on every side (two ghost
// columns and two ghost rows in all, so the smallest legal mesh is 4x4:
// one ghost, one interior-capable row/column, one interior-capable, one
// ghost).
func NewBuilder(nx, ny int) *Builder {
	if nx < 4 || ny < 4 {
		panic(fmt.Sprintf("mesh.NewBuilder: nx, ny must be >= 4, got nx=%d ny=%d", nx, ny))
	}
	m := newEmpty(nx, ny)
	b := &Builder{nx: nx, ny: ny, m: m}
	b.markGhostsAndDefaultInterior()
	return b
}

// markGhostsAndDefaultInterior tags the outer ring as Ghost and everything
// else as Interior; callers narrow that down with SetWall/SetInlet/
// SetOutlet/SetBlock/SetZoneUV before calling Build.
func (b *Builder) markGhostsAndDefaultInterior() {
	m := b.m
	for i := 0; i < m.Ny; i++ {
		for j := 0; j < m.Nx; j++ {
			k := m.Idx(i, j)
			if i == 0 || i == m.Ny-1 || j == 0 || j == m.Nx-1 {
				m.BCType[k] = Ghost
			} else {
				m.BCType[k] = Interior
			}
		}
	}
}

// region clamps a rectangle of cell indices [iLo,iHi] x [jLo,jHi] to the
// mesh extent and applies tag to every cell in it.
func (b *Builder) region(iLo, iHi, jLo, jHi int, tag BCType) *Builder {
	m := b.m
	if iLo < 0 {
		iLo = 0
	}
	if jLo < 0 {
		jLo = 0
	}
	if iHi > m.Ny-1 {
		iHi = m.Ny - 1
	}
	if jHi > m.Nx-1 {
		jHi = m.Nx - 1
	}
	for i := iLo; i <= iHi; i++ {
		for j := jLo; j <= jHi; j++ {
			m.BCType[m.Idx(i, j)] = tag
		}
	}
	return b
}

// SetWall tags the cells in [iLo,iHi] x [jLo,jHi] as a no-slip wall.
func (b *Builder) SetWall(iLo, iHi, jLo, jHi int) *Builder {
	return b.region(iLo, iHi, jLo, jHi, Wall)
}

// SetInlet tags the cells in [iLo,iHi] x [jLo,jHi] as a prescribed-velocity
// inlet.
func (b *Builder) SetInlet(iLo, iHi, jLo, jHi int) *Builder {
	return b.region(iLo, iHi, jLo, jHi, Inlet)
}

// setZone tags [iLo,iHi] x [jLo,jHi] with tag, assigns zoneID to every cell
// in it, and records u,v as that zone's prescribed velocity. Shared by
// SetWallUV, SetInletUV and SetZoneUV: spec.md's zoneu/zonev mechanism
// (§3: "used when bctype marks a velocity-specified cell") is not limited
// to PrescribedZone cells — a moving lid is a Wall with a nonzero zone
// velocity, and a prescribed inlet is an Inlet with one.
func (b *Builder) setZone(iLo, iHi, jLo, jHi int, tag BCType, zoneID int, u, v float64) *Builder {
	b.region(iLo, iHi, jLo, jHi, tag)
	m := b.m
	for i := iLo; i <= iHi && i < m.Ny; i++ {
		for j := jLo; j <= jHi && j < m.Nx; j++ {
			if i >= 0 && j >= 0 {
				m.ZoneID[m.Idx(i, j)] = zoneID
			}
		}
	}
	m.ZoneU[zoneID] = u
	m.ZoneV[zoneID] = v
	return b
}

// SetWallUV tags [iLo,iHi] x [jLo,jHi] as a wall moving at u,v (zoneID
// selects the ZoneU/ZoneV entry read at boundary-value application time).
// A plain no-slip wall is SetWall; this is for a lid-driven-cavity-style
// moving wall.
func (b *Builder) SetWallUV(iLo, iHi, jLo, jHi, zoneID int, u, v float64) *Builder {
	return b.setZone(iLo, iHi, jLo, jHi, Wall, zoneID, u, v)
}

// SetInletUV tags [iLo,iHi] x [jLo,jHi] as an inlet prescribing velocity
// u,v (zoneID selects the ZoneU/ZoneV entry read at boundary-value
// application time).
func (b *Builder) SetInletUV(iLo, iHi, jLo, jHi, zoneID int, u, v float64) *Builder {
	return b.setZone(iLo, iHi, jLo, jHi, Inlet, zoneID, u, v)
}

// SetOutlet tags the cells in [iLo,iHi] x [jLo,jHi] as a zero-gradient
// outlet.
func (b *Builder) SetOutlet(iLo, iHi, jLo, jHi int) *Builder {
	return b.region(iLo, iHi, jLo, jHi, Outlet)
}

// SetBlock tags the cells in [iLo,iHi] x [jLo,jHi] as a solid obstacle;
// those cells never carry a momentum or pressure unknown.
func (b *Builder) SetBlock(iLo, iHi, jLo, jHi, zoneID int) *Builder {
	b.region(iLo, iHi, jLo, jHi, Obstacle)
	m := b.m
	for i := iLo; i <= iHi && i < m.Ny; i++ {
		for j := jLo; j <= jHi && j < m.Nx; j++ {
			if i >= 0 && j >= 0 {
				m.ZoneID[m.Idx(i, j)] = zoneID
			}
		}
	}
	return b
}

// SetZoneUV declares a prescribed-velocity zone: cells in [iLo,iHi] x
// [jLo,jHi] are tagged PrescribedZone with zoneID, and u,v become the
// fixed velocity components discretization substitutes in for that zone
// instead of solving the momentum equation there.
func (b *Builder) SetZoneUV(iLo, iHi, jLo, jHi, zoneID int, u, v float64) *Builder {
	return b.setZone(iLo, iHi, jLo, jHi, PrescribedZone, zoneID, u, v)
}

// SetFromBCTypeNames overrides the default ghost/interior tagging with an
// explicit flat, row-major ny*nx matrix of boundary-type names (as loaded
// from a mesh-description file by iofields.LoadMesh), one name per cell.
func (b *Builder) SetFromBCTypeNames(names []string) *Builder {
	m := b.m
	for k, name := range names {
		if k >= len(m.BCType) {
			break
		}
		m.BCType[k] = ParseBCName(name)
	}
	return b
}

// SetZoneIDs overrides the zone-id array with an explicit flat, row-major
// ny*nx matrix, as loaded from a mesh-description file.
func (b *Builder) SetZoneIDs(ids []int) *Builder {
	m := b.m
	for k, z := range ids {
		if k >= len(m.ZoneID) {
			break
		}
		m.ZoneID[k] = z
	}
	return b
}

// SetZoneVelocity records the prescribed u,v for zone z, as loaded from a
// mesh-description zone-velocity file.
func (b *Builder) SetZoneVelocity(zone int, u, v float64) *Builder {
	b.m.ZoneU[zone] = u
	b.m.ZoneV[zone] = v
	return b
}

// Build computes the interior index bijection and returns the finished
// Mesh. It panics if called more than once on the same Builder.
func (b *Builder) Build() *Mesh {
	if b.built {
		panic("mesh.Builder: Build called twice")
	}
	b.built = true
	b.createInterID()
	return b.m
}

// createInterID assigns a dense row-major index to every Interior cell,
// establishing the InterID/InterI/InterJ bijection spec.md §3 requires.
func (b *Builder) createInterID() {
	m := b.m
	next := 0
	for i := 0; i < m.Ny; i++ {
		for j := 0; j < m.Nx; j++ {
			k := m.Idx(i, j)
			if m.BCType[k] == Interior {
				m.InterID[k] = next
				next++
			}
		}
	}
	m.InterNumber = next
	m.InterI = make([]int, next)
	m.InterJ = make([]int, next)
	for i := 0; i < m.Ny; i++ {
		for j := 0; j < m.Nx; j++ {
			k := m.Idx(i, j)
			if id := m.InterID[k]; id >= 0 {
				m.InterI[id] = i
				m.InterJ[id] = j
			}
		}
	}
}
