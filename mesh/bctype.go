package mesh

import "strings"

// BCType marks the role of a cell within a subdomain: interior cell carrying
// a live unknown, a boundary condition, or a ghost column/row used for halo
// exchange with a neighboring rank.
type BCType uint8

const (
	// Interior marks a cell that owns a row in the linear system.
	Interior BCType = iota
	// Wall is a solid boundary: u = v = 0 (no-slip) unless its zone
	// carries a prescribed velocity, as a moving lid does.
	Wall
	// Inlet is a prescribed-velocity boundary.
	Inlet
	// Outlet is a zero-gradient (Neumann) outflow boundary.
	Outlet
	// PrescribedZone marks a cell whose velocity is fixed by a zone's
	// ZoneU/ZoneV entry rather than by the momentum equation.
	PrescribedZone
	// Obstacle marks a solid blocked cell; it never carries an unknown.
	Obstacle
	// Ghost marks the outermost row/column of a subdomain, populated by
	// halo exchange with a neighboring rank.
	Ghost
)

func (bc BCType) String() string {
	switch bc {
	case Interior:
		return "Interior"
	case Wall:
		return "Wall"
	case Inlet:
		return "Inlet"
	case Outlet:
		return "Outlet"
	case PrescribedZone:
		return "PrescribedZone"
	case Obstacle:
		return "Obstacle"
	case Ghost:
		return "Ghost"
	}
	return "Unknown"
}

// BCNameMap maps lower-cased textual boundary names (as they appear in a
// mesh description file) to a BCType.
var BCNameMap = map[string]BCType{
	"interior": Interior,
	"wall":     Wall,
	"noslip":   Wall,
	"no_slip":  Wall,
	"inlet":    Inlet,
	"inflow":   Inlet,
	"outlet":   Outlet,
	"outflow":  Outlet,
	"zone":     PrescribedZone,
	"obstacle": Obstacle,
	"block":    Obstacle,
	"ghost":    Ghost,
}

// ParseBCName converts a boundary condition name string to a BCType. Unknown
// names default to Wall, matching the conservative default a structured
// solver should take when a mesh description file contains a typo.
func ParseBCName(name string) BCType {
	lowered := strings.ToLower(strings.TrimSpace(name))
	if bc, ok := BCNameMap[lowered]; ok {
		return bc
	}
	return Wall
}

// IsBlocked reports whether a cell of this type never carries a live
// momentum/pressure unknown (obstacle or ghost cells).
func (bc BCType) IsBlocked() bool {
	return bc == Obstacle || bc == Ghost
}
